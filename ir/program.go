// Package ir defines the statement-level intermediate representation
// consumed by the analyses. A front-end lowers source procedures into
// ordered statement lists; everything downstream (CFG construction, the
// data-flow solver, points-to analysis) operates on this IR only.
package ir

import "sort"

// Procedure is a named, ordered statement sequence. The procedure owns its
// statements; CFG nodes only back-reference them.
type Procedure struct {
	Name       string      `yaml:"name"`
	Statements []Statement `yaml:"statements"`
}

// ByID builds a lookup map from statement id to statement.
func (p *Procedure) ByID() map[int]Statement {
	m := make(map[int]Statement, len(p.Statements))
	for _, stmt := range p.Statements {
		m[stmt.ID] = stmt
	}
	return m
}

// Variables collects all variable names defined or used in the procedure,
// in sorted order.
func (p *Procedure) Variables() []string {
	seen := make(map[string]bool)
	for _, stmt := range p.Statements {
		for _, v := range stmt.Defs {
			seen[v] = true
		}
		for _, v := range stmt.Uses {
			seen[v] = true
		}
	}

	vars := make([]string, 0, len(seen))
	for v := range seen {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// Program is the front-end output: an ordered list of procedures with
// source metadata.
type Program struct {
	Language   string      `yaml:"language,omitempty"`
	Source     string      `yaml:"source,omitempty"`
	Procedures []Procedure `yaml:"procedures"`
}

// Procedure looks up a procedure by name.
func (p *Program) Procedure(name string) (*Procedure, bool) {
	for i := range p.Procedures {
		if p.Procedures[i].Name == name {
			return &p.Procedures[i], true
		}
	}
	return nil, false
}
