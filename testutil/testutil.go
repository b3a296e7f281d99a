// Package testutil provides compact builders for IR procedures used across
// the analysis tests.
package testutil

import (
	"testing"

	"github.com/spartools/spar/analysis/cfg"
	"github.com/spartools/spar/ir"
)

// Proc builds a procedure from statements.
func Proc(name string, stmts ...ir.Statement) *ir.Procedure {
	return &ir.Procedure{Name: name, Statements: stmts}
}

// Assign builds an assignment statement defining defs from uses.
func Assign(id int, text string, defs, uses []string) ir.Statement {
	return ir.Statement{ID: id, Text: text, Kind: ir.KindAssign, Defs: defs, Uses: uses}
}

// Expr builds an expression statement using the given variables.
func Expr(id int, text string, uses ...string) ir.Statement {
	return ir.Statement{ID: id, Text: text, Kind: ir.KindExpr, Uses: uses}
}

// Cond builds a conditional statement of the given kind using uses.
func Cond(id int, kind ir.Kind, text string, uses ...string) ir.Statement {
	return ir.Statement{ID: id, Text: text, Kind: kind, Cond: text, Uses: uses}
}

// Marker builds a statement with no def/use effects (returns, braces, ...).
func Marker(id int, kind ir.Kind, text string) ir.Statement {
	return ir.Statement{ID: id, Text: text, Kind: kind, Synthetic: kind == ir.KindBlockStart || kind == ir.KindBlockEnd}
}

// BlockStart builds a synthetic opening brace.
func BlockStart(id int) ir.Statement {
	return Marker(id, ir.KindBlockStart, "{")
}

// BlockEnd builds a synthetic closing brace.
func BlockEnd(id int) ir.Statement {
	return Marker(id, ir.KindBlockEnd, "}")
}

// Alloc builds an allocation statement: dst = new Site.
func Alloc(id int, dst, site string) ir.Statement {
	return ir.Statement{
		ID: id, Text: dst + " = new " + site, Kind: ir.KindAssign,
		Defs: []string{dst},
		Ptr:  &ir.PtrEffect{Op: ir.PtrAlloc, Dst: dst, Site: site},
	}
}

// Copy builds a pointer copy statement: dst = src.
func Copy(id int, dst, src string) ir.Statement {
	return ir.Statement{
		ID: id, Text: dst + " = " + src, Kind: ir.KindAssign,
		Defs: []string{dst}, Uses: []string{src},
		Ptr: &ir.PtrEffect{Op: ir.PtrCopy, Dst: dst, Src: src},
	}
}

// MustCFG builds the procedure's CFG, failing the test on error.
func MustCFG(t *testing.T, proc *ir.Procedure) *cfg.Graph {
	t.Helper()
	g, err := cfg.Build(proc)
	if err != nil {
		t.Fatalf("building CFG for %s: %v", proc.Name, err)
	}
	return g
}

// Node retrieves a CFG node by statement id, failing the test when absent.
func Node(t *testing.T, g *cfg.Graph, id int) *cfg.Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("no node with id %d in %s", id, g.Procedure())
	}
	return n
}
