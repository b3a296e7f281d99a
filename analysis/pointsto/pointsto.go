// Package pointsto implements a flow-insensitive, inclusion-based may
// points-to analysis over an abstract points-to graph. Allocation effects
// seed the graph, copy/load/store effects propagate sites until fixpoint,
// and alias information is derived from overlapping points-to sets.
//
// Constructs the abstraction cannot model (reflection, raw pointer
// arithmetic) are excluded from propagation and recorded as notes; the
// result is then flagged approximate instead of being silently wrong.
package pointsto

import (
	"fmt"

	"github.com/spartools/spar/ir"
	"github.com/spartools/spar/utils/worklist"
)

// Note records one construct whose effect was excluded from the analysis.
type Note struct {
	Stmt   int
	Reason string
}

func (n Note) String() string {
	return fmt.Sprintf("statement %d: %s", n.Stmt, n.Reason)
}

// access is a deferred field constraint: dst = base.field (load) or
// base.field = src (store).
type access struct {
	variable string // dst for loads, src for stores
	field    string
}

// state is the constraint system under solution. Points-to sets grow
// monotonically; subset edges are added as field constraints resolve.
type state struct {
	pts   map[string]map[string]bool // pointer -> allocation sites
	succs map[string]map[string]bool // subset edges: pts(src) ⊆ pts(dst)

	loads  map[string][]access // base variable -> pending loads
	stores map[string][]access // base variable -> pending stores

	W worklist.Worklist[string]
}

// fieldObject names the abstract location of a field on an allocation site.
func fieldObject(site, field string) string {
	return site + "." + field
}

// insert adds a site to a pointer's points-to set and requeues the pointer
// when the set grew.
func (s *state) insert(p, site string) {
	set, ok := s.pts[p]
	if !ok {
		set = make(map[string]bool)
		s.pts[p] = set
	}
	if set[site] {
		return
	}
	set[site] = true
	s.W.Add(p)
}

// edge records the subset constraint pts(src) ⊆ pts(dst) and propagates the
// current sites of src.
func (s *state) edge(src, dst string) {
	set, ok := s.succs[src]
	if !ok {
		set = make(map[string]bool)
		s.succs[src] = set
	}
	if set[dst] {
		return
	}
	set[dst] = true
	for site := range s.pts[src] {
		s.insert(dst, site)
	}
}

// Analyze computes points-to and alias information for one procedure.
func Analyze(proc *ir.Procedure) *Result {
	s := &state{
		pts:    make(map[string]map[string]bool),
		succs:  make(map[string]map[string]bool),
		loads:  make(map[string][]access),
		stores: make(map[string][]access),
		W:      worklist.Empty[string](),
	}
	res := &Result{proc: proc.Name, vars: make(map[string]bool)}

	for _, stmt := range proc.Statements {
		eff := stmt.Ptr
		if eff == nil {
			continue
		}
		switch eff.Op {
		case ir.PtrAlloc:
			res.vars[eff.Dst] = true
			s.insert(eff.Dst, eff.Site)

		case ir.PtrCopy:
			res.vars[eff.Dst] = true
			res.vars[eff.Src] = true
			s.edge(eff.Src, eff.Dst)

		case ir.PtrLoad:
			res.vars[eff.Dst] = true
			res.vars[eff.Src] = true
			s.loads[eff.Src] = append(s.loads[eff.Src], access{variable: eff.Dst, field: eff.Field})
			s.W.Add(eff.Src)

		case ir.PtrStore:
			res.vars[eff.Dst] = true
			res.vars[eff.Src] = true
			s.stores[eff.Dst] = append(s.stores[eff.Dst], access{variable: eff.Src, field: eff.Field})
			s.W.Add(eff.Dst)

		case ir.PtrUnsupported:
			reason := eff.Note
			if reason == "" {
				reason = "construct not modeled by the points-to abstraction"
			}
			res.notes = append(res.notes, Note{Stmt: stmt.ID, Reason: reason})
			res.approximate = true

		default:
			res.notes = append(res.notes, Note{
				Stmt:   stmt.ID,
				Reason: fmt.Sprintf("unknown pointer effect %q", eff.Op),
			})
			res.approximate = true
		}
	}

	// Propagate until no new edges or sites appear. Popping a pointer
	// resolves its pending field constraints against the sites discovered so
	// far and pushes its sites across all outgoing subset edges.
	s.W.Process(func(p string, add func(string)) {
		for site := range s.pts[p] {
			for _, ld := range s.loads[p] {
				s.edge(fieldObject(site, ld.field), ld.variable)
			}
			for _, st := range s.stores[p] {
				s.edge(st.variable, fieldObject(site, st.field))
			}
		}
		for dst := range s.succs[p] {
			for site := range s.pts[p] {
				s.insert(dst, site)
			}
		}
	})

	res.pts = s.pts
	return res
}
