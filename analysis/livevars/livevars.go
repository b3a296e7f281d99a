// Package livevars implements live-variable analysis: a backward
// may-analysis over the powerset of the procedure's variables. A variable is
// live before a node when some path from the node reads it before any
// redefinition.
package livevars

import (
	"github.com/spartools/spar/analysis/cfg"
	"github.com/spartools/spar/analysis/lattice"
	"github.com/spartools/spar/analysis/solver"
)

type analysis struct {
	lat *lattice.Powerset
}

func (a *analysis) Name() string {
	return "live-variables"
}

func (a *analysis) Direction() solver.Direction {
	return solver.Backward
}

func (a *analysis) Lattice() lattice.Lattice {
	return a.lat
}

// Boundary: nothing is live after the procedure exits.
func (a *analysis) Boundary(n *cfg.Node) lattice.Element {
	return a.lat.Bot()
}

// Transfer computes live-before = (live-after − defs) ∪ uses.
func (a *analysis) Transfer(n *cfg.Node, in lattice.Element) lattice.Element {
	live := in.(lattice.Set)
	for _, d := range n.Defs() {
		live = live.Remove(d)
	}
	for _, u := range n.Uses() {
		live = live.Add(u)
	}
	return live
}

// LiveVars wraps the solver result with liveness accessors.
type LiveVars struct {
	res *solver.Result
}

// Analyze runs live-variable analysis to a fixpoint over the graph.
func Analyze(g *cfg.Graph) (*LiveVars, error) {
	res, err := solver.Fixpoint(g, New(g))
	if err != nil {
		return nil, err
	}
	return &LiveVars{res: res}, nil
}

// New returns the live-variable problem instance for the graph, for callers
// that drive the solver themselves.
func New(g *cfg.Graph) solver.Analysis {
	vars := make(map[string]bool)
	g.ForEach(func(n *cfg.Node) {
		for _, d := range n.Defs() {
			vars[d] = true
		}
		for _, u := range n.Uses() {
			vars[u] = true
		}
	})

	dom := make([]string, 0, len(vars))
	for v := range vars {
		dom = append(dom, v)
	}
	return &analysis{lat: lattice.NewStringPowerset(dom)}
}

// Before returns the variables live immediately before the node.
func (lv *LiveVars) Before(n *cfg.Node) lattice.Set {
	return lv.res.Before(n).(lattice.Set)
}

// After returns the variables live immediately after the node.
func (lv *LiveVars) After(n *cfg.Node) lattice.Set {
	return lv.res.After(n).(lattice.Set)
}

// Result exposes the underlying solver result.
func (lv *LiveVars) Result() *solver.Result {
	return lv.res
}
