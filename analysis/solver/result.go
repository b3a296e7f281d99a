package solver

import (
	"github.com/benbjohnson/immutable"
	"github.com/spartools/spar/analysis/cfg"
	"github.com/spartools/spar/analysis/lattice"
	"github.com/spartools/spar/utils"
)

// Result holds the stable per-node facts of one analysis run. It is
// immutable: the solver freezes its working maps once the fixpoint is
// reached, so results can be shared across goroutines freely.
type Result struct {
	analysis string
	dir      Direction
	bot      lattice.Element

	in  *immutable.Map[*cfg.Node, lattice.Element]
	out *immutable.Map[*cfg.Node, lattice.Element]
}

func newResult(g *cfg.Graph, a Analysis, in, out map[*cfg.Node]lattice.Element) *Result {
	hasher := utils.PointerHasher[*cfg.Node]{}
	inb := immutable.NewMapBuilder[*cfg.Node, lattice.Element](hasher)
	outb := immutable.NewMapBuilder[*cfg.Node, lattice.Element](hasher)
	for _, n := range g.Nodes() {
		inb.Set(n, in[n])
		outb.Set(n, out[n])
	}

	return &Result{
		analysis: a.Name(),
		dir:      a.Direction(),
		bot:      a.Lattice().Bot(),
		in:       inb.Map(),
		out:      outb.Map(),
	}
}

// Analysis returns the name of the analysis that produced the result.
func (r *Result) Analysis() string {
	return r.analysis
}

// Direction returns the direction of the producing analysis.
func (r *Result) Direction() Direction {
	return r.dir
}

// rawIn is the fact flowing into the node in solver terms: joined from
// predecessors for forward analyses, from successors for backward ones.
func (r *Result) rawIn(n *cfg.Node) lattice.Element {
	if fact, ok := r.in.Get(n); ok {
		return fact
	}
	return r.bot
}

// rawOut is the transfer function's output at the node.
func (r *Result) rawOut(n *cfg.Node) lattice.Element {
	if fact, ok := r.out.Get(n); ok {
		return fact
	}
	return r.bot
}

// Before returns the fact holding immediately before the node in program
// order, regardless of the analysis direction.
func (r *Result) Before(n *cfg.Node) lattice.Element {
	if r.dir == Forward {
		return r.rawIn(n)
	}
	return r.rawOut(n)
}

// After returns the fact holding immediately after the node in program
// order, regardless of the analysis direction.
func (r *Result) After(n *cfg.Node) lattice.Element {
	if r.dir == Forward {
		return r.rawOut(n)
	}
	return r.rawIn(n)
}
