// Package solver implements the generic worklist fixpoint engine. It is
// independent of any particular analysis: an Analysis supplies the lattice,
// the direction and the transfer function, and the solver iterates until no
// fact changes.
//
// Termination requires a finite-height lattice and a monotone transfer
// function. The solver cannot check finiteness, but it does detect a
// transfer function that shrinks an established fact and fails fast with
// ErrNonMonotonicTransfer instead of looping or silently misbehaving.
package solver

import (
	"errors"
	"fmt"

	"github.com/spartools/spar/analysis/cfg"
	"github.com/spartools/spar/analysis/lattice"
	"github.com/spartools/spar/utils/worklist"
)

// ErrNonMonotonicTransfer signals that an analysis instance violated the
// lattice contract: a recomputed fact was not above the previously stored
// one. This is a programming error in the analysis definition.
var ErrNonMonotonicTransfer = errors.New("non-monotonic transfer function")

// Direction selects whether facts flow along or against control-flow edges.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Analysis defines a data-flow problem instance for the solver.
type Analysis interface {
	// Name identifies the analysis in logs and errors.
	Name() string

	Direction() Direction
	Lattice() lattice.Lattice

	// Boundary is the fact entering the graph at its boundary node: the
	// entry node for forward analyses, the exit node for backward ones.
	// Most may-analyses return the lattice's ⊥ here.
	Boundary(n *cfg.Node) lattice.Element

	// Transfer maps the fact flowing into a node to the fact flowing out of
	// it. It must be pure and monotone with respect to the lattice.
	Transfer(n *cfg.Node, in lattice.Element) lattice.Element
}

// Fixpoint iterates the analysis over the graph until no node's fact
// changes, and returns the stable per-node facts. Nodes are processed in
// reverse postorder for forward analyses and postorder for backward ones;
// the order only affects the number of iterations, never the fixpoint.
func Fixpoint(g *cfg.Graph, a Analysis) (*Result, error) {
	bot := a.Lattice().Bot()

	var order []*cfg.Node
	if a.Direction() == Forward {
		order = g.ReversePostOrder()
	} else {
		order = g.PostOrder()
	}
	prio := make(map[*cfg.Node]int, len(order))
	for i, n := range order {
		prio[n] = i
	}

	in := make(map[*cfg.Node]lattice.Element, len(order))
	out := make(map[*cfg.Node]lattice.Element, len(order))
	for _, n := range order {
		in[n] = bot
		out[n] = bot
	}

	W := worklist.NewPriority(func(a, b *cfg.Node) bool {
		return prio[a] < prio[b]
	})
	for _, n := range order {
		W.Add(n)
	}

	for !W.IsEmpty() {
		n := W.GetNext()

		inFact := joinIncoming(g, a, n, out)
		in[n] = inFact

		candidate := a.Transfer(n, inFact)
		old := out[n]
		if candidate.Eq(old) {
			continue
		}
		if !candidate.Geq(old) {
			return nil, fmt.Errorf("%w: %s shrank the fact at node %d of %q",
				ErrNonMonotonicTransfer, a.Name(), n.ID(), g.Procedure())
		}
		out[n] = candidate

		for _, dep := range dependents(a.Direction(), n) {
			W.Add(dep)
		}
	}

	return newResult(g, a, in, out), nil
}

// Verify checks that the facts in a result are a fixpoint of the analysis:
// re-applying join and transfer at every node must reproduce the stored
// facts exactly. A non-nil error indicates an unstable (or foreign) result.
func Verify(g *cfg.Graph, a Analysis, r *Result) error {
	out := make(map[*cfg.Node]lattice.Element, g.Size())
	for _, n := range g.Nodes() {
		out[n] = r.rawOut(n)
	}

	for _, n := range g.Nodes() {
		inFact := joinIncoming(g, a, n, out)
		if !inFact.Eq(r.rawIn(n)) {
			return fmt.Errorf("unstable in-fact at node %d of %q: %s != %s",
				n.ID(), g.Procedure(), inFact, r.rawIn(n))
		}
		if candidate := a.Transfer(n, inFact); !candidate.Eq(out[n]) {
			return fmt.Errorf("unstable out-fact at node %d of %q: %s != %s",
				n.ID(), g.Procedure(), candidate, out[n])
		}
	}
	return nil
}

// joinIncoming computes the fact flowing into a node: the join over the
// out-facts of its incoming neighbors, plus the boundary fact at the graph
// boundary node.
func joinIncoming(g *cfg.Graph, a Analysis, n *cfg.Node, out map[*cfg.Node]lattice.Element) lattice.Element {
	fact := a.Lattice().Bot()
	if n == boundaryNode(g, a.Direction()) {
		fact = fact.Join(a.Boundary(n))
	}
	for _, m := range incoming(a.Direction(), n) {
		fact = fact.Join(out[m])
	}
	return fact
}

func boundaryNode(g *cfg.Graph, d Direction) *cfg.Node {
	if d == Forward {
		return g.Entry()
	}
	return g.Exit()
}

func incoming(d Direction, n *cfg.Node) []*cfg.Node {
	if d == Forward {
		return n.Predecessors()
	}
	return n.Successors()
}

func dependents(d Direction, n *cfg.Node) []*cfg.Node {
	if d == Forward {
		return n.Successors()
	}
	return n.Predecessors()
}
