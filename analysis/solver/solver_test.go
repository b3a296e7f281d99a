package solver

import (
	"errors"
	"testing"

	"github.com/spartools/spar/analysis/cfg"
	"github.com/spartools/spar/analysis/lattice"
	"github.com/spartools/spar/ir"
	"github.com/spartools/spar/testutil"
)

// funcAnalysis adapts plain functions to the Analysis interface for tests.
type funcAnalysis struct {
	name     string
	dir      Direction
	lat      lattice.Lattice
	transfer func(n *cfg.Node, in lattice.Element) lattice.Element
}

func (a funcAnalysis) Name() string                            { return a.name }
func (a funcAnalysis) Direction() Direction                    { return a.dir }
func (a funcAnalysis) Lattice() lattice.Lattice                { return a.lat }
func (a funcAnalysis) Boundary(*cfg.Node) lattice.Element      { return a.lat.Bot() }
func (a funcAnalysis) Transfer(n *cfg.Node, in lattice.Element) lattice.Element {
	return a.transfer(n, in)
}

// definedVars is a forward may-analysis: a variable is "defined" after a
// node if some path reaching it assigns the variable.
func definedVars(g *cfg.Graph) funcAnalysis {
	vars := []string{}
	seen := map[string]bool{}
	g.ForEach(func(n *cfg.Node) {
		for _, v := range n.Defs() {
			if !seen[v] {
				seen[v] = true
				vars = append(vars, v)
			}
		}
	})
	lat := lattice.NewStringPowerset(vars)

	return funcAnalysis{
		name: "defined-variables",
		dir:  Forward,
		lat:  lat,
		transfer: func(n *cfg.Node, in lattice.Element) lattice.Element {
			fact := in.(lattice.Set)
			for _, v := range n.Defs() {
				fact = fact.Add(v)
			}
			return fact
		},
	}
}

func straightLine(t *testing.T) *cfg.Graph {
	t.Helper()
	return testutil.MustCFG(t, testutil.Proc("straight",
		testutil.Assign(0, "x = 1", []string{"x"}, nil),
		testutil.Assign(1, "y = x + 1", []string{"y"}, []string{"x"}),
		testutil.Expr(2, "use(y)", "y"),
	))
}

func whileLoop(t *testing.T) *cfg.Graph {
	t.Helper()
	return testutil.MustCFG(t, testutil.Proc("loop",
		testutil.Assign(0, "x = 0", []string{"x"}, nil),
		testutil.Cond(1, ir.KindWhile, "x < 10", "x"),
		testutil.BlockStart(2),
		testutil.Assign(3, "y = x", []string{"y"}, []string{"x"}),
		testutil.BlockEnd(4),
		ir.Statement{ID: 5, Text: "return x", Kind: ir.KindReturn, Uses: []string{"x"}},
	))
}

func TestFixpointStraightLine(t *testing.T) {
	g := straightLine(t)
	a := definedVars(g)

	res, err := Fixpoint(g, a)
	if err != nil {
		t.Fatalf("Fixpoint() error: %v", err)
	}

	if fact := res.Before(testutil.Node(t, g, 0)).(lattice.Set); fact.Size() != 0 {
		t.Errorf("before entry = %s, expected ∅", fact)
	}
	if fact := res.After(testutil.Node(t, g, 0)).(lattice.Set); !fact.Contains("x") || fact.Size() != 1 {
		t.Errorf("after node 0 = %s, expected { x }", fact)
	}
	after1 := res.After(testutil.Node(t, g, 1)).(lattice.Set)
	if !after1.Contains("x") || !after1.Contains("y") {
		t.Errorf("after node 1 = %s, expected { x, y }", after1)
	}
}

func TestFixpointLoopConverges(t *testing.T) {
	g := whileLoop(t)
	a := definedVars(g)

	res, err := Fixpoint(g, a)
	if err != nil {
		t.Fatalf("Fixpoint() error: %v", err)
	}

	// The loop body's definition of y flows around the back edge into the
	// header, joined with the header's loop-free predecessor.
	header := res.Before(testutil.Node(t, g, 1)).(lattice.Set)
	if !header.Contains("x") || !header.Contains("y") {
		t.Errorf("before loop header = %s, expected { x, y }", header)
	}
	exit := res.Before(testutil.Node(t, g, 5)).(lattice.Set)
	if !exit.Contains("x") || !exit.Contains("y") {
		t.Errorf("before return = %s, expected { x, y }", exit)
	}
}

func TestFixpointIsStable(t *testing.T) {
	for name, mk := range map[string]func(*testing.T) *cfg.Graph{
		"straight": straightLine,
		"loop":     whileLoop,
	} {
		t.Run(name, func(t *testing.T) {
			g := mk(t)
			a := definedVars(g)

			res, err := Fixpoint(g, a)
			if err != nil {
				t.Fatalf("Fixpoint() error: %v", err)
			}
			// Re-applying join and transfer everywhere must change nothing.
			if err := Verify(g, a, res); err != nil {
				t.Errorf("fixpoint not stable: %v", err)
			}
		})
	}
}

func TestFixpointDeterministic(t *testing.T) {
	g := whileLoop(t)
	a := definedVars(g)

	first, err := Fixpoint(g, a)
	if err != nil {
		t.Fatalf("Fixpoint() error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Fixpoint(g, a)
		if err != nil {
			t.Fatalf("Fixpoint() error on rerun: %v", err)
		}
		g.ForEach(func(n *cfg.Node) {
			if !first.Before(n).Eq(again.Before(n)) || !first.After(n).Eq(again.After(n)) {
				t.Errorf("facts at node %d differ across runs", n.ID())
			}
		})
	}
}

func TestBackwardDirectionFlipsBeforeAfter(t *testing.T) {
	g := straightLine(t)
	lat := lattice.NewStringPowerset([]string{"x", "y"})

	live := funcAnalysis{
		name: "uses",
		dir:  Backward,
		lat:  lat,
		transfer: func(n *cfg.Node, in lattice.Element) lattice.Element {
			fact := in.(lattice.Set)
			for _, v := range n.Defs() {
				fact = fact.Remove(v)
			}
			for _, v := range n.Uses() {
				fact = fact.Add(v)
			}
			return fact
		},
	}

	res, err := Fixpoint(g, live)
	if err != nil {
		t.Fatalf("Fixpoint() error: %v", err)
	}

	if before := res.Before(testutil.Node(t, g, 2)).(lattice.Set); !before.Contains("y") || before.Size() != 1 {
		t.Errorf("before use(y) = %s, expected { y }", before)
	}
	if before := res.Before(testutil.Node(t, g, 1)).(lattice.Set); !before.Contains("x") || before.Size() != 1 {
		t.Errorf("before y = x + 1 = %s, expected { x }", before)
	}
	if after := res.After(testutil.Node(t, g, 2)).(lattice.Set); after.Size() != 0 {
		t.Errorf("after use(y) = %s, expected ∅", after)
	}
}

func TestNonMonotonicTransferDetected(t *testing.T) {
	g := whileLoop(t)
	lat := lattice.NewStringPowerset([]string{"a"})

	// A broken transfer function that retracts its own fact the second time
	// a node is visited. The loop forces a revisit of the header.
	calls := map[*cfg.Node]int{}
	broken := funcAnalysis{
		name: "broken",
		dir:  Forward,
		lat:  lat,
		transfer: func(n *cfg.Node, in lattice.Element) lattice.Element {
			calls[n]++
			if calls[n] == 1 {
				return lat.MkSet("a")
			}
			return lat.Bot()
		},
	}

	_, err := Fixpoint(g, broken)
	if !errors.Is(err, ErrNonMonotonicTransfer) {
		t.Fatalf("Fixpoint() error = %v, expected ErrNonMonotonicTransfer", err)
	}
}

func TestVerifyRejectsForeignFacts(t *testing.T) {
	g := straightLine(t)
	a := definedVars(g)

	res, err := Fixpoint(g, a)
	if err != nil {
		t.Fatalf("Fixpoint() error: %v", err)
	}

	// Facts of a different transfer function over the same lattice are not a
	// fixpoint of this one.
	alwaysTop := funcAnalysis{
		name: "always-top",
		dir:  Forward,
		lat:  a.lat,
		transfer: func(*cfg.Node, lattice.Element) lattice.Element {
			return a.lat.Top()
		},
	}
	if err := Verify(g, alwaysTop, res); err == nil {
		t.Error("Verify accepted facts that are not a fixpoint")
	}
}
