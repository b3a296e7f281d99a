package cfg_test

import (
	"errors"
	"testing"

	"github.com/spartools/spar/analysis/cfg"
	"github.com/spartools/spar/ir"
	"github.com/spartools/spar/testutil"
)

type edge struct{ from, to int }

func edgesOf(g *cfg.Graph) map[edge]bool {
	edges := make(map[edge]bool)
	g.ForEach(func(n *cfg.Node) {
		for _, succ := range n.Successors() {
			edges[edge{n.ID(), succ.ID()}] = true
		}
	})
	return edges
}

func checkEdges(t *testing.T, g *cfg.Graph, expected []edge) {
	t.Helper()
	got := edgesOf(g)
	for _, e := range expected {
		if !got[e] {
			t.Errorf("missing edge %d -> %d", e.from, e.to)
		}
		delete(got, e)
	}
	for e := range got {
		t.Errorf("unexpected edge %d -> %d", e.from, e.to)
	}
}

func TestBuildStraightLine(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("straight",
		testutil.Assign(0, "x = 1", []string{"x"}, nil),
		testutil.Assign(1, "y = x + 1", []string{"y"}, []string{"x"}),
		testutil.Expr(2, "use(y)", "y"),
	))

	if g.Entry().ID() != 0 || g.Exit().ID() != 2 {
		t.Fatalf("entry/exit = %d/%d, expected 0/2", g.Entry().ID(), g.Exit().ID())
	}
	checkEdges(t, g, []edge{{0, 1}, {1, 2}})
}

func TestBuildIfElse(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("branch",
		testutil.Cond(0, ir.KindIf, "x > 0", "x"),
		testutil.BlockStart(1),
		testutil.Assign(2, "y = 1", []string{"y"}, nil),
		testutil.BlockEnd(3),
		testutil.Marker(4, ir.KindElse, "else"),
		testutil.BlockStart(5),
		testutil.Assign(6, "y = 2", []string{"y"}, nil),
		testutil.BlockEnd(7),
		ir.Statement{ID: 8, Text: "return y", Kind: ir.KindReturn, Uses: []string{"y"}},
	))

	// The then-body's closing brace jumps over the else block to the join.
	checkEdges(t, g, []edge{
		{0, 1}, {1, 2}, {2, 3}, {3, 8},
		{0, 4}, {4, 5}, {5, 6}, {6, 7}, {7, 8},
	})
}

func TestBuildElseIfChain(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("chain",
		testutil.Cond(0, ir.KindIf, "x > 0", "x"),
		testutil.BlockStart(1),
		testutil.Assign(2, "y = 1", []string{"y"}, nil),
		testutil.BlockEnd(3),
		testutil.Cond(4, ir.KindElseIf, "x < 0", "x"),
		testutil.BlockStart(5),
		testutil.Assign(6, "y = 2", []string{"y"}, nil),
		testutil.BlockEnd(7),
		testutil.Marker(8, ir.KindElse, "else"),
		testutil.BlockStart(9),
		testutil.Assign(10, "y = 3", []string{"y"}, nil),
		testutil.BlockEnd(11),
		ir.Statement{ID: 12, Text: "return y", Kind: ir.KindReturn, Uses: []string{"y"}},
	))

	checkEdges(t, g, []edge{
		{0, 1}, {1, 2}, {2, 3}, {3, 12},
		{0, 4},
		{4, 5}, {5, 6}, {6, 7}, {7, 12},
		{4, 8},
		{8, 9}, {9, 10}, {10, 11}, {11, 12},
	})
}

func TestBuildWhileLoop(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("loop",
		testutil.Assign(0, "x = 0", []string{"x"}, nil),
		testutil.Cond(1, ir.KindWhile, "x < 10", "x"),
		testutil.BlockStart(2),
		testutil.Assign(3, "x = x + 1", []string{"x"}, []string{"x"}),
		testutil.BlockEnd(4),
		ir.Statement{ID: 5, Text: "return x", Kind: ir.KindReturn, Uses: []string{"x"}},
	))

	// Back edge from the body's end to the header, exit edge past the body.
	checkEdges(t, g, []edge{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 1}, {1, 5},
	})
}

func TestBuildDoWhile(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("dowhile",
		testutil.Marker(0, ir.KindDo, "do"),
		testutil.BlockStart(1),
		testutil.Assign(2, "x = x + 1", []string{"x"}, []string{"x"}),
		testutil.BlockEnd(3),
		testutil.Cond(4, ir.KindWhile, "x < 10", "x"),
		ir.Statement{ID: 5, Text: "return x", Kind: ir.KindReturn, Uses: []string{"x"}},
	))

	// The trailing condition loops back into the body and falls out.
	checkEdges(t, g, []edge{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {4, 1},
	})
}

func TestBuildBreakContinue(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("jumps",
		testutil.Cond(0, ir.KindWhile, "c", "c"),
		testutil.BlockStart(1),
		testutil.Cond(2, ir.KindIf, "d", "d"),
		testutil.Marker(3, ir.KindBreak, "break"),
		testutil.Marker(4, ir.KindContinue, "continue"),
		testutil.BlockEnd(5),
		testutil.Marker(6, ir.KindReturn, "return"),
	))

	checkEdges(t, g, []edge{
		{0, 1}, {1, 2}, {2, 3},
		{2, 4}, // false branch of the inner if
		{3, 6}, // break leaves the loop
		{4, 0}, // continue re-tests the condition
		{5, 0}, {0, 6},
	})
}

func TestBuildSwitch(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("dispatch",
		testutil.Cond(0, ir.KindSwitch, "x", "x"),
		testutil.BlockStart(1),
		testutil.Marker(2, ir.KindCase, "case 1:"),
		testutil.Assign(3, "y = 1", []string{"y"}, nil),
		testutil.Marker(4, ir.KindBreak, "break"),
		testutil.Marker(5, ir.KindCase, "case 2:"),
		testutil.Assign(6, "y = 2", []string{"y"}, nil),
		testutil.BlockEnd(7),
		ir.Statement{ID: 8, Text: "return y", Kind: ir.KindReturn, Uses: []string{"y"}},
	))

	checkEdges(t, g, []edge{
		{0, 1}, {1, 2}, {2, 3}, {3, 4}, {5, 6}, {6, 7}, {7, 8},
		{0, 2}, {0, 5}, // dispatch to the case labels
		{0, 8},         // no case matches
		{4, 8},         // break leaves the switch
	})
}

func TestBuildGoto(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("jump",
		ir.Statement{ID: 0, Text: "goto L", Kind: ir.KindGoto, Target: "L"},
		testutil.Assign(1, "x = 1", []string{"x"}, nil),
		ir.Statement{ID: 2, Text: "L:", Kind: ir.KindLabel, Label: "L"},
		testutil.Marker(3, ir.KindReturn, "return"),
	))

	checkEdges(t, g, []edge{{0, 2}, {1, 2}, {2, 3}})

	// Node 1 is unreachable but must still appear exactly once in the order.
	seen := make(map[int]int)
	for _, n := range g.PostOrder() {
		seen[n.ID()]++
	}
	if len(seen) != 4 || seen[1] != 1 {
		t.Errorf("postorder covers %v, expected each of 4 nodes once", seen)
	}
}

func TestBuildSwitchGoto(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("swgoto",
		ir.Statement{ID: 0, Text: "switch_goto x", Kind: ir.KindSwGoto, Uses: []string{"x"}, Targets: []string{"A", "B"}},
		ir.Statement{ID: 1, Text: "A:", Kind: ir.KindLabel, Label: "A"},
		testutil.Marker(2, ir.KindReturn, "return"),
		ir.Statement{ID: 3, Text: "B:", Kind: ir.KindLabel, Label: "B"},
		testutil.Marker(4, ir.KindReturn, "return"),
	))

	checkEdges(t, g, []edge{{0, 1}, {1, 2}, {3, 4}, {0, 3}})
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		proc *ir.Procedure
	}{
		{"empty", testutil.Proc("empty")},
		{"duplicate ids", testutil.Proc("dup",
			testutil.Assign(0, "x = 1", []string{"x"}, nil),
			testutil.Assign(0, "x = 2", []string{"x"}, nil),
		)},
		{"undefined goto label", testutil.Proc("dangling",
			ir.Statement{ID: 0, Text: "goto M", Kind: ir.KindGoto, Target: "M"},
			testutil.Marker(1, ir.KindReturn, "return"),
		)},
		{"undefined switch_goto label", testutil.Proc("dangling-sw",
			ir.Statement{ID: 0, Text: "switch_goto x", Kind: ir.KindSwGoto, Targets: []string{"A"}},
			testutil.Marker(1, ir.KindReturn, "return"),
		)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := cfg.Build(test.proc); !errors.Is(err, cfg.ErrMalformedProcedure) {
				t.Errorf("Build() error = %v, expected ErrMalformedProcedure", err)
			}
		})
	}
}

func TestReversePostOrder(t *testing.T) {
	g := testutil.MustCFG(t, testutil.Proc("loop",
		testutil.Assign(0, "x = 0", []string{"x"}, nil),
		testutil.Cond(1, ir.KindWhile, "x < 10", "x"),
		testutil.BlockStart(2),
		testutil.Assign(3, "x = x + 1", []string{"x"}, []string{"x"}),
		testutil.BlockEnd(4),
		ir.Statement{ID: 5, Text: "return x", Kind: ir.KindReturn, Uses: []string{"x"}},
	))

	rpo := g.ReversePostOrder()
	if len(rpo) != g.Size() {
		t.Fatalf("ReversePostOrder() has %d nodes, graph has %d", len(rpo), g.Size())
	}
	if rpo[0] != g.Entry() {
		t.Errorf("ReversePostOrder() starts at %d, expected entry %d", rpo[0].ID(), g.Entry().ID())
	}
	// Deterministic: repeated traversals agree.
	again := g.ReversePostOrder()
	for i := range rpo {
		if rpo[i] != again[i] {
			t.Fatalf("traversal order not stable at position %d", i)
		}
	}
}
