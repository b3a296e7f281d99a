package cfg

import "github.com/spartools/spar/ir"

// Node is a control-flow node wrapping a single IR statement. Successor and
// predecessor slices are back-references into the owning graph; they are
// kept in insertion order so traversals are deterministic.
type Node struct {
	stmt  ir.Statement
	index int

	succs []*Node
	preds []*Node
}

// Stmt returns the wrapped IR statement.
func (n *Node) Stmt() ir.Statement {
	return n.stmt
}

// ID returns the statement id of the wrapped statement.
func (n *Node) ID() int {
	return n.stmt.ID
}

// Index returns the node's position in the procedure's statement order.
func (n *Node) Index() int {
	return n.index
}

// Successors returns the control-flow successors in insertion order.
func (n *Node) Successors() []*Node {
	return n.succs
}

// Predecessors returns the control-flow predecessors in insertion order.
func (n *Node) Predecessors() []*Node {
	return n.preds
}

// Defs returns the variables defined by the node's statement.
func (n *Node) Defs() []string {
	return n.stmt.Defs
}

// Uses returns the variables used by the node's statement.
func (n *Node) Uses() []string {
	return n.stmt.Uses
}

func (n *Node) String() string {
	return n.stmt.Text
}

func (n *Node) hasSuccessor(m *Node) bool {
	for _, s := range n.succs {
		if s == m {
			return true
		}
	}
	return false
}
