// Package cfg builds and represents per-procedure control-flow graphs over
// the statement IR. Construction is purely structural: it preserves
// sequencing, branch and loop structure, and jump targets, and carries no
// analysis logic of its own.
package cfg

import "errors"

// ErrMalformedProcedure signals a structural defect in a procedure, such as
// a jump to an undefined label or a duplicate statement id. It aborts that
// procedure's analysis only.
var ErrMalformedProcedure = errors.New("malformed procedure")

// Graph is the control-flow graph of a single procedure. The graph owns its
// nodes; edges are kept as mutual back-references on the nodes.
type Graph struct {
	proc  string
	nodes []*Node
	byID  map[int]*Node

	entry *Node
	exit  *Node
}

// Procedure returns the name of the procedure the graph was built from.
func (g *Graph) Procedure() string {
	return g.proc
}

// Entry returns the unique entry node (the first statement).
func (g *Graph) Entry() *Node {
	return g.entry
}

// Exit returns the exit node (the last statement).
func (g *Graph) Exit() *Node {
	return g.exit
}

// Nodes enumerates all nodes in statement order. The returned slice is the
// graph's stable node ordering and must not be mutated.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Node retrieves a node by statement id.
func (g *Graph) Node(id int) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Size returns the number of nodes.
func (g *Graph) Size() int {
	return len(g.nodes)
}

// ForEach executes the given procedure for each node in statement order.
func (g *Graph) ForEach(do func(*Node)) {
	for _, n := range g.nodes {
		do(n)
	}
}

// addEdge inserts a directed edge, ignoring duplicates.
func (g *Graph) addEdge(src, tgt *Node) {
	if src.hasSuccessor(tgt) {
		return
	}
	src.succs = append(src.succs, tgt)
	tgt.preds = append(tgt.preds, src)
}

// removeEdge deletes a directed edge if present.
func (g *Graph) removeEdge(src, tgt *Node) {
	for i, s := range src.succs {
		if s == tgt {
			src.succs = append(src.succs[:i], src.succs[i+1:]...)
			break
		}
	}
	for i, p := range tgt.preds {
		if p == src {
			tgt.preds = append(tgt.preds[:i], tgt.preds[i+1:]...)
			break
		}
	}
}

// PostOrder returns the nodes in depth-first postorder starting at the
// entry node. Nodes unreachable from the entry are appended afterwards in
// statement order, so every node appears exactly once.
func (g *Graph) PostOrder() []*Node {
	order := make([]*Node, 0, len(g.nodes))
	visited := make(map[*Node]bool, len(g.nodes))

	var visit func(*Node)
	visit = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true

		for _, succ := range n.succs {
			visit(succ)
		}
		order = append(order, n)
	}

	if g.entry != nil {
		visit(g.entry)
	}
	for _, n := range g.nodes {
		if !visited[n] {
			order = append(order, n)
			visited[n] = true
		}
	}

	return order
}

// ReversePostOrder returns the reverse of PostOrder, the canonical iteration
// order for forward data-flow analyses.
func (g *Graph) ReversePostOrder() []*Node {
	post := g.PostOrder()
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}
