package cfg

import (
	"fmt"

	"github.com/spartools/spar/ir"
)

// controlInfo captures the body extent of a control statement: the index
// range of its body and the index of the statement following the body.
// An index of -1 means "none".
type controlInfo struct {
	kind      ir.Kind
	bodyStart int
	bodyEnd   int
	afterBody int
}

type builder struct {
	g       *Graph
	ordered []ir.Statement

	blockPairs map[int]int         // block_start index -> block_end index
	control    map[int]controlInfo // control statement index -> body extent
	doTails    map[int]int         // do index -> trailing while index
	doTailSet  map[int]bool
	labels     map[string]int // label name -> statement index
}

// Build constructs the control-flow graph of a procedure using the
// structured heuristics of the IR: sequential fallthrough, if/else-if/else
// chains, while/for/do loops, switch dispatch, and break/continue/goto
// resolution. It fails with ErrMalformedProcedure when the statement list is
// structurally inconsistent or a jump references an undefined label.
func Build(proc *ir.Procedure) (*Graph, error) {
	if len(proc.Statements) == 0 {
		return nil, fmt.Errorf("%w: procedure %q has no statements", ErrMalformedProcedure, proc.Name)
	}

	g := &Graph{
		proc: proc.Name,
		byID: make(map[int]*Node, len(proc.Statements)),
	}
	for i, stmt := range proc.Statements {
		if _, dup := g.byID[stmt.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate statement id %d in %q", ErrMalformedProcedure, stmt.ID, proc.Name)
		}
		n := &Node{stmt: stmt, index: i}
		g.nodes = append(g.nodes, n)
		g.byID[stmt.ID] = n
	}
	g.entry = g.nodes[0]
	g.exit = g.nodes[len(g.nodes)-1]

	b := &builder{g: g, ordered: proc.Statements}
	b.sequentialEdges()
	b.pairBlocks()
	b.collectControlInfo()
	b.collectDoTails()
	b.branchEdges()
	b.elseChainJoins()
	b.loopEdges()
	b.switchEdges()
	b.doWhileEdges()
	if err := b.jumpEdges(); err != nil {
		return nil, err
	}

	return g, nil
}

// node returns the graph node at the given statement index.
func (b *builder) node(idx int) *Node {
	return b.g.nodes[idx]
}

// sequentialEdges adds default fallthrough edges between consecutive
// statements, except after statements that never fall through.
func (b *builder) sequentialEdges() {
	for i := 0; i+1 < len(b.ordered); i++ {
		if b.ordered[i].Kind.Terminates() {
			continue
		}
		b.g.addEdge(b.node(i), b.node(i+1))
	}
}

// pairBlocks matches block_start markers to their block_end counterparts.
// Unmatched markers are tolerated; they collapse the surrounding body.
func (b *builder) pairBlocks() {
	b.blockPairs = make(map[int]int)
	var stack []int
	for idx, stmt := range b.ordered {
		switch stmt.Kind {
		case ir.KindBlockStart:
			stack = append(stack, idx)
		case ir.KindBlockEnd:
			if len(stack) > 0 {
				start := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				b.blockPairs[start] = idx
			}
		}
	}
}

// bodyRange computes the body extent of the control statement at idx. If a
// block follows, the body spans the block; otherwise it is the single next
// statement.
func (b *builder) bodyRange(idx int) controlInfo {
	info := controlInfo{kind: b.ordered[idx].Kind, bodyStart: -1, bodyEnd: -1, afterBody: -1}
	start := idx + 1
	if start >= len(b.ordered) {
		return info
	}

	end := start
	if b.ordered[start].Kind == ir.KindBlockStart {
		if paired, ok := b.blockPairs[start]; ok {
			end = paired
		}
	}
	info.bodyStart = start
	info.bodyEnd = end
	if end+1 < len(b.ordered) {
		info.afterBody = end + 1
	}
	return info
}

func (b *builder) collectControlInfo() {
	b.control = make(map[int]controlInfo)
	for idx, stmt := range b.ordered {
		switch stmt.Kind {
		case ir.KindIf, ir.KindElseIf, ir.KindElse,
			ir.KindWhile, ir.KindFor, ir.KindSwitch, ir.KindDo:
			b.control[idx] = b.bodyRange(idx)
		}
	}
}

// collectDoTails pairs each do statement with the while condition trailing
// its body, so the condition can loop back and break/continue can target it.
func (b *builder) collectDoTails() {
	b.doTails = make(map[int]int)
	b.doTailSet = make(map[int]bool)

	for start, end := range b.blockPairs {
		owner := b.previousNonSynthetic(start)
		if owner < 0 || b.ordered[owner].Kind != ir.KindDo {
			continue
		}
		tail := end + 1
		if tail < len(b.ordered) && b.ordered[tail].Kind == ir.KindWhile {
			b.doTails[owner] = tail
			b.doTailSet[tail] = true
		}
	}
	for idx, stmt := range b.ordered {
		if stmt.Kind != ir.KindDo {
			continue
		}
		info, ok := b.control[idx]
		if !ok || info.afterBody < 0 {
			continue
		}
		if b.ordered[info.afterBody].Kind == ir.KindWhile {
			b.doTails[idx] = info.afterBody
			b.doTailSet[info.afterBody] = true
		}
	}
}

func (b *builder) previousNonSynthetic(idx int) int {
	for i := idx - 1; i >= 0; i-- {
		if !b.ordered[i].Synthetic {
			return i
		}
	}
	return -1
}

// branchEdges adds the false-branch edge of each if/else-if condition to the
// statement following its body (either the else chain or the join point).
func (b *builder) branchEdges() {
	for idx, stmt := range b.ordered {
		if stmt.Kind != ir.KindIf && stmt.Kind != ir.KindElseIf {
			continue
		}
		info, ok := b.control[idx]
		if !ok || info.afterBody < 0 {
			continue
		}
		b.g.addEdge(b.node(idx), b.node(info.afterBody))
	}
}

// findElseChainJoin follows an else/else-if chain starting at idx and
// returns the index of the first statement after the whole chain, or -1.
func (b *builder) findElseChainJoin(idx int) int {
	current := idx
	join := -1
	for current >= 0 {
		kind := b.ordered[current].Kind
		if kind != ir.KindElse && kind != ir.KindElseIf {
			break
		}
		info, ok := b.control[current]
		if !ok {
			break
		}
		join = info.afterBody
		if join < 0 {
			break
		}
		if k := b.ordered[join].Kind; k == ir.KindElse || k == ir.KindElseIf {
			current = join
			continue
		}
		return join
	}
	return join
}

// elseChainJoins reroutes the fallthrough at the end of each if/else-if/else
// body so it skips over subsequent else blocks to the chain's join point.
func (b *builder) elseChainJoins() {
	for idx, stmt := range b.ordered {
		switch stmt.Kind {
		case ir.KindIf, ir.KindElseIf, ir.KindElse:
		default:
			continue
		}
		info, ok := b.control[idx]
		if !ok || info.bodyEnd < 0 || info.afterBody < 0 {
			continue
		}
		if k := b.ordered[info.afterBody].Kind; k != ir.KindElse && k != ir.KindElseIf {
			continue
		}
		join := b.findElseChainJoin(info.afterBody)
		if join < 0 {
			continue
		}
		b.g.removeEdge(b.node(info.bodyEnd), b.node(info.afterBody))
		b.g.addEdge(b.node(info.bodyEnd), b.node(join))
	}
}

// loopEdges adds, for each while/for header, the exit edge past the body and
// the back edge from the body's end, removing the body's fallthrough out of
// the loop.
func (b *builder) loopEdges() {
	for idx, stmt := range b.ordered {
		if stmt.Kind != ir.KindWhile && stmt.Kind != ir.KindFor {
			continue
		}
		if b.doTailSet[idx] {
			continue
		}
		info, ok := b.control[idx]
		if !ok || info.bodyStart < 0 || info.bodyEnd < 0 {
			continue
		}
		if info.afterBody >= 0 {
			b.g.addEdge(b.node(idx), b.node(info.afterBody))
		}
		b.g.addEdge(b.node(info.bodyEnd), b.node(idx))
		if info.afterBody >= 0 {
			b.g.removeEdge(b.node(info.bodyEnd), b.node(info.afterBody))
		}
	}
}

// switchEdges adds dispatch edges from each switch header to its case and
// default labels, plus the fallthrough edge past the switch body.
func (b *builder) switchEdges() {
	for idx, stmt := range b.ordered {
		if stmt.Kind != ir.KindSwitch {
			continue
		}
		info, ok := b.control[idx]
		if !ok || info.bodyStart < 0 || info.bodyEnd < 0 {
			continue
		}
		if info.afterBody >= 0 {
			b.g.addEdge(b.node(idx), b.node(info.afterBody))
		}
		for c := info.bodyStart; c <= info.bodyEnd; c++ {
			if k := b.ordered[c].Kind; k == ir.KindCase || k == ir.KindDefault {
				b.g.addEdge(b.node(idx), b.node(c))
			}
		}
	}
}

// doWhileEdges adds the back edge from each trailing while condition to the
// start of its do body.
func (b *builder) doWhileEdges() {
	for doIdx, tailIdx := range b.doTails {
		info, ok := b.control[doIdx]
		if !ok || info.bodyStart < 0 {
			continue
		}
		b.g.addEdge(b.node(tailIdx), b.node(info.bodyStart))
	}
}

// jumpEdges resolves break, continue, goto, if_goto and switch_goto targets
// while maintaining a stack of enclosing loop/switch contexts.
func (b *builder) jumpEdges() error {
	b.labels = make(map[string]int)
	for idx, stmt := range b.ordered {
		if stmt.Kind == ir.KindLabel && stmt.Label != "" {
			b.labels[stmt.Label] = idx
		}
	}

	resolve := func(stmt ir.Statement, label string) (int, error) {
		target, ok := b.labels[label]
		if !ok {
			return 0, fmt.Errorf("%w: statement %d jumps to undefined label %q in %q",
				ErrMalformedProcedure, stmt.ID, label, b.g.proc)
		}
		return target, nil
	}

	isLoop := func(k ir.Kind) bool {
		return k == ir.KindWhile || k == ir.KindFor || k == ir.KindDo
	}
	isBreakable := func(k ir.Kind) bool {
		return isLoop(k) || k == ir.KindSwitch
	}

	var stack []int
	for idx, stmt := range b.ordered {
		if isBreakable(stmt.Kind) {
			if _, ok := b.control[idx]; ok {
				stack = append(stack, idx)
			}
		}

		switch stmt.Kind {
		case ir.KindBreak:
			target := -1
			for i := len(stack) - 1; i >= 0; i-- {
				ctx := stack[i]
				if !isBreakable(b.ordered[ctx].Kind) {
					continue
				}
				if b.ordered[ctx].Kind == ir.KindDo {
					if tail, ok := b.doTails[ctx]; ok {
						if tail+1 < len(b.ordered) {
							target = tail + 1
						}
					} else {
						target = b.control[ctx].afterBody
					}
				} else {
					target = b.control[ctx].afterBody
				}
				break
			}
			if target >= 0 {
				b.g.addEdge(b.node(idx), b.node(target))
			}

		case ir.KindContinue:
			target := -1
			for i := len(stack) - 1; i >= 0; i-- {
				ctx := stack[i]
				if isLoop(b.ordered[ctx].Kind) {
					if tail, ok := b.doTails[ctx]; ok {
						target = tail
					} else {
						target = ctx
					}
					break
				}
			}
			if target >= 0 {
				b.g.addEdge(b.node(idx), b.node(target))
			}

		case ir.KindGoto, ir.KindIfGoto:
			if stmt.Target != "" {
				target, err := resolve(stmt, stmt.Target)
				if err != nil {
					return err
				}
				b.g.addEdge(b.node(idx), b.node(target))
			}

		case ir.KindSwGoto:
			for _, label := range stmt.Targets {
				target, err := resolve(stmt, label)
				if err != nil {
					return err
				}
				b.g.addEdge(b.node(idx), b.node(target))
			}
		}

		for len(stack) > 0 {
			top := b.control[stack[len(stack)-1]]
			if top.bodyEnd < 0 || top.bodyEnd != idx {
				break
			}
			stack = stack[:len(stack)-1]
		}
	}

	return nil
}
