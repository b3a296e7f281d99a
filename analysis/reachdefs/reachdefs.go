// Package reachdefs implements reaching-definitions analysis: a forward
// may-analysis over (variable, defining-statement) pairs. A definition
// reaches a node when some path from the definition to the node contains no
// redefinition of the variable.
package reachdefs

import (
	"fmt"

	"github.com/spartools/spar/analysis/cfg"
	"github.com/spartools/spar/analysis/lattice"
	"github.com/spartools/spar/analysis/solver"

	"golang.org/x/tools/container/intsets"
)

// Def identifies one definition: variable Var defined by the statement with
// id Node.
type Def struct {
	Var  string
	Node int
}

func (d Def) String() string {
	return fmt.Sprintf("%s@%d", d.Var, d.Node)
}

type analysis struct {
	lat  *defsLattice
	gen  map[*cfg.Node]*intsets.Sparse
	kill map[*cfg.Node]*intsets.Sparse
}

func (a *analysis) Name() string {
	return "reaching-definitions"
}

func (a *analysis) Direction() solver.Direction {
	return solver.Forward
}

func (a *analysis) Lattice() lattice.Lattice {
	return a.lat
}

// Boundary: no definition reaches the procedure entry from outside.
func (a *analysis) Boundary(n *cfg.Node) lattice.Element {
	return a.lat.Bot()
}

// Transfer computes out = (in − kill) ∪ gen on the sparse bitsets.
func (a *analysis) Transfer(n *cfg.Node, in lattice.Element) lattice.Element {
	bits := new(intsets.Sparse)
	bits.Copy(in.(defSet).bits)
	if kill := a.kill[n]; kill != nil {
		bits.DifferenceWith(kill)
	}
	if gen := a.gen[n]; gen != nil {
		bits.UnionWith(gen)
	}
	return defSet{lat: a.lat, bits: bits}
}

// New returns the reaching-definitions problem instance for the graph. The
// definition domain is indexed up front and every node's gen/kill set is
// precomputed as a sparse bitset.
func New(g *cfg.Graph) solver.Analysis {
	lat := &defsLattice{index: make(map[Def]int)}
	byVar := make(map[string][]int) // var -> indices of its definitions

	g.ForEach(func(n *cfg.Node) {
		for _, v := range n.Defs() {
			d := Def{Var: v, Node: n.ID()}
			if _, ok := lat.index[d]; ok {
				continue
			}
			lat.index[d] = len(lat.defs)
			lat.defs = append(lat.defs, d)
			byVar[v] = append(byVar[v], lat.index[d])
		}
	})

	a := &analysis{
		lat:  lat,
		gen:  make(map[*cfg.Node]*intsets.Sparse),
		kill: make(map[*cfg.Node]*intsets.Sparse),
	}
	g.ForEach(func(n *cfg.Node) {
		if len(n.Defs()) == 0 {
			return
		}
		gen := new(intsets.Sparse)
		kill := new(intsets.Sparse)
		for _, v := range n.Defs() {
			gen.Insert(lat.index[Def{Var: v, Node: n.ID()}])
			for _, i := range byVar[v] {
				kill.Insert(i)
			}
		}
		a.gen[n] = gen
		a.kill[n] = kill
	})

	return a
}

// ReachingDefs wraps the solver result with definition accessors.
type ReachingDefs struct {
	lat *defsLattice
	res *solver.Result
}

// Analyze runs reaching-definitions analysis to a fixpoint over the graph.
func Analyze(g *cfg.Graph) (*ReachingDefs, error) {
	a := New(g).(*analysis)
	res, err := solver.Fixpoint(g, a)
	if err != nil {
		return nil, err
	}
	return &ReachingDefs{lat: a.lat, res: res}, nil
}

// In returns the definitions reaching the node, sorted by variable then
// defining statement.
func (rd *ReachingDefs) In(n *cfg.Node) []Def {
	return rd.res.Before(n).(defSet).Members()
}

// Out returns the definitions leaving the node.
func (rd *ReachingDefs) Out(n *cfg.Node) []Def {
	return rd.res.After(n).(defSet).Members()
}

// Result exposes the underlying solver result.
func (rd *ReachingDefs) Result() *solver.Result {
	return rd.res
}
