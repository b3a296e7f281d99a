package reachdefs

import (
	"sort"
	"strings"

	"github.com/spartools/spar/analysis/lattice"

	"golang.org/x/tools/container/intsets"
)

// defsLattice is the powerset lattice over a procedure's indexed definition
// domain. Elements are sparse integer sets over definition indices, which
// keeps gen/kill and join operations cheap even for large procedures.
type defsLattice struct {
	defs  []Def
	index map[Def]int
}

func (l *defsLattice) Bot() lattice.Element {
	return defSet{lat: l, bits: new(intsets.Sparse)}
}

func (l *defsLattice) Top() lattice.Element {
	bits := new(intsets.Sparse)
	for i := range l.defs {
		bits.Insert(i)
	}
	return defSet{lat: l, bits: bits}
}

// Eq is referential: definition domains are per-procedure instances and are
// never shared between graphs.
func (l *defsLattice) Eq(o lattice.Lattice) bool {
	o2, ok := o.(*defsLattice)
	return ok && l == o2
}

func (l *defsLattice) String() string {
	strs := make([]string, len(l.defs))
	for i, d := range l.defs {
		strs[i] = d.String()
	}
	return "℘({" + strings.Join(strs, ", ") + "})"
}

// defSet is an element of the definition lattice. The wrapped bitset is
// never mutated after construction.
type defSet struct {
	lat  *defsLattice
	bits *intsets.Sparse
}

func (e defSet) Lattice() lattice.Lattice {
	return e.lat
}

func (e1 defSet) Eq(e2 lattice.Element) bool {
	return e1.bits.Equals(other(e1, e2).bits)
}

func (e1 defSet) Leq(e2 lattice.Element) bool {
	return e1.bits.SubsetOf(other(e1, e2).bits)
}

func (e1 defSet) Geq(e2 lattice.Element) bool {
	return other(e1, e2).bits.SubsetOf(e1.bits)
}

func (e1 defSet) Join(e2 lattice.Element) lattice.Element {
	bits := new(intsets.Sparse)
	bits.Copy(e1.bits)
	bits.UnionWith(other(e1, e2).bits)
	return defSet{lat: e1.lat, bits: bits}
}

// Members returns the definitions in the set, sorted by variable name and
// then by defining statement id.
func (e defSet) Members() []Def {
	indices := e.bits.AppendTo(nil)
	defs := make([]Def, len(indices))
	for i, idx := range indices {
		defs[i] = e.lat.defs[idx]
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Var != defs[j].Var {
			return defs[i].Var < defs[j].Var
		}
		return defs[i].Node < defs[j].Node
	})
	return defs
}

func (e defSet) String() string {
	members := e.Members()
	if len(members) == 0 {
		return "∅"
	}
	strs := make([]string, len(members))
	for i, d := range members {
		strs[i] = d.String()
	}
	return "{ " + strings.Join(strs, ", ") + " }"
}

// other asserts that e2 comes from the same definition lattice as e1.
func other(e1 defSet, e2 lattice.Element) defSet {
	s2, ok := e2.(defSet)
	if !ok || s2.lat != e1.lat {
		panic("definition set operation across distinct lattices")
	}
	return s2
}
