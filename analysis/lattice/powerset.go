package lattice

import (
	"fmt"
	"sort"
	"strings"
)

// set represents a finite collection of elements.
type set = map[any]bool

// Powerset is the lattice of subsets of a finite domain, ordered by
// inclusion. Join is union and ⊥ is the empty set.
type Powerset struct {
	dom set
}

// NewPowerset constructs a powerset lattice over the given domain members.
// The members may have heterogeneous types.
func NewPowerset(dom ...any) *Powerset {
	p := &Powerset{dom: make(set, len(dom))}
	for _, x := range dom {
		p.dom[x] = true
	}
	return p
}

// NewStringPowerset constructs a powerset lattice over a string domain.
func NewStringPowerset(dom []string) *Powerset {
	p := &Powerset{dom: make(set, len(dom))}
	for _, x := range dom {
		p.dom[x] = true
	}
	return p
}

// Bot returns the ⊥ element, the empty set.
func (p *Powerset) Bot() Element {
	return Set{lat: p, set: make(set)}
}

// Top returns the ⊤ element, containing every member of the domain.
func (p *Powerset) Top() Element {
	top := make(set, len(p.dom))
	for x := range p.dom {
		top[x] = true
	}
	return Set{lat: p, set: top}
}

// Contains checks whether an element belongs to the domain.
func (p *Powerset) Contains(x any) bool {
	return p.dom[x]
}

// Eq checks whether another lattice is a powerset over the same domain.
func (p *Powerset) Eq(o Lattice) bool {
	if p == o {
		return true
	}
	p2, ok := o.(*Powerset)
	if !ok || len(p.dom) != len(p2.dom) {
		return false
	}
	for x := range p.dom {
		if !p2.dom[x] {
			return false
		}
	}
	return true
}

func (p *Powerset) String() string {
	return colorize.Lattice("℘") + "(" + setString(p.dom) + ")"
}

// MkSet creates an element of the powerset lattice from the given members.
// It panics when a member lies outside the domain.
func (p *Powerset) MkSet(members ...any) Set {
	el := Set{lat: p, set: make(set, len(members))}
	for _, x := range members {
		if !p.dom[x] {
			panic(fmt.Sprintf("element %v does not belong in sets of %s", x, p))
		}
		el.set[x] = true
	}
	return el
}

// MkStringSet creates an element from string members.
func (p *Powerset) MkStringSet(members []string) Set {
	anys := make([]any, len(members))
	for i, m := range members {
		anys[i] = m
	}
	return p.MkSet(anys...)
}

// Set is an element of a powerset lattice. Operations never mutate the
// receiver; they return fresh sets.
type Set struct {
	lat *Powerset
	set set
}

// Lattice returns the powerset lattice the set belongs to.
func (e Set) Lattice() Lattice {
	return e.lat
}

// Contains checks set membership.
func (e Set) Contains(x any) bool {
	return e.set[x]
}

// Size returns the number of members.
func (e Set) Size() int {
	n := 0
	for _, in := range e.set {
		if in {
			n++
		}
	}
	return n
}

// Members returns the members sorted by their string representation.
func (e Set) Members() []any {
	members := make([]any, 0, len(e.set))
	for x, in := range e.set {
		if in {
			members = append(members, x)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return fmt.Sprint(members[i]) < fmt.Sprint(members[j])
	})
	return members
}

// Strings returns the members as sorted strings.
func (e Set) Strings() []string {
	members := e.Members()
	strs := make([]string, len(members))
	for i, m := range members {
		strs[i] = fmt.Sprint(m)
	}
	return strs
}

// Add returns a copy of the set extended with x.
func (e Set) Add(x any) Set {
	if !e.lat.dom[x] {
		panic(fmt.Sprintf("element %v does not belong in sets of %s", x, e.lat))
	}
	return e.update(x, true)
}

// Remove returns a copy of the set without x.
func (e Set) Remove(x any) Set {
	return e.update(x, false)
}

func (e Set) update(x any, in bool) Set {
	next := make(set, len(e.set)+1)
	for y, b := range e.set {
		if b {
			next[y] = true
		}
	}
	if in {
		next[x] = true
	} else {
		delete(next, x)
	}
	return Set{lat: e.lat, set: next}
}

func (e1 Set) Eq(e2 Element) bool {
	checkLatticeMatch(e1.lat, e2.Lattice(), "=")
	return e1.Geq(e2) && e1.Leq(e2)
}

func (e1 Set) Geq(e2 Element) bool {
	checkLatticeMatch(e1.lat, e2.Lattice(), "⊒")
	s2, ok := e2.(Set)
	if !ok {
		panic(errInternal)
	}
	for x, in := range s2.set {
		if in && !e1.set[x] {
			return false
		}
	}
	return true
}

func (e1 Set) Leq(e2 Element) bool {
	checkLatticeMatch(e1.lat, e2.Lattice(), "⊑")
	s2, ok := e2.(Set)
	if !ok {
		panic(errInternal)
	}
	for x, in := range e1.set {
		if in && !s2.set[x] {
			return false
		}
	}
	return true
}

// Join computes set union.
func (e1 Set) Join(e2 Element) Element {
	checkLatticeMatch(e1.lat, e2.Lattice(), "⊔")
	s2, ok := e2.(Set)
	if !ok {
		panic(errInternal)
	}

	joined := make(set, len(e1.set)+len(s2.set))
	for x, in := range e1.set {
		if in {
			joined[x] = true
		}
	}
	for x, in := range s2.set {
		if in {
			joined[x] = true
		}
	}
	return Set{lat: e1.lat, set: joined}
}

func (e Set) String() string {
	return setString(e.set)
}

func setString(s set) string {
	strs := []string{}
	for x, in := range s {
		if in {
			strs = append(strs, fmt.Sprint(x))
		}
	}
	if len(strs) == 0 {
		return colorize.Element("∅")
	}
	sort.Strings(strs)
	return "{ " + strings.Join(strs, ", ") + " }"
}
