// Package lattice provides the abstract-fact domains for the data-flow
// analyses: a Lattice/Element pair of interfaces and a powerset lattice over
// a finite domain. Analyses may supply their own Element implementations as
// long as join is idempotent and monotone.
package lattice

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
)

// Lattice is a partially ordered fact domain with a least and greatest
// element.
type Lattice interface {
	// Bot returns the ⊥ element.
	Bot() Element
	// Top returns the ⊤ element.
	Top() Element

	Eq(Lattice) bool
	String() string
}

// Element is an abstract fact drawn from some lattice. All comparison and
// join operations panic when given elements of a different lattice; mixing
// domains is a programming error, not a recoverable condition.
type Element interface {
	Lattice() Lattice

	Eq(Element) bool
	Leq(Element) bool
	Geq(Element) bool

	// Join computes the least upper bound of the two elements.
	Join(Element) Element

	String() string
}

var errInternal = errors.New("internal lattice error")

// checkLatticeMatch panics when an operation mixes elements of two
// different lattices.
func checkLatticeMatch(l1, l2 Lattice, op string) {
	if !l1.Eq(l2) {
		panic(fmt.Sprintf("%s not defined for elements of %s and %s", op, l1, l2))
	}
}

var colorize = struct {
	Lattice func(...interface{}) string
	Element func(...interface{}) string
}{
	Lattice: color.New(color.FgHiBlue).SprintFunc(),
	Element: color.New(color.FgCyan).SprintFunc(),
}
