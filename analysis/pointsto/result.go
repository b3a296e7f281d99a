package pointsto

import (
	"sort"

	"github.com/spakin/disjoint"
)

// Result holds the stable points-to graph of one procedure. It is read-only
// after Analyze returns.
type Result struct {
	proc string
	pts  map[string]map[string]bool
	vars map[string]bool

	approximate bool
	notes       []Note
}

// Procedure returns the name of the analyzed procedure.
func (r *Result) Procedure() string {
	return r.proc
}

// Approximate reports whether some construct was excluded from the
// abstraction, making the result an under-constrained over-approximation.
func (r *Result) Approximate() bool {
	return r.approximate
}

// Notes lists the excluded constructs.
func (r *Result) Notes() []Note {
	return r.notes
}

// Variables returns the pointer variables seen by the analysis, sorted.
func (r *Result) Variables() []string {
	vars := make([]string, 0, len(r.vars))
	for v := range r.vars {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// PointsTo returns the sorted allocation-site identifiers the variable may
// refer to.
func (r *Result) PointsTo(v string) []string {
	sites := make([]string, 0, len(r.pts[v]))
	for site := range r.pts[v] {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// MayAlias reports whether two variables may refer to the same allocation
// site.
func (r *Result) MayAlias(v, w string) bool {
	a, b := r.pts[v], r.pts[w]
	if len(a) > len(b) {
		a, b = b, a
	}
	for site := range a {
		if b[site] {
			return true
		}
	}
	return false
}

// Aliases returns the other variables sharing at least one allocation site
// with v, sorted.
func (r *Result) Aliases(v string) []string {
	var aliases []string
	for w := range r.vars {
		if w != v && r.MayAlias(v, w) {
			aliases = append(aliases, w)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// AliasClasses partitions the pointer variables into may-alias classes: the
// transitive closure of the pairwise overlap relation, computed with
// union-find. This is coarser than Aliases but gives a disjoint partition
// suitable for reporting.
func (r *Result) AliasClasses() [][]string {
	vars := r.Variables()
	elems := make(map[string]*disjoint.Element, len(vars))
	for _, v := range vars {
		elems[v] = disjoint.NewElement()
	}
	for i, v := range vars {
		for _, w := range vars[i+1:] {
			if r.MayAlias(v, w) {
				disjoint.Union(elems[v], elems[w])
			}
		}
	}

	byRoot := make(map[*disjoint.Element][]string)
	for _, v := range vars {
		root := elems[v].Find()
		byRoot[root] = append(byRoot[root], v)
	}

	classes := make([][]string, 0, len(byRoot))
	for _, class := range byRoot {
		sort.Strings(class)
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool {
		return classes[i][0] < classes[j][0]
	})
	return classes
}
