// Package reporting renders analysis results as human-readable text and as
// DOT graphs (one node per CFG node, one edge per CFG edge, facts as node
// annotations).
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/spartools/spar/analysis/reachdefs"
	"github.com/spartools/spar/analysis/runner"
)

var colorize = struct {
	Header func(...interface{}) string
	Status func(...interface{}) string
	Stmt   func(...interface{}) string
	Warn   func(...interface{}) string
}{
	Header: color.New(color.Bold).SprintFunc(),
	Status: color.New(color.FgGreen).SprintFunc(),
	Stmt:   color.New(color.FgCyan).SprintFunc(),
	Warn:   color.New(color.FgHiRed).SprintFunc(),
}

// WriteText writes a per-procedure report: each statement with its
// successors and the requested facts, followed by a points-to summary.
func WriteText(w io.Writer, res *runner.ProcedureResult) error {
	status := colorize.Status(res.Status.String())
	if res.Status != runner.StatusDone {
		status = colorize.Warn(res.Status.String())
	}
	fmt.Fprintf(w, "%s %s (%s)\n", colorize.Header("procedure"), res.Procedure, status)

	if res.Err != nil {
		fmt.Fprintf(w, "  error: %v\n", res.Err)
	}
	if res.Graph == nil {
		return nil
	}

	for _, n := range res.Graph.Nodes() {
		succs := make([]string, 0, len(n.Successors()))
		for _, s := range n.Successors() {
			succs = append(succs, fmt.Sprint(s.ID()))
		}
		fmt.Fprintf(w, "  [%d] %s\n", n.ID(), colorize.Stmt(n.Stmt().Text))
		if len(succs) > 0 {
			fmt.Fprintf(w, "      succ: %s\n", strings.Join(succs, ", "))
		}
		if res.Live != nil {
			fmt.Fprintf(w, "      live-in: %s  live-out: %s\n", res.Live.Before(n), res.Live.After(n))
		}
		if res.Reaching != nil {
			fmt.Fprintf(w, "      reach-in: %s  reach-out: %s\n",
				defsString(res.Reaching.In(n)), defsString(res.Reaching.Out(n)))
		}
	}

	if res.Pointer != nil {
		writePointer(w, res)
	}
	return nil
}

func writePointer(w io.Writer, res *runner.ProcedureResult) {
	pt := res.Pointer
	fmt.Fprintf(w, "  %s\n", colorize.Header("points-to"))
	for _, v := range pt.Variables() {
		fmt.Fprintf(w, "    %s -> %s", v, siteString(pt.PointsTo(v)))
		if aliases := pt.Aliases(v); len(aliases) > 0 {
			fmt.Fprintf(w, "  aliases: %s", strings.Join(aliases, ", "))
		}
		fmt.Fprintln(w)
	}
	if pt.Approximate() {
		fmt.Fprintf(w, "    %s\n", colorize.Warn("result is approximate:"))
		for _, note := range pt.Notes() {
			fmt.Fprintf(w, "      %s\n", note)
		}
	}
}

func defsString(defs []reachdefs.Def) string {
	if len(defs) == 0 {
		return "∅"
	}
	strs := make([]string, len(defs))
	for i, d := range defs {
		strs[i] = d.String()
	}
	return "{ " + strings.Join(strs, ", ") + " }"
}

func siteString(sites []string) string {
	if len(sites) == 0 {
		return "∅"
	}
	return "{ " + strings.Join(sites, ", ") + " }"
}
