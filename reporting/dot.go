package reporting

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/template"

	"github.com/goccy/go-graphviz"

	"github.com/spartools/spar/analysis/runner"
)

const tmplNode = `{{define "node" -}}
	{{printf "%q [ label=%q ]" .ID .Label}}
{{- end}}`

const tmplEdge = `{{define "edge" -}}
	{{printf "%q -> %q" .From .To}}
{{- end}}`

const tmplGraph = `digraph {{printf "%q" .Title}} {
	label={{printf "%q" .Title}};
	labelloc="t";
	fontname="Arial";
	node [shape="box" fontname="Courier" margin="0.1,0.05"];

{{range .Nodes}}	{{template "node" .}}
{{end}}
{{- range .Edges}}	{{template "edge" .}}
{{end}}}
`

var dotTemplate = template.Must(template.Must(template.Must(
	template.New("graph").Parse(tmplGraph)).Parse(tmplNode)).Parse(tmplEdge))

type dotNode struct {
	ID    string
	Label string
}

type dotEdge struct {
	From, To string
}

type dotGraph struct {
	Title string
	Nodes []dotNode
	Edges []dotEdge
}

// DotGraph renders the procedure's CFG as a DOT digraph: one node per CFG
// node, one edge per CFG edge. With annotate set, node labels carry the
// computed facts.
func DotGraph(res *runner.ProcedureResult, annotate bool) ([]byte, error) {
	if res.Graph == nil {
		return nil, fmt.Errorf("procedure %s has no graph (%s)", res.Procedure, res.Status)
	}

	dg := dotGraph{Title: res.Procedure}
	for _, n := range res.Graph.Nodes() {
		label := fmt.Sprintf("%d: %s", n.ID(), n.Stmt().Text)
		if annotate {
			var facts []string
			if res.Live != nil {
				facts = append(facts, fmt.Sprintf("live: %s", res.Live.Before(n)))
			}
			if res.Reaching != nil {
				facts = append(facts, fmt.Sprintf("reach: %s", defsString(res.Reaching.In(n))))
			}
			if len(facts) > 0 {
				label += "\n" + strings.Join(facts, "\n")
			}
		}
		dg.Nodes = append(dg.Nodes, dotNode{ID: fmt.Sprint(n.ID()), Label: label})

		for _, succ := range n.Successors() {
			dg.Edges = append(dg.Edges, dotEdge{From: fmt.Sprint(n.ID()), To: fmt.Sprint(succ.ID())})
		}
	}

	var buf bytes.Buffer
	if err := dotTemplate.Execute(&buf, dg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// location of the dot executable for converting from .dot to an image;
// resolved once, usually /usr/bin/dot.
var dotExe string

// DotToImage renders DOT source to an image file, preferring the installed
// 'dot' binary and falling back to the go-graphviz library. It returns the
// written image path.
func DotToImage(outfname string, format string, dot []byte) (string, error) {
	if dotExe == "" {
		if exe, err := exec.LookPath("dot"); err == nil {
			dotExe = exe
		}
	}
	img := fmt.Sprintf("%s.%s", outfname, format)

	if dotExe != "" {
		cmd := exec.Command(dotExe, fmt.Sprintf("-T%s", format), "-o", img)
		cmd.Stdin = bytes.NewReader(dot)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("command %v: %w\n%s", cmd, err, stderr.String())
		}
		return img, nil
	}

	g := graphviz.New()
	graph, err := graphviz.ParseBytes(dot)
	if err != nil {
		return "", err
	}
	defer func() {
		graph.Close()
		g.Close()
	}()
	if err := g.RenderFilename(graph, graphviz.Format(format), img); err != nil {
		return "", err
	}
	return img, nil
}

// WriteDotFile writes DOT source next to the intended image output.
func WriteDotFile(outfname string, dot []byte) (string, error) {
	path := outfname + ".dot"
	if err := os.WriteFile(path, dot, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
