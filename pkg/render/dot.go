// Package render turns tree decompositions and factor graphs into
// Graphviz DOT and SVG for inspection.
//
// A rendered decomposition shows one box per bucket with its node
// variable, separator and clamped variables; edges run from each node to
// its parent. Factor graphs render variables as circles and tables as
// boxes connected to their scope.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/factortree/pkg/decomp"
	"github.com/matzehuels/factortree/pkg/model"
)

// DecompToDOT converts a tree decomposition to Graphviz DOT format.
func DecompToDOT(d *decomp.TreeDecomp) string {
	var buf bytes.Buffer
	buf.WriteString("digraph decomp {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for id := 0; id < d.Size(); id++ {
		n := d.Node(id)
		label := fmt.Sprintf("x%d", n.Var)
		if len(n.SepVars) > 0 {
			label += fmt.Sprintf("\\nsep %s", varList(n.SepVars))
		}
		if len(n.ClampedVars) > 0 {
			label += fmt.Sprintf("\\nclamp %s", varList(n.ClampedVars))
		}
		attrs := fmt.Sprintf("label=\"%s\"", label)
		if n.Parent < 0 {
			attrs += ", fillcolor=lightgrey"
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", id, attrs)
	}

	buf.WriteString("\n")
	for id := 0; id < d.Size(); id++ {
		if p := d.Node(id).Parent; p >= 0 {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", id, p)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// FactorGraphToDOT converts table specs to a DOT factor graph: circles
// for variables, boxes for factor tables.
func FactorGraphToDOT(specs []model.TableSpec) string {
	var buf bytes.Buffer
	buf.WriteString("graph factors {\n")
	buf.WriteString("  node [fontsize=12];\n")
	buf.WriteString("\n")

	seen := map[int]bool{}
	for _, s := range specs {
		for _, v := range s.Scope {
			if !seen[v] {
				seen[v] = true
				fmt.Fprintf(&buf, "  v%d [shape=circle, label=\"x%d\"];\n", v, v)
			}
		}
	}
	buf.WriteString("\n")
	for i, s := range specs {
		fmt.Fprintf(&buf, "  f%d [shape=box, style=filled, fillcolor=lightgrey, label=\"f%d\"];\n", i, i)
		for _, v := range s.Scope {
			fmt.Fprintf(&buf, "  f%d -- v%d;\n", i, v)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Stats summarises a tree decomposition for human-readable output.
type Stats struct {
	Nodes      int
	Roots      int
	Clamped    []int
	Complexity float64
}

// DecompStats computes the summary of a decomposition.
func DecompStats(d *decomp.TreeDecomp) Stats {
	return Stats{
		Nodes:      d.Size(),
		Roots:      len(d.Roots()),
		Clamped:    d.ClampedVars(),
		Complexity: d.Complexity(),
	}
}

func varList(vars []int) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("x%d", v)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
