// Package conflict renders which entities overlap as a Graphviz graph.
//
// Every entity taking part in at least one overlap becomes a node; every
// overlapping pair becomes an undirected edge labelled with the area of the
// shared rectangle. Entities that do not collide are left out unless
// [Options.All] is set.
package conflict

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/declutter/pkg/reposition"
)

// Options configures overlap graph rendering.
type Options struct {
	// All includes entities without overlaps as isolated nodes.
	All bool

	// Detailed adds the bounds and fix of each entity to its label.
	Detailed bool
}

// ToDOT converts overlapping pairs into Graphviz DOT format. The resulting
// string can be rendered with [RenderSVG].
func ToDOT(entities []reposition.Entity, pairs []reposition.Pair, opts Options) string {
	involved := make(map[int]bool)
	for _, p := range pairs {
		involved[p.I] = true
		involved[p.J] = true
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#e34a33\", fontsize=10];\n")
	buf.WriteString("\n")

	for i, e := range entities {
		if !opts.All && !involved[i] {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(e, opts.Detailed))}
		if !e.Movable() {
			attrs = append(attrs, "fillcolor=\"#bdbdbd\"", "style=\"rounded,filled,bold\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(i), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, p := range pairs {
		area := (p.Area.Max[0] - p.Area.Min[0]) * (p.Area.Max[1] - p.Area.Min[1])
		fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", nodeID(p.I), nodeID(p.J), strconv.FormatFloat(area, 'g', 4, 64))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeID keys nodes by index so duplicate entity ids stay distinct.
func nodeID(i int) string {
	return "e" + strconv.Itoa(i)
}

func fmtLabel(e reposition.Entity, detailed bool) string {
	name := e.Label
	if name == "" {
		name = e.ID
	}
	if !detailed {
		return name
	}

	parts := []string{fmt.Sprintf("(%g,%g)-(%g,%g)", e.Bounds.Min[0], e.Bounds.Min[1], e.Bounds.Max[0], e.Bounds.Max[1])}
	if e.Fix != reposition.FixNone {
		parts = append(parts, "fix: "+string(e.Fix))
	}
	if e.MaxDistance != nil {
		parts = append(parts, fmt.Sprintf("max: %g", *e.MaxDistance))
	}
	return name + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
