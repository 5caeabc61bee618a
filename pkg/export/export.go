// Package export renders a domain tree as Graphviz DOT and SVG.
//
// Exported trees are read-only artifacts for sharing or embedding; the
// interactive bubble layout lives in pkg/layout and is not used here —
// Graphviz computes its own hierarchical placement.
package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/orbit/pkg/domain"
)

// Options configures tree rendering.
type Options struct {
	// Detailed includes node source and cached position in labels.
	// When false, only the topic name is shown.
	Detailed bool

	// MaxDepth limits how deep the exported tree goes. Zero means no limit.
	MaxDepth int
}

// ToDOT converts a domain tree to Graphviz DOT format.
// Unresolved nodes are rendered with dashed outlines and grey fill so a
// reader can tell explored territory from the frontier.
func ToDOT(root *domain.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	writeNodes(&buf, root, 0, opts)
	buf.WriteString("\n")
	writeEdges(&buf, root, 0, opts)

	buf.WriteString("}\n")
	return buf.String()
}

func writeNodes(buf *bytes.Buffer, n *domain.Node, depth int, opts Options) {
	if n == nil || (opts.MaxDepth > 0 && depth > opts.MaxDepth) {
		return
	}
	label := fmtLabel(n, opts.Detailed)
	attrs := fmtAttrs(n, label)
	fmt.Fprintf(buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))

	for _, c := range n.Children.Nodes() {
		writeNodes(buf, c, depth+1, opts)
	}
}

func writeEdges(buf *bytes.Buffer, n *domain.Node, depth int, opts Options) {
	if n == nil || (opts.MaxDepth > 0 && depth >= opts.MaxDepth) {
		return
	}
	for _, c := range n.Children.Nodes() {
		fmt.Fprintf(buf, "  %q -> %q;\n", n.ID, c.ID)
		writeEdges(buf, c, depth+1, opts)
	}
}

func fmtLabel(n *domain.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}

	parts := []string{fmt.Sprintf("source: %s", n.Source)}
	if n.Position != nil {
		parts = append(parts, fmt.Sprintf("pos: (%.1f, %.1f)", n.Position.X, n.Position.Y))
	}
	if !n.Children.Resolved() {
		parts = append(parts, "unresolved")
	}
	return n.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *domain.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !n.Children.Resolved() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
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
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root <svg> tag so the artifact scales
// cleanly when embedded: origin at zero, explicit width and height.
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
