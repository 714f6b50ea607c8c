package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/funnelkit/pkg/funnel"
	"github.com/matzehuels/funnelkit/pkg/validate"
)

// Outline colours for nodes with issues.
const (
	ErrorColor   = "#dc2626"
	WarningColor = "#d97706"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node type and button label under each label.
	Detailed bool
	// Issues highlights the nodes they refer to.
	Issues []validate.Issue
}

// ToDOT converts a funnel to Graphviz DOT source.
// The result can be rendered with [RenderSVG] or any Graphviz tool.
func ToDOT(nodes []funnel.Node, edges []funnel.Edge, opts Options) string {
	severity := worstSeverity(opts.Issues)
	colors := make(map[string]string, len(nodes))

	var buf bytes.Buffer
	buf.WriteString("digraph funnel {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontcolor=white, fontsize=14, margin=\"0.25,0.12\"];\n")
	buf.WriteString("  edge [penwidth=2, arrowsize=0.8];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		colors[n.ID] = funnel.ColorFor(n.Type())
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), severity[n.ID])
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		color, ok := colors[e.Source]
		if !ok {
			color = funnel.ColorFor("")
		}
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.Source, e.Target, color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n funnel.Node, detailed bool) string {
	if !detailed {
		return n.Label()
	}
	tpl, _ := funnel.TemplateFor(n.Type())
	return n.Label() + "\n" + tpl.Label + "\n[" + n.Data.ButtonLabel + "]"
}

func fmtAttrs(n funnel.Node, label string, sev validate.Severity) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", funnel.ColorFor(n.Type())),
	}
	switch sev {
	case validate.SeverityError:
		attrs = append(attrs, fmt.Sprintf("color=%q", ErrorColor), "penwidth=4")
	case validate.SeverityWarning:
		attrs = append(attrs, fmt.Sprintf("color=%q", WarningColor), "penwidth=3")
	default:
		attrs = append(attrs, "color=white", "penwidth=1")
	}
	return attrs
}

func worstSeverity(issues []validate.Issue) map[string]validate.Severity {
	out := make(map[string]validate.Severity, len(issues))
	for _, is := range issues {
		if is.NodeID == "" || out[is.NodeID] == validate.SeverityError {
			continue
		}
		out[is.NodeID] = is.Severity
	}
	return out
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

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the SVG scales in browsers.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
