// Package nodelink renders funnels as node-link diagrams.
//
// # Overview
//
// Each funnel step becomes a rounded box filled with its node type's colour,
// laid out left to right in flow order by Graphviz. Edges take the colour of
// their source node, matching the editor canvas.
//
// # Usage
//
//	dot := nodelink.ToDOT(nodes, edges, nodelink.Options{Issues: report.Issues})
//	svg, err := nodelink.RenderSVG(dot)
//
// # Issue Highlighting
//
// When [Options.Issues] is set, nodes named by an issue get a thick outline:
// red for errors, amber for warnings. A node with both is drawn as an error.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion lives in package render and requires
// librsvg (rsvg-convert).
package nodelink
