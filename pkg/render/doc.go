// Package render provides visual output for funnel graphs.
//
// # Overview
//
// Funnels are drawn as left-to-right node-link diagrams by the [nodelink]
// subpackage, which produces Graphviz DOT and renders it to SVG in process.
// This package adds generic format conversion on top:
//
//	dot := nodelink.ToDOT(nodes, edges, nodelink.Options{Issues: issues})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert (from librsvg):
// brew install librsvg (macOS), apt install librsvg2-bin (Linux).
//
// [nodelink]: github.com/matzehuels/funnelkit/pkg/render/nodelink
package render
