// Package pkg provides the core libraries for Funnelkit, a sales funnel
// editor.
//
// # Overview
//
// A funnel is a small directed graph of pages a visitor moves through: a
// sales page, an order page, any number of upsells and downsells, and a
// thank-you page at the end. Funnelkit keeps that graph consistent while it
// is edited and reports the places where a visitor would get stuck.
//
// The pkg directory is organized into three areas:
//
//  1. Domain - [funnel], [rules], [validate] and [graph]
//  2. Session and persistence - [editor], [io] and [storage]
//  3. Outer surfaces - [api] and [render/nodelink]
//
// # Architecture
//
// Every change flows the same way:
//
//	CLI / terminal editor / HTTP API
//	         ↓
//	    [editor] session (serializes mutations)
//	         ↓
//	    [graph] store ── asks ──→ [rules]
//	         ↓ notifies
//	    [validate] monitor
//	         ↓
//	    [io] documents → [storage] slots
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/funnelkit/pkg/editor"
//	    "github.com/matzehuels/funnelkit/pkg/funnel"
//	    "github.com/matzehuels/funnelkit/pkg/storage"
//	)
//
//	s, _ := editor.Open(ctx, storage.NewMemoryStore(), editor.Options{})
//	sales, _ := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{})
//	thanks, _ := s.Drop(ctx, funnel.TypeThankYou, funnel.Position{X: 240})
//	_, _ = s.Connect(ctx, sales.ID, thanks.ID)
//	fmt.Println(s.Report().Status) // clean
//
// # Main Packages
//
// [funnel] - Node types and their templates, nodes, edges and the label
// counters that number upsells and downsells.
//
// [rules] - The connection rule engine. Thank-you pages are terminal.
//
// [validate] - Structural checks over a whole funnel, producing warnings and
// errors in a deterministic order.
//
// [graph] - The node/edge store. Deleting a node removes its edges in the
// same step, and every committed change notifies the validator.
//
// [editor] - An editing session: graph, rules, validation and persistence
// behind one mutex.
//
// [io] - The JSON funnel document and counter document.
//
// [storage] - Slot backends: files, memory, Redis and MongoDB.
//
// [api] - The JSON HTTP API used by browser-based editors.
//
// [render/nodelink] - Graphviz DOT and SVG output.
//
// [funnel]: https://pkg.go.dev/github.com/matzehuels/funnelkit/pkg/funnel
// [rules]: https://pkg.go.dev/github.com/matzehuels/funnelkit/pkg/rules
// [validate]: https://pkg.go.dev/github.com/matzehuels/funnelkit/pkg/validate
// [graph]: https://pkg.go.dev/github.com/matzehuels/funnelkit/pkg/graph
// [editor]: https://pkg.go.dev/github.com/matzehuels/funnelkit/pkg/editor
// [io]: https://pkg.go.dev/github.com/matzehuels/funnelkit/pkg/io
// [storage]: https://pkg.go.dev/github.com/matzehuels/funnelkit/pkg/storage
// [api]: https://pkg.go.dev/github.com/matzehuels/funnelkit/pkg/api
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/funnelkit/pkg/render/nodelink
package pkg
