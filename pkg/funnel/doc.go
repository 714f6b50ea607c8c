// Package funnel defines the vocabulary of a sales funnel graph: the five
// node types and their templates, nodes and edges, and the label generator.
//
// # Node Types
//
// A funnel is built from five step types:
//
//   - [TypeSalesPage]: entry point presenting the offer
//   - [TypeOrderPage]: checkout step
//   - [TypeUpsell] and [TypeDownsell]: repeatable offers, numbered on creation
//   - [TypeThankYou]: terminal step, never the source of an edge
//
// Each type has an immutable [Template] (default label, button label, icon,
// colour, description) returned by [TemplateFor].
//
// # Labels
//
// [NextLabel] derives the label for a new node. Repeatable types are numbered
// from a per-type [Counters] value that is threaded through explicitly:
//
//	label, counters := funnel.NextLabel(funnel.TypeUpsell, counters) // "Upsell 1"
//	label, counters = funnel.NextLabel(funnel.TypeUpsell, counters)  // "Upsell 2"
//
// Counters never decrease, so a number is never handed out twice.
// [ReconcileCounters] lifts counters above the numbers present in an
// imported document.
//
// # Positions
//
// [Position] is owned by whatever draws the funnel. The core copies it
// around but never reads it.
package funnel
