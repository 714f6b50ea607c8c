// Package graph provides the node/edge store behind a funnel editor.
//
// # Overview
//
// A [Store] owns the nodes, edges and label counters of one funnel. It is the
// only place the graph is mutated, and it keeps three guarantees:
//
//   - Edges always reference existing nodes. [Store.DeleteNodes] removes the
//     nodes and every edge touching them in one step.
//   - No edge ever leaves a thank-you page. [Store.AddEdge] asks package
//     rules before inserting and returns a [*Rejection] otherwise.
//   - Label counters only grow, so "Upsell 3" is never handed out twice.
//
// # Basic Usage
//
//	s := graph.New()
//	sales, _ := s.AddNode(funnel.TypeSalesPage, funnel.Position{X: 0, Y: 0})
//	order, _ := s.AddNode(funnel.TypeOrderPage, funnel.Position{X: 200, Y: 0})
//	_, err := s.AddEdge(sales.ID, order.ID)
//
// # Change Notification
//
// A single [Listener] may be registered with [Store.Subscribe]. It is called
// synchronously after each committed mutation, with copies of the resulting
// nodes and edges, so a subscribed validator always sees the state produced
// by the mutation that just returned. Rejected or no-op calls do not notify.
//
// # Concurrency
//
// Store instances are not safe for concurrent use. Hosts that accept
// concurrent requests must serialize mutations; package editor does this
// with a mutex.
package graph
