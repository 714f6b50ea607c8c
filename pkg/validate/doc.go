// Package validate computes the structural issues of a funnel graph.
//
// # Rules
//
// Every node is checked in node order:
//
//   - Sales pages warn when they have no outgoing connection.
//   - Thank-you pages warn when they have no incoming connection.
//   - Order pages, upsells and downsells are an error when they have no
//     connections at all (orphaned), otherwise they warn about a missing
//     incoming or, failing that, a missing outgoing connection. A node is
//     reported at most once by these checks.
//
// After the per-node pass, each sales page with more than one outgoing
// connection gets a fan-out warning.
//
// # Reports
//
// [Validate] returns the complete, ordered issue list. [NewReport] wraps it
// with a [Status] so callers can tell an empty canvas from a clean funnel
// from one with issues. [Report.Head] supports issue panels that only show
// the first few entries.
//
// [Monitor] subscribes to a graph store and keeps the latest report, so the
// report always reflects the mutation that was committed last.
package validate
