// Package editor runs a funnel editing session.
//
// A [Session] ties together the graph store, the connection rules, the label
// generator, the validator and a storage backend. It is what a rendering
// front end talks to: the CLI, the terminal editor and the HTTP API all drive
// the same operations and read back the same [View].
//
// # Lifecycle
//
//	st, _ := storage.Open(ctx, storage.Config{Backend: "file", Dir: dir})
//	s, err := editor.Open(ctx, st, editor.Options{Workspace: "default"})
//	node, err := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{X: 40, Y: 40})
//	view := s.View()
//
// Open loads the graph and counter slots of the workspace. A graph slot that
// cannot be decoded is logged and ignored, so a damaged file never locks the
// user out of the editor.
//
// # Persistence
//
// Every committed mutation writes both slots before returning. Rejected or
// invalid operations leave memory and storage untouched.
//
// # Concurrency
//
// Sessions are safe for concurrent use. Mutations are serialized, and the
// validation report observed through [Session.View] is always the one
// produced by the most recent committed mutation.
package editor
