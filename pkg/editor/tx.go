package editor

import (
	"context"
	"io"

	"github.com/matzehuels/funnelkit/pkg/funnel"
)

// Tx runs session mutations while [Session.Update] holds the session lock.
// A Tx must not be used after the function it was passed to returns.
type Tx struct {
	ctx context.Context
	s   *Session
}

// Update runs fn with the session locked and returns the view of the funnel
// fn left behind. No other mutation can run between fn and the view, so the
// view is exactly the state fn produced. The view is returned even when fn
// fails; a failed mutation has already been undone by then.
func (s *Session) Update(ctx context.Context, fn func(tx *Tx) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(&Tx{ctx: ctx, s: s})
	return buildView(s.graph.Nodes(), s.graph.Edges(), s.monitor.Report()), err
}

// Drop is [Session.Drop] inside a transaction.
func (tx *Tx) Drop(t funnel.NodeType, pos funnel.Position) (funnel.Node, error) {
	return tx.s.drop(tx.ctx, t, pos)
}

// Connect is [Session.Connect] inside a transaction.
func (tx *Tx) Connect(source, target string) (funnel.Edge, error) {
	return tx.s.connect(tx.ctx, source, target)
}

// Delete is [Session.Delete] inside a transaction.
func (tx *Tx) Delete(ids ...string) (nodes, edges int, err error) {
	return tx.s.delete(tx.ctx, ids)
}

// Disconnect is [Session.Disconnect] inside a transaction.
func (tx *Tx) Disconnect(edgeID string) error {
	return tx.s.disconnect(tx.ctx, edgeID)
}

// Relabel is [Session.Relabel] inside a transaction.
func (tx *Tx) Relabel(id, label, buttonLabel string) (funnel.Node, error) {
	return tx.s.relabel(tx.ctx, id, label, buttonLabel)
}

// Clear is [Session.Clear] inside a transaction.
func (tx *Tx) Clear() error {
	return tx.s.clear(tx.ctx)
}

// Import is [Session.Import] inside a transaction. The document is decoded
// under the lock.
func (tx *Tx) Import(r io.Reader) error {
	doc, err := tx.s.readImport(r)
	if err != nil {
		return err
	}
	return tx.s.replace(tx.ctx, doc)
}
