package editor

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/funnel"
	"github.com/matzehuels/funnelkit/pkg/graph"
	fio "github.com/matzehuels/funnelkit/pkg/io"
	"github.com/matzehuels/funnelkit/pkg/observability"
	"github.com/matzehuels/funnelkit/pkg/storage"
	"github.com/matzehuels/funnelkit/pkg/validate"
)

// Options configures [Open].
type Options struct {
	// Workspace selects the storage slots. Empty means "default".
	Workspace string
	// Logger receives session events. Nil means log.Default().
	Logger *log.Logger
	// IDFunc overrides node and edge id generation.
	IDFunc func() string
}

// Session is one open funnel.
type Session struct {
	mu      sync.Mutex
	store   storage.Store
	slots   storage.Slots
	graph   *graph.Store
	monitor *validate.Monitor
	logger  *log.Logger
}

// Open loads the workspace from st and starts a session.
//
// Missing slots yield an empty funnel. A graph slot that fails to decode is
// logged and treated as empty; counters are then reconciled with whatever
// graph was loaded so numbering never falls behind existing labels.
func Open(ctx context.Context, st storage.Store, opts Options) (*Session, error) {
	slots, err := storage.NewSlots(opts.Workspace)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	doc, err := loadGraph(ctx, st, slots, logger)
	if err != nil {
		return nil, err
	}
	counters, err := loadCounters(ctx, st, slots, logger)
	if err != nil {
		return nil, err
	}

	gopts := []graph.Option{graph.WithCounters(funnel.ReconcileCounters(counters, doc.Nodes))}
	if opts.IDFunc != nil {
		gopts = append(gopts, graph.WithIDFunc(opts.IDFunc))
	}
	s := &Session{
		store:   st,
		slots:   slots,
		graph:   graph.New(gopts...),
		monitor: validate.NewMonitor(),
		logger:  logger,
	}
	s.graph.Subscribe(s.monitor)
	if !doc.Empty() {
		s.graph.ReplaceAll(doc.Nodes, doc.Edges)
	}

	logger.Debugf("Opened workspace %q: %d nodes, %d edges", slots.Workspace, s.graph.NodeCount(), s.graph.EdgeCount())
	return s, nil
}

func loadGraph(ctx context.Context, st storage.Store, slots storage.Slots, logger *log.Logger) (fio.Document, error) {
	data, ok, err := st.Get(ctx, slots.GraphKey())
	if err != nil {
		return fio.Document{}, err
	}
	if !ok || len(bytes.TrimSpace(data)) == 0 {
		return fio.Document{}, nil
	}
	doc, err := fio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		logger.Warnf("Ignoring unreadable graph slot %s: %v", slots.GraphKey(), err)
		return fio.Document{}, nil
	}
	return doc, nil
}

func loadCounters(ctx context.Context, st storage.Store, slots storage.Slots, logger *log.Logger) (funnel.Counters, error) {
	data, ok, err := st.Get(ctx, slots.CountersKey())
	if err != nil {
		return nil, err
	}
	if !ok {
		return funnel.Counters{}, nil
	}
	c, err := fio.ReadCounters(bytes.NewReader(data))
	if err != nil {
		logger.Warnf("Ignoring unreadable counter slot %s: %v", slots.CountersKey(), err)
		return funnel.Counters{}, nil
	}
	return c, nil
}

// Workspace returns the workspace name.
func (s *Session) Workspace() string { return s.slots.Workspace }

// Drop adds a node of type t at pos, as when a palette item is dropped on
// the canvas.
func (s *Session) Drop(ctx context.Context, t funnel.NodeType, pos funnel.Position) (funnel.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drop(ctx, t, pos)
}

func (s *Session) drop(ctx context.Context, t funnel.NodeType, pos funnel.Position) (funnel.Node, error) {
	start, snap := time.Now(), s.graph.Snapshot()

	n, err := s.graph.AddNode(t, pos)
	if err != nil {
		return funnel.Node{}, errors.Wrap(errors.ErrCodeInvalidNodeType, err, "cannot add node of type %q", t)
	}
	if err := s.commit(ctx, "drop", start, snap); err != nil {
		return funnel.Node{}, err
	}
	return n, nil
}

// Connect adds an edge from source to target. A connection refused by the
// funnel rules returns a CONNECTION_REJECTED error carrying the rule's reason.
func (s *Session) Connect(ctx context.Context, source, target string) (funnel.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connect(ctx, source, target)
}

func (s *Session) connect(ctx context.Context, source, target string) (funnel.Edge, error) {
	start, snap := time.Now(), s.graph.Snapshot()

	e, err := s.graph.AddEdge(source, target)
	var rej *graph.Rejection
	switch {
	case stderrors.As(err, &rej):
		src, _ := s.graph.Node(source)
		s.logger.Infof("Rejected connection from %s: %s", src.Label(), rej.Reason)
		observability.Editor().OnRejected(ctx, string(src.Type()), rej.Reason)
		return funnel.Edge{}, errors.Wrap(errors.ErrCodeConnectionRejected, err, "%s", rej.Reason)
	case err != nil:
		return funnel.Edge{}, errors.Wrap(errors.ErrCodeNodeNotFound, err, "cannot connect %s to %s", source, target)
	}
	if err := s.commit(ctx, "connect", start, snap); err != nil {
		return funnel.Edge{}, err
	}
	return e, nil
}

// Delete removes the given nodes and every edge attached to them. Unknown ids
// are skipped; deleting nothing is not an error and does not touch storage.
func (s *Session) Delete(ctx context.Context, ids ...string) (nodes, edges int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(ctx, ids)
}

func (s *Session) delete(ctx context.Context, ids []string) (nodes, edges int, err error) {
	start, snap := time.Now(), s.graph.Snapshot()

	nodes, edges = s.graph.DeleteNodes(ids...)
	if nodes == 0 {
		return 0, 0, nil
	}
	if err := s.commit(ctx, "delete", start, snap); err != nil {
		return 0, 0, err
	}
	return nodes, edges, nil
}

// Disconnect removes a single edge.
func (s *Session) Disconnect(ctx context.Context, edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnect(ctx, edgeID)
}

func (s *Session) disconnect(ctx context.Context, edgeID string) error {
	start, snap := time.Now(), s.graph.Snapshot()

	if !s.graph.RemoveEdge(edgeID) {
		return errors.New(errors.ErrCodeEdgeNotFound, "edge %s not found", edgeID)
	}
	return s.commit(ctx, "disconnect", start, snap)
}

// Relabel changes a node's label and/or button label. Empty strings keep the
// current value. Labels are free text, so renaming an upsell never affects
// the numbering of new ones.
func (s *Session) Relabel(ctx context.Context, id, label, buttonLabel string) (funnel.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relabel(ctx, id, label, buttonLabel)
}

func (s *Session) relabel(ctx context.Context, id, label, buttonLabel string) (funnel.Node, error) {
	for _, l := range []string{label, buttonLabel} {
		if l == "" {
			continue
		}
		if err := errors.ValidateLabel(l); err != nil {
			return funnel.Node{}, err
		}
	}
	start, snap := time.Now(), s.graph.Snapshot()

	n, err := s.graph.UpdateNode(id, label, buttonLabel)
	if err != nil {
		return funnel.Node{}, errors.Wrap(errors.ErrCodeNodeNotFound, err, "node %s not found", id)
	}
	if label == "" && buttonLabel == "" {
		return n, nil
	}
	if err := s.commit(ctx, "relabel", start, snap); err != nil {
		return funnel.Node{}, err
	}
	return n, nil
}

// Clear removes every node and edge. Counters are kept.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clear(ctx)
}

func (s *Session) clear(ctx context.Context) error {
	start, snap := time.Now(), s.graph.Snapshot()

	s.graph.Clear()
	return s.commit(ctx, "clear", start, snap)
}

// Import replaces the funnel with the document read from r.
//
// A malformed document returns INVALID_DOCUMENT and leaves the current funnel
// unchanged. On success counters are raised past every numbered label in the
// document, so the next upsell after importing "Upsell 5" is "Upsell 6".
func (s *Session) Import(ctx context.Context, r io.Reader) error {
	doc, err := s.readImport(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(ctx, doc)
}

func (s *Session) readImport(r io.Reader) (fio.Document, error) {
	doc, err := fio.ReadJSON(r)
	if err != nil {
		s.logger.Infof("Import rejected: %s", errors.UserMessage(err))
		return fio.Document{}, err
	}
	return doc, nil
}

func (s *Session) replace(ctx context.Context, doc fio.Document) error {
	start, snap := time.Now(), s.graph.Snapshot()

	s.graph.ReplaceAll(doc.Nodes, doc.Edges)
	s.graph.SetCounters(funnel.ReconcileCounters(s.graph.Counters(), doc.Nodes))
	if err := s.commit(ctx, "import", start, snap); err != nil {
		return err
	}
	s.logger.Infof("Imported %d nodes, %d edges", len(doc.Nodes), len(doc.Edges))
	return nil
}

// Export writes the current funnel document to w.
func (s *Session) Export(w io.Writer) error {
	return fio.WriteJSON(s.Document(), w)
}

// Document returns the current funnel as a document.
func (s *Session) Document() fio.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fio.FromGraph(s.graph.Nodes(), s.graph.Edges())
}

// Snapshot returns the current document together with the report that
// describes it.
func (s *Session) Snapshot() (fio.Document, validate.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fio.FromGraph(s.graph.Nodes(), s.graph.Edges()), s.monitor.Report()
}

// Counters returns the current label counters.
func (s *Session) Counters() funnel.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Counters()
}

// Report returns the latest validation report.
func (s *Session) Report() validate.Report {
	return s.monitor.Report()
}

// View returns the current nodes, edges and issues for display.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildView(s.graph.Nodes(), s.graph.Edges(), s.monitor.Report())
}

// commit persists both slots and reports the mutation. If saving fails the
// graph is put back to snap, so memory never holds a change the caller was
// told had failed. Callers hold s.mu.
func (s *Session) commit(ctx context.Context, kind string, start time.Time, snap graph.Snapshot) error {
	if err := s.persist(ctx); err != nil {
		s.logger.Errorf("Failed to save workspace %q: %v", s.slots.Workspace, err)
		s.graph.Restore(snap)
		// The graph slot may already hold the change.
		if rerr := s.persist(ctx); rerr != nil {
			s.logger.Warnf("Workspace %q may be out of date in storage: %v", s.slots.Workspace, rerr)
		}
		return err
	}

	report := s.monitor.Report()
	nodes, edges := s.graph.NodeCount(), s.graph.EdgeCount()

	s.logger.Debug("Committed mutation", "kind", kind, "nodes", nodes, "edges", edges, "issues", len(report.Issues))
	observability.Editor().OnMutation(ctx, kind, nodes, edges, time.Since(start))
	observability.Editor().OnValidate(ctx, report.Warnings(), report.Errors())
	return nil
}

func (s *Session) persist(ctx context.Context) error {
	var doc bytes.Buffer
	if err := fio.WriteJSON(fio.FromGraph(s.graph.Nodes(), s.graph.Edges()), &doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
	}
	if err := s.store.Set(ctx, s.slots.GraphKey(), doc.Bytes()); err != nil {
		return err
	}

	var counters bytes.Buffer
	if err := fio.WriteCounters(s.graph.Counters(), &counters); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode counters")
	}
	return s.store.Set(ctx, s.slots.CountersKey(), counters.Bytes())
}

// Close releases the underlying storage.
func (s *Session) Close() error {
	return s.store.Close()
}
