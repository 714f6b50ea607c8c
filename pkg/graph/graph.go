package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/funnelkit/pkg/funnel"
	"github.com/matzehuels/funnelkit/pkg/rules"
)

var (
	// ErrUnknownNodeType is returned by [Store.AddNode] when the type is not
	// one of the five funnel node types.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrUnknownSourceNode is returned by [Store.AddEdge] when the source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Store.AddEdge] when the target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownNode is returned by [Store.UpdateNode] when the node does
	// not exist.
	ErrUnknownNode = errors.New("unknown node")
)

// Rejection is returned by [Store.AddEdge] when the connection rules refuse
// an edge. The graph is left untouched.
type Rejection struct {
	Source string
	Target string
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("connection %s->%s rejected: %s", r.Source, r.Target, r.Reason)
}

// Listener is notified after every committed mutation with the resulting
// nodes (in insertion order) and edges. The slices are copies.
type Listener interface {
	OnChange(nodes []funnel.Node, edges []funnel.Edge)
}

// ListenerFunc adapts a function to [Listener].
type ListenerFunc func(nodes []funnel.Node, edges []funnel.Edge)

// OnChange calls f.
func (f ListenerFunc) OnChange(nodes []funnel.Node, edges []funnel.Edge) { f(nodes, edges) }

// Option configures a [Store].
type Option func(*Store)

// WithIDFunc replaces the id generator (uuid v4 by default).
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithCounters seeds the label counters, typically from persisted state.
func WithCounters(c funnel.Counters) Option {
	return func(s *Store) { s.counters = c.Clone() }
}

// Store holds the nodes, edges and label counters of one funnel.
//
// Nodes keep their insertion order, which is the order validation reports
// in. Every successful mutation notifies the subscribed [Listener]
// synchronously before the method returns; no-ops do not notify.
//
// The zero value is not usable - use New to create a valid Store.
// Store is not safe for concurrent use without external synchronization.
type Store struct {
	nodes    map[string]*funnel.Node
	order    []string
	edges    []funnel.Edge
	counters funnel.Counters
	listener Listener
	newID    func() string
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		nodes:    make(map[string]*funnel.Node),
		counters: funnel.Counters{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe sets the single listener, replacing any previous one.
// Passing nil removes it.
func (s *Store) Subscribe(l Listener) { s.listener = l }

func (s *Store) notify() {
	if s.listener != nil {
		s.listener.OnChange(s.Nodes(), s.Edges())
	}
}

// AddNode creates a node of type t at pos with a fresh id and a label from
// [funnel.NextLabel]. Repeatable types bump their counter.
func (s *Store) AddNode(t funnel.NodeType, pos funnel.Position) (funnel.Node, error) {
	if !t.Valid() {
		return funnel.Node{}, fmt.Errorf("%w: %q", ErrUnknownNodeType, t)
	}
	label, counters := funnel.NextLabel(t, s.counters)
	n := funnel.NewNode(s.freshNodeID(), t, pos, label)

	s.counters = counters
	s.insert(n)
	s.notify()
	return n, nil
}

func (s *Store) freshNodeID() string {
	for {
		id := s.newID()
		if _, exists := s.nodes[id]; !exists && id != "" {
			return id
		}
	}
}

func (s *Store) freshEdgeID() string {
	for {
		id := s.newID()
		if id != "" && !slices.ContainsFunc(s.edges, func(e funnel.Edge) bool { return e.ID == id }) {
			return id
		}
	}
}

func (s *Store) insert(n funnel.Node) {
	node := n
	s.nodes[n.ID] = &node
	s.order = append(s.order, n.ID)
}

// AddEdge connects source to target. Both nodes must exist; the connection
// rules then decide. A refusal is reported as a *Rejection and leaves the
// graph unchanged.
//
// Parallel edges and self-loops are accepted.
func (s *Store) AddEdge(source, target string) (funnel.Edge, error) {
	src, ok := s.nodes[source]
	if !ok {
		return funnel.Edge{}, fmt.Errorf("%w: %s", ErrUnknownSourceNode, source)
	}
	if _, ok := s.nodes[target]; !ok {
		return funnel.Edge{}, fmt.Errorf("%w: %s", ErrUnknownTargetNode, target)
	}

	proposed := funnel.Edge{Source: source, Target: target}
	if d := rules.CanConnect(*src, proposed); !d.Allowed {
		return funnel.Edge{}, &Rejection{Source: source, Target: target, Reason: d.Reason}
	}

	proposed.ID = s.freshEdgeID()
	s.edges = append(s.edges, proposed)
	s.notify()
	return proposed, nil
}

// DeleteNodes removes the listed nodes together with every edge that has one
// of them as source or target. Unknown ids are ignored. It returns how many
// nodes and edges were removed.
func (s *Store) DeleteNodes(ids ...string) (nodes, edges int) {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.nodes[id]; ok {
			doomed[id] = true
		}
	}
	if len(doomed) == 0 {
		return 0, 0
	}

	before := len(s.edges)
	s.edges = slices.DeleteFunc(s.edges, func(e funnel.Edge) bool {
		return doomed[e.Source] || doomed[e.Target]
	})
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return doomed[id] })
	for id := range doomed {
		delete(s.nodes, id)
	}

	s.notify()
	return len(doomed), before - len(s.edges)
}

// RemoveEdge removes the edge with the given id and reports whether it existed.
func (s *Store) RemoveEdge(id string) bool {
	before := len(s.edges)
	s.edges = slices.DeleteFunc(s.edges, func(e funnel.Edge) bool { return e.ID == id })
	if len(s.edges) == before {
		return false
	}
	s.notify()
	return true
}

// UpdateNode changes the label and button label of a node. Empty values keep
// the current text. Labels are free text; repeatable counters are untouched.
func (s *Store) UpdateNode(id, label, buttonLabel string) (funnel.Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return funnel.Node{}, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if label == "" && buttonLabel == "" {
		return *n, nil
	}
	if label != "" {
		n.Data.Label = label
	}
	if buttonLabel != "" {
		n.Data.ButtonLabel = buttonLabel
	}
	s.notify()
	return *n, nil
}

// ReplaceAll swaps the whole graph for nodes and edges, as done by an import.
// The data is trusted: connection rules are not re-checked and counters are
// left as they are. Later duplicates of a node id are dropped.
func (s *Store) ReplaceAll(nodes []funnel.Node, edges []funnel.Edge) {
	s.nodes = make(map[string]*funnel.Node, len(nodes))
	s.order = s.order[:0]
	for _, n := range nodes {
		if _, dup := s.nodes[n.ID]; dup {
			continue
		}
		s.insert(n)
	}
	s.edges = slices.Clone(edges)
	s.notify()
}

// Snapshot is a saved copy of a store's nodes, edges and counters.
type Snapshot struct {
	nodes    []funnel.Node
	edges    []funnel.Edge
	counters funnel.Counters
}

// Snapshot saves the current state for a later [Store.Restore].
func (s *Store) Snapshot() Snapshot {
	return Snapshot{nodes: s.Nodes(), edges: s.Edges(), counters: s.Counters()}
}

// Restore puts the store back to snap, counters included. It is the one
// way counters go down, and exists to undo a change that could not be
// saved; the listener is notified as for [Store.ReplaceAll].
func (s *Store) Restore(snap Snapshot) {
	s.counters = snap.counters.Clone()
	s.ReplaceAll(snap.nodes, snap.edges)
}

// Clear removes all nodes and edges. Counters survive, so numbering carries on.
func (s *Store) Clear() {
	if len(s.order) == 0 && len(s.edges) == 0 {
		return
	}
	s.nodes = make(map[string]*funnel.Node)
	s.order = nil
	s.edges = nil
	s.notify()
}

// Node returns the node with the given id.
func (s *Store) Node(id string) (funnel.Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return funnel.Node{}, false
	}
	return *n, true
}

// Nodes returns a copy of all nodes in insertion order.
func (s *Store) Nodes() []funnel.Node {
	out := make([]funnel.Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.nodes[id])
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (s *Store) Edges() []funnel.Edge { return slices.Clone(s.edges) }

// Counters returns a copy of the label counters.
func (s *Store) Counters() funnel.Counters { return s.counters.Clone() }

// SetCounters replaces the label counters. Values lower than the current
// ones are ignored so counters never go backwards.
func (s *Store) SetCounters(c funnel.Counters) {
	for t, v := range c {
		if v > s.counters[t] {
			s.counters[t] = v
		}
	}
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.order) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// Empty reports whether the graph has no nodes.
func (s *Store) Empty() bool { return len(s.order) == 0 }

// OutDegree returns the number of edges leaving id.
func (s *Store) OutDegree(id string) int {
	n := 0
	for _, e := range s.edges {
		if e.Source == id {
			n++
		}
	}
	return n
}

// InDegree returns the number of edges entering id.
func (s *Store) InDegree(id string) int {
	n := 0
	for _, e := range s.edges {
		if e.Target == id {
			n++
		}
	}
	return n
}
