package io

import (
	"github.com/matzehuels/funnelkit/pkg/funnel"
)

// Document is the serialized form of a funnel graph.
type Document struct {
	Nodes []funnel.Node `json:"nodes"`
	Edges []funnel.Edge `json:"edges"`
}

// FromGraph builds a document from the given nodes and edges. Nil slices are
// replaced by empty ones so the output always carries both arrays.
func FromGraph(nodes []funnel.Node, edges []funnel.Edge) Document {
	doc := Document{Nodes: nodes, Edges: edges}
	if doc.Nodes == nil {
		doc.Nodes = []funnel.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []funnel.Edge{}
	}
	return doc
}

// Empty reports whether the document has no nodes.
func (d Document) Empty() bool { return len(d.Nodes) == 0 }
