package editor

import (
	"github.com/matzehuels/funnelkit/pkg/funnel"
	"github.com/matzehuels/funnelkit/pkg/validate"
)

// NodeView is a node plus its display colour.
type NodeView struct {
	funnel.Node
	Color string `json:"color"`
}

// EdgeView is an edge coloured after its source node's type.
type EdgeView struct {
	funnel.Edge
	Color string `json:"color"`
}

// View is everything a front end needs to redraw the canvas and issue panel.
type View struct {
	Nodes  []NodeView       `json:"nodes"`
	Edges  []EdgeView       `json:"edges"`
	Issues []validate.Issue `json:"issues"`
	Status validate.Status  `json:"status"`
	Empty  bool             `json:"empty"`
}

func buildView(nodes []funnel.Node, edges []funnel.Edge, report validate.Report) View {
	v := View{
		Nodes:  make([]NodeView, 0, len(nodes)),
		Edges:  make([]EdgeView, 0, len(edges)),
		Issues: report.Issues,
		Status: report.Status,
		Empty:  len(nodes) == 0,
	}
	if v.Issues == nil {
		v.Issues = []validate.Issue{}
	}

	types := make(map[string]funnel.NodeType, len(nodes))
	for _, n := range nodes {
		types[n.ID] = n.Type()
		v.Nodes = append(v.Nodes, NodeView{Node: n, Color: funnel.ColorFor(n.Type())})
	}
	for _, e := range edges {
		v.Edges = append(v.Edges, EdgeView{Edge: e, Color: funnel.ColorFor(types[e.Source])})
	}
	return v
}

// Node returns the node view with the given id.
func (v View) Node(id string) (NodeView, bool) {
	for _, n := range v.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}

// Report returns the validation part of the view.
func (v View) Report() validate.Report {
	return validate.Report{Status: v.Status, Issues: v.Issues}
}
