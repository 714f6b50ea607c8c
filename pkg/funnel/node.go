package funnel

// Position is the canvas location of a node. It belongs to the rendering
// side and is carried through the core untouched.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// NodeData is the semantic payload of a node.
type NodeData struct {
	Label       string   `json:"label" bson:"label"`
	Type        NodeType `json:"type" bson:"type"`
	ButtonLabel string   `json:"buttonLabel" bson:"buttonLabel"`
	Icon        string   `json:"icon" bson:"icon"`
}

// Node is a step in a funnel.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Position Position `json:"position" bson:"position"`
	Data     NodeData `json:"data" bson:"data"`
}

// Type is shorthand for n.Data.Type.
func (n Node) Type() NodeType { return n.Data.Type }

// Label is shorthand for n.Data.Label.
func (n Node) Label() string { return n.Data.Label }

// Edge is a directed connection from Source to Target.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// Touches reports whether the edge has id as either endpoint.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// NewNode builds a node of type t, taking button label and icon from the
// type's template. The label is supplied by the caller, usually from NextLabel.
func NewNode(id string, t NodeType, pos Position, label string) Node {
	tpl, _ := TemplateFor(t)
	return Node{
		ID:       id,
		Position: pos,
		Data: NodeData{
			Label:       label,
			Type:        t,
			ButtonLabel: tpl.ButtonLabel,
			Icon:        tpl.Icon,
		},
	}
}
