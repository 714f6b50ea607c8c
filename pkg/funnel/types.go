package funnel

import (
	"github.com/matzehuels/funnelkit/pkg/errors"
)

// NodeType identifies one of the five funnel step variants.
type NodeType string

const (
	TypeSalesPage NodeType = "salesPage"
	TypeOrderPage NodeType = "orderPage"
	TypeUpsell    NodeType = "upsell"
	TypeDownsell  NodeType = "downsell"
	TypeThankYou  NodeType = "thankYou"
)

// Template is the static configuration attached to a node type. Templates
// seed new nodes and drive display colours; they are never mutated.
type Template struct {
	Label       string `json:"label"`
	ButtonLabel string `json:"buttonLabel"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// types is the palette order used by Types and by the editors.
var types = []NodeType{TypeSalesPage, TypeOrderPage, TypeUpsell, TypeDownsell, TypeThankYou}

var templates = map[NodeType]Template{
	TypeSalesPage: {
		Label:       "Sales Page",
		ButtonLabel: "Buy Now",
		Icon:        "shopping-cart",
		Color:       "#3b82f6",
		Description: "Landing page that presents the offer",
	},
	TypeOrderPage: {
		Label:       "Order Page",
		ButtonLabel: "Complete Order",
		Icon:        "credit-card",
		Color:       "#10b981",
		Description: "Checkout step that collects payment details",
	},
	TypeUpsell: {
		Label:       "Upsell",
		ButtonLabel: "Yes, Add To My Order",
		Icon:        "trending-up",
		Color:       "#f59e0b",
		Description: "One-click offer for a higher value product",
	},
	TypeDownsell: {
		Label:       "Downsell",
		ButtonLabel: "Yes, I'll Take It",
		Icon:        "trending-down",
		Color:       "#8b5cf6",
		Description: "Lower priced alternative after a declined upsell",
	},
	TypeThankYou: {
		Label:       "Thank You",
		ButtonLabel: "Access Your Purchase",
		Icon:        "check-circle",
		Color:       "#6b7280",
		Description: "Confirmation page that ends the funnel",
	},
}

// Types returns all node types in palette order.
func Types() []NodeType {
	out := make([]NodeType, len(types))
	copy(out, types)
	return out
}

// Valid reports whether t is one of the five known node types.
func (t NodeType) Valid() bool {
	_, ok := templates[t]
	return ok
}

// String implements fmt.Stringer.
func (t NodeType) String() string { return string(t) }

// ParseNodeType converts a name such as "upsell" into a NodeType.
// Unknown names return an INVALID_NODE_TYPE error.
func ParseNodeType(name string) (NodeType, error) {
	t := NodeType(name)
	if !t.Valid() {
		return "", errors.New(errors.ErrCodeInvalidNodeType, "unknown node type: %q", name)
	}
	return t, nil
}

// TemplateFor returns the template of t and whether t is known.
func TemplateFor(t NodeType) (Template, bool) {
	tpl, ok := templates[t]
	return tpl, ok
}

// ColorFor returns the display colour for t, or a neutral grey for unknown
// types (imported documents are trusted as-is).
func ColorFor(t NodeType) string {
	if tpl, ok := templates[t]; ok {
		return tpl.Color
	}
	return "#9ca3af"
}

// IsRepeatable reports whether nodes of type t receive a numbered label.
func IsRepeatable(t NodeType) bool {
	return t == TypeUpsell || t == TypeDownsell
}

// IsTerminal reports whether nodes of type t may not have outgoing edges.
func IsTerminal(t NodeType) bool {
	return t == TypeThankYou
}
