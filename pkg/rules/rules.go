// Package rules decides whether a proposed edge may be added to a funnel.
//
// The only hard rule is that terminal nodes (thank-you pages) cannot start a
// connection. Everything else is allowed, including self-loops, parallel
// edges and fan-out; those shapes are reported as warnings by package
// validate instead of being blocked, so a funnel can always be built.
package rules

import (
	"github.com/matzehuels/funnelkit/pkg/funnel"
)

// ReasonTerminalSource is the rejection reason for edges leaving a terminal node.
const ReasonTerminalSource = "terminal node cannot have outgoing connections"

// Decision is the outcome of a connection check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Allow is the permissive decision.
func Allow() Decision { return Decision{Allowed: true} }

// Reject returns a refusal carrying reason.
func Reject(reason string) Decision { return Decision{Reason: reason} }

// CanConnect checks the proposed edge against the source node it leaves.
// The caller resolves source from the graph; endpoint existence is the
// graph's concern, not a rule.
func CanConnect(source funnel.Node, proposed funnel.Edge) Decision {
	if funnel.IsTerminal(source.Type()) {
		return Reject(ReasonTerminalSource)
	}
	return Allow()
}
