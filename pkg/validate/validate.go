package validate

import (
	"github.com/matzehuels/funnelkit/pkg/funnel"
)

// Severity classifies an Issue.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue messages, appended to the node label.
const (
	MsgNoOutgoing       = "has no outgoing connection"
	MsgNoIncoming       = "has no incoming connection"
	MsgOrphaned         = "is orphaned (no connections)"
	MsgMultipleOutgoing = "has multiple outgoing connections (typically should have one)"
)

// Issue is a single structural finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	NodeID   string   `json:"nodeId,omitempty"`
}

func newIssue(sev Severity, n funnel.Node, msg string) Issue {
	return Issue{Severity: sev, Message: n.Label() + " " + msg, NodeID: n.ID}
}

// Validate returns every structural issue of the graph, in a fixed order:
// per-node findings in node order, then sales-page fan-out findings in node
// order. It is a pure function of its arguments.
func Validate(nodes []funnel.Node, edges []funnel.Edge) []Issue {
	in := make(map[string]int, len(nodes))
	out := make(map[string]int, len(nodes))
	for _, e := range edges {
		out[e.Source]++
		in[e.Target]++
	}

	var issues []Issue
	for _, n := range nodes {
		hasIn, hasOut := in[n.ID] > 0, out[n.ID] > 0
		switch n.Type() {
		case funnel.TypeSalesPage:
			if !hasOut {
				issues = append(issues, newIssue(SeverityWarning, n, MsgNoOutgoing))
			}
		case funnel.TypeThankYou:
			if !hasIn {
				issues = append(issues, newIssue(SeverityWarning, n, MsgNoIncoming))
			}
		default:
			switch {
			case !hasIn && !hasOut:
				issues = append(issues, newIssue(SeverityError, n, MsgOrphaned))
			case !hasIn:
				issues = append(issues, newIssue(SeverityWarning, n, MsgNoIncoming))
			case !hasOut:
				issues = append(issues, newIssue(SeverityWarning, n, MsgNoOutgoing))
			}
		}
	}

	for _, n := range nodes {
		if n.Type() == funnel.TypeSalesPage && out[n.ID] > 1 {
			issues = append(issues, newIssue(SeverityWarning, n, MsgMultipleOutgoing))
		}
	}

	return issues
}
