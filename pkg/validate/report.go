package validate

import (
	"sync"

	"github.com/matzehuels/funnelkit/pkg/funnel"
)

// Status distinguishes the three observable validation states.
type Status string

const (
	// StatusEmpty means there are no nodes yet.
	StatusEmpty Status = "empty"
	// StatusClean means the graph has nodes and no issues.
	StatusClean Status = "clean"
	// StatusIssues means at least one issue was found.
	StatusIssues Status = "issues"
)

// Report is a validation result together with its status.
type Report struct {
	Status Status  `json:"status"`
	Issues []Issue `json:"issues"`
}

// NewReport validates the graph and classifies the outcome.
func NewReport(nodes []funnel.Node, edges []funnel.Edge) Report {
	if len(nodes) == 0 {
		return Report{Status: StatusEmpty, Issues: []Issue{}}
	}
	issues := Validate(nodes, edges)
	if len(issues) == 0 {
		return Report{Status: StatusClean, Issues: []Issue{}}
	}
	return Report{Status: StatusIssues, Issues: issues}
}

// Warnings counts warning issues.
func (r Report) Warnings() int { return r.count(SeverityWarning) }

// Errors counts error issues.
func (r Report) Errors() int { return r.count(SeverityError) }

func (r Report) count(sev Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == sev {
			n++
		}
	}
	return n
}

// Head returns at most n issues and the number left out. A non-positive n
// shows everything. Truncation is for display only; Issues stays complete.
func (r Report) Head(n int) (shown []Issue, hidden int) {
	if n <= 0 || len(r.Issues) <= n {
		return r.Issues, 0
	}
	return r.Issues[:n], len(r.Issues) - n
}

// Monitor recomputes a Report every time the graph it watches changes.
// It is meant to be the single subscriber of a graph store.
type Monitor struct {
	mu     sync.RWMutex
	report Report
	runs   int
}

// NewMonitor returns a monitor holding the report of an empty graph.
func NewMonitor() *Monitor {
	return &Monitor{report: NewReport(nil, nil)}
}

// OnChange recomputes the report from the committed graph state.
func (m *Monitor) OnChange(nodes []funnel.Node, edges []funnel.Edge) {
	r := NewReport(nodes, edges)
	m.mu.Lock()
	m.report = r
	m.runs++
	m.mu.Unlock()
}

// Report returns the latest report.
func (m *Monitor) Report() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.report
}

// Runs returns how many times the report was recomputed.
func (m *Monitor) Runs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runs
}
