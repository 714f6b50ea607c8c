package funnel

import (
	"maps"
	"strconv"
	"strings"
)

// Counters holds the last number handed out per repeatable node type.
// Values only ever grow, so numbered labels are never reused, even after
// the nodes carrying them are deleted or the graph is cleared.
type Counters map[NodeType]int

// Clone returns an independent copy of c. A nil receiver yields an empty map.
func (c Counters) Clone() Counters {
	out := make(Counters, len(c))
	maps.Copy(out, c)
	return out
}

// NextLabel derives the label for a new node of type t.
//
// Repeatable types (upsell, downsell) get "<Template.Label> <n>" where n is
// the incremented counter; the returned Counters carries the bump. Other
// types get the template label verbatim and the counters come back unchanged.
// The input map is never modified.
func NextLabel(t NodeType, c Counters) (string, Counters) {
	tpl, _ := TemplateFor(t)
	next := c.Clone()
	if !IsRepeatable(t) {
		return tpl.Label, next
	}
	next[t]++
	return tpl.Label + " " + strconv.Itoa(next[t]), next
}

// LabelNumber extracts n from a label of the form "<Template.Label> <n>" for
// a repeatable type. It returns false when the label does not follow that form.
func LabelNumber(t NodeType, label string) (int, bool) {
	if !IsRepeatable(t) {
		return 0, false
	}
	tpl, _ := TemplateFor(t)
	rest, ok := strings.CutPrefix(label, tpl.Label+" ")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ReconcileCounters raises each repeatable counter to at least the highest
// label number found among nodes. Counters are never lowered. This is applied
// after importing a document so that new nodes do not repeat imported labels.
func ReconcileCounters(c Counters, nodes []Node) Counters {
	out := c.Clone()
	for _, n := range nodes {
		if num, ok := LabelNumber(n.Type(), n.Label()); ok && num > out[n.Type()] {
			out[n.Type()] = num
		}
	}
	return out
}
