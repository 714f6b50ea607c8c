package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/funnel"
)

// ReadCounters decodes a counter document such as {"upsell": 3, "downsell": 1}.
// Keys that are not repeatable node types are ignored, as are negative values.
func ReadCounters(r io.Reader) (funnel.Counters, error) {
	var raw map[string]int
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode counters")
	}
	out := funnel.Counters{}
	for k, v := range raw {
		t := funnel.NodeType(k)
		if funnel.IsRepeatable(t) && v > 0 {
			out[t] = v
		}
	}
	return out, nil
}

// WriteCounters encodes c with every repeatable type present, zero if unset.
func WriteCounters(c funnel.Counters, w io.Writer) error {
	out := make(map[string]int)
	for _, t := range funnel.Types() {
		if funnel.IsRepeatable(t) {
			out[string(t)] = c[t]
		}
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encode counters: %w", err)
	}
	return nil
}
