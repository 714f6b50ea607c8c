// Package io provides JSON import and export for funnel graphs.
//
// # Overview
//
// A funnel is exchanged as a [Document] holding two arrays. The same shape is
// used for file export, file import and the graph storage slot, so a document
// written by any of them can be read back by the others.
//
// # JSON Format
//
//	{
//	  "nodes": [
//	    {
//	      "id": "4f0c...",
//	      "position": {"x": 120, "y": 80},
//	      "data": {"label": "Upsell 1", "type": "upsell",
//	               "buttonLabel": "Yes, Add To My Order", "icon": "trending-up"}
//	    }
//	  ],
//	  "edges": [
//	    {"id": "9a1e...", "source": "4f0c...", "target": "77b2..."}
//	  ]
//	}
//
// Both "nodes" and "edges" are required and must be arrays, even when empty.
// [ReadJSON] checks this before decoding anything, so a malformed document is
// rejected as a whole and never partially applied.
//
// Label counters are stored separately as a flat object:
//
//	{"upsell": 3, "downsell": 1}
//
// See [ReadCounters] and [WriteCounters].
//
// # Validation
//
// Imported data is trusted with respect to funnel rules: an edge leaving a
// thank-you page is accepted. What is checked is that the document can be
// loaded at all: every node has an id and a known type, ids are unique, and
// every edge names existing endpoints.
//
// # Errors
//
// All read failures are returned as [errors.Error] values with code
// INVALID_DOCUMENT, wrapping the underlying decoder error where there is one.
//
// [errors.Error]: github.com/matzehuels/funnelkit/pkg/errors.Error
package io
