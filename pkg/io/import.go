package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/funnel"
)

// ReadJSON decodes a funnel document from r.
//
// The top level must be an object whose "nodes" and "edges" members are both
// present and are arrays. Each node needs a non-empty id that is unique in
// the document and a known data.type. Each edge needs source and target ids
// naming nodes in the document. Missing button labels and icons are filled
// from the node type's template.
//
// On any failure ReadJSON returns an INVALID_DOCUMENT error and a zero
// Document. ReadJSON does not close r.
func ReadJSON(r io.Reader) (Document, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidDocument, err, "document is not a JSON object")
	}

	var doc Document
	if err := decodeArray(raw, "nodes", &doc.Nodes); err != nil {
		return Document{}, err
	}
	if err := decodeArray(raw, "edges", &doc.Edges); err != nil {
		return Document{}, err
	}
	if err := check(&doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func decodeArray(raw map[string]json.RawMessage, key string, dst any) error {
	msg, ok := raw[key]
	if !ok {
		return errors.New(errors.ErrCodeInvalidDocument, "missing %q", key)
	}
	if !isArray(msg) {
		return errors.New(errors.ErrCodeInvalidDocument, "%q must be an array", key)
	}
	if err := json.Unmarshal(msg, dst); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode %s", key)
	}
	return nil
}

func isArray(msg json.RawMessage) bool {
	for _, b := range msg {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

func check(doc *Document) error {
	if doc.Nodes == nil {
		doc.Nodes = []funnel.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []funnel.Edge{}
	}

	seen := make(map[string]bool, len(doc.Nodes))
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidDocument, "node %d: missing id", i)
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeInvalidDocument, "node %s: duplicate id", n.ID)
		}
		seen[n.ID] = true
		if !n.Data.Type.Valid() {
			return errors.New(errors.ErrCodeInvalidDocument, "node %s: unknown type %q", n.ID, n.Data.Type)
		}
		fillDefaults(n)
	}

	edgeIDs := make(map[string]bool, len(doc.Edges))
	for i, e := range doc.Edges {
		if e.ID == "" {
			return errors.New(errors.ErrCodeInvalidDocument, "edge %d: missing id", i)
		}
		if edgeIDs[e.ID] {
			return errors.New(errors.ErrCodeInvalidDocument, "edge %s: duplicate id", e.ID)
		}
		edgeIDs[e.ID] = true
		if !seen[e.Source] {
			return errors.New(errors.ErrCodeInvalidDocument, "edge %s: unknown source %q", e.ID, e.Source)
		}
		if !seen[e.Target] {
			return errors.New(errors.ErrCodeInvalidDocument, "edge %s: unknown target %q", e.ID, e.Target)
		}
	}
	return nil
}

func fillDefaults(n *funnel.Node) {
	tpl, _ := funnel.TemplateFor(n.Data.Type)
	if n.Data.Label == "" {
		n.Data.Label = tpl.Label
	}
	if n.Data.ButtonLabel == "" {
		n.Data.ButtonLabel = tpl.ButtonLabel
	}
	if n.Data.Icon == "" {
		n.Data.Icon = tpl.Icon
	}
}

// ImportJSON reads a funnel document from the file at path.
func ImportJSON(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
