package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/funnelkit/pkg/buildinfo"
	"github.com/matzehuels/funnelkit/pkg/editor"
	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/funnel"
	"github.com/matzehuels/funnelkit/pkg/render/nodelink"
)

// TemplateInfo is one palette entry.
type TemplateInfo struct {
	Type funnel.NodeType `json:"type"`
	funnel.Template
}

type addNodeRequest struct {
	Type     string          `json:"type"`
	Position funnel.Position `json:"position"`
}

type updateNodeRequest struct {
	Label       string `json:"label"`
	ButtonLabel string `json:"buttonLabel"`
}

type deleteNodesRequest struct {
	IDs []string `json:"ids"`
}

type addEdgeRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"workspace": s.session.Workspace(),
		"version":   buildinfo.Version,
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	out := make([]TemplateInfo, 0, len(funnel.Types()))
	for _, t := range funnel.Types() {
		tpl, _ := funnel.TemplateFor(t)
		out = append(out, TemplateInfo{Type: t, Template: tpl})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.View())
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if !s.decode(w, r, &req) {
		return
	}
	t, err := funnel.ParseNodeType(req.Type)
	if err != nil {
		s.writeError(w, err)
		return
	}
	v, err := s.session.Update(r.Context(), func(tx *editor.Tx) error {
		_, err := tx.Drop(t, req.Position)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var req updateNodeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Label == "" && req.ButtonLabel == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "label or buttonLabel is required"))
		return
	}
	v, err := s.session.Update(r.Context(), func(tx *editor.Tx) error {
		_, err := tx.Relabel(chi.URLParam(r, "id"), req.Label, req.ButtonLabel)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteNodes(w http.ResponseWriter, r *http.Request) {
	var req deleteNodesRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.session.Update(r.Context(), func(tx *editor.Tx) error {
		_, _, err := tx.Delete(req.IDs...)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req addEdgeRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.session.Update(r.Context(), func(tx *editor.Tx) error {
		_, err := tx.Connect(req.Source, req.Target)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	v, err := s.session.Update(r.Context(), func(tx *editor.Tx) error {
		return tx.Disconnect(chi.URLParam(r, "id"))
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	v, err := s.session.Update(r.Context(), func(tx *editor.Tx) error {
		return tx.Clear()
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="funnel.json"`)
	s.writeJSON(w, http.StatusOK, s.session.Document())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	v, err := s.session.Update(r.Context(), func(tx *editor.Tx) error {
		return tx.Import(r.Body)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	doc, report := s.session.Snapshot()
	dot := nodelink.ToDOT(doc.Nodes, doc.Edges, nodelink.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
		Issues:   report.Issues,
	})
	svg, err := nodelink.RenderSVG(dot)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render failed"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
