package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/funnelkit/pkg/editor"
	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/funnel"
	"github.com/matzehuels/funnelkit/pkg/observability"
	"github.com/matzehuels/funnelkit/pkg/storage"
	"github.com/matzehuels/funnelkit/pkg/validate"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s, err := editor.Open(context.Background(), storage.NewMemoryStore(), editor.Options{Logger: logger})
	require.NoError(t, err)
	ts := httptest.NewServer(NewServer(s, logger))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeView(t *testing.T, resp *http.Response) editor.View {
	t.Helper()
	var v editor.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func addNode(t *testing.T, ts *httptest.Server, typ funnel.NodeType) editor.NodeView {
	t.Helper()
	resp := do(t, ts, http.MethodPost, "/api/nodes", map[string]any{"type": typ, "position": map[string]float64{"x": 1, "y": 2}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	v := decodeView(t, resp)
	return v.Nodes[len(v.Nodes)-1]
}

func TestTemplates(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []TemplateInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 5)
	assert.Equal(t, funnel.TypeSalesPage, got[0].Type)
	assert.Equal(t, "Buy Now", got[0].ButtonLabel)
}

func TestEmptyFunnel(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/api/funnel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	v := decodeView(t, resp)
	assert.True(t, v.Empty)
	assert.Equal(t, validate.StatusEmpty, v.Status)
}

func TestBuildFunnel(t *testing.T) {
	ts := newTestServer(t)
	sales := addNode(t, ts, funnel.TypeSalesPage)
	order := addNode(t, ts, funnel.TypeOrderPage)
	thanks := addNode(t, ts, funnel.TypeThankYou)

	assert.Equal(t, funnel.Position{X: 1, Y: 2}, sales.Position)
	assert.Equal(t, "#3b82f6", sales.Color)

	resp := do(t, ts, http.MethodPost, "/api/edges", addEdgeRequest{Source: sales.ID, Target: order.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = do(t, ts, http.MethodPost, "/api/edges", addEdgeRequest{Source: order.ID, Target: thanks.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	v := decodeView(t, resp)
	assert.Equal(t, validate.StatusClean, v.Status)
	assert.Len(t, v.Edges, 2)
	assert.Equal(t, "#3b82f6", v.Edges[0].Color)
}

func TestRejectedConnection(t *testing.T) {
	ts := newTestServer(t)
	order := addNode(t, ts, funnel.TypeOrderPage)
	thanks := addNode(t, ts, funnel.TypeThankYou)

	resp := do(t, ts, http.MethodPost, "/api/edges", addEdgeRequest{Source: thanks.ID, Target: order.ID})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	e := decodeError(t, resp)
	assert.Equal(t, errors.ErrCodeConnectionRejected, e.Code)
	assert.Equal(t, "terminal node cannot have outgoing connections", e.Message)

	v := decodeView(t, do(t, ts, http.MethodGet, "/api/funnel", nil))
	assert.Empty(t, v.Edges)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	up := addNode(t, ts, funnel.TypeUpsell)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   errors.Code
	}{
		{"unknown type", http.MethodPost, "/api/nodes", map[string]any{"type": "popup"}, 400, errors.ErrCodeInvalidNodeType},
		{"bad json", http.MethodPost, "/api/nodes", "{", 400, errors.ErrCodeInvalidInput},
		{"unknown source", http.MethodPost, "/api/edges", addEdgeRequest{Source: "x", Target: up.ID}, 404, errors.ErrCodeNodeNotFound},
		{"unknown edge", http.MethodDelete, "/api/edges/nope", nil, 404, errors.ErrCodeEdgeNotFound},
		{"unknown node", http.MethodPatch, "/api/nodes/nope", updateNodeRequest{Label: "x"}, 404, errors.ErrCodeNodeNotFound},
		{"empty update", http.MethodPatch, "/api/nodes/" + up.ID, updateNodeRequest{}, 400, errors.ErrCodeInvalidInput},
		{"bad label", http.MethodPatch, "/api/nodes/" + up.ID, updateNodeRequest{Label: "a\x07b"}, 400, errors.ErrCodeInvalidLabel},
		{"malformed import", http.MethodPost, "/api/funnel/import", `{"nodes": []}`, 400, errors.ErrCodeInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp).Code)
		})
	}

	v := decodeView(t, do(t, ts, http.MethodGet, "/api/funnel", nil))
	assert.Len(t, v.Nodes, 1, "failed requests must not change the funnel")
}

func TestUpdateAndDeleteNodes(t *testing.T) {
	ts := newTestServer(t)
	sales := addNode(t, ts, funnel.TypeSalesPage)
	up := addNode(t, ts, funnel.TypeUpsell)
	do(t, ts, http.MethodPost, "/api/edges", addEdgeRequest{Source: sales.ID, Target: up.ID})

	resp := do(t, ts, http.MethodPatch, "/api/nodes/"+up.ID, updateNodeRequest{Label: "VIP"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, resp)
	n, _ := v.Node(up.ID)
	assert.Equal(t, "VIP", n.Label())

	resp = do(t, ts, http.MethodDelete, "/api/nodes", deleteNodesRequest{IDs: []string{up.ID}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decodeView(t, resp)
	assert.Len(t, v.Nodes, 1)
	assert.Empty(t, v.Edges)

	next := addNode(t, ts, funnel.TypeUpsell)
	assert.Equal(t, "Upsell 2", next.Label())
}

func TestClearExportImport(t *testing.T) {
	ts := newTestServer(t)
	sales := addNode(t, ts, funnel.TypeSalesPage)
	thanks := addNode(t, ts, funnel.TypeThankYou)
	do(t, ts, http.MethodPost, "/api/edges", addEdgeRequest{Source: sales.ID, Target: thanks.ID})

	resp := do(t, ts, http.MethodGet, "/api/funnel/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "funnel.json")
	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	resp = do(t, ts, http.MethodPost, "/api/funnel/clear", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeView(t, resp).Empty)

	resp = do(t, ts, http.MethodPost, "/api/funnel/import", string(exported))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, resp)
	assert.Len(t, v.Nodes, 2)
	assert.Len(t, v.Edges, 1)
	assert.Equal(t, validate.StatusClean, v.Status)
}

func TestRenderSVG(t *testing.T) {
	ts := newTestServer(t)
	addNode(t, ts, funnel.TypeSalesPage)

	resp := do(t, ts, http.MethodGet, "/api/funnel/render.svg", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "<svg")
}

func TestConcurrentAddsSeeTheirOwnState(t *testing.T) {
	ts := newTestServer(t)
	const n = 16

	sizes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/api/nodes", "application/json", strings.NewReader(`{"type": "upsell"}`))
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			var v editor.View
			if assert.NoError(t, json.NewDecoder(resp.Body).Decode(&v)) {
				sizes <- len(v.Nodes)
			}
		}()
	}
	wg.Wait()
	close(sizes)

	seen := map[int]bool{}
	for size := range sizes {
		assert.False(t, seen[size], "two responses showed %d nodes", size)
		seen[size] = true
	}
	assert.Len(t, seen, n)
}

func TestHealthAndNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, ts, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type recordingAPIHooks struct {
	mu     sync.Mutex
	routes []string
}

func (h *recordingAPIHooks) OnRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route+" "+http.StatusText(status))
}

func TestInstrumentation(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	h := &recordingAPIHooks{}
	observability.SetAPIHooks(h)

	ts := newTestServer(t)
	do(t, ts, http.MethodDelete, "/api/edges/abc", nil)

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.routes, 1)
	assert.Equal(t, "DELETE /api/edges/{id} Not Found", h.routes[0])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.EOF))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New(errors.ErrCodeStorage, "x")))
	assert.Equal(t, http.StatusNotImplemented, statusFor(errors.New(errors.ErrCodeUnsupported, "x")))
}
