package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEditorHooks{}
	e.OnMutation(ctx, "drop", 3, 2, time.Millisecond)
	e.OnRejected(ctx, "thankYou", "terminal node cannot have outgoing connections")
	e.OnValidate(ctx, 1, 0)

	s := NoopStorageHooks{}
	s.OnLoad(ctx, "file", "default/graph", true, nil)
	s.OnSave(ctx, "file", "default/graph", 512, nil)

	a := NoopAPIHooks{}
	a.OnRequest(ctx, "GET", "/api/funnel", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Editor() should return NoopEditorHooks by default")
	}
	if _, ok := Storage().(NoopStorageHooks); !ok {
		t.Error("Storage() should return NoopStorageHooks by default")
	}
	if _, ok := API().(NoopAPIHooks); !ok {
		t.Error("API() should return NoopAPIHooks by default")
	}

	customEditor := &testEditorHooks{}
	SetEditorHooks(customEditor)
	if Editor() != customEditor {
		t.Error("SetEditorHooks should set custom hooks")
	}

	customStorage := &testStorageHooks{}
	SetStorageHooks(customStorage)
	if Storage() != customStorage {
		t.Error("SetStorageHooks should set custom hooks")
	}

	customAPI := &testAPIHooks{}
	SetAPIHooks(customAPI)
	if API() != customAPI {
		t.Error("SetAPIHooks should set custom hooks")
	}

	Reset()
	if _, ok := Editor().(NoopEditorHooks); !ok {
		t.Error("Reset() should restore NoopEditorHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testEditorHooks{}
	SetEditorHooks(custom)
	SetEditorHooks(nil)
	if Editor() != custom {
		t.Error("SetEditorHooks(nil) should keep the previous hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testEditorHooks{}
	SetEditorHooks(h)
	Editor().OnMutation(context.Background(), "connect", 2, 1, 0)
	Editor().OnRejected(context.Background(), "thankYou", "nope")

	if h.mutations != 1 || h.lastKind != "connect" || h.rejected != 1 {
		t.Errorf("hooks = %+v", h)
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &StatusRecorder{ResponseWriter: rec, Status: http.StatusOK}
	sr.WriteHeader(http.StatusConflict)
	if sr.Status != http.StatusConflict || rec.Code != http.StatusConflict {
		t.Errorf("status = %d, recorder = %d", sr.Status, rec.Code)
	}
}

type testEditorHooks struct {
	mutations int
	rejected  int
	lastKind  string
}

func (h *testEditorHooks) OnMutation(_ context.Context, kind string, _, _ int, _ time.Duration) {
	h.mutations++
	h.lastKind = kind
}
func (h *testEditorHooks) OnRejected(context.Context, string, string) { h.rejected++ }
func (h *testEditorHooks) OnValidate(context.Context, int, int)       {}

type testStorageHooks struct{}

func (testStorageHooks) OnLoad(context.Context, string, string, bool, error) {}
func (testStorageHooks) OnSave(context.Context, string, string, int, error)  {}

type testAPIHooks struct{}

func (testAPIHooks) OnRequest(context.Context, string, string, int, time.Duration) {}
