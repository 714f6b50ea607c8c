package editor

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/funnel"
	"github.com/matzehuels/funnelkit/pkg/rules"
	"github.com/matzehuels/funnelkit/pkg/storage"
	"github.com/matzehuels/funnelkit/pkg/validate"
)

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "id" + strconv.Itoa(n)
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func openSession(t *testing.T, st storage.Store) *Session {
	t.Helper()
	s, err := Open(context.Background(), st, Options{Logger: quietLogger(), IDFunc: seqIDs()})
	require.NoError(t, err)
	return s
}

func TestOpenEmpty(t *testing.T) {
	s := openSession(t, storage.NewMemoryStore())
	v := s.View()
	assert.True(t, v.Empty)
	assert.Equal(t, validate.StatusEmpty, v.Status)
	assert.Empty(t, v.Nodes)
	assert.NotNil(t, v.Issues)
	assert.Equal(t, "default", s.Workspace())
}

func TestOpenInvalidWorkspace(t *testing.T) {
	_, err := Open(context.Background(), storage.NewMemoryStore(), Options{Workspace: "../x"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidKey), "err = %v", err)
}

func TestDropAndConnect(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())

	sales, err := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{X: 10, Y: 20})
	require.NoError(t, err)
	v := s.View()
	require.Len(t, v.Issues, 1)
	assert.Equal(t, "Sales Page has no outgoing connection", v.Issues[0].Message)
	assert.Equal(t, validate.SeverityWarning, v.Issues[0].Severity)

	order, err := s.Drop(ctx, funnel.TypeOrderPage, funnel.Position{})
	require.NoError(t, err)
	thanks, err := s.Drop(ctx, funnel.TypeThankYou, funnel.Position{})
	require.NoError(t, err)
	_, err = s.Connect(ctx, sales.ID, order.ID)
	require.NoError(t, err)
	_, err = s.Connect(ctx, order.ID, thanks.ID)
	require.NoError(t, err)

	v = s.View()
	assert.Equal(t, validate.StatusClean, v.Status)
	assert.Empty(t, v.Issues)
	assert.False(t, v.Empty)

	nv, ok := v.Node(sales.ID)
	require.True(t, ok)
	assert.Equal(t, "#3b82f6", nv.Color)
	assert.Equal(t, funnel.Position{X: 10, Y: 20}, nv.Position)
	for _, e := range v.Edges {
		src, _ := v.Node(e.Source)
		assert.Equal(t, src.Color, e.Color, "edge colour follows source type")
	}
}

func TestDropUnknownType(t *testing.T) {
	s := openSession(t, storage.NewMemoryStore())
	_, err := s.Drop(context.Background(), "popup", funnel.Position{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidNodeType), "err = %v", err)
	assert.True(t, s.View().Empty)
}

func TestConnectFromThankYouRejected(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := openSession(t, st)

	order, _ := s.Drop(ctx, funnel.TypeOrderPage, funnel.Position{})
	thanks, _ := s.Drop(ctx, funnel.TypeThankYou, funnel.Position{})
	before, _, _ := st.Get(ctx, "default/graph")

	_, err := s.Connect(ctx, thanks.ID, order.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConnectionRejected))
	assert.Equal(t, rules.ReasonTerminalSource, errors.UserMessage(err))
	assert.Empty(t, s.View().Edges)

	after, _, _ := st.Get(ctx, "default/graph")
	assert.Equal(t, before, after, "rejection must not write storage")
}

func TestConnectUnknownNode(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())
	a, _ := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{})

	_, err := s.Connect(ctx, a.ID, "ghost")
	assert.True(t, errors.Is(err, errors.ErrCodeNodeNotFound), "err = %v", err)
}

func TestDeleteCascadesAndKeepsNumbering(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())

	sales, _ := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{})
	up, _ := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	thanks, _ := s.Drop(ctx, funnel.TypeThankYou, funnel.Position{})
	_, _ = s.Connect(ctx, sales.ID, up.ID)
	_, _ = s.Connect(ctx, up.ID, thanks.ID)
	assert.Equal(t, "Upsell 1", up.Label())

	nodes, edges, err := s.Delete(ctx, up.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, nodes)
	assert.Equal(t, 2, edges)
	assert.Empty(t, s.View().Edges)

	next, _ := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	assert.Equal(t, "Upsell 2", next.Label())

	nodes, edges, err = s.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, nodes+edges)
}

func TestDisconnect(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())
	a, _ := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{})
	b, _ := s.Drop(ctx, funnel.TypeOrderPage, funnel.Position{})
	e, err := s.Connect(ctx, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, s.Disconnect(ctx, e.ID))
	err = s.Disconnect(ctx, e.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeEdgeNotFound), "err = %v", err)
}

func TestRelabel(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())
	up, _ := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})

	n, err := s.Relabel(ctx, up.ID, "VIP Upgrade", "Upgrade me")
	require.NoError(t, err)
	assert.Equal(t, "VIP Upgrade", n.Label())
	assert.Equal(t, "Upgrade me", n.Data.ButtonLabel)

	// Validation messages follow the new label.
	assert.Equal(t, "VIP Upgrade "+validate.MsgOrphaned, s.View().Issues[0].Message)

	_, err = s.Relabel(ctx, up.ID, "  ", "")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidLabel), "err = %v", err)
	_, err = s.Relabel(ctx, "ghost", "x", "")
	assert.True(t, errors.Is(err, errors.ErrCodeNodeNotFound), "err = %v", err)

	next, _ := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	assert.Equal(t, "Upsell 2", next.Label())
}

func TestClearKeepsCounters(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())
	_, _ = s.Drop(ctx, funnel.TypeDownsell, funnel.Position{})
	_, _ = s.Drop(ctx, funnel.TypeDownsell, funnel.Position{})

	require.NoError(t, s.Clear(ctx))
	assert.True(t, s.View().Empty)

	n, _ := s.Drop(ctx, funnel.TypeDownsell, funnel.Position{})
	assert.Equal(t, "Downsell 3", n.Label())
}

func TestPersistenceAcrossSessions(t *testing.T) {
	ctx := context.Background()
	st, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	s := openSession(t, st)
	sales, _ := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{X: 1})
	up, _ := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{X: 2})
	_, _ = s.Drop(ctx, funnel.TypeUpsell, funnel.Position{X: 3})
	_, err = s.Connect(ctx, sales.ID, up.ID)
	require.NoError(t, err)
	_, _, err = s.Delete(ctx, up.ID)
	require.NoError(t, err)

	reopened, err := Open(ctx, st, Options{Logger: quietLogger(), IDFunc: func() string { return "fresh" }})
	require.NoError(t, err)
	assert.Equal(t, s.Document(), reopened.Document())
	assert.Equal(t, 2, reopened.Counters()[funnel.TypeUpsell])

	n, err := reopened.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	require.NoError(t, err)
	assert.Equal(t, "Upsell 3", n.Label())
}

func TestWorkspacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()

	a, err := Open(ctx, st, Options{Workspace: "a", Logger: quietLogger()})
	require.NoError(t, err)
	_, _ = a.Drop(ctx, funnel.TypeUpsell, funnel.Position{})

	b, err := Open(ctx, st, Options{Workspace: "b", Logger: quietLogger()})
	require.NoError(t, err)
	assert.True(t, b.View().Empty)
	n, _ := b.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	assert.Equal(t, "Upsell 1", n.Label())
}

func TestOpenCorruptGraphSlot(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "default/graph", []byte(`{"nodes": 1}`)))
	require.NoError(t, st.Set(ctx, "default/counters", []byte(`{"upsell": 4}`)))

	var logs bytes.Buffer
	s, err := Open(ctx, st, Options{Logger: log.NewWithOptions(&logs, log.Options{})})
	require.NoError(t, err)
	assert.True(t, s.View().Empty)
	assert.Contains(t, logs.String(), "Ignoring unreadable graph slot")

	n, _ := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	assert.Equal(t, "Upsell 5", n.Label())
}

func TestOpenReconcilesStaleCounters(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	doc := `{"nodes": [{"id": "u", "data": {"label": "Upsell 7", "type": "upsell"}}], "edges": []}`
	require.NoError(t, st.Set(ctx, "default/graph", []byte(doc)))

	s := openSession(t, st)
	n, _ := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	assert.Equal(t, "Upsell 8", n.Label())
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())

	doc := `{
	  "nodes": [
	    {"id": "s", "position": {"x": 0, "y": 0}, "data": {"label": "Sales Page", "type": "salesPage"}},
	    {"id": "u", "position": {"x": 1, "y": 0}, "data": {"label": "Upsell 5", "type": "upsell"}},
	    {"id": "t", "position": {"x": 2, "y": 0}, "data": {"label": "Thank You", "type": "thankYou"}}
	  ],
	  "edges": [
	    {"id": "e1", "source": "s", "target": "u"},
	    {"id": "e2", "source": "u", "target": "t"}
	  ]
	}`
	require.NoError(t, s.Import(ctx, strings.NewReader(doc)))

	v := s.View()
	assert.Len(t, v.Nodes, 3)
	assert.Len(t, v.Edges, 2)
	assert.Equal(t, validate.StatusClean, v.Status)

	n, _ := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	assert.Equal(t, "Upsell 6", n.Label(), "counters are reconciled with imported labels")
}

func TestImportMalformedKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	s := openSession(t, st)
	a, _ := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{})
	b, _ := s.Drop(ctx, funnel.TypeOrderPage, funnel.Position{})
	_, _ = s.Connect(ctx, a.ID, b.ID)

	before := s.Document()
	stored, _, _ := st.Get(ctx, "default/graph")

	for _, bad := range []string{
		`{"nodes": []}`,
		`{"edges": []}`,
		`{"nodes": "x", "edges": []}`,
		`not json`,
	} {
		err := s.Import(ctx, strings.NewReader(bad))
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidDocument), "Import(%s) err = %v", bad, err)
		assert.Equal(t, before, s.Document(), "in-memory graph changed by %s", bad)
	}
	after, _, _ := st.Get(ctx, "default/graph")
	assert.Equal(t, stored, after)
}

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())
	a, _ := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{X: 5, Y: 6})
	b, _ := s.Drop(ctx, funnel.TypeDownsell, funnel.Position{})
	_, _ = s.Connect(ctx, a.ID, b.ID)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))

	other := openSession(t, storage.NewMemoryStore())
	require.NoError(t, other.Import(ctx, &buf))
	assert.Equal(t, s.Document(), other.Document())
}

type failingStore struct {
	storage.Store
	fail bool
	// key limits failures to one slot when set.
	key string
}

func (f *failingStore) Set(ctx context.Context, key string, data []byte) error {
	if f.fail && (f.key == "" || f.key == key) {
		return errors.Wrap(errors.ErrCodeStorage, stderrors.New("disk full"), "write %s", key)
	}
	return f.Store.Set(ctx, key, data)
}

func TestPersistFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{Store: storage.NewMemoryStore()}
	s := openSession(t, st)

	sales, err := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{})
	require.NoError(t, err)
	upsell, err := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	require.NoError(t, err)
	order, err := s.Drop(ctx, funnel.TypeOrderPage, funnel.Position{})
	require.NoError(t, err)
	edge, err := s.Connect(ctx, sales.ID, upsell.ID)
	require.NoError(t, err)

	view, counters := s.View(), s.Counters()
	st.fail = true

	mutations := map[string]func() error{
		"drop": func() error {
			_, err := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
			return err
		},
		"connect": func() error {
			_, err := s.Connect(ctx, upsell.ID, order.ID)
			return err
		},
		"delete": func() error {
			_, _, err := s.Delete(ctx, sales.ID)
			return err
		},
		"disconnect": func() error { return s.Disconnect(ctx, edge.ID) },
		"relabel": func() error {
			_, err := s.Relabel(ctx, upsell.ID, "Upsell 9", "")
			return err
		},
		"clear": func() error { return s.Clear(ctx) },
		"import": func() error {
			doc := `{"nodes": [{"id": "u", "position": {"x": 0, "y": 0}, "data": {"label": "Downsell 7", "type": "downsell"}}], "edges": []}`
			return s.Import(ctx, strings.NewReader(doc))
		},
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			err := mutate()
			assert.True(t, errors.Is(err, errors.ErrCodeStorage), "err = %v", err)
			assert.Equal(t, view, s.View())
			assert.Equal(t, counters, s.Counters())
			assert.Equal(t, view.Report(), s.Report())
		})
	}

	st.fail = false
	n, err := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	require.NoError(t, err)
	assert.Equal(t, "Upsell 2", n.Label())
}

func TestPersistFailureOnCountersSlot(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{Store: storage.NewMemoryStore()}
	s := openSession(t, st)
	_, err := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{})
	require.NoError(t, err)

	st.fail, st.key = true, s.slots.CountersKey()
	_, err = s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
	require.True(t, errors.Is(err, errors.ErrCodeStorage), "err = %v", err)
	assert.Len(t, s.View().Nodes, 1)

	reopened := openSession(t, st.Store)
	assert.Len(t, reopened.View().Nodes, 1, "graph slot was written back after the failed save")
}

func TestUpdateReturnsProducedView(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var label string
			v, err := s.Update(ctx, func(tx *Tx) error {
				n, err := tx.Drop(funnel.TypeUpsell, funnel.Position{})
				label = n.Label()
				return err
			})
			assert.NoError(t, err)
			if assert.NotEmpty(t, v.Nodes) {
				last := v.Nodes[len(v.Nodes)-1]
				assert.Equal(t, label, last.Label(), "view ends with the node this update added")
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.View().Nodes, 20)
}

func TestUpdateReturnsViewOnError(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())
	thanks, err := s.Drop(ctx, funnel.TypeThankYou, funnel.Position{})
	require.NoError(t, err)
	sales, err := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{})
	require.NoError(t, err)

	v, err := s.Update(ctx, func(tx *Tx) error {
		_, err := tx.Connect(thanks.ID, sales.ID)
		return err
	})
	assert.True(t, errors.Is(err, errors.ErrCodeConnectionRejected), "err = %v", err)
	assert.Len(t, v.Nodes, 2)
	assert.Empty(t, v.Edges)
}

func TestSnapshotMatchesReport(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())
	_, err := s.Drop(ctx, funnel.TypeSalesPage, funnel.Position{})
	require.NoError(t, err)

	doc, report := s.Snapshot()
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, validate.NewReport(doc.Nodes, doc.Edges), report)
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, storage.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Drop(ctx, funnel.TypeUpsell, funnel.Position{})
			assert.NoError(t, err)
			_ = s.View()
		}()
	}
	wg.Wait()

	v := s.View()
	require.Len(t, v.Nodes, 20)
	seen := map[string]bool{}
	for _, n := range v.Nodes {
		assert.False(t, seen[n.Label()], "duplicate label %s", n.Label())
		seen[n.Label()] = true
	}
	assert.Equal(t, 20, s.Counters()[funnel.TypeUpsell])
	assert.Len(t, s.Report().Issues, 20)
}
