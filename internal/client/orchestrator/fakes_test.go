package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/client/cache"
	"github.com/dmitrijs2005/oskolki/internal/client/models"
	"github.com/dmitrijs2005/oskolki/internal/client/remote"
	"github.com/dmitrijs2005/oskolki/internal/common"
	"github.com/dmitrijs2005/oskolki/internal/logging"
	"github.com/stretchr/testify/require"
)

type write struct {
	Sheet string
	Row   models.Row
	// DeleteID is set for sentinel deletes.
	DeleteID string
}

type fakeRemote struct {
	remote.Client

	mu      sync.Mutex
	sheets  map[string][]models.Row
	readErr map[string]error
	writeErr error
	writes  []write
	fetches map[string]int
	// block, when set, holds every FetchCollection until closed.
	block chan struct{}
	// latency, when set, runs before a write is recorded.
	latency func(n int)
	sent    int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		sheets:  map[string][]models.Row{},
		readErr: map[string]error{},
		fetches: map[string]int{},
	}
}

func (f *fakeRemote) set(sheet string, rows ...models.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheets[sheet] = rows
}

func (f *fakeRemote) FetchCollection(ctx context.Context, sheet string) ([]models.Row, error) {
	f.mu.Lock()
	f.fetches[sheet]++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.readErr[sheet]; err != nil {
		return nil, err
	}
	return append([]models.Row{}, f.sheets[sheet]...), nil
}

func (f *fakeRemote) record(w write) error {
	f.mu.Lock()
	n := f.sent
	f.sent++
	latency := f.latency
	f.mu.Unlock()

	if latency != nil {
		latency(n)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, w)
	return f.writeErr
}

func (f *fakeRemote) Append(ctx context.Context, sheet string, row models.Row) error {
	return f.record(write{Sheet: sheet, Row: row})
}

func (f *fakeRemote) Delete(ctx context.Context, sheet string, id string) error {
	return f.record(write{Sheet: sheet, DeleteID: id})
}

// replay applies the recorded writes the way the sheet endpoint does:
// upsert by row key, sentinel delete by id.
func (f *fakeRemote) replay() map[string]map[string]models.Row {
	out := map[string]map[string]models.Row{}
	for _, w := range f.Writes() {
		rows := out[w.Sheet]
		if rows == nil {
			rows = map[string]models.Row{}
			out[w.Sheet] = rows
		}
		if w.DeleteID != "" {
			delete(rows, w.DeleteID)
			continue
		}
		key := "id"
		if w.Sheet == common.SheetApplications {
			key = "timestamp"
		}
		id, _ := w.Row[key].(string)
		rows[id] = w.Row
	}
	return out
}

func (f *fakeRemote) Writes() []write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]write{}, f.writes...)
}

func (f *fakeRemote) Fetches(sheet string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[sheet]
}

type fakeGate struct {
	mu        sync.Mutex
	priv      bool
	listeners []func(bool)
}

func (g *fakeGate) IsPrivileged() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.priv
}

func (g *fakeGate) OnChange(fn func(bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *fakeGate) Set(p bool) {
	g.mu.Lock()
	g.priv = p
	ls := append([]func(bool){}, g.listeners...)
	g.mu.Unlock()
	for _, fn := range ls {
		fn(p)
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event{}, r.events...)
}

type harness struct {
	o      *Orchestrator
	cache  *cache.Cache
	remote *fakeRemote
	gate   *fakeGate
	notes  *recorder
}

var fixedNow = time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	store, err := cache.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	c := cache.New(store, logging.NewDiscardLogger())

	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	if opts.NewID == nil {
		var mu sync.Mutex
		n := 0
		opts.NewID = func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return "id-" + string(rune('a'+n-1))
		}
	}

	h := &harness{cache: c, remote: newFakeRemote(), gate: &fakeGate{}, notes: &recorder{}}
	h.o = New(c, h.remote, h.gate, h.notes, logging.NewDiscardLogger(), opts)
	t.Cleanup(func() {
		h.o.Close()
		_ = c.Close()
	})
	return h
}

func appRow(id, name string) models.Row {
	return models.Application{ID: id, FullName: name, Status: models.StatusNew}.ToRow()
}
