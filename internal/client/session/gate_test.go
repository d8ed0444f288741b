package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/client/cache"
	"github.com/dmitrijs2005/oskolki/internal/common"
	"github.com/dmitrijs2005/oskolki/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-session-secret")

func newCache(t *testing.T) *cache.Cache {
	t.Helper()
	s, err := cache.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	c := cache.New(s, logging.NewDiscardLogger())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newGate(t *testing.T, store *cache.Cache, clk *clock) *Gate {
	t.Helper()
	return NewGate(store, logging.NewDiscardLogger(), Options{Secret: testSecret, Now: clk.Now})
}

func TestGate_StartsAsGuest(t *testing.T) {
	g := newGate(t, newCache(t), &clock{t: time.Now()})
	assert.Equal(t, Guest, g.State())
	assert.False(t, g.IsPrivileged())
	assert.Equal(t, Guest, g.Restore(context.Background()))
}

func TestGate_LoginWithAdminPair(t *testing.T) {
	store := newCache(t)
	g := newGate(t, store, &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})

	var events []bool
	g.OnChange(func(p bool) { events = append(events, p) })

	require.NoError(t, g.Login(context.Background(), "admin@admin", "admin@admin"))
	assert.True(t, g.IsPrivileged())
	assert.Equal(t, []bool{true}, events)

	var token string
	require.True(t, store.Load(context.Background(), common.KeySession, &token))
	assert.NotEmpty(t, token)

	var expiry int64
	require.True(t, store.Load(context.Background(), common.KeySessionExpiry, &expiry))
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(DefaultTTL).UnixMilli(), expiry)

	// a second login does not fire another transition
	require.NoError(t, g.Login(context.Background(), "admin@admin", "admin@admin"))
	assert.Equal(t, []bool{true}, events)
}

func TestGate_LoginRejectsOtherPairs(t *testing.T) {
	pairs := [][2]string{
		{"admin@admin", "admin"},
		{"admin", "admin@admin"},
		{"", ""},
		{"ADMIN@ADMIN", "admin@admin"},
		{"admin@admin ", "admin@admin"},
	}
	for _, p := range pairs {
		t.Run(p[0]+"/"+p[1], func(t *testing.T) {
			store := newCache(t)
			g := newGate(t, store, &clock{t: time.Now()})
			fired := false
			g.OnChange(func(bool) { fired = true })

			err := g.Login(context.Background(), p[0], p[1])
			require.ErrorIs(t, err, common.ErrAuth)
			assert.Equal(t, Guest, g.State())
			assert.False(t, fired)
			assert.False(t, store.Has(context.Background(), common.KeySession))
		})
	}
}

func TestGate_RestoreAcrossRestart(t *testing.T) {
	store := newCache(t)
	clk := &clock{t: time.Now()}

	first := newGate(t, store, clk)
	require.NoError(t, first.Login(context.Background(), common.AdminEmail, common.AdminPassword))

	second := newGate(t, store, clk)
	var events []bool
	second.OnChange(func(p bool) { events = append(events, p) })

	assert.Equal(t, Privileged, second.Restore(context.Background()))
	assert.Equal(t, []bool{true}, events)
}

func TestGate_RestoreAcrossRestartWithGeneratedKey(t *testing.T) {
	store := newCache(t)
	ctx := context.Background()

	first := NewGate(store, logging.NewDiscardLogger(), Options{})
	require.NoError(t, first.Login(ctx, common.AdminEmail, common.AdminPassword))
	assert.True(t, store.Has(ctx, common.KeySessionKey))

	second := NewGate(store, logging.NewDiscardLogger(), Options{})
	assert.Equal(t, Privileged, second.Restore(ctx))
	assert.True(t, store.Has(ctx, common.KeySession))

	second.Logout(ctx)
	third := NewGate(store, logging.NewDiscardLogger(), Options{})
	assert.Equal(t, Guest, third.Restore(ctx))
}

func TestGate_RestoreWithoutFlagKeepsGeneratedKeyStable(t *testing.T) {
	store := newCache(t)
	ctx := context.Background()

	g := NewGate(store, logging.NewDiscardLogger(), Options{})
	assert.Equal(t, Guest, g.Restore(ctx))
	require.NoError(t, g.Login(ctx, common.AdminEmail, common.AdminPassword))

	var first []byte
	require.True(t, store.Load(ctx, common.KeySessionKey, &first))
	require.Len(t, first, 32)

	require.NoError(t, NewGate(store, logging.NewDiscardLogger(), Options{}).Login(ctx, common.AdminEmail, common.AdminPassword))
	var second []byte
	require.True(t, store.Load(ctx, common.KeySessionKey, &second))
	assert.Equal(t, first, second)
}

func TestGate_RestoreExpiredClearsFlag(t *testing.T) {
	store := newCache(t)
	clk := &clock{t: time.Now()}

	g := NewGate(store, logging.NewDiscardLogger(), Options{Secret: testSecret, TTL: time.Hour, Now: clk.Now})
	require.NoError(t, g.Login(context.Background(), common.AdminEmail, common.AdminPassword))

	clk.Advance(2 * time.Hour)
	restarted := NewGate(store, logging.NewDiscardLogger(), Options{Secret: testSecret, TTL: time.Hour, Now: clk.Now})
	assert.Equal(t, Guest, restarted.Restore(context.Background()))
	assert.False(t, store.Has(context.Background(), common.KeySession))
	assert.False(t, store.Has(context.Background(), common.KeySessionExpiry))
}

func TestGate_RestoreTamperedFlag(t *testing.T) {
	store := newCache(t)
	clk := &clock{t: time.Now()}

	g := newGate(t, store, clk)
	require.NoError(t, g.Login(context.Background(), common.AdminEmail, common.AdminPassword))

	other := NewGate(store, logging.NewDiscardLogger(), Options{Secret: []byte("different"), Now: clk.Now})
	assert.Equal(t, Guest, other.Restore(context.Background()))
	assert.True(t, store.Has(context.Background(), common.KeySession))
	assert.Equal(t, Privileged, newGate(t, store, clk).Restore(context.Background()))

	require.True(t, store.Save(context.Background(), common.KeySession, "garbage"))
	assert.Equal(t, Guest, newGate(t, store, clk).Restore(context.Background()))
}

func TestGate_RestoreLegacyFlag(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		expiry *int64
		want   State
	}{
		{"no expiry", nil, Privileged},
		{"future expiry", ptr(now.Add(time.Hour).UnixMilli()), Privileged},
		{"past expiry", ptr(now.Add(-time.Hour).UnixMilli()), Guest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newCache(t)
			ctx := context.Background()
			require.True(t, store.Save(ctx, common.KeySession, "true"))
			if tt.expiry != nil {
				require.True(t, store.Save(ctx, common.KeySessionExpiry, *tt.expiry))
			}

			g := newGate(t, store, &clock{t: now})
			assert.Equal(t, tt.want, g.Restore(ctx))
			assert.Equal(t, tt.want == Privileged, store.Has(ctx, common.KeySession))
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestGate_Logout(t *testing.T) {
	store := newCache(t)
	g := newGate(t, store, &clock{t: time.Now()})
	ctx := context.Background()

	var events []bool
	g.OnChange(func(p bool) { events = append(events, p) })

	require.NoError(t, g.Login(ctx, common.AdminEmail, common.AdminPassword))
	g.Logout(ctx)

	assert.Equal(t, Guest, g.State())
	assert.Equal(t, []bool{true, false}, events)
	assert.False(t, store.Has(ctx, common.KeySession))
	assert.False(t, store.Has(ctx, common.KeySessionExpiry))

	// logging out as guest is harmless and silent
	g.Logout(ctx)
	assert.Equal(t, []bool{true, false}, events)
}

func TestGate_ListenerMayQueryGate(t *testing.T) {
	g := newGate(t, newCache(t), &clock{t: time.Now()})
	var seen State
	g.OnChange(func(bool) { seen = g.State() })

	require.NoError(t, g.Login(context.Background(), common.AdminEmail, common.AdminPassword))
	assert.Equal(t, Privileged, seen)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "guest", Guest.String())
	assert.Equal(t, "privileged", Privileged.String())
}
