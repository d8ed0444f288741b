package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/oskolki/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_GetAbsent(t *testing.T) {
	s := openStore(t)

	v, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSQLiteStore_SetGetOverwriteDelete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, common.KeyHolidays, []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, common.KeyHolidays, []byte(`[1,2]`)))

	v, err := s.Get(ctx, common.KeyHolidays)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), v)

	require.NoError(t, s.Delete(ctx, common.KeyHolidays))
	v, err = s.Get(ctx, common.KeyHolidays)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Delete(ctx, "never-set"))
}

func TestSQLiteStore_MultiOps(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMulti(ctx, map[string][]byte{
		common.KeySession:       []byte(`"tok"`),
		common.KeySessionExpiry: []byte(`123`),
	}))

	v, err := s.Get(ctx, common.KeySessionExpiry)
	require.NoError(t, err)
	assert.Equal(t, []byte(`123`), v)

	require.NoError(t, s.DeleteMulti(ctx, common.KeySession, common.KeySessionExpiry))
	for _, k := range []string{common.KeySession, common.KeySessionExpiry} {
		v, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.Nil(t, v, k)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, common.KeyChat, []byte(`{}`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get(ctx, common.KeyChat)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), v)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	v, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestSQLiteStore_ClosedDBWrapsStorageError(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get(context.Background(), "k")
	require.ErrorIs(t, err, common.ErrStorage)
	require.ErrorIs(t, s.Set(context.Background(), "k", nil), common.ErrStorage)
	require.ErrorIs(t, s.Delete(context.Background(), "k"), common.ErrStorage)
}
