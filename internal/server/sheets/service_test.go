package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/oskolki/internal/common"
	"github.com/dmitrijs2005/oskolki/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo keeps insertion order like the Postgres table.
type memRepo struct {
	mu   sync.Mutex
	keys map[string][]string
	rows map[string]map[string][]byte
	err  error
}

func newMemRepo() *memRepo {
	return &memRepo{keys: map[string][]string{}, rows: map[string]map[string][]byte{}}
}

func (m *memRepo) List(_ context.Context, sheet string) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]json.RawMessage, 0, len(m.keys[sheet]))
	for _, k := range m.keys[sheet] {
		out = append(out, m.rows[sheet][k])
	}
	return out, nil
}

func (m *memRepo) Upsert(_ context.Context, sheet, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.rows[sheet] == nil {
		m.rows[sheet] = map[string][]byte{}
	}
	if _, ok := m.rows[sheet][key]; !ok {
		m.keys[sheet] = append(m.keys[sheet], key)
	}
	m.rows[sheet][key] = data
	return nil
}

func (m *memRepo) Delete(_ context.Context, sheet, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[sheet][key]; !ok {
		return false, nil
	}
	delete(m.rows[sheet], key)
	keys := m.keys[sheet][:0]
	for _, k := range m.keys[sheet] {
		if k != key {
			keys = append(keys, k)
		}
	}
	m.keys[sheet] = keys
	return true, nil
}

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	s := NewService(repo, logging.NewDiscardLogger())
	s.newID = func() string { return "generated" }
	return s, repo
}

func decode(t *testing.T, raw []json.RawMessage) []map[string]any {
	t.Helper()
	out := make([]map[string]any, len(raw))
	for i, r := range raw {
		require.NoError(t, json.Unmarshal(r, &out[i]))
	}
	return out
}

func TestWrite_UpsertsByKey(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, common.SheetApplications, json.RawMessage(`{"timestamp":"t1","fullName":"A","status":"новая"}`)))
	require.NoError(t, s.Write(ctx, common.SheetApplications, json.RawMessage(`{"timestamp":"t2","fullName":"B"}`)))
	require.NoError(t, s.Write(ctx, common.SheetApplications, json.RawMessage(`{"timestamp":"t1","fullName":"A","status":"одобрено"}`)))

	raw, err := s.Read(ctx, common.SheetApplications)
	require.NoError(t, err)
	rows := decode(t, raw)
	require.Len(t, rows, 2)
	assert.Equal(t, "t1", rows[0]["timestamp"])
	assert.Equal(t, "одобрено", rows[0]["status"])
	assert.Equal(t, "t2", rows[1]["timestamp"])
}

func TestWrite_GeneratesIDWhenMissing(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, common.SheetHolidays, json.RawMessage(`{"name":"Новый год","date":"2026-01-01"}`)))
	require.NoError(t, s.Write(ctx, common.SheetVacancies, json.RawMessage(`{"id":7,"title":"Повар"}`)))

	raw, err := s.Read(ctx, common.SheetHolidays)
	require.NoError(t, err)
	assert.Equal(t, "generated", decode(t, raw)[0]["id"])

	found, err := s.repo.Delete(ctx, common.SheetVacancies, "7")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestWrite_SentinelDelete(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, common.SheetHolidays, json.RawMessage(`{"id":"h1","name":"x","date":"2025-01-01"}`)))
	require.NoError(t, s.Write(ctx, common.SheetHolidays, json.RawMessage(`{"id":"h2","name":"y","date":"2025-01-02"}`)))

	require.NoError(t, s.Write(ctx, common.SheetHolidays, json.RawMessage(` ["DELETE", "h1"]`)))
	raw, err := s.Read(ctx, common.SheetHolidays)
	require.NoError(t, err)
	rows := decode(t, raw)
	require.Len(t, rows, 1)
	assert.Equal(t, "h2", rows[0]["id"])

	err = s.Write(ctx, common.SheetHolidays, json.RawMessage(`["DELETE","h1"]`))
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestWrite_Rejects(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		sheet string
		data  string
		want  error
	}{
		{"empty sheet", " ", `{"id":"1"}`, common.ErrValidation},
		{"scalar", "Чат", `"hello"`, common.ErrValidation},
		{"empty", "Чат", ``, common.ErrValidation},
		{"wrong marker", "Чат", `["REMOVE","1"]`, common.ErrValidation},
		{"no id", "Чат", `["DELETE",""]`, common.ErrValidation},
		{"long command", "Чат", `["DELETE","1","2"]`, common.ErrValidation},
		{"broken object", "Чат", `{"id":`, common.ErrParse},
		{"broken array", "Чат", `["DELETE"`, common.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Write(ctx, tt.sheet, json.RawMessage(tt.data))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRead_Errors(t *testing.T) {
	s, repo := newTestService()

	_, err := s.Read(context.Background(), "")
	require.ErrorIs(t, err, common.ErrValidation)

	repo.err = errors.New("db down")
	_, err = s.Read(context.Background(), "Чат")
	require.Error(t, err)
	require.Error(t, s.Write(context.Background(), "Чат", json.RawMessage(`{"id":"1"}`)))
}

func TestRowKey(t *testing.T) {
	assert.Equal(t, "t", rowKey(common.SheetApplications, map[string]any{"timestamp": "t", "id": "i"}))
	assert.Equal(t, "i", rowKey(common.SheetChat, map[string]any{"timestamp": "t", "id": "i"}))
	assert.Equal(t, "t", rowKey(common.SheetChat, map[string]any{"timestamp": "t"}))
	assert.Equal(t, "1.5", rowKey(common.SheetChat, map[string]any{"id": 1.5}))
	assert.Empty(t, rowKey(common.SheetChat, map[string]any{"id": true}))
}
