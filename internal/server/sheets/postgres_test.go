package sheets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

const (
	listQuery   = `(?s)^SELECT\s+data\s+FROM\s+sheet_rows\s+WHERE\s+sheet\s*=\s*\$1\s+ORDER\s+BY\s+id\s*$`
	upsertQuery = `(?s)^INSERT\s+INTO\s+sheet_rows\s*\(sheet,\s*row_key,\s*data\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(sheet,\s*row_key\)\s*DO\s+UPDATE.*$`
	deleteQuery = `(?s)^DELETE\s+FROM\s+sheet_rows\s+WHERE\s+sheet\s*=\s*\$1\s+AND\s+row_key\s*=\s*\$2\s*$`
)

func TestList(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"data"}).
		AddRow([]byte(`{"id":"1"}`)).
		AddRow([]byte(`{"id":"2"}`))
	mock.ExpectQuery(listQuery).WithArgs("Праздники").WillReturnRows(rows)

	got, err := repo.List(context.Background(), "Праздники")
	require.NoError(t, err)
	assert.Equal(t, []json.RawMessage{json.RawMessage(`{"id":"1"}`), json.RawMessage(`{"id":"2"}`)}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_Empty(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(listQuery).WithArgs("Чат").WillReturnRows(sqlmock.NewRows([]string{"data"}))

	got, err := repo.List(context.Background(), "Чат")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectQuery(listQuery).WithArgs("Чат").WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), "Чат")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestList_RowError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	rows := sqlmock.NewRows([]string{"data"}).
		AddRow([]byte(`{}`)).
		RowError(0, errors.New("broken row"))
	mock.ExpectQuery(listQuery).WithArgs("Чат").WillReturnRows(rows)

	_, err := repo.List(context.Background(), "Чат")
	require.Error(t, err)
}

func TestUpsert(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectExec(upsertQuery).
		WithArgs("Заявки", "2025-03-07T10:00:00.000Z", []byte(`{"timestamp":"2025-03-07T10:00:00.000Z"}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), "Заявки", "2025-03-07T10:00:00.000Z", []byte(`{"timestamp":"2025-03-07T10:00:00.000Z"}`))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectExec(upsertQuery).WillReturnError(errors.New("constraint"))

	err := repo.Upsert(context.Background(), "Заявки", "k", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestDelete(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectExec(deleteQuery).WithArgs("Праздники", "h1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteQuery).WithArgs("Праздники", "h2").WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.Delete(context.Background(), "Праздники", "h1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.Delete(context.Background(), "Праздники", "h2")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_Errors(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	mock.ExpectExec(deleteQuery).WillReturnError(errors.New("db down"))
	mock.ExpectExec(deleteQuery).WillReturnResult(sqlmock.NewErrorResult(errors.New("no count")))

	_, err := repo.Delete(context.Background(), "s", "k")
	require.Error(t, err)
	_, err = repo.Delete(context.Background(), "s", "k")
	require.Error(t, err)
}
