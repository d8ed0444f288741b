package sheets

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/oskolki/internal/dbx"
	"github.com/dmitrijs2005/oskolki/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Open connects through the pgx stdlib driver and applies migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, sheet string) ([]json.RawMessage, error) {
	query :=
		`SELECT data FROM sheet_rows
		 WHERE sheet = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, sheet)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]json.RawMessage, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, sheet, key string, data []byte) error {
	query :=
		`INSERT INTO sheet_rows (sheet, row_key, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (sheet, row_key) DO UPDATE
		 SET data = EXCLUDED.data, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, sheet, key, data); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, sheet, key string) (bool, error) {
	query :=
		`DELETE FROM sheet_rows
		 WHERE sheet = $1 AND row_key = $2
		 `

	res, err := r.db.ExecContext(ctx, query, sheet, key)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return dbx.Touched(res)
}
