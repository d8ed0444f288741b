// Package sheets stores the emulated spreadsheet: one ordered list of JSON
// rows per sheet name.
package sheets

import (
	"context"
	"encoding/json"
)

// Repository persists rows keyed by (sheet, key). List returns rows in
// insertion order; an upsert of an existing key keeps its position.
type Repository interface {
	List(ctx context.Context, sheet string) ([]json.RawMessage, error)
	Upsert(ctx context.Context, sheet, key string, data []byte) error
	Delete(ctx context.Context, sheet, key string) (bool, error)
}
