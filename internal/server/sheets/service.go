package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/oskolki/internal/common"
	"github.com/dmitrijs2005/oskolki/internal/logging"
	"github.com/google/uuid"
)

type Service struct {
	repo  Repository
	log   logging.Logger
	newID func() string
}

func NewService(repo Repository, log logging.Logger) *Service {
	return &Service{repo: repo, log: log.With("module", "sheets"), newID: uuid.NewString}
}

func checkSheet(sheet string) (string, error) {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		return "", fmt.Errorf("%w: sheet is required", common.ErrValidation)
	}
	return sheet, nil
}

func (s *Service) Read(ctx context.Context, sheet string) ([]json.RawMessage, error) {
	sheet, err := checkSheet(sheet)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, sheet)
}

// Write applies one posted payload: an object is upserted by its key, the
// array ["DELETE", id] removes the row with that key.
func (s *Service) Write(ctx context.Context, sheet string, data json.RawMessage) error {
	sheet, err := checkSheet(sheet)
	if err != nil {
		return err
	}

	data = bytes.TrimSpace(data)
	switch {
	case len(data) > 0 && data[0] == '[':
		return s.delete(ctx, sheet, data)
	case len(data) > 0 && data[0] == '{':
		return s.upsert(ctx, sheet, data)
	}
	return fmt.Errorf("%w: data must be an object or a delete command", common.ErrValidation)
}

func (s *Service) delete(ctx context.Context, sheet string, data json.RawMessage) error {
	var cmd []any
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("%w: %v", common.ErrParse, err)
	}
	if len(cmd) != 2 || cmd[0] != common.DeleteMarker {
		return fmt.Errorf("%w: expected [%q, id]", common.ErrValidation, common.DeleteMarker)
	}
	key := keyString(cmd[1])
	if key == "" {
		return fmt.Errorf("%w: delete without id", common.ErrValidation)
	}

	found, err := s.repo.Delete(ctx, sheet, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s/%s", common.ErrNotFound, sheet, key)
	}
	s.log.Info(ctx, "row deleted", "sheet", sheet, "key", key)
	return nil
}

func (s *Service) upsert(ctx context.Context, sheet string, data json.RawMessage) error {
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		return fmt.Errorf("%w: %v", common.ErrParse, err)
	}

	key := rowKey(sheet, row)
	if key == "" {
		key = s.newID()
		row["id"] = key
	}
	b, err := json.Marshal(row)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, sheet, key, b); err != nil {
		return err
	}
	s.log.Debug(ctx, "row stored", "sheet", sheet, "key", key)
	return nil
}

// rowKey is the application timestamp on the applications sheet and the
// id everywhere else, falling back to the other field.
func rowKey(sheet string, row map[string]any) string {
	fields := []string{"id", "timestamp"}
	if sheet == common.SheetApplications {
		fields = []string{"timestamp", "id"}
	}
	for _, f := range fields {
		if k := keyString(row[f]); k != "" {
			return k
		}
	}
	return ""
}

func keyString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
