package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/common"
)

// DateLayout is the ISO calendar date used for holidays.
const DateLayout = "2006-01-02"

type Holiday struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	CreatedAt string `json:"createdAt"`
}

// NormalizeDate trims a spreadsheet date-time ("2025-01-01T00:00:00.000Z")
// down to its calendar date and checks it parses.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: date %q is not YYYY-MM-DD", common.ErrValidation, s)
	}
	return s, nil
}

// NewHoliday validates name and date; id and createdAt come from the caller.
func NewHoliday(id, name, date string, at time.Time) (Holiday, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Holiday{}, fmt.Errorf("%w: holiday name is required", common.ErrValidation)
	}
	d, err := NormalizeDate(date)
	if err != nil {
		return Holiday{}, err
	}
	return Holiday{ID: id, Name: name, Date: d, CreatedAt: at.UTC().Format(time.RFC3339)}, nil
}

func (h Holiday) ToRow() Row {
	return Row{"id": h.ID, "name": h.Name, "date": h.Date, "createdAt": h.CreatedAt}
}

func HolidayFromRow(r Row) (Holiday, error) {
	id := r.String("id")
	if id == "" {
		return Holiday{}, fmt.Errorf("%w: holiday row without id", common.ErrParse)
	}
	d, err := NormalizeDate(r.String("date"))
	if err != nil {
		return Holiday{}, fmt.Errorf("%w: holiday %s: %v", common.ErrParse, id, err)
	}
	return Holiday{ID: id, Name: r.String("name"), Date: d, CreatedAt: r.String("createdAt")}, nil
}
