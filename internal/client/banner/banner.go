// Package banner derives the holiday banner from the holiday collection.
package banner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/client/models"
)

type Kind int

const (
	None Kind = iota
	Today
	Tomorrow
	Upcoming
)

const WorkingDaysText = "📅 Рабочие будни"

type Banner struct {
	Kind  Kind
	Names []string
	// Date is the ISO date of the holiday shown, empty for None.
	Date string
	// Days until Date at midnight granularity: 0 today, 1 tomorrow.
	Days int
}

func (b Banner) Text() string {
	names := strings.Join(b.Names, ", ")
	switch b.Kind {
	case Today:
		return "🎉 Праздник сегодня: " + names
	case Tomorrow:
		return "⏳ Завтра праздник: " + names
	case Upcoming:
		d, _ := time.Parse(models.DateLayout, b.Date)
		return fmt.Sprintf("📅 Ближайший праздник: %s — %s (через %d дн.)", names, d.Format("02.01.2006"), b.Days)
	default:
		return WorkingDaysText
	}
}

// midnight is the calendar date of t as a UTC midnight, so subtracting two
// of them never trips over DST shifts.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute picks holidays dated today (by exact ISO string) or, failing
// that, the earliest future date. Past and malformed dates are ignored.
// "Today" is the calendar date of now in now's location.
func Compute(holidays []models.Holiday, now time.Time) Banner {
	today := now.Format(models.DateLayout)

	var todays []string
	for _, h := range holidays {
		if h.Date == today {
			todays = append(todays, h.Name)
		}
	}
	if len(todays) > 0 {
		return Banner{Kind: Today, Names: todays, Date: today}
	}

	base := midnight(now)
	nextDate := ""
	var next []models.Holiday
	for _, h := range holidays {
		d, err := time.Parse(models.DateLayout, h.Date)
		if err != nil || !d.After(base) {
			continue
		}
		switch {
		case nextDate == "" || h.Date < nextDate:
			nextDate = h.Date
			next = []models.Holiday{h}
		case h.Date == nextDate:
			next = append(next, h)
		}
	}
	if nextDate == "" {
		return Banner{Kind: None}
	}

	sort.SliceStable(next, func(i, j int) bool { return next[i].Name < next[j].Name })
	names := make([]string, len(next))
	for i, h := range next {
		names[i] = h.Name
	}

	d, _ := time.Parse(models.DateLayout, nextDate)
	days := int(d.Sub(base).Hours() / 24)
	kind := Upcoming
	if days == 1 {
		kind = Tomorrow
	}
	return Banner{Kind: kind, Names: names, Date: nextDate, Days: days}
}
