package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/common"
)

// Status of an application in the review pipeline.
type Status string

const (
	StatusNew      Status = "new"
	StatusViewed   Status = "viewed"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var statusLabels = map[Status]string{
	StatusNew:      "новая",
	StatusViewed:   "просмотрено",
	StatusApproved: "одобрено",
	StatusRejected: "отказ",
}

// Label is the wire (and display) form of the status.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[StatusNew]
}

// ParseStatus accepts either the English name or the Russian label. Empty
// input is StatusNew.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StatusNew, nil
	}
	for st, label := range statusLabels {
		if s == string(st) || s == label {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", common.ErrValidation, s)
}

// Rating is "" (unrated) or "1".."3".
type Rating string

// NewRating converts a star count to a Rating; 0 clears it.
func NewRating(stars int) (Rating, error) {
	if stars < 0 || stars > 3 {
		return "", fmt.Errorf("%w: rating must be 0..3, got %d", common.ErrValidation, stars)
	}
	if stars == 0 {
		return "", nil
	}
	return Rating(strconv.Itoa(stars)), nil
}

// Stars is the numeric rating, 0 when unrated or malformed.
func (r Rating) Stars() int {
	n, err := strconv.Atoi(string(r))
	if err != nil || n < 0 || n > 3 {
		return 0
	}
	return n
}

func normalizeRating(s string) Rating {
	r, err := NewRating(Rating(strings.TrimSpace(s)).Stars())
	if err != nil {
		return ""
	}
	return r
}

// Application is a job submission. ID is the submission timestamp and is
// the primary key everywhere, including the remote sheet.
type Application struct {
	ID       string `json:"timestamp"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
	Salary   string `json:"salary"`
	Status   Status `json:"status"`
	Notes    string `json:"notes"`
	Rating   Rating `json:"rating"`
}

// ApplicationForm is what an applicant fills in.
type ApplicationForm struct {
	FullName string
	Email    string
	Phone    string
	Position string
	Salary   string
}

func (f ApplicationForm) Validate() error {
	required := []struct{ name, value string }{
		{"fullName", f.FullName},
		{"email", f.Email},
		{"phone", f.Phone},
		{"position", f.Position},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", common.ErrValidation, r.name)
		}
	}
	if !strings.Contains(f.Email, "@") {
		return fmt.Errorf("%w: email %q is malformed", common.ErrValidation, f.Email)
	}
	return nil
}

// IDLayout renders application ids the way browsers print ISO timestamps.
const IDLayout = "2006-01-02T15:04:05.000Z07:00"

// NewApplication builds a fresh record from a validated form.
func NewApplication(f ApplicationForm, at time.Time) Application {
	return Application{
		ID:       at.UTC().Format(IDLayout),
		FullName: strings.TrimSpace(f.FullName),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		Position: strings.TrimSpace(f.Position),
		Salary:   strings.TrimSpace(f.Salary),
		Status:   StatusNew,
		Notes:    "",
		Rating:   "",
	}
}

func (a Application) ToRow() Row {
	return Row{
		"timestamp": a.ID,
		"fullName":  a.FullName,
		"email":     a.Email,
		"phone":     a.Phone,
		"position":  a.Position,
		"salary":    a.Salary,
		"status":    a.Status.Label(),
		"notes":     a.Notes,
		"rating":    string(a.Rating),
	}
}

// ApplicationFromRow tolerates unknown statuses (mapped to new) and
// numeric ratings. Rows without a timestamp are rejected.
func ApplicationFromRow(r Row) (Application, error) {
	id := r.String("timestamp")
	if id == "" {
		return Application{}, fmt.Errorf("%w: application row without timestamp", common.ErrParse)
	}
	st, err := ParseStatus(r.String("status"))
	if err != nil {
		st = StatusNew
	}
	return Application{
		ID:       id,
		FullName: r.String("fullName"),
		Email:    r.String("email"),
		Phone:    r.String("phone"),
		Position: r.String("position"),
		Salary:   r.String("salary"),
		Status:   st,
		Notes:    r.String("notes"),
		Rating:   normalizeRating(r.String("rating")),
	}, nil
}
