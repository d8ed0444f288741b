package orchestrator

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/oskolki/internal/common"
)

// Fingerprint summarises a collection for change detection.
type Fingerprint struct {
	Len int
	Sum [sha256.Size]byte
}

func fingerprint(v any, n int) Fingerprint {
	fp := Fingerprint{Len: n}
	if b, err := json.Marshal(v); err == nil {
		fp.Sum = sha256.Sum256(b)
	}
	return fp
}

// Detector decides whether a polled collection holds new data. Only when
// it does is the held collection replaced and a notification raised.
type Detector interface {
	Name() string
	Changed(held, fetched Fingerprint) bool
}

// LengthDetector fires only when the fetched collection is strictly
// longer. Edits to existing records and remote deletions go unnoticed.
type LengthDetector struct{}

func (LengthDetector) Name() string { return "length" }

func (LengthDetector) Changed(held, fetched Fingerprint) bool {
	return fetched.Len > held.Len
}

// HashDetector fires on any content difference, including edits and
// deletions.
type HashDetector struct{}

func (HashDetector) Name() string { return "hash" }

func (HashDetector) Changed(held, fetched Fingerprint) bool {
	return held.Sum != fetched.Sum
}

func ParseDetector(s string) (Detector, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "length":
		return LengthDetector{}, nil
	case "hash":
		return HashDetector{}, nil
	}
	return nil, fmt.Errorf("%w: unknown change detection %q", common.ErrValidation, s)
}
