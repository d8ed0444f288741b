package common

import "errors"

// Callers match these with errors.Is; packages wrap them with detail via
// fmt.Errorf("%w: ...").
var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Remote read/write failures.
	ErrNetwork  = errors.New("network error")
	ErrParse    = errors.New("parse error")
	ErrRejected = errors.New("remote rejected request")

	// Local cache failures (serialization, quota, closed store).
	ErrStorage = errors.New("storage error")

	// Form and argument validation.
	ErrValidation = errors.New("validation error")

	// Session errors.
	ErrAuth      = errors.New("invalid credentials")
	ErrForbidden = errors.New("admin mode required")
)
