// Package logging defines the structured-logging interface shared by the
// intake client and the sheet emulator. The only implementation wraps slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Warn(ctx, "remote write failed", "sheet", sheet, "error", err)
type Logger interface {
	// Debug logs diagnostic detail (stale responses, skipped polls).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs degraded-but-handled conditions: failed remote reads,
	// swallowed storage errors, dropped fire-and-forget writes.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
