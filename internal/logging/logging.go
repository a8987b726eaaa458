// Package logging is the structured logger handed to every diary component.
// Recovery points (transform fallbacks, failed saves, skipped import rows)
// log through it instead of returning errors.
package logging

import "context"

// Logger takes key/value pairs after the message:
//
//	log.Warn(ctx, "transform: kept raw value", "field", "rating", "value", v)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
