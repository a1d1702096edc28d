// Package logging defines the structured-logging interface used across
// BugRadar. The server wires it to slog; tests use a discarding logger.
package logging

import "context"

// Logger takes a message plus alternating keys and values:
//
//	log.Info(ctx, "vote cast", "voter", voterID, "target", target)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child that attaches args to every record.
	With(args ...any) Logger
}
