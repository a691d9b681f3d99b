package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithInvocation returns a logger with decision-path invocation fields attached.
// Use this for all logging within one agent invocation.
func WithInvocation(userID, triggerType string) *slog.Logger {
	return slog.With(
		"user_id", userID,
		"trigger_type", triggerType,
	)
}

// WithLearningRun returns a logger scoped to one user's learning run
func WithLearningRun(userID string) *slog.Logger {
	return slog.With(
		"user_id", userID,
		"path", "learning",
	)
}
