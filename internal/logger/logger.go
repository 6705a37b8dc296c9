package logger

import (
	"io"
	"log/slog"

	"github.com/jwebster45206/worldforge/internal/config"
)

// NewHandler builds the handler for the environment: JSON in production,
// text otherwise.
func NewHandler(cfg *config.Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.Environment == "production" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Setup configures the global slog logger to write to w
func Setup(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := slog.New(NewHandler(cfg, w))
	slog.SetDefault(logger)
	return logger
}

// WithSession adds the session id to logger context
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	return logger.With("session_id", sessionID)
}
