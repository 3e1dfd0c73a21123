// Package logger wraps log/slog with the handful of domain helpers the
// modules need. Development gets human-readable text, everything else JSON.
package logger

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type Logger struct {
	*slog.Logger
}

// New creates a logger for the given environment.
func New(env string) *Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithRequestID returns a logger scoped to one request.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With("request_id", requestID)}
}

// WithUserID returns a logger scoped to the acting user.
func (l *Logger) WithUserID(userID uuid.UUID) *Logger {
	return &Logger{Logger: l.Logger.With("user_id", userID.String())}
}

// HTTPRequest logs a completed HTTP request with timing.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http request",
		"method", method,
		"path", path,
		"status", status,
		"latency_ms", latencyMs,
		"client_ip", clientIP,
	)
}

// DatabaseError logs a store failure with the operation that hit it.
func (l *Logger) DatabaseError(op string, err error) {
	l.Error("database error", "op", op, "error", err)
}

// RateLimitExceeded logs a rejected request from a rate-limited client.
func (l *Logger) RateLimitExceeded(ip, path string) {
	l.Warn("rate limit exceeded", "ip", ip, "path", path)
}
