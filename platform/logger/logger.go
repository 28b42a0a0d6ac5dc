// Package logger provides structured logging infrastructure.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging.
type Logger struct {
	*slog.Logger
}

// New creates a logger for the given environment. Development gets human
// readable text at debug level, everything else JSON at info level.
func New(env string) *Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithUserID returns a logger with the acting user attached.
func (l *Logger) WithUserID(userID int64) *Logger {
	return &Logger{Logger: l.With(slog.Int64("user_id", userID))}
}

// HTTPRequest logs a completed HTTP request with timing.
func (l *Logger) HTTPRequest(method, path, requestID string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// DatabaseError logs database errors.
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

// ClockEvent logs an accepted clock entry.
func (l *Logger) ClockEvent(userID int64, kind string, entryID int64) {
	l.Info("clock_event",
		slog.Int64("user_id", userID),
		slog.String("kind", kind),
		slog.Int64("entry_id", entryID),
	)
}

// AlertEvent logs inconsistency alert creation and escalation.
func (l *Logger) AlertEvent(event string, alertID, userID int64, severity int) {
	l.Warn("alert_event",
		slog.String("event", event),
		slog.Int64("alert_id", alertID),
		slog.Int64("user_id", userID),
		slog.Int("severity", severity),
	)
}
