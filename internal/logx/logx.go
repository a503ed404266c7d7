package logx

import (
	"context"

	"pkt.systems/pslog"
)

type contextKey int

const (
	sessionKey contextKey = iota
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithSession annotates the logger with the session id if present.
func WithSession(ctx context.Context, sessionID string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if sessionID != "" {
		if current, ok := ctx.Value(sessionKey).(string); ok && current == sessionID {
			return log
		}
		log = log.With("session", sessionID)
	}
	return log
}

// WithWindow annotates the logger with the position of a window inside its
// session and, when known, its browser window id.
func WithWindow(log pslog.Logger, index int, windowID *int64) pslog.Logger {
	log = log.With("window", index)
	if windowID != nil {
		log = log.With("window_id", *windowID)
	}
	return log
}

// ContextWithSession stores the session marker on the context for log de-duplication.
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil || sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey, sessionID)
}

// ContextWithSessionLogger attaches a session-annotated logger and the session marker to the context.
func ContextWithSessionLogger(ctx context.Context, sessionID string) context.Context {
	log := WithSession(ctx, sessionID)
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithSession(ctx, sessionID)
}
