// Package requestctx carries per-request values through context: the
// request-scoped logger and the trace correlation the error envelope and
// Cloud Logging fields read. It sits below observability and httpx so
// neither has to import the other.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	traceKey
)

var nop = zap.NewNop()

// Trace identifies the request's trace for log correlation.
type Trace struct {
	ID        string
	ProjectID string
}

// Resource renders the Cloud Logging trace resource name, or "" when either
// part is missing.
func (t Trace) Resource() string {
	if t.ID == "" || t.ProjectID == "" {
		return ""
	}
	return "projects/" + t.ProjectID + "/traces/" + t.ID
}

// WithLogger stores the request logger on the context.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = nop
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the request logger, or a nop logger when none was injected.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return nop
	}
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return nop
}

// HasLogger reports whether a request logger was injected into the context.
func HasLogger(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	logger, ok := ctx.Value(loggerKey).(*zap.Logger)
	return ok && logger != nil && logger != nop
}

// WithTrace stores the trace correlation on the context.
func WithTrace(ctx context.Context, t Trace) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, traceKey, t)
}

// TraceFrom returns the trace correlation stored on the context, if any.
func TraceFrom(ctx context.Context) (Trace, bool) {
	if ctx == nil {
		return Trace{}, false
	}
	t, ok := ctx.Value(traceKey).(Trace)
	return t, ok
}

// TraceID returns the trace identifier from the context, or "".
func TraceID(ctx context.Context) string {
	t, _ := TraceFrom(ctx)
	return t.ID
}
