package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldOp is the field name for the parse operation.
	LogFieldOp = "op"
	// LogFieldDuration is the field name for duration in microseconds.
	LogFieldDuration = "duration_us"
	// LogFieldInputLen is the field name for input length.
	LogFieldInputLen = "input_len"
	// LogFieldFormat is the field name for the format string.
	LogFieldFormat = "format"
	// LogFieldKind is the field name for the result kind.
	LogFieldKind = "kind"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
)

// CallContext carries the identity and logger of one parse call or HTTP request.
type CallContext struct {
	RequestID string
	Op        string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewCallContext creates a call context with a generated request ID.
func NewCallContext(logger *slog.Logger, op string) *CallContext {
	return NewCallContextWithID(logger, generateRequestID(), op)
}

// NewCallContextWithID creates a call context with a specific request ID.
func NewCallContextWithID(logger *slog.Logger, requestID, op string) *CallContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &CallContext{
		RequestID: requestID,
		Op:        op,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Debug logs a debug message.
func (c *CallContext) Debug(msg string, attrs ...slog.Attr) {
	c.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, c.baseAttrsAppended(attrs...)...)
}

// Warn logs a warning message.
func (c *CallContext) Warn(msg string, attrs ...slog.Attr) {
	c.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, c.baseAttrsAppended(attrs...)...)
}

// Error logs an error message with the error.
func (c *CallContext) Error(msg string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("error", err.Error()))
	c.Logger.LogAttrs(context.Background(), slog.LevelError, msg, c.baseAttrsAppended(attrs...)...)
}

// Duration returns the elapsed time since the call started.
func (c *CallContext) Duration() time.Duration {
	return time.Since(c.StartTime)
}

func (c *CallContext) baseAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String(LogFieldRequestID, c.RequestID),
		slog.String(LogFieldOp, c.Op),
	}
}

func (c *CallContext) baseAttrsAppended(attrs ...slog.Attr) []slog.Attr {
	return append(c.baseAttrs(), attrs...)
}

// generateRequestID generates a unique request ID using full UUID.
func generateRequestID() string {
	return uuid.New().String()
}

type ctxKey struct{}

// WithCallContext adds the call context to the context.
func WithCallContext(ctx context.Context, cc *CallContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, cc)
}

// FromContext extracts the call context from the context.
func FromContext(ctx context.Context) (*CallContext, bool) {
	cc, ok := ctx.Value(ctxKey{}).(*CallContext)
	return cc, ok
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if cc, ok := FromContext(ctx); ok {
		return cc.RequestID
	}
	return ""
}
