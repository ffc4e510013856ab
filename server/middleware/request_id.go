package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/fastdatetime/internal/observability"
)

// RequestID attaches a CallContext to every request. An incoming
// X-Request-ID is reused when it is a valid UUID; otherwise a new one is
// generated. The id is echoed in the response header.
func RequestID(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			op := req.Method + " " + c.Path()
			var cc *observability.CallContext
			if id := req.Header.Get(echo.HeaderXRequestID); isUUID(id) {
				cc = observability.NewCallContextWithID(logger, id, op)
			} else {
				cc = observability.NewCallContext(logger, op)
			}
			c.Response().Header().Set(echo.HeaderXRequestID, cc.RequestID)
			c.SetRequest(req.WithContext(observability.WithCallContext(req.Context(), cc)))

			err := next(c)
			status := c.Response().Status
			attrs := []slog.Attr{
				slog.Int("status", status),
				slog.Int64(observability.LogFieldDuration, cc.Duration().Microseconds()),
			}
			if status >= http.StatusInternalServerError {
				cc.Warn("request failed", attrs...)
			} else {
				cc.Debug("request handled", attrs...)
			}
			return err
		}
	}
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
