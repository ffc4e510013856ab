package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/fastdatetime/internal/observability"
)

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID(nil))
	e.GET("/id", func(c echo.Context) error {
		return c.String(http.StatusOK, observability.RequestIDFromContext(c.Request().Context()))
	})

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/id", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		id := rec.Header().Get(echo.HeaderXRequestID)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		want := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(echo.HeaderXRequestID, want)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, want, rec.Header().Get(echo.HeaderXRequestID))
		assert.Equal(t, want, rec.Body.String())
	})

	t.Run("invalid header replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(echo.HeaderXRequestID, "not-a-uuid")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.NotEqual(t, "not-a-uuid", rec.Header().Get(echo.HeaderXRequestID))
	})
}

func TestRequestID_WarnsOnServerError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestID(logger))
	e.GET("/busy", func(c echo.Context) error {
		return c.NoContent(http.StatusServiceUnavailable)
	})
	e.GET("/ok", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Empty(t, buf.String(), "successful requests log at debug")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/busy", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), entry[observability.LogFieldRequestID])
	assert.Equal(t, "GET /busy", entry[observability.LogFieldOp])
	assert.EqualValues(t, 503, entry["status"])
}
