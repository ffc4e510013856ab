package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/fastdatetime/internal/observability"
	"github.com/hrygo/fastdatetime/internal/profile"
	"github.com/hrygo/fastdatetime/plugin/dateparse"
)

func newTestServer(p *profile.Profile) *Server {
	metrics := observability.NewMetrics()
	parser := dateparse.NewService(dateparse.WithMetrics(metrics))
	return NewServer(p, parser, metrics, nil)
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(&profile.Profile{Mode: "prod", BatchMaxInputs: 10, MaxBatches: 1})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/strptime?input=2020-06-15&format=%25Y-%25m-%25d", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":{"kind":"date","value":"2020-06-15"}}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestServer_RateLimited(t *testing.T) {
	s := newTestServer(&profile.Profile{Mode: "prod", BatchMaxInputs: 10, MaxBatches: 1, RateLimit: 0.001, RateBurst: 1})

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/parse?input=2020", nil)
		req.Header.Set(echo.HeaderXRealIP, "192.0.2.1")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())

	// health checks are not rate limited
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
