package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/fastdatetime/internal/observability"
	"github.com/hrygo/fastdatetime/internal/profile"
	"github.com/hrygo/fastdatetime/plugin/dateparse"
)

var winter = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

func newTestAPI(t *testing.T) (*APIV1Service, *echo.Echo) {
	t.Helper()
	metrics := observability.NewMetrics()
	parser := dateparse.NewService(
		dateparse.WithClock(func() time.Time { return winter }),
		dateparse.WithMetrics(metrics),
	)
	p := &profile.Profile{BatchMaxInputs: 3, MaxBatches: 1}
	api := NewAPIV1Service(p, parser, metrics)

	e := echo.New()
	api.Register(e)
	return api, e
}

func get(e *echo.Echo, path string, query url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path+"?"+query.Encode(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func post(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetParse(t *testing.T) {
	tests := []struct {
		name   string
		query  url.Values
		status int
		body   string
	}{
		{
			name:   "datetime",
			query:  url.Values{"input": {"2020-06-15 10:30"}},
			status: http.StatusOK,
			body:   `{"result":{"kind":"datetime","value":"2020-06-15T10:30:00"}}`,
		},
		{
			name:   "dayfirst",
			query:  url.Values{"input": {"01/02/2020"}, "dayfirst": {"true"}},
			status: http.StatusOK,
			body:   `{"result":{"kind":"datetime","value":"2020-02-01T00:00:00"}}`,
		},
		{
			name:   "missing input",
			query:  url.Values{},
			status: http.StatusBadRequest,
			body:   `{"code":"MALFORMED_INPUT","message":"input is required"}`,
		},
		{
			name:   "bad flag",
			query:  url.Values{"input": {"2020"}, "dayfirst": {"maybe"}},
			status: http.StatusBadRequest,
			body:   `{"code":"MALFORMED_INPUT","message":"invalid dayfirst \"maybe\""}`,
		},
		{
			name:   "out of range",
			query:  url.Values{"input": {"2021-02-29"}},
			status: http.StatusBadRequest,
			body:   `{"code":"FIELD_OUT_OF_RANGE","message":"day out of range: 29"}`,
		},
	}

	_, e := newTestAPI(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, "/api/v1/parse", tt.query)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestGetStrptime(t *testing.T) {
	tests := []struct {
		name   string
		query  url.Values
		status int
		body   string
	}{
		{
			name:   "zoned",
			query:  url.Values{"input": {"2020-06-15T10:00:00+05:30"}, "format": {"%Y-%m-%dT%H:%M:%S%z"}},
			status: http.StatusOK,
			body:   `{"result":{"kind":"zoned_datetime","value":"2020-06-15T04:30:00Z"}}`,
		},
		{
			name:   "named zone",
			query:  url.Values{"input": {"2020-06-15 10:00:00 Europe/Paris"}, "format": {"%Y-%m-%d %H:%M:%S %Z"}},
			status: http.StatusOK,
			body:   `{"result":{"kind":"zoned_datetime","value":"2020-06-15T09:00:00Z"}}`,
		},
		{
			name:   "loose",
			query:  url.Values{"input": {"2020-06-15 and more"}, "format": {"%Y-%m-%d"}, "mode": {"loose"}},
			status: http.StatusOK,
			body:   `{"result":{"kind":"date","value":"2020-06-15"}}`,
		},
		{
			name:   "fallback",
			query:  url.Values{"input": {"2020-01"}, "format": {"%Y-%m-%d"}, "mode": {"fallback"}},
			status: http.StatusOK,
			body:   `{"result":{"kind":"date","value":"2020-01-01"}}`,
		},
		{
			name:   "strict trailing",
			query:  url.Values{"input": {"2020-06-15 and more"}, "format": {"%Y-%m-%d"}},
			status: http.StatusBadRequest,
			body:   `{"code":"MALFORMED_INPUT","message":"unparsed input \" and more\""}`,
		},
		{
			name:   "unknown zone",
			query:  url.Values{"input": {"2020-06-15 Nowhere/Land"}, "format": {"%Y-%m-%d %Z"}},
			status: http.StatusBadRequest,
			body:   `{"code":"INVALID_TIMEZONE","message":"Invalid timezone: Nowhere/Land"}`,
		},
		{
			name:   "bad format",
			query:  url.Values{"input": {"2020"}, "format": {"%Q"}},
			status: http.StatusBadRequest,
			body:   `{"code":"INVALID_FORMAT","message":"unknown directive %Q"}`,
		},
		{
			name:   "bad mode",
			query:  url.Values{"input": {"2020"}, "format": {"%Y"}, "mode": {"fuzzy"}},
			status: http.StatusBadRequest,
			body:   `{"code":"MALFORMED_INPUT","message":"unknown mode \"fuzzy\" (valid: strict, loose, fallback)"}`,
		},
		{
			name:   "missing format",
			query:  url.Values{"input": {"2020"}},
			status: http.StatusBadRequest,
			body:   `{"code":"MALFORMED_INPUT","message":"input and format are required"}`,
		},
	}

	_, e := newTestAPI(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, "/api/v1/strptime", tt.query)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestPostBatch(t *testing.T) {
	_, e := newTestAPI(t)

	t.Run("mixed results", func(t *testing.T) {
		rec := post(e, "/api/v1/batch", `{"op":"strptime","format":"%Y-%m-%d","inputs":["2020-06-15","nope"]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"items":[
			{"input":"2020-06-15","result":{"kind":"date","value":"2020-06-15"}},
			{"input":"nope","error":{"code":"MALFORMED_INPUT","message":"expected year digits at offset 0"}}
		]}`, rec.Body.String())
	})

	t.Run("parse op needs no format", func(t *testing.T) {
		rec := post(e, "/api/v1/batch", `{"op":"parse","dayfirst":true,"inputs":["01/02/2020"]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Items []struct {
				Result struct {
					Value string `json:"value"`
				} `json:"result"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "2020-02-01T00:00:00", resp.Items[0].Result.Value)
	})

	rejected := []struct {
		name string
		body string
		want string
	}{
		{"too many", `{"op":"parse","inputs":["1","2","3","4"]}`, `{"code":"MALFORMED_INPUT","message":"too many inputs: 4 (max 3)"}`},
		{"empty", `{"op":"parse","inputs":[]}`, `{"code":"MALFORMED_INPUT","message":"inputs are required"}`},
		{"missing format", `{"op":"strptime","inputs":["2020"]}`, `{"code":"MALFORMED_INPUT","message":"format is required"}`},
		{"unknown op", `{"op":"guess","inputs":["2020"]}`, `{"code":"MALFORMED_INPUT","message":"unknown batch operation \"guess\""}`},
		{"bad json", `{"op":`, `{"code":"MALFORMED_INPUT","message":"invalid request body"}`},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(e, "/api/v1/batch", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestPostBatch_Busy(t *testing.T) {
	api, e := newTestAPI(t)
	require.True(t, api.batchSemaphore.TryAcquire(1))
	defer api.batchSemaphore.Release(1)

	rec := post(e, "/api/v1/batch", `{"op":"parse","inputs":["2020"]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"code":"BATCH_BUSY","message":"too many concurrent batches"}`, rec.Body.String())
}

func TestGetMetricsOverview(t *testing.T) {
	_, e := newTestAPI(t)
	get(e, "/api/v1/strptime", url.Values{"input": {"2020-06-15"}, "format": {"%Y-%m-%d"}})
	get(e, "/api/v1/strptime", url.Values{"input": {"2020-06-16"}, "format": {"%Y-%m-%d"}})
	get(e, "/api/v1/parse", url.Values{"input": {"nonsense"}})

	rec := get(e, "/api/v1/system/metrics", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MetricsOverviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.TotalCalls)
	assert.Equal(t, int64(1), resp.ErrorCount)
	assert.InDelta(t, 66.67, resp.SuccessRate, 0.01)
	assert.Equal(t, int64(2), resp.Ops[dateparse.OpStrptime].CallCount)
	assert.Equal(t, FormatCacheStats{Hits: 1, Misses: 1, Size: 1}, resp.FormatCache)
	assert.Equal(t, "now", resp.ZoneMode)
}
