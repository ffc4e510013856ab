package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/fastdatetime/internal/errors"
	"github.com/hrygo/fastdatetime/internal/observability"
	"github.com/hrygo/fastdatetime/internal/profile"
	"github.com/hrygo/fastdatetime/plugin/dateparse"
)

type APIV1Service struct {
	Profile *profile.Profile
	Parser  *dateparse.Service
	Metrics *observability.Metrics

	// batchSemaphore limits concurrent batch requests so one client cannot
	// occupy every parse worker
	batchSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, parser *dateparse.Service, metrics *observability.Metrics) *APIV1Service {
	if metrics == nil {
		metrics = observability.GlobalMetrics()
	}
	maxBatches := profile.MaxBatches
	if maxBatches <= 0 {
		maxBatches = 1
	}
	return &APIV1Service{
		Profile:        profile,
		Parser:         parser,
		Metrics:        metrics,
		batchSemaphore: semaphore.NewWeighted(int64(maxBatches)),
	}
}

// Register mounts the v1 routes on echoServer. mws run after CORS for every
// v1 route.
func (s *APIV1Service) Register(echoServer *echo.Echo, mws ...echo.MiddlewareFunc) {
	g := echoServer.Group("/api/v1", middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	g.Use(mws...)

	g.GET("/parse", s.GetParse)
	g.GET("/strptime", s.GetStrptime)
	g.POST("/batch", s.PostBatch)
	g.GET("/system/metrics", s.GetMetricsOverview)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResultResponse is the body of a successful single parse.
type ResultResponse struct {
	Result dateparse.Result `json:"result"`
}

// parseError writes err as an ErrorResponse. Parse failures are client
// errors; an unavailable parser is a server error.
func parseError(c echo.Context, err error) error {
	code := errors.GetCodeFromError(err, errors.ErrCodeMalformedInput)
	status := http.StatusBadRequest
	if code == errors.ErrCodeParserUnavailable {
		status = http.StatusServiceUnavailable
		if cc, ok := observability.FromContext(c.Request().Context()); ok {
			cc.Error("heuristic parser unavailable", err)
		} else {
			slog.Error("heuristic parser unavailable", slog.String("error", err.Error()))
		}
	}
	return c.JSON(status, ErrorResponse{Code: string(code), Message: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Code: string(errors.ErrCodeMalformedInput), Message: msg})
}
