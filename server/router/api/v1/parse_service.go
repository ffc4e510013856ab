package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/fastdatetime/internal/errors"
	"github.com/hrygo/fastdatetime/plugin/dateparse"
)

// Strptime modes accepted by GET /api/v1/strptime.
const (
	ModeStrict   = "strict"
	ModeLoose    = "loose"
	ModeFallback = "fallback"
)

// GetParse parses free-form text.
// GET /api/v1/parse?input=&dayfirst=&yearfirst=
func (s *APIV1Service) GetParse(c echo.Context) error {
	input := c.QueryParam("input")
	if input == "" {
		return badRequest(c, "input is required")
	}
	dayfirst, err := boolParam(c, "dayfirst", s.Profile.DayFirst)
	if err != nil {
		return badRequest(c, err.Error())
	}
	yearfirst, err := boolParam(c, "yearfirst", s.Profile.YearFirst)
	if err != nil {
		return badRequest(c, err.Error())
	}

	r, err := s.Parser.Parse(input, dayfirst, yearfirst)
	if err != nil {
		return parseError(c, err)
	}
	return c.JSON(http.StatusOK, ResultResponse{Result: r})
}

// GetStrptime parses input with a strftime format.
// GET /api/v1/strptime?input=&format=&mode=strict|loose|fallback
func (s *APIV1Service) GetStrptime(c echo.Context) error {
	input, format := c.QueryParam("input"), c.QueryParam("format")
	if input == "" || format == "" {
		return badRequest(c, "input and format are required")
	}

	var (
		r   dateparse.Result
		err error
	)
	switch mode := c.QueryParam("mode"); mode {
	case "", ModeStrict:
		r, err = s.Parser.Strptime(input, format)
	case ModeLoose:
		r, err = s.Parser.StrptimeLoose(input, format)
	case ModeFallback:
		r, err = s.Parser.StrptimeFallback(input, format)
	default:
		return badRequest(c, fmt.Sprintf("unknown mode %q (valid: strict, loose, fallback)", mode))
	}
	if err != nil {
		return parseError(c, err)
	}
	return c.JSON(http.StatusOK, ResultResponse{Result: r})
}

// BatchResponse is the body of POST /api/v1/batch.
type BatchResponse struct {
	Items []dateparse.BatchItem `json:"items"`
}

// PostBatch runs one operation over many inputs.
// POST /api/v1/batch
func (s *APIV1Service) PostBatch(c echo.Context) error {
	var req dateparse.BatchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if len(req.Inputs) == 0 {
		return badRequest(c, "inputs are required")
	}
	if limit := s.Profile.BatchMaxInputs; limit > 0 && len(req.Inputs) > limit {
		return badRequest(c, fmt.Sprintf("too many inputs: %d (max %d)", len(req.Inputs), limit))
	}
	switch req.Op {
	case dateparse.OpStrptime, dateparse.OpStrptimeLoose, dateparse.OpStrptimeFallback:
		if req.Format == "" {
			return badRequest(c, "format is required")
		}
	}

	if !s.batchSemaphore.TryAcquire(1) {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:    "BATCH_BUSY",
			Message: "too many concurrent batches",
		})
	}
	defer s.batchSemaphore.Release(1)

	ctx := c.Request().Context()
	items, err := s.Parser.ParseBatch(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.GetCodeFromError(err, "") != "" {
			return parseError(c, err)
		}
		return err
	}
	return c.JSON(http.StatusOK, BatchResponse{Items: items})
}

func boolParam(c echo.Context, name string, def bool) (bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", name, v)
	}
	return b, nil
}
