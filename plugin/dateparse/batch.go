package dateparse

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/fastdatetime/internal/errors"
)

// BatchRequest names one operation to run over many inputs.
type BatchRequest struct {
	Op        string   `json:"op"`
	Format    string   `json:"format,omitempty"`
	DayFirst  bool     `json:"dayfirst,omitempty"`
	YearFirst bool     `json:"yearfirst,omitempty"`
	Inputs    []string `json:"inputs"`
}

// BatchItem is the outcome for one input of a batch.
type BatchItem struct {
	Input  string
	Result Result
	Err    error
}

type batchItemJSON struct {
	Input  string      `json:"input"`
	Result *Result     `json:"result,omitempty"`
	Error  *batchError `json:"error,omitempty"`
}

type batchError struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// MarshalJSON encodes the item with either a result or an error.
func (b BatchItem) MarshalJSON() ([]byte, error) {
	out := batchItemJSON{Input: b.Input}
	if b.Err != nil {
		out.Error = &batchError{
			Code:    errors.GetCodeFromError(b.Err, errors.ErrCodeMalformedInput),
			Message: b.Err.Error(),
		}
	} else {
		out.Result = &b.Result
	}
	return json.Marshal(out)
}

// op returns the single-input function for req.
func (s *Service) op(req BatchRequest) (func(string) (Result, error), error) {
	switch req.Op {
	case OpParse:
		return func(in string) (Result, error) { return s.Parse(in, req.DayFirst, req.YearFirst) }, nil
	case OpStrptime:
		return func(in string) (Result, error) { return s.Strptime(in, req.Format) }, nil
	case OpStrptimeLoose:
		return func(in string) (Result, error) { return s.StrptimeLoose(in, req.Format) }, nil
	case OpStrptimeFallback:
		return func(in string) (Result, error) { return s.StrptimeFallback(in, req.Format) }, nil
	default:
		return nil, errors.MalformedInputf("unknown batch operation %q", req.Op)
	}
}

// ParseBatch runs req.Op over req.Inputs concurrently and returns one item
// per input in input order. Per-item failures are carried in the items.
// When ctx is cancelled, items not yet started carry the context error and
// the context error is returned.
func (s *Service) ParseBatch(ctx context.Context, req BatchRequest) ([]BatchItem, error) {
	fn, err := s.op(req)
	if err != nil {
		return nil, err
	}

	items := make([]BatchItem, len(req.Inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)

	for i, input := range req.Inputs {
		items[i].Input = input
		if err := gctx.Err(); err != nil {
			items[i].Err = err
			continue
		}
		g.Go(func() error {
			items[i].Result, items[i].Err = fn(input)
			return nil
		})
	}
	_ = g.Wait()
	return items, ctx.Err()
}
