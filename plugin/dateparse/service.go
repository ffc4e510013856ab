package dateparse

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/fastdatetime/internal/errors"
	"github.com/hrygo/fastdatetime/internal/observability"
	"github.com/hrygo/fastdatetime/plugin/dateparse/civil"
	"github.com/hrygo/fastdatetime/plugin/dateparse/heuristic"
	"github.com/hrygo/fastdatetime/plugin/dateparse/strptime"
	"github.com/hrygo/fastdatetime/server/timezone"
)

// Operation names used in logs, metrics, and batch requests.
const (
	OpParse            = "parse"
	OpStrptime         = "strptime"
	OpStrptimeLoose    = "strptime_loose"
	OpStrptimeFallback = "strptime_fallback"
	OpFormat           = "format"
)

// DefaultBatchConcurrency bounds ParseBatch when no limit is configured.
const DefaultBatchConcurrency = 8

// Service implements DateTimeParser. It is safe for concurrent use.
type Service struct {
	parser    *heuristic.Parser
	parserErr error

	interp   *strptime.Interpreter
	resolver *timezone.Resolver

	logger     *slog.Logger
	metrics    *observability.Metrics
	batchLimit int
}

var _ DateTimeParser = (*Service)(nil)

type serviceConfig struct {
	now        func() time.Time
	parser     *heuristic.Parser
	zoneMode   timezone.Mode
	cacheSize  int
	logger     *slog.Logger
	metrics    *observability.Metrics
	batchLimit int
}

// Option configures a Service.
type Option func(*serviceConfig)

// WithClock sets the clock used for heuristic defaults and zone resolution.
func WithClock(now func() time.Time) Option {
	return func(c *serviceConfig) {
		c.now = now
	}
}

// WithHeuristicParser uses p instead of the process-wide heuristic parser.
func WithHeuristicParser(p *heuristic.Parser) Option {
	return func(c *serviceConfig) {
		c.parser = p
	}
}

// WithZoneResolution selects how named zones pick their offset.
func WithZoneResolution(mode timezone.Mode) Option {
	return func(c *serviceConfig) {
		c.zoneMode = mode
	}
}

// WithCacheSize sets the compiled-format cache capacity.
func WithCacheSize(n int) Option {
	return func(c *serviceConfig) {
		c.cacheSize = n
	}
}

// WithLogger sets the logger. Calls are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithBatchConcurrency bounds the number of items ParseBatch runs at once.
func WithBatchConcurrency(n int) Option {
	return func(c *serviceConfig) {
		c.batchLimit = n
	}
}

// NewService creates a new parse service.
func NewService(opts ...Option) *Service {
	cfg := serviceConfig{
		zoneMode:   timezone.ResolveAtNow,
		logger:     slog.Default(),
		metrics:    observability.GlobalMetrics(),
		batchLimit: DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Service{
		parser:     cfg.parser,
		interp:     strptime.New(cfg.cacheSize),
		logger:     cfg.logger,
		metrics:    cfg.metrics,
		batchLimit: cfg.batchLimit,
	}
	if s.batchLimit <= 0 {
		s.batchLimit = DefaultBatchConcurrency
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics()
	}

	resolverOpts := []timezone.ResolverOption{timezone.WithMode(cfg.zoneMode)}
	if cfg.now != nil {
		resolverOpts = append(resolverOpts, timezone.WithClock(cfg.now))
		if s.parser == nil {
			// a custom clock needs its own heuristic parser; the shared one reads time.Now
			p, err := heuristic.New(heuristic.WithClock(cfg.now))
			if err != nil {
				s.parserErr = errors.ParserUnavailable(err)
			}
			s.parser = p
		}
	}
	s.resolver = timezone.NewResolver(resolverOpts...)
	return s
}

// Parse parses free-form text into a KindDateTime result.
func (s *Service) Parse(input string, dayfirst, yearfirst bool) (Result, error) {
	return s.observe(OpParse, input, "", func() (Result, error) {
		p, err := s.heuristicParser()
		if err != nil {
			return Result{}, err
		}
		dt, err := p.Parse(input, dayfirst, yearfirst)
		if err != nil {
			return Result{}, err
		}
		return DateTimeResult(dt), nil
	})
}

func (s *Service) heuristicParser() (*heuristic.Parser, error) {
	if s.parserErr != nil {
		return nil, s.parserErr
	}
	if s.parser != nil {
		return s.parser, nil
	}
	return heuristic.Default()
}

// StrptimeFallback matches input against format and degrades gracefully.
//
// The last ".%f" in format is rewritten to "%.f" so a missing fraction is
// accepted. A complete match with year, month, day, and hour yields a
// DateTime (aligned to UTC when a zone was parsed). Otherwise unset fields
// are filled in the order fraction, second, minute, hour, day, month, year
// with 0, 0, 0, 0, 1, 1, 1900 until a date materializes; the time is kept
// only when the hour came from the input.
func (s *Service) StrptimeFallback(input, format string) (Result, error) {
	return s.observe(OpStrptimeFallback, input, format, func() (Result, error) {
		m, matchErr := s.interp.Match(input, strptime.RewriteFraction(format), strptime.Partial)
		if errors.IsCode(matchErr, errors.ErrCodeInvalidFormat) {
			return Result{}, matchErr
		}

		failure := matchErr
		if failure == nil && m.Fields.HasDateTime() {
			dt, err := m.Fields.ToDateTime()
			if err == nil {
				return s.alignDateTime(dt, m.Zone, KindDateTime)
			}
			failure = err
		}

		deg, err := m.Fields.Degrade()
		if err != nil {
			if failure == nil {
				failure = err
			}
			return Result{}, &errors.ParseError{
				Code:    errors.GetCodeFromError(failure, errors.ErrCodeMalformedInput),
				Message: "Unable to parse date due to " + failure.Error(),
			}
		}
		if deg.HasTime {
			return s.alignDateTime(deg.DateTime, m.Zone, KindDateTime)
		}
		return DateResult(deg.Date), nil
	})
}

// Strptime matches the whole input against format.
func (s *Service) Strptime(input, format string) (Result, error) {
	return s.observe(OpStrptime, input, format, func() (Result, error) {
		return s.strptime(input, format, strptime.Strict)
	})
}

// StrptimeLoose matches input against format with whitespace and
// trailing-input tolerance.
func (s *Service) StrptimeLoose(input, format string) (Result, error) {
	return s.observe(OpStrptimeLoose, input, format, func() (Result, error) {
		return s.strptime(input, format, strptime.Loose)
	})
}

func (s *Service) strptime(input, format string, mode strptime.Mode) (Result, error) {
	m, err := s.interp.Match(input, format, mode)
	if err != nil {
		return Result{}, err
	}

	f := &m.Fields
	hasHour := f.Has(civil.FieldHour)
	f.SetDefault(civil.FieldYear, 1900)
	f.SetDefault(civil.FieldMonth, 1)
	f.SetDefault(civil.FieldDay, 1)

	var dt civil.DateTime
	if hasHour {
		if dt, err = f.ToDateTime(); err != nil {
			return Result{}, err
		}
	} else {
		d, err := f.ToDate()
		if err != nil {
			return Result{}, err
		}
		if m.Zone.IsZero() {
			return DateResult(d), nil
		}
		dt = d.AtMidnight()
	}

	if m.Zone.IsZero() {
		return DateTimeResult(dt), nil
	}
	return s.alignDateTime(dt, m.Zone, KindZonedDateTime)
}

// alignDateTime aligns dt to UTC when zone is set and tags the result.
func (s *Service) alignDateTime(dt civil.DateTime, zone timezone.Specifier, kind Kind) (Result, error) {
	if zone.IsZero() {
		return Result{kind: kind, value: dt}, nil
	}
	aligned, err := s.resolver.Align(dt, zone)
	if err != nil {
		return Result{}, err
	}
	if err := aligned.Validate(); err != nil {
		return Result{}, err
	}
	if name, ok := zone.IsName(); ok && s.resolver.Mode() == timezone.ResolveAtNow {
		s.logger.Warn("named zone resolved at current offset",
			slog.String("zone", name),
			slog.String(observability.LogFieldOp, "align"))
	}
	return Result{kind: kind, value: aligned}, nil
}

// Format renders r with strftime directives.
func (s *Service) Format(r Result, format string) string {
	start := time.Now()
	out := r.Format(format)
	s.metrics.Record(OpFormat, time.Since(start), nil)
	return out
}

// Resolver returns the zone resolver used by s.
func (s *Service) Resolver() *timezone.Resolver {
	return s.resolver
}

// CacheStats reports compiled-format cache hits, misses, and size.
func (s *Service) CacheStats() (hits, misses int64, size int) {
	return s.interp.CacheStats()
}

// observe times fn, records metrics, and logs the call.
func (s *Service) observe(op, input, format string, fn func() (Result, error)) (Result, error) {
	start := time.Now()
	r, err := fn()
	elapsed := time.Since(start)
	s.metrics.Record(op, elapsed, err)

	attrs := []slog.Attr{
		slog.String(observability.LogFieldOp, op),
		slog.Int(observability.LogFieldInputLen, len(input)),
		slog.Int64(observability.LogFieldDuration, elapsed.Microseconds()),
	}
	if format != "" {
		attrs = append(attrs, slog.String(observability.LogFieldFormat, format))
	}
	if err != nil {
		attrs = append(attrs,
			slog.String(observability.LogFieldErrorCode, string(errors.GetCodeFromError(err, errors.ErrCodeMalformedInput))),
			slog.String("error", err.Error()))
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "parse failed", attrs...)
		return Result{}, err
	}
	attrs = append(attrs, slog.String(observability.LogFieldKind, r.Kind().String()))
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "parsed", attrs...)
	return r, nil
}
