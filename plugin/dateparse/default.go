package dateparse

import (
	"context"
	"sync"
)

var (
	defaultOnce    sync.Once
	defaultService *Service
)

// Default returns the process-wide Service used by the package-level
// functions. It is built on first use with default options.
func Default() *Service {
	defaultOnce.Do(func() {
		defaultService = NewService()
	})
	return defaultService
}

// Parse parses free-form text with the default Service.
func Parse(input string, dayfirst, yearfirst bool) (Result, error) {
	return Default().Parse(input, dayfirst, yearfirst)
}

// StrptimeFallback matches input against format with the default Service.
func StrptimeFallback(input, format string) (Result, error) {
	return Default().StrptimeFallback(input, format)
}

// Strptime strictly matches input against format with the default Service.
func Strptime(input, format string) (Result, error) {
	return Default().Strptime(input, format)
}

// StrptimeLoose loosely matches input against format with the default Service.
func StrptimeLoose(input, format string) (Result, error) {
	return Default().StrptimeLoose(input, format)
}

// ParseBatch runs a batch with the default Service.
func ParseBatch(ctx context.Context, req BatchRequest) ([]BatchItem, error) {
	return Default().ParseBatch(ctx, req)
}
