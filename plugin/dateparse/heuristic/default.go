package heuristic

import (
	"sync"
	"sync/atomic"

	"github.com/hrygo/fastdatetime/internal/errors"
)

var (
	defaultOnce   sync.Once
	defaultParser *Parser
	defaultErr    error
	defaultBuilds atomic.Int32
)

// Default returns the process-wide Parser, building it on first use.
// A construction failure is remembered: every later call returns the same
// PARSER_UNAVAILABLE error.
func Default() (*Parser, error) {
	defaultOnce.Do(func() {
		defaultBuilds.Add(1)
		defaultParser, defaultErr = New()
		if defaultErr != nil {
			defaultErr = errors.ParserUnavailable(defaultErr)
		}
	})
	return defaultParser, defaultErr
}
