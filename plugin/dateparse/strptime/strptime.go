// Package strptime matches inputs against strftime-style format strings.
//
// A format is compiled once into a Program of literal, whitespace, and
// directive items. Programs are cached by format string in an Interpreter,
// so repeated calls with the same format skip compilation.
//
// Supported directives:
//
//	%Y %y %m %d %e %j          date fields (%y pivots at 69)
//	%H %k %I %l %p %P          hour, 12-hour clock, AM/PM
//	%M %S %f %.f               minute, second, 1-9 fraction digits
//	%z %Z                      offset (Z, ±HH, ±HHMM, ±HH:MM), zone name
//	%b %h %B %a %A             English month and weekday names
//	%F %T %D %R                %Y-%m-%d, %H:%M:%S, %m/%d/%y, %H:%M
//	%n %t %%                   whitespace, literal percent
package strptime

import (
	"github.com/hrygo/fastdatetime/plugin/dateparse/cache"
)

// Interpreter compiles and matches formats, caching compiled programs.
// It is safe for concurrent use.
type Interpreter struct {
	programs *cache.LRUCache[*Program]
}

// New creates an Interpreter whose program cache holds up to cacheSize formats.
func New(cacheSize int) *Interpreter {
	return &Interpreter{programs: cache.NewLRUCache[*Program](cacheSize)}
}

// Compile returns the cached Program for format, compiling it on first use.
func (in *Interpreter) Compile(format string) (*Program, error) {
	return in.programs.GetOrCompute(format, func() (*Program, error) {
		return Compile(format)
	})
}

// Match compiles format and runs it over input. See Program.Match.
func (in *Interpreter) Match(input, format string, mode Mode) (Match, error) {
	p, err := in.Compile(format)
	if err != nil {
		return Match{}, err
	}
	return p.Match(input, mode)
}

// CacheStats reports compiled-program cache hits, misses, and current size.
func (in *Interpreter) CacheStats() (hits, misses int64, size int) {
	hits, misses = in.programs.Stats()
	return hits, misses, in.programs.Size()
}
