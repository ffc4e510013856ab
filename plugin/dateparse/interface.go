// Package dateparse turns date/time text into normalized temporal values.
//
// Three strategies are offered: a heuristic free-form parser (Parse), a
// format-guided parser that degrades to partial results (StrptimeFallback),
// and zone-aware strict and loose format-guided parsers (Strptime,
// StrptimeLoose). Every operation returns a Result tagged with its
// precision, or an *errors.ParseError.
package dateparse

import (
	"context"
)

// DateTimeParser is the parse surface shared by Service and the
// package-level functions.
type DateTimeParser interface {
	// Parse reads free-form text. dayfirst and yearfirst break ties between
	// ambiguous numeric runs. The result is always KindDateTime.
	Parse(input string, dayfirst, yearfirst bool) (Result, error)

	// StrptimeFallback matches input against format, filling missing fields
	// with defaults. Returns KindDateTime or KindDate.
	StrptimeFallback(input, format string) (Result, error)

	// Strptime matches the whole input against format. A zone in the input
	// aligns the value to UTC and yields KindZonedDateTime.
	Strptime(input, format string) (Result, error)

	// StrptimeLoose is Strptime with whitespace and trailing-input tolerance.
	StrptimeLoose(input, format string) (Result, error)

	// ParseBatch applies op to every input concurrently, keeping input order.
	ParseBatch(ctx context.Context, req BatchRequest) ([]BatchItem, error)
}
