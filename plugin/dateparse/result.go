package dateparse

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/hrygo/fastdatetime/plugin/dateparse/civil"
)

// Kind tags the precision of a Result.
type Kind int

const (
	// KindDate is a calendar date without a time of day.
	KindDate Kind = iota + 1
	// KindDateTime is a naive date and time.
	KindDateTime
	// KindZonedDateTime is a date and time already aligned to UTC.
	KindZonedDateTime
)

// String returns the wire name of k.
func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindZonedDateTime:
		return "zoned_datetime"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalJSON encodes k as its wire name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Result is the value produced by a parse operation. The zero Result is
// not valid; results come from the parse operations or the constructors.
type Result struct {
	kind  Kind
	value civil.DateTime // dates are stored at midnight
}

// DateResult wraps a calendar date.
func DateResult(d civil.Date) Result {
	return Result{kind: KindDate, value: d.AtMidnight()}
}

// DateTimeResult wraps a naive date and time.
func DateTimeResult(dt civil.DateTime) Result {
	return Result{kind: KindDateTime, value: dt}
}

// ZonedResult wraps a date and time that is already aligned to UTC.
func ZonedResult(utc civil.DateTime) Result {
	return Result{kind: KindZonedDateTime, value: utc}
}

// Kind returns the precision tag.
func (r Result) Kind() Kind {
	return r.kind
}

// Date returns the calendar date.
func (r Result) Date() civil.Date {
	return r.value.Date
}

// DateTime returns the date and time. For KindDate it returns midnight of
// the date and false.
func (r Result) DateTime() (civil.DateTime, bool) {
	return r.value, r.kind != KindDate
}

// Time returns r as a time.Time in UTC. Dates map to midnight UTC and
// naive values are read as UTC wall time.
func (r Result) Time() time.Time {
	return r.value.Time()
}

// String renders r in ISO-8601: a date, a naive date-time, or a UTC
// date-time with a trailing Z.
func (r Result) String() string {
	switch r.kind {
	case KindDate:
		return r.value.Date.String()
	case KindZonedDateTime:
		return r.value.String() + "Z"
	default:
		return r.value.String()
	}
}

// Format renders r with strftime directives. Zoned results render in UTC,
// so %z prints +0000.
func (r Result) Format(format string) string {
	return strftime.Format(format, r.Time())
}

type resultJSON struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// MarshalJSON encodes r as {"kind": ..., "value": ...}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{Kind: r.kind, Value: r.String()})
}
