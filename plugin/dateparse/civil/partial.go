package civil

import (
	"time"

	"github.com/hrygo/fastdatetime/internal/errors"
)

// Field names one slot of a Partial.
type Field uint8

const (
	FieldYear Field = iota
	FieldMonth
	FieldDay
	FieldHour
	FieldMinute
	FieldSecond
	FieldFraction // nanoseconds

	numFields
)

var fieldNames = [...]string{
	FieldYear:     "year",
	FieldMonth:    "month",
	FieldDay:      "day",
	FieldHour:     "hour",
	FieldMinute:   "minute",
	FieldSecond:   "second",
	FieldFraction: "fraction",
}

// String returns the lower-case field name.
func (f Field) String() string {
	if f < numFields {
		return fieldNames[f]
	}
	return "unknown"
}

// Components is a bitmask of the fields a Partial holds.
type Components uint8

// Has reports whether f is in the set.
func (c Components) Has(f Field) bool {
	return c&(1<<f) != 0
}

// String returns a compact debug form such as "YMDhms".
func (c Components) String() string {
	const letters = "YMDhmsf"
	var parts []byte
	for f := Field(0); f < numFields; f++ {
		if c.Has(f) {
			parts = append(parts, letters[f])
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return string(parts)
}

// Partial is the sparse record built while matching a format. It is
// created per call and consumed once.
type Partial struct {
	values [numFields]int
	has    Components
}

// Set stores v for f, replacing any previous value.
func (p *Partial) Set(f Field, v int) {
	p.values[f] = v
	p.has |= 1 << f
}

// Get returns the value of f and whether it was set.
func (p *Partial) Get(f Field) (int, bool) {
	return p.values[f], p.has.Has(f)
}

func missingField(f Field) error {
	return errors.MalformedInputf("missing %s", f)
}

// Has reports whether f was set.
func (p *Partial) Has(f Field) bool {
	return p.has.Has(f)
}

// Components returns the set of fields present.
func (p *Partial) Components() Components {
	return p.has
}

// SetDefault stores v for f only when f is unset. It reports whether it wrote.
func (p *Partial) SetDefault(f Field, v int) bool {
	if p.has.Has(f) {
		return false
	}
	p.Set(f, v)
	return true
}

// HasDateTime reports whether year, month, day, and hour are all present.
func (p *Partial) HasDateTime() bool {
	return p.has.Has(FieldYear) && p.has.Has(FieldMonth) && p.has.Has(FieldDay) && p.has.Has(FieldHour)
}

// ToDate materializes a validated Date. Year, month, and day must be set.
func (p *Partial) ToDate() (Date, error) {
	for _, f := range []Field{FieldYear, FieldMonth, FieldDay} {
		if !p.has.Has(f) {
			return Date{}, missingField(f)
		}
	}
	d := Date{
		Year:  p.values[FieldYear],
		Month: time.Month(p.values[FieldMonth]),
		Day:   p.values[FieldDay],
	}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// ToDateTime materializes a validated DateTime. Date fields and the hour
// must be set; minute, second, and fraction read as zero when unset.
func (p *Partial) ToDateTime() (DateTime, error) {
	d, err := p.ToDate()
	if err != nil {
		return DateTime{}, err
	}
	if !p.has.Has(FieldHour) {
		return DateTime{}, missingField(FieldHour)
	}
	dt := DateTime{
		Date:       d,
		Hour:       p.values[FieldHour],
		Minute:     p.values[FieldMinute],
		Second:     p.values[FieldSecond],
		Nanosecond: p.values[FieldFraction],
	}
	if err := validateClock(dt.Hour, dt.Minute, dt.Second, dt.Nanosecond); err != nil {
		return DateTime{}, err
	}
	return dt, nil
}

// DefaultFill is the order and value in which Degrade fills unset fields.
var DefaultFill = []struct {
	Field Field
	Value int
}{
	{FieldFraction, 0},
	{FieldSecond, 0},
	{FieldMinute, 0},
	{FieldHour, 0},
	{FieldDay, 1},
	{FieldMonth, 1},
	{FieldYear, 1900},
}

// Degraded is what Degrade recovers from a Partial.
type Degraded struct {
	Date     Date
	DateTime DateTime
	// HasTime is true when the hour came from the input and the clock fields validated.
	HasTime bool
}

// Degrade fills unset fields in DefaultFill order, trying to materialize a
// Date after each step. Values already present are kept. The receiver is
// modified.
func (p *Partial) Degrade() (Degraded, error) {
	hourFromInput := p.has.Has(FieldHour)

	var (
		date    Date
		dateErr error
		found   bool
	)
	for _, step := range DefaultFill {
		p.SetDefault(step.Field, step.Value)
		if date, dateErr = p.ToDate(); dateErr == nil {
			found = true
			break
		}
	}
	if !found {
		return Degraded{}, dateErr
	}

	out := Degraded{Date: date}
	if !hourFromInput {
		return out, nil
	}
	if dt, err := p.ToDateTime(); err == nil {
		out.DateTime = dt
		out.HasTime = true
	}
	return out, nil
}
