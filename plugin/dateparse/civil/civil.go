// Package civil holds the zone-less calendar values produced by the parsers
// and the sparse field accumulator used while a format-guided parse runs.
//
// All values are proleptic Gregorian. A DateTime carries no offset; when it
// came out of a zone-aware parse it has already been aligned to UTC.
package civil

import (
	"fmt"
	"time"

	"github.com/hrygo/fastdatetime/internal/errors"
)

const (
	minYear = 1
	maxYear = 9999
)

// Date is a calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateTime is a Date plus a time of day, without a zone.
type DateTime struct {
	Date
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// DaysIn returns the number of days in the month of the given year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Validate reports whether d is a real calendar date.
func (d Date) Validate() error {
	if d.Year < minYear || d.Year > maxYear {
		return errors.FieldOutOfRange("year", d.Year)
	}
	if d.Month < time.January || d.Month > time.December {
		return errors.FieldOutOfRange("month", int(d.Month))
	}
	if d.Day < 1 || d.Day > DaysIn(d.Year, d.Month) {
		return errors.FieldOutOfRange("day", d.Day)
	}
	return nil
}

// Time returns midnight of d in UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String returns d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// AtMidnight promotes d to a DateTime at 00:00:00.
func (d Date) AtMidnight() DateTime {
	return DateTime{Date: d}
}

// Validate reports whether dt is a real date with in-range clock fields.
func (dt DateTime) Validate() error {
	if err := dt.Date.Validate(); err != nil {
		return err
	}
	return validateClock(dt.Hour, dt.Minute, dt.Second, dt.Nanosecond)
}

func validateClock(hour, minute, second, nsec int) error {
	switch {
	case hour < 0 || hour > 23:
		return errors.FieldOutOfRange("hour", hour)
	case minute < 0 || minute > 59:
		return errors.FieldOutOfRange("minute", minute)
	case second < 0 || second > 59:
		return errors.FieldOutOfRange("second", second)
	case nsec < 0 || nsec > 999_999_999:
		return errors.FieldOutOfRange("fraction", nsec)
	}
	return nil
}

// Time returns dt as a time.Time in UTC.
func (dt DateTime) Time() time.Time {
	return time.Date(dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second, dt.Nanosecond, time.UTC)
}

// Add returns dt shifted by d. Calendar carry is handled by time.Time.
func (dt DateTime) Add(d time.Duration) DateTime {
	return FromTime(dt.Time().Add(d))
}

// String returns dt as YYYY-MM-DDTHH:MM:SS with a fraction when non-zero.
func (dt DateTime) String() string {
	s := fmt.Sprintf("%sT%02d:%02d:%02d", dt.Date, dt.Hour, dt.Minute, dt.Second)
	if dt.Nanosecond != 0 {
		s += fmt.Sprintf(".%09d", dt.Nanosecond)
	}
	return s
}

// FromTime reads the wall-clock fields of t in its own location.
func FromTime(t time.Time) DateTime {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	return DateTime{
		Date:       Date{Year: year, Month: month, Day: day},
		Hour:       hour,
		Minute:     minute,
		Second:     second,
		Nanosecond: t.Nanosecond(),
	}
}
