package strptime

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/fastdatetime/internal/errors"
	"github.com/hrygo/fastdatetime/plugin/dateparse/civil"
	"github.com/hrygo/fastdatetime/server/timezone"
)

// Mode selects how closely the input has to follow the format.
type Mode int

const (
	// Strict requires every literal byte to match and the whole input to be consumed.
	Strict Mode = iota
	// Loose ignores surrounding whitespace and trailing input, lets a format
	// whitespace run match any whitespace run (including none), and stops
	// successfully when the input runs out after at least one directive.
	Loose
	// Partial behaves like Strict, but a failed match still returns the
	// fields matched before the failure.
	Partial
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case Loose:
		return "loose"
	case Partial:
		return "partial"
	default:
		return "strict"
	}
}

// Match is the outcome of running a Program over an input.
type Match struct {
	Fields civil.Partial
	Zone   timezone.Specifier
	// Directives counts the directives that were applied.
	Directives int
}

const (
	meridiemNone = iota
	meridiemAM
	meridiemPM
)

type matcher struct {
	input string
	pos   int
	mode  Mode
	out   Match

	hour12   bool
	meridiem int
	yday     int
}

// Match runs p over input. In Partial mode the returned Match holds the
// fields seen before a failure even when err is non-nil; in the other modes
// the Match is only meaningful when err is nil.
func (p *Program) Match(input string, mode Mode) (Match, error) {
	m := matcher{input: input, mode: mode}
	if mode == Loose {
		m.input = strings.TrimSpace(input)
	}

	err := m.run(p.items)
	if err == nil {
		err = m.finish()
	} else if mode == Partial {
		_ = m.finish()
	}
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.WithContext("format", p.format)
		}
		if mode != Partial {
			return Match{}, err
		}
	}
	return m.out, err
}

func (m *matcher) run(items []item) error {
	for _, it := range items {
		if m.mode == Loose && m.pos == len(m.input) && m.out.Directives > 0 {
			return nil
		}
		switch it.kind {
		case itemLiteral:
			if !strings.HasPrefix(m.input[m.pos:], it.text) {
				return m.expected(it.text)
			}
			m.pos += len(it.text)
		case itemSpace:
			if m.mode == Loose {
				m.skipSpace()
				continue
			}
			if !strings.HasPrefix(m.input[m.pos:], it.text) {
				return m.expected(it.text)
			}
			m.pos += len(it.text)
		case itemDirective:
			if err := m.directive(it.verb); err != nil {
				return err
			}
			m.out.Directives++
		}
	}
	if m.pos < len(m.input) && m.mode != Loose {
		return errors.MalformedInputf("unparsed input %q", m.input[m.pos:])
	}
	return nil
}

func (m *matcher) directive(verb byte) error {
	f := &m.out.Fields
	switch verb {
	case 'Y':
		v, err := m.number(4, 0, 9999, "year")
		if err != nil {
			return err
		}
		f.Set(civil.FieldYear, v)
	case 'y':
		v, err := m.number(2, 0, 99, "year")
		if err != nil {
			return err
		}
		if v < 69 {
			v += 2000
		} else {
			v += 1900
		}
		f.Set(civil.FieldYear, v)
	case 'm':
		v, err := m.number(2, 1, 12, "month")
		if err != nil {
			return err
		}
		f.Set(civil.FieldMonth, v)
	case 'e', 'd':
		if verb == 'e' {
			m.optionalSpace()
		}
		v, err := m.number(2, 1, 31, "day")
		if err != nil {
			return err
		}
		f.Set(civil.FieldDay, v)
	case 'j':
		v, err := m.number(3, 1, 366, "day of year")
		if err != nil {
			return err
		}
		m.yday = v
	case 'k', 'H':
		if verb == 'k' {
			m.optionalSpace()
		}
		v, err := m.number(2, 0, 23, "hour")
		if err != nil {
			return err
		}
		f.Set(civil.FieldHour, v)
		m.hour12 = false
	case 'l', 'I':
		if verb == 'l' {
			m.optionalSpace()
		}
		v, err := m.number(2, 1, 12, "hour")
		if err != nil {
			return err
		}
		f.Set(civil.FieldHour, v)
		m.hour12 = true
	case 'p', 'P':
		rest := m.input[m.pos:]
		switch {
		case len(rest) >= 2 && strings.EqualFold(rest[:2], "AM"):
			m.meridiem = meridiemAM
		case len(rest) >= 2 && strings.EqualFold(rest[:2], "PM"):
			m.meridiem = meridiemPM
		default:
			return m.failf("expected AM or PM")
		}
		m.pos += 2
	case 'M':
		v, err := m.number(2, 0, 59, "minute")
		if err != nil {
			return err
		}
		f.Set(civil.FieldMinute, v)
	case 'S':
		v, err := m.number(2, 0, 60, "second")
		if err != nil {
			return err
		}
		f.Set(civil.FieldSecond, v)
	case 'f':
		return m.fraction()
	case '.':
		if m.pos < len(m.input) && m.input[m.pos] == '.' {
			m.pos++
			return m.fraction()
		}
	case 'z':
		return m.offset()
	case 'Z':
		start := m.pos
		for m.pos < len(m.input) && isZoneNameByte(m.input[m.pos]) {
			m.pos++
		}
		if m.pos == start {
			return m.failf("expected zone name")
		}
		m.out.Zone = timezone.Name(m.input[start:m.pos])
	case 'b', 'h', 'B':
		idx, n := lookupName(m.input[m.pos:], longMonthNames, shortMonthNames)
		if n == 0 {
			return m.failf("expected month name")
		}
		m.pos += n
		f.Set(civil.FieldMonth, idx)
	case 'a', 'A':
		_, n := lookupName(m.input[m.pos:], longWeekNames, shortWeekNames)
		if n == 0 {
			return m.failf("expected weekday name")
		}
		m.pos += n
	case 'n', 't':
		start := m.pos
		m.skipSpace()
		if m.pos == start {
			return m.failf("expected whitespace")
		}
	}
	return nil
}

// number reads 1..width digits and checks the value against [lo, hi].
func (m *matcher) number(width, lo, hi int, field string) (int, error) {
	start, v := m.pos, 0
	for m.pos < len(m.input) && m.pos-start < width {
		b := m.input[m.pos]
		if b < '0' || b > '9' {
			break
		}
		v = v*10 + int(b-'0')
		m.pos++
	}
	if m.pos == start {
		return 0, m.failf("expected %s digits", field)
	}
	if v < lo || v > hi {
		return 0, errors.FieldOutOfRange(field, v)
	}
	return v, nil
}

// fraction reads 1..9 digits and stores them scaled to nanoseconds.
func (m *matcher) fraction() error {
	start := m.pos
	v, err := m.number(9, 0, 999_999_999, "fraction")
	if err != nil {
		return err
	}
	for n := m.pos - start; n < 9; n++ {
		v *= 10
	}
	m.out.Fields.Set(civil.FieldFraction, v)
	return nil
}

// offset reads Z, ±HH, ±HHMM, or ±HH:MM.
func (m *matcher) offset() error {
	if m.pos >= len(m.input) {
		return m.failf("expected zone offset")
	}
	sign := time.Duration(1)
	switch m.input[m.pos] {
	case 'Z', 'z':
		m.pos++
		m.out.Zone = timezone.Offset(0)
		return nil
	case '-':
		sign = -1
	case '+':
	default:
		return m.failf("expected zone offset")
	}
	m.pos++

	hours, ok := m.digits2()
	if !ok {
		return m.failf("expected zone offset hours")
	}
	if hours > 23 {
		return errors.FieldOutOfRange("offset hour", hours)
	}
	colon := m.pos < len(m.input) && m.input[m.pos] == ':'
	if colon {
		m.pos++
	}
	minutes, ok := m.digits2()
	if !ok && colon {
		return m.failf("expected zone offset minutes")
	}
	if minutes > 59 {
		return errors.FieldOutOfRange("offset minute", minutes)
	}
	m.out.Zone = timezone.Offset(sign * (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute))
	return nil
}

// digits2 reads exactly two digits, consuming nothing on failure.
func (m *matcher) digits2() (int, bool) {
	if m.pos+2 > len(m.input) {
		return 0, false
	}
	a, b := m.input[m.pos], m.input[m.pos+1]
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	m.pos += 2
	return int(a-'0')*10 + int(b-'0'), true
}

func (m *matcher) skipSpace() {
	for m.pos < len(m.input) && isSpace(m.input[m.pos]) {
		m.pos++
	}
}

func (m *matcher) optionalSpace() {
	if m.pos < len(m.input) && m.input[m.pos] == ' ' {
		m.pos++
	}
}

// finish applies the AM/PM marker and a day-of-year to the fields.
func (m *matcher) finish() error {
	f := &m.out.Fields
	if hour, ok := f.Get(civil.FieldHour); ok {
		switch {
		case m.hour12:
			hour %= 12
			if m.meridiem == meridiemPM {
				hour += 12
			}
		case m.meridiem == meridiemPM && hour < 12:
			hour += 12
		case m.meridiem == meridiemAM && hour == 12:
			hour = 0
		}
		f.Set(civil.FieldHour, hour)
	}

	if m.yday > 0 && !f.Has(civil.FieldMonth) && !f.Has(civil.FieldDay) {
		year, ok := f.Get(civil.FieldYear)
		if !ok {
			year = 1900
		}
		if year < 1 {
			return errors.FieldOutOfRange("year", year)
		}
		t := time.Date(year, time.January, m.yday, 0, 0, 0, 0, time.UTC)
		if t.Year() != year {
			return errors.FieldOutOfRange("day of year", m.yday)
		}
		f.Set(civil.FieldMonth, int(t.Month()))
		f.Set(civil.FieldDay, t.Day())
	}
	return nil
}

func (m *matcher) expected(text string) error {
	return m.failf("expected %q", text)
}

func (m *matcher) failf(format string, args ...any) error {
	return errors.MalformedInputf("%s at offset %d", fmt.Sprintf(format, args...), m.pos).
		WithContext("offset", m.pos)
}

func isZoneNameByte(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}
	return b == '_' || b == '/' || b == '+' || b == '-'
}
