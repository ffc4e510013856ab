// Package heuristic parses free-form date/time strings without a format.
//
// Input is width-folded and split into tokens. Time groups, packed digit
// forms, English month and weekday names, and filler words are recognized;
// the remaining numeric runs are assigned to year, month, and day by
// resolveYMD using the dayfirst and yearfirst hints. Zone designators are
// accepted and ignored, so results are always naive.
package heuristic

import (
	"strings"
	"time"

	"github.com/hrygo/fastdatetime/internal/errors"
	"github.com/hrygo/fastdatetime/plugin/dateparse/civil"
)

// Parser is a free-form date/time parser. Its lookup tables are built once
// and only read afterwards, so a Parser is safe for concurrent use.
type Parser struct {
	words map[string]wordInfo
	now   func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the reference clock used for missing date fields and the
// two-digit year pivot.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// New builds a Parser.
func New(opts ...Option) (*Parser, error) {
	words, err := buildWords()
	if err != nil {
		return nil, err
	}
	p := &Parser{words: words, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

const (
	meridiemNone = iota
	meridiemAM
	meridiemPM
)

// state is the per-call scratch space.
type state struct {
	runs   []run
	months int

	packed    bool
	packedYMD ymd

	hasTime  bool
	hour     int
	minute   int
	second   int
	nanos    int
	meridiem int

	afterT bool
	// zoneAnchor is the index of the token an offset may directly follow.
	zoneAnchor int
}

func (st *state) sawAny() bool {
	return len(st.runs) > 0 || st.packed || st.hasTime
}

// Parse parses s. dayfirst and yearfirst break ties between ambiguous
// numeric runs; see resolveYMD.
func (p *Parser) Parse(s string, dayfirst, yearfirst bool) (civil.DateTime, error) {
	if strings.TrimSpace(s) == "" {
		return civil.DateTime{}, errors.MalformedInput("empty input")
	}
	toks, err := lex(s)
	if err != nil {
		return civil.DateTime{}, err
	}

	st := &state{zoneAnchor: unset}
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok.kind {
		case tokNumber:
			i, err = p.number(st, toks, i)
		case tokWord:
			err = p.word(st, toks, i)
		case tokSep:
			if (tok.text == "+" || tok.text == "-") && st.zoneAnchor != unset && prevNonSpace(toks, i) == st.zoneAnchor {
				i, err = skipOffset(toks, i)
			}
		}
		if err != nil {
			if pe, ok := err.(*errors.ParseError); ok {
				pe.WithContext("input", s)
			}
			return civil.DateTime{}, err
		}
	}
	if !st.sawAny() {
		return civil.DateTime{}, errors.MalformedInputf("no date or time in %q", s)
	}

	return p.build(st, dayfirst, yearfirst)
}

func (p *Parser) number(st *state, toks []token, i int) (int, error) {
	n := toks[i]
	digits := len(n.text)
	afterT := st.afterT
	st.afterT = false

	// H:M[:S[.f]]
	if i+2 < len(toks) && toks[i+1].is(":") && toks[i+2].kind == tokNumber {
		return p.timeGroup(st, toks, i)
	}

	if afterT && !st.hasTime {
		switch digits {
		case 2:
			return i, st.setTime(n.val, 0, 0, 0, i)
		case 4:
			return i, st.setTime(n.val/100, n.val%100, 0, 0, i)
		case 6:
			return i, st.setTime(n.val/10000, n.val/100%100, n.val%100, 0, i)
		}
	}

	if len(st.runs) == 0 && !st.packed {
		switch digits {
		case 6:
			st.setPacked(n.val/10000, n.val/100%100, n.val%100, true)
			return i, nil
		case 8:
			st.setPacked(n.val/10000, n.val/100%100, n.val%100, false)
			return i, nil
		case 12, 14:
			date, clock := n.text[:8], n.text[8:]
			v := atoi(date)
			st.setPacked(v/10000, v/100%100, v%100, false)
			h, m, sec := atoi(clock[0:2]), atoi(clock[2:4]), 0
			if len(clock) == 6 {
				sec = atoi(clock[4:6])
			}
			return i, st.setTime(h, m, sec, 0, i)
		}
	}

	// "10am", "10 pm"
	if j := nextNonSpace(toks, i); j < len(toks) && toks[j].kind == tokWord && digits <= 2 && !st.hasTime {
		if w, ok := p.words[strings.ToLower(toks[j].text)]; ok && w.kind == wordMeridiem {
			if err := st.setTime(n.val, 0, 0, 0, j); err != nil {
				return i, err
			}
			st.meridiem = w.value
			return j, nil
		}
	}

	if st.packed {
		return i, errors.MalformedInputf("unexpected number %q after a packed date", n.text)
	}
	st.runs = append(st.runs, run{val: n.val, digits: digits})
	if len(st.runs) > 3 {
		return i, errors.MalformedInputf("too many date components (%d)", len(st.runs))
	}
	return i, nil
}

// timeGroup consumes H:M[:S[.f]] starting at toks[i].
func (p *Parser) timeGroup(st *state, toks []token, i int) (int, error) {
	hour, minute, second, nanos := toks[i].val, toks[i+2].val, 0, 0
	if len(toks[i].text) > 2 || len(toks[i+2].text) > 2 {
		return i, errors.MalformedInputf("bad time %s:%s", toks[i].text, toks[i+2].text)
	}
	i += 2
	if i+2 < len(toks) && toks[i+1].is(":") && toks[i+2].kind == tokNumber {
		second = toks[i+2].val
		i += 2
		if i+2 < len(toks) && (toks[i+1].is(".") || toks[i+1].is(",")) && toks[i+2].kind == tokNumber {
			nanos = fraction(toks[i+2].text)
			i += 2
		}
	}
	return i, st.setTime(hour, minute, second, nanos, i)
}

func (st *state) setTime(hour, minute, second, nanos, end int) error {
	if st.hasTime {
		return errors.MalformedInput("more than one time of day")
	}
	st.hasTime = true
	st.hour, st.minute, st.second, st.nanos = hour, minute, second, nanos
	st.zoneAnchor = end
	return nil
}

func (st *state) setPacked(y, m, d int, short bool) {
	st.packed = true
	st.packedYMD = ymd{year: y, month: m, day: d, shortYear: short}
}

func (p *Parser) word(st *state, toks []token, i int) error {
	text := toks[i].text
	w, ok := p.words[strings.ToLower(text)]
	if !ok {
		if isAbbreviation(text) && st.sawAny() {
			st.zoneAnchor = i
			return nil
		}
		return errors.MalformedInputf("unknown word %q", text)
	}

	switch w.kind {
	case wordMonth:
		st.months++
		if st.months > 1 {
			return errors.MalformedInputf("more than one month name (%q)", text)
		}
		if st.packed {
			return errors.MalformedInputf("unexpected month %q after a packed date", text)
		}
		st.runs = append(st.runs, run{val: w.value, month: true})
		if len(st.runs) > 3 {
			return errors.MalformedInputf("too many date components (%d)", len(st.runs))
		}
	case wordJump:
		if strings.EqualFold(text, "t") {
			st.afterT = true
		}
	case wordMeridiem:
		if !st.hasTime {
			return errors.MalformedInputf("%q without an hour", text)
		}
		if st.meridiem != meridiemNone {
			return errors.MalformedInputf("repeated %q", text)
		}
		st.meridiem = w.value
	case wordZone:
		if !st.sawAny() {
			return errors.MalformedInputf("zone %q before any date or time", text)
		}
		st.zoneAnchor = i
	}
	return nil
}

// build resolves the collected state into a validated DateTime.
func (p *Parser) build(st *state, dayfirst, yearfirst bool) (civil.DateTime, error) {
	var (
		date ymd
		err  error
	)
	if st.packed {
		date = st.packedYMD
	} else if date, err = resolveYMD(st.runs, dayfirst, yearfirst); err != nil {
		return civil.DateTime{}, err
	}

	now := p.now()
	switch {
	case date.year == unset:
		date.year = now.Year()
	case date.shortYear:
		date.year = pivotYear(date.year, now.Year())
	}
	if date.month == unset {
		date.month = int(now.Month())
	}
	if date.month < 1 || date.month > 12 {
		return civil.DateTime{}, errors.FieldOutOfRange("month", date.month)
	}
	if date.day == unset {
		date.day = min(now.Day(), civil.DaysIn(date.year, time.Month(date.month)))
	}

	hour := st.hour
	switch {
	case st.meridiem == meridiemPM && hour < 12:
		hour += 12
	case st.meridiem == meridiemAM && hour == 12:
		hour = 0
	}

	dt := civil.DateTime{
		Date:       civil.Date{Year: date.year, Month: time.Month(date.month), Day: date.day},
		Hour:       hour,
		Minute:     st.minute,
		Second:     st.second,
		Nanosecond: st.nanos,
	}
	if err := dt.Validate(); err != nil {
		return civil.DateTime{}, err
	}
	return dt, nil
}

// skipOffset consumes a numeric offset after the sign at toks[i]:
// HH, HHMM, or HH:MM.
func skipOffset(toks []token, i int) (int, error) {
	if i+1 >= len(toks) || toks[i+1].kind != tokNumber {
		return i, nil
	}
	n := toks[i+1]
	hours, minutes := n.val, 0
	end := i + 1
	switch len(n.text) {
	case 1, 2:
		if end+2 < len(toks) && toks[end+1].is(":") && toks[end+2].kind == tokNumber {
			minutes = toks[end+2].val
			end += 2
		}
	case 4:
		hours, minutes = n.val/100, n.val%100
	default:
		return i, errors.MalformedInputf("bad zone offset %q", n.text)
	}
	if hours > 23 || minutes > 59 {
		return i, errors.MalformedInputf("bad zone offset %q", n.text)
	}
	return end, nil
}

func nextNonSpace(toks []token, i int) int {
	j := i + 1
	for j < len(toks) && toks[j].is(" ") {
		j++
	}
	return j
}

func prevNonSpace(toks []token, i int) int {
	j := i - 1
	for j >= 0 && toks[j].is(" ") {
		j--
	}
	return j
}

// fraction scales a digit string to nanoseconds, keeping at most 9 digits.
func fraction(digits string) int {
	if len(digits) > 9 {
		digits = digits[:9]
	}
	v := atoi(digits)
	for n := len(digits); n < 9; n++ {
		v *= 10
	}
	return v
}

func atoi(s string) int {
	v := 0
	for i := 0; i < len(s); i++ {
		v = v*10 + int(s[i]-'0')
	}
	return v
}
