package heuristic

import (
	"github.com/hrygo/fastdatetime/internal/errors"
)

// run is one date component seen in the input: a number or a month name.
type run struct {
	val    int
	digits int
	month  bool // came from a month name
}

// yearOnly reports whether r cannot be a month or a day.
func (r run) yearOnly() bool {
	return !r.month && (r.val > 31 || r.digits >= 3)
}

const unset = -1

// ymd is the outcome of resolving up to three runs.
type ymd struct {
	year, month, day int
	// shortYear is set when the year was written with at most two digits.
	shortYear bool
}

// resolveYMD assigns year, month, and day to the runs. Fields that no run
// provides are left as unset.
func resolveYMD(runs []run, dayfirst, yearfirst bool) (ymd, error) {
	out := ymd{year: unset, month: unset, day: unset}
	if len(runs) > 3 {
		return out, errors.MalformedInputf("too many date components (%d)", len(runs))
	}

	mstr := unset
	for i, r := range runs {
		if r.month {
			mstr = i
		}
	}

	var y, m, d *run
	switch len(runs) {
	case 1:
		r := &runs[0]
		switch {
		case r.month:
			m = r
		case r.yearOnly():
			y = r
		default:
			d = r
		}

	case 2:
		a, b := &runs[0], &runs[1]
		switch {
		case mstr == 0:
			m = a
			if b.yearOnly() {
				y = b
			} else {
				d = b
			}
		case mstr == 1:
			m = b
			if a.yearOnly() {
				y = a
			} else {
				d = a
			}
		case a.yearOnly():
			y, m = a, b
		case b.yearOnly():
			m, y = a, b
		case a.val > 12 && b.val <= 12, dayfirst && b.val <= 12:
			d, m = a, b
		default:
			m, d = a, b
		}

	case 3:
		a, b, c := &runs[0], &runs[1], &runs[2]
		switch mstr {
		case 0:
			m = a
			if b.yearOnly() {
				y, d = b, c
			} else {
				d, y = b, c
			}
		case 1:
			m = b
			if a.yearOnly() || (yearfirst && !c.yearOnly()) {
				y, d = a, c
			} else {
				d, y = a, c
			}
		case 2:
			m = c
			if b.yearOnly() {
				d, y = a, b
			} else {
				y, d = a, b
			}
		default:
			switch {
			case a.yearOnly() || (yearfirst && b.val <= 12 && !c.yearOnly()):
				y = a
				if (b.val > 12 && c.val <= 12) || (dayfirst && c.val <= 12) {
					d, m = b, c
				} else {
					m, d = b, c
				}
			case b.digits >= 3:
				y = b
				if a.val > 12 || (dayfirst && c.val <= 12) {
					d, m = a, c
				} else {
					m, d = a, c
				}
			case a.val > 12 || (dayfirst && b.val <= 12):
				d, m, y = a, b, c
			default:
				m, d, y = a, b, c
			}
		}
	}

	if y != nil {
		out.year = y.val
		out.shortYear = y.digits <= 2
	}
	if m != nil {
		out.month = m.val
	}
	if d != nil {
		out.day = d.val
	}
	return out, nil
}

// pivotYear places a two-digit year within 50 years of ref.
func pivotYear(y, ref int) int {
	y += ref / 100 * 100
	switch {
	case y >= ref+50:
		y -= 100
	case y < ref-50:
		y += 100
	}
	return y
}
