package strptime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/fastdatetime/internal/errors"
	"github.com/hrygo/fastdatetime/plugin/dateparse/civil"
)

// fieldMap flattens the set fields of a Match for comparison.
func fieldMap(m Match) map[string]int {
	out := map[string]int{}
	for f := civil.FieldYear; f <= civil.FieldFraction; f++ {
		if v, ok := m.Fields.Get(f); ok {
			out[f.String()] = v
		}
	}
	return out
}

func TestMatch_Strict(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format string
		want   map[string]int
	}{
		{
			name:   "date and time",
			input:  "2020-06-15 10:30:45",
			format: "%Y-%m-%d %H:%M:%S",
			want:   map[string]int{"year": 2020, "month": 6, "day": 15, "hour": 10, "minute": 30, "second": 45},
		},
		{
			name:   "compositions",
			input:  "2020-06-15 10:30:45",
			format: "%F %T",
			want:   map[string]int{"year": 2020, "month": 6, "day": 15, "hour": 10, "minute": 30, "second": 45},
		},
		{
			name:   "packed digits",
			input:  "20200615",
			format: "%Y%m%d",
			want:   map[string]int{"year": 2020, "month": 6, "day": 15},
		},
		{
			name:   "US date",
			input:  "06/15/99",
			format: "%D",
			want:   map[string]int{"year": 1999, "month": 6, "day": 15},
		},
		{
			name:   "two digit year below pivot",
			input:  "68",
			format: "%y",
			want:   map[string]int{"year": 2068},
		},
		{
			name:   "month and weekday names",
			input:  "Mon, 15 Jun 2020",
			format: "%a, %d %b %Y",
			want:   map[string]int{"year": 2020, "month": 6, "day": 15},
		},
		{
			name:   "long month name any case",
			input:  "15 SEPTEMBER 2020",
			format: "%d %B %Y",
			want:   map[string]int{"year": 2020, "month": 9, "day": 15},
		},
		{
			name:   "space padded day",
			input:  "Jun  5 2020",
			format: "%b %e %Y",
			want:   map[string]int{"year": 2020, "month": 6, "day": 5},
		},
		{
			name:   "fraction is right padded",
			input:  "10:00:00.123",
			format: "%H:%M:%S.%f",
			want:   map[string]int{"hour": 10, "minute": 0, "second": 0, "fraction": 123_000_000},
		},
		{
			name:   "optional fraction present",
			input:  "10:00:00.5",
			format: "%H:%M:%S%.f",
			want:   map[string]int{"hour": 10, "minute": 0, "second": 0, "fraction": 500_000_000},
		},
		{
			name:   "optional fraction absent",
			input:  "10:00:00",
			format: "%H:%M:%S%.f",
			want:   map[string]int{"hour": 10, "minute": 0, "second": 0},
		},
		{
			name:   "pm",
			input:  "03:15 PM",
			format: "%I:%M %p",
			want:   map[string]int{"hour": 15, "minute": 15},
		},
		{
			name:   "twelve am is midnight",
			input:  "12:00 am",
			format: "%I:%M %p",
			want:   map[string]int{"hour": 0, "minute": 0},
		},
		{
			name:   "twelve pm is noon",
			input:  "12:30 PM",
			format: "%l:%M %P",
			want:   map[string]int{"hour": 12, "minute": 30},
		},
		{
			name:   "day of year in leap year",
			input:  "2020 060",
			format: "%Y %j",
			want:   map[string]int{"year": 2020, "month": 2, "day": 29},
		},
		{
			name:   "whitespace directive",
			input:  "2020\t \t06",
			format: "%Y%n%m",
			want:   map[string]int{"year": 2020, "month": 6},
		},
		{
			name:   "literal percent",
			input:  "2020%",
			format: "%Y%%",
			want:   map[string]int{"year": 2020},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(16).Match(tt.input, tt.format, Strict)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fieldMap(m))
		})
	}
}

func TestMatch_Offset(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr errors.ErrorCode
	}{
		{input: "Z", want: 0},
		{input: "+05", want: 5 * time.Hour},
		{input: "-0800", want: -8 * time.Hour},
		{input: "+05:30", want: 5*time.Hour + 30*time.Minute},
		{input: "-00:45", want: -45 * time.Minute},
		{input: "+24:00", wantErr: errors.ErrCodeFieldOutOfRange},
		{input: "+05:99", wantErr: errors.ErrCodeFieldOutOfRange},
		{input: "+5", wantErr: errors.ErrCodeMalformedInput},
		{input: "+05:", wantErr: errors.ErrCodeMalformedInput},
		{input: "CET", wantErr: errors.ErrCodeMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := New(4).Match(tt.input, "%z", Strict)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errors.GetCodeFromError(err, ""))
				return
			}
			require.NoError(t, err)
			off, ok := m.Zone.IsOffset()
			require.True(t, ok)
			assert.Equal(t, tt.want, off)
		})
	}
}

func TestMatch_ZoneName(t *testing.T) {
	m, err := New(4).Match("2020-06-15 10:00:00 Europe/Paris", "%Y-%m-%d %H:%M:%S %Z", Strict)
	require.NoError(t, err)
	name, ok := m.Zone.IsName()
	require.True(t, ok)
	assert.Equal(t, "Europe/Paris", name)

	_, err = New(4).Match("10:00 ", "%H:%M %Z", Strict)
	require.Error(t, err)
}

func TestMatch_StrictErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		format  string
		code    errors.ErrorCode
		message string
	}{
		{"trailing input", "2020-06-15x", "%Y-%m-%d", errors.ErrCodeMalformedInput, `unparsed input "x"`},
		{"month 13", "2020-13-01", "%Y-%m-%d", errors.ErrCodeFieldOutOfRange, "month out of range: 13"},
		{"hour 24", "24:00", "%H:%M", errors.ErrCodeFieldOutOfRange, "hour out of range: 24"},
		{"literal mismatch", "2020/06/15", "%Y-%m-%d", errors.ErrCodeMalformedInput, `expected "-" at offset 4`},
		{"missing digits", "2020-", "%Y-%m", errors.ErrCodeMalformedInput, "expected month digits at offset 5"},
		{"day 366 of common year", "2021 366", "%Y %j", errors.ErrCodeFieldOutOfRange, "day of year out of range: 366"},
		{"whitespace is exact", "2020-06-15  10", "%Y-%m-%d %H", errors.ErrCodeMalformedInput, "expected hour digits at offset 11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(4).Match(tt.input, tt.format, Strict)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "code of %v", err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestMatch_Loose(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format string
		want   map[string]int
	}{
		{
			name:   "surrounding whitespace and trailing text",
			input:  "  2020-06-15 10:00   extra",
			format: "%Y-%m-%d %H:%M",
			want:   map[string]int{"year": 2020, "month": 6, "day": 15, "hour": 10, "minute": 0},
		},
		{
			name:   "input ends at directive boundary",
			input:  "2020-06-15",
			format: "%Y-%m-%d %H:%M:%S",
			want:   map[string]int{"year": 2020, "month": 6, "day": 15},
		},
		{
			name:   "whitespace run matches wider run",
			input:  "2020-06-15 \t  10:00",
			format: "%Y-%m-%d %H:%M",
			want:   map[string]int{"year": 2020, "month": 6, "day": 15, "hour": 10, "minute": 0},
		},
		{
			name:   "whitespace run matches nothing",
			input:  "2020-06-1510:00",
			format: "%Y-%m-%d %H:%M",
			want:   map[string]int{"year": 2020, "month": 6, "day": 15, "hour": 10, "minute": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(4).Match(tt.input, tt.format, Loose)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fieldMap(m))
		})
	}

	t.Run("blank input still fails", func(t *testing.T) {
		_, err := New(4).Match("   ", "%Y", Loose)
		require.Error(t, err)
	})
}

func TestMatch_StrictAndLooseAgree(t *testing.T) {
	in := New(8)
	inputs := []string{"2020-06-15 10:30:45", "1999-12-31 23:59:59", "2000-02-29 00:00:00"}
	for _, input := range inputs {
		strict, err := in.Match(input, "%Y-%m-%d %H:%M:%S", Strict)
		require.NoError(t, err)
		loose, err := in.Match(input, "%Y-%m-%d %H:%M:%S", Loose)
		require.NoError(t, err)
		assert.Equal(t, fieldMap(strict), fieldMap(loose), input)
	}

	_, err := in.Match("2020-06-15 10:30:45 trailing", "%Y-%m-%d %H:%M:%S", Strict)
	require.Error(t, err)
	_, err = in.Match("2020-06-15 10:30:45 trailing", "%Y-%m-%d %H:%M:%S", Loose)
	require.NoError(t, err)
}

func TestMatch_Partial(t *testing.T) {
	m, err := New(4).Match("2020-01", "%Y-%m-%d", Partial)
	require.Error(t, err)
	assert.Equal(t, "YM", m.Fields.Components().String())
	assert.Equal(t, 2, m.Directives)

	m, err = New(4).Match("2020-01-02 25", "%Y-%m-%d %H", Partial)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFieldOutOfRange))
	assert.Equal(t, "YMD", m.Fields.Components().String())
}

func TestCompile_Errors(t *testing.T) {
	for _, format := range []string{"%Q", "%Y-%", "%.x", "%."} {
		t.Run(format, func(t *testing.T) {
			_, err := Compile(format)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidFormat))
		})
	}

	_, err := New(4).Match("2020", "%Y%Q", Strict)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidFormat))
}

func TestRewriteFraction(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"%Y-%m-%d %H:%M:%S.%f", "%Y-%m-%d %H:%M:%S%.f"},
		{"%H:%M:%S.%f.%f", "%H:%M:%S.%f%.f"},
		{"%Y-%m-%d", "%Y-%m-%d"},
		{"%S%.f", "%S%.f"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RewriteFraction(tt.format))
	}
}

func TestInterpreter_CachesPrograms(t *testing.T) {
	in := New(2)
	p1, err := in.Compile("%Y")
	require.NoError(t, err)
	p2, err := in.Compile("%Y")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, "%Y", p1.Format())

	hits, misses, size := in.CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1, size)

	// invalid formats are not cached
	_, err = in.Compile("%Q")
	require.Error(t, err)
	_, _, size = in.CacheStats()
	assert.Equal(t, 1, size)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "strict", Strict.String())
	assert.Equal(t, "loose", Loose.String())
	assert.Equal(t, "partial", Partial.String())
}

func FuzzMatch(f *testing.F) {
	f.Add("2020-06-15T10:00:00+05:30", "%Y-%m-%dT%H:%M:%S%z")
	f.Add("Mon, 15 Jun 2020 03:15 PM", "%a, %d %b %Y %I:%M %p")
	f.Add("2020 060", "%Y %j")
	f.Add("10:00:00.123456789", "%T%.f")

	in := New(32)
	f.Fuzz(func(t *testing.T, input, format string) {
		for _, mode := range []Mode{Strict, Loose, Partial} {
			m, err := in.Match(input, format, mode)
			if err == nil && mode == Strict {
				// a strict match consumed everything, so loose must agree
				loose, lerr := in.Match(input, format, Loose)
				if lerr == nil && fieldMap(loose)["year"] != fieldMap(m)["year"] {
					t.Fatalf("strict and loose disagree on %q / %q", input, format)
				}
			}
		}
	})
}
