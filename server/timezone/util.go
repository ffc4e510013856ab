// Package timezone resolves zone specifiers to UTC offsets and aligns
// naive wall-clock values to UTC.
//
// Named zones are looked up in a zoneinfo archive embedded in the binary.
// The host's zoneinfo directories and $ZONEINFO are never consulted.
package timezone

import (
	"archive/zip"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gotz "github.com/tkuchiki/go-timezone"

	"github.com/hrygo/fastdatetime/internal/errors"
	"github.com/hrygo/fastdatetime/plugin/dateparse/civil"
)

// Default location constants
var (
	// UTC is the coordinated universal time timezone
	UTC = time.UTC
)

// MaxOffset bounds fixed offsets: |offset| must stay below one day.
const MaxOffset = 24*time.Hour - time.Second

// maxUnknownZones caps how many failed lookups a Resolver remembers.
const maxUnknownZones = 1024

//go:embed zoneinfo.zip
var zoneinfoZip []byte

// zoneDB indexes the embedded archive by zone name.
var zoneDB = sync.OnceValues(func() (map[string]*zip.File, error) {
	zr, err := zip.NewReader(bytes.NewReader(zoneinfoZip), int64(len(zoneinfoZip)))
	if err != nil {
		return nil, fmt.Errorf("open embedded zoneinfo: %w", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	return files, nil
})

func loadEmbedded(name string) (*time.Location, error) {
	files, err := zoneDB()
	if err != nil {
		return nil, err
	}
	f, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("unknown time zone %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return time.LoadLocationFromTZData(name, data)
}

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Shanghai").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := loadEmbedded(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// AlignToUTC converts a naive wall-clock value that is local to the given
// offset into the equivalent UTC wall-clock value: naive - offset.
func AlignToUTC(naive civil.DateTime, offset time.Duration) civil.DateTime {
	return naive.Add(-offset)
}

// Mode selects which instant a named zone's offset is taken at.
type Mode int

const (
	// ResolveAtNow uses the zone's offset at the resolver clock's current
	// instant, ignoring the parsed date. Values aligned this way are not
	// stable across DST or rule changes.
	ResolveAtNow Mode = iota
	// ResolveAtWallTime uses the zone's rules at the parsed wall time.
	ResolveAtWallTime
)

// String returns the configuration spelling of m.
func (m Mode) String() string {
	if m == ResolveAtWallTime {
		return "wall"
	}
	return "now"
}

// ParseMode maps "now" or "wall" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "now":
		return ResolveAtNow, nil
	case "wall":
		return ResolveAtWallTime, nil
	default:
		return ResolveAtNow, fmt.Errorf("unknown zone resolution mode %q (valid: now, wall)", s)
	}
}

// Resolver turns a Specifier into a concrete UTC offset.
// It is safe for concurrent use.
type Resolver struct {
	mode Mode
	now  func() time.Time

	// memoized *time.Location, or the lookup error, per identifier
	locations sync.Map
	unknown   atomic.Int32

	abbrevOnce sync.Once
	abbrevs    *gotz.Timezone
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMode sets the resolution mode.
func WithMode(m Mode) ResolverOption {
	return func(r *Resolver) {
		r.mode = m
	}
}

// WithClock sets the clock used by ResolveAtNow.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a resolver. By default it resolves at the current instant.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		mode: ResolveAtNow,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode returns the resolution mode.
func (r *Resolver) Mode() Mode {
	return r.mode
}

// Resolve returns the UTC offset for spec. wall is the parsed naive value and
// is only consulted in ResolveAtWallTime mode.
func (r *Resolver) Resolve(spec Specifier, wall civil.DateTime) (time.Duration, error) {
	switch spec.kind {
	case kindOffset:
		if spec.offset > MaxOffset || spec.offset < -MaxOffset {
			return 0, errors.FieldOutOfRange("offset seconds", int(spec.offset/time.Second))
		}
		return spec.offset, nil
	case kindName:
		loc, err := r.Location(spec.name)
		if err != nil {
			return 0, err
		}
		var at time.Time
		if r.mode == ResolveAtWallTime {
			at = time.Date(wall.Year, wall.Month, wall.Day, wall.Hour, wall.Minute, wall.Second, wall.Nanosecond, loc)
		} else {
			at = r.now().In(loc)
		}
		_, offset := at.Zone()
		return time.Duration(offset) * time.Second, nil
	default:
		return 0, nil
	}
}

// Align resolves spec and aligns naive to UTC.
func (r *Resolver) Align(naive civil.DateTime, spec Specifier) (civil.DateTime, error) {
	offset, err := r.Resolve(spec, naive)
	if err != nil {
		return civil.DateTime{}, err
	}
	return AlignToUTC(naive, offset), nil
}

// Location looks up a zone identifier: UTC aliases, IANA names, then
// abbreviations such as "CET" or "JST". Failed lookups are remembered too.
func (r *Resolver) Location(name string) (*time.Location, error) {
	switch strings.ToUpper(name) {
	case "UTC", "Z", "GMT", "UT", "ZULU":
		return UTC, nil
	}
	if v, ok := r.locations.Load(name); ok {
		if loc, ok := v.(*time.Location); ok {
			return loc, nil
		}
		return nil, v.(error)
	}

	var loc *time.Location
	var err error
	if name == "" || strings.EqualFold(name, "local") {
		err = errors.InvalidTimezone(name)
	} else if loc, err = ParseTimezone(name); err != nil {
		loc, err = r.abbreviation(name)
	}
	if err != nil {
		if r.unknown.Add(1) <= maxUnknownZones {
			r.locations.Store(name, err)
		}
		return nil, err
	}
	r.locations.Store(name, loc)
	return loc, nil
}

func (r *Resolver) abbreviation(name string) (*time.Location, error) {
	if name == "" || strings.ContainsAny(name, "/+-0123456789") {
		return nil, errors.InvalidTimezone(name)
	}
	r.abbrevOnce.Do(func() {
		r.abbrevs = gotz.New()
	})
	// ambiguous abbreviations come back with an error and every candidate; the first wins
	infos, _ := r.abbrevs.GetTzAbbreviationInfo(strings.ToUpper(name))
	if len(infos) == 0 {
		return nil, errors.InvalidTimezone(name)
	}
	return time.FixedZone(strings.ToUpper(name), infos[0].Offset()), nil
}
