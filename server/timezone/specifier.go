package timezone

import (
	"fmt"
	"time"
)

type specKind uint8

const (
	kindNone specKind = iota
	kindOffset
	kindName
)

// Specifier is the zone information a parse carried: nothing, a fixed UTC
// offset, or a zone identifier that still needs resolving.
type Specifier struct {
	kind   specKind
	offset time.Duration
	name   string
}

// Offset returns a fixed-offset specifier. offset is east of UTC.
func Offset(offset time.Duration) Specifier {
	return Specifier{kind: kindOffset, offset: offset}
}

// Name returns a named-zone specifier.
func Name(name string) Specifier {
	return Specifier{kind: kindName, name: name}
}

// IsZero reports whether s carries no zone information.
func (s Specifier) IsZero() bool {
	return s.kind == kindNone
}

// IsOffset reports whether s is a fixed offset, returning it.
func (s Specifier) IsOffset() (time.Duration, bool) {
	return s.offset, s.kind == kindOffset
}

// IsName reports whether s is a named zone, returning the identifier.
func (s Specifier) IsName() (string, bool) {
	return s.name, s.kind == kindName
}

// String renders s for logs: "", "+05:30", or the zone name.
func (s Specifier) String() string {
	switch s.kind {
	case kindOffset:
		return FormatOffset(s.offset)
	case kindName:
		return s.name
	default:
		return ""
	}
}

// FormatOffset renders an offset as ±HH:MM, with :SS when needed.
func FormatOffset(offset time.Duration) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	secs := int(offset / time.Second)
	h, m, sec := secs/3600, secs/60%60, secs%60
	if sec != 0 {
		return fmt.Sprintf("%c%02d:%02d:%02d", sign, h, m, sec)
	}
	return fmt.Sprintf("%c%02d:%02d", sign, h, m)
}
