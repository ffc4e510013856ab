package strptime

import (
	"fmt"
	"strings"

	"github.com/hrygo/fastdatetime/internal/errors"
)

type itemKind uint8

const (
	itemLiteral itemKind = iota
	itemSpace
	itemDirective
)

type item struct {
	kind itemKind
	text string // literal bytes, or the whitespace run as written
	verb byte   // directive letter; '.' stands for %.f
}

// compositions expand to their component directives at compile time.
var compositions = map[byte]string{
	'F': "%Y-%m-%d",
	'T': "%H:%M:%S",
	'D': "%m/%d/%y",
	'R': "%H:%M",
}

// verbs is the set of directive letters the matcher understands.
const verbs = "YymdejHkIlpPMSfzZbhBaAnt"

// Program is a compiled format string. It is immutable and safe to share.
type Program struct {
	format string
	items  []item
}

// Format returns the source format string.
func (p *Program) Format() string {
	return p.format
}

// Compile turns a format string into a Program.
func Compile(format string) (*Program, error) {
	items, err := compile(format, nil)
	if err != nil {
		return nil, err
	}
	return &Program{format: format, items: items}, nil
}

func compile(format string, items []item) ([]item, error) {
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			items = append(items, item{kind: itemLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(format); i++ {
		b := format[i]
		if isSpace(b) {
			flush()
			j := i
			for j < len(format) && isSpace(format[j]) {
				j++
			}
			items = append(items, item{kind: itemSpace, text: format[i:j]})
			i = j - 1
			continue
		}
		if b != '%' {
			lit.WriteByte(b)
			continue
		}

		i++
		if i == len(format) {
			return nil, errors.InvalidFormat(`stray "%" at end of format`).WithContext("format", format)
		}
		verb := format[i]
		switch {
		case verb == '%':
			lit.WriteByte('%')
		case verb == '.':
			if i+1 >= len(format) || format[i+1] != 'f' {
				return nil, errors.InvalidFormat(`"%." must be followed by "f"`).WithContext("format", format)
			}
			i++
			flush()
			items = append(items, item{kind: itemDirective, verb: '.'})
		case compositions[verb] != "":
			flush()
			var err error
			if items, err = compile(compositions[verb], items); err != nil {
				return nil, err
			}
		case strings.IndexByte(verbs, verb) >= 0:
			flush()
			items = append(items, item{kind: itemDirective, verb: verb})
		default:
			return nil, errors.InvalidFormat(fmt.Sprintf("unknown directive %%%c", verb)).WithContext("format", format)
		}
	}
	flush()
	return items, nil
}

// RewriteFraction moves the dot of the last ".%f" into the directive, giving
// "%.f", so that a missing fraction (and its dot) is accepted.
func RewriteFraction(format string) string {
	i := strings.LastIndex(format, ".%f")
	if i < 0 {
		return format
	}
	return format[:i] + "%.f" + format[i+3:]
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
