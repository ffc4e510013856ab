package heuristic

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/hrygo/fastdatetime/internal/errors"
)

type tokenKind uint8

const (
	tokNumber tokenKind = iota
	tokWord
	tokSep
)

type token struct {
	kind tokenKind
	text string
	val  int // numbers only
}

func (t token) is(sep string) bool {
	return t.kind == tokSep && t.text == sep
}

// maxDigits bounds a single digit run; the longest packed form is YYYYMMDDHHMMSS.
const maxDigits = 14

// lex folds full-width forms to ASCII and splits s into number, word, and
// separator tokens. Whitespace runs collapse into a single " " separator.
func lex(s string) ([]token, error) {
	s = width.Fold.String(s)

	var toks []token
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r >= '0' && r <= '9':
			j := i
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j-i > maxDigits {
				return nil, errors.MalformedInputf("number %q is too long", s[i:j])
			}
			v, err := strconv.Atoi(s[i:j])
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeMalformedInput, "bad number")
			}
			toks = append(toks, token{kind: tokNumber, text: s[i:j], val: v})
			i = j
		case unicode.IsLetter(r):
			j := i
			for j < len(s) {
				r, n := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsLetter(r) {
					break
				}
				j += n
			}
			toks = append(toks, token{kind: tokWord, text: s[i:j]})
			i = j
		case unicode.IsSpace(r):
			j := i
			for j < len(s) {
				r, n := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsSpace(r) {
					break
				}
				j += n
			}
			toks = append(toks, token{kind: tokSep, text: " "})
			i = j
		default:
			toks = append(toks, token{kind: tokSep, text: s[i : i+size]})
			i += size
		}
	}
	return toks, nil
}

// isAbbreviation reports whether w looks like an upper-case zone
// abbreviation such as "CET" or "PDT".
func isAbbreviation(w string) bool {
	if len(w) < 2 || len(w) > 5 {
		return false
	}
	return strings.IndexFunc(w, func(r rune) bool { return r < 'A' || r > 'Z' }) < 0
}
