package heuristic

import "fmt"

type wordKind uint8

const (
	wordMonth wordKind = iota + 1
	wordWeekday
	wordJump
	wordMeridiem
	wordZone
)

type wordInfo struct {
	kind  wordKind
	value int
}

// vocabulary lists the words the parser knows, by kind. Keys are lower case.
var vocabulary = []struct {
	kind  wordKind
	words [][]string // words[i] all map to value i+1
}{
	{wordMonth, [][]string{
		{"jan", "january"}, {"feb", "february"}, {"mar", "march"}, {"apr", "april"},
		{"may"}, {"jun", "june"}, {"jul", "july"}, {"aug", "august"},
		{"sep", "sept", "september"}, {"oct", "october"}, {"nov", "november"}, {"dec", "december"},
	}},
	{wordWeekday, [][]string{
		{"mon", "monday"}, {"tue", "tues", "tuesday"}, {"wed", "wednesday"},
		{"thu", "thur", "thurs", "thursday"}, {"fri", "friday"}, {"sat", "saturday"}, {"sun", "sunday"},
	}},
	{wordJump, [][]string{
		{"at", "on", "of", "and", "the", "st", "nd", "rd", "th", "t"},
	}},
	{wordMeridiem, [][]string{
		{"am"}, {"pm"},
	}},
	{wordZone, [][]string{
		{"z", "utc", "gmt", "ut", "zulu"},
	}},
}

// buildWords flattens vocabulary into a lookup table. A word listed under
// two kinds is an error.
func buildWords() (map[string]wordInfo, error) {
	words := make(map[string]wordInfo)
	for _, group := range vocabulary {
		for i, spellings := range group.words {
			for _, w := range spellings {
				if prev, ok := words[w]; ok && prev.kind != group.kind {
					return nil, fmt.Errorf("word %q registered twice", w)
				}
				words[w] = wordInfo{kind: group.kind, value: i + 1}
			}
		}
	}
	return words, nil
}
