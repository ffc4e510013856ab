package strptime

import "strings"

var longMonthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var shortMonthNames = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var longWeekNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var shortWeekNames = []string{
	"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat",
}

// lookupName matches the longest name at the start of s, ignoring case,
// trying the long spellings first. It returns the 1-based index and the
// number of bytes consumed, or 0, 0.
func lookupName(s string, long, short []string) (int, int) {
	for _, names := range [][]string{long, short} {
		for i, name := range names {
			if len(s) >= len(name) && strings.EqualFold(s[:len(name)], name) {
				return i + 1, len(name)
			}
		}
	}
	return 0, 0
}
