package checkout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Two recognized grammars: plain 24-hour "H:mm"/"HH:mm" and 12-hour with an
// am/pm marker. Anything else normalizes to an empty string — a malformed
// time falls through to a server-side rejection instead of a client crash.
var (
	time24Re = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
	time12Re = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(am|pm)$`)
)

// NormalizeTime converts a start-time string to 24-hour HH:mm. Already-24h
// input is accepted unchanged; 12-hour input gets the standard correction
// (12am -> 0, 12pm -> 12, otherwise pm adds 12). It never returns an error.
func NormalizeTime(raw string) string {
	s := strings.TrimSpace(raw)

	if time24Re.MatchString(s) {
		return s
	}

	m := time12Re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return ""
	}
	minute := m[2]

	if strings.EqualFold(m[3], "am") {
		if hour == 12 {
			hour = 0
		}
	} else if hour != 12 {
		hour += 12
	}

	return fmt.Sprintf("%02d:%s", hour, minute)
}
