// Package academic maps certificate dates onto labeled academic cycles.
package academic

import (
	"fmt"
	"strings"
	"time"
)

// UnknownPeriod is returned for empty or unparseable dates.
const UnknownPeriod = "Unknown Year"

// dateLayouts are tried in order when parsing a certificate date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"02 Jan 2006",
	"January 2, 2006",
}

// Classify returns the academic period label for the given date string.
// startMonth is the calendar month a new cycle begins on: with an April
// start, "2024-05-10" falls in "2024-2025" and "2024-02-10" in "2023-2024".
//
// The function is total: malformed input degrades to UnknownPeriod, it
// never returns an error.
func Classify(date string, startMonth time.Month) string {
	t, ok := parseDate(date)
	if !ok {
		return UnknownPeriod
	}

	year := t.Year()
	if t.Month() >= startMonth {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

func parseDate(date string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
