package extract

import (
	"regexp"
	"time"
)

// dateRule pairs a date token pattern with the layouts that can parse it.
type dateRule struct {
	name    string
	re      *regexp.Regexp
	layouts []string
}

// dateRules run in order; the 4-digit-year forms come first so a 2-digit-year
// pattern never truncates them.
var dateRules = []dateRule{
	{
		name:    "numeric-4y",
		re:      regexp.MustCompile(`\b([0-9]{2}[/-][0-9]{2}[/-][0-9]{4})\b`),
		layouts: []string{"02/01/2006", "02-01-2006"},
	},
	{
		name:    "numeric-2y",
		re:      regexp.MustCompile(`\b([0-9]{2}[/-][0-9]{2}[/-][0-9]{2})\b`),
		layouts: []string{"02/01/06", "02-01-06"},
	},
	{
		name:    "textual-month",
		re:      regexp.MustCompile(`(?i)\b([0-9]{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+[0-9]{4})\b`),
		layouts: []string{"2 Jan 2006", "2 January 2006"},
	},
}

// Date extracts an explicit transaction date from message text.
// Returns false when no date token is found or none parses to a valid
// calendar date; the caller then defaults to its clock and flags the result
// as inferred.
func Date(text string) (time.Time, bool) {
	for _, rule := range dateRules {
		for _, token := range rule.re.FindAllString(text, 3) {
			for _, layout := range rule.layouts {
				if t, err := time.Parse(layout, token); err == nil {
					return t, true
				}
			}
		}
	}
	return time.Time{}, false
}
