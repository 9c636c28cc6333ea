// Package extract implements the ordered extraction rules the message parser
// runs against sanitized notification text. Each rule is a pure function from
// text to an optional capture; rules are tried in their declared priority
// order so tie-break behavior stays auditable and testable in isolation.
package extract

import "regexp"

var mustCompile = regexp.MustCompile

// CaptureRule pairs a name with a single-capture pattern.
// Rules in a list run in declared order and the first match wins.
type CaptureRule struct {
	Name string
	re   *regexp.Regexp
}

// firstCapture applies rules in order and returns the first capture group of
// the first rule that matches.
func firstCapture(rules []CaptureRule, text string) (string, bool) {
	for _, rule := range rules {
		if m := rule.re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}
