package extract

import "strings"

// Candidate length bounds. Single characters are usually masked-account
// debris ("to A/c **5678" capturing "A"); very long captures are sentence
// fragments, not names.
const (
	minMerchantLen = 2
	maxMerchantLen = 40
)

// merchantPhraseRules capture the text following a merchant-introducing
// phrase, up to the next punctuation or stop keyword. The longer
// "for payment to" phrase must precede the bare "to" rule, which would
// otherwise shadow it.
var merchantPhraseRules = []CaptureRule{
	{Name: "payment-to", re: mustCompile(`(?i)\bfor\s+payment\s+to\s+` + merchantCapture)},
	{Name: "to", re: mustCompile(`(?i)\bto\s+` + merchantCapture)},
	{Name: "at", re: mustCompile(`(?i)\bat\s+` + merchantCapture)},
	{Name: "via", re: mustCompile(`(?i)\bvia\s+` + merchantCapture)},
}

// merchantCapture matches a name and its terminator: punctuation, a stop
// keyword, or end of text.
const merchantCapture = `([A-Za-z][A-Za-z0-9&' .-]*?)(?:[.,;!]|\s+(?:via|on|for|from|ref|upi|txn|bal)\b|$)`

// MerchantCandidate extracts a raw merchant candidate from message text.
// Phrase rules run in order and the first plausible capture wins. The result
// is a best-effort token; canonicalization against the known-merchant table
// is the caller's job.
func MerchantCandidate(text string) (string, bool) {
	for _, rule := range merchantPhraseRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if len(candidate) < minMerchantLen || len(candidate) > maxMerchantLen {
			continue
		}
		return candidate, true
	}
	return "", false
}
