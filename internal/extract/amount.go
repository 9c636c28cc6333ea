package extract

import (
	"strings"

	"github.com/shopspring/decimal"
)

// amountRules are the prioritized amount patterns. All rules accept Indian
// digit grouping (1,00,000) as well as Western grouping; separators are
// stripped before the decimal parse.
var amountRules = []CaptureRule{
	{Name: "rupee-symbol", re: mustCompile(`₹\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)},
	{Name: "rs-prefix", re: mustCompile(`(?i)\brs\.?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)},
	{Name: "inr-prefix", re: mustCompile(`(?i)\binr\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)},
	{Name: "amount-word", re: mustCompile(`(?i)\bamount\b\W{0,3}([0-9][0-9,]*(?:\.[0-9]+)?)`)},
}

// Amount extracts the transaction amount from message text.
// The earliest match in the text wins regardless of which rule produced it,
// so a later balance figure (typically after "Bal:") never shadows the
// transaction amount; rule order breaks ties at the same offset. Returns
// false when no rule matches or the captured value is not a positive decimal.
func Amount(text string) (decimal.Decimal, bool) {
	bestStart := -1
	bestCapture := ""

	for _, rule := range amountRules {
		loc := rule.re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if bestStart == -1 || loc[0] < bestStart {
			bestStart = loc[0]
			bestCapture = text[loc[2]:loc[3]]
		}
	}

	if bestStart == -1 {
		return decimal.Decimal{}, false
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(bestCapture, ",", ""))
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, false
	}
	return amount, true
}
