package extract

import (
	"regexp"
	"strings"

	"github.com/rumor-ml/commons.systems/smsparse/internal/domain"
)

// Keyword sets for direction detection. Matching is case-insensitive and
// word-bounded ("prepaid" must not trigger "paid").
var (
	debitKeywords  = []string{"debited", "paid", "spent", "withdrawn", "purchase of"}
	creditKeywords = []string{"credited", "received", "deposited"}

	debitRe  = keywordPattern(debitKeywords)
	creditRe = keywordPattern(creditKeywords)
)

func keywordPattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Direction detects the transaction direction from message text.
// Debit takes precedence when keywords from both sets are present.
// Returns false when neither set matches.
func Direction(text string) (domain.Direction, bool) {
	switch {
	case debitRe.MatchString(text):
		return domain.DirectionDebit, true
	case creditRe.MatchString(text):
		return domain.DirectionCredit, true
	default:
		return "", false
	}
}
