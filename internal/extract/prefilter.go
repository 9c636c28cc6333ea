package extract

import (
	"regexp"

	"github.com/rumor-ml/commons.systems/smsparse/internal/domain"
)

// Pre-filter patterns for non-transactional message classes. OTP detection
// runs before promotional detection; both run before any extraction.
var (
	otpRe = regexp.MustCompile(`(?i)\b(?:otp|one[ -]?time password|verification code|do not share)\b`)

	promoRe = regexp.MustCompile(`(?i)(?:\boffers?\b|\bcashback upto\b|% off|\bunsubscribe\b|\bt&c\b)`)
)

// Prefilter screens out messages that are not transaction notifications.
// Returns the rejection reason and true when the text matches a known
// non-transactional class.
func Prefilter(text string) (domain.Reason, bool) {
	if otpRe.MatchString(text) {
		return domain.ReasonLooksLikeOTP, true
	}
	if promoRe.MatchString(text) {
		return domain.ReasonLooksLikePromotional, true
	}
	return "", false
}
