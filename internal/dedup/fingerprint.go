// Package dedup provides transaction fingerprinting via SHA256 and a
// windowed recent-fingerprint store for duplicate suppression.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// fingerprintTimeLayout is minute precision; two observations of the same
// underlying transaction must collapse to the same fingerprint even when
// their second fields differ.
const fingerprintTimeLayout = "2006-01-02 15:04"

// Fingerprint derives a stable duplicate-detection key from the extracted
// fields. Format: SHA256("{amount 2dp}|{lowercased merchant}|{date truncated
// to minute, UTC}"), hex-encoded. Pure: equal inputs always produce equal
// output. The 5-minute duplicate window is the caller's responsibility; this
// function only defines the key equality contract.
func Fingerprint(amount decimal.Decimal, merchant string, date time.Time) string {
	normalizedMerchant := strings.ToLower(strings.TrimSpace(merchant))
	minute := date.UTC().Truncate(time.Minute).Format(fingerprintTimeLayout)

	input := fmt.Sprintf("%s|%s|%s", amount.StringFixed(2), normalizedMerchant, minute)

	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
