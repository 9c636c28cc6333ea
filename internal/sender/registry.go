// Package sender classifies SMS sender identifiers.
//
// Indian SMS sender IDs look like "VM-HDFCBK" or "AD-SBIUPI": a two-letter
// route/operator prefix, a hyphen, and a six-character entity code. The
// registry maps entity codes to known institutions so callers can annotate
// or filter messages by origin. Parsing stays sender-agnostic: lookups never
// change parse results.
package sender

import "strings"

// Kind classifies the institution behind a sender ID.
type Kind string

const (
	KindBank    Kind = "bank"
	KindWallet  Kind = "wallet"
	KindUnknown Kind = "unknown"
)

// Profile describes a known sender.
type Profile struct {
	Name string
	Kind Kind
}

type entry struct {
	code    string
	profile Profile
}

// Registry holds known sender entity codes. Immutable after construction
// when used via New; Register is for setup, not concurrent use.
type Registry struct {
	entries []entry
}

// builtin covers the common Indian banks and wallets seen in notification
// traffic. Codes match case-insensitively against the entity part of the
// sender ID.
var builtin = []entry{
	{"HDFCBK", Profile{Name: "HDFC Bank", Kind: KindBank}},
	{"ICICIB", Profile{Name: "ICICI Bank", Kind: KindBank}},
	{"SBIINB", Profile{Name: "State Bank of India", Kind: KindBank}},
	{"SBIUPI", Profile{Name: "State Bank of India", Kind: KindBank}},
	{"AXISBK", Profile{Name: "Axis Bank", Kind: KindBank}},
	{"KOTAKB", Profile{Name: "Kotak Mahindra Bank", Kind: KindBank}},
	{"PNBSMS", Profile{Name: "Punjab National Bank", Kind: KindBank}},
	{"PAYTMB", Profile{Name: "Paytm Payments Bank", Kind: KindBank}},
	{"PHONPE", Profile{Name: "PhonePe", Kind: KindWallet}},
	{"PAYTM", Profile{Name: "Paytm", Kind: KindWallet}},
	{"GPAY", Profile{Name: "Google Pay", Kind: KindWallet}},
	{"AMZNPAY", Profile{Name: "Amazon Pay", Kind: KindWallet}},
}

// New creates a registry with the built-in sender profiles.
func New() *Registry {
	return &Registry{entries: append([]entry(nil), builtin...)}
}

// Register adds a custom sender code (for extensibility). Later
// registrations take precedence over built-ins.
func (r *Registry) Register(code string, profile Profile) {
	r.entries = append([]entry{{code: strings.ToUpper(code), profile: profile}}, r.entries...)
}

// Lookup resolves a raw sender ID to a known profile.
// The route prefix ("VM-", "AD-", ...) is stripped before matching; the
// remaining entity code matches when it contains a registered code. Returns
// a KindUnknown profile and false when nothing matches.
func (r *Registry) Lookup(senderID string) (Profile, bool) {
	id := strings.ToUpper(strings.TrimSpace(senderID))
	if id == "" {
		return Profile{Kind: KindUnknown}, false
	}

	// Strip one leading route prefix if present.
	if len(id) > 3 && id[2] == '-' {
		id = id[3:]
	}

	for _, e := range r.entries {
		if strings.Contains(id, e.code) {
			return e.profile, true
		}
	}
	return Profile{Kind: KindUnknown}, false
}
