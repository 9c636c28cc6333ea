package extract

// accountSuffixRules match the trailing 2-4 visible digits of a masked
// account or card number.
var accountSuffixRules = []CaptureRule{
	{Name: "ac-masked", re: mustCompile(`(?i)\ba/c\s*(?:no\.?\s*)?[*xX]+\s*([0-9]{2,4})`)},
	{Name: "account-ending", re: mustCompile(`(?i)\baccount\s+ending\s+(?:in\s+)?([0-9]{2,4})`)},
	{Name: "double-star", re: mustCompile(`\*\*\s*([0-9]{2,4})`)},
}

// referenceRules match a transaction/UPI reference token after its label.
// The label must be followed by a colon or period; a bare "via UPI" with no
// token must not capture the next word.
var referenceRules = []CaptureRule{
	{Name: "ref", re: mustCompile(`(?i)\bref(?:\s*(?:no|number|id))?\s*[:.]\s*([A-Za-z0-9]+)`)},
	{Name: "upi", re: mustCompile(`(?i)\bupi(?:\s*ref)?\s*[:.]\s*([A-Za-z0-9]+)`)},
	{Name: "txn-id", re: mustCompile(`(?i)\btxn\s*(?:id|no|ref)?\s*[:.]\s*([A-Za-z0-9]+)`)},
}

// AccountSuffix extracts the last 2-4 digits of a masked account number.
func AccountSuffix(text string) (string, bool) {
	return firstCapture(accountSuffixRules, text)
}

// Reference extracts an alphanumeric transaction reference.
func Reference(text string) (string, bool) {
	return firstCapture(referenceRules, text)
}
