// Package fallback recovers individual fields from bulk document text with
// keyword-anchored patterns. It is independent of token geometry and is used
// when the primary pipelines fail to produce a required field.
package fallback

import (
	"regexp"
	"strings"
)

// gstin is the positional grammar of an Indian GST identification number:
// 2 digits, 5 letters, 4 digits, 1 letter, 1 alphanumeric, a literal Z,
// 1 alphanumeric. 15 characters total.
const gstin = `[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[A-Z0-9]{1}[Z]{1}[A-Z0-9]{1}`

var (
	// Ordered, most-specific first. The last pattern is deliberately lenient:
	// any 15-character alphanumeric run starting with two digits.
	taxIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:GSTIN|GST\s*No|GST\s*IN|PAN)[\s:]+(` + gstin + `)`),
		regexp.MustCompile(`(?i)\b(` + gstin + `)\b`),
		regexp.MustCompile(`(?i)\b([0-9]{2}[A-Z0-9]{13})\b`),
	}

	// Counterparty section keyword, then the grammar within 500 characters.
	reBuyerSection = regexp.MustCompile(`(?i)(?:Bill\s*To|Buyer|Consignee|Ship\s*To)[\s\S]{0,500}?(` + gstin + `)`)
	reAllTaxIDs    = regexp.MustCompile(`\b(` + gstin + `)\b`)

	invoiceNoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Invoice\s*(?:No|Number|#)[\s:]+([A-Z0-9\-/]+)`),
		regexp.MustCompile(`(?i)Bill\s*(?:No|Number)[\s:]+([A-Z0-9\-/]+)`),
		regexp.MustCompile(`(?i)Tax\s*Invoice[\s:]+([A-Z0-9\-/]+)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Invoice\s*Date[\s:]+(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
		regexp.MustCompile(`(?i)Date[\s:]+(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
		regexp.MustCompile(`\b(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})\b`),
	}
)

// TaxID extracts the first tax identifier in the text, preferring
// keyword-anchored matches over bare grammar matches over lenient runs.
func TaxID(text string) (string, bool) {
	for _, re := range taxIDPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			id := strings.ToUpper(m[1])
			if len(id) == 15 && isDigit(id[0]) && isDigit(id[1]) {
				return id, true
			}
		}
	}
	return "", false
}

// CounterpartyTaxID extracts the tax identifier belonging to the document's
// counterparty. It first looks for the grammar within 500 characters after a
// counterparty-section keyword. Failing that it collects every match in the
// document and returns the second one, on the assumption that the first
// belongs to the issuer. That ordering is a heuristic about how these
// documents are laid out, not an invariant of the input.
func CounterpartyTaxID(text string) (string, bool) {
	if m := reBuyerSection.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1]), true
	}
	all := reAllTaxIDs.FindAllStringSubmatch(text, -1)
	switch {
	case len(all) >= 2:
		return strings.ToUpper(all[1][1]), true
	case len(all) == 1:
		return strings.ToUpper(all[0][1]), true
	}
	return "", false
}

// InvoiceNumber extracts an invoice number via keyword-anchored patterns.
func InvoiceNumber(text string) (string, bool) {
	for _, re := range invoiceNoPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// Date extracts a date, preferring keyword-anchored patterns and falling back
// to any bare date-shaped token.
func Date(text string) (string, bool) {
	for _, re := range datePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
