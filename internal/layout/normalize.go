package layout

import (
	"regexp"
	"strings"

	"github.com/paperpoint/invoice-extractor/constants"
	"github.com/paperpoint/invoice-extractor/internal/pdfio"
)

var (
	reInvoicePP     = regexp.MustCompile(`(?i)\bPP\d{6,}\b`)
	reInvoiceDigits = regexp.MustCompile(`\b\d{6,}\b`)
)

// Normalize canonicalizes a raw resolved value according to the field's kind.
// The labels set is the same lowercased exclusion set the resolver uses; the
// invoice-number mode truncates at embedded labels to strip page content that
// bled into the capture box.
func Normalize(value string, kind constants.FieldKind, labels map[string]struct{}) string {
	if value == "" {
		return value
	}
	switch kind {
	case constants.InvoiceNumber:
		return normalizeInvoiceNo(value, labels)
	case constants.BillParty:
		// Only the first two words are trusted as the party name; the rest is
		// usually address spill.
		words := strings.Fields(value)
		if len(words) > 2 {
			words = words[:2]
		}
		return strings.Join(words, " ")
	case constants.MoneyTotal:
		if !strings.Contains(value, constants.CurrencyMarker) && containsDigit(value) {
			return constants.CurrencyMarker + " " + value
		}
		return value
	default:
		return pdfio.Clean(value)
	}
}

// normalizeInvoiceNo encodes the domain convention that invoice numbers are
// either already "PP######" or a bare numeral that should be canonicalized
// into that form.
func normalizeInvoiceNo(value string, labels map[string]struct{}) string {
	// Cut at the earliest embedded label, if any.
	lower := strings.ToLower(value)
	cut := -1
	for label := range labels {
		if idx := strings.Index(lower, label); idx != -1 && (cut == -1 || idx < cut) {
			cut = idx
		}
	}
	if cut != -1 {
		value = value[:cut]
	}
	value = strings.TrimSpace(value)

	if m := reInvoicePP.FindString(value); m != "" {
		return strings.ToUpper(m)
	}
	if m := reInvoiceDigits.FindString(value); m != "" {
		return "PP" + m
	}
	return value
}
