package constants

import "strings"

// FieldKind selects the normalization applied to a field's resolved value.
type FieldKind string

const (
	// Plain passes the resolved value through after whitespace normalization.
	Plain FieldKind = "PLAIN"
	// BillParty keeps only the first two words of the resolved value; names
	// captured geometrically tend to trail into address lines.
	BillParty FieldKind = "BILL_PARTY"
	// MoneyTotal prepends the currency marker when the value carries digits
	// but no marker. Idempotent.
	MoneyTotal FieldKind = "MONEY_TOTAL"
	// InvoiceNumber applies label truncation and the PP-prefix convention.
	InvoiceNumber FieldKind = "INVOICE_NUMBER"
)

// CurrencyMarker is the canonical marker prepended to bare money totals.
const CurrencyMarker = "₹"

// FieldSpec binds an output column key to the label printed on the page.
// Column marks fields whose value is printed beneath the label in a
// summary-table column; for those the column-below strategy is tried first.
type FieldSpec struct {
	Key    string
	Label  string
	Kind   FieldKind
	Column bool
}

// GeometryFields is the configured field set for the geometric pipeline.
// Order defines the CSV/XLSX column order. Labels must not be substrings of
// one another (case-insensitive) since the full label set doubles as the
// resolver's exclusion list.
var GeometryFields = []FieldSpec{
	{Key: "Invoice_No", Label: "Invoice No", Kind: InvoiceNumber},
	{Key: "Bill_From", Label: "Bill From", Kind: BillParty},
	{Key: "Bill_To", Label: "Bill To", Kind: BillParty},
	{Key: "Invoice_Date", Label: "Invoice Date", Kind: Plain},
	{Key: "CGST", Label: "CGST", Kind: Plain, Column: true},
	{Key: "SGST", Label: "SGST", Kind: Plain, Column: true},
	{Key: "Total", Label: "Total", Kind: MoneyTotal, Column: true},
}

// GenerativeFields is the column order for records produced by the LLM
// pipeline (plus fallback repair).
var GenerativeFields = []string{
	"Invoice_no",
	"Date",
	"Buyer_Name",
	"Buyer_GSTIN",
	"Buyer_State",
	"Taxable_Value",
	"CGST",
	"SGST",
	"IGST",
	"Total_Value",
}

// LabelSet returns the lowercased labels of the given specs. The resolver
// checks candidate values against this set so one field's label is never
// mistaken for another field's value.
func LabelSet(specs []FieldSpec) map[string]struct{} {
	set := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		set[strings.ToLower(s.Label)] = struct{}{}
	}
	return set
}

// Keys returns the spec keys in configuration order.
func Keys(specs []FieldSpec) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Key)
	}
	return out
}
