package llm

// FieldKeys is the exact key set the model is asked for, in output order.
var FieldKeys = []string{
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

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. Every field is string-or-null: null is how the model marks an
// inapplicable tax scheme, so it must validate.
func BuildInvoiceJSONSchema() map[string]any {
	props := make(map[string]any, len(FieldKeys))
	for _, k := range FieldKeys {
		props[k] = map[string]any{"type": []string{"string", "null"}}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}
