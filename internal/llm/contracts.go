package llm

import "context"

// InvoiceFields is the normalized shape we want from the model. Tax fields
// are pointers because a JSON null is meaningful there: the model is told to
// null out whichever tax scheme does not apply.
type InvoiceFields struct {
	InvoiceNo    string  `json:"Invoice_no,omitempty"`
	Date         string  `json:"Date,omitempty"`
	BuyerName    string  `json:"Buyer_Name,omitempty"`
	BuyerGSTIN   string  `json:"Buyer_GSTIN,omitempty"`
	BuyerState   string  `json:"Buyer_State,omitempty"`
	TaxableValue *string `json:"Taxable_Value,omitempty"`
	CGST         *string `json:"CGST,omitempty"`
	SGST         *string `json:"SGST,omitempty"`
	IGST         *string `json:"IGST,omitempty"`
	TotalValue   *string `json:"Total_Value,omitempty"`
}

// ExtractRequest carries the pre-processed document text and hints.
type ExtractRequest struct {
	Text         string // page-marked bulk text, already truncated
	FilenameHint string
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (InvoiceFields, []byte /*rawJSON*/, error)
}
