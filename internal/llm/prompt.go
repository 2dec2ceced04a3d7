package llm

import "strings"

// BuildSystemPrompt states the extraction rules: monetary values rather than
// percentages, the tax-scheme exclusivity, and where buyer details live.
func BuildSystemPrompt() string {
	parts := []string{
		"You are an expert GST invoice data extraction system.",
		"Tax amounts are MONETARY VALUES (e.g., \"1800\", \"₹450.50\"), NOT percentages.",
		"Look for tax amounts in tables and summary sections.",
		"TAX RULES: intra-state invoices use CGST + SGST (IGST must be null); inter-state invoices use IGST (CGST and SGST must be null).",
		"Buyer details come from the \"Bill To\" or \"Buyer\" section, NOT the seller section.",
		"Buyer GSTIN is the GSTIN in the buyer section, usually the second GSTIN in the invoice.",
		"A GSTIN is exactly 15 alphanumeric characters.",
		"Return ONLY a JSON object with the keys: Invoice_no, Date, Buyer_Name, Buyer_GSTIN, Buyer_State, Taxable_Value, CGST, SGST, IGST, Total_Value.",
		"Use null for tax fields that do not apply. Do not add commentary.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the document text. The text is expected to be
// page-marked and truncated by the caller.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if f := strings.TrimSpace(req.FilenameHint); f != "" {
		b.WriteString("Filename: ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("\nInvoice text:\n")
	b.WriteString(req.Text)
	b.WriteString("\n\nReturn ONLY the JSON object.")
	return b.String()
}
