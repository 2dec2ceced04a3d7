package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/paperpoint/invoice-extractor/internal/entity"
	"github.com/paperpoint/invoice-extractor/internal/llm"
)

const sampleText = `--- PAGE 1 ---
Tax Invoice
Invoice No: 240042
Invoice Date: 12/01/2024
Seller GSTIN: 27AAPFU0939F1ZV
Bill To: Trent Limited
GSTIN: 29AABCT1332L1ZU`

func TestRepair_FillsMissingIdentityFields(t *testing.T) {
	g := NewGenerativeStage(nil, nil, 0, nil)
	rec := entity.NewRecord("/in/a.pdf")

	var fields llm.InvoiceFields
	g.repair(&fields, sampleText, rec)

	if fields.BuyerGSTIN != "29AABCT1332L1ZU" {
		t.Errorf("Buyer_GSTIN = %q, want the second GSTIN in the text", fields.BuyerGSTIN)
	}
	if fields.InvoiceNo == "" {
		t.Error("Invoice_no not recovered")
	}
	if fields.Date != "12/01/2024" {
		t.Errorf("Date = %q", fields.Date)
	}
}

func TestRepair_ReplacesMangledGSTIN(t *testing.T) {
	g := NewGenerativeStage(nil, nil, 0, nil)
	rec := entity.NewRecord("/in/a.pdf")

	fields := llm.InvoiceFields{BuyerGSTIN: "29AABCT1332L1Z"} // 14 chars
	g.repair(&fields, sampleText, rec)

	if fields.BuyerGSTIN != "29AABCT1332L1ZU" {
		t.Errorf("Buyer_GSTIN = %q", fields.BuyerGSTIN)
	}
	if len(rec.Warnings) == 0 {
		t.Error("replacement must leave a warning")
	}
}

func TestRepair_KeepsValidGSTIN(t *testing.T) {
	g := NewGenerativeStage(nil, nil, 0, nil)
	rec := entity.NewRecord("/in/a.pdf")

	fields := llm.InvoiceFields{BuyerGSTIN: "33AAACQ1093B1Z7"}
	g.repair(&fields, sampleText, rec)

	if fields.BuyerGSTIN != "33AAACQ1093B1Z7" {
		t.Errorf("valid GSTIN must not be overwritten, got %q", fields.BuyerGSTIN)
	}
	if len(rec.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", rec.Warnings)
	}
}

func TestPageMark(t *testing.T) {
	out := pageMark("first page body\ftotal ₹ 1,180.00")
	if !strings.Contains(out, "--- PAGE 1 ---") || !strings.Contains(out, "--- PAGE 2 ---") {
		t.Errorf("missing page markers:\n%s", out)
	}
	if strings.Contains(out, "\f") {
		t.Error("form feed survived")
	}

	single := pageMark("only page")
	if !strings.HasPrefix(single, "--- PAGE 1 ---\n") {
		t.Errorf("single page output: %q", single)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Errorf("zero max must disable truncation, got %q", got)
	}
	// ₹ is three bytes; a cut landing inside it must back up to the boundary.
	if got := truncate("₹₹", 4); got != "₹" {
		t.Errorf("truncate = %q, want a whole rune", got)
	}
	if got := truncate("Total ₹ 1,180", 8); !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
}
