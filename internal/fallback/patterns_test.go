package fallback

import "testing"

const (
	sellerGSTIN = "27AAPFU0939F1ZV"
	buyerGSTIN  = "29AABCT1332L1ZU"
)

func TestTaxID_KeywordAnchored(t *testing.T) {
	text := "Seller details\nGSTIN: " + sellerGSTIN + "\nsome other text " + buyerGSTIN
	got, ok := TaxID(text)
	if !ok || got != sellerGSTIN {
		t.Errorf("TaxID = %q, %v; want %q", got, ok, sellerGSTIN)
	}
}

func TestTaxID_BareGrammar(t *testing.T) {
	got, ok := TaxID("random header " + sellerGSTIN + " trailing")
	if !ok || got != sellerGSTIN {
		t.Errorf("TaxID = %q, %v; want %q", got, ok, sellerGSTIN)
	}
}

func TestTaxID_LenientFallback(t *testing.T) {
	// Not valid against the strict grammar (no Z at position 14) but still a
	// 15-char run starting with two digits.
	loose := "27AAPFU0939F1XV"
	got, ok := TaxID("id " + loose + " end")
	if !ok || got != loose {
		t.Errorf("TaxID = %q, %v; want %q", got, ok, loose)
	}
}

func TestTaxID_CaseNormalized(t *testing.T) {
	got, ok := TaxID("gstin: 27aapfu0939f1zv")
	if !ok || got != sellerGSTIN {
		t.Errorf("TaxID = %q, %v; want %q", got, ok, sellerGSTIN)
	}
}

func TestTaxID_NotFound(t *testing.T) {
	if got, ok := TaxID("no identifiers here"); ok {
		t.Errorf("expected not-found, got %q", got)
	}
}

func TestCounterpartyTaxID_SectionAnchored(t *testing.T) {
	text := "GSTIN: " + sellerGSTIN + "\n\nBill To:\nAcme Traders\nGSTIN " + buyerGSTIN
	got, ok := CounterpartyTaxID(text)
	if !ok || got != buyerGSTIN {
		t.Errorf("CounterpartyTaxID = %q, %v; want %q", got, ok, buyerGSTIN)
	}
}

func TestCounterpartyTaxID_SecondMatchHeuristic(t *testing.T) {
	// No section keyword anywhere: the second grammar match is taken as the
	// counterparty's.
	text := "ids: " + sellerGSTIN + " then later " + buyerGSTIN
	got, ok := CounterpartyTaxID(text)
	if !ok || got != buyerGSTIN {
		t.Errorf("CounterpartyTaxID = %q, %v; want %q", got, ok, buyerGSTIN)
	}
}

func TestCounterpartyTaxID_SingleMatch(t *testing.T) {
	got, ok := CounterpartyTaxID("only one: " + sellerGSTIN)
	if !ok || got != sellerGSTIN {
		t.Errorf("CounterpartyTaxID = %q, %v; want %q", got, ok, sellerGSTIN)
	}
}

func TestInvoiceNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Invoice No: INV-2024/001 dated", "INV-2024/001"},
		{"Invoice Number INV42", "INV42"},
		{"Bill No: 778899", "778899"},
		{"Tax Invoice: TI-55", "TI-55"},
	}
	for _, tt := range tests {
		got, ok := InvoiceNumber(tt.text)
		if !ok || got != tt.want {
			t.Errorf("InvoiceNumber(%q) = %q, %v; want %q", tt.text, got, ok, tt.want)
		}
	}
	if got, ok := InvoiceNumber("nothing relevant"); ok {
		t.Errorf("expected not-found, got %q", got)
	}
}

func TestDate(t *testing.T) {
	if got, ok := Date("Invoice Date: 12/01/2024"); !ok || got != "12/01/2024" {
		t.Errorf("Date = %q, %v", got, ok)
	}
	if got, ok := Date("Date 3-4-24 follows"); !ok || got != "3-4-24" {
		t.Errorf("Date = %q, %v", got, ok)
	}
	// bare date-shaped token, no keyword anchor
	if got, ok := Date("delivered on 15/08/2023 to"); !ok || got != "15/08/2023" {
		t.Errorf("Date = %q, %v", got, ok)
	}
	if got, ok := Date("no dates"); ok {
		t.Errorf("expected not-found, got %q", got)
	}
}
