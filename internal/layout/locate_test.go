package layout

import (
	"testing"

	"github.com/paperpoint/invoice-extractor/internal/pdfio"
)

// tok builds a token on a given line band (top..top+10).
func tok(text string, x0, x1, top float64) pdfio.Token {
	return pdfio.Token{Text: text, X0: x0, X1: x1, Top: top, Bottom: top + 10}
}

func TestLocateLabel_MultiWord(t *testing.T) {
	tokens := []pdfio.Token{
		tok("Tax", 10, 30, 50),
		tok("Invoice", 35, 80, 50),
		tok("Invoice", 10, 55, 100),
		tok("No", 60, 75, 100),
		tok("PP123456", 90, 150, 100),
	}

	run := LocateLabel(tokens, "Invoice No")
	if len(run) != 2 {
		t.Fatalf("expected 2 label tokens, got %d", len(run))
	}
	if run[0].Text != "Invoice" || run[1].Text != "No" {
		t.Errorf("wrong run: %q %q", run[0].Text, run[1].Text)
	}
	if run[0].Top != 100 {
		t.Errorf("bound to the wrong Invoice token, top=%f", run[0].Top)
	}
}

func TestLocateLabel_FirstOccurrenceOnly(t *testing.T) {
	tokens := []pdfio.Token{
		tok("Total", 300, 330, 100),
		tok("Total", 300, 330, 400),
	}
	run := LocateLabel(tokens, "Total")
	if len(run) != 1 {
		t.Fatalf("expected 1 token, got %d", len(run))
	}
	if run[0].Top != 100 {
		t.Errorf("expected first occurrence (top=100), got top=%f", run[0].Top)
	}
}

func TestLocateLabel_MatchAtEnd(t *testing.T) {
	tokens := []pdfio.Token{
		tok("Subtotal", 10, 60, 50),
		tok("Invoice", 10, 55, 100),
		tok("Date", 60, 90, 100),
	}
	if run := LocateLabel(tokens, "Invoice Date"); len(run) != 2 {
		t.Fatalf("label run ending at the last token must match, got %d tokens", len(run))
	}
}

func TestLocateLabel_NotFound(t *testing.T) {
	tokens := []pdfio.Token{
		tok("Invoice", 10, 55, 100),
		tok("Number", 60, 100, 100), // "Number" != "No": exact match only
	}
	if run := LocateLabel(tokens, "Invoice No"); run != nil {
		t.Errorf("expected no match, got %v", run)
	}
	if run := LocateLabel(tokens, ""); run != nil {
		t.Errorf("empty label must not match, got %v", run)
	}
}

func TestLocateLabel_CaseSensitive(t *testing.T) {
	tokens := []pdfio.Token{tok("total", 10, 40, 50)}
	if run := LocateLabel(tokens, "Total"); run != nil {
		t.Errorf("matching is case-sensitive, got %v", run)
	}
}
