package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
)

// stubRunner fakes the external binaries. pdftoppm "renders" pages by
// writing empty png files under the requested prefix so the glob in
// pdfToOCR finds them.
type stubRunner struct {
	textOut   string
	textErr   error
	ocrPages  []string
	tsvOut    string
	callsLog  []string
	renderErr error
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.callsLog = append(s.callsLog, name)
	switch {
	case strings.Contains(name, "pdftotext"):
		return []byte(s.textOut), nil, s.textErr
	case strings.Contains(name, "pdftoppm"):
		if s.renderErr != nil {
			return nil, []byte("render failed"), s.renderErr
		}
		prefix := args[len(args)-1]
		for i := range s.ocrPages {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i+1), nil, 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case strings.Contains(name, "tesseract"):
		if args[len(args)-1] == "tsv" {
			return []byte(s.tsvOut), nil, nil
		}
		// args[0] is the page image, e.g. .../page-2.png
		img := args[0]
		for i := range s.ocrPages {
			if strings.HasSuffix(img, fmt.Sprintf("-%d.png", i+1)) {
				return []byte(s.ocrPages[i]), nil, nil
			}
		}
		return nil, nil, fmt.Errorf("unexpected image %q", img)
	}
	return nil, nil, fmt.Errorf("unexpected command %q", name)
}

func TestExtract_TextLayer(t *testing.T) {
	stub := &stubRunner{textOut: "Tax Invoice\nInvoice No: PP123456\nTotal: 1,180.00\n\fPage two body text"}
	e := NewExtractor(Config{}, nil)
	e.runner = stub

	res, err := e.Extract(context.Background(), "/in/invoice.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != "pdf-text" {
		t.Errorf("Method = %q", res.Method)
	}
	if res.DocType != "TEXT" {
		t.Errorf("DocType = %q", res.DocType)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d", res.Pages)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v", res.Confidence)
	}
	for _, c := range stub.callsLog {
		if strings.Contains(c, "tesseract") || strings.Contains(c, "pdftoppm") {
			t.Errorf("text-layer extraction must not rasterize, ran %q", c)
		}
	}
}

func TestExtract_FallsBackToOCR(t *testing.T) {
	stub := &stubRunner{
		textOut:  "  \n ", // image-only PDF: empty text layer
		ocrPages: []string{"Tax Invoice\nGSTIN: 27AAPFU0939F1ZV", "Total ₹ 1,180.00"},
	}
	e := NewExtractor(Config{}, nil)
	e.runner = stub

	res, err := e.Extract(context.Background(), "/in/scan.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != "pdf-ocr" {
		t.Errorf("Method = %q", res.Method)
	}
	if res.DocType != "SCANNED" {
		t.Errorf("DocType = %q", res.DocType)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d", res.Pages)
	}
	if !strings.Contains(res.Text, "27AAPFU0939F1ZV") || !strings.Contains(res.Text, "1,180.00") {
		t.Errorf("missing page text:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "\f") {
		t.Error("page break marker missing between pages")
	}
	if res.Confidence <= 0 {
		t.Errorf("Confidence = %v", res.Confidence)
	}
}

func TestExtract_RejectsNonPDF(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = &stubRunner{}
	if _, err := e.Extract(context.Background(), "/in/photo.jpg"); err == nil {
		t.Fatal("expected error for non-pdf input")
	}
}

func TestExtract_MaxPages(t *testing.T) {
	stub := &stubRunner{
		textOut:  "",
		ocrPages: []string{"one", "two", "three"},
	}
	e := NewExtractor(Config{MaxPages: 2}, nil)
	e.runner = stub

	res, err := e.Extract(context.Background(), "/in/scan.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want cap at 2", res.Pages)
	}
	if strings.Contains(res.Text, "three") {
		t.Error("page past the cap was OCRed")
	}
}

func TestTesseractTSVConfidence(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"5\t1\t1\t1\t1\t1\t10\t10\t50\t12\t90\tInvoice\n" +
		"5\t1\t1\t1\t1\t2\t70\t10\t50\t12\t-1\t\n" +
		"5\t1\t1\t1\t1\t3\t130\t10\t50\t12\t70\tPP123456\n"
	stub := &stubRunner{tsvOut: tsv}
	e := NewExtractor(Config{EnableTSVConfidence: true}, nil)
	e.runner = stub

	conf, _, err := e.tesseractTSVConfidence(context.Background(), "page-1.png")
	if err != nil {
		t.Fatalf("tesseractTSVConfidence: %v", err)
	}
	if conf < 0.79 || conf > 0.81 {
		t.Errorf("conf = %v, want mean of 90 and 70 -> 0.80", conf)
	}
}

func TestNormalize(t *testing.T) {
	in := "Tax Invoice\r\n\r\n\r\n\r\nNo:\tPP123456   \n-----\nTotal  1,180.00  "
	out := Normalize(in)
	if strings.Contains(out, "\r") || strings.Contains(out, "\t") {
		t.Errorf("raw whitespace survived: %q", out)
	}
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("blank lines not collapsed: %q", out)
	}
	if strings.Contains(out, "  ") {
		t.Errorf("double spaces survived: %q", out)
	}
}

func TestHeuristicConfidence(t *testing.T) {
	rich := "Invoice Date: 12/01/2024 GSTIN 27AAPFU0939F1ZV Total ₹ 1,180.00 " + strings.Repeat("x", 120)
	poor := "a b c"
	if heuristicConfidence(rich) <= heuristicConfidence(poor) {
		t.Error("invoice artifacts must raise confidence")
	}
	if heuristicConfidence(rich) > 1.0 {
		t.Error("confidence must cap at 1.0")
	}
}

func TestClip(t *testing.T) {
	if got := clip("short", 10); got != "short" {
		t.Errorf("clip = %q", got)
	}
	long := strings.Repeat("e", 20)
	got := clip(long, 8)
	if got != long[:8]+"..." {
		t.Errorf("clip = %q", got)
	}
}
