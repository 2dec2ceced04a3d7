package pdfio

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/paperpoint/invoice-extractor/constants"
)

// Classify probes a PDF for extractable text and reports DocTypeText when any
// page yields non-empty text, DocTypeScanned otherwise.
func Classify(path string) (docType string, err error) {
	defer recoverParse(path, &err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			return constants.DocTypeText, nil
		}
	}
	return constants.DocTypeScanned, nil
}

// FirstPage renders the first page of a PDF as positioned word tokens.
// Field resolution operates on the first page only; later pages are out of
// scope for geometric extraction.
func FirstPage(path string) (page *Page, err error) {
	defer recoverParse(path, &err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return nil, fmt.Errorf("pdf has no pages: %s", path)
	}
	p := r.Page(1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("pdf first page unreadable: %s", path)
	}

	width, height := mediaBox(p)
	tokens := assembleWords(p.Content().Text, height)
	return NewPage(width, height, tokens), nil
}

// BulkText extracts plain text from every page, separated by page markers,
// truncated at maxChars (0 = unlimited). This is the generative pipeline's
// pre-processing for text PDFs.
func BulkText(path string, maxChars int) (text string, err error) {
	defer recoverParse(path, &err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n--- PAGE %d ---\n", i)
		b.WriteString(pageText)
	}
	return truncateRunes(b.String(), maxChars), nil
}

// truncateRunes cuts at maxChars bytes without splitting a multibyte rune.
func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	for maxChars > 0 && !utf8.RuneStart(s[maxChars]) {
		maxChars--
	}
	return s[:maxChars]
}

// recoverParse converts parser panics from the pdf library into errors so a
// malformed document never takes down a batch.
func recoverParse(path string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed pdf %s: %v", path, r)
	}
}

const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// mediaBox resolves page dimensions, walking up the page tree for inherited
// MediaBox entries.
func mediaBox(p pdf.Page) (width, height float64) {
	v := p.V
	for !v.IsNull() {
		if mb := v.Key("MediaBox"); !mb.IsNull() && mb.Len() == 4 {
			w := mb.Index(2).Float64() - mb.Index(0).Float64()
			h := mb.Index(3).Float64() - mb.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}

// assembleWords groups the library's glyph-level text runs into word tokens.
// Runs sharing a baseline are merged while the horizontal gap between them is
// small relative to the font size; whitespace runs always end a word. The
// library reports baselines from the bottom of the page, so positions are
// flipped into top-referenced coordinates here.
func assembleWords(runs []pdf.Text, pageHeight float64) []Token {
	runsCopy := make([]pdf.Text, len(runs))
	copy(runsCopy, runs)

	sort.SliceStable(runsCopy, func(i, j int) bool {
		if !sameBaseline(runsCopy[i].Y, runsCopy[j].Y) {
			return runsCopy[i].Y > runsCopy[j].Y // higher on page first
		}
		return runsCopy[i].X < runsCopy[j].X
	})

	var tokens []Token
	var cur []pdf.Text

	flush := func() {
		if len(cur) == 0 {
			return
		}
		text := wordText(cur)
		if text != "" {
			tokens = append(tokens, wordToken(cur, text, pageHeight))
		}
		cur = cur[:0]
	}

	for _, run := range runsCopy {
		if strings.TrimSpace(run.S) == "" {
			flush()
			continue
		}
		if len(cur) > 0 {
			last := cur[len(cur)-1]
			gap := run.X - (last.X + last.W)
			if !sameBaseline(run.Y, last.Y) || gap > wordGap(last.FontSize) {
				flush()
			}
		}
		cur = append(cur, run)
	}
	flush()
	return tokens
}

const baselineTolerance = 2.0

func sameBaseline(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= baselineTolerance
}

func wordGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 1.0
	}
	return fontSize * 0.3
}

func wordText(runs []pdf.Text) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.S)
	}
	return strings.TrimSpace(b.String())
}

func wordToken(runs []pdf.Text, text string, pageHeight float64) Token {
	first, last := runs[0], runs[len(runs)-1]
	fontSize := first.FontSize
	for _, r := range runs {
		if r.FontSize > fontSize {
			fontSize = r.FontSize
		}
	}
	if fontSize <= 0 {
		fontSize = 10
	}
	return Token{
		Text:   text,
		X0:     first.X,
		X1:     last.X + last.W,
		Top:    pageHeight - (first.Y + fontSize),
		Bottom: pageHeight - first.Y,
	}
}
