package pdfio

import (
	"sort"
	"strings"
)

// Page is one page of a document rendered as positioned word tokens. It is
// the only view of a document the geometric resolver ever sees; producing it
// is the reader's job.
type Page struct {
	Width  float64
	Height float64
	tokens []Token
}

// NewPage builds a page from pre-assembled word tokens.
func NewPage(width, height float64, tokens []Token) *Page {
	return &Page{Width: width, Height: height, tokens: tokens}
}

// Words returns the page's tokens in reading order.
func (p *Page) Words() []Token {
	return p.tokens
}

// Crop returns the whitespace-normalized text of all tokens whose center
// falls inside the box, in reading order (top to bottom, left to right).
func (p *Page) Crop(box Box) string {
	var hits []Token
	for _, t := range p.tokens {
		if box.Contains(t) {
			hits = append(hits, t)
		}
	}
	sortReadingOrder(hits)
	parts := make([]string, 0, len(hits))
	for _, t := range hits {
		parts = append(parts, t.Text)
	}
	return Clean(strings.Join(parts, " "))
}

// Text returns the page's full text, one line per token row.
func (p *Page) Text() string {
	tokens := make([]Token, len(p.tokens))
	copy(tokens, p.tokens)
	sortReadingOrder(tokens)

	var b strings.Builder
	lineTop := -1.0
	for i, t := range tokens {
		switch {
		case i == 0:
			// first token starts the first line
		case sameLine(lineTop, t.Top):
			b.WriteByte(' ')
		default:
			b.WriteByte('\n')
		}
		b.WriteString(t.Text)
		lineTop = t.Top
	}
	return b.String()
}

// Clean collapses any run of whitespace into single spaces and trims.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

const lineTolerance = 2.0

func sameLine(topA, topB float64) bool {
	d := topA - topB
	if d < 0 {
		d = -d
	}
	return d <= lineTolerance
}

func sortReadingOrder(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if !sameLine(tokens[i].Top, tokens[j].Top) {
			return tokens[i].Top < tokens[j].Top
		}
		return tokens[i].X0 < tokens[j].X0
	})
}
