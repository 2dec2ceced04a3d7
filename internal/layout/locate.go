package layout

import (
	"strings"

	"github.com/paperpoint/invoice-extractor/internal/pdfio"
)

// LocateLabel finds the first contiguous run of tokens whose texts equal the
// whitespace-split words of labelText, case-sensitive and token-for-token.
// Only the first occurrence binds: a label repeated later on the page (say in
// a table header and again in a summary) is assumed to mean the same field.
// That is a documented heuristic about the documents we see, not a guarantee.
// Returns nil when the label is not on the page.
func LocateLabel(tokens []pdfio.Token, labelText string) []pdfio.Token {
	words := strings.Fields(labelText)
	if len(words) == 0 {
		return nil
	}
	for i := 0; i+len(words) <= len(tokens); i++ {
		match := true
		for j, w := range words {
			if tokens[i+j].Text != w {
				match = false
				break
			}
		}
		if match {
			return tokens[i : i+len(words)]
		}
	}
	return nil
}
