package pdfio

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("abcdef", 4); got != "abcd" {
		t.Errorf("truncateRunes = %q", got)
	}
	if got := truncateRunes("abc", 0); got != "abc" {
		t.Errorf("zero cap must disable truncation, got %q", got)
	}
	if got := truncateRunes("₹ 450.00", 2); got != "" {
		t.Errorf("cut inside the leading rune must back up to empty, got %q", got)
	}
	long := strings.Repeat("₹", 100)
	got := truncateRunes(long, 250)
	if !utf8.ValidString(got) {
		t.Errorf("truncateRunes produced invalid UTF-8")
	}
	if len(got) > 250 {
		t.Errorf("len = %d, want <= 250", len(got))
	}
}
