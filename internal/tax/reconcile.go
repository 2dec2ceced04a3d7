// Package tax validates and repairs the cluster of mutually-constrained tax
// fields on an extracted record. A transaction carries either the dual
// intra-jurisdiction scheme (CGST+SGST) or the single inter-jurisdiction one
// (IGST), never both; noisy sources (OCR, generative output) regularly
// violate that.
package tax

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cluster is the subset of a record subject to reconciliation. A nil field is
// absent/inapplicable; a non-nil value is a numeric string possibly carrying
// a currency marker.
type Cluster struct {
	TaxableValue *string
	CGST         *string
	SGST         *string
	IGST         *string
	TotalValue   *string
}

// Tolerance within which taxable + tax may differ from the stated total, in
// currency units.
const arithmeticTolerance = 1.0

// Reconcile enforces the tax-scheme exclusivity invariant in place and
// returns warnings for non-fatal inconsistencies. Every step is idempotent:
// reconciling an already-reconciled cluster changes nothing.
func Reconcile(c *Cluster) []string {
	normalizeNulls(c)

	cgst, hasCGST := amount(c.CGST)
	sgst, hasSGST := amount(c.SGST)
	igst, hasIGST := amount(c.IGST)

	if (hasCGST || hasSGST) && hasIGST {
		// Both schemes present: trust the larger, more specific side. The
		// dual scheme survives only on a strictly greater sum.
		if cgst+sgst > igst {
			c.IGST = nil
		} else {
			c.CGST = nil
			c.SGST = nil
		}
	}

	return checkArithmetic(c)
}

// checkArithmetic compares taxable + surviving tax against the stated total.
// A mismatch beyond the tolerance is reported, never rejected.
func checkArithmetic(c *Cluster) []string {
	taxable, okTaxable := amount(c.TaxableValue)
	total, okTotal := amount(c.TotalValue)
	if !okTaxable || !okTotal {
		return nil
	}

	var taxSum float64
	if v, ok := amount(c.CGST); ok {
		taxSum += v
	}
	if v, ok := amount(c.SGST); ok {
		taxSum += v
	}
	if v, ok := amount(c.IGST); ok {
		taxSum += v
	}

	if diff := math.Abs(taxable + taxSum - total); diff > arithmeticTolerance {
		return []string{fmt.Sprintf(
			"tax arithmetic mismatch: taxable %.2f + tax %.2f differs from total %.2f by %.2f",
			taxable, taxSum, total, diff)}
	}
	return nil
}

// normalizeNulls maps textual null spellings to real absence.
func normalizeNulls(c *Cluster) {
	for _, f := range []**string{&c.TaxableValue, &c.CGST, &c.SGST, &c.IGST, &c.TotalValue} {
		if *f == nil {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(**f)) {
		case "", "null", "none", "n/a":
			*f = nil
		}
	}
}

// amount derives the numeric projection of a field: currency markers,
// thousands separators, and whitespace removed, then parsed. Values that fail
// to parse or parse to <= 0 count as not present; the original string is left
// untouched on the cluster.
func amount(s *string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '₹', '$', ',', ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, *s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
