package tax

import "testing"

func str(s string) *string { return &s }

func TestReconcile_IGSTNulledWhenDualSchemeLarger(t *testing.T) {
	c := &Cluster{CGST: str("100"), SGST: str("100"), IGST: str("150")}
	Reconcile(c)

	if c.IGST != nil {
		t.Errorf("IGST should be nulled (200 > 150), got %q", *c.IGST)
	}
	if c.CGST == nil || c.SGST == nil {
		t.Error("CGST/SGST must survive")
	}
}

func TestReconcile_DualSchemeNulledWhenIGSTLargerOrEqual(t *testing.T) {
	c := &Cluster{CGST: str("50"), SGST: str("50"), IGST: str("150")}
	Reconcile(c)

	if c.CGST != nil || c.SGST != nil {
		t.Error("CGST and SGST should be nulled (100 < 150)")
	}
	if c.IGST == nil || *c.IGST != "150" {
		t.Error("IGST must survive unchanged")
	}

	// Ties go to IGST: the rule keeps the dual scheme only on strictly greater.
	c = &Cluster{CGST: str("75"), SGST: str("75"), IGST: str("150")}
	Reconcile(c)
	if c.CGST != nil || c.SGST != nil || c.IGST == nil {
		t.Error("on a tie IGST must survive")
	}
}

func TestReconcile_SingleSchemeUntouched(t *testing.T) {
	c := &Cluster{CGST: str("90"), SGST: str("90")}
	Reconcile(c)
	if c.CGST == nil || c.SGST == nil {
		t.Error("lone dual scheme must be kept")
	}

	c = &Cluster{IGST: str("180")}
	Reconcile(c)
	if c.IGST == nil {
		t.Error("lone IGST must be kept")
	}
}

func TestReconcile_TextualNulls(t *testing.T) {
	c := &Cluster{CGST: str("null"), SGST: str(" N/A "), IGST: str("150"), TotalValue: str("none")}
	Reconcile(c)

	if c.CGST != nil || c.SGST != nil || c.TotalValue != nil {
		t.Error("textual null spellings must become absent")
	}
	if c.IGST == nil {
		t.Error("IGST must survive: the dual side was only textually present")
	}
}

func TestReconcile_CurrencyDecoratedComparison(t *testing.T) {
	// Decorated strings are compared numerically but preserved verbatim.
	c := &Cluster{CGST: str("₹ 1,100.00"), SGST: str("₹ 1,100.00"), IGST: str("$2,000")}
	Reconcile(c)

	if c.IGST != nil {
		t.Errorf("IGST should be nulled (2200 > 2000), got %q", *c.IGST)
	}
	if c.CGST == nil || *c.CGST != "₹ 1,100.00" {
		t.Error("original decorated string must be preserved")
	}
}

func TestReconcile_UnparseableCountsAsAbsent(t *testing.T) {
	c := &Cluster{CGST: str("abc"), IGST: str("150")}
	Reconcile(c)
	if c.IGST == nil {
		t.Error("unparseable CGST must not trigger the exclusivity rule")
	}
	if c.CGST == nil || *c.CGST != "abc" {
		t.Error("unparseable original is preserved on the record")
	}
}

func TestReconcile_ArithmeticWarning(t *testing.T) {
	c := &Cluster{TaxableValue: str("1000"), CGST: str("90"), SGST: str("90"), TotalValue: str("1300")}
	warnings := Reconcile(c)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}

	// Within tolerance: no warning.
	c = &Cluster{TaxableValue: str("1000"), CGST: str("90"), SGST: str("90"), TotalValue: str("1180.50")}
	if warnings := Reconcile(c); len(warnings) != 0 {
		t.Errorf("mismatch within 1 unit must not warn, got %v", warnings)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	c := &Cluster{TaxableValue: str("1000"), CGST: str("100"), SGST: str("100"), IGST: str("150"), TotalValue: str("1200")}
	first := Reconcile(c)
	after := *c
	second := Reconcile(c)

	if *c != after {
		t.Error("second reconcile changed the cluster")
	}
	if len(first) != len(second) {
		t.Errorf("warnings not stable: %v vs %v", first, second)
	}
}
