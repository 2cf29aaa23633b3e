package validation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	Required("email", "a@b.co", v)
	if v["name"] != "required" {
		t.Errorf("name: got %q", v["name"])
	}
	if _, ok := v["email"]; ok {
		t.Errorf("email should pass")
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"a@b.co", "billing@acme.com", "x.y+z@sub.domain.org"}
	invalid := []string{"", "plain", "no@tld", "two@@at.com", "spaces in@mail.com"}
	for _, e := range valid {
		v := make(Violations)
		Email("email", e, v)
		if !v.Empty() {
			t.Errorf("%q flagged as %v", e, v)
		}
	}
	for _, e := range invalid {
		v := make(Violations)
		Email("email", e, v)
		if v.Empty() {
			t.Errorf("%q accepted", e)
		}
	}
}

func TestDecimalValidators(t *testing.T) {
	v := make(Violations)
	PositiveDecimal("quantity", decimal.Zero, v)
	if v["quantity"] != "must_be_positive" {
		t.Errorf("zero quantity: got %q", v["quantity"])
	}

	v = make(Violations)
	NonNegativeDecimal("unit_rate", decimal.Zero, v)
	if !v.Empty() {
		t.Errorf("zero rate should pass, got %v", v)
	}
	NonNegativeDecimal("unit_rate", decimal.NewFromInt(-1), v)
	if v["unit_rate"] != "must_not_be_negative" {
		t.Errorf("negative rate: got %q", v["unit_rate"])
	}

	v = make(Violations)
	RangeDecimal("tax_rate", decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100), v)
	if !v.Empty() {
		t.Errorf("tax rate 100 should pass, got %v", v)
	}
	RangeDecimal("tax_rate", decimal.NewFromFloat(100.01), decimal.Zero, decimal.NewFromInt(100), v)
	if v["tax_rate"] != "out_of_range" {
		t.Errorf("tax rate 100.01: got %q", v["tax_rate"])
	}
}

func TestDateNotBefore(t *testing.T) {
	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := jan1.AddDate(0, 0, 1)

	v := make(Violations)
	DateNotBefore("due_date", jan1, jan2, v)
	if v.Empty() {
		t.Error("due before invoice date should be flagged")
	}

	v = make(Violations)
	DateNotBefore("due_date", jan1, jan1, v)
	if !v.Empty() {
		t.Errorf("same-day due date should pass, got %v", v)
	}
}
