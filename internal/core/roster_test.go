package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultRoster(t *testing.T) {
	roster, warns := DefaultRoster()
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	if roster.Len() != 17 {
		t.Fatalf("expected 17 units, got %d", roster.Len())
	}

	// Participation coefficients should add up to ~100%.
	sum := roster.CoefficientSum()
	lo, _ := decimal.NewFromString("0.99")
	hi, _ := decimal.NewFromString("1.01")
	if sum.LessThan(lo) || sum.GreaterThan(hi) {
		t.Fatalf("coefficient sum %s not close to 1", sum)
	}

	for _, u := range roster.Units() {
		if u.Coefficient.IsNegative() || u.Coefficient.GreaterThan(one) {
			t.Fatalf("unit %s: coefficient %s outside [0,1]", u.Name, u.Coefficient)
		}
	}
}

func TestRosterLookup(t *testing.T) {
	roster, _ := DefaultRoster()
	u, ok := roster.Lookup("quinto")
	if !ok {
		t.Fatalf("expected to find quinto")
	}
	if u.Area != "132 m2" {
		t.Fatalf("unexpected area %q", u.Area)
	}
	if _, ok := roster.Lookup("Ghost"); ok {
		t.Fatalf("did not expect to find Ghost")
	}
}

func TestRosterDuplicateNames(t *testing.T) {
	a, _ := NewUnit("dup", "", "", "", "50%")
	b, _ := NewUnit("dup", "", "", "", "25%")
	r, warns := NewRoster([]Unit{a, b})
	if r.Len() != 1 {
		t.Fatalf("expected duplicates collapsed, got %d units", r.Len())
	}
	if len(warns) != 1 {
		t.Fatalf("expected one warning, got %v", warns)
	}
	// The first entry wins; the later duplicate must not overwrite it.
	u, ok := r.Lookup("dup")
	if !ok {
		t.Fatalf("expected to find dup")
	}
	if !u.Coefficient.Equal(a.Coefficient) {
		t.Fatalf("lookup returned the duplicate: coefficient %s", u.Coefficient)
	}
}
