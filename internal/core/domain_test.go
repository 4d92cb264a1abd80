package core

import (
	"testing"
	"time"
)

func TestNewUnitCoercesBadCoefficient(t *testing.T) {
	u, warns := NewUnit("atico", "Es:1 Pl:08 Pt:01", "Residencial", "40 m2", "not-a-number")
	if !u.Coefficient.IsZero() {
		t.Fatalf("expected zero coefficient, got %s", u.Coefficient)
	}
	if len(warns) != 1 {
		t.Fatalf("expected one warning, got %v", warns)
	}
}

func TestNewUnitBounds(t *testing.T) {
	for _, in := range []string{"0%", "100%", "50,5%"} {
		u, warns := NewUnit("x", "", "", "", in)
		if len(warns) != 0 {
			t.Fatalf("%q: unexpected warnings %v", in, warns)
		}
		if u.Coefficient.IsNegative() || u.Coefficient.GreaterThan(one) {
			t.Fatalf("%q: coefficient %s outside [0,1]", in, u.Coefficient)
		}
	}
}

func TestNewExpense(t *testing.T) {
	e, warns := NewExpense("limpieza escalera", "120,50", "limpieza", time.Time{})
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings %v", warns)
	}
	if e.ID == "" {
		t.Fatalf("expected an id")
	}
	if e.Date.IsZero() {
		t.Fatalf("expected date to default to now")
	}
	if got := e.Amount.StringFixed(2); got != "120.50" {
		t.Fatalf("amount: got %s", got)
	}
}

func TestNewExpenseCoercesBadAmount(t *testing.T) {
	e, warns := NewExpense("ascensor", "abc", "general", time.Now())
	if !e.Amount.IsZero() {
		t.Fatalf("expected zero amount, got %s", e.Amount)
	}
	if len(warns) == 0 {
		t.Fatalf("expected a warning")
	}
}

func TestNewPaymentIDsAreUnique(t *testing.T) {
	u, _ := NewUnit("quinto", "Es:1 Pl:05 Pt:01", "Residencial", "132 m2", "8,784%")
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		p, _ := NewPayment(&u, "10", time.Now())
		if seen[p.ID] {
			t.Fatalf("duplicate payment id %s", p.ID)
		}
		seen[p.ID] = true
	}
}
