package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"comunidad/internal/core"
)

func twoUnitRoster(t *testing.T) *core.Roster {
	t.Helper()
	a, _ := core.NewUnit("A", "Es:1 Pl:01 Pt:01", "Residencial", "30 m2", "30%")
	b, _ := core.NewUnit("B", "Es:1 Pl:01 Pt:02", "Residencial", "70 m2", "70%")
	r, warns := core.NewRoster([]core.Unit{a, b})
	if len(warns) != 0 {
		t.Fatalf("roster warnings: %v", warns)
	}
	return r
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestApportionmentScenario(t *testing.T) {
	roster := twoUnitRoster(t)
	l := New(roster, PolicyFlat)

	e, _ := core.NewExpense("tejado", "100", "mantenimiento", time.Now())
	l.AddExpense(e)

	unitA, _ := roster.Lookup("A")
	unitB, _ := roster.Lookup("B")

	if got := l.TotalDue(unitA); !got.Equal(mustDecimal(t, "30")) {
		t.Fatalf("due A: got %s", got)
	}
	if got := l.TotalDue(unitB); !got.Equal(mustDecimal(t, "70")) {
		t.Fatalf("due B: got %s", got)
	}

	p, _ := core.NewPayment(unitA, "30", time.Now())
	l.AddPayment(p)

	if got := l.Status(unitA); got != StatusPaid {
		t.Fatalf("status A: got %s", got)
	}
	if got := l.Remaining(unitA); !got.IsZero() {
		t.Fatalf("remaining A: got %s", got)
	}
	if got := l.Status(unitB); got != StatusUnpaid {
		t.Fatalf("status B: got %s", got)
	}
	if got := l.Remaining(unitB); !got.Equal(mustDecimal(t, "70")) {
		t.Fatalf("remaining B: got %s", got)
	}
	if got := l.Balance(); !got.Equal(mustDecimal(t, "-70")) {
		t.Fatalf("balance: got %s", got)
	}
}

func TestDueSumMatchesApportionableTotal(t *testing.T) {
	roster, _ := core.DefaultRoster()
	l := New(roster, PolicyFlat)
	for _, in := range []string{"123.45", "9.99", "1000"} {
		e, _ := core.NewExpense("gasto", in, "mantenimiento", time.Now())
		l.AddExpense(e)
	}

	sum := decimal.Zero
	for _, u := range roster.Units() {
		sum = sum.Add(l.TotalDue(u))
	}
	want := l.ApportionableTotal().Mul(roster.CoefficientSum())
	if !sum.Equal(want) {
		t.Fatalf("due sum %s != apportionable total x coefficient sum %s", sum, want)
	}
}

func TestGeneralExcludedPolicy(t *testing.T) {
	roster := twoUnitRoster(t)
	l := New(roster, PolicyGeneralExcluded)

	shared, _ := core.NewExpense("luz escalera", "100", GeneralCategory, time.Now())
	split, _ := core.NewExpense("ascensor", "50", "mantenimiento", time.Now())
	l.AddExpense(shared)
	l.AddExpense(split)

	if got := l.ApportionableTotal(); !got.Equal(mustDecimal(t, "50")) {
		t.Fatalf("apportionable: got %s", got)
	}
	// Global totals still include the excluded category.
	if got := l.TotalExpenses(); !got.Equal(mustDecimal(t, "150")) {
		t.Fatalf("total expenses: got %s", got)
	}
	unitA, _ := roster.Lookup("A")
	if got := l.TotalDue(unitA); !got.Equal(mustDecimal(t, "15")) {
		t.Fatalf("due A: got %s", got)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	roster := twoUnitRoster(t)
	l := New(roster, PolicyFlat)
	e, _ := core.NewExpense("gasto", "10", "x", time.Now())
	l.AddExpense(e)

	unitA, _ := roster.Lookup("A")
	p, _ := core.NewPayment(unitA, "500", time.Now())
	l.AddPayment(p)

	if got := l.Remaining(unitA); !got.IsZero() {
		t.Fatalf("expected zero remaining on overpayment, got %s", got)
	}
	if got := l.Status(unitA); got != StatusPaid {
		t.Fatalf("expected paid, got %s", got)
	}
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	roster := twoUnitRoster(t)
	l := New(roster, PolicyFlat)
	e, _ := core.NewExpense("gasto", "10", "x", time.Now())
	l.AddExpense(e)

	if l.DeleteExpense("missing") {
		t.Fatalf("expected no-op delete")
	}
	if l.DeletePayment("missing") {
		t.Fatalf("expected no-op delete")
	}
	if len(l.Expenses()) != 1 {
		t.Fatalf("ledger changed by no-op delete")
	}

	if !l.DeleteExpense(e.ID) {
		t.Fatalf("expected delete of existing expense")
	}
	if len(l.Expenses()) != 0 {
		t.Fatalf("expense not removed")
	}
}

func TestHistoryMostRecentFirst(t *testing.T) {
	roster := twoUnitRoster(t)
	l := New(roster, PolicyFlat)
	unitA, _ := roster.Lookup("A")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e1, _ := core.NewExpense("antiguo", "10", "x", base)
	p1, _ := core.NewPayment(unitA, "5", base.Add(time.Hour))
	e2, _ := core.NewExpense("reciente", "20", "x", base.Add(2*time.Hour))
	l.AddExpense(e1)
	l.AddPayment(p1)
	l.AddExpense(e2)

	h := l.History()
	if len(h) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(h))
	}
	if h[0].Description != "reciente" || h[0].Kind != KindExpense {
		t.Fatalf("unexpected first entry %+v", h[0])
	}
	if h[1].Kind != KindPayment || h[1].Description != "A" {
		t.Fatalf("unexpected second entry %+v", h[1])
	}
	if h[2].Description != "antiguo" {
		t.Fatalf("unexpected last entry %+v", h[2])
	}
}
