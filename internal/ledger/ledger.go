// Package ledger holds the in-memory aggregate of community expenses and
// payments and the coefficient-weighted apportionment math over it.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"comunidad/internal/core"
)

// Policy selects which expenses enter the per-unit split.
type Policy string

const (
	// PolicyFlat apportions every expense regardless of category.
	PolicyFlat Policy = "flat"
	// PolicyGeneralExcluded treats expenses in the reserved "general"
	// category as building-wide costs covered outside the coefficient
	// split; everything else is apportioned.
	PolicyGeneralExcluded Policy = "general-excluded"
)

// GeneralCategory is the reserved expense category excluded from the split
// under PolicyGeneralExcluded.
const GeneralCategory = "general"

// PaymentStatus is the settled/unsettled state of a unit.
type PaymentStatus string

const (
	StatusPaid   PaymentStatus = "paid"
	StatusUnpaid PaymentStatus = "unpaid"
)

// EntryKind tags a history entry as an expense or a payment.
type EntryKind string

const (
	KindExpense EntryKind = "expense"
	KindPayment EntryKind = "payment"
)

// Entry is one row of the merged expense/payment history.
type Entry struct {
	Kind        EntryKind
	ID          string
	Date        time.Time
	Description string // unit name for payments
	Category    string // empty for payments
	Amount      decimal.Decimal
}

// Ledger owns the expense and payment collections for the current session.
// It is process-local state with a single writer; callers serialize access
// through the service layer.
type Ledger struct {
	roster   *core.Roster
	policy   Policy
	expenses []core.Expense
	payments []core.Payment
}

// New returns an empty ledger over the given roster.
func New(roster *core.Roster, policy Policy) *Ledger {
	return &Ledger{roster: roster, policy: policy}
}

func (l *Ledger) Roster() *core.Roster { return l.roster }
func (l *Ledger) Policy() Policy       { return l.policy }

// Expenses returns a copy of the expense collection in insertion order.
func (l *Ledger) Expenses() []core.Expense {
	return append([]core.Expense(nil), l.expenses...)
}

// Payments returns a copy of the payment collection in insertion order.
func (l *Ledger) Payments() []core.Payment {
	return append([]core.Payment(nil), l.payments...)
}

// ExpenseByID looks up one expense.
func (l *Ledger) ExpenseByID(id string) (core.Expense, bool) {
	for _, e := range l.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

// AddExpense appends an expense to the ledger.
func (l *Ledger) AddExpense(e core.Expense) {
	l.expenses = append(l.expenses, e)
}

// AddPayment appends a payment. The payment's unit must belong to the
// roster; the service layer resolves it before construction.
func (l *Ledger) AddPayment(p core.Payment) {
	l.payments = append(l.payments, p)
}

// DeleteExpense removes the expense with the given id. Unknown ids are a
// no-op and report false.
func (l *Ledger) DeleteExpense(id string) bool {
	for i, e := range l.expenses {
		if e.ID == id {
			l.expenses = append(l.expenses[:i], l.expenses[i+1:]...)
			return true
		}
	}
	return false
}

// DeletePayment removes the payment with the given id. Unknown ids are a
// no-op and report false.
func (l *Ledger) DeletePayment(id string) bool {
	for i, p := range l.payments {
		if p.ID == id {
			l.payments = append(l.payments[:i], l.payments[i+1:]...)
			return true
		}
	}
	return false
}

// Reset drops every expense and payment.
func (l *Ledger) Reset() {
	l.expenses = nil
	l.payments = nil
}

// Replace swaps in freshly loaded collections, used by the persistence
// loader after referential repair.
func (l *Ledger) Replace(expenses []core.Expense, payments []core.Payment) {
	l.expenses = expenses
	l.payments = payments
}

// ApportionableTotal sums the expenses that enter the per-unit split under
// the active policy.
func (l *Ledger) ApportionableTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range l.expenses {
		if l.policy == PolicyGeneralExcluded && e.Category == GeneralCategory {
			continue
		}
		sum = sum.Add(e.Amount)
	}
	return sum
}

// TotalDue is the unit's share of the apportionable expenses: the sum times
// its participation coefficient.
func (l *Ledger) TotalDue(u *core.Unit) decimal.Decimal {
	return l.ApportionableTotal().Mul(u.Coefficient)
}

// Paid sums the payments registered for the unit.
func (l *Ledger) Paid(u *core.Unit) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range l.payments {
		if p.Unit != nil && p.Unit.Name == u.Name {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// Remaining is what the unit still owes, clamped at zero so overpayment
// never shows as a negative debt.
func (l *Ledger) Remaining(u *core.Unit) decimal.Decimal {
	rem := l.TotalDue(u).Sub(l.Paid(u))
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// Status reports paid when the unit has covered its share.
func (l *Ledger) Status(u *core.Unit) PaymentStatus {
	if l.Paid(u).GreaterThanOrEqual(l.TotalDue(u)) {
		return StatusPaid
	}
	return StatusUnpaid
}

// TotalExpenses sums every expense amount, apportionable or not.
func (l *Ledger) TotalExpenses() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range l.expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// TotalCollected sums every payment amount.
func (l *Ledger) TotalCollected() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range l.payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// Balance is collected minus spent; negative while expenses outrun income.
func (l *Ledger) Balance() decimal.Decimal {
	return l.TotalCollected().Sub(l.TotalExpenses())
}

// History merges expenses and payments into a single sequence, most recent
// first. The result is a derived view; mutating it does not touch the
// ledger.
func (l *Ledger) History() []Entry {
	entries := make([]Entry, 0, len(l.expenses)+len(l.payments))
	for _, e := range l.expenses {
		entries = append(entries, Entry{
			Kind:        KindExpense,
			ID:          e.ID,
			Date:        e.Date,
			Description: e.Description,
			Category:    e.Category,
			Amount:      e.Amount,
		})
	}
	for _, p := range l.payments {
		name := ""
		if p.Unit != nil {
			name = p.Unit.Name
		}
		entries = append(entries, Entry{
			Kind:        KindPayment,
			ID:          p.ID,
			Date:        p.Date,
			Description: name,
			Amount:      p.Amount,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries
}
