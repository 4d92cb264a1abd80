// Package report turns ledger state into tabular row-sets for the status
// view, the history table, printable reports and invoices. Everything here
// is a pure read: projections are recomputed after every mutation and never
// touch the ledger.
package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"comunidad/internal/core"
	"comunidad/internal/ledger"
)

type (
	// StatusRow is one unit's settlement state.
	StatusRow struct {
		Unit        string
		Category    string
		Area        string
		Coefficient decimal.Decimal
		Due         decimal.Decimal
		Paid        decimal.Decimal
		Remaining   decimal.Decimal
		Status      ledger.PaymentStatus
	}

	// HistoryRow is one entry of the merged chronological view.
	HistoryRow struct {
		Kind        ledger.EntryKind
		ID          string
		Date        time.Time
		Description string
		Category    string
		Amount      decimal.Decimal
	}

	// Totals is the synthetic last row of the general report, summed from
	// the individual rows so the printed columns always reconcile.
	Totals struct {
		Due       decimal.Decimal
		Paid      decimal.Decimal
		Remaining decimal.Decimal
	}

	// GeneralReport is the bulk printable report: per-unit rows plus the
	// global summary figures.
	GeneralReport struct {
		GeneratedAt    time.Time
		TotalExpenses  decimal.Decimal
		TotalCollected decimal.Decimal
		Balance        decimal.Decimal
		Rows           []StatusRow
		Totals         Totals
	}

	// DetailRow is one unit's share of a single expense.
	DetailRow struct {
		Unit        string
		Coefficient decimal.Decimal
		Share       decimal.Decimal
	}

	// InvoiceSnapshot is the read-only payment view handed to the invoice
	// renderer.
	InvoiceSnapshot struct {
		PaymentID     string
		InvoiceNumber string
		Unit          string
		Address       string
		Coefficient   decimal.Decimal
		Amount        decimal.Decimal
		Date          time.Time
	}
)

// StatusRows returns one row per roster unit, in roster order.
func StatusRows(l *ledger.Ledger) []StatusRow {
	units := l.Roster().Units()
	rows := make([]StatusRow, 0, len(units))
	for _, u := range units {
		rows = append(rows, StatusRow{
			Unit:        u.Name,
			Category:    u.Category,
			Area:        u.Area,
			Coefficient: u.Coefficient,
			Due:         l.TotalDue(u),
			Paid:        l.Paid(u),
			Remaining:   l.Remaining(u),
			Status:      l.Status(u),
		})
	}
	return rows
}

// HistoryRows returns the merged expense/payment sequence, most recent
// first.
func HistoryRows(l *ledger.Ledger) []HistoryRow {
	entries := l.History()
	rows := make([]HistoryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, HistoryRow(e))
	}
	return rows
}

// General builds the printable report. The totals row is the column sum of
// the individual rows, not an independent recomputation, so the two can
// never drift apart.
func General(l *ledger.Ledger) GeneralReport {
	rows := StatusRows(l)
	totals := Totals{Due: decimal.Zero, Paid: decimal.Zero, Remaining: decimal.Zero}
	for _, r := range rows {
		totals.Due = totals.Due.Add(r.Due)
		totals.Paid = totals.Paid.Add(r.Paid)
		totals.Remaining = totals.Remaining.Add(r.Remaining)
	}
	return GeneralReport{
		GeneratedAt:    time.Now(),
		TotalExpenses:  l.TotalExpenses(),
		TotalCollected: l.TotalCollected(),
		Balance:        l.Balance(),
		Rows:           rows,
		Totals:         totals,
	}
}

// ExpenseDetail breaks one expense down across the roster: each unit's row
// carries amount × coefficient. The boolean reports whether the expense
// exists.
func ExpenseDetail(l *ledger.Ledger, expenseID string) ([]DetailRow, bool) {
	e, ok := l.ExpenseByID(expenseID)
	if !ok {
		return nil, false
	}
	units := l.Roster().Units()
	rows := make([]DetailRow, 0, len(units))
	for _, u := range units {
		rows = append(rows, DetailRow{
			Unit:        u.Name,
			Coefficient: u.Coefficient,
			Share:       e.Amount.Mul(u.Coefficient),
		})
	}
	return rows, true
}

// Invoice projects a payment into the snapshot the invoice renderer
// consumes. The invoice number is the tail of the payment id, uppercased.
func Invoice(p core.Payment) InvoiceSnapshot {
	inv := InvoiceSnapshot{
		PaymentID:     p.ID,
		InvoiceNumber: invoiceNumber(p.ID),
		Amount:        p.Amount,
		Date:          p.Date,
	}
	if p.Unit != nil {
		inv.Unit = p.Unit.Name
		inv.Address = p.Unit.Address
		inv.Coefficient = p.Unit.Coefficient
	}
	return inv
}

func invoiceNumber(paymentID string) string {
	id := strings.ToUpper(paymentID)
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
