// Package codec serializes the ledger to a portable JSON blob and rebuilds
// it on load, repairing payment→unit references against the current roster.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"comunidad/internal/core"
	"comunidad/internal/ledger"
)

// SchemaVersion guards blob evolution; bump it on incompatible layout
// changes.
const SchemaVersion = 1

// ErrMalformedBlob marks a blob that cannot be understood. Callers decide
// whether to discard the stored data or abort the load.
var ErrMalformedBlob = errors.New("malformed ledger blob")

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Expenses      []expenseRecord `json:"expenses"`
	Payments      []paymentRecord `json:"payments"`
}

type expenseRecord struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
}

type paymentRecord struct {
	ID     string    `json:"id"`
	Unit   string    `json:"unit"`
	Amount string    `json:"amount"`
	Date   time.Time `json:"date"`
}

// Serialize renders the ledger collections as a versioned JSON blob.
// Payments carry their unit's name, never a copy of the unit.
func Serialize(l *ledger.Ledger) ([]byte, error) {
	env := envelope{
		SchemaVersion: SchemaVersion,
		Expenses:      make([]expenseRecord, 0, len(l.Expenses())),
		Payments:      make([]paymentRecord, 0, len(l.Payments())),
	}
	for _, e := range l.Expenses() {
		env.Expenses = append(env.Expenses, expenseRecord{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount.String(),
			Category:    e.Category,
			Date:        e.Date,
		})
	}
	for _, p := range l.Payments() {
		unit := ""
		if p.Unit != nil {
			unit = p.Unit.Name
		}
		env.Payments = append(env.Payments, paymentRecord{
			ID:     p.ID,
			Unit:   unit,
			Amount: p.Amount.String(),
			Date:   p.Date,
		})
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger blob: %w", err)
	}
	return data, nil
}

// Deserialize rebuilds a ledger from a blob. Expenses keep their id and
// date; payments are resolved against the roster and dropped with a warning
// when their unit no longer exists. A blob that fails to parse, or carries
// an unknown schema version, reports ErrMalformedBlob.
func Deserialize(data []byte, roster *core.Roster, policy ledger.Policy) (*ledger.Ledger, []core.Warning, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, nil, fmt.Errorf("%w: unsupported schema version %d", ErrMalformedBlob, env.SchemaVersion)
	}

	var warns []core.Warning

	expenses := make([]core.Expense, 0, len(env.Expenses))
	for _, rec := range env.Expenses {
		amount, w := core.ParseAmount(rec.Amount)
		warns = append(warns, w...)
		id := rec.ID
		if id == "" {
			id = core.NewID()
			warns = append(warns, core.Warning{Field: "expense", Value: rec.Description, Reason: "missing id, assigned a new one"})
		}
		expenses = append(expenses, core.Expense{
			ID:          id,
			Description: rec.Description,
			Amount:      amount,
			Category:    rec.Category,
			Date:        rec.Date,
		})
	}

	payments := make([]core.Payment, 0, len(env.Payments))
	for _, rec := range env.Payments {
		unit, ok := roster.Lookup(rec.Unit)
		if !ok {
			// Dangling reference: the roster changed between sessions.
			// Dropping beats keeping a payment nobody can attribute.
			warns = append(warns, core.Warning{Field: "payment", Value: rec.Unit, Reason: "unit not in roster, payment dropped"})
			continue
		}
		amount, w := core.ParseAmount(rec.Amount)
		warns = append(warns, w...)
		id := rec.ID
		if id == "" {
			id = core.NewID()
			warns = append(warns, core.Warning{Field: "payment", Value: rec.Unit, Reason: "missing id, assigned a new one"})
		}
		payments = append(payments, core.Payment{
			ID:     id,
			Unit:   unit,
			Amount: amount,
			Date:   rec.Date,
		})
	}

	l := ledger.New(roster, policy)
	l.Replace(expenses, payments)
	return l, warns, nil
}
