package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrUnknownUnit      = errors.New("unknown unit")
)

type (
	// Unit is a member of the fixed building roster. Units are created once
	// at startup and never mutated; payments reference them by name.
	Unit struct {
		Name        string
		Address     string
		Category    string
		Area        string
		Coefficient decimal.Decimal // fraction in [0,1]
	}

	// Expense is a community cost shared across the roster.
	Expense struct {
		ID          string
		Description string
		Amount      decimal.Decimal
		Category    string
		Date        time.Time
	}

	// Payment is an amount received from one unit. Unit points into the
	// roster; a payment never owns a copy of the unit data.
	Payment struct {
		ID     string
		Unit   *Unit
		Amount decimal.Decimal
		Date   time.Time
	}

	// Warning records a non-fatal validation problem. Bad input is coerced
	// to a safe default instead of blocking the caller; the warning is what
	// remains of the rejected value.
	Warning struct {
		Field  string
		Value  string
		Reason string
	}
)

func (w Warning) String() string {
	return fmt.Sprintf("%s %q: %s", w.Field, w.Value, w.Reason)
}

// NewUnit builds a roster unit from its raw attributes. The coefficient text
// may carry a trailing percent sign and a decimal comma; values that do not
// parse or fall outside [0,1] are coerced to zero with a warning.
func NewUnit(name, address, category, area, coefficient string) (Unit, []Warning) {
	coef, warns := ParseCoefficient(coefficient)
	return Unit{
		Name:        strings.TrimSpace(name),
		Address:     address,
		Category:    category,
		Area:        area,
		Coefficient: coef,
	}, prefixField(warns, "unit "+strings.TrimSpace(name))
}

// NewExpense builds an expense from user input. A non-numeric or negative
// amount becomes zero with a warning; a zero date defaults to now.
func NewExpense(description, amount, category string, date time.Time) (Expense, []Warning) {
	value, warns := ParseAmount(amount)
	if date.IsZero() {
		date = time.Now()
	}
	return Expense{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      value,
		Category:    category,
		Date:        date,
	}, prefixField(warns, "expense "+description)
}

// NewPayment builds a payment for the given roster unit. Amount handling
// matches NewExpense; the unit must already be resolved by the caller.
func NewPayment(unit *Unit, amount string, date time.Time) (Payment, []Warning) {
	value, warns := ParseAmount(amount)
	if date.IsZero() {
		date = time.Now()
	}
	return Payment{
		ID:     uuid.NewString(),
		Unit:   unit,
		Amount: value,
		Date:   date,
	}, prefixField(warns, "payment for "+unit.Name)
}

// NewID returns a fresh identity token for rehydrated records that lost
// theirs.
func NewID() string {
	return uuid.NewString()
}

func prefixField(warns []Warning, prefix string) []Warning {
	for i := range warns {
		warns[i].Field = prefix + " " + warns[i].Field
	}
	return warns
}
