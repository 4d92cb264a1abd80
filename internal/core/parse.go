// Package core holds the community ledger entities and the lenient input
// parsing they rely on.
//
// Parsing here is total: bad input coerces to zero and produces a warning
// instead of an error, so a typo never blocks the user.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// ParseCoefficient normalizes percentage text into a fraction in [0,1].
//
// It accepts a trailing '%' and a decimal comma (cadastral coefficients are
// usually printed like "5,974%"). Non-numeric or out-of-range input yields
// zero plus a warning, never an error.
//
// Examples:
//
//	ParseCoefficient("5,974%") -> 0.05974
//	ParseCoefficient("11.937") -> 0.11937
//	ParseCoefficient("abc")    -> 0 (with warning)
func ParseCoefficient(s string) (decimal.Decimal, []Warning) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", ".")

	pct, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, []Warning{{Field: "coefficient", Value: raw, Reason: "not a number, using 0"}}
	}
	frac := pct.Div(decimal.NewFromInt(100))
	if frac.IsNegative() || frac.GreaterThan(one) {
		return decimal.Zero, []Warning{{Field: "coefficient", Value: raw, Reason: "outside [0,100]%, using 0"}}
	}
	return frac, nil
}

// ParseAmount normalizes monetary text into a non-negative decimal. It
// accepts both dot and comma decimal separators. Non-numeric or negative
// input yields zero plus a warning.
func ParseAmount(s string) (decimal.Decimal, []Warning) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, []Warning{{Field: "amount", Value: raw, Reason: "not a number, using 0"}}
	}
	if value.IsNegative() {
		return decimal.Zero, []Warning{{Field: "amount", Value: raw, Reason: "negative, using 0"}}
	}
	return value, nil
}
