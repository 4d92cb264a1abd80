package core

import (
	"github.com/shopspring/decimal"
)

// Roster is the immutable set of building units, indexed by name so that
// payments can be resolved without duplicating unit data.
type Roster struct {
	units  []Unit
	byName map[string]*Unit
}

// NewRoster indexes the given units. Duplicate names keep the first entry
// and report a warning for the rest.
func NewRoster(units []Unit) (*Roster, []Warning) {
	r := &Roster{
		units:  make([]Unit, 0, len(units)),
		byName: make(map[string]*Unit, len(units)),
	}
	var warns []Warning
	for _, u := range units {
		if _, exists := r.byName[u.Name]; exists {
			warns = append(warns, Warning{Field: "roster", Value: u.Name, Reason: "duplicate unit name, keeping first"})
			continue
		}
		r.units = append(r.units, u)
		r.byName[u.Name] = nil // claim the name; pointers are fixed below
	}
	// The slice is final now, so pointers into it are stable.
	for i := range r.units {
		r.byName[r.units[i].Name] = &r.units[i]
	}
	return r, warns
}

// Lookup resolves a unit by its name.
func (r *Roster) Lookup(name string) (*Unit, bool) {
	u, ok := r.byName[name]
	return u, ok
}

// Units returns the roster in declaration order.
func (r *Roster) Units() []*Unit {
	out := make([]*Unit, len(r.units))
	for i := range r.units {
		out[i] = &r.units[i]
	}
	return out
}

// Len returns the number of units.
func (r *Roster) Len() int {
	return len(r.units)
}

// CoefficientSum adds up every unit coefficient. A well-formed roster sums
// to 1 within cadastral rounding; callers log a warning when it drifts.
func (r *Roster) CoefficientSum() decimal.Decimal {
	sum := decimal.Zero
	for _, u := range r.units {
		sum = sum.Add(u.Coefficient)
	}
	return sum
}

// DefaultRoster returns the building's fixed unit list with its cadastral
// participation coefficients.
func DefaultRoster() (*Roster, []Warning) {
	specs := []struct {
		name, address, category, area, coefficient string
	}{
		{"tienda 1", "Es:1 Pl:00 Pt:01", "tienda 1", "29 m2", "1,967%"},
		{"tienda 2", "Es:1 Pl:00 Pt:02", "tienda 2", "50 m2", "2,732%"},
		{"tienda 3", "Es:1 Pl:00 Pt:03", "tienda 3", "50 m2", "3,884%"},
		{"tienda 4", "Es:1 Pl:00 Pt:04", "tienda 4", "33 m2", "2,63%"},
		{"entresuelo primera", "Es:1 Pl:EN Pt:01", "Residencial", "103 m2", "5,974%"},
		{"entresuelo segunda", "Es:1 Pl:EN Pt:02", "Residencial", "87 m2", "6,367%"},
		{"primero primera", "Es:1 Pl:01 Pt:01", "Residencial", "108 m2", "5,974%"},
		{"primero segunda", "Es:1 Pl:01 Pt:02", "Residencial", "92 m2", "6,367%"},
		{"segundo primera", "Es:1 Pl:02 Pt:01", "Residencial", "108 m2", "5,974%"},
		{"segundo segunda", "Es:1 Pl:02 Pt:02", "Residencial", "92 m2", "6,367%"},
		{"tercero primera", "Es:1 Pl:03 Pt:01", "Residencial", "108 m2", "5,974%"},
		{"tercero segunda", "Es:1 Pl:03 Pt:02", "Residencial", "92 m2", "6,367%"},
		{"cuarto primera", "Es:1 Pl:04 Pt:01", "Residencial", "108 m2", "5,974%"},
		{"cuarto segunda", "Es:1 Pl:04 Pt:02", "Residencial", "57 m2", "5,443%"},
		{"quinto", "Es:1 Pl:05 Pt:01", "Residencial", "132 m2", "8,784%"},
		{"sexto", "Es:1 Pl:06 Pt:01", "Residencial", "113 m2", "7,287%"},
		{"septimo", "Es:1 Pl:07 Pt:01", "Residencial", "180 m2", "11,937%"},
	}

	units := make([]Unit, 0, len(specs))
	var warns []Warning
	for _, s := range specs {
		u, w := NewUnit(s.name, s.address, s.category, s.area, s.coefficient)
		units = append(units, u)
		warns = append(warns, w...)
	}
	roster, w := NewRoster(units)
	return roster, append(warns, w...)
}
