package ops

import (
	"github.com/roach88/digilab/internal/bits"
	"github.com/roach88/digilab/internal/parity"
)

// Limits bounds operand widths per base and sets operation defaults.
type Limits struct {
	Binary   int
	Octal    int
	Decimal  int
	Hex      int
	MinWidth int
	Parity   parity.Mode
}

// DefaultLimits matches the widths an interactive front end accepts.
func DefaultLimits() Limits {
	return Limits{
		Binary:   16,
		Octal:    8,
		Decimal:  8,
		Hex:      8,
		MinWidth: 4,
		Parity:   parity.Even,
	}
}

// Max returns the widest operand accepted in base, or 0 for unbounded.
func (l Limits) Max(base bits.Base) int {
	switch base {
	case bits.Binary:
		return l.Binary
	case bits.Octal:
		return l.Octal
	case bits.Decimal:
		return l.Decimal
	case bits.Hex:
		return l.Hex
	}
	return 0
}

// check validates value in base against the base's width limit.
func (l Limits) check(value string, base bits.Base) (string, error) {
	return bits.Normalize(value, base, 0, l.Max(base))
}
