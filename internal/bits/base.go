package bits

import (
	"fmt"
	"strings"
)

// Base is a positional number base supported by the calculators.
type Base int

const (
	Binary  Base = 2
	Octal   Base = 8
	Decimal Base = 10
	Hex     Base = 16
)

// symbols holds the digit alphabet; a base's alphabet is its prefix.
const symbols = "0123456789ABCDEF"

// Bases lists the supported bases in ascending order.
var Bases = []Base{Binary, Octal, Decimal, Hex}

// Valid reports whether b is one of the supported bases.
func (b Base) Valid() bool {
	switch b {
	case Binary, Octal, Decimal, Hex:
		return true
	}
	return false
}

// Alphabet returns the legal symbols of b, in digit-value order.
func (b Base) Alphabet() string {
	if !b.Valid() {
		return ""
	}
	return symbols[:b]
}

// String returns the lower-case base name.
func (b Base) String() string {
	switch b {
	case Binary:
		return "binary"
	case Octal:
		return "octal"
	case Decimal:
		return "decimal"
	case Hex:
		return "hex"
	}
	return fmt.Sprintf("base(%d)", int(b))
}

// Value returns the digit value of symbol c in base b.
// Only the canonical (upper-case) alphabet is accepted.
func (b Base) Value(c byte) (int, bool) {
	i := strings.IndexByte(b.Alphabet(), c)
	if i < 0 {
		return 0, false
	}
	return i, true
}

// Symbol returns the symbol for digit value v. v must be in [0, b).
func (b Base) Symbol(v int) byte {
	return symbols[v]
}

// ParseBase resolves a base name, short name, or radix.
func ParseBase(s string) (Base, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "bin", "2":
		return Binary, nil
	case "octal", "oct", "8":
		return Octal, nil
	case "decimal", "dec", "10":
		return Decimal, nil
	case "hex", "hexadecimal", "16":
		return Hex, nil
	}
	return 0, fmt.Errorf("unknown base %q: must be one of binary, octal, decimal, hex", s)
}

// MarshalText encodes b by name.
func (b Base) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid base %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText accepts anything ParseBase does.
func (b *Base) UnmarshalText(text []byte) error {
	parsed, err := ParseBase(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
