package bits

import "strings"

// Normalize validates input against base's alphabet and left-pads it with
// zeros to minWidth.
//
// Hex input is upper-cased before validation. A maxWidth of zero or less
// means unbounded. The returned string is at least minWidth long and never
// truncated.
//
// Fails with:
//   - EmptyInput when input is empty
//   - InvalidSymbol for the first symbol outside the alphabet
//   - WidthExceeded when len(input) > maxWidth
func Normalize(input string, base Base, minWidth, maxWidth int) (string, error) {
	if input == "" {
		return "", NewEmptyInput(base.String() + " operand")
	}
	if base == Hex {
		input = strings.ToUpper(input)
	}
	for i := 0; i < len(input); i++ {
		if _, ok := base.Value(input[i]); !ok {
			return "", NewInvalidSymbol(input, i, base)
		}
	}
	if maxWidth > 0 && len(input) > maxWidth {
		return "", NewWidthExceeded(input, maxWidth)
	}
	return PadLeft(input, minWidth), nil
}

// NormalizePair normalizes two operands to a common width of
// max(minWidth, len(a), len(b)).
func NormalizePair(a, b string, base Base, minWidth, maxWidth int) (string, string, error) {
	na, err := Normalize(a, base, 0, maxWidth)
	if err != nil {
		return "", "", err
	}
	nb, err := Normalize(b, base, 0, maxWidth)
	if err != nil {
		return "", "", err
	}
	width := max(minWidth, len(na), len(nb))
	return PadLeft(na, width), PadLeft(nb, width), nil
}

// Filter drops every symbol outside base's alphabet.
//
// This is the forgiving live-input behaviour of an interactive front end.
// The calculators never call it; they reject invalid input instead.
func Filter(input string, base Base) string {
	if base == Hex {
		input = strings.ToUpper(input)
	}
	var b strings.Builder
	for i := 0; i < len(input); i++ {
		if _, ok := base.Value(input[i]); ok {
			b.WriteByte(input[i])
		}
	}
	return b.String()
}

// PadLeft pads s with '0' on the left to width. Longer strings are returned unchanged.
func PadLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// RequireEqualLength fails with LengthMismatch when a and b differ in length.
func RequireEqualLength(a, b string) error {
	if len(a) != len(b) {
		return NewLengthMismatch(a, b)
	}
	return nil
}
