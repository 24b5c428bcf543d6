package bits

import "strings"

// Column is one column of a ripple-carry addition.
// Position 0 is the least significant bit.
type Column struct {
	Position int `json:"position"`
	A        int `json:"a"`
	B        int `json:"b"`
	CarryIn  int `json:"carry_in"`
	Sum      int `json:"sum"`
	CarryOut int `json:"carry_out"`
}

// Flip inverts every bit of a binary string.
// Symbols other than '0' are treated as '1'; callers validate first.
func Flip(bits string) string {
	out := make([]byte, len(bits))
	for i := 0; i < len(bits); i++ {
		if bits[i] == '0' {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

// AddBits adds two binary strings with ripple carry.
//
// The shorter operand is zero-padded to the longer one's width. The sum has
// exactly that width; the carry out of the most significant bit is returned
// separately. Columns are returned least significant first.
func AddBits(a, b string) (sum string, carry int, cols []Column) {
	width := max(len(a), len(b))
	a, b = PadLeft(a, width), PadLeft(b, width)

	out := make([]byte, width)
	cols = make([]Column, 0, width)
	for i := width - 1; i >= 0; i-- {
		col := Column{
			Position: width - 1 - i,
			A:        bit(a[i]),
			B:        bit(b[i]),
			CarryIn:  carry,
		}
		total := col.A + col.B + col.CarryIn
		col.Sum = total % 2
		col.CarryOut = total / 2
		out[i] = '0' + byte(col.Sum)
		carry = col.CarryOut
		cols = append(cols, col)
	}
	return string(out), carry, cols
}

// Increment adds one to a binary string at fixed width.
// The carry out of the most significant bit is returned separately.
func Increment(bits string) (string, int) {
	out := []byte(bits)
	carry := 1
	for i := len(out) - 1; i >= 0 && carry == 1; i-- {
		if out[i] == '1' {
			out[i] = '0'
		} else {
			out[i] = '1'
			carry = 0
		}
	}
	return string(out), carry
}

// CountOnes returns the number of '1' symbols in bits.
func CountOnes(bits string) int {
	return strings.Count(bits, "1")
}

// Carries renders the carry-out of each column as a bit string aligned
// with the operands (most significant first).
func Carries(cols []Column) string {
	out := make([]byte, len(cols))
	for _, c := range cols {
		out[len(cols)-1-c.Position] = '0' + byte(c.CarryOut)
	}
	return string(out)
}

func bit(c byte) int {
	if c == '1' {
		return 1
	}
	return 0
}
