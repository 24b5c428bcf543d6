package complement

import (
	"math/big"

	"github.com/roach88/digilab/internal/bits"
)

// OnesSum is the outcome of a one's-complement addition or subtraction.
//
// Sum is the plain ripple-carry sum at the operand width. When the addition
// carries out of the most significant bit, the carry is added back into the
// least significant bit and Final holds the corrected value; otherwise Final
// equals Sum.
type OnesSum struct {
	A              string        `json:"a"`
	B              string        `json:"b"`
	Sum            string        `json:"sum"`
	EndAroundCarry bool          `json:"end_around_carry"`
	Final          string        `json:"final"`
	Columns        []bits.Column `json:"columns"`
	Correction     []bits.Column `json:"correction,omitempty"`
}

// Ones returns the one's complement (bitwise inverse) of value.
func Ones(value string) (string, error) {
	v, err := bits.Normalize(value, bits.Binary, 0, 0)
	if err != nil {
		return "", err
	}
	return bits.Flip(v), nil
}

// OnesAdd adds a and b in one's complement with end-around carry.
//
// Operands are zero-padded to the wider operand's width. No minimum width
// is applied: widening a one's-complement operand would change its sign.
func OnesAdd(a, b string) (OnesSum, error) {
	na, nb, err := bits.NormalizePair(a, b, bits.Binary, 0, 0)
	if err != nil {
		return OnesSum{}, err
	}
	return onesAdd(na, nb), nil
}

// OnesSubtract computes a - b as a + ones(b) with end-around carry.
// b is padded to the common width before it is complemented.
func OnesSubtract(a, b string) (OnesSum, error) {
	na, nb, err := bits.NormalizePair(a, b, bits.Binary, 0, 0)
	if err != nil {
		return OnesSum{}, err
	}
	return onesAdd(na, bits.Flip(nb)), nil
}

func onesAdd(a, b string) OnesSum {
	sum, carry, cols := bits.AddBits(a, b)
	out := OnesSum{
		A:       a,
		B:       b,
		Sum:     sum,
		Final:   sum,
		Columns: cols,
	}
	if carry == 1 {
		out.EndAroundCarry = true
		out.Final, _, out.Correction = bits.AddBits(sum, bits.PadLeft("1", len(sum)))
	}
	return out
}

// OnesValue interprets value as a one's-complement signed integer.
// Both all-zeros and all-ones are zero.
func OnesValue(value string) (*big.Int, error) {
	v, err := bits.Normalize(value, bits.Binary, 0, 0)
	if err != nil {
		return nil, err
	}
	if v[0] == '1' {
		n, _ := new(big.Int).SetString(bits.Flip(v), 2)
		return n.Neg(n), nil
	}
	n, _ := new(big.Int).SetString(v, 2)
	return n, nil
}
