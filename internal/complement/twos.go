// Package complement implements two's-complement subtraction and
// one's-complement arithmetic over fixed-width binary strings.
package complement

import (
	"math/big"

	"github.com/roach88/digilab/internal/bits"
)

// MinWidth is the minimum operand width for two's-complement subtraction.
// Shorter operands are zero-padded to keep results legible.
const MinWidth = 4

// Subtraction is the outcome of TwosSubtract.
type Subtraction struct {
	Minuend        string        `json:"minuend"`
	Subtrahend     string        `json:"subtrahend"`
	OnesComplement string        `json:"ones_complement"`
	TwosComplement string        `json:"twos_complement"`
	Result         string        `json:"result"`
	Carries        string        `json:"carries"`
	OverflowCarry  bool          `json:"overflow_carry"`
	Width          int           `json:"width"`
	Columns        []bits.Column `json:"columns"`
}

// TwosSubtract computes minuend - subtrahend by adding the two's complement
// of the subtrahend.
//
// Both operands are padded to w = max(MinWidth, len(minuend), len(subtrahend)).
// The carry out of the most significant bit is reported as OverflowCarry and
// discarded, so Result is (minuend - subtrahend) mod 2^w.
func TwosSubtract(minuend, subtrahend string) (Subtraction, error) {
	a, b, err := bits.NormalizePair(minuend, subtrahend, bits.Binary, MinWidth, 0)
	if err != nil {
		return Subtraction{}, err
	}

	ones := bits.Flip(b)
	twos, _ := bits.Increment(ones)
	result, carry, cols := bits.AddBits(a, twos)

	return Subtraction{
		Minuend:        a,
		Subtrahend:     b,
		OnesComplement: ones,
		TwosComplement: twos,
		Result:         result,
		Carries:        bits.Carries(cols),
		OverflowCarry:  carry == 1,
		Width:          len(a),
		Columns:        cols,
	}, nil
}

// Negate returns the two's complement of value at its own width.
func Negate(value string) (string, error) {
	v, err := bits.Normalize(value, bits.Binary, 0, 0)
	if err != nil {
		return "", err
	}
	neg, _ := bits.Increment(bits.Flip(v))
	return neg, nil
}

// TwosValue interprets value as a two's-complement signed integer.
func TwosValue(value string) (*big.Int, error) {
	v, err := bits.Normalize(value, bits.Binary, 0, 0)
	if err != nil {
		return nil, err
	}
	n, _ := new(big.Int).SetString(v, 2)
	if v[0] == '1' {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(v))))
	}
	return n, nil
}
