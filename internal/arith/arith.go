// Package arith performs unsigned binary addition, subtraction and
// multiplication with column and partial-product traces.
package arith

import (
	"math/big"
	"strings"

	"github.com/roach88/digilab/internal/bits"
)

// Sum is the outcome of Add.
type Sum struct {
	A       string        `json:"a"`
	B       string        `json:"b"`
	Result  string        `json:"result"`
	Decimal string        `json:"decimal"`
	Carry   bool          `json:"carry"`
	Columns []bits.Column `json:"columns"`
}

// Difference is the outcome of Subtract.
type Difference struct {
	A       string `json:"a"`
	B       string `json:"b"`
	Result  string `json:"result"`
	Decimal string `json:"decimal"`
}

// Partial is one shifted copy of the multiplicand, for a set bit of the
// multiplier.
type Partial struct {
	Shift   int    `json:"shift"`
	Product string `json:"product"`
}

// Product is the outcome of Multiply.
type Product struct {
	A        string    `json:"a"`
	B        string    `json:"b"`
	Partials []Partial `json:"partials"`
	Result   string    `json:"result"`
	Decimal  string    `json:"decimal"`
}

// Add adds two unsigned binary numbers. A carry out of the top bit is
// prepended to the result rather than discarded.
func Add(a, b string) (Sum, error) {
	na, nb, err := bits.NormalizePair(a, b, bits.Binary, 0, 0)
	if err != nil {
		return Sum{}, err
	}
	result, carry, cols := bits.AddBits(na, nb)
	if carry == 1 {
		result = "1" + result
	}
	return Sum{
		A:       na,
		B:       nb,
		Result:  result,
		Decimal: decimal(result),
		Carry:   carry == 1,
		Columns: cols,
	}, nil
}

// Subtract computes a - b for unsigned a >= b. The result carries no leading
// zeros. b > a fails with NegativeResult.
func Subtract(a, b string) (Difference, error) {
	na, nb, err := bits.NormalizePair(a, b, bits.Binary, 0, 0)
	if err != nil {
		return Difference{}, err
	}
	x, _ := new(big.Int).SetString(na, 2)
	y, _ := new(big.Int).SetString(nb, 2)
	if x.Cmp(y) < 0 {
		return Difference{}, bits.NewNegativeResult(na, nb)
	}
	d := x.Sub(x, y)
	return Difference{A: na, B: nb, Result: d.Text(2), Decimal: d.String()}, nil
}

// Multiply multiplies by shift-and-add: one partial product per set bit of
// b, accumulated with ripple-carry addition.
func Multiply(a, b string) (Product, error) {
	na, err := bits.Normalize(a, bits.Binary, 0, 0)
	if err != nil {
		return Product{}, err
	}
	nb, err := bits.Normalize(b, bits.Binary, 0, 0)
	if err != nil {
		return Product{}, err
	}

	p := Product{A: na, B: nb, Partials: []Partial{}}
	acc := "0"
	for i := len(nb) - 1; i >= 0; i-- {
		if nb[i] != '1' {
			continue
		}
		shift := len(nb) - 1 - i
		partial := na + strings.Repeat("0", shift)
		p.Partials = append(p.Partials, Partial{Shift: shift, Product: partial})

		sum, carry, _ := bits.AddBits(acc, partial)
		if carry == 1 {
			sum = "1" + sum
		}
		acc = sum
	}

	p.Result = trim(acc)
	p.Decimal = decimal(p.Result)
	return p, nil
}

func trim(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}

func decimal(binary string) string {
	n, _ := new(big.Int).SetString(binary, 2)
	return n.String()
}
