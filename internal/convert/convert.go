// Package convert translates non-negative integers between binary, octal,
// decimal and hexadecimal, keeping the positional breakdown used to explain
// the result.
package convert

import (
	"math/big"

	"github.com/roach88/digilab/internal/bits"
)

// Term is one positional term of the input: Contribution = value(Symbol) * Weight.
// Position 0 is the least significant symbol.
type Term struct {
	Symbol       string   `json:"symbol"`
	Position     int      `json:"position"`
	Weight       *big.Int `json:"weight"`
	Contribution *big.Int `json:"contribution"`
}

// Division is one step of rendering the value in the target base by
// repeated division.
type Division struct {
	Dividend  *big.Int `json:"dividend"`
	Quotient  *big.Int `json:"quotient"`
	Remainder int      `json:"remainder"`
	Digit     string   `json:"digit"`
}

// Result holds a conversion and its explanation trace.
type Result struct {
	Input     string     `json:"input"`
	From      bits.Base  `json:"from"`
	To        bits.Base  `json:"to"`
	Output    string     `json:"output"`
	Decimal   string     `json:"decimal"`
	Terms     []Term     `json:"terms"`
	Divisions []Division `json:"divisions"`
}

// Convert parses value in base from and renders it in base to.
//
// There is no upper bound on magnitude. The output carries no leading
// zeros; zero renders as "0".
func Convert(value string, from, to bits.Base) (Result, error) {
	norm, err := bits.Normalize(value, from, 1, 0)
	if err != nil {
		return Result{}, err
	}
	if !to.Valid() {
		return Result{}, &bits.Error{Code: bits.CodeInvalidSymbol, Message: "unsupported target base " + to.String(), Position: -1}
	}

	n, terms := parse(norm, from)
	out, divisions := render(n, to)

	return Result{
		Input:     norm,
		From:      from,
		To:        to,
		Output:    out,
		Decimal:   n.String(),
		Terms:     terms,
		Divisions: divisions,
	}, nil
}

// All converts value from base from into every supported base, in
// ascending base order.
func All(value string, from bits.Base) ([]Result, error) {
	results := make([]Result, 0, len(bits.Bases))
	for _, to := range bits.Bases {
		r, err := Convert(value, from, to)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// SumTerms adds the contributions of terms. For any Result it equals the
// parsed input value.
func SumTerms(terms []Term) *big.Int {
	sum := new(big.Int)
	for _, t := range terms {
		sum.Add(sum, t.Contribution)
	}
	return sum
}

// parse evaluates a validated digit string and records one term per symbol.
func parse(s string, base bits.Base) (*big.Int, []Term) {
	radix := big.NewInt(int64(base))
	weight := big.NewInt(1)
	n := new(big.Int)
	terms := make([]Term, len(s))

	for p := 0; p < len(s); p++ {
		i := len(s) - 1 - p
		v, _ := base.Value(s[i])
		contribution := new(big.Int).Mul(big.NewInt(int64(v)), weight)
		n.Add(n, contribution)
		terms[i] = Term{
			Symbol:       string(s[i]),
			Position:     p,
			Weight:       new(big.Int).Set(weight),
			Contribution: contribution,
		}
		weight.Mul(weight, radix)
	}
	return n, terms
}

// render formats n in base by repeated division, least significant digit first.
func render(n *big.Int, base bits.Base) (string, []Division) {
	if n.Sign() == 0 {
		return "0", []Division{}
	}

	radix := big.NewInt(int64(base))
	cur := new(big.Int).Set(n)
	var digits []byte
	var divisions []Division
	for cur.Sign() > 0 {
		q, r := new(big.Int).QuoRem(cur, radix, new(big.Int))
		digit := base.Symbol(int(r.Int64()))
		divisions = append(divisions, Division{
			Dividend:  new(big.Int).Set(cur),
			Quotient:  q,
			Remainder: int(r.Int64()),
			Digit:     string(digit),
		})
		digits = append(digits, digit)
		cur = q
	}

	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits), divisions
}
