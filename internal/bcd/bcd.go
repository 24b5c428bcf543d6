// Package bcd encodes decimal digits as binary-coded decimal and performs
// digit-wise BCD addition and subtraction with the 6-correction.
package bcd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/digilab/internal/bits"
)

// GroupWidth is the number of bits per BCD digit.
const GroupWidth = 4

const correction = 6

// DigitStep traces one digit column of a BCD addition or subtraction.
// Position 0 is the least significant digit. For subtraction CarryIn and
// CarryOut are borrows and Raw may be negative.
type DigitStep struct {
	Position  int    `json:"position"`
	A         int    `json:"a"`
	B         int    `json:"b"`
	CarryIn   int    `json:"carry_in"`
	Raw       int    `json:"raw"`
	Adjusted  bool   `json:"adjusted"`
	Corrected int    `json:"corrected"`
	CarryOut  int    `json:"carry_out"`
	Group     string `json:"group"`
}

// Sum is the outcome of Add.
type Sum struct {
	A                 []string    `json:"a"`
	B                 []string    `json:"b"`
	Groups            []string    `json:"groups"`
	Decimal           string      `json:"decimal"`
	CorrectionApplied bool        `json:"correction_applied"`
	Steps             []DigitStep `json:"steps"`
}

// Difference is the outcome of Subtract.
type Difference struct {
	A                 []string    `json:"a"`
	B                 []string    `json:"b"`
	Groups            []string    `json:"groups"`
	Decimal           string      `json:"decimal"`
	CorrectionApplied bool        `json:"correction_applied"`
	Steps             []DigitStep `json:"steps"`
}

// Encode returns one 4-bit group per decimal digit of digits.
func Encode(digits string) ([]string, error) {
	norm, err := bits.Normalize(digits, bits.Decimal, 0, 0)
	if err != nil {
		return nil, err
	}
	groups := make([]string, len(norm))
	for i := 0; i < len(norm); i++ {
		groups[i] = group(int(norm[i] - '0'))
	}
	return groups, nil
}

// Format joins groups with single spaces.
func Format(groups []string) string {
	return strings.Join(groups, " ")
}

// ParseGroups splits s on whitespace and validates every group.
// Groups shorter than four bits are zero-padded.
func ParseGroups(s string) ([]string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, bits.NewEmptyInput("BCD groups")
	}
	groups := make([]string, len(fields))
	for i, f := range fields {
		g, err := validGroup(f)
		if err != nil {
			return nil, err
		}
		groups[i] = g
	}
	return groups, nil
}

// Decode renders groups as a decimal string. Leading zero digits are kept.
func Decode(groups []string) (string, error) {
	if len(groups) == 0 {
		return "", bits.NewEmptyInput("BCD groups")
	}
	var b strings.Builder
	for _, g := range groups {
		v, err := digit(g)
		if err != nil {
			return "", err
		}
		b.WriteByte('0' + byte(v))
	}
	return b.String(), nil
}

// Add adds two BCD numbers digit by digit from the least significant group.
//
// A raw digit sum above 9 gets 6 added; the carry into the next digit is the
// corrected sum divided by 16. A carry out of the top digit becomes a new
// leading 0001 group.
func Add(a, b []string) (Sum, error) {
	da, db, err := operands(a, b)
	if err != nil {
		return Sum{}, err
	}

	n := len(da)
	out := make([]string, n)
	steps := make([]DigitStep, 0, n)
	corrected := false
	carry := 0
	for i := n - 1; i >= 0; i-- {
		s := DigitStep{Position: n - 1 - i, A: da[i], B: db[i], CarryIn: carry}
		s.Raw = s.A + s.B + s.CarryIn
		s.Corrected = s.Raw
		if s.Raw > 9 {
			s.Corrected += correction
			s.Adjusted = true
			corrected = true
		}
		s.CarryOut = s.Corrected / 16
		s.Group = group(s.Corrected % 16)
		out[i] = s.Group
		carry = s.CarryOut
		steps = append(steps, s)
	}
	if carry == 1 {
		out = append([]string{group(1)}, out...)
	}

	dec, _ := Decode(out)
	return Sum{
		A:                 padGroups(a, n),
		B:                 padGroups(b, n),
		Groups:            out,
		Decimal:           dec,
		CorrectionApplied: corrected,
		Steps:             steps,
	}, nil
}

// Subtract computes a - b digit by digit with borrow.
//
// A digit that goes negative borrows from the next digit and has 6
// subtracted in 4-bit arithmetic, which brings it back into 0..9. A borrow
// out of the top digit means b > a and fails with NegativeResult. Leading
// zero groups of the difference are dropped, keeping at least one.
func Subtract(a, b []string) (Difference, error) {
	da, db, err := operands(a, b)
	if err != nil {
		return Difference{}, err
	}

	n := len(da)
	out := make([]string, n)
	steps := make([]DigitStep, 0, n)
	corrected := false
	borrow := 0
	for i := n - 1; i >= 0; i-- {
		s := DigitStep{Position: n - 1 - i, A: da[i], B: db[i], CarryIn: borrow}
		s.Raw = s.A - s.B - s.CarryIn
		s.Corrected = s.Raw
		if s.Raw < 0 {
			// (raw mod 16) - 6
			s.Corrected = s.Raw + 16 - correction
			s.Adjusted = true
			s.CarryOut = 1
			corrected = true
		}
		s.Group = group(s.Corrected)
		out[i] = s.Group
		borrow = s.CarryOut
		steps = append(steps, s)
	}
	if borrow == 1 {
		ma, _ := Decode(a)
		mb, _ := Decode(b)
		return Difference{}, bits.NewNegativeResult(ma, mb)
	}

	for len(out) > 1 && out[0] == group(0) {
		out = out[1:]
	}
	dec, _ := Decode(out)
	return Difference{
		A:                 padGroups(a, n),
		B:                 padGroups(b, n),
		Groups:            out,
		Decimal:           dec,
		CorrectionApplied: corrected,
		Steps:             steps,
	}, nil
}

// operands validates both group lists and returns their digits left-padded
// with zeros to a common length.
func operands(a, b []string) ([]int, []int, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, nil, bits.NewEmptyInput("BCD operand")
	}
	n := max(len(a), len(b))
	da, err := digits(a, n)
	if err != nil {
		return nil, nil, err
	}
	db, err := digits(b, n)
	if err != nil {
		return nil, nil, err
	}
	return da, db, nil
}

func digits(groups []string, n int) ([]int, error) {
	out := make([]int, n)
	off := n - len(groups)
	for i, g := range groups {
		v, err := digit(g)
		if err != nil {
			return nil, err
		}
		out[off+i] = v
	}
	return out, nil
}

func padGroups(groups []string, n int) []string {
	out := make([]string, 0, n)
	for range n - len(groups) {
		out = append(out, group(0))
	}
	for _, g := range groups {
		norm, _ := validGroup(g)
		out = append(out, norm)
	}
	return out
}

func validGroup(g string) (string, error) {
	norm, err := bits.Normalize(g, bits.Binary, GroupWidth, GroupWidth)
	if err != nil {
		return "", err
	}
	v, _ := strconv.ParseUint(norm, 2, 8)
	if v > 9 {
		return "", &bits.Error{
			Code:     bits.CodeInvalidBCDDigit,
			Message:  fmt.Sprintf("group value %d exceeds 9", v),
			Input:    g,
			Position: -1,
		}
	}
	return norm, nil
}

func digit(g string) (int, error) {
	norm, err := validGroup(g)
	if err != nil {
		return 0, err
	}
	v, _ := strconv.ParseUint(norm, 2, 8)
	return int(v), nil
}

func group(v int) string {
	return fmt.Sprintf("%04b", v)
}
