package convert

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/digilab/internal/bits"
)

func TestConvert_BinaryToDecimal(t *testing.T) {
	r, err := Convert("1101", bits.Binary, bits.Decimal)
	require.NoError(t, err)
	assert.Equal(t, "13", r.Output)
	assert.Equal(t, "13", r.Decimal)

	require.Len(t, r.Terms, 4)
	// Terms are in input order; the leftmost symbol has the highest position.
	assert.Equal(t, "1", r.Terms[0].Symbol)
	assert.Equal(t, 3, r.Terms[0].Position)
	assert.Equal(t, int64(8), r.Terms[0].Weight.Int64())
	assert.Equal(t, int64(8), r.Terms[0].Contribution.Int64())
	assert.Equal(t, int64(0), r.Terms[2].Contribution.Int64())
	assert.Equal(t, int64(1), r.Terms[3].Weight.Int64())
}

func TestConvert_Table(t *testing.T) {
	tests := []struct {
		value    string
		from, to bits.Base
		want     string
	}{
		{"255", bits.Decimal, bits.Hex, "FF"},
		{"255", bits.Decimal, bits.Binary, "11111111"},
		{"377", bits.Octal, bits.Decimal, "255"},
		{"ff", bits.Hex, bits.Octal, "377"},
		{"0", bits.Decimal, bits.Binary, "0"},
		{"0000", bits.Binary, bits.Hex, "0"},
		{"1010", bits.Binary, bits.Binary, "1010"},
		{"00101", bits.Binary, bits.Binary, "101"},
		{"7", bits.Octal, bits.Binary, "111"},
		{"DEAD", bits.Hex, bits.Decimal, "57005"},
	}

	for _, tt := range tests {
		t.Run(tt.value+"_"+tt.from.String()+"_"+tt.to.String(), func(t *testing.T) {
			r, err := Convert(tt.value, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Output)
		})
	}
}

func TestConvert_LargeValues(t *testing.T) {
	// 2^100
	value := "1" + strings.Repeat("0", 100)
	r, err := Convert(value, bits.Binary, bits.Decimal)
	require.NoError(t, err)

	want := new(big.Int).Lsh(big.NewInt(1), 100)
	assert.Equal(t, want.String(), r.Output)
}

func TestConvert_TermsSumToValue(t *testing.T) {
	inputs := []struct {
		value string
		base  bits.Base
	}{
		{"10110111", bits.Binary},
		{"7654", bits.Octal},
		{"90210", bits.Decimal},
		{"C0FFEE", bits.Hex},
		{"0", bits.Hex},
	}

	for _, in := range inputs {
		r, err := Convert(in.value, in.base, bits.Decimal)
		require.NoError(t, err)

		n, ok := new(big.Int).SetString(r.Decimal, 10)
		require.True(t, ok)
		assert.Equal(t, 0, SumTerms(r.Terms).Cmp(n), "terms of %s", in.value)

		for _, term := range r.Terms {
			w := new(big.Int).Exp(big.NewInt(int64(in.base)), big.NewInt(int64(term.Position)), nil)
			assert.Equal(t, 0, w.Cmp(term.Weight))
		}
	}
}

func TestConvert_Divisions(t *testing.T) {
	r, err := Convert("13", bits.Decimal, bits.Binary)
	require.NoError(t, err)
	assert.Equal(t, "1101", r.Output)

	require.Len(t, r.Divisions, 4)
	assert.Equal(t, int64(13), r.Divisions[0].Dividend.Int64())
	assert.Equal(t, int64(6), r.Divisions[0].Quotient.Int64())
	assert.Equal(t, 1, r.Divisions[0].Remainder)
	assert.Equal(t, int64(1), r.Divisions[3].Dividend.Int64())
	assert.Equal(t, int64(0), r.Divisions[3].Quotient.Int64())

	zero, err := Convert("0", bits.Decimal, bits.Hex)
	require.NoError(t, err)
	assert.Empty(t, zero.Divisions)
}

func TestConvert_Invalid(t *testing.T) {
	_, err := Convert("12", bits.Binary, bits.Decimal)
	assert.ErrorIs(t, err, bits.ErrInvalidSymbol)

	_, err = Convert("", bits.Decimal, bits.Hex)
	assert.ErrorIs(t, err, bits.ErrEmptyInput)

	_, err = Convert("1", bits.Binary, bits.Base(7))
	assert.Error(t, err)
}

func TestAll(t *testing.T) {
	results, err := All("42", bits.Decimal)
	require.NoError(t, err)
	require.Len(t, results, 4)

	got := map[bits.Base]string{}
	for _, r := range results {
		got[r.To] = r.Output
	}
	assert.Equal(t, map[bits.Base]string{
		bits.Binary:  "101010",
		bits.Octal:   "52",
		bits.Decimal: "42",
		bits.Hex:     "2A",
	}, got)
}
