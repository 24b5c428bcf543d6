package ops

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/digilab/internal/bits"
	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/parity"
)

func call(t *testing.T, r *Registry, name string, args ir.IRObject) (ir.IRObject, error) {
	t.Helper()
	op, ok := r.Lookup(name)
	require.True(t, ok, "operation %q not registered", name)
	require.Empty(t, op.Sig.CheckArgs(args), "args for %q", name)
	return op.Handler(args)
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	names := r.Names()

	assert.True(t, slices.IsSorted(names))
	for _, want := range []string{
		"normalize", "convert", "convert.all", "twos.subtract",
		"ones.complement", "ones.add", "ones.subtract",
		"bcd.encode", "bcd.decode", "bcd.add", "bcd.subtract",
		"gray.encode", "gray.decode", "gray.table",
		"parity.bit", "parity.check", "parity.detect", "checksum8",
		"ascii.char", "ascii.code", "ascii.text", "ascii.range",
		"arith.add", "arith.subtract", "arith.multiply",
	} {
		assert.Contains(t, names, want)
	}
	assert.Len(t, r.Sigs(), len(names))
}

func TestRegistry_SignaturesValid(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	for _, sig := range r.Sigs() {
		assert.Empty(t, sig.Validate(), sig.Name)
	}
}

func TestRegistry_RegisterRejects(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	noop := func(ir.IRObject) (ir.IRObject, error) { return ir.IRObject{}, nil }

	err := r.Register(ir.OpSig{Name: "convert", Outputs: []string{ir.OutputSuccess}}, noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	err = r.Register(ir.OpSig{Name: "custom"}, noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Success")

	require.NoError(t, r.Register(ir.OpSig{Name: "custom", Outputs: []string{ir.OutputSuccess}}, noop))
	_, ok := r.Lookup("custom")
	assert.True(t, ok)
}

func TestConvert(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	out, err := call(t, r, "convert", ir.IRObject{
		"value": ir.IRString("1101"),
		"from":  ir.IRString("binary"),
		"to":    ir.IRString("decimal"),
	})
	require.NoError(t, err)

	v, _ := out.String("output")
	assert.Equal(t, "13", v)
	from, _ := out.String("from")
	assert.Equal(t, "binary", from)
}

func TestConvert_UnknownBase(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	_, err := call(t, r, "convert", ir.IRObject{
		"value": ir.IRString("1"),
		"from":  ir.IRString("base3"),
		"to":    ir.IRString("decimal"),
	})
	var argErr *ArgError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "from", argErr.Field)
}

func TestConvertAll(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	out, err := call(t, r, "convert.all", ir.IRObject{
		"value": ir.IRString("255"),
		"from":  ir.IRString("decimal"),
	})
	require.NoError(t, err)
	outputs, ok := out["outputs"].(ir.IRObject)
	require.True(t, ok)
	assert.Equal(t, ir.IRObject{
		"binary":  ir.IRString("11111111"),
		"octal":   ir.IRString("377"),
		"decimal": ir.IRString("255"),
		"hex":     ir.IRString("FF"),
	}, outputs)
}

func TestLimits_WidthExceeded(t *testing.T) {
	r := NewRegistry(Limits{Binary: 4, Octal: 8, Decimal: 2, Hex: 8, MinWidth: 4, Parity: parity.Even})

	_, err := call(t, r, "gray.encode", ir.IRObject{"binary": ir.IRString("10101")})
	assert.ErrorIs(t, err, bits.ErrWidthExceeded)

	_, err = call(t, r, "convert", ir.IRObject{
		"value": ir.IRString("123"),
		"from":  ir.IRString("decimal"),
		"to":    ir.IRString("binary"),
	})
	assert.ErrorIs(t, err, bits.ErrWidthExceeded)

	_, err = call(t, r, "bcd.decode", ir.IRObject{"groups": ir.IRString("0001 0010 0011")})
	assert.ErrorIs(t, err, bits.ErrWidthExceeded)
}

func TestTwosSubtract(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	out, err := call(t, r, "twos.subtract", ir.IRObject{
		"minuend":    ir.IRString("1010"),
		"subtrahend": ir.IRString("0011"),
	})
	require.NoError(t, err)

	res, _ := out.String("result")
	assert.Equal(t, "0111", res)
	overflow, _ := out.Bool("overflow_carry")
	assert.True(t, overflow)
	_, hasSteps := out["steps"]
	assert.False(t, hasSteps)
}

func TestTwosSubtract_StepsAndMinWidth(t *testing.T) {
	limits := DefaultLimits()
	limits.MinWidth = 8
	r := NewRegistry(limits)

	out, err := call(t, r, "twos.subtract", ir.IRObject{
		"minuend":    ir.IRString("11"),
		"subtrahend": ir.IRString("1"),
		"steps":      ir.IRBool(true),
	})
	require.NoError(t, err)

	res, _ := out.String("result")
	assert.Equal(t, "00000010", res)
	width, _ := out.Int("width")
	assert.Equal(t, int64(8), width)

	steps, ok := out["steps"].(ir.IRArray)
	require.True(t, ok)
	// pad, ones, twos, 8 columns, overflow, result
	assert.Len(t, steps, 13)
}

func TestOnes(t *testing.T) {
	r := NewRegistry(DefaultLimits())

	out, err := call(t, r, "ones.complement", ir.IRObject{"value": ir.IRString("1010")})
	require.NoError(t, err)
	ones, _ := out.String("ones")
	assert.Equal(t, "0101", ones)

	out, err = call(t, r, "ones.add", ir.IRObject{"a": ir.IRString("0101"), "b": ir.IRString("1100")})
	require.NoError(t, err)
	final, _ := out.String("final")
	assert.Equal(t, "0010", final)
	eac, _ := out.Bool("end_around_carry")
	assert.True(t, eac)
}

func TestBCD(t *testing.T) {
	r := NewRegistry(DefaultLimits())

	out, err := call(t, r, "bcd.encode", ir.IRObject{"digits": ir.IRString("1234")})
	require.NoError(t, err)
	formatted, _ := out.String("formatted")
	assert.Equal(t, "0001 0010 0011 0100", formatted)

	out, err = call(t, r, "bcd.add", ir.IRObject{"a": ir.IRString("1001 0101"), "b": ir.IRString("1000")})
	require.NoError(t, err)
	dec, _ := out.String("decimal")
	assert.Equal(t, "103", dec)

	_, err = call(t, r, "bcd.decode", ir.IRObject{"groups": ir.IRString("1010")})
	assert.ErrorIs(t, err, bits.ErrInvalidBCDDigit)

	_, err = call(t, r, "bcd.subtract", ir.IRObject{"a": ir.IRString("0101"), "b": ir.IRString("1000")})
	assert.ErrorIs(t, err, bits.ErrNegativeResult)
}

func TestGrayTable(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	out, err := call(t, r, "gray.table", ir.IRObject{"width": ir.IRInt(3)})
	require.NoError(t, err)
	rows, ok := out["rows"].(ir.IRArray)
	require.True(t, ok)
	assert.Len(t, rows, 8)

	_, err = call(t, r, "gray.table", ir.IRObject{"width": ir.IRInt(0)})
	assert.ErrorIs(t, err, bits.ErrWidthExceeded)
}

func TestParity_DefaultMode(t *testing.T) {
	limits := DefaultLimits()
	limits.Parity = parity.Odd
	r := NewRegistry(limits)

	out, err := call(t, r, "parity.bit", ir.IRObject{"data": ir.IRString("1011")})
	require.NoError(t, err)
	bit, _ := out.String("bit")
	assert.Equal(t, "0", bit)
	mode, _ := out.String("mode")
	assert.Equal(t, "odd", mode)

	out, err = call(t, r, "parity.bit", ir.IRObject{"data": ir.IRString("1011"), "mode": ir.IRString("even")})
	require.NoError(t, err)
	word, _ := out.String("word")
	assert.Equal(t, "10111", word)

	_, err = call(t, r, "parity.bit", ir.IRObject{"data": ir.IRString("1"), "mode": ir.IRString("mark")})
	var argErr *ArgError
	assert.ErrorAs(t, err, &argErr)
}

func TestParityDetect(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	out, err := call(t, r, "parity.detect", ir.IRObject{
		"original": ir.IRString("10100"),
		"received": ir.IRString("10000"),
	})
	require.NoError(t, err)
	detected, _ := out.Bool("error_detected")
	assert.True(t, detected)

	_, err = call(t, r, "parity.detect", ir.IRObject{
		"original": ir.IRString("101"),
		"received": ir.IRString("1010"),
	})
	assert.ErrorIs(t, err, bits.ErrLengthMismatch)
}

func TestChecksum8(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	args := ir.IRObject{"bytes": ir.Strings("10010110", "01101001", "10011011")}

	out, err := call(t, r, "checksum8", args)
	require.NoError(t, err)
	cs, _ := out.String("checksum")
	assert.Equal(t, "01100101", cs)
	_, hasVerified := out["verified"]
	assert.False(t, hasVerified)

	args["checksum"] = ir.IRString(cs)
	out, err = call(t, r, "checksum8", args)
	require.NoError(t, err)
	verified, _ := out.Bool("verified")
	assert.True(t, verified)
}

func TestASCII(t *testing.T) {
	r := NewRegistry(DefaultLimits())

	out, err := call(t, r, "ascii.char", ir.IRObject{"char": ir.IRString("A")})
	require.NoError(t, err)
	hex, _ := out.String("hex")
	assert.Equal(t, "41", hex)

	out, err = call(t, r, "ascii.code", ir.IRObject{"code": ir.IRInt(10)})
	require.NoError(t, err)
	name, _ := out.String("name")
	assert.Equal(t, "LF", name)

	_, err = call(t, r, "ascii.code", ir.IRObject{"code": ir.IRInt(200)})
	assert.ErrorIs(t, err, bits.ErrInvalidSymbol)

	out, err = call(t, r, "ascii.text", ir.IRObject{"text": ir.IRString("Hi")})
	require.NoError(t, err)
	codes, _ := out["codes"].(ir.IRArray)
	assert.Len(t, codes, 2)

	out, err = call(t, r, "ascii.range", ir.IRObject{"range": ir.IRString("control")})
	require.NoError(t, err)
	codes, _ = out["codes"].(ir.IRArray)
	assert.Len(t, codes, 32)

	_, err = call(t, r, "ascii.range", ir.IRObject{"range": ir.IRString("latin1")})
	var argErr *ArgError
	assert.True(t, errors.As(err, &argErr))
}

func TestArith(t *testing.T) {
	r := NewRegistry(DefaultLimits())

	out, err := call(t, r, "arith.add", ir.IRObject{"a": ir.IRString("1111"), "b": ir.IRString("1")})
	require.NoError(t, err)
	res, _ := out.String("result")
	assert.Equal(t, "10000", res)

	out, err = call(t, r, "arith.multiply", ir.IRObject{"a": ir.IRString("101"), "b": ir.IRString("11")})
	require.NoError(t, err)
	res, _ = out.String("result")
	assert.Equal(t, "1111", res)

	_, err = call(t, r, "arith.subtract", ir.IRObject{"a": ir.IRString("1"), "b": ir.IRString("10")})
	assert.ErrorIs(t, err, bits.ErrNegativeResult)
}

func TestNormalize(t *testing.T) {
	r := NewRegistry(DefaultLimits())
	out, err := call(t, r, "normalize", ir.IRObject{
		"value":     ir.IRString("ff"),
		"base":      ir.IRString("hex"),
		"min_width": ir.IRInt(4),
	})
	require.NoError(t, err)
	v, _ := out.String("value")
	assert.Equal(t, "00FF", v)
}
