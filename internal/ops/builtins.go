package ops

import (
	"slices"

	"github.com/roach88/digilab/internal/arith"
	"github.com/roach88/digilab/internal/ascii"
	"github.com/roach88/digilab/internal/bcd"
	"github.com/roach88/digilab/internal/bits"
	"github.com/roach88/digilab/internal/complement"
	"github.com/roach88/digilab/internal/convert"
	"github.com/roach88/digilab/internal/gray"
	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/parity"
)

// Error cases every calculator can produce.
var commonCases = []string{
	ir.OutputSuccess,
	bits.CodeInvalidSymbol.Case(),
	bits.CodeWidthExceeded.Case(),
	bits.CodeEmptyInput.Case(),
}

func outputs(extra ...bits.ErrorCode) []string {
	out := slices.Clone(commonCases)
	for _, c := range extra {
		out = append(out, c.Case())
	}
	return out
}

func arg(name, typ string) ir.NamedArg {
	return ir.NamedArg{Name: name, Type: typ}
}

func optional(name, typ string) ir.NamedArg {
	return ir.NamedArg{Name: name, Type: typ, Optional: true}
}

func (r *Registry) builtins() []Op {
	return []Op{
		{ir.OpSig{
			Name:    "normalize",
			Summary: "Validate and zero-pad a value in a base",
			Args:    []ir.NamedArg{arg("value", "string"), optional("base", "string"), optional("min_width", "int"), optional("max_width", "int")},
			Outputs: outputs(),
		}, r.normalize},
		{ir.OpSig{
			Name:    "convert",
			Summary: "Convert a value between bases with a positional expansion",
			Args:    []ir.NamedArg{arg("value", "string"), arg("from", "string"), arg("to", "string")},
			Outputs: outputs(),
		}, r.convert},
		{ir.OpSig{
			Name:    "convert.all",
			Summary: "Convert a value into every supported base",
			Args:    []ir.NamedArg{arg("value", "string"), arg("from", "string")},
			Outputs: outputs(),
		}, r.convertAll},
		{ir.OpSig{
			Name:    "twos.subtract",
			Summary: "Subtract by adding the two's complement of the subtrahend",
			Args:    []ir.NamedArg{arg("minuend", "string"), arg("subtrahend", "string"), optional("steps", "bool")},
			Outputs: outputs(),
		}, r.twosSubtract},
		{ir.OpSig{
			Name:    "ones.complement",
			Summary: "Invert every bit",
			Args:    []ir.NamedArg{arg("value", "string")},
			Outputs: outputs(),
		}, r.onesComplement},
		{ir.OpSig{
			Name:    "ones.add",
			Summary: "Add in one's complement with end-around carry",
			Args:    []ir.NamedArg{arg("a", "string"), arg("b", "string")},
			Outputs: outputs(),
		}, r.onesBinary(complement.OnesAdd)},
		{ir.OpSig{
			Name:    "ones.subtract",
			Summary: "Subtract by adding the one's complement",
			Args:    []ir.NamedArg{arg("a", "string"), arg("b", "string")},
			Outputs: outputs(),
		}, r.onesBinary(complement.OnesSubtract)},
		{ir.OpSig{
			Name:    "bcd.encode",
			Summary: "Encode decimal digits as 4-bit groups",
			Args:    []ir.NamedArg{arg("digits", "string")},
			Outputs: outputs(),
		}, r.bcdEncode},
		{ir.OpSig{
			Name:    "bcd.decode",
			Summary: "Decode whitespace-separated BCD groups",
			Args:    []ir.NamedArg{arg("groups", "string")},
			Outputs: outputs(bits.CodeInvalidBCDDigit),
		}, r.bcdDecode},
		{ir.OpSig{
			Name:    "bcd.add",
			Summary: "Add BCD numbers with +6 correction",
			Args:    []ir.NamedArg{arg("a", "string"), arg("b", "string")},
			Outputs: outputs(bits.CodeInvalidBCDDigit),
		}, r.bcdAdd},
		{ir.OpSig{
			Name:    "bcd.subtract",
			Summary: "Subtract BCD numbers with borrow correction",
			Args:    []ir.NamedArg{arg("a", "string"), arg("b", "string")},
			Outputs: outputs(bits.CodeInvalidBCDDigit, bits.CodeNegativeResult),
		}, r.bcdSubtract},
		{ir.OpSig{
			Name:    "gray.encode",
			Summary: "Binary to Gray code",
			Args:    []ir.NamedArg{arg("binary", "string")},
			Outputs: outputs(),
		}, r.grayEncode},
		{ir.OpSig{
			Name:    "gray.decode",
			Summary: "Gray code to binary",
			Args:    []ir.NamedArg{arg("gray", "string")},
			Outputs: outputs(),
		}, r.grayDecode},
		{ir.OpSig{
			Name:    "gray.table",
			Summary: "List binary and Gray codes for a width",
			Args:    []ir.NamedArg{arg("width", "int")},
			Outputs: outputs(),
		}, r.grayTable},
		{ir.OpSig{
			Name:    "parity.bit",
			Summary: "Compute the parity bit for data",
			Args:    []ir.NamedArg{arg("data", "string"), optional("mode", "string")},
			Outputs: outputs(),
		}, r.parityBit},
		{ir.OpSig{
			Name:    "parity.check",
			Summary: "Check a word that includes its parity bit",
			Args:    []ir.NamedArg{arg("data", "string"), optional("mode", "string")},
			Outputs: outputs(),
		}, r.parityCheck},
		{ir.OpSig{
			Name:    "parity.detect",
			Summary: "Compare a sent and received word under a parity scheme",
			Args:    []ir.NamedArg{arg("original", "string"), arg("received", "string"), optional("mode", "string")},
			Outputs: outputs(bits.CodeLengthMismatch),
		}, r.parityDetect},
		{ir.OpSig{
			Name:    "checksum8",
			Summary: "8-bit one's-complement checksum over bytes",
			Args:    []ir.NamedArg{arg("bytes", "strings"), optional("checksum", "string")},
			Outputs: outputs(),
		}, r.checksum8},
		{ir.OpSig{
			Name:    "ascii.char",
			Summary: "Describe the ASCII code of a character",
			Args:    []ir.NamedArg{arg("char", "string")},
			Outputs: outputs(),
		}, r.asciiChar},
		{ir.OpSig{
			Name:    "ascii.code",
			Summary: "Describe an ASCII code by number",
			Args:    []ir.NamedArg{arg("code", "int")},
			Outputs: outputs(),
		}, r.asciiCode},
		{ir.OpSig{
			Name:    "ascii.text",
			Summary: "Encode text as ASCII codes",
			Args:    []ir.NamedArg{arg("text", "string")},
			Outputs: outputs(),
		}, r.asciiText},
		{ir.OpSig{
			Name:    "ascii.range",
			Summary: "List the codes of a named ASCII range",
			Args:    []ir.NamedArg{arg("range", "string")},
			Outputs: outputs(),
		}, r.asciiRange},
		{ir.OpSig{
			Name:    "arith.add",
			Summary: "Unsigned binary addition",
			Args:    []ir.NamedArg{arg("a", "string"), arg("b", "string")},
			Outputs: outputs(),
		}, r.arithAdd},
		{ir.OpSig{
			Name:    "arith.subtract",
			Summary: "Unsigned binary subtraction",
			Args:    []ir.NamedArg{arg("a", "string"), arg("b", "string")},
			Outputs: outputs(bits.CodeNegativeResult),
		}, r.arithSubtract},
		{ir.OpSig{
			Name:    "arith.multiply",
			Summary: "Shift-and-add binary multiplication",
			Args:    []ir.NamedArg{arg("a", "string"), arg("b", "string")},
			Outputs: outputs(),
		}, r.arithMultiply},
	}
}

func (r *Registry) normalize(args ir.IRObject) (ir.IRObject, error) {
	b, err := base(args, "base", bits.Binary)
	if err != nil {
		return nil, err
	}
	maxWidth := int(integer(args, "max_width", int64(r.limits.Max(b))))
	if limit := r.limits.Max(b); limit > 0 && (maxWidth <= 0 || maxWidth > limit) {
		maxWidth = limit
	}
	v, err := bits.Normalize(str(args, "value"), b, int(integer(args, "min_width", 0)), maxWidth)
	if err != nil {
		return nil, err
	}
	return result(map[string]any{"value": v, "base": b})
}

func (r *Registry) convert(args ir.IRObject) (ir.IRObject, error) {
	from, err := base(args, "from", bits.Decimal)
	if err != nil {
		return nil, err
	}
	to, err := base(args, "to", bits.Binary)
	if err != nil {
		return nil, err
	}
	v, err := r.limits.check(str(args, "value"), from)
	if err != nil {
		return nil, err
	}
	res, err := convert.Convert(v, from, to)
	if err != nil {
		return nil, err
	}
	return result(res)
}

func (r *Registry) convertAll(args ir.IRObject) (ir.IRObject, error) {
	from, err := base(args, "from", bits.Decimal)
	if err != nil {
		return nil, err
	}
	v, err := r.limits.check(str(args, "value"), from)
	if err != nil {
		return nil, err
	}
	all, err := convert.All(v, from)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(all))
	for _, res := range all {
		out[res.To.String()] = res.Output
	}
	return result(map[string]any{"input": v, "from": from, "outputs": out})
}

func (r *Registry) twosSubtract(args ir.IRObject) (ir.IRObject, error) {
	a, err := r.limits.check(str(args, "minuend"), bits.Binary)
	if err != nil {
		return nil, err
	}
	b, err := r.limits.check(str(args, "subtrahend"), bits.Binary)
	if err != nil {
		return nil, err
	}
	width := max(r.limits.MinWidth, len(a), len(b))
	sub, err := complement.TwosSubtract(bits.PadLeft(a, width), bits.PadLeft(b, width))
	if err != nil {
		return nil, err
	}
	if !flag(args, "steps") {
		return result(sub)
	}
	return result(struct {
		complement.Subtraction
		Steps []complement.Step `json:"steps"`
	}{sub, slices.Collect(sub.Steps())})
}

func (r *Registry) onesComplement(args ir.IRObject) (ir.IRObject, error) {
	v, err := r.limits.check(str(args, "value"), bits.Binary)
	if err != nil {
		return nil, err
	}
	ones, err := complement.Ones(v)
	if err != nil {
		return nil, err
	}
	return result(map[string]string{"value": v, "ones": ones})
}

func (r *Registry) onesBinary(fn func(a, b string) (complement.OnesSum, error)) Handler {
	return func(args ir.IRObject) (ir.IRObject, error) {
		a, b, err := r.binaryPair(args)
		if err != nil {
			return nil, err
		}
		sum, err := fn(a, b)
		if err != nil {
			return nil, err
		}
		return result(sum)
	}
}

func (r *Registry) bcdEncode(args ir.IRObject) (ir.IRObject, error) {
	digits, err := r.limits.check(str(args, "digits"), bits.Decimal)
	if err != nil {
		return nil, err
	}
	groups, err := bcd.Encode(digits)
	if err != nil {
		return nil, err
	}
	return result(map[string]any{"digits": digits, "groups": groups, "formatted": bcd.Format(groups)})
}

// groups parses a BCD operand and bounds its digit count by the decimal limit.
func (r *Registry) groups(args ir.IRObject, key string) ([]string, error) {
	s := str(args, key)
	groups, err := bcd.ParseGroups(s)
	if err != nil {
		return nil, err
	}
	if limit := r.limits.Decimal; limit > 0 && len(groups) > limit {
		return nil, bits.NewWidthExceeded(s, limit)
	}
	return groups, nil
}

func (r *Registry) bcdDecode(args ir.IRObject) (ir.IRObject, error) {
	groups, err := r.groups(args, "groups")
	if err != nil {
		return nil, err
	}
	digits, err := bcd.Decode(groups)
	if err != nil {
		return nil, err
	}
	return result(map[string]any{"groups": groups, "digits": digits})
}

func (r *Registry) bcdAdd(args ir.IRObject) (ir.IRObject, error) {
	a, err := r.groups(args, "a")
	if err != nil {
		return nil, err
	}
	b, err := r.groups(args, "b")
	if err != nil {
		return nil, err
	}
	sum, err := bcd.Add(a, b)
	if err != nil {
		return nil, err
	}
	return result(sum)
}

func (r *Registry) bcdSubtract(args ir.IRObject) (ir.IRObject, error) {
	a, err := r.groups(args, "a")
	if err != nil {
		return nil, err
	}
	b, err := r.groups(args, "b")
	if err != nil {
		return nil, err
	}
	diff, err := bcd.Subtract(a, b)
	if err != nil {
		return nil, err
	}
	return result(diff)
}

func (r *Registry) grayEncode(args ir.IRObject) (ir.IRObject, error) {
	b, err := r.limits.check(str(args, "binary"), bits.Binary)
	if err != nil {
		return nil, err
	}
	g, err := gray.Encode(b)
	if err != nil {
		return nil, err
	}
	return result(map[string]string{"binary": b, "gray": g})
}

func (r *Registry) grayDecode(args ir.IRObject) (ir.IRObject, error) {
	g, err := r.limits.check(str(args, "gray"), bits.Binary)
	if err != nil {
		return nil, err
	}
	b, err := gray.Decode(g)
	if err != nil {
		return nil, err
	}
	return result(map[string]string{"binary": b, "gray": g})
}

func (r *Registry) grayTable(args ir.IRObject) (ir.IRObject, error) {
	rows, err := gray.Table(int(integer(args, "width", 0)))
	if err != nil {
		return nil, err
	}
	return result(map[string]any{"rows": rows})
}

func (r *Registry) parityBit(args ir.IRObject) (ir.IRObject, error) {
	mode, err := r.mode(args)
	if err != nil {
		return nil, err
	}
	data, err := r.limits.check(str(args, "data"), bits.Binary)
	if err != nil {
		return nil, err
	}
	bit, err := parity.Bit(data, mode)
	if err != nil {
		return nil, err
	}
	return result(map[string]any{
		"data": data,
		"mode": mode,
		"ones": bits.CountOnes(data),
		"bit":  bit,
		"word": data + bit,
	})
}

func (r *Registry) parityCheck(args ir.IRObject) (ir.IRObject, error) {
	mode, err := r.mode(args)
	if err != nil {
		return nil, err
	}
	data, err := r.limits.check(str(args, "data"), bits.Binary)
	if err != nil {
		return nil, err
	}
	check, err := parity.CheckWord(data, mode)
	if err != nil {
		return nil, err
	}
	return result(check)
}

func (r *Registry) parityDetect(args ir.IRObject) (ir.IRObject, error) {
	mode, err := r.mode(args)
	if err != nil {
		return nil, err
	}
	original, err := r.limits.check(str(args, "original"), bits.Binary)
	if err != nil {
		return nil, err
	}
	received, err := r.limits.check(str(args, "received"), bits.Binary)
	if err != nil {
		return nil, err
	}
	det, err := parity.Detect(original, received, mode)
	if err != nil {
		return nil, err
	}
	return result(det)
}

func (r *Registry) checksum8(args ir.IRObject) (ir.IRObject, error) {
	data, _ := args.Strings("bytes")
	sum, err := parity.Checksum8(data)
	if err != nil {
		return nil, err
	}
	cs, ok := args.String("checksum")
	if !ok {
		return result(sum)
	}
	verified, err := parity.VerifyChecksum(data, cs)
	if err != nil {
		return nil, err
	}
	return result(struct {
		parity.Checksum
		Received string `json:"received"`
		Verified bool   `json:"verified"`
	}{sum, cs, verified})
}

func (r *Registry) asciiChar(args ir.IRObject) (ir.IRObject, error) {
	code, err := ascii.FromChar(str(args, "char"))
	if err != nil {
		return nil, err
	}
	return result(code)
}

func (r *Registry) asciiCode(args ir.IRObject) (ir.IRObject, error) {
	code, err := ascii.FromCode(int(integer(args, "code", -1)))
	if err != nil {
		return nil, err
	}
	return result(code)
}

func (r *Registry) asciiText(args ir.IRObject) (ir.IRObject, error) {
	text := str(args, "text")
	codes, err := ascii.EncodeText(text)
	if err != nil {
		return nil, err
	}
	return result(map[string]any{"text": text, "codes": codes})
}

func (r *Registry) asciiRange(args ir.IRObject) (ir.IRObject, error) {
	codes, err := ascii.Range(str(args, "range"))
	if err != nil {
		return nil, &ArgError{Field: "range", Message: err.Error()}
	}
	return result(map[string]any{"codes": codes})
}

func (r *Registry) binaryPair(args ir.IRObject) (string, string, error) {
	a, err := r.limits.check(str(args, "a"), bits.Binary)
	if err != nil {
		return "", "", err
	}
	b, err := r.limits.check(str(args, "b"), bits.Binary)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}

func (r *Registry) arithAdd(args ir.IRObject) (ir.IRObject, error) {
	a, b, err := r.binaryPair(args)
	if err != nil {
		return nil, err
	}
	sum, err := arith.Add(a, b)
	if err != nil {
		return nil, err
	}
	return result(sum)
}

func (r *Registry) arithSubtract(args ir.IRObject) (ir.IRObject, error) {
	a, b, err := r.binaryPair(args)
	if err != nil {
		return nil, err
	}
	diff, err := arith.Subtract(a, b)
	if err != nil {
		return nil, err
	}
	return result(diff)
}

func (r *Registry) arithMultiply(args ir.IRObject) (ir.IRObject, error) {
	a, b, err := r.binaryPair(args)
	if err != nil {
		return nil, err
	}
	prod, err := arith.Multiply(a, b)
	if err != nil {
		return nil, err
	}
	return result(prod)
}
