package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
)

// IRValue is the sealed set of values allowed in args and results.
// No float type exists.
type IRValue interface {
	irValue()
}

// IRNull is JSON null. It can be decoded but is rejected by MarshalCanonical.
type IRNull struct{}

// IRString is a string value.
type IRString string

// IRInt is an integer value.
type IRInt int64

// IRBool is a boolean value.
type IRBool bool

// IRArray is an ordered list of values.
type IRArray []IRValue

// IRObject maps keys to values. Iterate with SortedKeys for a stable order.
type IRObject map[string]IRValue

func (IRNull) irValue()   {}
func (IRString) irValue() {}
func (IRInt) irValue()    {}
func (IRBool) irValue()   {}
func (IRArray) irValue()  {}
func (IRObject) irValue() {}

// MarshalJSON implements json.Marshaler.
func (IRNull) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// SortedKeys returns the keys ordered by UTF-16 code units, the order
// RFC 8785 requires. Byte order differs for keys outside the BMP.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// String returns the string at key.
func (obj IRObject) String(key string) (string, bool) {
	s, ok := obj[key].(IRString)
	return string(s), ok
}

// Int returns the integer at key.
func (obj IRObject) Int(key string) (int64, bool) {
	n, ok := obj[key].(IRInt)
	return int64(n), ok
}

// Bool returns the boolean at key.
func (obj IRObject) Bool(key string) (bool, bool) {
	b, ok := obj[key].(IRBool)
	return bool(b), ok
}

// Strings returns the array at key when every element is a string.
func (obj IRObject) Strings(key string) ([]string, bool) {
	arr, ok := obj[key].(IRArray)
	if !ok {
		return nil, false
	}
	out := make([]string, len(arr))
	for i, v := range arr {
		s, ok := v.(IRString)
		if !ok {
			return nil, false
		}
		out[i] = string(s)
	}
	return out, true
}

// Strings builds an IRArray of strings.
func Strings(ss ...string) IRArray {
	arr := make(IRArray, len(ss))
	for i, s := range ss {
		arr[i] = IRString(s)
	}
	return arr
}

// MarshalJSON writes obj with sorted keys. It is stable but not canonical;
// use MarshalCanonical for hashing.
func (obj IRObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := MarshalIRValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIRValue encodes any IRValue as JSON.
func MarshalIRValue(v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case IRNull:
		return []byte("null"), nil
	case IRString:
		return json.Marshal(string(val))
	case IRInt:
		return json.Marshal(int64(val))
	case IRBool:
		return json.Marshal(bool(val))
	case IRObject:
		return val.MarshalJSON()
	case IRArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := MarshalIRValue(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown IRValue type %T", v)
}

// UnmarshalJSON implements json.Unmarshaler. Floats are rejected and null
// decodes to IRNull.
func (obj *IRObject) UnmarshalJSON(data []byte) error {
	v, err := decode(data, true)
	if err != nil {
		return err
	}
	o, ok := v.(IRObject)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*obj = o
	return nil
}

// UnmarshalIRValue decodes JSON strictly: floats and null are rejected.
func UnmarshalIRValue(data []byte) (IRValue, error) {
	return decode(data, false)
}

// FromGo converts a JSON-marshalable Go value into an IRValue by encoding it
// and decoding the result.
//
// Integers outside int64 become decimal strings, and null object members are
// dropped, so arbitrary result structs can be carried in a Completion.
func FromGo(v any) (IRValue, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	return fromRaw(raw, true)
}

// ObjectFromGo is FromGo for values that encode as JSON objects.
func ObjectFromGo(v any) (IRObject, error) {
	val, err := FromGo(v)
	if err != nil {
		return nil, err
	}
	obj, ok := val.(IRObject)
	if !ok {
		return nil, fmt.Errorf("%T does not encode as an object", v)
	}
	return obj, nil
}

func decode(data []byte, allowNull bool) (IRValue, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	return toValue(raw, allowNull)
}

func decodeRaw(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func toValue(raw any, allowNull bool) (IRValue, error) {
	switch val := raw.(type) {
	case nil:
		if allowNull {
			return IRNull{}, nil
		}
		return nil, fmt.Errorf("null is not allowed")
	case bool:
		return IRBool(val), nil
	case string:
		return IRString(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats are not allowed: %s", val)
		}
		return IRInt(n), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, e := range val {
			v, err := toValue(e, allowNull)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, e := range val {
			v, err := toValue(e, allowNull)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			obj[k] = v
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported JSON value %T", raw)
}

func fromRaw(raw any, top bool) (IRValue, error) {
	switch val := raw.(type) {
	case nil:
		if top {
			return IRObject{}, nil
		}
		return nil, fmt.Errorf("null is not allowed")
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return IRInt(n), nil
		}
		if _, ok := bigInteger(val.String()); ok {
			return IRString(val.String()), nil
		}
		return nil, fmt.Errorf("floats are not allowed: %s", val)
	case []any:
		arr := make(IRArray, len(val))
		for i, e := range val {
			v, err := fromRaw(e, false)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, e := range val {
			if e == nil {
				continue
			}
			v, err := fromRaw(e, false)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", k, err)
			}
			obj[k] = v
		}
		return obj, nil
	}
	return toValue(raw, false)
}

// bigInteger reports whether s is an optionally signed run of digits.
func bigInteger(s string) (string, bool) {
	digits := s
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return "", false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", false
		}
	}
	return s, true
}
