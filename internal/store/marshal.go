package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/digilab/internal/ir"
)

// encodeObject stores an IRObject as canonical JSON text.
func encodeObject(obj ir.IRObject) (string, error) {
	if obj == nil {
		obj = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeObject parses stored JSON text. Integers keep full int64 precision.
func decodeObject(data string) (ir.IRObject, error) {
	if data == "" || data == "{}" {
		return ir.IRObject{}, nil
	}
	var obj ir.IRObject
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("decode %q: %w", data, err)
	}
	return obj, nil
}
