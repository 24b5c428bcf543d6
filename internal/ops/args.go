package ops

import (
	"fmt"

	"github.com/roach88/digilab/internal/bits"
	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/parity"
)

// ArgError reports an argument that is present and well-typed but not
// meaningful, such as an unknown base name.
type ArgError struct {
	Field   string
	Message string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("argument %s: %s", e.Field, e.Message)
}

// Argument types are checked against the signature before a handler runs,
// so these accessors only fall back for optional arguments.

func str(args ir.IRObject, key string) string {
	s, _ := args.String(key)
	return s
}

func strOr(args ir.IRObject, key, def string) string {
	if s, ok := args.String(key); ok {
		return s
	}
	return def
}

func integer(args ir.IRObject, key string, def int64) int64 {
	if n, ok := args.Int(key); ok {
		return n
	}
	return def
}

func flag(args ir.IRObject, key string) bool {
	b, _ := args.Bool(key)
	return b
}

func base(args ir.IRObject, key string, def bits.Base) (bits.Base, error) {
	s, ok := args.String(key)
	if !ok {
		return def, nil
	}
	b, err := bits.ParseBase(s)
	if err != nil {
		return 0, &ArgError{Field: key, Message: err.Error()}
	}
	return b, nil
}

func (r *Registry) mode(args ir.IRObject) (parity.Mode, error) {
	s, ok := args.String("mode")
	if !ok {
		return r.limits.Parity, nil
	}
	m, err := parity.ParseMode(s)
	if err != nil {
		return "", &ArgError{Field: "mode", Message: err.Error()}
	}
	return m, nil
}

func result(v any) (ir.IRObject, error) {
	return ir.ObjectFromGo(v)
}
