package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/digilab/internal/bits"
	"github.com/roach88/digilab/internal/ir"
	"github.com/roach88/digilab/internal/ops"
)

// execute checks args against the signature and runs the handler. A
// calculation failure becomes an output case with a {code, message}
// result.
func (e *Engine) execute(def ops.Op, args ir.IRObject) (string, ir.IRObject, error) {
	name := def.Sig.Name
	if problems := def.Sig.CheckArgs(args); len(problems) > 0 {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = p.Error()
		}
		return "", nil, newInvalidArgs(name, e.session, msgs)
	}

	out, err := def.Handler(args)
	if err == nil {
		if out == nil {
			out = ir.IRObject{}
		}
		return ir.OutputSuccess, out, nil
	}

	var calc *bits.Error
	if errors.As(err, &calc) {
		return calc.Code.Case(), FailureResult(calc), nil
	}
	var argErr *ops.ArgError
	if errors.As(err, &argErr) {
		return "", nil, newInvalidArgs(name, e.session, []string{argErr.Error()})
	}
	return "", nil, fmt.Errorf("%s: %w", name, err)
}

// FailureResult is the completion result recorded for a calculation
// failure.
func FailureResult(err *bits.Error) ir.IRObject {
	return ir.IRObject{
		"code":    ir.IRString(err.Code),
		"message": ir.IRString(err.Message),
	}
}
