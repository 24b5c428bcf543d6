package ir

import (
	"fmt"
	"slices"
)

// ValidTypes are the argument type names an OpSig may declare.
var ValidTypes = map[string]bool{
	"string":  true,
	"int":     true,
	"bool":    true,
	"strings": true,
	"object":  true,
}

// NamedArg is one declared argument of an operation.
type NamedArg struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// OpSig describes an operation's arguments and the output cases it can
// complete with.
type OpSig struct {
	Name    string     `json:"name"`
	Summary string     `json:"summary"`
	Args    []NamedArg `json:"args"`
	Outputs []string   `json:"outputs"`
}

// ValidationError is a problem with a field of a signature or argument set.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the signature itself and returns every problem found.
func (s OpSig) Validate() []ValidationError {
	var errs []ValidationError
	if s.Name == "" {
		errs = append(errs, ValidationError{"name", "operation name is required"})
	}
	if !slices.Contains(s.Outputs, OutputSuccess) {
		errs = append(errs, ValidationError{"outputs", fmt.Sprintf("must include %q", OutputSuccess)})
	}

	seen := make(map[string]bool)
	for i, a := range s.Args {
		if seen[a.Name] {
			errs = append(errs, ValidationError{fmt.Sprintf("args[%d].name", i), fmt.Sprintf("duplicate argument %q", a.Name)})
		}
		seen[a.Name] = true
		if !ValidTypes[a.Type] {
			errs = append(errs, ValidationError{fmt.Sprintf("args[%d].type", i), fmt.Sprintf("invalid type %q for %q", a.Type, a.Name)})
		}
	}
	return errs
}

// CheckArgs reports missing, mistyped and unknown arguments.
func (s OpSig) CheckArgs(args IRObject) []ValidationError {
	var errs []ValidationError
	declared := make(map[string]bool, len(s.Args))
	for _, a := range s.Args {
		declared[a.Name] = true
		v, ok := args[a.Name]
		if !ok {
			if !a.Optional {
				errs = append(errs, ValidationError{a.Name, "missing required argument"})
			}
			continue
		}
		if !hasType(v, a.Type) {
			errs = append(errs, ValidationError{a.Name, fmt.Sprintf("expected %s, got %s", a.Type, TypeName(v))})
		}
	}
	for _, k := range args.SortedKeys() {
		if !declared[k] {
			errs = append(errs, ValidationError{k, "unknown argument"})
		}
	}
	return errs
}

// TypeName names the type of v as used in signatures.
func TypeName(v IRValue) string {
	switch val := v.(type) {
	case IRString:
		return "string"
	case IRInt:
		return "int"
	case IRBool:
		return "bool"
	case IRObject:
		return "object"
	case IRArray:
		for _, e := range val {
			if _, ok := e.(IRString); !ok {
				return "array"
			}
		}
		return "strings"
	case IRNull:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func hasType(v IRValue, typ string) bool {
	return TypeName(v) == typ
}
