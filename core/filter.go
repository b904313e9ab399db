package core

import (
	"github.com/google/cel-go/cel"
	"github.com/vuuvv/errors"
)

// Filter is a compiled CEL predicate over a decoded packet's surface:
// the envelope values plus whatever variant fields the dispatcher exposes.
type Filter struct {
	prg cel.Program
}

// CompileFilter compiles expr against the packet environment. Available
// variables: kind (string), id, size, version (uint), fields (map).
func CompileFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("kind", cel.StringType),
		cel.Variable("id", cel.UintType),
		cel.Variable("size", cel.UintType),
		cel.Variable("version", cel.UintType),
		cel.Variable("fields", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.WithStack(issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Filter{prg: prg}, nil
}

// Match evaluates the predicate. A non-bool result is an error.
func (f *Filter) Match(input map[string]any) (bool, error) {
	out, _, err := f.prg.Eval(input)
	if err != nil {
		return false, errors.WithStack(err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("filter result is not a bool: %v", out.Value())
	}
	return b, nil
}
