package builtin

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/flowmesh/flowmesh/engine/core"
)

// Calculate evaluates the expression parameter as a CEL expression with no
// free variables: arithmetic, comparisons, string and list operations.
// Placeholders have already been substituted by the time this runs, so the
// expression arrives fully literal.
func Calculate(_ context.Context, params core.Input) (any, error) {
	expression, err := stringParam(params, "expression")
	if err != nil {
		return nil, err
	}
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression environment: %w", err)
	}
	ast, iss := env.Compile(expression)
	if iss.Err() != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", expression, iss.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to plan expression %q: %w", expression, err)
	}
	out, _, err := prg.Eval(cel.NoVars())
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %q: %w", expression, err)
	}
	return out.Value(), nil
}
