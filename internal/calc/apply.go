package calc

import (
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

// Apply performs one reduction of callee applied to args and returns the
// result. It never reduces inside the result.
//
// When the callee has a known arity, len(args) must equal it. Lambdas
// substitute their single argument, aliases are replaced by the expression
// they name and defined names expand through their definition.
func Apply(ctx *env.Context, aliases Aliases, callee expr.Expr, args []expr.Expr) (expr.Expr, error) {
	if arity, ok := Arity(ctx, aliases, callee); ok && arity != len(args) {
		return nil, NewArityMismatchError(arity, len(args))
	}

	switch node := callee.(type) {
	case *expr.Lambda:
		return expr.Substitute(node.Body, node.Param, args[0]), nil

	case *expr.Variable:
		if alias, ok := aliases.Get(node.ID); ok {
			return alias, nil
		}
		f, ok := ctx.Get(node.ID)
		if !ok {
			return nil, NewUndefinedFunctionError(node.ID)
		}
		return f.Apply(args), nil

	default:
		return nil, NewNotAFunctionError(callee)
	}
}
