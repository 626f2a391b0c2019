package calc

import (
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

// Expand inlines every free reference to a defined name by its curried
// lambda form, recursively. Inlined bodies are expanded with a fresh set of
// bound names, so a parameter of one definition never hides a definition
// used inside another.
//
// A name met again while its own body is being inlined is left as a
// reference; self-referential definitions would otherwise never finish.
func Expand(ctx *env.Context, e expr.Expr) expr.Expr {
	return expand(ctx, e, expr.NewBoundVars(), expr.NewBoundVars())
}

func expand(ctx *env.Context, e expr.Expr, bound, expanding expr.BoundVars) expr.Expr {
	switch node := e.(type) {
	case *expr.Variable:
		if bound.Contains(node.ID) || expanding.Contains(node.ID) {
			return node
		}
		f, ok := ctx.Get(node.ID)
		if !ok {
			return node
		}
		inner := expanding.Clone()
		inner.Insert(node.ID)
		return expand(ctx, f.Expr(), expr.NewBoundVars(), inner)

	case *expr.Apply:
		return &expr.Apply{
			Lhs: expand(ctx, node.Lhs, bound, expanding),
			Rhs: expand(ctx, node.Rhs, bound, expanding),
		}

	case *expr.Lambda:
		inner := bound.Clone()
		inner.Insert(node.Param)
		return &expr.Lambda{Param: node.Param, Body: expand(ctx, node.Body, inner, expanding)}

	default:
		return e
	}
}
