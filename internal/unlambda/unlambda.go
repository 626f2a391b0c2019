package unlambda

import (
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

// Shallow eliminates every lambda in e. Free variables are left as they are,
// including those naming definitions.
func Shallow(st Strategy, e expr.Expr) expr.Expr {
	switch node := e.(type) {
	case *expr.Apply:
		return &expr.Apply{Lhs: Shallow(st, node.Lhs), Rhs: Shallow(st, node.Rhs)}
	case *expr.Lambda:
		// A constant or eta-reduced body may still carry lambdas.
		return Shallow(st, eliminate(st, node.Body, node.Param))
	default:
		return e
	}
}

// Recursive eliminates every lambda in e and also inlines every free
// variable defined in ctx, except the basis combinators themselves, until
// the result is written in the basis, symbols and undefined variables only.
//
// A definition referring to itself is inlined once; inner references to it
// are kept as names.
func Recursive(st Strategy, ctx *env.Context, e expr.Expr) expr.Expr {
	return recursive(st, ctx, e, expr.NewBoundVars())
}

func recursive(st Strategy, ctx *env.Context, e expr.Expr, expanding expr.BoundVars) expr.Expr {
	switch node := e.(type) {
	case *expr.Variable:
		if st.contains(node.ID) || expanding.Contains(node.ID) {
			return node
		}
		f, ok := ctx.Get(node.ID)
		if !ok {
			return node
		}
		inner := expanding.Clone()
		inner.Insert(node.ID)
		return recursive(st, ctx, f.Expr(), inner)

	case *expr.Apply:
		return &expr.Apply{
			Lhs: recursive(st, ctx, node.Lhs, expanding),
			Rhs: recursive(st, ctx, node.Rhs, expanding),
		}

	case *expr.Lambda:
		return recursive(st, ctx, eliminate(st, node.Body, node.Param), expanding)

	default:
		return e
	}
}

// eliminate computes [param]e: a term without param that, applied to x,
// behaves like e with x for param. Nested lambdas are eliminated innermost
// first.
func eliminate(st Strategy, e expr.Expr, param expr.Identifier) expr.Expr {
	switch node := e.(type) {
	case *expr.Variable:
		if node.ID == param {
			return st.i()
		}
		return expr.A(st.k(), node)

	case *expr.Symbol:
		return expr.A(st.k(), node)

	case *expr.Apply:
		if !expr.HasFreeVar(node, param) {
			return expr.A(st.k(), node)
		}
		if v, ok := node.Rhs.(*expr.Variable); ok && v.ID == param && !expr.HasFreeVar(node.Lhs, param) {
			return node.Lhs
		}
		return expr.A(expr.A(st.s(), eliminate(st, node.Lhs, param)), eliminate(st, node.Rhs, param))

	case *expr.Lambda:
		return eliminate(st, eliminate(st, node.Body, node.Param), param)
	}
	return e
}
