// Package calc evaluates terms: arity and single-step application, the
// incremental leftmost-outermost Reducer and definition expansion.
package calc

import (
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

// Arity reports how many arguments e consumes when applied. A lambda always
// takes one, an alias none and a defined name as many as its definition has
// parameters. Symbols, applications and unbound variables have no arity.
func Arity(ctx *env.Context, aliases Aliases, e expr.Expr) (int, bool) {
	switch node := e.(type) {
	case *expr.Lambda:
		return 1, true
	case *expr.Variable:
		if aliases.Has(node.ID) {
			return 0, true
		}
		return ctx.Arity(node.ID)
	default:
		return 0, false
	}
}
