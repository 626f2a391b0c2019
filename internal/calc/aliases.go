package calc

import "github.com/funvibe/funski/internal/expr"

// Aliases names whole expressions, typically earlier results. An alias has
// arity 0 and, unlike a constant definition, is reducible on its own.
type Aliases map[expr.Identifier]expr.Expr

func (a Aliases) Get(id expr.Identifier) (expr.Expr, bool) {
	e, ok := a[id]
	return e, ok
}

func (a Aliases) Has(id expr.Identifier) bool {
	_, ok := a[id]
	return ok
}
