package calc

import (
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

// inventory is a term with its application spine peeled once: callee applied
// to args, each argument decomposed in turn. args is stored innermost-peeled
// first, so args[len(args)-1] is the argument next to the callee.
type inventory struct {
	callee expr.Expr
	args   []*inventory
}

func decompose(e expr.Expr) *inventory {
	inv := &inventory{}
	for {
		app, ok := e.(*expr.Apply)
		if !ok {
			break
		}
		inv.args = append(inv.args, decompose(app.Rhs))
		e = app.Lhs
	}
	inv.callee = e
	return inv
}

func (inv *inventory) expr() expr.Expr {
	e := inv.callee
	for i := len(inv.args) - 1; i >= 0; i-- {
		e = &expr.Apply{Lhs: e, Rhs: inv.args[i].expr()}
	}
	return e
}

// arg returns the index-th argument counted 1-based from the callee.
func (inv *inventory) arg(index int) *inventory {
	return inv.args[len(inv.args)-index]
}

// callable reports whether the callee can consume some of the arguments at
// this node. A callee with no arguments is only callable when it is an alias
// or when bare is set.
func (inv *inventory) callable(ctx *env.Context, aliases Aliases, bare bool) (int, bool) {
	if len(inv.args) == 0 && !bare && !isAlias(aliases, inv.callee) {
		return 0, false
	}
	arity, ok := Arity(ctx, aliases, inv.callee)
	if !ok || arity > len(inv.args) {
		return 0, false
	}
	return arity, true
}

func (inv *inventory) reducible(ctx *env.Context, aliases Aliases) bool {
	if _, ok := inv.callable(ctx, aliases, false); ok {
		return true
	}
	for _, a := range inv.args {
		if a.reducible(ctx, aliases) {
			return true
		}
	}
	return false
}

// reduciblePath finds the leftmost-outermost redex: the node itself when
// callable, otherwise the first argument from the left that contains one.
func (inv *inventory) reduciblePath(ctx *env.Context, aliases Aliases, bare bool) (expr.Path, bool) {
	var routes []int
	node := inv
	for {
		if arity, ok := node.callable(ctx, aliases, bare); ok {
			return expr.Path{Routes: routes, Arity: arity}, true
		}
		bare = false

		next := -1
		for index := 1; index <= len(node.args); index++ {
			if node.arg(index).reducible(ctx, aliases) {
				next = index
				break
			}
		}
		if next < 0 {
			return expr.Path{}, false
		}
		routes = append(routes, next)
		node = node.arg(next)
	}
}

func (inv *inventory) at(path expr.Path) *inventory {
	node := inv
	for _, index := range path.Routes {
		node = node.arg(index)
	}
	return node
}

// reduce applies the callee at path to its first path.Arity arguments and
// re-peels the result in place. The returned path points at the same node;
// its arity is the number of arguments the result brought with it.
func (inv *inventory) reduce(ctx *env.Context, aliases Aliases, path expr.Path) (expr.Path, error) {
	node := inv.at(path)
	n, arity := len(node.args), path.Arity
	if arity > n {
		return expr.Path{}, NewArityMismatchError(arity, n)
	}

	args := make([]expr.Expr, arity)
	for i, a := range node.args[n-arity:] {
		args[arity-1-i] = a.expr()
	}

	result, err := Apply(ctx, aliases, node.callee, args)
	if err != nil {
		return expr.Path{}, err
	}

	node.args = node.args[:n-arity]
	peeled := 0
	for {
		app, ok := result.(*expr.Apply)
		if !ok {
			break
		}
		node.args = append(node.args, decompose(app.Rhs))
		result = app.Lhs
		peeled++
	}
	node.callee = result
	return path.WithArity(peeled), nil
}

func isAlias(aliases Aliases, e expr.Expr) bool {
	v, ok := e.(*expr.Variable)
	return ok && aliases.Has(v.ID)
}
