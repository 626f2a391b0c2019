package expr

// Substitute replaces the free occurrences of param in e by arg.
//
// Bound variables that would capture a free variable of arg are renamed
// first (alpha-conversion): λy.`xy [x := y] becomes λY.`yY, not λy.`yy.
func Substitute(e Expr, param Identifier, arg Expr) Expr {
	return substitute(e, param, arg, FreeVarsOf(arg), NewBoundVars())
}

func substitute(e Expr, param Identifier, arg Expr, free FreeVars, bound BoundVars) Expr {
	switch node := e.(type) {
	case *Variable:
		if node.ID == param {
			return arg
		}
		return node

	case *Symbol:
		return node

	case *Apply:
		lhs := substitute(node.Lhs, param, arg, free, bound)
		rhs := substitute(node.Rhs, param, arg, free, bound)
		if lhs == node.Lhs && rhs == node.Rhs {
			return node
		}
		return &Apply{Lhs: lhs, Rhs: rhs}

	case *Lambda:
		if node.Param == param {
			return node
		}

		// A binder that is free in arg is renamed even when param does not
		// occur below it.
		p, body := node.Param, node.Body
		if !free.Contains(p) && !HasFreeVar(body, param) {
			return node
		}
		if free.Contains(p) {
			// The fresh name must also miss the free variables of the body
			// and of arg, or renaming would capture them instead.
			avoid := bound.Clone()
			for id := range FreeVarsOf(body) {
				avoid.Insert(id)
			}
			for id := range free {
				avoid.Insert(id)
			}
			renamed := p.Rename(avoid)
			body = replace(body, p, renamed)
			p = renamed
		}

		inner := bound.Clone()
		inner.Insert(p)

		newBody := substitute(body, param, arg, free, inner)
		if p == node.Param && newBody == node.Body {
			return node
		}
		return &Lambda{Param: p, Body: newBody}
	}
	return e
}

// replace renames the free occurrences of old to new. It stops at any lambda
// rebinding old since no free occurrence can exist below it.
func replace(e Expr, old, new Identifier) Expr {
	switch node := e.(type) {
	case *Variable:
		if node.ID == old {
			return &Variable{ID: new}
		}
		return node
	case *Apply:
		return &Apply{Lhs: replace(node.Lhs, old, new), Rhs: replace(node.Rhs, old, new)}
	case *Lambda:
		if node.Param == old {
			return node
		}
		return &Lambda{Param: node.Param, Body: replace(node.Body, old, new)}
	default:
		return e
	}
}
