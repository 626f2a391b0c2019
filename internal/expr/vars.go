package expr

// BoundVars is the set of names bound by the lambdas enclosing a position,
// together with any names introduced by renaming on the way down.
type BoundVars map[Identifier]struct{}

func NewBoundVars(ids ...Identifier) BoundVars {
	vars := make(BoundVars, len(ids))
	for _, id := range ids {
		vars.Insert(id)
	}
	return vars
}

func (b BoundVars) Insert(id Identifier) { b[id] = struct{}{} }

func (b BoundVars) Contains(id Identifier) bool {
	_, ok := b[id]
	return ok
}

// Clone copies the set so sibling subtrees do not see each other's binders.
func (b BoundVars) Clone() BoundVars {
	c := make(BoundVars, len(b)+1)
	for id := range b {
		c[id] = struct{}{}
	}
	return c
}

// FreeVars is the set of variables occurring free in a term.
type FreeVars map[Identifier]struct{}

// FreeVarsOf computes the free variables of e. Symbols never contribute.
func FreeVarsOf(e Expr) FreeVars {
	vars := make(FreeVars)
	collectFreeVars(e, vars)
	return vars
}

func (f FreeVars) Contains(id Identifier) bool {
	_, ok := f[id]
	return ok
}

func collectFreeVars(e Expr, vars FreeVars) {
	switch node := e.(type) {
	case *Variable:
		vars[node.ID] = struct{}{}
	case *Symbol:
	case *Apply:
		collectFreeVars(node.Lhs, vars)
		collectFreeVars(node.Rhs, vars)
	case *Lambda:
		body := make(FreeVars)
		collectFreeVars(node.Body, body)
		delete(body, node.Param)
		for id := range body {
			vars[id] = struct{}{}
		}
	}
}

// HasFreeVar reports whether id occurs free in e without building the full set.
func HasFreeVar(e Expr, id Identifier) bool {
	switch node := e.(type) {
	case *Variable:
		return node.ID == id
	case *Apply:
		return HasFreeVar(node.Lhs, id) || HasFreeVar(node.Rhs, id)
	case *Lambda:
		return node.Param != id && HasFreeVar(node.Body, id)
	default:
		return false
	}
}
