package calc

import (
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

// ReduceResult describes one reduction step.
type ReduceResult struct {
	Step        int
	Expr        expr.Expr
	ReducedPath expr.Path
}

// Reducer evaluates a term in normal order, one step per call to Next.
//
// The term is held decomposed, so a step only touches the spine leading to
// the redex. The Context must not change while the Reducer is in use; pass a
// Clone when it is shared.
//
//	r := calc.NewReducer(ctx, e)
//	for res, ok := r.Next(); ok; res, ok = r.Next() {
//		...
//	}
//	if err := r.Err(); err != nil {
//		...
//	}
type Reducer struct {
	ctx     *env.Context
	aliases Aliases
	root    *inventory
	step    int
	unary   bool
	done    bool
	err     error
}

type Option func(*Reducer)

// WithAliases makes the given aliases visible to the reducer.
func WithAliases(aliases Aliases) Option {
	return func(r *Reducer) { r.aliases = aliases }
}

// WithUnaryReduction lets the first step expand a bare constant, such as a
// lone `TRUE`, which is otherwise left alone until applied to an argument.
func WithUnaryReduction() Option {
	return func(r *Reducer) { r.unary = true }
}

func NewReducer(ctx *env.Context, e expr.Expr, opts ...Option) *Reducer {
	r := &Reducer{ctx: ctx, root: decompose(e)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Expr returns the current term.
func (r *Reducer) Expr() expr.Expr { return r.root.expr() }

// Step returns the number of reductions performed so far.
func (r *Reducer) Step() int { return r.step }

// Err returns the error that stopped the reducer, if any. Running out of
// redexes is not an error.
func (r *Reducer) Err() error { return r.err }

// ReduciblePath returns the address of the next redex.
func (r *Reducer) ReduciblePath() (expr.Path, bool) {
	if r.done {
		return expr.Path{}, false
	}
	return r.root.reduciblePath(r.ctx, r.aliases, r.unary && r.step == 0)
}

// Next performs one reduction. It returns false once the term is in normal
// form, and on every call after that.
func (r *Reducer) Next() (ReduceResult, bool) {
	path, ok := r.ReduciblePath()
	if !ok {
		r.done = true
		return ReduceResult{}, false
	}
	return r.reduceAt(path)
}

// reduceAt performs the reduction at path. An Apply error is kept for Err
// and stops the reducer.
//
// Paths from ReduciblePath never fail here: callable accepts a node only
// when Arity is known and at most the argument count, and Apply checks the
// same Arity against exactly that many arguments.
func (r *Reducer) reduceAt(path expr.Path) (ReduceResult, bool) {
	reduced, err := r.root.reduce(r.ctx, r.aliases, path)
	if err != nil {
		r.err = err
		r.done = true
		return ReduceResult{}, false
	}

	r.step++
	return ReduceResult{Step: r.step, Expr: r.root.expr(), ReducedPath: reduced}, true
}
