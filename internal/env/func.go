// Package env holds named function definitions and the Context they live in.
package env

import (
	"strings"

	"github.com/funvibe/funski/internal/expr"
)

// Func is a named definition `name p1 p2 ... = body`. A Func with no
// parameters is a constant.
type Func struct {
	name   expr.Identifier
	params []expr.Identifier
	body   expr.Expr
}

func NewFunc(name expr.Identifier, params []expr.Identifier, body expr.Expr) Func {
	return Func{
		name:   name,
		params: append([]expr.Identifier(nil), params...),
		body:   body,
	}
}

func (f Func) Name() expr.Identifier { return f.name }

// Params returns a copy of the parameter list.
func (f Func) Params() []expr.Identifier { return append([]expr.Identifier(nil), f.params...) }

func (f Func) Body() expr.Expr { return f.body }

func (f Func) Arity() int { return len(f.params) }

// Apply substitutes args for the parameters one at a time, in declaration
// order, each into the body produced by the previous substitution. Later
// substitutions therefore see variables introduced by earlier arguments:
// for `f x y = x y`, Apply(y, :a) yields `:a :a`, not `y :a`.
//
// Extra arguments are ignored and missing ones leave their parameter free.
func (f Func) Apply(args []expr.Expr) expr.Expr {
	body := f.body
	for i, param := range f.params {
		if i >= len(args) {
			break
		}
		body = expr.Substitute(body, param, args[i])
	}
	return body
}

// Expr returns the definition as a curried lambda λp1.λp2...body.
func (f Func) Expr() expr.Expr {
	return expr.Curry(f.params, f.body)
}

// String renders the definition in Lazy K form: ``fxy = body.
func (f Func) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("`", len(f.params)))
	sb.WriteString(f.name.String())
	for i, p := range f.params {
		prev := f.name
		if i > 0 {
			prev = f.params[i-1]
		}
		if endsLong(prev) && startsLong(p) {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(" = ")
	sb.WriteString(f.body.String())
	return sb.String()
}

func endsLong(id expr.Identifier) bool {
	return len(id) > 0 && expr.IsLongIdentByte(id[len(id)-1])
}

func startsLong(id expr.Identifier) bool {
	return len(id) > 0 && expr.IsLongIdentByte(id[0])
}
