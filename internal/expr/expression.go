// Package expr implements the term language: identifiers, the four kinds of
// expression, free and bound variable analysis, capture-avoiding substitution
// and the paths used to address the application spine of a term.
package expr

import (
	"fmt"
	"strings"
)

// Expr is a term of the calculus. Implementations are *Variable, *Symbol,
// *Apply and *Lambda. Terms are never mutated after construction; every
// transformation in this module builds a new tree.
type Expr interface {
	exprNode()
	String() string
}

// Variable may be free, bound by a Lambda, or a reference to a defined function.
type Variable struct {
	ID Identifier
}

// Symbol is an opaque atom. It is never substituted and never bound.
type Symbol struct {
	ID Identifier
}

// Apply is the left-associative application Lhs Rhs.
type Apply struct {
	Lhs Expr
	Rhs Expr
}

// Lambda abstracts a single parameter. Multi-argument functions nest.
type Lambda struct {
	Param Identifier
	Body  Expr
}

func (*Variable) exprNode() {}
func (*Symbol) exprNode()   {}
func (*Apply) exprNode()    {}
func (*Lambda) exprNode()   {}

func (v *Variable) String() string { return lazyK(v) }
func (s *Symbol) String() string   { return lazyK(s) }
func (a *Apply) String() string    { return lazyK(a) }
func (l *Lambda) String() string   { return lazyK(l) }

// V builds a variable.
func V(id Identifier) Expr { return &Variable{ID: id} }

// S builds a symbol.
func S(id Identifier) Expr { return &Symbol{ID: id} }

// A builds an application. Operands go through From.
func A(lhs, rhs any) Expr { return &Apply{Lhs: From(lhs), Rhs: From(rhs)} }

// L builds a lambda. The body goes through From.
func L(param Identifier, body any) Expr { return &Lambda{Param: param, Body: From(body)} }

// From converts a shorthand into an Expr: an Expr is returned as is, a string
// starting with ':' becomes a Symbol and any other non-empty string a Variable.
// It panics on anything else and is meant for literals in code and tests.
func From(v any) Expr {
	switch x := v.(type) {
	case Expr:
		return x
	case Identifier:
		return V(x)
	case string:
		if x == "" {
			panic("expr.From: empty identifier")
		}
		if strings.HasPrefix(x, ":") {
			return S(Identifier(x[1:]))
		}
		return V(Identifier(x))
	default:
		panic(fmt.Sprintf("expr.From: unsupported %T", v))
	}
}

// Equal reports structural equality.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.ID == y.ID
	case *Symbol:
		y, ok := b.(*Symbol)
		return ok && x.ID == y.ID
	case *Apply:
		y, ok := b.(*Apply)
		return ok && Equal(x.Lhs, y.Lhs) && Equal(x.Rhs, y.Rhs)
	case *Lambda:
		y, ok := b.(*Lambda)
		return ok && x.Param == y.Param && Equal(x.Body, y.Body)
	default:
		return a == nil && b == nil
	}
}

// Unapply peels the application spine: `((f a) b)` gives f and [a b] in
// reading order.
func Unapply(e Expr) (Expr, []Expr) {
	var args []Expr
	for {
		app, ok := e.(*Apply)
		if !ok {
			break
		}
		args = append(args, app.Rhs)
		e = app.Lhs
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return e, args
}

// Uncurry collects the parameters of nested lambdas: λx.λy.e gives [x y] and e.
func Uncurry(e Expr) ([]Identifier, Expr) {
	var params []Identifier
	for {
		lam, ok := e.(*Lambda)
		if !ok {
			return params, e
		}
		params = append(params, lam.Param)
		e = lam.Body
	}
}

// Curry is the inverse of Uncurry.
func Curry(params []Identifier, body Expr) Expr {
	for i := len(params) - 1; i >= 0; i-- {
		body = &Lambda{Param: params[i], Body: body}
	}
	return body
}

// Spine rebuilds `callee a1 a2 ...` from a callee and arguments in reading order.
func Spine(callee Expr, args ...Expr) Expr {
	for _, arg := range args {
		callee = &Apply{Lhs: callee, Rhs: arg}
	}
	return callee
}

// lazyK renders e in Lazy K notation: `fx for application, λx.e for
// abstraction and :a for symbols. Two identifiers that would otherwise run
// together are separated by a space.
func lazyK(e Expr) string {
	var sb strings.Builder
	writeLazyK(&sb, e)
	return sb.String()
}

func writeLazyK(sb *strings.Builder, e Expr) {
	switch node := e.(type) {
	case *Variable:
		writeIdent(sb, string(node.ID))
	case *Symbol:
		sb.WriteByte(':')
		sb.WriteString(string(node.ID))
	case *Apply:
		sb.WriteByte('`')
		writeLazyK(sb, node.Lhs)
		writeLazyK(sb, node.Rhs)
	case *Lambda:
		sb.WriteString("λ")
		writeIdent(sb, string(node.Param))
		sb.WriteByte('.')
		writeLazyK(sb, node.Body)
	}
}

func writeIdent(sb *strings.Builder, id string) {
	s := sb.String()
	if len(s) > 0 && len(id) > 0 && IsLongIdentByte(s[len(s)-1]) && IsLongIdentByte(id[0]) {
		sb.WriteByte(' ')
	}
	sb.WriteString(id)
}

// IsLongIdentByte reports whether b may appear in a multi-character
// identifier of the Lazy K syntax ([A-Z0-9_]).
func IsLongIdentByte(b byte) bool {
	return b == '_' || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
