package expr

import (
	"strconv"
	"strings"
)

// Path addresses a node of a term's curried application spine.
//
// Routes holds 1-based, left-to-right argument indices to follow from the
// root; Arity is the terminal Callee(n): the node reached is the callee
// there applied to its first n arguments. The recursive reading
// Arg(i, Arg(j, Callee(n))) is Path{Routes: [i j], Arity: n}.
//
// A Path is only meaningful for the term it was computed against.
type Path struct {
	Routes []int
	Arity  int
}

// Callee is the terminal path element.
func Callee(arity int) Path { return Path{Arity: arity} }

// Arg prefixes next with a descent into the index-th argument.
func Arg(index int, next Path) Path {
	routes := make([]int, 0, len(next.Routes)+1)
	routes = append(routes, index)
	routes = append(routes, next.Routes...)
	return Path{Routes: routes, Arity: next.Arity}
}

// WithArity returns a copy of p ending in Callee(arity).
func (p Path) WithArity(arity int) Path {
	return Path{Routes: append([]int(nil), p.Routes...), Arity: arity}
}

// Indices flattens the path to its routes followed by the arity.
func (p Path) Indices() []int {
	out := make([]int, 0, len(p.Routes)+1)
	out = append(out, p.Routes...)
	return append(out, p.Arity)
}

func (p Path) Equal(q Path) bool {
	if p.Arity != q.Arity || len(p.Routes) != len(q.Routes) {
		return false
	}
	for i := range p.Routes {
		if p.Routes[i] != q.Routes[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	var sb strings.Builder
	for _, r := range p.Routes {
		sb.WriteString("Arg(")
		sb.WriteString(strconv.Itoa(r))
		sb.WriteString(", ")
	}
	sb.WriteString("Callee(")
	sb.WriteString(strconv.Itoa(p.Arity))
	sb.WriteString(")")
	sb.WriteString(strings.Repeat(")", len(p.Routes)))
	return sb.String()
}
