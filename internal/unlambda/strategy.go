// Package unlambda removes lambda abstractions from terms by bracket
// abstraction over the SKI, SK or Iota combinator bases.
package unlambda

import (
	"fmt"

	"github.com/funvibe/funski/internal/expr"
)

// Basis selects the combinators the output is written in.
type Basis int

const (
	BasisSKI Basis = iota
	BasisSK
	BasisIota
)

func (b Basis) String() string {
	switch b {
	case BasisSKI:
		return "SKI"
	case BasisSK:
		return "SK"
	case BasisIota:
		return "Iota"
	default:
		return fmt.Sprintf("Basis(%d)", int(b))
	}
}

const (
	DefaultS    expr.Identifier = "s"
	DefaultK    expr.Identifier = "k"
	DefaultI    expr.Identifier = "i"
	DefaultIota expr.Identifier = "ι"
)

// Strategy is a basis together with the identifiers its combinators are
// written as. Only the fields used by the basis matter.
type Strategy struct {
	Basis Basis
	S     expr.Identifier
	K     expr.Identifier
	I     expr.Identifier
	Iota  expr.Identifier
}

func SKI() Strategy { return SKIWith(DefaultS, DefaultK, DefaultI) }

func SKIWith(s, k, i expr.Identifier) Strategy {
	return Strategy{Basis: BasisSKI, S: s, K: k, I: i}
}

func SK() Strategy { return SKWith(DefaultS, DefaultK) }

func SKWith(s, k expr.Identifier) Strategy {
	return Strategy{Basis: BasisSK, S: s, K: k}
}

func Iota() Strategy { return IotaWith(DefaultIota) }

func IotaWith(iota expr.Identifier) Strategy {
	return Strategy{Basis: BasisIota, Iota: iota}
}

// contains reports whether id names one of the basis combinators. These are
// never expanded from the Context.
func (st Strategy) contains(id expr.Identifier) bool {
	switch st.Basis {
	case BasisSKI:
		return id == st.S || id == st.K || id == st.I
	case BasisSK:
		return id == st.S || id == st.K
	default:
		return id == st.Iota
	}
}

func (st Strategy) iota() expr.Expr { return expr.V(st.Iota) }

// i is S K K over SK and ι ι over Iota.
func (st Strategy) i() expr.Expr {
	switch st.Basis {
	case BasisSKI:
		return expr.V(st.I)
	case BasisSK:
		return expr.A(expr.A(expr.V(st.S), expr.V(st.K)), expr.V(st.K))
	default:
		return expr.A(st.iota(), st.iota())
	}
}

// k is ι(ι(ι ι)) over Iota.
func (st Strategy) k() expr.Expr {
	if st.Basis == BasisIota {
		return expr.A(st.iota(), expr.A(st.iota(), expr.A(st.iota(), st.iota())))
	}
	return expr.V(st.K)
}

// s is ι(ι(ι(ι ι))) over Iota.
func (st Strategy) s() expr.Expr {
	if st.Basis == BasisIota {
		return expr.A(st.iota(), expr.A(st.iota(), expr.A(st.iota(), expr.A(st.iota(), st.iota()))))
	}
	return expr.V(st.S)
}
