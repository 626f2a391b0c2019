// Package command defines the commands accepted by the engine.
package command

import (
	"strconv"
	"strings"

	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

// Command is one of the types below. String renders it back in Lazy K
// syntax.
type Command interface {
	command()
	String() string
}

// Del removes a definition. Written `i = i`.
type Del struct {
	ID expr.Identifier
}

// Update adds or replaces a definition. Written ``kxy = x.
type Update struct {
	Func env.Func
}

// Eval shows every reduction step of Expr.
type Eval struct {
	Expr expr.Expr
}

// EvalLast shows only the normal form. Written `! e`.
type EvalLast struct {
	Expr expr.Expr
}

// EvalHead shows the first N steps. Written `!N e`.
type EvalHead struct {
	N    int
	Expr expr.Expr
}

// EvalTail shows the last N steps. Written `!-N e`.
type EvalTail struct {
	N    int
	Expr expr.Expr
}

// Query looks a definition up. Written `? i`.
type Query struct {
	ID expr.Identifier
}

// ListContext lists every definition. Written `?`.
type ListContext struct{}

// Unlambda removes lambdas from Expr. Level 1 only expands definitions;
// 2, 3 and 4 abstract over SKI, SK and Iota. Written with Level tildes.
type Unlambda struct {
	Level int
	Expr  expr.Expr
}

const (
	LevelExpand = 1
	LevelSKI    = 2
	LevelSK     = 3
	LevelIota   = 4
)

func (Del) command()         {}
func (Update) command()      {}
func (Eval) command()        {}
func (EvalLast) command()    {}
func (EvalHead) command()    {}
func (EvalTail) command()    {}
func (Query) command()       {}
func (ListContext) command() {}
func (Unlambda) command()    {}

func (c Del) String() string         { return c.ID.String() + " = " + c.ID.String() }
func (c Update) String() string      { return c.Func.String() }
func (c Eval) String() string        { return c.Expr.String() }
func (c EvalLast) String() string    { return "! " + c.Expr.String() }
func (c EvalHead) String() string    { return "!" + strconv.Itoa(c.N) + " " + c.Expr.String() }
func (c EvalTail) String() string    { return "!-" + strconv.Itoa(c.N) + " " + c.Expr.String() }
func (c Query) String() string       { return "? " + c.ID.String() }
func (c ListContext) String() string { return "?" }
func (c Unlambda) String() string    { return strings.Repeat("~", c.Level) + " " + c.Expr.String() }

// Mutates reports whether c changes the definitions.
func Mutates(c Command) bool {
	switch c.(type) {
	case Del, Update:
		return true
	default:
		return false
	}
}
