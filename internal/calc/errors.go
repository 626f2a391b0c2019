package calc

import (
	"fmt"

	"github.com/funvibe/funski/internal/expr"
)

// ArityMismatchError is returned by Apply when the number of arguments does
// not match the arity of the callee.
type ArityMismatchError struct {
	Expected int
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("number of arguments is mismatch: %d arg(s) expected, got %d", e.Expected, e.Got)
}

func NewArityMismatchError(expected, got int) *ArityMismatchError {
	return &ArityMismatchError{Expected: expected, Got: got}
}

// UndefinedFunctionError indicates a variable callee with no definition.
type UndefinedFunctionError struct {
	Name expr.Identifier
}

func (e *UndefinedFunctionError) Error() string {
	return fmt.Sprintf("undefined function: %s", e.Name)
}

func NewUndefinedFunctionError(name expr.Identifier) *UndefinedFunctionError {
	return &UndefinedFunctionError{Name: name}
}

// NotAFunctionError indicates a callee that can never be applied: a symbol
// or an application node.
type NotAFunctionError struct {
	Callee expr.Expr
}

func (e *NotAFunctionError) Error() string {
	return fmt.Sprintf("not a function: %s", e.Callee)
}

func NewNotAFunctionError(callee expr.Expr) *NotAFunctionError {
	return &NotAFunctionError{Callee: callee}
}
