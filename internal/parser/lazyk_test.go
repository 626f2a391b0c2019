package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/funvibe/funski/internal/command"
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

// =============================================================================
// Expressions
// =============================================================================

func TestParseExpr(t *testing.T) {
	tests := []struct {
		input string
		want  expr.Expr
	}{
		{"a", expr.V("a")},
		{"FOO", expr.V("FOO")},
		{"42", expr.V("42")},
		{"ι", expr.V("ι")},
		{":a", expr.S("a")},
		{": ABC", expr.S("ABC")},
		{"`ab", expr.A("a", "b")},
		{" ` a b", expr.A("a", "b")},
		{"``abc", expr.A(expr.A("a", "b"), "c")},
		{"`FOO BAR", expr.A("FOO", "BAR")},
		{"`FOOx", expr.A("FOO", "x")},
		{"^a.b", expr.L("a", "b")},
		{" λ a . b", expr.L("a", "b")},
		{"λa.^b.c", expr.L("a", expr.L("b", "c"))},
		{"```sxyz", expr.A(expr.A(expr.A("s", "x"), "y"), "z")},
		{"``xz`yz", expr.A(expr.A("x", "z"), expr.A("y", "z"))},
		{"`λx.`xx:a", expr.A(expr.L("x", expr.A("x", "x")), ":a")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseExpr(tt.input)
			if err != nil {
				t.Fatalf("ParseExpr(%q): %v", tt.input, err)
			}
			if !expr.Equal(got, tt.want) {
				t.Errorf("ParseExpr(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseExprErrors(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{"", 0},
		{"`a", 2},
		{"^a", 2},
		{"λa", 3},
		{"^.a", 1},
		{":", 1},
		{"ab", 1},
		{"a # b", 2},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseExpr(tt.input)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("ParseExpr(%q) error = %v, want *Error", tt.input, err)
			}
			if perr.Pos != tt.pos {
				t.Errorf("ParseExpr(%q) error at %d, want %d (%v)", tt.input, perr.Pos, tt.pos, err)
			}
		})
	}
}

// Printing with String and parsing again gives the same term.
func TestParseExprRoundTrip(t *testing.T) {
	terms := []expr.Expr{
		expr.A(expr.A("FOO", "BAR"), "x"),
		expr.L("X0", expr.A("X0", "Y")),
		expr.A(expr.A("s", "k"), expr.A(":a", "ι")),
		expr.A(expr.A("x", "FALSE"), "TRUE"),
	}
	for _, e := range terms {
		got, err := ParseExpr(e.String())
		if err != nil {
			t.Fatalf("ParseExpr(%q): %v", e.String(), err)
		}
		if !expr.Equal(got, e) {
			t.Errorf("round trip of %q = %s", e.String(), got)
		}
	}
}

// =============================================================================
// Commands
// =============================================================================

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  command.Command
	}{
		{"i = i", command.Del{ID: "i"}},
		{"`ix = x", command.Update{Func: env.NewFunc("i", []expr.Identifier{"x"}, expr.V("x"))}},
		{"``kxy = x", command.Update{Func: env.NewFunc("k", []expr.Identifier{"x", "y"}, expr.V("x"))}},
		{"TRUE = `ki", command.Update{Func: env.NewFunc("TRUE", nil, expr.A("k", "i"))}},
		{"`ab", command.Eval{Expr: expr.A("a", "b")}},
		{"! `ab", command.EvalLast{Expr: expr.A("a", "b")}},
		{"!42 a", command.EvalHead{N: 42, Expr: expr.V("a")}},
		{"!-42 :a", command.EvalTail{N: 42, Expr: expr.S("a")}},
		{"! 42", command.EvalLast{Expr: expr.V("42")}},
		{"? i", command.Query{ID: "i"}},
		{"?", command.ListContext{}},
		{"~ a", command.Unlambda{Level: 1, Expr: expr.V("a")}},
		{"~~ a", command.Unlambda{Level: 2, Expr: expr.V("a")}},
		{"~~~ a", command.Unlambda{Level: 3, Expr: expr.V("a")}},
		{"~~~~ λx.x", command.Unlambda{Level: 4, Expr: expr.L("x", "x")}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			if err != nil {
				t.Fatalf("ParseCommand(%q): %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseCommand(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
			// Commands print back to their canonical form.
			if again, err := ParseCommand(got.String()); err != nil || !reflect.DeepEqual(again, got) {
				t.Errorf("reparse of %q = %#v, %v", got.String(), again, err)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		c    command.Command
		want string
	}{
		{command.Del{ID: "i"}, "i = i"},
		{command.Update{Func: env.NewFunc("s", []expr.Identifier{"x", "y", "z"}, expr.A(expr.A("x", "z"), expr.A("y", "z")))}, "```sxyz = ``xz`yz"},
		{command.Eval{Expr: expr.L("x", "y")}, "λx.y"},
		{command.EvalLast{Expr: expr.S("a")}, "! :a"},
		{command.EvalHead{N: 42, Expr: expr.A("a", "b")}, "!42 `ab"},
		{command.EvalTail{N: 42, Expr: expr.V("a")}, "!-42 a"},
		{command.Query{ID: "i"}, "? i"},
		{command.ListContext{}, "?"},
		{command.Unlambda{Level: 3, Expr: expr.V("a")}, "~~~ a"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "empty command"},
		{"   ", "empty command"},
		{":a = b", "cannot define"},
		{"`f:a = b", "not a variable"},
		{"!- a", "step count"},
		{"~~~~~ a", "out of range"},
		{"? :a", "expected IDENT"},
		{"a = ", "expected expression"},
		{"a b", "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseCommand(tt.input)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseCommand(%q) error = %v, want %q", tt.input, err, tt.want)
			}
		})
	}
}

func TestParseFunc(t *testing.T) {
	f, err := ParseFunc("```sxyz = ``xz`yz")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() != "s" || f.Arity() != 3 {
		t.Errorf("ParseFunc = %s", f)
	}
	if _, err := ParseFunc("`ab"); err == nil {
		t.Errorf("ParseFunc(`ab) succeeded")
	}
}
