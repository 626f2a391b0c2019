package calc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

func ids(names ...string) []expr.Identifier {
	out := make([]expr.Identifier, len(names))
	for i, n := range names {
		out[i] = expr.Identifier(n)
	}
	return out
}

func setup() (*env.Context, Aliases) {
	ctx := env.NewContext(
		env.NewFunc("i", ids("x"), expr.V("x")),
		env.NewFunc("k", ids("x", "y"), expr.V("x")),
		env.NewFunc("s", ids("x", "y", "z"), expr.A(expr.A("x", "z"), expr.A("y", "z"))),
		env.NewFunc("TRUE", nil, expr.A("k", "i")),
		env.NewFunc("FALSE", nil, expr.V("k")),
	)
	aliases := Aliases{
		"_":  expr.L("x", expr.A("x", "x")),
		"_1": expr.V("TRUE"),
		"_2": expr.V("FALSE"),
	}
	return ctx, aliases
}

// =============================================================================
// Arity
// =============================================================================

func TestArity(t *testing.T) {
	ctx := env.NewContext(
		env.NewFunc("F0", nil, expr.S("a")),
		env.NewFunc("F1", ids("x"), expr.S("a")),
		env.NewFunc("F2", ids("x", "y"), expr.S("a")),
		env.NewFunc("F3", ids("x", "y", "z"), expr.S("a")),
	)
	aliases := Aliases{"_": expr.S("a")}

	tests := []struct {
		name   string
		e      expr.Expr
		want   int
		wantOK bool
	}{
		{"symbol", expr.S("a"), 0, false},
		{"apply", expr.A("x", "y"), 0, false},
		{"lambda", expr.L("x", "x"), 1, true},
		{"unbound variable", expr.V("x"), 0, false},
		{"alias", expr.V("_"), 0, true},
		{"F0", expr.V("F0"), 0, true},
		{"F1", expr.V("F1"), 1, true},
		{"F2", expr.V("F2"), 2, true},
		{"F3", expr.V("F3"), 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Arity(ctx, aliases, tt.e)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Arity(%s) = %d, %v, want %d, %v", tt.e, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// =============================================================================
// Apply
// =============================================================================

func TestApply(t *testing.T) {
	ctx, aliases := setup()
	ctx.Def(env.NewFunc("x", ids("x"), expr.A("x", "x")))

	tests := []struct {
		name   string
		callee expr.Expr
		args   []expr.Expr
		want   expr.Expr
	}{
		{"i", expr.V("i"), []expr.Expr{expr.S("a")}, expr.S("a")},
		{"k", expr.V("k"), []expr.Expr{expr.S("a"), expr.S("b")}, expr.S("a")},
		{"self application", expr.V("x"), []expr.Expr{expr.S("a")}, expr.A(":a", ":a")},
		{"lambda", expr.L("x", ":a"), []expr.Expr{expr.S("b")}, expr.S("a")},
		{"lambda substitutes", expr.L("x", expr.A("x", "x")), []expr.Expr{expr.S("b")}, expr.A(":b", ":b")},
		{"alias", expr.V("_"), nil, expr.L("x", expr.A("x", "x"))},
		{"alias to name", expr.V("_2"), nil, expr.V("FALSE")},
		{"constant", expr.V("TRUE"), nil, expr.A("k", "i")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(ctx, aliases, tt.callee, tt.args)
			if err != nil {
				t.Fatalf("Apply(%s) error: %v", tt.callee, err)
			}
			if !expr.Equal(got, tt.want) {
				t.Errorf("Apply(%s) = %s, want %s", tt.callee, got, tt.want)
			}
		})
	}
}

func TestApplyErrors(t *testing.T) {
	ctx, aliases := setup()
	a, b, c := expr.S("a"), expr.S("b"), expr.S("c")

	t.Run("symbol", func(t *testing.T) {
		_, err := Apply(ctx, aliases, expr.S("i"), []expr.Expr{a})
		var target *NotAFunctionError
		if !errors.As(err, &target) {
			t.Fatalf("err = %v, want NotAFunctionError", err)
		}
	})

	t.Run("application", func(t *testing.T) {
		_, err := Apply(ctx, aliases, expr.A("i", ":a"), []expr.Expr{b})
		var target *NotAFunctionError
		if !errors.As(err, &target) {
			t.Fatalf("err = %v, want NotAFunctionError", err)
		}
	})

	t.Run("undefined", func(t *testing.T) {
		_, err := Apply(ctx, aliases, expr.V("y"), []expr.Expr{a})
		var target *UndefinedFunctionError
		if !errors.As(err, &target) {
			t.Fatalf("err = %v, want UndefinedFunctionError", err)
		}
		if target.Name != "y" {
			t.Errorf("Name = %q, want y", target.Name)
		}
		if err.Error() != "undefined function: y" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	mismatches := []struct {
		name     string
		callee   expr.Expr
		args     []expr.Expr
		expected int
	}{
		{"too few for k", expr.V("k"), []expr.Expr{a}, 2},
		{"too many for k", expr.V("k"), []expr.Expr{a, b, c}, 2},
		{"lambda without argument", expr.L("x", ":a"), nil, 1},
		{"lambda with two arguments", expr.L("x", ":a"), []expr.Expr{b, c}, 1},
		{"alias with argument", expr.V("_"), []expr.Expr{a}, 0},
	}
	for _, tt := range mismatches {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(ctx, aliases, tt.callee, tt.args)
			var target *ArityMismatchError
			if !errors.As(err, &target) {
				t.Fatalf("err = %v, want ArityMismatchError", err)
			}
			if target.Expected != tt.expected || target.Got != len(tt.args) {
				t.Errorf("mismatch = %d/%d, want %d/%d", target.Expected, target.Got, tt.expected, len(tt.args))
			}
		})
	}
}

// =============================================================================
// Expand
// =============================================================================

func TestExpand(t *testing.T) {
	ctx, _ := setup()
	ctx.Def(env.NewFunc("F", ids("x"), expr.A("F", "x")))

	iExpr := expr.L("x", "x")
	kExpr := expr.L("x", expr.L("y", "x"))

	tests := []struct {
		name string
		e    expr.Expr
		want expr.Expr
	}{
		{"unbound stays", expr.V("q"), expr.V("q")},
		{"symbol stays", expr.S("k"), expr.S("k")},
		{"definition", expr.V("i"), iExpr},
		{"nested definitions", expr.V("TRUE"), expr.A(kExpr, iExpr)},
		{"bound name is not expanded", expr.L("k", expr.A("k", "i")), expr.L("k", expr.A("k", iExpr))},
		{"self reference stays", expr.V("F"), expr.L("x", expr.A("F", "x"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expand(ctx, tt.e); !expr.Equal(got, tt.want) {
				t.Errorf("Expand(%s) = %s, want %s", tt.e, got, tt.want)
			}
		})
	}
}

// Names bound around a reference do not follow the definition being
// inlined: x is bound in λx.f, yet the x inside f's body is the constant.
func TestExpandScopesInlinedBodies(t *testing.T) {
	ctx := env.NewContext(
		env.NewFunc("x", nil, expr.S("shadowed")),
		env.NewFunc("f", ids("y"), expr.A("x", "y")),
	)
	got := Expand(ctx, expr.L("x", "f"))
	want := expr.L("x", expr.L("y", expr.A(":shadowed", "y")))
	if !expr.Equal(got, want) {
		t.Errorf("Expand = %s, want %s", got, want)
	}
}

// =============================================================================
// Inventory
// =============================================================================

func TestInventoryRoundTrip(t *testing.T) {
	tests := []expr.Expr{
		expr.S("a"),
		expr.A(expr.A(expr.A(":a", ":b"), ":c"), ":d"),
		expr.A(expr.A(expr.A(":a", expr.A(":b", ":c")), ":d"), expr.A(":e", ":f")),
		expr.L("x", expr.A(expr.A("x", "x"), expr.L("y", "y"))),
	}
	for _, e := range tests {
		if got := decompose(e).expr(); !expr.Equal(got, e) {
			t.Errorf("round trip of %s = %s", e, got)
		}
	}
}

func TestDecompose(t *testing.T) {
	inv := decompose(expr.A(":g", expr.A(":f", expr.A("i", ":y"))))
	if !expr.Equal(inv.callee, expr.S("g")) || len(inv.args) != 1 {
		t.Fatalf("root = %s with %d args", inv.callee, len(inv.args))
	}
	f := inv.arg(1)
	if !expr.Equal(f.callee, expr.S("f")) || len(f.args) != 1 {
		t.Fatalf("arg 1 = %s with %d args", f.callee, len(f.args))
	}
	i := f.arg(1)
	if !expr.Equal(i.callee, expr.V("i")) || len(i.args) != 1 || !expr.Equal(i.arg(1).callee, expr.S("y")) {
		t.Fatalf("arg 1.1 = %s", i.expr())
	}

	// Arguments are kept innermost-peeled first.
	inv = decompose(expr.A(expr.A("k", ":a"), ":b"))
	if !expr.Equal(inv.args[0].callee, expr.S("b")) || !expr.Equal(inv.arg(1).callee, expr.S("a")) {
		t.Errorf("unexpected argument order: %s %s", inv.args[0].callee, inv.args[1].callee)
	}
}

// =============================================================================
// Reducer: redex search
// =============================================================================

func pathOf(t *testing.T, r *Reducer) []int {
	t.Helper()
	p, ok := r.ReduciblePath()
	if !ok {
		return nil
	}
	return p.Indices()
}

func TestReduciblePath(t *testing.T) {
	ctx, aliases := setup()

	tests := []struct {
		name string
		e    expr.Expr
		want []int
	}{
		{"symbol", expr.S("TRUE"), nil},
		{"bare constant", expr.V("TRUE"), nil},
		{"symbol callee", expr.A(":i", ":x"), nil},
		{"saturated", expr.A("i", ":x"), []int{1}},
		{"over-saturated", expr.A(expr.A("i", ":x"), ":y"), []int{1}},
		{"in argument", expr.A(":f", expr.A("i", ":x")), []int{1, 1}},
		{"outermost first", expr.A(expr.A("i", ":x"), expr.A("i", ":y")), []int{1}},
		{"second argument", expr.A(expr.A(":i", ":x"), expr.A("i", ":y")), []int{2, 1}},
		{"deep", expr.A(":g", expr.A(":f", expr.A("i", ":y"))), []int{1, 1, 1}},
		{"unsaturated", expr.A("k", ":a"), nil},
		{"constant applied", expr.A("TRUE", ":a"), []int{0}},
		{"bare alias", expr.V("_"), []int{0}},
		{"alias applied", expr.A("_", ":x"), []int{0}},
		{"alias as argument", expr.A(":x", "_"), []int{1, 0}},
		{"alias under lambda", expr.L("x", "_"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReducer(ctx, tt.e, WithAliases(aliases))
			if got := pathOf(t, r); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReduciblePath(%s) = %v, want %v", tt.e, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Reducer: step sequences
// =============================================================================

func collect(r *Reducer) []expr.Expr {
	var out []expr.Expr
	for res, ok := r.Next(); ok; res, ok = r.Next() {
		out = append(out, res.Expr)
	}
	return out
}

func TestReducerSteps(t *testing.T) {
	ctx, aliases := setup()
	lambdaK := expr.L("x", expr.L("y", "x"))

	tests := []struct {
		name string
		e    expr.Expr
		want []expr.Expr
	}{
		{"lambda i", expr.A(expr.L("x", "x"), ":a"), []expr.Expr{expr.S("a")}},
		{"lambda k partial", expr.A(lambdaK, ":a"), []expr.Expr{expr.L("y", ":a")}},
		{
			"lambda k",
			expr.A(expr.A(lambdaK, ":a"), ":b"),
			[]expr.Expr{expr.A(expr.L("y", ":a"), ":b"), expr.S("a")},
		},
		{"bare constant", expr.V("TRUE"), nil},
		{"constant as argument", expr.A(":a", "TRUE"), nil},
		{
			"constant applied",
			expr.A(expr.A("TRUE", ":a"), ":b"),
			[]expr.Expr{
				expr.A(expr.A(expr.A("k", "i"), ":a"), ":b"),
				expr.A("i", ":b"),
				expr.S("b"),
			},
		},
		{"i", expr.A("i", ":a"), []expr.Expr{expr.S("a")}},
		{"k unsaturated", expr.A("k", ":a"), nil},
		{"k", expr.A(expr.A("k", ":a"), ":b"), []expr.Expr{expr.S("a")}},
		{"s unsaturated", expr.A(expr.A("s", ":a"), ":b"), nil},
		{
			"s",
			expr.A(expr.A(expr.A("s", ":a"), ":b"), ":c"),
			[]expr.Expr{expr.A(expr.A(":a", ":c"), expr.A(":b", ":c"))},
		},
		{
			"skk",
			expr.A(expr.A(expr.A("s", "k"), "k"), ":a"),
			[]expr.Expr{expr.A(expr.A("k", ":a"), expr.A("k", ":a")), expr.S("a")},
		},
		{
			"right tree",
			expr.A(":a", expr.A(expr.A("k", ":b"), ":c")),
			[]expr.Expr{expr.A(":a", ":b")},
		},
		{
			"two redexes in arguments",
			expr.A(expr.A(":a", expr.A("i", ":b")), expr.A("i", ":c")),
			[]expr.Expr{
				expr.A(expr.A(":a", ":b"), expr.A("i", ":c")),
				expr.A(expr.A(":a", ":b"), ":c"),
			},
		},
		{
			"s with lambdas",
			expr.A(expr.A(expr.A("s", expr.L("x", expr.A("x", ":a"))), expr.L("x", expr.A("x", ":b"))), ":c"),
			[]expr.Expr{
				expr.A(expr.A(expr.L("x", expr.A("x", ":a")), ":c"), expr.A(expr.L("x", expr.A("x", ":b")), ":c")),
				expr.A(expr.A(":c", ":a"), expr.A(expr.L("x", expr.A("x", ":b")), ":c")),
				expr.A(expr.A(":c", ":a"), expr.A(":c", ":b")),
			},
		},
		{
			"alias",
			expr.A("_", ":a"),
			[]expr.Expr{expr.A(expr.L("x", expr.A("x", "x")), ":a"), expr.A(":a", ":a")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReducer(ctx, tt.e, WithAliases(aliases))
			got := collect(r)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d steps %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if !expr.Equal(got[i], tt.want[i]) {
					t.Errorf("step %d = %s, want %s", i+1, got[i], tt.want[i])
				}
			}
			if err := r.Err(); err != nil {
				t.Errorf("Err() = %v", err)
			}
		})
	}
}

func TestInventoryReduceErrors(t *testing.T) {
	ctx, aliases := setup()

	tests := []struct {
		name  string
		e     expr.Expr
		path  expr.Path
		check func(error) bool
	}{
		{
			"undefined callee",
			expr.A("F", ":a"), expr.Callee(1),
			func(err error) bool { var e *UndefinedFunctionError; return errors.As(err, &e) && e.Name == "F" },
		},
		{
			"arity above argument count",
			expr.A("k", ":a"), expr.Callee(2),
			func(err error) bool { var e *ArityMismatchError; return errors.As(err, &e) && e.Expected == 2 && e.Got == 1 },
		},
		{
			"arity below definition",
			expr.A(expr.A("k", ":a"), ":b"), expr.Callee(1),
			func(err error) bool { var e *ArityMismatchError; return errors.As(err, &e) && e.Expected == 2 && e.Got == 1 },
		},
		{
			"symbol callee",
			expr.A(":f", ":a"), expr.Callee(1),
			func(err error) bool { var e *NotAFunctionError; return errors.As(err, &e) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := decompose(tt.e)
			_, err := inv.reduce(ctx, aliases, tt.path)
			if !tt.check(err) {
				t.Fatalf("reduce(%s, %s) error = %v", tt.e, tt.path, err)
			}
			if !expr.Equal(inv.expr(), tt.e) {
				t.Errorf("failed reduce changed the term to %s", inv.expr())
			}
		})
	}
}

// A failed reduction is reported by Err and ends the sequence.
func TestReducerKeepsApplyError(t *testing.T) {
	ctx, aliases := setup()
	e := expr.A("F", ":a")
	r := NewReducer(ctx, e, WithAliases(aliases))

	if _, ok := r.reduceAt(expr.Callee(1)); ok {
		t.Fatal("reduceAt on an undefined callee returned a step")
	}
	var undef *UndefinedFunctionError
	if !errors.As(r.Err(), &undef) {
		t.Fatalf("Err() = %v, want *UndefinedFunctionError", r.Err())
	}
	if _, ok := r.Next(); ok {
		t.Error("Next() after an error returned a step")
	}
	if r.Step() != 0 || !expr.Equal(r.Expr(), e) {
		t.Errorf("Step() = %d, Expr() = %s after an error", r.Step(), r.Expr())
	}
}

// Terms whose callees Apply would reject are never selected as redexes, so
// Next runs them to normal form without an error.
func TestReducerNeverSelectsFailingRedex(t *testing.T) {
	ctx, aliases := setup()

	tests := []struct {
		name string
		e    expr.Expr
	}{
		{"undefined callee", expr.A(expr.A("F", ":a"), expr.A(expr.A("k", ":b"), ":c"))},
		{"symbol callee", expr.A(":f", expr.A("i", ":a"))},
		{"partial application", expr.A(expr.A("s", "k"), "k")},
		{"application callee", expr.A(expr.A(expr.A(":f", ":g"), ":a"), expr.A("TRUE", ":a"))},
		{"bare constant", expr.A(":f", "TRUE")},
		{"alias with arguments", expr.A(expr.A("_1", ":a"), ":b")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReducer(ctx, tt.e, WithAliases(aliases), WithUnaryReduction())
			for n := 0; n < 20; n++ {
				if _, ok := r.Next(); !ok {
					break
				}
			}
			if err := r.Err(); err != nil {
				t.Errorf("Err() = %v", err)
			}
		})
	}
}

func TestReducerExhaustionIsIdempotent(t *testing.T) {
	ctx, _ := setup()
	r := NewReducer(ctx, expr.A(expr.A("k", ":a"), ":b"))

	res, ok := r.Next()
	if !ok || res.Step != 1 {
		t.Fatalf("first Next() = %+v, %v", res, ok)
	}
	for i := 0; i < 3; i++ {
		if _, ok := r.Next(); ok {
			t.Fatalf("Next() after normal form returned a step")
		}
	}
	if r.Step() != 1 {
		t.Errorf("Step() = %d, want 1", r.Step())
	}
	if !expr.Equal(r.Expr(), expr.S("a")) {
		t.Errorf("Expr() = %s, want :a", r.Expr())
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v", r.Err())
	}
}

func TestReducerStepNumbers(t *testing.T) {
	ctx, _ := setup()
	r := NewReducer(ctx, expr.A(expr.A(expr.A("s", "k"), "k"), ":a"))
	want := 1
	for res, ok := r.Next(); ok; res, ok = r.Next() {
		if res.Step != want {
			t.Errorf("Step = %d, want %d", res.Step, want)
		}
		want++
	}
}

func TestReducerUnaryReduction(t *testing.T) {
	ctx, aliases := setup()

	r := NewReducer(ctx, expr.V("TRUE"), WithAliases(aliases), WithUnaryReduction())
	if got := pathOf(t, r); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("ReduciblePath = %v, want [0]", got)
	}
	got := collect(r)
	if len(got) != 1 || !expr.Equal(got[0], expr.A("k", "i")) {
		t.Errorf("steps = %v, want [`ki]", got)
	}

	// Only the root is affected.
	r = NewReducer(ctx, expr.A(":a", "TRUE"), WithUnaryReduction())
	if got := collect(r); len(got) != 0 {
		t.Errorf("steps = %v, want none", got)
	}
}

// =============================================================================
// Reducer: paths
// =============================================================================

func TestReducerPaths(t *testing.T) {
	ctx, _ := setup()

	tests := []struct {
		name      string
		e         expr.Expr
		reducible [][]int
		reduced   [][]int
	}{
		{
			"skk",
			expr.A(expr.A(expr.A("s", "k"), "k"), ":a"),
			[][]int{{3}, {2}},
			[][]int{{2}, {0}},
		},
		{
			"si(k:b):a",
			expr.A(expr.A(expr.A("s", "i"), expr.A("k", ":b")), ":a"),
			[][]int{{3}, {1}, {1, 2}},
			[][]int{{2}, {0}, {1, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReducer(ctx, tt.e)
			for i := range tt.reducible {
				if got := pathOf(t, r); !reflect.DeepEqual(got, tt.reducible[i]) {
					t.Errorf("step %d: ReduciblePath = %v, want %v", i+1, got, tt.reducible[i])
				}
				res, ok := r.Next()
				if !ok {
					t.Fatalf("step %d: Next() returned false", i+1)
				}
				if got := res.ReducedPath.Indices(); !reflect.DeepEqual(got, tt.reduced[i]) {
					t.Errorf("step %d: ReducedPath = %v, want %v", i+1, got, tt.reduced[i])
				}
			}
			if got := pathOf(t, r); got != nil {
				t.Errorf("ReduciblePath after normal form = %v", got)
			}
		})
	}
}

// The leftmost-outermost redex of `:a (k :b :c)` is the argument, since the
// symbol callee never reduces.
func TestReducerLeftmostOutermost(t *testing.T) {
	ctx, _ := setup()
	r := NewReducer(ctx, expr.A(":a", expr.A(expr.A("k", ":b"), ":c")))

	res, ok := r.Next()
	if !ok {
		t.Fatal("Next() returned false")
	}
	if got := res.ReducedPath.Indices(); !reflect.DeepEqual(got, []int{1, 0}) {
		t.Errorf("ReducedPath = %v, want [1 0]", got)
	}
	if !expr.Equal(res.Expr, expr.A(":a", ":b")) {
		t.Errorf("Expr = %s", res.Expr)
	}
	if _, ok := r.Next(); ok {
		t.Errorf("expected a single step")
	}
}

// The reducer reads a snapshot: later changes to the original Context do not
// affect a reducer built from a Clone.
func TestReducerUsesSnapshot(t *testing.T) {
	ctx, _ := setup()
	r := NewReducer(ctx.Clone(), expr.A("i", ":a"))
	ctx.Del("i")

	got := collect(r)
	if len(got) != 1 || !expr.Equal(got[0], expr.S("a")) {
		t.Errorf("steps = %v, want [:a]", got)
	}
}
