package engine

import (
	"fmt"

	"github.com/funvibe/funski/internal/command"
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
	"github.com/funvibe/funski/internal/prettyprinter"
)

// Output is the result of one command: *Deleted, *Updated, *Reduced, *Found,
// *Listed or *Unlambdaed.
type Output interface {
	Kind() string
}

type Deleted struct {
	ID expr.Identifier
}

type Updated struct {
	Func env.Func
}

// Found answers a query. OK is false when ID is not defined.
type Found struct {
	ID   expr.Identifier
	Func env.Func
	OK   bool
}

type Listed struct {
	Funcs   []env.Func
	Aliases []Alias
}

type Unlambdaed struct {
	Level  int
	Input  expr.Expr
	Result expr.Expr
}

// Mode says which steps of an evaluation are kept.
type Mode int

const (
	ModeAll  Mode = iota // every step
	ModeLast             // the final step only
	ModeHead             // the first Count steps
	ModeTail             // the last Count steps
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeLast:
		return "last"
	case ModeHead:
		return "head"
	case ModeTail:
		return "tail"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Step is one reduction. Reduced addresses the subterm that was just
// rewritten in Expr; Next, when HasNext, the redex of the following step.
type Step struct {
	Number  int
	Expr    expr.Expr
	Reduced expr.Path
	Next    expr.Path
	HasNext bool
}

// Reduced is the outcome of an evaluation.
type Reduced struct {
	Mode  Mode
	Count int
	Input expr.Expr
	// Next is the first redex of Input.
	Next    expr.Path
	HasNext bool

	Steps  []Step
	Result expr.Expr // the last term reached
	Total  int       // steps performed, kept or not
	Normal bool      // Result has no redex left
}

// Omitted is the number of performed steps not in Steps.
func (r *Reduced) Omitted() int { return r.Total - len(r.Steps) }

func (*Deleted) Kind() string    { return "delete" }
func (*Updated) Kind() string    { return "update" }
func (*Reduced) Kind() string    { return "reduce" }
func (*Found) Kind() string      { return "query" }
func (*Listed) Kind() string     { return "context" }
func (*Unlambdaed) Kind() string { return "unlambda" }

// =============================================================================
// Rendering
// =============================================================================

// Marker renders a formed term with the subterm at path set off.
type Marker func(f *prettyprinter.Formed, path expr.Path) string

// Plain ignores the path.
func Plain(f *prettyprinter.Formed, _ expr.Path) string { return f.Text }

// Brackets wraps the subterm in [ and ].
func Brackets(f *prettyprinter.Formed, path expr.Path) string {
	return f.Highlight(path, "[", "]")
}

// Lines renders out as display lines. A nil mark means Plain.
func Lines(style prettyprinter.Style, out Output, mark Marker) []string {
	if mark == nil {
		mark = Plain
	}
	switch out := out.(type) {
	case *Deleted:
		return []string{prettyprinter.FormatCommand(style, command.Del{ID: out.ID})}

	case *Updated:
		return []string{prettyprinter.FormatFunc(style, out.Func)}

	case *Found:
		if !out.OK {
			return []string{fmt.Sprintf("%s is not defined", out.ID)}
		}
		return []string{prettyprinter.FormatFunc(style, out.Func)}

	case *Listed:
		lines := make([]string, 0, len(out.Funcs)+len(out.Aliases))
		for _, f := range out.Funcs {
			lines = append(lines, prettyprinter.FormatFunc(style, f))
		}
		for _, a := range out.Aliases {
			lines = append(lines, fmt.Sprintf("%s = %s", a.Name, prettyprinter.Format(style, a.Expr)))
		}
		return lines

	case *Unlambdaed:
		return []string{prettyprinter.Format(style, out.Result)}

	case *Reduced:
		return reducedLines(style, out, mark)

	default:
		return nil
	}
}

func reducedLines(style prettyprinter.Style, out *Reduced, mark Marker) []string {
	lines := make([]string, 0, len(out.Steps)+3)

	input := prettyprinter.Render(style, out.Input)
	if out.HasNext {
		lines = append(lines, mark(input, out.Next))
	} else {
		lines = append(lines, input.Text)
	}

	if out.Omitted() > 0 && (out.Mode == ModeLast || out.Mode == ModeTail) {
		lines = append(lines, "→ ...")
	}
	for _, s := range out.Steps {
		lines = append(lines, "→ "+mark(prettyprinter.Render(style, s.Expr), s.Reduced))
	}
	if !out.Normal && out.Mode != ModeHead {
		lines = append(lines, fmt.Sprintf("→ ... (stopped after %d steps)", out.Total))
	}
	return lines
}
