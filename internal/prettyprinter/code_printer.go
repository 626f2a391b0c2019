package prettyprinter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/funvibe/funski/internal/command"
	"github.com/funvibe/funski/internal/config"
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
)

// --- Code Printer (output reads back as source in the chosen style) ---

// Style selects the surface syntax terms are printed in.
type Style int

const (
	LazyK Style = iota
	ECMAScript
)

func (s Style) String() string {
	switch s {
	case LazyK:
		return config.StyleLazyK
	case ECMAScript:
		return config.StyleECMAScript
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// ParseStyle maps a config display_style value to a Style.
func ParseStyle(name string) (Style, error) {
	switch name {
	case config.StyleLazyK, "":
		return LazyK, nil
	case config.StyleECMAScript:
		return ECMAScript, nil
	default:
		return LazyK, fmt.Errorf("unknown display style %q", name)
	}
}

// span records where a node landed in the output. For an application spine
// callee and args hold the pieces in reading order.
type span struct {
	start, end int
	callee     *span
	args       []*span
}

type CodePrinter struct {
	buf   bytes.Buffer
	style Style
}

func NewCodePrinter(style Style) *CodePrinter {
	return &CodePrinter{style: style}
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

// writeIdent separates two Lazy K identifiers that would otherwise lex as one.
func (p *CodePrinter) writeIdent(id expr.Identifier) {
	if p.style == LazyK {
		b := p.buf.Bytes()
		if len(b) > 0 && len(id) > 0 && expr.IsLongIdentByte(b[len(b)-1]) && expr.IsLongIdentByte(id[0]) {
			p.buf.WriteByte(' ')
		}
	}
	p.write(string(id))
}

// printExpr writes e and returns its span. The span starts after any
// separating space.
func (p *CodePrinter) printExpr(e expr.Expr) *span {
	if p.style == ECMAScript {
		return p.printECMAScript(e)
	}
	return p.printLazyK(e)
}

func (p *CodePrinter) printLazyK(e expr.Expr) *span {
	start := p.buf.Len()
	switch node := e.(type) {
	case *expr.Variable:
		p.writeIdent(node.ID)
		return &span{start: p.buf.Len() - len(node.ID), end: p.buf.Len()}

	case *expr.Symbol:
		p.write(":" + string(node.ID))
		return &span{start: start, end: p.buf.Len()}

	case *expr.Apply:
		callee, args := expr.Unapply(node)
		p.write(strings.Repeat("`", len(args)))
		s := &span{start: start, callee: p.printLazyK(callee)}
		for _, arg := range args {
			s.args = append(s.args, p.printLazyK(arg))
		}
		s.end = p.buf.Len()
		return s

	case *expr.Lambda:
		p.write("λ")
		p.writeIdent(node.Param)
		p.write(".")
		p.printLazyK(node.Body)
		return &span{start: start, end: p.buf.Len()}

	default:
		p.write("<?>")
		return &span{start: start, end: p.buf.Len()}
	}
}

func (p *CodePrinter) printECMAScript(e expr.Expr) *span {
	start := p.buf.Len()
	switch node := e.(type) {
	case *expr.Variable:
		p.write(string(node.ID))

	case *expr.Symbol:
		p.write(":" + string(node.ID))

	case *expr.Apply:
		callee, args := expr.Unapply(node)
		s := &span{start: start}
		switch callee.(type) {
		case *expr.Variable, *expr.Symbol:
			s.callee = p.printECMAScript(callee)
		default:
			p.write("(")
			s.callee = p.printECMAScript(callee)
			p.write(")")
		}
		p.write("(")
		for i, arg := range args {
			if i > 0 {
				p.write(", ")
			}
			s.args = append(s.args, p.printECMAScript(arg))
		}
		p.write(")")
		s.end = p.buf.Len()
		return s

	case *expr.Lambda:
		params, body := expr.Uncurry(node)
		names := make([]string, len(params))
		for i, param := range params {
			names[i] = string(param)
		}
		if len(names) == 1 {
			p.write(names[0])
		} else {
			p.write("(" + strings.Join(names, ", ") + ")")
		}
		p.write(" => ")
		p.printECMAScript(body)

	default:
		p.write("<?>")
	}
	return &span{start: start, end: p.buf.Len()}
}

// =============================================================================
// Public API
// =============================================================================

// Formed is a rendered term that remembers where each spine piece landed.
type Formed struct {
	Text  string
	style Style
	root  *span
}

// Render prints e in the given style.
func Render(style Style, e expr.Expr) *Formed {
	p := NewCodePrinter(style)
	root := p.printExpr(e)
	return &Formed{Text: p.String(), style: style, root: root}
}

// Format prints e in the given style.
func Format(style Style, e expr.Expr) string {
	return Render(style, e).Text
}

// Range returns the half-open byte range of Text covered by the subterm at
// path. Callee(n) selects the callee applied to its first n arguments. ok is
// false when path does not address this term.
func (f *Formed) Range(path expr.Path) (start, end int, ok bool) {
	node := f.root
	for _, route := range path.Routes {
		if route < 1 || route > len(node.args) {
			return 0, 0, false
		}
		node = node.args[route-1]
	}

	n, m := path.Arity, len(node.args)
	switch {
	case n < 0 || n > m:
		return 0, 0, false
	case n == m:
		return node.start, node.end, true
	case n == 0:
		return node.callee.start, node.callee.end, true
	}

	if f.style == LazyK {
		// Skip the backticks of the m-n applications outside the prefix.
		start = node.start + (m - n)
	} else {
		start = node.callee.start
	}
	return start, node.args[n-1].end, true
}

// Highlight wraps the subterm at path in open and close. The text is returned
// unchanged when path does not address this term.
func (f *Formed) Highlight(path expr.Path, open, close string) string {
	start, end, ok := f.Range(path)
	if !ok {
		return f.Text
	}
	return f.Text[:start] + open + f.Text[start:end] + close + f.Text[end:]
}

// FormatFunc prints a definition: ``kxy = x or k(x, y) = x.
func FormatFunc(style Style, fn env.Func) string {
	if style == LazyK {
		return fn.String()
	}
	body := Format(style, fn.Body())
	if fn.Arity() == 0 {
		return fmt.Sprintf("%s = %s", fn.Name(), body)
	}
	params := fn.Params()
	names := make([]string, len(params))
	for i, param := range params {
		names[i] = string(param)
	}
	return fmt.Sprintf("%s(%s) = %s", fn.Name(), strings.Join(names, ", "), body)
}

// FormatContext prints every definition on its own line in display order.
func FormatContext(style Style, ctx *env.Context) string {
	funcs := ctx.Funcs()
	lines := make([]string, len(funcs))
	for i, fn := range funcs {
		lines[i] = FormatFunc(style, fn)
	}
	return strings.Join(lines, "\n")
}

// FormatCommand prints c with its expressions in the given style.
func FormatCommand(style Style, c command.Command) string {
	if style == LazyK {
		return c.String()
	}
	switch c := c.(type) {
	case command.Update:
		return FormatFunc(style, c.Func)
	case command.Eval:
		return Format(style, c.Expr)
	case command.EvalLast:
		return "! " + Format(style, c.Expr)
	case command.EvalHead:
		return fmt.Sprintf("!%d %s", c.N, Format(style, c.Expr))
	case command.EvalTail:
		return fmt.Sprintf("!-%d %s", c.N, Format(style, c.Expr))
	case command.Unlambda:
		return strings.Repeat("~", c.Level) + " " + Format(style, c.Expr)
	default:
		return c.String()
	}
}
