// Package parser reads Lazy K expressions and commands.
//
// Expressions:
//
//	`fa        application
//	^x.e λx.e  abstraction
//	:a         symbol
//	x FOO ι    variables: one lowercase letter, a run of [A-Z0-9_], or ι
//
// Commands:
//
//	e          evaluate step by step
//	! e        show the normal form only
//	!N e       first N steps
//	!-N e      last N steps
//	``fxy = e  define f
//	f = f      delete f
//	? f        look f up
//	?          list definitions
//	~ e        expand definitions; ~~, ~~~, ~~~~ abstract over SKI, SK, Iota
package parser

import (
	"fmt"
	"strconv"

	"github.com/funvibe/funski/internal/command"
	"github.com/funvibe/funski/internal/env"
	"github.com/funvibe/funski/internal/expr"
	"github.com/funvibe/funski/internal/lexer"
	"github.com/funvibe/funski/internal/token"
)

// Error is a syntax error at a byte offset of the input.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

type Parser struct {
	toks []token.Token
	pos  int
}

func New(input string) *Parser {
	return &Parser{toks: lexer.New(input).Tokens()}
}

// ParseExpr parses a whole input as a single expression.
func ParseExpr(input string) (expr.Expr, error) {
	p := New(input)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseCommand parses one command line.
func ParseCommand(input string) (command.Command, error) {
	p := New(input)
	c, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseFunc parses a definition such as ``kxy = x.
func ParseFunc(input string) (env.Func, error) {
	c, err := ParseCommand(input)
	if err != nil {
		return env.Func{}, err
	}
	u, ok := c.(command.Update)
	if !ok {
		return env.Func{}, &Error{Pos: 0, Msg: fmt.Sprintf("not a definition: %s", c)}
	}
	return u.Func, nil
}

func (p *Parser) cur() token.Token { return p.toks[p.pos] }

func (p *Parser) next() token.Token {
	tok := p.toks[p.pos]
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) error {
	return &Error{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	tok := p.next()
	if tok.Type != t {
		return tok, p.errorf(tok, "expected %s, got %s", t, describe(tok))
	}
	return tok, nil
}

func (p *Parser) expectEOF() error {
	if tok := p.cur(); tok.Type != token.EOF {
		return p.errorf(tok, "unexpected %s", describe(tok))
	}
	return nil
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return fmt.Sprintf("identifier %q", tok.Lexeme)
	default:
		return fmt.Sprintf("%q", tok.Lexeme)
	}
}

// =============================================================================
// Expressions
// =============================================================================

func (p *Parser) parseExpr() (expr.Expr, error) {
	tok := p.next()
	switch tok.Type {
	case token.BACKTICK:
		lhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &expr.Apply{Lhs: lhs, Rhs: rhs}, nil

	case token.LAMBDA:
		param, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &expr.Lambda{Param: expr.Identifier(param.Lexeme), Body: body}, nil

	case token.COLON:
		id, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &expr.Symbol{ID: expr.Identifier(id.Lexeme)}, nil

	case token.IDENT:
		return &expr.Variable{ID: expr.Identifier(tok.Lexeme)}, nil

	default:
		return nil, p.errorf(tok, "expected expression, got %s", describe(tok))
	}
}

// =============================================================================
// Commands
// =============================================================================

func (p *Parser) parseCommand() (command.Command, error) {
	switch tok := p.cur(); tok.Type {
	case token.EOF:
		return nil, p.errorf(tok, "empty command")
	case token.QUESTION:
		return p.parseQuery()
	case token.BANG:
		return p.parseBulkEval()
	case token.TILDE:
		return p.parseUnlambda()
	}

	start := p.cur()
	lhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != token.ASSIGN {
		return command.Eval{Expr: lhs}, nil
	}
	p.next()
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return p.definition(start, lhs, rhs)
}

// definition turns `lhs = rhs` into Update or Del. The left side must be a
// name applied to parameter names.
func (p *Parser) definition(start token.Token, lhs, rhs expr.Expr) (command.Command, error) {
	callee, args := expr.Unapply(lhs)
	name, ok := callee.(*expr.Variable)
	if !ok {
		return nil, p.errorf(start, "cannot define %s", lhs)
	}
	params := make([]expr.Identifier, 0, len(args))
	for _, a := range args {
		v, ok := a.(*expr.Variable)
		if !ok {
			return nil, p.errorf(start, "parameter %s is not a variable", a)
		}
		params = append(params, v.ID)
	}

	if len(params) == 0 {
		if v, ok := rhs.(*expr.Variable); ok && v.ID == name.ID {
			return command.Del{ID: name.ID}, nil
		}
	}
	return command.Update{Func: env.NewFunc(name.ID, params, rhs)}, nil
}

func (p *Parser) parseQuery() (command.Command, error) {
	p.next()
	if p.cur().Type == token.EOF {
		return command.ListContext{}, nil
	}
	id, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return command.Query{ID: expr.Identifier(id.Lexeme)}, nil
}

// parseBulkEval reads `! e`, `!N e` and `!-N e`. The count must follow the
// bang without a space; `! 42` evaluates the identifier 42.
func (p *Parser) parseBulkEval() (command.Command, error) {
	bang := p.next()

	tail := false
	adjacent := bang.End()
	if tok := p.cur(); tok.Type == token.MINUS && tok.Pos == adjacent {
		p.next()
		tail = true
		adjacent = tok.End()
		if n := p.cur(); !n.IsNumber() || n.Pos != adjacent {
			return nil, p.errorf(n, "expected step count after !-")
		}
	}

	count := -1
	if tok := p.cur(); tok.IsNumber() && tok.Pos == adjacent {
		p.next()
		n, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, p.errorf(tok, "invalid step count %q", tok.Lexeme)
		}
		count = n
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	switch {
	case tail:
		return command.EvalTail{N: count, Expr: e}, nil
	case count >= 0:
		return command.EvalHead{N: count, Expr: e}, nil
	default:
		return command.EvalLast{Expr: e}, nil
	}
}

func (p *Parser) parseUnlambda() (command.Command, error) {
	first := p.cur()
	level := 0
	for p.cur().Type == token.TILDE {
		p.next()
		level++
	}
	if level > command.LevelIota {
		return nil, p.errorf(first, "unlambda level %d out of range 1..%d", level, command.LevelIota)
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return command.Unlambda{Level: level, Expr: e}, nil
}
