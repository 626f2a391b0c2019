// Package lexer splits Lazy K source into tokens.
package lexer

import (
	"unicode/utf8"

	"github.com/funvibe/funski/internal/expr"
	"github.com/funvibe/funski/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	l.position = l.readPosition
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.readPosition++
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.readPosition += w
	}
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	if l.position >= len(l.input) {
		return token.Token{Type: token.EOF, Pos: len(l.input), Column: l.column}
	}

	var tok token.Token
	switch l.ch {
	case '`':
		tok = l.newToken(token.BACKTICK)
	case '^', 'λ':
		tok = l.newToken(token.LAMBDA)
	case '.':
		tok = l.newToken(token.DOT)
	case ':':
		tok = l.newToken(token.COLON)
	case '=':
		tok = l.newToken(token.ASSIGN)
	case '!':
		tok = l.newToken(token.BANG)
	case '?':
		tok = l.newToken(token.QUESTION)
	case '~':
		tok = l.newToken(token.TILDE)
	case '-':
		tok = l.newToken(token.MINUS)
	case 'ι':
		tok = l.newToken(token.IDENT)
	default:
		switch {
		case isShortIdent(l.ch):
			tok = l.newToken(token.IDENT)
		case isLongIdent(l.ch):
			return l.readLongIdent()
		default:
			tok = l.newToken(token.ILLEGAL)
		}
	}
	l.readChar()
	return tok
}

// Tokens lexes the whole input, EOF included.
func (l *Lexer) Tokens() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) newToken(t token.TokenType) token.Token {
	return token.Token{
		Type:   t,
		Lexeme: l.input[l.position:l.readPosition],
		Pos:    l.position,
		Column: l.column,
	}
}

// readLongIdent consumes a run of [A-Z0-9_].
func (l *Lexer) readLongIdent() token.Token {
	start, column := l.position, l.column
	for isLongIdent(l.ch) {
		l.readChar()
	}
	return token.Token{Type: token.IDENT, Lexeme: l.input[start:l.position], Pos: start, Column: column}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}

func isShortIdent(ch rune) bool {
	return 'a' <= ch && ch <= 'z'
}

func isLongIdent(ch rune) bool {
	return ch < utf8.RuneSelf && expr.IsLongIdentByte(byte(ch))
}
