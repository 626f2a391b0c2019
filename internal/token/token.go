// Package token defines the tokens of the Lazy K surface syntax.
package token

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT TokenType = "IDENT" // a, FOO, X0, 42, ι

	BACKTICK TokenType = "`"
	LAMBDA   TokenType = "λ" // also written ^
	DOT      TokenType = "."
	COLON    TokenType = ":"
	ASSIGN   TokenType = "="
	BANG     TokenType = "!"
	QUESTION TokenType = "?"
	TILDE    TokenType = "~"
	MINUS    TokenType = "-"
)

type Token struct {
	Type   TokenType
	Lexeme string
	Pos    int // byte offset in the input
	Column int // 1-based rune column
}

// End returns the byte offset just past the token.
func (t Token) End() int { return t.Pos + len(t.Lexeme) }

// IsNumber reports whether an IDENT token consists of digits only.
func (t Token) IsNumber() bool {
	if t.Type != IDENT || t.Lexeme == "" {
		return false
	}
	for i := 0; i < len(t.Lexeme); i++ {
		if t.Lexeme[i] < '0' || t.Lexeme[i] > '9' {
			return false
		}
	}
	return true
}
