package selector

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type TokenType int

const (
	Ident TokenType = iota
	Dot
	LeftBracket
	RightBracket
	LeftParen
	RightParen
	Equal
	Colon
	Comma
	Space
	String
	EOF
)

var tokenNames = [...]string{
	Ident:        "IDENT",
	Dot:          "DOT",
	LeftBracket:  "LEFT_BRACKET",
	RightBracket: "RIGHT_BRACKET",
	LeftParen:    "LEFT_PAREN",
	RightParen:   "RIGHT_PAREN",
	Equal:        "EQUAL",
	Colon:        "COLON",
	Comma:        "COMMA",
	Space:        "SPACE",
	String:       "STRING",
	EOF:          "EOF",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset in the selector text
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%v, '%s')", t.Type, t.Value)
}

var punct = map[rune]TokenType{
	'.': Dot,
	'[': LeftBracket,
	']': RightBracket,
	'(': LeftParen,
	')': RightParen,
	'=': Equal,
	':': Colon,
	',': Comma,
}

// Scan splits a selector into tokens. The result always ends with an EOF
// token. A run of spaces becomes a single Space token and quoted strings
// are returned without their quotes.
func Scan(text string) ([]Token, error) {
	var tokens []Token
	pos := 0
	for pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		start := pos
		switch {
		case isIdentStart(r):
			pos += size
			for pos < len(text) {
				r, size = utf8.DecodeRuneInString(text[pos:])
				if !isIdentPart(r) {
					break
				}
				pos += size
			}
			tokens = append(tokens, Token{Type: Ident, Value: text[start:pos], Pos: start})
		case r == ' ':
			for pos < len(text) && text[pos] == ' ' {
				pos++
			}
			tokens = append(tokens, Token{Type: Space, Value: text[start:pos], Pos: start})
		case r == '\'' || r == '"':
			end := indexFrom(text, pos+1, byte(r))
			if end < 0 {
				return nil, &ScanError{Char: r, Pos: start}
			}
			tokens = append(tokens, Token{Type: String, Value: text[pos+1 : end], Pos: start})
			pos = end + 1
		default:
			tt, ok := punct[r]
			if !ok {
				return nil, &ScanError{Char: r, Pos: start}
			}
			pos += size
			tokens = append(tokens, Token{Type: tt, Value: text[start:pos], Pos: start})
		}
	}

	return append(tokens, Token{Type: EOF, Value: "EOF", Pos: pos}), nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func indexFrom(s string, from int, c byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
