package script

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType int

const (
	Newline TokenType = iota
	Add
	Assign
	AddAssign
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Ident
	String
	Function
	Var
	Write
	EOF
)

var tokenNames = [...]string{
	Newline:    "NEWLINE",
	Add:        "ADD",
	Assign:     "ASSIGN",
	AddAssign:  "ADD_ASSIGN",
	LeftParen:  "LEFT_PAREN",
	RightParen: "RIGHT_PAREN",
	LeftBrace:  "LEFT_BRACE",
	RightBrace: "RIGHT_BRACE",
	Comma:      "COMMA",
	Ident:      "IDENT",
	String:     "STRING",
	Function:   "FUNCTION",
	Var:        "VAR",
	Write:      "WRITE",
	EOF:        "EOF",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("line: %d, pos: %d", p.Line, p.Col)
}

type Token struct {
	Type  TokenType
	Value string
	Pos   Pos
}

func (t Token) String() string {
	v := t.Value
	if t.Type == Newline {
		v = `\n`
	}
	return fmt.Sprintf("Token(%v, '%s')", t.Type, v)
}

// sink is the only dotted name in the language.
const sink = "document.write"

var keywords = map[string]TokenType{
	"function": Function,
	"var":      Var,
}

var punct = map[byte]TokenType{
	'+': Add,
	'=': Assign,
	'(': LeftParen,
	')': RightParen,
	'{': LeftBrace,
	'}': RightBrace,
	',': Comma,
}

type scanner struct {
	src    string
	off    int
	line   int
	col    int
	tokens []Token
}

// Scan splits src into tokens ending with EOF. Comments are dropped, runs of
// newlines collapse into one Newline token and newlines before the first
// token are skipped.
func Scan(src string) ([]Token, error) {
	s := &scanner{src: src, line: 1, col: 1}
	for s.off < len(s.src) {
		if err := s.next(); err != nil {
			return nil, err
		}
	}
	s.emit(EOF, "EOF", s.pos())

	return s.tokens, nil
}

func (s *scanner) pos() Pos {
	return Pos{Line: s.line, Col: s.col}
}

func (s *scanner) advance(n int) {
	s.off += n
	s.col += n
}

func (s *scanner) emit(tt TokenType, value string, p Pos) {
	s.tokens = append(s.tokens, Token{Type: tt, Value: value, Pos: p})
}

func (s *scanner) next() error {
	rest := s.src[s.off:]
	start := s.pos()
	c := rest[0]

	switch {
	case c == ' ' || c == '\t' || c == '\r':
		s.advance(1)
	case c == '\n':
		s.off++
		s.line++
		s.col = 1
		if n := len(s.tokens); n > 0 && s.tokens[n-1].Type != Newline {
			s.emit(Newline, "\n", start)
		}
	case strings.HasPrefix(rest, "//") || strings.HasPrefix(rest, "<!--"):
		end := strings.IndexByte(rest, '\n')
		if end < 0 {
			end = len(rest)
		}
		s.off += end
		s.col += utf8.RuneCountInString(rest[:end])
	case strings.HasPrefix(rest, "+="):
		s.advance(2)
		s.emit(AddAssign, "+=", start)
	case strings.HasPrefix(rest, sink):
		s.advance(len(sink))
		s.emit(Write, sink, start)
	case c == '\'' || c == '"':
		end := strings.IndexAny(rest[1:], string(c)+"\n")
		if end < 0 || rest[1+end] == '\n' {
			return &ScanError{Char: rune(c), Line: start.Line, Col: start.Col}
		}
		value := rest[1 : 1+end]
		s.off += end + 2
		s.col += utf8.RuneCountInString(value) + 2
		s.emit(String, value, start)
	default:
		if tt, ok := punct[c]; ok {
			s.advance(1)
			s.emit(tt, rest[:1], start)
			return nil
		}

		r, size := utf8.DecodeRuneInString(rest)
		if !isIdentStart(r) {
			return &ScanError{Char: r, Line: start.Line, Col: start.Col}
		}
		n := size
		for n < len(rest) {
			r, size = utf8.DecodeRuneInString(rest[n:])
			if !isIdentPart(r) {
				break
			}
			n += size
		}
		word := rest[:n]
		s.off += n
		s.col += utf8.RuneCountInString(word)
		if tt, ok := keywords[word]; ok {
			s.emit(tt, word, start)
		} else {
			s.emit(Ident, word, start)
		}
	}

	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
