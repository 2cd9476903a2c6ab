package selector

import "fmt"

// ScanError reports a character that starts no token.
type ScanError struct {
	Char rune
	Pos  int
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("unknown symbol '%c' on position %d", e.Char, e.Pos+1)
}

// ParseError reports an unexpected token. Weight is the number of tokens
// consumed before the failure; the parser keeps the heaviest one.
type ParseError struct {
	Token  Token
	Weight int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("invalid syntax '%s' on position %d: %s", e.Token.Value, e.Token.Pos+1, e.Msg)
	}
	return fmt.Sprintf("invalid syntax '%s' on position %d", e.Token.Value, e.Token.Pos+1)
}
