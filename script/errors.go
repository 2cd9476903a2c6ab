package script

import (
	"errors"
	"fmt"
)

var (
	ErrUndefined   = errors.New("is not defined")
	ErrNotCallable = errors.New("is not a function")
	ErrNotString   = errors.New("is not a string")
	ErrCallDepth   = errors.New("exceeds the maximum call depth")
)

type ScanError struct {
	Char rune
	Line int
	Col  int
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("unknown symbol '%c' (line: %d, pos: %d)", e.Char, e.Line, e.Col)
}

// ParseError reports an unexpected token. Weight is the number of tokens
// consumed before the failure; the parser keeps the heaviest one.
type ParseError struct {
	Token  Token
	Weight int
}

func (e *ParseError) Error() string {
	v := e.Token.Value
	if e.Token.Type == Newline {
		v = `\n`
	}
	return fmt.Sprintf("invalid syntax '%s' (%v)", v, e.Token.Pos)
}

// RuntimeError is raised while evaluating a script. Err is one of the
// package sentinels.
type RuntimeError struct {
	Name string
	Pos  Pos
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("'%s' %v (%v)", e.Name, e.Err, e.Pos)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
