package script

import (
	"strings"
)

const undefined = "undefined"

type frame map[string]interface{}

type options struct {
	maxCallDepth int
}

var defaultOptions = options{
	maxCallDepth: 256,
}

type Option func(opts *options)

// WithMaxCallDepth bounds the number of nested function calls.
func WithMaxCallDepth(n int) Option {
	return func(opts *options) {
		opts.maxCallDepth = n
	}
}

// Interpreter evaluates parsed scripts. Values are strings or function
// bodies. Calls see every frame of their caller, and document.write output
// is collected outside of any frame so assignments never reach it.
type Interpreter struct {
	options
	scopes []frame
	out    strings.Builder
	depth  int
}

func NewInterpreter(opts ...Option) *Interpreter {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	return &Interpreter{options: options}
}

// Eval runs b as a top-level block and returns everything written to the
// sink. The interpreter may be reused.
func (in *Interpreter) Eval(b *Block) (string, error) {
	in.scopes = in.scopes[:0]
	in.out.Reset()
	in.depth = 0

	if err := in.execBlock(b); err != nil {
		return "", err
	}

	return in.out.String(), nil
}

// Run parses and evaluates src with the built-in interpreter.
func Run(src string) (string, error) {
	b, err := Parse(src)
	if err != nil {
		return "", err
	}

	return NewInterpreter().Eval(b)
}

func (in *Interpreter) execBlock(b *Block) error {
	f := frame{}
	in.scopes = append(in.scopes, f)
	defer func() {
		in.scopes = in.scopes[:len(in.scopes)-1]
	}()

	// declarations first
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *FuncDef:
			f[s.Name] = s.Body
		case *VarDecl:
			for _, name := range s.Names {
				f[name] = undefined
			}
		}
	}

	for _, s := range b.Stmts {
		var err error
		switch s := s.(type) {
		case *AssignStmt:
			err = in.assign(s.Name, s.Expr, s.Pos, false)
		case *AddAssignStmt:
			err = in.assign(s.Name, s.Expr, s.Pos, true)
		case *WriteCall:
			var v string
			if v, err = in.eval(s.Expr); err == nil {
				in.out.WriteString(v)
			}
		case *FuncCall:
			err = in.call(s)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func (in *Interpreter) lookup(name string, pos Pos) (frame, interface{}, error) {
	for i := len(in.scopes) - 1; i >= 0; i-- {
		if v, ok := in.scopes[i][name]; ok {
			return in.scopes[i], v, nil
		}
	}

	return nil, nil, &RuntimeError{Name: name, Pos: pos, Err: ErrUndefined}
}

func (in *Interpreter) str(name string, pos Pos) (string, error) {
	_, v, err := in.lookup(name, pos)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &RuntimeError{Name: name, Pos: pos, Err: ErrNotString}
	}

	return s, nil
}

func (in *Interpreter) eval(e *StringExpr) (string, error) {
	var b strings.Builder
	for _, op := range e.Operands {
		switch op := op.(type) {
		case Literal:
			b.WriteString(op.Value)
		case *VarRef:
			s, err := in.str(op.Name, op.Pos)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}

	return b.String(), nil
}

func (in *Interpreter) assign(name string, e *StringExpr, pos Pos, add bool) error {
	f, _, err := in.lookup(name, pos)
	if err != nil {
		return err
	}

	prefix := ""
	if add {
		if prefix, err = in.str(name, pos); err != nil {
			return err
		}
	}
	v, err := in.eval(e)
	if err != nil {
		return err
	}
	f[name] = prefix + v

	return nil
}

func (in *Interpreter) call(s *FuncCall) error {
	_, v, err := in.lookup(s.Name, s.Pos)
	if err != nil {
		return err
	}
	body, ok := v.(*Block)
	if !ok {
		return &RuntimeError{Name: s.Name, Pos: s.Pos, Err: ErrNotCallable}
	}
	if in.depth >= in.maxCallDepth {
		return &RuntimeError{Name: s.Name, Pos: s.Pos, Err: ErrCallDepth}
	}

	in.depth++
	defer func() { in.depth-- }()

	return in.execBlock(body)
}
