package script

// Grammar:
//
//	script     = block EOF
//	block      = ( stmt NEWLINE* )*
//	stmt       = funcdef | vardecl | assign | addassign | write | call
//	funcdef    = "function" IDENT '(' ')' '{' block '}'
//	vardecl    = "var" IDENT ( ',' IDENT )* end
//	assign     = IDENT '=' expr end
//	addassign  = IDENT '+=' expr end
//	write      = "document.write" '(' expr ')' end
//	call       = IDENT '(' ')' end
//	expr       = ( STRING | IDENT ) ( '+' ( STRING | IDENT ) )*
//	end        = NEWLINE | EOF | before '}'
//
// Newlines are allowed between the tokens of a statement wherever the
// statement cannot end.

type parser struct {
	toks []Token
	pos  int
	best *ParseError
}

// Parse parses a whole script.
func Parse(src string) (*Block, error) {
	toks, err := Scan(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	b := p.block()
	if _, err := p.expect(EOF); err != nil {
		return nil, p.best
	}

	return b, nil
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) expect(tt TokenType) (Token, error) {
	t := p.toks[p.pos]
	if t.Type != tt {
		return t, p.fail(t)
	}
	if t.Type != EOF {
		p.pos++
	}
	return t, nil
}

func (p *parser) accept(tt TokenType) bool {
	if p.toks[p.pos].Type != tt || tt == EOF {
		return false
	}
	p.pos++
	return true
}

func (p *parser) skipNewlines() {
	for p.accept(Newline) {
	}
}

func (p *parser) fail(t Token) *ParseError {
	if p.best == nil || p.pos > p.best.Weight {
		p.best = &ParseError{Token: t, Weight: p.pos}
	}
	return p.best
}

// statements are tried in order. Filled in init since funcDef reaches back
// into block.
var statements []func(*parser) (Stmt, error)

func init() {
	statements = []func(*parser) (Stmt, error){
		(*parser).funcDef,
		(*parser).varDecl,
		(*parser).assign,
		(*parser).addAssign,
		(*parser).writeCall,
		(*parser).funcCall,
	}
}

func (p *parser) block() *Block {
	b := &Block{}
	for {
		found := false
		for _, rule := range statements {
			start := p.pos
			s, err := rule(p)
			if err != nil {
				p.pos = start
				continue
			}
			b.Stmts = append(b.Stmts, s)
			p.skipNewlines()
			found = true
			break
		}
		if !found {
			return b
		}
	}
}

// end accepts a statement terminator. A closing brace terminates the last
// statement of a function body and is left for funcDef to consume.
func (p *parser) end() error {
	switch p.peek().Type {
	case Newline:
		p.pos++
		return nil
	case EOF, RightBrace:
		return nil
	}
	return p.fail(p.peek())
}

func (p *parser) funcDef() (Stmt, error) {
	kw, err := p.expect(Function)
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(LeftParen); err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(RightParen); err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(LeftBrace); err != nil {
		return nil, err
	}
	p.skipNewlines()
	body := p.block()
	if _, err := p.expect(RightBrace); err != nil {
		return nil, err
	}

	return &FuncDef{Name: name.Value, Body: body, Pos: kw.Pos}, nil
}

func (p *parser) varDecl() (Stmt, error) {
	kw, err := p.expect(Var)
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	s := &VarDecl{Names: []string{name.Value}, Pos: kw.Pos}

	for {
		mark := p.pos
		p.skipNewlines()
		if !p.accept(Comma) {
			p.pos = mark
			break
		}
		p.skipNewlines()
		name, err := p.expect(Ident)
		if err != nil {
			return nil, err
		}
		s.Names = append(s.Names, name.Value)
	}

	if err := p.end(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *parser) operand() (Operand, error) {
	t := p.peek()
	switch t.Type {
	case String:
		p.pos++
		return Literal{Value: t.Value, Pos: t.Pos}, nil
	case Ident:
		p.pos++
		return &VarRef{Name: t.Value, Pos: t.Pos}, nil
	}
	return nil, p.fail(t)
}

func (p *parser) expr() (*StringExpr, error) {
	first, err := p.operand()
	if err != nil {
		return nil, err
	}
	e := &StringExpr{Operands: []Operand{first}}

	for {
		mark := p.pos
		p.skipNewlines()
		if !p.accept(Add) {
			p.pos = mark
			break
		}
		p.skipNewlines()
		next, err := p.operand()
		if err != nil {
			return nil, err
		}
		e.Operands = append(e.Operands, next)
	}

	return e, nil
}

// assignment parses IDENT op expr for both '=' and '+='.
func (p *parser) assignment(op TokenType) (Token, *StringExpr, error) {
	name, err := p.expect(Ident)
	if err != nil {
		return name, nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(op); err != nil {
		return name, nil, err
	}
	p.skipNewlines()
	e, err := p.expr()
	if err != nil {
		return name, nil, err
	}
	if err := p.end(); err != nil {
		return name, nil, err
	}
	return name, e, nil
}

func (p *parser) assign() (Stmt, error) {
	name, e, err := p.assignment(Assign)
	if err != nil {
		return nil, err
	}
	return &AssignStmt{Name: name.Value, Expr: e, Pos: name.Pos}, nil
}

func (p *parser) addAssign() (Stmt, error) {
	name, e, err := p.assignment(AddAssign)
	if err != nil {
		return nil, err
	}
	return &AddAssignStmt{Name: name.Value, Expr: e, Pos: name.Pos}, nil
}

func (p *parser) writeCall() (Stmt, error) {
	w, err := p.expect(Write)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LeftParen); err != nil {
		return nil, err
	}
	p.skipNewlines()
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(RightParen); err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}

	return &WriteCall{Expr: e, Pos: w.Pos}, nil
}

func (p *parser) funcCall() (Stmt, error) {
	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(LeftParen); err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expect(RightParen); err != nil {
		return nil, err
	}
	if err := p.end(); err != nil {
		return nil, err
	}

	return &FuncCall{Name: name.Value, Pos: name.Pos}, nil
}
