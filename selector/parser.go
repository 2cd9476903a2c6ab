package selector

// Grammar:
//
//	selector  = SPACE* path ( SPACE* ',' SPACE* path )* SPACE* EOF
//	path      = chain ( SPACE chain )*
//	chain     = IDENT ( class | attr | not )*
//	class     = '.' IDENT
//	attr      = '[' SPACE* IDENT SPACE* ( '=' SPACE* STRING SPACE* )? ']'
//	not       = ':' "not" '(' SPACE* arg ( SPACE* ',' SPACE* arg )* SPACE* ')'
//	arg       = class | attr
//
// Every rule restores the position it started from when it fails, so any
// alternative can be retried from the same place.

type parser struct {
	toks []Token
	pos  int
	best *ParseError
}

// Compile parses a selector.
func Compile(text string) (*Selector, error) {
	toks, err := Scan(text)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	alts, err := p.selector()
	if err != nil {
		return nil, err
	}

	return &Selector{alts: alts, text: text}, nil
}

// MustCompile is like Compile but panics if the selector is invalid.
func MustCompile(text string) *Selector {
	s, err := Compile(text)
	if err != nil {
		panic(`selector: Compile(` + text + `): ` + err.Error())
	}
	return s
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) expect(tt TokenType) (Token, error) {
	t := p.toks[p.pos]
	if t.Type != tt {
		return t, p.fail(t, "")
	}
	if t.Type != EOF {
		p.pos++
	}
	return t, nil
}

// accept consumes an optional token without recording a failure.
func (p *parser) accept(tt TokenType) bool {
	if p.toks[p.pos].Type != tt || tt == EOF {
		return false
	}
	p.pos++
	return true
}

func (p *parser) skipSpaces() {
	for p.accept(Space) {
	}
}

// fail records a failure at the current position and returns the heaviest
// failure seen so far.
func (p *parser) fail(t Token, msg string) *ParseError {
	if p.best == nil || p.pos > p.best.Weight {
		p.best = &ParseError{Token: t, Weight: p.pos, Msg: msg}
	}
	return p.best
}

func (p *parser) selector() ([]Path, error) {
	p.skipSpaces()
	first, err := p.path()
	if err != nil {
		return nil, p.best
	}
	alts := []Path{first}

	for {
		mark := p.pos
		p.skipSpaces()
		if _, err := p.expect(Comma); err != nil {
			p.pos = mark
			break
		}
		p.skipSpaces()
		next, err := p.path()
		if err != nil {
			return nil, p.best
		}
		alts = append(alts, next)
	}

	p.skipSpaces()
	if _, err := p.expect(EOF); err != nil {
		return nil, p.best
	}

	return alts, nil
}

func (p *parser) path() (Path, error) {
	first, err := p.chain()
	if err != nil {
		return nil, err
	}
	path := Path{first}

	for {
		mark := p.pos
		if !p.accept(Space) {
			break
		}
		c, err := p.chain()
		if err != nil {
			// the space belongs to whatever follows the path
			p.pos = mark
			break
		}
		path = append(path, c)
	}

	return path, nil
}

var qualifiers = []func(*parser) (Simple, error){
	(*parser).class,
	(*parser).attr,
	(*parser).not,
}

func (p *parser) chain() (Chain, error) {
	tag, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	c := Chain{Tag{Name: tag.Value}}

	for {
		found := false
		for _, rule := range qualifiers {
			if s, err := rule(p); err == nil {
				c = append(c, s)
				found = true
				break
			}
		}
		if !found {
			break
		}
	}

	return c, nil
}

func (p *parser) class() (Simple, error) {
	start := p.pos
	if _, err := p.expect(Dot); err != nil {
		return nil, err
	}
	name, err := p.expect(Ident)
	if err != nil {
		p.pos = start
		return nil, err
	}

	return Class{Name: name.Value}, nil
}

func (p *parser) attr() (Simple, error) {
	start := p.pos
	if _, err := p.expect(LeftBracket); err != nil {
		return nil, err
	}
	p.skipSpaces()
	name, err := p.expect(Ident)
	if err != nil {
		p.pos = start
		return nil, err
	}
	p.skipSpaces()

	s := Attr{Name: name.Value}
	mark := p.pos
	if p.accept(Equal) {
		p.skipSpaces()
		if v, err := p.expect(String); err == nil {
			s.Value, s.HasValue = v.Value, true
			p.skipSpaces()
		} else {
			p.pos = mark
		}
	}

	if _, err := p.expect(RightBracket); err != nil {
		p.pos = start
		return nil, err
	}

	return s, nil
}

func (p *parser) not() (Simple, error) {
	start := p.pos
	if _, err := p.expect(Colon); err != nil {
		return nil, err
	}

	kw, err := p.expect(Ident)
	if err != nil {
		p.pos = start
		return nil, err
	}
	if kw.Value != "not" {
		p.pos--
		err := p.fail(kw, "only :not is supported")
		p.pos = start
		return nil, err
	}

	if _, err := p.expect(LeftParen); err != nil {
		p.pos = start
		return nil, err
	}
	p.skipSpaces()

	arg, err := p.notArg()
	if err != nil {
		p.pos = start
		return nil, err
	}
	items := []Simple{arg}

	for {
		mark := p.pos
		p.skipSpaces()
		if !p.accept(Comma) {
			p.pos = mark
			break
		}
		p.skipSpaces()
		arg, err := p.notArg()
		if err != nil {
			p.pos = start
			return nil, err
		}
		items = append(items, arg)
	}

	p.skipSpaces()
	if _, err := p.expect(RightParen); err != nil {
		p.pos = start
		return nil, err
	}

	return Not{Items: items}, nil
}

func (p *parser) notArg() (Simple, error) {
	if s, err := p.class(); err == nil {
		return s, nil
	}
	return p.attr()
}
