package script

// Stmt is a statement of a Block.
type Stmt interface {
	Position() Pos
}

// Operand is a term of a string expression: a Literal or a *VarRef.
type Operand interface {
	operand()
}

type Literal struct {
	Value string
	Pos   Pos
}

type VarRef struct {
	Name string
	Pos  Pos
}

func (Literal) operand() {}
func (*VarRef) operand() {}

// StringExpr concatenates its operands.
type StringExpr struct {
	Operands []Operand
}

type VarDecl struct {
	Names []string
	Pos   Pos
}

type AssignStmt struct {
	Name string
	Expr *StringExpr
	Pos  Pos
}

type AddAssignStmt struct {
	Name string
	Expr *StringExpr
	Pos  Pos
}

type FuncDef struct {
	Name string
	Body *Block
	Pos  Pos
}

type FuncCall struct {
	Name string
	Pos  Pos
}

// WriteCall appends to the output sink.
type WriteCall struct {
	Expr *StringExpr
	Pos  Pos
}

type Block struct {
	Stmts []Stmt
}

func (s *VarDecl) Position() Pos       { return s.Pos }
func (s *AssignStmt) Position() Pos    { return s.Pos }
func (s *AddAssignStmt) Position() Pos { return s.Pos }
func (s *FuncDef) Position() Pos       { return s.Pos }
func (s *FuncCall) Position() Pos      { return s.Pos }
func (s *WriteCall) Position() Pos     { return s.Pos }
