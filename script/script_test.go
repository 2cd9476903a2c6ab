package script

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	toks, err := Scan("\n\n<!--\nvar a, b // two\n\n\na += 'x y'\ndocument.write(a)")
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		Var, Ident, Comma, Ident, Newline,
		Ident, AddAssign, String, Newline,
		Write, LeftParen, Ident, RightParen, EOF,
	}, types)

	assert.Equal(t, Pos{Line: 4, Col: 1}, toks[0].Pos)
	assert.Equal(t, Pos{Line: 7, Col: 6}, toks[7].Pos)
	assert.Equal(t, "x y", toks[7].Value)
	assert.Equal(t, Pos{Line: 8, Col: 18}, toks[13].Pos)
}

func TestScanCommentColumns(t *testing.T) {
	toks, err := Scan("a // é日本")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, Pos{Line: 1, Col: 9}, toks[1].Pos)

	toks, err = Scan("<!-- 電話 -->")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, Pos{Line: 1, Col: 12}, toks[0].Pos)
}

func TestParseNestedFunction(t *testing.T) {
	b, err := Parse("function outer() {\n  function inner() { document.write('in') }\n  inner()\n}\nouter()")
	require.NoError(t, err)
	require.Len(t, b.Stmts, 2)

	outer, ok := b.Stmts[0].(*FuncDef)
	require.True(t, ok)
	assert.Equal(t, "outer", outer.Name)
	require.Len(t, outer.Body.Stmts, 2)
	_, ok = outer.Body.Stmts[0].(*FuncDef)
	assert.True(t, ok)

	out, err := NewInterpreter().Eval(b)
	require.NoError(t, err)
	assert.Equal(t, "in", out)
}

func TestScanKeywordPrefix(t *testing.T) {
	toks, err := Scan("variable functions documentation")
	require.NoError(t, err)
	for _, tok := range toks[:3] {
		assert.Equal(t, Ident, tok.Type)
	}
}

func TestScanError(t *testing.T) {
	tests := []struct {
		src  string
		char rune
		line int
		col  int
	}{
		{src: "a = 'x' ; b", char: ';', line: 1, col: 9},
		{src: "var a\n  a = 'open", char: '\'', line: 2, col: 7},
		{src: "a = \"x\ny\"", char: '"', line: 1, col: 5},
		{src: "document.cookie", char: '.', line: 1, col: 9},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Run(tt.src)
			var se *ScanError
			require.True(t, errors.As(err, &se), "got %v", err)
			assert.Equal(t, tt.char, se.Char)
			assert.Equal(t, tt.line, se.Line)
			assert.Equal(t, tt.col, se.Col)
		})
	}
}

func TestParse(t *testing.T) {
	b, err := Parse("function f() {\n  var x\n  x = 'a' + y\n}\nf()\n")
	require.NoError(t, err)
	require.Len(t, b.Stmts, 2)

	def, ok := b.Stmts[0].(*FuncDef)
	require.True(t, ok)
	assert.Equal(t, "f", def.Name)
	assert.Equal(t, Pos{Line: 1, Col: 1}, def.Pos)
	require.Len(t, def.Body.Stmts, 2)
	assert.Equal(t, &VarDecl{Names: []string{"x"}, Pos: Pos{Line: 2, Col: 3}}, def.Body.Stmts[0])
	assert.Equal(t, &AssignStmt{
		Name: "x",
		Expr: &StringExpr{Operands: []Operand{
			Literal{Value: "a", Pos: Pos{Line: 3, Col: 7}},
			&VarRef{Name: "y", Pos: Pos{Line: 3, Col: 13}},
		}},
		Pos: Pos{Line: 3, Col: 3},
	}, def.Body.Stmts[1])

	assert.Equal(t, &FuncCall{Name: "f", Pos: Pos{Line: 5, Col: 1}}, b.Stmts[1])
}

func TestParseError(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{src: "a = ", msg: "invalid syntax 'EOF' (line: 1, pos: 5)"},
		{src: "function f() {\n document.write('x')\n", msg: "invalid syntax 'EOF' (line: 3, pos: 1)"},
		{src: "var a b", msg: "invalid syntax 'b' (line: 1, pos: 7)"},
		{src: "document.write('a' +)", msg: "invalid syntax ')' (line: 1, pos: 21)"},
		{src: "f() g()", msg: "invalid syntax 'g' (line: 1, pos: 5)"},
		{src: "}", msg: "invalid syntax '}' (line: 1, pos: 1)"},
		{src: "var a = 'x'", msg: "invalid syntax '=' (line: 1, pos: 7)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "concatenation",
			src:  "var a\na = 'foo'\ndocument.write(a + 'bar')",
			want: "foobar",
		},
		{
			name: "empty",
			src:  "",
			want: "",
		},
		{
			name: "declared but unassigned",
			src:  "var a\ndocument.write(a)",
			want: "undefined",
		},
		{
			name: "hoisted function",
			src:  "f()\nfunction f() { document.write('hi') }",
			want: "hi",
		},
		{
			name: "hoisted var",
			src:  "a = 'x'\nvar a\ndocument.write(a)",
			want: "x",
		},
		{
			name: "multiline expression",
			src:  "var a\na = '1'\n  + '2' +\n  '3'\ndocument.write(\n  a\n)",
			want: "123",
		},
		{
			name: "callee sees caller frames",
			src: `var out
function inner() {
  out += 'b'
}
function outer() {
  var out
  out = 'local'
  inner()
  document.write(out)
}
out = 'a'
outer()
document.write(out)`,
			want: "localba",
		},
		{
			name: "function locals are dropped",
			src: `var a
a = 'outer'
function f() {
  var a
  a = 'inner'
}
f()
document.write(a)`,
			want: "outer",
		},
		{
			name: "phone decoder",
			src: `<!--
function aAvZ() {
  var ddk, GCx
  ddk = '+1 '
  ddk += '(212) '
  GCx = '555'
  document.write(ddk + GCx + '-0199')
}
aAvZ()
// -->`,
			want: "+1 (212) 555-0199",
		},
		{
			name: "writes accumulate",
			src:  "document.write('a')\ndocument.write(\"b\")\ndocument.write('c')",
			want: "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Run(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuntimeError(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
		id   string
		pos  Pos
	}{
		{name: "undefined call", src: "b()", err: ErrUndefined, id: "b", pos: Pos{Line: 1, Col: 1}},
		{name: "undefined variable", src: "document.write('x' + y)", err: ErrUndefined, id: "y", pos: Pos{Line: 1, Col: 22}},
		{name: "assign undeclared", src: "a = 'x'", err: ErrUndefined, id: "a", pos: Pos{Line: 1, Col: 1}},
		{name: "add assign undeclared", src: "a += 'x'", err: ErrUndefined, id: "a", pos: Pos{Line: 1, Col: 1}},
		{name: "not callable", src: "var a\na()", err: ErrNotCallable, id: "a", pos: Pos{Line: 2, Col: 1}},
		{name: "function as string", src: "function f() {}\ndocument.write(f)", err: ErrNotString, id: "f", pos: Pos{Line: 2, Col: 16}},
		{name: "recursion", src: "function f() {\n  f()\n}\nf()", err: ErrCallDepth, id: "f", pos: Pos{Line: 2, Col: 3}},
		{name: "callee local out of scope", src: "function f() {\n  var x\n}\nf()\ndocument.write(x)", err: ErrUndefined, id: "x", pos: Pos{Line: 5, Col: 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)

			var re *RuntimeError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.id, re.Name)
			assert.Equal(t, tt.pos, re.Pos)
		})
	}
}

func TestUndefinedMessage(t *testing.T) {
	_, err := Run("b()")
	assert.EqualError(t, err, "'b' is not defined (line: 1, pos: 1)")
}

func TestMaxCallDepth(t *testing.T) {
	b, err := Parse("function a() { b() }\nfunction b() { c() }\nfunction c() { document.write('deep') }\na()")
	require.NoError(t, err)

	out, err := NewInterpreter(WithMaxCallDepth(3)).Eval(b)
	require.NoError(t, err)
	assert.Equal(t, "deep", out)

	_, err = NewInterpreter(WithMaxCallDepth(2)).Eval(b)
	assert.True(t, errors.Is(err, ErrCallDepth))
}

func TestInterpreterReuse(t *testing.T) {
	in := NewInterpreter()
	b, err := Parse("var a\na = 'x'\ndocument.write(a)")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		out, err := in.Eval(b)
		require.NoError(t, err)
		assert.Equal(t, "x", out)
	}
}

func TestRunOtto(t *testing.T) {
	out, err := RunOtto("var a = 'foo'\ndocument.write(a + 'bar')\ndocument.write(1 + 2)")
	require.NoError(t, err)
	assert.Equal(t, "foobar3", out)

	_, err = RunOtto("b()")
	assert.Error(t, err)
}

func TestEnginesAgree(t *testing.T) {
	srcs := []string{
		"var a\na = 'foo'\ndocument.write(a + 'bar')",
		"function f() {\n  document.write('x')\n}\nf()\nf()",
		"var a, b\na = '1'\nb = a + '2'\nb += a\ndocument.write(b)",
	}

	for _, src := range srcs {
		builtin, err := Run(src)
		require.NoError(t, err)
		js, err := RunOtto(src)
		require.NoError(t, err)
		assert.Equal(t, js, builtin, src)
	}
}

func TestRunnerFor(t *testing.T) {
	for _, engine := range []string{"", "builtin", "otto"} {
		run, err := RunnerFor(engine)
		require.NoError(t, err)
		out, err := run("document.write('ok')")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	}

	_, err := RunnerFor("v8")
	assert.Error(t, err)
}
