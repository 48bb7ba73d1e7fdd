package parser

import (
	"strings"
	"testing"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/lexer"
)

func parse(t *testing.T, input string) (*Parser, *ast.Program) {
	t.Helper()
	tokens, err := lexer.Tokenize(input, "test.kite")
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	p := New(tokens)
	_, program := p.Parse()
	return p, program
}

func parseOK(t *testing.T, input string) *ast.Program {
	t.Helper()
	p, program := parse(t, input)
	if p.HasErrors() {
		for _, err := range p.Errors() {
			t.Errorf("parser error in %q: %v", input, err)
		}
		t.FailNow()
	}
	return program
}

func parseSingle(t *testing.T, input string) ast.Node {
	t.Helper()
	program := parseOK(t, input)
	if len(program.Body) != 1 {
		t.Fatalf("expected 1 item, got %d: %s", len(program.Body), program)
	}
	return program.Body[0]
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"a - b - c", "((a - b) - c)"},
		{"-a * b", "((-a) * b)"},
		{"!a && b || c", "(((!a) && b) || c)"},
		{"a < b == c > d", "((a < b) == (c > d))"},
		{"a % 2 != 0", "((a % 2) != 0)"},
		{"a = b = 1", "a = b = 1"},
		{"x += 2 * y", "x += (2 * y)"},
		{"a.b.c(1)[2]", "(a.b.c(1)[2])"},
		{"f(a, b = 2)", "f(a, b=2)"},
		{"f()", "f()"},
		{"(a + b) * c", "(((a + b)) * c)"},
		{"i++", "(i++)"},
		{"p.count--", "(p.count--)"},
		{"this.x = x", "this.x = x"},
		{"[1, 2, 3]", "[1, 2, 3]"},
		{"[]", "[]"},
		{`{"a": 1, "b": 2}`, `{"a": 1, "b": 2}`},
		{"{}", "{}"},
		{"l[0] = null", "(l[0]) = null"},
		{"a, b, c", "a, b, c"},
		{"true && false", "(true && false)"},
		{"3.5 / 2", "(3.5 / 2)"},
	}

	for _, tt := range tests {
		node := parseSingle(t, tt.input)
		if node.String() != tt.expected {
			t.Errorf("%q: got %s, want %s", tt.input, node.String(), tt.expected)
		}
	}
}

func TestParseEmptyBraces(t *testing.T) {
	for _, input := range []string{"{}", "{\n}"} {
		dict, ok := parseSingle(t, input).(*ast.Dictionary)
		if !ok {
			t.Fatalf("%q: expected a dictionary", input)
		}
		if len(dict.Pairs) != 0 {
			t.Errorf("%q: got %d pairs", input, len(dict.Pairs))
		}
	}

	list, ok := parseSingle(t, "[]").(*ast.List)
	if !ok || len(list.Elements) != 0 {
		t.Fatalf("[]: expected an empty list")
	}
}

func TestParseNegativeNumberStitching(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a -3", "(a - 3)"},
		{"a - 3", "(a - 3)"},
		{"a-3", "(a - 3)"},
		{"[1 -2]", "[(1 - 2)]"},
		{"f(-3)", "f(-3)"},
		{"x = -3", "x = -3"},
		{"(a) -1.5", "((a) - 1.5)"},
	}

	for _, tt := range tests {
		node := parseSingle(t, tt.input)
		if node.String() != tt.expected {
			t.Errorf("%q: got %s, want %s", tt.input, node.String(), tt.expected)
		}
	}
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"var x: int = 5", "var x: int = 5"},
		{`var name: str const = "kite"`, `var name: str const = "kite"`},
		{"var p: Point", "var p: Point"},
		{"var f: func[int, str][bool]", "var f: func[int, str][bool]"},
		{"var g: funi[func[int][]][any] static", "var g: funi[func[int][]][any] static"},
		{"var a = 1, b: str, c", "var a = 1, b: str, c"},
	}

	for _, tt := range tests {
		node := parseSingle(t, tt.input)
		if node.String() != tt.expected {
			t.Errorf("%q: got %s, want %s", tt.input, node.String(), tt.expected)
		}
	}

	def := parseSingle(t, "var f: func[int, str][bool] const").(*ast.VariableDefinition)
	labels := def.Names[0].Labels
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if len(labels[0].Groups) != 2 || len(labels[0].Groups[0]) != 2 || len(labels[0].Groups[1]) != 1 {
		t.Errorf("unexpected descriptor groups: %s", labels[0])
	}
	if labels[1].Name != "const" {
		t.Errorf("expected const label, got %s", labels[1].Name)
	}
}

func TestParseFunctionForms(t *testing.T) {
	tests := []struct {
		input    string
		typ      string
		expected string
	}{
		{
			"fun add(a: int, b: int = 2, *rest, **opts): int { return a + b }",
			"*ast.FunctionDefinition",
			"fun add(a: int, b: int = 2, *rest, **opts): int { return (a + b) }",
		},
		{
			"fun twice(n) -> n * 2",
			"*ast.FunctionDefinition",
			"fun twice(n) { return (n * 2) }",
		},
		{
			"fun twice(n: int): int -> n * 2",
			"*ast.FunctionDefinition",
			"fun twice(n: int): int { return (n * 2) }",
		},
		{
			"fun later(a: int): int",
			"*ast.FunctionDeclaration",
			"fun later(a: int): int",
		},
		{
			"fun noop()",
			"*ast.FunctionDeclaration",
			"fun noop()",
		},
		{
			"var inc = (v) -> v + 1",
			"*ast.VariableDefinition",
			"var inc = fun (v) { return (v + 1) }",
		},
		{
			"var sq = fun (v: int): int { return v * v }",
			"*ast.VariableDefinition",
			"var sq = fun (v: int): int { return (v * v) }",
		},
		{
			"var id = fun (v) -> v",
			"*ast.VariableDefinition",
			"var id = fun (v) { return v }",
		},
	}

	for _, tt := range tests {
		node := parseSingle(t, tt.input)
		if got := typeName(node); got != tt.typ {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.typ, got)
		}
		if node.String() != tt.expected {
			t.Errorf("%q: got %s, want %s", tt.input, node.String(), tt.expected)
		}
	}
}

func TestParseParameterKinds(t *testing.T) {
	fn := parseSingle(t, "fun f(a, b = 1, *c, d = 2, **e) { pass }").(*ast.FunctionDefinition)

	expected := []ast.ParamKind{
		ast.ParamPositional, ast.ParamKeyword, ast.ParamVarPositional, ast.ParamKeyword, ast.ParamVarKeyword,
	}
	if len(fn.Params) != len(expected) {
		t.Fatalf("expected %d params, got %d", len(expected), len(fn.Params))
	}
	for i, param := range fn.Params {
		if param.Kind != expected[i] {
			t.Errorf("param[%d] %s: got %s, want %s", i, param.Name.Name, param.Kind, expected[i])
		}
	}
	if lit, ok := fn.Params[1].Default.(*ast.IntegerLiteral); !ok || lit.Value != 1 {
		t.Errorf("expected default 1, got %v", fn.Params[1].Default)
	}
}

func TestParseClass(t *testing.T) {
	input := `class Shape
class Point: Shape public {
    var x: int = 0
    var count: int static = 0
    fun init(x: int) { this.x = x }
    fun init() { pass }
    fun norm(): int { return this.x * this.x }
    fun area(): flt
}`

	program := parseOK(t, input)
	if len(program.Body) != 2 {
		t.Fatalf("expected 2 items, got %d", len(program.Body))
	}

	decl, ok := program.Body[0].(*ast.ClassDeclaration)
	if !ok {
		t.Fatalf("expected ClassDeclaration, got %T", program.Body[0])
	}
	if decl.Name.Name != "Shape" {
		t.Errorf("expected Shape, got %s", decl.Name.Name)
	}

	def, ok := program.Body[1].(*ast.ClassDefinition)
	if !ok {
		t.Fatalf("expected ClassDefinition, got %T", program.Body[1])
	}
	if def.Name.String() != "Point: Shape public" {
		t.Errorf("unexpected class head: %s", def.Name)
	}

	expected := []string{
		"*ast.VariableDefinition",
		"*ast.VariableDefinition",
		"*ast.ConstructorDefinition",
		"*ast.ConstructorDefinition",
		"*ast.FunctionDefinition",
		"*ast.FunctionDeclaration",
	}
	if len(def.Body.Items) != len(expected) {
		t.Fatalf("expected %d members, got %d", len(expected), len(def.Body.Items))
	}
	for i, member := range def.Body.Items {
		if got := typeName(member); got != expected[i] {
			t.Errorf("member[%d]: got %s, want %s", i, got, expected[i])
		}
	}
}

func TestParseInitOutsideClassIsFunction(t *testing.T) {
	node := parseSingle(t, "fun init() { pass }")
	if _, ok := node.(*ast.FunctionDefinition); !ok {
		t.Errorf("expected FunctionDefinition, got %T", node)
	}

	// 方法体内的 fun init 也不是构造函数
	def := parseSingle(t, "class A { fun m() { fun init() { pass } } }").(*ast.ClassDefinition)
	method := def.Body.Items[0].(*ast.FunctionDefinition)
	if _, ok := method.Body.Items[0].(*ast.FunctionDefinition); !ok {
		t.Errorf("expected nested FunctionDefinition, got %T", method.Body.Items[0])
	}
}

func TestParseControlFlow(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			`if (p.norm() > 10) { sout("big") } elif (x == 5) { sout("five") } else { pass }`,
			`if ((p.norm() > 10)) { sout("big") } elif ((x == 5)) { sout("five") } else { pass }`,
		},
		{
			"if (a) {\n b\n}\nelse {\n c\n}",
			"if (a) { b } else { c }",
		},
		{
			"while (x > 0) { x -= 1 }",
			"while ((x > 0)) { x -= 1 }",
		},
		{
			"for (var i = 0; i < 3; i += 1) { sout(i) }",
			"for (var i = 0; (i < 3); i += 1) { sout(i) }",
		},
		{
			"while (true) { if (x) { break } else { continue } }",
			"while (true) { if (x) { break } else { continue } }",
		},
		{
			"fun f() { return }",
			"fun f() { return }",
		},
		{
			`import "lib/shapes.kite"`,
			`import "lib/shapes.kite"`,
		},
	}

	for _, tt := range tests {
		node := parseSingle(t, tt.input)
		if node.String() != tt.expected {
			t.Errorf("%q:\n got %s\nwant %s", tt.input, node.String(), tt.expected)
		}
	}
}

func TestParseMultiline(t *testing.T) {
	input := `var l = [
    1,
    2
]
var d = {
    "a": 1,
    "b": 2
}
f(
    a,
    b = 1
)`

	program := parseOK(t, input)
	expected := []string{
		"var l = [1, 2]",
		`var d = {"a": 1, "b": 2}`,
		"f(a, b=1)",
	}
	if len(program.Body) != len(expected) {
		t.Fatalf("expected %d items, got %d: %s", len(expected), len(program.Body), program)
	}
	for i, node := range program.Body {
		if node.String() != expected[i] {
			t.Errorf("item[%d]: got %s, want %s", i, node.String(), expected[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  ErrorKind
	}{
		{"var 1", ErrSyntax},
		{"a +", ErrBuilderNotFound},
		{"a ** b", ErrBuilderNotFound},
		{"(a + b", ErrUnclosed},
		{"[1, 2", ErrUnclosed},
		{"elif (a) { b }", ErrSyntax},
		{"for (a; b) { c }", ErrSyntax},
		{"if a { b }", ErrUnexpectedToken},
		{"while (a) b", ErrUnexpectedToken},
		{"class 1", ErrUnexpectedToken},
		{"import x", ErrUnexpectedToken},
		{"1 = 2", ErrSyntax},
		{"fun f(1) { pass }", ErrSyntax},
		{"fun f(**a, b) { pass }", ErrSyntax},
		{"var x: = 1", ErrUnexpectedToken},
		{"var x: int[int] = 1", ErrSyntax},
		{"a b", ErrUnexpectedToken},
	}

	for _, tt := range tests {
		p, _ := parse(t, tt.input)
		if !p.HasErrors() {
			t.Errorf("%q: expected error", tt.input)
			continue
		}
		if p.Errors()[0].Kind != tt.kind {
			t.Errorf("%q: got kind %d (%s), want %d", tt.input, p.Errors()[0].Kind, p.Errors()[0].Message, tt.kind)
		}
	}
}

func TestParseErrorsAccumulate(t *testing.T) {
	input := "var 1\nvar 2\nx = )\nvar ok = 1"

	p, program := parse(t, input)
	if len(p.Errors()) != 3 {
		for _, err := range p.Errors() {
			t.Logf("error: %v", err)
		}
		t.Fatalf("expected 3 errors, got %d", len(p.Errors()))
	}
	if len(program.Body) != 1 || program.Body[0].String() != "var ok = 1" {
		t.Errorf("expected recovery to keep the last definition, got %s", program)
	}

	lines := []int{1, 2, 3}
	for i, err := range p.Errors() {
		if err.Pos.Line != lines[i] {
			t.Errorf("error[%d] on line %d, want %d", i, err.Pos.Line, lines[i])
		}
	}

	combined := p.Err()
	if combined == nil || len(Diagnostics(combined)) != 3 {
		t.Errorf("expected combined error with 3 diagnostics, got %v", combined)
	}
}

func TestParseEmpty(t *testing.T) {
	hasError, program := New(nil).Parse()
	if hasError || len(program.Body) != 0 {
		t.Errorf("empty token stream should parse cleanly, got %s", program)
	}
}

func TestParseErrorLimit(t *testing.T) {
	input := strings.Repeat("var 1\n", maxParseErrors+20)

	p, _ := parse(t, input)
	if len(p.Errors()) != maxParseErrors+1 {
		t.Errorf("expected %d errors, got %d", maxParseErrors+1, len(p.Errors()))
	}
}

func TestParseSource(t *testing.T) {
	program, err := ParseSource("var x = 1\nsout(x)", "main.kite")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if program.Filename != "main.kite" || len(program.Body) != 2 {
		t.Errorf("unexpected program: %s", program)
	}

	if _, err := ParseSource(`var s = "open`, "main.kite"); err == nil {
		t.Error("expected lexer error")
	}
	if _, err := ParseSource("var 1", "main.kite"); err == nil {
		t.Error("expected parser error")
	}
}

func typeName(n ast.Node) string {
	switch n.(type) {
	case *ast.FunctionDefinition:
		return "*ast.FunctionDefinition"
	case *ast.FunctionDeclaration:
		return "*ast.FunctionDeclaration"
	case *ast.ConstructorDefinition:
		return "*ast.ConstructorDefinition"
	case *ast.AnonymousFunction:
		return "*ast.AnonymousFunction"
	case *ast.VariableDefinition:
		return "*ast.VariableDefinition"
	case *ast.ClassDefinition:
		return "*ast.ClassDefinition"
	case *ast.ClassDeclaration:
		return "*ast.ClassDeclaration"
	default:
		return "other"
	}
}
