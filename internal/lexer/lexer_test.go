package lexer

import (
	"testing"

	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/token"
)

func scan(t *testing.T, input string) []token.Token {
	t.Helper()
	tokens, err := Tokenize(input, "test.kite")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tokens
}

func types(tokens []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func expectTypes(t *testing.T, input string, expected []token.TokenType) []token.Token {
	t.Helper()
	tokens := scan(t, input)
	if len(tokens) != len(expected) {
		t.Fatalf("token count mismatch for %q: got %v, want %v", input, types(tokens), expected)
	}
	for i, tok := range tokens {
		if tok.Type != expected[i] {
			t.Errorf("token[%d] type mismatch: got %s, want %s (literal: %q)", i, tok.Type, expected[i], tok.Literal)
		}
	}
	return tokens
}

func TestLexerOperators(t *testing.T) {
	input := `+ - * ** / % = += -= *= /= %= ++ -- == != < <= > >= && || ! -> . :`

	expectTypes(t, input, []token.TokenType{
		token.PLUS, token.MINUS, token.STAR, token.POW, token.SLASH, token.PERCENT,
		token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN,
		token.SLASH_ASSIGN, token.PERCENT_ASSIGN, token.INCREMENT, token.DECREMENT,
		token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE,
		token.AND, token.OR, token.NOT, token.ARROW, token.DOT, token.COLON,
		token.NEWLINE, token.EOF,
	})
}

func TestLexerGreedyGrouping(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.TokenType
	}{
		{"a==b", []token.TokenType{token.IDENT, token.EQ, token.IDENT, token.NEWLINE, token.EOF}},
		{"a=!b", []token.TokenType{token.IDENT, token.ASSIGN, token.NOT, token.IDENT, token.NEWLINE, token.EOF}},
		{"a***b", []token.TokenType{token.IDENT, token.POW, token.STAR, token.IDENT, token.NEWLINE, token.EOF}},
		{"x->x", []token.TokenType{token.IDENT, token.ARROW, token.IDENT, token.NEWLINE, token.EOF}},
		{"i++", []token.TokenType{token.IDENT, token.INCREMENT, token.NEWLINE, token.EOF}},
		{"a&&b||c", []token.TokenType{token.IDENT, token.AND, token.IDENT, token.OR, token.IDENT, token.NEWLINE, token.EOF}},
	}

	for _, tt := range tests {
		expectTypes(t, tt.input, tt.expected)
	}
}

func TestLexerKeywordsAndLabels(t *testing.T) {
	input := `var fun class if elif else while for return break continue pass true false null this import
int flt str bool nul any list dict pair func funi private protected public builtin static global instance const quote overwrite interface virtual`

	expectTypes(t, input, []token.TokenType{
		token.VAR, token.FUN, token.CLASS, token.IF, token.ELIF, token.ELSE, token.WHILE, token.FOR,
		token.RETURN, token.BREAK, token.CONTINUE, token.PASS, token.TRUE, token.FALSE, token.NULL,
		token.THIS, token.IMPORT, token.NEWLINE,
		token.INT_TYPE, token.FLT_TYPE, token.STR_TYPE, token.BOOL_TYPE, token.NUL_TYPE, token.ANY_TYPE,
		token.LIST_TYPE, token.DICT_TYPE, token.PAIR_TYPE, token.FUNC_TYPE, token.FUNI_TYPE,
		token.PRIVATE, token.PROTECTED, token.PUBLIC, token.BUILTIN,
		token.STATIC, token.GLOBAL, token.INSTANCE, token.CONST, token.QUOTE,
		token.OVERWRITE, token.INTERFACE, token.VIRTUAL,
		token.NEWLINE, token.EOF,
	})
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input   string
		typ     token.TokenType
		literal string
	}{
		{"42", token.INT, "42"},
		{"3.14", token.FLOAT, "3.14"},
		{"-3", token.INT, "-3"},
		{"-0.5", token.FLOAT, "-0.5"},
		{"0", token.INT, "0"},
	}

	for _, tt := range tests {
		tokens := scan(t, tt.input)
		if tokens[0].Type != tt.typ || tokens[0].Literal != tt.literal {
			t.Errorf("%q: got %s(%s), want %s(%s)", tt.input, tokens[0].Type, tokens[0].Literal, tt.typ, tt.literal)
		}
	}
}

func TestLexerMinusAfterOperand(t *testing.T) {
	// 紧跟在词素之后的 '-' 是运算符
	expectTypes(t, "a-3", []token.TokenType{token.IDENT, token.MINUS, token.INT, token.NEWLINE, token.EOF})

	// 前面有空白时作为负数词素，由 parser 负责拆分
	tokens := expectTypes(t, "a -3", []token.TokenType{token.IDENT, token.INT, token.NEWLINE, token.EOF})
	if tokens[1].Literal != "-3" {
		t.Errorf("expected -3, got %s", tokens[1].Literal)
	}

	// 待定运算符之后的 '-' 不与数字合并
	expectTypes(t, "x=-1", []token.TokenType{token.IDENT, token.ASSIGN, token.MINUS, token.INT, token.NEWLINE, token.EOF})
}

func TestLexerMemberAccessIsNotDecimal(t *testing.T) {
	expectTypes(t, "p.x", []token.TokenType{token.IDENT, token.DOT, token.IDENT, token.NEWLINE, token.EOF})
	expectTypes(t, "1.5.2", []token.TokenType{token.FLOAT, token.DOT, token.INT, token.NEWLINE, token.EOF})
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`'single'`, "single"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"quote \" inside"`, `quote " inside`},
		{`'it\'s'`, "it's"},
		{`"back\\slash"`, `back\slash`},
		{`"nul\0"`, "nul\x00"},
		{`"semi; colon // not a comment"`, "semi; colon // not a comment"},
		{`"中文"`, "中文"},
	}

	for _, tt := range tests {
		tokens := scan(t, tt.input)
		if tokens[0].Type != token.STRING {
			t.Errorf("%s: expected STRING, got %s", tt.input, tokens[0].Type)
			continue
		}
		if tokens[0].Literal != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.input, tokens[0].Literal, tt.expected)
		}
	}
}

func TestLexerComments(t *testing.T) {
	input := `var a = 1 // trailing
/* block
comment */ var b = 2`

	expectTypes(t, input, []token.TokenType{
		token.VAR, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.VAR, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.EOF,
	})
}

func TestLexerNewlineNormalization(t *testing.T) {
	input := "\n\n a\n\n;; b ;\n\n"

	expectTypes(t, input, []token.TokenType{
		token.IDENT, token.NEWLINE, token.IDENT, token.NEWLINE, token.EOF,
	})
}

func TestLexerEmptyInput(t *testing.T) {
	expectTypes(t, "", []token.TokenType{token.EOF})
	expectTypes(t, "  \n // only comment\n", []token.TokenType{token.EOF})
}

func TestLexerPositions(t *testing.T) {
	input := "var x = 1\n  fun f()"
	tokens := scan(t, input)

	expected := []struct {
		typ  token.TokenType
		line int
		col  int
	}{
		{token.VAR, 1, 1},
		{token.IDENT, 1, 5},
		{token.ASSIGN, 1, 7},
		{token.INT, 1, 9},
		{token.NEWLINE, 1, 10},
		{token.FUN, 2, 3},
		{token.IDENT, 2, 7},
		{token.LPAREN, 2, 8},
		{token.RPAREN, 2, 9},
	}

	for i, exp := range expected {
		tok := tokens[i]
		if tok.Type != exp.typ || tok.Pos.Line != exp.line || tok.Pos.Column != exp.col {
			t.Errorf("token[%d]: got %s at %d:%d, want %s at %d:%d",
				i, tok.Type, tok.Pos.Line, tok.Pos.Column, exp.typ, exp.line, exp.col)
		}
		if tok.Pos.Filename != "test.kite" {
			t.Errorf("token[%d]: filename %q", i, tok.Pos.Filename)
		}
	}
}

func TestLexerPositionsMonotonic(t *testing.T) {
	input := `class Point: Shape {
    var x: int = 0
    fun init(x: int) { this.x = x }
}
var p = Point(3); p.x = -4
if (p.x > 10) { sout("big") } else { pass }`

	tokens := scan(t, input)
	for i := 1; i < len(tokens); i++ {
		if tokens[i].Pos.Before(tokens[i-1].Pos) {
			t.Fatalf("token[%d] %s at %s is before token[%d] at %s",
				i, tokens[i], tokens[i].Pos, i-1, tokens[i-1].Pos)
		}
		if tokens[i].Type == token.NEWLINE && tokens[i-1].Type == token.NEWLINE {
			t.Fatalf("consecutive newlines at %d", i)
		}
	}
	if tokens[0].Type == token.NEWLINE {
		t.Fatal("leading newline not dropped")
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		code  string
		line  int
		col   int
	}{
		{`"unclosed`, errors.E0003, 1, 1},
		{"var s = 'abc\nvar t", errors.E0003, 1, 9},
		{`"bad \q escape"`, errors.E0005, 1, 6},
		{"a & b", errors.E0006, 1, 3},
		{"a | b", errors.E0006, 1, 3},
		{"var 3abc = 1", errors.E0007, 1, 5},
		{"var a = @", errors.E0002, 1, 9},
		{"/* never closed", errors.E0004, 1, 1},
	}

	for _, tt := range tests {
		tokens, err := Tokenize(tt.input, "test.kite")
		if err == nil {
			t.Errorf("%q: expected error, got tokens %v", tt.input, types(tokens))
			continue
		}
		if tokens != nil {
			t.Errorf("%q: expected no tokens on error", tt.input)
		}
		ce, ok := errors.As(err)
		if !ok {
			t.Errorf("%q: expected CompileError, got %T", tt.input, err)
			continue
		}
		if ce.Kind != errors.KindSyntax {
			t.Errorf("%q: expected syntax error, got kind %d", tt.input, ce.Kind)
		}
		if ce.Code != tt.code {
			t.Errorf("%q: code got %s, want %s (%s)", tt.input, ce.Code, tt.code, ce.Message)
		}
		if ce.Line != tt.line || ce.Column != tt.col {
			t.Errorf("%q: position got %d:%d, want %d:%d", tt.input, ce.Line, ce.Column, tt.line, tt.col)
		}
		if ce.SourceLine == "" {
			t.Errorf("%q: missing source line", tt.input)
		}
	}
}

func TestLexerErrorCarriesScannedInput(t *testing.T) {
	_, err := Tokenize(`var s = "x\y"`, "test.kite")
	ce, ok := errors.As(err)
	if !ok {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if len(ce.Infos) == 0 {
		t.Fatal("expected scanned-so-far info line")
	}
}
