package token

import (
	"sort"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		literal string
		want    TokenType
	}{
		{"", ILLEGAL},
		{"foo_1", IDENT},
		{"_", IDENT},
		{"1abc", ILLEGAL},
		{"42", INT},
		{"-42", INT},
		{"3.14", FLOAT},
		{"-0.5", FLOAT},
		{"1.", ILLEGAL},
		{"1.2.3", ILLEGAL},
		{"**", POW},
		{"->", ARROW},
		{"&&", AND},
		{"&", ILLEGAL},
		{"(", LPAREN},
		{"}", RBRACE},
		{"fun", FUN},
		{"elif", ELIF},
		{"int", INT_TYPE},
		{"overwrite", OVERWRITE},
	}

	for _, tt := range tests {
		if got := Classify(tt.literal); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.literal, got, tt.want)
		}
	}
}

func TestCategories(t *testing.T) {
	if !IsKeyword(IMPORT) || IsKeyword(INT_TYPE) {
		t.Error("keyword range is wrong")
	}
	if !IsLabel(INT_TYPE) || !IsLabel(VIRTUAL) || IsLabel(THIS) {
		t.Error("label range is wrong")
	}
	if !IsTypeLabel(FUNI_TYPE) || IsTypeLabel(PRIVATE) {
		t.Error("type label range is wrong")
	}
	if !IsPermissionLabel(BUILTIN) || !IsLifeCycleLabel(GLOBAL) || !IsRestrictionLabel(QUOTE) || !IsObjectOrientedLabel(INTERFACE) {
		t.Error("label subgroups are wrong")
	}
	if !IsOperator(COLON) || IsOperator(COMMA) {
		t.Error("operator range is wrong")
	}
	if !IsRangerOpen(LBRACKET) || !IsRangerClose(RPAREN) || IsRangerOpen(RPAREN) {
		t.Error("ranger checks are wrong")
	}
	if !IsPartialOperator("|") || IsPartialOperator("||") {
		t.Error("partial operator check is wrong")
	}
}

func TestTokenString(t *testing.T) {
	pos := Position{Filename: "a.kite", Line: 2, Column: 3}
	tests := []struct {
		tok  Token
		want string
	}{
		{New("x", pos), "IDENT(x) at a.kite:2:3"},
		{NewString("hi", pos), `STRING("hi") at a.kite:2:3`},
		{New("+=", Position{Line: 1, Column: 1}), "+= at 1:1"},
		{NewSentinel(EOF, pos), "EOF at a.kite:2:3"},
	}
	for _, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if !New("-1", pos).IsNegativeNumber() || New("1", pos).IsNegativeNumber() {
		t.Error("IsNegativeNumber is wrong")
	}
}

func TestPositionAndSpan(t *testing.T) {
	a := Position{Line: 1, Column: 5}
	b := Position{Line: 2, Column: 1}
	if !a.Before(b) || b.Before(a) || !a.IsValid() || (Position{}).IsValid() {
		t.Error("position comparison is wrong")
	}

	span := SpanFromToken(New("hello", Position{Filename: "f", Line: 3, Column: 2}))
	if span.Length() != 5 {
		t.Errorf("Length() = %d, want 5", span.Length())
	}
	if span.String() != "f:3:2-7" {
		t.Errorf("String() = %q", span.String())
	}
	if NewSpan(a, b).Length() != 1 {
		t.Error("multi-line span length should be 1")
	}
}

func TestKeywordsSorted(t *testing.T) {
	kws := Keywords()
	if !sort.StringsAreSorted(kws) {
		t.Error("keywords are not sorted")
	}
	if len(kws) != len(keywords) {
		t.Errorf("got %d keywords, want %d", len(kws), len(keywords))
	}
}
