package token

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// Token 类型定义
// ============================================================================
//
// TokenType 使用 iota 自动编号，按类别分组：
// 1. 特殊标记（ILLEGAL, START, EOF, NEWLINE）
// 2. 字面量（标识符、数字、字符串）
// 3. 运算符
// 4. 分隔符与括号（ranger）
// 5. 关键字
// 6. 标签关键字（类型、权限、生命周期、限制、面向对象）
//
// Token 的类型总是由字面量推导得到，见 Classify。
//
// ============================================================================

// TokenType 表示 Token 的类型
type TokenType int

const (
	// ----------------------------------------------------------
	// 特殊标记
	// ----------------------------------------------------------
	ILLEGAL TokenType = iota // 非法字符
	START                    // 流起始哨兵
	EOF                      // 流结束哨兵
	NEWLINE                  // 换行（; 也会被规范化为换行）

	// ----------------------------------------------------------
	// 字面量
	// ----------------------------------------------------------
	IDENT  // 标识符
	INT    // 整数字面量（可带负号）
	FLOAT  // 浮点数字面量
	STRING // 字符串字面量

	// ----------------------------------------------------------
	// 运算符
	// ----------------------------------------------------------
	operator_beg
	PLUS           // +
	MINUS          // -
	STAR           // *
	POW            // **
	SLASH          // /
	PERCENT        // %
	ASSIGN         // =
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	INCREMENT      // ++
	DECREMENT      // --
	EQ             // ==
	NE             // !=
	LT             // <
	LE             // <=
	GT             // >
	GE             // >=
	AND            // &&
	OR             // ||
	NOT            // !
	ARROW          // ->
	DOT            // .
	COLON          // :
	operator_end

	// ----------------------------------------------------------
	// 分隔符与括号
	// ----------------------------------------------------------
	COMMA    // ,
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }

	// ----------------------------------------------------------
	// 关键字
	// ----------------------------------------------------------
	keyword_beg
	VAR      // var
	FUN      // fun
	CLASS    // class
	IF       // if
	ELIF     // elif
	ELSE     // else
	WHILE    // while
	FOR      // for
	RETURN   // return
	BREAK    // break
	CONTINUE // continue
	PASS     // pass
	TRUE     // true
	FALSE    // false
	NULL     // null
	THIS     // this
	IMPORT   // import
	keyword_end

	// ----------------------------------------------------------
	// 标签关键字
	// ----------------------------------------------------------
	label_beg
	// 类型
	INT_TYPE   // int
	FLT_TYPE   // flt
	STR_TYPE   // str
	BOOL_TYPE  // bool
	NUL_TYPE   // nul
	ANY_TYPE   // any
	LIST_TYPE  // list
	DICT_TYPE  // dict
	PAIR_TYPE  // pair
	FUNC_TYPE  // func
	FUNI_TYPE  // funi
	// 访问权限
	PRIVATE   // private
	PROTECTED // protected
	PUBLIC    // public
	BUILTIN   // builtin
	// 生命周期
	STATIC   // static
	GLOBAL   // global
	INSTANCE // instance
	// 限制
	CONST // const
	QUOTE // quote
	// 面向对象
	OVERWRITE // overwrite
	INTERFACE // interface
	VIRTUAL   // virtual
	label_end
)

// ============================================================================
// 查找表
// ============================================================================

var operators = map[string]TokenType{
	"+":  PLUS,
	"-":  MINUS,
	"*":  STAR,
	"**": POW,
	"/":  SLASH,
	"%":  PERCENT,
	"=":  ASSIGN,
	"+=": PLUS_ASSIGN,
	"-=": MINUS_ASSIGN,
	"*=": STAR_ASSIGN,
	"/=": SLASH_ASSIGN,
	"%=": PERCENT_ASSIGN,
	"++": INCREMENT,
	"--": DECREMENT,
	"==": EQ,
	"!=": NE,
	"<":  LT,
	"<=": LE,
	">":  GT,
	">=": GE,
	"&&": AND,
	"||": OR,
	"!":  NOT,
	"->": ARROW,
	".":  DOT,
	":":  COLON,
}

var delimiters = map[string]TokenType{
	",":  COMMA,
	"\n": NEWLINE,
	"(":  LPAREN,
	")":  RPAREN,
	"[":  LBRACKET,
	"]":  RBRACKET,
	"{":  LBRACE,
	"}":  RBRACE,
}

var keywords = map[string]TokenType{
	"var":      VAR,
	"fun":      FUN,
	"class":    CLASS,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"pass":     PASS,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
	"this":     THIS,
	"import":   IMPORT,

	"int":  INT_TYPE,
	"flt":  FLT_TYPE,
	"str":  STR_TYPE,
	"bool": BOOL_TYPE,
	"nul":  NUL_TYPE,
	"any":  ANY_TYPE,
	"list": LIST_TYPE,
	"dict": DICT_TYPE,
	"pair": PAIR_TYPE,
	"func": FUNC_TYPE,
	"funi": FUNI_TYPE,

	"private":   PRIVATE,
	"protected": PROTECTED,
	"public":    PUBLIC,
	"builtin":   BUILTIN,

	"static":   STATIC,
	"global":   GLOBAL,
	"instance": INSTANCE,

	"const": CONST,
	"quote": QUOTE,

	"overwrite": OVERWRITE,
	"interface": INTERFACE,
	"virtual":   VIRTUAL,
}

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL",
	START:   "START",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	IDENT:   "IDENT",
	INT:     "INT",
	FLOAT:   "FLOAT",
	STRING:  "STRING",
}

func init() {
	for lit, t := range operators {
		tokenNames[t] = lit
	}
	for lit, t := range delimiters {
		if t != NEWLINE {
			tokenNames[t] = lit
		}
	}
	for lit, t := range keywords {
		tokenNames[t] = lit
	}
}

// ============================================================================
// 分类
// ============================================================================

// Classify 由字面量推导 Token 类型
//
// 字符串字面量不经过这里（引号信息在词法阶段就已确定）。
func Classify(literal string) TokenType {
	if literal == "" {
		return ILLEGAL
	}
	if t, ok := delimiters[literal]; ok {
		return t
	}
	if t, ok := operators[literal]; ok {
		return t
	}
	if t, ok := keywords[literal]; ok {
		return t
	}
	if IsNumberLiteral(literal) {
		if strings.ContainsRune(literal, '.') {
			return FLOAT
		}
		return INT
	}
	if IsIdentifier(literal) {
		return IDENT
	}
	return ILLEGAL
}

// LookupOperator 查找运算符，不存在时返回 ILLEGAL
func LookupOperator(s string) TokenType {
	if t, ok := operators[s]; ok {
		return t
	}
	return ILLEGAL
}

// IsNumberLiteral 判断是否为数字字面量（允许前导负号和一个小数点）
func IsNumberLiteral(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" || s[0] < '0' || s[0] > '9' {
		return false
	}
	dots := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c == '.':
			dots++
			if dots > 1 || i == len(s)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsIdentifier 判断是否为合法标识符
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			continue
		}
		if i > 0 && c >= '0' && c <= '9' {
			continue
		}
		return false
	}
	return true
}

// IsKeyword 判断 TokenType 是否为关键字
func IsKeyword(t TokenType) bool {
	return t > keyword_beg && t < keyword_end
}

// IsOperator 判断 TokenType 是否为运算符
func IsOperator(t TokenType) bool {
	return t > operator_beg && t < operator_end
}

// IsLabel 判断 TokenType 是否为标签关键字
func IsLabel(t TokenType) bool {
	return t > label_beg && t < label_end
}

// IsTypeLabel 判断是否为内置类型标签
func IsTypeLabel(t TokenType) bool {
	return t >= INT_TYPE && t <= FUNI_TYPE
}

// IsPermissionLabel 判断是否为访问权限标签
func IsPermissionLabel(t TokenType) bool {
	return t >= PRIVATE && t <= BUILTIN
}

// IsLifeCycleLabel 判断是否为生命周期标签
func IsLifeCycleLabel(t TokenType) bool {
	return t >= STATIC && t <= INSTANCE
}

// IsRestrictionLabel 判断是否为限制标签
func IsRestrictionLabel(t TokenType) bool {
	return t == CONST || t == QUOTE
}

// IsObjectOrientedLabel 判断是否为面向对象标签
func IsObjectOrientedLabel(t TokenType) bool {
	return t >= OVERWRITE && t <= VIRTUAL
}

// IsRangerOpen 判断是否为左括号类
func IsRangerOpen(t TokenType) bool {
	return t == LPAREN || t == LBRACKET || t == LBRACE
}

// IsRangerClose 判断是否为右括号类
func IsRangerClose(t TokenType) bool {
	return t == RPAREN || t == RBRACKET || t == RBRACE
}

// IsOperatorChar 判断字符是否可以出现在运算符中
func IsOperatorChar(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%', '=', '!', '<', '>', '&', '|', '.', ':':
		return true
	}
	return false
}

// IsPartialOperator 判断是否为只能作为多字符运算符前缀出现的字符串
func IsPartialOperator(s string) bool {
	return s == "&" || s == "|"
}

// String 返回 TokenType 的字符串表示
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// ============================================================================
// Position - 源代码位置
// ============================================================================

// Position 表示源代码中的位置
type Position struct {
	Filename string // 文件名
	Line     int    // 行号 (从1开始)
	Column   int    // 列号 (从1开始)
	Offset   int    // 字节偏移量 (从0开始)
}

// String 返回位置的字符串表示，格式为 "filename:line:column"
func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid 检查位置是否有效
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before 判断 p 是否在 o 之前（按行列比较）
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// ============================================================================
// Span - 源代码范围
// ============================================================================

// Span 表示源代码中的一个范围（开始到结束）
//
// 用于错误报告和注释行，可以精确定位问题代码的起止位置。
type Span struct {
	Start Position // 开始位置
	End   Position // 结束位置
}

// NewSpan 创建新的 Span
func NewSpan(start, end Position) Span {
	return Span{Start: start, End: end}
}

// SpanFromToken 从 Token 创建 Span
func SpanFromToken(t Token) Span {
	endPos := t.Pos
	endPos.Column += len(t.Literal)
	endPos.Offset += len(t.Literal)
	return Span{Start: t.Pos, End: endPos}
}

// Length 返回 Span 的长度（仅在同一行有效）
func (s Span) Length() int {
	if s.Start.Line == s.End.Line {
		return s.End.Column - s.Start.Column
	}
	return 1 // 多行时返回 1
}

// String 返回 Span 的字符串表示
func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s:%d:%d-%d", s.Start.Filename, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.Start.Filename, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// ============================================================================
// Token - 词法单元
// ============================================================================

// Token 表示一个词法单元
type Token struct {
	Type    TokenType // Token 类型（由字面量推导）
	Literal string    // 原始字面量（字符串为反转义后的内容）
	Pos     Position  // 位置信息
}

// String 返回 Token 的字符串表示（用于调试）
func (t Token) String() string {
	switch t.Type {
	case IDENT, INT, FLOAT:
		return fmt.Sprintf("%s(%s) at %s", t.Type, t.Literal, t.Pos)
	case STRING:
		return fmt.Sprintf("%s(%q) at %s", t.Type, t.Literal, t.Pos)
	default:
		return fmt.Sprintf("%s at %s", t.Type, t.Pos)
	}
}

// Is 判断 Token 是否为给定类型之一
func (t Token) Is(types ...TokenType) bool {
	for _, tt := range types {
		if t.Type == tt {
			return true
		}
	}
	return false
}

// IsNegativeNumber 判断是否为带负号的数字 Token
func (t Token) IsNegativeNumber() bool {
	return (t.Type == INT || t.Type == FLOAT) && strings.HasPrefix(t.Literal, "-")
}

// ============================================================================
// Token 构造函数
// ============================================================================

// New 创建一个新的 Token，类型由字面量推导
func New(literal string, pos Position) Token {
	return Token{
		Type:    Classify(literal),
		Literal: literal,
		Pos:     pos,
	}
}

// NewString 创建字符串字面量 Token
func NewString(value string, pos Position) Token {
	return Token{
		Type:    STRING,
		Literal: value,
		Pos:     pos,
	}
}

// NewSentinel 创建流哨兵 Token（START / EOF）
func NewSentinel(t TokenType, pos Position) Token {
	return Token{Type: t, Pos: pos}
}

// Keywords 全部关键字，按字母序
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for lit := range keywords {
		out = append(out, lit)
	}
	sort.Strings(out)
	return out
}
