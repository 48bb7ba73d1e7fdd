package parser

import (
	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/lexer"
	"github.com/tangzhangming/kite/internal/token"
)

type (
	prefixBuilder  func() ast.Node
	infixBuilder   func(ast.Node) ast.Node
	postfixBuilder func(ast.Node) ast.Node
)

// Parser 语法分析器
//
// 基于优先级爬升（Pratt）：每种 token 类型在 prefix / infix / postfix 三张表中
// 注册自己的 builder。语法错误只追加到错误列表，解析总会走完整个 token 流。
type Parser struct {
	tokens   []token.Token
	current  int
	filename string

	prefixBuilders  map[token.TokenType]prefixBuilder
	infixBuilders   map[token.TokenType]infixBuilder
	postfixBuilders map[token.TokenType]postfixBuilder

	errors    []Error
	panicMode bool // 错误恢复模式标志，用于避免级联报错
	stopped   bool // 错误数达到上限
	exprDepth int  // 表达式解析深度，防止栈溢出

	rangerDepth int // 括号嵌套深度（括号内逗号后的换行被跳过）
	classDepth  int // 是否直接位于类体中（决定 fun init 是否为构造函数）
}

// maxExprDepth 最大表达式嵌套深度，防止栈溢出
const maxExprDepth = 200

// maxParseErrors 最大错误数量限制，防止错误爆炸
const maxParseErrors = 50

// New 创建一个新的语法分析器
//
// tokens 通常来自 lexer.Tokenize；缺少结尾 EOF 时会自动补上。
func New(tokens []token.Token) *Parser {
	// 拆分负数时会改写 token 流，先复制一份
	tokens = append(make([]token.Token, 0, len(tokens)+8), tokens...)
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		var pos token.Position
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens, token.NewSentinel(token.EOF, pos))
	}

	p := &Parser{
		tokens:          tokens,
		filename:        tokens[0].Pos.Filename,
		prefixBuilders:  map[token.TokenType]prefixBuilder{},
		infixBuilders:   map[token.TokenType]infixBuilder{},
		postfixBuilders: map[token.TokenType]postfixBuilder{},
	}

	// 字面量与标识符
	p.registerPrefix(token.IDENT, p.buildIdentifier)
	p.registerPrefix(token.INT, p.buildInteger)
	p.registerPrefix(token.FLOAT, p.buildFloat)
	p.registerPrefix(token.STRING, p.buildString)
	p.registerPrefix(token.TRUE, p.buildBool)
	p.registerPrefix(token.FALSE, p.buildBool)
	p.registerPrefix(token.NULL, p.buildNull)
	p.registerPrefix(token.THIS, p.buildThis)

	// 前缀运算与括号
	p.registerPrefix(token.MINUS, p.buildUnary)
	p.registerPrefix(token.NOT, p.buildUnary)
	p.registerPrefix(token.STAR, p.buildUnary)
	p.registerPrefix(token.POW, p.buildUnary)
	p.registerPrefix(token.LPAREN, p.buildParen)
	p.registerPrefix(token.LBRACKET, p.buildList)
	p.registerPrefix(token.LBRACE, p.buildBraces)

	// 关键字
	p.registerPrefix(token.VAR, p.buildVar)
	p.registerPrefix(token.FUN, p.buildFun)
	p.registerPrefix(token.CLASS, p.buildClass)
	p.registerPrefix(token.IF, p.buildIf)
	p.registerPrefix(token.ELIF, p.buildStrayBranch)
	p.registerPrefix(token.ELSE, p.buildStrayBranch)
	p.registerPrefix(token.WHILE, p.buildWhile)
	p.registerPrefix(token.FOR, p.buildFor)
	p.registerPrefix(token.RETURN, p.buildReturn)
	p.registerPrefix(token.BREAK, p.buildBreak)
	p.registerPrefix(token.CONTINUE, p.buildContinue)
	p.registerPrefix(token.PASS, p.buildPass)
	p.registerPrefix(token.IMPORT, p.buildImport)

	// 中缀
	for _, t := range []token.TokenType{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE,
		token.AND, token.OR,
	} {
		p.registerInfix(t, p.buildBinary)
	}
	for _, t := range []token.TokenType{
		token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN,
		token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN,
	} {
		p.registerInfix(t, p.buildAssignment)
	}
	p.registerInfix(token.COMMA, p.buildParallel)
	p.registerInfix(token.COLON, p.buildPair)
	p.registerInfix(token.ARROW, p.buildIndicator)
	p.registerInfix(token.LPAREN, p.buildCall)
	p.registerInfix(token.LBRACKET, p.buildIndex)
	p.registerInfix(token.DOT, p.buildAttribute)

	// 后缀
	p.registerPostfix(token.INCREMENT, p.buildPostfix)
	p.registerPostfix(token.DECREMENT, p.buildPostfix)

	return p
}

func (p *Parser) registerPrefix(t token.TokenType, fn prefixBuilder) {
	p.prefixBuilders[t] = fn
}

func (p *Parser) registerInfix(t token.TokenType, fn infixBuilder) {
	p.infixBuilders[t] = fn
}

func (p *Parser) registerPostfix(t token.TokenType, fn postfixBuilder) {
	p.postfixBuilders[t] = fn
}

// Parse 解析整个 token 流
//
// 返回值 hasError 为 true 时 Program 只是尽力而为的结果，不应继续编译。
func (p *Parser) Parse() (bool, *ast.Program) {
	program := &ast.Program{Filename: p.filename}

	for {
		p.skipNewlines()
		if p.isAtEnd() || p.stopped {
			break
		}
		p.panicMode = false

		node := p.buildExpression(LOWEST)
		if node == nil {
			p.synchronize(token.ILLEGAL)
			continue
		}
		program.Body = append(program.Body, node)

		if !p.check(token.NEWLINE) && !p.isAtEnd() {
			p.errorUnexpected(p.peek(), "newline")
			p.synchronize(token.ILLEGAL)
		}
	}

	return p.HasErrors(), program
}

// Errors 返回所有语法错误
func (p *Parser) Errors() []Error {
	return p.errors
}

// HasErrors 检查是否有错误
func (p *Parser) HasErrors() bool {
	return len(p.errors) > 0
}

// Err 返回合并后的错误，没有错误时为 nil
func (p *Parser) Err() error {
	return combine(p.errors)
}

// ParseSource 对源代码做词法与语法分析
//
// 词法错误以 *errors.CompileError 返回；语法错误以 multierr 合并后返回，
// 可用 Diagnostics 拆开。
func ParseSource(source, filename string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	p := New(tokens)
	hasError, program := p.Parse()
	if hasError {
		return program, p.Err()
	}
	return program, nil
}

// ============================================================================
// 核心：优先级爬升
// ============================================================================

// buildExpression 解析优先级高于 precedence 的表达式
func (p *Parser) buildExpression(precedence int) ast.Node {
	p.exprDepth++
	defer func() { p.exprDepth-- }()
	if p.exprDepth > maxExprDepth {
		p.errorAt(ErrSyntax, p.peek(), i18n.ErrExpectedExpression, describe(p.peek()))
		return nil
	}

	tok := p.peek()
	prefix := p.prefixBuilders[tok.Type]
	if prefix == nil {
		p.errorAt(ErrBuilderNotFound, tok, i18n.ErrPrefixBuilderNotFound, describe(tok))
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for {
		next := p.peek()
		if postfix := p.postfixBuilders[next.Type]; postfix != nil {
			left = postfix(left)
			if left == nil {
				return nil
			}
			continue
		}
		// 中缀位置上带负号的数字拆成减号和正数
		if next.IsNegativeNumber() {
			p.splitNegativeNumber()
			next = p.peek()
		}
		if precedence >= precedenceOf(next.Type) {
			return left
		}
		infix := p.infixBuilders[next.Type]
		if infix == nil {
			p.errorAt(ErrBuilderNotFound, next, i18n.ErrInfixBuilderNotFound, describe(next))
			return nil
		}
		left = infix(left)
		if left == nil {
			return nil
		}
	}
}

// splitNegativeNumber 把当前的 "-3" token 拆成 "-" 和 "3"
func (p *Parser) splitNegativeNumber() {
	tok := p.peek()
	minus := token.New("-", tok.Pos)
	numPos := tok.Pos
	numPos.Column++
	numPos.Offset++
	number := token.New(tok.Literal[1:], numPos)

	p.tokens[p.current] = minus
	p.tokens = append(p.tokens, token.Token{})
	copy(p.tokens[p.current+2:], p.tokens[p.current+1:])
	p.tokens[p.current+1] = number
}

// ============================================================================
// 辅助方法
// ============================================================================

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	if p.current == 0 {
		return token.NewSentinel(token.START, p.tokens[0].Pos)
	}
	return p.tokens[p.current-1]
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t token.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume 期望当前 token 为 t，否则报告意外 token
func (p *Parser) consume(t token.TokenType, expected string) (token.Token, bool) {
	if p.check(t) {
		return p.advance(), true
	}
	p.errorUnexpected(p.peek(), expected)
	return p.peek(), false
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// peekPastNewlines 返回跳过换行后的 token 类型（不移动位置）
func (p *Parser) peekPastNewlines() token.TokenType {
	for i := p.current; i < len(p.tokens); i++ {
		if p.tokens[i].Type != token.NEWLINE {
			return p.tokens[i].Type
		}
	}
	return token.EOF
}

// atItemEnd 当前位置是否为一项的结尾（换行、右括号、EOF）
func (p *Parser) atItemEnd() bool {
	t := p.peek().Type
	return t == token.NEWLINE || t == token.EOF || token.IsRangerClose(t)
}

// ============================================================================
// 错误处理
// ============================================================================

func (p *Parser) errorAt(kind ErrorKind, tok token.Token, msgID string, args ...interface{}) {
	length := len([]rune(tok.Literal))
	if tok.Type == token.STRING {
		length += 2
	}
	p.errorAtPos(kind, tok.Pos, length, msgID, args...)
}

func (p *Parser) errorAtPos(kind ErrorKind, pos token.Position, length int, msgID string, args ...interface{}) {
	// panicMode 下跳过后续错误，避免级联报错
	if p.panicMode || p.stopped {
		return
	}
	p.panicMode = true

	// 避免在同一位置重复报错
	if len(p.errors) > 0 {
		last := p.errors[len(p.errors)-1]
		if last.Pos.Line == pos.Line && last.Pos.Column == pos.Column {
			return
		}
	}

	if length < 1 {
		length = 1
	}
	p.errors = append(p.errors, Error{
		Kind:    kind,
		Pos:     pos,
		Length:  length,
		Message: i18n.T(msgID, args...),
	})

	if len(p.errors) >= maxParseErrors {
		p.errors = append(p.errors, Error{
			Kind:    ErrSyntax,
			Pos:     pos,
			Length:  1,
			Message: i18n.T(i18n.ErrTooManyErrors),
		})
		p.stopped = true
	}
}

func (p *Parser) errorUnexpected(tok token.Token, expected string) {
	p.errorAt(ErrUnexpectedToken, tok, i18n.ErrUnexpectedTokenType, describe(tok), expected)
}

// errorNode 在节点位置报告一般语法错误
func (p *Parser) errorNode(node ast.Node, msgID string, args ...interface{}) {
	start, end := node.Pos(), node.End()
	length := 1
	if end.Line == start.Line && end.Column > start.Column {
		length = end.Column - start.Column
	}
	p.errorAtPos(ErrSyntax, start, length, msgID, args...)
}

// synchronize 跳到下一个换行（同一嵌套层），或当前括号的右括号
func (p *Parser) synchronize(closer token.TokenType) {
	depth := 0
	for !p.isAtEnd() {
		t := p.peek().Type
		switch {
		case token.IsRangerOpen(t):
			depth++
		case token.IsRangerClose(t):
			if depth == 0 {
				if t == closer {
					return
				}
				// 不属于当前括号的右括号直接丢弃
				p.advance()
				continue
			}
			depth--
		case t == token.NEWLINE && depth == 0:
			return
		}
		p.advance()
	}
}

// describe 描述 token（用于错误消息）
func describe(tok token.Token) string {
	switch tok.Type {
	case token.NEWLINE:
		return "newline"
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return "identifier '" + tok.Literal + "'"
	case token.INT, token.FLOAT:
		return "number " + tok.Literal
	case token.STRING:
		return "string"
	default:
		return "'" + tok.Type.String() + "'"
	}
}
