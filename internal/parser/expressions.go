package parser

import (
	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/token"
)

// ============================================================================
// 字面量与标识符
// ============================================================================

// buildIdentifier 标识符，后面跟 ':' 时读取标签列表
func (p *Parser) buildIdentifier() ast.Node {
	ident := ast.NewIdentifier(p.advance())
	if p.check(token.COLON) {
		p.advance()
		labels, ok := p.parseLabels()
		if !ok {
			return nil
		}
		ident.Labels = labels
	}
	return ident
}

func (p *Parser) buildInteger() ast.Node {
	tok := p.advance()
	lit, err := ast.NewIntegerLiteral(tok)
	if err != nil {
		p.errorAt(ErrSyntax, tok, i18n.ErrInvalidIdentifier, tok.Literal)
		return nil
	}
	return lit
}

func (p *Parser) buildFloat() ast.Node {
	tok := p.advance()
	lit, err := ast.NewFloatLiteral(tok)
	if err != nil {
		p.errorAt(ErrSyntax, tok, i18n.ErrInvalidIdentifier, tok.Literal)
		return nil
	}
	return lit
}

func (p *Parser) buildString() ast.Node {
	return ast.NewStringLiteral(p.advance())
}

func (p *Parser) buildBool() ast.Node {
	return ast.NewBoolLiteral(p.advance())
}

func (p *Parser) buildNull() ast.Node {
	return &ast.NullLiteral{Token: p.advance()}
}

func (p *Parser) buildThis() ast.Node {
	return &ast.This{Token: p.advance()}
}

// ============================================================================
// 标签
// ============================================================================

// parseLabels 读取 ':' 之后的标签列表
//
// 第一个标签可以是标签关键字或类名，之后的标签只能是标签关键字。
func (p *Parser) parseLabels() ([]*ast.Label, bool) {
	first := p.peek()
	if !token.IsLabel(first.Type) && first.Type != token.IDENT {
		p.errorAt(ErrUnexpectedToken, first, i18n.ErrExpectedLabel, describe(first))
		return nil, false
	}

	var labels []*ast.Label
	for {
		label, ok := p.parseLabel()
		if !ok {
			return nil, false
		}
		labels = append(labels, label)
		if !token.IsLabel(p.peek().Type) {
			return labels, true
		}
	}
}

// parseLabel 读取单个标签及其描述组 func[int, str][bool]
func (p *Parser) parseLabel() (*ast.Label, bool) {
	label := ast.NewLabel(p.advance())
	for p.check(token.LBRACKET) {
		if label.Token.Type != token.FUNC_TYPE && label.Token.Type != token.FUNI_TYPE {
			p.errorAt(ErrSyntax, label.Token, i18n.ErrInvalidDescriptor, label.Name)
			return nil, false
		}
		open := p.advance()
		var group []*ast.Label
		for !p.check(token.RBRACKET) {
			tok := p.peek()
			if !token.IsLabel(tok.Type) && tok.Type != token.IDENT {
				if tok.Type == token.EOF || tok.Type == token.NEWLINE {
					p.errorAt(ErrUnclosed, tok, i18n.ErrUnclosedExpression, "[", open.Pos, describe(tok))
				} else {
					p.errorAt(ErrUnexpectedToken, tok, i18n.ErrExpectedLabel, describe(tok))
				}
				return nil, false
			}
			inner, ok := p.parseLabel()
			if !ok {
				return nil, false
			}
			group = append(group, inner)
			if !p.match(token.COMMA) && !p.check(token.RBRACKET) {
				p.errorUnexpected(p.peek(), "',' or ']'")
				return nil, false
			}
		}
		p.advance()
		label.Groups = append(label.Groups, group)
	}
	return label, true
}

// ============================================================================
// 前缀运算与括号
// ============================================================================

func (p *Parser) buildUnary() ast.Node {
	op := p.advance()
	operand := p.buildExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &ast.Unary{Operator: op, Operand: operand}
}

// parseRanger 解析括号内容直到 closer
//
// 括号内逗号分隔的表达式构成 Parallel；多项以换行分隔时构成 Block。
func (p *Parser) parseRanger(closer token.TokenType) *ast.Ranger {
	open := p.advance()
	p.rangerDepth++
	saved := p.classDepth
	p.classDepth = 0
	defer func() {
		p.rangerDepth--
		p.classDepth = saved
	}()
	return p.parseRangerBody(open, closer)
}

// parseRangerBody 解析 open 之后的内容（调用方负责维护 rangerDepth）
func (p *Parser) parseRangerBody(open token.Token, closer token.TokenType) *ast.Ranger {
	var items []ast.Node
	for {
		p.skipNewlines()
		if p.check(closer) || p.isAtEnd() || p.stopped {
			break
		}
		p.panicMode = false

		item := p.buildExpression(LOWEST)
		if item == nil {
			p.synchronize(closer)
			continue
		}
		items = append(items, item)

		if !p.check(token.NEWLINE) && !p.check(closer) {
			if p.isAtEnd() || token.IsRangerClose(p.peek().Type) {
				break
			}
			p.errorUnexpected(p.peek(), "newline or '"+closer.String()+"'")
			p.synchronize(closer)
		}
	}

	if !p.check(closer) {
		p.errorAt(ErrUnclosed, p.peek(), i18n.ErrUnclosedExpression, open.Literal, open.Pos, describe(p.peek()))
		return nil
	}
	closeTok := p.advance()

	ranger := &ast.Ranger{Open: open, Close: closeTok, Kind: rangerKind(open.Type)}
	switch len(items) {
	case 0:
	case 1:
		ranger.Body = items[0]
	default:
		ranger.Body = &ast.Block{Open: open, Close: closeTok, Items: items}
	}
	return ranger
}

func rangerKind(t token.TokenType) ast.RangerKind {
	switch t {
	case token.LBRACKET:
		return ast.RangerBracket
	case token.LBRACE:
		return ast.RangerBrace
	default:
		return ast.RangerParen
	}
}

// buildParen 圆括号：分组表达式或匿名函数的参数列表
func (p *Parser) buildParen() ast.Node {
	ranger := p.parseRanger(token.RPAREN)
	if ranger == nil {
		return nil
	}
	return ranger
}

// buildList 列表字面量 [a, b, c]
func (p *Parser) buildList() ast.Node {
	ranger := p.parseRanger(token.RBRACKET)
	if ranger == nil {
		return nil
	}
	return &ast.List{Open: ranger.Open, Elements: ranger.Items()}
}

// buildBraces 花括号：全部为键值对（或为空）时是字典，否则是代码块
//
// 表达式位置的 {} 是空字典，与 RA 的 {} 写法一致；语句体由 parseBlock 解析，不经过这里。
func (p *Parser) buildBraces() ast.Node {
	ranger := p.parseRanger(token.RBRACE)
	if ranger == nil {
		return nil
	}
	items := ranger.Items()
	if len(items) == 0 {
		return &ast.Dictionary{Open: ranger.Open}
	}

	if _, isBlock := ranger.Body.(*ast.Block); !isBlock {
		if dict, ok := p.toDictionary(ranger.Open, items); ok {
			return dict
		}
		if _, isParallel := ranger.Body.(*ast.Parallel); isParallel {
			p.errorNode(ranger, i18n.ErrInvalidDictEntry)
			return nil
		}
	}
	return &ast.Block{Open: ranger.Open, Close: ranger.Close, Items: items}
}

// toDictionary 所有项都是键值对时转换为字典
func (p *Parser) toDictionary(open token.Token, items []ast.Node) (*ast.Dictionary, bool) {
	dict := &ast.Dictionary{Open: open}
	for _, item := range items {
		pair, ok := item.(*ast.Pair)
		if !ok {
			return nil, false
		}
		dict.Pairs = append(dict.Pairs, pair)
	}
	return dict, true
}

// parseBlock 解析 { … } 代码块
func (p *Parser) parseBlock() *ast.Block {
	if !p.check(token.LBRACE) {
		p.errorAt(ErrUnexpectedToken, p.peek(), i18n.ErrExpectedBlock, describe(p.peek()))
		return nil
	}
	ranger := p.parseRanger(token.RBRACE)
	if ranger == nil {
		return nil
	}
	return &ast.Block{Open: ranger.Open, Close: ranger.Close, Items: ranger.Items()}
}

// ============================================================================
// 中缀
// ============================================================================

func (p *Parser) buildBinary(left ast.Node) ast.Node {
	op := p.advance()
	right := p.buildExpression(precedenceOf(op.Type))
	if right == nil {
		return nil
	}
	return &ast.Binary{Left: left, Operator: op, Right: right}
}

// buildAssignment 赋值（右结合）
func (p *Parser) buildAssignment(left ast.Node) ast.Node {
	op := p.advance()
	if !isAssignable(left) {
		p.errorNode(left, i18n.ErrInvalidAssignTarget, left.String())
		return nil
	}
	value := p.buildExpression(ASSIGN - 1)
	if value == nil {
		return nil
	}
	return &ast.Assignment{Target: left, Operator: op, Value: value}
}

func isAssignable(n ast.Node) bool {
	switch n.(type) {
	case *ast.Identifier, *ast.Attribute, *ast.Index:
		return true
	}
	return false
}

// buildParallel 逗号并列
func (p *Parser) buildParallel(left ast.Node) ast.Node {
	parallel := &ast.Parallel{Items: []ast.Node{left}}
	for p.match(token.COMMA) {
		if p.rangerDepth > 0 {
			p.skipNewlines()
		}
		item := p.buildExpression(PARALLEL)
		if item == nil {
			return nil
		}
		parallel.Items = append(parallel.Items, item)
	}
	return parallel
}

// buildPair 键值对 key: value
func (p *Parser) buildPair(left ast.Node) ast.Node {
	colon := p.advance()
	value := p.buildExpression(PAIR)
	if value == nil {
		return nil
	}
	return &ast.Pair{Key: left, Colon: colon, Value: value}
}

// buildIndicator 箭头 left -> right
//
// 左侧是圆括号时构成匿名函数 (a, b) -> a + b。
func (p *Parser) buildIndicator(left ast.Node) ast.Node {
	arrow := p.advance()
	right := p.buildExpression(INDICATOR)
	if right == nil {
		return nil
	}
	if ranger, ok := left.(*ast.Ranger); ok && ranger.Kind == ast.RangerParen {
		params, ok := p.toParameters(ranger.Items())
		if !ok {
			return nil
		}
		return &ast.AnonymousFunction{
			Token:  ranger.Open,
			Params: params,
			Body:   ast.BlockOf(arrow, ast.NewReturn(arrow, right)),
		}
	}
	return &ast.Indicator{Left: left, Arrow: arrow, Right: right}
}

// buildCall 函数调用，name = value 形式的实参转换为关键字实参
func (p *Parser) buildCall(left ast.Node) ast.Node {
	ranger := p.parseRanger(token.RPAREN)
	if ranger == nil {
		return nil
	}
	if _, isBlock := ranger.Body.(*ast.Block); isBlock {
		p.errorNode(ranger, i18n.ErrInvalidArgument, ranger.String())
		return nil
	}

	call := &ast.Call{Callee: left, Open: ranger.Open, Close: ranger.Close}
	for _, item := range ranger.Items() {
		if assign, ok := item.(*ast.Assignment); ok {
			name, isIdent := assign.Target.(*ast.Identifier)
			if !isIdent || assign.Operator.Type != token.ASSIGN {
				p.errorNode(item, i18n.ErrInvalidArgument, item.String())
				return nil
			}
			call.Args = append(call.Args, &ast.Argument{Name: name, Value: assign.Value})
			continue
		}
		call.Args = append(call.Args, item)
	}
	return call
}

// buildIndex 下标访问
func (p *Parser) buildIndex(left ast.Node) ast.Node {
	open := p.advance()
	p.rangerDepth++
	defer func() { p.rangerDepth-- }()

	p.skipNewlines()
	index := p.buildExpression(LOWEST)
	if index == nil {
		return nil
	}
	p.skipNewlines()
	if !p.check(token.RBRACKET) {
		p.errorAt(ErrUnclosed, p.peek(), i18n.ErrUnclosedExpression, "[", open.Pos, describe(p.peek()))
		return nil
	}
	p.advance()
	return &ast.Index{Left: left, Open: open, Index: index}
}

// buildAttribute 属性访问
func (p *Parser) buildAttribute(left ast.Node) ast.Node {
	dot := p.advance()
	name, ok := p.consume(token.IDENT, "attribute name")
	if !ok {
		return nil
	}
	return &ast.Attribute{Object: left, Dot: dot, Name: ast.NewIdentifier(name)}
}

// ============================================================================
// 后缀
// ============================================================================

func (p *Parser) buildPostfix(left ast.Node) ast.Node {
	op := p.advance()
	if !isAssignable(left) {
		p.errorNode(left, i18n.ErrInvalidIncrementTarget, op.Literal, left.String())
		return nil
	}
	return &ast.Postfix{Operand: left, Operator: op}
}
