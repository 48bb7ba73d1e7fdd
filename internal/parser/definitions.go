package parser

import (
	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/token"
)

// ============================================================================
// var
// ============================================================================

// buildVar 变量定义
//
//	var x: int = 1
//	var a = 1, b: str = "s", c
func (p *Parser) buildVar() ast.Node {
	tok := p.advance()
	expr := p.buildExpression(LOWEST)
	if expr == nil {
		return nil
	}

	items := []ast.Node{expr}
	if parallel, ok := expr.(*ast.Parallel); ok {
		items = parallel.Items
	}

	def := &ast.VariableDefinition{Token: tok}
	for _, item := range items {
		switch n := item.(type) {
		case *ast.Identifier:
			def.Names = append(def.Names, n)
			def.Values = append(def.Values, nil)
		case *ast.Assignment:
			name, ok := n.Target.(*ast.Identifier)
			if !ok || n.Operator.Type != token.ASSIGN {
				p.errorNode(item, i18n.ErrInvalidVarTarget, item.String())
				return nil
			}
			def.Names = append(def.Names, name)
			def.Values = append(def.Values, n.Value)
		default:
			p.errorNode(item, i18n.ErrInvalidVarTarget, item.String())
			return nil
		}
	}
	return def
}

// ============================================================================
// fun
// ============================================================================

// buildFun 函数声明、定义、匿名函数
//
//	fun f(a: int): int               声明（后面直接换行）
//	fun f(a: int): int { … }         定义
//	fun f(a: int): int -> a * 2      单表达式定义
//	fun (a) { … } / fun (a) -> a     匿名函数
func (p *Parser) buildFun() ast.Node {
	tok := p.advance()
	inClass := p.classDepth > 0

	head := p.buildExpression(PAIR)
	if head == nil {
		return nil
	}

	switch h := head.(type) {
	case *ast.AnonymousFunction:
		// fun (a) -> expr，括号与箭头已由 buildIndicator 处理
		h.Token = tok
		return h

	case *ast.Indicator:
		// fun f(a) -> expr
		call, name, ok := p.functionHead(h.Left)
		if !ok {
			return nil
		}
		params, ok := p.toParameters(call.Args)
		if !ok {
			return nil
		}
		body := ast.BlockOf(h.Arrow, ast.NewReturn(h.Arrow, h.Right))
		return p.newFunction(tok, name, params, nil, body, true, inClass)

	case *ast.Call:
		call, name, ok := p.functionHead(h)
		if !ok {
			return nil
		}
		params, ok := p.toParameters(call.Args)
		if !ok {
			return nil
		}
		labels, ok := p.parseFunctionLabels()
		if !ok {
			return nil
		}

		switch {
		case p.check(token.ARROW):
			arrow := p.advance()
			expr := p.buildExpression(PARALLEL)
			if expr == nil {
				return nil
			}
			body := ast.BlockOf(arrow, ast.NewReturn(arrow, expr))
			return p.newFunction(tok, name, params, labels, body, true, inClass)

		case p.check(token.LBRACE):
			body := p.parseFunctionBody()
			if body == nil {
				return nil
			}
			return p.newFunction(tok, name, params, labels, body, false, inClass)

		case p.atItemEnd():
			return &ast.FunctionDeclaration{Token: tok, Name: name, Params: params, Labels: labels}

		default:
			p.errorUnexpected(p.peek(), "'{', '->' or newline")
			return nil
		}

	case *ast.Ranger:
		// fun (a: int): int { … }
		if h.Kind != ast.RangerParen {
			p.errorNode(head, i18n.ErrInvalidFunHead, head.String())
			return nil
		}
		params, ok := p.toParameters(h.Items())
		if !ok {
			return nil
		}
		labels, ok := p.parseFunctionLabels()
		if !ok {
			return nil
		}
		var body *ast.Block
		if p.check(token.ARROW) {
			arrow := p.advance()
			expr := p.buildExpression(PARALLEL)
			if expr == nil {
				return nil
			}
			body = ast.BlockOf(arrow, ast.NewReturn(arrow, expr))
		} else {
			body = p.parseFunctionBody()
			if body == nil {
				return nil
			}
		}
		return &ast.AnonymousFunction{Token: tok, Params: params, Labels: labels, Body: body}

	default:
		p.errorNode(head, i18n.ErrInvalidFunHead, head.String())
		return nil
	}
}

// functionHead 检查函数头是否为 name(args)
func (p *Parser) functionHead(n ast.Node) (*ast.Call, *ast.Identifier, bool) {
	call, ok := n.(*ast.Call)
	if !ok {
		p.errorNode(n, i18n.ErrInvalidFunHead, n.String())
		return nil, nil, false
	}
	name, ok := call.Callee.(*ast.Identifier)
	if !ok || len(name.Labels) > 0 {
		p.errorNode(call.Callee, i18n.ErrInvalidFunHead, call.Callee.String())
		return nil, nil, false
	}
	return call, name, true
}

func (p *Parser) parseFunctionLabels() ([]*ast.Label, bool) {
	if !p.check(token.COLON) {
		return nil, true
	}
	p.advance()
	return p.parseLabels()
}

// parseFunctionBody 函数体内不再处于类体中
func (p *Parser) parseFunctionBody() *ast.Block {
	saved := p.classDepth
	p.classDepth = 0
	defer func() { p.classDepth = saved }()
	return p.parseBlock()
}

func (p *Parser) newFunction(tok token.Token, name *ast.Identifier, params []*ast.Parameter,
	labels []*ast.Label, body *ast.Block, arrow bool, inClass bool) ast.Node {
	if inClass && name.Name == "init" {
		return &ast.ConstructorDefinition{Token: tok, Name: name, Params: params, Labels: labels, Body: body}
	}
	return &ast.FunctionDefinition{Token: tok, Name: name, Params: params, Labels: labels, Body: body, Arrow: arrow}
}

// toParameters 把实参形式的节点转换为形参
//
//	a / a: int        位置参数
//	a = 1             关键字参数（带默认值）
//	*args             可变位置参数
//	**kwargs          可变关键字参数
func (p *Parser) toParameters(items []ast.Node) ([]*ast.Parameter, bool) {
	params := make([]*ast.Parameter, 0, len(items))
	seenVarPositional, seenVarKeyword := false, false

	for _, item := range items {
		var param *ast.Parameter
		switch n := item.(type) {
		case *ast.Identifier:
			param = &ast.Parameter{Name: n, Kind: ast.ParamPositional}
		case *ast.Argument:
			param = &ast.Parameter{Name: n.Name, Kind: ast.ParamKeyword, Default: n.Value}
		case *ast.Assignment:
			name, ok := n.Target.(*ast.Identifier)
			if !ok || n.Operator.Type != token.ASSIGN {
				p.errorNode(item, i18n.ErrInvalidParameter, item.String())
				return nil, false
			}
			param = &ast.Parameter{Name: name, Kind: ast.ParamKeyword, Default: n.Value}
		case *ast.Unary:
			name, ok := n.Operand.(*ast.Identifier)
			if !ok || (n.Operator.Type != token.STAR && n.Operator.Type != token.POW) {
				p.errorNode(item, i18n.ErrInvalidParameter, item.String())
				return nil, false
			}
			kind := ast.ParamVarPositional
			if n.Operator.Type == token.POW {
				kind = ast.ParamVarKeyword
			}
			param = &ast.Parameter{Name: name, Kind: kind}
		default:
			p.errorNode(item, i18n.ErrInvalidParameter, item.String())
			return nil, false
		}

		// **kwargs 之后不能再有参数；*args 之后只能是关键字参数或 **kwargs
		if seenVarKeyword || (seenVarPositional &&
			(param.Kind == ast.ParamPositional || param.Kind == ast.ParamVarPositional)) {
			p.errorNode(item, i18n.ErrParameterOrder, param.Name.Name)
			return nil, false
		}
		switch param.Kind {
		case ast.ParamVarPositional:
			seenVarPositional = true
		case ast.ParamVarKeyword:
			seenVarKeyword = true
		}
		params = append(params, param)
	}
	return params, true
}

// ============================================================================
// class
// ============================================================================

// buildClass 类声明与定义
//
//	class Shape                     声明
//	class Point: Shape public { }   定义，类名标签为基类，权限标签为成员默认权限
func (p *Parser) buildClass() ast.Node {
	tok := p.advance()
	if !p.check(token.IDENT) {
		p.errorAt(ErrUnexpectedToken, p.peek(), i18n.ErrInvalidClassHead, describe(p.peek()))
		return nil
	}
	name, ok := p.buildIdentifier().(*ast.Identifier)
	if !ok || name == nil {
		return nil
	}

	if p.atItemEnd() {
		return &ast.ClassDeclaration{Token: tok, Name: name}
	}
	if !p.check(token.LBRACE) {
		p.errorAt(ErrUnexpectedToken, p.peek(), i18n.ErrExpectedBlock, describe(p.peek()))
		return nil
	}

	open := p.advance()
	p.rangerDepth++
	saved := p.classDepth
	p.classDepth = 1
	ranger := p.parseRangerBody(open, token.RBRACE)
	p.rangerDepth--
	p.classDepth = saved
	if ranger == nil {
		return nil
	}

	body := &ast.Block{Open: ranger.Open, Close: ranger.Close, Items: ranger.Items()}
	return &ast.ClassDefinition{Token: tok, Name: name, Body: body}
}
