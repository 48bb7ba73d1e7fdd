package parser

import (
	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/token"
)

// ============================================================================
// 条件分支
// ============================================================================

// buildIf if / elif / else 链，elif 与 else 可以写在下一行
func (p *Parser) buildIf() ast.Node {
	branch := &ast.ConditionalBranch{}

	cond := p.parseCondition(p.advance())
	if cond == nil {
		return nil
	}
	branch.Branches = append(branch.Branches, cond)

	for {
		next := p.peekPastNewlines()
		if next != token.ELIF && next != token.ELSE {
			return branch
		}
		p.skipNewlines()
		kw := p.advance()
		if kw.Type == token.ELSE {
			body := p.parseBlock()
			if body == nil {
				return nil
			}
			branch.Else = body
			return branch
		}
		cond := p.parseCondition(kw)
		if cond == nil {
			return nil
		}
		branch.Branches = append(branch.Branches, cond)
	}
}

// parseCondition 解析 (test) { body }
func (p *Parser) parseCondition(kw token.Token) *ast.Condition {
	test := p.parseParenTest(kw)
	if test == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.Condition{Token: kw, Test: test, Body: body}
}

// parseParenTest 解析括号包裹的单个条件表达式
func (p *Parser) parseParenTest(kw token.Token) ast.Node {
	if !p.check(token.LPAREN) {
		p.errorAt(ErrUnexpectedToken, p.peek(), i18n.ErrExpectedCondition, kw.Literal)
		return nil
	}
	ranger := p.parseRanger(token.RPAREN)
	if ranger == nil {
		return nil
	}
	items := ranger.Items()
	if len(items) != 1 {
		p.errorNode(ranger, i18n.ErrExpectedCondition, kw.Literal)
		return nil
	}
	return items[0]
}

func (p *Parser) buildStrayBranch() ast.Node {
	tok := p.peek()
	p.errorAt(ErrSyntax, tok, i18n.ErrBranchWithoutIf, tok.Literal)
	return nil
}

// ============================================================================
// 循环
// ============================================================================

// buildWhile while (test) { … }
func (p *Parser) buildWhile() ast.Node {
	tok := p.advance()
	test := p.parseParenTest(tok)
	if test == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.Loop{Token: tok, Test: test, Body: body}
}

// buildFor for (init; test; update) { … }
//
// 分号在词法阶段已经变成换行，所以循环头是一个恰好三项的 Block。
func (p *Parser) buildFor() ast.Node {
	tok := p.advance()
	if !p.check(token.LPAREN) {
		p.errorAt(ErrUnexpectedToken, p.peek(), i18n.ErrExpectedCondition, tok.Literal)
		return nil
	}
	ranger := p.parseRanger(token.RPAREN)
	if ranger == nil {
		return nil
	}
	head, ok := ranger.Body.(*ast.Block)
	if !ok || len(head.Items) != 3 {
		p.errorNode(ranger, i18n.ErrForHeadShape, len(ranger.Items()))
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.Loop{
		Token:  tok,
		Init:   head.Items[0],
		Test:   head.Items[1],
		Update: head.Items[2],
		Body:   body,
	}
}

// ============================================================================
// 简单语句
// ============================================================================

func (p *Parser) buildReturn() ast.Node {
	tok := p.advance()
	if p.atItemEnd() {
		return &ast.Return{Token: tok}
	}
	value := p.buildExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ast.Return{Token: tok, Value: value}
}

func (p *Parser) buildBreak() ast.Node {
	return &ast.Break{Token: p.advance()}
}

func (p *Parser) buildContinue() ast.Node {
	return &ast.Continue{Token: p.advance()}
}

func (p *Parser) buildPass() ast.Node {
	return &ast.Pass{Token: p.advance()}
}

// buildImport import "path"
func (p *Parser) buildImport() ast.Node {
	tok := p.advance()
	if !p.check(token.STRING) {
		p.errorAt(ErrUnexpectedToken, p.peek(), i18n.ErrInvalidImport)
		return nil
	}
	return &ast.Import{Token: tok, Path: ast.NewStringLiteral(p.advance())}
}
