package ast

import (
	"strconv"

	"github.com/tangzhangming/kite/internal/token"
)

// ============================================================================
// AST 节点工厂函数
// ============================================================================
//
// 由 Token 直接构造叶子节点，数值字面量在这里完成解析。
//
// ============================================================================

// NewIntegerLiteral 由 INT token 创建整数字面量
func NewIntegerLiteral(tok token.Token) (*IntegerLiteral, error) {
	v, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		return nil, err
	}
	return &IntegerLiteral{Token: tok, Value: v}, nil
}

// NewFloatLiteral 由 FLOAT token 创建浮点数字面量
func NewFloatLiteral(tok token.Token) (*FloatLiteral, error) {
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		return nil, err
	}
	return &FloatLiteral{Token: tok, Value: v}, nil
}

// NewStringLiteral 由 STRING token 创建字符串字面量
func NewStringLiteral(tok token.Token) *StringLiteral {
	return &StringLiteral{Token: tok, Value: tok.Literal}
}

// NewBoolLiteral 由 TRUE / FALSE token 创建布尔字面量
func NewBoolLiteral(tok token.Token) *BoolLiteral {
	return &BoolLiteral{Token: tok, Value: tok.Type == token.TRUE}
}

// NewIdentifier 由 IDENT token 创建标识符
func NewIdentifier(tok token.Token) *Identifier {
	return &Identifier{Token: tok, Name: tok.Literal}
}

// NewLabel 由标签关键字或类名 token 创建标签
func NewLabel(tok token.Token) *Label {
	return &Label{Token: tok, Name: tok.Literal}
}

// NewReturn 创建合成的 return（用于单表达式函数体）
func NewReturn(tok token.Token, value Node) *Return {
	return &Return{Token: tok, Value: value}
}

// BlockOf 把单个节点包装成代码块
func BlockOf(open token.Token, items ...Node) *Block {
	return &Block{Open: open, Close: open, Items: items}
}
