package compiler

import (
	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/ra"
	"github.com/tangzhangming/kite/internal/symbol"
)

// OperandKind 操作数种类
type OperandKind int

const (
	OperandIdent   OperandKind = iota // 变量、临时变量、函数或类
	OperandLiteral                    // 字面量
	OperandLabel                      // 跳转标签
	OperandClass                      // 类的 raw id，作为静态成员访问的对象
)

// Member 成员访问的归属：obj.name
type Member struct {
	Object string        // 对象的 raw id；静态成员为类的 raw id
	Class  *symbol.Class // 成员所在的类
	Symbol symbol.Symbol // 字段或方法
	Static bool
}

// Operand 表达式求值的结果
//
// Surface 是源代码形式，Raw 是写入 RA 指令的形式。
// Type 为声明类型，Value 为 any 类型变量当前持有的值类型。
// Ref 沿别名链指向函数或类，Owner 记录成员访问的归属。
type Operand struct {
	Kind    OperandKind
	Surface string
	Raw     string
	Type    *symbol.Label
	Value   *symbol.Label
	Symbol  symbol.Symbol
	Ref     symbol.Symbol
	Owner   *Member
	Node    ast.Node
}

// Effective 用于类型检查的类型
func (o *Operand) Effective() *symbol.Label {
	if o.Type.IsAny() && o.Value != nil {
		return o.Value
	}
	return o.Type
}

// IsLiteral 字面量操作数
func (o *Operand) IsLiteral() bool {
	return o.Kind == OperandLiteral
}

// Function 操作数指向的函数
func (o *Operand) Function() (*symbol.Function, bool) {
	fn, ok := o.Ref.(*symbol.Function)
	return fn, ok
}

// Class 操作数指向的类（类名本身或类的别名）
func (o *Operand) Class() (*symbol.Class, bool) {
	c, ok := o.Ref.(*symbol.Class)
	return c, ok
}

// Variable 操作数是否直接对应一个变量
func (o *Operand) Variable() (*symbol.Variable, bool) {
	if o.Symbol == nil {
		return nil, false
	}
	return symbol.VariableOf(o.Symbol)
}

func literal(raw string, typ string, node ast.Node) *Operand {
	surface := raw
	if node != nil {
		surface = node.String()
	}
	return &Operand{
		Kind:    OperandLiteral,
		Surface: surface,
		Raw:     raw,
		Type:    symbol.Builtin(typ),
		Node:    node,
	}
}

func nullOperand(node ast.Node) *Operand {
	return literal(ra.Null, symbol.TypeNul, node)
}

func temp(raw string, typ *symbol.Label, node ast.Node) *Operand {
	if typ == nil {
		typ = symbol.Builtin(symbol.TypeAny)
	}
	surface := raw
	if node != nil {
		surface = node.String()
	}
	return &Operand{Kind: OperandIdent, Surface: surface, Raw: raw, Type: typ, Node: node}
}

// classOperand 静态成员访问的对象：类本身，不是值
func classOperand(cls *symbol.Class, node ast.Node) *Operand {
	o := operandOf(cls, node)
	o.Kind = OperandClass
	if node != nil {
		o.Surface = node.String()
	}
	return o
}

// operandOf 由符号构造标识符操作数
func operandOf(sym symbol.Symbol, node ast.Node) *Operand {
	o := &Operand{
		Kind:    OperandIdent,
		Surface: sym.Name(),
		Raw:     sym.RID(),
		Symbol:  sym,
		Node:    node,
	}
	switch s := sym.(type) {
	case *symbol.Function:
		o.Type = s.Signature()
		o.Ref = s
	case *symbol.Class:
		o.Type = symbol.Builtin(symbol.TypeAny)
		o.Ref = s
	default:
		if v, ok := symbol.VariableOf(sym); ok {
			o.Type = v.Type
			o.Value = v.Value
			o.Ref = v.Ref
		}
	}
	if o.Type == nil {
		o.Type = symbol.Builtin(symbol.TypeAny)
	}
	return o
}

// ============================================================================
// 操作数栈
// ============================================================================

func (c *Compiler) push(o *Operand) {
	c.operands = append(c.operands, o)
}

func (c *Compiler) pop() *Operand {
	n := len(c.operands)
	if n == 0 {
		return nil
	}
	o := c.operands[n-1]
	c.operands = c.operands[:n-1]
	return o
}

func (c *Compiler) truncate(mark int) {
	if len(c.operands) > mark {
		c.operands = c.operands[:mark]
	}
}
