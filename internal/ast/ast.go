package ast

import (
	"strconv"
	"strings"

	"github.com/tangzhangming/kite/internal/token"
)

// Node 是所有 AST 节点的基接口
//
// kite 中没有语句与表达式的区分：代码块里的每一项都是 Node。
type Node interface {
	Pos() token.Position    // 返回节点在源代码中的位置
	End() token.Position    // 返回节点结束位置
	String() string         // 返回节点的字符串表示（用于调试）
	Accept(v Visitor) error // 双重分派入口
}

// ============================================================================
// 标签
// ============================================================================

// Label 声明上附带的标签
//
// Name 为标签关键字（int、static、const……）或类名。
// func / funi 标签可以带描述组：func[int, str][bool]。
type Label struct {
	Token  token.Token // 标签 token
	Name   string      // 标签名
	Groups [][]*Label  // 描述组
}

// IsClassName 标签是否引用了一个类名
func (l *Label) IsClassName() bool { return l.Token.Type == token.IDENT }

func (l *Label) Pos() token.Position { return l.Token.Pos }
func (l *Label) End() token.Position { return l.Token.Pos }
func (l *Label) String() string {
	var sb strings.Builder
	sb.WriteString(l.Name)
	for _, group := range l.Groups {
		sb.WriteString("[")
		sb.WriteString(joinLabels(group, ", "))
		sb.WriteString("]")
	}
	return sb.String()
}
func (l *Label) Accept(v Visitor) error { return v.VisitLabel(l) }

func joinLabels(labels []*Label, sep string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.String()
	}
	return strings.Join(parts, sep)
}

func labelSuffix(labels []*Label) string {
	if len(labels) == 0 {
		return ""
	}
	return ": " + joinLabels(labels, " ")
}

// ============================================================================
// 字面量
// ============================================================================

// IntegerLiteral 整数字面量
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (n *IntegerLiteral) Pos() token.Position    { return n.Token.Pos }
func (n *IntegerLiteral) End() token.Position    { return endOf(n.Token) }
func (n *IntegerLiteral) String() string         { return n.Token.Literal }
func (n *IntegerLiteral) Accept(v Visitor) error { return v.VisitIntegerLiteral(n) }

// FloatLiteral 浮点数字面量
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (n *FloatLiteral) Pos() token.Position    { return n.Token.Pos }
func (n *FloatLiteral) End() token.Position    { return endOf(n.Token) }
func (n *FloatLiteral) String() string         { return n.Token.Literal }
func (n *FloatLiteral) Accept(v Visitor) error { return v.VisitFloatLiteral(n) }

// StringLiteral 字符串字面量（Value 为反转义后的内容）
type StringLiteral struct {
	Token token.Token
	Value string
}

func (n *StringLiteral) Pos() token.Position    { return n.Token.Pos }
func (n *StringLiteral) End() token.Position    { return endOf(n.Token) }
func (n *StringLiteral) String() string         { return strconv.Quote(n.Value) }
func (n *StringLiteral) Accept(v Visitor) error { return v.VisitStringLiteral(n) }

// BoolLiteral 布尔字面量
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (n *BoolLiteral) Pos() token.Position    { return n.Token.Pos }
func (n *BoolLiteral) End() token.Position    { return endOf(n.Token) }
func (n *BoolLiteral) String() string         { return n.Token.Literal }
func (n *BoolLiteral) Accept(v Visitor) error { return v.VisitBoolLiteral(n) }

// NullLiteral null 字面量
type NullLiteral struct {
	Token token.Token
}

func (n *NullLiteral) Pos() token.Position    { return n.Token.Pos }
func (n *NullLiteral) End() token.Position    { return endOf(n.Token) }
func (n *NullLiteral) String() string         { return "null" }
func (n *NullLiteral) Accept(v Visitor) error { return v.VisitNullLiteral(n) }

// IsLiteral 判断节点是否为字面量
func IsLiteral(n Node) bool {
	switch n.(type) {
	case *IntegerLiteral, *FloatLiteral, *StringLiteral, *BoolLiteral, *NullLiteral:
		return true
	}
	return false
}

// ============================================================================
// 标识符与运算
// ============================================================================

// Identifier 标识符，可附带标签列表（x: int const）
type Identifier struct {
	Token  token.Token
	Name   string
	Labels []*Label
}

func (n *Identifier) Pos() token.Position    { return n.Token.Pos }
func (n *Identifier) End() token.Position    { return endOf(n.Token) }
func (n *Identifier) String() string         { return n.Name + labelSuffix(n.Labels) }
func (n *Identifier) Accept(v Visitor) error { return v.VisitIdentifier(n) }

// This this 关键字
type This struct {
	Token token.Token
}

func (n *This) Pos() token.Position    { return n.Token.Pos }
func (n *This) End() token.Position    { return endOf(n.Token) }
func (n *This) String() string         { return "this" }
func (n *This) Accept(v Visitor) error { return v.VisitThis(n) }

// Unary 前缀运算 (-x, !x, *args, **kwargs)
type Unary struct {
	Operator token.Token
	Operand  Node
}

func (n *Unary) Pos() token.Position    { return n.Operator.Pos }
func (n *Unary) End() token.Position    { return n.Operand.End() }
func (n *Unary) String() string         { return "(" + n.Operator.Literal + n.Operand.String() + ")" }
func (n *Unary) Accept(v Visitor) error { return v.VisitUnary(n) }

// Binary 二元运算 (a + b, a < b, a && b)
type Binary struct {
	Left     Node
	Operator token.Token
	Right    Node
}

func (n *Binary) Pos() token.Position { return n.Left.Pos() }
func (n *Binary) End() token.Position { return n.Right.End() }
func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Operator.Literal + " " + n.Right.String() + ")"
}
func (n *Binary) Accept(v Visitor) error { return v.VisitBinary(n) }

// Postfix 后缀运算 (i++, i--)
type Postfix struct {
	Operand  Node
	Operator token.Token
}

func (n *Postfix) Pos() token.Position    { return n.Operand.Pos() }
func (n *Postfix) End() token.Position    { return endOf(n.Operator) }
func (n *Postfix) String() string         { return "(" + n.Operand.String() + n.Operator.Literal + ")" }
func (n *Postfix) Accept(v Visitor) error { return v.VisitPostfix(n) }

// Assignment 赋值（含复合赋值 +=、-= ……）
type Assignment struct {
	Target   Node
	Operator token.Token
	Value    Node
}

func (n *Assignment) Pos() token.Position { return n.Target.Pos() }
func (n *Assignment) End() token.Position { return n.Value.End() }
func (n *Assignment) String() string {
	return n.Target.String() + " " + n.Operator.Literal + " " + n.Value.String()
}
func (n *Assignment) Accept(v Visitor) error { return v.VisitAssignment(n) }

// Parallel 逗号并列的表达式 (a, b, c)
type Parallel struct {
	Items []Node
}

func (n *Parallel) Pos() token.Position { return n.Items[0].Pos() }
func (n *Parallel) End() token.Position { return n.Items[len(n.Items)-1].End() }
func (n *Parallel) String() string      { return joinNodes(n.Items, ", ") }
func (n *Parallel) Accept(v Visitor) error {
	return v.VisitParallel(n)
}

// RangerKind 括号种类
type RangerKind int

const (
	RangerParen   RangerKind = iota // ( )
	RangerBracket                   // [ ]
	RangerBrace                     // { }
)

// Ranger 括号包裹的内容
//
// 只出现在 parser 内部或作为分组表达式：方括号会被转成 List，
// 花括号会被转成 Block 或 Dictionary。Body 可以为 nil。
type Ranger struct {
	Open  token.Token
	Close token.Token
	Kind  RangerKind
	Body  Node
}

func (n *Ranger) Pos() token.Position { return n.Open.Pos }
func (n *Ranger) End() token.Position { return endOf(n.Close) }
func (n *Ranger) String() string {
	body := ""
	if n.Body != nil {
		body = n.Body.String()
	}
	return n.Open.Literal + body + n.Close.Literal
}
func (n *Ranger) Accept(v Visitor) error { return v.VisitRanger(n) }

// Items 返回括号内的各项（Parallel、Block 展开）
func (n *Ranger) Items() []Node {
	switch body := n.Body.(type) {
	case nil:
		return nil
	case *Parallel:
		return body.Items
	case *Block:
		return body.Items
	default:
		return []Node{body}
	}
}

// Block 代码块
type Block struct {
	Open  token.Token
	Close token.Token
	Items []Node
}

func (n *Block) Pos() token.Position { return n.Open.Pos }
func (n *Block) End() token.Position { return endOf(n.Close) }
func (n *Block) String() string {
	if len(n.Items) == 0 {
		return "{}"
	}
	return "{ " + joinNodes(n.Items, "; ") + " }"
}
func (n *Block) Accept(v Visitor) error { return v.VisitBlock(n) }

// ============================================================================
// 容器
// ============================================================================

// List 列表字面量 [a, b]
type List struct {
	Open     token.Token
	Elements []Node
}

func (n *List) Pos() token.Position    { return n.Open.Pos }
func (n *List) End() token.Position    { return endOf(n.Open) }
func (n *List) String() string         { return "[" + joinNodes(n.Elements, ", ") + "]" }
func (n *List) Accept(v Visitor) error { return v.VisitList(n) }

// Pair 键值对 key: value
type Pair struct {
	Key   Node
	Colon token.Token
	Value Node
}

func (n *Pair) Pos() token.Position    { return n.Key.Pos() }
func (n *Pair) End() token.Position    { return n.Value.End() }
func (n *Pair) String() string         { return n.Key.String() + ": " + n.Value.String() }
func (n *Pair) Accept(v Visitor) error { return v.VisitPair(n) }

// Dictionary 字典字面量 {k: v}
type Dictionary struct {
	Open  token.Token
	Pairs []*Pair
}

func (n *Dictionary) Pos() token.Position { return n.Open.Pos }
func (n *Dictionary) End() token.Position { return endOf(n.Open) }
func (n *Dictionary) String() string {
	parts := make([]string, len(n.Pairs))
	for i, p := range n.Pairs {
		parts[i] = p.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (n *Dictionary) Accept(v Visitor) error { return v.VisitDictionary(n) }

// ============================================================================
// 调用与访问
// ============================================================================

// Indicator 箭头表达式 left -> right
//
// 只作为中间结果出现，fun 与匿名函数的 builder 会把它转换掉。
type Indicator struct {
	Left  Node
	Arrow token.Token
	Right Node
}

func (n *Indicator) Pos() token.Position    { return n.Left.Pos() }
func (n *Indicator) End() token.Position    { return n.Right.End() }
func (n *Indicator) String() string         { return "(" + n.Left.String() + " -> " + n.Right.String() + ")" }
func (n *Indicator) Accept(v Visitor) error { return v.VisitIndicator(n) }

// Argument 关键字实参 name = value
type Argument struct {
	Name  *Identifier
	Value Node
}

func (n *Argument) Pos() token.Position    { return n.Name.Pos() }
func (n *Argument) End() token.Position    { return n.Value.End() }
func (n *Argument) String() string         { return n.Name.Name + "=" + n.Value.String() }
func (n *Argument) Accept(v Visitor) error { return v.VisitArgument(n) }

// Call 函数调用 callee(args)
type Call struct {
	Callee Node
	Open   token.Token
	Close  token.Token
	Args   []Node // 位置实参为表达式，关键字实参为 *Argument
}

func (n *Call) Pos() token.Position { return n.Callee.Pos() }
func (n *Call) End() token.Position { return endOf(n.Close) }
func (n *Call) String() string {
	return n.Callee.String() + "(" + joinNodes(n.Args, ", ") + ")"
}
func (n *Call) Accept(v Visitor) error { return v.VisitCall(n) }

// Index 下标访问 left[index]
type Index struct {
	Left  Node
	Open  token.Token
	Index Node
}

func (n *Index) Pos() token.Position    { return n.Left.Pos() }
func (n *Index) End() token.Position    { return n.Index.End() }
func (n *Index) String() string         { return "(" + n.Left.String() + "[" + n.Index.String() + "])" }
func (n *Index) Accept(v Visitor) error { return v.VisitIndex(n) }

// Attribute 属性访问 object.name
type Attribute struct {
	Object Node
	Dot    token.Token
	Name   *Identifier
}

func (n *Attribute) Pos() token.Position    { return n.Object.Pos() }
func (n *Attribute) End() token.Position    { return n.Name.End() }
func (n *Attribute) String() string         { return n.Object.String() + "." + n.Name.Name }
func (n *Attribute) Accept(v Visitor) error { return v.VisitAttribute(n) }

// ============================================================================
// 定义与声明
// ============================================================================

// VariableDefinition 变量定义 var a: int = 1, b = 2
//
// Names 与 Values 一一对应，没有初始值的位置为 nil。
type VariableDefinition struct {
	Token  token.Token
	Names  []*Identifier
	Values []Node
}

func (n *VariableDefinition) Pos() token.Position { return n.Token.Pos }
func (n *VariableDefinition) End() token.Position {
	last := len(n.Names) - 1
	if n.Values[last] != nil {
		return n.Values[last].End()
	}
	return n.Names[last].End()
}
func (n *VariableDefinition) String() string {
	parts := make([]string, len(n.Names))
	for i, name := range n.Names {
		parts[i] = name.String()
		if n.Values[i] != nil {
			parts[i] += " = " + n.Values[i].String()
		}
	}
	return "var " + strings.Join(parts, ", ")
}
func (n *VariableDefinition) Accept(v Visitor) error { return v.VisitVariableDefinition(n) }

// ParamKind 参数种类
type ParamKind int

const (
	ParamPositional    ParamKind = iota // a
	ParamKeyword                        // a = 1
	ParamVarPositional                  // *args
	ParamVarKeyword                     // **kwargs
)

func (k ParamKind) String() string {
	switch k {
	case ParamKeyword:
		return "keyword"
	case ParamVarPositional:
		return "variadic-positional"
	case ParamVarKeyword:
		return "variadic-keyword"
	default:
		return "positional"
	}
}

// Parameter 形参
type Parameter struct {
	Name    *Identifier
	Kind    ParamKind
	Default Node // 仅 ParamKeyword 有默认值
}

func (n *Parameter) Pos() token.Position { return n.Name.Pos() }
func (n *Parameter) End() token.Position {
	if n.Default != nil {
		return n.Default.End()
	}
	return n.Name.End()
}
func (n *Parameter) String() string {
	switch n.Kind {
	case ParamKeyword:
		return n.Name.String() + " = " + n.Default.String()
	case ParamVarPositional:
		return "*" + n.Name.String()
	case ParamVarKeyword:
		return "**" + n.Name.String()
	default:
		return n.Name.String()
	}
}
func (n *Parameter) Accept(v Visitor) error { return v.VisitParameter(n) }

func paramList(params []*Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FunctionDeclaration 函数声明（无函数体）fun f(a: int): int
type FunctionDeclaration struct {
	Token  token.Token
	Name   *Identifier
	Params []*Parameter
	Labels []*Label
}

func (n *FunctionDeclaration) Pos() token.Position { return n.Token.Pos }
func (n *FunctionDeclaration) End() token.Position { return n.Name.End() }
func (n *FunctionDeclaration) String() string {
	return "fun " + n.Name.Name + paramList(n.Params) + labelSuffix(n.Labels)
}
func (n *FunctionDeclaration) Accept(v Visitor) error { return v.VisitFunctionDeclaration(n) }

// FunctionDefinition 函数定义
//
// Arrow 为 true 表示单表达式形式 fun f(a) -> a * 2，Body 中是合成的 return。
type FunctionDefinition struct {
	Token  token.Token
	Name   *Identifier
	Params []*Parameter
	Labels []*Label
	Body   *Block
	Arrow  bool
}

func (n *FunctionDefinition) Pos() token.Position { return n.Token.Pos }
func (n *FunctionDefinition) End() token.Position { return n.Body.End() }
func (n *FunctionDefinition) String() string {
	return "fun " + n.Name.Name + paramList(n.Params) + labelSuffix(n.Labels) + " " + n.Body.String()
}
func (n *FunctionDefinition) Accept(v Visitor) error { return v.VisitFunctionDefinition(n) }

// AnonymousFunction 匿名函数 fun (a) { … } 或 (a) -> expr
type AnonymousFunction struct {
	Token  token.Token
	Params []*Parameter
	Labels []*Label
	Body   *Block
}

func (n *AnonymousFunction) Pos() token.Position { return n.Token.Pos }
func (n *AnonymousFunction) End() token.Position { return n.Body.End() }
func (n *AnonymousFunction) String() string {
	return "fun " + paramList(n.Params) + labelSuffix(n.Labels) + " " + n.Body.String()
}
func (n *AnonymousFunction) Accept(v Visitor) error { return v.VisitAnonymousFunction(n) }

// ConstructorDefinition 构造函数 fun init(...) { … }（只出现在类体中）
type ConstructorDefinition struct {
	Token  token.Token
	Name   *Identifier
	Params []*Parameter
	Labels []*Label
	Body   *Block
}

func (n *ConstructorDefinition) Pos() token.Position { return n.Token.Pos }
func (n *ConstructorDefinition) End() token.Position { return n.Body.End() }
func (n *ConstructorDefinition) String() string {
	return "init" + paramList(n.Params) + labelSuffix(n.Labels) + " " + n.Body.String()
}
func (n *ConstructorDefinition) Accept(v Visitor) error { return v.VisitConstructorDefinition(n) }

// ClassDeclaration 类声明 class Point: Base
type ClassDeclaration struct {
	Token token.Token
	Name  *Identifier
}

func (n *ClassDeclaration) Pos() token.Position    { return n.Token.Pos }
func (n *ClassDeclaration) End() token.Position    { return n.Name.End() }
func (n *ClassDeclaration) String() string         { return "class " + n.Name.String() }
func (n *ClassDeclaration) Accept(v Visitor) error { return v.VisitClassDeclaration(n) }

// ClassDefinition 类定义 class Point: Base { … }
type ClassDefinition struct {
	Token token.Token
	Name  *Identifier
	Body  *Block
}

func (n *ClassDefinition) Pos() token.Position    { return n.Token.Pos }
func (n *ClassDefinition) End() token.Position    { return n.Body.End() }
func (n *ClassDefinition) String() string         { return "class " + n.Name.String() + " " + n.Body.String() }
func (n *ClassDefinition) Accept(v Visitor) error { return v.VisitClassDefinition(n) }

// ============================================================================
// 控制流
// ============================================================================

// Condition 条件分支中的一段 if (test) { … } / elif (test) { … }
type Condition struct {
	Token token.Token
	Test  Node
	Body  *Block
}

func (n *Condition) Pos() token.Position { return n.Token.Pos }
func (n *Condition) End() token.Position { return n.Body.End() }
func (n *Condition) String() string {
	return n.Token.Literal + " (" + n.Test.String() + ") " + n.Body.String()
}
func (n *Condition) Accept(v Visitor) error { return v.VisitCondition(n) }

// ConditionalBranch if / elif / else 链
type ConditionalBranch struct {
	Branches []*Condition
	Else     *Block
}

func (n *ConditionalBranch) Pos() token.Position { return n.Branches[0].Pos() }
func (n *ConditionalBranch) End() token.Position {
	if n.Else != nil {
		return n.Else.End()
	}
	return n.Branches[len(n.Branches)-1].End()
}
func (n *ConditionalBranch) String() string {
	parts := make([]string, 0, len(n.Branches)+1)
	for _, b := range n.Branches {
		parts = append(parts, b.String())
	}
	if n.Else != nil {
		parts = append(parts, "else "+n.Else.String())
	}
	return strings.Join(parts, " ")
}
func (n *ConditionalBranch) Accept(v Visitor) error { return v.VisitConditionalBranch(n) }

// Loop while / for 循环
//
// while 循环只有 Test；for 循环的 Init、Update 可以为 nil。
type Loop struct {
	Token  token.Token
	Init   Node
	Test   Node
	Update Node
	Body   *Block
}

// IsFor 是否为 for 循环
func (n *Loop) IsFor() bool { return n.Token.Type == token.FOR }

func (n *Loop) Pos() token.Position { return n.Token.Pos }
func (n *Loop) End() token.Position { return n.Body.End() }
func (n *Loop) String() string {
	if n.IsFor() {
		return "for (" + nodeString(n.Init) + "; " + nodeString(n.Test) + "; " + nodeString(n.Update) + ") " + n.Body.String()
	}
	return "while (" + n.Test.String() + ") " + n.Body.String()
}
func (n *Loop) Accept(v Visitor) error { return v.VisitLoop(n) }

// Pass 空语句
type Pass struct {
	Token token.Token
}

func (n *Pass) Pos() token.Position    { return n.Token.Pos }
func (n *Pass) End() token.Position    { return endOf(n.Token) }
func (n *Pass) String() string         { return "pass" }
func (n *Pass) Accept(v Visitor) error { return v.VisitPass(n) }

// Break 跳出循环
type Break struct {
	Token token.Token
}

func (n *Break) Pos() token.Position    { return n.Token.Pos }
func (n *Break) End() token.Position    { return endOf(n.Token) }
func (n *Break) String() string         { return "break" }
func (n *Break) Accept(v Visitor) error { return v.VisitBreak(n) }

// Continue 继续下一次循环
type Continue struct {
	Token token.Token
}

func (n *Continue) Pos() token.Position    { return n.Token.Pos }
func (n *Continue) End() token.Position    { return endOf(n.Token) }
func (n *Continue) String() string         { return "continue" }
func (n *Continue) Accept(v Visitor) error { return v.VisitContinue(n) }

// Return 返回语句，Value 可以为 nil
type Return struct {
	Token token.Token
	Value Node
}

func (n *Return) Pos() token.Position { return n.Token.Pos }
func (n *Return) End() token.Position {
	if n.Value != nil {
		return n.Value.End()
	}
	return endOf(n.Token)
}
func (n *Return) String() string {
	if n.Value == nil {
		return "return"
	}
	return "return " + n.Value.String()
}
func (n *Return) Accept(v Visitor) error { return v.VisitReturn(n) }

// Import 导入另一个源文件
type Import struct {
	Token token.Token
	Path  *StringLiteral
}

func (n *Import) Pos() token.Position    { return n.Token.Pos }
func (n *Import) End() token.Position    { return n.Path.End() }
func (n *Import) String() string         { return "import " + n.Path.String() }
func (n *Import) Accept(v Visitor) error { return v.VisitImport(n) }

// ============================================================================
// 程序
// ============================================================================

// Program 一个源文件的 AST 根节点
type Program struct {
	Filename string
	Body     []Node
}

func (n *Program) Pos() token.Position {
	if len(n.Body) > 0 {
		return n.Body[0].Pos()
	}
	return token.Position{Filename: n.Filename, Line: 1, Column: 1}
}
func (n *Program) End() token.Position {
	if len(n.Body) > 0 {
		return n.Body[len(n.Body)-1].End()
	}
	return n.Pos()
}
func (n *Program) String() string {
	lines := make([]string, len(n.Body))
	for i, item := range n.Body {
		lines[i] = item.String()
	}
	return strings.Join(lines, "\n")
}
func (n *Program) Accept(v Visitor) error { return v.VisitProgram(n) }

// ============================================================================
// 辅助函数
// ============================================================================

func endOf(t token.Token) token.Position {
	p := t.Pos
	n := len([]rune(t.Literal))
	if t.Type == token.STRING {
		n += 2
	}
	p.Column += n
	p.Offset += len(t.Literal)
	return p
}

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = nodeString(n)
	}
	return strings.Join(parts, sep)
}

func nodeString(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}
