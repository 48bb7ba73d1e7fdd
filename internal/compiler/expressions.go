package compiler

import (
	"strings"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/ra"
	"github.com/tangzhangming/kite/internal/symbol"
	"github.com/tangzhangming/kite/internal/token"
)

// ============================================================================
// 一元与二元运算
// ============================================================================

func (c *Compiler) VisitUnary(n *ast.Unary) error {
	switch n.Operator.Type {
	case token.MINUS:
		// 数值字面量直接折叠
		switch lit := n.Operand.(type) {
		case *ast.IntegerLiteral:
			c.push(literal(ra.Int(-lit.Value), symbol.TypeInt, n))
			return nil
		case *ast.FloatLiteral:
			c.push(literal(ra.Float(-lit.Value), symbol.TypeFlt, n))
			return nil
		}
		o, err := c.eval(n.Operand)
		if err != nil {
			return err
		}
		if t := o.Effective(); !t.IsAny() && !t.IsNumeric() {
			return c.invalidOperand(n.Operator, t)
		}
		dst := c.NewTemp()
		c.out.Emit(ra.OpOpp, o.Raw, dst)
		c.push(temp(dst, o.Effective(), n))
		return nil

	case token.NOT:
		o, err := c.eval(n.Operand)
		if err != nil {
			return err
		}
		dst := c.NewTemp()
		c.out.Emit(ra.OpNot, o.Raw, dst)
		c.push(temp(dst, symbol.Builtin(symbol.TypeBool), n))
		return nil

	case token.STAR, token.POW:
		return c.errorf(errors.KindSemantic, errors.E0900, n.Pos(), i18n.ErrVariadicAtCall, n.Operator.Literal).
			WithSpan(len(n.Operator.Literal))
	}
	return c.unsupported(n)
}

func (c *Compiler) invalidOperand(op token.Token, found *symbol.Label) error {
	return c.errorf(errors.KindTypeMismatch, errors.E0200, op.Pos, i18n.ErrInvalidOperand, op.Literal, found).
		WithSpan(len(op.Literal))
}

func (c *Compiler) VisitBinary(n *ast.Binary) error {
	left, err := c.eval(n.Left)
	if err != nil {
		return err
	}
	right, err := c.eval(n.Right)
	if err != nil {
		return err
	}
	result, err := c.binary(n.Operator, n.Operator.Literal, left, right, n)
	if err != nil {
		return err
	}
	c.push(result)
	return nil
}

// binary 生成二元运算，op 为运算符文本（复合赋值传入去掉 '=' 的形式）
func (c *Compiler) binary(tok token.Token, op string, left, right *Operand, node ast.Node) (*Operand, error) {
	if rel, ok := ra.RelOf(op); ok {
		cmp := c.NewTemp()
		c.out.Emit(ra.OpCmp, left.Raw, right.Raw, cmp)
		dst := c.NewTemp()
		c.out.Emit(ra.OpCrel, cmp, string(rel), dst)
		return temp(dst, symbol.Builtin(symbol.TypeBool), node), nil
	}

	typ, err := c.arithmeticType(tok, op, left.Effective(), right.Effective())
	if err != nil {
		return nil, err
	}
	// 减法先取反右操作数，临时变量按求值顺序编号
	rhs := right.Raw
	if op == "-" {
		rhs = c.negate(right)
	}
	dst := c.NewTemp()
	switch op {
	case "+", "-":
		c.out.Emit(ra.OpAdd, left.Raw, rhs, dst)
	case "*":
		c.out.Emit(ra.OpMul, left.Raw, right.Raw, dst)
	case "/":
		c.out.Emit(ra.OpDiv, left.Raw, right.Raw, dst)
	case "%":
		c.out.Emit(ra.OpMod, left.Raw, right.Raw, dst)
	default:
		return nil, c.unsupported(node)
	}
	return temp(dst, typ, node), nil
}

// negate 减法的右操作数取反：字面量直接折叠，否则生成 OPP
func (c *Compiler) negate(o *Operand) string {
	if o.IsLiteral() && o.Effective().IsNumeric() {
		if strings.HasPrefix(o.Raw, "-") {
			return o.Raw[1:]
		}
		return "-" + o.Raw
	}
	neg := c.NewTemp()
	c.out.Emit(ra.OpOpp, o.Raw, neg)
	return neg
}

// arithmeticType 算术运算的结果类型
//
// 数值之间运算，有 flt 参与时结果为 flt；'+' 还可以连接 str 与 list。
// 任意一边是 any 时结果为 any。
func (c *Compiler) arithmeticType(tok token.Token, op string, l, r *symbol.Label) (*symbol.Label, error) {
	switch {
	case l.IsAny() && r.IsAny():
		return symbol.Builtin(symbol.TypeAny), nil
	case l.IsAny() || r.IsAny():
		known := l
		if l.IsAny() {
			known = r
		}
		if !known.IsNumeric() && !(op == "+" && (known.Is(symbol.TypeStr) || known.Is(symbol.TypeList))) {
			return nil, c.invalidOperand(withLiteral(tok, op), known)
		}
		return symbol.Builtin(symbol.TypeAny), nil
	case l.IsNumeric() && r.IsNumeric():
		if l.Is(symbol.TypeFlt) || r.Is(symbol.TypeFlt) {
			return symbol.Builtin(symbol.TypeFlt), nil
		}
		return symbol.Builtin(symbol.TypeInt), nil
	case op == "+" && l.Is(symbol.TypeStr) && r.Is(symbol.TypeStr):
		return symbol.Builtin(symbol.TypeStr), nil
	case op == "+" && l.Is(symbol.TypeList) && r.Is(symbol.TypeList):
		return symbol.Builtin(symbol.TypeList), nil
	}
	culprit := l
	if l.IsNumeric() || (op == "+" && (l.Is(symbol.TypeStr) || l.Is(symbol.TypeList))) {
		culprit = r
	}
	return nil, c.invalidOperand(withLiteral(tok, op), culprit)
}

func withLiteral(tok token.Token, op string) token.Token {
	tok.Literal = op
	return tok
}

// ============================================================================
// 自增自减
// ============================================================================

func (c *Compiler) VisitPostfix(n *ast.Postfix) error {
	target, err := c.resolveTarget(n.Operand)
	if err != nil {
		return err
	}
	if err := c.checkConst(target); err != nil {
		return err
	}
	current, err := c.load(target)
	if err != nil {
		return err
	}
	if t := current.Effective(); !t.IsAny() && !t.IsNumeric() {
		return c.invalidOperand(n.Operator, t)
	}

	old := c.NewTemp()
	c.out.Emit(ra.OpCopy, current.Raw, old)
	delta := ra.Int(1)
	if n.Operator.Type == token.DECREMENT {
		delta = ra.Int(-1)
	}
	if target.kind == targetVariable {
		c.out.Emit(ra.OpAdd, current.Raw, delta, current.Raw)
	} else {
		next := c.NewTemp()
		c.out.Emit(ra.OpAdd, current.Raw, delta, next)
		c.store(target, temp(next, current.Type, n))
	}
	c.push(temp(old, current.Effective(), n))
	return nil
}

// ============================================================================
// 赋值
// ============================================================================

type targetKind int

const (
	targetVariable targetKind = iota
	targetField
	targetIndex
)

// assignTarget 赋值目标
type assignTarget struct {
	kind      targetKind
	node      ast.Node
	variable  *symbol.Variable // targetVariable / targetField
	object    *Operand         // 字段所属对象或容器
	key       *Operand         // 下标
	class     *symbol.Class    // 字段所在的类
	container *symbol.Label    // 容器类型
}

// resolveTarget 解析赋值目标，不读取它的当前值
func (c *Compiler) resolveTarget(n ast.Node) (*assignTarget, error) {
	switch t := n.(type) {
	case *ast.Identifier:
		if len(t.Labels) > 0 {
			return nil, c.unsupported(t)
		}
		sym, err := c.table.Lookup(t.Name, t.Pos())
		if err != nil {
			if target, ok := c.implicitField(t); ok {
				return target, nil
			}
			return nil, err
		}
		v, ok := symbol.VariableOf(sym)
		if !ok {
			return nil, c.errorf(errors.KindSemantic, errors.E0900, t.Pos(), i18n.ErrInvalidAssignTarget, t.Name).
				WithSpan(len(t.Name)).
				WithInfo(i18n.T(i18n.InfoDeclaredAt, t.Name, sym.Pos()))
		}
		return &assignTarget{kind: targetVariable, node: t, variable: v}, nil

	case *ast.Attribute:
		object, member, cls, err := c.resolveAttribute(t)
		if err != nil {
			return nil, err
		}
		field, ok := member.(*symbol.Variable)
		if !ok {
			return nil, c.unsupported(t)
		}
		return &assignTarget{kind: targetField, node: t, variable: field, object: object, class: cls}, nil

	case *ast.Index:
		container, err := c.eval(t.Left)
		if err != nil {
			return nil, err
		}
		if err := c.checkIndexable(container, t); err != nil {
			return nil, err
		}
		key, err := c.eval(t.Index)
		if err != nil {
			return nil, err
		}
		return &assignTarget{kind: targetIndex, node: t, object: container, key: key, container: container.Effective()}, nil
	}
	return nil, c.unsupported(n)
}

// load 读取赋值目标的当前值
func (c *Compiler) load(t *assignTarget) (*Operand, error) {
	switch t.kind {
	case targetVariable:
		return operandOf(t.variable, t.node), nil
	case targetField:
		dst := c.NewTemp()
		c.out.Emit(ra.OpTpGetField, t.object.Raw, t.variable.RID(), dst)
		o := temp(dst, t.variable.Type, t.node)
		o.Value = t.variable.Value
		return o, nil
	default:
		dst := c.NewTemp()
		c.out.Emit(ra.OpIterGet, t.object.Raw, t.key.Raw, dst)
		return temp(dst, symbol.Builtin(symbol.TypeAny), t.node), nil
	}
}

// store 把值写入赋值目标
func (c *Compiler) store(t *assignTarget, value *Operand) {
	switch t.kind {
	case targetVariable:
		c.move(value, t.variable.RID())
	case targetField:
		c.out.Emit(ra.OpTpSetField, t.object.Raw, t.variable.RID(), value.Raw)
	default:
		c.out.Emit(ra.OpPairSet, t.object.Raw, t.key.Raw, value.Raw)
	}
}

// checkConst const 只能在定义时赋值；const 字段可以在所属类的构造函数中赋值
func (c *Compiler) checkConst(t *assignTarget) error {
	if t.variable == nil || !t.variable.Const {
		return nil
	}
	if t.kind == targetField {
		if fn := c.currentFunction(); fn != nil && fn.FuncKind == symbol.FuncConstructor && fn.Owner == t.variable.Owner {
			return nil
		}
	}
	name := t.variable.Name()
	return c.errorf(errors.KindSemantic, errors.E0900, t.node.Pos(), i18n.ErrConstAssign, name).
		WithSpan(len(t.node.String())).
		WithInfo(i18n.T(i18n.InfoDeclaredAt, name, t.variable.Pos()))
}

func (c *Compiler) VisitAssignment(n *ast.Assignment) error {
	value, err := c.eval(n.Value)
	if err != nil {
		return err
	}
	target, err := c.resolveTarget(n.Target)
	if err != nil {
		return err
	}
	if err := c.checkConst(target); err != nil {
		return err
	}

	if n.Operator.Type != token.ASSIGN {
		current, err := c.load(target)
		if err != nil {
			return err
		}
		op := strings.TrimSuffix(n.Operator.Literal, "=")
		value, err = c.binary(n.Operator, op, current, value, n)
		if err != nil {
			return err
		}
	}

	if target.variable != nil {
		if !symbol.Assignable(c.table, target.variable.Type, value.Effective()) {
			return c.mismatch(n.Value.Pos(), target.variable.Type, value.Effective()).
				WithSpan(len(n.Value.String()))
		}
		if target.variable.Type.IsAny() {
			target.variable.Value = value.Effective()
			target.variable.Ref = value.Ref
		}
	}
	c.store(target, value)

	switch target.kind {
	case targetVariable:
		c.push(operandOf(target.variable, n))
	default:
		c.push(value)
	}
	return nil
}

// ============================================================================
// 并列与括号
// ============================================================================

// VisitParallel 逗号并列的各项依次求值，不产生结果
func (c *Compiler) VisitParallel(n *ast.Parallel) error {
	for _, item := range n.Items {
		if err := c.exec(item); err != nil {
			return err
		}
	}
	return nil
}

// VisitRanger 圆括号分组
func (c *Compiler) VisitRanger(n *ast.Ranger) error {
	switch body := n.Body.(type) {
	case nil:
		return c.unsupported(n)
	case *ast.Block:
		last := len(body.Items) - 1
		for _, item := range body.Items[:last] {
			if err := c.exec(item); err != nil {
				return err
			}
		}
		return body.Items[last].Accept(c)
	default:
		return body.Accept(c)
	}
}

// ============================================================================
// 容器
// ============================================================================

func (c *Compiler) VisitList(n *ast.List) error {
	dst := c.NewTemp()
	c.out.Emit(ra.OpPut, ra.EmptyList, dst)
	for _, elem := range n.Elements {
		o, err := c.eval(elem)
		if err != nil {
			return err
		}
		c.out.Emit(ra.OpIterApnd, dst, o.Raw)
	}
	c.push(temp(dst, symbol.Builtin(symbol.TypeList), n))
	return nil
}

func (c *Compiler) VisitDictionary(n *ast.Dictionary) error {
	dst := c.NewTemp()
	c.out.Emit(ra.OpPut, ra.EmptyDict, dst)
	for _, pair := range n.Pairs {
		key, err := c.eval(pair.Key)
		if err != nil {
			return err
		}
		value, err := c.eval(pair.Value)
		if err != nil {
			return err
		}
		c.out.Emit(ra.OpPairSet, dst, key.Raw, value.Raw)
	}
	c.push(temp(dst, symbol.Builtin(symbol.TypeDict), n))
	return nil
}

// VisitPair 键值对只能出现在字典中
func (c *Compiler) VisitPair(n *ast.Pair) error {
	return c.unsupported(n)
}

// VisitIndicator 箭头只用于匿名函数与单表达式函数体
func (c *Compiler) VisitIndicator(n *ast.Indicator) error {
	return c.unsupported(n)
}

// VisitArgument 关键字实参由调用处理
func (c *Compiler) VisitArgument(n *ast.Argument) error {
	return c.unsupported(n)
}

// ============================================================================
// 下标与属性
// ============================================================================

func (c *Compiler) checkIndexable(o *Operand, n *ast.Index) error {
	t := o.Effective()
	if t.IsAny() || t.Is(symbol.TypeList) || t.Is(symbol.TypeDict) || t.Is(symbol.TypeStr) {
		return nil
	}
	return c.errorf(errors.KindTypeMismatch, errors.E0200, n.Pos(), i18n.ErrNotIndexable, t).
		WithSpan(len(n.Left.String()))
}

func (c *Compiler) VisitIndex(n *ast.Index) error {
	container, err := c.eval(n.Left)
	if err != nil {
		return err
	}
	if err := c.checkIndexable(container, n); err != nil {
		return err
	}
	key, err := c.eval(n.Index)
	if err != nil {
		return err
	}
	dst := c.NewTemp()
	c.out.Emit(ra.OpIterGet, container.Raw, key.Raw, dst)
	typ := symbol.Builtin(symbol.TypeAny)
	if container.Effective().Is(symbol.TypeStr) {
		typ = symbol.Builtin(symbol.TypeStr)
	}
	c.push(temp(dst, typ, n))
	return nil
}

// resolveAttribute 解析 obj.name，返回对象操作数、成员符号与成员所在的类
//
// 通过类名只能访问静态成员；访问权限由当前所在的类决定。
func (c *Compiler) resolveAttribute(n *ast.Attribute) (*Operand, symbol.Symbol, *symbol.Class, error) {
	object, err := c.eval(n.Object)
	if err != nil {
		return nil, nil, nil, err
	}
	name := n.Name.Name
	pos := n.Name.Pos()

	if cls, ok := object.Class(); ok && !object.Effective().IsCustom() {
		member, err := cls.FindMemberSymbolInPermission(name, c.assertedPermission(cls, name), pos)
		if err != nil {
			return nil, nil, nil, err
		}
		if !cls.IsStaticMember(member) {
			return nil, nil, nil, c.errorf(errors.KindSemantic, errors.E0900, pos, i18n.ErrStaticAccess, name, cls.Name()).
				WithSpan(len(name))
		}
		return classOperand(cls, n.Object), member, cls, nil
	}

	typ := object.Effective()
	if !typ.IsCustom() {
		return nil, nil, nil, c.errorf(errors.KindTypeMismatch, errors.E0200, pos, i18n.ErrAttributeOnValue, name, typ).
			WithSpan(len(name))
	}
	cls, err := c.table.ClassOf(typ, n.Object.Pos())
	if err != nil {
		return nil, nil, nil, err
	}
	member, err := cls.FindMemberSymbolInPermission(name, c.assertedPermission(cls, name), pos)
	if err != nil {
		return nil, nil, nil, err
	}
	return object, member, cls, nil
}

// assertedPermission 当前位置访问 cls 的成员 name 时的身份
func (c *Compiler) assertedPermission(cls *symbol.Class, name string) symbol.Permission {
	owner := cls
	if sym, ok := cls.FindMemberSymbol(name); ok {
		if o := memberOwner(sym); o != nil {
			owner = o
		}
	}
	return symbol.AssertedPermission(c.currentClass(), owner)
}

func memberOwner(sym symbol.Symbol) *symbol.Class {
	switch s := sym.(type) {
	case *symbol.Variable:
		return s.Owner
	case *symbol.Function:
		return s.Owner
	}
	return nil
}

func (c *Compiler) VisitAttribute(n *ast.Attribute) error {
	object, member, cls, err := c.resolveAttribute(n)
	if err != nil {
		return err
	}
	owner := &Member{
		Object: object.Raw,
		Class:  cls,
		Symbol: member,
		Static: cls.IsStaticMember(member),
	}

	switch m := member.(type) {
	case *symbol.Variable:
		dst := c.NewTemp()
		c.out.Emit(ra.OpTpGetField, object.Raw, m.RID(), dst)
		o := temp(dst, m.Type, n)
		o.Value = m.Value
		o.Ref = m.Ref
		o.Owner = owner
		c.push(o)
	case *symbol.Function:
		o := operandOf(m, n)
		o.Surface = n.String()
		o.Owner = owner
		c.push(o)
	default:
		return c.unsupported(n)
	}
	return nil
}
