package compiler

import (
	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/ra"
	"github.com/tangzhangming/kite/internal/symbol"
	"github.com/tangzhangming/kite/internal/token"
)

// method 收集阶段记下的方法或构造函数及其函数体
type method struct {
	fn   *symbol.Function
	body *ast.Block
}

// classMembers 收集阶段的结果，供输出阶段使用
type classMembers struct {
	ctors   []method
	methods []method
}

func (c *Compiler) VisitClassDeclaration(n *ast.ClassDeclaration) error {
	marks, err := c.collectMarks(n.Name.Labels)
	if err != nil {
		return err
	}
	if err := marks.Admit("class '"+n.Name.Name+"'", classMarks...); err != nil {
		return err
	}
	cls := symbol.NewClass(n.Name.Name, c.session.ClassRID(n.Name.Name), n.Name.Pos())
	cls.Declared = true
	if err := c.table.Insert(cls); err != nil {
		return err
	}
	c.table.RegisterType(cls)
	c.declared = append(c.declared, cls)
	return nil
}

// VisitClassDefinition 两遍处理：先收集全部成员，再输出类型定义与成员代码
//
// 方法体在全部成员登记完成后才编译，所以可以引用类中后定义的方法。
func (c *Compiler) VisitClassDefinition(n *ast.ClassDefinition) error {
	cls, err := c.defineClass(n.Name)
	if err != nil {
		return err
	}

	release := c.enter(symbol.ScopeClass)
	defer release()
	done := c.process(cls)
	defer done()

	members, err := c.collectMembers(cls, n.Body.Items)
	if err != nil {
		return err
	}
	cls.Finished = true
	c.logger.Debug("class collected",
		zap.String("class", cls.RID()),
		zap.Int("constructors", len(members.ctors)),
		zap.Int("methods", len(members.methods)))
	return c.emitClass(cls, members)
}

// defineClass 创建类符号（或补全先前的声明），处理基类与默认权限
func (c *Compiler) defineClass(name *ast.Identifier) (*symbol.Class, error) {
	marks, err := c.collectMarks(name.Labels)
	if err != nil {
		return nil, err
	}
	if err := marks.Admit("class '"+name.Name+"'", classMarks...); err != nil {
		return nil, err
	}

	var cls *symbol.Class
	if c.table.CurrentScopeContains(name.Name) {
		old, _ := c.table.FindByName(name.Name)
		decl, ok := old.(*symbol.Class)
		if !ok || !decl.Declared {
			return nil, c.errorf(errors.KindSymbolDuplicate, errors.E0101, name.Pos(), i18n.ErrRedefinition, name.Name).
				WithSpan(len(name.Name)).
				WithInfo(i18n.T(i18n.InfoDeclaredAt, name.Name, old.Pos()))
		}
		decl.Declared = false
		cls = decl
	} else {
		cls = symbol.NewClass(name.Name, c.session.ClassRID(name.Name), name.Pos())
		if err := c.table.Insert(cls); err != nil {
			return nil, err
		}
		c.table.RegisterType(cls)
	}

	if t := marks.Type(); t != nil {
		if !t.IsCustom() {
			return nil, c.errorf(errors.KindTypeMismatch, errors.E0200, t.Pos, i18n.ErrNotAClass, t.Name).
				WithSpan(len(t.Name))
		}
		base, err := c.table.ClassOf(t, t.Pos)
		if err != nil {
			return nil, err
		}
		if base.Declared {
			return nil, c.errorf(errors.KindSemantic, errors.E0900, t.Pos, i18n.ErrDeclaredNotDefined, base.Name()).
				WithSpan(len(t.Name)).
				WithHint(i18n.T(i18n.HintDefineClass, base.Name()))
		}
		if err := cls.SetBase(base, t.Pos); err != nil {
			return nil, err
		}
	}
	if p, ok := marks.Permission(); ok {
		cls.DefaultPermission = p
	}
	return cls, nil
}

// ============================================================================
// 收集成员
// ============================================================================

func (c *Compiler) collectMembers(cls *symbol.Class, items []ast.Node) (*classMembers, error) {
	members := &classMembers{}
	for _, item := range items {
		var err error
		switch n := item.(type) {
		case *ast.VariableDefinition:
			err = c.collectFields(cls, n)
		case *ast.FunctionDefinition:
			err = c.collectMethod(cls, members, n.Name, n.Params, n.Labels, n.Body)
		case *ast.FunctionDeclaration:
			err = c.collectMethod(cls, members, n.Name, n.Params, n.Labels, nil)
		case *ast.ConstructorDefinition:
			err = c.collectConstructor(cls, members, n)
		case *ast.Pass:
		default:
			err = c.unsupported(item)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(cls.Constructors) == 0 {
		ctor := c.newConstructor(cls, cls.Pos())
		ctor.Permission = symbol.PermPublic
		cls.Constructors = append(cls.Constructors, ctor)
		members.ctors = append(members.ctors, method{fn: ctor, body: &ast.Block{}})
	}
	return members, nil
}

func (c *Compiler) collectFields(cls *symbol.Class, n *ast.VariableDefinition) error {
	for i, name := range n.Names {
		marks, err := c.collectMarks(name.Labels)
		if err != nil {
			return err
		}
		if err := marks.Admit("field '"+name.Name+"'", fieldMarks...); err != nil {
			return err
		}
		if marks.IsConst() && n.Values[i] == nil {
			return c.errorf(errors.KindSemantic, errors.E0900, name.Pos(), i18n.ErrConstWithoutValue, name.Name).
				WithSpan(len(name.Name))
		}

		f := symbol.NewVariable(name.Name, c.session.RID(name.Name), name.Pos())
		f.Type = typeOr(marks, symbol.TypeAny)
		f.Const = marks.IsConst()
		f.Static = marks.IsStatic()
		f.Owner = cls
		f.Init = n.Values[i]
		f.Permission = cls.DefaultPermission
		if p, ok := marks.Permission(); ok {
			f.Permission = p
		}
		if err := cls.AddMember(f, f.Static); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) collectMethod(cls *symbol.Class, members *classMembers, name *ast.Identifier,
	params []*ast.Parameter, labels []*ast.Label, body *ast.Block) error {
	fn, marks, err := c.newFunction(name, cls, params, labels, methodMarks)
	if err != nil {
		return err
	}
	fn.Static = marks.IsStatic()
	fn.Overwrite = marks.Has("overwrite")
	fn.Virtual = marks.Has("virtual") || marks.Has("interface")
	fn.Permission = cls.DefaultPermission
	if p, ok := marks.Permission(); ok {
		fn.Permission = p
	}

	if err := c.checkOverwrite(cls, fn); err != nil {
		return err
	}

	if old, ok := cls.FindMemberSymbol(fn.Name()); ok && memberOwner(old) == cls {
		if decl, isFn := old.(*symbol.Function); isFn && decl.Declared && body != nil {
			if fn, err = c.fulfil(decl, fn); err != nil {
				return err
			}
			members.methods = append(members.methods, method{fn: fn, body: body})
			return nil
		}
	}

	if body == nil {
		fn.Declared = true
		if !fn.Virtual {
			c.declared = append(c.declared, fn)
		}
	} else {
		members.methods = append(members.methods, method{fn: fn, body: body})
	}
	return cls.AddMember(fn, fn.Static)
}

// checkOverwrite 遮蔽基类方法时必须标注 overwrite，没有可遮蔽的方法时不能标注
func (c *Compiler) checkOverwrite(cls *symbol.Class, fn *symbol.Function) error {
	var hidden *symbol.Function
	if cls.Base != nil {
		if sym, ok := cls.Base.FindMemberSymbol(fn.Name()); ok {
			hidden, _ = sym.(*symbol.Function)
		}
	}
	switch {
	case hidden != nil && !fn.Overwrite:
		return c.errorf(errors.KindSemantic, errors.E0900, fn.Pos(), i18n.ErrOverwriteRequired, fn.Name(), hidden.Owner.Name()).
			WithSpan(len(fn.Name())).
			WithInfo(i18n.T(i18n.InfoDeclaredAt, fn.Name(), hidden.Pos())).
			WithHint(i18n.T(i18n.HintMarkOverwrite, fn.Name()))
	case hidden == nil && fn.Overwrite:
		return c.errorf(errors.KindSemantic, errors.E0900, fn.Pos(), i18n.ErrOverwriteNothing, fn.Name()).
			WithSpan(len(fn.Name()))
	}
	return nil
}

// newConstructor 构造函数返回所属类的实例
func (c *Compiler) newConstructor(cls *symbol.Class, pos token.Position) *symbol.Function {
	ctor := symbol.NewFunction("init", c.session.FunctionRID(cls, "init"), pos)
	ctor.FuncKind = symbol.FuncConstructor
	ctor.Owner = cls
	ctor.Return = symbol.Custom(cls)
	return ctor
}

func (c *Compiler) collectConstructor(cls *symbol.Class, members *classMembers, n *ast.ConstructorDefinition) error {
	marks, err := c.collectMarks(n.Labels)
	if err != nil {
		return err
	}
	if err := marks.Admit("constructor of '"+cls.Name()+"'", constructorMarks...); err != nil {
		return err
	}
	params, err := c.buildParams(n.Params)
	if err != nil {
		return err
	}
	ctor := c.newConstructor(cls, n.Name.Pos())
	ctor.Params = params
	ctor.Permission = cls.DefaultPermission
	if p, ok := marks.Permission(); ok {
		ctor.Permission = p
	}
	cls.Constructors = append(cls.Constructors, ctor)
	members.ctors = append(members.ctors, method{fn: ctor, body: n.Body})
	return nil
}

// ============================================================================
// 输出
// ============================================================================

func (c *Compiler) emitClass(cls *symbol.Class, members *classMembers) error {
	if cls.Base != nil {
		c.out.Emit(ra.OpTpDef, cls.RID(), cls.Base.RID())
	} else {
		c.out.Emit(ra.OpTpDef, cls.RID())
	}
	for _, f := range cls.Fields() {
		c.out.Emit(ra.OpTpAddInstField, cls.RID(), f.RID())
	}
	for _, f := range cls.StaticFields() {
		c.out.Emit(ra.OpTpAddTpField, cls.RID(), f.RID())
	}
	if err := c.initFields(cls.RID(), cls.StaticFields()); err != nil {
		return err
	}

	for _, m := range members.ctors {
		prelude := func() error {
			this, _ := c.table.FindInFunction("this")
			chain := cls.Ancestors()
			for i := len(chain) - 1; i >= 0; i-- {
				if err := c.initFields(this.RID(), chain[i].Fields()); err != nil {
					return err
				}
			}
			return c.initFields(this.RID(), cls.Fields())
		}
		if err := c.compileFunctionBody(m.fn, m.body, prelude); err != nil {
			return err
		}
	}
	for _, m := range members.methods {
		if err := c.compileFunctionBody(m.fn, m.body, nil); err != nil {
			return err
		}
	}
	return nil
}

// initFields 输出字段初始值：TP_SET_FIELD: obj, field, value
func (c *Compiler) initFields(object string, fields []*symbol.Variable) error {
	for _, f := range fields {
		if f.Init == nil {
			continue
		}
		value, err := c.eval(f.Init)
		if err != nil {
			return err
		}
		if !symbol.Assignable(c.table, f.Type, value.Effective()) {
			return c.mismatch(f.Init.Pos(), f.Type, value.Effective()).
				WithSpan(len(f.Init.String())).
				WithInfo(i18n.T(i18n.InfoDeclaredAt, f.Name(), f.Pos()))
		}
		c.out.Emit(ra.OpTpSetField, object, f.RID(), value.Raw)
		if f.Type.IsAny() && f.Value == nil {
			f.Value = value.Effective()
		}
	}
	return nil
}

// implicitMember 方法体中不带 this 的成员名：实例成员经由 this，静态成员经由类
func (c *Compiler) implicitMember(n *ast.Identifier) (*Operand, bool) {
	cls := c.currentClass()
	if cls == nil {
		return nil, false
	}
	member, ok := cls.FindMemberSymbol(n.Name)
	if !ok {
		return nil, false
	}
	receiver, ok := c.implicitReceiver(cls, member, n)
	if !ok {
		return nil, false
	}
	object := receiver.Raw
	owner := &Member{Object: object, Class: cls, Symbol: member, Static: cls.IsStaticMember(member)}

	switch m := member.(type) {
	case *symbol.Variable:
		dst := c.NewTemp()
		c.out.Emit(ra.OpTpGetField, object, m.RID(), dst)
		o := temp(dst, m.Type, n)
		o.Value = m.Value
		o.Ref = m.Ref
		o.Owner = owner
		return o, true
	case *symbol.Function:
		o := operandOf(m, n)
		o.Owner = owner
		return o, true
	}
	return nil, false
}

// implicitField 方法体中不带 this 的字段名作为赋值目标
func (c *Compiler) implicitField(n *ast.Identifier) (*assignTarget, bool) {
	cls := c.currentClass()
	if cls == nil {
		return nil, false
	}
	member, ok := cls.FindMemberSymbol(n.Name)
	if !ok {
		return nil, false
	}
	field, ok := member.(*symbol.Variable)
	if !ok {
		return nil, false
	}
	receiver, ok := c.implicitReceiver(cls, member, n)
	if !ok {
		return nil, false
	}
	return &assignTarget{kind: targetField, node: n, variable: field, object: receiver, class: cls}, true
}

// implicitReceiver 隐式成员所属的对象：实例成员为 this，静态成员为类
func (c *Compiler) implicitReceiver(cls *symbol.Class, member symbol.Symbol, n ast.Node) (*Operand, bool) {
	if cls.IsStaticMember(member) {
		return classOperand(cls, n), true
	}
	this, ok := c.table.FindInFunction("this")
	if !ok {
		return nil, false
	}
	return operandOf(this, n), true
}
