package symbol

import (
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/token"
)

// Class 类符号
//
// 单继承：Base 为直接基类；Derived 记录所有（直接或间接）派生类，
// 在 SetBase 时沿基类链登记。Finished 之后成员表冻结，只供查找。
type Class struct {
	base
	Base              *Class
	Derived           []*Class
	Constructors      []*Function
	DefaultPermission Permission
	Finished          bool
	Declared          bool // 仅有声明，尚未定义

	members     map[string]Symbol
	memberOrder []Symbol
	statics     map[string]Symbol
	staticOrder []Symbol
}

// NewClass 创建类符号
func NewClass(name, rid string, pos token.Position) *Class {
	return &Class{
		base:              base{name: name, rid: rid, pos: pos},
		DefaultPermission: PermPublic,
		members:           make(map[string]Symbol),
		statics:           make(map[string]Symbol),
	}
}

func (c *Class) Kind() Kind { return KindClass }

// SetBase 设置基类，并把自己登记为基类链上每个类的派生类
func (c *Class) SetBase(b *Class, pos token.Position) error {
	for p := b; p != nil; p = p.Base {
		if p == c {
			return errors.New(errors.KindSemantic, errors.E0900, pos,
				i18n.T(i18n.ErrInheritanceCycle, c.Name())).WithSpan(len(b.Name()))
		}
	}
	c.Base = b
	for p := b; p != nil; p = p.Base {
		p.Derived = append(p.Derived, c)
	}
	return nil
}

// Ancestors 基类链（从直接基类到根）
func (c *Class) Ancestors() []*Class {
	var chain []*Class
	for p := c.Base; p != nil; p = p.Base {
		chain = append(chain, p)
	}
	return chain
}

// AddMember 添加成员；实例成员与静态成员共享同一个名字空间
func (c *Class) AddMember(sym Symbol, static bool) error {
	if old, ok := c.ownMember(sym.Name()); ok {
		return errors.New(errors.KindSymbolDuplicate, errors.E0101, sym.Pos(),
			i18n.T(i18n.ErrSymbolDuplicate, sym.Name())).
			WithSpan(len(sym.Name())).
			WithInfo(i18n.T(i18n.InfoDeclaredAt, old.Name(), old.Pos()))
	}
	if static {
		c.statics[sym.Name()] = sym
		c.staticOrder = append(c.staticOrder, sym)
	} else {
		c.members[sym.Name()] = sym
		c.memberOrder = append(c.memberOrder, sym)
	}
	return nil
}

func (c *Class) ownMember(name string) (Symbol, bool) {
	if sym, ok := c.members[name]; ok {
		return sym, true
	}
	sym, ok := c.statics[name]
	return sym, ok
}

// IsStaticMember 成员是否为静态成员
func (c *Class) IsStaticMember(sym Symbol) bool {
	for k := c; k != nil; k = k.Base {
		if s, ok := k.statics[sym.Name()]; ok && s == sym {
			return true
		}
	}
	return false
}

// FindMemberSymbol 查找成员：先实例成员后静态成员，沿基类链向上
func (c *Class) FindMemberSymbol(name string) (Symbol, bool) {
	for k := c; k != nil; k = k.Base {
		if sym, ok := k.members[name]; ok {
			return sym, true
		}
		if sym, ok := k.statics[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// FindMemberSymbolInPermission 查找成员并检查访问权限
func (c *Class) FindMemberSymbolInPermission(name string, asserted Permission, pos token.Position) (Symbol, error) {
	sym, ok := c.FindMemberSymbol(name)
	if !ok {
		return nil, errors.New(errors.KindSymbolNotFound, errors.E0401, pos,
			i18n.T(i18n.ErrMemberNotFound, c.Name(), name)).
			WithSpan(len(name)).
			WithHint(errors.DidYouMean(name, c.MemberNames()))
	}
	actual := MemberPermission(sym)
	if !CheckVisitPermissionAllowed(asserted, actual) {
		return nil, errors.New(errors.KindSemantic, errors.E0402, pos,
			i18n.T(i18n.ErrPermissionDenied, name, c.Name(), actual)).
			WithSpan(len(name)).
			WithHint(i18n.T(i18n.HintMakePublic, c.Name()))
	}
	return sym, nil
}

// MemberNames 所有可见成员名（含基类）
func (c *Class) MemberNames() []string {
	var names []string
	for k := c; k != nil; k = k.Base {
		for _, sym := range k.memberOrder {
			names = append(names, sym.Name())
		}
		for _, sym := range k.staticOrder {
			names = append(names, sym.Name())
		}
	}
	return names
}

// Fields 本类定义的实例字段（按定义顺序）
func (c *Class) Fields() []*Variable {
	return variablesOf(c.memberOrder)
}

// StaticFields 本类定义的静态字段
func (c *Class) StaticFields() []*Variable {
	return variablesOf(c.staticOrder)
}

// Methods 本类定义的方法（实例方法在前，静态方法在后）
func (c *Class) Methods() []*Function {
	var out []*Function
	for _, order := range [][]Symbol{c.memberOrder, c.staticOrder} {
		for _, sym := range order {
			if fn, ok := sym.(*Function); ok {
				out = append(out, fn)
			}
		}
	}
	return out
}

func variablesOf(order []Symbol) []*Variable {
	var out []*Variable
	for _, sym := range order {
		if v, ok := sym.(*Variable); ok {
			out = append(out, v)
		}
	}
	return out
}

// MemberPermission 成员的访问权限
func MemberPermission(sym Symbol) Permission {
	switch s := sym.(type) {
	case *Variable:
		return s.Permission
	case *Function:
		return s.Permission
	}
	return PermPublic
}
