package symbol

import (
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/token"
)

// ScopeKind 作用域种类
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeClass
	ScopeBlock
	ScopeLoop
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeClass:
		return "class"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// scope 一层作用域：按名字与按 raw id 的两个索引
type scope struct {
	kind   ScopeKind
	byName map[string]Symbol
	byRID  map[string]Symbol
	types  []string // 在这一层注册的自定义类型
}

func newScope(kind ScopeKind) *scope {
	return &scope{
		kind:   kind,
		byName: make(map[string]Symbol),
		byRID:  make(map[string]Symbol),
	}
}

// Table 作用域栈式符号表
//
// 下标 0 为全局作用域。退出作用域时清除在其中注册的自定义类型。
type Table struct {
	scopes []*scope
	types  map[string]*Class
}

// NewTable 创建只含全局作用域的符号表
func NewTable() *Table {
	return &Table{
		scopes: []*scope{newScope(ScopeGlobal)},
		types:  make(map[string]*Class),
	}
}

// Level 当前作用域层级
func (t *Table) Level() int {
	return len(t.scopes) - 1
}

// Kind 当前作用域种类
func (t *Table) Kind() ScopeKind {
	return t.top().kind
}

func (t *Table) top() *scope {
	return t.scopes[len(t.scopes)-1]
}

// Enter 进入新作用域，返回的 release 恢复进入前的层级
//
//	release := table.Enter(symbol.ScopeBlock)
//	defer release()
//
// release 只生效一次；即使中间有未配对的 Enter，也会一并弹出。
func (t *Table) Enter(kind ScopeKind) (release func()) {
	t.scopes = append(t.scopes, newScope(kind))
	target := len(t.scopes) - 1
	released := false
	return func() {
		if released {
			return
		}
		released = true
		for len(t.scopes) > target {
			t.exit()
		}
	}
}

func (t *Table) exit() {
	if len(t.scopes) == 1 {
		return
	}
	s := t.top()
	for _, rid := range s.types {
		delete(t.types, rid)
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// ============================================================================
// 插入
// ============================================================================

// Insert 把符号插入当前作用域
func (t *Table) Insert(sym Symbol) error {
	return t.insertAt(t.Level(), sym)
}

// InsertGlobal 把符号插入全局作用域（global 生命周期）
func (t *Table) InsertGlobal(sym Symbol) error {
	return t.insertAt(0, sym)
}

func (t *Table) insertAt(level int, sym Symbol) error {
	s := t.scopes[level]
	if sym.Name() != Discard {
		if old, ok := s.byName[sym.Name()]; ok {
			return duplicateError(sym, old)
		}
	}
	sym.setLevel(level)
	s.byName[sym.Name()] = sym
	s.byRID[sym.RID()] = sym
	return nil
}

func duplicateError(sym, old Symbol) error {
	return errors.New(errors.KindSymbolDuplicate, errors.E0101, sym.Pos(),
		i18n.T(i18n.ErrSymbolDuplicate, sym.Name())).
		WithSpan(len(sym.Name())).
		WithInfo(i18n.T(i18n.InfoDeclaredAt, old.Name(), old.Pos()))
}

// ============================================================================
// 查找
// ============================================================================

// FindByName 从 ceiling 层（默认当前层）向下查找名字
func (t *Table) FindByName(name string, ceiling ...int) (Symbol, bool) {
	for i := t.ceiling(ceiling); i >= 0; i-- {
		if sym, ok := t.scopes[i].byName[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// FindByRID 从 ceiling 层（默认当前层）向下查找 raw id
func (t *Table) FindByRID(rid string, ceiling ...int) (Symbol, bool) {
	for i := t.ceiling(ceiling); i >= 0; i-- {
		if sym, ok := t.scopes[i].byRID[rid]; ok {
			return sym, true
		}
	}
	return nil, false
}

func (t *Table) ceiling(ceiling []int) int {
	if len(ceiling) > 0 && ceiling[0] >= 0 && ceiling[0] < len(t.scopes) {
		return ceiling[0]
	}
	return t.Level()
}

// CurrentScopeContains 当前作用域是否已有该名字
func (t *Table) CurrentScopeContains(name string) bool {
	_, ok := t.top().byName[name]
	return ok
}

// FunctionBoundary 最内层函数作用域的层级，不在函数中时为 0
func (t *Table) FunctionBoundary() int {
	for i := len(t.scopes) - 1; i > 0; i-- {
		if t.scopes[i].kind == ScopeFunction {
			return i
		}
	}
	return 0
}

// FindInFunction 只在当前函数内（函数边界及以上）查找
func (t *Table) FindInFunction(name string) (Symbol, bool) {
	boundary := t.FunctionBoundary()
	for i := t.Level(); i >= boundary; i-- {
		if sym, ok := t.scopes[i].byName[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Lookup 按名字解析符号
//
// 外层函数的局部变量（层级大于 0 且低于当前函数边界）不能被捕获。
func (t *Table) Lookup(name string, pos token.Position) (Symbol, error) {
	sym, ok := t.FindByName(name)
	if !ok {
		return nil, errors.New(errors.KindSymbolNotFound, errors.E0100, pos,
			i18n.T(i18n.ErrSymbolNotFound, name)).
			WithSpan(len(name)).
			WithHint(errors.DidYouMean(name, t.VisibleNames()), i18n.T(i18n.HintDeclareFirst, name))
	}
	if _, isVar := VariableOf(sym); isVar {
		if level := sym.Level(); level > 0 && level < t.FunctionBoundary() {
			return nil, errors.New(errors.KindScope, errors.E0110, pos,
				i18n.T(i18n.ErrScopeCapture, name)).
				WithSpan(len(name)).
				WithInfo(i18n.T(i18n.InfoDeclaredAt, name, sym.Pos()))
		}
	}
	return sym, nil
}

// VisibleNames 当前可见的全部名字
func (t *Table) VisibleNames() []string {
	var names []string
	for i := t.Level(); i >= 0; i-- {
		for name := range t.scopes[i].byName {
			names = append(names, name)
		}
	}
	return names
}

// ============================================================================
// 自定义类型注册表
// ============================================================================

// RegisterType 在当前作用域注册类，作用域退出时自动清除
func (t *Table) RegisterType(c *Class) {
	t.types[c.RID()] = c
	s := t.top()
	s.types = append(s.types, c.RID())
}

// LookupType 按 raw id 查找已注册的类
func (t *Table) LookupType(rid string) (*Class, bool) {
	c, ok := t.types[rid]
	return c, ok
}

// ClassOf 解析自定义类型标签指向的类
func (t *Table) ClassOf(l *Label, pos token.Position) (*Class, error) {
	if !l.IsCustom() {
		return nil, errors.New(errors.KindTypeMismatch, errors.E0200, pos,
			i18n.T(i18n.ErrNotAClass, l.String()))
	}
	c, ok := t.types[l.RID]
	if !ok {
		return nil, errors.New(errors.KindSymbolNotFound, errors.E0102, pos,
			i18n.T(i18n.ErrCustomTypeNotFound, l.Name)).
			WithHint(i18n.T(i18n.HintDefineClass, l.Name))
	}
	return c, nil
}
