package symbol

import (
	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/token"
)

// Kind 符号种类
type Kind int

const (
	KindVariable Kind = iota
	KindParameter
	KindFunction
	KindClass
	KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindParameter:
		return "parameter"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Discard 保留的丢弃名，可以在同一作用域中重复定义
const Discard = "_"

// Symbol 符号
//
// Name 是源代码中的名字，RID 是生成的 RA 标识符。
// Level 是符号插入时所在的作用域层级（0 为全局）。
type Symbol interface {
	Kind() Kind
	Name() string
	RID() string
	Pos() token.Position
	Level() int
	setLevel(level int)
}

type base struct {
	name  string
	rid   string
	pos   token.Position
	level int
}

func (b *base) Name() string        { return b.name }
func (b *base) RID() string         { return b.rid }
func (b *base) Pos() token.Position { return b.pos }
func (b *base) Level() int          { return b.level }
func (b *base) setLevel(level int)  { b.level = level }

// ============================================================================
// 变量与参数
// ============================================================================

// Variable 变量（也用于类的字段）
type Variable struct {
	base
	Type       *Label // 声明类型，未标注为 any
	Value      *Label // 最近一次赋值推断出的值类型
	Const      bool
	Global     bool
	Static     bool
	Permission Permission
	Owner      *Class   // 字段所属的类
	Init       ast.Node // 字段初始值
	Ref        Symbol   // 当前引用的函数或类（别名链）
}

// NewVariable 创建变量符号
func NewVariable(name, rid string, pos token.Position) *Variable {
	return &Variable{
		base:       base{name: name, rid: rid, pos: pos},
		Type:       Builtin(TypeAny),
		Permission: PermPublic,
	}
}

func (v *Variable) Kind() Kind { return KindVariable }

// Effective 用于成员解析的类型：声明为 any 时使用推断的值类型
func (v *Variable) Effective() *Label {
	if v.Type.IsAny() && v.Value != nil {
		return v.Value
	}
	return v.Type
}

// Parameter 形参
type Parameter struct {
	Variable
	ParamKind ast.ParamKind
	Default   ast.Node // 只能是字面量
	Quote     bool
}

// NewParameter 创建参数符号
func NewParameter(name, rid string, kind ast.ParamKind, pos token.Position) *Parameter {
	p := &Parameter{ParamKind: kind}
	p.Variable = *NewVariable(name, rid, pos)
	return p
}

func (p *Parameter) Kind() Kind { return KindParameter }

// Required 没有默认值的普通位置参数
func (p *Parameter) Required() bool {
	return p.ParamKind == ast.ParamPositional
}

// VariableOf 取出变量或参数中的 Variable 部分
func VariableOf(sym Symbol) (*Variable, bool) {
	switch s := sym.(type) {
	case *Variable:
		return s, true
	case *Parameter:
		return &s.Variable, true
	}
	return nil, false
}

// ============================================================================
// 函数
// ============================================================================

// FuncKind 函数种类
type FuncKind int

const (
	FuncPlain FuncKind = iota
	FuncConstructor
	FuncMethod
	FuncAnonymous
)

// BuiltinKind 内置函数种类
type BuiltinKind int

const (
	BuiltinNone BuiltinKind = iota // 用户函数
	BuiltinVoid                    // 内置，无返回值
	BuiltinPure                    // 内置，产生一个值
)

// Function 函数符号
type Function struct {
	base
	Params      []*Parameter
	Return      *Label
	FuncKind    FuncKind
	BuiltinKind BuiltinKind
	Owner       *Class
	Static      bool
	Permission  Permission
	Overwrite   bool
	Virtual     bool
	Returned    bool // 函数体中出现过 return
	Declared    bool // 仅有声明，尚未定义
}

// NewFunction 创建函数符号，返回类型默认为 any
func NewFunction(name, rid string, pos token.Position) *Function {
	return &Function{
		base:       base{name: name, rid: rid, pos: pos},
		Return:     Builtin(TypeAny),
		Permission: PermPublic,
	}
}

func (f *Function) Kind() Kind { return KindFunction }

// Signature 函数签名类型，描述组为参数类型与返回类型
func (f *Function) Signature() *Label {
	params := make([]*Label, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	return Signature(params, f.Return)
}

// ReturnsValue 是否产生返回值（返回类型不是 nul）
func (f *Function) ReturnsValue() bool {
	return !f.Return.Is(TypeNul)
}

// IsBuiltin 是否为内置函数
func (f *Function) IsBuiltin() bool {
	return f.BuiltinKind != BuiltinNone
}

// IsMethod 是否为需要隐式 this 的实例方法
func (f *Function) IsMethod() bool {
	return f.Owner != nil && !f.Static && f.FuncKind != FuncConstructor
}

// ============================================================================
// 跳转标签
// ============================================================================

// LabelSymbol 跳转目标（循环的 break / continue 出口）
type LabelSymbol struct {
	base
}

// NewLabelSymbol 创建跳转标签符号
func NewLabelSymbol(name, rid string, pos token.Position) *LabelSymbol {
	return &LabelSymbol{base: base{name: name, rid: rid, pos: pos}}
}

func (l *LabelSymbol) Kind() Kind { return KindLabel }
