// Package symbol 符号与类型系统
//
// 标签（Label）描述声明的类型、访问权限、生命周期、限制与面向对象属性；
// 符号（Symbol）是编译期看到的变量、参数、函数、类与跳转标签；
// Table 是按作用域层级组织的符号表，同时维护自定义类型注册表。
package symbol

import (
	"strings"

	"github.com/tangzhangming/kite/internal/token"
)

// LabelKind 标签类别
type LabelKind int

const (
	LabelType           LabelKind = iota // int str Point func[...]
	LabelPermission                      // private protected public builtin
	LabelLifeCycle                       // static global instance
	LabelRestriction                     // const quote
	LabelObjectOriented                  // overwrite interface virtual
)

func (k LabelKind) String() string {
	switch k {
	case LabelType:
		return "type"
	case LabelPermission:
		return "permission"
	case LabelLifeCycle:
		return "life-cycle"
	case LabelRestriction:
		return "restriction"
	case LabelObjectOriented:
		return "object-oriented"
	default:
		return "unknown"
	}
}

// 内置类型名
const (
	TypeInt  = "int"
	TypeFlt  = "flt"
	TypeStr  = "str"
	TypeBool = "bool"
	TypeNul  = "nul"
	TypeAny  = "any"
	TypeList = "list"
	TypeDict = "dict"
	TypePair = "pair"
	TypeFunc = "func"
	TypeFuni = "funi"
)

var builtinTypes = map[string]bool{
	TypeInt: true, TypeFlt: true, TypeStr: true, TypeBool: true, TypeNul: true,
	TypeAny: true, TypeList: true, TypeDict: true, TypePair: true,
	TypeFunc: true, TypeFuni: true,
}

// IsBuiltinType 是否为内置类型名
func IsBuiltinType(name string) bool {
	return builtinTypes[name]
}

// Label 附加在符号上的标签
//
// 自定义类型标签的 RID 为对应类的 raw id，通过类型注册表解析到类符号。
// Groups 为描述组，只出现在 func / funi 上：第一组是参数类型，第二组是返回类型。
type Label struct {
	Kind   LabelKind
	Name   string
	RID    string
	Groups [][]*Label
	Pos    token.Position
}

// Builtin 创建内置类型标签
func Builtin(name string) *Label {
	return &Label{Kind: LabelType, Name: name}
}

// Custom 创建指向类的自定义类型标签
func Custom(class *Class) *Label {
	return &Label{Kind: LabelType, Name: class.Name(), RID: class.RID()}
}

// Signature 创建函数签名类型 func[params][ret] / funi[params][ret]
func Signature(params []*Label, ret *Label) *Label {
	name := TypeFuni
	if ret != nil && ret.Name == TypeNul && !ret.IsCustom() {
		name = TypeFunc
	}
	if ret == nil {
		ret = Builtin(TypeAny)
	}
	group := make([]*Label, len(params))
	copy(group, params)
	return &Label{Kind: LabelType, Name: name, Groups: [][]*Label{group, {ret}}}
}

// Mark 创建非类型标签
func Mark(kind LabelKind, name string) *Label {
	return &Label{Kind: kind, Name: name}
}

// IsCustom 是否为自定义类型
func (l *Label) IsCustom() bool {
	return l != nil && l.Kind == LabelType && l.RID != ""
}

// Is 是否为指定的内置类型
func (l *Label) Is(name string) bool {
	return l != nil && l.Kind == LabelType && l.RID == "" && l.Name == name
}

// IsAny 未知类型（nil 视为 any）
func (l *Label) IsAny() bool {
	return l == nil || l.Is(TypeAny)
}

// IsFunction 是否为函数类型
func (l *Label) IsFunction() bool {
	return l.Is(TypeFunc) || l.Is(TypeFuni)
}

// IsNumeric 是否为数值类型
func (l *Label) IsNumeric() bool {
	return l.Is(TypeInt) || l.Is(TypeFlt)
}

// Params 函数类型的参数描述组
func (l *Label) Params() []*Label {
	if l == nil || len(l.Groups) == 0 {
		return nil
	}
	return l.Groups[0]
}

// Return 函数类型的返回类型，未描述时为 any
func (l *Label) Return() *Label {
	if l == nil || len(l.Groups) < 2 || len(l.Groups[1]) == 0 {
		return Builtin(TypeAny)
	}
	return l.Groups[1][0]
}

func (l *Label) String() string {
	if l == nil {
		return TypeAny
	}
	var sb strings.Builder
	sb.WriteString(l.Name)
	for _, group := range l.Groups {
		sb.WriteString("[")
		for i, g := range group {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(g.String())
		}
		sb.WriteString("]")
	}
	return sb.String()
}

// Equal 结构相等：同名、自定义类型指向同一个类、描述组递归相等
func Equal(a, b *Label) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Name != b.Name || a.RID != b.RID {
		return false
	}
	if len(a.Groups) != len(b.Groups) {
		return false
	}
	for i := range a.Groups {
		if len(a.Groups[i]) != len(b.Groups[i]) {
			return false
		}
		for j := range a.Groups[i] {
			if !Equal(a.Groups[i][j], b.Groups[i][j]) {
				return false
			}
		}
	}
	return true
}

// LabelKindOf 根据 token 类型判断标签类别；类名（IDENT）视为类型标签
func LabelKindOf(t token.TokenType) (LabelKind, bool) {
	switch {
	case token.IsTypeLabel(t), t == token.IDENT:
		return LabelType, true
	case token.IsPermissionLabel(t):
		return LabelPermission, true
	case token.IsLifeCycleLabel(t):
		return LabelLifeCycle, true
	case token.IsRestrictionLabel(t):
		return LabelRestriction, true
	case token.IsObjectOrientedLabel(t):
		return LabelObjectOriented, true
	}
	return 0, false
}
