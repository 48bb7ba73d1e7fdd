package symbol

import (
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
)

// Permission 访问权限，按开放程度从低到高排列（builtin 单独处理）
type Permission int

const (
	PermPrivate Permission = iota
	PermProtected
	PermPublic
	PermBuiltin
)

func (p Permission) String() string {
	switch p {
	case PermPrivate:
		return "private"
	case PermProtected:
		return "protected"
	case PermPublic:
		return "public"
	case PermBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

var permissions = map[string]Permission{
	"private":   PermPrivate,
	"protected": PermProtected,
	"public":    PermPublic,
	"builtin":   PermBuiltin,
}

// CheckVisitPermissionAllowed 以 asserted 的身份能否访问权限为 actual 的成员
//
// asserted 由访问位置决定：类外为 private，子类中为 protected，类自身为 public。
// builtin 成员只供编译器内部使用，任何身份都不能访问。
func CheckVisitPermissionAllowed(asserted, actual Permission) bool {
	switch asserted {
	case PermPrivate:
		return actual == PermPublic
	case PermProtected:
		return actual == PermProtected || actual == PermPublic
	case PermPublic:
		return true
	default:
		return false
	}
}

// LifeCycle 生命周期
type LifeCycle int

const (
	LifeOrdinary LifeCycle = iota // 未标注
	LifeStatic
	LifeGlobal
	LifeInstance
)

func (l LifeCycle) String() string {
	switch l {
	case LifeStatic:
		return "static"
	case LifeGlobal:
		return "global"
	case LifeInstance:
		return "instance"
	default:
		return "ordinary"
	}
}

var lifeCycles = map[string]LifeCycle{
	"static":   LifeStatic,
	"global":   LifeGlobal,
	"instance": LifeInstance,
}

// MarkManager 收集一个声明上的标签
//
// 类型标签只能有一个；权限与生命周期各只能有一个；
// 限制与面向对象标签可以多个，重复出现按一个计。
type MarkManager struct {
	labels     []*Label
	typ        *Label
	permission *Label
	lifeCycle  *Label
	flags      map[string]*Label
}

// NewMarkManager 创建标签管理器
func NewMarkManager() *MarkManager {
	return &MarkManager{flags: make(map[string]*Label)}
}

// Collect 依次加入一组标签
func (m *MarkManager) Collect(labels []*Label) error {
	for _, l := range labels {
		if err := m.Add(l); err != nil {
			return err
		}
	}
	return nil
}

// Add 加入一个标签
func (m *MarkManager) Add(l *Label) error {
	switch l.Kind {
	case LabelType:
		if m.typ != nil {
			return errors.New(errors.KindSemantic, errors.E0900, l.Pos,
				i18n.T(i18n.ErrDuplicateTypeLabel, m.typ.String(), l.String())).WithSpan(len(l.Name))
		}
		m.typ = l
	case LabelPermission:
		if m.permission != nil && m.permission.Name != l.Name {
			return m.duplicate(l, m.permission)
		}
		m.permission = l
	case LabelLifeCycle:
		if m.lifeCycle != nil && m.lifeCycle.Name != l.Name {
			return m.duplicate(l, m.lifeCycle)
		}
		m.lifeCycle = l
	default:
		m.flags[l.Name] = l
	}
	m.labels = append(m.labels, l)
	return nil
}

func (m *MarkManager) duplicate(l, old *Label) error {
	return errors.New(errors.KindSemantic, errors.E0900, l.Pos,
		i18n.T(i18n.ErrDuplicateMark, l.Kind.String(), l.Name, old.Name)).WithSpan(len(l.Name))
}

// Labels 按出现顺序返回全部标签
func (m *MarkManager) Labels() []*Label {
	return m.labels
}

// Type 类型标签，未标注时为 nil
func (m *MarkManager) Type() *Label {
	return m.typ
}

// Permission 权限标签，未标注时 ok 为 false
func (m *MarkManager) Permission() (Permission, bool) {
	if m.permission == nil {
		return PermPublic, false
	}
	return permissions[m.permission.Name], true
}

// LifeCycle 生命周期，未标注时为 LifeOrdinary
func (m *MarkManager) LifeCycle() LifeCycle {
	if m.lifeCycle == nil {
		return LifeOrdinary
	}
	return lifeCycles[m.lifeCycle.Name]
}

// Has 是否带有某个限制或面向对象标签
func (m *MarkManager) Has(name string) bool {
	_, ok := m.flags[name]
	return ok
}

// IsConst const 标签
func (m *MarkManager) IsConst() bool { return m.Has("const") }

// IsQuote quote 标签
func (m *MarkManager) IsQuote() bool { return m.Has("quote") }

// IsStatic static 生命周期
func (m *MarkManager) IsStatic() bool { return m.LifeCycle() == LifeStatic }

// Admit 检查全部标签都在允许范围内
//
// allowed 中的 "type" 表示允许任意类型标签，其他项为标签名。
// 返回第一个不被允许的标签对应的错误，what 描述被标注的对象。
func (m *MarkManager) Admit(what string, allowed ...string) error {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	for _, l := range m.labels {
		if l.Kind == LabelType && set["type"] {
			continue
		}
		if l.Kind != LabelType && set[l.Name] {
			continue
		}
		return errors.New(errors.KindSemantic, errors.E0900, l.Pos,
			i18n.T(i18n.ErrLabelNotAdmitted, l.String(), what)).WithSpan(len(l.Name))
	}
	return nil
}
