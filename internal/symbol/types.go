package symbol

// TypeResolver 按 raw id 解析自定义类型（*Table 实现了它）
type TypeResolver interface {
	LookupType(rid string) (*Class, bool)
}

// CheckTypeMatch 类型是否匹配
//
//  1. 结构相等
//  2. 任意一边是 any
//  3. nul 只与 any 匹配
//  4. 其余一律不匹配，不做数值提升
//
// 不带描述组的 func / funi 是擦除形式，与同名的任意函数类型匹配。
func CheckTypeMatch(left, right *Label) bool {
	if Equal(left, right) {
		return true
	}
	if left.IsAny() || right.IsAny() {
		return true
	}
	if left.Is(TypeNul) || right.Is(TypeNul) {
		return false
	}
	if left.IsFunction() && right.IsFunction() && left.Name == right.Name {
		return len(left.Groups) == 0 || len(right.Groups) == 0
	}
	return false
}

// Assignable source 类型的值能否存入 target 类型的位置
//
// 在 CheckTypeMatch 之外，派生类的实例可以存入基类类型。
func Assignable(reg TypeResolver, target, source *Label) bool {
	if CheckTypeMatch(target, source) {
		return true
	}
	if !target.IsCustom() || !source.IsCustom() {
		return false
	}
	tc, ok1 := reg.LookupType(target.RID)
	sc, ok2 := reg.LookupType(source.RID)
	return ok1 && ok2 && IsSupperClassOf(tc, sc, false)
}

// RelatedTo 两个类是否处于同一条继承链上
//
// b 在 a 的基类链上，或 b 在 a 的派生类列表中。
func RelatedTo(a, b *Class) bool {
	if a == b {
		return true
	}
	for p := a.Base; p != nil; p = p.Base {
		if p == b {
			return true
		}
	}
	for _, d := range a.Derived {
		if d == b {
			return true
		}
	}
	return false
}

// IsSupperClassOf a 是否为 b 的基类
//
// restrict 为 true 时要求严格基类；为 false 时 a == b 也成立。
func IsSupperClassOf(a, b *Class, restrict bool) bool {
	if a == b {
		return !restrict
	}
	for p := b.Base; p != nil; p = p.Base {
		if p == a {
			return true
		}
	}
	return false
}

// AssertedPermission 在 from 类中访问 owner 类成员时的身份
//
// from 为 nil 表示在类外。
func AssertedPermission(from, owner *Class) Permission {
	switch {
	case from == nil:
		return PermPrivate
	case from == owner:
		return PermPublic
	case IsSupperClassOf(owner, from, true):
		return PermProtected
	default:
		return PermPrivate
	}
}
