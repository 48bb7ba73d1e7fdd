package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/token"
)

func pos(line int) token.Position {
	return token.Position{Filename: "test.kite", Line: line, Column: 1}
}

func TestTableEnterReleaseRestoresLevel(t *testing.T) {
	for n := 0; n <= 8; n++ {
		table := NewTable()
		var releases []func()
		for i := 0; i < n; i++ {
			releases = append(releases, table.Enter(ScopeBlock))
		}
		assert.Equal(t, n, table.Level())
		for i := n - 1; i >= 0; i-- {
			releases[i]()
		}
		assert.Equal(t, 0, table.Level(), "n=%d", n)
	}
}

func TestTableReleasePopsUnpairedScopes(t *testing.T) {
	table := NewTable()
	release := table.Enter(ScopeFunction)
	table.Enter(ScopeBlock)
	table.Enter(ScopeLoop)
	require.Equal(t, 3, table.Level())

	release()
	assert.Equal(t, 0, table.Level())

	// 第二次调用不再生效
	table.Enter(ScopeBlock)
	release()
	assert.Equal(t, 1, table.Level())
}

func TestTableExitPurgesTypes(t *testing.T) {
	table := NewTable()
	global := NewClass("G", "T_G_0", pos(1))
	table.RegisterType(global)

	release := table.Enter(ScopeFunction)
	local := NewClass("L", "T_L_1", pos(2))
	table.RegisterType(local)
	_, ok := table.LookupType("T_L_1")
	require.True(t, ok)

	release()
	_, ok = table.LookupType("T_L_1")
	assert.False(t, ok)
	_, ok = table.LookupType("T_G_0")
	assert.True(t, ok)
}

func TestTableInsertAndFind(t *testing.T) {
	table := NewTable()
	x := NewVariable("x", "x_0", pos(1))
	require.NoError(t, table.Insert(x))

	release := table.Enter(ScopeBlock)
	defer release()
	y := NewVariable("y", "y_1", pos(2))
	require.NoError(t, table.Insert(y))

	sym, ok := table.FindByName("x")
	require.True(t, ok)
	assert.Same(t, x, sym)
	assert.Equal(t, 0, sym.Level())

	sym, ok = table.FindByRID("y_1")
	require.True(t, ok)
	assert.Same(t, y, sym)
	assert.Equal(t, 1, sym.Level())

	// 从全局层查找看不到局部变量
	_, ok = table.FindByName("y", 0)
	assert.False(t, ok)

	assert.True(t, table.CurrentScopeContains("y"))
	assert.False(t, table.CurrentScopeContains("x"))
	assert.ElementsMatch(t, []string{"x", "y"}, table.VisibleNames())
}

func TestTableShadowingInNestedScope(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Insert(NewVariable("x", "x_0", pos(1))))
	release := table.Enter(ScopeBlock)
	inner := NewVariable("x", "x_1", pos(2))
	require.NoError(t, table.Insert(inner))

	sym, err := table.Lookup("x", pos(3))
	require.NoError(t, err)
	assert.Equal(t, "x_1", sym.RID())

	release()
	sym, err = table.Lookup("x", pos(4))
	require.NoError(t, err)
	assert.Equal(t, "x_0", sym.RID())
}

func TestTableDuplicate(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Insert(NewVariable("x", "x_0", pos(1))))
	err := table.Insert(NewVariable("x", "x_1", pos(2)))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSymbolDuplicate))
	ce, _ := errors.As(err)
	assert.Equal(t, errors.E0101, ce.Code)
	assert.Len(t, ce.Infos, 1)
}

func TestTableDiscardNeverConflicts(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Insert(NewVariable(Discard, "__0", pos(1))))
	require.NoError(t, table.Insert(NewVariable(Discard, "__1", pos(2))))
	_, ok := table.FindByRID("__0")
	assert.True(t, ok)
}

func TestTableLookupNotFound(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Insert(NewVariable("count", "count_0", pos(1))))

	_, err := table.Lookup("cuont", pos(2))
	require.Error(t, err)
	ce, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindSymbolNotFound, ce.Kind)
	assert.Equal(t, errors.E0100, ce.Code)
	assert.NotEmpty(t, ce.Hints)
	assert.Contains(t, ce.Hints[0], "count")
}

func TestTableLookupRejectsCapture(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Insert(NewVariable("g", "g_0", pos(1))))

	outer := table.Enter(ScopeFunction)
	defer outer()
	require.NoError(t, table.Insert(NewVariable("local", "local_1", pos(2))))
	require.NoError(t, table.Insert(NewFunction("helper", "f_helper_2", pos(3))))

	inner := table.Enter(ScopeFunction)
	defer inner()
	require.NoError(t, table.Insert(NewParameter("p", "p_3", ast.ParamPositional, pos(4))))

	_, err := table.Lookup("local", pos(5))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindScope))

	// 全局变量、外层函数符号与自己的参数都可以访问
	_, err = table.Lookup("g", pos(6))
	assert.NoError(t, err)
	_, err = table.Lookup("helper", pos(7))
	assert.NoError(t, err)
	_, err = table.Lookup("p", pos(8))
	assert.NoError(t, err)
}

func TestTableFindInFunction(t *testing.T) {
	table := NewTable()
	fn := table.Enter(ScopeFunction)
	defer fn()
	loop := table.Enter(ScopeLoop)
	require.NoError(t, table.Insert(NewLabelSymbol("break", "%L0", pos(1))))

	inner := table.Enter(ScopeFunction)
	_, ok := table.FindInFunction("break")
	assert.False(t, ok)
	inner()

	block := table.Enter(ScopeBlock)
	sym, ok := table.FindInFunction("break")
	require.True(t, ok)
	assert.Equal(t, KindLabel, sym.Kind())
	block()
	loop()
}

func TestTableClassOf(t *testing.T) {
	table := NewTable()
	point := NewClass("Point", "T_Point_0", pos(1))
	table.RegisterType(point)

	c, err := table.ClassOf(Custom(point), pos(2))
	require.NoError(t, err)
	assert.Same(t, point, c)

	_, err = table.ClassOf(&Label{Kind: LabelType, Name: "Ghost", RID: "T_Ghost_9"}, pos(3))
	assert.True(t, errors.IsKind(err, errors.KindSymbolNotFound))

	_, err = table.ClassOf(Builtin(TypeInt), pos(4))
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))
}

func TestClassMembers(t *testing.T) {
	base := NewClass("Shape", "T_Shape_0", pos(1))
	name := NewVariable("name", "name_1", pos(2))
	secret := NewVariable("secret", "secret_2", pos(3))
	secret.Permission = PermPrivate
	guarded := NewVariable("guarded", "guarded_3", pos(4))
	guarded.Permission = PermProtected
	require.NoError(t, base.AddMember(name, false))
	require.NoError(t, base.AddMember(secret, false))
	require.NoError(t, base.AddMember(guarded, false))

	point := NewClass("Point", "T_Point_4", pos(5))
	require.NoError(t, point.SetBase(base, pos(5)))
	count := NewVariable("count", "count_5", pos(6))
	require.NoError(t, point.AddMember(count, true))
	norm := NewFunction("norm", "f_Point_norm_6", pos(7))
	norm.Owner = point
	require.NoError(t, point.AddMember(norm, false))

	// 实例成员与静态成员共享名字空间
	err := point.AddMember(NewVariable("count", "count_7", pos(8)), false)
	assert.True(t, errors.IsKind(err, errors.KindSymbolDuplicate))

	sym, ok := point.FindMemberSymbol("name")
	require.True(t, ok)
	assert.Same(t, name, sym)
	assert.True(t, point.IsStaticMember(count))
	assert.False(t, point.IsStaticMember(norm))
	assert.Equal(t, []*Function{norm}, point.Methods())
	assert.Equal(t, []*Variable{count}, point.StaticFields())
	assert.Len(t, base.Fields(), 3)

	// 类外只能访问 public
	_, err = point.FindMemberSymbolInPermission("name", AssertedPermission(nil, base), pos(9))
	assert.NoError(t, err)
	_, err = point.FindMemberSymbolInPermission("guarded", AssertedPermission(nil, base), pos(9))
	assert.True(t, errors.IsKind(err, errors.KindSemantic))

	// 子类中可以访问 protected，但不能访问 private
	_, err = point.FindMemberSymbolInPermission("guarded", AssertedPermission(point, base), pos(10))
	assert.NoError(t, err)
	_, err = point.FindMemberSymbolInPermission("secret", AssertedPermission(point, base), pos(10))
	assert.True(t, errors.IsKind(err, errors.KindSemantic))

	// 类自身可以访问全部成员
	_, err = base.FindMemberSymbolInPermission("secret", AssertedPermission(base, base), pos(11))
	assert.NoError(t, err)

	_, err = point.FindMemberSymbolInPermission("nmae", PermPublic, pos(12))
	ce, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.E0401, ce.Code)
	assert.Contains(t, ce.Hints[0], "name")
}

func TestMarkManager(t *testing.T) {
	m := NewMarkManager()
	require.NoError(t, m.Collect([]*Label{
		Builtin(TypeInt),
		Mark(LabelPermission, "private"),
		Mark(LabelLifeCycle, "static"),
		Mark(LabelRestriction, "const"),
		Mark(LabelRestriction, "const"),
	}))

	assert.True(t, m.Type().Is(TypeInt))
	perm, ok := m.Permission()
	assert.True(t, ok)
	assert.Equal(t, PermPrivate, perm)
	assert.True(t, m.IsStatic())
	assert.True(t, m.IsConst())
	assert.False(t, m.IsQuote())
	assert.Len(t, m.Labels(), 5)

	assert.NoError(t, m.Admit("a field", "type", "private", "static", "const"))
	err := m.Admit("a variable", "type", "global", "const")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private")
}

func TestMarkManagerDuplicates(t *testing.T) {
	m := NewMarkManager()
	require.NoError(t, m.Add(Builtin(TypeInt)))
	err := m.Add(Builtin(TypeStr))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSemantic))

	m = NewMarkManager()
	require.NoError(t, m.Add(Mark(LabelPermission, "public")))
	require.NoError(t, m.Add(Mark(LabelPermission, "public")))
	assert.Error(t, m.Add(Mark(LabelPermission, "private")))

	m = NewMarkManager()
	require.NoError(t, m.Add(Mark(LabelLifeCycle, "static")))
	assert.Error(t, m.Add(Mark(LabelLifeCycle, "global")))

	perm, ok := NewMarkManager().Permission()
	assert.False(t, ok)
	assert.Equal(t, PermPublic, perm)
}

func TestFunctionSignature(t *testing.T) {
	fn := NewFunction("add", "f_add_0", pos(1))
	a := NewParameter("a", "a_1", ast.ParamPositional, pos(1))
	a.Type = Builtin(TypeInt)
	b := NewParameter("b", "b_2", ast.ParamKeyword, pos(1))
	fn.Params = []*Parameter{a, b}
	fn.Return = Builtin(TypeInt)

	assert.Equal(t, "funi[int, any][int]", fn.Signature().String())
	assert.True(t, fn.ReturnsValue())
	assert.True(t, a.Required())
	assert.False(t, b.Required())
	assert.Equal(t, KindParameter, b.Kind())

	v, ok := VariableOf(b)
	require.True(t, ok)
	assert.Equal(t, "b", v.Name())

	fn.Return = Builtin(TypeNul)
	assert.False(t, fn.ReturnsValue())
	assert.Equal(t, TypeFunc, fn.Signature().Name)
}
