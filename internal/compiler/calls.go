package compiler

import (
	"fmt"
	"strings"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/builtin"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/ra"
	"github.com/tangzhangming/kite/internal/symbol"
	"github.com/tangzhangming/kite/internal/token"
)

// argument 已求值的实参
type argument struct {
	name  string // 关键字实参名，位置实参为空
	value *Operand
	node  ast.Node
}

// binding 形参与实参的对应关系
type binding struct {
	param *symbol.Parameter
	value *argument   // 普通参数绑定的实参，nil 表示使用默认值
	rest  []*argument // 可变参数收集的实参
}

func (c *Compiler) evalArguments(nodes []ast.Node) ([]*argument, error) {
	args := make([]*argument, 0, len(nodes))
	for _, n := range nodes {
		if kw, ok := n.(*ast.Argument); ok {
			v, err := c.eval(kw.Value)
			if err != nil {
				return nil, err
			}
			args = append(args, &argument{name: kw.Name.Name, value: v, node: kw})
			continue
		}
		v, err := c.eval(n)
		if err != nil {
			return nil, err
		}
		args = append(args, &argument{value: v, node: n})
	}
	return args, nil
}

// ============================================================================
// 实参绑定
// ============================================================================

// bind 按 位置 → 关键字 → 可变参数 的顺序把实参绑定到形参
//
// 要求完全匹配：不能有多余的实参，没有默认值的参数必须被绑定。
// 每个绑定都做类型检查。只生成计划，不输出指令。
func (c *Compiler) bind(fn *symbol.Function, args []*argument, pos token.Position) ([]*binding, error) {
	bindings := make([]*binding, len(fn.Params))
	for i, p := range fn.Params {
		bindings[i] = &binding{param: p}
	}

	var positional, keywords []*argument
	for _, a := range args {
		if a.name == "" {
			positional = append(positional, a)
		} else {
			keywords = append(keywords, a)
		}
	}

	next := 0
	capacity := 0
	var varKeyword *binding
	for _, b := range bindings {
		switch b.param.ParamKind {
		case ast.ParamPositional, ast.ParamKeyword:
			capacity++
			if next < len(positional) {
				b.value = positional[next]
				next++
			}
		case ast.ParamVarPositional:
			capacity = -1
			b.rest = positional[next:]
			next = len(positional)
		case ast.ParamVarKeyword:
			varKeyword = b
		}
	}
	if next < len(positional) {
		return nil, c.errorf(errors.KindArgument, errors.E0301, positional[next].node.Pos(),
			i18n.ErrTooManyArguments, fn.Name(), capacity, len(positional)).
			WithSpan(len(positional[next].node.String()))
	}

	for _, kw := range keywords {
		target := findBinding(bindings, kw.name)
		switch {
		case target != nil && target.value != nil:
			return nil, c.errorf(errors.KindArgument, errors.E0301, kw.node.Pos(),
				i18n.ErrDuplicateArgument, kw.name, fn.Name()).WithSpan(len(kw.name))
		case target != nil:
			target.value = kw
		case varKeyword != nil:
			varKeyword.rest = append(varKeyword.rest, kw)
		default:
			return nil, c.errorf(errors.KindArgument, errors.E0301, kw.node.Pos(),
				i18n.ErrUnknownKeyword, fn.Name(), kw.name).WithSpan(len(kw.name))
		}
	}

	for _, b := range bindings {
		if b.param.Required() && b.value == nil {
			name := b.param.Name()
			return nil, c.errorf(errors.KindArgument, errors.E0301, pos,
				i18n.ErrMissingArgument, name, fn.Name()).
				WithInfo(i18n.T(i18n.InfoDeclaredAt, name, b.param.Pos())).
				WithHint(i18n.T(i18n.HintPassArgument, name))
		}
		if b.value != nil && !symbol.Assignable(c.table, b.param.Type, b.value.value.Effective()) {
			return nil, c.mismatch(b.value.node.Pos(), b.param.Type, b.value.value.Effective()).
				WithSpan(len(b.value.node.String())).
				WithInfo(i18n.T(i18n.InfoDeclaredAt, b.param.Name(), b.param.Pos()))
		}
	}
	return bindings, nil
}

func findBinding(bindings []*binding, name string) *binding {
	for _, b := range bindings {
		kind := b.param.ParamKind
		if b.param.Name() == name && (kind == ast.ParamPositional || kind == ast.ParamKeyword) {
			return b
		}
	}
	return nil
}

// emitBindings 输出绑定计划，返回按形参顺序排列的实参
func (c *Compiler) emitBindings(bindings []*binding) ([]string, error) {
	raws := make([]string, 0, len(bindings))
	for _, b := range bindings {
		switch b.param.ParamKind {
		case ast.ParamVarPositional:
			list := c.NewTemp()
			c.out.Emit(ra.OpPut, ra.EmptyList, list)
			for _, a := range b.rest {
				c.out.Emit(ra.OpIterApnd, list, a.value.Raw)
			}
			raws = append(raws, list)
		case ast.ParamVarKeyword:
			dict := c.NewTemp()
			c.out.Emit(ra.OpPut, ra.EmptyDict, dict)
			for _, a := range b.rest {
				c.out.Emit(ra.OpPairSet, dict, ra.Str(a.name), a.value.Raw)
			}
			raws = append(raws, dict)
		default:
			if b.value != nil {
				raws = append(raws, b.value.value.Raw)
				continue
			}
			def, err := c.eval(b.param.Default)
			if err != nil {
				return nil, err
			}
			raws = append(raws, def.Raw)
		}
	}
	return raws, nil
}

// describeFunction 函数签名的文本形式，用于候选列表
func describeFunction(fn *symbol.Function) string {
	parts := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		prefix := ""
		switch p.ParamKind {
		case ast.ParamVarPositional:
			prefix = "*"
		case ast.ParamVarKeyword:
			prefix = "**"
		}
		parts[i] = fmt.Sprintf("%s%s: %s", prefix, p.Name(), p.Type)
	}
	return fmt.Sprintf("%s(%s)", fn.Name(), strings.Join(parts, ", "))
}

// ============================================================================
// 调用
// ============================================================================

func (c *Compiler) VisitCall(n *ast.Call) error {
	callee, err := c.eval(n.Callee)
	if err != nil {
		return err
	}
	args, err := c.evalArguments(n.Args)
	if err != nil {
		return err
	}

	if cls, ok := callee.Class(); ok && !callee.Effective().IsCustom() {
		return c.construct(cls, args, n)
	}
	if fn, ok := callee.Function(); ok {
		if fn.IsBuiltin() {
			return c.callBuiltin(fn, args, n)
		}
		return c.callFunction(fn, callee, args, n)
	}

	typ := callee.Effective()
	if typ.IsFunction() || typ.IsAny() {
		return c.callIndirect(callee, typ, args, n)
	}
	return c.errorf(errors.KindTypeMismatch, errors.E0303, n.Pos(), i18n.ErrNotCallable, callee.Surface, typ).
		WithSpan(len(n.Callee.String()))
}

// construct 构造实例：选出第一个完全匹配的构造函数
func (c *Compiler) construct(cls *symbol.Class, args []*argument, n *ast.Call) error {
	if cls.Declared {
		return c.errorf(errors.KindSemantic, errors.E0900, n.Pos(), i18n.ErrDeclaredNotDefined, cls.Name()).
			WithSpan(len(n.Callee.String())).
			WithHint(i18n.T(i18n.HintDefineClass, cls.Name()))
	}

	var candidates []string
	for _, ctor := range cls.Constructors {
		bindings, err := c.bind(ctor, args, n.Pos())
		if err != nil {
			reason := err.Error()
			if ce, ok := errors.As(err); ok {
				reason = ce.Message
			}
			candidates = append(candidates, i18n.T(i18n.InfoCandidate, describeFunction(ctor), reason))
			continue
		}

		asserted := symbol.AssertedPermission(c.currentClass(), cls)
		if !symbol.CheckVisitPermissionAllowed(asserted, ctor.Permission) {
			return c.errorf(errors.KindSemantic, errors.E0402, n.Pos(), i18n.ErrPermissionDenied,
				ctor.Name(), cls.Name(), ctor.Permission).
				WithSpan(len(n.Callee.String())).
				WithHint(i18n.T(i18n.HintMakePublic, cls.Name()))
		}

		obj := c.NewTemp()
		c.out.Emit(ra.OpTpNew, cls.RID(), obj)
		raws, err := c.emitBindings(bindings)
		if err != nil {
			return err
		}
		c.out.Emit(ra.OpCall, append([]string{ctor.RID(), obj}, raws...)...)
		c.push(temp(obj, symbol.Custom(cls), n))
		return nil
	}

	return c.errorf(errors.KindArgument, errors.E0302, n.Pos(), i18n.ErrNoMatchingConstructor, cls.Name()).
		WithSpan(len(n.Callee.String())).
		WithInfo(candidates...)
}

// callFunction 调用用户函数；实例方法以所属对象作为隐式的第一个实参
func (c *Compiler) callFunction(fn *symbol.Function, callee *Operand, args []*argument, n *ast.Call) error {
	bindings, err := c.bind(fn, args, n.Pos())
	if err != nil {
		return err
	}

	var raws []string
	if fn.IsMethod() {
		if callee.Owner == nil || callee.Owner.Static {
			return c.errorf(errors.KindSemantic, errors.E0900, n.Pos(), i18n.ErrStaticAccess,
				fn.Name(), fn.Owner.Name()).WithSpan(len(n.Callee.String()))
		}
		raws = append(raws, callee.Owner.Object)
	}
	bound, err := c.emitBindings(bindings)
	if err != nil {
		return err
	}
	raws = append(raws, bound...)

	target := callee.Raw
	if fn.ReturnsValue() {
		dst := c.NewTemp()
		c.out.Emit(ra.OpIvok, append(append([]string{target}, raws...), dst)...)
		c.push(temp(dst, fn.Return, n))
		return nil
	}
	c.out.Emit(ra.OpCall, append([]string{target}, raws...)...)
	c.push(nullOperand(n))
	return nil
}

// callIndirect 调用没有解析到函数符号的值（函数类型或 any 类型的变量）
//
// 只接受位置实参；带描述组的函数类型检查个数与类型。
func (c *Compiler) callIndirect(callee *Operand, typ *symbol.Label, args []*argument, n *ast.Call) error {
	raws := make([]string, 0, len(args))
	for _, a := range args {
		if a.name != "" {
			return c.errorf(errors.KindArgument, errors.E0301, a.node.Pos(), i18n.ErrUnknownKeyword,
				callee.Surface, a.name).WithSpan(len(a.name))
		}
		raws = append(raws, a.value.Raw)
	}

	if typ.IsFunction() && len(typ.Groups) > 0 {
		params := typ.Params()
		if len(args) > len(params) {
			return c.errorf(errors.KindArgument, errors.E0301, n.Pos(), i18n.ErrTooManyArguments,
				callee.Surface, len(params), len(args)).WithSpan(len(n.String()))
		}
		if len(args) < len(params) {
			return c.errorf(errors.KindArgument, errors.E0301, n.Pos(), i18n.ErrMissingArgument,
				fmt.Sprintf("#%d", len(args)+1), callee.Surface).WithSpan(len(n.String()))
		}
		for i, a := range args {
			if !symbol.Assignable(c.table, params[i], a.value.Effective()) {
				return c.mismatch(a.node.Pos(), params[i], a.value.Effective()).WithSpan(len(a.node.String()))
			}
		}
	}

	if typ.Is(symbol.TypeFunc) {
		c.out.Emit(ra.OpCall, append([]string{callee.Raw}, raws...)...)
		c.push(nullOperand(n))
		return nil
	}
	dst := c.NewTemp()
	c.out.Emit(ra.OpIvok, append(append([]string{callee.Raw}, raws...), dst)...)
	c.push(temp(dst, typ.Return(), n))
	return nil
}

// callBuiltin 内置函数调用：检查实参个数后交给分派表生成代码
func (c *Compiler) callBuiltin(fn *symbol.Function, args []*argument, n *ast.Call) error {
	entry, ok := c.session.Builtins.Lookup(fn.Name())
	if !ok {
		return c.errorf(errors.KindSymbolNotFound, errors.E0100, n.Pos(), i18n.ErrSymbolNotFound, fn.Name())
	}
	info := &builtin.CallInfo{Name: fn.Name(), Pos: n.Pos()}
	for _, a := range args {
		if a.name != "" {
			if !entry.AcceptsKeyword(a.name) {
				return c.errorf(errors.KindArgument, errors.E0301, a.node.Pos(), i18n.ErrUnknownKeyword,
					fn.Name(), a.name).WithSpan(len(a.name))
			}
			if _, dup := info.Keyword[a.name]; dup {
				return c.errorf(errors.KindArgument, errors.E0301, a.node.Pos(), i18n.ErrDuplicateArgument,
					a.name, fn.Name()).WithSpan(len(a.name))
			}
		}
		original := a.node.String()
		if kw, ok := a.node.(*ast.Argument); ok {
			original = kw.Value.String()
		}
		info.Add(builtin.Arg{
			Name:     a.name,
			Raw:      a.value.Raw,
			Type:     a.value.Effective().String(),
			Literal:  a.value.IsLiteral(),
			Original: original,
		})
	}
	if !entry.Accepts(len(info.Positional)) {
		return c.errorf(errors.KindArgument, errors.E0301, n.Pos(), i18n.ErrBuiltinArguments, fn.Name(), entry.Usage()).
			WithSpan(len(n.String()))
	}
	if entry.Pure {
		info.Result = c.NewTemp()
	}

	text, err := entry.Gen(c, info)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return err
		}
		return errors.New(errors.KindExtension, errors.E0701, n.Pos(), err.Error()).WithSpan(len(fn.Name()))
	}
	if strings.TrimSpace(text) == "" {
		return c.errorf(errors.KindExtension, errors.E0701, n.Pos(), i18n.ErrExtensionCall, fn.Name()).
			WithSpan(len(fn.Name()))
	}
	c.out.Raw(text)

	if entry.Pure {
		c.push(temp(info.Result, fn.Return, n))
	} else {
		c.push(nullOperand(n))
	}
	return nil
}
