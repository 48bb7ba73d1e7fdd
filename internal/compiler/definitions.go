package compiler

import (
	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/ra"
	"github.com/tangzhangming/kite/internal/symbol"
	"github.com/tangzhangming/kite/internal/token"
)

// ============================================================================
// 变量
// ============================================================================

func (c *Compiler) VisitVariableDefinition(n *ast.VariableDefinition) error {
	for i, name := range n.Names {
		if err := c.defineVariable(name, n.Values[i]); err != nil {
			return err
		}
	}
	return nil
}

// defineVariable 先求初始值再插入符号，var x = x 中右边的 x 指向外层
func (c *Compiler) defineVariable(name *ast.Identifier, init ast.Node) error {
	marks, err := c.collectMarks(name.Labels)
	if err != nil {
		return err
	}
	if err := marks.Admit("variable '"+name.Name+"'", variableMarks...); err != nil {
		return err
	}
	typ := typeOr(marks, symbol.TypeAny)

	var value *Operand
	if init != nil {
		if value, err = c.eval(init); err != nil {
			return err
		}
		if !symbol.Assignable(c.table, typ, value.Effective()) {
			return c.mismatch(init.Pos(), typ, value.Effective()).WithSpan(len(init.String()))
		}
	} else if marks.IsConst() {
		return c.errorf(errors.KindSemantic, errors.E0900, name.Pos(), i18n.ErrConstWithoutValue, name.Name).
			WithSpan(len(name.Name))
	}

	v := symbol.NewVariable(name.Name, c.session.RID(name.Name), name.Pos())
	v.Type = typ
	v.Const = marks.IsConst()
	v.Global = marks.LifeCycle() == symbol.LifeGlobal
	if v.Global {
		err = c.table.InsertGlobal(v)
	} else {
		err = c.table.Insert(v)
	}
	if err != nil {
		return err
	}

	c.out.Emit(ra.OpAllot, v.RID())
	if value != nil {
		c.move(value, v.RID())
		v.Ref = value.Ref
		if typ.IsAny() {
			v.Value = value.Effective()
		}
	}
	return nil
}

// ============================================================================
// 函数签名
// ============================================================================

// isLiteral 参数默认值允许的形式：字面量或取负的数字字面量
func isLiteral(n ast.Node) bool {
	switch v := n.(type) {
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NullLiteral:
		return true
	case *ast.Unary:
		if v.Operator.Type != token.MINUS {
			return false
		}
		switch v.Operand.(type) {
		case *ast.IntegerLiteral, *ast.FloatLiteral:
			return true
		}
	}
	return false
}

// buildParams 创建形参符号（不插入符号表）
func (c *Compiler) buildParams(params []*ast.Parameter) ([]*symbol.Parameter, error) {
	out := make([]*symbol.Parameter, 0, len(params))
	for _, p := range params {
		name := p.Name
		marks, err := c.collectMarks(name.Labels)
		if err != nil {
			return nil, err
		}
		if err := marks.Admit("parameter '"+name.Name+"'", parameterMarks...); err != nil {
			return nil, err
		}

		sym := symbol.NewParameter(name.Name, c.session.RID(name.Name), p.Kind, name.Pos())
		sym.Quote = marks.IsQuote()
		switch p.Kind {
		case ast.ParamVarPositional:
			sym.Type = symbol.Builtin(symbol.TypeList)
		case ast.ParamVarKeyword:
			sym.Type = symbol.Builtin(symbol.TypeDict)
		default:
			sym.Type = typeOr(marks, symbol.TypeAny)
		}
		if t := marks.Type(); t != nil && !symbol.CheckTypeMatch(sym.Type, t) {
			return nil, c.mismatch(t.Pos, sym.Type, t).WithSpan(len(t.Name))
		}

		if p.Default != nil {
			if !isLiteral(p.Default) {
				return nil, c.errorf(errors.KindSemantic, errors.E0900, p.Default.Pos(), i18n.ErrDefaultNotLiteral, name.Name).
					WithSpan(len(p.Default.String()))
			}
			def, err := c.eval(p.Default)
			if err != nil {
				return nil, err
			}
			if !symbol.Assignable(c.table, sym.Type, def.Type) {
				return nil, c.mismatch(p.Default.Pos(), sym.Type, def.Type).WithSpan(len(p.Default.String()))
			}
			sym.Default = p.Default
		}
		out = append(out, sym)
	}
	return out, nil
}

// newFunction 由函数头创建函数符号
func (c *Compiler) newFunction(name *ast.Identifier, owner *symbol.Class, params []*ast.Parameter,
	labels []*ast.Label, allowed []string) (*symbol.Function, *symbol.MarkManager, error) {
	marks, err := c.collectMarks(labels)
	if err != nil {
		return nil, nil, err
	}
	if err := marks.Admit("function '"+name.Name+"'", allowed...); err != nil {
		return nil, nil, err
	}
	syms, err := c.buildParams(params)
	if err != nil {
		return nil, nil, err
	}

	fn := symbol.NewFunction(name.Name, c.session.FunctionRID(owner, name.Name), name.Pos())
	fn.Params = syms
	fn.Return = typeOr(marks, symbol.TypeAny)
	fn.Owner = owner
	if owner != nil {
		fn.FuncKind = symbol.FuncMethod
	}
	return fn, marks, nil
}

// sameSignature 定义与声明的参数个数、参数类型、返回类型一致
func sameSignature(decl, def *symbol.Function) bool {
	if len(decl.Params) != len(def.Params) || !symbol.Equal(decl.Return, def.Return) {
		return false
	}
	for i, p := range decl.Params {
		if p.ParamKind != def.Params[i].ParamKind || !symbol.Equal(p.Type, def.Params[i].Type) {
			return false
		}
	}
	return true
}

// fulfil 用定义补全先前的声明，返回最终使用的符号
func (c *Compiler) fulfil(decl, def *symbol.Function) (*symbol.Function, error) {
	if !sameSignature(decl, def) {
		return nil, c.errorf(errors.KindSemantic, errors.E0900, def.Pos(), i18n.ErrDeclarationMismatch, def.Name()).
			WithSpan(len(def.Name())).
			WithInfo(
				i18n.T(i18n.InfoDeclaredAt, decl.Name(), decl.Pos()),
				i18n.T(i18n.InfoExpected, describeFunction(decl)),
				i18n.T(i18n.InfoFound, describeFunction(def)))
	}
	decl.Params = def.Params
	decl.Declared = false
	return decl, nil
}

// ============================================================================
// 函数定义
// ============================================================================

func (c *Compiler) VisitFunctionDeclaration(n *ast.FunctionDeclaration) error {
	fn, _, err := c.newFunction(n.Name, nil, n.Params, n.Labels, functionMarks)
	if err != nil {
		return err
	}
	fn.Declared = true
	if err := c.table.Insert(fn); err != nil {
		return err
	}
	c.declared = append(c.declared, fn)
	return nil
}

func (c *Compiler) VisitFunctionDefinition(n *ast.FunctionDefinition) error {
	fn, _, err := c.newFunction(n.Name, nil, n.Params, n.Labels, functionMarks)
	if err != nil {
		return err
	}

	if c.table.CurrentScopeContains(n.Name.Name) {
		old, _ := c.table.FindByName(n.Name.Name)
		if decl, ok := old.(*symbol.Function); ok && decl.Declared {
			if fn, err = c.fulfil(decl, fn); err != nil {
				return err
			}
		} else if err := c.table.Insert(fn); err != nil {
			return err
		}
	} else if err := c.table.Insert(fn); err != nil {
		return err
	}
	return c.compileFunctionBody(fn, n.Body, nil)
}

func (c *Compiler) VisitAnonymousFunction(n *ast.AnonymousFunction) error {
	marks, err := c.collectMarks(n.Labels)
	if err != nil {
		return err
	}
	if err := marks.Admit("anonymous function", functionMarks...); err != nil {
		return err
	}
	params, err := c.buildParams(n.Params)
	if err != nil {
		return err
	}
	fn := symbol.NewFunction("lambda", c.session.FunctionRID(nil, "lambda"), n.Pos())
	fn.FuncKind = symbol.FuncAnonymous
	fn.Params = params
	fn.Return = typeOr(marks, symbol.TypeAny)

	if err := c.compileFunctionBody(fn, n.Body, nil); err != nil {
		return err
	}
	c.push(operandOf(fn, n))
	return nil
}

// VisitConstructorDefinition 构造函数由类定义处理
func (c *Compiler) VisitConstructorDefinition(n *ast.ConstructorDefinition) error {
	return c.unsupported(n)
}

// compileFunctionBody 编译函数体并输出 FUNC/FUNI … END
//
// 函数体先写入独立的缓冲区，前导（构造函数的字段初始化）在函数体之前，
// 收尾（隐式 return）在之后。
func (c *Compiler) compileFunctionBody(fn *symbol.Function, body *ast.Block, prelude func() error) error {
	release := c.enter(symbol.ScopeFunction)
	defer release()
	done := c.process(fn)
	defer done()

	var params []string
	if fn.IsMethod() || fn.FuncKind == symbol.FuncConstructor {
		this := symbol.NewVariable("this", c.session.RID("this"), fn.Pos())
		this.Type = symbol.Custom(fn.Owner)
		this.Const = true
		if err := c.table.Insert(this); err != nil {
			return err
		}
		params = append(params, this.RID())
	}
	for _, p := range fn.Params {
		if err := c.table.Insert(p); err != nil {
			return err
		}
		params = append(params, p.RID())
	}

	text, err := c.out.Scoped(func() error {
		if prelude != nil {
			if err := prelude(); err != nil {
				return err
			}
		}
		if err := c.compileItems(body.Items); err != nil {
			return err
		}
		return c.epilogue(fn, body)
	})
	if err != nil {
		return err
	}

	op := ra.OpFunc
	if fn.ReturnsValue() {
		op = ra.OpFuni
	}
	c.out.Emit(op, append([]string{fn.RID()}, params...)...)
	c.out.Raw(text)
	c.out.Emit(ra.OpEnd)
	return nil
}

// epilogue 函数末尾的隐式返回
func (c *Compiler) epilogue(fn *symbol.Function, body *ast.Block) error {
	switch {
	case fn.FuncKind == symbol.FuncConstructor:
		this, _ := c.table.FindInFunction("this")
		c.out.Emit(ra.OpRet, this.RID())
	case fn.Returned:
	case fn.Return.IsAny():
		c.out.Emit(ra.OpRet, ra.Null)
	case fn.Return.Is(symbol.TypeNul):
	default:
		return c.errorf(errors.KindTypeMismatch, errors.E0203, body.End(), i18n.ErrMissingReturn, fn.Name(), fn.Return).
			WithInfo(i18n.T(i18n.InfoDeclaredAt, fn.Name(), fn.Pos())).
			WithHint(i18n.T(i18n.HintAddReturn))
	}
	return nil
}

func (c *Compiler) VisitReturn(n *ast.Return) error {
	fn := c.currentFunction()
	if fn == nil || c.table.FunctionBoundary() == 0 {
		return c.errorf(errors.KindSemantic, errors.E0305, n.Pos(), i18n.ErrReturnOutside).WithSpan(len("return"))
	}
	fn.Returned = true

	if n.Value == nil {
		switch {
		case fn.FuncKind == symbol.FuncConstructor:
			this, _ := c.table.FindInFunction("this")
			c.out.Emit(ra.OpRet, this.RID())
		case fn.Return.Is(symbol.TypeNul):
			c.out.Emit(ra.OpRet)
		case fn.Return.IsAny():
			c.out.Emit(ra.OpRet, ra.Null)
		default:
			return c.errorf(errors.KindTypeMismatch, errors.E0200, n.Pos(), i18n.ErrReturnMismatch,
				fn.Name(), fn.Return, symbol.TypeNul).WithSpan(len("return"))
		}
		return nil
	}

	if fn.FuncKind == symbol.FuncConstructor {
		return c.errorf(errors.KindSemantic, errors.E0900, n.Value.Pos(), i18n.ErrConstructorReturn).
			WithSpan(len(n.Value.String()))
	}
	value, err := c.eval(n.Value)
	if err != nil {
		return err
	}
	if fn.Return.Is(symbol.TypeNul) || !symbol.Assignable(c.table, fn.Return, value.Effective()) {
		return c.errorf(errors.KindTypeMismatch, errors.E0200, n.Value.Pos(), i18n.ErrReturnMismatch,
			fn.Name(), fn.Return, value.Effective()).
			WithSpan(len(n.Value.String())).
			WithInfo(i18n.T(i18n.InfoDeclaredAt, fn.Name(), fn.Pos()))
	}
	c.out.Emit(ra.OpRet, value.Raw)
	return nil
}
