// Package compiler 把 AST 编译为 RA 代码
//
// Compiler 通过 Accept 双重分派遍历 AST，维护三个栈：
// 操作数栈（表达式求值结果）、处理中符号栈（最内层的类或函数）
// 以及与符号表层级对应的作用域种类栈。所有编译期错误都是致命的，
// 出现后立即中止整个编译。
package compiler

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/loader"
	"github.com/tangzhangming/kite/internal/parser"
	"github.com/tangzhangming/kite/internal/ra"
	"github.com/tangzhangming/kite/internal/symbol"
	"github.com/tangzhangming/kite/internal/token"
)

// Compiler 编译访问者
type Compiler struct {
	session *Session
	table   *symbol.Table
	out     *ra.Builder
	logger  *zap.Logger
	opts    Options

	operands   []*Operand
	processing []symbol.Symbol     // *symbol.Function 或 *symbol.Class
	scopes     []symbol.ScopeKind // 与符号表层级对应

	file     string
	source   string
	declared []symbol.Symbol // 前向声明，编译结束时必须都已定义
}

var _ ast.Visitor = (*Compiler)(nil)

// New 创建编译器
func New(session *Session, opts Options) *Compiler {
	return &Compiler{
		session: session,
		table:   session.Table,
		out:     ra.NewBuilder(opts.Annotate),
		logger:  session.Logger,
		opts:    opts,
		scopes:  []symbol.ScopeKind{symbol.ScopeGlobal},
	}
}

// NewTemp 分配临时变量（供内置函数回调使用）
func (c *Compiler) NewTemp() string {
	return c.session.NewTemp()
}

// ============================================================================
// 入口
// ============================================================================

// CompileSource 编译一段源代码，返回 RA 文本
//
// 词法错误与编译错误以 *errors.CompileError 返回；
// 语法错误以 multierr 合并返回，可用 parser.Diagnostics 拆开。
func CompileSource(source, filename string, opts Options) (string, error) {
	program, err := parser.ParseSource(source, filename)
	if err != nil {
		return "", err
	}
	return New(NewSession(opts), opts).Compile(program, source)
}

// CompileFile 编译源文件
func CompileFile(path string, opts Options) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if opts.Loader == nil {
		l, err := loader.ForFile(abs, loader.WithLogger(opts.Logger))
		if err != nil {
			return "", err
		}
		opts.Loader = l
	}
	source, err := opts.Loader.LoadFile(abs)
	if err != nil {
		return "", errors.New(errors.KindFileNotFound, errors.E0801, token.Position{},
			i18n.T(i18n.ErrFileNotFound, path))
	}
	return CompileSource(source, abs, opts)
}

// Compile 编译已解析的程序
func (c *Compiler) Compile(program *ast.Program, source string) (string, error) {
	c.logger.Debug("compile start", zap.String("file", program.Filename))
	if err := c.registerBuiltins(); err != nil {
		return "", err
	}
	if err := c.compileUnit(program, source); err != nil {
		return "", err
	}
	if err := c.checkDeclarations(); err != nil {
		return "", c.withSource(err)
	}
	c.logger.Debug("compile done",
		zap.String("file", program.Filename),
		zap.Int("temps", c.session.temps),
		zap.Int("labels", c.session.labels))
	return c.out.String(), nil
}

// compileUnit 编译一个文件；错误附带该文件的出错行
func (c *Compiler) compileUnit(program *ast.Program, source string) error {
	savedFile, savedSource := c.file, c.source
	c.file, c.source = program.Filename, source
	defer func() { c.file, c.source = savedFile, savedSource }()

	if program.Filename != "" {
		pop, err := c.session.Loader.Push(program.Filename)
		if err != nil {
			return err
		}
		defer pop()
		c.session.Loader.MarkLoaded(program.Filename)
	}

	if err := program.Accept(c); err != nil {
		return c.withSource(err)
	}
	return nil
}

func (c *Compiler) withSource(err error) error {
	if ce, ok := errors.As(err); ok && ce.SourceLine == "" && ce.File == c.file {
		ce.WithSource(c.source)
	}
	return err
}

// registerBuiltins 为每个内置函数登记占位函数符号，使调用按普通函数解析
func (c *Compiler) registerBuiltins() error {
	for _, name := range c.session.Builtins.Names() {
		entry, _ := c.session.Builtins.Lookup(name)
		fn := symbol.NewFunction(name, name, token.Position{})
		fn.Permission = symbol.PermBuiltin
		if entry.Pure {
			fn.BuiltinKind = symbol.BuiltinPure
			fn.Return = builtinReturn(entry.Return)
		} else {
			fn.BuiltinKind = symbol.BuiltinVoid
			fn.Return = symbol.Builtin(symbol.TypeNul)
		}
		if _, exists := c.table.FindByName(name, 0); exists {
			continue
		}
		if err := c.table.InsertGlobal(fn); err != nil {
			return err
		}
	}
	return nil
}

func builtinReturn(name string) *symbol.Label {
	if symbol.IsBuiltinType(name) {
		return symbol.Builtin(name)
	}
	return symbol.Builtin(symbol.TypeAny)
}

// checkDeclarations 前向声明必须在程序结束前定义
func (c *Compiler) checkDeclarations() error {
	for _, sym := range c.declared {
		switch s := sym.(type) {
		case *symbol.Function:
			if !s.Declared || s.Virtual {
				continue
			}
		case *symbol.Class:
			if !s.Declared {
				continue
			}
		}
		return c.errorf(errors.KindSemantic, errors.E0900, sym.Pos(),
			i18n.ErrDeclaredNotDefined, sym.Name()).WithSpan(len(sym.Name()))
	}
	return nil
}

// ============================================================================
// 辅助
// ============================================================================

func (c *Compiler) errorf(kind errors.Kind, code string, pos token.Position, msgID string, args ...interface{}) *errors.CompileError {
	return errors.New(kind, code, pos, i18n.T(msgID, args...))
}

func (c *Compiler) unsupported(n ast.Node) error {
	text := n.String()
	return c.errorf(errors.KindSemantic, errors.E0900, n.Pos(), i18n.ErrUnsupported, text).
		WithSpan(len(text))
}

func (c *Compiler) mismatch(pos token.Position, expected, found *symbol.Label) *errors.CompileError {
	return c.errorf(errors.KindTypeMismatch, errors.E0200, pos, i18n.ErrTypeMismatch, expected, found).
		WithInfo(i18n.T(i18n.InfoExpected, expected), i18n.T(i18n.InfoFound, found)).
		WithHint(i18n.T(i18n.HintConvertValue))
}

// enter 进入作用域，同时维护作用域种类栈
func (c *Compiler) enter(kind symbol.ScopeKind) (release func()) {
	exit := c.table.Enter(kind)
	depth := len(c.scopes)
	c.scopes = append(c.scopes, kind)
	return func() {
		exit()
		if len(c.scopes) > depth {
			c.scopes = c.scopes[:depth]
		}
	}
}

// process 把类或函数压入处理中符号栈
func (c *Compiler) process(sym symbol.Symbol) (done func()) {
	depth := len(c.processing)
	c.processing = append(c.processing, sym)
	return func() {
		if len(c.processing) > depth {
			c.processing = c.processing[:depth]
		}
	}
}

// currentFunction 最内层正在编译的函数
func (c *Compiler) currentFunction() *symbol.Function {
	for i := len(c.processing) - 1; i >= 0; i-- {
		if fn, ok := c.processing[i].(*symbol.Function); ok {
			return fn
		}
	}
	return nil
}

// currentClass 最内层正在编译的类
func (c *Compiler) currentClass() *symbol.Class {
	for i := len(c.processing) - 1; i >= 0; i-- {
		if cls, ok := c.processing[i].(*symbol.Class); ok {
			return cls
		}
	}
	return nil
}

// exec 编译语句，丢弃产生的操作数
func (c *Compiler) exec(n ast.Node) error {
	mark := len(c.operands)
	defer c.truncate(mark)
	return n.Accept(c)
}

// eval 编译表达式，返回其结果
func (c *Compiler) eval(n ast.Node) (*Operand, error) {
	mark := len(c.operands)
	if err := n.Accept(c); err != nil {
		c.truncate(mark)
		return nil, err
	}
	if len(c.operands) <= mark {
		return nil, c.unsupported(n)
	}
	o := c.pop()
	c.truncate(mark)
	return o, nil
}

// compileItems 依次编译语句
func (c *Compiler) compileItems(items []ast.Node) error {
	for _, item := range items {
		if c.out.Annotating() {
			c.out.Annotate("%s:%d %s", filepath.Base(c.file), item.Pos().Line, summary(item))
		}
		if err := c.exec(item); err != nil {
			return err
		}
	}
	return nil
}

// summary 注释中使用的节点摘要，带函数体的节点只保留头部
func summary(n ast.Node) string {
	s := n.String()
	if i := strings.IndexByte(s, '{'); i > 0 {
		switch n.(type) {
		case *ast.FunctionDefinition, *ast.ClassDefinition, *ast.ConstructorDefinition,
			*ast.ConditionalBranch, *ast.Loop:
			return strings.TrimSpace(s[:i]) + " {...}"
		}
	}
	return s
}

// move 把操作数的值写入 dst
func (c *Compiler) move(src *Operand, dst string) {
	if src.Raw == dst {
		return
	}
	if src.IsLiteral() {
		c.out.Emit(ra.OpPut, src.Raw, dst)
	} else {
		c.out.Emit(ra.OpCopy, src.Raw, dst)
	}
}

// materialize 把字面量放进临时变量（用作需要变量的指令操作数）
func (c *Compiler) materialize(o *Operand) *Operand {
	if !o.IsLiteral() {
		return o
	}
	t := c.NewTemp()
	c.out.Emit(ra.OpPut, o.Raw, t)
	return temp(t, o.Type, o.Node)
}

// ============================================================================
// 程序与代码块
// ============================================================================

func (c *Compiler) VisitProgram(n *ast.Program) error {
	return c.compileItems(n.Body)
}

func (c *Compiler) VisitBlock(n *ast.Block) error {
	release := c.enter(symbol.ScopeBlock)
	defer release()
	return c.compileItems(n.Items)
}

func (c *Compiler) VisitPass(n *ast.Pass) error {
	return nil
}

// VisitLabel 标签只出现在声明上，由声明自己处理
func (c *Compiler) VisitLabel(n *ast.Label) error {
	return c.unsupported(n)
}

// VisitParameter 形参由函数定义处理
func (c *Compiler) VisitParameter(n *ast.Parameter) error {
	return c.unsupported(n)
}

// ============================================================================
// 字面量
// ============================================================================

func (c *Compiler) VisitIntegerLiteral(n *ast.IntegerLiteral) error {
	c.push(literal(ra.Int(n.Value), symbol.TypeInt, n))
	return nil
}

func (c *Compiler) VisitFloatLiteral(n *ast.FloatLiteral) error {
	c.push(literal(ra.Float(n.Value), symbol.TypeFlt, n))
	return nil
}

func (c *Compiler) VisitStringLiteral(n *ast.StringLiteral) error {
	c.push(literal(ra.Str(n.Value), symbol.TypeStr, n))
	return nil
}

func (c *Compiler) VisitBoolLiteral(n *ast.BoolLiteral) error {
	c.push(literal(ra.Bool(n.Value), symbol.TypeBool, n))
	return nil
}

func (c *Compiler) VisitNullLiteral(n *ast.NullLiteral) error {
	c.push(nullOperand(n))
	return nil
}

// ============================================================================
// 标识符
// ============================================================================

func (c *Compiler) VisitIdentifier(n *ast.Identifier) error {
	if len(n.Labels) > 0 {
		return c.unsupported(n)
	}
	sym, err := c.table.Lookup(n.Name, n.Pos())
	if err != nil {
		if o, ok := c.implicitMember(n); ok {
			c.push(o)
			return nil
		}
		return err
	}
	if _, isLabel := sym.(*symbol.LabelSymbol); isLabel {
		return c.unsupported(n)
	}
	c.push(operandOf(sym, n))
	return nil
}

func (c *Compiler) VisitThis(n *ast.This) error {
	sym, ok := c.table.FindInFunction("this")
	if !ok {
		return c.errorf(errors.KindSemantic, errors.E0405, n.Pos(), i18n.ErrThisOutside).WithSpan(4)
	}
	o := operandOf(sym, n)
	o.Surface = "this"
	c.push(o)
	return nil
}
