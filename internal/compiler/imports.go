package compiler

import (
	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/parser"
)

// VisitImport 在全局作用域编译被导入的文件，每个文件只编译一次
func (c *Compiler) VisitImport(n *ast.Import) error {
	if c.table.Level() != 0 {
		return c.unsupported(n)
	}
	ldr := c.session.Loader
	path := n.Path.Value

	resolved, err := ldr.Resolve(path, c.file)
	if err != nil {
		return c.errorf(errors.KindFileNotFound, errors.E0801, n.Path.Pos(), i18n.ErrFileNotFound, path).
			WithSpan(len(n.Path.String()))
	}
	if ldr.OnStack(resolved) {
		return c.errorf(errors.KindRecursiveImport, errors.E0800, n.Path.Pos(), i18n.ErrRecursiveImport, path).
			WithSpan(len(n.Path.String())).
			WithInfo(i18n.T(i18n.InfoImportChain, ldr.Chain(resolved))).
			WithHint(i18n.T(i18n.HintBreakImport))
	}
	if ldr.IsLoaded(resolved) {
		c.logger.Debug("import skipped", zap.String("file", resolved))
		return nil
	}

	source, err := ldr.LoadFile(resolved)
	if err != nil {
		return c.errorf(errors.KindFileNotFound, errors.E0801, n.Path.Pos(), i18n.ErrFileNotFound, path).
			WithSpan(len(n.Path.String()))
	}
	program, err := parser.ParseSource(source, resolved)
	if err != nil {
		return err
	}
	c.logger.Debug("import", zap.String("file", resolved), zap.Int("depth", ldr.Depth()))
	return c.compileUnit(program, source)
}
