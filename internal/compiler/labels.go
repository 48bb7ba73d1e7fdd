package compiler

import (
	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/symbol"
)

// convertLabel 把语法标签转换为符号标签
//
// 类名标签解析为指向该类的自定义类型；描述组中只能出现类型标签。
func (c *Compiler) convertLabel(l *ast.Label) (*symbol.Label, error) {
	kind, ok := symbol.LabelKindOf(l.Token.Type)
	if !ok {
		return nil, c.unsupported(l)
	}

	if l.IsClassName() {
		sym, err := c.table.Lookup(l.Name, l.Pos())
		if err != nil {
			return nil, err
		}
		cls, ok := sym.(*symbol.Class)
		if !ok {
			return nil, c.errorf(errors.KindTypeMismatch, errors.E0200, l.Pos(), i18n.ErrNotAClass, l.Name).
				WithSpan(len(l.Name)).
				WithInfo(i18n.T(i18n.InfoDeclaredAt, l.Name, sym.Pos()))
		}
		label := symbol.Custom(cls)
		label.Pos = l.Pos()
		return label, nil
	}

	label := &symbol.Label{Kind: kind, Name: l.Name, Pos: l.Pos()}
	for _, group := range l.Groups {
		converted := make([]*symbol.Label, 0, len(group))
		for _, g := range group {
			inner, err := c.convertLabel(g)
			if err != nil {
				return nil, err
			}
			if inner.Kind != symbol.LabelType {
				return nil, c.errorf(errors.KindSemantic, errors.E0900, g.Pos(), i18n.ErrLabelNotAdmitted, g.Name, l.Name).
					WithSpan(len(g.Name))
			}
			converted = append(converted, inner)
		}
		label.Groups = append(label.Groups, converted)
	}
	return label, nil
}

// collectMarks 转换并收集一组标签
func (c *Compiler) collectMarks(labels []*ast.Label) (*symbol.MarkManager, error) {
	marks := symbol.NewMarkManager()
	for _, l := range labels {
		label, err := c.convertLabel(l)
		if err != nil {
			return nil, err
		}
		if err := marks.Add(label); err != nil {
			return nil, err
		}
	}
	return marks, nil
}

// typeOr 声明的类型标签，未标注时为 fallback
func typeOr(marks *symbol.MarkManager, fallback string) *symbol.Label {
	if t := marks.Type(); t != nil {
		return t
	}
	return symbol.Builtin(fallback)
}

// 各类声明允许的标签
var (
	variableMarks    = []string{"type", "global", "const"}
	parameterMarks   = []string{"type", "quote"}
	functionMarks    = []string{"type"}
	classMarks       = []string{"type", "private", "protected", "public"}
	fieldMarks       = []string{"type", "private", "protected", "public", "static", "instance", "const"}
	methodMarks      = []string{"type", "private", "protected", "public", "static", "instance", "overwrite", "virtual", "interface"}
	constructorMarks = []string{"private", "protected", "public"}
)
