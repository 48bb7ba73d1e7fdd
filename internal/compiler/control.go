package compiler

import (
	"github.com/tangzhangming/kite/internal/ast"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/ra"
	"github.com/tangzhangming/kite/internal/symbol"
)

// 循环出口在符号表中的名字，都是关键字，不会与用户符号冲突
const (
	breakLabel    = "break"
	continueLabel = "continue"
)

// ============================================================================
// 条件分支
// ============================================================================

// VisitConditionalBranch if / elif / else 链
//
// 结束标签作为操作数压栈，每个 Condition 从栈顶取得它，
// 所以整条链只有一个结束标签。
//
//	JF: c1, %L1        ; if
//	...
//	JMP: %L0
//	SET: %L1
//	JF: c2, %L2        ; elif
//	...
//	JMP: %L0
//	SET: %L2
//	...                ; else
//	SET: %L0
func (c *Compiler) VisitConditionalBranch(n *ast.ConditionalBranch) error {
	end := c.session.NewLabel()
	mark := len(c.operands)
	c.push(&Operand{Kind: OperandLabel, Surface: end, Raw: end, Type: symbol.Builtin(symbol.TypeNul), Node: n})
	defer c.truncate(mark)

	for _, branch := range n.Branches {
		if err := branch.Accept(c); err != nil {
			return err
		}
	}
	if n.Else != nil {
		if err := n.Else.Accept(c); err != nil {
			return err
		}
	}
	c.out.Emit(ra.OpSet, end)
	return nil
}

func (c *Compiler) VisitCondition(n *ast.Condition) error {
	end, ok := c.endLabel()
	if !ok {
		return c.unsupported(n)
	}
	test, err := c.eval(n.Test)
	if err != nil {
		return err
	}
	test = c.materialize(test)

	skip := c.session.NewLabel()
	c.out.Emit(ra.OpJf, test.Raw, skip)
	if err := n.Body.Accept(c); err != nil {
		return err
	}
	c.out.Emit(ra.OpJmp, end)
	c.out.Emit(ra.OpSet, skip)
	return nil
}

// endLabel 栈顶的条件链结束标签
func (c *Compiler) endLabel() (string, bool) {
	if len(c.operands) == 0 {
		return "", false
	}
	top := c.operands[len(c.operands)-1]
	if top.Kind != OperandLabel {
		return "", false
	}
	return top.Raw, true
}

// ============================================================================
// 循环
// ============================================================================

// VisitLoop while / for 循环
//
//	[init]
//	UNTIL: %Lcond, %Lend
//	SET: %Lcond
//	JF: c, %Lend
//	body
//	[SET: %Lnext
//	 update]
//	JMP: %Lcond
//	SET: %Lend
//	END
func (c *Compiler) VisitLoop(n *ast.Loop) error {
	release := c.enter(symbol.ScopeLoop)
	defer release()

	if n.Init != nil {
		if err := c.exec(n.Init); err != nil {
			return err
		}
	}

	cond, end := c.session.NewLabel(), c.session.NewLabel()
	next := cond
	if n.Update != nil {
		next = c.session.NewLabel()
	}
	if err := c.table.Insert(symbol.NewLabelSymbol(breakLabel, end, n.Pos())); err != nil {
		return err
	}
	if err := c.table.Insert(symbol.NewLabelSymbol(continueLabel, next, n.Pos())); err != nil {
		return err
	}

	c.out.Emit(ra.OpUntil, cond, end)
	c.out.Emit(ra.OpSet, cond)
	if n.Test != nil {
		test, err := c.eval(n.Test)
		if err != nil {
			return err
		}
		test = c.materialize(test)
		c.out.Emit(ra.OpJf, test.Raw, end)
	}
	if err := n.Body.Accept(c); err != nil {
		return err
	}
	if n.Update != nil {
		c.out.Emit(ra.OpSet, next)
		if err := c.exec(n.Update); err != nil {
			return err
		}
	}
	c.out.Emit(ra.OpJmp, cond)
	c.out.Emit(ra.OpSet, end)
	c.out.Emit(ra.OpEnd)
	return nil
}

// loopTarget 当前函数内最近一层循环的出口标签
func (c *Compiler) loopTarget(name string) (string, bool) {
	sym, ok := c.table.FindInFunction(name)
	if !ok {
		return "", false
	}
	if _, isLabel := sym.(*symbol.LabelSymbol); !isLabel {
		return "", false
	}
	return sym.RID(), true
}

func (c *Compiler) VisitBreak(n *ast.Break) error {
	if _, ok := c.loopTarget(breakLabel); !ok {
		return c.errorf(errors.KindSemantic, errors.E0304, n.Pos(), i18n.ErrBreakOutside).WithSpan(len("break"))
	}
	c.out.Emit(ra.OpExit)
	return nil
}

func (c *Compiler) VisitContinue(n *ast.Continue) error {
	target, ok := c.loopTarget(continueLabel)
	if !ok {
		return c.errorf(errors.KindSemantic, errors.E0304, n.Pos(), i18n.ErrContinueOutside).WithSpan(len("continue"))
	}
	c.out.Emit(ra.OpJmp, target)
	return nil
}
