package compiler

import (
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/parser"
)

// Diagnostics 把编译返回的错误展开为诊断列表
//
// 语法错误可能有多个；编译错误只有一个；其它错误（如 I/O）返回 nil。
// source 是 filename 的内容，只用于补全该文件中的出错行。
func Diagnostics(err error, filename, source string) []*errors.CompileError {
	if err == nil {
		return nil
	}
	if list := parser.Diagnostics(err); len(list) > 0 {
		out := make([]*errors.CompileError, 0, len(list))
		for _, pe := range list {
			text := ""
			if pe.Pos.Filename == filename {
				text = source
			}
			out = append(out, pe.CompileError(text))
		}
		return out
	}
	if ce, ok := errors.As(err); ok {
		if ce.SourceLine == "" && ce.File == filename && source != "" {
			ce.WithSource(source)
		}
		return []*errors.CompileError{ce}
	}
	return nil
}

// Report 通过 Reporter 输出编译返回的错误
func Report(r *errors.Reporter, err error, filename, source string) {
	diags := Diagnostics(err, filename, source)
	if len(diags) == 0 {
		r.Report(err)
		return
	}
	for _, d := range diags {
		r.ReportError(d)
	}
}
