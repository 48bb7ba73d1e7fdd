package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/tangzhangming/kite/internal/token"
)

// ============================================================================
// 编译错误
// ============================================================================

// CompileError 编译错误
//
// 词法错误与编译期错误都是致命的：一旦产生就终止整个编译单元。
// 语法分析阶段的诊断走 parser.Error，不使用这个类型。
type CompileError struct {
	Kind       Kind     // 错误类别（决定标题）
	Code       string   // 错误码 (E0200)
	Level      Level    // 错误级别
	Message    string   // 主消息
	File       string   // 文件路径
	Line       int      // 行号
	Column     int      // 列号
	EndColumn  int      // 结束列
	SourceLine string   // 出错行源代码
	Infos      []string // 附加信息行
	Hints      []string // 修复建议
}

// Error 实现 error 接口
func (e *CompileError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Pos 返回错误位置
func (e *CompileError) Pos() token.Position {
	return token.Position{Filename: e.File, Line: e.Line, Column: e.Column}
}

// New 创建编译错误
func New(kind Kind, code string, pos token.Position, message string) *CompileError {
	return &CompileError{
		Kind:    kind,
		Code:    code,
		Level:   LevelError,
		Message: message,
		File:    pos.Filename,
		Line:    pos.Line,
		Column:  pos.Column,
	}
}

// Newf 创建编译错误（格式化消息）
func Newf(kind Kind, code string, pos token.Position, format string, args ...interface{}) *CompileError {
	return New(kind, code, pos, fmt.Sprintf(format, args...))
}

// WithInfo 追加信息行（忽略空串）
func (e *CompileError) WithInfo(lines ...string) *CompileError {
	e.Infos = appendNonEmpty(e.Infos, lines)
	return e
}

// WithHint 追加修复建议（忽略空串）
func (e *CompileError) WithHint(hints ...string) *CompileError {
	e.Hints = appendNonEmpty(e.Hints, hints)
	return e
}

func appendNonEmpty(dst, src []string) []string {
	for _, s := range src {
		if s != "" {
			dst = append(dst, s)
		}
	}
	return dst
}

// WithSpan 设置标注长度
func (e *CompileError) WithSpan(length int) *CompileError {
	if length > 0 {
		e.EndColumn = e.Column + length
	}
	return e
}

// WithSource 从源代码中提取出错行
func (e *CompileError) WithSource(source string) *CompileError {
	e.SourceLine = LineOf(source, e.Line)
	return e
}

// LineOf 返回源代码的第 line 行（1-based），不存在时返回空串
func LineOf(source string, line int) string {
	if line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// ============================================================================
// 辅助函数
// ============================================================================

// As 提取错误链中的 CompileError
func As(err error) (*CompileError, bool) {
	var ce *CompileError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind 判断错误是否为指定类别
func IsKind(err error, kind Kind) bool {
	ce, ok := As(err)
	return ok && ce.Kind == kind
}
