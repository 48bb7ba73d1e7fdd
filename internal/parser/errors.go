package parser

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/token"
)

// ErrorKind 语法分析错误的种类
type ErrorKind int

const (
	ErrSyntax          ErrorKind = iota // 一般语法错误
	ErrUnexpectedToken                  // 意外的 token 类型
	ErrBuilderNotFound                  // 找不到 prefix / infix builder
	ErrUnclosed                         // 未闭合的表达式
)

var kindCodes = map[ErrorKind]string{
	ErrSyntax:          errors.E0001,
	ErrUnexpectedToken: errors.E0010,
	ErrBuilderNotFound: errors.E0011,
	ErrUnclosed:        errors.E0012,
}

// Error 语法分析错误
//
// 语法分析错误不会中断解析，而是累积到 Parser 的错误列表中。
type Error struct {
	Kind    ErrorKind
	Pos     token.Position
	Length  int
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Code 返回错误码
func (e Error) Code() string {
	return kindCodes[e.Kind]
}

// CompileError 转换为可格式化输出的诊断
func (e Error) CompileError(source string) *errors.CompileError {
	ce := errors.New(errors.KindParser, e.Code(), e.Pos, e.Message).WithSpan(e.Length)
	if source != "" {
		ce.WithSource(source)
	}
	return ce
}

// combine 把错误列表合并为一个 error
func combine(errs []Error) error {
	var err error
	for _, e := range errs {
		err = multierr.Append(err, e)
	}
	return err
}

// Diagnostics 把合并后的 error 拆回语法错误列表
func Diagnostics(err error) []Error {
	var out []Error
	for _, e := range multierr.Errors(err) {
		if pe, ok := e.(Error); ok {
			out = append(out, pe)
		}
	}
	return out
}
