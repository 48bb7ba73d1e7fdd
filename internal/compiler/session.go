package compiler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/builtin"
	"github.com/tangzhangming/kite/internal/loader"
	"github.com/tangzhangming/kite/internal/symbol"
)

// Options 编译选项
type Options struct {
	Annotate bool              // 在输出中附带源代码注释
	Logger   *zap.Logger       // 为 nil 时不输出日志
	Builtins *builtin.Registry // 为 nil 时使用默认内置函数
	Loader   *loader.Loader    // 为 nil 时按入口文件创建
}

// Session 一次编译调用的全部状态
//
// 计数器与类型注册表在一次调用内单调递增、全局唯一；
// 新的调用必须使用新的 Session。
type Session struct {
	Table    *symbol.Table
	Builtins *builtin.Registry
	Loader   *loader.Loader
	Logger   *zap.Logger

	rids   int
	temps  int
	labels int
}

// NewSession 创建会话
func NewSession(opts Options) *Session {
	s := &Session{
		Table:    symbol.NewTable(),
		Builtins: opts.Builtins,
		Loader:   opts.Loader,
		Logger:   opts.Logger,
	}
	if s.Builtins == nil {
		s.Builtins = builtin.Default()
	}
	if s.Loader == nil {
		s.Loader = loader.New(loader.WithLogger(opts.Logger))
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return s
}

// RID 为名字分配 raw id：name_N
func (s *Session) RID(name string) string {
	rid := fmt.Sprintf("%s_%d", name, s.rids)
	s.rids++
	return rid
}

// FunctionRID 函数的 raw id：f_name_N，方法为 f_Class_name_N
func (s *Session) FunctionRID(owner *symbol.Class, name string) string {
	if owner != nil {
		return s.RID("f_" + owner.Name() + "_" + name)
	}
	return s.RID("f_" + name)
}

// ClassRID 类的 raw id：T_name_N
func (s *Session) ClassRID(name string) string {
	return s.RID("T_" + name)
}

// NewTemp 分配临时变量 %tN
func (s *Session) NewTemp() string {
	t := fmt.Sprintf("%%t%d", s.temps)
	s.temps++
	return t
}

// NewLabel 分配跳转标签 %LN
func (s *Session) NewLabel() string {
	l := fmt.Sprintf("%%L%d", s.labels)
	s.labels++
	return l
}
