// Package builtin 内置函数分派表
//
// 内置函数在编译期展开：编译器按普通函数解析调用、检查实参个数，
// 然后把代码生成交给这里登记的回调，回调返回的 RA 文本原样拼接进输出。
package builtin

import (
	"fmt"
	"sort"

	"github.com/tangzhangming/kite/internal/token"
)

// Compiler 回调可以使用的编译器能力
type Compiler interface {
	NewTemp() string // 分配一个新的临时变量
}

// Arg 一个实参操作数
type Arg struct {
	Name     string // 关键字实参名，位置实参为空
	Raw      string // raw id 或字面量
	Type     string // 类型名
	Literal  bool
	Original string // 源代码文本
}

// CallInfo 一次内置函数调用的信息
//
// Positional 与 Keyword 按种类拆开实参，Ordered 保留源代码中的书写顺序。
// Args、Original 与 Positional 一一对应。
type CallInfo struct {
	Name       string
	Args       []string // 位置实参（raw id 或字面量）
	Original   []string // 位置实参的源代码文本
	Positional []Arg
	Keyword    map[string]Arg
	Ordered    []Arg
	Result     string // 结果临时变量，只有纯内置函数才有
	Pos        token.Position
}

// Add 按书写顺序追加一个实参
func (c *CallInfo) Add(a Arg) {
	c.Ordered = append(c.Ordered, a)
	if a.Name != "" {
		if c.Keyword == nil {
			c.Keyword = make(map[string]Arg)
		}
		c.Keyword[a.Name] = a
		return
	}
	c.Positional = append(c.Positional, a)
	c.Args = append(c.Args, a.Raw)
	c.Original = append(c.Original, a.Original)
}

// Generator 代码生成回调
type Generator func(c Compiler, call *CallInfo) (string, error)

// Variadic 不限制实参个数
const Variadic = -1

// AnyKeyword 放进 Entry.Keywords 表示接受任意关键字实参
const AnyKeyword = "*"

// Entry 一个内置函数
type Entry struct {
	Name    string
	Pure    bool   // 是否产生值
	MinArgs int    // 最少实参个数
	MaxArgs int    // 最多实参个数，Variadic 表示不限
	Return  string // 返回类型名，纯内置函数才有意义
	// Keywords 接受的关键字实参名，为空时不接受关键字实参。
	// 实参个数的限制只针对位置实参。
	Keywords []string
	Gen      Generator
}

// Usage 描述实参个数要求（用于错误消息）
func (e *Entry) Usage() string {
	switch {
	case e.MaxArgs == Variadic:
		return fmt.Sprintf("at least %d argument(s)", e.MinArgs)
	case e.MinArgs == e.MaxArgs:
		return fmt.Sprintf("%d argument(s)", e.MinArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", e.MinArgs, e.MaxArgs)
	}
}

// Accepts 实参个数是否满足要求
func (e *Entry) Accepts(n int) bool {
	return n >= e.MinArgs && (e.MaxArgs == Variadic || n <= e.MaxArgs)
}

// AcceptsKeyword 是否接受名为 name 的关键字实参
func (e *Entry) AcceptsKeyword(name string) bool {
	for _, k := range e.Keywords {
		if k == name || k == AnyKeyword {
			return true
		}
	}
	return false
}

// Registry 名字到内置函数的映射
type Registry struct {
	entries map[string]*Entry
}

// NewRegistry 创建空的分派表
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register 登记内置函数，重名时报错
func (r *Registry) Register(e *Entry) error {
	if e.Name == "" || e.Gen == nil {
		return fmt.Errorf("builtin: incomplete entry %q", e.Name)
	}
	if _, ok := r.entries[e.Name]; ok {
		return fmt.Errorf("builtin: %q is already registered", e.Name)
	}
	r.entries[e.Name] = e
	return nil
}

// Lookup 按名字查找
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names 按字母序返回全部名字
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone 复制一份分派表，扩展函数登记在副本上，不影响共享的默认表
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	for name, e := range r.entries {
		c.entries[name] = e
	}
	return c
}
