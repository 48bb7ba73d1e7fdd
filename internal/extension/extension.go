// Package extension 加载原生扩展库，把它导出的函数登记为内置函数
//
// 扩展库是普通的动态库（.so / .dylib），导出四个入口：
//
//	bool                kite_ext_load(kite_compiler* iface);
//	void                kite_ext_unload(void);
//	kite_ext_function*  kite_ext_functions(int32_t* count);
//	void                kite_ext_free_functions(kite_ext_function* list, int32_t count);
//
// 每个导出函数的签名为
//
//	const char* fn(kite_compiler* iface, int32_t argc,
//	               const char** raw, const char** original,
//	               int32_t line, int32_t column);
//
// 返回的字符串归扩展所有，只需在下一次调用前保持有效；编译器立即复制它。
// 返回空串或 NULL 表示调用失败。结构体布局见 abi.go。
package extension

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/builtin"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/i18n"
	"github.com/tangzhangming/kite/internal/token"
)

// 扩展库必须导出的符号
const (
	SymbolLoad          = "kite_ext_load"
	SymbolUnload        = "kite_ext_unload"
	SymbolFunctions     = "kite_ext_functions"
	SymbolFreeFunctions = "kite_ext_free_functions"
)

// Extension 一个已加载的扩展库
type Extension struct {
	path    string
	lib     library
	logger  *zap.Logger
	entries []*builtin.Entry
}

// Option 加载选项
type Option func(*Extension)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extension) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Open 加载扩展库，调用 kite_ext_load 并读取导出函数表
func Open(path string, opts ...Option) (*Extension, error) {
	lib, err := openLibrary(path)
	if err != nil {
		return nil, loadError(path, err)
	}
	return attach(path, lib, opts...)
}

// attach 初始化已打开的库
func attach(path string, lib library, opts ...Option) (*Extension, error) {
	e := &Extension{path: path, lib: lib, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	if !lib.load() {
		return nil, multierr.Append(loadError(path, fmt.Errorf("%s returned false", SymbolLoad)), lib.close())
	}

	funcs, err := lib.functions()
	if err != nil {
		lib.unload()
		return nil, multierr.Append(loadError(path, err), lib.close())
	}
	for _, f := range funcs {
		e.entries = append(e.entries, e.entry(f))
	}

	e.logger.Debug("extension loaded",
		zap.String("path", path),
		zap.Int("functions", len(e.entries)))
	return e, nil
}

// Path 扩展库路径
func (e *Extension) Path() string { return e.path }

// Entries 扩展导出的内置函数
func (e *Extension) Entries() []*builtin.Entry { return e.entries }

// Register 把导出函数登记到分派表；重名的函数全部报告
func (e *Extension) Register(r *builtin.Registry) error {
	var err error
	for _, entry := range e.entries {
		if regErr := r.Register(entry); regErr != nil {
			err = multierr.Append(err, loadError(e.path, regErr))
		}
	}
	return err
}

// Close 调用 kite_ext_unload 并卸载库
func (e *Extension) Close() error {
	if e.lib == nil {
		return nil
	}
	e.lib.unload()
	err := e.lib.close()
	e.lib = nil
	e.logger.Debug("extension unloaded", zap.String("path", e.path))
	return err
}

// entry 把导出函数包装为内置函数
func (e *Extension) entry(f function) *builtin.Entry {
	entry := &builtin.Entry{
		Name:    f.name,
		Pure:    f.pure,
		MinArgs: f.minArgs,
		MaxArgs: f.maxArgs,
		Return:  f.returns,
	}
	entry.Gen = func(c builtin.Compiler, call *builtin.CallInfo) (string, error) {
		text, err := f.call(c, call)
		if err != nil {
			return "", err
		}
		e.logger.Debug("extension call",
			zap.String("function", call.Name),
			zap.Int("args", len(call.Args)),
			zap.Int("bytes", len(text)))
		return text, nil
	}
	return entry
}

func loadError(path string, cause error) *errors.CompileError {
	return errors.New(errors.KindExtension, errors.E0700, token.Position{},
		i18n.T(i18n.ErrExtensionLoad, path, cause)).
		WithHint(i18n.T(i18n.HintExtensionABI))
}

// ============================================================================
// 扩展集合
// ============================================================================

// Set 一次编译使用的全部扩展
type Set struct {
	extensions []*Extension
	registry   *builtin.Registry
}

// Load 依次加载扩展，导出函数登记在 base 的副本上
//
// 任一扩展加载失败时，已加载的扩展全部卸载。
func Load(base *builtin.Registry, paths []string, opts ...Option) (*Set, error) {
	if base == nil {
		base = builtin.Default()
	}
	s := &Set{registry: base.Clone()}
	for _, path := range paths {
		ext, err := Open(path, opts...)
		if err != nil {
			return nil, multierr.Append(err, s.Close())
		}
		s.extensions = append(s.extensions, ext)
		if err := ext.Register(s.registry); err != nil {
			return nil, multierr.Append(err, s.Close())
		}
	}
	return s, nil
}

// Registry 包含扩展函数的分派表
func (s *Set) Registry() *builtin.Registry { return s.registry }

// Extensions 已加载的扩展
func (s *Set) Extensions() []*Extension { return s.extensions }

// Close 按加载的逆序卸载全部扩展，合并所有错误
func (s *Set) Close() error {
	var err error
	for i := len(s.extensions) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.extensions[i].Close())
	}
	s.extensions = nil
	return err
}
