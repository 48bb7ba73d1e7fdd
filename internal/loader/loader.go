// Package loader 源文件加载与 import 路径解析
package loader

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/config"
)

// 常量定义
const (
	SourceFileExtension = ".kite"     // 源码文件后缀
	SearchPathEnv       = "KITE_PATH" // 额外搜索目录，按系统路径分隔符分隔
	StdLibDirName       = "lib"       // 标准库目录（可执行文件同级）
)

var (
	// ErrNotFound import 的文件不存在
	ErrNotFound = stderrors.New("import not found")
	// ErrRecursive 文件已在导入栈上
	ErrRecursive = stderrors.New("recursive import")
)

// Loader 源文件加载器
//
// 维护已加载文件集合与当前导入栈。同一文件只编译一次；
// 导入栈上已有的文件再次被导入时报告循环导入。
type Loader struct {
	rootDir     string   // 项目根目录
	searchPaths []string // 额外搜索目录
	loadedFiles map[string]bool
	stack       []string
	logger      *zap.Logger
}

// Option 加载器选项
type Option func(*Loader)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithRoot 设置项目根目录
func WithRoot(dir string) Option {
	return func(l *Loader) { l.rootDir = dir }
}

// WithSearchPaths 追加搜索目录
func WithSearchPaths(dirs ...string) Option {
	return func(l *Loader) { l.searchPaths = append(l.searchPaths, dirs...) }
}

// New 创建加载器
func New(opts ...Option) *Loader {
	l := &Loader{
		loadedFiles: make(map[string]bool),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ForFile 为入口文件创建加载器
//
// 向上查找 kite.toml 作为项目根目录，并加入配置中的 include 目录、
// KITE_PATH 以及可执行文件同级的 lib/ 目录。
func ForFile(entryFile string, opts ...Option) (*Loader, error) {
	cfg, root, err := config.Discover(entryFile)
	if err != nil {
		return nil, err
	}
	if root == "" {
		root = filepath.Dir(entryFile)
	}

	l := New(append([]Option{WithRoot(root)}, opts...)...)
	l.searchPaths = append(l.searchPaths, cfg.IncludeDirs(root)...)
	if env := os.Getenv(SearchPathEnv); env != "" {
		l.searchPaths = append(l.searchPaths, filepath.SplitList(env)...)
	}
	if lib, err := stdLibPath(); err == nil {
		l.searchPaths = append(l.searchPaths, lib)
	}
	l.logger.Debug("loader ready",
		zap.String("root", l.rootDir),
		zap.Strings("search", l.searchPaths))
	return l, nil
}

// stdLibPath 标准库位于可执行文件同级的 lib/ 目录
func stdLibPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exePath, err = filepath.EvalSymlinks(exePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlinks: %w", err)
	}
	libPath := filepath.Join(filepath.Dir(exePath), StdLibDirName)
	if _, err := os.Stat(libPath); err != nil {
		return "", fmt.Errorf("standard library not found at %s", libPath)
	}
	return libPath, nil
}

// ============================================================================
// 路径解析
// ============================================================================

// Resolve 解析 import 路径，返回源文件的绝对路径
//
// 没有后缀时补上 .kite。相对路径的查找顺序：
// 1. 导入方所在目录 2. 项目根目录 3. 搜索目录
func (l *Loader) Resolve(importPath, fromFile string) (string, error) {
	if filepath.Ext(importPath) == "" {
		importPath += SourceFileExtension
	}

	var candidates []string
	if filepath.IsAbs(importPath) {
		candidates = []string{importPath}
	} else {
		if fromFile != "" {
			candidates = append(candidates, filepath.Join(filepath.Dir(fromFile), importPath))
		}
		if l.rootDir != "" {
			candidates = append(candidates, filepath.Join(l.rootDir, importPath))
		}
		for _, dir := range l.searchPaths {
			candidates = append(candidates, filepath.Join(dir, importPath))
		}
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			absPath, err := filepath.Abs(path)
			if err != nil {
				return "", err
			}
			l.logger.Debug("import resolved",
				zap.String("import", importPath),
				zap.String("path", absPath))
			return absPath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, importPath)
}

// LoadFile 加载源文件内容
func (l *Loader) LoadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", err
	}
	return string(content), nil
}

// ============================================================================
// 导入状态
// ============================================================================

// Push 把文件压入导入栈，返回的 pop 恢复压入前的状态
//
// 文件已在栈上时返回 ErrRecursive。
func (l *Loader) Push(path string) (pop func(), err error) {
	if l.OnStack(path) {
		return func() {}, fmt.Errorf("%w: %s", ErrRecursive, path)
	}
	l.stack = append(l.stack, path)
	depth := len(l.stack) - 1
	return func() {
		if len(l.stack) > depth {
			l.stack = l.stack[:depth]
		}
	}, nil
}

// Loaded 已加载的全部文件（规范化路径，按字母序）
func (l *Loader) Loaded() []string {
	files := make([]string, 0, len(l.loadedFiles))
	for f := range l.loadedFiles {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// OnStack 文件是否正在导入栈上
func (l *Loader) OnStack(path string) bool {
	key := normalizePath(path)
	for _, p := range l.stack {
		if normalizePath(p) == key {
			return true
		}
	}
	return false
}

// Chain 当前导入栈（外层在前），附加 next 后用于错误信息
func (l *Loader) Chain(next string) string {
	parts := make([]string, 0, len(l.stack)+1)
	for _, p := range l.stack {
		parts = append(parts, filepath.Base(p))
	}
	if next != "" {
		parts = append(parts, filepath.Base(next))
	}
	return strings.Join(parts, " -> ")
}

// Depth 导入栈深度
func (l *Loader) Depth() int {
	return len(l.stack)
}

// MarkLoaded 标记文件已加载
func (l *Loader) MarkLoaded(path string) {
	l.loadedFiles[normalizePath(path)] = true
}

// IsLoaded 检查文件是否已加载
func (l *Loader) IsLoaded(path string) bool {
	return l.loadedFiles[normalizePath(path)]
}

// normalizePath 规范化路径
func normalizePath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	cleanPath := filepath.Clean(absPath)
	// Windows 不区分大小写
	if runtime.GOOS == "windows" {
		return strings.ToLower(cleanPath)
	}
	return cleanPath
}

// RootDir 获取项目根目录
func (l *Loader) RootDir() string {
	return l.rootDir
}

// SearchPaths 额外搜索目录
func (l *Loader) SearchPaths() []string {
	return l.searchPaths
}
