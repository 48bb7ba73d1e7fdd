package errors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ============================================================================
// 错误报告器
// ============================================================================

// Reporter 错误报告器
type Reporter struct {
	mu          sync.Mutex
	out         io.Writer
	formatter   *Formatter
	sourceCache map[string][]string // 源代码缓存
	errors      []*CompileError
	warnings    []*CompileError
}

// NewReporter 创建错误报告器，输出到 stderr
func NewReporter() *Reporter {
	return NewReporterTo(os.Stderr)
}

// NewReporterTo 创建输出到指定 writer 的错误报告器
func NewReporterTo(out io.Writer) *Reporter {
	return &Reporter{
		out:         out,
		formatter:   NewFormatter(),
		sourceCache: make(map[string][]string),
	}
}

// SetFormatter 设置格式化器
func (r *Reporter) SetFormatter(f *Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatter = f
}

// LoadSource 加载源文件
func (r *Reporter) LoadSource(filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadSource(filename)
}

func (r *Reporter) loadSource(filename string) error {
	if filename == "" {
		return nil
	}
	if _, ok := r.sourceCache[filename]; ok {
		return nil // 已加载
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	r.sourceCache[filename] = strings.Split(string(data), "\n")
	return nil
}

// SetSource 设置源代码（用于 REPL、LSP 或内存中的源代码）
func (r *Reporter) SetSource(filename string, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sourceCache[filename] = strings.Split(content, "\n")
}

// GetSourceLine 获取源代码行
func (r *Reporter) GetSourceLine(filename string, line int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lines, ok := r.sourceCache[filename]; ok {
		if line > 0 && line <= len(lines) {
			return strings.TrimRight(lines[line-1], "\r")
		}
	}
	return ""
}

// ============================================================================
// 报告编译错误
// ============================================================================

// Report 报告任意错误：CompileError 按诊断格式输出，其它错误原样输出
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	if ce, ok := As(err); ok {
		r.ReportError(ce)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s: %s\n", r.formatter.paint(errorColor, "error"), err)
}

// ReportError 报告编译错误
func (r *Reporter) ReportError(err *CompileError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_ = r.loadSource(err.File)

	// 补充默认修复建议
	if len(err.Hints) == 0 {
		err.Hints = GetSuggestions(err.Code)
	}

	if err.Level == LevelWarning {
		r.warnings = append(r.warnings, err)
	} else {
		r.errors = append(r.errors, err)
	}

	fmt.Fprint(r.out, r.formatter.FormatCompileError(err, r.sourceCache[err.File]))
}

// ReportWarning 报告警告
func (r *Reporter) ReportWarning(err *CompileError) {
	err.Level = LevelWarning
	r.ReportError(err)
}

// HasErrors 是否有错误
func (r *Reporter) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors) > 0
}

// ErrorCount 错误数量
func (r *Reporter) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

// WarningCount 警告数量
func (r *Reporter) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings)
}

// Errors 返回已报告的错误
func (r *Reporter) Errors() []*CompileError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*CompileError(nil), r.errors...)
}

// Clear 清空已报告的错误与警告
func (r *Reporter) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = nil
	r.warnings = nil
}

// ============================================================================
// 全局报告器
// ============================================================================

var defaultReporter = NewReporter()

// GetDefaultReporter 获取默认报告器
func GetDefaultReporter() *Reporter {
	return defaultReporter
}

// SetDefaultReporter 设置默认报告器
func SetDefaultReporter(r *Reporter) {
	defaultReporter = r
}

// Report 使用默认报告器报告错误
func Report(err error) {
	defaultReporter.Report(err)
}
