package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ============================================================================
// 错误格式化器
// ============================================================================

// Formatter 错误格式化器
//
// 输出格式:
//
//	--- Type Mismatch Error ---
//	error[E0200]: type mismatch: expected int, found str
//	 --> main.kite:3:14
//	  |
//	3 | var x: int = "a"
//	  |              ^^^
//	  = info: ...
//	  = help: ...
type Formatter struct {
	Colors     bool // 是否使用颜色
	ShowSource bool // 是否显示源代码
	ShowHints  bool // 是否显示修复建议
	TabWidth   int  // Tab 宽度
}

// NewFormatter 创建默认格式化器
func NewFormatter() *Formatter {
	return &Formatter{
		Colors:     ColorsEnabled(),
		ShowSource: true,
		ShowHints:  true,
		TabWidth:   4,
	}
}

// FormatCompileError 格式化编译错误
//
// sourceLines 为空时使用错误自带的 SourceLine。
func (f *Formatter) FormatCompileError(err *CompileError, sourceLines []string) string {
	var sb strings.Builder

	// 标题横幅
	sb.WriteString(f.paint(titleColor, fmt.Sprintf("--- %s ---", err.Kind.Title())))
	sb.WriteString("\n")

	// 错误头: error[E0200]: 消息
	lc := f.levelColor(err.Level)
	head := err.Level.String()
	if err.Code != "" {
		head += "[" + err.Code + "]"
	}
	sb.WriteString(fmt.Sprintf("%s: %s\n", f.paint(lc, head), err.Message))

	// 位置: --> file.kite:5:12
	if err.Line > 0 {
		file := err.File
		if file == "" {
			file = "<input>"
		}
		sb.WriteString(fmt.Sprintf(" %s %s\n", f.paint(locColor, "-->"),
			f.paint(locColor, fmt.Sprintf("%s:%d:%d", file, err.Line, err.Column))))
	}

	// 源代码
	line := err.SourceLine
	if line == "" && err.Line > 0 && err.Line <= len(sourceLines) {
		line = sourceLines[err.Line-1]
	}
	width := len(fmt.Sprintf("%d", err.Line))
	if f.ShowSource && line != "" {
		sb.WriteString(f.formatSourceLine(line, err.Line, err.Column, err.EndColumn, width))
	}

	pad := strings.Repeat(" ", width+1)
	for _, info := range err.Infos {
		sb.WriteString(fmt.Sprintf("%s%s %s\n", pad, f.paint(noteColor, "= info:"), info))
	}
	if f.ShowHints {
		for _, hint := range err.Hints {
			sb.WriteString(fmt.Sprintf("%s%s %s\n", pad, f.paint(helpColor, "= help:"), hint))
		}
	}

	return sb.String()
}

// formatSourceLine 格式化单行源代码及插入符
func (f *Formatter) formatSourceLine(line string, lineNum, startCol, endCol, width int) string {
	var sb strings.Builder

	separator := f.paint(gutterColor, strings.Repeat(" ", width)+" |")
	sb.WriteString(separator + "\n")

	num := f.paint(gutterColor, fmt.Sprintf("%*d |", width, lineNum))
	sb.WriteString(fmt.Sprintf("%s %s\n", num, f.expandTabs(line)))

	if startCol > 0 {
		length := endCol - startCol
		if length < 1 {
			length = 1
		}
		actualCol := f.calculateActualColumn(line, startCol)
		sb.WriteString(separator + " " + strings.Repeat(" ", actualCol-1) +
			f.paint(caretColor, strings.Repeat("^", length)) + "\n")
	}

	return sb.String()
}

// expandTabs 展开 Tab 为空格
func (f *Formatter) expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", f.TabWidth))
}

// calculateActualColumn 计算实际列位置（考虑 Tab，列号按字符计）
func (f *Formatter) calculateActualColumn(line string, col int) int {
	if col <= 0 {
		return 1
	}
	actual := 1
	i := 1
	for _, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			actual += f.TabWidth
		} else {
			actual++
		}
		i++
	}
	if i < col {
		actual += col - i
	}
	return actual
}

func (f *Formatter) levelColor(level Level) *color.Color {
	switch level {
	case LevelWarning:
		return warningColor
	case LevelNote, LevelHelp:
		return noteColor
	default:
		return errorColor
	}
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.Colors {
		return s
	}
	return c.Sprint(s)
}

// FormatCompileErrors 格式化多个编译错误
func (f *Formatter) FormatCompileErrors(errs []*CompileError, sourceCache map[string][]string) string {
	var sb strings.Builder
	for i, err := range errs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(f.FormatCompileError(err, sourceCache[err.File]))
	}
	if len(errs) > 1 {
		summary := fmt.Sprintf("\n%d errors", len(errs))
		sb.WriteString(f.paint(errorColor, summary) + "\n")
	}
	return sb.String()
}

// ============================================================================
// 全局格式化器
// ============================================================================

var defaultFormatter = NewFormatter()

// SetDefaultFormatter 设置默认格式化器
func SetDefaultFormatter(f *Formatter) {
	defaultFormatter = f
}

// GetDefaultFormatter 获取默认格式化器
func GetDefaultFormatter() *Formatter {
	return defaultFormatter
}

// Format 使用默认格式化器格式化错误
func Format(err *CompileError, sourceLines []string) string {
	return defaultFormatter.FormatCompileError(err, sourceLines)
}
