package errors

import (
	"regexp"

	"github.com/fatih/color"
)

// 诊断输出使用的颜色
var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	noteColor    = color.New(color.FgCyan, color.Bold)
	titleColor   = color.New(color.FgMagenta, color.Bold)
	locColor     = color.New(color.FgCyan)
	gutterColor  = color.New(color.FgBlue, color.Bold)
	caretColor   = color.New(color.FgRed, color.Bold)
	helpColor    = color.New(color.FgGreen)
)

// EnableColors 启用颜色
func EnableColors() {
	color.NoColor = false
}

// DisableColors 禁用颜色
func DisableColors() {
	color.NoColor = true
}

// ColorsEnabled 是否启用颜色
func ColorsEnabled() bool {
	return !color.NoColor
}

// SetColorsEnabled 设置是否启用颜色
func SetColorsEnabled(enabled bool) {
	color.NoColor = !enabled
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Strip 移除 ANSI 颜色代码
func Strip(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
