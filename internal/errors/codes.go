// Package errors 提供 kite 编译器的错误处理系统
package errors

import "github.com/tangzhangming/kite/internal/i18n"

// ============================================================================
// 错误级别
// ============================================================================

// Level 错误级别
type Level int

const (
	LevelError   Level = iota // 错误
	LevelWarning              // 警告
	LevelNote                 // 提示
	LevelHelp                 // 帮助
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNote:
		return "note"
	case LevelHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ============================================================================
// 错误类别
// ============================================================================

// Kind 错误类别，决定诊断标题
type Kind int

const (
	KindSyntax          Kind = iota // 词法/早期语法错误
	KindParser                      // 语法分析错误（可累积）
	KindTypeMismatch                // 类型不匹配
	KindSymbolNotFound              // 符号未找到
	KindSymbolDuplicate             // 符号重复
	KindScope                       // 作用域错误
	KindArgument                    // 参数数量错误
	KindSemantic                    // 语义错误
	KindRecursiveImport             // 循环导入
	KindExtension                   // 扩展加载/调用错误
	KindFileNotFound                // 文件不存在
)

var kindTitles = map[Kind]string{
	KindSyntax:          i18n.TitleSyntax,
	KindParser:          i18n.TitleParser,
	KindTypeMismatch:    i18n.TitleTypeMismatch,
	KindSymbolNotFound:  i18n.TitleSymbolNotFound,
	KindSymbolDuplicate: i18n.TitleSymbolDuplicate,
	KindScope:           i18n.TitleScope,
	KindArgument:        i18n.TitleArgument,
	KindSemantic:        i18n.TitleSemantic,
	KindRecursiveImport: i18n.TitleRecursiveImport,
	KindExtension:       i18n.TitleExtension,
	KindFileNotFound:    i18n.TitleFileNotFound,
}

// Title 返回类别的标题（已翻译）
func (k Kind) Title() string {
	if id, ok := kindTitles[k]; ok {
		return i18n.T(id)
	}
	return "Error"
}

// IsFatal 是否为致命错误（除 Parser 类别外均为致命）
func (k Kind) IsFatal() bool {
	return k != KindParser
}

// ============================================================================
// 编译器错误码 (E 开头)
// ============================================================================

// 编译器错误码常量
const (
	// E0001-E0099: 词法与语法错误
	E0001 = "E0001" // 语法错误
	E0002 = "E0002" // 非法字符
	E0003 = "E0003" // 未闭合的引号
	E0004 = "E0004" // 未闭合的注释
	E0005 = "E0005" // 非法转义字符
	E0006 = "E0006" // 非法运算符
	E0007 = "E0007" // 无效标识符
	E0010 = "E0010" // 意外的 token 类型
	E0011 = "E0011" // 找不到 builder
	E0012 = "E0012" // 未闭合的表达式

	// E0100-E0199: 符号错误
	E0100 = "E0100" // 符号未找到
	E0101 = "E0101" // 符号重复
	E0102 = "E0102" // 自定义类型未注册
	E0110 = "E0110" // 作用域错误

	// E0200-E0299: 类型错误
	E0200 = "E0200" // 类型不匹配
	E0203 = "E0203" // 缺少返回值

	// E0300-E0399: 函数与调用错误
	E0301 = "E0301" // 参数数量错误
	E0302 = "E0302" // 没有匹配的构造函数
	E0303 = "E0303" // 不可调用
	E0304 = "E0304" // break/continue 在循环外
	E0305 = "E0305" // return 在函数外

	// E0400-E0499: 类/对象错误
	E0401 = "E0401" // 成员未找到
	E0402 = "E0402" // 访问权限不足
	E0405 = "E0405" // this 在方法外使用

	// E0700-E0799: 扩展错误
	E0700 = "E0700" // 扩展加载失败
	E0701 = "E0701" // 扩展调用失败

	// E0800-E0899: 文件与导入错误
	E0800 = "E0800" // 循环导入
	E0801 = "E0801" // 文件不存在

	// E0900-E0999: 其他语义错误
	E0900 = "E0900" // 语义错误
)
