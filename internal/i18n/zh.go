package i18n

var messagesZH = map[string]string{
	// ========== 标题 ==========
	TitleSyntax:          "语法错误",
	TitleParser:          "解析错误",
	TitleTypeMismatch:    "类型不匹配",
	TitleSymbolNotFound:  "符号未找到",
	TitleSymbolDuplicate: "符号重复",
	TitleScope:           "作用域错误",
	TitleArgument:        "参数错误",
	TitleSemantic:        "语义错误",
	TitleRecursiveImport: "循环导入",
	TitleExtension:       "扩展错误",
	TitleFileNotFound:    "文件不存在",

	// ========== 词法分析 ==========
	ErrIllegalChar:       "非法字符 '%c'",
	ErrIllegalEscape:     "非法转义字符 '\\%c'",
	ErrIllegalOperator:   "非法运算符 '%s'",
	ErrUnclosedQuote:     "引号未闭合，起始于 %s",
	ErrUnclosedComment:   "块注释未闭合，起始于 %s",
	ErrInvalidIdentifier: "无效标识符 '%s'",
	InfoScannedSoFar:     "已扫描: %s",

	// ========== 语法分析 ==========
	ErrUnexpectedTokenType:    "意外的 token %s，期望 %s",
	ErrPrefixBuilderNotFound:  "表达式不能以 %s 开头",
	ErrInfixBuilderNotFound:   "%s 不能出现在表达式之后",
	ErrUnclosedExpression:     "起始于 %[2]s 的 '%[1]s' 未闭合，遇到 %[3]s",
	ErrExpectedExpression:     "期望表达式，遇到 %s",
	ErrInvalidVarTarget:       "var 需要标识符或赋值表达式，遇到 %s",
	ErrInvalidFunHead:         "无效的函数头: %s",
	ErrInvalidParameter:       "无效的参数: %s",
	ErrParameterOrder:         "参数 '%s' 不能位于可变参数之后",
	ErrInvalidClassHead:       "class 需要类名，遇到 %s",
	ErrExpectedLabel:          "':' 之后需要标签，遇到 %s",
	ErrInvalidDescriptor:      "只有 func 和 funi 标签可以带描述组，遇到 '%s'",
	ErrInvalidAssignTarget:    "不能对 %s 赋值",
	ErrExpectedBlock:          "期望 '{' 开始代码块，遇到 %s",
	ErrExpectedCondition:      "'%s' 需要括号包裹的条件",
	ErrBranchWithoutIf:        "'%s' 之前缺少 if",
	ErrForHeadShape:           "for 循环头必须是 (初始化; 条件; 更新)，实际有 %d 部分",
	ErrInvalidDictEntry:       "字典条目必须是 键: 值 形式",
	ErrInvalidImport:          "import 需要字符串路径",
	ErrInvalidArgument:        "无效的实参: %s",
	ErrInvalidIncrementTarget: "'%s' 需要变量，遇到 %s",
	ErrTooManyErrors:          "错误过多，停止解析",

	// ========== 编译: 符号与作用域 ==========
	ErrSymbolNotFound:      "符号 '%s' 未找到",
	ErrSymbolDuplicate:     "符号 '%s' 已在当前作用域定义",
	ErrCustomTypeNotFound:  "类型 '%s' 未注册",
	ErrScopeCapture:        "'%s' 是外层函数的局部变量，不能被捕获",
	ErrScopeUnderflow:      "不能退出全局作用域",
	ErrNotAClass:           "'%s' 不是类",
	ErrInheritanceCycle:    "类 '%s' 继承自身",
	ErrDeclaredNotDefined:  "'%s' 已声明但从未定义",
	ErrDeclarationMismatch: "'%s' 的定义与声明不一致",
	ErrRedefinition:        "'%s' 已经定义",

	// ========== 编译: 类型 ==========
	ErrTypeMismatch:     "类型不匹配: 期望 %s，实际 %s",
	ErrReturnMismatch:   "函数 '%s' 返回 %s，实际 %s",
	ErrMissingReturn:    "函数 '%s' 声明返回类型 %s 但没有返回",
	ErrInvalidOperand:   "运算符 '%s' 不能用于 %s",
	ErrNotCallable:      "类型为 %[2]s 的 '%[1]s' 不可调用",
	ErrNotIndexable:     "类型 %s 的值不能索引",
	ErrAttributeOnValue: "不能读取类型 %[2]s 的值的属性 '%[1]s'",

	// ========== 编译: 参数 ==========
	ErrMissingArgument:       "缺少 '%[2]s' 的参数 '%[1]s'",
	ErrTooManyArguments:      "'%s' 接受 %d 个位置参数，传入了 %d 个",
	ErrUnknownKeyword:        "'%s' 没有名为 '%s' 的参数",
	ErrDuplicateArgument:     "'%[2]s' 的参数 '%[1]s' 被重复绑定",
	ErrNoMatchingConstructor: "类 '%s' 没有与实参匹配的构造函数",
	InfoCandidate:            "候选 %s: %s",
	ErrDefaultNotLiteral:     "参数 '%s' 的默认值必须是字面量",

	// ========== 编译: 语义 ==========
	ErrBreakOutside:       "'break' 不在循环内",
	ErrContinueOutside:    "'continue' 不在循环内",
	ErrReturnOutside:      "'return' 不在函数内",
	ErrThisOutside:        "'this' 不在方法内",
	ErrConstAssign:        "不能对常量 '%s' 赋值",
	ErrConstWithoutValue:  "常量 '%s' 需要初始值",
	ErrLabelNotAdmitted:   "标签 '%s' 不能用于 %s",
	ErrDuplicateMark:      "%s 标签 '%s' 与 '%s' 冲突",
	ErrDuplicateTypeLabel: "只允许一个类型标签，遇到 '%s' 和 '%s'",
	ErrOverwriteRequired:  "方法 '%s' 覆盖了基类 '%s' 的方法",
	ErrOverwriteNothing:   "方法 '%s' 标记为 overwrite 但基类中没有同名方法",
	ErrMemberNotFound:     "类 '%s' 没有成员 '%s'",
	ErrPermissionDenied:   "类 '%[2]s' 的成员 '%[1]s' 是 %[3]s 的",
	ErrStaticAccess:       "实例成员 '%s' 不能通过类 '%s' 访问",
	ErrUnsupported:        "此处不支持 %s",
	ErrConstructorReturn:  "构造函数不能返回值",
	ErrBuiltinArguments:   "内置函数 '%s' 需要 %s",
	ErrVariadicAtCall:     "调用处不支持使用 '%s' 展开参数",

	// ========== 编译: 文件与扩展 ==========
	ErrRecursiveImport: "循环导入 '%s'",
	ErrFileNotFound:    "文件 '%s' 不存在",
	ErrExtensionLoad:   "无法加载扩展 '%s': %s",
	ErrExtensionCall:   "扩展函数 '%s' 没有生成代码",

	// ========== 信息行 ==========
	InfoDeclaredAt:  "'%s' 声明于 %s",
	InfoImportChain: "导入链: %s",
	InfoExpected:    "期望: %s",
	InfoFound:       "实际: %s",

	// ========== 修复建议 ==========
	HintDeclareFirst:    "使用前先用 var 声明 '%s'",
	HintDidYouMean:      "你是否想使用 '%s'?",
	HintConvertValue:    "显式转换值，例如 tostr(x)，或将目标声明为 any",
	HintPassArgument:    "为 '%s' 传入实参，或给参数设置默认值",
	HintBreakImport:     "把共享代码移到双方都不导入的文件中",
	HintExtensionABI:    "动态库必须导出 kite_ext_load、kite_ext_unload、kite_ext_functions 和 kite_ext_free_functions",
	HintDefineClass:     "在作为类型使用前先定义或声明类 '%s'",
	HintMakePublic:      "在 '%s' 内部访问，或将其声明为 public",
	HintMarkOverwrite:   "添加 overwrite 标签: fun %s(...): overwrite",
	HintAddReturn:       "添加 return 语句，或将返回类型声明为 any",
	HintRenameShadowing: "改为通过参数传入该值",
	HintParenthesizeKey: "用括号包裹标识符键: {(key): value}",
}
