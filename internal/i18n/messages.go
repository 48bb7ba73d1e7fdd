package i18n

// 消息 ID
const (
	// ========== 诊断标题 ==========
	TitleSyntax          = "title.syntax"
	TitleParser          = "title.parser"
	TitleTypeMismatch    = "title.type_mismatch"
	TitleSymbolNotFound  = "title.symbol_not_found"
	TitleSymbolDuplicate = "title.symbol_duplicate"
	TitleScope           = "title.scope"
	TitleArgument        = "title.argument"
	TitleSemantic        = "title.semantic"
	TitleRecursiveImport = "title.recursive_import"
	TitleExtension       = "title.extension"
	TitleFileNotFound    = "title.file_not_found"

	// ========== Lexer ==========
	ErrIllegalChar       = "lexer.illegal_char"
	ErrIllegalEscape     = "lexer.illegal_escape"
	ErrIllegalOperator   = "lexer.illegal_operator"
	ErrUnclosedQuote     = "lexer.unclosed_quote"
	ErrUnclosedComment   = "lexer.unclosed_comment"
	ErrInvalidIdentifier = "lexer.invalid_identifier"
	InfoScannedSoFar     = "lexer.scanned_so_far"

	// ========== Parser ==========
	ErrUnexpectedTokenType    = "parser.unexpected_token_type"
	ErrPrefixBuilderNotFound  = "parser.prefix_builder_not_found"
	ErrInfixBuilderNotFound   = "parser.infix_builder_not_found"
	ErrUnclosedExpression     = "parser.unclosed_expression"
	ErrExpectedExpression     = "parser.expected_expression"
	ErrInvalidVarTarget       = "parser.invalid_var_target"
	ErrInvalidFunHead         = "parser.invalid_fun_head"
	ErrInvalidParameter       = "parser.invalid_parameter"
	ErrParameterOrder         = "parser.parameter_order"
	ErrInvalidClassHead       = "parser.invalid_class_head"
	ErrExpectedLabel          = "parser.expected_label"
	ErrInvalidDescriptor      = "parser.invalid_descriptor"
	ErrInvalidAssignTarget    = "parser.invalid_assign_target"
	ErrExpectedBlock          = "parser.expected_block"
	ErrExpectedCondition      = "parser.expected_condition"
	ErrBranchWithoutIf        = "parser.branch_without_if"
	ErrForHeadShape           = "parser.for_head_shape"
	ErrInvalidDictEntry       = "parser.invalid_dict_entry"
	ErrInvalidImport          = "parser.invalid_import"
	ErrInvalidArgument        = "parser.invalid_argument"
	ErrInvalidIncrementTarget = "parser.invalid_increment_target"
	ErrTooManyErrors          = "parser.too_many_errors"

	// ========== Compiler: 符号与作用域 ==========
	ErrSymbolNotFound      = "compiler.symbol_not_found"
	ErrSymbolDuplicate     = "compiler.symbol_duplicate"
	ErrCustomTypeNotFound  = "compiler.custom_type_not_found"
	ErrScopeCapture        = "compiler.scope_capture"
	ErrScopeUnderflow      = "compiler.scope_underflow"
	ErrNotAClass           = "compiler.not_a_class"
	ErrInheritanceCycle    = "compiler.inheritance_cycle"
	ErrDeclaredNotDefined  = "compiler.declared_not_defined"
	ErrDeclarationMismatch = "compiler.declaration_mismatch"
	ErrRedefinition        = "compiler.redefinition"

	// ========== Compiler: 类型 ==========
	ErrTypeMismatch     = "compiler.type_mismatch"
	ErrReturnMismatch   = "compiler.return_mismatch"
	ErrMissingReturn    = "compiler.missing_return"
	ErrInvalidOperand   = "compiler.invalid_operand"
	ErrNotCallable      = "compiler.not_callable"
	ErrNotIndexable     = "compiler.not_indexable"
	ErrAttributeOnValue = "compiler.attribute_on_value"

	// ========== Compiler: 参数 ==========
	ErrMissingArgument       = "compiler.missing_argument"
	ErrTooManyArguments      = "compiler.too_many_arguments"
	ErrUnknownKeyword        = "compiler.unknown_keyword"
	ErrDuplicateArgument     = "compiler.duplicate_argument"
	ErrNoMatchingConstructor = "compiler.no_matching_constructor"
	InfoCandidate            = "compiler.candidate"
	ErrDefaultNotLiteral     = "compiler.default_not_literal"

	// ========== Compiler: 语义 ==========
	ErrBreakOutside       = "compiler.break_outside"
	ErrContinueOutside    = "compiler.continue_outside"
	ErrReturnOutside      = "compiler.return_outside"
	ErrThisOutside        = "compiler.this_outside"
	ErrConstAssign        = "compiler.const_assign"
	ErrConstWithoutValue  = "compiler.const_without_value"
	ErrLabelNotAdmitted   = "compiler.label_not_admitted"
	ErrDuplicateMark      = "compiler.duplicate_mark"
	ErrDuplicateTypeLabel = "compiler.duplicate_type_label"
	ErrOverwriteRequired  = "compiler.overwrite_required"
	ErrOverwriteNothing   = "compiler.overwrite_nothing"
	ErrMemberNotFound     = "compiler.member_not_found"
	ErrPermissionDenied   = "compiler.permission_denied"
	ErrStaticAccess       = "compiler.static_access"
	ErrUnsupported        = "compiler.unsupported"
	ErrConstructorReturn  = "compiler.constructor_return"
	ErrBuiltinArguments   = "compiler.builtin_arguments"
	ErrVariadicAtCall     = "compiler.variadic_at_call"

	// ========== Compiler: 文件与扩展 ==========
	ErrRecursiveImport = "compiler.recursive_import"
	ErrFileNotFound    = "compiler.file_not_found"
	ErrExtensionLoad   = "compiler.extension_load"
	ErrExtensionCall   = "compiler.extension_call"

	// ========== 信息行 ==========
	InfoDeclaredAt  = "info.declared_at"
	InfoImportChain = "info.import_chain"
	InfoExpected    = "info.expected"
	InfoFound       = "info.found"

	// ========== 修复建议 ==========
	HintDeclareFirst    = "hint.declare_first"
	HintDidYouMean      = "hint.did_you_mean"
	HintConvertValue    = "hint.convert_value"
	HintPassArgument    = "hint.pass_argument"
	HintBreakImport     = "hint.break_import"
	HintExtensionABI    = "hint.extension_abi"
	HintDefineClass     = "hint.define_class"
	HintMakePublic      = "hint.make_public"
	HintMarkOverwrite   = "hint.mark_overwrite"
	HintAddReturn       = "hint.add_return"
	HintRenameShadowing = "hint.rename_shadowing"
	HintParenthesizeKey = "hint.parenthesize_key"
)
