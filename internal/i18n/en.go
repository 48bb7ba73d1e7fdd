package i18n

var messagesEN = map[string]string{
	// ========== Titles ==========
	TitleSyntax:          "Syntax Error",
	TitleParser:          "Parser Error",
	TitleTypeMismatch:    "Type Mismatch Error",
	TitleSymbolNotFound:  "Symbol Not Found Error",
	TitleSymbolDuplicate: "Symbol Duplicate Error",
	TitleScope:           "Scope Error",
	TitleArgument:        "Argument Error",
	TitleSemantic:        "Semantic Error",
	TitleRecursiveImport: "Recursive Import Error",
	TitleExtension:       "Extension Error",
	TitleFileNotFound:    "File Not Found Error",

	// ========== Lexer ==========
	ErrIllegalChar:       "illegal character '%c'",
	ErrIllegalEscape:     "illegal escape character '\\%c'",
	ErrIllegalOperator:   "illegal operator '%s'",
	ErrUnclosedQuote:     "unclosed quote opened at %s",
	ErrUnclosedComment:   "unclosed block comment opened at %s",
	ErrInvalidIdentifier: "invalid identifier '%s'",
	InfoScannedSoFar:     "scanned so far: %s",

	// ========== Parser ==========
	ErrUnexpectedTokenType:    "unexpected token %s, expected %s",
	ErrPrefixBuilderNotFound:  "no expression can start with %s",
	ErrInfixBuilderNotFound:   "%s cannot follow an expression here",
	ErrUnclosedExpression:     "'%s' opened at %s is not closed, found %s",
	ErrExpectedExpression:     "expected an expression, found %s",
	ErrInvalidVarTarget:       "var expects an identifier or an assignment, found %s",
	ErrInvalidFunHead:         "invalid function head: %s",
	ErrInvalidParameter:       "invalid parameter: %s",
	ErrParameterOrder:         "parameter '%s' cannot follow a variadic parameter",
	ErrInvalidClassHead:       "class expects a name, found %s",
	ErrExpectedLabel:          "expected a label after ':', found %s",
	ErrInvalidDescriptor:      "descriptor groups are only allowed on func and funi labels, found '%s'",
	ErrInvalidAssignTarget:    "cannot assign to %s",
	ErrExpectedBlock:          "expected '{' to start a block, found %s",
	ErrExpectedCondition:      "'%s' expects a parenthesized condition",
	ErrBranchWithoutIf:        "'%s' without a preceding if",
	ErrForHeadShape:           "for loop head must be (init; condition; update), found %d part(s)",
	ErrInvalidDictEntry:       "dictionary entries must be key: value pairs",
	ErrInvalidImport:          "import expects a string path",
	ErrInvalidArgument:        "invalid argument: %s",
	ErrInvalidIncrementTarget: "'%s' needs a variable, found %s",
	ErrTooManyErrors:          "too many errors, parsing stopped",

	// ========== Compiler: symbols and scopes ==========
	ErrSymbolNotFound:      "symbol '%s' not found",
	ErrSymbolDuplicate:     "symbol '%s' is already defined in this scope",
	ErrCustomTypeNotFound:  "type '%s' is not registered",
	ErrScopeCapture:        "'%s' is a local of an enclosing function and cannot be captured",
	ErrScopeUnderflow:      "cannot exit the global scope",
	ErrNotAClass:           "'%s' is not a class",
	ErrInheritanceCycle:    "class '%s' inherits from itself",
	ErrDeclaredNotDefined:  "'%s' is declared but never defined",
	ErrDeclarationMismatch: "definition of '%s' does not match its declaration",
	ErrRedefinition:        "'%s' is already defined",

	// ========== Compiler: types ==========
	ErrTypeMismatch:     "type mismatch: expected %s, found %s",
	ErrReturnMismatch:   "function '%s' returns %s, found %s",
	ErrMissingReturn:    "function '%s' declares return type %s but never returns",
	ErrInvalidOperand:   "operator '%s' cannot be applied to %s",
	ErrNotCallable:      "'%s' of type %s is not callable",
	ErrNotIndexable:     "a value of type %s cannot be indexed",
	ErrAttributeOnValue: "cannot read attribute '%s' of a value of type %s",

	// ========== Compiler: arguments ==========
	ErrMissingArgument:       "missing argument for parameter '%s' of '%s'",
	ErrTooManyArguments:      "'%s' accepts %d positional argument(s), %d given",
	ErrUnknownKeyword:        "'%s' has no parameter named '%s'",
	ErrDuplicateArgument:     "parameter '%s' of '%s' is bound more than once",
	ErrNoMatchingConstructor: "no constructor of class '%s' matches the arguments",
	InfoCandidate:            "candidate %s: %s",
	ErrDefaultNotLiteral:     "default value of parameter '%s' must be a literal",

	// ========== Compiler: semantics ==========
	ErrBreakOutside:       "'break' outside of a loop",
	ErrContinueOutside:    "'continue' outside of a loop",
	ErrReturnOutside:      "'return' outside of a function",
	ErrThisOutside:        "'this' outside of a method",
	ErrConstAssign:        "cannot assign to const '%s'",
	ErrConstWithoutValue:  "const '%s' needs an initial value",
	ErrLabelNotAdmitted:   "label '%s' is not allowed on %s",
	ErrDuplicateMark:      "%s label '%s' conflicts with '%s'",
	ErrDuplicateTypeLabel: "only one type label is allowed, found '%s' and '%s'",
	ErrOverwriteRequired:  "method '%s' hides a method of base class '%s'",
	ErrOverwriteNothing:   "method '%s' is marked overwrite but no base class defines it",
	ErrMemberNotFound:     "class '%s' has no member '%s'",
	ErrPermissionDenied:   "member '%s' of class '%s' is %s",
	ErrStaticAccess:       "instance member '%s' cannot be reached through class '%s'",
	ErrUnsupported:        "%s is not supported here",
	ErrConstructorReturn:  "a constructor cannot return a value",
	ErrBuiltinArguments:   "builtin '%s' expects %s",
	ErrVariadicAtCall:     "argument unpacking with '%s' is not supported at call sites",

	// ========== Compiler: files and extensions ==========
	ErrRecursiveImport: "recursive import of '%s'",
	ErrFileNotFound:    "file '%s' not found",
	ErrExtensionLoad:   "cannot load extension '%s': %s",
	ErrExtensionCall:   "extension function '%s' produced no code",

	// ========== Info lines ==========
	InfoDeclaredAt:  "'%s' declared at %s",
	InfoImportChain: "import chain: %s",
	InfoExpected:    "expected: %s",
	InfoFound:       "found: %s",

	// ========== Hints ==========
	HintDeclareFirst:    "declare '%s' with var before using it",
	HintDidYouMean:      "did you mean '%s'?",
	HintConvertValue:    "convert the value explicitly, e.g. tostr(x), or declare the target as any",
	HintPassArgument:    "pass a value for '%s' or give the parameter a default",
	HintBreakImport:     "move the shared code into a file that neither side imports",
	HintExtensionABI:    "the library must export kite_ext_load, kite_ext_unload, kite_ext_functions and kite_ext_free_functions",
	HintDefineClass:     "define or declare class '%s' before using it as a type",
	HintMakePublic:      "access it from inside '%s' or declare it public",
	HintMarkOverwrite:   "add the overwrite label: fun %s(...): overwrite",
	HintAddReturn:       "add a return statement or declare the return type as any",
	HintRenameShadowing: "pass the value as a parameter instead",
	HintParenthesizeKey: "wrap identifier keys in parentheses: {(key): value}",
}
