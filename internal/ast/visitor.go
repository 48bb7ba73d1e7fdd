package ast

// Visitor AST 访问者
//
// 每种节点对应一个方法，节点通过 Accept 回调到这里。
// 新增节点类型时，所有实现都必须补上对应方法才能通过编译。
type Visitor interface {
	VisitProgram(n *Program) error

	// 字面量
	VisitIntegerLiteral(n *IntegerLiteral) error
	VisitFloatLiteral(n *FloatLiteral) error
	VisitStringLiteral(n *StringLiteral) error
	VisitBoolLiteral(n *BoolLiteral) error
	VisitNullLiteral(n *NullLiteral) error

	// 标识符与运算
	VisitLabel(n *Label) error
	VisitIdentifier(n *Identifier) error
	VisitThis(n *This) error
	VisitUnary(n *Unary) error
	VisitBinary(n *Binary) error
	VisitPostfix(n *Postfix) error
	VisitAssignment(n *Assignment) error
	VisitParallel(n *Parallel) error
	VisitRanger(n *Ranger) error
	VisitBlock(n *Block) error

	// 容器
	VisitList(n *List) error
	VisitPair(n *Pair) error
	VisitDictionary(n *Dictionary) error

	// 调用与访问
	VisitIndicator(n *Indicator) error
	VisitArgument(n *Argument) error
	VisitCall(n *Call) error
	VisitIndex(n *Index) error
	VisitAttribute(n *Attribute) error

	// 定义与声明
	VisitVariableDefinition(n *VariableDefinition) error
	VisitParameter(n *Parameter) error
	VisitFunctionDeclaration(n *FunctionDeclaration) error
	VisitFunctionDefinition(n *FunctionDefinition) error
	VisitAnonymousFunction(n *AnonymousFunction) error
	VisitConstructorDefinition(n *ConstructorDefinition) error
	VisitClassDeclaration(n *ClassDeclaration) error
	VisitClassDefinition(n *ClassDefinition) error

	// 控制流
	VisitCondition(n *Condition) error
	VisitConditionalBranch(n *ConditionalBranch) error
	VisitLoop(n *Loop) error
	VisitPass(n *Pass) error
	VisitBreak(n *Break) error
	VisitContinue(n *Continue) error
	VisitReturn(n *Return) error
	VisitImport(n *Import) error
}
