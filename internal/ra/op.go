// Package ra 定义编译产物 RA 代码的指令与文本格式
//
// RA 代码按行组织，每行一条指令：
//
//	OPCODE: operand1, operand2, ...
//
// 以 ';' 开头的行是注释。没有操作数的指令只写操作码。
package ra

import "fmt"

// Op 操作码
type Op byte

const (
	OpInvalid Op = iota

	// 定义与作用域
	OpFunc           // 定义无返回值函数 (rid, params...)
	OpFuni           // 定义有返回值函数 (rid, params...)
	OpEnd            // 结束最内层 FUNC / FUNI / UNTIL
	OpRet            // 返回 ([value])
	OpTpDef          // 定义类型 (class, [base])
	OpTpAddInstField // 注册实例字段 (class, field)
	OpTpAddTpField   // 注册静态字段 (class, field)
	OpTpNew          // 创建实例 (class, dst)

	// 存储
	OpAllot // 分配变量 (var)
	OpPut   // 存入字面量 (literal, dst)
	OpCopy  // 复制变量 (src, dst)
	OpSet   // 设置跳转标签 (label)

	// 控制流
	OpJmp   // 无条件跳转 (label)
	OpJt    // 条件为真时跳转 (cond, label)
	OpJf    // 条件为假时跳转 (cond, label)
	OpUntil // 打开循环帧 (cond-label, end-label)
	OpExit  // 离开最内层循环帧

	// 运算
	OpAdd  // 加 (a, b, dst)
	OpMul  // 乘 (a, b, dst)
	OpDiv  // 除 (a, b, dst)
	OpMod  // 取模 (a, b, dst)
	OpOpp  // 取负 (a, dst)
	OpNot  // 逻辑非 (a, dst)
	OpCmp  // 比较 (a, b, dst)
	OpCrel // 关系测试 (cmp, REL, dst)

	// 容器
	OpIterApnd   // 列表追加 (list, value)
	OpIterGet    // 下标读取 (container, index, dst)
	OpIterSize   // 长度 (container, dst)
	OpPairSet    // 下标写入 (container, key, value)
	OpDictKeys   // 键列表 (dict, dst)
	OpDictValues // 值列表 (dict, dst)
	OpDictDel    // 删除键 (dict, key)

	// 字段
	OpTpGetField // 读字段 (obj, field, dst)
	OpTpSetField // 写字段 (obj, field, value)

	// 调用
	OpCall // 无返回值调用 (fn, args...)
	OpIvok // 有返回值调用 (fn, args..., dst)

	// 内置函数专用
	OpSout   // 输出 (values...)
	OpSin    // 读入一行 (dst)
	OpCast   // 类型转换 (value, type, dst)
	OpTypeOf // 取类型名 (value, dst)
)

var opNames = map[Op]string{
	OpFunc:           "FUNC",
	OpFuni:           "FUNI",
	OpEnd:            "END",
	OpRet:            "RET",
	OpTpDef:          "TP_DEF",
	OpTpAddInstField: "TP_ADD_INST_FIELD",
	OpTpAddTpField:   "TP_ADD_TP_FIELD",
	OpTpNew:          "TP_NEW",
	OpAllot:          "ALLOT",
	OpPut:            "PUT",
	OpCopy:           "COPY",
	OpSet:            "SET",
	OpJmp:            "JMP",
	OpJt:             "JT",
	OpJf:             "JF",
	OpUntil:          "UNTIL",
	OpExit:           "EXIT",
	OpAdd:            "ADD",
	OpMul:            "MUL",
	OpDiv:            "DIV",
	OpMod:            "MOD",
	OpOpp:            "OPP",
	OpNot:            "NOT",
	OpCmp:            "CMP",
	OpCrel:           "CREL",
	OpIterApnd:       "ITER_APND",
	OpIterGet:        "ITER_GET",
	OpIterSize:       "ITER_SIZE",
	OpPairSet:        "PAIR_SET",
	OpDictKeys:       "DICT_KEYS",
	OpDictValues:     "DICT_VALUES",
	OpDictDel:        "DICT_DEL",
	OpTpGetField:     "TP_GET_FIELD",
	OpTpSetField:     "TP_SET_FIELD",
	OpCall:           "CALL",
	OpIvok:           "IVOK",
	OpSout:           "SOUT",
	OpSin:            "SIN",
	OpCast:           "CAST",
	OpTypeOf:         "TYPE_OF",
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", op)
}

// LookupOp 按名字查找操作码
func LookupOp(name string) (Op, bool) {
	op, ok := opsByName[name]
	return op, ok
}

// OpensScope 是否为需要 END 配对的指令
func (op Op) OpensScope() bool {
	return op == OpFunc || op == OpFuni || op == OpUntil
}

// ============================================================================
// 关系码
// ============================================================================

// Rel CREL 指令使用的关系码
type Rel string

const (
	RelEQ  Rel = "EQ"
	RelNE  Rel = "NE"
	RelGT  Rel = "GT"
	RelGE  Rel = "GE"
	RelLT  Rel = "LT"
	RelLE  Rel = "LE"
	RelAND Rel = "AND"
	RelOR  Rel = "OR"
)

var relations = map[string]Rel{
	"==": RelEQ,
	"!=": RelNE,
	">":  RelGT,
	">=": RelGE,
	"<":  RelLT,
	"<=": RelLE,
	"&&": RelAND,
	"||": RelOR,
}

// RelOf 把关系运算符映射为关系码
func RelOf(operator string) (Rel, bool) {
	r, ok := relations[operator]
	return r, ok
}
