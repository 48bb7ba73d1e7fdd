package builtin

import (
	"github.com/tangzhangming/kite/internal/ra"
)

// ============================================================================
// 默认内置函数
// ============================================================================

// Default 返回登记了全部默认内置函数的分派表
func Default() *Registry {
	r := NewRegistry()
	for _, e := range defaults() {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

func defaults() []*Entry {
	return []*Entry{
		// 输入输出
		{Name: "sout", MinArgs: 0, MaxArgs: Variadic, Gen: genSout},
		{Name: "sin", Pure: true, MinArgs: 0, MaxArgs: 0, Return: "str", Gen: genSin},

		// 容器
		{Name: "len", Pure: true, MinArgs: 1, MaxArgs: 1, Return: "int", Gen: unary(ra.OpIterSize)},
		{Name: "append", MinArgs: 2, MaxArgs: 2, Gen: void(ra.OpIterApnd)},
		{Name: "keys", Pure: true, MinArgs: 1, MaxArgs: 1, Return: "list", Gen: unary(ra.OpDictKeys)},
		{Name: "values", Pure: true, MinArgs: 1, MaxArgs: 1, Return: "list", Gen: unary(ra.OpDictValues)},
		{Name: "del", MinArgs: 2, MaxArgs: 2, Gen: void(ra.OpDictDel)},

		// 类型转换
		{Name: "tostr", Pure: true, MinArgs: 1, MaxArgs: 1, Return: "str", Gen: cast("str")},
		{Name: "toint", Pure: true, MinArgs: 1, MaxArgs: 1, Return: "int", Gen: cast("int")},
		{Name: "toflt", Pure: true, MinArgs: 1, MaxArgs: 1, Return: "flt", Gen: cast("flt")},
		{Name: "tobool", Pure: true, MinArgs: 1, MaxArgs: 1, Return: "bool", Gen: cast("bool")},
		{Name: "typeof", Pure: true, MinArgs: 1, MaxArgs: 1, Return: "str", Gen: unary(ra.OpTypeOf)},
	}
}

func line(op ra.Op, args ...string) string {
	return ra.New(op, args...).Render() + "\n"
}

func genSout(_ Compiler, call *CallInfo) (string, error) {
	return line(ra.OpSout, call.Args...), nil
}

func genSin(_ Compiler, call *CallInfo) (string, error) {
	return line(ra.OpSin, call.Result), nil
}

// unary 一个实参、写入结果的指令
func unary(op ra.Op) Generator {
	return func(_ Compiler, call *CallInfo) (string, error) {
		return line(op, call.Args[0], call.Result), nil
	}
}

// void 直接以实参为操作数、不产生值的指令
func void(op ra.Op) Generator {
	return func(_ Compiler, call *CallInfo) (string, error) {
		return line(op, call.Args...), nil
	}
}

func cast(typ string) Generator {
	return func(_ Compiler, call *CallInfo) (string, error) {
		return line(ra.OpCast, call.Args[0], typ, call.Result), nil
	}
}
