package extension

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"go.uber.org/atomic"

	"github.com/tangzhangming/kite/internal/builtin"
)

// ABIVersion 写入 kite_compiler.version
const ABIVersion = 1

// ============================================================================
// C 结构体布局
// ============================================================================

// cCompiler 对应
//
//	typedef struct {
//	    int32_t     version;
//	    uintptr_t   ctx;
//	    uintptr_t (*new_temp)(uintptr_t ctx, char* buf, uintptr_t cap);
//	    const char* result;   /* 纯函数的结果临时变量，否则为 NULL */
//	} kite_compiler;
//
// iface 只在一次调用期间有效。new_temp 把新临时变量的名字写入 buf，
// 返回写入的字节数（不含 NUL），缓冲区不够时返回 0。
type cCompiler struct {
	Version int32
	_       int32
	Ctx     uintptr
	NewTemp uintptr
	Result  uintptr
}

// cFunction 对应
//
//	typedef struct {
//	    const char* name;
//	    void*       fn;
//	    int32_t     pure;
//	    int32_t     min_args;
//	    int32_t     max_args;   /* -1 表示不限 */
//	    const char* returns;    /* 返回类型名，NULL 表示 any */
//	} kite_ext_function;
type cFunction struct {
	Name    uintptr
	Fn      uintptr
	Pure    int32
	MinArgs int32
	MaxArgs int32
	_       int32
	Returns uintptr
}

// library 平台相关的动态库
type library interface {
	load() bool
	unload()
	functions() ([]function, error)
	close() error
}

// caller 调用一个导出函数
type caller func(c builtin.Compiler, call *builtin.CallInfo) (string, error)

// function 解码后的导出函数
type function struct {
	name    string
	pure    bool
	minArgs int
	maxArgs int
	returns string
	call    caller
}

// readFunctionTable 复制扩展返回的函数表（之后即可释放原表）
func readFunctionTable(list uintptr, count int32) []cFunction {
	if list == 0 || count <= 0 {
		return nil
	}
	src := unsafe.Slice((*cFunction)(unsafe.Pointer(list)), int(count))
	out := make([]cFunction, len(src))
	copy(out, src)
	return out
}

// decodeFunctions 校验并解码函数表，bind 为每个函数指针生成调用器
func decodeFunctions(table []cFunction, bind func(fn uintptr) caller) ([]function, error) {
	funcs := make([]function, 0, len(table))
	seen := make(map[string]bool, len(table))
	for i, cf := range table {
		name := goString(cf.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("function #%d has no name", i)
		case cf.Fn == 0:
			return nil, fmt.Errorf("function '%s' has a null pointer", name)
		case seen[name]:
			return nil, fmt.Errorf("function '%s' is exported twice", name)
		case cf.MinArgs < 0 || (cf.MaxArgs != builtin.Variadic && cf.MaxArgs < cf.MinArgs):
			return nil, fmt.Errorf("function '%s' has an invalid argument range %d..%d", name, cf.MinArgs, cf.MaxArgs)
		}
		seen[name] = true

		returns := goString(cf.Returns)
		if returns == "" {
			returns = "any"
		}
		funcs = append(funcs, function{
			name:    name,
			pure:    cf.Pure != 0,
			minArgs: int(cf.MinArgs),
			maxArgs: int(cf.MaxArgs),
			returns: returns,
			call:    bind(cf.Fn),
		})
	}
	return funcs, nil
}

// ============================================================================
// 字符串
// ============================================================================

// cStrings NUL 结尾的字符串数组，release 之前内存保持固定
type cStrings struct {
	bufs   [][]byte
	ptrs   []uintptr
	pinner runtime.Pinner
}

func newCStrings(list []string) *cStrings {
	s := &cStrings{
		bufs: make([][]byte, len(list)),
		ptrs: make([]uintptr, len(list)),
	}
	for i, str := range list {
		buf := append([]byte(str), 0)
		s.pinner.Pin(&buf[0])
		s.bufs[i] = buf
		s.ptrs[i] = uintptr(unsafe.Pointer(&buf[0]))
	}
	if len(s.ptrs) > 0 {
		s.pinner.Pin(&s.ptrs[0])
	}
	return s
}

// pointer const char** 形式的数组地址，空数组为 NULL
func (s *cStrings) pointer() uintptr {
	if len(s.ptrs) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s.ptrs[0]))
}

// at 第 i 个字符串的地址
func (s *cStrings) at(i int) uintptr {
	return s.ptrs[i]
}

func (s *cStrings) release() {
	s.pinner.Unpin()
}

// goString 复制 C 字符串，NULL 得到空串
func goString(p uintptr) string {
	if p == 0 {
		return ""
	}
	ptr := unsafe.Pointer(p)
	n := 0
	for *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

// ============================================================================
// 调用上下文
// ============================================================================

// 扩展回调 new_temp 时只能拿到 ctx 整数，这里把它映射回编译器
var (
	handles  atomic.Int64
	contexts sync.Map // uintptr -> builtin.Compiler
)

// register 登记一次调用的编译器，返回 ctx 句柄
func register(c builtin.Compiler) (uintptr, func()) {
	h := uintptr(handles.Inc())
	contexts.Store(h, c)
	return h, func() { contexts.Delete(h) }
}

func lookup(h uintptr) (builtin.Compiler, bool) {
	v, ok := contexts.Load(h)
	if !ok {
		return nil, false
	}
	c, ok := v.(builtin.Compiler)
	return c, ok
}

// writeTemp new_temp 的实现
func writeTemp(ctx, buf, capacity uintptr) uintptr {
	c, ok := lookup(ctx)
	if !ok || buf == 0 {
		return 0
	}
	name := c.NewTemp()
	if uintptr(len(name))+1 > capacity {
		return 0
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(capacity))
	n := copy(dst, name)
	dst[n] = 0
	return uintptr(n)
}

// frame 一次导出函数调用需要的 C 侧数据
type frame struct {
	iface    *cCompiler
	raw      *cStrings
	original *cStrings
	result   *cStrings
	pinner   runtime.Pinner
	done     func()
}

// newFrame 准备调用；c 为 nil 时 ctx 为 0（kite_ext_load 使用）
func newFrame(c builtin.Compiler, call *builtin.CallInfo, newTemp uintptr) *frame {
	f := &frame{
		iface: &cCompiler{Version: ABIVersion, NewTemp: newTemp},
		done:  func() {},
	}
	if c != nil {
		f.iface.Ctx, f.done = register(c)
	}
	if call == nil {
		call = &builtin.CallInfo{}
	}
	f.raw = newCStrings(call.Args)
	f.original = newCStrings(call.Original)
	if call.Result != "" {
		f.result = newCStrings([]string{call.Result})
		f.iface.Result = f.result.at(0)
	}
	f.pinner.Pin(f.iface)
	return f
}

func (f *frame) ifacePointer() uintptr {
	return uintptr(unsafe.Pointer(f.iface))
}

func (f *frame) argc() int32 {
	return int32(len(f.raw.ptrs))
}

func (f *frame) close() {
	f.pinner.Unpin()
	f.raw.release()
	f.original.release()
	if f.result != nil {
		f.result.release()
	}
	f.done()
}
