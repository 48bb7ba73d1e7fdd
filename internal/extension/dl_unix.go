//go:build (darwin || freebsd || linux) && (amd64 || arm64) && !android

package extension

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
	"go.uber.org/multierr"

	"github.com/tangzhangming/kite/internal/builtin"
)

// dynamicLibrary 通过 dlopen 加载的扩展库
type dynamicLibrary struct {
	handle uintptr

	extLoad      func(iface uintptr) bool
	extUnload    func()
	extFunctions func(count *int32) uintptr
	extFree      func(list uintptr, count int32)
}

var (
	newTempOnce sync.Once
	newTempPtr  uintptr
)

// newTempCallback new_temp 的 C 函数指针，全进程只创建一次
func newTempCallback() uintptr {
	newTempOnce.Do(func() {
		newTempPtr = purego.NewCallback(func(ctx, buf, capacity uintptr) uintptr {
			return writeTemp(ctx, buf, capacity)
		})
	})
	return newTempPtr
}

func openLibrary(path string) (library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, err
	}
	l := &dynamicLibrary{handle: handle}

	bindings := []struct {
		name string
		fptr interface{}
	}{
		{SymbolLoad, &l.extLoad},
		{SymbolUnload, &l.extUnload},
		{SymbolFunctions, &l.extFunctions},
		{SymbolFreeFunctions, &l.extFree},
	}
	for _, b := range bindings {
		sym, err := purego.Dlsym(handle, b.name)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("missing symbol %s: %w", b.name, err), purego.Dlclose(handle))
		}
		purego.RegisterFunc(b.fptr, sym)
	}
	return l, nil
}

func (l *dynamicLibrary) load() bool {
	f := newFrame(nil, nil, newTempCallback())
	defer f.close()
	return l.extLoad(f.ifacePointer())
}

func (l *dynamicLibrary) unload() {
	l.extUnload()
}

func (l *dynamicLibrary) functions() ([]function, error) {
	var count int32
	list := l.extFunctions(&count)
	if list == 0 && count > 0 {
		return nil, fmt.Errorf("%s returned NULL for %d function(s)", SymbolFunctions, count)
	}
	table := readFunctionTable(list, count)
	if list != 0 {
		defer l.extFree(list, count)
	}
	return decodeFunctions(table, bindCaller)
}

func (l *dynamicLibrary) close() error {
	return purego.Dlclose(l.handle)
}

// bindCaller 把导出函数指针绑定为 Go 函数
func bindCaller(ptr uintptr) caller {
	var fn func(iface uintptr, argc int32, raw, original uintptr, line, column int32) uintptr
	purego.RegisterFunc(&fn, ptr)

	return func(c builtin.Compiler, call *builtin.CallInfo) (string, error) {
		f := newFrame(c, call, newTempCallback())
		defer f.close()
		out := fn(f.ifacePointer(), f.argc(), f.raw.pointer(), f.original.pointer(),
			int32(call.Pos.Line), int32(call.Pos.Column))
		return goString(out), nil
	}
}
