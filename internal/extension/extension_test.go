package extension

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/kite/internal/builtin"
	"github.com/tangzhangming/kite/internal/compiler"
	"github.com/tangzhangming/kite/internal/errors"
)

// fakeLibrary 在进程内模拟扩展库
type fakeLibrary struct {
	loadOK   bool
	funcs    []function
	funcsErr error
	closeErr error

	loaded, unloaded, closed int
}

func (f *fakeLibrary) load() bool {
	f.loaded++
	return f.loadOK
}

func (f *fakeLibrary) unload() { f.unloaded++ }

func (f *fakeLibrary) functions() ([]function, error) {
	return f.funcs, f.funcsErr
}

func (f *fakeLibrary) close() error {
	f.closed++
	return f.closeErr
}

func square() function {
	return function{
		name:    "square",
		pure:    true,
		minArgs: 1,
		maxArgs: 1,
		returns: "int",
		call: func(c builtin.Compiler, call *builtin.CallInfo) (string, error) {
			return fmt.Sprintf("MUL: %s, %s, %s\n", call.Args[0], call.Args[0], call.Result), nil
		},
	}
}

func TestOpenMissingLibrary(t *testing.T) {
	_, err := Open("/nonexistent/libnothing.so")
	ce, ok := errors.As(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, errors.KindExtension, ce.Kind)
	assert.Equal(t, errors.E0700, ce.Code)
	assert.Contains(t, ce.Message, "libnothing.so")
	assert.NotEmpty(t, ce.Hints)
}

func TestAttachLifecycle(t *testing.T) {
	lib := &fakeLibrary{loadOK: true, funcs: []function{square()}}
	ext, err := attach("libmath.so", lib)
	require.NoError(t, err)
	assert.Equal(t, 1, lib.loaded)

	entries := ext.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "square", entries[0].Name)
	assert.True(t, entries[0].Pure)
	assert.True(t, entries[0].Accepts(1))
	assert.False(t, entries[0].Accepts(2))

	require.NoError(t, ext.Close())
	require.NoError(t, ext.Close())
	assert.Equal(t, 1, lib.unloaded)
	assert.Equal(t, 1, lib.closed)
}

func TestAttachFailures(t *testing.T) {
	lib := &fakeLibrary{loadOK: false}
	_, err := attach("libbad.so", lib)
	require.True(t, errors.IsKind(err, errors.KindExtension))
	assert.Equal(t, 1, lib.closed)
	assert.Zero(t, lib.unloaded)

	lib = &fakeLibrary{loadOK: true, funcsErr: stderrors.New("broken table"), closeErr: stderrors.New("dlclose failed")}
	_, err = attach("libbad.so", lib)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken table")
	assert.Contains(t, err.Error(), "dlclose failed")
	assert.Equal(t, 1, lib.unloaded)
}

func TestRegisterReportsConflicts(t *testing.T) {
	clash := square()
	clash.name = "len"
	ext, err := attach("libmath.so", &fakeLibrary{loadOK: true, funcs: []function{square(), clash}})
	require.NoError(t, err)

	registry := builtin.Default().Clone()
	err = ext.Register(registry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "len")
	_, ok := registry.Lookup("square")
	assert.True(t, ok)
}

func TestSetCloseCombinesErrors(t *testing.T) {
	a, err := attach("liba.so", &fakeLibrary{loadOK: true, closeErr: stderrors.New("a failed")})
	require.NoError(t, err)
	b, err := attach("libb.so", &fakeLibrary{loadOK: true, closeErr: stderrors.New("b failed")})
	require.NoError(t, err)

	s := &Set{extensions: []*Extension{a, b}, registry: builtin.Default()}
	err = s.Close()
	require.Error(t, err)
	msg := err.Error()
	assert.Less(t, strings.Index(msg, "b failed"), strings.Index(msg, "a failed"), "unloaded in reverse order")
	assert.Empty(t, s.Extensions())
}

func TestLoadWithoutPaths(t *testing.T) {
	s, err := Load(nil, nil)
	require.NoError(t, err)
	_, ok := s.Registry().Lookup("sout")
	assert.True(t, ok)
	assert.NoError(t, s.Close())

	_, err = Load(nil, []string{"/nonexistent/libnothing.so"})
	assert.True(t, errors.IsKind(err, errors.KindExtension))
}

func TestExtensionFunctionCompiles(t *testing.T) {
	ext, err := attach("libmath.so", &fakeLibrary{loadOK: true, funcs: []function{square()}})
	require.NoError(t, err)
	registry := builtin.Default().Clone()
	require.NoError(t, ext.Register(registry))

	text, err := compiler.CompileSource("var n = square(3)", "test.kite", compiler.Options{Builtins: registry})
	require.NoError(t, err)
	assert.Contains(t, text, "MUL: 3, 3, %t0\n")
	assert.Contains(t, text, "COPY: %t0, n_0\n")

	empty := square()
	empty.call = func(builtin.Compiler, *builtin.CallInfo) (string, error) { return "", nil }
	ext, err = attach("libempty.so", &fakeLibrary{loadOK: true, funcs: []function{empty}})
	require.NoError(t, err)
	registry = builtin.Default().Clone()
	require.NoError(t, ext.Register(registry))

	_, err = compiler.CompileSource("var n = square(3)", "test.kite", compiler.Options{Builtins: registry})
	ce, ok := errors.As(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, errors.E0701, ce.Code)
}

// ============================================================================
// ABI 辅助
// ============================================================================

type tempCounter struct{ n int }

func (c *tempCounter) NewTemp() string {
	c.n++
	return fmt.Sprintf("%%t%d", c.n-1)
}

func TestCStringsRoundTrip(t *testing.T) {
	s := newCStrings([]string{"a_0", "\"x\"", ""})
	defer s.release()

	require.NotZero(t, s.pointer())
	assert.Equal(t, "a_0", goString(s.at(0)))
	assert.Equal(t, "\"x\"", goString(s.at(1)))
	assert.Equal(t, "", goString(s.at(2)))
	assert.Equal(t, "", goString(0))

	empty := newCStrings(nil)
	defer empty.release()
	assert.Zero(t, empty.pointer())
}

func TestWriteTemp(t *testing.T) {
	c := &tempCounter{}
	h, done := register(c)

	buf := make([]byte, 8)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	n := writeTemp(h, addr, uintptr(len(buf)))
	assert.Equal(t, uintptr(3), n)
	assert.Equal(t, "%t0", string(buf[:n]))
	assert.Zero(t, buf[n])

	assert.Zero(t, writeTemp(h, addr, 3), "no room for NUL")
	done()
	assert.Zero(t, writeTemp(h, addr, uintptr(len(buf))), "handle released")
}

func TestDecodeFunctions(t *testing.T) {
	names := newCStrings([]string{"twice", "int"})
	defer names.release()
	bind := func(uintptr) caller { return nil }

	funcs, err := decodeFunctions([]cFunction{
		{Name: names.at(0), Fn: 1, Pure: 1, MinArgs: 1, MaxArgs: -1, Returns: names.at(1)},
	}, bind)
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	assert.Equal(t, "twice", funcs[0].name)
	assert.Equal(t, builtin.Variadic, funcs[0].maxArgs)
	assert.Equal(t, "int", funcs[0].returns)

	tests := []struct {
		name  string
		table []cFunction
		msg   string
	}{
		{"no name", []cFunction{{Fn: 1}}, "no name"},
		{"null pointer", []cFunction{{Name: names.at(0)}}, "null pointer"},
		{"range", []cFunction{{Name: names.at(0), Fn: 1, MinArgs: 2, MaxArgs: 1}}, "argument range"},
		{"twice", []cFunction{{Name: names.at(0), Fn: 1}, {Name: names.at(0), Fn: 2}}, "exported twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeFunctions(tt.table, bind)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestFrame(t *testing.T) {
	c := &tempCounter{}
	f := newFrame(c, &builtin.CallInfo{Name: "f", Args: []string{"1", "x_0"}, Original: []string{"1", "x"}, Result: "%t9"}, 0)
	assert.Equal(t, int32(2), f.argc())
	assert.Equal(t, "%t9", goString(f.iface.Result))
	assert.Equal(t, int32(ABIVersion), f.iface.Version)

	got, ok := lookup(f.iface.Ctx)
	require.True(t, ok)
	assert.Same(t, c, got)

	f.close()
	_, ok = lookup(f.iface.Ctx)
	assert.False(t, ok)
}
