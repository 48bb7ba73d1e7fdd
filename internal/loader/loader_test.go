package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/kite/internal/config"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}

func TestResolveOrder(t *testing.T) {
	root := t.TempDir()
	lib := t.TempDir()
	main := writeFile(t, filepath.Join(root, "src", "main.kite"), "")
	sibling := writeFile(t, filepath.Join(root, "src", "util.kite"), "")
	atRoot := writeFile(t, filepath.Join(root, "shapes.kite"), "")
	inLib := writeFile(t, filepath.Join(lib, "math.kite"), "")

	l := New(WithRoot(root), WithSearchPaths(lib))

	got, err := l.Resolve("util", main)
	require.NoError(t, err)
	assert.Equal(t, sibling, got)

	got, err = l.Resolve("shapes.kite", main)
	require.NoError(t, err)
	assert.Equal(t, atRoot, got)

	got, err = l.Resolve("math", main)
	require.NoError(t, err)
	assert.Equal(t, inLib, got)

	got, err = l.Resolve(inLib, "")
	require.NoError(t, err)
	assert.Equal(t, inLib, got)

	_, err = l.Resolve("nothing", main)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestResolveSkipsDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg.kite"), 0755))
	_, err := New(WithRoot(root)).Resolve("pkg", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForFileUsesConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, config.FileName), "[build]\ninclude = [\"vendor\"]\n")
	main := writeFile(t, filepath.Join(root, "app", "main.kite"), "")
	dep := writeFile(t, filepath.Join(root, "vendor", "dep.kite"), "")

	l, err := ForFile(main)
	require.NoError(t, err)
	abs, _ := filepath.Abs(root)
	assert.Equal(t, abs, l.RootDir())

	got, err := l.Resolve("dep", main)
	require.NoError(t, err)
	assert.Equal(t, dep, got)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "a.kite"), "var x = 1\n")
	l := New()
	src, err := l.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "var x = 1\n", src)

	_, err = l.LoadFile(path + ".missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportStack(t *testing.T) {
	l := New()
	popA, err := l.Push("/p/a.kite")
	require.NoError(t, err)
	popB, err := l.Push("/p/b.kite")
	require.NoError(t, err)
	assert.Equal(t, 2, l.Depth())
	assert.Equal(t, "a.kite -> b.kite -> a.kite", l.Chain("/p/a.kite"))

	_, err = l.Push("/p/./a.kite")
	assert.ErrorIs(t, err, ErrRecursive)
	assert.Equal(t, 2, l.Depth())

	popB()
	popB()
	assert.Equal(t, 1, l.Depth())
	popA()
	assert.Equal(t, 0, l.Depth())
}

func TestLoaded(t *testing.T) {
	l := New()
	assert.False(t, l.IsLoaded("/p/a.kite"))
	l.MarkLoaded("/p/a.kite")
	assert.True(t, l.IsLoaded("/p/x/../a.kite"))
}
