package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/errors"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// ============================================================================
// import
// ============================================================================

func TestImportCompilesOnce(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.kite": "import \"util\"\nimport \"lib/other.kite\"\nsout(twice(2))",
		"util.kite": "fun twice(n: int): int { return n * 2 }",
		"lib/other.kite": "import \"../util\"",
	})

	text, err := CompileFile(filepath.Join(dir, "main.kite"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(text, "FUNI: f_twice_"))
	assert.Contains(t, text, "IVOK: f_twice_1, 2, %t1")
}

func TestRecursiveImport(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.kite": "import \"b\"",
		"b.kite": "import \"a\"",
	})

	_, err := CompileFile(filepath.Join(dir, "a.kite"), Options{})
	ce, ok := errors.As(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, errors.KindRecursiveImport, ce.Kind)
	assert.Equal(t, errors.E0800, ce.Code)
	require.NotEmpty(t, ce.Infos)
	assert.Contains(t, ce.Infos[0], "a.kite -> b.kite -> a.kite")
	assert.Equal(t, `import "a"`, ce.SourceLine)
}

func TestMissingImport(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.kite": "import \"nowhere\""})

	_, err := CompileFile(filepath.Join(dir, "main.kite"), Options{})
	ce, ok := errors.As(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, errors.KindFileNotFound, ce.Kind)
	assert.Equal(t, errors.E0801, ce.Code)
}

func TestImportInsideFunction(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.kite": "fun f() { import \"util\" }",
		"util.kite": "pass",
	})

	_, err := CompileFile(filepath.Join(dir, "main.kite"), Options{})
	ce, ok := errors.As(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, errors.KindSemantic, ce.Kind)
}

// ============================================================================
// 缓存
// ============================================================================

func TestCacheKey(t *testing.T) {
	a := CacheKey("sout(1)", Options{})
	assert.Len(t, a, 64)
	assert.Equal(t, a, CacheKey("sout(1)", Options{}))
	assert.NotEqual(t, a, CacheKey("sout(2)", Options{}))
	assert.NotEqual(t, a, CacheKey("sout(1)", Options{Annotate: true}))
}

func TestCompileFileCached(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.kite": "import \"util\"\nsout(twice(2))",
		"util.kite": "fun twice(n: int): int { return n * 2 }",
	})
	main := filepath.Join(dir, "main.kite")

	cache, err := OpenCache(filepath.Join(dir, ".cache"), zap.NewNop())
	require.NoError(t, err)

	first, err := CompileFileCached(main, Options{}, cache)
	require.NoError(t, err)
	second, err := CompileFileCached(main, Options{}, cache)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)

	// 被导入文件变化后缓存失效
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.kite"),
		[]byte("fun twice(n: int): int { return n + n }"), 0o644))
	third, err := CompileFileCached(main, Options{}, cache)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
	assert.Equal(t, int64(2), cache.Stats().Misses)
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.kite": "sout(1)"})
	main := filepath.Join(dir, "main.kite")
	cacheDir := filepath.Join(dir, ".cache")

	cache, err := OpenCache(cacheDir, nil)
	require.NoError(t, err)
	_, err = CompileFileCached(main, Options{}, cache)
	require.NoError(t, err)
	require.NoError(t, cache.Flush())

	reopened, err := OpenCache(cacheDir, nil)
	require.NoError(t, err)
	text, err := CompileFileCached(main, Options{}, reopened)
	require.NoError(t, err)
	assert.Equal(t, "SOUT: 1\n", text)
	assert.Equal(t, int64(1), reopened.Stats().Hits)
}

func TestCacheInvalidateAndClear(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenCache(dir, nil)
	require.NoError(t, err)

	key := CacheKey("sout(1)", Options{})
	require.NoError(t, cache.Put("/src/a.kite", key, "SOUT: 1\n", nil))
	text, ok := cache.Get("/src/a.kite", key)
	require.True(t, ok)
	assert.Equal(t, "SOUT: 1\n", text)

	_, ok = cache.Get("/src/a.kite", CacheKey("sout(2)", Options{}))
	assert.False(t, ok, "different key is stale")
	assert.Equal(t, 0, cache.Stats().Entries)

	require.NoError(t, cache.Put("/src/a.kite", key, "SOUT: 1\n", nil))
	require.NoError(t, cache.Invalidate("/src/a.kite"))
	_, ok = cache.Get("/src/a.kite", key)
	assert.False(t, ok)

	require.NoError(t, cache.Put("/src/b.kite", key, "SOUT: 1\n", nil))
	require.NoError(t, cache.Clear())
	stats := cache.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(0), stats.TotalSize)
}

func TestCacheCompileErrorNotStored(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.kite": "sout(y)"})
	cache, err := OpenCache(filepath.Join(dir, ".cache"), nil)
	require.NoError(t, err)

	_, err = CompileFileCached(filepath.Join(dir, "main.kite"), Options{}, cache)
	assert.True(t, errors.IsKind(err, errors.KindSymbolNotFound))
	assert.Equal(t, 0, cache.Stats().Entries)
}
