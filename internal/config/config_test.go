package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[project]
name = "demo"
version = "1.2.0"
entry = "src/main.kite"

[build]
annotate = true
include = ["lib", "/opt/kite/std"]
extensions = ["ext/libmath.so"]
cache = true
`))
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, "src/main.kite", cfg.Project.Entry)
	assert.True(t, cfg.Build.Annotate)
	assert.True(t, cfg.Build.Cache)
	assert.Equal(t, DefaultOutputDir, cfg.Build.Output)
	assert.Equal(t, DefaultCacheDir, cfg.Build.CacheDir)
	assert.Equal(t, []string{"/root/p/lib", "/opt/kite/std"}, cfg.IncludeDirs("/root/p"))
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("[project\nname = 1"))
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := GenerateDefault(filepath.Join(dir, "My_Project"))
	assert.Equal(t, "my-project", cfg.Project.Name)
	assert.Equal(t, "main.kite", cfg.Project.Entry)

	path := filepath.Join(dir, FileName)
	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Project, loaded.Project)
	assert.Equal(t, cfg.Build.Output, loaded.Build.Output)
	assert.Equal(t, cfg.Build.CacheDir, loaded.Build.CacheDir)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("[project]\nname = \"x\"\n"), 0644))
	file := filepath.Join(nested, "a.kite")
	require.NoError(t, os.WriteFile(file, []byte("pass\n"), 0644))

	cfg, got, err := Discover(file)
	require.NoError(t, err)
	want, _ := filepath.Abs(root)
	assert.Equal(t, want, got)
	assert.Equal(t, "x", cfg.Project.Name)
	assert.Equal(t, want, ProjectRoot(nested))
}

func TestDiscoverWithoutConfig(t *testing.T) {
	cfg, root, err := Discover(filepath.Join(t.TempDir(), "missing.kite"))
	require.NoError(t, err)
	assert.Empty(t, root)
	assert.Equal(t, DefaultOutputDir, cfg.Build.Output)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "hello-world", sanitizeName("Hello World"))
	assert.Equal(t, "my-app", sanitizeName("!!!"))
}
