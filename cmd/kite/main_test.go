package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildToStdout(t *testing.T) {
	file := writeSource(t, t.TempDir(), "main.kite", "sout(1)\n")

	out, err := execute(t, "build", "-o", "-", file)
	require.NoError(t, err)
	assert.Equal(t, "SOUT: 1\n", out)
}

func TestBuildWritesOutputDir(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "kite.toml", "[project]\nname = \"demo\"\nentry = \"app.kite\"\n")
	writeSource(t, dir, "app.kite", "var x = 2\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	out, err := execute(t, "build")
	require.NoError(t, err)
	assert.Contains(t, out, "app.ra")

	text, err := os.ReadFile(filepath.Join(dir, "build", "app.ra"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "x_0")
}

func TestCheckReportsFailure(t *testing.T) {
	file := writeSource(t, t.TempDir(), "bad.kite", "sout(y)\n")

	_, err := execute(t, "check", file)
	assert.Equal(t, errReported, err)

	good := writeSource(t, filepath.Dir(file), "good.kite", "sout(1)\n")
	out, err := execute(t, "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestTokensAndAST(t *testing.T) {
	file := writeSource(t, t.TempDir(), "main.kite", "var a = 1\n")

	out, err := execute(t, "tokens", file)
	require.NoError(t, err)
	assert.Contains(t, out, "var")

	out, err = execute(t, "ast", file)
	require.NoError(t, err)
	assert.Contains(t, out, "[0] ")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "kite ")
	assert.Contains(t, out, "extension abi: 1")
}
