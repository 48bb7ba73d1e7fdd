package repl

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tangzhangming/kite/internal/errors"
)

// scripted 按顺序返回预设的输入行
type scripted struct {
	lines   []string
	prompts []string
	history []string
}

func (s *scripted) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scripted) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func run(t *testing.T, lines ...string) (string, *scripted) {
	t.Helper()
	errors.DisableColors()
	in := &scripted{lines: lines}
	var out bytes.Buffer
	require.NoError(t, New(DefaultConfig(), in, &out).Run())
	return out.String(), in
}

func TestEvalPrintsOnlyNewCode(t *testing.T) {
	r := New(DefaultConfig(), &scripted{}, io.Discard)

	text, err := r.Eval("var x: int = 1")
	require.NoError(t, err)
	assert.Equal(t, "ALLOT: x_0\nPUT: 1, x_0\n", text)

	text, err = r.Eval("sout(x)")
	require.NoError(t, err)
	assert.Equal(t, "SOUT: x_0\n", text)

	// 失败的输入不被接受
	_, err = r.Eval("sout(y)")
	require.Error(t, err)
	text, err = r.Eval("sout(x + 1)")
	require.NoError(t, err)
	assert.Equal(t, "ADD: x_0, 1, %t0\nSOUT: %t0\n", text)

	r.Reset()
	_, err = r.Eval("sout(x)")
	assert.Error(t, err)
}

func TestRunMultiline(t *testing.T) {
	out, in := run(t,
		"fun add(a: int, b: int): int {",
		"    return a + b",
		"}",
		"sout(add(1, 2))",
	)
	assert.Contains(t, out, "FUNI: f_add_2, a_0, b_1\n")
	assert.Contains(t, out, "IVOK: f_add_2, 1, 2, %t1\nSOUT: %t1\n")
	assert.Equal(t, []string{">>> ", "... ", "... ", ">>> ", ">>> "}, in.prompts)
	require.Len(t, in.history, 2)
	assert.True(t, strings.HasPrefix(in.history[0], "fun add"))
}

func TestRunReportsErrors(t *testing.T) {
	out, _ := run(t, "sout(missing)", "var = 1", "sout(1)")
	assert.Contains(t, out, "error[E0100]")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "SOUT: 1\n")
}

func TestCommands(t *testing.T) {
	out, _ := run(t, "var a = 1", ":ra", ":source", ":reset", ":ra", ":bogus", ":quit", "sout(2)")
	assert.Equal(t, 2, strings.Count(out, "ALLOT: a_0\n"), "printed once on input and once by :ra")
	assert.Contains(t, out, "var a = 1\n")
	assert.Contains(t, out, "Session reset.")
	assert.Contains(t, out, "Unknown command: :bogus")
	assert.NotContains(t, out, "SOUT: 2")
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input string
		more  bool
	}{
		{"sout(1)", false},
		{"fun f() {", true},
		{"var l = [1,", true},
		{`var s = "a{`, true},
		{`var s = "a{"`, false},
		{`var s = "\"("`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.more, needsMoreInput(tt.input), tt.input)
	}
}

func TestCompletions(t *testing.T) {
	r := New(DefaultConfig(), &scripted{}, io.Discard)
	assert.Contains(t, r.Completions("so"), "sout")
	assert.Contains(t, r.Completions("var x = ty"), "var x = typeof")
	assert.Contains(t, r.Completions("wh"), "while")
	assert.Equal(t, []string{":reset", ":ra"}, r.Completions(":r"))
	assert.Empty(t, r.Completions(""))
}
