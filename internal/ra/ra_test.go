package ra

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	assert.Equal(t, "END", New(OpEnd).Render())
	assert.Equal(t, "ADD: a_0, 1, %t0", New(OpAdd, "a_0", Int(1), "%t0").Render())
	assert.Equal(t, `PUT: "a, b", %t1`, New(OpPut, Str("a, b"), "%t1").Render())
	assert.Equal(t, "CREL: %t0, GE, %t1", New(OpCrel, "%t0", string(RelGE), "%t1").String())
}

func TestOperands(t *testing.T) {
	assert.Equal(t, "-3", Int(-3))
	assert.Equal(t, "3.14", Float(3.14))
	assert.Equal(t, "2.0", Float(2))
	assert.Equal(t, `"line\n"`, Str("line\n"))
	assert.Equal(t, "true", Bool(true))
	assert.Equal(t, "; x = 1", Annotation("x = %d", 1))
	assert.Equal(t, "; a b", Annotation("a\nb"))
}

func TestOpNames(t *testing.T) {
	for op, name := range opNames {
		got, ok := LookupOp(name)
		require.True(t, ok, name)
		assert.Equal(t, op, got)
	}
	_, ok := LookupOp("NOPE")
	assert.False(t, ok)
	assert.Equal(t, "UNKNOWN(0)", OpInvalid.String())
}

func TestRelOf(t *testing.T) {
	tests := map[string]Rel{
		"==": RelEQ, "!=": RelNE, ">": RelGT, ">=": RelGE,
		"<": RelLT, "<=": RelLE, "&&": RelAND, "||": RelOR,
	}
	for operator, want := range tests {
		got, ok := RelOf(operator)
		require.True(t, ok, operator)
		assert.Equal(t, want, got)
	}
	_, ok := RelOf("+")
	assert.False(t, ok)
}

func TestParseText(t *testing.T) {
	text := strings.Join([]string{
		"; prologue",
		"FUNI: f_add_0, a_1, b_2",
		"ADD: a_1, b_2, %t0",
		`SOUT: "x, y", %t0`,
		"RET: %t0",
		"END",
		"",
	}, "\n")
	instrs, err := ParseText(text)
	require.NoError(t, err)
	require.Len(t, instrs, 5)

	assert.Equal(t, OpFuni, instrs[0].Op)
	assert.Equal(t, []string{"f_add_0", "a_1", "b_2"}, instrs[0].Args)
	assert.Equal(t, 2, instrs[0].Line)
	assert.Equal(t, []string{`"x, y"`, "%t0"}, instrs[2].Args)
	assert.Equal(t, OpEnd, instrs[4].Op)
	assert.Empty(t, instrs[4].Args)
	assert.NoError(t, CheckBalance(instrs))
}

func TestParseTextErrors(t *testing.T) {
	_, err := ParseText("FROB: a")
	assert.Error(t, err)
	_, err = ParseText(`PUT: "open, %t0`)
	assert.Error(t, err)
}

func TestCheckBalance(t *testing.T) {
	tests := []struct {
		name string
		text string
		ok   bool
	}{
		{"empty", "", true},
		{"nested", "FUNC: f_0\nUNTIL: %L0, %L1\nEND\nEND", true},
		{"unclosed", "FUNI: f_0\nUNTIL: %L0, %L1\nEND", false},
		{"stray end", "END", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instrs, err := ParseText(tt.text)
			require.NoError(t, err)
			if tt.ok {
				assert.NoError(t, CheckBalance(instrs))
			} else {
				assert.Error(t, CheckBalance(instrs))
			}
		})
	}
}

func TestBuilderNesting(t *testing.T) {
	for n := 0; n <= 6; n++ {
		b := NewBuilder(false)
		b.Emit(OpAllot, "x_0")
		for i := 0; i < n; i++ {
			b.Enter()
			b.Emit(OpPut, Int(int64(i)), "%t0")
		}
		assert.Equal(t, n, b.Depth())
		for i := 0; i < n; i++ {
			assert.Equal(t, "PUT: "+Int(int64(n-1-i))+", %t0\n", b.Exit())
		}
		assert.Equal(t, 0, b.Depth())

		// 退出后写入回到原来的缓冲区
		b.Emit(OpEnd)
		assert.Equal(t, "ALLOT: x_0\nEND\n", b.String(), "n=%d", n)
	}
}

func TestBuilderScoped(t *testing.T) {
	b := NewBuilder(true)
	b.Emit(OpFunc, "f_main_0")
	body, err := b.Scoped(func() error {
		b.Annotate("body")
		b.Emit(OpSout, Str("hi"))
		b.Enter() // 未配对
		b.Emit(OpExit)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, b.Depth())
	assert.Equal(t, "; body\nSOUT: \"hi\"\n", body)

	b.Raw(body)
	b.Emit(OpEnd)
	assert.Equal(t, "FUNC: f_main_0\n; body\nSOUT: \"hi\"\nEND\n", b.String())

	boom := errors.New("boom")
	_, err = b.Scoped(func() error {
		b.Emit(OpRet)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, b.Depth())
}

func TestBuilderAnnotateDisabled(t *testing.T) {
	b := NewBuilder(false)
	b.Annotate("hidden %d", 1)
	b.Raw("PUT: 1, %t0")
	assert.Equal(t, "PUT: 1, %t0\n", b.String())
	assert.False(t, b.Annotating())

	b.Reset()
	assert.Empty(t, b.String())
}

func TestBuilderExitAtRootPanics(t *testing.T) {
	assert.Panics(t, func() { NewBuilder(false).Exit() })
}
