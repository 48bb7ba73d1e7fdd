package ra

import (
	"fmt"
	"strconv"
	"strings"
)

// Instr 一条 RA 指令
type Instr struct {
	Op   Op
	Args []string
	Line int // 在文本中的行号，只由 ParseText 填写
}

// New 创建指令
func New(op Op, args ...string) Instr {
	return Instr{Op: op, Args: args}
}

// Render 渲染为一行文本（不含换行）
func (in Instr) Render() string {
	if len(in.Args) == 0 {
		return in.Op.String()
	}
	return in.Op.String() + ": " + strings.Join(in.Args, ", ")
}

func (in Instr) String() string { return in.Render() }

// ============================================================================
// 操作数拼写
// ============================================================================

// 特殊操作数
const (
	Null      = "null"
	True      = "true"
	False     = "false"
	EmptyList = "[]"
	EmptyDict = "{}"
)

// Int 整数操作数
func Int(v int64) string { return strconv.FormatInt(v, 10) }

// Float 浮点数操作数，总是带小数点
func Float(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// Str 字符串操作数（双引号，带转义）
func Str(v string) string { return strconv.Quote(v) }

// Bool 布尔操作数
func Bool(v bool) string {
	if v {
		return True
	}
	return False
}

// Annotation 注释行
func Annotation(format string, args ...interface{}) string {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	return "; " + strings.ReplaceAll(text, "\n", " ")
}

// ============================================================================
// 文本读取
// ============================================================================

// ParseText 把 RA 文本解析回指令序列，跳过注释与空行
func ParseText(text string) ([]Instr, error) {
	var out []Instr
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		name, rest, hasArgs := strings.Cut(line, ":")
		op, ok := LookupOp(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("line %d: unknown opcode %q", i+1, name)
		}
		in := Instr{Op: op, Line: i + 1}
		if hasArgs {
			args, err := splitOperands(rest)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			in.Args = args
		}
		out = append(out, in)
	}
	return out, nil
}

// splitOperands 按逗号拆分操作数，字符串里的逗号不拆
func splitOperands(s string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if quoted {
		return nil, fmt.Errorf("unterminated string operand")
	}
	args = append(args, strings.TrimSpace(current.String()))
	return args, nil
}

// CheckBalance 检查每个 FUNC / FUNI / UNTIL 都有且只有一个 END 与之配对
func CheckBalance(instrs []Instr) error {
	var open []Instr
	for _, in := range instrs {
		switch {
		case in.Op.OpensScope():
			open = append(open, in)
		case in.Op == OpEnd:
			if len(open) == 0 {
				return fmt.Errorf("line %d: END without an open scope", in.Line)
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		last := open[len(open)-1]
		return fmt.Errorf("line %d: %s is never closed", last.Line, last.Op)
	}
	return nil
}
