// repl.go - Kite REPL
//
// 每次输入与之前接受的输入拼成一个程序重新编译（每次都是新的会话），
// 只打印新增的 RA 代码。编译失败的输入不会被接受。支持：
// - 多行输入（括号未闭合时继续读取）
// - 历史记录（liner，保存在历史文件中）
// - 特殊命令（:help, :quit, :reset, :load, :ra, :history）

package repl

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/builtin"
	"github.com/tangzhangming/kite/internal/compiler"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/token"
)

// inputName 错误信息中的文件名
const inputName = "<repl>"

// maxHistory 保留的历史记录条数
const maxHistory = 1000

// LineReader 行输入；*liner.State 满足这个接口
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// REPL 交互式编译器
type REPL struct {
	config   Config
	reader   LineReader
	writer   io.Writer
	reporter *errors.Reporter

	history  []string
	accepted []string // 已接受的输入
	output   string   // 已接受程序的 RA 代码
}

// Config REPL 配置
type Config struct {
	PromptPrimary  string
	PromptContinue string
	HistoryFile    string // 为空时不保存历史
	Annotate       bool
	Builtins       *builtin.Registry
	Logger         *zap.Logger
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		PromptPrimary:  ">>> ",
		PromptContinue: "... ",
	}
}

// New 创建使用给定输入输出的 REPL
func New(config Config, reader LineReader, writer io.Writer) *REPL {
	return &REPL{
		config:   config,
		reader:   reader,
		writer:   writer,
		reporter: errors.NewReporterTo(writer),
	}
}

// RunTerminal 在终端上运行 REPL，退出时保存历史
func RunTerminal(config Config) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	r := New(config, ln, os.Stdout)
	ln.SetCompleter(r.Completions)

	if config.HistoryFile != "" {
		if f, err := os.Open(config.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	err := r.Run()

	if config.HistoryFile != "" {
		if f, createErr := os.Create(config.HistoryFile); createErr == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return err
}

// Run 运行 REPL，直到输入结束或 :quit
func (r *REPL) Run() error {
	r.printWelcome()

	var buffer strings.Builder
	for {
		prompt := r.config.PromptPrimary
		if buffer.Len() > 0 {
			prompt = r.config.PromptContinue
		}

		line, err := r.reader.Prompt(prompt)
		if err != nil {
			if stderrors.Is(err, liner.ErrPromptAborted) {
				buffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(r.writer, "\nBye!")
				return nil
			}
			return err
		}

		// 处理特殊命令
		if buffer.Len() == 0 && strings.HasPrefix(line, ":") {
			if quit := r.handleCommand(line); quit {
				return nil
			}
			continue
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)

		// 检查是否需要继续输入
		if needsMoreInput(buffer.String()) {
			continue
		}

		input := buffer.String()
		buffer.Reset()
		if strings.TrimSpace(input) == "" {
			continue
		}

		r.addHistory(input)
		r.execute(input)
	}
}

// printWelcome 打印欢迎信息
func (r *REPL) printWelcome() {
	fmt.Fprintf(r.writer, "Kite REPL v%s\n", compiler.Version)
	fmt.Fprintln(r.writer, "Type :help for help, :quit to exit")
	fmt.Fprintln(r.writer)
}

// handleCommand 处理特殊命令，返回是否退出
func (r *REPL) handleCommand(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case ":help", ":h", ":?":
		r.printHelp()

	case ":quit", ":q", ":exit":
		fmt.Fprintln(r.writer, "Bye!")
		return true

	case ":reset", ":clear":
		r.Reset()
		fmt.Fprintln(r.writer, "Session reset.")

	case ":load", ":l":
		if len(args) < 1 {
			fmt.Fprintln(r.writer, "Usage: :load <filename>")
			break
		}
		r.loadFile(args[0])

	case ":ra":
		fmt.Fprint(r.writer, r.output)

	case ":source":
		for _, input := range r.accepted {
			fmt.Fprintln(r.writer, input)
		}

	case ":history", ":hist":
		for i, item := range r.history {
			fmt.Fprintf(r.writer, "%4d  %s\n", i+1, item)
		}

	default:
		fmt.Fprintf(r.writer, "Unknown command: %s\n", cmd)
		fmt.Fprintln(r.writer, "Type :help for available commands.")
	}
	return false
}

// printHelp 打印帮助信息
func (r *REPL) printHelp() {
	fmt.Fprintln(r.writer, "Available commands:")
	fmt.Fprintln(r.writer, "  :help, :h, :?     Show this help message")
	fmt.Fprintln(r.writer, "  :quit, :q, :exit  Exit the REPL")
	fmt.Fprintln(r.writer, "  :reset, :clear    Forget every accepted input")
	fmt.Fprintln(r.writer, "  :load <file>      Compile a file as one input")
	fmt.Fprintln(r.writer, "  :ra               Show the RA code of the whole session")
	fmt.Fprintln(r.writer, "  :source           Show the accepted source")
	fmt.Fprintln(r.writer, "  :history, :hist   Show input history")
	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, "Multi-line input:")
	fmt.Fprintln(r.writer, "  Unfinished input (open brackets or quotes)")
	fmt.Fprintln(r.writer, "  continues on the next line.")
	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, "Examples:")
	fmt.Fprintln(r.writer, "  >>> var x: int = 10")
	fmt.Fprintln(r.writer, "  >>> sout(x * 2)")
	fmt.Fprintln(r.writer, "  >>> fun add(a: int, b: int): int {")
	fmt.Fprintln(r.writer, "  ...     return a + b")
	fmt.Fprintln(r.writer, "  ... }")
}

// Reset 清空已接受的输入
func (r *REPL) Reset() {
	r.accepted = nil
	r.output = ""
}

// loadFile 把文件内容作为一次输入
func (r *REPL) loadFile(filename string) {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(r.writer, "Error loading file: %v\n", err)
		return
	}
	if r.execute(string(source)) {
		fmt.Fprintf(r.writer, "Loaded: %s\n", filename)
	}
}

// addHistory 添加到历史记录，连续重复的输入只记一次
func (r *REPL) addHistory(input string) {
	if len(r.history) > 0 && r.history[len(r.history)-1] == input {
		return
	}
	r.history = append(r.history, input)
	if len(r.history) > maxHistory {
		r.history = r.history[len(r.history)-maxHistory:]
	}
	r.reader.AppendHistory(input)
}

// execute 编译输入并打印新增的 RA 代码，返回输入是否被接受
func (r *REPL) execute(input string) bool {
	text, err := r.Eval(input)
	if err != nil {
		program := strings.Join(append(append([]string{}, r.accepted...), input), "\n")
		r.reporter.SetSource(inputName, program)
		compiler.Report(r.reporter, err, inputName, program)
		return false
	}
	fmt.Fprint(r.writer, text)
	return true
}

// Eval 编译输入，成功时接受它并返回新增的 RA 代码
func (r *REPL) Eval(input string) (string, error) {
	program := strings.Join(append(append([]string{}, r.accepted...), input), "\n")
	text, err := compiler.CompileSource(program, inputName, compiler.Options{
		Annotate: r.config.Annotate,
		Logger:   r.config.Logger,
		Builtins: r.config.Builtins,
	})
	if err != nil {
		return "", err
	}

	added := text
	if strings.HasPrefix(text, r.output) {
		added = text[len(r.output):]
	}
	r.accepted = append(r.accepted, input)
	r.output = text
	return added, nil
}

// needsMoreInput 括号未闭合或字符串未结束时需要更多输入
func needsMoreInput(input string) bool {
	braceDepth := 0   // {}
	parenDepth := 0   // ()
	bracketDepth := 0 // []
	inString := false
	stringChar := byte(0)
	escaped := false

	for i := 0; i < len(input); i++ {
		c := input[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if inString {
			if c == stringChar {
				inString = false
			}
			continue
		}

		switch c {
		case '"', '\'':
			inString = true
			stringChar = c
		case '{':
			braceDepth++
		case '}':
			braceDepth--
		case '(':
			parenDepth++
		case ')':
			parenDepth--
		case '[':
			bracketDepth++
		case ']':
			bracketDepth--
		}
	}

	return braceDepth > 0 || parenDepth > 0 || bracketDepth > 0 || inString
}

// Completions 补全：关键字、内置函数与特殊命令
func (r *REPL) Completions(line string) []string {
	start := strings.LastIndexAny(line, " \t(,[{") + 1
	head, prefix := line[:start], line[start:]

	var candidates []string
	if start == 0 && strings.HasPrefix(prefix, ":") {
		candidates = []string{":help", ":quit", ":reset", ":load", ":ra", ":source", ":history"}
	} else {
		candidates = token.Keywords()
		registry := r.config.Builtins
		if registry == nil {
			registry = builtin.Default()
		}
		candidates = append(candidates, registry.Names()...)
	}

	var out []string
	for _, c := range candidates {
		if prefix != "" && strings.HasPrefix(c, prefix) {
			out = append(out, head+c)
		}
	}
	return out
}
