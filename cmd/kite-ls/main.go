// kite-ls Kite 语言服务器
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/compiler"
	"github.com/tangzhangming/kite/internal/extension"
	"github.com/tangzhangming/kite/internal/lsp"
)

func main() {
	// 解析命令行参数
	showVersion := flag.Bool("version", false, "显示版本信息")
	logFile := flag.String("log", "", "日志文件路径（默认不记录日志）")
	debug := flag.Bool("debug", false, "记录调试日志")
	var extensions stringList
	flag.Var(&extensions, "ext", "加载扩展动态库（可重复）")

	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		fmt.Printf("Kite Language Server v%s\n", compiler.Version)
		os.Exit(0)
	}

	logger, err := newLogger(*logFile, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kite-ls: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	exts, err := extension.Load(nil, extensions, extension.WithLogger(logger))
	if err != nil {
		logger.Error("load extensions", zap.Error(err))
		fmt.Fprintf(os.Stderr, "kite-ls: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = exts.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.Options{
		Builtins: exts.Registry(),
		Logger:   logger,
	})
	if err := server.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("server stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "LSP server error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger stdout 用于协议通信，日志只能写入文件
func newLogger(path string, debug bool) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

// stringList 可重复的字符串参数
type stringList []string

func (s *stringList) String() string     { return fmt.Sprint([]string(*s)) }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func printUsage() {
	fmt.Println("Kite Language Server - LSP 服务器")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  kite-ls [options]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  --version     显示版本信息")
	fmt.Println("  --log <file>  日志文件路径")
	fmt.Println("  --debug       记录调试日志")
	fmt.Println("  --ext <lib>   加载扩展动态库（可重复）")
	fmt.Println()
	fmt.Println("LSP 服务器通过标准输入输出 (stdio) 与编辑器通信。")
}
