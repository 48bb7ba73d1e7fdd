// kite 编译器命令行
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/compiler"
	"github.com/tangzhangming/kite/internal/config"
	"github.com/tangzhangming/kite/internal/errors"
	"github.com/tangzhangming/kite/internal/extension"
	"github.com/tangzhangming/kite/internal/i18n"
)

// errReported 诊断已经输出，只需要以非零状态退出
var errReported = fmt.Errorf("compilation failed")

// 全局参数
var (
	flagVerbose bool
	flagLang    string
	flagNoColor bool
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		if err != errReported {
			errors.NewReporter().Report(err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "kite",
		Short:         "Kite compiler: translates .kite sources into RA instruction text",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagLang != "" {
				i18n.SetLanguageFromString(flagLang)
			} else {
				i18n.SetLanguage(i18n.DetectLanguage())
			}
			if flagNoColor || !isatty.IsTerminal(os.Stderr.Fd()) {
				errors.DisableColors()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "print compiler debug logs")
	flags.StringVar(&flagLang, "lang", "", "diagnostic language (en|zh)")
	flags.BoolVar(&flagNoColor, "no-color", false, "disable colored diagnostics")

	root.AddCommand(
		newBuildCommand(),
		newCheckCommand(),
		newTokensCommand(),
		newASTCommand(),
		newReplCommand(),
		newInitCommand(),
		newVersionCommand(),
	)
	return root
}

// newLogger --verbose 时使用开发模式日志，否则不输出
func newLogger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// project 一次命令执行所需的项目上下文
type project struct {
	config *config.Config
	root   string
	logger *zap.Logger
	exts   *extension.Set
}

// openProject 加载 file 所属项目的 kite.toml 与扩展
func openProject(file string) (*project, error) {
	start := file
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		start = wd
	}

	cfg, root, err := config.Discover(start)
	if err != nil {
		return nil, err
	}
	if root == "" {
		if file != "" {
			root = filepath.Dir(file)
		} else {
			root = start
		}
	}

	p := &project{config: cfg, root: root, logger: newLogger()}

	paths := make([]string, 0, len(cfg.Build.Extensions))
	for _, ext := range cfg.Build.Extensions {
		paths = append(paths, cfg.Resolve(root, ext))
	}
	p.exts, err = extension.Load(nil, paths, extension.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// options 编译选项
func (p *project) options(annotate bool) compiler.Options {
	return compiler.Options{
		Annotate: annotate || p.config.Build.Annotate,
		Logger:   p.logger,
		Builtins: p.exts.Registry(),
	}
}

// entry 命令行未给出文件时使用配置中的入口文件
func (p *project) entry(args []string) (string, error) {
	if len(args) > 0 {
		return filepath.Abs(args[0])
	}
	if p.config.Project.Entry == "" {
		return "", fmt.Errorf("no input file and no entry in %s", config.FileName)
	}
	return p.config.Resolve(p.root, p.config.Project.Entry), nil
}

func (p *project) close() {
	if err := p.exts.Close(); err != nil {
		p.logger.Warn("extension unload", zap.Error(err))
	}
	_ = p.logger.Sync()
}

// report 输出编译错误，返回 errReported
func report(err error, filename string) error {
	source, _ := os.ReadFile(filename)
	compiler.Report(errors.NewReporter(), err, filename, string(source))
	return errReported
}
