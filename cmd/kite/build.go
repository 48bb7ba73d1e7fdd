package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tangzhangming/kite/internal/compiler"
)

// raExtension 输出文件后缀
const raExtension = ".ra"

func newBuildCommand() *cobra.Command {
	var (
		output   string
		annotate bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "build [file]",
		Short: "Compile a source file into RA instruction text",
		Long: "Compile a source file into RA instruction text.\n\n" +
			"Without a file argument the entry of kite.toml is built. The output goes to\n" +
			"<build.output>/<name>.ra unless -o is given; -o - writes to stdout.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(firstArg(args))
			if err != nil {
				return err
			}
			defer p.close()

			file, err := p.entry(args)
			if err != nil {
				return err
			}

			var cache *compiler.Cache
			if p.config.Build.Cache && !noCache {
				cache, err = compiler.OpenCache(p.config.Resolve(p.root, p.config.Build.CacheDir), p.logger)
				if err != nil {
					p.logger.Warn("cache disabled", zap.Error(err))
					cache = nil
				}
			}

			text, err := compiler.CompileFileCached(file, p.options(annotate), cache)
			if cache != nil {
				if ferr := cache.Flush(); ferr != nil {
					p.logger.Warn("cache flush", zap.Error(ferr))
				}
			}
			if err != nil {
				return report(err, file)
			}

			if output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			if output == "" {
				name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + raExtension
				output = filepath.Join(p.config.Resolve(p.root, p.config.Build.Output), name)
			}
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Built %s -> %s\n", file, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout)")
	cmd.Flags().BoolVar(&annotate, "annotate", false, "annotate RA text with source lines")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "ignore the compile cache")
	return cmd
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Compile a source file and report diagnostics without writing output",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(firstArg(args))
			if err != nil {
				return err
			}
			defer p.close()

			file, err := p.entry(args)
			if err != nil {
				return err
			}
			if _, err := compiler.CompileFile(file, p.options(false)); err != nil {
				return report(err, file)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", file)
			return nil
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return args[0]
	}
	return abs
}
