package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tangzhangming/kite/internal/config"
	"github.com/tangzhangming/kite/internal/lexer"
	"github.com/tangzhangming/kite/internal/parser"
	"github.com/tangzhangming/kite/internal/repl"
)

// readSource 读取源文件，返回绝对路径与内容
func readSource(arg string) (string, string, error) {
	path, err := filepath.Abs(arg)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return path, string(data), nil
}

func newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, source, err := readSource(args[0])
			if err != nil {
				return err
			}
			tokens, err := lexer.Tokenize(source, path)
			if err != nil {
				return report(err, path)
			}
			out := cmd.OutOrStdout()
			for _, tok := range tokens {
				fmt.Fprintln(out, tok)
			}
			return nil
		},
	}
}

func newASTCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the parsed syntax tree of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, source, err := readSource(args[0])
			if err != nil {
				return err
			}
			program, err := parser.ParseSource(source, path)
			if err != nil {
				return report(err, path)
			}
			out := cmd.OutOrStdout()
			for i, node := range program.Body {
				fmt.Fprintf(out, "[%d] %s\n", i, node)
			}
			return nil
		},
	}
}

func newReplCommand() *cobra.Command {
	var annotate bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session that prints RA text for each input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject("")
			if err != nil {
				return err
			}
			defer p.close()

			rc := repl.DefaultConfig()
			rc.Annotate = annotate
			rc.Builtins = p.exts.Registry()
			rc.Logger = p.logger
			if home, err := os.UserHomeDir(); err == nil {
				rc.HistoryFile = filepath.Join(home, ".kite_history")
			}
			return repl.RunTerminal(rc)
		},
	}
	cmd.Flags().BoolVar(&annotate, "annotate", false, "annotate RA text with source lines")
	return cmd
}

func newInitCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a " + config.FileName + " in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			path := filepath.Join(dir, config.FileName)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", config.FileName)
			}

			cfg := config.GenerateDefault(dir)
			if name != "" {
				cfg.Project.Name = name
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s for project %q\n", config.FileName, cfg.Project.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name (defaults to the directory name)")
	return cmd
}
