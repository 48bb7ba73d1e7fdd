package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tangzhangming/kite/internal/compiler"
	"github.com/tangzhangming/kite/internal/extension"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kite %s\n", compiler.Version)
			fmt.Fprintf(out, "  cache format:  %s\n", compiler.CacheVersion)
			fmt.Fprintf(out, "  extension abi: %d\n", extension.ABIVersion)
			fmt.Fprintf(out, "  platform:      %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
