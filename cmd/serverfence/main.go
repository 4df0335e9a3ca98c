// Package main provides the entry point for the serverfence CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/serverfence/serverfence/cmd/serverfence/commands"
	"github.com/serverfence/serverfence/pkg/version"
)

// exitCodeViolations is returned when the check found violations.
const exitCodeViolations = 1

// exitCodeError is returned for operational failures.
const exitCodeError = 2

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "serverfence",
		Short: "Keep server-only imports out of browser-bound JavaScript",
		Long: `serverfence statically checks JavaScript and TypeScript files for
imports, requires, and re-exports of server-only modules that would leak into
code shipped to a browser. A reference is safe only when every read of it is
confined to a server execution boundary such as a createServerFn handler.

Commands:
  check     Check files or directories for server-only import violations
  detect    Detect the project's meta-framework
  lsp       Start the Language Server Protocol server on stdio
  mcp       Start the Model Context Protocol server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewLSPCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(commands.NewValidateConfigCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		if errors.Is(err, commands.ErrViolationsFound) {
			os.Exit(exitCodeViolations)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeError)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "serverfence %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
