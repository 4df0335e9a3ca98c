// Package commands implements the serverfence CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/serverfence/serverfence/internal/config"
	"github.com/serverfence/serverfence/internal/framework"
	"github.com/serverfence/serverfence/internal/observability"
	"github.com/serverfence/serverfence/pkg/rule"
)

// newLogger builds the command logger from the root --verbose/--quiet flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	return observability.NewLogger(os.Stderr, verbose, quiet)
}

// buildEngine loads configuration, resolves the framework preset, and
// compiles the analysis engine. startDir anchors framework detection (the
// first path argument for check, the working directory otherwise).
func buildEngine(cfg *config.Config, logger *slog.Logger, startDir string) (*rule.Engine, string, error) {
	opts := cfg.RuleOptions()

	name := cfg.Framework.Name
	if name == "" && cfg.Framework.Detect {
		name = framework.Detect(startDir)
		logger.Debug("framework detected", "framework", name, "dir", startDir)
	}

	if preset, ok := framework.PresetFor(name); ok {
		preset.Apply(&opts)
	}

	engine, err := rule.NewEngine(opts)
	if err != nil {
		return nil, "", fmt.Errorf("build engine: %w", err)
	}

	return engine, name, nil
}
