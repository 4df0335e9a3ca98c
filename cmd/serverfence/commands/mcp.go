package commands

import (
	"github.com/spf13/cobra"

	"github.com/serverfence/serverfence/internal/config"
	"github.com/serverfence/serverfence/internal/mcp"
	"github.com/serverfence/serverfence/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol server on stdio",
		Long: `Start an MCP server exposing the analysis as tools AI agents can invoke:
  - serverfence_check:  check a source file for server-only import violations
  - serverfence_detect: detect the project's meta-framework`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			logger := newLogger(cobraCmd)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			engine, _, err := buildEngine(cfg, logger, ".")
			if err != nil {
				return err
			}

			srv, err := mcp.NewServer(mcp.ServerDeps{
				Engine:  engine,
				Logger:  logger,
				Version: version.Version,
			})
			if err != nil {
				return err
			}

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")

	return cmd
}
