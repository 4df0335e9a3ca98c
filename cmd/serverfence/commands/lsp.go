package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/serverfence/serverfence/internal/config"
	"github.com/serverfence/serverfence/internal/observability"
	"github.com/serverfence/serverfence/pkg/lsp"
	"github.com/serverfence/serverfence/pkg/version"
)

// NewLSPCommand creates the LSP server command.
func NewLSPCommand() *cobra.Command {
	var (
		configPath  string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Long: `Start an LSP server that checks open documents on every edit and
publishes server-only import violations as editor diagnostics, with a quick
fix that inserts the server-only marker import.`,
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

			srv := lsp.NewServer(engine, version.Version)

			if metricsAddr != "" {
				telemetry, telErr := observability.NewTelemetry()
				if telErr != nil {
					return telErr
				}
				defer func() { _ = telemetry.Shutdown(context.Background()) }()

				metrics, metErr := observability.NewCheckMetrics(telemetry.Meter())
				if metErr != nil {
					return metErr
				}

				diag, diagErr := observability.NewDiagnosticsServer(metricsAddr, telemetry)
				if diagErr != nil {
					return diagErr
				}
				defer func() { _ = diag.Shutdown(context.Background()) }()

				logger.Info("metrics endpoint listening", "addr", diag.Addr())
				srv.SetMetrics(metrics)
			}

			srv.Run()

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")

	return cmd
}
