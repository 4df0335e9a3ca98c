package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-enry/go-enry/v2"
	"github.com/spf13/cobra"

	"github.com/serverfence/serverfence/internal/config"
	"github.com/serverfence/serverfence/internal/observability"
	"github.com/serverfence/serverfence/internal/render"
	"github.com/serverfence/serverfence/pkg/jstree"
	"github.com/serverfence/serverfence/pkg/rule"
)

// ErrViolationsFound signals a completed check that reported violations. The
// main entry point maps it to a distinct exit code.
var ErrViolationsFound = errors.New("violations found")

// maxFileSize caps the file size read for analysis (4 MB); anything larger is
// generated or bundled output, not hand-written source.
const maxFileSize = 4 << 20

// skippedDirs are never descended into.
var skippedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"dist":         {},
	"build":        {},
	".next":        {},
	".output":      {},
}

// CheckCommand holds the flags for the check command.
type CheckCommand struct {
	configPath string
	format     string
	colorMode  string
	mode       string
	frameName  string
	noDetect   bool
	showFixes  bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &CheckCommand{}

	cobraCmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check files or directories for server-only import violations",
		Long: `Check walks the given paths (default: the current directory), classifies
every JavaScript/TypeScript file, and reports imports, requires, and
re-exports of server-only modules whose reads are not confined to a server
execution boundary.

Exit status is 0 when clean, 1 when violations were found, 2 on error.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cmd.Run,
	}

	cobraCmd.Flags().StringVarP(&cmd.configPath, "config", "c", "", "config file path (default: .serverfence.yaml in CWD or $HOME)")
	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "", "output format: table or json (default from config)")
	cobraCmd.Flags().StringVar(&cmd.colorMode, "color", "", "color mode: auto, always, or never (default from config)")
	cobraCmd.Flags().StringVarP(&cmd.mode, "mode", "m", "", "analysis mode: client-only or all-non-server (default from config)")
	cobraCmd.Flags().StringVar(&cmd.frameName, "framework", "", "framework preset override (tanstack-start, next, solid-start, remix)")
	cobraCmd.Flags().BoolVar(&cmd.noDetect, "no-detect", false, "disable framework auto-detection")
	cobraCmd.Flags().BoolVar(&cmd.showFixes, "show-fixes", false, "print a fix preview under each diagnostic")

	return cobraCmd
}

// Run executes the check command.
func (c *CheckCommand) Run(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	c.applyFlagOverrides(cfg)

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	engine, frameName, err := buildEngine(cfg, logger, startDirFor(paths[0]))
	if err != nil {
		return err
	}

	logger.Debug("check starting", "paths", paths, "framework", frameName, "mode", engine.Options().Mode)

	metrics, telemetry, err := initMetrics(cfg)
	if err != nil {
		return err
	}

	if telemetry != nil {
		defer func() {
			_ = telemetry.Shutdown(context.Background())
		}()
	}

	start := time.Now()

	reports, summary, err := c.checkPaths(cmd.Context(), engine, metrics, logger, paths)
	if err != nil {
		return err
	}

	summary.Duration = time.Since(start)

	renderer := render.New(cmd.OutOrStdout(), cfg.Output.Format, cfg.Output.Color)
	if err := renderer.Render(reports, summary); err != nil {
		return err
	}

	if c.showFixes {
		c.printFixPreviews(cmd, reports)
	}

	if summary.Violations > 0 {
		return ErrViolationsFound
	}

	return nil
}

// applyFlagOverrides folds command-line flags over the loaded config.
func (c *CheckCommand) applyFlagOverrides(cfg *config.Config) {
	if c.format != "" {
		cfg.Output.Format = c.format
	}

	if c.colorMode != "" {
		cfg.Output.Color = c.colorMode
	}

	if c.mode != "" {
		cfg.Rule.Mode = c.mode
	}

	if c.frameName != "" {
		cfg.Framework.Name = c.frameName
	}

	if c.noDetect {
		cfg.Framework.Detect = false
	}
}

// checkPaths walks every path and checks each supported file.
func (c *CheckCommand) checkPaths(
	ctx context.Context,
	engine *rule.Engine,
	metrics *observability.CheckMetrics,
	logger *slog.Logger,
	paths []string,
) ([]*rule.FileReport, render.Summary, error) {
	var (
		reports []*rule.FileReport
		summary render.Summary
	)

	for _, root := range paths {
		walkErr := walkSources(root, func(path string, data []byte) error {
			report, err := checkOne(ctx, engine, metrics, path, data)
			if err != nil {
				logger.Warn("skipping file", "path", path, "error", err)

				return nil
			}

			summary.FilesScanned++

			if report.Class == rule.FileClientEligible {
				summary.FilesEligible++
			}

			summary.Violations += len(report.Diagnostics)
			reports = append(reports, report)

			return nil
		})
		if walkErr != nil {
			return nil, render.Summary{}, walkErr
		}
	}

	return reports, summary, nil
}

func checkOne(
	ctx context.Context,
	engine *rule.Engine,
	metrics *observability.CheckMetrics,
	path string,
	data []byte,
) (*rule.FileReport, error) {
	start := time.Now()

	report, err := engine.Check(ctx, path, data)
	if err != nil {
		return nil, err
	}

	if metrics != nil {
		metrics.RecordFile(ctx, report.ClassName, time.Since(start))

		for _, diag := range report.Diagnostics {
			metrics.RecordViolation(ctx, string(diag.Kind), diag.ReasonName)
		}
	}

	return report, nil
}

// walkSources visits every checkable source file under root. Vendored paths,
// binaries, oversized files, and unsupported extensions are skipped.
func walkSources(root string, visit func(path string, data []byte) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		data, readErr := os.ReadFile(root)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", root, readErr)
		}

		return visit(root, data)
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if _, skip := skippedDirs[entry.Name()]; skip {
				return filepath.SkipDir
			}

			return nil
		}

		if !jstree.IsSupported(path) || enry.IsVendor(path) {
			return nil
		}

		fileInfo, infoErr := entry.Info()
		if infoErr != nil || fileInfo.Size() > maxFileSize {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}

		if enry.IsBinary(data) {
			return nil
		}

		return visit(path, data)
	})
}

// printFixPreviews writes a colored diff for the first suggestion of each
// file that has one.
func (c *CheckCommand) printFixPreviews(cmd *cobra.Command, reports []*rule.FileReport) {
	for _, report := range reports {
		if len(report.Diagnostics) == 0 || len(report.Diagnostics[0].Suggestions) == 0 {
			continue
		}

		data, err := os.ReadFile(report.Path)
		if err != nil {
			continue
		}

		preview := render.FixPreview(string(data), report.Diagnostics[0].Suggestions[0])
		if preview == "" {
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n%s\n", report.Path, preview)
	}
}

// initMetrics sets up telemetry when the config enables the endpoint.
func initMetrics(cfg *config.Config) (*observability.CheckMetrics, *observability.Telemetry, error) {
	if !cfg.Metrics.Enabled {
		return nil, nil, nil
	}

	telemetry, err := observability.NewTelemetry()
	if err != nil {
		return nil, nil, err
	}

	metrics, err := observability.NewCheckMetrics(telemetry.Meter())
	if err != nil {
		return nil, nil, err
	}

	if _, err := observability.NewDiagnosticsServer(cfg.Metrics.Listen, telemetry); err != nil {
		return nil, nil, err
	}

	return metrics, telemetry, nil
}

// startDirFor anchors framework detection at the first checked path.
func startDirFor(path string) string {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return path
	}

	return filepath.Dir(path)
}
