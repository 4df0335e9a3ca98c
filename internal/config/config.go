// Package config loads and validates serverfence configuration from file,
// environment, and defaults.
package config

import (
	"errors"

	"github.com/serverfence/serverfence/internal/framework"
	"github.com/serverfence/serverfence/pkg/rule"
)

// Config is the top-level configuration struct for serverfence.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Rule      RuleConfig      `mapstructure:"rule"`
	Framework FrameworkConfig `mapstructure:"framework"`
	Output    OutputConfig    `mapstructure:"output"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// RuleConfig holds the analysis rule settings.
type RuleConfig struct {
	ServerModules          []string `mapstructure:"server_modules"`
	ServerExternalPackages []string `mapstructure:"server_external_packages"`
	ServerFilePatterns     []string `mapstructure:"server_file_patterns"`
	ClientFilePatterns     []string `mapstructure:"client_file_patterns"`
	IgnoreFiles            []string `mapstructure:"ignore_files"`
	CheckServerOnlyMarker  bool     `mapstructure:"check_server_only_marker"`
	CheckServerFunctions   bool     `mapstructure:"check_server_functions"`
	ServerFunctionNames    []string `mapstructure:"server_function_names"`
	ReportUnusedImports    bool     `mapstructure:"report_unused_imports"`
	Mode                   string   `mapstructure:"mode"`
	Marker                 string   `mapstructure:"marker"`
}

// FrameworkConfig holds framework detection settings.
type FrameworkConfig struct {
	Detect    bool   `mapstructure:"detect"`
	Name      string `mapstructure:"name"`
	CacheSize int    `mapstructure:"cache_size"`
}

// OutputConfig holds rendering settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidFormat indicates an unknown output format.
	ErrInvalidFormat = errors.New("output.format must be \"table\" or \"json\"")
	// ErrInvalidColor indicates an unknown color mode.
	ErrInvalidColor = errors.New("output.color must be \"auto\", \"always\", or \"never\"")
	// ErrInvalidFramework indicates an unknown framework override name.
	ErrInvalidFramework = errors.New("framework.name is not a known framework")
	// ErrInvalidCacheSize indicates the detection cache size is negative.
	ErrInvalidCacheSize = errors.New("framework.cache_size must be non-negative")
	// ErrInvalidListen indicates the metrics endpoint is enabled without an address.
	ErrInvalidListen = errors.New("metrics.listen must be set when metrics.enabled is true")
)

// Validate checks Config invariants and returns the first error found.
// Rule-level validation (modes, glob patterns) happens when the options are
// compiled into an engine; only config-file shape is checked here.
func (c *Config) Validate() error {
	if c.Output.Format != FormatTable && c.Output.Format != FormatJSON {
		return ErrInvalidFormat
	}

	if c.Output.Color != ColorAuto && c.Output.Color != ColorAlways && c.Output.Color != ColorNever {
		return ErrInvalidColor
	}

	if c.Framework.Name != "" && !framework.IsKnown(c.Framework.Name) {
		return ErrInvalidFramework
	}

	if c.Framework.CacheSize < 0 {
		return ErrInvalidCacheSize
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return ErrInvalidListen
	}

	return nil
}

// RuleOptions translates the config into analysis options. Empty list fields
// are left empty so the rule defaults apply.
func (c *Config) RuleOptions() rule.Options {
	return rule.Options{
		ServerModules:          c.Rule.ServerModules,
		ServerExternalPackages: c.Rule.ServerExternalPackages,
		ServerFilePatterns:     c.Rule.ServerFilePatterns,
		ClientFilePatterns:     c.Rule.ClientFilePatterns,
		IgnoreFiles:            c.Rule.IgnoreFiles,
		CheckServerOnlyMarker:  c.Rule.CheckServerOnlyMarker,
		CheckServerFunctions:   c.Rule.CheckServerFunctions,
		ServerFunctionNames:    c.Rule.ServerFunctionNames,
		ReportUnusedImports:    c.Rule.ReportUnusedImports,
		Mode:                   c.Rule.Mode,
		Marker:                 c.Rule.Marker,
	}
}
