package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/serverfence/serverfence/pkg/rule"
)

// configName is the config file name without extension.
const configName = ".serverfence"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for serverfence settings.
const envPrefix = "SERVERFENCE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// defaultCacheSize is the default framework detection cache capacity.
const defaultCacheSize = 128

// defaultMetricsListen is the default Prometheus endpoint address.
const defaultMetricsListen = "127.0.0.1:9464"

// Load loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used. Unknown keys in the
// config file are an error: a typoed option must not silently fall back to a
// default.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	})
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("rule.server_modules", []string{})
	viperCfg.SetDefault("rule.server_external_packages", []string{})
	viperCfg.SetDefault("rule.server_file_patterns", []string{})
	viperCfg.SetDefault("rule.client_file_patterns", []string{})
	viperCfg.SetDefault("rule.ignore_files", []string{})
	viperCfg.SetDefault("rule.check_server_only_marker", true)
	viperCfg.SetDefault("rule.check_server_functions", true)
	viperCfg.SetDefault("rule.server_function_names", []string{})
	viperCfg.SetDefault("rule.report_unused_imports", true)
	viperCfg.SetDefault("rule.mode", rule.ModeClientOnly)
	viperCfg.SetDefault("rule.marker", rule.DefaultMarker)

	viperCfg.SetDefault("framework.detect", true)
	viperCfg.SetDefault("framework.name", "")
	viperCfg.SetDefault("framework.cache_size", defaultCacheSize)

	viperCfg.SetDefault("output.format", FormatTable)
	viperCfg.SetDefault("output.color", ColorAuto)

	viperCfg.SetDefault("metrics.enabled", false)
	viperCfg.SetDefault("metrics.listen", defaultMetricsListen)
}
