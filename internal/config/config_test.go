package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverfence/serverfence/internal/config"
	"github.com/serverfence/serverfence/pkg/rule"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".serverfence.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, rule.ModeClientOnly, cfg.Rule.Mode)
	assert.Equal(t, rule.DefaultMarker, cfg.Rule.Marker)
	assert.True(t, cfg.Rule.CheckServerOnlyMarker)
	assert.True(t, cfg.Rule.CheckServerFunctions)
	assert.True(t, cfg.Rule.ReportUnusedImports)
	assert.True(t, cfg.Framework.Detect)
	assert.Equal(t, config.FormatTable, cfg.Output.Format)
	assert.Equal(t, config.ColorAuto, cfg.Output.Color)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
rule:
  mode: all-non-server
  server_external_packages: [native-addon]
  report_unused_imports: false
framework:
  name: next
  detect: false
output:
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, rule.ModeAllNonServer, cfg.Rule.Mode)
	assert.Equal(t, []string{"native-addon"}, cfg.Rule.ServerExternalPackages)
	assert.False(t, cfg.Rule.ReportUnusedImports)
	assert.Equal(t, "next", cfg.Framework.Name)
	assert.False(t, cfg.Framework.Detect)
	assert.Equal(t, config.FormatJSON, cfg.Output.Format)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, `
rule:
  reprot_unused_imports: false
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid keys")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr error
	}{
		{"bad format", "output:\n  format: xml\n", config.ErrInvalidFormat},
		{"bad color", "output:\n  color: sometimes\n", config.ErrInvalidColor},
		{"bad framework", "framework:\n  name: angular\n", config.ErrInvalidFramework},
		{"negative cache", "framework:\n  cache_size: -1\n", config.ErrInvalidCacheSize},
		{"metrics without listen", "metrics:\n  enabled: true\n  listen: \"\"\n", config.ErrInvalidListen},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)

			_, err := config.Load(path)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SERVERFENCE_RULE_MODE", rule.ModeAllNonServer)

	path := writeConfig(t, "")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, rule.ModeAllNonServer, cfg.Rule.Mode)
}

func TestRuleOptions_RoundTripsIntoEngine(t *testing.T) {
	path := writeConfig(t, `
rule:
  server_modules: [my-orm]
  server_function_names: [serverAction]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	engine, err := rule.NewEngine(cfg.RuleOptions())
	require.NoError(t, err)

	assert.True(t, engine.IsServerOnly("my-orm"))
	assert.False(t, engine.IsServerOnly("fs"))
}
