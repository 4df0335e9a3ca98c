package framework_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverfence/serverfence/internal/framework"
	"github.com/serverfence/serverfence/pkg/rule"
)

func TestPresetFor(t *testing.T) {
	t.Parallel()

	for _, name := range []string{framework.TanStackStart, framework.Next, framework.SolidStart, framework.Remix} {
		preset, ok := framework.PresetFor(name)
		require.True(t, ok, "framework %q should have a preset", name)
		assert.NotEmpty(t, preset.ClientFilePatterns)
	}

	_, ok := framework.PresetFor(framework.Unknown)
	assert.False(t, ok)
}

func TestPreset_ApplyFillsEmptyFields(t *testing.T) {
	t.Parallel()

	preset, ok := framework.PresetFor(framework.TanStackStart)
	require.True(t, ok)

	opts := rule.DefaultOptions()
	preset.Apply(&opts)

	assert.Equal(t, preset.ClientFilePatterns, opts.ClientFilePatterns)
	assert.Equal(t, preset.ServerFunctionNames, opts.ServerFunctionNames)
}

func TestPreset_ApplyKeepsUserConfiguration(t *testing.T) {
	t.Parallel()

	preset, ok := framework.PresetFor(framework.Next)
	require.True(t, ok)

	opts := rule.DefaultOptions()
	opts.ClientFilePatterns = []string{"app/**/*.tsx"}
	opts.ServerFilePatterns = []string{"lib/server/**"}

	preset.Apply(&opts)

	assert.Equal(t, []string{"app/**/*.tsx"}, opts.ClientFilePatterns)

	// Server patterns merge instead of replacing.
	assert.Contains(t, opts.ServerFilePatterns, "lib/server/**")
	for _, pattern := range preset.ServerFilePatterns {
		assert.Contains(t, opts.ServerFilePatterns, pattern)
	}
}

func TestPreset_AppliedOptionsCompile(t *testing.T) {
	t.Parallel()

	for _, name := range []string{framework.TanStackStart, framework.Next, framework.SolidStart, framework.Remix} {
		preset, ok := framework.PresetFor(name)
		require.True(t, ok)

		opts := rule.DefaultOptions()
		preset.Apply(&opts)

		_, err := rule.NewEngine(opts)
		require.NoError(t, err, "preset %q should produce valid options", name)
	}
}
