package framework_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverfence/serverfence/internal/framework"
)

func TestCache_DetectMemoizesByRoot(t *testing.T) {
	t.Parallel()

	root := writeProject(t, `{"dependencies":{"next":"^15.0.0"}}`)

	cache, err := framework.NewCache(8)
	require.NoError(t, err)

	assert.Equal(t, framework.Next, cache.Detect(root))

	// Rewrite the package.json; the cached answer sticks until Clear.
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"),
		[]byte(`{"dependencies":{"@remix-run/react":"^2.0.0"}}`), 0o600))

	assert.Equal(t, framework.Next, cache.Detect(root))

	cache.Clear()
	assert.Equal(t, framework.Remix, cache.Detect(root))
}

func TestCache_GetSet(t *testing.T) {
	t.Parallel()

	cache, err := framework.NewCache(0)
	require.NoError(t, err)

	_, ok := cache.Get("/proj")
	assert.False(t, ok)

	cache.Set("/proj", framework.SolidStart)

	name, ok := cache.Get("/proj")
	require.True(t, ok)
	assert.Equal(t, framework.SolidStart, name)
}

func TestCache_NoProjectRootIsNotCached(t *testing.T) {
	t.Parallel()

	cache, err := framework.NewCache(4)
	require.NoError(t, err)

	assert.Equal(t, framework.Unknown, cache.Detect(t.TempDir()))
}
