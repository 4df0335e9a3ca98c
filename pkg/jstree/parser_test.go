package jstree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverfence/serverfence/pkg/jstree"
)

func TestLanguageForFile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want string
	}{
		{"app.js", jstree.LangJavaScript},
		{"app.jsx", jstree.LangJavaScript},
		{"app.mjs", jstree.LangJavaScript},
		{"app.cjs", jstree.LangJavaScript},
		{"app.ts", jstree.LangTypeScript},
		{"app.mts", jstree.LangTypeScript},
		{"app.cts", jstree.LangTypeScript},
		{"app.tsx", jstree.LangTSX},
		{"app.TS", jstree.LangTypeScript},
		{"src/dir.with.dots/app.ts", jstree.LangTypeScript},
		{"app.py", ""},
		{"Makefile", ""},
		{"src.v2/README", ""},
		{"trailing.", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, jstree.LanguageForFile(tc.path), "path %q", tc.path)
	}
}

func TestIsSupported(t *testing.T) {
	t.Parallel()

	assert.True(t, jstree.IsSupported("a.tsx"))
	assert.False(t, jstree.IsSupported("a.go"))
}

func TestParse_UnsupportedFile(t *testing.T) {
	t.Parallel()

	_, err := jstree.Parse(context.Background(), "main.go", []byte("package main"))
	require.ErrorIs(t, err, jstree.ErrUnsupportedFile)
}

func TestParse_JavaScript(t *testing.T) {
	t.Parallel()

	tree, err := jstree.Parse(context.Background(), "app.js", []byte(`const x = require('fs');`))
	require.NoError(t, err)
	defer tree.Close()

	root := tree.Root()
	require.True(t, root.OK())
	assert.Equal(t, "program", root.Kind())
	assert.Equal(t, jstree.LangJavaScript, tree.Language())
	require.EqualValues(t, 1, root.NamedChildCount())
	assert.Equal(t, "lexical_declaration", root.NamedChild(0).Kind())
}

func TestParse_TypeScript(t *testing.T) {
	t.Parallel()

	tree, err := jstree.Parse(context.Background(), "app.ts", []byte(`import type { Stats } from 'fs';`))
	require.NoError(t, err)
	defer tree.Close()

	stmt := tree.Root().NamedChild(0)
	assert.Equal(t, "import_statement", stmt.Kind())
	assert.True(t, stmt.HasTokenChild("type"))
}

func TestParse_TSX(t *testing.T) {
	t.Parallel()

	tree, err := jstree.Parse(context.Background(), "app.tsx", []byte(`export const App = () => <div>hello</div>;`))
	require.NoError(t, err)
	defer tree.Close()

	require.True(t, tree.Root().OK())
	assert.Equal(t, jstree.LangTSX, tree.Language())
}

func TestParse_ConcurrentUse(t *testing.T) {
	t.Parallel()

	src := []byte(`import fs from 'fs'; fs.readFileSync('x');`)

	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()

			tree, err := jstree.Parse(context.Background(), "app.ts", src)
			assert.NoError(t, err)

			if tree != nil {
				assert.Equal(t, "program", tree.Root().Kind())
				tree.Close()
			}
		}()
	}

	for i := 0; i < 8; i++ {
		<-done
	}
}
