// Package jstree provides tree-sitter parsing for JavaScript, TypeScript, and
// TSX sources, plus span and traversal helpers over the resulting syntax tree.
package jstree

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parser operations.
var (
	ErrUnsupportedFile      = errors.New("unsupported file type")
	ErrLanguageNotAvailable = errors.New("tree-sitter language not available")
	errNoRootNode           = errors.New("parse produced no root node")
	errPoolType             = errors.New("unexpected type in parser pool")
)

// parserPools holds one sync.Pool of tree-sitter parsers per grammar.
// Parsers are stateful and not safe for concurrent use; pooling them keeps
// repeated parses cheap without locking a single instance.
var (
	parserPoolsMu sync.Mutex
	parserPools   = map[string]*sync.Pool{}
)

func poolFor(langName string) (*sync.Pool, error) {
	parserPoolsMu.Lock()
	defer parserPoolsMu.Unlock()

	if pool, ok := parserPools[langName]; ok {
		return pool, nil
	}

	lang := GetLanguage(langName)
	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotAvailable, langName)
	}

	pool := &sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}
	parserPools[langName] = pool

	return pool, nil
}

// Parse parses source content routed by the filename's extension and returns
// the syntax tree. The returned Tree retains the tree-sitter tree; callers
// must Close it when the analysis of the file is complete.
func Parse(ctx context.Context, filename string, content []byte) (*Tree, error) {
	langName := LanguageForFile(filename)
	if langName == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}

	return ParseLanguage(ctx, langName, content)
}

// ParseLanguage parses source content with the named grammar.
func ParseLanguage(ctx context.Context, langName string, content []byte) (*Tree, error) {
	pool, err := poolFor(langName)
	if err != nil {
		return nil, err
	}

	tsParser, ok := pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", langName, err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, errNoRootNode
	}

	return &Tree{lang: langName, src: content, tree: tree, root: root}, nil
}
