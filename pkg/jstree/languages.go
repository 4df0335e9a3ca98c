package jstree

import (
	"strings"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"
)

// Language names used throughout the package.
const (
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
)

// languageFuncs maps language names to their tree-sitter GetLanguage functions.
var languageFuncs = map[string]func() unsafe.Pointer{
	LangJavaScript: javascript.GetLanguage,
	LangTypeScript: typescript.GetLanguage,
	LangTSX:        tsx.GetLanguage,
}

// extensionLangs routes file extensions to grammar names. JSX is parsed with
// the JavaScript grammar, which accepts JSX syntax.
var extensionLangs = map[string]string{
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
	".ts":  LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".tsx": LangTSX,
}

var languageCache sync.Map

// GetLanguage returns the tree-sitter Language for the given name, or nil if
// the name is not one of the supported grammars.
func GetLanguage(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}

// LanguageForFile returns the grammar name for the given filename, or empty
// string when the extension is not supported.
func LanguageForFile(filename string) string {
	ext := strings.ToLower(getFileExtension(filename))
	if ext == "" {
		return ""
	}

	return extensionLangs[ext]
}

// IsSupported reports whether the given filename maps to a supported grammar.
func IsSupported(filename string) bool {
	return LanguageForFile(filename) != ""
}

// getFileExtension returns the final dot-extension of a path, including the dot.
func getFileExtension(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}

	// Guard against dots in directory names only.
	if slash := strings.LastIndexAny(filename, `/\`); slash > idx {
		return ""
	}

	return filename[idx:]
}
