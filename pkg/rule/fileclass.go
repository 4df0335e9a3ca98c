package rule

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FileClass is the analysis role assigned to a file path.
type FileClass int

const (
	// FileIgnored matches an ignore pattern; no diagnostics, ever.
	FileIgnored FileClass = iota
	// FileServer matches a server file pattern; server-only imports are free.
	FileServer
	// FileClientEligible proceeds to analysis.
	FileClientEligible
	// FileNotEligible is outside the client patterns in client-only mode.
	FileNotEligible
)

// String returns the class name.
func (c FileClass) String() string {
	switch c {
	case FileIgnored:
		return "ignored"
	case FileServer:
		return "server"
	case FileClientEligible:
		return "client-eligible"
	case FileNotEligible:
		return "not-eligible"
	default:
		return "unknown"
	}
}

// ClassifyFile decides whether a file should be analyzed and under what role.
// The decision order short-circuits: ignore patterns first, then server
// patterns, then mode-dependent client eligibility. Paths are normalized to
// forward slashes before matching; matching is case-sensitive.
func (e *Engine) ClassifyFile(path string) FileClass {
	return classifyFile(path, e.opts)
}

func classifyFile(path string, opts *compiledOptions) FileClass {
	normalized := filepath.ToSlash(path)

	if matchesAny(opts.ignorePatterns, normalized) {
		return FileIgnored
	}

	if matchesAny(opts.serverPatterns, normalized) {
		return FileServer
	}

	if opts.Mode == ModeClientOnly {
		if matchesAny(opts.clientPatterns, normalized) {
			return FileClientEligible
		}

		return FileNotEligible
	}

	return FileClientEligible
}

// matchesAny reports whether the path matches any pattern. Patterns were
// validated at option-compile time; Match cannot fail on them.
func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, path)
		if err == nil && ok {
			return true
		}
	}

	return false
}
