// Package framework detects which meta-framework a JavaScript project uses
// and supplies per-framework analysis presets.
package framework

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Framework names.
const (
	TanStackStart = "tanstack-start"
	Next          = "next"
	SolidStart    = "solid-start"
	Remix         = "remix"
	Unknown       = "unknown"
)

// IsKnown reports whether the name is a detectable framework.
func IsKnown(name string) bool {
	switch name {
	case TanStackStart, Next, SolidStart, Remix:
		return true
	default:
		return false
	}
}

// packageJSON is the subset of package.json used for detection.
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// dependencyFrameworks maps marker dependencies to framework names, in
// detection priority order. TanStack wins ties: its server-function API is the
// one the boundary analysis recognizes natively.
var dependencyFrameworks = []struct {
	dep  string
	name string
}{
	{"@tanstack/react-start", TanStackStart},
	{"@tanstack/solid-start", TanStackStart},
	{"@tanstack/start", TanStackStart},
	{"next", Next},
	{"@solidjs/start", SolidStart},
	{"@remix-run/react", Remix},
	{"@remix-run/node", Remix},
}

// Detect walks up from dir looking for a package.json and classifies the
// project by its dependencies, falling back to framework config files at the
// project root. Detection is best-effort: a missing or malformed package.json
// yields Unknown, never an error, so analysis can proceed with generic
// presets.
func Detect(dir string) string {
	name, _ := DetectRoot(dir)

	return name
}

// DetectRoot returns the detected framework together with the directory
// containing the package.json that decided it. The root is the cache key for
// repeated lookups across files of one project.
func DetectRoot(dir string) (name, root string) {
	root, pkg, ok := findPackageJSON(dir)
	if !ok {
		return Unknown, ""
	}

	if name = classify(pkg); name != Unknown {
		return name, root
	}

	return classifyByConfigFile(root), root
}

// configFileFrameworks maps framework config files at the project root to
// framework names. Used as a fallback when package.json names no marker
// dependency (monorepo workspaces often hoist them). app.config.ts is shared
// by TanStack Start and SolidStart and therefore decides nothing.
var configFileFrameworks = []struct {
	file string
	name string
}{
	{"next.config.js", Next},
	{"next.config.mjs", Next},
	{"next.config.ts", Next},
	{"remix.config.js", Remix},
	{"remix.config.cjs", Remix},
	{"remix.config.mjs", Remix},
}

func classifyByConfigFile(root string) string {
	for _, entry := range configFileFrameworks {
		if _, err := os.Stat(filepath.Join(root, entry.file)); err == nil {
			return entry.name
		}
	}

	return Unknown
}

// ProjectRoot returns the nearest ancestor of dir containing a package.json,
// or empty string when there is none.
func ProjectRoot(dir string) string {
	for cur := dir; ; {
		if _, err := os.Stat(filepath.Join(cur, "package.json")); err == nil {
			return cur
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return ""
		}

		cur = parent
	}
}

func findPackageJSON(dir string) (string, *packageJSON, bool) {
	root := ProjectRoot(dir)
	if root == "" {
		return "", nil, false
	}

	raw, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return "", nil, false
	}

	var pkg packageJSON
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return "", nil, false
	}

	return root, &pkg, true
}

func classify(pkg *packageJSON) string {
	has := func(dep string) bool {
		if _, ok := pkg.Dependencies[dep]; ok {
			return true
		}

		_, ok := pkg.DevDependencies[dep]

		return ok
	}

	for _, entry := range dependencyFrameworks {
		if has(entry.dep) {
			return entry.name
		}
	}

	return Unknown
}
