// Package rule implements the server-only import analysis: it decides, for a
// single JavaScript or TypeScript source file, whether imports, requires, and
// re-exports of server-only modules are safe to keep in code that may ship to
// a browser. A reference to a server-only binding is safe only when every read
// of it is lexically confined to a function recognized as a server execution
// boundary.
package rule

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Analysis modes.
const (
	// ModeClientOnly analyzes only files matching the client file patterns.
	ModeClientOnly = "client-only"
	// ModeAllNonServer analyzes every file that is not ignored or a server file.
	ModeAllNonServer = "all-non-server"
)

// DefaultMarker is the sentinel module whose import opts a file out of the
// analysis.
const DefaultMarker = "server-only"

// conflictingDirective is the ecosystem directive that marks a file as
// client-side; the marker suggestion is suppressed when it is present.
const conflictingDirective = "use client"

// DefaultServerFunctionNames are the recognized server-function factory names.
// A function passed anywhere into a call chain rooted at one of these names
// runs only server-side.
func DefaultServerFunctionNames() []string {
	return []string{
		"createServerFn",
		"createServerOnlyFn",
		"createServerRoute",
		"createMiddleware",
	}
}

// DefaultServerFilePatterns match files that are allowed to use server-only
// modules freely. User-supplied patterns are merged with these.
func DefaultServerFilePatterns() []string {
	return []string{
		"**/*.server.{js,jsx,ts,tsx}",
		"**/server/**/*.{js,jsx,ts,tsx}",
		"**/*.config.{js,mjs,cjs,ts,mts,cts}",
	}
}

// DefaultClientFilePatterns match files eligible for analysis in client-only
// mode. User-supplied patterns replace these entirely; framework presets from
// the detection collaborator are applied the same way.
func DefaultClientFilePatterns() []string {
	return []string{
		"**/*.{jsx,tsx}",
		"**/components/**/*.{js,ts,jsx,tsx}",
	}
}

// Options configures the analysis. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	// ServerModules replaces the default server-only module list when set.
	ServerModules []string

	// ServerExternalPackages are merged into the server module set.
	ServerExternalPackages []string

	// ServerFilePatterns are merged with DefaultServerFilePatterns.
	ServerFilePatterns []string

	// ClientFilePatterns replace DefaultClientFilePatterns when set.
	ClientFilePatterns []string

	// IgnoreFiles are glob patterns excluded from analysis entirely.
	IgnoreFiles []string

	// CheckServerOnlyMarker enables the file-level marker opt-out.
	CheckServerOnlyMarker bool

	// CheckServerFunctions enables server-boundary discovery.
	CheckServerFunctions bool

	// ServerFunctionNames replace DefaultServerFunctionNames when set.
	ServerFunctionNames []string

	// ReportUnusedImports reports server-only bindings with zero reads.
	ReportUnusedImports bool

	// Mode is ModeClientOnly or ModeAllNonServer.
	Mode string

	// Marker is the opt-out module name.
	Marker string
}

// DefaultOptions returns the documented option defaults.
func DefaultOptions() Options {
	return Options{
		CheckServerOnlyMarker: true,
		CheckServerFunctions:  true,
		ReportUnusedImports:   true,
		Mode:                  ModeClientOnly,
		Marker:                DefaultMarker,
	}
}

// Sentinel errors for option validation. Configuration problems fail fast,
// before any file is analyzed.
var (
	ErrInvalidMode    = errors.New("mode must be \"client-only\" or \"all-non-server\"")
	ErrInvalidPattern = errors.New("malformed glob pattern")
)

// compiledOptions is the validated, lookup-ready form of Options.
type compiledOptions struct {
	Options

	modules        *ModuleSet
	serverFuncs    map[string]struct{}
	serverPatterns []string
	clientPatterns []string
	ignorePatterns []string
}

func compileOptions(opts Options) (*compiledOptions, error) {
	if opts.Mode == "" {
		opts.Mode = ModeClientOnly
	}

	if opts.Mode != ModeClientOnly && opts.Mode != ModeAllNonServer {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, opts.Mode)
	}

	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}

	modules := opts.ServerModules
	if len(modules) == 0 {
		modules = DefaultServerModules()
	}

	modules = append(append([]string{}, modules...), opts.ServerExternalPackages...)

	funcNames := opts.ServerFunctionNames
	if len(funcNames) == 0 {
		funcNames = DefaultServerFunctionNames()
	}

	serverFuncs := make(map[string]struct{}, len(funcNames))
	for _, name := range funcNames {
		serverFuncs[name] = struct{}{}
	}

	serverPatterns := append(DefaultServerFilePatterns(), opts.ServerFilePatterns...)

	clientPatterns := opts.ClientFilePatterns
	if len(clientPatterns) == 0 {
		clientPatterns = DefaultClientFilePatterns()
	}

	for _, group := range [][]string{serverPatterns, clientPatterns, opts.IgnoreFiles} {
		for _, pattern := range group {
			if !doublestar.ValidatePattern(pattern) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
			}
		}
	}

	return &compiledOptions{
		Options:        opts,
		modules:        NewModuleSet(modules),
		serverFuncs:    serverFuncs,
		serverPatterns: serverPatterns,
		clientPatterns: clientPatterns,
		ignorePatterns: opts.IgnoreFiles,
	}, nil
}
