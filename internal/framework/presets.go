package framework

import (
	"github.com/serverfence/serverfence/pkg/rule"
)

// Preset carries framework-specific analysis defaults. Client patterns
// replace the generic defaults; server patterns and function names merge into
// them.
type Preset struct {
	ClientFilePatterns  []string
	ServerFilePatterns  []string
	ServerFunctionNames []string
}

// presets by framework name. Unknown has no entry; generic rule defaults
// apply unchanged.
var presets = map[string]Preset{
	TanStackStart: {
		ClientFilePatterns: []string{
			"**/routes/**/*.{js,jsx,ts,tsx}",
			"**/components/**/*.{js,jsx,ts,tsx}",
			"**/*.{jsx,tsx}",
		},
		ServerFunctionNames: []string{
			"createServerFn",
			"createServerOnlyFn",
			"createMiddleware",
			"createServerFileRoute",
		},
	},
	Next: {
		ClientFilePatterns: []string{
			"**/app/**/*.{js,jsx,ts,tsx}",
			"**/pages/**/*.{js,jsx,ts,tsx}",
			"**/components/**/*.{js,jsx,ts,tsx}",
			"**/*.{jsx,tsx}",
		},
		ServerFilePatterns: []string{
			"**/app/api/**/*.{js,ts}",
			"**/pages/api/**/*.{js,ts}",
			"**/middleware.{js,ts}",
		},
	},
	SolidStart: {
		ClientFilePatterns: []string{
			"**/routes/**/*.{js,jsx,ts,tsx}",
			"**/components/**/*.{js,jsx,ts,tsx}",
			"**/*.{jsx,tsx}",
		},
		ServerFunctionNames: []string{
			"createServerFn",
			"createMiddleware",
		},
	},
	Remix: {
		ClientFilePatterns: []string{
			"**/app/**/*.{js,jsx,ts,tsx}",
			"**/*.{jsx,tsx}",
		},
		ServerFilePatterns: []string{
			"**/*.server.{js,jsx,ts,tsx}",
			"**/app/entry.server.{js,jsx,ts,tsx}",
		},
	},
}

// PresetFor returns the preset for a framework name. ok is false for Unknown
// or unrecognized names.
func PresetFor(name string) (Preset, bool) {
	preset, ok := presets[name]

	return preset, ok
}

// Apply folds the preset into analysis options. Explicit user configuration
// wins: preset client patterns and function names fill in only when the user
// left those fields empty, while preset server patterns always merge (the
// rule treats server patterns as additive).
func (p Preset) Apply(opts *rule.Options) {
	if len(opts.ClientFilePatterns) == 0 {
		opts.ClientFilePatterns = append([]string{}, p.ClientFilePatterns...)
	}

	opts.ServerFilePatterns = append(opts.ServerFilePatterns, p.ServerFilePatterns...)

	if len(opts.ServerFunctionNames) == 0 && len(p.ServerFunctionNames) > 0 {
		opts.ServerFunctionNames = append([]string{}, p.ServerFunctionNames...)
	}
}
