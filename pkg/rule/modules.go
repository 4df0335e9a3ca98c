package rule

import "strings"

// nodePrefix is the scheme prefix of Node.js builtin specifiers.
const nodePrefix = "node:"

// ModuleSet is a set of server-only module names supporting the subpath rule:
// a configured name also covers any specifier beginning with that name
// followed by "/". Every configured module is a package family root; there is
// no way to opt a root out of covering its subpaths other than not
// configuring it.
type ModuleSet struct {
	exact map[string]struct{}
	names []string
}

// NewModuleSet builds a ModuleSet from module names.
func NewModuleSet(modules []string) *ModuleSet {
	exact := make(map[string]struct{}, len(modules))
	names := make([]string, 0, len(modules))

	for _, m := range modules {
		if _, dup := exact[m]; dup {
			continue
		}

		exact[m] = struct{}{}
		names = append(names, m)
	}

	return &ModuleSet{exact: exact, names: names}
}

// Len returns the number of configured module names.
func (s *ModuleSet) Len() int {
	return len(s.names)
}

// Contains reports whether the specifier names a server-only module: an exact
// member, a subpath of a member, or a node:-prefixed form of either.
func (s *ModuleSet) Contains(specifier string) bool {
	if s.matches(specifier) {
		return true
	}

	if trimmed, ok := strings.CutPrefix(specifier, nodePrefix); ok {
		return s.matches(trimmed)
	}

	return false
}

func (s *ModuleSet) matches(specifier string) bool {
	if _, ok := s.exact[specifier]; ok {
		return true
	}

	for _, name := range s.names {
		if strings.HasPrefix(specifier, name) && len(specifier) > len(name) && specifier[len(name)] == '/' {
			return true
		}
	}

	return false
}

// IsServerOnly reports whether the specifier names a server-only module in
// the engine's configured set.
func (e *Engine) IsServerOnly(specifier string) bool {
	return e.opts.modules.Contains(specifier)
}
