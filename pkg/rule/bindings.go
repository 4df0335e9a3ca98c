package rule

import (
	"github.com/serverfence/serverfence/pkg/jstree"
)

// candidateKind classifies declarations that can never be confined: they are
// promoted to violations unconditionally unless the file carries the marker.
type candidateKind uint8

const (
	candSideEffectImport candidateKind = iota
	candReexport
	candBareRequire
)

// candidate is an immediate violation candidate collected during traversal.
type candidate struct {
	kind     candidateKind
	module   string
	attr     attribution
	callSpan jstree.Span // bare require only: the call site, for the boundary test
}

// attribution locates the node a diagnostic is attached to: the module
// string-literal node of the offending declaration.
type attribution struct {
	span  jstree.Span
	start jstree.Point
	end   jstree.Point
}

func attributeTo(n jstree.Node) attribution {
	return attribution{span: n.Span(), start: n.StartPoint(), end: n.EndPoint()}
}

// trackedBinding is a server-only import or require with local names whose
// reads decide its fate during reconciliation.
type trackedBinding struct {
	module      string
	decls       []*declaration
	attr        attribution
	isRequire   bool
	requireCall jstree.Span
}

// bindPattern declares every name bound by a destructuring pattern (or plain
// identifier) into the target scope, excluding the binding identifiers from
// read collection. It returns the declarations created, in source order.
func (a *FileAnalysis) bindPattern(n jstree.Node, target *scope) []*declaration {
	if !n.OK() {
		return nil
	}

	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		a.skipSpans[n.Span()] = struct{}{}

		return []*declaration{a.st.declare(n.Text(), target)}
	case "object_pattern", "array_pattern":
		var decls []*declaration
		for _, child := range n.NamedChildren() {
			decls = append(decls, a.bindPattern(child, target)...)
		}

		return decls
	case "pair_pattern":
		return a.bindPattern(n.Field("value"), target)
	case "assignment_pattern", "object_assignment_pattern":
		// Default-value expressions on the right are ordinary reads and are
		// left for the generic identifier visit.
		return a.bindPattern(n.Field("left"), target)
	case "rest_pattern":
		if n.NamedChildCount() > 0 {
			return a.bindPattern(n.NamedChild(0), target)
		}

		return nil
	default:
		return nil
	}
}

// EnterImport handles an import_statement. Invoked by Run's traversal; the
// callback is exported as part of the visitor contract.
func (a *FileAnalysis) EnterImport(n jstree.Node) {
	srcNode := n.Field("source")
	if !srcNode.OK() || srcNode.Kind() != "string" {
		return
	}

	module := stringValue(srcNode)
	typeOnly := n.HasTokenChild("type")

	// Collect local names. Type-only specifiers are excluded from bindings
	// but their identifiers are still excluded from read collection.
	var decls []*declaration

	for _, clause := range n.NamedChildren() {
		if clause.Kind() != "import_clause" {
			continue
		}

		decls = append(decls, a.collectImportClause(clause, typeOnly)...)
	}

	if a.opts.CheckServerOnlyMarker && module == a.opts.Marker {
		a.markerFound = true

		return
	}

	if !a.opts.modules.Contains(module) {
		return
	}

	if len(decls) == 0 {
		if typeOnly {
			return
		}

		if n.NamedChildCount() == 1 && n.NamedChild(0).Span() == srcNode.Span() {
			// No import clause at all: a side-effect import.
			a.candidates = append(a.candidates, candidate{
				kind:   candSideEffectImport,
				module: module,
				attr:   attributeTo(srcNode),
			})
		}

		return
	}

	a.bindings = append(a.bindings, &trackedBinding{
		module: module,
		decls:  decls,
		attr:   attributeTo(srcNode),
	})
}

// collectImportClause declares the clause's value-level local names in the
// program scope and returns their declarations.
func (a *FileAnalysis) collectImportClause(clause jstree.Node, typeOnly bool) []*declaration {
	var decls []*declaration

	for _, child := range clause.NamedChildren() {
		switch child.Kind() {
		case "identifier": // default import
			decl := a.declareImported(child)
			if !typeOnly {
				decls = append(decls, decl)
			}
		case "namespace_import":
			for _, inner := range child.NamedChildren() {
				if inner.Kind() != "identifier" {
					continue
				}

				decl := a.declareImported(inner)
				if !typeOnly {
					decls = append(decls, decl)
				}
			}
		case "named_imports":
			for _, spec := range child.NamedChildren() {
				if spec.Kind() != "import_specifier" {
					continue
				}

				decl := a.declareImportSpecifier(spec)
				if decl != nil && !typeOnly && !spec.HasTokenChild("type") {
					decls = append(decls, decl)
				}
			}
		}
	}

	return decls
}

// declareImported declares one imported local name in the program scope.
func (a *FileAnalysis) declareImported(name jstree.Node) *declaration {
	a.skipSpans[name.Span()] = struct{}{}

	return a.st.declare(name.Text(), a.st.program)
}

// declareImportSpecifier handles `x` and `x as y`: only the local name (the
// alias when present) becomes a declaration; the exported name is excluded
// from read collection.
func (a *FileAnalysis) declareImportSpecifier(spec jstree.Node) *declaration {
	name := spec.Field("name")
	alias := spec.Field("alias")

	local := name
	if alias.OK() {
		local = alias

		if name.OK() {
			a.skipSpans[name.Span()] = struct{}{}
		}
	}

	if !local.OK() || local.Kind() != "identifier" {
		return nil
	}

	return a.declareImported(local)
}

// EnterExport handles an export_statement. Only re-exports (those with a
// source) concern this analysis: they cannot be confined, so a re-export of a
// server-only module with at least one value-level specifier (or none at all,
// i.e. `export *`) is an immediate candidate. Local exports are left alone;
// their identifiers are ordinary reads.
func (a *FileAnalysis) EnterExport(n jstree.Node) {
	srcNode := n.Field("source")
	if !srcNode.OK() || srcNode.Kind() != "string" {
		return
	}

	// Specifier identifiers in a re-export are not reads of local bindings.
	a.excludeExportNames(n)

	module := stringValue(srcNode)
	if !a.opts.modules.Contains(module) {
		return
	}

	if n.HasTokenChild("type") {
		return
	}

	hasClause := false
	hasValueSpecifier := false
	hasStar := n.HasTokenChild("*")

	for _, child := range n.NamedChildren() {
		switch child.Kind() {
		case "export_clause":
			hasClause = true

			for _, spec := range child.NamedChildren() {
				if spec.Kind() == "export_specifier" && !spec.HasTokenChild("type") {
					hasValueSpecifier = true
				}
			}
		case "namespace_export":
			hasStar = true
		}
	}

	if hasClause && !hasValueSpecifier {
		return
	}

	if !hasClause && !hasStar {
		return
	}

	a.candidates = append(a.candidates, candidate{
		kind:   candReexport,
		module: module,
		attr:   attributeTo(srcNode),
	})
}

// excludeExportNames marks every identifier under the statement's clauses as
// a non-read.
func (a *FileAnalysis) excludeExportNames(n jstree.Node) {
	for _, child := range n.NamedChildren() {
		switch child.Kind() {
		case "export_clause", "namespace_export":
			a.markIdentifiersSkipped(child)
		}
	}
}

func (a *FileAnalysis) markIdentifiersSkipped(n jstree.Node) {
	if n.Kind() == "identifier" {
		a.skipSpans[n.Span()] = struct{}{}

		return
	}

	for _, child := range n.NamedChildren() {
		a.markIdentifiersSkipped(child)
	}
}

// enterVariableDeclaration binds declarator patterns into the proper scope
// (var hoists to the function scope, let/const stay block-scoped) and detects
// `require(...)` initializers.
func (a *FileAnalysis) enterVariableDeclaration(n jstree.Node) {
	target := a.st.current
	if n.Kind() == "variable_declaration" {
		target = a.st.current.functionScope()
	}

	for _, declarator := range n.NamedChildren() {
		if declarator.Kind() != "variable_declarator" {
			continue
		}

		decls := a.bindPattern(declarator.Field("name"), target)

		value := declarator.Field("value")
		if !value.OK() || value.Kind() != "call_expression" {
			continue
		}

		module, argNode, ok := requireArgument(value)
		if !ok {
			continue
		}

		a.consumedRequires[value.Span()] = struct{}{}

		if a.opts.CheckServerOnlyMarker && module == a.opts.Marker {
			if a.atModuleTopLevel() {
				a.markerFound = true
			}

			continue
		}

		if !a.opts.modules.Contains(module) {
			continue
		}

		a.bindings = append(a.bindings, &trackedBinding{
			module:      module,
			decls:       decls,
			attr:        attributeTo(argNode),
			isRequire:   true,
			requireCall: value.Span(),
		})
	}
}

// EnterCall handles a call_expression: boundary discovery plus bare-require
// detection. Requires consumed by a variable declarator were already handled.
func (a *FileAnalysis) EnterCall(n jstree.Node) {
	if a.opts.CheckServerFunctions {
		a.discoverBoundary(n)
	}

	if _, consumed := a.consumedRequires[n.Span()]; consumed {
		return
	}

	module, argNode, ok := requireArgument(n)
	if !ok {
		return
	}

	if a.opts.CheckServerOnlyMarker && module == a.opts.Marker {
		if a.atModuleTopLevel() {
			a.markerFound = true
		}

		return
	}

	if !a.opts.modules.Contains(module) {
		return
	}

	a.candidates = append(a.candidates, candidate{
		kind:     candBareRequire,
		module:   module,
		attr:     attributeTo(argNode),
		callSpan: n.Span(),
	})
}

// requireArgument matches `require("literal")` and returns the module name
// and the string-literal argument node. Non-literal arguments are not a
// match; the engine stays silent on ambiguous input.
func requireArgument(call jstree.Node) (string, jstree.Node, bool) {
	callee := call.Field("function")
	if !callee.OK() || callee.Kind() != "identifier" || callee.Text() != "require" {
		return "", jstree.Node{}, false
	}

	args := call.Field("arguments")
	if !args.OK() || args.NamedChildCount() == 0 {
		return "", jstree.Node{}, false
	}

	argNode := args.NamedChild(0)
	if argNode.Kind() != "string" {
		return "", jstree.Node{}, false
	}

	return stringValue(argNode), argNode, true
}

// atModuleTopLevel reports whether the traversal currently sits outside every
// function scope. The marker opt-out is only recognized at module top level.
func (a *FileAnalysis) atModuleTopLevel() bool {
	return a.st.current.functionScope() == a.st.program
}
