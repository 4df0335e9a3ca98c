package rule

import (
	"context"
	"fmt"

	"github.com/serverfence/serverfence/pkg/jstree"
)

// Engine holds validated configuration and runs per-file analyses. An Engine
// is immutable after construction and safe for concurrent use; all mutable
// analysis state is local to one FileAnalysis.
type Engine struct {
	opts *compiledOptions
}

// NewEngine validates the options and builds an engine. Malformed
// configuration (bad glob, unknown mode) fails here, before any file is
// analyzed.
func NewEngine(opts Options) (*Engine, error) {
	compiled, err := compileOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("serverfence options: %w", err)
	}

	return &Engine{opts: compiled}, nil
}

// Options returns a copy of the engine's normalized options.
func (e *Engine) Options() Options {
	return e.opts.Options
}

// FileReport is the outcome of checking one file.
type FileReport struct {
	Path        string       `json:"path"`
	Class       FileClass    `json:"-"`
	ClassName   string       `json:"class"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Check classifies the file and, when eligible, parses and analyzes it.
// Files classified Ignored, ServerFile, or NotEligible return a report with
// no diagnostics and no parse work. Running Check twice on identical input
// yields identical reports.
func (e *Engine) Check(ctx context.Context, path string, src []byte) (*FileReport, error) {
	report := &FileReport{Path: path, Class: e.ClassifyFile(path)}
	report.ClassName = report.Class.String()

	if report.Class != FileClientEligible {
		return report, nil
	}

	tree, err := jstree.Parse(ctx, path, src)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", path, err)
	}
	defer tree.Close()

	analysis := e.NewFileAnalysis(tree)
	report.Diagnostics = analysis.Run()

	return report, nil
}

// FileAnalysis is the per-file analysis state: one forward traversal
// populates the binding collector and the boundary discoverer (interleaved by
// visitation order), then Finish reconciles. All state is discarded with the
// value; a FileAnalysis is used for exactly one run.
type FileAnalysis struct {
	opts *compiledOptions
	tree *jstree.Tree
	src  []byte

	st          *symbolTable
	nodeStack   []jstree.Node
	openedScope []bool

	skipSpans        map[jstree.Span]struct{}
	consumedRequires map[jstree.Span]struct{}

	bindings    []*trackedBinding
	candidates  []candidate
	boundaries  []jstree.Span
	boundarySet map[jstree.Span]struct{}

	markerFound bool
}

// NewFileAnalysis prepares an analysis over a parsed tree.
func (e *Engine) NewFileAnalysis(tree *jstree.Tree) *FileAnalysis {
	return &FileAnalysis{
		opts:             e.opts,
		tree:             tree,
		src:              tree.Source(),
		st:               newSymbolTable(tree.Root().Span()),
		skipSpans:        make(map[jstree.Span]struct{}),
		consumedRequires: make(map[jstree.Span]struct{}),
		boundarySet:      make(map[jstree.Span]struct{}),
	}
}

// Run performs the traversal and reconciliation, returning the diagnostics
// for the file.
func (a *FileAnalysis) Run() []Diagnostic {
	a.tree.Walk(a.enter, a.leave)

	return a.Finish()
}

// funcScopeKinds are node kinds that open a function scope.
var funcScopeKinds = map[string]struct{}{
	"function_declaration":           {},
	"generator_function_declaration": {},
	"function_expression":            {},
	"function":                       {},
	"generator_function":             {},
	"arrow_function":                 {},
	"method_definition":              {},
	"class_static_block":             {},
}

func (a *FileAnalysis) parent() jstree.Node {
	if len(a.nodeStack) == 0 {
		return jstree.Node{}
	}

	return a.nodeStack[len(a.nodeStack)-1]
}

func (a *FileAnalysis) enter(n jstree.Node) bool {
	parent := a.parent()
	opened := false
	kind := n.Kind()

	if _, isFunc := funcScopeKinds[kind]; isFunc {
		// A function declaration's name binds in the enclosing scope.
		if kind == "function_declaration" || kind == "generator_function_declaration" {
			a.declareNameField(n)
		}

		a.st.enterScope(scopeFunction, n.Span())

		opened = true

		switch kind {
		case "function_expression", "function", "generator_function":
			// A function expression's name is visible only inside its own body.
			a.declareNameField(n)
		case "arrow_function":
			// An unparenthesized single parameter arrives as the "parameter"
			// field; parenthesized lists come through formal_parameters.
			if param := n.Field("parameter"); param.OK() {
				a.bindPattern(param, a.st.current)
			}
		}
	} else {
		switch kind {
		case "statement_block", "catch_clause":
			a.st.enterScope(scopeBlock, n.Span())

			opened = true

			if kind == "catch_clause" {
				if param := n.Field("parameter"); param.OK() {
					a.bindPattern(param, a.st.current)
				}
			}
		case "for_statement":
			// The initializer's lexical declarations scope over the whole loop.
			a.st.enterScope(scopeBlock, n.Span())

			opened = true
		case "for_in_statement":
			a.st.enterScope(scopeBlock, n.Span())

			opened = true

			a.bindForInLeft(n)
		case "class_declaration":
			a.declareNameField(n)
		case "formal_parameters":
			a.bindParameters(n)
		case "variable_declaration", "lexical_declaration":
			a.enterVariableDeclaration(n)
		case "import_statement":
			a.EnterImport(n)
		case "export_statement":
			a.EnterExport(n)
		case "call_expression":
			a.EnterCall(n)
		case "identifier", "shorthand_property_identifier":
			a.visitIdentifier(n, parent)
		}
	}

	a.nodeStack = append(a.nodeStack, n)
	a.openedScope = append(a.openedScope, opened)

	return true
}

func (a *FileAnalysis) leave(_ jstree.Node) {
	last := len(a.openedScope) - 1
	if last < 0 {
		return
	}

	if a.openedScope[last] {
		a.st.leaveScope()
	}

	a.openedScope = a.openedScope[:last]
	a.nodeStack = a.nodeStack[:len(a.nodeStack)-1]
}

// bindForInLeft declares the loop variable of a for-in/for-of header. Only
// declaration forms bind; `for (x of xs)` assigns to an existing variable and
// its left side stays an ordinary identifier occurrence.
func (a *FileAnalysis) bindForInLeft(n jstree.Node) {
	left := n.Field("left")
	if !left.OK() {
		return
	}

	target := a.st.current
	switch {
	case n.HasTokenChild("var"):
		target = a.st.current.functionScope()
	case n.HasTokenChild("let"), n.HasTokenChild("const"):
	default:
		return
	}

	a.bindPattern(left, target)
}

// declareNameField declares a node's "name" field identifier in the current
// scope and excludes it from read collection.
func (a *FileAnalysis) declareNameField(n jstree.Node) {
	name := n.Field("name")
	if name.OK() && name.Kind() == "identifier" {
		a.skipSpans[name.Span()] = struct{}{}
		a.st.declare(name.Text(), a.st.current)
	}
}

// bindParameters declares every name bound by a parameter list into the
// function scope opened by the enclosing function node. TypeScript wraps
// patterns in required_parameter/optional_parameter nodes.
func (a *FileAnalysis) bindParameters(params jstree.Node) {
	for _, child := range params.NamedChildren() {
		switch child.Kind() {
		case "required_parameter", "optional_parameter":
			if pattern := child.Field("pattern"); pattern.OK() {
				a.bindPattern(pattern, a.st.current)
			}
		default:
			a.bindPattern(child, a.st.current)
		}
	}
}

// visitIdentifier records a read occurrence unless the identifier sits in a
// binding position or is the pure-write target of a plain assignment.
// Compound assignments and update expressions read the old value and still
// count as reads.
func (a *FileAnalysis) visitIdentifier(n jstree.Node, parent jstree.Node) {
	span := n.Span()
	if _, skip := a.skipSpans[span]; skip {
		return
	}

	if parent.OK() && parent.Kind() == "assignment_expression" {
		if left := parent.Field("left"); left.OK() && left.Span() == span {
			return
		}
	}

	a.st.record(n.Text(), span)
}
