package rule

import (
	"fmt"

	"github.com/serverfence/serverfence/pkg/jstree"
	"github.com/serverfence/serverfence/pkg/safeconv"
)

// Kind is the diagnostic message kind.
type Kind string

// Diagnostic kinds.
const (
	KindServerOnlyImport  Kind = "serverOnlyImport"
	KindServerOnlyRequire Kind = "serverOnlyRequire"
	KindSuggestMarker     Kind = "suggestMarker"
)

// Reason classifies why a declaration was flagged.
type Reason uint8

// Violation reasons.
const (
	ReasonUnconfinedRead Reason = iota
	ReasonNoReads
	ReasonSideEffectImport
	ReasonReexport
	ReasonBareRequire
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonUnconfinedRead:
		return "UnconfinedRead"
	case ReasonNoReads:
		return "NoReadsAndUnusedReportingEnabled"
	case ReasonSideEffectImport:
		return "SideEffectImport"
	case ReasonReexport:
		return "Reexport"
	case ReasonBareRequire:
		return "BareRequireOutsideBoundary"
	default:
		return "Unknown"
	}
}

// TextEdit is a byte-offset replacement in the source.
type TextEdit struct {
	Start   uint32 `json:"start"`
	End     uint32 `json:"end"`
	NewText string `json:"newText"`
}

// Suggestion is an automated fix offered alongside a diagnostic. Suggestions
// are never applied without confirmation.
type Suggestion struct {
	Kind    Kind       `json:"kind"`
	Message string     `json:"message"`
	Edits   []TextEdit `json:"edits"`
}

// Diagnostic reports one violating declaration.
type Diagnostic struct {
	Kind        Kind         `json:"kind"`
	Reason      Reason       `json:"-"`
	ReasonName  string       `json:"reason"`
	Module      string       `json:"module"`
	Span        jstree.Span  `json:"span"`
	Start       jstree.Point `json:"start"`
	End         jstree.Point `json:"end"`
	Message     string       `json:"message"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

func diagnosticMessage(reason Reason, module, marker string) string {
	switch reason {
	case ReasonUnconfinedRead:
		return fmt.Sprintf(
			"server-only module %q is read outside a server function; move every use into a server function or add the %q marker import",
			module, marker)
	case ReasonNoReads:
		return fmt.Sprintf(
			"server-only module %q is imported but never read; remove the import or add the %q marker import",
			module, marker)
	case ReasonSideEffectImport:
		return fmt.Sprintf(
			"side-effect import of server-only module %q would run on the client; add the %q marker import if this file is server-only",
			module, marker)
	case ReasonReexport:
		return fmt.Sprintf(
			"re-export of server-only module %q exposes it to client code; add the %q marker import if this file is server-only",
			module, marker)
	case ReasonBareRequire:
		return fmt.Sprintf(
			"require of server-only module %q executes outside a server function; move it into a server function or add the %q marker import",
			module, marker)
	default:
		return fmt.Sprintf("server-only module %q is unsafe in client code", module)
	}
}

// markerSuggestion builds the insert-the-marker suggestion for a file.
// It returns ok=false when the file carries the conflicting client directive,
// in which case no suggestion may be offered. When the marker is already
// imported or required somewhere in the file, the suggestion degrades to a
// no-op edit so it is still offered (suggestion-count invariants stay stable)
// without duplicating the import.
func markerSuggestion(root jstree.Node, src []byte, marker string) (Suggestion, bool) {
	prologue := directivePrologue(root)

	for _, directive := range prologue.directives {
		if directive == conflictingDirective {
			return Suggestion{}, false
		}
	}

	message := fmt.Sprintf("add an %q marker import at the top of the file", marker)

	if markerImportPresent(root, marker) {
		return Suggestion{
			Kind:    KindSuggestMarker,
			Message: message,
			Edits:   []TextEdit{{Start: prologue.insertAt, End: prologue.insertAt, NewText: ""}},
		}, true
	}

	text := fmt.Sprintf("import %q;\n", marker)
	if prologue.insertAt > 0 && prologue.insertAt <= safeconv.MustIntToUint32(len(src)) && src[prologue.insertAt-1] != '\n' {
		text = "\n" + text
	}

	return Suggestion{
		Kind:    KindSuggestMarker,
		Message: message,
		Edits:   []TextEdit{{Start: prologue.insertAt, End: prologue.insertAt, NewText: text}},
	}, true
}

// prologueInfo describes the directive prologue of a file.
type prologueInfo struct {
	directives []string
	insertAt   uint32
}

// directivePrologue scans the leading statements of the program for directive
// expression statements ("use strict"-like string literals), skipping
// comments. insertAt is the byte offset immediately before the first
// non-directive statement, or the end of the last directive when the whole
// file is directives.
func directivePrologue(root jstree.Node) prologueInfo {
	info := prologueInfo{insertAt: root.Span().Start}

	for _, child := range root.NamedChildren() {
		if child.Kind() == "comment" {
			continue
		}

		if value, ok := directiveValue(child); ok {
			info.directives = append(info.directives, value)
			info.insertAt = child.Span().End

			continue
		}

		info.insertAt = child.Span().Start

		return info
	}

	return info
}

// directiveValue extracts the string value of a directive statement.
func directiveValue(n jstree.Node) (string, bool) {
	if n.Kind() != "expression_statement" || n.NamedChildCount() != 1 {
		return "", false
	}

	str := n.NamedChild(0)
	if str.Kind() != "string" {
		return "", false
	}

	return stringValue(str), true
}

// stringValue returns the contents of a string literal node without quotes.
// Template strings and concatenations are not literals and yield "".
func stringValue(n jstree.Node) string {
	for _, child := range n.NamedChildren() {
		if child.Kind() == "string_fragment" {
			return child.Text()
		}
	}

	// An empty string literal has no fragment child.
	text := n.Text()
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}

	return ""
}

// markerImportPresent reports whether the marker module is the source of any
// import or require in the file, at any depth. The marker in a comment or an
// unrelated string literal does not count: those never opt the file out, so
// the suggested insert must stay a real edit.
func markerImportPresent(n jstree.Node, marker string) bool {
	switch n.Kind() {
	case "import_statement":
		if src := n.Field("source"); src.OK() && src.Kind() == "string" && stringValue(src) == marker {
			return true
		}
	case "call_expression":
		if module, _, ok := requireArgument(n); ok && module == marker {
			return true
		}
	}

	for _, child := range n.NamedChildren() {
		if markerImportPresent(child, marker) {
			return true
		}
	}

	return false
}
