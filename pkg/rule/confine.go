package rule

import (
	"sort"
)

// Finish reconciles the collected state into diagnostics. It must run only
// after the whole file has been traversed: a boundary discovered late in the
// file can retroactively make an earlier declaration's usage safe, and vice
// versa, so confinement cannot be decided during the forward pass.
func (a *FileAnalysis) Finish() []Diagnostic {
	// The marker suppresses every violation for the file, full stop.
	if a.markerFound {
		return nil
	}

	reads := a.st.resolve()

	var diags []Diagnostic

	for _, cand := range a.candidates {
		if cand.kind == candBareRequire && a.inBoundary(cand.callSpan) {
			continue
		}

		diags = append(diags, a.newDiagnostic(candKindOf(cand.kind), candReasonOf(cand.kind), cand.module, cand.attr))
	}

	for _, b := range a.bindings {
		if b.isRequire && a.inBoundary(b.requireCall) {
			// The require already executes server-side; where its bindings
			// are read afterwards no longer matters.
			continue
		}

		reason, violated := a.evaluateBinding(b, reads)
		if !violated {
			continue
		}

		kind := KindServerOnlyImport
		if b.isRequire {
			kind = KindServerOnlyRequire
		}

		diags = append(diags, a.newDiagnostic(kind, reason, b.module, b.attr))
	}

	sort.Slice(diags, func(i, j int) bool {
		if diags[i].Span.Start != diags[j].Span.Start {
			return diags[i].Span.Start < diags[j].Span.Start
		}

		return diags[i].Span.End < diags[j].Span.End
	})

	a.attachSuggestions(diags)

	return diags
}

// evaluateBinding decides one declaration's fate. Bindings are judged
// individually, but a declaration yields at most one diagnostic: any
// unconfined read condemns it outright (there is no partial safety), and
// otherwise a binding with zero reads is reported when unused reporting is
// enabled. Reads that resolve to a shadowing redeclaration never count.
func (a *FileAnalysis) evaluateBinding(b *trackedBinding, reads map[*declaration][]occurrence) (Reason, bool) {
	anyUnused := false

	for _, decl := range b.decls {
		occs := reads[decl]
		if len(occs) == 0 {
			anyUnused = true

			continue
		}

		for _, occ := range occs {
			if !a.inBoundary(occ.span) {
				return ReasonUnconfinedRead, true
			}
		}
	}

	if anyUnused && a.opts.ReportUnusedImports {
		return ReasonNoReads, true
	}

	return 0, false
}

func candKindOf(kind candidateKind) Kind {
	if kind == candBareRequire {
		return KindServerOnlyRequire
	}

	return KindServerOnlyImport
}

func candReasonOf(kind candidateKind) Reason {
	switch kind {
	case candSideEffectImport:
		return ReasonSideEffectImport
	case candReexport:
		return ReasonReexport
	case candBareRequire:
		return ReasonBareRequire
	default:
		return ReasonUnconfinedRead
	}
}

func (a *FileAnalysis) newDiagnostic(kind Kind, reason Reason, module string, attr attribution) Diagnostic {
	return Diagnostic{
		Kind:       kind,
		Reason:     reason,
		ReasonName: reason.String(),
		Module:     module,
		Span:       attr.span,
		Start:      attr.start,
		End:        attr.end,
		Message:    diagnosticMessage(reason, module, a.opts.Marker),
	}
}

// attachSuggestions offers the marker-insert suggestion on every diagnostic.
// The suggestion is computed once per file; it is withheld entirely when the
// file declares the conflicting client directive.
func (a *FileAnalysis) attachSuggestions(diags []Diagnostic) {
	if len(diags) == 0 {
		return
	}

	suggestion, ok := markerSuggestion(a.tree.Root(), a.src, a.opts.Marker)
	if !ok {
		return
	}

	for i := range diags {
		diags[i].Suggestions = []Suggestion{suggestion}
	}
}
