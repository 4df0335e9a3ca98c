package render

import (
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/serverfence/serverfence/pkg/rule"
)

// ApplyEdits applies byte-offset text edits to a source, highest offset
// first so earlier offsets stay valid.
func ApplyEdits(src string, edits []rule.TextEdit) string {
	sorted := append([]rule.TextEdit{}, edits...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	out := src
	for _, e := range sorted {
		if int(e.Start) > len(out) || int(e.End) > len(out) || e.Start > e.End {
			continue
		}

		out = out[:e.Start] + e.NewText + out[e.End:]
	}

	return out
}

// FixPreview renders a colored diff of applying a suggestion to the source.
// An empty string means the suggestion is a no-op.
func FixPreview(src string, suggestion rule.Suggestion) string {
	fixed := ApplyEdits(src, suggestion.Edits)
	if fixed == src {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(src, fixed, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	return dmp.DiffPrettyText(diffs)
}
