package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/serverfence/serverfence/pkg/jstree"
	"github.com/serverfence/serverfence/pkg/safeconv"
)

// pointToPosition converts a tree row/column point to an LSP position. Both
// are zero-based; the column unit mismatch (bytes vs UTF-16 units) is ignored,
// which is exact for ASCII and close enough for gutter placement elsewhere.
func pointToPosition(p jstree.Point) protocol.Position {
	return protocol.Position{Line: p.Row, Character: p.Col}
}

// offsetToPosition converts a byte offset into a zero-based line/character
// position within text.
func offsetToPosition(text string, offset uint32) protocol.Position {
	if int(offset) > len(text) {
		offset = safeconv.MustIntToUint32(len(text))
	}

	var line, lineStart uint32

	for i := uint32(0); i < offset; i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	return protocol.Position{Line: line, Character: offset - lineStart}
}
