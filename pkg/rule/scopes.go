package rule

import (
	"github.com/serverfence/serverfence/pkg/jstree"
)

// The engine is host-agnostic: instead of relying on a resolver provided by
// the parser, it builds a file-local symbol table as a byproduct of the one
// tree traversal. Identifier occurrences are recorded with a pointer to their
// enclosing scope and resolved to declarations during reconciliation, which
// handles hoisted declarations and reads that precede their declaration
// without a second traversal.

type scopeKind uint8

const (
	scopeProgram scopeKind = iota
	scopeFunction
	scopeBlock
)

// scope is one lexical scope. Declarations are keyed by name; resolution
// walks the parent chain.
type scope struct {
	kind   scopeKind
	span   jstree.Span
	parent *scope
	decls  map[string]*declaration
}

// functionScope returns the nearest enclosing function or program scope,
// where var and function declarations hoist to.
func (s *scope) functionScope() *scope {
	cur := s
	for cur.kind == scopeBlock {
		cur = cur.parent
	}

	return cur
}

// declaration is a name bound in a scope. One declaration object is shared by
// the binding collector and the reference resolver, so reads attach to the
// exact declaration an import introduced.
type declaration struct {
	name  string
	scope *scope
}

// occurrence is a syntactic identifier read candidate, captured during the
// traversal together with the scope it appeared in.
type occurrence struct {
	name  string
	span  jstree.Span
	scope *scope
}

// symbolTable accumulates scopes, declarations, and occurrences for one file.
type symbolTable struct {
	program     *scope
	current     *scope
	occurrences []occurrence
}

func newSymbolTable(rootSpan jstree.Span) *symbolTable {
	program := &scope{
		kind:  scopeProgram,
		span:  rootSpan,
		decls: make(map[string]*declaration),
	}

	return &symbolTable{program: program, current: program}
}

func (st *symbolTable) enterScope(kind scopeKind, span jstree.Span) {
	st.current = &scope{
		kind:   kind,
		span:   span,
		parent: st.current,
		decls:  make(map[string]*declaration),
	}
}

func (st *symbolTable) leaveScope() {
	if st.current.parent != nil {
		st.current = st.current.parent
	}
}

// declare binds a name in the target scope and returns the declaration.
// A redeclaration of an existing name in the same scope reuses the original
// record; for this analysis the distinction never matters.
func (st *symbolTable) declare(name string, target *scope) *declaration {
	if existing, ok := target.decls[name]; ok {
		return existing
	}

	decl := &declaration{name: name, scope: target}
	target.decls[name] = decl

	return decl
}

// record captures an identifier occurrence in the current scope.
func (st *symbolTable) record(name string, span jstree.Span) {
	st.occurrences = append(st.occurrences, occurrence{name: name, span: span, scope: st.current})
}

// resolve maps every occurrence to the declaration its name binds to,
// honoring shadowing: the nearest enclosing scope that declares the name
// wins. Occurrences of undeclared names (globals) resolve to nothing.
func (st *symbolTable) resolve() map[*declaration][]occurrence {
	reads := make(map[*declaration][]occurrence)

	for _, occ := range st.occurrences {
		for s := occ.scope; s != nil; s = s.parent {
			if decl, ok := s.decls[occ.name]; ok {
				reads[decl] = append(reads[decl], occ)

				break
			}
		}
	}

	return reads
}
