package jstree

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start uint32
	End   uint32
}

// Contains reports whether other lies entirely within s. In a syntax tree,
// span containment coincides with lexical nesting.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// ContainsOffset reports whether the byte offset lies within s.
func (s Span) ContainsOffset(off uint32) bool {
	return off >= s.Start && off < s.End
}

// Point is a zero-based row/column source position.
type Point struct {
	Row uint32
	Col uint32
}

// Tree is a parsed source file. It owns the source bytes and the underlying
// tree-sitter tree for the lifetime of one file analysis.
type Tree struct {
	lang string
	src  []byte
	tree *sitter.Tree
	root sitter.Node
}

// Close releases the underlying tree-sitter tree. Nodes obtained from the
// tree must not be used after Close.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Root returns the root node (a "program" node for all three grammars).
func (t *Tree) Root() Node {
	return Node{inner: t.root, src: t.src}
}

// Source returns the source bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.src
}

// Language returns the grammar name used to parse the tree.
func (t *Tree) Language() string {
	return t.lang
}

// Node wraps a tree-sitter node together with the source it indexes into.
// The zero Node is invalid; check OK before use.
type Node struct {
	inner sitter.Node
	src   []byte
}

// OK reports whether the node is a real node of the tree.
func (n Node) OK() bool {
	return !n.inner.IsNull()
}

// Kind returns the grammar node type, e.g. "import_statement".
func (n Node) Kind() string {
	return n.inner.Type()
}

// Span returns the node's byte range in the source.
func (n Node) Span() Span {
	return Span{Start: uint32(n.inner.StartByte()), End: uint32(n.inner.EndByte())}
}

// StartPoint returns the node's starting row/column (zero-based).
func (n Node) StartPoint() Point {
	p := n.inner.StartPoint()

	return Point{Row: uint32(p.Row), Col: uint32(p.Column)}
}

// EndPoint returns the node's ending row/column (zero-based).
func (n Node) EndPoint() Point {
	p := n.inner.EndPoint()

	return Point{Row: uint32(p.Row), Col: uint32(p.Column)}
}

// Text returns the source text covered by the node.
func (n Node) Text() string {
	start := n.inner.StartByte()
	end := n.inner.EndByte()

	if end > uint(len(n.src)) {
		return ""
	}

	return string(n.src[start:end])
}

// Field returns the child for a grammar field name, e.g. "source" on an
// import_statement. The result may be invalid; check OK.
func (n Node) Field(name string) Node {
	return Node{inner: n.inner.ChildByFieldName(name), src: n.src}
}

// NamedChildCount returns the number of named children.
func (n Node) NamedChildCount() uint32 {
	return n.inner.NamedChildCount()
}

// NamedChild returns the idx-th named child.
func (n Node) NamedChild(idx uint32) Node {
	return Node{inner: n.inner.NamedChild(idx), src: n.src}
}

// NamedChildren returns all named children.
func (n Node) NamedChildren() []Node {
	count := n.NamedChildCount()
	children := make([]Node, 0, count)

	for idx := uint32(0); idx < count; idx++ {
		children = append(children, n.NamedChild(idx))
	}

	return children
}

// Children returns all children, including anonymous tokens such as keywords
// and punctuation. Needed to see TypeScript's `type` import modifier.
func (n Node) Children() []Node {
	count := n.inner.ChildCount()
	children := make([]Node, 0, count)

	for idx := uint32(0); idx < count; idx++ {
		children = append(children, Node{inner: n.inner.Child(idx), src: n.src})
	}

	return children
}

// HasTokenChild reports whether the node has a direct child whose type equals
// the given token, e.g. "type" on an import_statement.
func (n Node) HasTokenChild(token string) bool {
	count := n.inner.ChildCount()

	for idx := uint32(0); idx < count; idx++ {
		if n.inner.Child(idx).Type() == token {
			return true
		}
	}

	return false
}

// Walk performs a depth-first traversal over named nodes, invoking enter
// before a node's children and leave after them. Returning false from enter
// skips the node's subtree (leave is still invoked).
func (t *Tree) Walk(enter func(n Node) bool, leave func(n Node)) {
	walk(t.Root(), enter, leave)
}

func walk(n Node, enter func(n Node) bool, leave func(n Node)) {
	descend := true
	if enter != nil {
		descend = enter(n)
	}

	if descend {
		count := n.NamedChildCount()
		for idx := uint32(0); idx < count; idx++ {
			walk(n.NamedChild(idx), enter, leave)
		}
	}

	if leave != nil {
		leave(n)
	}
}
