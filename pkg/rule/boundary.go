package rule

import (
	"github.com/serverfence/serverfence/pkg/jstree"
)

// funcValueKinds are node kinds of function-valued call arguments.
var funcValueKinds = map[string]struct{}{
	"arrow_function":      {},
	"function_expression": {},
	"function":            {},
	"generator_function":  {},
}

// discoverBoundary resolves the root of a method-call chain. The unwind is
// iterative: callee.object links are collected into a slice and followed
// until a call whose callee is a bare identifier; deep chains cannot overflow
// the stack. When the root name is a configured server-function factory,
// every function-valued argument at every call in the chain becomes a
// boundary scope. Chains rooted in anything that cannot be statically
// resolved to a factory name are conservatively not boundaries.
func (a *FileAnalysis) discoverBoundary(n jstree.Node) {
	chain := make([]jstree.Node, 0, 4)
	cur := n
	rootName := ""

unwind:
	for {
		chain = append(chain, cur)

		callee := cur.Field("function")
		if !callee.OK() {
			return
		}

		switch callee.Kind() {
		case "identifier":
			rootName = callee.Text()

			break unwind
		case "call_expression":
			cur = callee
		case "member_expression":
			obj := callee.Field("object")
			for obj.OK() && obj.Kind() == "member_expression" {
				obj = obj.Field("object")
			}

			if !obj.OK() || obj.Kind() != "call_expression" {
				return
			}

			cur = obj
		default:
			return
		}
	}

	if _, ok := a.opts.serverFuncs[rootName]; !ok {
		return
	}

	for _, call := range chain {
		a.registerBoundaryArgs(call)
	}
}

// registerBoundaryArgs records the body span of every function-valued
// argument of a call as a boundary scope. Identifier arguments are dynamic
// indirection and intentionally not recognized.
func (a *FileAnalysis) registerBoundaryArgs(call jstree.Node) {
	args := call.Field("arguments")
	if !args.OK() {
		return
	}

	for _, arg := range args.NamedChildren() {
		if _, isFunc := funcValueKinds[arg.Kind()]; !isFunc {
			continue
		}

		span := arg.Span()
		if body := arg.Field("body"); body.OK() {
			span = body.Span()
		}

		if _, seen := a.boundarySet[span]; seen {
			continue
		}

		a.boundarySet[span] = struct{}{}
		a.boundaries = append(a.boundaries, span)
	}
}

// inBoundary reports whether the span lies inside any boundary scope body.
func (a *FileAnalysis) inBoundary(span jstree.Span) bool {
	for _, boundary := range a.boundaries {
		if boundary.Contains(span) {
			return true
		}
	}

	return false
}
