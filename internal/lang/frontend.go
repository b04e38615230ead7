// Package lang holds the per-language front-ends. Each front-end owns its
// dispatch from syntax-node kinds to flowchart regions and its leaf label
// rendering; the composition rules themselves live in internal/flow and are
// shared by all three languages.
package lang

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/flowgen/internal/flow"
	"github.com/standardbeagle/flowgen/internal/parser"
	"github.com/standardbeagle/flowgen/internal/types"
)

// CallableKind classifies a discovered function-like declaration.
type CallableKind int

const (
	CallableFunction CallableKind = iota
	CallableMethod
	CallableConstructor
	CallableLambda
)

// Callable is one function, method, constructor, lambda or closure found in
// a parsed file, in source order.
type Callable struct {
	Name string
	Kind CallableKind
	// Node spans the whole definition; Body is the statement body and may be
	// nil for bodyless declarations (abstract methods, prototypes).
	Node *tree_sitter.Node
	Body *tree_sitter.Node
}

// Range returns the byte range of the whole definition.
func (c Callable) Range() types.Range {
	if c.Node == nil {
		return types.Range{}
	}
	return types.Range{Start: c.Node.StartByte(), End: c.Node.EndByte()}
}

// DisplayName is the user-facing form used in pickers and diagram titles:
// plain name for functions, annotated for the other kinds.
func (c Callable) DisplayName() string {
	switch c.Kind {
	case CallableMethod:
		return c.Name + " (method)"
	case CallableConstructor:
		return c.Name + " (constructor)"
	case CallableLambda:
		return c.Name + " (lambda)"
	}
	return c.Name
}

// Frontend is the per-language contract: enumerate the callables of a parsed
// file and turn one callable's body into a region. Implementations dispatch
// statement kinds internally and lean on the flow package for every
// composition rule.
type Frontend interface {
	Language() parser.Language
	Callables(root *tree_sitter.Node, src []byte) []Callable
	Body(c *flow.Context, fn Callable, sc flow.Scope) flow.Region
}

// ForLanguage returns the front-end for a supported language.
func ForLanguage(lang parser.Language) (Frontend, error) {
	switch lang {
	case parser.LanguageCpp:
		return cppFrontend{}, nil
	case parser.LanguageJava:
		return javaFrontend{}, nil
	case parser.LanguageRust:
		return rustFrontend{}, nil
	}
	return nil, fmt.Errorf("no front-end for language %q", lang)
}

// implicitReturnTo reinterprets a region's dangling exit points as implicit
// returns: each grows an edge to target, labeled "return" unless the exit
// point already carries a branch label worth keeping. The rewired nodes are
// marked connected so no caller routes them again.
func implicitReturnTo(r flow.Region, target int) flow.Region {
	if r.IsEmpty() {
		return r
	}
	connected := r.ConnectedToExit
	if connected == nil {
		connected = flow.NewIDSet()
	}
	for _, xp := range r.Exits {
		if connected.Has(xp.ID) {
			continue
		}
		label := xp.Label
		if label == "" {
			label = "return"
		}
		r.Edges = append(r.Edges, types.FlowchartEdge{From: xp.ID, To: target, Label: label})
		connected.Add(xp.ID)
	}
	r.Exits = nil
	r.ConnectedToExit = connected
	return r
}

// closureArg is a closure/lambda literal found in a call's argument list,
// carrying its 1-based argument position.
type closureArg struct {
	index int
	body  *tree_sitter.Node
}

// attachClosures expands closure arguments into labeled sub-regions hanging
// off the call node. Each closure body is processed with the call node as
// its exit, so returns inside the callback and the callback's tail both flow
// back to the call — control re-enters the caller when the callback is done.
func attachClosures(c *flow.Context, call flow.Region, closures []closureArg,
	process func(*flow.Context, *tree_sitter.Node, flow.Scope) flow.Region) flow.Region {
	callID := call.Entry
	for _, arg := range closures {
		sub := process(c, arg.body, flow.Scope{ExitID: callID})
		if sub.IsEmpty() {
			continue
		}
		sub = implicitReturnTo(sub, callID)
		call.Nodes = append(call.Nodes, sub.Nodes...)
		call.Edges = append(call.Edges, sub.Edges...)
		call.Edges = append(call.Edges, types.FlowchartEdge{
			From:  callID,
			To:    sub.Entry,
			Label: fmt.Sprintf("arg %d", arg.index),
		})
	}
	return call
}

// record notes the node's source range against a diagram node id.
func record(c *flow.Context, n *tree_sitter.Node, id int) {
	c.RecordRange(n.StartByte(), n.EndByte(), id)
}

// leaf builds the common single-node region: allocate, record location,
// expose as both entry and sole exit point.
func leaf(c *flow.Context, n *tree_sitter.Node, kind types.NodeKind, label string) flow.Region {
	node := c.NewNode(kind, label)
	record(c, n, node.ID)
	return flow.Single(node)
}

// terminal builds the common end-of-flow region for return/throw/panic.
func terminal(c *flow.Context, n *tree_sitter.Node, kind types.NodeKind, label string, sc flow.Scope) flow.Region {
	node := c.NewNode(kind, label)
	record(c, n, node.ID)
	return flow.Terminal(node, sc.TerminalTarget(), "")
}

// breakContinue builds the jump region for a break/continue statement. With
// no enclosing loop in scope the statement degrades to an inert node that
// control simply flows past.
func breakContinue(c *flow.Context, n *tree_sitter.Node, label string, target int, ok bool) flow.Region {
	node := c.NewNode(types.NodeBreakContinue, label)
	record(c, n, node.ID)
	if !ok {
		return flow.Single(node)
	}
	return flow.Jump(node, target, "")
}
