package flow

import (
	"github.com/standardbeagle/flowgen/internal/types"
)

// BranchSpec describes a two-way conditional: one decision node and the two
// already-processed sub-regions. Either side may be transparent; a missing
// alternative clause is the common case for a bare if.
type BranchSpec struct {
	Decision    types.FlowchartNode
	TrueLabel   string
	FalseLabel  string
	Consequence Region
	Alternative Region
}

// Branch wires a decision node in front of its two sub-regions. When a side
// has an entry the decision grows a labeled edge to it and the side's exit
// points survive; when a side is transparent the decision itself becomes an
// exit point under that side's label ("condition held, nothing to do, flow
// straight past"). The same rule covers a missing alternative clause.
func Branch(spec BranchSpec) Region {
	out := Region{
		Nodes: []types.FlowchartNode{spec.Decision},
		Entry: spec.Decision.ID,
	}

	wire := func(side Region, label string) {
		if side.IsEmpty() {
			out.Exits = append(out.Exits, types.ExitPoint{ID: spec.Decision.ID, Label: label})
			return
		}
		out.absorb(side)
		out.Edges = append(out.Edges, types.FlowchartEdge{From: spec.Decision.ID, To: side.Entry, Label: label})
		out.Exits = append(out.Exits, side.danglingExits()...)
	}

	wire(spec.Consequence, spec.TrueLabel)
	wire(spec.Alternative, spec.FalseLabel)
	return out
}

// LoopShape distinguishes where the test sits relative to the body.
type LoopShape int

const (
	// PreTest loops (while, for, for-each) evaluate the test before every
	// iteration, including the first.
	PreTest LoopShape = iota
	// PostTest loops (do-while) run the body once before the first test.
	PostTest
	// Unconditional loops (bare loop) have no test and exit only via break.
	Unconditional
)

// LoopSpec describes one loop: the header node (the test, or a marker for
// unconditional loops), the edge labels for the iterate/exit decision, and a
// body builder invoked with the loop's scope already bound.
type LoopSpec struct {
	Shape     LoopShape
	Header    types.FlowchartNode
	BodyLabel string // "true", "next item", ...
	ExitLabel string // "false", "no more items", ...
	Body      func(Scope) Region
}

// Loop builds a loop region. The exit sentinel and header exist before the
// body is processed so break/continue inside the body can target them; the
// region exposes only the exit sentinel to its parent — break edges are
// wired internally, never surfaced as exit points.
func Loop(c *Context, sc Scope, spec LoopSpec) Region {
	exit := c.NewNode(types.NodeLoopEnd, "end loop")

	body := Empty()
	if spec.Body != nil {
		body = spec.Body(sc.WithLoop(exit.ID, spec.Header.ID))
	}

	out := Region{
		Nodes: []types.FlowchartNode{spec.Header, exit},
		Entry: spec.Header.ID,
		Exits: []types.ExitPoint{{ID: exit.ID}},
	}
	out.absorb(body)

	// Header to body, or a self-loop when the body is empty.
	bodyEntry := body.Entry
	if body.IsEmpty() {
		bodyEntry = spec.Header.ID
	}
	bodyLabel := spec.BodyLabel
	if spec.Shape == Unconditional {
		bodyLabel = ""
	}
	out.Edges = append(out.Edges, types.FlowchartEdge{From: spec.Header.ID, To: bodyEntry, Label: bodyLabel})

	// The body falls back into the header; for post-test loops that edge is
	// the fall into the trailing test rather than back into the body.
	if !body.IsEmpty() {
		for _, xp := range body.danglingExits() {
			out.Edges = append(out.Edges, types.FlowchartEdge{From: xp.ID, To: spec.Header.ID, Label: xp.Label})
		}
	}

	// Only tested loops have an exit edge from the header; bare loops leave
	// through break edges already wired to the sentinel.
	if spec.Shape != Unconditional {
		out.Edges = append(out.Edges, types.FlowchartEdge{From: spec.Header.ID, To: exit.ID, Label: spec.ExitLabel})
	}

	if spec.Shape == PostTest && !body.IsEmpty() {
		out.Entry = body.Entry
	}
	return out
}

// SwitchCase is one arm of a switch/match chain: the case decision node, its
// statement region (transparent when the case has no statements), and
// whether a dangling body falls into the next case's body. Front-ends set
// Fallthrough for C++/Java label groups without a trailing break; Rust match
// arms never fall through.
type SwitchCase struct {
	Node        types.FlowchartNode
	Body        Region
	Fallthrough bool
}

// SwitchSpec describes a discriminant head and its ordered case chain.
type SwitchSpec struct {
	Head         types.FlowchartNode
	Cases        []SwitchCase
	MatchLabel   string // "match", "Ok", ...
	NoMatchLabel string // "no match", ...
}

// Switch links the cases into a singly-linked decision chain: the head feeds
// the first case, each case's no-match edge feeds the next, and the last
// case's no-match becomes an exit point meaning "no case matched". A case
// with no statements turns its match edge into a direct exit point.
func Switch(spec SwitchSpec) Region {
	out := Region{
		Nodes: []types.FlowchartNode{spec.Head},
		Entry: spec.Head.ID,
	}
	if len(spec.Cases) == 0 {
		out.Exits = append(out.Exits, types.ExitPoint{ID: spec.Head.ID})
		return out
	}

	out.Edges = append(out.Edges, types.FlowchartEdge{From: spec.Head.ID, To: spec.Cases[0].Node.ID})

	for i, cs := range spec.Cases {
		out.Nodes = append(out.Nodes, cs.Node)

		if cs.Body.IsEmpty() {
			out.Exits = append(out.Exits, types.ExitPoint{ID: cs.Node.ID, Label: spec.MatchLabel})
		} else {
			out.absorb(cs.Body)
			out.Edges = append(out.Edges, types.FlowchartEdge{From: cs.Node.ID, To: cs.Body.Entry, Label: spec.MatchLabel})

			dangling := cs.Body.danglingExits()
			next := nextCaseBodyEntry(spec.Cases, i)
			if cs.Fallthrough && next != types.NoNode {
				for _, xp := range dangling {
					out.Edges = append(out.Edges, types.FlowchartEdge{From: xp.ID, To: next, Label: xp.Label})
				}
			} else {
				out.Exits = append(out.Exits, dangling...)
			}
		}

		if i+1 < len(spec.Cases) {
			out.Edges = append(out.Edges, types.FlowchartEdge{From: cs.Node.ID, To: spec.Cases[i+1].Node.ID, Label: spec.NoMatchLabel})
		} else {
			out.Exits = append(out.Exits, types.ExitPoint{ID: cs.Node.ID, Label: spec.NoMatchLabel})
		}
	}
	return out
}

// nextCaseBodyEntry finds the entry of the next case body after index i, for
// fallthrough wiring. Consecutive empty cases are skipped the same way an
// empty label group falls on to the next populated one.
func nextCaseBodyEntry(cases []SwitchCase, i int) int {
	for j := i + 1; j < len(cases); j++ {
		if !cases[j].Body.IsEmpty() {
			return cases[j].Body.Entry
		}
	}
	return types.NoNode
}

// TryHandler is one catch clause: the edge label ("catch IOException") and a
// body builder run under the protected scope.
type TryHandler struct {
	Label string
	Body  func(Scope) Region
}

// TrySpec describes a protected region: the try-entry node, the protected
// body, the handlers, and an optional cleanup (finally) builder.
type TrySpec struct {
	TryNode  types.FlowchartNode
	Body     func(Scope) Region
	Handlers []TryHandler
	Cleanup  func(Scope) Region
}

// Try builds a protected region. The cleanup region, when present, is
// processed first under the outer scope so its entry can be bound as the
// terminal redirect for everything lexically inside the body and handlers;
// control after cleanup continues from the cleanup region's own exit points
// toward the function exit or an outer cleanup. The try-entry node fans out
// unlabeled to the body and once per handler under its catch label — the
// deliberate approximation being that the whole protected region may raise,
// not any particular statement.
func Try(c *Context, sc Scope, spec TrySpec) Region {
	out := Region{
		Nodes: []types.FlowchartNode{spec.TryNode},
		Entry: spec.TryNode.ID,
	}

	inner := sc
	cleanup := Empty()
	if spec.Cleanup != nil {
		cleanup = spec.Cleanup(sc)
		if !cleanup.IsEmpty() {
			inner = sc.WithCleanup(cleanup.Entry)
		}
	}

	body := Empty()
	if spec.Body != nil {
		body = spec.Body(inner)
	}

	var open []types.ExitPoint
	if body.IsEmpty() {
		open = append(open, types.ExitPoint{ID: spec.TryNode.ID})
	} else {
		out.absorb(body)
		out.Edges = append(out.Edges, types.FlowchartEdge{From: spec.TryNode.ID, To: body.Entry})
		open = append(open, body.danglingExits()...)
	}

	for _, h := range spec.Handlers {
		hr := Empty()
		if h.Body != nil {
			hr = h.Body(inner)
		}
		if hr.IsEmpty() {
			open = append(open, types.ExitPoint{ID: spec.TryNode.ID, Label: h.Label})
			continue
		}
		out.absorb(hr)
		out.Edges = append(out.Edges, types.FlowchartEdge{From: spec.TryNode.ID, To: hr.Entry, Label: h.Label})
		open = append(open, hr.danglingExits()...)
	}

	if cleanup.IsEmpty() {
		out.Exits = open
		return out
	}

	out.absorb(cleanup)
	for _, xp := range open {
		out.Edges = append(out.Edges, types.FlowchartEdge{From: xp.ID, To: cleanup.Entry, Label: xp.Label})
	}
	out.Exits = cleanup.danglingExits()
	return out
}
