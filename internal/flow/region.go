package flow

import (
	"github.com/standardbeagle/flowgen/internal/types"
)

// IDSet is a set of node ids.
type IDSet map[int]struct{}

// NewIDSet builds a set from the given ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Add inserts an id.
func (s IDSet) Add(id int) {
	s[id] = struct{}{}
}

// Union returns a new set containing both operands' members. Either operand
// may be nil.
func (s IDSet) Union(other IDSet) IDSet {
	if len(s) == 0 && len(other) == 0 {
		return nil
	}
	out := make(IDSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Region is the composable result of processing one syntax subtree: the
// nodes and edges produced so far, the single entry node (NoNode for a no-op
// region such as a comment), the set of unresolved alternative successors,
// and the ids of nodes whose single outgoing edge already targets a terminal
// and must never be re-routed by a caller.
//
// Exit points are mutually exclusive: at runtime control leaves the region
// through exactly one of them. Sequencing, branching and the other
// combinators in this package are the only places regions are stitched
// together, which keeps the combination rules in one spot.
//
// The zero value is a no-op region: node ids are positive, so the zero
// Entry is the NoNode sentinel and every combinator treats the region as
// transparent.
type Region struct {
	Nodes           []types.FlowchartNode
	Edges           []types.FlowchartEdge
	Entry           int
	Exits           []types.ExitPoint
	ConnectedToExit IDSet
}

// Empty returns the no-op region: no nodes, no entry, no exits. Sequencing
// treats it as transparent.
func Empty() Region {
	return Region{Entry: types.NoNode}
}

// Single wraps one node into a region whose entry and sole unlabeled exit
// point is that node.
func Single(n types.FlowchartNode) Region {
	return Region{
		Nodes: []types.FlowchartNode{n},
		Entry: n.ID,
		Exits: []types.ExitPoint{{ID: n.ID}},
	}
}

// Terminal wraps a node that ends the function's flow (return, throw,
// panic): the node gets exactly one outgoing edge to target (the function
// exit or the innermost cleanup entry), no exit points, and a
// connected-to-exit marker so no caller re-routes it.
func Terminal(n types.FlowchartNode, target int, label string) Region {
	return Region{
		Nodes:           []types.FlowchartNode{n},
		Edges:           []types.FlowchartEdge{{From: n.ID, To: target, Label: label}},
		Entry:           n.ID,
		ConnectedToExit: NewIDSet(n.ID),
	}
}

// Jump wraps a node with one pre-wired edge to an intra-function target
// (a loop's break or continue sentinel). Unlike Terminal the node is not
// marked connected-to-exit: the target is a structural sentinel inside the
// graph, not the function exit, and the loop combinator resolves it.
// The region still exposes no exit points, so sequencing never attaches the
// lexical successor to it.
func Jump(n types.FlowchartNode, target int, label string) Region {
	return Region{
		Nodes: []types.FlowchartNode{n},
		Edges: []types.FlowchartEdge{{From: n.ID, To: target, Label: label}},
		Entry: n.ID,
	}
}

// IsEmpty reports whether the region is a no-op (no entry).
func (r Region) IsEmpty() bool {
	return r.Entry == types.NoNode
}

// danglingExits returns the exit points that are still re-routable, i.e. not
// already connected to a terminal.
func (r Region) danglingExits() []types.ExitPoint {
	if len(r.ConnectedToExit) == 0 {
		return r.Exits
	}
	out := make([]types.ExitPoint, 0, len(r.Exits))
	for _, xp := range r.Exits {
		if !r.ConnectedToExit.Has(xp.ID) {
			out = append(out, xp)
		}
	}
	return out
}

// Then sequences r before next: every dangling exit point of r grows an edge
// to next's entry, carrying the exit point's label. A transparent next (no
// entry) leaves r untouched; a transparent r adopts next wholesale. The
// combined region's exit points are next's, its connected-to-exit set the
// union of both.
func (r Region) Then(next Region) Region {
	if next.IsEmpty() {
		// Nothing to plug into; the no-op may still carry stray nodes
		// (a comment never does, but keep them if present).
		r.Nodes = append(r.Nodes, next.Nodes...)
		r.Edges = append(r.Edges, next.Edges...)
		r.ConnectedToExit = r.ConnectedToExit.Union(next.ConnectedToExit)
		return r
	}
	if r.IsEmpty() {
		next.Nodes = append(r.Nodes, next.Nodes...)
		next.Edges = append(r.Edges, next.Edges...)
		next.ConnectedToExit = r.ConnectedToExit.Union(next.ConnectedToExit)
		return next
	}

	combined := Region{
		Nodes:           append(r.Nodes, next.Nodes...),
		Edges:           append(r.Edges, next.Edges...),
		Entry:           r.Entry,
		Exits:           next.Exits,
		ConnectedToExit: r.ConnectedToExit.Union(next.ConnectedToExit),
	}
	for _, xp := range r.danglingExits() {
		combined.Edges = append(combined.Edges, types.FlowchartEdge{From: xp.ID, To: next.Entry, Label: xp.Label})
	}
	return combined
}

// absorb merges another region's nodes, edges and connected-to-exit markers
// without any wiring. Entry and exits are the caller's business.
func (r *Region) absorb(other Region) {
	r.Nodes = append(r.Nodes, other.Nodes...)
	r.Edges = append(r.Edges, other.Edges...)
	r.ConnectedToExit = r.ConnectedToExit.Union(other.ConnectedToExit)
}
