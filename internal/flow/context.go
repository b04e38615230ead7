// Package flow implements the language-independent half of flowchart
// construction: the region algebra that composes statement-level fragments
// into a single graph, the per-build bookkeeping context, and the final
// assembly pass. Language front-ends produce leaf nodes and drive the
// composition; nothing in this package touches a syntax tree.
package flow

import (
	"github.com/standardbeagle/flowgen/internal/types"
)

// Context carries the mutable state of exactly one flowchart build: the
// monotonic node id counter and the source-range location map. A Context is
// created per generate call and discarded with it, so independent builds can
// run concurrently without sharing anything.
type Context struct {
	Source []byte

	// LabelLimit is the rune count labels are truncated to.
	LabelLimit int

	nextID    int
	locations []types.LocationMapEntry
}

// DefaultLabelLimit keeps node labels readable in rendered diagrams.
const DefaultLabelLimit = 60

// NewContext creates a build context over the given source buffer. Node ids
// start at 1; 0 is reserved as the NoNode sentinel so a zero-valued Region
// stays transparent.
func NewContext(source []byte) *Context {
	return &Context{Source: source, LabelLimit: DefaultLabelLimit, nextID: 1}
}

// NewNode allocates a fresh node with the next id. The node is not part of
// any region until the caller places it in one.
func (c *Context) NewNode(kind types.NodeKind, label string) types.FlowchartNode {
	id := c.nextID
	c.nextID++
	return types.FlowchartNode{ID: id, Label: label, Kind: kind}
}

// RecordRange adds a source-range to node mapping. Multiple ranges may map
// to the same node; the caller records whatever granularity makes
// click-to-source useful.
func (c *Context) RecordRange(start, end uint, nodeID int) {
	c.locations = append(c.locations, types.LocationMapEntry{Start: start, End: end, NodeID: nodeID})
}

// Locations returns the accumulated location map in recording order.
func (c *Context) Locations() []types.LocationMapEntry {
	return c.locations
}

// LoopContext names the two jump targets a loop establishes for its body.
// It is rebound at every loop boundary and read, never mutated, below it.
type LoopContext struct {
	BreakTarget    int
	ContinueTarget int
}

// CleanupContext redirects terminal statements (return/throw/panic) through
// a finally region before they reach the true function exit. It is rebound
// at every try/finally boundary.
type CleanupContext struct {
	EntryID int
}

// Scope is the read-only environment a statement is processed in: the
// enclosing loop (if any), the enclosing cleanup region (if any), and the
// function exit sentinel. Scopes are passed by value; rebinding a loop or
// cleanup produces a new Scope without touching the caller's.
type Scope struct {
	Loop    *LoopContext
	Cleanup *CleanupContext
	ExitID  int
}

// WithLoop returns a scope whose break/continue targets are rebound to the
// given nodes.
func (s Scope) WithLoop(breakTarget, continueTarget int) Scope {
	s.Loop = &LoopContext{BreakTarget: breakTarget, ContinueTarget: continueTarget}
	return s
}

// WithCleanup returns a scope whose terminal statements are redirected
// through the cleanup region rooted at entryID.
func (s Scope) WithCleanup(entryID int) Scope {
	s.Cleanup = &CleanupContext{EntryID: entryID}
	return s
}

// TerminalTarget is where a return/throw/panic statement points its single
// outgoing edge: the innermost cleanup entry when one is bound, otherwise
// the function exit.
func (s Scope) TerminalTarget() int {
	if s.Cleanup != nil {
		return s.Cleanup.EntryID
	}
	return s.ExitID
}
