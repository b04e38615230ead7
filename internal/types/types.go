package types

import "fmt"

// NodeKind classifies a flowchart node by the semantic role of the source
// construct it was built from. Renderers pick shapes from this, the builder
// picks it from the syntax node kind.
type NodeKind string

const (
	NodeEntry            NodeKind = "entry"
	NodeExit             NodeKind = "exit"
	NodeProcess          NodeKind = "process"
	NodeDecision         NodeKind = "decision"
	NodeLoopStart        NodeKind = "loop_start"
	NodeLoopEnd          NodeKind = "loop_end"
	NodeAssignment       NodeKind = "assignment"
	NodeReturn           NodeKind = "return"
	NodeException        NodeKind = "exception"
	NodeBreakContinue    NodeKind = "break_continue"
	NodeFunctionCall     NodeKind = "function_call"
	NodeMethodCall       NodeKind = "method_call"
	NodeMacroCall        NodeKind = "macro_call"
	NodeAwait            NodeKind = "await"
	NodeEarlyReturnError NodeKind = "early_return_error"
	NodePanic            NodeKind = "panic"
	NodeSubroutine       NodeKind = "subroutine"
)

// NoNode is the sentinel node id used wherever an optional node reference is
// absent (for example the entry of an empty region). Real node ids are
// always positive, so a zero-valued reference reads as absent.
const NoNode = 0

// FlowchartNode is a single node of the generated diagram. IDs are unique
// within one FlowchartIR and carry no meaning across builds.
type FlowchartNode struct {
	ID    int      `json:"id"`
	Label string   `json:"label"`
	Kind  NodeKind `json:"kind"`
}

// FlowchartEdge is a labeled directed edge between two nodes. The label
// carries branch semantics ("true"/"false", "match"/"no match", "Ok"/"Err")
// and is empty for plain sequential flow.
type FlowchartEdge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label,omitempty"`
}

// ExitPoint is one unresolved alternative successor of a region: control may
// leave the region through this node, and whatever the caller places next
// decides where that flow continues. The label, when set, is carried onto the
// edge created at connection time.
type ExitPoint struct {
	ID    int
	Label string
}

// Range is a half-open byte range [Start, End) into the source buffer.
type Range struct {
	Start uint `json:"start"`
	End   uint `json:"end"`
}

// Contains reports whether the byte offset falls inside the range.
func (r Range) Contains(pos uint) bool {
	return pos >= r.Start && pos < r.End
}

// Len returns the range width in bytes.
func (r Range) Len() uint {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// LocationMapEntry maps one source byte range to the diagram node built from
// it. Many ranges may map to the same node; editors use this for
// click-to-source navigation in both directions.
type LocationMapEntry struct {
	Start  uint `json:"start"`
	End    uint `json:"end"`
	NodeID int  `json:"nodeId"`
}

// FlowchartIR is the final diagram artifact for one callable. It is owned by
// the caller once returned; the builder keeps no reference to it.
type FlowchartIR struct {
	Nodes         []FlowchartNode    `json:"nodes"`
	Edges         []FlowchartEdge    `json:"edges"`
	LocationMap   []LocationMapEntry `json:"locationMap,omitempty"`
	EntryNodeID   int                `json:"entryNodeId"`
	ExitNodeID    int                `json:"exitNodeId"`
	Title         string             `json:"title,omitempty"`
	FunctionRange Range              `json:"functionRange"`
	Complexity    int                `json:"complexity"`
}

// Node returns the node with the given id, or nil when the id is not part of
// this IR.
func (ir *FlowchartIR) Node(id int) *FlowchartNode {
	for i := range ir.Nodes {
		if ir.Nodes[i].ID == id {
			return &ir.Nodes[i]
		}
	}
	return nil
}

// NodeAt returns the innermost node mapped to the given byte offset. The
// entry with the narrowest covering range wins, matching how editors resolve
// a cursor position to a diagram node.
func (ir *FlowchartIR) NodeAt(pos uint) (int, bool) {
	best := NoNode
	bestLen := ^uint(0)
	for _, entry := range ir.LocationMap {
		if pos < entry.Start || pos >= entry.End {
			continue
		}
		if width := entry.End - entry.Start; width < bestLen {
			best = entry.NodeID
			bestLen = width
		}
	}
	return best, best != NoNode
}

// Validate checks the structural invariants of a finished IR: unique node
// ids and edge endpoints that exist in the node set. Violations indicate a
// builder defect, not bad user input.
func (ir *FlowchartIR) Validate() error {
	seen := make(map[int]struct{}, len(ir.Nodes))
	for _, n := range ir.Nodes {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for _, e := range ir.Edges {
		if _, ok := seen[e.From]; !ok {
			return fmt.Errorf("edge %d->%d references missing source node", e.From, e.To)
		}
		if _, ok := seen[e.To]; !ok {
			return fmt.Errorf("edge %d->%d references missing target node", e.From, e.To)
		}
	}
	return nil
}
