package flow

import (
	"github.com/standardbeagle/flowgen/internal/types"
)

// Assemble wraps the sentinel entry and exit nodes around the callable's
// body region and resolves everything still dangling. The exit node is
// allocated before the body is built so terminal statements inside it can
// target the exit directly; body is invoked with that scope.
func Assemble(c *Context, title string, fnRange types.Range, body func(Scope) Region) types.FlowchartIR {
	entry := c.NewNode(types.NodeEntry, "Start")
	exit := c.NewNode(types.NodeExit, "End")

	region := Empty()
	if body != nil {
		region = body(Scope{ExitID: exit.ID})
	}

	ir := types.FlowchartIR{
		Title:         title,
		FunctionRange: fnRange,
		EntryNodeID:   entry.ID,
		ExitNodeID:    exit.ID,
	}
	ir.Nodes = append(ir.Nodes, entry, exit)
	ir.Nodes = append(ir.Nodes, region.Nodes...)
	ir.Edges = append(ir.Edges, region.Edges...)

	if region.IsEmpty() {
		ir.Edges = append(ir.Edges, types.FlowchartEdge{From: entry.ID, To: exit.ID})
	} else {
		ir.Edges = append(ir.Edges, types.FlowchartEdge{From: entry.ID, To: region.Entry})
		for _, xp := range region.danglingExits() {
			ir.Edges = append(ir.Edges, types.FlowchartEdge{From: xp.ID, To: exit.ID, Label: xp.Label})
		}
	}

	ir.Edges = filterEdges(ir.Nodes, ir.Edges)
	ir.LocationMap = c.Locations()
	ir.Complexity = complexity(ir.Nodes)
	return ir
}

// filterEdges drops any edge whose endpoints are not part of the node set.
// A construction defect upstream can leave such edges behind; they are never
// surfaced to the caller.
func filterEdges(nodes []types.FlowchartNode, edges []types.FlowchartEdge) []types.FlowchartEdge {
	present := make(IDSet, len(nodes))
	for _, n := range nodes {
		present.Add(n.ID)
	}
	kept := edges[:0]
	for _, e := range edges {
		if present.Has(e.From) && present.Has(e.To) {
			kept = append(kept, e)
		}
	}
	return kept
}

// complexity computes the cyclomatic metric attached to the IR: one plus the
// number of nodes with multiple labeled outgoing choices, which here means
// decision nodes and loop headers. Purely metadata; the graph shape is not
// affected.
func complexity(nodes []types.FlowchartNode) int {
	n := 1
	for _, node := range nodes {
		switch node.Kind {
		case types.NodeDecision, types.NodeLoopStart:
			n++
		}
	}
	return n
}

// Placeholder returns the one-node diagram produced when no callable matched
// the caller's selector. The message is user-facing; a failed selection is
// never reported as an error.
func Placeholder(message string) types.FlowchartIR {
	node := types.FlowchartNode{ID: 1, Label: message, Kind: types.NodeProcess}
	return types.FlowchartIR{
		Nodes:       []types.FlowchartNode{node},
		EntryNodeID: node.ID,
		ExitNodeID:  node.ID,
		Complexity:  1,
	}
}
