package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/flowgen/internal/types"
)

func TestAssemble_EmptyBody(t *testing.T) {
	c := NewContext(nil)
	ir := Assemble(c, "empty", types.Range{}, func(Scope) Region { return Empty() })

	require.Len(t, ir.Nodes, 2)
	require.Len(t, ir.Edges, 1)
	assert.Equal(t, ir.EntryNodeID, ir.Edges[0].From)
	assert.Equal(t, ir.ExitNodeID, ir.Edges[0].To)
	assert.Equal(t, 1, ir.Complexity)
	assert.NoError(t, ir.Validate())
}

func TestAssemble_SoleReturn(t *testing.T) {
	c := NewContext(nil)
	ir := Assemble(c, "f", types.Range{}, func(sc Scope) Region {
		return Terminal(c.NewNode(types.NodeReturn, "return 1"), sc.TerminalTarget(), "")
	})

	// Start, return, End; Start->return, return->End, and no duplicate edge
	// added for the already-connected return.
	require.Len(t, ir.Nodes, 3)
	require.Len(t, ir.Edges, 2)
	assert.NoError(t, ir.Validate())
}

func TestAssemble_IfElseShape(t *testing.T) {
	c := NewContext(nil)
	ir := Assemble(c, "f", types.Range{}, func(sc Scope) Region {
		cond := c.NewNode(types.NodeDecision, "x")
		return Branch(BranchSpec{
			Decision:    cond,
			TrueLabel:   "true",
			FalseLabel:  "false",
			Consequence: Single(c.NewNode(types.NodeProcess, "a()")),
			Alternative: Single(c.NewNode(types.NodeProcess, "b()")),
		})
	})

	// Start, decision, a, b, End.
	require.Len(t, ir.Nodes, 5)
	require.Len(t, ir.Edges, 5)
	assert.Equal(t, 2, ir.Complexity)
	assert.NoError(t, ir.Validate())

	var toExit int
	for _, e := range ir.Edges {
		if e.To == ir.ExitNodeID {
			toExit++
		}
	}
	assert.Equal(t, 2, toExit, "both branch tails reach End")
}

func TestAssemble_ExitPointLabelsCarryForward(t *testing.T) {
	c := NewContext(nil)
	var condID int
	ir := Assemble(c, "f", types.Range{}, func(sc Scope) Region {
		cond := c.NewNode(types.NodeDecision, "ready")
		condID = cond.ID
		return Branch(BranchSpec{
			Decision:    cond,
			TrueLabel:   "true",
			FalseLabel:  "false",
			Consequence: Single(c.NewNode(types.NodeProcess, "go()")),
			Alternative: Empty(),
		})
	})

	found := false
	for _, e := range ir.Edges {
		if e.From == condID && e.To == ir.ExitNodeID {
			assert.Equal(t, "false", e.Label)
			found = true
		}
	}
	assert.True(t, found, "decision's bare false branch is wired to End under its label")
}

func TestFilterEdges_DropsDanglingEndpoints(t *testing.T) {
	nodes := []types.FlowchartNode{{ID: 1}, {ID: 2}}
	edges := []types.FlowchartEdge{
		{From: 1, To: 2},
		{From: 1, To: 42}, // defect: target never materialized
		{From: 7, To: 2},  // defect: source never materialized
	}
	kept := filterEdges(nodes, edges)
	require.Len(t, kept, 1)
	assert.Equal(t, types.FlowchartEdge{From: 1, To: 2}, kept[0])
}

func TestAssemble_IdempotentTopology(t *testing.T) {
	build := func() types.FlowchartIR {
		c := NewContext(nil)
		return Assemble(c, "f", types.Range{}, func(sc Scope) Region {
			cond := c.NewNode(types.NodeDecision, "x")
			return Branch(BranchSpec{
				Decision:    cond,
				TrueLabel:   "true",
				FalseLabel:  "false",
				Consequence: Single(c.NewNode(types.NodeProcess, "a()")),
				Alternative: Empty(),
			})
		})
	}
	first, second := build(), build()
	assert.Equal(t, first, second, "identical input produces structurally identical graphs")
}

func TestPlaceholder(t *testing.T) {
	ir := Placeholder("No function found at the requested position")
	require.Len(t, ir.Nodes, 1)
	assert.Empty(t, ir.Edges)
	assert.Equal(t, ir.EntryNodeID, ir.ExitNodeID)
	assert.NoError(t, ir.Validate())
}
