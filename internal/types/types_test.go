package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	r := Range{Start: 10, End: 20}
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(19))
	assert.False(t, r.Contains(20))
	assert.False(t, r.Contains(9))
	assert.Equal(t, uint(10), r.Len())
}

func TestNodeAt_NarrowestWins(t *testing.T) {
	ir := FlowchartIR{
		Nodes: []FlowchartNode{
			{ID: 1, Kind: NodeEntry},
			{ID: 2, Kind: NodeDecision},
			{ID: 3, Kind: NodeReturn},
		},
		LocationMap: []LocationMapEntry{
			{Start: 0, End: 100, NodeID: 2},
			{Start: 40, End: 60, NodeID: 3},
		},
	}

	id, ok := ir.NodeAt(50)
	require.True(t, ok)
	assert.Equal(t, 3, id)

	id, ok = ir.NodeAt(5)
	require.True(t, ok)
	assert.Equal(t, 2, id)

	_, ok = ir.NodeAt(200)
	assert.False(t, ok)
}

func TestNode_Lookup(t *testing.T) {
	ir := FlowchartIR{Nodes: []FlowchartNode{{ID: 3, Label: "x"}}}
	require.NotNil(t, ir.Node(3))
	assert.Equal(t, "x", ir.Node(3).Label)
	assert.Nil(t, ir.Node(99))
}

func TestValidate(t *testing.T) {
	valid := FlowchartIR{
		Nodes: []FlowchartNode{{ID: 1}, {ID: 2}},
		Edges: []FlowchartEdge{{From: 1, To: 2}},
	}
	assert.NoError(t, valid.Validate())

	duped := FlowchartIR{Nodes: []FlowchartNode{{ID: 1}, {ID: 1}}}
	assert.Error(t, duped.Validate())

	dangling := FlowchartIR{
		Nodes: []FlowchartNode{{ID: 1}},
		Edges: []FlowchartEdge{{From: 1, To: 7}},
	}
	assert.Error(t, dangling.Validate())
}
