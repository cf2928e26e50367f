package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseGraph_AddVertex(t *testing.T) {
	g := NewPoseGraph()
	require.NoError(t, g.AddVertex("v1", Position{X: 1, Y: 2, Z: 3}))

	assert.Error(t, g.AddVertex("v1", Position{}), "duplicate vertex")
	assert.Error(t, g.AddVertex("", Position{}), "empty id")
	assert.True(t, g.HasVertex("v1"))
	assert.False(t, g.HasVertex("v2"))
	assert.Equal(t, Position{X: 1, Y: 2, Z: 3}, g.VertexPosition("v1"))
	assert.Panics(t, func() { g.VertexPosition("v2") })
	assert.Equal(t, 1, g.NumVertices())
}

func TestPoseGraph_AddEdge(t *testing.T) {
	g := lineGraph(t, 2)

	require.NoError(t, g.AddLoopClosure("e1", "v1", "v2", 0.7))
	assert.Error(t, g.AddLoopClosure("e1", "v1", "v2", 0.7), "duplicate edge")
	assert.Error(t, g.AddLoopClosure("e2", "v1", "v9", 0.7), "unknown destination")
	assert.Error(t, g.AddLoopClosure("e3", "v9", "v1", 0.7), "unknown source")
	assert.Error(t, g.AddEdge(Edge{From: "v1", To: "v2"}), "empty id")

	e, ok := g.LoopClosureEdge("e1")
	require.True(t, ok)
	assert.Equal(t, LoopClosureEdge{ID: "e1", From: "v1", To: "v2", SwitchVariable: 0.7}, e)
}

func TestPoseGraph_OutgoingEdgesByType(t *testing.T) {
	g := lineGraph(t, 3)
	require.NoError(t, g.AddEdge(Edge{ID: "odom", Type: EdgeTypeOdometry, From: "v1", To: "v2"}))
	require.NoError(t, g.AddLoopClosure("lc1", "v1", "v3", 0.5))
	require.NoError(t, g.AddLoopClosure("lc2", "v1", "v2", 0.5))
	require.NoError(t, g.AddLoopClosure("lc3", "v2", "v1", 0.5))

	assert.Equal(t, []EdgeID{"lc1", "lc2"}, g.OutgoingEdges("v1", EdgeTypeLoopClosure))
	assert.Equal(t, []EdgeID{"odom"}, g.OutgoingEdges("v1", EdgeTypeOdometry))
	assert.Empty(t, g.OutgoingEdges("v3", EdgeTypeLoopClosure))

	_, ok := g.LoopClosureEdge("odom")
	assert.False(t, ok, "odometry edge is not a loop closure")
}

func TestPoseGraph_RemoveEdge(t *testing.T) {
	g := lineGraph(t, 2)
	require.NoError(t, g.AddLoopClosure("lc1", "v1", "v2", 0.5))
	require.NoError(t, g.AddLoopClosure("lc2", "v1", "v2", 0.5))

	require.NoError(t, g.RemoveEdge("lc1"))
	assert.False(t, g.HasEdge("lc1"))
	assert.Equal(t, []EdgeID{"lc2"}, g.OutgoingEdges("v1", EdgeTypeLoopClosure))

	err := g.RemoveEdge("lc1")
	assert.True(t, errors.Is(err, ErrEdgeNotFound))
}

func TestPoseGraph_EdgeAndVertices(t *testing.T) {
	g := lineGraph(t, 3)
	require.NoError(t, g.AddEdge(Edge{ID: "odom", Type: EdgeTypeOdometry, From: "v1", To: "v2"}))
	require.NoError(t, g.AddLoopClosure("lc", "v1", "v3", 0.8))

	e, ok := g.Edge("odom")
	require.True(t, ok)
	assert.Equal(t, EdgeTypeOdometry, e.Type)
	_, isLoop := g.LoopClosureEdge("odom")
	assert.False(t, isLoop, "Edge returns every type, LoopClosureEdge only loop closures")

	e, ok = g.Edge("lc")
	require.True(t, ok)
	assert.Equal(t, 0.8, e.SwitchVariable)

	require.NoError(t, g.RemoveEdge("lc"))
	_, ok = g.Edge("lc")
	assert.False(t, ok)

	assert.ElementsMatch(t, []Vertex{
		{ID: "v1", Position: Position{X: 0}},
		{ID: "v2", Position: Position{X: 1}},
		{ID: "v3", Position: Position{X: 2}},
	}, g.Vertices())
}

func TestEdgeType_Text(t *testing.T) {
	var et EdgeType
	require.NoError(t, et.UnmarshalText([]byte("loop_closure")))
	assert.Equal(t, EdgeTypeLoopClosure, et)

	text, err := EdgeTypeOdometry.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "odometry", string(text))

	assert.Error(t, et.UnmarshalText([]byte("wormhole")))
	assert.Equal(t, "EdgeType(42)", EdgeType(42).String())
}

func TestPosition_Distance(t *testing.T) {
	assert.InDelta(t, 5.0, Position{}.Distance(Position{X: 3, Y: 4}), 1e-12)
	assert.InDelta(t, 3.0, Position{X: 1, Y: 2, Z: 2}.Distance(Position{X: 1, Y: 2, Z: -1}), 1e-12)
}
