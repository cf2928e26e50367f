package selection

import (
	"fmt"
	"sync"
)

// Vertex is a pose graph node with its position in the map frame
type Vertex struct {
	ID       VertexID `json:"id"`
	Position Position `json:"position"`
}

// Edge is a typed, directed pose graph edge. SwitchVariable is only
// meaningful for loop closures.
type Edge struct {
	ID             EdgeID   `json:"id"`
	Type           EdgeType `json:"type"`
	From           VertexID `json:"from"`
	To             VertexID `json:"to"`
	SwitchVariable float64  `json:"switchVariable,omitempty"`
}

// PoseGraph is an in-memory Map implementation
type PoseGraph struct {
	vertices map[VertexID]Vertex
	edges    map[EdgeID]Edge
	outgoing map[VertexID][]EdgeID
	mu       sync.RWMutex
}

// NewPoseGraph creates an empty pose graph
func NewPoseGraph() *PoseGraph {
	return &PoseGraph{
		vertices: make(map[VertexID]Vertex),
		edges:    make(map[EdgeID]Edge),
		outgoing: make(map[VertexID][]EdgeID),
	}
}

// AddVertex inserts a vertex. Vertex IDs must be unique.
func (g *PoseGraph) AddVertex(id VertexID, pos Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id == "" {
		return fmt.Errorf("vertex id is required")
	}
	if _, exists := g.vertices[id]; exists {
		return fmt.Errorf("duplicate vertex %s", id)
	}
	g.vertices[id] = Vertex{ID: id, Position: pos}
	return nil
}

// AddEdge inserts an edge between two existing vertices
func (g *PoseGraph) AddEdge(e Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e.ID == "" {
		return fmt.Errorf("edge id is required")
	}
	if _, exists := g.edges[e.ID]; exists {
		return fmt.Errorf("duplicate edge %s", e.ID)
	}
	if _, ok := g.vertices[e.From]; !ok {
		return fmt.Errorf("edge %s: unknown source vertex %s", e.ID, e.From)
	}
	if _, ok := g.vertices[e.To]; !ok {
		return fmt.Errorf("edge %s: unknown destination vertex %s", e.ID, e.To)
	}
	g.edges[e.ID] = e
	g.outgoing[e.From] = append(g.outgoing[e.From], e.ID)
	return nil
}

// AddLoopClosure is shorthand for adding a loop-closure edge
func (g *PoseGraph) AddLoopClosure(id EdgeID, from, to VertexID, switchVariable float64) error {
	return g.AddEdge(Edge{
		ID:             id,
		Type:           EdgeTypeLoopClosure,
		From:           from,
		To:             to,
		SwitchVariable: switchVariable,
	})
}

// HasVertex reports whether the vertex exists
func (g *PoseGraph) HasVertex(id VertexID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.vertices[id]
	return ok
}

// VertexPosition returns the position of a vertex and panics if the vertex
// is unknown
func (g *PoseGraph) VertexPosition(id VertexID) Position {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[id]
	if !ok {
		panic(fmt.Sprintf("pose graph: unknown vertex %s", id))
	}
	return v.Position
}

// OutgoingEdges returns edges of type t leaving v, in insertion order
func (g *PoseGraph) OutgoingEdges(v VertexID, t EdgeType) []EdgeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var ids []EdgeID
	for _, id := range g.outgoing[v] {
		if g.edges[id].Type == t {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasEdge reports whether the edge exists
func (g *PoseGraph) HasEdge(id EdgeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.edges[id]
	return ok
}

// Edge returns an edge of any type
func (g *PoseGraph) Edge(id EdgeID) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	return e, ok
}

// LoopClosureEdge returns the edge if it exists and is a loop closure
func (g *PoseGraph) LoopClosureEdge(id EdgeID) (LoopClosureEdge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	if !ok || e.Type != EdgeTypeLoopClosure {
		return LoopClosureEdge{}, false
	}
	return LoopClosureEdge{
		ID:             e.ID,
		From:           e.From,
		To:             e.To,
		SwitchVariable: e.SwitchVariable,
	}, true
}

// RemoveEdge deletes an edge and its adjacency entry
func (g *PoseGraph) RemoveEdge(id EdgeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("removing %s: %w", id, ErrEdgeNotFound)
	}
	delete(g.edges, id)

	out := g.outgoing[e.From]
	for i, other := range out {
		if other == id {
			g.outgoing[e.From] = append(out[:i], out[i+1:]...)
			break
		}
	}
	if len(g.outgoing[e.From]) == 0 {
		delete(g.outgoing, e.From)
	}
	return nil
}

// NumVertices returns the vertex count
func (g *PoseGraph) NumVertices() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// NumEdges returns the edge count
func (g *PoseGraph) NumEdges() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Vertices returns all vertices; order is unspecified
func (g *PoseGraph) Vertices() []Vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		out = append(out, v)
	}
	return out
}
