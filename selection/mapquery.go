package selection

import (
	"errors"
	"fmt"
	"math"
)

// ErrEdgeNotFound is returned by RemoveEdge when the edge is not in the map
var ErrEdgeNotFound = errors.New("edge not found")

// EdgeType is the kind of constraint an edge represents
type EdgeType int

const (
	EdgeTypeUnknown EdgeType = iota
	EdgeTypeOdometry
	EdgeTypeLoopClosure
)

var edgeTypeNames = map[EdgeType]string{
	EdgeTypeUnknown:     "unknown",
	EdgeTypeOdometry:    "odometry",
	EdgeTypeLoopClosure: "loop_closure",
}

func (t EdgeType) String() string {
	if name, ok := edgeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EdgeType(%d)", int(t))
}

// MarshalText encodes the edge type by name
func (t EdgeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes an edge type name such as "loop_closure"
func (t *EdgeType) UnmarshalText(text []byte) error {
	for et, name := range edgeTypeNames {
		if name == string(text) {
			*t = et
			return nil
		}
	}
	return fmt.Errorf("unknown edge type %q", string(text))
}

// Position is a point in the map frame, in meters
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between p and q
func (p Position) Distance(q Position) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// LoopClosureEdge is a directed loop-closure constraint. SwitchVariable is
// the optimizer's confidence in the constraint; low values mean the
// constraint was switched off as an outlier.
type LoopClosureEdge struct {
	ID             EdgeID
	From           VertexID
	To             VertexID
	SwitchVariable float64
}

// Map is the view of the pose graph the selection stages need. The graph
// is owned by the caller; selection only reads it during a scan and removes
// edges afterwards.
type Map interface {
	// HasVertex reports whether the vertex exists
	HasVertex(id VertexID) bool
	// VertexPosition returns the vertex position; it panics for unknown vertices
	VertexPosition(id VertexID) Position
	// OutgoingEdges returns the IDs of edges of type t leaving v
	OutgoingEdges(v VertexID, t EdgeType) []EdgeID
	// HasEdge reports whether the edge exists
	HasEdge(id EdgeID) bool
	// LoopClosureEdge fetches an edge as a loop closure. ok is false if the
	// edge is missing or has a different type.
	LoopClosureEdge(id EdgeID) (edge LoopClosureEdge, ok bool)
	// RemoveEdge deletes the edge, returning ErrEdgeNotFound if it is absent
	RemoveEdge(id EdgeID) error
}
