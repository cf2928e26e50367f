package selection

import "sort"

// VertexID identifies a vertex in the pose graph
type VertexID string

// EdgeID identifies an edge in the pose graph
type EdgeID string

// EdgeIDSet is an unordered, deduplicated set of edge IDs.
// Inserting an ID twice is a no-op.
type EdgeIDSet map[EdgeID]struct{}

// NewEdgeIDSet returns an empty set
func NewEdgeIDSet() EdgeIDSet {
	return make(EdgeIDSet)
}

// Insert adds id to the set
func (s EdgeIDSet) Insert(id EdgeID) {
	s[id] = struct{}{}
}

// Contains reports whether id is in the set
func (s EdgeIDSet) Contains(id EdgeID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set
func (s EdgeIDSet) Len() int {
	return len(s)
}

// Sorted returns the IDs in lexical order so deletion and logging are
// reproducible across runs.
func (s EdgeIDSet) Sorted() []EdgeID {
	ids := make([]EdgeID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
