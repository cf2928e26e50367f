package selection

import (
	"fmt"
	"log"
)

// QualityStats summarizes one run of FilterByQuality
type QualityStats struct {
	Before         int      `json:"before"`
	After          int      `json:"after"`
	Invalid        int      `json:"invalid"`
	GoodPriorEdges int      `json:"goodPriorEdges"`
	RemovedEdges   []EdgeID `json:"removedEdges"`
}

// HasGoodConstraint reports whether at least one loop-closure edge from -> to
// has a switch variable at or above the configured threshold.
//
// Matching edges are queued in deleteSet when they are bad and invalid
// constraints are recomputed, or unconditionally when all constraints are
// recomputed. The map itself is not modified.
//
// An edge listed as outgoing from `from` that cannot be fetched, or whose
// source is not `from`, means the map is corrupt and causes a panic.
func HasGoodConstraint(cfg Config, m Map, from, to VertexID, deleteSet EdgeIDSet) bool {
	if deleteSet == nil {
		panic("selection: nil delete set")
	}

	hasGood := false
	for _, id := range m.OutgoingEdges(from, EdgeTypeLoopClosure) {
		if !m.HasEdge(id) {
			panic(fmt.Sprintf("selection: outgoing edge %s of vertex %s is not in the map", id, from))
		}
		edge, ok := m.LoopClosureEdge(id)
		if !ok {
			panic(fmt.Sprintf("selection: edge %s is not a loop closure", id))
		}
		if edge.From != from {
			panic(fmt.Sprintf("selection: edge %s starts at %s, expected %s", id, edge.From, from))
		}

		if edge.To != to {
			continue
		}

		isGood := edge.SwitchVariable >= cfg.ConstraintMinSwitchVariableValue
		if (!isGood && cfg.RecomputeInvalidConstraints) || cfg.RecomputeAllConstraints {
			deleteSet.Insert(id)
		}
		hasGood = hasGood || isGood
	}
	return hasGood
}

// FilterByQuality removes invalid candidates and candidates that are
// already backed by a good loop closure in either direction. With
// RecomputeAllConstraints those candidates are kept instead, since their
// constraints are about to be deleted and recomputed.
//
// Edges queued for recomputation are removed from the map only after the
// whole candidate list has been scanned.
func FilterByQuality(cfg Config, m Map, candidates *CandidatePairs) QualityStats {
	if candidates == nil {
		panic("selection: nil candidate list")
	}
	if m == nil {
		panic("selection: nil map")
	}

	stats := QualityStats{Before: candidates.Len()}
	log.Printf("[QUALITY] Selecting candidates based on quality from %d initial candidates", stats.Before)

	deleteSet := NewEdgeIDSet()
	candidates.Retain(func(_ int, pair CandidatePair) bool {
		if !pair.IsValid(m) {
			stats.Invalid++
			if cfg.Verbose {
				log.Printf("[QUALITY] Invalid %s", pair)
			}
			return false
		}

		a := pair.CandidateA.ClosestVertexID
		b := pair.CandidateB.ClosestVertexID
		// Evaluate both directions so each queues its own deletions.
		goodAB := HasGoodConstraint(cfg, m, a, b, deleteSet)
		goodBA := HasGoodConstraint(cfg, m, b, a, deleteSet)

		if goodAB || goodBA {
			stats.GoodPriorEdges++
			return cfg.RecomputeAllConstraints
		}
		return true
	})

	if cfg.RecomputeAllConstraints || cfg.RecomputeInvalidConstraints {
		for _, id := range deleteSet.Sorted() {
			if err := m.RemoveEdge(id); err != nil {
				panic(fmt.Sprintf("selection: removing queued edge %s: %v", id, err))
			}
			stats.RemovedEdges = append(stats.RemovedEdges, id)
		}
	}

	stats.After = candidates.Len()
	log.Printf("[QUALITY] Reduced candidate set from %d to %d based on %d good prior constraints and removed %d bad prior constraints",
		stats.Before, stats.After, stats.GoodPriorEdges, len(stats.RemovedEdges))
	return stats
}
