package selection

import "log"

// StrategyStats summarizes one run of FilterByStrategy
type StrategyStats struct {
	Strategy string `json:"strategy"`
	Skipped  bool   `json:"skipped"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
	// Rejected candidates were evaluated and removed
	Rejected int `json:"rejected"`
	// Untouched candidates were never evaluated because the cap was reached
	Untouched int `json:"untouched"`
}

type strategyFunc func(cfg Config, m Map, candidates *CandidatePairs, stats *StrategyStats)

var strategyFuncs = map[FilterStrategy]strategyFunc{
	StrategyRandom:   filterRandomly,
	StrategyDistance: filterByDistance,
}

// FilterByStrategy caps the number of candidates at MaxNumberOfCandidates
// using the configured strategy. A negative cap disables the stage and an
// unknown strategy is logged and leaves the candidates unchanged.
func FilterByStrategy(cfg Config, m Map, candidates *CandidatePairs) StrategyStats {
	stats := StrategyStats{Strategy: cfg.StrategyName()}
	if cfg.MaxNumberOfCandidates < 0 {
		stats.Skipped = true
		if candidates != nil {
			stats.Before = candidates.Len()
			stats.After = stats.Before
		}
		return stats
	}

	if candidates == nil {
		panic("selection: nil candidate list")
	}
	if m == nil {
		panic("selection: nil map")
	}

	stats.Before = candidates.Len()
	fn, ok := strategyFuncs[cfg.FilterStrategy]
	if !ok {
		log.Printf("[STRATEGY] Error: unknown filter strategy %s", cfg.StrategyName())
		stats.Skipped = true
	} else {
		fn(cfg, m, candidates, &stats)
	}
	stats.After = candidates.Len()

	log.Printf("[STRATEGY] %s: %d -> %d candidates (max %d)",
		stats.Strategy, stats.Before, stats.After, cfg.MaxNumberOfCandidates)
	return stats
}

// filterRandomly keeps a uniform random subset of at most
// MaxNumberOfCandidates candidates. Survivors keep their relative order.
func filterRandomly(cfg Config, _ Map, candidates *CandidatePairs, stats *StrategyStats) {
	n := candidates.Len()
	toDelete := n - min(n, cfg.MaxNumberOfCandidates)
	if toDelete <= 0 {
		return
	}

	perm := cfg.rng().Perm(n)
	drop := make([]bool, n)
	for _, i := range perm[:toDelete] {
		drop[i] = true
	}
	stats.Rejected = candidates.Retain(func(i int, _ CandidatePair) bool {
		return !drop[i]
	})
}

// filterByDistance walks the candidates in order and keeps one only if the
// position of its A vertex is strictly farther than
// MinDistanceToNextCandidate from every position kept so far. Scanning
// stops once MaxNumberOfCandidates have been kept; the remaining
// candidates are left in place.
func filterByDistance(cfg Config, m Map, candidates *CandidatePairs, stats *StrategyStats) {
	limit := cfg.MaxNumberOfCandidates
	// A zero cap asks for no candidates, as it does for the random policy.
	if limit == 0 {
		stats.Rejected = candidates.Retain(func(int, CandidatePair) bool { return false })
		return
	}
	if candidates.Len() == 0 {
		return
	}

	var known []Position
	for _, pair := range *candidates {
		if m.HasVertex(pair.CandidateA.ClosestVertexID) {
			known = append(known, m.VertexPosition(pair.CandidateA.ClosestVertexID))
		}
	}
	accepted := newPositionIndex(positionBound(known))

	done := false
	stats.Rejected = candidates.Retain(func(_ int, pair CandidatePair) bool {
		if done {
			stats.Untouched++
			return true
		}

		pos := m.VertexPosition(pair.CandidateA.ClosestVertexID)
		if !accepted.FartherThan(pos, cfg.MinDistanceToNextCandidate) {
			if cfg.Verbose {
				log.Printf("[STRATEGY] Rejecting %s: within %.2fm of a kept candidate",
					pair, cfg.MinDistanceToNextCandidate)
			}
			return false
		}

		accepted.Add(pos)
		if accepted.Len() >= limit {
			done = true
		}
		return true
	})
}
