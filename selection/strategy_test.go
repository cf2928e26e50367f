package selection

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// positionedCandidates builds one candidate per position; candidate i has
// vertex a<i> at positions[i] and a partner b<i> far away on the Y axis.
func positionedCandidates(t *testing.T, positions []Position) (*PoseGraph, CandidatePairs) {
	t.Helper()
	g := NewPoseGraph()
	var candidates CandidatePairs
	for i, p := range positions {
		a := VertexID(fmt.Sprintf("a%d", i+1))
		b := VertexID(fmt.Sprintf("b%d", i+1))
		require.NoError(t, g.AddVertex(a, p))
		require.NoError(t, g.AddVertex(b, Position{X: p.X, Y: 1000, Z: p.Z}))
		candidates = append(candidates, NewCandidatePair(a, b))
	}
	return g, candidates
}

func distanceConfig(limit int, minDist float64) Config {
	cfg := DefaultConfig()
	cfg.MaxNumberOfCandidates = limit
	cfg.FilterStrategy = StrategyDistance
	cfg.MinDistanceToNextCandidate = minDist
	return cfg
}

func aIDs(candidates CandidatePairs) []VertexID {
	ids := make([]VertexID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.CandidateA.ClosestVertexID
	}
	return ids
}

// ---------------------------------------------------------------------------
// dispatch
// ---------------------------------------------------------------------------

func TestFilterByStrategy_NegativeCapSkips(t *testing.T) {
	for _, strategy := range []FilterStrategy{StrategyRandom, StrategyDistance, StrategyUnknown} {
		g, candidates := positionedCandidates(t, []Position{{}, {}, {}})
		cfg := distanceConfig(-1, 1.0)
		cfg.FilterStrategy = strategy

		stats := FilterByStrategy(cfg, g, &candidates)

		assert.Len(t, candidates, 3, strategy.String())
		assert.True(t, stats.Skipped)
	}
}

func TestFilterByStrategy_UnknownIsNoOp(t *testing.T) {
	g, candidates := positionedCandidates(t, []Position{{}, {}, {}})
	cfg := DefaultConfig()
	cfg.MaxNumberOfCandidates = 1
	_ = cfg.SetFilterStrategy("nearest")

	stats := FilterByStrategy(cfg, g, &candidates)

	assert.Len(t, candidates, 3)
	assert.True(t, stats.Skipped)
	assert.Equal(t, "nearest", stats.Strategy)
}

func TestFilterByStrategy_StrategyNamesAreCaseSensitive(t *testing.T) {
	for _, name := range []string{"Random", "DISTANCE"} {
		g, candidates := positionedCandidates(t, []Position{{X: 0}, {X: 10}, {X: 20}})
		cfg := DefaultConfig()
		cfg.MaxNumberOfCandidates = 1
		assert.Error(t, cfg.SetFilterStrategy(name))

		stats := FilterByStrategy(cfg, g, &candidates)

		assert.Len(t, candidates, 3, name)
		assert.True(t, stats.Skipped, name)
		assert.Equal(t, name, stats.Strategy)
	}
}

func TestFilterByStrategy_NilArgumentsPanic(t *testing.T) {
	g := lineGraph(t, 1)
	cfg := distanceConfig(1, 1.0)
	assert.Panics(t, func() { FilterByStrategy(cfg, g, nil) })

	candidates := CandidatePairs{}
	assert.Panics(t, func() { FilterByStrategy(cfg, nil, &candidates) })
}

func TestFilterByStrategy_CardinalityBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(12)
		positions := make([]Position, n)
		for i := range positions {
			positions[i] = Position{X: rng.Float64() * 20, Y: rng.Float64() * 20, Z: rng.Float64()}
		}

		for _, strategy := range []FilterStrategy{StrategyRandom, StrategyDistance} {
			limit := rng.Intn(8)
			g, candidates := positionedCandidates(t, positions)
			cfg := distanceConfig(limit, 2.0)
			cfg.FilterStrategy = strategy
			cfg.RNG = rng

			stats := FilterByStrategy(cfg, g, &candidates)

			switch strategy {
			case StrategyRandom:
				assert.LessOrEqual(t, candidates.Len(), limit, "random n=%d limit=%d", n, limit)
			case StrategyDistance:
				// the tail after the early stop is never evaluated
				assert.LessOrEqual(t, stats.After-stats.Untouched, limit, "distance n=%d limit=%d", n, limit)
				assert.Equal(t, candidates.Len(), stats.After)
				if stats.Untouched > 0 {
					assert.Equal(t, limit, stats.After-stats.Untouched, "early stop only once the cap is reached")
				}
			}
		}
	}
}

// ---------------------------------------------------------------------------
// distance
// ---------------------------------------------------------------------------

func TestFilterByDistance_Declusters(t *testing.T) {
	g, candidates := positionedCandidates(t, []Position{
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 0.5},
		{X: 10, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0.5},
		{X: 20, Y: 0, Z: 0},
	})

	stats := FilterByStrategy(distanceConfig(3, 1.0), g, &candidates)

	assert.Equal(t, []VertexID{"a1", "a3", "a5"}, aIDs(candidates))
	assert.Equal(t, 2, stats.Rejected)
	assert.Equal(t, 0, stats.Untouched)
}

func TestFilterByDistance_ExactDistanceRejected(t *testing.T) {
	g, candidates := positionedCandidates(t, []Position{
		{X: 0},
		{X: 1},
		{X: 0, Y: 0, Z: 1},
		{X: 1.5},
	})

	FilterByStrategy(distanceConfig(10, 1.0), g, &candidates)

	assert.Equal(t, []VertexID{"a1", "a4"}, aIDs(candidates))
}

func TestFilterByDistance_UsesFullThreeDimensionalDistance(t *testing.T) {
	g, candidates := positionedCandidates(t, []Position{
		{X: 0, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 5}, // same XY, far in Z
	})

	FilterByStrategy(distanceConfig(10, 1.0), g, &candidates)

	assert.Equal(t, []VertexID{"a1", "a2"}, aIDs(candidates))
}

func TestFilterByDistance_StopsAtCap(t *testing.T) {
	g, candidates := positionedCandidates(t, []Position{
		{X: 0},
		{X: 0.1}, // rejected before the cap is reached
		{X: 5},
		{X: 5.1}, // after the cap: untouched even though it is too close
		{X: 20},
	})

	stats := FilterByStrategy(distanceConfig(2, 1.0), g, &candidates)

	assert.Equal(t, []VertexID{"a1", "a3", "a4", "a5"}, aIDs(candidates))
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, 2, stats.Untouched)
}

func TestFilterByDistance_CanLandBelowCap(t *testing.T) {
	g, candidates := positionedCandidates(t, []Position{{X: 0}, {X: 0.2}, {X: 0.4}, {X: 3}})

	FilterByStrategy(distanceConfig(5, 1.0), g, &candidates)

	assert.Equal(t, []VertexID{"a1", "a4"}, aIDs(candidates))
}

func TestFilterByDistance_ZeroCapRemovesAll(t *testing.T) {
	g, candidates := positionedCandidates(t, []Position{{X: 0}, {X: 10}})

	stats := FilterByStrategy(distanceConfig(0, 1.0), g, &candidates)

	assert.Empty(t, candidates)
	assert.Equal(t, 2, stats.Rejected)
	assert.Equal(t, 0, stats.Untouched)
}

func TestFilterByDistance_NegativeThresholdKeepsEverything(t *testing.T) {
	g, candidates := positionedCandidates(t, []Position{{}, {}, {}})

	FilterByStrategy(distanceConfig(10, -1), g, &candidates)

	assert.Len(t, candidates, 3)
}

func TestFilterByDistance_Greediness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	positions := make([]Position, 200)
	for i := range positions {
		positions[i] = Position{X: rng.Float64() * 30, Y: rng.Float64() * 30, Z: rng.Float64() * 3}
	}
	const minDist = 2.5

	g, candidates := positionedCandidates(t, positions)
	FilterByStrategy(distanceConfig(1000, minDist), g, &candidates)

	// no two survivors are within minDist of each other
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			pi := g.VertexPosition(candidates[i].CandidateA.ClosestVertexID)
			pj := g.VertexPosition(candidates[j].CandidateA.ClosestVertexID)
			assert.Greater(t, pi.Distance(pj), minDist)
		}
	}

	// survivors are exactly what a brute-force greedy pass in order keeps
	var want []VertexID
	var kept []Position
	for i, p := range positions {
		ok := true
		for _, q := range kept {
			if !(p.Distance(q) > minDist) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, p)
			want = append(want, VertexID(fmt.Sprintf("a%d", i+1)))
		}
	}
	if diff := cmp.Diff(want, aIDs(candidates)); diff != "" {
		t.Errorf("greedy selection mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// random
// ---------------------------------------------------------------------------

func TestFilterRandomly_KeepsCap(t *testing.T) {
	g, candidates := positionedCandidates(t, make([]Position, 10))
	cfg := seededConfig(1)
	cfg.MaxNumberOfCandidates = 4

	stats := FilterByStrategy(cfg, g, &candidates)

	assert.Len(t, candidates, 4)
	assert.Equal(t, 6, stats.Rejected)

	// survivors are distinct original candidates in original relative order
	seen := map[VertexID]bool{}
	last := 0
	for _, c := range candidates {
		id := c.CandidateA.ClosestVertexID
		assert.False(t, seen[id])
		seen[id] = true

		var idx int
		_, err := fmt.Sscanf(string(id), "a%d", &idx)
		require.NoError(t, err)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestFilterRandomly_FewerThanCapUnchanged(t *testing.T) {
	g, candidates := positionedCandidates(t, make([]Position, 3))
	original := candidates.Clone()
	cfg := seededConfig(1)
	cfg.MaxNumberOfCandidates = 5

	FilterByStrategy(cfg, g, &candidates)

	assert.Equal(t, original, candidates)
}

func TestFilterRandomly_ZeroCapRemovesAll(t *testing.T) {
	g, candidates := positionedCandidates(t, make([]Position, 3))
	cfg := seededConfig(1)
	cfg.MaxNumberOfCandidates = 0

	FilterByStrategy(cfg, g, &candidates)

	assert.Empty(t, candidates)
}

func TestFilterRandomly_SeedIsReproducible(t *testing.T) {
	run := func() []VertexID {
		g, candidates := positionedCandidates(t, make([]Position, 20))
		cfg := DefaultConfig()
		cfg.MaxNumberOfCandidates = 5
		cfg.RandomSeed = 1234
		FilterByStrategy(cfg, g, &candidates)
		return aIDs(candidates)
	}

	assert.Equal(t, run(), run())
}

func TestFilterRandomly_Uniform(t *testing.T) {
	const (
		n      = 10
		limit  = 3
		trials = 20000
	)
	g, original := positionedCandidates(t, make([]Position, n))
	cfg := seededConfig(99)
	cfg.MaxNumberOfCandidates = limit

	counts := map[VertexID]int{}
	for i := 0; i < trials; i++ {
		candidates := original.Clone()
		FilterByStrategy(cfg, g, &candidates)
		require.Len(t, candidates, limit)
		for _, c := range candidates {
			counts[c.CandidateA.ClosestVertexID]++
		}
	}

	want := float64(limit) / float64(n)
	for _, c := range original {
		got := float64(counts[c.CandidateA.ClosestVertexID]) / trials
		// binomial stddev is ~0.0032 here; allow ~6 sigma
		assert.LessOrEqual(t, math.Abs(got-want), 0.02, "%s kept with p=%.3f", c.CandidateA.ClosestVertexID, got)
	}
}
