package selection

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownStrategy is returned when a filter strategy name is not recognized
var ErrUnknownStrategy = errors.New("unknown filter strategy")

// FilterStrategy selects how the candidate count is capped
type FilterStrategy int

const (
	// StrategyUnknown is any unrecognized strategy name; the strategy stage
	// logs an error and leaves the candidates alone
	StrategyUnknown FilterStrategy = iota
	// StrategyRandom keeps a uniform random subset
	StrategyRandom
	// StrategyDistance greedily keeps spatially separated candidates
	StrategyDistance
)

var strategyNames = map[FilterStrategy]string{
	StrategyUnknown:  "unknown",
	StrategyRandom:   "random",
	StrategyDistance: "distance",
}

func (s FilterStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("FilterStrategy(%d)", int(s))
}

// ParseFilterStrategy maps "random" or "distance" to a strategy. Matching
// is exact, so "Random" is unknown. Unknown names return StrategyUnknown
// together with ErrUnknownStrategy.
func ParseFilterStrategy(name string) (FilterStrategy, error) {
	switch name {
	case "random":
		return StrategyRandom, nil
	case "distance":
		return StrategyDistance, nil
	}
	return StrategyUnknown, fmt.Errorf("%w %q", ErrUnknownStrategy, name)
}

// Config holds the candidate selection policy
type Config struct {
	// Quality filtering against prior loop-closure edges
	RecomputeAllConstraints          bool
	RecomputeInvalidConstraints      bool
	ConstraintMinSwitchVariableValue float64 // inclusive

	// Cardinality filtering. A negative MaxNumberOfCandidates disables the
	// strategy stage entirely.
	MaxNumberOfCandidates      int
	FilterStrategy             FilterStrategy
	MinDistanceToNextCandidate float64 // meters, used by StrategyDistance

	// RandomSeed seeds the random strategy when RNG is nil; 0 seeds from the clock
	RandomSeed int64
	RNG        *rand.Rand
	Verbose    bool

	// strategyName is the raw configured strategy, kept for error messages
	strategyName string
}

// DefaultConfig returns the selection defaults
func DefaultConfig() Config {
	return Config{
		RecomputeAllConstraints:          false,
		RecomputeInvalidConstraints:      false,
		ConstraintMinSwitchVariableValue: 0.5,
		MaxNumberOfCandidates:            -1,
		FilterStrategy:                   StrategyRandom,
		MinDistanceToNextCandidate:       1.0,
	}
}

// SetFilterStrategy parses and stores a strategy name. Unknown names are
// accepted as StrategyUnknown so the pipeline degrades to a no-op for that
// stage; the returned error lets callers warn early.
func (c *Config) SetFilterStrategy(name string) error {
	s, err := ParseFilterStrategy(name)
	c.FilterStrategy = s
	c.strategyName = name
	return err
}

// StrategyName returns the configured strategy as it was written
func (c Config) StrategyName() string {
	if c.strategyName != "" {
		return c.strategyName
	}
	return c.FilterStrategy.String()
}

// Validate rejects values that make the filters meaningless
func (c Config) Validate() error {
	if math.IsNaN(c.ConstraintMinSwitchVariableValue) {
		return fmt.Errorf("constraint_min_switch_variable_value must be a number")
	}
	if math.IsNaN(c.MinDistanceToNextCandidate) {
		return fmt.Errorf("min_distance_to_next_candidate must be a number")
	}
	return nil
}

// rng returns the configured generator, or a fresh one seeded from
// RandomSeed or the clock
func (c Config) rng() *rand.Rand {
	if c.RNG != nil {
		return c.RNG
	}
	seed := c.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Option names accepted by ConfigFromOptions and the config files
const (
	OptRecomputeAllConstraints          = "recompute_all_constraints"
	OptRecomputeInvalidConstraints      = "recompute_invalid_constraints"
	OptConstraintMinSwitchVariableValue = "constraint_min_switch_variable_value"
	OptMaxNumberOfCandidates            = "max_number_of_candidates"
	OptFilterStrategy                   = "filter_strategy"
	OptMinDistanceToNextCandidate       = "min_distance_to_next_candidate"
	OptRandomSeed                       = "random_seed"
	OptVerbose                          = "verbose"
)

// ConfigFromOptions builds a config from named options on top of the
// defaults. Unknown option names and unparsable values are errors; an
// unknown strategy name is not (see SetFilterStrategy).
func ConfigFromOptions(opts map[string]string) (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.ApplyOptions(opts); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyOptions overrides fields from named options. Keys are applied in
// sorted order so error messages are stable.
func (c *Config) ApplyOptions(opts map[string]string) error {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := c.ApplyOption(k, opts[k]); err != nil {
			return err
		}
	}
	return nil
}

// ApplyOption overrides a single named option
func (c *Config) ApplyOption(key, value string) error {
	value = strings.TrimSpace(value)
	var err error
	switch key {
	case OptRecomputeAllConstraints:
		c.RecomputeAllConstraints, err = strconv.ParseBool(value)
	case OptRecomputeInvalidConstraints:
		c.RecomputeInvalidConstraints, err = strconv.ParseBool(value)
	case OptConstraintMinSwitchVariableValue:
		c.ConstraintMinSwitchVariableValue, err = strconv.ParseFloat(value, 64)
	case OptMaxNumberOfCandidates:
		c.MaxNumberOfCandidates, err = strconv.Atoi(value)
	case OptFilterStrategy:
		// unknown strategies are tolerated here and reported by the strategy stage
		_ = c.SetFilterStrategy(value)
	case OptMinDistanceToNextCandidate:
		c.MinDistanceToNextCandidate, err = strconv.ParseFloat(value, 64)
	case OptRandomSeed:
		c.RandomSeed, err = strconv.ParseInt(value, 10, 64)
	case OptVerbose:
		c.Verbose, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown option %q", key)
	}
	if err != nil {
		return fmt.Errorf("option %s: %w", key, err)
	}
	return nil
}
