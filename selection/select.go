package selection

import (
	"log"
	"time"
)

// Report describes the outcome of one selection run
type Report struct {
	Timestamp int64          `json:"timestamp"`
	Quality   QualityStats   `json:"quality"`
	Strategy  StrategyStats  `json:"strategy"`
	Selected  CandidatePairs `json:"selected"`
}

// Select filters candidates in place: first by prior constraint quality,
// then by the configured strategy. It may remove loop-closure edges from m
// when constraints are recomputed. Failures inside the stages are
// unrecoverable and panic, so Select always returns true.
func Select(cfg Config, m Map, candidates *CandidatePairs) bool {
	SelectWithReport(cfg, m, candidates)
	return true
}

// SelectWithReport is Select, returning statistics for both stages
func SelectWithReport(cfg Config, m Map, candidates *CandidatePairs) Report {
	if candidates == nil {
		panic("selection: nil candidate list")
	}
	if m == nil {
		panic("selection: nil map")
	}

	report := Report{Timestamp: time.Now().Unix()}

	// Quality first so the strategy only sees candidates worth verifying.
	report.Quality = FilterByQuality(cfg, m, candidates)
	report.Strategy = FilterByStrategy(cfg, m, candidates)
	report.Selected = candidates.Clone()

	log.Printf("[SELECT] Selected %d of %d candidates", report.Selected.Len(), report.Quality.Before)
	return report
}
