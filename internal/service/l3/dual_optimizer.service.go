package l3_service

import (
	"fmt"

	"regimealloc/internal/domain"
)

// DualOptimizerResult is the chosen (alpha, candidate) pair and its regret
// summary, all of which land in the diagnostic trace.
type DualOptimizerResult struct {
	Candidate      domain.CandidateAllocation
	Alpha          float64
	MaxRegret      float64
	WeightedRegret float64
}

// SelectRobustAllocation scores every candidate at every alpha on the grid
// with alpha*maxRegret + (1-alpha)*weightedRegret and returns the pair with
// the minimum score. Ties keep the earliest grid alpha and earliest
// candidate, so identical inputs always produce the identical choice.
func SelectRobustAllocation(candidates []domain.CandidateAllocation, summaries []domain.RegretSummary, alphaGrid []float64) (*DualOptimizerResult, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidate allocations to optimize over")
	}
	if len(summaries) != len(candidates) {
		return nil, fmt.Errorf("got %d regret summaries for %d candidates", len(summaries), len(candidates))
	}
	if len(alphaGrid) == 0 {
		return nil, fmt.Errorf("alpha grid is empty")
	}

	best := (*DualOptimizerResult)(nil)
	bestScore := 0.0

	for _, alpha := range alphaGrid {
		for i, summary := range summaries {
			score := alpha*summary.MaxRegret + (1-alpha)*summary.WeightedRegret
			if best == nil || score < bestScore {
				bestScore = score
				best = &DualOptimizerResult{
					Candidate:      candidates[i],
					Alpha:          alpha,
					MaxRegret:      summary.MaxRegret,
					WeightedRegret: summary.WeightedRegret,
				}
			}
		}
	}

	return best, nil
}
