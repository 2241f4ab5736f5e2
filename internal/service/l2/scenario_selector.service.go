package l2_service

import (
	"sort"

	"regimealloc/internal/config"
	"regimealloc/internal/domain"
)

// SelectionResult is the working scenario subset plus the selection
// diagnostics carried into the trace.
type SelectionResult struct {
	Selected              []domain.Scenario
	CumulativeProbability float64
	// the top-N fallback fired because accumulation produced too few scenarios
	Fallback bool
}

// SelectScenarios picks a tractable, representative subset of the 81
// scenarios: accumulate in descending-probability order until the cumulative
// target and minimum count are both met (or the maximum count is hit), then
// force-include any individually high-probability scenario the cutoff missed.
// If that still yields fewer than the minimum, fall back to the top-N.
func SelectScenarios(scenarios []domain.Scenario, cfg config.SelectionConfig) SelectionResult {
	// impossible regimes are not worth optimizing against; dropping them here
	// also keeps the minimum-count rule from padding the subset with them
	sorted := make([]domain.Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		if s.Probability > 0 {
			sorted = append(sorted, s)
		}
	}
	// ties broken by ascending id so selection is deterministic
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Probability != sorted[j].Probability {
			return sorted[i].Probability > sorted[j].Probability
		}
		return sorted[i].ID < sorted[j].ID
	})

	minCount := cfg.MinScenarios
	if minCount > len(sorted) {
		minCount = len(sorted)
	}

	selected := []domain.Scenario{}
	cumulative := 0.0
	for _, s := range sorted {
		if len(selected) >= cfg.MaxScenarios {
			break
		}
		if cumulative >= cfg.TargetCumulativeProbability && len(selected) >= minCount {
			break
		}
		selected = append(selected, s)
		cumulative += s.Probability
	}

	// a scenario this likely must be optimized against even if the
	// accumulation cutoff excluded it
	included := map[int]bool{}
	for _, s := range selected {
		included[s.ID] = true
	}
	for _, s := range sorted {
		if s.Probability > cfg.HighProbability && !included[s.ID] {
			selected = append(selected, s)
			included[s.ID] = true
			cumulative += s.Probability
		}
	}

	// the maximum count wins over force-inclusion. selected is still in
	// descending-probability order, so trimming drops the least likely
	if len(selected) > cfg.MaxScenarios {
		selected = selected[:cfg.MaxScenarios]
		cumulative = 0.0
		for _, s := range selected {
			cumulative += s.Probability
		}
	}

	fallback := false
	if len(selected) < minCount {
		fallback = true
		selected = append([]domain.Scenario{}, sorted[:minCount]...)
		cumulative = 0.0
		for _, s := range selected {
			cumulative += s.Probability
		}
	}

	return SelectionResult{
		Selected:              selected,
		CumulativeProbability: cumulative,
		Fallback:              fallback,
	}
}
