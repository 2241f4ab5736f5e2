package l3_service

import (
	"regimealloc/internal/config"
	"regimealloc/internal/domain"
	l2_service "regimealloc/internal/service/l2"
)

// RegretMatrix holds every candidate's regret under every selected scenario,
// plus the per-candidate summaries the dual optimizer scores on.
type RegretMatrix struct {
	Entries   []domain.RegretEntry
	Summaries []domain.RegretSummary
}

// BuildRegretMatrix evaluates each candidate under each selected scenario.
// A scenario's reference optimum is the return of the candidate generated for
// that scenario, so a candidate always has zero regret against its own
// scenario. Regret is the non-negative foregone return: reference minus
// candidate, floored at 0.
//
// Weighted regret uses each scenario's original probability, not a
// probability renormalized to the selected subset.
func BuildRegretMatrix(candidates []domain.CandidateAllocation, selected []domain.Scenario, cfg *config.Config) RegretMatrix {
	reference := map[int]float64{}
	byScenario := map[int]domain.CandidateAllocation{}
	for _, c := range candidates {
		byScenario[c.ScenarioID] = c
	}
	for _, scenario := range selected {
		if c, ok := byScenario[scenario.ID]; ok {
			reference[scenario.ID] = l2_service.ExpectedReturn(c.Weights, scenario, cfg)
		}
	}

	matrix := RegretMatrix{
		Entries:   make([]domain.RegretEntry, 0, len(candidates)*len(selected)),
		Summaries: make([]domain.RegretSummary, 0, len(candidates)),
	}

	for _, candidate := range candidates {
		summary := domain.RegretSummary{CandidateScenarioID: candidate.ScenarioID}

		for _, scenario := range selected {
			ret := l2_service.ExpectedReturn(candidate.Weights, scenario, cfg)
			regret := reference[scenario.ID] - ret
			if regret < 0 {
				regret = 0
			}

			matrix.Entries = append(matrix.Entries, domain.RegretEntry{
				CandidateScenarioID: candidate.ScenarioID,
				ScenarioID:          scenario.ID,
				Regret:              regret,
			})

			if regret > summary.MaxRegret {
				summary.MaxRegret = regret
			}
			summary.WeightedRegret += scenario.Probability * regret
		}

		matrix.Summaries = append(matrix.Summaries, summary)
	}

	return matrix
}
