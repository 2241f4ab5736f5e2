package l2_service

import (
	"fmt"

	"regimealloc/internal/domain"
)

// EnumerateScenarios walks the full 4-theme x 3-state joint space and assigns
// each of the 81 scenarios the product of its themes' marginal probabilities.
// Themes are treated as independent - a stated modeling simplification, not a
// verified property of the inputs.
//
// Scenarios come back ordered by id, which is the stride encoding over
// domain.ThemeOrder, so the output is deterministic for identical inputs.
func EnumerateScenarios(marginals domain.Marginals) ([]domain.Scenario, error) {
	if err := marginals.Valid(); err != nil {
		return nil, fmt.Errorf("cannot enumerate scenarios: %w", err)
	}

	states := []domain.ThemeState{domain.StateWeak, domain.StateNeutral, domain.StateStrong}
	scenarios := make([]domain.Scenario, 0, domain.NumScenarios)

	for _, s0 := range states {
		for _, s1 := range states {
			for _, s2 := range states {
				for _, s3 := range states {
					tuple := [4]domain.ThemeState{s0, s1, s2, s3}
					p := 1.0
					for i, tag := range domain.ThemeOrder {
						p *= marginals[tag].P(tuple[i])
					}
					scenarios = append(scenarios, domain.Scenario{
						ID:          domain.ScenarioID(tuple),
						States:      tuple,
						Probability: p,
					})
				}
			}
		}
	}

	return scenarios, nil
}
