package l3_service

import (
	"regimealloc/internal/config"
	"regimealloc/internal/domain"
)

// BuildScenarioCandidate derives the scenario-tilted candidate allocation:
// baseline weights plus the factor-adjustment table entry for every
// (security, theme, state) of the scenario, passed through the constraint
// validator. The result doubles as the scenario's reference optimum when the
// regret matrix evaluates it against its own generating scenario.
func BuildScenarioCandidate(scenario domain.Scenario, cfg *config.Config) domain.CandidateAllocation {
	weights := make(domain.Allocation, len(cfg.Baseline))
	for symbol, base := range cfg.Baseline {
		w := base
		if table, ok := cfg.FactorAdjustments[symbol]; ok {
			for i, tag := range domain.ThemeOrder {
				w += table.At(tag, scenario.States[i])
			}
		}
		weights[symbol] = w
	}

	validated := ValidateConstraints(ValidateConstraintsInput{
		Weights:       weights,
		Universe:      cfg.Securities(),
		Baseline:      domain.Allocation(cfg.Baseline),
		CashSymbol:    cfg.CashSymbol,
		MinCashWeight: cfg.MinCashWeight,
	})

	return domain.CandidateAllocation{
		ScenarioID:       scenario.ID,
		Weights:          validated.Weights,
		BaselineFallback: validated.BaselineFallback,
	}
}

// BuildCandidates generates one candidate per selected scenario, in selection
// order.
func BuildCandidates(selected []domain.Scenario, cfg *config.Config) []domain.CandidateAllocation {
	out := make([]domain.CandidateAllocation, 0, len(selected))
	for _, scenario := range selected {
		out = append(out, BuildScenarioCandidate(scenario, cfg))
	}
	return out
}
