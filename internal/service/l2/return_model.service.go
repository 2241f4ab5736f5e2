package l2_service

import (
	"regimealloc/internal/config"
	"regimealloc/internal/domain"
)

// SecurityReturn is one security's modeled return under a scenario: its fixed
// base return plus the per-theme impact for each of the scenario's states.
func SecurityReturn(symbol string, scenario domain.Scenario, cfg *config.Config) float64 {
	r := cfg.BaseReturns[symbol]
	impacts, ok := cfg.ReturnImpacts[symbol]
	if !ok {
		return r
	}
	for i, tag := range domain.ThemeOrder {
		r += impacts.At(tag, scenario.States[i])
	}
	return r
}

// ExpectedReturn is the allocation's weighted return under a scenario. This
// is an additive linear model used only to rank candidates against each
// other per scenario - it is not a risk model and makes no covariance claims.
func ExpectedReturn(weights domain.Allocation, scenario domain.Scenario, cfg *config.Config) float64 {
	total := 0.0
	for _, symbol := range weights.Symbols() {
		total += weights[symbol] * SecurityReturn(symbol, scenario, cfg)
	}
	return total
}
