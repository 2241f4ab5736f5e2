package l3_service

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"regimealloc/internal/config"
	"regimealloc/internal/domain"
	l2_service "regimealloc/internal/service/l2"
)

// CalculateMetrics summarizes the final allocation across the selected
// scenarios: the probability-weighted expected return, the spread of returns
// over scenarios, and how concentrated the book is.
func CalculateMetrics(weights domain.Allocation, selected []domain.Scenario, cfg *config.Config) (*domain.AllocationMetrics, error) {
	if len(selected) == 0 {
		return nil, fmt.Errorf("cannot calculate metrics with no scenarios")
	}

	returns := make([]float64, 0, len(selected))
	expected := 0.0
	worst := domain.ScenarioReturn{ScenarioID: selected[0].ID}
	best := domain.ScenarioReturn{ScenarioID: selected[0].ID}

	for i, scenario := range selected {
		ret := l2_service.ExpectedReturn(weights, scenario, cfg)
		returns = append(returns, ret)
		expected += scenario.Probability * ret

		if i == 0 || ret < worst.Return {
			worst = domain.ScenarioReturn{ScenarioID: scenario.ID, Return: ret}
		}
		if i == 0 || ret > best.Return {
			best = domain.ScenarioReturn{ScenarioID: scenario.ID, Return: ret}
		}
	}

	stdev := 0.0
	if len(returns) > 1 {
		s, err := stats.StandardDeviationSample(returns)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate return stdev: %w", err)
		}
		stdev = s
	}

	categories := map[string]domain.AssetCategory{}
	for _, sec := range cfg.Securities() {
		categories[sec.Symbol] = sec.Category
	}

	exposure := map[domain.AssetCategory]float64{}
	herfindahl := 0.0
	for symbol, w := range weights {
		category, ok := categories[symbol]
		if !ok {
			// hedge instruments blended in outside the universe
			category = domain.CategoryHedge
		}
		exposure[category] += w
		herfindahl += w * w
	}

	effective := 0.0
	if herfindahl > 0 {
		effective = 1 / herfindahl
	}

	return &domain.AllocationMetrics{
		ExpectedReturn:    expected,
		ReturnStdev:       stdev,
		Worst:             worst,
		Best:              best,
		CategoryExposure:  exposure,
		Concentration:     herfindahl,
		EffectiveHoldings: effective,
	}, nil
}
