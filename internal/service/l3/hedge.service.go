package l3_service

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"regimealloc/internal/config"
	"regimealloc/internal/domain"
)

type AdviseHedgeInput struct {
	Chosen     *DualOptimizerResult
	Candidates []domain.CandidateAllocation
	Selected   []domain.Scenario
	Cfg        *config.Config
}

// AdviseHedge blends a hedge instrument into the chosen allocation when its
// residual worst-case regret exceeds a correlation-dependent tolerance.
// Tightly correlated candidates mean the scenarios mostly agree, so residual
// regret is held to a tighter band. When tolerance is respected this is a
// no-op and the decision records why.
func AdviseHedge(in AdviseHedgeInput) (domain.Allocation, domain.HedgeDecision) {
	correlation := averagePairwiseCorrelation(in.Candidates, in.Cfg)
	tolerance := in.Cfg.Tolerance.ForCorrelation(correlation)

	decision := domain.HedgeDecision{
		Correlation:     correlation,
		RegretTolerance: tolerance,
	}

	weights := in.Chosen.Candidate.Weights
	if in.Chosen.MaxRegret <= tolerance {
		decision.Reason = fmt.Sprintf("max regret %.4f within tolerance %.4f", in.Chosen.MaxRegret, tolerance)
		return weights, decision
	}

	divergence := classifyDivergence(in.Selected)
	decision.Divergence = divergence
	if divergence == domain.DivergenceNone {
		decision.Reason = fmt.Sprintf("max regret %.4f exceeds tolerance %.4f but no dominant divergence source", in.Chosen.MaxRegret, tolerance)
		return weights, decision
	}

	instrument, ok := in.Cfg.Hedges.Instruments[divergence]
	if !ok || instrument == "" {
		decision.Reason = fmt.Sprintf("no hedge instrument configured for %s divergence", divergence)
		return weights, decision
	}

	hedged := blendHedge(weights, instrument, in.Cfg.Hedges.Weight)
	decision.Applied = true
	decision.Instrument = instrument
	decision.HedgeWeight = in.Cfg.Hedges.Weight
	decision.Reason = fmt.Sprintf("max regret %.4f exceeds tolerance %.4f; hedging %s divergence with %s", in.Chosen.MaxRegret, tolerance, divergence, instrument)
	return hedged, decision
}

// averagePairwiseCorrelation treats each candidate as a weight vector over
// the universe and averages Pearson correlation across all pairs. With fewer
// than two candidates (or only constant vectors) the scenarios trivially
// agree, which reads as correlation 1.
func averagePairwiseCorrelation(candidates []domain.CandidateAllocation, cfg *config.Config) float64 {
	if len(candidates) < 2 {
		return 1.0
	}

	universe := cfg.SymbolOrder()
	vectors := make([][]float64, len(candidates))
	for i, c := range candidates {
		vectors[i] = c.Weights.Vector(universe)
	}

	sum := 0.0
	pairs := 0
	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			corr, err := stats.Pearson(vectors[i], vectors[j])
			if err != nil {
				continue
			}
			sum += corr
			pairs++
		}
	}
	if pairs == 0 {
		return 1.0
	}
	return sum / float64(pairs)
}

// classifyDivergence names the theme whose extreme states most strongly pull
// the selected scenarios in opposite directions, then maps it to a hedge
// class: innovation swings read as volatility, USD and US-leadership swings
// as geography, valuation swings as an asset-class conflict.
func classifyDivergence(selected []domain.Scenario) domain.DivergenceSource {
	bestScore := 0.0
	best := domain.DivergenceNone

	for i, tag := range domain.ThemeOrder {
		weakMass := 0.0
		strongMass := 0.0
		for _, s := range selected {
			switch s.States[i] {
			case domain.StateWeak:
				weakMass += s.Probability
			case domain.StateStrong:
				strongMass += s.Probability
			}
		}

		// conflict requires probability mass on both extremes
		score := weakMass
		if strongMass < score {
			score = strongMass
		}
		if score > bestScore {
			bestScore = score
			best = divergenceForTheme(tag)
		}
	}

	return best
}

func divergenceForTheme(tag domain.ThemeTag) domain.DivergenceSource {
	switch tag {
	case domain.ThemeInnovation:
		return domain.DivergenceVolatility
	case domain.ThemeUSD, domain.ThemeUSLeadership:
		return domain.DivergenceGeography
	case domain.ThemeValuation:
		return domain.DivergenceAssetClass
	}
	return domain.DivergenceNone
}

// blendHedge adds the hedge at a fixed weight and scales every other position
// down proportionally so the allocation still sums to 1.
func blendHedge(weights domain.Allocation, instrument string, hedgeWeight float64) domain.Allocation {
	out := make(domain.Allocation, len(weights)+1)
	for symbol, w := range weights {
		out[symbol] = w * (1 - hedgeWeight)
	}
	out[instrument] += hedgeWeight
	return out
}
