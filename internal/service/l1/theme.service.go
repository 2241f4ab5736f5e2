package l1_service

import (
	"regimealloc/internal/config"
	"regimealloc/internal/domain"
)

type AggregateThemeInput struct {
	Tag          domain.ThemeTag
	Indicators   []domain.Indicator
	Observations map[string]domain.IndicatorObservation
	RoleWeights  config.RoleWeights
}

// AggregateTheme combines a theme's indicators into one continuous score in
// [-1, +1] and its discrete state. Indicators without usable observations
// drop out of both numerator and denominator; a theme with nothing usable
// scores 0.
func AggregateTheme(in AggregateThemeInput) domain.ThemeScore {
	score := domain.ThemeScore{Tag: in.Tag}

	weightedSum := 0.0
	weightTotal := 0.0

	for _, ind := range in.Indicators {
		obs, ok := in.Observations[ind.ID]
		if !ok {
			score.LowConfidence = append(score.LowConfidence, domain.LowConfidenceIndicator{
				IndicatorID: ind.ID,
				Reason:      "missing observation",
			})
			continue
		}

		position, usable, reason := indicatorPosition(ind, obs)
		if !usable {
			score.LowConfidence = append(score.LowConfidence, domain.LowConfidenceIndicator{
				IndicatorID: ind.ID,
				Reason:      reason,
			})
			continue
		}

		if ind.Inverted {
			position = -position
		}

		weight := in.RoleWeights.For(ind.Role) * ind.Weight
		weightedSum += weight * position
		weightTotal += weight
	}

	if weightTotal > 0 {
		score.Score = weightedSum / weightTotal
	}
	score.State = domain.StateFromScore(score.Score)
	return score
}

// indicatorPosition projects one indicator onto [-1, +1]. Percentile-backed
// indicators interpolate across their bands; the remaining policies only
// support a discrete read, so their classified state is used directly.
func indicatorPosition(ind domain.Indicator, obs domain.IndicatorObservation) (position float64, usable bool, reason string) {
	value := obs.Value(ind)
	if value == nil {
		return 0, false, "missing value"
	}

	switch ind.Policy {
	case domain.PolicyPercentileBased, domain.PolicyPercentileInverted:
		bands, ok := usableBands(obs)
		if !ok {
			return 0, false, "insufficient percentile history"
		}
		position := bandPosition(*value, *bands)
		if ind.Policy == domain.PolicyPercentileInverted {
			position = -position
		}
		return position, true, ""
	default:
		result := ClassifyIndicatorState(ind, obs)
		if result.LowConfidence {
			return 0, false, result.Reason
		}
		return float64(result.State), true, ""
	}
}

// bandPosition maps a value onto [-1, +1] by piecewise-linear interpolation
// across the percentile bands, symmetric around the p33/p67 boundaries:
// min -> -1, p33 -> -0.33, p67 -> +0.33, max -> +1.
func bandPosition(value float64, bands domain.PercentileBands) float64 {
	const boundary = 0.33

	switch {
	case value <= bands.Min:
		return -1
	case value >= bands.Max:
		return 1
	case value <= bands.P33:
		return lerp(value, bands.Min, bands.P33, -1, -boundary)
	case value < bands.P67:
		return lerp(value, bands.P33, bands.P67, -boundary, boundary)
	default:
		return lerp(value, bands.P67, bands.Max, boundary, 1)
	}
}

func lerp(value, lo, hi, outLo, outHi float64) float64 {
	if hi <= lo {
		return outHi
	}
	return outLo + (value-lo)/(hi-lo)*(outHi-outLo)
}
