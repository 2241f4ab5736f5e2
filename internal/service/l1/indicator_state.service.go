package l1_service

import (
	"github.com/montanaflynn/stats"

	"regimealloc/internal/domain"
)

// ClassificationResult is one indicator's discrete read. A missing or
// unusable observation never fails - it degrades to neutral with the reason
// recorded for the diagnostic trace.
type ClassificationResult struct {
	IndicatorID   string
	State         domain.ThemeState
	LowConfidence bool
	Reason        string
}

type policyFunc func(ind domain.Indicator, value float64, obs domain.IndicatorObservation) (domain.ThemeState, bool, string)

// policyTable statically binds each state policy to its rule. Policies are
// chosen per indicator in configuration, never dispatched on runtime strings
// from the data itself.
var policyTable = map[domain.StatePolicy]policyFunc{
	domain.PolicyPercentileBased:    classifyPercentile,
	domain.PolicyPercentileInverted: classifyPercentileInverted,
	domain.PolicyZeroCrossing:       classifyZeroCrossing,
	domain.PolicyThresholdBased:     classifyThreshold,
	domain.PolicyTrendAcceleration:  classifyTrendAcceleration,
}

// ClassifyIndicatorState maps one indicator's current observation to a
// discrete regime state using the indicator's configured policy.
func ClassifyIndicatorState(ind domain.Indicator, obs domain.IndicatorObservation) ClassificationResult {
	value := obs.Value(ind)
	if value == nil {
		return ClassificationResult{
			IndicatorID:   ind.ID,
			State:         domain.StateNeutral,
			LowConfidence: true,
			Reason:        "missing value",
		}
	}

	classify, ok := policyTable[ind.Policy]
	if !ok {
		// unreachable with a validated config; treat like missing data
		return ClassificationResult{
			IndicatorID:   ind.ID,
			State:         domain.StateNeutral,
			LowConfidence: true,
			Reason:        "unknown state policy",
		}
	}

	state, lowConfidence, reason := classify(ind, *value, obs)
	return ClassificationResult{
		IndicatorID:   ind.ID,
		State:         state,
		LowConfidence: lowConfidence,
		Reason:        reason,
	}
}

func usableBands(obs domain.IndicatorObservation) (*domain.PercentileBands, bool) {
	if obs.Bands == nil {
		return nil, false
	}
	if err := obs.Bands.Valid(); err != nil {
		return nil, false
	}
	if obs.Bands.Degenerate() {
		return nil, false
	}
	return obs.Bands, true
}

func classifyPercentile(ind domain.Indicator, value float64, obs domain.IndicatorObservation) (domain.ThemeState, bool, string) {
	bands, ok := usableBands(obs)
	if !ok {
		return domain.StateNeutral, true, "insufficient percentile history"
	}
	if value <= bands.P33 {
		return domain.StateWeak, false, ""
	}
	if value >= bands.P67 {
		return domain.StateStrong, false, ""
	}
	return domain.StateNeutral, false, ""
}

func classifyPercentileInverted(ind domain.Indicator, value float64, obs domain.IndicatorObservation) (domain.ThemeState, bool, string) {
	state, lowConfidence, reason := classifyPercentile(ind, value, obs)
	return -state, lowConfidence, reason
}

func classifyZeroCrossing(ind domain.Indicator, value float64, _ domain.IndicatorObservation) (domain.ThemeState, bool, string) {
	if value < -ind.Threshold {
		return domain.StateWeak, false, ""
	}
	if value > ind.Threshold {
		return domain.StateStrong, false, ""
	}
	return domain.StateNeutral, false, ""
}

// classifyThreshold reads the value as a deviation measure and compares it
// against an absolute band rather than percentile boundaries.
func classifyThreshold(ind domain.Indicator, value float64, _ domain.IndicatorObservation) (domain.ThemeState, bool, string) {
	if value <= -ind.Threshold {
		return domain.StateWeak, false, ""
	}
	if value >= ind.Threshold {
		return domain.StateStrong, false, ""
	}
	return domain.StateNeutral, false, ""
}

// classifyTrendAcceleration compares the value against its trailing moving
// average. Used for series with secular drift, where percentile ranking
// is unstable.
func classifyTrendAcceleration(ind domain.Indicator, value float64, obs domain.IndicatorObservation) (domain.ThemeState, bool, string) {
	window := ind.TrendWindow
	if window <= 0 {
		window = 12
	}
	if len(obs.History) < window {
		return domain.StateNeutral, true, "insufficient trend history"
	}

	tail := obs.History[len(obs.History)-window:]
	ma, err := stats.Mean(tail)
	if err != nil {
		return domain.StateNeutral, true, "insufficient trend history"
	}

	if value < ma-ind.Threshold {
		return domain.StateWeak, false, ""
	}
	if value > ma+ind.Threshold {
		return domain.StateStrong, false, ""
	}
	return domain.StateNeutral, false, ""
}
