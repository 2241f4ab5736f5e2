package domain

import "fmt"

// StatePolicy selects which classification rule maps an indicator's value to
// a discrete state. Policies are assigned statically per indicator, never
// inferred at runtime.
type StatePolicy string

const (
	PolicyPercentileBased    StatePolicy = "PERCENTILE_BASED"
	PolicyPercentileInverted StatePolicy = "PERCENTILE_INVERTED"
	PolicyZeroCrossing       StatePolicy = "ZERO_CROSSING"
	PolicyThresholdBased     StatePolicy = "THRESHOLD_BASED"
	PolicyTrendAcceleration  StatePolicy = "TREND_ACCELERATION"
)

func NewStatePolicy(s string) (StatePolicy, error) {
	m := map[string]StatePolicy{
		"percentile_based":    PolicyPercentileBased,
		"percentile_inverted": PolicyPercentileInverted,
		"zero_crossing":       PolicyZeroCrossing,
		"threshold_based":     PolicyThresholdBased,
		"trend_acceleration":  PolicyTrendAcceleration,
	}
	if p, ok := m[s]; ok {
		return p, nil
	}
	return "", fmt.Errorf("could not convert '%s' to known state policy", s)
}

// PercentileBands is an indicator's historical percentile distribution.
type PercentileBands struct {
	Min float64 `yaml:"min" json:"min" csv:"min"`
	P10 float64 `yaml:"p10" json:"p10" csv:"p10"`
	P25 float64 `yaml:"p25" json:"p25" csv:"p25"`
	P33 float64 `yaml:"p33" json:"p33" csv:"p33"`
	P50 float64 `yaml:"p50" json:"p50" csv:"p50"`
	P67 float64 `yaml:"p67" json:"p67" csv:"p67"`
	P75 float64 `yaml:"p75" json:"p75" csv:"p75"`
	P90 float64 `yaml:"p90" json:"p90" csv:"p90"`
	Max float64 `yaml:"max" json:"max" csv:"max"`
}

func (b PercentileBands) ordered() [9]float64 {
	return [9]float64{b.Min, b.P10, b.P25, b.P33, b.P50, b.P67, b.P75, b.P90, b.Max}
}

// Valid reports whether the band boundaries are non-decreasing.
func (b PercentileBands) Valid() error {
	o := b.ordered()
	for i := 1; i < len(o); i++ {
		if o[i] < o[i-1] {
			return fmt.Errorf("percentile bands not non-decreasing at position %d (%f < %f)", i, o[i], o[i-1])
		}
	}
	return nil
}

// Degenerate reports whether the distribution carries no usable spread.
// A degenerate band set cannot support percentile classification.
func (b PercentileBands) Degenerate() bool {
	return b.Max <= b.Min
}

// Indicator is the static definition of one observed series feeding a theme.
type Indicator struct {
	ID    string
	Theme ThemeTag
	Role  TemporalRole
	// weight of this indicator within its theme, before role weighting
	Weight float64
	// prefer the transformed value over the raw one when both are present
	PreferTransformed bool
	// a high reading is bearish for the theme (e.g. a fear index)
	Inverted bool
	Policy   StatePolicy
	// epsilon for ZERO_CROSSING, absolute deviation for THRESHOLD_BASED
	Threshold float64
	// moving-average window for TREND_ACCELERATION
	TrendWindow int
}

// IndicatorObservation is the per-run reading for one indicator, supplied by
// the ingestion layer under the indicator's canonical id.
type IndicatorObservation struct {
	IndicatorID string
	Raw         *float64
	Transformed *float64
	Bands       *PercentileBands
	// trailing history, oldest first, for moving-average policies
	History []float64
}

// Value picks raw vs transformed per the indicator's preference. Returns nil
// when the preferred reading is unavailable and no fallback exists.
func (o IndicatorObservation) Value(ind Indicator) *float64 {
	if ind.PreferTransformed && o.Transformed != nil {
		return o.Transformed
	}
	return o.Raw
}
