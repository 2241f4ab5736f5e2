package domain

import "fmt"

// ThemeTag identifies one of the four macro themes the optimizer reasons about.
type ThemeTag string

const (
	ThemeUSD          ThemeTag = "USD"
	ThemeInnovation   ThemeTag = "INNOVATION"
	ThemeValuation    ThemeTag = "VALUATION"
	ThemeUSLeadership ThemeTag = "US_LEADERSHIP"
)

// ThemeOrder is the canonical theme ordering used for scenario ids and all
// table indexing. Do not reorder - scenario ids are derived from positions here.
var ThemeOrder = [4]ThemeTag{ThemeUSD, ThemeInnovation, ThemeValuation, ThemeUSLeadership}

func ThemeIndex(tag ThemeTag) (int, error) {
	for i, t := range ThemeOrder {
		if t == tag {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown theme tag '%s'", tag)
}

// ThemeState is a discrete regime state: -1 weak, 0 neutral, +1 strong.
type ThemeState int

const (
	StateWeak    ThemeState = -1
	StateNeutral ThemeState = 0
	StateStrong  ThemeState = 1
)

func (s ThemeState) String() string {
	switch s {
	case StateWeak:
		return "weak"
	case StateNeutral:
		return "neutral"
	case StateStrong:
		return "strong"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Index shifts the state into table index space [0, 2].
func (s ThemeState) Index() int {
	return int(s) + 1
}

func ParseThemeState(s string) (ThemeState, error) {
	switch s {
	case "weak":
		return StateWeak, nil
	case "neutral":
		return StateNeutral, nil
	case "strong":
		return StateStrong, nil
	}
	return 0, fmt.Errorf("could not convert '%s' to known theme state", s)
}

// scoreStateThreshold is the fixed boundary that maps a continuous theme
// score in [-1, +1] to a discrete state.
const scoreStateThreshold = 0.33

// StateFromScore thresholds a continuous theme score at +/-0.33.
func StateFromScore(score float64) ThemeState {
	if score <= -scoreStateThreshold {
		return StateWeak
	}
	if score >= scoreStateThreshold {
		return StateStrong
	}
	return StateNeutral
}

// TemporalRole classifies an indicator by how early it moves relative to the
// theme it describes.
type TemporalRole string

const (
	RoleLeading    TemporalRole = "LEADING"
	RoleConcurrent TemporalRole = "CONCURRENT"
	RoleLagging    TemporalRole = "LAGGING"
)

// ThemeScore is the aggregated read on one theme for a single run.
type ThemeScore struct {
	Tag   ThemeTag
	Score float64
	State ThemeState
	// indicators that fell back to neutral, with the reason
	LowConfidence []LowConfidenceIndicator
}

type LowConfidenceIndicator struct {
	IndicatorID string `json:"indicatorId"`
	Reason      string `json:"reason"`
}
