package domain

import (
	"github.com/google/uuid"
)

// RegretEntry is one cell of the regret matrix: how much return the candidate
// foregoes, relative to the scenario's reference optimum, if that scenario
// plays out. Always >= 0.
type RegretEntry struct {
	CandidateScenarioID int     `json:"candidateScenarioId"`
	ScenarioID          int     `json:"scenarioId"`
	Regret              float64 `json:"regret"`
}

// RegretSummary condenses one candidate's row of the regret matrix.
type RegretSummary struct {
	CandidateScenarioID int     `json:"candidateScenarioId"`
	MaxRegret           float64 `json:"maxRegret"`
	WeightedRegret      float64 `json:"weightedRegret"`
}

// DivergenceSource labels the dominant driver of disagreement between the
// selected scenarios' candidate allocations.
type DivergenceSource string

const (
	DivergenceVolatility DivergenceSource = "VOLATILITY"
	DivergenceGeography  DivergenceSource = "GEOGRAPHY"
	DivergenceAssetClass DivergenceSource = "ASSET_CLASS"
	DivergenceNone       DivergenceSource = "NONE"
)

// HedgeDecision records whether a hedge was blended in and why.
type HedgeDecision struct {
	Applied         bool             `json:"applied"`
	Reason          string           `json:"reason"`
	Correlation     float64          `json:"correlation"`
	RegretTolerance float64          `json:"regretTolerance"`
	Divergence      DivergenceSource `json:"divergence,omitempty"`
	Instrument      string           `json:"instrument,omitempty"`
	HedgeWeight     float64          `json:"hedgeWeight,omitempty"`
}

// ConstraintAdjustment is one clamp/floor/zero action taken by the final
// validation pass.
type ConstraintAdjustment struct {
	Symbol string  `json:"symbol"`
	Rule   string  `json:"rule"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// ScenarioReturn names one scenario's expected return under an allocation.
type ScenarioReturn struct {
	ScenarioID int     `json:"scenarioId"`
	Return     float64 `json:"return"`
}

// AllocationMetrics summarizes the final allocation's return profile across
// the selected scenarios and its structural shape.
type AllocationMetrics struct {
	ExpectedReturn    float64                   `json:"expectedReturn"`
	ReturnStdev       float64                   `json:"returnStdev"`
	Worst             ScenarioReturn            `json:"worst"`
	Best              ScenarioReturn            `json:"best"`
	CategoryExposure  map[AssetCategory]float64 `json:"categoryExposure"`
	Concentration     float64                   `json:"concentration"`
	EffectiveHoldings float64                   `json:"effectiveHoldings"`
}

// DiagnosticTrace is the audit trail attached to every optimizer result. The
// call always succeeds; reduced confidence and fallbacks surface here rather
// than as errors.
type DiagnosticTrace struct {
	RunID uuid.UUID `json:"runId"`

	SelectedScenarios     []Scenario `json:"selectedScenarios"`
	CumulativeProbability float64    `json:"cumulativeProbability"`
	SelectionFallback     bool       `json:"selectionFallback"`

	Alpha          float64         `json:"alpha"`
	MaxRegret      float64         `json:"maxRegret"`
	WeightedRegret float64         `json:"weightedRegret"`
	RegretMatrix   []RegretEntry   `json:"regretMatrix,omitempty"`
	Summaries      []RegretSummary `json:"summaries,omitempty"`

	Hedge HedgeDecision `json:"hedge"`

	Metrics *AllocationMetrics `json:"metrics,omitempty"`

	ConstraintAdjustments []ConstraintAdjustment   `json:"constraintAdjustments,omitempty"`
	LowConfidence         []LowConfidenceIndicator `json:"lowConfidence,omitempty"`
	BaselineFallbacks     []int                    `json:"baselineFallbackScenarioIds,omitempty"`

	Profile *Profile `json:"profile,omitempty"`
}
