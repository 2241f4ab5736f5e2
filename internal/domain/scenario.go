package domain

import (
	"fmt"
	"math"
)

// NumScenarios is the size of the joint regime space: 4 themes x 3 states.
const NumScenarios = 81

// Scenario is one joint combination of the four themes' states.
type Scenario struct {
	ID          int           `json:"id"`
	States      [4]ThemeState `json:"states"`
	Probability float64       `json:"probability"`
}

// ScenarioID computes the stable stride-encoded id in [1, 81] for an ordered
// state tuple. The encoding follows ThemeOrder positions.
func ScenarioID(states [4]ThemeState) int {
	return (states[0].Index())*27 + (states[1].Index())*9 + (states[2].Index())*3 + states[3].Index() + 1
}

func (s Scenario) State(tag ThemeTag) (ThemeState, error) {
	idx, err := ThemeIndex(tag)
	if err != nil {
		return 0, err
	}
	return s.States[idx], nil
}

func (s Scenario) String() string {
	return fmt.Sprintf("#%d [%s=%s %s=%s %s=%s %s=%s] p=%.4f",
		s.ID,
		ThemeOrder[0], s.States[0], ThemeOrder[1], s.States[1],
		ThemeOrder[2], s.States[2], ThemeOrder[3], s.States[3],
		s.Probability,
	)
}

// Marginal is one theme's probability distribution over its three states.
type Marginal struct {
	Weak    float64 `yaml:"weak" json:"weak"`
	Neutral float64 `yaml:"neutral" json:"neutral"`
	Strong  float64 `yaml:"strong" json:"strong"`
}

func (m Marginal) P(state ThemeState) float64 {
	switch state {
	case StateWeak:
		return m.Weak
	case StateStrong:
		return m.Strong
	}
	return m.Neutral
}

func (m Marginal) Sum() float64 {
	return m.Weak + m.Neutral + m.Strong
}

const marginalSumTolerance = 1e-6

func (m Marginal) Valid() error {
	if m.Weak < 0 || m.Neutral < 0 || m.Strong < 0 {
		return fmt.Errorf("marginal has negative probability: %+v", m)
	}
	if math.Abs(m.Sum()-1) > marginalSumTolerance {
		return fmt.Errorf("marginal probabilities sum to %f, want 1", m.Sum())
	}
	return nil
}

// Marginals maps each theme to its state distribution. All four themes must
// be present for scenario enumeration.
type Marginals map[ThemeTag]Marginal

func (m Marginals) Valid() error {
	for _, tag := range ThemeOrder {
		marginal, ok := m[tag]
		if !ok {
			return fmt.Errorf("missing marginal distribution for theme %s", tag)
		}
		if err := marginal.Valid(); err != nil {
			return fmt.Errorf("theme %s: %w", tag, err)
		}
	}
	return nil
}
