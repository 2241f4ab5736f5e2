package l3_service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"regimealloc/internal/domain"
)

func Test_SelectRobustAllocation(t *testing.T) {
	candidateA := domain.CandidateAllocation{ScenarioID: 14, Weights: domain.Allocation{"SPY": 1}}
	candidateB := domain.CandidateAllocation{ScenarioID: 41, Weights: domain.Allocation{"AGG": 1}}

	t.Run("picks the minimum blended score across the grid", func(t *testing.T) {
		// A is all tail risk, B is all average risk. At the high end of the
		// grid the weighted term is discounted, so B at alpha 0.7 wins.
		summaries := []domain.RegretSummary{
			{CandidateScenarioID: 14, MaxRegret: 0.2, WeightedRegret: 0},
			{CandidateScenarioID: 41, MaxRegret: 0, WeightedRegret: 0.1},
		}

		result, err := SelectRobustAllocation(
			[]domain.CandidateAllocation{candidateA, candidateB},
			summaries,
			[]float64{0.3, 0.7},
		)
		require.NoError(t, err)
		require.Equal(t, 41, result.Candidate.ScenarioID)
		require.Equal(t, 0.7, result.Alpha)
		require.Equal(t, 0.0, result.MaxRegret)
		require.Equal(t, 0.1, result.WeightedRegret)
	})

	t.Run("ties keep the earliest alpha and candidate", func(t *testing.T) {
		summaries := []domain.RegretSummary{
			{CandidateScenarioID: 14, MaxRegret: 0.05, WeightedRegret: 0.05},
			{CandidateScenarioID: 41, MaxRegret: 0.05, WeightedRegret: 0.05},
		}

		result, err := SelectRobustAllocation(
			[]domain.CandidateAllocation{candidateA, candidateB},
			summaries,
			[]float64{0.3, 0.4, 0.5},
		)
		require.NoError(t, err)
		require.Equal(t, 14, result.Candidate.ScenarioID)
		require.Equal(t, 0.3, result.Alpha)
	})

	t.Run("single candidate wins trivially", func(t *testing.T) {
		result, err := SelectRobustAllocation(
			[]domain.CandidateAllocation{candidateA},
			[]domain.RegretSummary{{CandidateScenarioID: 14, MaxRegret: 0.5, WeightedRegret: 0.5}},
			[]float64{0.3, 0.5, 0.7},
		)
		require.NoError(t, err)
		require.Equal(t, 14, result.Candidate.ScenarioID)
		require.Equal(t, 0.3, result.Alpha)
	})

	t.Run("rejects empty candidates", func(t *testing.T) {
		_, err := SelectRobustAllocation(nil, nil, []float64{0.5})
		require.Error(t, err)
	})

	t.Run("rejects mismatched summaries", func(t *testing.T) {
		_, err := SelectRobustAllocation(
			[]domain.CandidateAllocation{candidateA, candidateB},
			[]domain.RegretSummary{{CandidateScenarioID: 14}},
			[]float64{0.5},
		)
		require.Error(t, err)
	})

	t.Run("rejects empty alpha grid", func(t *testing.T) {
		_, err := SelectRobustAllocation(
			[]domain.CandidateAllocation{candidateA},
			[]domain.RegretSummary{{CandidateScenarioID: 14}},
			nil,
		)
		require.Error(t, err)
	})
}
