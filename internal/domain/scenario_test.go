package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ScenarioID(t *testing.T) {
	t.Run("all weak is id 1", func(t *testing.T) {
		require.Equal(t, 1, ScenarioID([4]ThemeState{StateWeak, StateWeak, StateWeak, StateWeak}))
	})

	t.Run("all strong is id 81", func(t *testing.T) {
		require.Equal(t, 81, ScenarioID([4]ThemeState{StateStrong, StateStrong, StateStrong, StateStrong}))
	})

	t.Run("all neutral is the midpoint", func(t *testing.T) {
		require.Equal(t, 41, ScenarioID([4]ThemeState{StateNeutral, StateNeutral, StateNeutral, StateNeutral}))
	})

	t.Run("stride encoding is injective", func(t *testing.T) {
		states := []ThemeState{StateWeak, StateNeutral, StateStrong}
		seen := map[int]bool{}
		for _, s0 := range states {
			for _, s1 := range states {
				for _, s2 := range states {
					for _, s3 := range states {
						id := ScenarioID([4]ThemeState{s0, s1, s2, s3})
						require.GreaterOrEqual(t, id, 1)
						require.LessOrEqual(t, id, 81)
						require.False(t, seen[id], "duplicate id %d", id)
						seen[id] = true
					}
				}
			}
		}
		require.Len(t, seen, 81)
	})
}

func Test_Marginal_Valid(t *testing.T) {
	t.Run("sums to one", func(t *testing.T) {
		require.NoError(t, Marginal{Weak: 0.2, Neutral: 0.5, Strong: 0.3}.Valid())
	})

	t.Run("rejects bad sum", func(t *testing.T) {
		require.Error(t, Marginal{Weak: 0.2, Neutral: 0.5, Strong: 0.2}.Valid())
	})

	t.Run("rejects negative probability", func(t *testing.T) {
		require.Error(t, Marginal{Weak: -0.1, Neutral: 0.6, Strong: 0.5}.Valid())
	})
}

func Test_Marginals_Valid(t *testing.T) {
	full := Marginals{}
	for _, tag := range ThemeOrder {
		full[tag] = Marginal{Neutral: 1}
	}
	require.NoError(t, full.Valid())

	partial := Marginals{ThemeUSD: {Neutral: 1}}
	require.Error(t, partial.Valid())
}

func Test_StateFromScore(t *testing.T) {
	require.Equal(t, StateWeak, StateFromScore(-0.5))
	require.Equal(t, StateWeak, StateFromScore(-0.33))
	require.Equal(t, StateNeutral, StateFromScore(-0.32))
	require.Equal(t, StateNeutral, StateFromScore(0))
	require.Equal(t, StateNeutral, StateFromScore(0.32))
	require.Equal(t, StateStrong, StateFromScore(0.33))
	require.Equal(t, StateStrong, StateFromScore(0.9))
}
