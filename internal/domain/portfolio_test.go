package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func Test_Allocation_Valid(t *testing.T) {
	t.Run("valid allocation", func(t *testing.T) {
		a := Allocation{"SPY": 0.6, "AGG": 0.4}
		require.NoError(t, a.Valid())
	})

	t.Run("rejects negative weight", func(t *testing.T) {
		a := Allocation{"SPY": 1.1, "AGG": -0.1}
		require.Error(t, a.Valid())
	})

	t.Run("rejects bad sum", func(t *testing.T) {
		a := Allocation{"SPY": 0.6, "AGG": 0.3}
		require.Error(t, a.Valid())
	})

	t.Run("rejects empty", func(t *testing.T) {
		require.Error(t, Allocation{}.Valid())
	})
}

func Test_Allocation_Vector(t *testing.T) {
	a := Allocation{"SPY": 0.6, "AGG": 0.4}
	require.Equal(
		t,
		"",
		cmp.Diff(
			[]float64{0.4, 0, 0.6},
			a.Vector([]string{"AGG", "GLD", "SPY"}),
		),
	)
}

func Test_Allocation_DeepCopy(t *testing.T) {
	a := Allocation{"SPY": 0.6, "AGG": 0.4}
	b := a.DeepCopy()
	b["SPY"] = 0.1
	require.Equal(t, 0.6, a["SPY"])
}
