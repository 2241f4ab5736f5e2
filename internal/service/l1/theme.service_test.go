package l1_service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"regimealloc/internal/config"
	"regimealloc/internal/domain"
)

var testRoleWeights = config.RoleWeights{Leading: 0.4, Concurrent: 0.35, Lagging: 0.25}

func usdIndicators() []domain.Indicator {
	return []domain.Indicator{
		{ID: "lead", Theme: domain.ThemeUSD, Role: domain.RoleLeading, Weight: 1, Policy: domain.PolicyPercentileBased},
		{ID: "conc", Theme: domain.ThemeUSD, Role: domain.RoleConcurrent, Weight: 1, Policy: domain.PolicyPercentileBased},
		{ID: "lag", Theme: domain.ThemeUSD, Role: domain.RoleLagging, Weight: 1, Policy: domain.PolicyPercentileBased},
	}
}

func Test_AggregateTheme(t *testing.T) {
	t.Run("all indicators at max give score 1 and strong state", func(t *testing.T) {
		obs := map[string]domain.IndicatorObservation{
			"lead": {Raw: floatPtr(100), Bands: testBands()},
			"conc": {Raw: floatPtr(100), Bands: testBands()},
			"lag":  {Raw: floatPtr(100), Bands: testBands()},
		}
		out := AggregateTheme(AggregateThemeInput{
			Tag:          domain.ThemeUSD,
			Indicators:   usdIndicators(),
			Observations: obs,
			RoleWeights:  testRoleWeights,
		})
		require.InDelta(t, 1.0, out.Score, 1e-9)
		require.Equal(t, domain.StateStrong, out.State)
		require.Empty(t, out.LowConfidence)
	})

	t.Run("median values give neutral", func(t *testing.T) {
		obs := map[string]domain.IndicatorObservation{
			"lead": {Raw: floatPtr(50), Bands: testBands()},
			"conc": {Raw: floatPtr(50), Bands: testBands()},
			"lag":  {Raw: floatPtr(50), Bands: testBands()},
		}
		out := AggregateTheme(AggregateThemeInput{
			Tag:          domain.ThemeUSD,
			Indicators:   usdIndicators(),
			Observations: obs,
			RoleWeights:  testRoleWeights,
		})
		require.InDelta(t, 0.0, out.Score, 1e-9)
		require.Equal(t, domain.StateNeutral, out.State)
	})

	t.Run("missing indicator renormalizes over the rest", func(t *testing.T) {
		obs := map[string]domain.IndicatorObservation{
			"lead": {Raw: floatPtr(100), Bands: testBands()},
			"conc": {Raw: floatPtr(100), Bands: testBands()},
		}
		out := AggregateTheme(AggregateThemeInput{
			Tag:          domain.ThemeUSD,
			Indicators:   usdIndicators(),
			Observations: obs,
			RoleWeights:  testRoleWeights,
		})
		// the two available indicators both sit at +1
		require.InDelta(t, 1.0, out.Score, 1e-9)
		require.Len(t, out.LowConfidence, 1)
		require.Equal(t, "lag", out.LowConfidence[0].IndicatorID)
	})

	t.Run("no usable indicators scores zero", func(t *testing.T) {
		out := AggregateTheme(AggregateThemeInput{
			Tag:          domain.ThemeUSD,
			Indicators:   usdIndicators(),
			Observations: map[string]domain.IndicatorObservation{},
			RoleWeights:  testRoleWeights,
		})
		require.Equal(t, 0.0, out.Score)
		require.Equal(t, domain.StateNeutral, out.State)
		require.Len(t, out.LowConfidence, 3)
	})

	t.Run("inverted percentile policy flips its contribution", func(t *testing.T) {
		inds := []domain.Indicator{
			{ID: "vix", Theme: domain.ThemeInnovation, Role: domain.RoleLeading, Weight: 1, Policy: domain.PolicyPercentileInverted},
		}
		obs := map[string]domain.IndicatorObservation{
			"vix": {Raw: floatPtr(100), Bands: testBands()},
		}
		out := AggregateTheme(AggregateThemeInput{
			Tag:          domain.ThemeInnovation,
			Indicators:   inds,
			Observations: obs,
			RoleWeights:  testRoleWeights,
		})
		require.InDelta(t, -1.0, out.Score, 1e-9)
		require.Equal(t, domain.StateWeak, out.State)
	})

	t.Run("inverted flag flips its contribution", func(t *testing.T) {
		inds := []domain.Indicator{
			{ID: "spread", Theme: domain.ThemeUSD, Role: domain.RoleLeading, Weight: 1, Policy: domain.PolicyPercentileBased, Inverted: true},
		}
		obs := map[string]domain.IndicatorObservation{
			"spread": {Raw: floatPtr(100), Bands: testBands()},
		}
		out := AggregateTheme(AggregateThemeInput{
			Tag:          domain.ThemeUSD,
			Indicators:   inds,
			Observations: obs,
			RoleWeights:  testRoleWeights,
		})
		require.InDelta(t, -1.0, out.Score, 1e-9)
		require.Equal(t, domain.StateWeak, out.State)
	})

	t.Run("non-percentile policies contribute their discrete state", func(t *testing.T) {
		inds := []domain.Indicator{
			{ID: "diff", Theme: domain.ThemeUSD, Role: domain.RoleLeading, Weight: 1, Policy: domain.PolicyZeroCrossing, Threshold: 0.1},
		}
		obs := map[string]domain.IndicatorObservation{
			"diff": {Raw: floatPtr(0.5)},
		}
		out := AggregateTheme(AggregateThemeInput{
			Tag:          domain.ThemeUSD,
			Indicators:   inds,
			Observations: obs,
			RoleWeights:  testRoleWeights,
		})
		require.InDelta(t, 1.0, out.Score, 1e-9)
	})
}

func Test_bandPosition(t *testing.T) {
	bands := *testBands()

	require.InDelta(t, -1.0, bandPosition(-5, bands), 1e-9)
	require.InDelta(t, -1.0, bandPosition(0, bands), 1e-9)
	require.InDelta(t, -0.33, bandPosition(33, bands), 1e-9)
	require.InDelta(t, 0.0, bandPosition(50, bands), 1e-9)
	require.InDelta(t, 0.33, bandPosition(67, bands), 1e-9)
	require.InDelta(t, 1.0, bandPosition(100, bands), 1e-9)
	require.InDelta(t, 1.0, bandPosition(200, bands), 1e-9)

	// monotone within each segment
	require.Greater(t, bandPosition(60, bands), bandPosition(40, bands))
	require.Greater(t, bandPosition(90, bands), bandPosition(70, bands))
}
