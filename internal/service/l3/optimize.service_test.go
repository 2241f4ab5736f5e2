package l3_service

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"regimealloc/internal/config"
	"regimealloc/internal/domain"
)

// newTestConfig builds a small but complete configuration: five securities,
// USD and US-leadership tilts toward/away from international exposure, and
// default optimizer thresholds.
func newTestConfig() *config.Config {
	cfg := &config.Config{
		Universe: []config.SecurityConfig{
			{Symbol: "SPY", Category: "EQUITY_US"},
			{Symbol: "QQQ", Category: "EQUITY_US", MaxWeight: floatPtr(0.25)},
			{Symbol: "VEA", Category: "EQUITY_INTL"},
			{Symbol: "AGG", Category: "BOND"},
			{Symbol: "BIL", Category: "CASH"},
		},
		Baseline: map[string]float64{
			"SPY": 0.35,
			"QQQ": 0.15,
			"VEA": 0.15,
			"AGG": 0.25,
			"BIL": 0.10,
		},
		CashSymbol:    "BIL",
		MinCashWeight: 0.02,
		FactorAdjustments: map[string]config.ThemeStateTable{
			"SPY": {
				domain.ThemeUSD:          {"weak": -0.05, "neutral": 0, "strong": 0.04},
				domain.ThemeUSLeadership: {"weak": -0.04, "neutral": 0, "strong": 0.04},
			},
			"QQQ": {
				domain.ThemeInnovation: {"weak": -0.05, "neutral": 0, "strong": 0.05},
			},
			"VEA": {
				domain.ThemeUSD:          {"weak": 0.06, "neutral": 0, "strong": -0.05},
				domain.ThemeUSLeadership: {"weak": 0.04, "neutral": 0, "strong": -0.04},
			},
			"AGG": {
				domain.ThemeValuation: {"weak": 0.05, "neutral": 0, "strong": -0.03},
			},
		},
		BaseReturns: map[string]float64{
			"SPY": 0.07,
			"QQQ": 0.09,
			"VEA": 0.06,
			"AGG": 0.03,
			"BIL": 0.02,
		},
		ReturnImpacts: map[string]config.ThemeStateTable{
			"SPY": {
				domain.ThemeUSD:          {"weak": -0.02, "neutral": 0, "strong": 0.01},
				domain.ThemeUSLeadership: {"weak": -0.02, "neutral": 0, "strong": 0.02},
			},
			"QQQ": {
				domain.ThemeInnovation: {"weak": -0.04, "neutral": 0, "strong": 0.04},
			},
			"VEA": {
				domain.ThemeUSD:          {"weak": 0.03, "neutral": 0, "strong": -0.02},
				domain.ThemeUSLeadership: {"weak": 0.02, "neutral": 0, "strong": -0.02},
			},
			"AGG": {
				domain.ThemeValuation: {"weak": 0.02, "neutral": 0, "strong": -0.01},
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func marginalsAllNeutral() domain.Marginals {
	m := domain.Marginals{}
	for _, tag := range domain.ThemeOrder {
		m[tag] = domain.Marginal{Neutral: 1}
	}
	return m
}

func Test_Optimize_certainNeutral(t *testing.T) {
	cfg := newTestConfig()
	svc := OptimizeService{Cfg: cfg}

	resp, err := svc.Optimize(context.Background(), OptimizeInput{Marginals: marginalsAllNeutral()})
	require.NoError(t, err)

	require.NoError(t, resp.Allocation.Valid())
	require.Equal(t, "", cmp.Diff(domain.Allocation(cfg.Baseline), resp.Allocation))

	require.Len(t, resp.Trace.SelectedScenarios, 1)
	require.Equal(t, 41, resp.Trace.SelectedScenarios[0].ID)
	require.Equal(t, 0.0, resp.Trace.MaxRegret)
	require.Equal(t, 0.0, resp.Trace.WeightedRegret)
	require.False(t, resp.Trace.Hedge.Applied)

	require.NotNil(t, resp.Trace.Metrics)
	require.Equal(t, 0.0, resp.Trace.Metrics.ReturnStdev)
}

func Test_Optimize_certainUSDWeak(t *testing.T) {
	cfg := newTestConfig()
	svc := OptimizeService{Cfg: cfg}

	m := marginalsAllNeutral()
	m[domain.ThemeUSD] = domain.Marginal{Weak: 1}

	resp, err := svc.Optimize(context.Background(), OptimizeInput{Marginals: m})
	require.NoError(t, err)
	require.NoError(t, resp.Allocation.Valid())

	// every selected scenario sits in the USD-weak block
	for _, s := range resp.Trace.SelectedScenarios {
		require.Equal(t, domain.StateWeak, s.States[0])
	}

	// the weak-dollar tilt shifts weight from US large cap to international
	require.Greater(t, resp.Allocation["VEA"], cfg.Baseline["VEA"])
	require.Less(t, resp.Allocation["SPY"], cfg.Baseline["SPY"])

	require.Equal(t, 0.0, resp.Trace.MaxRegret)
}

func Test_Optimize_deterministic(t *testing.T) {
	cfg := newTestConfig()
	svc := OptimizeService{Cfg: cfg}

	m := domain.Marginals{
		domain.ThemeUSD:          {Weak: 0.5, Neutral: 0.3, Strong: 0.2},
		domain.ThemeInnovation:   {Weak: 0.2, Neutral: 0.5, Strong: 0.3},
		domain.ThemeValuation:    {Weak: 0.3, Neutral: 0.4, Strong: 0.3},
		domain.ThemeUSLeadership: {Weak: 0.25, Neutral: 0.5, Strong: 0.25},
	}

	first, err := svc.Optimize(context.Background(), OptimizeInput{Marginals: m})
	require.NoError(t, err)
	second, err := svc.Optimize(context.Background(), OptimizeInput{Marginals: m})
	require.NoError(t, err)

	require.Equal(t, "", cmp.Diff(first.Allocation, second.Allocation))
	require.Equal(t, "", cmp.Diff(first.Trace.SelectedScenarios, second.Trace.SelectedScenarios))
	require.Equal(t, first.Trace.Alpha, second.Trace.Alpha)
	require.Equal(t, first.Trace.MaxRegret, second.Trace.MaxRegret)
	require.Equal(t, first.Trace.WeightedRegret, second.Trace.WeightedRegret)
	require.Equal(t, "", cmp.Diff(first.Trace.RegretMatrix, second.Trace.RegretMatrix))
	require.Equal(t, first.Trace.Hedge.Applied, second.Trace.Hedge.Applied)
	require.Equal(t, "", cmp.Diff(first.Trace.ConstraintAdjustments, second.Trace.ConstraintAdjustments))
}

func Test_Optimize_alwaysValidAllocation(t *testing.T) {
	cfg := newTestConfig()
	svc := OptimizeService{Cfg: cfg}

	mixes := []domain.Marginals{
		marginalsAllNeutral(),
		{
			domain.ThemeUSD:          {Weak: 1},
			domain.ThemeInnovation:   {Strong: 1},
			domain.ThemeValuation:    {Weak: 1},
			domain.ThemeUSLeadership: {Strong: 1},
		},
		{
			domain.ThemeUSD:          {Weak: 1.0 / 3.0, Neutral: 1.0 / 3.0, Strong: 1.0 / 3.0},
			domain.ThemeInnovation:   {Weak: 1.0 / 3.0, Neutral: 1.0 / 3.0, Strong: 1.0 / 3.0},
			domain.ThemeValuation:    {Weak: 1.0 / 3.0, Neutral: 1.0 / 3.0, Strong: 1.0 / 3.0},
			domain.ThemeUSLeadership: {Weak: 1.0 / 3.0, Neutral: 1.0 / 3.0, Strong: 1.0 / 3.0},
		},
	}

	for _, m := range mixes {
		resp, err := svc.Optimize(context.Background(), OptimizeInput{Marginals: m})
		require.NoError(t, err)
		require.NoError(t, resp.Allocation.Valid())
		require.GreaterOrEqual(t, resp.Allocation["BIL"], cfg.MinCashWeight-1e-9)
		require.LessOrEqual(t, resp.Allocation["QQQ"], 0.25+1e-9)
	}
}

func Test_Optimize_rejectsBadMarginals(t *testing.T) {
	svc := OptimizeService{Cfg: newTestConfig()}
	_, err := svc.Optimize(context.Background(), OptimizeInput{
		Marginals: domain.Marginals{domain.ThemeUSD: {Neutral: 1}},
	})
	require.Error(t, err)
}
