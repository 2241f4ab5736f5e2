package l3_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"regimealloc/internal/config"
	"regimealloc/internal/domain"
	l2_service "regimealloc/internal/service/l2"
)

type OptimizeInput struct {
	Marginals domain.Marginals
	// optional upstream classification output, passed through to the trace
	ThemeScores []domain.ThemeScore
}

type OptimizeResponse struct {
	Allocation domain.Allocation
	Trace      domain.DiagnosticTrace
}

type OptimizeService struct {
	Cfg    *config.Config
	Logger *zap.SugaredLogger
}

// Optimize runs the full pipeline: enumerate the joint regime space, select
// the working scenario subset, build one tilted candidate per scenario, score
// the regret matrix, pick the robust candidate, hedge if warranted, and
// validate the final allocation.
//
// The stages are strictly sequential and the whole computation is
// deterministic for identical inputs. Every degraded-input condition is
// recovered locally and reported on the trace; the only error path is a
// malformed marginal set.
func (s OptimizeService) Optimize(ctx context.Context, in OptimizeInput) (*OptimizeResponse, error) {
	profile, endProfile := domain.GetProfile(ctx)
	defer endProfile()

	trace := domain.DiagnosticTrace{RunID: uuid.New()}
	for _, ts := range in.ThemeScores {
		trace.LowConfidence = append(trace.LowConfidence, ts.LowConfidence...)
	}

	_, endSpan := profile.StartNewSpan("enumerate_scenarios")
	scenarios, err := l2_service.EnumerateScenarios(in.Marginals)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate scenarios: %w", err)
	}

	_, endSpan = profile.StartNewSpan("select_scenarios")
	selection := l2_service.SelectScenarios(scenarios, s.Cfg.Selection)
	endSpan()
	trace.SelectedScenarios = selection.Selected
	trace.CumulativeProbability = selection.CumulativeProbability
	trace.SelectionFallback = selection.Fallback

	_, endSpan = profile.StartNewSpan("build_candidates")
	candidates := BuildCandidates(selection.Selected, s.Cfg)
	endSpan()
	for _, c := range candidates {
		if c.BaselineFallback {
			trace.BaselineFallbacks = append(trace.BaselineFallbacks, c.ScenarioID)
		}
	}

	_, endSpan = profile.StartNewSpan("build_regret_matrix")
	matrix := BuildRegretMatrix(candidates, selection.Selected, s.Cfg)
	endSpan()
	trace.RegretMatrix = matrix.Entries
	trace.Summaries = matrix.Summaries

	_, endSpan = profile.StartNewSpan("dual_optimize")
	chosen, err := SelectRobustAllocation(candidates, matrix.Summaries, s.Cfg.AlphaGrid)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to select robust allocation: %w", err)
	}
	trace.Alpha = chosen.Alpha
	trace.MaxRegret = chosen.MaxRegret
	trace.WeightedRegret = chosen.WeightedRegret

	_, endSpan = profile.StartNewSpan("advise_hedge")
	hedged, hedgeDecision := AdviseHedge(AdviseHedgeInput{
		Chosen:     chosen,
		Candidates: candidates,
		Selected:   selection.Selected,
		Cfg:        s.Cfg,
	})
	endSpan()
	trace.Hedge = hedgeDecision

	_, endSpan = profile.StartNewSpan("validate_constraints")
	validated := ValidateConstraints(ValidateConstraintsInput{
		Weights:       hedged,
		Universe:      s.Cfg.Securities(),
		Baseline:      domain.Allocation(s.Cfg.Baseline),
		CashSymbol:    s.Cfg.CashSymbol,
		MinCashWeight: s.Cfg.MinCashWeight,
	})
	endSpan()
	trace.ConstraintAdjustments = validated.Adjustments
	if validated.BaselineFallback {
		trace.BaselineFallbacks = append(trace.BaselineFallbacks, 0)
	}

	_, endSpan = profile.StartNewSpan("calculate_metrics")
	metrics, err := CalculateMetrics(validated.Weights, selection.Selected, s.Cfg)
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to calculate allocation metrics: %w", err)
	}
	trace.Metrics = metrics

	trace.Profile = profile

	if s.Logger != nil {
		s.Logger.Infow("optimization run complete",
			"runId", trace.RunID,
			"selectedScenarios", len(selection.Selected),
			"cumulativeProbability", selection.CumulativeProbability,
			"alpha", chosen.Alpha,
			"maxRegret", chosen.MaxRegret,
			"weightedRegret", chosen.WeightedRegret,
			"hedgeApplied", hedgeDecision.Applied,
		)
	}

	return &OptimizeResponse{
		Allocation: validated.Weights,
		Trace:      trace,
	}, nil
}
