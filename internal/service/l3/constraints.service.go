package l3_service

import (
	"github.com/shopspring/decimal"

	"regimealloc/internal/domain"
)

const (
	adjustmentRuleNegativeWeight = "NEGATIVE_WEIGHT"
	adjustmentRuleMaxWeight      = "MAX_WEIGHT_CAP"
	adjustmentRuleHoldOnly       = "HOLD_ONLY_CAP"
	adjustmentRuleCashFloor      = "CASH_FLOOR"
)

type ValidateConstraintsInput struct {
	Weights  domain.Allocation
	Universe []domain.Security
	// pre-existing bound for hold-only securities
	Baseline      domain.Allocation
	CashSymbol    string
	MinCashWeight float64
}

type ValidateConstraintsResult struct {
	Weights     domain.Allocation
	Adjustments []domain.ConstraintAdjustment
	// all weights degenerated to zero and the baseline was substituted
	BaselineFallback bool
}

// ValidateConstraints is the final normalization pass: zero out negatives,
// clamp caps and hold-only bounds, floor cash, and renormalize to sum 1.
// Applying it to its own output changes nothing.
func ValidateConstraints(in ValidateConstraintsInput) ValidateConstraintsResult {
	result := ValidateConstraintsResult{
		Weights: in.Weights.DeepCopy(),
	}

	for symbol, w := range result.Weights {
		if w < 0 {
			result.Adjustments = append(result.Adjustments, domain.ConstraintAdjustment{
				Symbol: symbol,
				Rule:   adjustmentRuleNegativeWeight,
				Before: w,
				After:  0,
			})
			result.Weights[symbol] = 0
		}
	}

	if result.Weights.Sum() <= 0 {
		result.BaselineFallback = true
		result.Weights = in.Baseline.DeepCopy()
	}

	upper := map[string]float64{}
	upperRule := map[string]string{}
	for _, sec := range in.Universe {
		bound, rule, bounded := upperBound(sec, in.Baseline)
		if bounded {
			upper[sec.Symbol] = bound
			upperRule[sec.Symbol] = rule
		}
	}

	// clamp violators, pin them, and redistribute the remainder across the
	// unpinned weights until no new violations appear. every productive pass
	// pins at least one new weight, so this reaches a fixpoint within one
	// pass per symbol plus a final settling rescale
	maxPasses := len(result.Weights) + 2
	pinned := map[string]bool{}
	for pass := 0; pass < maxPasses; pass++ {
		changed := false

		for _, symbol := range result.Weights.Symbols() {
			w := result.Weights[symbol]
			if bound, ok := upper[symbol]; ok && w > bound+1e-12 {
				result.Adjustments = append(result.Adjustments, domain.ConstraintAdjustment{
					Symbol: symbol,
					Rule:   upperRule[symbol],
					Before: w,
					After:  bound,
				})
				result.Weights[symbol] = bound
				pinned[symbol] = true
				changed = true
			}
		}

		if in.CashSymbol != "" {
			cash := result.Weights[in.CashSymbol]
			if cash < in.MinCashWeight-1e-12 {
				result.Adjustments = append(result.Adjustments, domain.ConstraintAdjustment{
					Symbol: in.CashSymbol,
					Rule:   adjustmentRuleCashFloor,
					Before: cash,
					After:  in.MinCashWeight,
				})
				result.Weights[in.CashSymbol] = in.MinCashWeight
				pinned[in.CashSymbol] = true
				changed = true
			}
		}

		if !rescaleFree(result.Weights, pinned) && !changed {
			break
		}
	}

	result.Weights = roundWeights(result.Weights, pinned)
	return result
}

func upperBound(sec domain.Security, baseline domain.Allocation) (bound float64, rule string, bounded bool) {
	if sec.MaxWeight != nil {
		bound, rule, bounded = *sec.MaxWeight, adjustmentRuleMaxWeight, true
	}
	if sec.HoldOnly {
		if held := baseline[sec.Symbol]; !bounded || held < bound {
			bound, rule, bounded = held, adjustmentRuleHoldOnly, true
		}
	}
	return bound, rule, bounded
}

// rescaleFree scales the unpinned weights so the whole allocation sums to 1.
// Reports whether anything moved.
func rescaleFree(weights domain.Allocation, pinned map[string]bool) bool {
	pinnedSum := 0.0
	freeSum := 0.0
	for symbol, w := range weights {
		if pinned[symbol] {
			pinnedSum += w
		} else {
			freeSum += w
		}
	}

	target := 1 - pinnedSum
	if target < 0 {
		target = 0
	}
	if freeSum <= 0 {
		return false
	}

	scale := target / freeSum
	if scale > 1-1e-12 && scale < 1+1e-12 {
		return false
	}
	for symbol := range weights {
		if !pinned[symbol] {
			weights[symbol] *= scale
		}
	}
	return true
}

const weightPlaces = 6

// roundWeights publishes weights rounded to six places, carrying the rounding
// residual on the largest unpinned position so the decimal sum is exactly 1.
func roundWeights(weights domain.Allocation, pinned map[string]bool) domain.Allocation {
	out := make(domain.Allocation, len(weights))
	sum := decimal.Zero
	residualSymbol := ""
	residualWeight := -1.0

	for _, symbol := range weights.Symbols() {
		rounded := decimal.NewFromFloat(weights[symbol]).Round(weightPlaces)
		f, _ := rounded.Float64()
		out[symbol] = f
		sum = sum.Add(rounded)
		if !pinned[symbol] && weights[symbol] > residualWeight {
			residualSymbol = symbol
			residualWeight = weights[symbol]
		}
	}

	if residualSymbol == "" {
		return out
	}

	residual := decimal.NewFromInt(1).Sub(sum)
	if !residual.IsZero() {
		adjusted := decimal.NewFromFloat(out[residualSymbol]).Add(residual)
		if adjusted.Sign() >= 0 {
			f, _ := adjusted.Float64()
			out[residualSymbol] = f
		}
	}
	return out
}
