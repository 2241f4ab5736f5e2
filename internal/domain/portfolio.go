package domain

import (
	"fmt"
	"math"
	"sort"
)

// AssetCategory groups securities for hedging heuristics.
type AssetCategory string

const (
	CategoryEquityUS       AssetCategory = "EQUITY_US"
	CategoryEquityIntl     AssetCategory = "EQUITY_INTL"
	CategoryEquityEmerging AssetCategory = "EQUITY_EM"
	CategoryBond           AssetCategory = "BOND"
	CategoryCommodity      AssetCategory = "COMMODITY"
	CategoryCash           AssetCategory = "CASH"
	CategoryHedge          AssetCategory = "HEDGE"
)

// Security is one investable position in the universe.
type Security struct {
	Symbol   string
	Category AssetCategory
	// absolute weight ceiling; nil means uncapped
	MaxWeight *float64
	// weight may be held or reduced, never increased past its baseline
	HoldOnly bool
}

// Allocation maps security symbol to portfolio weight. A valid allocation has
// all weights >= 0 summing to 1.
type Allocation map[string]float64

func (a Allocation) Sum() float64 {
	sum := 0.0
	for _, w := range a {
		sum += w
	}
	return sum
}

func (a Allocation) DeepCopy() Allocation {
	out := make(Allocation, len(a))
	for symbol, w := range a {
		out[symbol] = w
	}
	return out
}

// Symbols returns the allocation's symbols in deterministic (sorted) order.
func (a Allocation) Symbols() []string {
	symbols := make([]string, 0, len(a))
	for symbol := range a {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Vector projects the allocation onto an ordered symbol universe, filling 0
// for symbols the allocation does not hold.
func (a Allocation) Vector(universe []string) []float64 {
	out := make([]float64, len(universe))
	for i, symbol := range universe {
		out[i] = a[symbol]
	}
	return out
}

const allocationSumTolerance = 1e-6

func (a Allocation) Valid() error {
	if len(a) == 0 {
		return fmt.Errorf("allocation is empty")
	}
	for symbol, w := range a {
		if w < 0 {
			return fmt.Errorf("allocation weight for %s is negative: %f", symbol, w)
		}
	}
	if sum := a.Sum(); math.Abs(sum-1) > allocationSumTolerance {
		return fmt.Errorf("allocation weights sum to %f, want 1", sum)
	}
	return nil
}

// CandidateAllocation is a scenario-tilted allocation considered by the
// optimizer. ScenarioID names the scenario it was generated for.
type CandidateAllocation struct {
	ScenarioID int
	Weights    Allocation
	// the baseline was used verbatim because adjustments degenerated
	BaselineFallback bool
}
