package ingest

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/maja42/goval"

	"regimealloc/internal/config"
	"regimealloc/internal/domain"
)

// snapshotRow is one indicator reading as supplied by the data layer.
// Percentile columns are optional; a row without a full set of bands yields
// an observation with no distribution, which the classifier degrades on.
type snapshotRow struct {
	Indicator string   `csv:"indicator"`
	Raw       *float64 `csv:"raw,omitempty"`
	Min       *float64 `csv:"min,omitempty"`
	P10       *float64 `csv:"p10,omitempty"`
	P25       *float64 `csv:"p25,omitempty"`
	P33       *float64 `csv:"p33,omitempty"`
	P50       *float64 `csv:"p50,omitempty"`
	P67       *float64 `csv:"p67,omitempty"`
	P75       *float64 `csv:"p75,omitempty"`
	P90       *float64 `csv:"p90,omitempty"`
	Max       *float64 `csv:"max,omitempty"`
	// trailing values, oldest first, pipe-separated
	History string `csv:"history"`
}

type LoadSnapshotResult struct {
	Observations map[string]domain.IndicatorObservation
	// legacy key -> canonical id substitutions made
	Aliased map[string]string
	// keys with no canonical mapping, passed through untouched
	Unknown []string
}

// LoadSnapshot reads an indicator snapshot CSV and normalizes it to the
// canonical schema: legacy key names from older snapshot generations collapse
// to canonical indicator ids here, so the optimizer core only ever sees
// canonical keys. Configured transform expressions are also applied here,
// outside the core's decision path.
func LoadSnapshot(path string, cfg *config.Config) (*LoadSnapshotResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	rows := []*snapshotRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}

	canonical := map[string]string{}
	transforms := map[string]string{}
	for _, ic := range cfg.Indicators {
		canonical[ic.ID] = ic.ID
		for _, alias := range ic.Aliases {
			canonical[alias] = ic.ID
		}
		if ic.Transform != "" {
			transforms[ic.ID] = ic.Transform
		}
	}

	result := &LoadSnapshotResult{
		Observations: map[string]domain.IndicatorObservation{},
		Aliased:      map[string]string{},
	}

	for _, row := range rows {
		key := strings.TrimSpace(row.Indicator)
		if key == "" {
			continue
		}

		id, known := canonical[key]
		if !known {
			id = key
			result.Unknown = append(result.Unknown, key)
		} else if id != key {
			result.Aliased[key] = id
		}

		history, err := parseHistory(row.History)
		if err != nil {
			return nil, fmt.Errorf("indicator %s: %w", id, err)
		}

		obs := domain.IndicatorObservation{
			IndicatorID: id,
			Raw:         row.Raw,
			Bands:       rowBands(row),
			History:     history,
		}

		if expr, ok := transforms[id]; ok && row.Raw != nil {
			transformed, err := evalTransform(expr, *row.Raw, history)
			if err != nil {
				return nil, fmt.Errorf("indicator %s: failed to evaluate transform: %w", id, err)
			}
			obs.Transformed = &transformed
		}

		result.Observations[id] = obs
	}

	return result, nil
}

func rowBands(row *snapshotRow) *domain.PercentileBands {
	ptrs := []*float64{row.Min, row.P10, row.P25, row.P33, row.P50, row.P67, row.P75, row.P90, row.Max}
	for _, p := range ptrs {
		if p == nil {
			return nil
		}
	}
	return &domain.PercentileBands{
		Min: *row.Min, P10: *row.P10, P25: *row.P25, P33: *row.P33, P50: *row.P50,
		P67: *row.P67, P75: *row.P75, P90: *row.P90, Max: *row.Max,
	}
}

func parseHistory(raw string) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "|")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad history value '%s'", part)
		}
		out = append(out, v)
	}
	return out, nil
}

// evalTransform runs a configured goval expression over the raw reading.
// The expression sees the raw value plus a few math helpers, including ma(n)
// over the indicator's history.
func evalTransform(expr string, raw float64, history []float64) (float64, error) {
	functions := map[string]goval.ExpressionFunction{
		"abs": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("abs needs 1 arg, got %d", len(args))
			}
			return math.Abs(toFloat(args[0])), nil
		},
		"sqrt": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("sqrt needs 1 arg, got %d", len(args))
			}
			return math.Sqrt(toFloat(args[0])), nil
		},
		"log": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("log needs 1 arg, got %d", len(args))
			}
			return math.Log(toFloat(args[0])), nil
		},
		// ma(n) - mean of the trailing n history values
		"ma": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("ma needs 1 arg, got %d", len(args))
			}
			n := int(toFloat(args[0]))
			if n <= 0 || n > len(history) {
				return nil, fmt.Errorf("ma window %d outside history of %d values", n, len(history))
			}
			sum := 0.0
			for _, v := range history[len(history)-n:] {
				sum += v
			}
			return sum / float64(n), nil
		},
	}

	variables := map[string]interface{}{
		"raw": raw,
	}

	out, err := goval.NewEvaluator().Evaluate(expr, variables, functions)
	if err != nil {
		return 0, err
	}
	return toFloat(out), nil
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	}
	return math.NaN()
}
