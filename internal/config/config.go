package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"regimealloc/internal/domain"
)

// Config is the full static configuration for one optimizer run: the security
// universe, the baseline portfolio, the factor tables, and every tunable
// threshold. A Config value is passed explicitly into each pipeline stage;
// nothing here is process-global.
type Config struct {
	Universe      []SecurityConfig   `yaml:"universe"`
	Baseline      map[string]float64 `yaml:"baseline"`
	CashSymbol    string             `yaml:"cashSymbol"`
	MinCashWeight float64            `yaml:"minCashWeight"`

	RoleWeights RoleWeights       `yaml:"roleWeights"`
	Indicators  []IndicatorConfig `yaml:"indicators"`

	// symbol -> theme -> state -> weight delta
	FactorAdjustments map[string]ThemeStateTable `yaml:"factorAdjustments"`
	// symbol -> fixed base return
	BaseReturns map[string]float64 `yaml:"baseReturns"`
	// symbol -> theme -> state -> return impact
	ReturnImpacts map[string]ThemeStateTable `yaml:"returnImpacts"`

	Selection SelectionConfig `yaml:"selection"`
	AlphaGrid []float64       `yaml:"alphaGrid"`
	Tolerance ToleranceConfig `yaml:"tolerance"`
	Hedges    HedgeConfig     `yaml:"hedges"`
}

type SecurityConfig struct {
	Symbol    string   `yaml:"symbol"`
	Category  string   `yaml:"category"`
	MaxWeight *float64 `yaml:"maxWeight,omitempty"`
	HoldOnly  bool     `yaml:"holdOnly,omitempty"`
}

func (s SecurityConfig) ToSecurity() domain.Security {
	return domain.Security{
		Symbol:    s.Symbol,
		Category:  domain.AssetCategory(s.Category),
		MaxWeight: s.MaxWeight,
		HoldOnly:  s.HoldOnly,
	}
}

// ThemeStateTable holds one value per (theme, state) pair, keyed by theme tag
// and state name so it reads naturally in yaml.
type ThemeStateTable map[domain.ThemeTag]map[string]float64

// At looks up the table entry for a theme/state pair; absent entries are 0.
func (t ThemeStateTable) At(tag domain.ThemeTag, state domain.ThemeState) float64 {
	states, ok := t[tag]
	if !ok {
		return 0
	}
	return states[state.String()]
}

// RoleWeights are the fixed temporal-role weights, summing to 1 across the
// three roles.
type RoleWeights struct {
	Leading    float64 `yaml:"leading"`
	Concurrent float64 `yaml:"concurrent"`
	Lagging    float64 `yaml:"lagging"`
}

func (r RoleWeights) For(role domain.TemporalRole) float64 {
	switch role {
	case domain.RoleLeading:
		return r.Leading
	case domain.RoleConcurrent:
		return r.Concurrent
	case domain.RoleLagging:
		return r.Lagging
	}
	return 0
}

type IndicatorConfig struct {
	ID                string   `yaml:"id"`
	Theme             string   `yaml:"theme"`
	Role              string   `yaml:"role"`
	Weight            float64  `yaml:"weight"`
	Policy            string   `yaml:"policy"`
	PreferTransformed bool     `yaml:"preferTransformed,omitempty"`
	Inverted          bool     `yaml:"inverted,omitempty"`
	Threshold         float64  `yaml:"threshold,omitempty"`
	TrendWindow       int      `yaml:"trendWindow,omitempty"`
	// goval expression applied at the ingestion boundary to produce the
	// transformed value, e.g. "raw - ma200"
	Transform string `yaml:"transform,omitempty"`
	// legacy key names collapsed to ID during ingestion
	Aliases []string `yaml:"aliases,omitempty"`
}

func (ic IndicatorConfig) ToIndicator() (domain.Indicator, error) {
	policy, err := domain.NewStatePolicy(ic.Policy)
	if err != nil {
		return domain.Indicator{}, fmt.Errorf("indicator %s: %w", ic.ID, err)
	}
	if _, err := domain.ThemeIndex(domain.ThemeTag(ic.Theme)); err != nil {
		return domain.Indicator{}, fmt.Errorf("indicator %s: %w", ic.ID, err)
	}
	role := domain.TemporalRole(ic.Role)
	switch role {
	case domain.RoleLeading, domain.RoleConcurrent, domain.RoleLagging:
	default:
		return domain.Indicator{}, fmt.Errorf("indicator %s: unknown temporal role '%s'", ic.ID, ic.Role)
	}
	return domain.Indicator{
		ID:                ic.ID,
		Theme:             domain.ThemeTag(ic.Theme),
		Role:              role,
		Weight:            ic.Weight,
		PreferTransformed: ic.PreferTransformed,
		Inverted:          ic.Inverted,
		Policy:            policy,
		Threshold:         ic.Threshold,
		TrendWindow:       ic.TrendWindow,
	}, nil
}

type SelectionConfig struct {
	TargetCumulativeProbability float64 `yaml:"targetCumulativeProbability"`
	MinScenarios                int     `yaml:"minScenarios"`
	MaxScenarios                int     `yaml:"maxScenarios"`
	HighProbability             float64 `yaml:"highProbability"`
}

type ToleranceConfig struct {
	TightCorrelation  float64 `yaml:"tightCorrelation"`
	MediumCorrelation float64 `yaml:"mediumCorrelation"`
	TightRegret       float64 `yaml:"tightRegret"`
	MediumRegret      float64 `yaml:"mediumRegret"`
	LooseRegret       float64 `yaml:"looseRegret"`
}

// ForCorrelation maps average candidate correlation to the regret tolerance:
// highly correlated candidates leave little excuse for residual regret.
func (t ToleranceConfig) ForCorrelation(correlation float64) float64 {
	if correlation > t.TightCorrelation {
		return t.TightRegret
	}
	if correlation >= t.MediumCorrelation {
		return t.MediumRegret
	}
	return t.LooseRegret
}

type HedgeConfig struct {
	Weight      float64                            `yaml:"weight"`
	Instruments map[domain.DivergenceSource]string `yaml:"instruments"`
}

// Load reads and validates a yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults fills every tunable threshold left unset. Universe, baseline
// and the factor tables have no defaults - they describe the product, not a
// tuning knob.
func (c *Config) ApplyDefaults() {
	if c.RoleWeights == (RoleWeights{}) {
		c.RoleWeights = RoleWeights{Leading: 0.4, Concurrent: 0.35, Lagging: 0.25}
	}
	if c.Selection.TargetCumulativeProbability == 0 {
		c.Selection.TargetCumulativeProbability = 0.85
	}
	if c.Selection.MinScenarios == 0 {
		c.Selection.MinScenarios = 3
	}
	if c.Selection.MaxScenarios == 0 {
		c.Selection.MaxScenarios = 15
	}
	if c.Selection.HighProbability == 0 {
		c.Selection.HighProbability = 0.10
	}
	if len(c.AlphaGrid) == 0 {
		c.AlphaGrid = []float64{0.3, 0.4, 0.5, 0.6, 0.7}
	}
	if c.Tolerance == (ToleranceConfig{}) {
		c.Tolerance = ToleranceConfig{
			TightCorrelation:  0.7,
			MediumCorrelation: 0.5,
			TightRegret:       0.05,
			MediumRegret:      0.06,
			LooseRegret:       0.08,
		}
	}
	if c.Hedges.Weight == 0 {
		c.Hedges.Weight = 0.10
	}
	if c.Hedges.Instruments == nil {
		c.Hedges.Instruments = map[domain.DivergenceSource]string{
			domain.DivergenceVolatility: "VIXY",
			domain.DivergenceGeography:  "GLD",
			domain.DivergenceAssetClass: "AGG",
		}
	}
	if c.MinCashWeight == 0 {
		c.MinCashWeight = 0.02
	}
}

const weightSumTolerance = 1e-6

func (c *Config) Validate() error {
	if len(c.Universe) == 0 {
		return fmt.Errorf("universe is empty")
	}
	symbols := map[string]bool{}
	for _, sec := range c.Universe {
		if sec.Symbol == "" {
			return fmt.Errorf("universe contains a security with no symbol")
		}
		if symbols[sec.Symbol] {
			return fmt.Errorf("universe contains duplicate symbol %s", sec.Symbol)
		}
		symbols[sec.Symbol] = true
		if sec.MaxWeight != nil && (*sec.MaxWeight <= 0 || *sec.MaxWeight > 1) {
			return fmt.Errorf("security %s has max weight %f outside (0, 1]", sec.Symbol, *sec.MaxWeight)
		}
	}

	if c.CashSymbol == "" {
		return fmt.Errorf("cash symbol is not set")
	}
	if !symbols[c.CashSymbol] {
		return fmt.Errorf("cash symbol %s is not in the universe", c.CashSymbol)
	}

	baselineSum := 0.0
	for symbol, w := range c.Baseline {
		if !symbols[symbol] {
			return fmt.Errorf("baseline references unknown symbol %s", symbol)
		}
		if w < 0 {
			return fmt.Errorf("baseline weight for %s is negative", symbol)
		}
		baselineSum += w
	}
	if math.Abs(baselineSum-1) > weightSumTolerance {
		return fmt.Errorf("baseline weights sum to %f, want 1", baselineSum)
	}

	roleSum := c.RoleWeights.Leading + c.RoleWeights.Concurrent + c.RoleWeights.Lagging
	if math.Abs(roleSum-1) > weightSumTolerance {
		return fmt.Errorf("temporal role weights sum to %f, want 1", roleSum)
	}

	for _, ic := range c.Indicators {
		if _, err := ic.ToIndicator(); err != nil {
			return err
		}
	}

	for symbol := range c.FactorAdjustments {
		if !symbols[symbol] {
			return fmt.Errorf("factor adjustment table references unknown symbol %s", symbol)
		}
	}
	for symbol := range c.ReturnImpacts {
		if !symbols[symbol] {
			return fmt.Errorf("return impact table references unknown symbol %s", symbol)
		}
	}

	if c.Selection.TargetCumulativeProbability <= 0 || c.Selection.TargetCumulativeProbability > 1 {
		return fmt.Errorf("selection target cumulative probability %f outside (0, 1]", c.Selection.TargetCumulativeProbability)
	}
	if c.Selection.MinScenarios < 1 {
		return fmt.Errorf("selection min scenarios must be >= 1, got %d", c.Selection.MinScenarios)
	}
	if c.Selection.MaxScenarios < c.Selection.MinScenarios {
		return fmt.Errorf("selection max scenarios %d < min scenarios %d", c.Selection.MaxScenarios, c.Selection.MinScenarios)
	}

	for _, a := range c.AlphaGrid {
		if a <= 0 || a >= 1 {
			return fmt.Errorf("alpha grid value %f outside (0, 1)", a)
		}
	}

	if c.Hedges.Weight <= 0 || c.Hedges.Weight >= 1 {
		return fmt.Errorf("hedge weight %f outside (0, 1)", c.Hedges.Weight)
	}
	if c.MinCashWeight < 0 || c.MinCashWeight >= 1 {
		return fmt.Errorf("min cash weight %f outside [0, 1)", c.MinCashWeight)
	}

	return nil
}

// Securities materializes the universe in config order.
func (c *Config) Securities() []domain.Security {
	out := make([]domain.Security, 0, len(c.Universe))
	for _, sec := range c.Universe {
		out = append(out, sec.ToSecurity())
	}
	return out
}

// SymbolOrder is the deterministic symbol ordering used for allocation
// vectors: universe order, then any extra symbols (hedges blended in later)
// sorted alphabetically.
func (c *Config) SymbolOrder(extra ...string) []string {
	order := make([]string, 0, len(c.Universe)+len(extra))
	seen := map[string]bool{}
	for _, sec := range c.Universe {
		order = append(order, sec.Symbol)
		seen[sec.Symbol] = true
	}
	extras := []string{}
	for _, symbol := range extra {
		if !seen[symbol] {
			extras = append(extras, symbol)
			seen[symbol] = true
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}

// IndicatorsByTheme groups the static indicator definitions per theme.
func (c *Config) IndicatorsByTheme() (map[domain.ThemeTag][]domain.Indicator, error) {
	out := map[domain.ThemeTag][]domain.Indicator{}
	for _, ic := range c.Indicators {
		ind, err := ic.ToIndicator()
		if err != nil {
			return nil, err
		}
		out[ind.Theme] = append(out[ind.Theme], ind)
	}
	return out, nil
}
