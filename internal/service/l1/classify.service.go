package l1_service

import (
	"regimealloc/internal/config"
	"regimealloc/internal/domain"
)

// ClassifyThemes runs the indicator-to-regime classification for all four
// themes against one set of observations. Themes come back in canonical
// order. Themes with no configured indicators score 0 / neutral.
func ClassifyThemes(cfg *config.Config, observations map[string]domain.IndicatorObservation) ([]domain.ThemeScore, error) {
	byTheme, err := cfg.IndicatorsByTheme()
	if err != nil {
		return nil, err
	}

	scores := make([]domain.ThemeScore, 0, len(domain.ThemeOrder))
	for _, tag := range domain.ThemeOrder {
		scores = append(scores, AggregateTheme(AggregateThemeInput{
			Tag:          tag,
			Indicators:   byTheme[tag],
			Observations: observations,
			RoleWeights:  cfg.RoleWeights,
		}))
	}
	return scores, nil
}
