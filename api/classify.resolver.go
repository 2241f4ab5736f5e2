package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"regimealloc/internal/domain"
	l1_service "regimealloc/internal/service/l1"
)

type classifyRequest struct {
	// canonical indicator id -> observation
	Observations map[string]observationInput `json:"observations" binding:"required"`
}

type observationInput struct {
	Raw         *float64                `json:"raw"`
	Transformed *float64                `json:"transformed"`
	Bands       *domain.PercentileBands `json:"bands"`
	History     []float64               `json:"history"`
}

type classifyResponse struct {
	Themes []themeScoreOutput `json:"themes"`
}

type themeScoreOutput struct {
	Theme         string                          `json:"theme"`
	Score         float64                         `json:"score"`
	State         int                             `json:"state"`
	StateLabel    string                          `json:"stateLabel"`
	LowConfidence []domain.LowConfidenceIndicator `json:"lowConfidence,omitempty"`
}

func (m ApiHandler) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to parse classify request: %w", err), c, 400)
		return
	}

	observations := map[string]domain.IndicatorObservation{}
	for id, obs := range req.Observations {
		observations[id] = domain.IndicatorObservation{
			IndicatorID: id,
			Raw:         obs.Raw,
			Transformed: obs.Transformed,
			Bands:       obs.Bands,
			History:     obs.History,
		}
	}

	scores, err := l1_service.ClassifyThemes(m.Cfg, observations)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := classifyResponse{}
	for _, score := range scores {
		out.Themes = append(out.Themes, themeScoreOutput{
			Theme:         string(score.Tag),
			Score:         score.Score,
			State:         int(score.State),
			StateLabel:    score.State.String(),
			LowConfidence: score.LowConfidence,
		})
	}

	c.JSON(200, out)
}
