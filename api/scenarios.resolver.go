package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"regimealloc/internal/domain"
	l2_service "regimealloc/internal/service/l2"
)

type scenariosRequest struct {
	Marginals map[string]domain.Marginal `json:"marginals" binding:"required"`
	// also run the selector and mark which scenarios it would keep
	IncludeSelection bool `json:"includeSelection"`
}

type scenariosResponse struct {
	Scenarios             []domain.Scenario `json:"scenarios"`
	SelectedIDs           []int             `json:"selectedIds,omitempty"`
	CumulativeProbability *float64          `json:"cumulativeProbability,omitempty"`
}

// scenarios is a read-only inspection surface: enumerate the 81 joint
// regimes for a supplied marginal set, optionally with the selector's pick.
func (m ApiHandler) scenarios(c *gin.Context) {
	var req scenariosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to parse scenarios request: %w", err), c, 400)
		return
	}

	marginals := domain.Marginals{}
	for tag, marginal := range req.Marginals {
		marginals[domain.ThemeTag(tag)] = marginal
	}

	scenarios, err := l2_service.EnumerateScenarios(marginals)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	out := scenariosResponse{Scenarios: scenarios}
	if req.IncludeSelection {
		selection := l2_service.SelectScenarios(scenarios, m.Cfg.Selection)
		for _, s := range selection.Selected {
			out.SelectedIDs = append(out.SelectedIDs, s.ID)
		}
		out.CumulativeProbability = &selection.CumulativeProbability
	}

	c.JSON(200, out)
}
