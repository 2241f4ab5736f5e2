package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"regimealloc/internal/domain"
	l3_service "regimealloc/internal/service/l3"
)

type optimizeRequest struct {
	// theme tag -> marginal distribution over {weak, neutral, strong}
	Marginals map[string]domain.Marginal `json:"marginals" binding:"required"`
}

type optimizeResponse struct {
	Allocation domain.Allocation      `json:"allocation"`
	Trace      domain.DiagnosticTrace `json:"trace"`
}

func (m ApiHandler) optimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to parse optimize request: %w", err), c, 400)
		return
	}

	marginals := domain.Marginals{}
	for tag, marginal := range req.Marginals {
		marginals[domain.ThemeTag(tag)] = marginal
	}
	if err := marginals.Valid(); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	ctx, _ := domain.NewCtxWithProfile(c.Request.Context())
	resp, err := m.OptimizeService.Optimize(ctx, l3_service.OptimizeInput{
		Marginals: marginals,
	})
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, optimizeResponse{
		Allocation: resp.Allocation,
		Trace:      resp.Trace,
	})
}
