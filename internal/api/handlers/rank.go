package handlers

import (
	"net/http"

	"tax-credit-model/internal/analysis"
	"tax-credit-model/internal/api/models"
	"tax-credit-model/internal/model"

	"github.com/gin-gonic/gin"
)

type rankQuery struct {
	Limit int `form:"limit" binding:"min=0"`
}

// RankSimulations handles GET /api/v1/simulations/rank
func (h *SimulationHandler) RankSimulations(c *gin.Context) {
	var q rankQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	runs, err := h.store.ListSimulationStates(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	states := make([]*model.SimulationState, 0, len(runs))
	for _, r := range runs {
		st, err := h.store.GetSimulationState(ctx, r.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		states = append(states, st)
	}

	ranked := analysis.RankByCredit(states)
	if q.Limit > 0 && len(ranked) > q.Limit {
		ranked = ranked[:q.Limit]
	}
	rankings := make([]models.Ranking, 0, len(ranked))
	for i, s := range ranked {
		rankings = append(rankings, models.Ranking{Rank: i + 1, RunStats: s})
	}
	c.JSON(http.StatusOK, models.RankResponse{Rankings: rankings})
}
