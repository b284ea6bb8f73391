package handlers

import (
	"fmt"
	"net/http"

	"tax-credit-model/internal/api/models"
	"tax-credit-model/internal/grid"
	"tax-credit-model/internal/metrics"
	"tax-credit-model/internal/model"

	"github.com/gin-gonic/gin"
)

const sourceAPI = "api"

// GenerationHandler feeds generation records into the grid
type GenerationHandler struct {
	grid grid.Grid
}

func NewGenerationHandler(g grid.Grid) *GenerationHandler {
	return &GenerationHandler{grid: g}
}

// AddGenerations handles POST /api/v1/generations. The batch is rejected as a
// whole if any record is invalid.
func (h *GenerationHandler) AddGenerations(c *gin.Context) {
	var req models.AddGenerationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if len(req.Generations) == 0 {
		respondError(c, fmt.Errorf("generations is empty: %w", model.ErrInvalidArgument))
		return
	}
	for i, g := range req.Generations {
		if err := grid.ValidateGeneration(g); err != nil {
			respondError(c, fmt.Errorf("generations[%d]: %w", i, err))
			return
		}
	}

	if err := h.grid.AddGenerations(c.Request.Context(), req.Generations); err != nil {
		respondError(c, err)
		return
	}
	metrics.GenerationsIngested.WithLabelValues(sourceAPI).Add(float64(len(req.Generations)))

	c.JSON(http.StatusOK, models.GenerationsResponse{
		Accepted: len(req.Generations),
		Grid:     h.grid.Stats(),
	})
}

// GetGrid handles GET /api/v1/grid
func (h *GenerationHandler) GetGrid(c *gin.Context) {
	c.JSON(http.StatusOK, h.grid.Stats())
}
