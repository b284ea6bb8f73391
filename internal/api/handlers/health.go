package handlers

import (
	"net/http"

	"tax-credit-model/internal/api/models"
	"tax-credit-model/internal/grid"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health
func Health(storage string, g grid.Grid) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "ok",
			Storage: storage,
			Grid:    g.Stats(),
		})
	}
}
