package handlers

import (
	"net/http"

	"tax-credit-model/internal/api/models"
	"tax-credit-model/internal/model"

	"github.com/gin-gonic/gin"
)

// respondError maps a domain error onto its status code and error body
func respondError(c *gin.Context, err error) {
	c.JSON(model.StatusCode(err), models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    model.ErrorCode(err),
			Message: err.Error(),
		},
	})
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}
