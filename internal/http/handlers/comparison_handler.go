package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rishikarathore0601/rfp/internal/http/handlers/common"
	"github.com/Rishikarathore0601/rfp/internal/service"
)

// ComparisonHandler отвечает за сравнение предложений по RFP.
type ComparisonHandler struct {
	comparison *service.ComparisonService
}

// NewComparisonHandler создаёт экземпляр.
func NewComparisonHandler(comparison *service.ComparisonService) *ComparisonHandler {
	return &ComparisonHandler{comparison: comparison}
}

// Get обрабатывает GET /api/comparison/:rfpId.
func (h *ComparisonHandler) Get(c *gin.Context) {
	rfpID, err := common.ParseUUIDParam(c, "rfpId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.comparison.Compare(c.Request.Context(), rfpID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
