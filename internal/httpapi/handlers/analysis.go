package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/insight-platform/internal/analysis"
	"github.com/suPer8Hu/insight-platform/internal/common"
)

type analysisLatestReq struct {
	MarketplaceID string `json:"marketplace_id" binding:"required"`
	Role          string `json:"role" binding:"required"`
	DimensionType string `json:"dimension_type" binding:"required"`
}

// LatestAnalysis returns the newest analysis payload for one dimension
// combination. No data yet is an empty state, not an error: 200 with a null
// payload so clients can render it without special-casing.
func (h *Handler) LatestAnalysis(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req analysisLatestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if !analysis.ValidRole(req.Role) {
		common.Fail(c, http.StatusBadRequest, 10012, "unknown analysis role")
		return
	}
	if !analysis.ValidDimension(req.DimensionType) {
		common.Fail(c, http.StatusBadRequest, 10013, "unknown analysis dimension")
		return
	}

	payload, _, err := h.Analysis.LatestPayload(c.Request.Context(), uid, req.MarketplaceID, req.Role, req.DimensionType)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	// payload is nil in the empty state and marshals to null
	common.OK(c, gin.H{"payload": payload})
}
