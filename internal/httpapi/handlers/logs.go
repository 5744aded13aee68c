package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/insight-platform/internal/common"
	"github.com/suPer8Hu/insight-platform/internal/oplog"
)

func logFilterFromQuery(c *gin.Context, uid uint64) (oplog.Filter, bool) {
	marketplaceID := c.Query("marketplace_id")
	if marketplaceID == "" {
		common.Fail(c, http.StatusBadRequest, 10006, "marketplace_id required")
		return oplog.Filter{}, false
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	f := oplog.Filter{
		UserID:        uid,
		MarketplaceID: marketplaceID,
		PeriodStart:   c.Query("period_start"),
		PeriodEnd:     c.Query("period_end"),
		Category:      c.Query("category"),
		Page:          page,
		PageSize:      pageSize,
	}
	f.Normalize()
	return f, true
}

func (h *Handler) ListChangeLogs(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	f, ok := logFilterFromQuery(c, uid)
	if !ok {
		return
	}

	items, total, err := h.Logs.ChangeLogs(c.Request.Context(), f)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{
		"items":     items,
		"total":     total,
		"page":      f.Page,
		"page_size": f.PageSize,
	})
}

func (h *Handler) ListAuditLogs(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	f, ok := logFilterFromQuery(c, uid)
	if !ok {
		return
	}

	items, total, err := h.Logs.AuditLogs(c.Request.Context(), f)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{
		"items":     items,
		"total":     total,
		"page":      f.Page,
		"page_size": f.PageSize,
	})
}
