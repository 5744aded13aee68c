package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/insight-platform/internal/common"
	"github.com/suPer8Hu/insight-platform/internal/report"
	"gorm.io/gorm"
)

func validDomain(d string) bool {
	switch d {
	case report.DomainMarketing, report.DomainOperations, report.DomainInsights:
		return true
	}
	return false
}

// ListReports returns the caller's reports for the most recent periods of one
// domain. Large JSON payloads are omitted; use the latest endpoint for those.
func (h *Handler) ListReports(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	domain := c.Param("domain")
	if !validDomain(domain) {
		common.Fail(c, http.StatusBadRequest, 10005, "unknown report domain")
		return
	}
	marketplaceID := c.Query("marketplace_id")
	if marketplaceID == "" {
		common.Fail(c, http.StatusBadRequest, 10006, "marketplace_id required")
		return
	}
	periods, _ := strconv.Atoi(c.Query("periods"))

	reports, err := h.Reports.ListRecent(c.Request.Context(), uid, marketplaceID, domain, periods)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{"reports": reports})
}

// LatestReport returns the newest full report for a classification triple.
func (h *Handler) LatestReport(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	domain := c.Param("domain")
	if !validDomain(domain) {
		common.Fail(c, http.StatusBadRequest, 10005, "unknown report domain")
		return
	}
	marketplaceID := c.Query("marketplace_id")
	adType := c.Query("ad_type")
	reportType := c.Query("report_type")
	reportSource := c.Query("report_source")
	if marketplaceID == "" || adType == "" || reportType == "" || reportSource == "" {
		common.Fail(c, http.StatusBadRequest, 10007, "marketplace_id, ad_type, report_type and report_source required")
		return
	}

	rep, err := h.Reports.Latest(c.Request.Context(), uid, marketplaceID, domain, adType, reportType, reportSource)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40402, "report not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{"report": rep})
}
