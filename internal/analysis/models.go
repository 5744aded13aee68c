package analysis

import (
	"time"

	"gorm.io/datatypes"
)

// Target roles a dimension result is rendered for.
const (
	RoleBoss    = "BOSS"
	RoleAnalyst = "ANALYST"
	RoleOps     = "OPS"
)

// Dimension types produced by the analysis pipeline.
const (
	DimensionKPIMetrics          = "KPI_METRICS"
	DimensionAnalystInsights     = "ANALYST_INSIGHTS"
	DimensionCoveragePrecision   = "COVERAGE_PRECISION"
	DimensionAIRevenueSimulation = "AI_REVENUE_SIMULATION"
	DimensionDecisionCenter      = "DECISION_CENTER"
)

func ValidRole(role string) bool {
	switch role {
	case RoleBoss, RoleAnalyst, RoleOps:
		return true
	}
	return false
}

func ValidDimension(dimensionType string) bool {
	switch dimensionType {
	case DimensionKPIMetrics, DimensionAnalystInsights, DimensionCoveragePrecision,
		DimensionAIRevenueSimulation, DimensionDecisionCenter:
		return true
	}
	return false
}

// DimensionResult is one per-dimension slice of an analysis run. Ids are
// ULIDs, so descending primary key order is descending time order.
type DimensionResult struct {
	ID            string `gorm:"primaryKey;size:26" json:"id"`
	UserID        uint64 `gorm:"not null;index:uniq_analysis_identity,unique,priority:1;index:idx_analysis_lookup,priority:1" json:"-"`
	MarketplaceID string `gorm:"type:varchar(20);not null;index:uniq_analysis_identity,unique,priority:2;index:idx_analysis_lookup,priority:2" json:"marketplace_id"`
	Role          string `gorm:"type:varchar(20);not null;index:uniq_analysis_identity,unique,priority:3;index:idx_analysis_lookup,priority:3" json:"role"`

	PeriodStart datatypes.Date `gorm:"not null;index:uniq_analysis_identity,unique,priority:4" json:"period_start"`
	PeriodEnd   datatypes.Date `gorm:"not null;index:uniq_analysis_identity,unique,priority:5" json:"period_end"`

	DimensionType string `gorm:"type:varchar(50);not null;index:uniq_analysis_identity,unique,priority:6" json:"dimension_type"`

	// DataPayload is always a JSON object when present.
	DataPayload datatypes.JSON `gorm:"type:json;not null" json:"data_payload"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DimensionResult) TableName() string { return "analysis_dimension_results" }
