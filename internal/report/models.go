package report

import (
	"time"

	"gorm.io/datatypes"
)

// Report domains. Stored as plain strings; the classification triple below is
// open vocabulary by design and must not be constrained to an enum.
const (
	DomainMarketing  = "marketing"
	DomainOperations = "operations"
	DomainInsights   = "insights"
)

// Report is one periodic analytics report. Rows are written by an external
// ingestion pipeline and are read-only here.
type Report struct {
	ID     string `gorm:"primaryKey;size:26" json:"id"`
	Domain string `gorm:"type:varchar(20);not null;index:uniq_report_identity,unique,priority:1" json:"domain"`

	UserID        uint64 `gorm:"not null;index:uniq_report_identity,unique,priority:2;index:idx_report_lookup,priority:1" json:"-"`
	MarketplaceID string `gorm:"type:varchar(20);not null;index:uniq_report_identity,unique,priority:3;index:idx_report_lookup,priority:2" json:"marketplace_id"`

	PeriodStart datatypes.Date `gorm:"not null;index:uniq_report_identity,unique,priority:4" json:"period_start"`
	PeriodEnd   datatypes.Date `gorm:"not null;index:uniq_report_identity,unique,priority:5" json:"period_end"`
	Week        string         `gorm:"type:varchar(10)" json:"week"`

	// open-ended classification triple
	AdType       string `gorm:"type:varchar(50);not null;index:uniq_report_identity,unique,priority:6" json:"ad_type"`
	ReportType   string `gorm:"type:varchar(50);not null;index:uniq_report_identity,unique,priority:7" json:"report_type"`
	ReportSource string `gorm:"type:varchar(50);not null;index:uniq_report_identity,unique,priority:8" json:"report_source"`

	// McpData is the context blob grounding the QA engine. Always a JSON
	// object when present.
	McpData   datatypes.JSON `gorm:"type:json" json:"mcp_data,omitempty"`
	Kpi       datatypes.JSON `gorm:"type:json" json:"kpi,omitempty"`
	Diagnosis datatypes.JSON `gorm:"type:json" json:"diagnosis,omitempty"`

	PdfPath *string `gorm:"type:varchar(512)" json:"pdf_path"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Report) TableName() string { return "reports" }
