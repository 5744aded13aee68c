package oplog

import (
	"time"

	"gorm.io/datatypes"
)

// ChangeLog records week-over-week dimension changes surfaced by the
// operations reports.
type ChangeLog struct {
	ID            string         `gorm:"primaryKey;size:26" json:"id"`
	UserID        uint64         `gorm:"not null;index:idx_changelog_lookup,priority:1" json:"-"`
	MarketplaceID string         `gorm:"type:varchar(20);not null;index:idx_changelog_lookup,priority:2" json:"marketplace_id"`
	PeriodStart   datatypes.Date `gorm:"not null" json:"period_start"`
	PeriodEnd     datatypes.Date `gorm:"not null" json:"period_end"`
	Category      string         `gorm:"type:varchar(50);not null;index" json:"category"`
	Content       datatypes.JSON `gorm:"type:json;not null" json:"content"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (ChangeLog) TableName() string { return "operations_change_logs" }

// AuditLog records operator actions taken during a reporting period.
type AuditLog struct {
	ID            string         `gorm:"primaryKey;size:26" json:"id"`
	UserID        uint64         `gorm:"not null;index:idx_auditlog_lookup,priority:1" json:"-"`
	MarketplaceID string         `gorm:"type:varchar(20);not null;index:idx_auditlog_lookup,priority:2" json:"marketplace_id"`
	PeriodStart   datatypes.Date `gorm:"not null" json:"period_start"`
	PeriodEnd     datatypes.Date `gorm:"not null" json:"period_end"`
	Category      string         `gorm:"type:varchar(50);not null;index" json:"category"`
	Content       datatypes.JSON `gorm:"type:json;not null" json:"content"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (AuditLog) TableName() string { return "operations_audit_logs" }
