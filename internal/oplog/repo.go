package oplog

import (
	"context"

	"gorm.io/gorm"
)

type Filter struct {
	UserID        uint64
	MarketplaceID string
	PeriodStart   string // yyyy-mm-dd, optional
	PeriodEnd     string // yyyy-mm-dd, optional
	Category      string // optional
	Page          int
	PageSize      int
}

func (f *Filter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	q = q.Where("user_id = ? AND marketplace_id = ?", f.UserID, f.MarketplaceID)
	if f.PeriodStart != "" {
		q = q.Where("period_start >= ?", f.PeriodStart)
	}
	if f.PeriodEnd != "" {
		q = q.Where("period_end <= ?", f.PeriodEnd)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	return q
}

// ChangeLogs returns one page of change logs plus the unpaged total.
func (r *Repo) ChangeLogs(ctx context.Context, f Filter) ([]ChangeLog, int64, error) {
	f.Normalize()

	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&ChangeLog{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []ChangeLog
	err := r.applyFilter(r.db.WithContext(ctx), f).
		Order("created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// AuditLogs returns one page of audit logs plus the unpaged total.
func (r *Repo) AuditLogs(ctx context.Context, f Filter) ([]AuditLog, int64, error) {
	f.Normalize()

	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&AuditLog{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []AuditLog
	err := r.applyFilter(r.db.WithContext(ctx), f).
		Order("created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
