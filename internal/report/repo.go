package report

import (
	"bytes"
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, rep *Report) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

// reportMetaColumns excludes the large JSON payloads from list responses.
const reportMetaColumns = "id, domain, user_id, marketplace_id, period_start, period_end, " +
	"week, ad_type, report_type, report_source, pdf_path, created_at, updated_at"

// ListRecent returns the reports belonging to the caller's most recent
// periodLimit distinct reporting periods, newest period first.
func (r *Repo) ListRecent(ctx context.Context, userID uint64, marketplaceID, domain string, periodLimit int) ([]Report, error) {
	if periodLimit <= 0 {
		periodLimit = 4
	}

	type period struct {
		PeriodStart datatypes.Date
		PeriodEnd   datatypes.Date
	}
	var periods []period
	err := r.db.WithContext(ctx).Model(&Report{}).
		Select("period_start, period_end").
		Where("user_id = ? AND marketplace_id = ? AND domain = ?", userID, marketplaceID, domain).
		Group("period_start, period_end").
		Order("period_start DESC").
		Limit(periodLimit).
		Scan(&periods).Error
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return []Report{}, nil
	}

	q := r.db.WithContext(ctx).
		Select(reportMetaColumns).
		Where("user_id = ? AND marketplace_id = ? AND domain = ?", userID, marketplaceID, domain)

	scope := r.db.Session(&gorm.Session{NewDB: true})
	periodFilter := scope.Where("1 = 0")
	for _, p := range periods {
		periodFilter = periodFilter.Or(scope.Where("period_start = ? AND period_end = ?", p.PeriodStart, p.PeriodEnd))
	}

	var reports []Report
	if err := q.Where(periodFilter).Order("period_start DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// Latest returns the newest full report (payloads included) matching the
// classification triple, or gorm.ErrRecordNotFound.
func (r *Repo) Latest(ctx context.Context, userID uint64, marketplaceID, domain, adType, reportType, reportSource string) (*Report, error) {
	var rep Report
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND marketplace_id = ? AND domain = ?", userID, marketplaceID, domain).
		Where("ad_type = ? AND report_type = ? AND report_source = ?", adType, reportType, reportSource).
		Order("period_start DESC").
		First(&rep).Error
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Context returns the report's context blob and domain. ok is false when the
// report does not exist or carries no analyzable context.
func (r *Repo) Context(ctx context.Context, reportID string) (datatypes.JSON, string, bool, error) {
	var rep Report
	err := r.db.WithContext(ctx).
		Select("id, domain, mcp_data").
		Where("id = ?", reportID).
		First(&rep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", false, nil
		}
		return nil, "", false, err
	}
	if len(rep.McpData) == 0 || bytes.Equal(rep.McpData, []byte("null")) {
		return nil, "", false, nil
	}
	return rep.McpData, rep.Domain, true, nil
}
