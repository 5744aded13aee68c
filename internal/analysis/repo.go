package analysis

import (
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

func (r *Repo) Create(ctx context.Context, res *DimensionResult) error {
	return r.db.WithContext(ctx).Create(res).Error
}

// LatestPayload returns the newest payload for the dimension combination.
// ok=false is the empty state: nothing has been produced yet, which is not an
// error.
func (r *Repo) LatestPayload(ctx context.Context, userID uint64, marketplaceID, role, dimensionType string) (datatypes.JSON, bool, error) {
	var rec DimensionResult
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND marketplace_id = ? AND role = ? AND dimension_type = ?",
			userID, marketplaceID, role, dimensionType).
		Order("id DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rec.DataPayload, true, nil
}
