package qa

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, t *Turn) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Turn, error) {
	var t Turn
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkGenerating moves a PENDING turn to GENERATING. A turn in any other
// state yields ErrTurnConsumed: the guarded update affecting zero rows is the
// only signal that someone already claimed it.
func (r *Repo) MarkGenerating(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&Turn{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("status", StatusGenerating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTurnConsumed
	}
	return nil
}

// MarkCompleted writes the final answer. Guarded so a terminal turn is never
// overwritten.
func (r *Repo) MarkCompleted(ctx context.Context, id string, answer string) error {
	return r.db.WithContext(ctx).Model(&Turn{}).
		Where("id = ? AND status IN ?", id, []Status{StatusPending, StatusGenerating}).
		Updates(map[string]any{
			"status": StatusCompleted,
			"answer": answer,
		}).Error
}

// MarkFailed leaves the answer null. The status guard makes a second call for
// the same id a no-op, so failure recovery is idempotent.
func (r *Repo) MarkFailed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&Turn{}).
		Where("id = ? AND status IN ?", id, []Status{StatusPending, StatusGenerating}).
		Update("status", StatusFailed).Error
}

// ListByReport returns every turn for the (user, marketplace, report) triple,
// oldest first, regardless of status.
func (r *Repo) ListByReport(ctx context.Context, userID uint64, marketplaceID, reportID string) ([]Turn, error) {
	var turns []Turn
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND user_id = ? AND marketplace_id = ?", reportID, userID, marketplaceID).
		Order("created_at ASC, id ASC").
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// RecentCompletedBefore returns up to limit completed, answered turns on the
// report, excluding excludeID, oldest -> newest. Used to build the sliding
// context window.
func (r *Repo) RecentCompletedBefore(ctx context.Context, reportID, excludeID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 5
	}
	var turns []Turn
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND id <> ? AND status = ? AND answer IS NOT NULL",
			reportID, excludeID, StatusCompleted).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, err
	}

	// reverse to chronological order for the model
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
