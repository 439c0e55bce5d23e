package entitlements

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists user subscriptions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUserAgent returns the subscription for the pair, or nil when none exists.
func (r *Repository) FindByUserAgent(ctx context.Context, userID, agentID uuid.UUID) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND agent_id = ?", userID, agentID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ActiveAgentIDs lists the agents the user currently holds an active subscription for.
func (r *Repository) ActiveAgentIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.WithContext(ctx).
		Model(&models.UserSubscription{}).
		Where("user_id = ? AND status = ?", userID, enums.SubscriptionStatusActive).
		Order("created_at ASC").
		Pluck("agent_id", &ids).Error
	return ids, err
}

// ListActive returns the user's active subscriptions with their agents preloaded.
func (r *Repository) ListActive(ctx context.Context, userID uuid.UUID) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Preload("Agent.Category").
		Where("user_id = ? AND status = ?", userID, enums.SubscriptionStatusActive).
		Order("created_at ASC").
		Find(&subs).Error
	return subs, err
}

// Upsert inserts or replaces the subscription for (user, agent).
func (r *Repository) Upsert(ctx context.Context, sub *models.UserSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "agent_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "start_date", "end_date", "auto_renew"}),
		}).
		Create(sub).Error
}

// Grant upserts the subscription and returns the stored row.
func (r *Repository) Grant(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error) {
	if err := r.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return r.FindByUserAgent(ctx, sub.UserID, sub.AgentID)
}

// ExpireLapsed marks active subscriptions that ended before now and do not
// auto-renew as expired, returning how many rows changed.
func (r *Repository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.UserSubscription{}).
		Where("status = ? AND auto_renew = ? AND end_date < ?", enums.SubscriptionStatusActive, false, now).
		Update("status", enums.SubscriptionStatusExpired)
	return res.RowsAffected, res.Error
}
