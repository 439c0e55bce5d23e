package usage

import (
	"context"

	"github.com/angelmondragon/iacol-backend/internal/repo"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads and appends usage logs. Rows are never updated.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, log *models.AgentUsageLog) error {
	return r.DB(ctx).Omit("Agent").Create(log).Error
}

type counts struct {
	Total      int64
	Successful int64
}

// Counts aggregates executions of one user, optionally for one agent.
func (r *Repository) Counts(ctx context.Context, userID uuid.UUID, agentID *uuid.UUID) (int64, int64, error) {
	var out counts
	q := r.DB(ctx).
		Model(&models.AgentUsageLog{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) AS successful").
		Where("user_id = ?", userID)
	if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}
	if err := q.Scan(&out).Error; err != nil {
		return 0, 0, err
	}
	return out.Total, out.Successful, nil
}

// Recent returns the newest logs with their agent loaded.
func (r *Repository) Recent(ctx context.Context, userID uuid.UUID, agentID *uuid.UUID, limit int) ([]models.AgentUsageLog, error) {
	rows := []models.AgentUsageLog{}
	q := r.DB(ctx).
		Preload("Agent").
		Where("user_id = ?", userID)
	if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// Feed pages through logs newest first using a (created_at, id) cursor.
func (r *Repository) Feed(ctx context.Context, userID uuid.UUID, agentID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.AgentUsageLog, error) {
	rows := []models.AgentUsageLog{}
	q := r.DB(ctx).
		Preload("Agent").
		Where("user_id = ?", userID)
	if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
