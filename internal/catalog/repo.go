package catalog

import (
	"context"
	"strings"

	"github.com/angelmondragon/iacol-backend/internal/repo"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/angelmondragon/iacol-backend/pkg/visibility"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists agents and agent categories.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListFilter selects one listing surface page.
type ListFilter struct {
	Surface visibility.Surface
	Staff   bool
	Search  string
	Page    pagination.Page
}

// FindAgent loads an agent with its category.
func (r *Repository) FindAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	if err := r.DB(ctx).Preload("Category").First(&agent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

// IsAllowListed reports whether the user is on the agent's allow-list.
func (r *Repository) IsAllowListed(ctx context.Context, agentID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Table("agent_allowed_users").
		Where("agent_id = ? AND user_id = ?", agentID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListAgents returns one page of a listing surface ordered by name, plus the total.
func (r *Repository) ListAgents(ctx context.Context, filter ListFilter) ([]models.Agent, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_active = ?", true)
		switch filter.Surface {
		case visibility.SurfaceSolutions:
			db = db.Where("show_in_solutions = ?", true)
		default:
			if !filter.Staff {
				db = db.Where("show_in_agents = ?", true)
			}
		}
		if term := strings.TrimSpace(filter.Search); term != "" {
			like := repo.ContainsPattern(strings.ToLower(term))
			db = db.Where("lower(name) LIKE ?"+repo.LikeEscape+" OR lower(description) LIKE ?"+repo.LikeEscape, like, like)
		}
		return db
	}

	var total int64
	if err := r.DB(ctx).Model(&models.Agent{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	agents := []models.Agent{}
	err := r.DB(ctx).
		Scopes(scope, filter.Page.Scope).
		Preload("Category").
		Order("name ASC").
		Find(&agents).Error
	return agents, total, err
}

// ListAll returns every agent for staff tooling, newest first.
func (r *Repository) ListAll(ctx context.Context, page pagination.Page) ([]models.Agent, int64, error) {
	var total int64
	if err := r.DB(ctx).Model(&models.Agent{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	agents := []models.Agent{}
	err := r.DB(ctx).
		Preload("Category").
		Order("created_at DESC").
		Scopes(page.Scope).
		Find(&agents).Error
	return agents, total, err
}

// ListActive returns every active agent ordered by price; used by the plans page.
func (r *Repository) ListActive(ctx context.Context) ([]models.Agent, error) {
	agents := []models.Agent{}
	err := r.DB(ctx).
		Preload("Category").
		Where("is_active = ?", true).
		Order("price ASC, name ASC").
		Find(&agents).Error
	return agents, err
}

// ListSolutions returns every agent published on the public solutions surface.
func (r *Repository) ListSolutions(ctx context.Context) ([]models.Agent, error) {
	agents := []models.Agent{}
	err := r.DB(ctx).
		Where("is_active = ? AND show_in_solutions = ?", true, true).
		Order("updated_at DESC").
		Find(&agents).Error
	return agents, err
}

func (r *Repository) CreateAgent(ctx context.Context, agent *models.Agent) error {
	return r.DB(ctx).Omit("AllowedUsers").Create(agent).Error
}

func (r *Repository) SaveAgent(ctx context.Context, agent *models.Agent) error {
	return r.DB(ctx).Omit("Category", "AllowedUsers").Save(agent).Error
}

// SetAllowedUsers replaces the agent's allow-list.
func (r *Repository) SetAllowedUsers(ctx context.Context, agent *models.Agent, userIDs []uuid.UUID) error {
	users := make([]models.User, 0, len(userIDs))
	for _, id := range userIDs {
		users = append(users, models.User{ID: id})
	}
	return r.DB(ctx).Model(agent).Omit("AllowedUsers.*").Association("AllowedUsers").Replace(users)
}

func (r *Repository) AllowedUserIDs(ctx context.Context, agentID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.DB(ctx).
		Table("agent_allowed_users").
		Where("agent_id = ?", agentID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *Repository) CountUsers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.AgentCategory, error) {
	var category models.AgentCategory
	if err := r.DB(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.AgentCategory, error) {
	categories := []models.AgentCategory{}
	err := r.DB(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *Repository) CreateCategory(ctx context.Context, category *models.AgentCategory) error {
	return r.DB(ctx).Create(category).Error
}
