// Package subscriptions lets staff grant and amend user subscriptions to agents.
// Billing lives outside this service; these writes are the only way statuses change.
package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GrantInput is the staff payload for creating or replacing a subscription.
type GrantInput struct {
	UserID    uuid.UUID  `json:"user_id" validate:"required"`
	AgentID   uuid.UUID  `json:"agent_id" validate:"required"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	AutoRenew bool       `json:"auto_renew"`
}

type SubscriptionDTO struct {
	ID        uuid.UUID                `json:"id"`
	UserID    uuid.UUID                `json:"user_id"`
	AgentID   uuid.UUID                `json:"agent_id"`
	Status    enums.SubscriptionStatus `json:"status"`
	StartDate time.Time                `json:"start_date"`
	EndDate   time.Time                `json:"end_date"`
	AutoRenew bool                     `json:"auto_renew"`
	CreatedAt time.Time                `json:"created_at"`
}

type Service interface {
	Grant(ctx context.Context, input GrantInput) (*SubscriptionDTO, error)
}

type store interface {
	Grant(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type agentFinder interface {
	FindAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error)
}

type ServiceParams struct {
	Store  store
	Users  userFinder
	Agents agentFinder
}

type service struct {
	store  store
	users  userFinder
	agents agentFinder
	now    func() time.Time
}

// defaultTerm is applied when a grant omits its end date.
const defaultTerm = 30 * 24 * time.Hour

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("subscription store required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if params.Agents == nil {
		return nil, fmt.Errorf("agent finder required")
	}
	return &service{store: params.Store, users: params.Users, agents: params.Agents, now: time.Now}, nil
}

func (s *service) Grant(ctx context.Context, input GrantInput) (*SubscriptionDTO, error) {
	fields := pkgerrors.FieldErrors{}

	status := enums.SubscriptionStatusActive
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, err := enums.ParseSubscriptionStatus(raw)
		if err != nil {
			fields.Add("status", fmt.Sprintf("Escoja una opción válida. %s no es una de las opciones disponibles.", raw))
		}
		status = parsed
	}

	start := s.now().UTC()
	if input.StartDate != nil {
		start = input.StartDate.UTC()
	}
	end := start.Add(defaultTerm)
	if input.EndDate != nil {
		end = input.EndDate.UTC()
	}
	if !end.After(start) {
		fields.Add("end_date", "La fecha de fin debe ser posterior a la fecha de inicio.")
	}

	if err := s.exists(ctx, "user_id", input.UserID, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.users.FindByID(ctx, id)
		return err
	}, fields); err != nil {
		return nil, err
	}
	if err := s.exists(ctx, "agent_id", input.AgentID, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.agents.FindAgent(ctx, id)
		return err
	}, fields); err != nil {
		return nil, err
	}

	if err := fields.Err(); err != nil {
		return nil, err
	}

	saved, err := s.store.Grant(ctx, &models.UserSubscription{
		UserID:    input.UserID,
		AgentID:   input.AgentID,
		Status:    status,
		StartDate: start,
		EndDate:   end,
		AutoRenew: input.AutoRenew,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "grant subscription")
	}
	return toDTO(saved), nil
}

// exists records a field error for a missing reference and returns only
// unexpected lookup failures.
func (s *service) exists(ctx context.Context, field string, id uuid.UUID, find func(context.Context, uuid.UUID) error, fields pkgerrors.FieldErrors) error {
	if id == uuid.Nil {
		fields.Add(field, "Este campo es requerido.")
		return nil
	}
	err := find(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		fields.Add(field, fmt.Sprintf("Clave primaria \"%s\" inválida - objeto no existe.", id))
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+strings.TrimSuffix(field, "_id"))
	}
}

func toDTO(sub *models.UserSubscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	return &SubscriptionDTO{
		ID:        sub.ID,
		UserID:    sub.UserID,
		AgentID:   sub.AgentID,
		Status:    sub.Status,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
		AutoRenew: sub.AutoRenew,
		CreatedAt: sub.CreatedAt,
	}
}
