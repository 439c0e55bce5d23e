// Package usage records agent executions reported by the automation engine
// and summarizes them per user.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service interface {
	Log(ctx context.Context, req LogRequest) (*models.AgentUsageLog, error)
	Stats(ctx context.Context, userID, agentID uuid.UUID) (*Stats, error)
	Totals(ctx context.Context, userID uuid.UUID, agentID *uuid.UUID) (Stats, error)
	Recent(ctx context.Context, userID uuid.UUID, agentID *uuid.UUID, limit int) ([]LogDTO, error)
	Feed(ctx context.Context, userID uuid.UUID, agentID *uuid.UUID, params pagination.Params) (*FeedPage, error)
}

type agentFinder interface {
	FindAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type executionObserver interface {
	ExecutionLogged(success bool)
}

type ServiceParams struct {
	Repo    *Repository
	Agents  agentFinder
	Users   userFinder
	Metrics executionObserver
}

type service struct {
	repo    *Repository
	agents  agentFinder
	users   userFinder
	metrics executionObserver
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("usage repository required")
	}
	if p.Agents == nil || p.Users == nil {
		return nil, fmt.Errorf("agent and user lookups required")
	}
	return &service{repo: p.Repo, agents: p.Agents, users: p.Users, metrics: p.Metrics}, nil
}

// Log persists one execution. Every call inserts a row, repeated execution
// ids included. Omitted fields default to empty JSON, zero time and success.
func (s *service) Log(ctx context.Context, req LogRequest) (*models.AgentUsageLog, error) {
	if req.UserID == uuid.Nil {
		return nil, pkgerrors.NewField("user_id", "user_id is required")
	}
	if req.AgentID == uuid.Nil {
		return nil, pkgerrors.NewField("agent_id", "agent_id is required")
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, lookupError(err, "User matching query does not exist.")
	}
	if _, err := s.agents.FindAgent(ctx, req.AgentID); err != nil {
		return nil, lookupError(err, "Agent matching query does not exist.")
	}

	input, err := jsonOrEmpty("input_data", req.InputData)
	if err != nil {
		return nil, err
	}
	output, err := jsonOrEmpty("output_data", req.OutputData)
	if err != nil {
		return nil, err
	}

	row := &models.AgentUsageLog{
		UserID:      req.UserID,
		AgentID:     req.AgentID,
		ExecutionID: req.ExecutionID,
		InputData:   input,
		OutputData:  output,
		Success:     true,
	}
	if req.ExecutionTime != nil {
		row.ExecutionTime = *req.ExecutionTime
	}
	if req.Success != nil {
		row.Success = *req.Success
	}
	if msg := strings.TrimSpace(req.ErrorMessage); msg != "" {
		row.ErrorMessage = &msg
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create usage log")
	}
	if s.metrics != nil {
		s.metrics.ExecutionLogged(row.Success)
	}
	return row, nil
}

// Stats answers not-found only when the agent does not exist.
func (s *service) Stats(ctx context.Context, userID, agentID uuid.UUID) (*Stats, error) {
	if _, err := s.agents.FindAgent(ctx, agentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load agent")
	}
	stats, err := s.Totals(ctx, userID, &agentID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *service) Totals(ctx context.Context, userID uuid.UUID, agentID *uuid.UUID) (Stats, error) {
	total, successful, err := s.repo.Counts(ctx, userID, agentID)
	if err != nil {
		return Stats{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count usage logs")
	}
	return newStats(total, successful), nil
}

func (s *service) Recent(ctx context.Context, userID uuid.UUID, agentID *uuid.UUID, limit int) ([]LogDTO, error) {
	rows, err := s.repo.Recent(ctx, userID, agentID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list usage logs")
	}
	return ToDTOs(rows), nil
}

func (s *service) Feed(ctx context.Context, userID uuid.UUID, agentID *uuid.UUID, params pagination.Params) (*FeedPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.NewField("cursor", "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.Feed(ctx, userID, agentID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list usage logs")
	}

	page := &FeedPage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	page.Logs = ToDTOs(rows)
	return page, nil
}

func lookupError(err error, missing string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeValidation, missing)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup")
}

func jsonOrEmpty(field string, raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return datatypes.JSON("{}"), nil
	}
	if !json.Valid([]byte(trimmed)) {
		return nil, pkgerrors.NewField(field, "invalid JSON")
	}
	return datatypes.JSON(trimmed), nil
}
