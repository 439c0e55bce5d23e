// Package automotive stores the address and opening hours of a workshop
// configured behind the automotive_info capability.
package automotive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/iacol-backend/internal/configurations"
	"github.com/angelmondragon/iacol-backend/internal/entitlements"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const maxAddressLen = 255

// Info is the read shape; Schedule prefills the six-field form.
type Info struct {
	Address       string     `json:"address"`
	BusinessHours Hours      `json:"business_hours"`
	Schedule      Schedule   `json:"schedule"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// Input is a full write.
type Input struct {
	Address string `json:"address"`
	Schedule
}

type Service interface {
	Get(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*Info, error)
	Put(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, input Input) (*Info, error)
}

type scoper interface {
	Scope(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, capability enums.Capability) (*configurations.Scope, error)
}

type service struct {
	repo   *Repository
	scoper scoper
}

func NewService(repo *Repository, scoper scoper) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("automotive repository required")
	}
	if scoper == nil {
		return nil, fmt.Errorf("configuration scoper required")
	}
	return &service{repo: repo, scoper: scoper}, nil
}

// Get returns an empty Info when nothing was saved yet.
func (s *service) Get(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID) (*Info, error) {
	sc, err := s.scoper.Scope(ctx, viewer, agentID, enums.CapabilityAutomotiveInfo)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.Find(ctx, sc.ConfigurationID())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load automotive info")
	}
	return toInfo(row), nil
}

func (s *service) Put(ctx context.Context, viewer entitlements.Viewer, agentID uuid.UUID, input Input) (*Info, error) {
	sc, err := s.scoper.Scope(ctx, viewer, agentID, enums.CapabilityAutomotiveInfo)
	if err != nil {
		return nil, err
	}

	input.Address = strings.TrimSpace(input.Address)
	input.Schedule = trimSchedule(input.Schedule)

	errs := pkgerrors.FieldErrors{}
	if input.Address == "" {
		errs.Add("address", "Este campo es obligatorio.")
	} else if utf8.RuneCountInString(input.Address) > maxAddressLen {
		errs.Add("address", fmt.Sprintf("Máximo %d caracteres.", maxAddressLen))
	}
	input.Schedule.validate(errs.Add)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(input.Schedule.Compress())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode business hours")
	}
	row := &models.AutomotiveCenterInfo{
		ConfigurationID: sc.ConfigurationID(),
		Address:         input.Address,
		BusinessHours:   datatypes.JSON(encoded),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save automotive info")
	}
	saved, err := s.repo.Find(ctx, sc.ConfigurationID())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload automotive info")
	}
	return toInfo(saved), nil
}

func trimSchedule(s Schedule) Schedule {
	return Schedule{
		WeekdayOpen:   strings.TrimSpace(s.WeekdayOpen),
		WeekdayClose:  strings.TrimSpace(s.WeekdayClose),
		SaturdayOpen:  strings.TrimSpace(s.SaturdayOpen),
		SaturdayClose: strings.TrimSpace(s.SaturdayClose),
		SundayOpen:    strings.TrimSpace(s.SundayOpen),
		SundayClose:   strings.TrimSpace(s.SundayClose),
	}
}

func toInfo(row *models.AutomotiveCenterInfo) *Info {
	if row == nil {
		return &Info{BusinessHours: Hours{}}
	}
	hours := decodeHours(row.BusinessHours)
	updated := row.UpdatedAt
	return &Info{
		Address:       row.Address,
		BusinessHours: hours,
		Schedule:      ScheduleFrom(hours),
		UpdatedAt:     &updated,
	}
}
