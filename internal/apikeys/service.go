// Package apikeys issues and verifies the secrets machine clients use for the
// blog ingestion and telemetry endpoints.
package apikeys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxNameLen = 100

// InvalidKeyMessage is the single answer for unknown, revoked or malformed keys.
const InvalidKeyMessage = "Invalid API key"

type KeyDTO struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	IsActive   bool       `json:"is_active"`
	CreatedBy  string     `json:"created_by"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IssuedKey carries the plain secret, shown exactly once.
type IssuedKey struct {
	KeyDTO
	Key string `json:"key"`
}

type Service interface {
	Authenticate(ctx context.Context, presented string) (*models.APIKey, error)
	Create(ctx context.Context, creatorID uuid.UUID, name string) (*IssuedKey, error)
	List(ctx context.Context) ([]KeyDTO, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("api key repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Authenticate resolves a presented secret to its active key and creator and
// records the use. Inactive creators are rejected like unknown keys.
func (s *service) Authenticate(ctx context.Context, presented string) (*models.APIKey, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, InvalidKeyMessage)
	}
	key, err := s.repo.FindActiveByHash(ctx, security.HashAPIKey(presented))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, InvalidKeyMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load api key")
	}
	if key.CreatedBy == nil || !key.CreatedBy.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, InvalidKeyMessage)
	}

	now := s.now().UTC()
	if err := s.repo.Touch(ctx, key.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "touch api key")
	}
	key.LastUsedAt = &now
	return key, nil
}

func (s *service) Create(ctx context.Context, creatorID uuid.UUID, name string) (*IssuedKey, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, pkgerrors.NewField("name", "Este campo es requerido.")
	case utf8.RuneCountInString(name) > maxNameLen:
		return nil, pkgerrors.NewField("name", fmt.Sprintf("Asegúrese de que este campo no tenga más de %d caracteres.", maxNameLen))
	}

	generated, err := security.GenerateAPIKey()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate api key")
	}
	key := &models.APIKey{
		Name:        name,
		KeyHash:     generated.Hash,
		Prefix:      generated.Prefix,
		IsActive:    true,
		CreatedByID: creatorID,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create api key")
	}
	return &IssuedKey{KeyDTO: toDTO(key), Key: generated.Plain}, nil
}

func (s *service) List(ctx context.Context) ([]KeyDTO, error) {
	keys, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list api keys")
	}
	out := make([]KeyDTO, 0, len(keys))
	for i := range keys {
		out = append(out, toDTO(&keys[i]))
	}
	return out, nil
}

func (s *service) Revoke(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke api key")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "api key not found")
	}
	return nil
}

// FromRequest extracts a key from X-API-Key or an "Authorization: Bearer" header.
func FromRequest(xAPIKey, authorization string) string {
	if key := strings.TrimSpace(xAPIKey); key != "" {
		return key
	}
	if rest, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

func toDTO(k *models.APIKey) KeyDTO {
	dto := KeyDTO{
		ID:         k.ID,
		Name:       k.Name,
		Prefix:     k.Prefix,
		IsActive:   k.IsActive,
		LastUsedAt: k.LastUsedAt,
		CreatedAt:  k.CreatedAt,
	}
	if k.CreatedBy != nil {
		dto.CreatedBy = k.CreatedBy.Email
	}
	return dto
}
