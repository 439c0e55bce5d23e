package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/iacol-backend/internal/users"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/db"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/iacol-backend/pkg/errors"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
	"github.com/angelmondragon/iacol-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	welcomeSubject = "Bienvenido a IACOL"
	welcomeBody    = "Hola %s,\n\nTu cuenta en IACOL está lista. Explora el catálogo de agentes y configura tu primera automatización.\n"
)

type registerUsers interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type welcomeMailer interface {
	SendEmail(ctx context.Context, subject, message string, recipients ...string) error
}

// RegisterService creates self-service accounts.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	Users          registerUsers
	Mailer         welcomeMailer
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type registerService struct {
	users       registerUsers
	mailer      welcomeMailer
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &registerService{
		users:       params.Users,
		mailer:      params.Mailer,
		passwordCfg: params.PasswordConfig,
		logg:        logg,
	}, nil
}

// Register creates a regular user and schedules the welcome email. A failure
// to enqueue the email is logged and does not fail the signup.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.NewField("email", "email is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         enums.UserRoleUser,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	if s.mailer != nil {
		name := user.FirstName
		if name == "" {
			name = user.Email
		}
		if err := s.mailer.SendEmail(ctx, welcomeSubject, fmt.Sprintf(welcomeBody, name), user.Email); err != nil {
			s.logg.Error(s.logg.WithUserID(ctx, user.ID.String()), "enqueue welcome email failed", err)
		}
	}
	return user, nil
}
