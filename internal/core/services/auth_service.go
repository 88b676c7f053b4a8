package services

import (
	"context"
	"errors"
	"log"
	"time"

	"booknet/internal/adapters/persistence/models"
	"booknet/internal/adapters/persistence/repositories"
	"booknet/internal/config"
	"booknet/internal/core/domain"
	"booknet/internal/pkg/jwt"
	"booknet/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService orchestrates registration, login and account activation
type AuthService struct {
	userRepo   repositories.UserRepository
	roleRepo   repositories.RoleRepository
	activation *ActivationService
	cfg        *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	activation *ActivationService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		activation: activation,
		cfg:        cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Firstname   string
	Lastname    string
	DateOfBirth *time.Time
	Email       string
	Password    string
}

// Register creates a disabled user with the default USER role and
// dispatches an activation code. The account stays disabled until the
// code is consumed.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) error {
	userRole, err := s.roleRepo.GetByName(ctx, models.RoleUser)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRoleNotConfigured
		}
		return err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateIdentity
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		Firstname:     input.Firstname,
		Lastname:      input.Lastname,
		DateOfBirth:   input.DateOfBirth,
		Email:         input.Email,
		Password:      hashed,
		Enabled:       false,
		AccountLocked: false,
		Roles:         []models.Role{*userRole},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique index closes the race the up-front check leaves open
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateIdentity
		}
		return err
	}

	if err := s.activation.SendActivationEmail(ctx, user); err != nil {
		return err
	}

	log.Printf("User registered: %s (id %d)", user.Email, user.ID)
	return nil
}

// Authenticate verifies credentials and issues a session token carrying
// the user's display name. Unknown email and wrong password produce the
// same error so callers learn nothing about account existence.
func (s *AuthService) Authenticate(ctx context.Context, email, pass string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !password.Verify(pass, user.Password) {
		return "", nil, domain.ErrInvalidCredentials
	}

	if !user.Enabled {
		return "", nil, domain.ErrAccountDisabled
	}

	if user.AccountLocked {
		return "", nil, domain.ErrAccountLocked
	}

	token, err := jwt.Generate(
		user.ID,
		user.Email,
		user.FullName(),
		user.RoleNames(),
		s.cfg.Token.Secret,
		s.cfg.Token.TTLMinutes,
	)
	if err != nil {
		return "", nil, err
	}

	log.Printf("User logged in: %s", user.Email)
	return token, user, nil
}

// ActivateAccount consumes an activation code
func (s *AuthService) ActivateAccount(ctx context.Context, code string) error {
	_, err := s.activation.Consume(ctx, code)
	return err
}
