package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"booknet/internal/adapters/persistence/models"
	"booknet/internal/adapters/persistence/repositories"
	"booknet/internal/config"
	"booknet/internal/core/domain"

	"gorm.io/gorm"
)

const activationEmailSubject = "account activation"

// ActivationService manages the activation-code lifecycle: issuing
// short-lived numeric codes, dispatching them by email and consuming them
// to enable accounts.
type ActivationService struct {
	tokenRepo repositories.ActivationTokenRepository
	userRepo  repositories.UserRepository
	mailer    Mailer
	cfg       *config.Config
}

// NewActivationService creates a new activation service
func NewActivationService(
	tokenRepo repositories.ActivationTokenRepository,
	userRepo repositories.UserRepository,
	mailer Mailer,
	cfg *config.Config,
) *ActivationService {
	return &ActivationService{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		mailer:    mailer,
		cfg:       cfg,
	}
}

// GenerateCode draws length independent uniformly-random decimal digits
// from crypto/rand. The code is the sole proof of email ownership, so a
// general-purpose PRNG is not acceptable here.
func GenerateCode(length int) (string, error) {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%d", n.Int64())
	}
	return sb.String(), nil
}

// IssueFor creates and persists a new activation token for the user.
// Earlier tokens are not revoked: any unexpired, unconsumed code stays
// valid if presented.
func (s *ActivationService) IssueFor(ctx context.Context, user *models.User) (*models.ActivationToken, error) {
	code, err := GenerateCode(s.cfg.Activation.CodeLength)
	if err != nil {
		return nil, err
	}

	token := &models.ActivationToken{
		Code:      code,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.Activation.TTLMinutes) * time.Minute),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	return token, nil
}

// SendActivationEmail issues a fresh token and dispatches it to the user.
// Exactly one email per call; dispatch failures are propagated.
func (s *ActivationService) SendActivationEmail(ctx context.Context, user *models.User) error {
	token, err := s.IssueFor(ctx, user)
	if err != nil {
		return err
	}

	err = s.mailer.Send(
		ctx,
		user.Email,
		user.FullName(),
		TemplateActivateAccount,
		s.cfg.Activation.URL,
		token.Code,
		activationEmailSubject,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEmailDispatch, err)
	}

	return nil
}

// Consume looks up the token by code and activates the owning account.
// A validated code behaves like an unknown one. An expired code triggers
// issuance of a replacement and a new email before the error is reported;
// the caller must re-present the new code.
func (s *ActivationService) Consume(ctx context.Context, code string) (*models.User, error) {
	token, err := s.tokenRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}

	if token.IsValidated() {
		return nil, domain.ErrTokenNotFound
	}

	if token.IsExpired() {
		if err := s.SendActivationEmail(ctx, &token.User); err != nil {
			return nil, err
		}
		log.Printf("Activation code for user %d expired, replacement sent", token.UserID)
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}

	user.Enabled = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	now := time.Now()
	token.ValidatedAt = &now
	if err := s.tokenRepo.Update(ctx, token); err != nil {
		return nil, err
	}

	log.Printf("Account activated for user %d", user.ID)
	return user, nil
}
