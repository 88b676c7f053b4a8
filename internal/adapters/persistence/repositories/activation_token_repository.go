package repositories

import (
	"context"
	"time"

	"booknet/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// activationTokenRepository implements ActivationTokenRepository interface
type activationTokenRepository struct {
	db *gorm.DB
}

// NewActivationTokenRepository creates a new activation token repository
func NewActivationTokenRepository(db *gorm.DB) ActivationTokenRepository {
	return &activationTokenRepository{db: db}
}

// Create creates a new activation token
func (r *activationTokenRepository) Create(ctx context.Context, token *models.ActivationToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByCode gets a token by its code with the owning user preloaded
func (r *activationTokenRepository) GetByCode(ctx context.Context, code string) (*models.ActivationToken, error) {
	var token models.ActivationToken
	err := r.db.WithContext(ctx).Preload("User").Where("code = ?", code).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Update updates a token
func (r *activationTokenRepository) Update(ctx context.Context, token *models.ActivationToken) error {
	return r.db.WithContext(ctx).Save(token).Error
}

// DeleteStale removes validated tokens and tokens expired before cutoff
func (r *activationTokenRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("validated_at IS NOT NULL OR expires_at < ?", cutoff).
		Delete(&models.ActivationToken{})
	return result.RowsAffected, result.Error
}
