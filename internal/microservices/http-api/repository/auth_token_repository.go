package repository

import (
	"context"
	"time"

	"foodgram/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// TokenStore keeps track of issued API tokens so logout can revoke them
// before they expire.
type TokenStore interface {
	Save(ctx context.Context, token *models.AuthToken) error
	IsActive(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
}

// AuthTokenRepository is the postgres-backed TokenStore.
type AuthTokenRepository struct {
	db *gorm.DB
}

func NewAuthTokenRepository(db *gorm.DB) *AuthTokenRepository {
	return &AuthTokenRepository{db: db}
}

func (r *AuthTokenRepository) Save(ctx context.Context, token *models.AuthToken) error {
	return wrap("save token", r.db.WithContext(ctx).Omit("User").Create(token).Error)
}

// IsActive reports whether the token exists, is not revoked and has not expired.
func (r *AuthTokenRepository) IsActive(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AuthToken{}).
		Where("id = ? AND revoked = ? AND expires_at > ?", tokenID, false, time.Now()).
		Count(&count).Error; err != nil {
		return false, wrap("check token", err)
	}
	return count > 0, nil
}

func (r *AuthTokenRepository) Revoke(ctx context.Context, tokenID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.AuthToken{}).
		Where("id = ? AND revoked = ?", tokenID, false).
		Update("revoked", true)
	if result.Error != nil {
		return wrap("revoke token", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("revoke token", gorm.ErrRecordNotFound)
	}
	return nil
}

// DeleteExpired removes revoked and expired tokens, returning how many rows went.
func (r *AuthTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("revoked = ? OR expires_at <= ?", true, time.Now()).
		Delete(&models.AuthToken{})
	if result.Error != nil {
		return 0, wrap("delete expired tokens", result.Error)
	}
	return result.RowsAffected, nil
}
