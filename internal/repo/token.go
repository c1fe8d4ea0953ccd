package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mdemidov/product_api/internal/models"
)

func (r *GormRepo) CreateAccessToken(ctx context.Context, t *models.AccessToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindAccessToken(ctx context.Context, id uint) (*models.AccessToken, error) {
	var token models.AccessToken
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteAccessToken removes exactly one token (logout of the current session).
func (r *GormRepo) DeleteAccessToken(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.AccessToken{}, id).Error
}

func (r *GormRepo) DeleteUserAccessTokens(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.AccessToken{}).Error
}

// ReplaceUserTokens revokes every token of the user and stores the new one in a
// single transaction, so no token from the prior session survives a login.
func (r *GormRepo) ReplaceUserTokens(ctx context.Context, userID uint, t *models.AccessToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.AccessToken{}).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

func (r *GormRepo) TouchAccessToken(ctx context.Context, id uint) error {
	now := time.Now()
	return r.DB.WithContext(ctx).Model(&models.AccessToken{}).
		Where("id = ?", id).
		Update("last_used_at", &now).Error
}
