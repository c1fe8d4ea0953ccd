package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mdemidov/product_api/internal/models"
)

var ErrRoleNotFound = errors.New("role not found")

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

// FindUserByEmail matches case-insensitively; emails are stored lowercased but
// older rows may predate that.
func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(email)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("lower(email) = ?", strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindUserByID loads the user together with roles and their permissions.
func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Preload("Roles.Permissions").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindRoleBySlug(ctx context.Context, slug string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) AttachRole(ctx context.Context, u *models.User, slug string) error {
	role, err := r.FindRoleBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(u).Association("Roles").Append(role)
}
