// Package authz holds the permission vocabulary and the authorization gate.
// Slugs are typed constants validated against the store at startup, so a typo
// fails at boot instead of silently denying at runtime.
package authz

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mdemidov/product_api/internal/models"
)

type Permission string

const (
	CreateProducts Permission = "create-products"
	ReadProducts   Permission = "read-products"
	UpdateProducts Permission = "update-products"
	DeleteProducts Permission = "delete-products"
)

func All() []Permission {
	return []Permission{CreateProducts, ReadProducts, UpdateProducts, DeleteProducts}
}

// Allows reports whether the user holds the permission through any role.
// Denial is not an error; callers decide how to surface it.
func Allows(u *models.User, p Permission) bool {
	if u == nil {
		return false
	}
	return u.HasPermission(string(p))
}

// Validate checks that every known permission slug exists in the store.
func Validate(ctx context.Context, db *gorm.DB) error {
	for _, p := range All() {
		var count int64
		if err := db.WithContext(ctx).Model(&models.Permission{}).
			Where("slug = ?", string(p)).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("permission %q is not seeded", p)
		}
	}
	return nil
}
