package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mdemidov/product_api/internal/authz"
	"github.com/mdemidov/product_api/internal/hash"
	"github.com/mdemidov/product_api/internal/models"
)

var rolePermissions = map[string][]authz.Permission{
	"admin":   {authz.CreateProducts, authz.ReadProducts, authz.UpdateProducts, authz.DeleteProducts},
	"manager": {authz.CreateProducts, authz.ReadProducts, authz.UpdateProducts},
	"user":    {authz.ReadProducts},
}

// RBAC creates the permission and role rows the application expects.
// It is idempotent and safe to run on every boot.
func RBAC(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)

	perms := make(map[authz.Permission]*models.Permission, len(authz.All()))
	for _, slug := range authz.All() {
		p := models.Permission{Slug: string(slug), Name: titleFromSlug(string(slug))}
		if err := tx.Where("slug = ?", p.Slug).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed permission %q: %w", slug, err)
		}
		perms[slug] = &p
	}

	for slug, grants := range rolePermissions {
		r := models.Role{Slug: slug, Name: titleFromSlug(slug)}
		if err := tx.Where("slug = ?", slug).FirstOrCreate(&r).Error; err != nil {
			return fmt.Errorf("seed role %q: %w", slug, err)
		}
		attach := make([]*models.Permission, 0, len(grants))
		for _, g := range grants {
			attach = append(attach, perms[g])
		}
		if err := tx.Model(&r).Association("Permissions").Replace(attach); err != nil {
			return fmt.Errorf("seed role %q permissions: %w", slug, err)
		}
	}
	return nil
}

// Run seeds RBAC plus a set of demo accounts and products for local
// development.
func Run(ctx context.Context, db *gorm.DB) error {
	if err := RBAC(ctx, db); err != nil {
		return err
	}

	tx := db.WithContext(ctx)

	demoUsers := []struct {
		name  string
		email string
		role  string
	}{
		{"Admin", "admin@example.com", "admin"},
		{"Manager", "manager@example.com", "manager"},
		{"User", "user@example.com", "user"},
	}

	pw, err := hash.HashPassword("password")
	if err != nil {
		return err
	}

	users := make(map[string]*models.User, len(demoUsers))
	for _, du := range demoUsers {
		u := models.User{Name: du.name, Email: du.email, PasswordHash: pw, IsActive: true}
		if err := tx.Where("email = ?", du.email).FirstOrCreate(&u).Error; err != nil {
			return fmt.Errorf("seed user %q: %w", du.email, err)
		}
		var role models.Role
		if err := tx.Where("slug = ?", du.role).First(&role).Error; err != nil {
			return err
		}
		if err := tx.Model(&u).Association("Roles").Replace(&role); err != nil {
			return fmt.Errorf("seed user %q role: %w", du.email, err)
		}
		users[du.role] = &u
	}

	products := []models.Product{
		{Name: "Laptop", Description: ptr("15-inch developer laptop"), Price: dec("1499.99"), Stock: 12, Category: ptr("electronics")},
		{Name: "Mechanical Keyboard", Description: ptr("Tenkeyless, brown switches"), Price: dec("89.50"), Stock: 40, Category: ptr("electronics")},
		{Name: "Office Chair", Description: ptr("Ergonomic mesh chair"), Price: dec("249.00"), Stock: 7, Category: ptr("furniture")},
		{Name: "Standing Desk", Description: ptr("Electric height adjustable"), Price: dec("399.00"), Stock: 5, Category: ptr("furniture")},
		{Name: "Coffee Mug", Description: ptr("Ceramic, 350ml"), Price: dec("9.99"), Stock: 120, Category: ptr("kitchen")},
	}
	owner := users["admin"]
	for i := range products {
		products[i].UserID = owner.ID
		if err := tx.Where("name = ? AND user_id = ?", products[i].Name, owner.ID).
			FirstOrCreate(&products[i]).Error; err != nil {
			return fmt.Errorf("seed product %q: %w", products[i].Name, err)
		}
	}
	return nil
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func ptr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
