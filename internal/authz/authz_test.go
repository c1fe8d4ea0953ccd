package authz

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mdemidov/product_api/internal/models"
)

func userWith(perms ...Permission) *models.User {
	role := models.Role{Slug: "tester"}
	for _, p := range perms {
		role.Permissions = append(role.Permissions, models.Permission{Slug: string(p)})
	}
	return &models.User{Roles: []models.Role{role}}
}

func TestAllows(t *testing.T) {
	require.False(t, Allows(nil, ReadProducts))
	require.False(t, Allows(&models.User{}, ReadProducts))

	reader := userWith(ReadProducts)
	require.True(t, Allows(reader, ReadProducts))
	require.False(t, Allows(reader, DeleteProducts))

	admin := userWith(All()...)
	for _, p := range All() {
		require.True(t, Allows(admin, p))
	}
}

func TestAllowsAcrossRoles(t *testing.T) {
	u := &models.User{Roles: []models.Role{
		{Slug: "a", Permissions: []models.Permission{{Slug: string(ReadProducts)}}},
		{Slug: "b", Permissions: []models.Permission{{Slug: string(DeleteProducts)}}},
	}}
	require.True(t, Allows(u, ReadProducts))
	require.True(t, Allows(u, DeleteProducts))
	require.False(t, Allows(u, UpdateProducts))
}

func TestValidate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Permission{}))

	err = Validate(t.Context(), db)
	require.ErrorContains(t, err, "not seeded")

	for _, p := range All() {
		require.NoError(t, db.Create(&models.Permission{Slug: string(p), Name: string(p)}).Error)
	}
	require.NoError(t, Validate(t.Context(), db))
}
