package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	IsActive     bool      `gorm:"not null;default:true"    json:"is_active"`
	Roles        []Role    `gorm:"many2many:role_user"      json:"roles,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPermission reports whether any of the user's roles carries the permission.
func (u *User) HasPermission(slug string) bool {
	for i := range u.Roles {
		if u.Roles[i].HasPermission(slug) {
			return true
		}
	}
	return false
}

type Role struct {
	ID          uint         `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string       `gorm:"not null"                  json:"name"`
	Slug        string       `gorm:"uniqueIndex;not null"      json:"slug"`
	Description string       `json:"description"`
	Permissions []Permission `gorm:"many2many:permission_role" json:"permissions,omitempty"`
}

func (r *Role) HasPermission(slug string) bool {
	for i := range r.Permissions {
		if r.Permissions[i].Slug == slug {
			return true
		}
	}
	return false
}

type Permission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null"                 json:"name"`
	Slug        string `gorm:"uniqueIndex;not null"     json:"slug"`
	Description string `json:"description"`
}

// AccessToken is an opaque bearer credential. Only the sha256 digest of the
// secret half is stored; the plaintext is handed out once at issuance.
// There is no expiry column: tokens live until they are revoked.
type AccessToken struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint       `gorm:"index;not null"           json:"user_id"`
	Name       string     `gorm:"not null"                 json:"name"`
	TokenHash  string     `gorm:"uniqueIndex;not null"     json:"-"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name        string          `gorm:"not null"                    json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null"                    json:"stock"`
	Category    *string         `json:"category"`
	UserID      uint            `gorm:"index;not null"              json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID"           json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"                       json:"-"`
}
