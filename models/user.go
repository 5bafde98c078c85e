package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin         = "admin"
	RoleFranchise     = "franchise"
	RoleEstablishment = "establishment"
)

// User represents an API user: a platform admin, a franchise owner or an
// establishment operator. Role decides which scope the auth middleware grants.
type User struct {
	gorm.Model
	Name            string    `gorm:"not null" json:"name"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	Password        string    `json:"-"`
	Role            string    `gorm:"not null;default:'establishment'" json:"role"`
	FranchiseID     *uint     `gorm:"index" json:"franchise_id"`
	EstablishmentID *uint     `gorm:"index" json:"establishment_id"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	LastLoginAt     time.Time `json:"last_login_at"`
}
