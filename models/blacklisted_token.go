package models

import (
	"time"

	"gorm.io/gorm"
)

// BlacklistedToken invalidates a JWT before its natural expiry, backing the
// logout endpoint. Rows past ExpiresAt are dead weight and safe to purge.
type BlacklistedToken struct {
	gorm.Model
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}
