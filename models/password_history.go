package models

import (
	"time"
)

// PasswordHistory keeps the previous password hashes of a user so a password
// change can refuse recent reuse.
type PasswordHistory struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Password  string    `gorm:"not null" json:"-"`
}
