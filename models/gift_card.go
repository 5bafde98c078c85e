package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftCard statuses
const (
	GiftCardStatusActive    = "active"
	GiftCardStatusUsed      = "used"
	GiftCardStatusExpired   = "expired"
	GiftCardStatusCancelled = "cancelled"
)

// GiftCard is a prepaid balance instrument identified by a public code.
// CurrentBalance changes only through ApplyBalanceChange, which writes the
// card and its Transaction row in the same database transaction.
type GiftCard struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Code            string          `gorm:"uniqueIndex;not null" json:"code"` // GC-XXXX-XXXX-XXXX-XXXX
	FranchiseID     uint            `gorm:"index;not null" json:"franchise_id"`
	EstablishmentID uint            `gorm:"index;not null" json:"establishment_id"`
	Establishment   Establishment   `gorm:"foreignKey:EstablishmentID" json:"establishment,omitempty"`
	InitialValue    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"initial_value"`
	CurrentBalance  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"current_balance"`
	Status          string          `gorm:"index;not null;default:'active'" json:"status"`
	ValidUntil      *time.Time      `json:"valid_until"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the card reached an absorbing status. Terminal
// cards never accept balance mutations again.
func (g *GiftCard) IsTerminal() bool {
	return g.Status != GiftCardStatusActive
}

// IsExpiredAt reports whether the card's validity window has passed.
func (g *GiftCard) IsExpiredAt(t time.Time) bool {
	return g.ValidUntil != nil && g.ValidUntil.Before(t)
}
