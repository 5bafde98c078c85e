package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction types
const (
	TransactionTypeRecharge = "recharge"
	TransactionTypeUsage    = "usage"
	TransactionTypeRefund   = "refund"
)

// Transaction is the append-only audit record of a single balance change.
// Rows are never updated or deleted; ordered by creation they form a gapless
// chain where each BalanceAfter equals the next row's BalanceBefore.
type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	GiftCardID      uint            `gorm:"index;not null" json:"gift_card_id"`
	EstablishmentID uint            `gorm:"index;not null" json:"establishment_id"`
	Type            string          `gorm:"not null" json:"type"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_before"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_after"`
	Description     string          `json:"description"`
	Metadata        datatypes.JSON  `json:"metadata,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
