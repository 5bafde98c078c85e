package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Franchise is the top tier of the business hierarchy. It owns establishments
// and receives commissions generated by their gift card recharges.
type Franchise struct {
	gorm.Model
	Name     string `gorm:"not null" json:"name"`
	Document string `gorm:"uniqueIndex;not null" json:"document"` // CNPJ
	Email    string `gorm:"not null" json:"email"`
	Phone    string `json:"phone"`
	// CommissionRate is a percentage (e.g. 10.00 means 10%). Commissions snapshot
	// this value at recharge time, so later changes never rewrite past commissions.
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"commission_rate"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`

	Establishments []Establishment `gorm:"foreignKey:FranchiseID" json:"establishments,omitempty"`
}
