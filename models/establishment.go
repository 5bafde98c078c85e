package models

import (
	"gorm.io/gorm"
)

// Establishment is a point of sale that belongs to exactly one franchise. It
// issues and operates gift cards and pays commissions to its franchise.
type Establishment struct {
	gorm.Model
	FranchiseID uint      `gorm:"index;not null" json:"franchise_id"`
	Franchise   Franchise `gorm:"foreignKey:FranchiseID" json:"franchise,omitempty"`
	Name        string    `gorm:"not null" json:"name"`
	Category    string    `json:"category"`
	Document    string    `gorm:"uniqueIndex;not null" json:"document"` // CNPJ
	Email       string    `gorm:"not null" json:"email"`
	Phone       string    `json:"phone"`
	// GatewayCustomerID holds the payment gateway's customer reference. It is
	// created lazily on the first commission charge against this establishment.
	GatewayCustomerID string `gorm:"index" json:"gateway_customer_id"`
	IsActive          bool   `gorm:"default:true" json:"is_active"`
}
