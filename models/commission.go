package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission statuses
const (
	CommissionStatusPending = "pending"
	CommissionStatusCharged = "charged"
	CommissionStatusPaid    = "paid"
	CommissionStatusFailed  = "failed"
)

// Payment methods accepted by the gateway for commission charges
const (
	PaymentMethodBoleto     = "BOLETO"
	PaymentMethodPix        = "PIX"
	PaymentMethodCreditCard = "CREDIT_CARD"
)

// Commission is the amount an establishment owes its franchise for a single
// recharge transaction. Exactly one commission exists per recharge; usage
// transactions never generate one. Settlement against the payment gateway is
// asynchronous: pending -> charged -> paid, with failed as the failure exit.
type Commission struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	FranchiseID     uint            `gorm:"index;not null" json:"franchise_id"`
	EstablishmentID uint            `gorm:"index;not null" json:"establishment_id"`
	TransactionID   uint            `gorm:"uniqueIndex;not null" json:"transaction_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	// Rate is the franchise commission percentage frozen at recharge time.
	Rate   decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"rate"`
	Status string          `gorm:"index;not null;default:'pending'" json:"status"`
	// GatewayChargeID references the charge created at the payment gateway. A
	// manual retry after failure replaces it with the new charge's id.
	GatewayChargeID string `gorm:"index" json:"gateway_charge_id"`
	// ExternalReference is the correlation token sent to the gateway when the
	// charge is created; webhooks can locate the commission through it.
	ExternalReference string     `gorm:"uniqueIndex;not null" json:"external_reference"`
	PaymentMethod     string     `json:"payment_method"`
	DueDate           *time.Time `json:"due_date"`
	PaidAt            *time.Time `json:"paid_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
