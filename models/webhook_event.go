package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent stores every signature-verified gateway notification before it
// is processed. Rows are an audit trail: duplicates are expected (gateways
// deliver at least once) and the settlement state machine absorbs replays.
type WebhookEvent struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Event            string         `gorm:"index;not null" json:"event"`
	GatewayPaymentID string         `gorm:"index" json:"gateway_payment_id"`
	Payload          datatypes.JSON `json:"payload"`
	ProcessedAt      *time.Time     `json:"processed_at"`
	CreatedAt        time.Time      `json:"created_at"`
}
