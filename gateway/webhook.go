package gateway

import (
	"crypto/subtle"
	"time"
)

// Webhook event kinds delivered by the payment gateway
const (
	EventPaymentConfirmed = "PAYMENT_CONFIRMED"
	EventPaymentReceived  = "PAYMENT_RECEIVED"
	EventPaymentOverdue   = "PAYMENT_OVERDUE"
	EventPaymentDeleted   = "PAYMENT_DELETED"
	EventPaymentRefunded  = "PAYMENT_REFUNDED"
)

// WebhookTokenHeader is the request header carrying the shared webhook secret
const WebhookTokenHeader = "asaas-access-token"

// WebhookPayload is the envelope delivered to the webhook endpoint
type WebhookPayload struct {
	Event   string         `json:"event"`
	Payment WebhookPayment `json:"payment"`
}

// WebhookPayment is the charge snapshot inside a webhook delivery. Dates
// arrive as YYYY-MM-DD strings.
type WebhookPayment struct {
	ID                string  `json:"id"`
	Customer          string  `json:"customer"`
	Value             float64 `json:"value"`
	NetValue          float64 `json:"netValue"`
	Status            string  `json:"status"`
	BillingType       string  `json:"billingType"`
	DueDate           string  `json:"dueDate"`
	PaymentDate       string  `json:"paymentDate"`
	ClientPaymentDate string  `json:"clientPaymentDate"`
	ExternalReference string  `json:"externalReference"`
	InvoiceURL        string  `json:"invoiceUrl"`
}

// IsKnownEvent reports whether the event kind is one this platform processes
func IsKnownEvent(event string) bool {
	switch event {
	case EventPaymentConfirmed, EventPaymentReceived, EventPaymentOverdue,
		EventPaymentDeleted, EventPaymentRefunded:
		return true
	}
	return false
}

// VerifyWebhookToken compares the received token against the configured
// secret in constant time. An empty configured secret rejects everything.
func VerifyWebhookToken(received, expected string) bool {
	if received == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(received), []byte(expected)) == 1
}

// PaidAt resolves the effective payment timestamp from a webhook payment,
// preferring the gateway's paymentDate, then the client payment date, then
// the delivery time
func (p WebhookPayment) PaidAt(now time.Time) time.Time {
	for _, raw := range []string{p.PaymentDate, p.ClientPaymentDate} {
		if raw == "" {
			continue
		}
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			return parsed
		}
	}
	return now
}
