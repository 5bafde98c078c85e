package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/gateway"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"gorm.io/gorm"
)

// PaymentGateway is the narrow client contract the settlement flow needs.
// The production implementation is gateway.Client; tests substitute a fake.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, req gateway.CustomerRequest) (*gateway.Customer, error)
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
}

// commissionTransitions is the settlement state table: current status and
// event kind resolve to the next status. Pairs absent from the table leave
// the commission unchanged. PAYMENT_OVERDUE never appears here: it is purely
// informational and only triggers a notification.
var commissionTransitions = map[string]map[string]string{
	models.CommissionStatusPending: {
		gateway.EventPaymentDeleted:  models.CommissionStatusFailed,
		gateway.EventPaymentRefunded: models.CommissionStatusFailed,
	},
	models.CommissionStatusCharged: {
		gateway.EventPaymentConfirmed: models.CommissionStatusPaid,
		gateway.EventPaymentReceived:  models.CommissionStatusPaid,
		gateway.EventPaymentDeleted:   models.CommissionStatusFailed,
		gateway.EventPaymentRefunded:  models.CommissionStatusFailed,
	},
}

// NextCommissionStatus resolves the settlement state table. The boolean
// reports whether the event transitions the status at all.
func NextCommissionStatus(current, event string) (string, bool) {
	next, ok := commissionTransitions[current][event]
	return next, ok
}

// CommissionService drives a commission from pending through charged to paid
// or failed. Charges are issued against the establishment's gateway customer;
// webhooks move the status forward. Paid is the only absorbing state: a
// failed commission may be re-charged, which issues a fresh gateway charge on
// the same row.
type CommissionService struct {
	db          *gorm.DB
	gateway     PaymentGateway
	billingType string
	dueDays     int
}

// NewCommissionService creates the settlement service. billingType and
// dueDays are the defaults applied when a charge request does not specify
// them.
func NewCommissionService(db *gorm.DB, gw PaymentGateway, billingType string, dueDays int) *CommissionService {
	if billingType == "" {
		billingType = models.PaymentMethodBoleto
	}
	if dueDays <= 0 {
		dueDays = 7
	}
	return &CommissionService{db: db, gateway: gw, billingType: billingType, dueDays: dueDays}
}

// RequestChargeInput describes a charge request for one commission
type RequestChargeInput struct {
	CommissionID  uint
	PaymentMethod string     // defaults to the configured billing type
	DueDate       *time.Time // defaults to now plus the configured due days
	Description   string
}

// RequestCharge issues a gateway charge for a commission. Valid only while
// the commission is pending or failed; retrying a failed commission issues a
// fresh gateway charge and overwrites the stored charge reference.
func (s *CommissionService) RequestCharge(ctx context.Context, input RequestChargeInput) (*models.Commission, error) {
	var commission models.Commission
	if err := s.db.First(&commission, input.CommissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Commission not found")
		}
		return nil, err
	}

	switch commission.Status {
	case models.CommissionStatusPending, models.CommissionStatusFailed:
	case models.CommissionStatusCharged:
		return nil, utils.NewInvalidOperationError("Commission already has an active charge")
	default:
		return nil, utils.NewInvalidOperationError("Commission is already paid")
	}

	method := input.PaymentMethod
	if method == "" {
		method = s.billingType
	}
	switch method {
	case models.PaymentMethodBoleto, models.PaymentMethodPix, models.PaymentMethodCreditCard:
	default:
		return nil, utils.NewValidationError("Unknown payment method", map[string]interface{}{
			"payment_method": method,
		})
	}

	dueDate := time.Now().AddDate(0, 0, s.dueDays)
	if input.DueDate != nil {
		if input.DueDate.Before(time.Now()) {
			return nil, utils.NewValidationError("Due date must be in the future", nil)
		}
		dueDate = *input.DueDate
	}

	var establishment models.Establishment
	if err := s.db.First(&establishment, commission.EstablishmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Establishment not found")
		}
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, &establishment)
	if err != nil {
		s.markChargeFailed(&commission, err)
		return nil, err
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Commission for recharge transaction #%d", commission.TransactionID)
	}

	charge, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		Customer:          customerID,
		BillingType:       method,
		Value:             commission.Amount.InexactFloat64(),
		DueDate:           dueDate.Format("2006-01-02"),
		Description:       description,
		ExternalReference: commission.ExternalReference,
	})
	if err != nil {
		s.markChargeFailed(&commission, err)
		return nil, err
	}

	// Guarded write: lose to a concurrent charge of the same commission
	// instead of overwriting it
	res := s.db.Model(&models.Commission{}).
		Where("id = ? AND status IN ?", commission.ID,
			[]string{models.CommissionStatusPending, models.CommissionStatusFailed}).
		Updates(map[string]interface{}{
			"status":            models.CommissionStatusCharged,
			"gateway_charge_id": charge.ID,
			"payment_method":    method,
			"due_date":          dueDate,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewConflictError("Commission was charged concurrently", nil)
	}

	commission.Status = models.CommissionStatusCharged
	commission.GatewayChargeID = charge.ID
	commission.PaymentMethod = method
	commission.DueDate = &dueDate

	// The charge stands whether or not the notification goes out
	if establishment.Email != "" {
		if err := utils.SendChargeCreatedEmail(establishment.Email, establishment.Name,
			commission.Amount, dueDate, charge.InvoiceURL); err != nil {
			utils.LogError("Charge notification for commission %d not sent: %v", commission.ID, err)
		}
	}

	utils.LogInfo("Commission %d charged: gateway charge %s, %s due %s",
		commission.ID, charge.ID, method, dueDate.Format("2006-01-02"))
	return &commission, nil
}

// markChargeFailed flips a commission to failed after a gateway error, unless
// another path already moved it on
func (s *CommissionService) markChargeFailed(commission *models.Commission, cause error) {
	res := s.db.Model(&models.Commission{}).
		Where("id = ? AND status IN ?", commission.ID,
			[]string{models.CommissionStatusPending, models.CommissionStatusFailed}).
		Updates(map[string]interface{}{
			"status":     models.CommissionStatusFailed,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		utils.LogError("Failed to mark commission %d as failed: %v", commission.ID, res.Error)
		return
	}
	if res.RowsAffected > 0 {
		commission.Status = models.CommissionStatusFailed
	}
	utils.LogError("Commission %d charge failed: %v", commission.ID, cause)
}

// ensureCustomer returns the establishment's gateway customer reference,
// registering the customer on first use
func (s *CommissionService) ensureCustomer(ctx context.Context, establishment *models.Establishment) (string, error) {
	if establishment.GatewayCustomerID != "" {
		return establishment.GatewayCustomerID, nil
	}

	customer, err := s.gateway.CreateCustomer(ctx, gateway.CustomerRequest{
		Name:    establishment.Name,
		CpfCnpj: establishment.Document,
		Email:   establishment.Email,
		Phone:   establishment.Phone,
	})
	if err != nil {
		return "", err
	}

	if err := s.db.Model(establishment).Update("gateway_customer_id", customer.ID).Error; err != nil {
		return "", err
	}
	establishment.GatewayCustomerID = customer.ID

	utils.LogInfo("Establishment %d registered at gateway as %s", establishment.ID, customer.ID)
	return customer.ID, nil
}

// ApplyWebhookEvent applies one gateway notification to the commission it
// references. It is safe under at-least-once delivery: replays and
// out-of-order events resolve through the state table into no-ops. A payment
// that matches no commission is logged and dropped rather than surfaced,
// because failing the webhook would only make the gateway redeliver it.
func (s *CommissionService) ApplyWebhookEvent(event string, payment gateway.WebhookPayment, now time.Time) (*models.Commission, error) {
	commission, err := s.findForPayment(payment)
	if err != nil {
		return nil, err
	}
	if commission == nil {
		utils.LogError("Webhook %s matches no commission: payment=%s reference=%s",
			event, payment.ID, payment.ExternalReference)
		return nil, nil
	}

	switch event {
	case gateway.EventPaymentConfirmed, gateway.EventPaymentReceived:
		return s.markPaid(commission, event, payment, now)

	case gateway.EventPaymentOverdue:
		// Informational only; the charge stays open at the gateway
		utils.LogInfo("Commission %d is overdue (gateway charge %s)", commission.ID, payment.ID)
		if commission.Status == models.CommissionStatusCharged {
			s.enqueueOverdueNotification(commission)
		}
		return commission, nil

	case gateway.EventPaymentDeleted, gateway.EventPaymentRefunded:
		return s.cancelObligation(commission, event, payment, now)

	default:
		// Unrecognized kinds are acknowledged and land here for review
		utils.LogError("Unrecognized webhook event %q for payment %s", event, payment.ID)
		return commission, nil
	}
}

// markPaid settles a charged commission. Replays of the same confirmation
// leave the original paid-at timestamp untouched.
func (s *CommissionService) markPaid(commission *models.Commission, event string, payment gateway.WebhookPayment, now time.Time) (*models.Commission, error) {
	if commission.Status == models.CommissionStatusPaid {
		utils.LogInfo("Commission %d already paid, ignoring replayed %s", commission.ID, event)
		return commission, nil
	}

	next, ok := NextCommissionStatus(commission.Status, event)
	if !ok {
		utils.LogError("Payment confirmation for commission %d ignored in status %s",
			commission.ID, commission.Status)
		return commission, nil
	}

	paidAt := payment.PaidAt(now)
	updates := map[string]interface{}{
		"status":     next,
		"paid_at":    paidAt,
		"updated_at": now,
	}
	if commission.GatewayChargeID == "" && payment.ID != "" {
		updates["gateway_charge_id"] = payment.ID
	}

	res := s.db.Model(&models.Commission{}).
		Where("id = ? AND status = ?", commission.ID, commission.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// A concurrent delivery won; reload the settled row
		return s.GetCommission(commission.ID)
	}

	commission.Status = next
	commission.PaidAt = &paidAt
	utils.LogInfo("Commission %d paid at %s", commission.ID, paidAt.Format("2006-01-02"))
	return commission, nil
}

// cancelObligation voids a commission whose gateway charge was deleted or
// refunded before settlement.
func (s *CommissionService) cancelObligation(commission *models.Commission, event string, payment gateway.WebhookPayment, now time.Time) (*models.Commission, error) {
	if commission.Status == models.CommissionStatusPaid {
		// TODO: define a clawback policy for refunds that arrive after
		// settlement; until then these need manual review
		utils.LogError("Commission %d is paid but received %s for payment %s; manual review required",
			commission.ID, event, payment.ID)
		return commission, nil
	}

	next, ok := NextCommissionStatus(commission.Status, event)
	if !ok {
		return commission, nil
	}

	res := s.db.Model(&models.Commission{}).
		Where("id = ? AND status = ?", commission.ID, commission.Status).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return s.GetCommission(commission.ID)
	}

	commission.Status = next
	utils.LogInfo("Commission %d cancelled by %s (gateway charge %s)", commission.ID, event, payment.ID)
	return commission, nil
}

// enqueueOverdueNotification schedules the overdue email. Best effort: a
// failed enqueue only loses a notification, never settlement state.
func (s *CommissionService) enqueueOverdueNotification(commission *models.Commission) {
	job, err := models.NewJob(models.JobKindOverdueEmail, map[string]interface{}{
		"commission_id": commission.ID,
	}, utils.JobMaxAttempts)
	if err != nil {
		utils.LogError("Failed to build overdue notification for commission %d: %v", commission.ID, err)
		return
	}
	if err := s.db.Create(job).Error; err != nil {
		utils.LogError("Failed to enqueue overdue notification for commission %d: %v", commission.ID, err)
	}
}

// findForPayment locates the commission for a webhook payment by correlation
// token, falling back to the gateway charge id. Both columns are indexed.
func (s *CommissionService) findForPayment(payment gateway.WebhookPayment) (*models.Commission, error) {
	var commission models.Commission

	if payment.ExternalReference != "" {
		err := s.db.Where("external_reference = ?", payment.ExternalReference).First(&commission).Error
		if err == nil {
			return &commission, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if payment.ID != "" {
		err := s.db.Where("gateway_charge_id = ?", payment.ID).First(&commission).Error
		if err == nil {
			return &commission, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

// CommissionFilters narrows a commission listing
type CommissionFilters struct {
	FranchiseID     uint
	EstablishmentID uint
	Status          string
}

// ListCommissions returns commissions matching the filters, newest first
func (s *CommissionService) ListCommissions(filters CommissionFilters, p *utils.Pagination) ([]models.Commission, error) {
	query := s.db.Model(&models.Commission{})
	if filters.FranchiseID != 0 {
		query = query.Where("franchise_id = ?", filters.FranchiseID)
	}
	if filters.EstablishmentID != 0 {
		query = query.Where("establishment_id = ?", filters.EstablishmentID)
	}
	if filters.Status != "" {
		switch filters.Status {
		case models.CommissionStatusPending, models.CommissionStatusCharged,
			models.CommissionStatusPaid, models.CommissionStatusFailed:
		default:
			return nil, utils.NewValidationError("Unknown commission status", map[string]interface{}{
				"status": filters.Status,
			})
		}
		query = query.Where("status = ?", filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	p.SetTotal(total)

	var commissions []models.Commission
	if err := query.Order("id DESC").Limit(p.Limit).Offset(p.Offset).Find(&commissions).Error; err != nil {
		return nil, err
	}
	return commissions, nil
}

// GetCommission loads one commission
func (s *CommissionService) GetCommission(id uint) (*models.Commission, error) {
	var commission models.Commission
	if err := s.db.First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Commission not found")
		}
		return nil, err
	}
	return &commission, nil
}
