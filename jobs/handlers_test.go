package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/gateway"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// stubGateway answers gateway calls without a network
type stubGateway struct {
	charges   int
	chargeErr error
}

func (s *stubGateway) CreateCustomer(ctx context.Context, req gateway.CustomerRequest) (*gateway.Customer, error) {
	return &gateway.Customer{ID: "cus_stub", Name: req.Name, CpfCnpj: req.CpfCnpj}, nil
}

func (s *stubGateway) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	s.charges++
	if s.chargeErr != nil {
		return nil, s.chargeErr
	}
	return &gateway.Charge{
		ID:                fmt.Sprintf("pay_%d", s.charges),
		Customer:          req.Customer,
		BillingType:       req.BillingType,
		Value:             req.Value,
		Status:            "PENDING",
		DueDate:           req.DueDate,
		ExternalReference: req.ExternalReference,
	}, nil
}

var fixtureSeq int

// seedCommission creates a franchise, an establishment already registered at
// the gateway, and one commission in the given status
func seedCommission(t *testing.T, db *gorm.DB, status string) *models.Commission {
	t.Helper()
	fixtureSeq++

	franchise := &models.Franchise{
		Name:           "Rede Boa Mesa",
		Document:       fmt.Sprintf("%014d", fixtureSeq*2),
		Email:          "financeiro@boamesa.com.br",
		CommissionRate: decimal.New(10, 0),
		IsActive:       true,
	}
	if err := db.Create(franchise).Error; err != nil {
		t.Fatalf("Failed to create test franchise: %v", err)
	}

	establishment := &models.Establishment{
		FranchiseID:       franchise.ID,
		Name:              "Restaurante Matriz",
		Document:          fmt.Sprintf("%014d", fixtureSeq*2+1),
		Email:             "matriz@boamesa.com.br",
		GatewayCustomerID: "cus_seeded",
		IsActive:          true,
	}
	if err := db.Create(establishment).Error; err != nil {
		t.Fatalf("Failed to create test establishment: %v", err)
	}

	commission := &models.Commission{
		FranchiseID:       franchise.ID,
		EstablishmentID:   establishment.ID,
		TransactionID:     uint(fixtureSeq),
		Amount:            decimal.New(4200, -2),
		Rate:              decimal.New(10, 0),
		Status:            status,
		ExternalReference: uuid.New().String(),
	}
	if err := db.Create(commission).Error; err != nil {
		t.Fatalf("Failed to create test commission: %v", err)
	}
	return commission
}

func newTestHandlers(db *gorm.DB, stub *stubGateway) *Handlers {
	return NewHandlers(db, services.NewCommissionService(db, stub, "", 0))
}

func chargeJob(t *testing.T, commissionID uint) *models.Job {
	t.Helper()
	job, err := models.NewJob(models.JobKindCommissionCharge, map[string]interface{}{
		"commission_id": commissionID,
	}, 3)
	if err != nil {
		t.Fatalf("Failed to build job: %v", err)
	}
	return job
}

func TestChargeCommission_ChargesPendingCommission(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	stub := &stubGateway{}
	h := newTestHandlers(db, stub)
	commission := seedCommission(t, db, models.CommissionStatusPending)

	err := h.ChargeCommission(context.Background(), chargeJob(t, commission.ID))

	require.NoError(t, err)
	assert.Equal(t, 1, stub.charges)

	var stored models.Commission
	require.NoError(t, db.First(&stored, commission.ID).Error)
	assert.Equal(t, models.CommissionStatusCharged, stored.Status)
	assert.Equal(t, "pay_1", stored.GatewayChargeID)
}

func TestChargeCommission_LeavesSettledCommissionAlone(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	stub := &stubGateway{}
	commissions := services.NewCommissionService(db, stub, "", 0)
	h := NewHandlers(db, commissions)

	for _, status := range []string{models.CommissionStatusCharged, models.CommissionStatusPaid} {
		commission := seedCommission(t, db, status)
		err := h.ChargeCommission(context.Background(), chargeJob(t, commission.ID))
		require.NoError(t, err, status)
	}

	// Charged by an operator, then voided at the gateway before the queued
	// job ran: the obligation is gone, so the job must not place a new charge
	voided := seedCommission(t, db, models.CommissionStatusCharged)
	require.NoError(t, db.Model(voided).Update("gateway_charge_id", "pay_operator").Error)
	_, err := commissions.ApplyWebhookEvent(gateway.EventPaymentDeleted,
		gateway.WebhookPayment{ID: "pay_operator"}, time.Now())
	require.NoError(t, err)

	require.NoError(t, h.ChargeCommission(context.Background(), chargeJob(t, voided.ID)))

	var stored models.Commission
	require.NoError(t, db.First(&stored, voided.ID).Error)
	assert.Equal(t, models.CommissionStatusFailed, stored.Status)
	assert.Equal(t, "pay_operator", stored.GatewayChargeID)
	assert.Equal(t, 0, stub.charges)
}

func TestChargeCommission_MissingCommissionCompletes(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	h := newTestHandlers(db, &stubGateway{})

	// Answering an error here would only make the queue retry forever
	err := h.ChargeCommission(context.Background(), chargeJob(t, 9999))
	assert.NoError(t, err)
}

func TestChargeCommission_GatewayErrorPropagatesForRetry(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	stub := &stubGateway{chargeErr: fmt.Errorf("gateway timeout")}
	h := newTestHandlers(db, stub)
	commission := seedCommission(t, db, models.CommissionStatusPending)

	err := h.ChargeCommission(context.Background(), chargeJob(t, commission.ID))

	require.Error(t, err)

	var stored models.Commission
	require.NoError(t, db.First(&stored, commission.ID).Error)
	assert.Equal(t, models.CommissionStatusFailed, stored.Status)
}

func TestChargeCommission_RejectsMalformedPayload(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	h := newTestHandlers(db, &stubGateway{})

	job := &models.Job{Kind: models.JobKindCommissionCharge, Payload: datatypes.JSON(`{`)}
	err := h.ChargeCommission(context.Background(), job)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
}

func TestProcessWebhookEvent_AppliesEventAndMarksProcessed(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	h := newTestHandlers(db, &stubGateway{})
	commission := seedCommission(t, db, models.CommissionStatusCharged)
	require.NoError(t, db.Model(commission).Update("gateway_charge_id", "pay_hook").Error)

	event := &models.WebhookEvent{
		Event:            gateway.EventPaymentConfirmed,
		GatewayPaymentID: "pay_hook",
		Payload:          datatypes.JSON(`{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_hook","paymentDate":"2026-04-02"}}`),
	}
	require.NoError(t, db.Create(event).Error)

	job, err := models.NewJob(models.JobKindWebhookProcess, map[string]interface{}{
		"event_id": event.ID,
	}, 3)
	require.NoError(t, err)

	require.NoError(t, h.ProcessWebhookEvent(context.Background(), job))

	var storedCommission models.Commission
	require.NoError(t, db.First(&storedCommission, commission.ID).Error)
	assert.Equal(t, models.CommissionStatusPaid, storedCommission.Status)

	var storedEvent models.WebhookEvent
	require.NoError(t, db.First(&storedEvent, event.ID).Error)
	assert.NotNil(t, storedEvent.ProcessedAt)
}

func TestProcessWebhookEvent_SkipsAlreadyProcessedEvent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	h := newTestHandlers(db, &stubGateway{})
	commission := seedCommission(t, db, models.CommissionStatusCharged)
	require.NoError(t, db.Model(commission).Update("gateway_charge_id", "pay_dup").Error)

	processed := time.Now()
	event := &models.WebhookEvent{
		Event:            gateway.EventPaymentConfirmed,
		GatewayPaymentID: "pay_dup",
		Payload:          datatypes.JSON(`{"event":"PAYMENT_CONFIRMED","payment":{"id":"pay_dup"}}`),
		ProcessedAt:      &processed,
	}
	require.NoError(t, db.Create(event).Error)

	job, err := models.NewJob(models.JobKindWebhookProcess, map[string]interface{}{
		"event_id": event.ID,
	}, 3)
	require.NoError(t, err)

	require.NoError(t, h.ProcessWebhookEvent(context.Background(), job))

	// The replayed delivery changed nothing
	var stored models.Commission
	require.NoError(t, db.First(&stored, commission.ID).Error)
	assert.Equal(t, models.CommissionStatusCharged, stored.Status)
}

func TestProcessWebhookEvent_MissingEventCompletes(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	h := newTestHandlers(db, &stubGateway{})

	job, err := models.NewJob(models.JobKindWebhookProcess, map[string]interface{}{
		"event_id": 9999,
	}, 3)
	require.NoError(t, err)

	assert.NoError(t, h.ProcessWebhookEvent(context.Background(), job))
}

func TestSendOverdueEmail_SkipsUnchargedCommission(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	h := newTestHandlers(db, &stubGateway{})
	commission := seedCommission(t, db, models.CommissionStatusPaid)

	job, err := models.NewJob(models.JobKindOverdueEmail, map[string]interface{}{
		"commission_id": commission.ID,
	}, 3)
	require.NoError(t, err)

	// Settled between enqueue and execution; nothing to send
	assert.NoError(t, h.SendOverdueEmail(context.Background(), job))
}
