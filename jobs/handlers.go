package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/gateway"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/services"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"gorm.io/gorm"
)

// Handlers bundles the job executors with their dependencies
type Handlers struct {
	db          *gorm.DB
	commissions *services.CommissionService
}

// NewHandlers creates the job executors
func NewHandlers(db *gorm.DB, commissions *services.CommissionService) *Handlers {
	return &Handlers{db: db, commissions: commissions}
}

// Register binds every job kind to its executor
func (h *Handlers) Register(w *Worker) {
	w.Register(models.JobKindCommissionCharge, h.ChargeCommission)
	w.Register(models.JobKindWebhookProcess, h.ProcessWebhookEvent)
	w.Register(models.JobKindOverdueEmail, h.SendOverdueEmail)
}

// ChargeCommission creates the gateway charge for a commission recorded by a
// recharge. A commission that reached charged, paid or a gateway-voided failed
// through another path is left alone, so duplicate deliveries and races with
// manual charging no-op.
func (h *Handlers) ChargeCommission(ctx context.Context, job *models.Job) error {
	var payload struct {
		CommissionID uint `json:"commission_id"`
	}
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid payload: %v", err)
	}

	commission, err := h.commissions.GetCommission(payload.CommissionID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogError("Job %d: commission %d no longer exists", job.ID, payload.CommissionID)
			return nil
		}
		return err
	}

	switch commission.Status {
	case models.CommissionStatusCharged, models.CommissionStatusPaid:
		utils.LogInfo("Job %d: commission %d already %s, nothing to do",
			job.ID, commission.ID, commission.Status)
		return nil
	case models.CommissionStatusFailed:
		// Failed with a stored charge reference means a placed charge was
		// voided at the gateway; reviving that obligation is an operator
		// decision. Failed without one means the charge never stuck, so the
		// retry proceeds.
		if commission.GatewayChargeID != "" {
			utils.LogInfo("Job %d: commission %d was cancelled at the gateway, nothing to do",
				job.ID, commission.ID)
			return nil
		}
	}

	_, err = h.commissions.RequestCharge(ctx, services.RequestChargeInput{
		CommissionID: commission.ID,
	})
	return err
}

// ProcessWebhookEvent applies a stored gateway notification to the settlement
// state machine. Intake only persists and acknowledges; the business effect
// happens here, off the gateway's connection.
func (h *Handlers) ProcessWebhookEvent(ctx context.Context, job *models.Job) error {
	var payload struct {
		EventID uint `json:"event_id"`
	}
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid payload: %v", err)
	}

	var event models.WebhookEvent
	if err := h.db.First(&event, payload.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogError("Job %d: webhook event %d no longer exists", job.ID, payload.EventID)
			return nil
		}
		return err
	}
	if event.ProcessedAt != nil {
		utils.LogInfo("Job %d: webhook event %d already processed", job.ID, event.ID)
		return nil
	}

	var webhook gateway.WebhookPayload
	if err := json.Unmarshal(event.Payload, &webhook); err != nil {
		return fmt.Errorf("webhook event %d payload unreadable: %v", event.ID, err)
	}

	if _, err := h.commissions.ApplyWebhookEvent(webhook.Event, webhook.Payment, time.Now()); err != nil {
		return err
	}

	return h.db.Model(&event).Update("processed_at", time.Now()).Error
}

// SendOverdueEmail notifies the paying establishment that its commission
// charge passed the due date
func (h *Handlers) SendOverdueEmail(ctx context.Context, job *models.Job) error {
	var payload struct {
		CommissionID uint `json:"commission_id"`
	}
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid payload: %v", err)
	}

	commission, err := h.commissions.GetCommission(payload.CommissionID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogError("Job %d: commission %d no longer exists", job.ID, payload.CommissionID)
			return nil
		}
		return err
	}
	if commission.Status != models.CommissionStatusCharged {
		utils.LogInfo("Job %d: commission %d is %s, skipping overdue notification",
			job.ID, commission.ID, commission.Status)
		return nil
	}

	var establishment models.Establishment
	if err := h.db.First(&establishment, commission.EstablishmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogError("Job %d: establishment %d no longer exists", job.ID, commission.EstablishmentID)
			return nil
		}
		return err
	}

	dueDate := time.Now()
	if commission.DueDate != nil {
		dueDate = *commission.DueDate
	}
	return utils.SendOverdueCommissionEmail(establishment.Email, establishment.Name, commission.Amount, dueDate)
}
