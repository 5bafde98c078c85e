package controllers

import (
	"encoding/json"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/config"
	"github.com/gabrielmaialva33/giftcard-platform-api/gateway"
	"github.com/gabrielmaialva33/giftcard-platform-api/jobs"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HandleGatewayWebhook ingests payment gateway notifications. The token is
// verified and the payload parsed synchronously; everything else happens in a
// queued job so the gateway gets its acknowledgment fast. A failure to
// persist the event answers 500, which makes the gateway redeliver.
func HandleGatewayWebhook(c *gin.Context) {
	if !gateway.VerifyWebhookToken(c.GetHeader(gateway.WebhookTokenHeader), webhookToken) {
		utils.LogError("Webhook rejected: invalid access token")
		utils.RespondWithError(c, utils.NewSignatureError("Invalid webhook token"))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		utils.LogError("Webhook body read failed: %v", err)
		utils.BadRequest(c, "Unable to read request body", nil)
		return
	}

	var payload gateway.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.LogError("Webhook payload parse failed: %v", err)
		utils.BadRequest(c, "Malformed webhook payload", nil)
		return
	}
	if payload.Event == "" {
		utils.BadRequest(c, "Missing event type", nil)
		return
	}

	event := models.WebhookEvent{
		Event:            payload.Event,
		GatewayPaymentID: payload.Payment.ID,
		Payload:          datatypes.JSON(body),
	}

	if !gateway.IsKnownEvent(payload.Event) {
		// Audit trail only; there is nothing to process.
		utils.LogInfo("Webhook event %s ignored for payment %s", payload.Event, payload.Payment.ID)
		now := time.Now()
		event.ProcessedAt = &now
		if err := config.DB.Create(&event).Error; err != nil {
			utils.LogError("Webhook event save failed: %v", err)
			utils.InternalServerError(c, "Failed to record webhook event", nil)
			return
		}
		utils.Success(c, "Webhook received", gin.H{"event_id": event.ID})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		_, err := jobs.Enqueue(tx, models.JobKindWebhookProcess, map[string]interface{}{
			"event_id": event.ID,
		}, nil)
		return err
	})
	if err != nil {
		utils.LogError("Webhook event save failed: %v", err)
		utils.InternalServerError(c, "Failed to record webhook event", nil)
		return
	}

	utils.LogInfo("Webhook event %s queued for payment %s", payload.Event, payload.Payment.ID)
	utils.Success(c, "Webhook received", gin.H{"event_id": event.ID})
}
