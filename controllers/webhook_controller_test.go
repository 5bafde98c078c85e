package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gabrielmaialva33/giftcard-platform-api/gateway"
	"github.com/gabrielmaialva33/giftcard-platform-api/models"
	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookRouter() *gin.Engine {
	router := gin.New()
	router.POST("/api/v1/webhooks/gateway", HandleGatewayWebhook)
	return router
}

func TestHandleGatewayWebhook_RejectsBadToken(t *testing.T) {
	db, cleanup := setupControllerTest(t)
	defer cleanup()

	router := newWebhookRouter()

	cases := []struct {
		name    string
		headers map[string]string
	}{
		{name: "missing token"},
		{name: "wrong token", headers: map[string]string{gateway.WebhookTokenHeader: "whsec_other"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := utils.MakeTestRequest(t, router, utils.TestRequest{
				Method:  http.MethodPost,
				Path:    "/api/v1/webhooks/gateway",
				Body:    gin.H{"event": "PAYMENT_CONFIRMED", "payment": gin.H{"id": "pay_1"}},
				Headers: tc.headers,
			})

			utils.AssertResponse(t, resp, http.StatusUnauthorized, map[string]interface{}{
				"status":  "error",
				"message": "Invalid webhook token",
				"data": map[string]interface{}{
					"error": map[string]interface{}{"kind": utils.KindSignature},
				},
			})
		})
	}

	var events int64
	require.NoError(t, db.Model(&models.WebhookEvent{}).Count(&events).Error)
	assert.Zero(t, events)
}

func TestHandleGatewayWebhook_RejectsUnparseablePayload(t *testing.T) {
	db, cleanup := setupControllerTest(t)
	defer cleanup()

	router := newWebhookRouter()

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/gateway", strings.NewReader("{not json"))
		req.Header.Set(gateway.WebhookTokenHeader, "whsec_test")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Malformed webhook payload")
	})

	t.Run("missing event type", func(t *testing.T) {
		resp := utils.MakeTestRequest(t, router, utils.TestRequest{
			Method:  http.MethodPost,
			Path:    "/api/v1/webhooks/gateway",
			Body:    gin.H{"payment": gin.H{"id": "pay_1"}},
			Headers: map[string]string{gateway.WebhookTokenHeader: "whsec_test"},
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing event type", resp.Body["message"])
	})

	var events int64
	require.NoError(t, db.Model(&models.WebhookEvent{}).Count(&events).Error)
	assert.Zero(t, events)
}

func TestHandleGatewayWebhook_QueuesKnownEvent(t *testing.T) {
	db, cleanup := setupControllerTest(t)
	defer cleanup()

	resp := utils.MakeTestRequest(t, newWebhookRouter(), utils.TestRequest{
		Method: http.MethodPost,
		Path:   "/api/v1/webhooks/gateway",
		Body: gin.H{
			"event":   "PAYMENT_CONFIRMED",
			"payment": gin.H{"id": "pay_hook_1", "paymentDate": "2026-05-10"},
		},
		Headers: map[string]string{gateway.WebhookTokenHeader: "whsec_test"},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Webhook received", resp.Body["message"])

	// The event is persisted untouched and processing is deferred to a job.
	var event models.WebhookEvent
	require.NoError(t, db.First(&event).Error)
	assert.Equal(t, "PAYMENT_CONFIRMED", event.Event)
	assert.Equal(t, "pay_hook_1", event.GatewayPaymentID)
	assert.Nil(t, event.ProcessedAt)

	data, ok := resp.Body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, event.ID, data["event_id"])

	var job models.Job
	require.NoError(t, db.First(&job).Error)
	assert.Equal(t, models.JobKindWebhookProcess, job.Kind)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Contains(t, string(job.Payload), fmt.Sprintf(`"event_id":%d`, event.ID))
}

func TestHandleGatewayWebhook_RecordsUnknownEventWithoutJob(t *testing.T) {
	db, cleanup := setupControllerTest(t)
	defer cleanup()

	resp := utils.MakeTestRequest(t, newWebhookRouter(), utils.TestRequest{
		Method:  http.MethodPost,
		Path:    "/api/v1/webhooks/gateway",
		Body:    gin.H{"event": "PAYMENT_CREATED", "payment": gin.H{"id": "pay_new"}},
		Headers: map[string]string{gateway.WebhookTokenHeader: "whsec_test"},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var event models.WebhookEvent
	require.NoError(t, db.First(&event).Error)
	assert.Equal(t, "PAYMENT_CREATED", event.Event)
	assert.NotNil(t, event.ProcessedAt)

	var jobCount int64
	require.NoError(t, db.Model(&models.Job{}).Count(&jobCount).Error)
	assert.Zero(t, jobCount)
}
