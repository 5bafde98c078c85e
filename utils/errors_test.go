package utils

import (
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructorsCarryKindAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		kind   string
		status int
	}{
		{"validation", NewValidationError("bad input", nil), KindValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), KindNotFound, http.StatusNotFound},
		{"insufficient balance", NewInsufficientBalanceError(decimal.New(10, 0), decimal.New(25, 0)), KindInsufficientBalance, http.StatusUnprocessableEntity},
		{"invalid operation", NewInvalidOperationError("card is used"), KindInvalidOperation, http.StatusUnprocessableEntity},
		{"conflict", NewConflictError("busy", nil), KindConflict, http.StatusConflict},
		{"gateway", NewGatewayError("down", nil), KindGateway, http.StatusBadGateway},
		{"signature", NewSignatureError("bad token"), KindSignature, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.err.Kind)
			assert.Equal(t, tc.status, tc.err.Code)
		})
	}
}

func TestInsufficientBalanceErrorReportsAmounts(t *testing.T) {
	err := NewInsufficientBalanceError(
		decimal.RequireFromString("10.50"),
		decimal.RequireFromString("25.00"),
	)

	assert.Contains(t, err.Message, "available 10.50")
	assert.Contains(t, err.Message, "requested 25.00")
	require.NotNil(t, err.Details)
	assert.Equal(t, "10.50", err.Details["available"])
	assert.Equal(t, "25.00", err.Details["requested"])
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsNotFoundError(NewNotFoundError("missing")))
	assert.False(t, IsNotFoundError(NewConflictError("busy", nil)))
	assert.False(t, IsNotFoundError(errors.New("plain error")))

	assert.True(t, IsValidationError(NewValidationError("bad", nil)))
	assert.True(t, IsConflictError(NewConflictError("busy", nil)))
	assert.True(t, IsGatewayError(NewGatewayError("down", nil)))
	assert.True(t, IsInvalidOperationError(NewInvalidOperationError("nope")))
	assert.True(t, IsInsufficientBalanceError(NewInsufficientBalanceError(decimal.Zero, decimal.New(1, 0))))
}

func TestAppErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewGatewayError("Gateway request failed", cause)

	assert.Contains(t, err.Error(), "Gateway request failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "context"))

	wrapped := WrapError(errors.New("boom"), "loading card")
	require.Error(t, wrapped)
	assert.Equal(t, "loading card: boom", wrapped.Error())
}
