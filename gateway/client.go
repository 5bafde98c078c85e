package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
)

// Client talks to the payment gateway REST API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a gateway client for the given base URL and API key
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CustomerRequest is the payload for registering a payer with the gateway
type CustomerRequest struct {
	Name    string `json:"name"`
	CpfCnpj string `json:"cpfCnpj"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Customer is the gateway's payer record
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	CpfCnpj string `json:"cpfCnpj"`
}

// ChargeRequest is the payload for issuing a charge against a customer
type ChargeRequest struct {
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	DueDate           string  `json:"dueDate"`
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
}

// Charge is the gateway's record of an issued charge
type Charge struct {
	ID                string  `json:"id"`
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	Status            string  `json:"status"`
	DueDate           string  `json:"dueDate"`
	InvoiceURL        string  `json:"invoiceUrl"`
	BankSlipURL       string  `json:"bankSlipUrl"`
	ExternalReference string  `json:"externalReference"`
}

// CreateCustomer registers a payer with the gateway and returns its ID
func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customers", req, &customer); err != nil {
		return nil, err
	}
	utils.LogInfo("Gateway customer created: %s", customer.ID)
	return &customer, nil
}

// CreateCharge issues a charge against a previously registered customer
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	var charge Charge
	if err := c.do(ctx, http.MethodPost, "/payments", req, &charge); err != nil {
		return nil, err
	}
	utils.LogInfo("Gateway charge created: %s status=%s due=%s", charge.ID, charge.Status, charge.DueDate)
	return &charge, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return utils.NewGatewayError("Failed to encode gateway request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return utils.NewGatewayError("Failed to build gateway request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", c.apiKey)

	utils.LogDebug("Gateway request: %s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		utils.LogError("Gateway request failed: %s %s: %v", method, path, err)
		return utils.NewGatewayError("Gateway request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.NewGatewayError("Failed to read gateway response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := parseGatewayError(resp.StatusCode, data)
		utils.LogError("Gateway rejected %s %s: %s", method, path, message)
		return utils.NewGatewayError(message, nil)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return utils.NewGatewayError("Failed to decode gateway response", err)
		}
	}

	return nil
}

// parseGatewayError extracts the first error description from the gateway's
// error envelope, falling back to the HTTP status
func parseGatewayError(status int, data []byte) string {
	var payload struct {
		Errors []struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && len(payload.Errors) > 0 {
		return fmt.Sprintf("Gateway rejected request: %s", payload.Errors[0].Description)
	}
	return fmt.Sprintf("Gateway returned status %d", status)
}
