package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gabrielmaialva33/giftcard-platform-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest captures what the client actually sent
type recordedRequest struct {
	method      string
	path        string
	token       string
	contentType string
	body        string
}

func recordingServer(t *testing.T, status int, response string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	recorded := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("Failed to read request body: %v", err)
		}
		recorded.method = r.Method
		recorded.path = r.URL.Path
		recorded.token = r.Header.Get("access_token")
		recorded.contentType = r.Header.Get("Content-Type")
		recorded.body = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, response)
	}))
	return server, recorded
}

func TestCreateCharge_AuthenticatesAndParses(t *testing.T) {
	server, recorded := recordingServer(t, http.StatusOK,
		`{"id":"pay_001","customer":"cus_001","billingType":"BOLETO","value":55.5,"status":"PENDING","dueDate":"2026-09-01","invoiceUrl":"https://gateway.test/i/pay_001"}`)
	defer server.Close()

	client := NewClient(server.URL, "key_live_abc")
	charge, err := client.CreateCharge(context.Background(), ChargeRequest{
		Customer:          "cus_001",
		BillingType:       "BOLETO",
		Value:             55.5,
		DueDate:           "2026-09-01",
		ExternalReference: "ref-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "pay_001", charge.ID)
	assert.Equal(t, "PENDING", charge.Status)
	assert.Equal(t, "https://gateway.test/i/pay_001", charge.InvoiceURL)

	assert.Equal(t, http.MethodPost, recorded.method)
	assert.Equal(t, "/payments", recorded.path)
	assert.Equal(t, "key_live_abc", recorded.token)
	assert.Equal(t, "application/json", recorded.contentType)
	assert.Contains(t, recorded.body, `"externalReference":"ref-1"`)
	assert.Contains(t, recorded.body, `"billingType":"BOLETO"`)
}

func TestCreateCustomer_ParsesResponse(t *testing.T) {
	server, recorded := recordingServer(t, http.StatusOK,
		`{"id":"cus_42","name":"Cafeteria Central","cpfCnpj":"11222333000181"}`)
	defer server.Close()

	// Trailing slash on the base URL must not double up
	client := NewClient(server.URL+"/", "key_live_abc")
	customer, err := client.CreateCustomer(context.Background(), CustomerRequest{
		Name:    "Cafeteria Central",
		CpfCnpj: "11222333000181",
		Email:   "central@sabormineiro.com.br",
	})

	require.NoError(t, err)
	assert.Equal(t, "cus_42", customer.ID)
	assert.Equal(t, "/customers", recorded.path)
	assert.Contains(t, recorded.body, `"cpfCnpj":"11222333000181"`)
}

func TestClient_SurfacesGatewayErrorDescription(t *testing.T) {
	server, _ := recordingServer(t, http.StatusBadRequest,
		`{"errors":[{"code":"invalid_object","description":"The CPF/CNPJ is invalid"}]}`)
	defer server.Close()

	client := NewClient(server.URL, "key_live_abc")
	_, err := client.CreateCustomer(context.Background(), CustomerRequest{Name: "x", CpfCnpj: "0"})

	require.Error(t, err)
	assert.True(t, utils.IsGatewayError(err))
	assert.Contains(t, err.Error(), "The CPF/CNPJ is invalid")
}

func TestClient_FallsBackToStatusOnOpaqueError(t *testing.T) {
	server, _ := recordingServer(t, http.StatusServiceUnavailable, "upstream down")
	defer server.Close()

	client := NewClient(server.URL, "key_live_abc")
	_, err := client.CreateCharge(context.Background(), ChargeRequest{Customer: "cus_1"})

	require.Error(t, err)
	assert.True(t, utils.IsGatewayError(err))
	assert.Contains(t, err.Error(), "Gateway returned status 503")
}

func TestClient_ReportsConnectionFailure(t *testing.T) {
	server, _ := recordingServer(t, http.StatusOK, `{}`)
	url := server.URL
	server.Close()

	client := NewClient(url, "key_live_abc")
	_, err := client.CreateCharge(context.Background(), ChargeRequest{Customer: "cus_1"})

	require.Error(t, err)
	assert.True(t, utils.IsGatewayError(err))
}
