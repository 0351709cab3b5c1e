// Package payments is the only place that talks to the Kaspi QR payment API.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// ErrGatewayUnavailable covers transport failures, timeouts and non-success
// responses from invoice creation. Callers must roll back the enclosing
// order-creation transaction when they see it.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

type PaymentState string

const (
	StatePending   PaymentState = "pending"
	StatePaid      PaymentState = "paid"
	StateFailed    PaymentState = "failed"
	StateCancelled PaymentState = "cancelled"
)

type Invoice struct {
	Token      string
	PaymentURL string
}

// Gateway is the boundary to the external payment authority. CheckStatus
// never fails for a well-formed token: on any transport problem it degrades
// to StatePending so a flaky provider can never falsely report paid.
type Gateway interface {
	CreateInvoice(ctx context.Context, orderID uint, amount float64) (Invoice, error)
	CheckStatus(ctx context.Context, token string) PaymentState
}

// KaspiGateway calls the Kaspi QR API over HTTP.
type KaspiGateway struct {
	apiURL     string
	apiKey     string
	merchantID string
	client     *http.Client
}

// NewKaspiGatewayFromEnv builds the gateway from KASPI_* env vars.
func NewKaspiGatewayFromEnv() *KaspiGateway {
	apiURL := os.Getenv("KASPI_API_URL")
	if apiURL == "" {
		apiURL = "https://api.kaspi.kz"
	}
	return &KaspiGateway{
		apiURL:     apiURL,
		apiKey:     os.Getenv("KASPI_API_KEY"),
		merchantID: os.Getenv("KASPI_MERCHANT_ID"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type invoiceResponse struct {
	Token      string `json:"token"`
	PaymentURL string `json:"payment_url"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func (g *KaspiGateway) CreateInvoice(ctx context.Context, orderID uint, amount float64) (Invoice, error) {
	payload := map[string]interface{}{
		"merchant_id": g.merchantID,
		"order_id":    fmt.Sprintf("%d", orderID),
		"amount":      amount,
		"currency":    "KZT",
		"description": fmt.Sprintf("Order #%d at Social Coffee", orderID),
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/qr/invoices", bytes.NewReader(body))
	if err != nil {
		return Invoice{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		return Invoice{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Invoice{}, fmt.Errorf("%w: kaspi returned %d: %s", ErrGatewayUnavailable, resp.StatusCode, raw)
	}

	var parsed invoiceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Invoice{}, fmt.Errorf("%w: bad invoice response: %v", ErrGatewayUnavailable, err)
	}
	if parsed.Token == "" || parsed.PaymentURL == "" {
		return Invoice{}, fmt.Errorf("%w: empty token or payment url", ErrGatewayUnavailable)
	}
	return Invoice{Token: parsed.Token, PaymentURL: parsed.PaymentURL}, nil
}

func (g *KaspiGateway) CheckStatus(ctx context.Context, token string) PaymentState {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"/qr/invoices/"+token+"/status", nil)
	if err != nil {
		return StatePending
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("⚠️ kaspi status check failed: %v", err)
		return StatePending
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("⚠️ kaspi status check returned %d", resp.StatusCode)
		return StatePending
	}

	var parsed statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return StatePending
	}
	switch PaymentState(parsed.Status) {
	case StatePaid, StateFailed, StateCancelled:
		return PaymentState(parsed.Status)
	default:
		return StatePending
	}
}
