package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"cod-verifier/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

// RazorpayGateway implements PaymentGateway using direct HTTP calls against
// the Razorpay v1 API with basic auth.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// NewRazorpayGateway creates a new gateway. baseURL is overridable for tests.
func NewRazorpayGateway(keyID, keySecret, baseURL string) *RazorpayGateway {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{},
	}
}

func (g *RazorpayGateway) Name() string  { return "razorpay" }
func (g *RazorpayGateway) KeyID() string { return g.keyID }

// razorpayOrderResponse represents the response from the order creation API
type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// razorpayPaymentResponse represents the response from the payment fetch API
type razorpayPaymentResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"` // created|authorized|captured|refunded|failed
	Captured bool   `json:"captured"`
}

// razorpayRefundResponse represents the response from the refund API
type razorpayRefundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"` // pending|processed|failed
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	requestData := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if notes != nil {
		requestData["notes"] = notes
	}

	var response razorpayOrderResponse
	if err := g.post(ctx, "/orders", requestData, &response); err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", fmt.Errorf("razorpay order response missing id")
	}
	return response.ID, nil
}

// VerifySignature checks the checkout callback HMAC: SHA-256 over
// "orderRef|paymentID" keyed with the API secret, hex encoded.
func (g *RazorpayGateway) VerifySignature(orderRef, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderRef + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*adapter.GatewayPayment, error) {
	var response razorpayPaymentResponse
	if err := g.get(ctx, "/payments/"+paymentID, &response); err != nil {
		return nil, err
	}
	return &adapter.GatewayPayment{
		ID:       response.ID,
		OrderRef: response.OrderID,
		Status:   response.Status,
		Amount:   response.Amount,
		Captured: response.Captured,
	}, nil
}

func (g *RazorpayGateway) Refund(ctx context.Context, paymentID string, amount int64) (adapter.RefundResult, error) {
	requestData := map[string]interface{}{
		"amount": amount,
	}
	var response razorpayRefundResponse
	if err := g.post(ctx, "/payments/"+paymentID+"/refund", requestData, &response); err != nil {
		return adapter.RefundResult{}, err
	}
	return adapter.RefundResult{ID: response.ID, Status: response.Status}, nil
}

func (g *RazorpayGateway) post(ctx context.Context, path string, payload, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, out)
}

func (g *RazorpayGateway) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return g.do(req, out)
}

func (g *RazorpayGateway) do(req *http.Request, out interface{}) error {
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr razorpayError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay error: code %s, description: %s", apiErr.Error.Code, apiErr.Error.Description)
		}
		return fmt.Errorf("razorpay error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	return nil
}
