// Package sms holds the delivery providers behind the OTP dispatch port.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nyaruka/phonenumbers"

	"cod-verifier/internal/domain/ports/adapter"
)

var _ adapter.SMSProvider = (*MSG91Provider)(nil)

// MSG91Provider delivers passcodes through the MSG91 OTP API.
type MSG91Provider struct {
	authKey    string
	templateID string
	baseURL    string
	client     *http.Client
}

func NewMSG91Provider(authKey, templateID, baseURL string) *MSG91Provider {
	if baseURL == "" {
		baseURL = "https://control.msg91.com/api/v5"
	}
	return &MSG91Provider{
		authKey:    authKey,
		templateID: templateID,
		baseURL:    baseURL,
		client:     &http.Client{},
	}
}

func (p *MSG91Provider) Name() string { return "msg91" }

type msg91Response struct {
	Type    string `json:"type"` // success | error
	Message string `json:"message"`
}

func (p *MSG91Provider) SendCode(ctx context.Context, phone, code string) error {
	// MSG91 wants the number without the leading plus
	normalized, err := normalizeE164(phone)
	if err != nil {
		return err
	}

	requestData := map[string]interface{}{
		"template_id": p.templateID,
		"mobile":      normalized[1:],
		"otp":         code,
	}
	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/otp", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authkey", p.authKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var response msg91Response
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if response.Type != "success" {
		return fmt.Errorf("msg91 error: %s", response.Message)
	}
	return nil
}

// normalizeE164 re-parses the number so the provider always receives a
// canonical E.164 value regardless of how the caller formatted it.
func normalizeE164(phone string) (string, error) {
	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return "", fmt.Errorf("parse phone %q: %w", phone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone %q", phone)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
