//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cod-verifier/internal/verification"
)

type testClient struct {
	t       *testing.T
	router  http.Handler
	cookies []*http.Cookie
}

func newTestClient(t *testing.T, fx *webFixture) *testClient {
	return &testClient{t: t, router: fx.server.Routes()}
}

func (c *testClient) do(method, path string, body any) (*httptest.ResponseRecorder, statusResponse) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	if got := rec.Result().Cookies(); len(got) > 0 {
		c.cookies = got
	}
	var resp statusResponse
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func (c *testClient) start() statusResponse {
	c.t.Helper()
	rec, resp := c.do(http.MethodPost, "/api/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		c.t.Fatalf("create session: expected 201, got %d", rec.Code)
	}
	if resp.SessionID == "" {
		c.t.Fatal("create session: missing session_id")
	}
	return resp
}

func TestCreateSession(t *testing.T) {
	fx := newWebFixture()
	c := newTestClient(t, fx)

	resp := c.start()
	if resp.Status.SendLabel != "Send OTP" {
		t.Errorf("expected initial send label %q, got %q", "Send OTP", resp.Status.SendLabel)
	}
	if resp.Status.PlaceOrderEnabled {
		t.Error("place order must start locked for cod")
	}
	if len(c.cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
}

func TestSessionEndpointsRequireAuth(t *testing.T) {
	fx := newWebFixture()
	c := newTestClient(t, fx)

	rec, _ := c.do(http.MethodGet, "/api/v1/session/status", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: expected 401, got %d", rec.Code)
	}

	c.cookies = []*http.Cookie{{Name: "checkout_session", Value: "not-a-jwt"}}
	rec, _ = c.do(http.MethodGet, "/api/v1/session/status", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bogus token: expected 401, got %d", rec.Code)
	}
}

func TestOTPFlowOverHTTP(t *testing.T) {
	fx := newWebFixture()
	fx.otp.testCode = "123456"
	c := newTestClient(t, fx)
	c.start()

	_, _ = c.do(http.MethodPost, "/api/v1/session/country", map[string]string{"country": "+91"})
	_, resp := c.do(http.MethodPost, "/api/v1/session/phone", map[string]string{"phone": "7039940998"})
	if !resp.Status.SendEnabled {
		t.Fatal("valid number must enable send")
	}

	rec, resp := c.do(http.MethodPost, "/api/v1/session/otp/send", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("send: expected 200, got %d", rec.Code)
	}
	if resp.TestCode != "123456" {
		t.Errorf("expected surfaced test code, got %q", resp.TestCode)
	}
	if resp.ResendIn == 0 {
		t.Error("expected an active resend cooldown")
	}

	_, _ = c.do(http.MethodPost, "/api/v1/session/code", map[string]string{"code": "123456"})
	rec, resp = c.do(http.MethodPost, "/api/v1/session/otp/verify", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", rec.Code)
	}
	if resp.Status.OTPBadge != verification.BadgeVerified {
		t.Errorf("expected badge %q, got %q", verification.BadgeVerified, resp.Status.OTPBadge)
	}
	if !resp.Markers.OTPVerified {
		t.Error("otp_verified marker must be set after verification")
	}

	// the refreshed session token carries the marker as a claim
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/status", nil)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	claims, err := fx.auth.ParseFromRequest(req)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if !claims.OTPVerified {
		t.Error("refreshed token must claim otp_verified")
	}
}

func TestOTPSendRejectsInvalidPhone(t *testing.T) {
	fx := newWebFixture()
	c := newTestClient(t, fx)
	c.start()

	_, _ = c.do(http.MethodPost, "/api/v1/session/phone", map[string]string{"phone": "12345"})
	rec, _ := c.do(http.MethodPost, "/api/v1/session/otp/send", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid phone, got %d", rec.Code)
	}
	if fx.otp.sends != 0 {
		t.Error("invalid phone must not reach the OTP server")
	}
}

func TestTokenPaymentOverHTTP(t *testing.T) {
	fx := newWebFixture()
	c := newTestClient(t, fx)
	c.start()

	rec, resp := c.do(http.MethodPost, "/api/v1/session/token/pay", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay: expected 200, got %d", rec.Code)
	}
	if resp.Order == nil || resp.Order.OrderRef != "order_test_1" {
		t.Fatalf("expected gateway order details, got %+v", resp.Order)
	}

	rec, resp = c.do(http.MethodPost, "/api/v1/session/token/success", map[string]string{
		"razorpay_payment_id": "pay_1",
		"razorpay_order_id":   "order_test_1",
		"razorpay_signature":  "sig",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("success callback: expected 200, got %d", rec.Code)
	}
	if resp.Markers.TokenVerified {
		t.Error("token marker must wait for the confirmation checkbox")
	}

	_, resp = c.do(http.MethodPost, "/api/v1/session/confirm", map[string]bool{"checked": true})
	if !resp.Markers.TokenVerified {
		t.Error("token_verified marker must be set after confirmation")
	}
}

func TestGateOpensAfterBothSteps(t *testing.T) {
	fx := newWebFixture()
	fx.otp.testCode = "654321"
	c := newTestClient(t, fx)
	c.start()

	_, _ = c.do(http.MethodPost, "/api/v1/session/phone", map[string]string{"phone": "7039940998"})
	_, _ = c.do(http.MethodPost, "/api/v1/session/otp/send", nil)
	_, _ = c.do(http.MethodPost, "/api/v1/session/code", map[string]string{"code": "654321"})
	_, _ = c.do(http.MethodPost, "/api/v1/session/otp/verify", nil)

	_, _ = c.do(http.MethodPost, "/api/v1/session/token/pay", nil)
	_, _ = c.do(http.MethodPost, "/api/v1/session/token/success", map[string]string{
		"razorpay_payment_id": "pay_1",
		"razorpay_order_id":   "order_test_1",
		"razorpay_signature":  "sig",
	})
	_, resp := c.do(http.MethodPost, "/api/v1/session/confirm", map[string]bool{"checked": true})

	if !resp.Status.PlaceOrderEnabled {
		t.Error("place order must unlock after both steps and confirmation")
	}
	if resp.Status.WarningVisible {
		t.Error("warning must hide once the gate is complete")
	}
}

func TestGatewayRejectionRendersFailure(t *testing.T) {
	fx := newWebFixture()
	fx.pays.verifyErr = verification.Reject("Payment verification failed. Please contact support.")
	c := newTestClient(t, fx)
	c.start()

	_, _ = c.do(http.MethodPost, "/api/v1/session/token/pay", nil)
	rec, resp := c.do(http.MethodPost, "/api/v1/session/token/success", map[string]string{
		"razorpay_payment_id": "pay_1",
		"razorpay_order_id":   "order_test_1",
		"razorpay_signature":  "bad",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rejection renders through status, expected 200, got %d", rec.Code)
	}
	if resp.Markers.TokenVerified {
		t.Error("rejected payment must not set the marker")
	}
	if resp.Status.TokenMessage == "" {
		t.Error("expected a failure message in the status document")
	}
}

func TestPaymentMethodTogglesPanel(t *testing.T) {
	fx := newWebFixture()
	c := newTestClient(t, fx)
	c.start()

	_, resp := c.do(http.MethodPost, "/api/v1/session/payment-method", map[string]string{"method": "card"})
	if resp.Status.PanelVisible {
		t.Error("panel must hide for non-cod methods")
	}
	if !resp.Status.PlaceOrderEnabled {
		t.Error("non-cod methods are not gated")
	}

	_, resp = c.do(http.MethodPost, "/api/v1/session/payment-method", map[string]string{"method": "cod"})
	if !resp.Status.PanelVisible {
		t.Error("panel must return when cod is reselected")
	}
	if resp.Status.PlaceOrderEnabled {
		t.Error("cod locks place order until the gate completes")
	}
}

func TestDropSession(t *testing.T) {
	fx := newWebFixture()
	c := newTestClient(t, fx)
	created := c.start()

	rec, _ := c.do(http.MethodDelete, "/api/v1/session/", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("drop: expected 204, got %d", rec.Code)
	}
	if _, err := fx.repo.Get(context.Background(), created.SessionID); err == nil {
		t.Error("expected snapshot cleared after drop")
	}
}

func TestCORSAllowList(t *testing.T) {
	fx := newWebFixture()
	router := fx.server.Routes()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight: expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin must get no CORS header, got %q", got)
	}
}

func TestHealthz(t *testing.T) {
	fx := newWebFixture()
	router := fx.server.Routes()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

