// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cod-verifier/internal/domain"
	"cod-verifier/internal/domain/model"
	"cod-verifier/internal/infra/metrics"
	"cod-verifier/internal/verification"
)

// statusResponse is the envelope every session endpoint answers with: the
// projected panel status plus whatever the specific call adds on top.
type statusResponse struct {
	SessionID string                `json:"session_id,omitempty"`
	Status    verification.UIStatus `json:"status"`

	// otp/send extras
	ResendIn int    `json:"resend_in,omitempty"`
	TestCode string `json:"test_code,omitempty"`

	// token/pay extras
	Order *model.OrderDetails `json:"order,omitempty"`

	// hidden checkout-form fields
	Markers model.Markers `json:"markers"`
}

func (s *Server) respond(w http.ResponseWriter, code int, sess *verification.Session, extra func(*statusResponse)) {
	resp := statusResponse{
		Status:  sess.Status(),
		Markers: sess.Markers(),
	}
	if extra != nil {
		extra(&resp)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := s.manager.Create(r.Context())
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	if _, err := s.auth.Mint(w, sess.ID, sess.Markers()); err != nil {
		s.manager.Drop(r.Context(), sess.ID)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	metrics.SessionsCreated.Inc()
	metrics.SessionsActive.Inc()
	s.respond(w, http.StatusCreated, sess, func(resp *statusResponse) {
		resp.SessionID = sess.ID
	})
}

func (s *Server) dropSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.manager.Drop(r.Context(), sess.ID)
	s.auth.Clear(w)
	metrics.SessionsActive.Dec()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, sessionFrom(r), nil)
}

func (s *Server) countryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Country string `json:"country"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)
	sess.OTP.SetCountry(model.CountryCode(req.Country))
	s.respond(w, http.StatusOK, sess, nil)
}

func (s *Server) phoneHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)
	sess.OTP.SetPhone(req.Phone)
	s.respond(w, http.StatusOK, sess, nil)
}

func (s *Server) codeHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)
	sess.OTP.EnterCode(req.Code)
	s.respond(w, http.StatusOK, sess, nil)
}

func (s *Server) otpSendHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	start := time.Now()
	err := sess.OTP.Send(r.Context())
	result := "ok"
	if err != nil {
		result = "fail"
	}
	metrics.OTPSendDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	metrics.OTPSendRequests.WithLabelValues(result, otpSendReason(err)).Inc()

	if code, ok := flowErrorStatus(err); ok {
		http.Error(w, err.Error(), code)
		return
	}
	// rejections are already folded into the flow state; the page renders
	// them from the status document
	s.respond(w, http.StatusOK, sess, func(resp *statusResponse) {
		resp.ResendIn = sess.OTP.CooldownRemaining()
		resp.TestCode = sess.OTP.TestCode()
	})
}

func (s *Server) otpVerifyHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	err := sess.OTP.Verify(r.Context())
	result := "ok"
	if err != nil {
		result = "fail"
	}
	metrics.OTPVerifyRequests.WithLabelValues(result, otpVerifyReason(err)).Inc()

	if code, ok := flowErrorStatus(err); ok {
		http.Error(w, err.Error(), code)
		return
	}
	if sess.Markers().OTPVerified {
		// refresh the token so the marker rides along as a claim
		_, _ = s.auth.Mint(w, sess.ID, sess.Markers())
	}
	s.respond(w, http.StatusOK, sess, nil)
}

func (s *Server) otpResetHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.OTP.ResetForm()
	s.respond(w, http.StatusOK, sess, nil)
}

func (s *Server) tokenPayHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prefill model.CustomerPrefill `json:"prefill"`
	}
	// body is optional; an empty prefill is fine
	_ = decode(r, &req)

	sess := sessionFrom(r)
	sess.Token.SetPrefill(req.Prefill)
	err := sess.Token.Pay(r.Context())
	if err == nil {
		metrics.TokenOrdersCreated.Inc()
	}
	if code, ok := flowErrorStatus(err); ok {
		http.Error(w, err.Error(), code)
		return
	}
	s.respond(w, http.StatusOK, sess, func(resp *statusResponse) {
		resp.Order = sess.Token.Order()
	})
}

func (s *Server) tokenSuccessHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentID string `json:"razorpay_payment_id"`
		OrderRef  string `json:"razorpay_order_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess := sessionFrom(r)
	start := time.Now()
	err := sess.Token.GatewaySucceeded(r.Context(), req.PaymentID, req.OrderRef, req.Signature)
	result := "ok"
	if err != nil {
		result = "fail"
	}
	metrics.PaymentVerifyDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	metrics.PaymentVerifyRequests.WithLabelValues(result, paymentVerifyReason(err)).Inc()

	if code, ok := flowErrorStatus(err); ok {
		http.Error(w, err.Error(), code)
		return
	}
	s.respond(w, http.StatusOK, sess, nil)
}

func (s *Server) tokenFailureHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)
	err := sess.Token.GatewayFailed(r.Context(), req.Reason)
	if code, ok := flowErrorStatus(err); ok {
		http.Error(w, err.Error(), code)
		return
	}
	s.respond(w, http.StatusOK, sess, nil)
}

func (s *Server) confirmHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Checked bool `json:"checked"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)
	wasComplete := sess.Gate.IsComplete()
	before := sess.Markers()
	sess.Token.SetConfirmed(req.Checked)
	if !wasComplete && sess.Gate.IsComplete() {
		metrics.GateCompletions.Inc()
	}
	if sess.Markers() != before {
		_, _ = s.auth.Mint(w, sess.ID, sess.Markers())
	}
	s.respond(w, http.StatusOK, sess, nil)
}

func (s *Server) paymentMethodHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string `json:"method"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)
	sess.Gate.PaymentMethodChanged(req.Method)
	s.respond(w, http.StatusOK, sess, nil)
}

func (s *Server) checkoutUpdatedHandler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Gate.CheckoutUpdated()
	s.respond(w, http.StatusOK, sess, nil)
}

// flowErrorStatus maps flow precondition errors to HTTP codes. Rejections
// and collaborator failures return (0, false): those are rendered through
// the status document, not as HTTP errors.
func flowErrorStatus(err error) (int, bool) {
	var rej *verification.Rejection
	switch {
	case err == nil, errors.As(err, &rej):
		return 0, false
	case errors.Is(err, domain.ErrRequestInFlight):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, domain.ErrCooldownActive),
		errors.Is(err, domain.ErrPaymentNotPending):
		return http.StatusBadRequest, true
	default:
		// network or infra failure already reflected in the flow state
		return 0, false
	}
}

func otpSendReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidPhone), errors.Is(err, domain.ErrRegionNotAllowed):
		return "invalid_phone"
	case errors.Is(err, domain.ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrOperationFailed):
		return "dispatch"
	default:
		return "unknown"
	}
}

func otpVerifyReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired"
	case errors.Is(err, domain.ErrCodeMismatch):
		return "mismatch"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "attempts"
	default:
		return "unknown"
	}
}

func paymentVerifyReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrSignatureMismatch):
		return "signature"
	case errors.Is(err, domain.ErrPaymentNotPending):
		return "not_pending"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOperationFailed):
		return "gateway_state"
	default:
		return "unknown"
	}
}
