// File: internal/infra/web/server.go
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"cod-verifier/internal/verification"
)

type ctxKey int

const sessionCtxKey ctxKey = iota

// Server exposes the verification panel over HTTP. Every event the panel
// fires (country change, keystrokes, button presses, gateway callbacks)
// lands here, and every response carries the freshly projected status
// document so the page can re-render without a second round trip.
type Server struct {
	manager        *verification.Manager
	auth           *AuthManager
	allowedOrigins []string
	log            *zerolog.Logger
}

func NewServer(manager *verification.Manager, auth *AuthManager, allowedOrigins []string, logger *zerolog.Logger) *Server {
	return &Server{
		manager:        manager,
		auth:           auth,
		allowedOrigins: allowedOrigins,
		log:            logger,
	}
}

// Routes builds the router for the public checkout-verification API.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Get("/healthz", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.createSessionHandler)

		r.Route("/session", func(r chi.Router) {
			r.Use(s.sessionMiddleware)

			r.Get("/status", s.statusHandler)
			r.Delete("/", s.dropSessionHandler)

			r.Post("/country", s.countryHandler)
			r.Post("/phone", s.phoneHandler)
			r.Post("/code", s.codeHandler)
			r.Post("/otp/send", s.otpSendHandler)
			r.Post("/otp/verify", s.otpVerifyHandler)
			r.Post("/otp/reset", s.otpResetHandler)

			r.Post("/token/pay", s.tokenPayHandler)
			r.Post("/token/success", s.tokenSuccessHandler)
			r.Post("/token/failure", s.tokenFailureHandler)

			r.Post("/confirm", s.confirmHandler)
			r.Post("/payment-method", s.paymentMethodHandler)
			r.Post("/checkout-updated", s.checkoutUpdatedHandler)
		})
	})

	return r
}

// sessionMiddleware resolves the caller's verification session from the
// signed cookie (or bearer token) and stashes it in the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		sess, err := s.manager.Get(r.Context(), claims.SessionID)
		if err != nil {
			// expired snapshot or unknown id; the page starts over
			http.Error(w, "Session expired", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *verification.Session {
	sess, _ := r.Context().Value(sessionCtxKey).(*verification.Session)
	return sess
}

// corsMiddleware admits only the storefront origins from configuration.
// The allow-list is deliberate: the cookie is the session credential, and
// a wildcard origin with credentials is not a thing browsers permit.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, allowed := range s.allowedOrigins {
				if origin == allowed {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Set("Vary", "Origin")
					break
				}
			}
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
