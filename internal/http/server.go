// Package http exposes the ledger to the rendering layer as a small JSON
// API: read-only projections plus the confirmation-gated mutators.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"comunidad/internal/service"
)

type Server struct {
	http.Server
	svc         *service.Service
	rateLimiter *rateLimiter
}

// NewServer configures routes and returns a ready-to-run http.Server.
func NewServer(addr string, svc *service.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:         svc,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /units", s.withMiddleware(s.handleUnits))
	mux.HandleFunc("GET /status", s.withMiddleware(s.handleStatus))
	mux.HandleFunc("GET /history", s.withMiddleware(s.handleHistory))
	mux.HandleFunc("GET /report", s.withMiddleware(s.handleReport))
	mux.HandleFunc("GET /expenses/{id}/detail", s.withMiddleware(s.handleExpenseDetail))

	mux.HandleFunc("POST /expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("POST /payments", s.withMiddleware(s.handleCreatePayment))
	mux.HandleFunc("DELETE /expenses/{id}", s.withMiddleware(s.handleDeleteExpense))
	mux.HandleFunc("DELETE /payments/{id}", s.withMiddleware(s.handleDeletePayment))
	mux.HandleFunc("POST /reset", s.withMiddleware(s.handleReset))
	mux.HandleFunc("POST /report/export", s.withMiddleware(s.handleExportReport))

	return s
}

// withMiddleware adds request ids, logging, security headers and rate
// limiting on mutating methods.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		// Destructive mutators only proceed when the caller confirms.
		if r.URL.Query().Get("confirm") == "true" {
			ctx = withConfirmation(ctx)
		}
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	confirmedKey contextKey = "confirmed"
)

func withConfirmation(ctx context.Context) context.Context {
	return context.WithValue(ctx, confirmedKey, true)
}

func confirmed(ctx context.Context) bool {
	ok, _ := ctx.Value(confirmedKey).(bool)
	return ok
}

// Confirmer returns the request-scoped confirmation capability handed to
// the service: a mutator is confirmed when its request carried
// confirm=true.
func Confirmer() service.Confirmer {
	return service.ConfirmerFunc(func(ctx context.Context, _ string) bool {
		return confirmed(ctx)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory rate limiter for mutating requests.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{clients: make(map[string]*clientInfo)}
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists || now.Sub(client.lastRequest) > time.Minute {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	// Allow up to 60 mutating requests per minute.
	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}
