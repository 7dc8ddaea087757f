package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
	"github.com/sourishdey2005/fraud--detection/internal/ocr"
	"github.com/sourishdey2005/fraud--detection/internal/rules"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, store domain.SessionStore, repo domain.Repository, bus domain.EventBus, engine *rules.Engine, extractor ocr.Extractor, validation domain.ValidationConfig, version string) *Server {
	handler := NewHandler(store, repo, bus, engine, extractor, validation, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Open endpoints (no session required)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)
	router.Post("/register", handler.Register)
	router.Post("/login", handler.Login)
	router.Post("/sessions", handler.CreateSession)

	// API routes (session required)
	router.Route("/", func(r chi.Router) {
		r.Use(SessionMiddleware)

		// Session state
		r.Get("/session", handler.GetSession)
		r.Delete("/session", handler.Logout)

		// Transactions
		r.Post("/transactions", handler.Submit)
		r.Get("/transactions", handler.ListTransactions)
		r.Post("/transactions/{index}/validate", handler.Validate)

		// Fraud detection
		r.Post("/fraud/scan", handler.Scan)
		r.Get("/alerts", handler.ListAlerts)

		// Credential verification
		r.Post("/verify/tax-id", handler.VerifyTaxID)
		r.Post("/verify/registration", handler.VerifyRegistration)
		r.Post("/verify/bank-account", handler.VerifyBankAccount)
		r.Post("/verify/identity", handler.VerifyIdentity)
		r.Post("/verify/qr", handler.VerifyQR)
		r.Get("/verification", handler.GetVerification)

		// Rule management
		r.Get("/rules", handler.ListRules)
		r.Post("/rules", handler.CreateRule)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
