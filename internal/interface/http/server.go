// Package http implements the REST surface of the LSMS backend:
// student-record CRUD per level, the identity cross-check, lecturer
// signup/login with OTP second factor, credential recovery, and the
// administrator bootstrap.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/landmark-lsms/lsms-backend/internal/domain/admin"
	"github.com/landmark-lsms/lsms-backend/internal/domain/lecturer"
	"github.com/landmark-lsms/lsms-backend/internal/domain/otp"
	"github.com/landmark-lsms/lsms-backend/internal/domain/record"
	"github.com/landmark-lsms/lsms-backend/internal/infrastructure/mail"
	"github.com/landmark-lsms/lsms-backend/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Host - address to bind (default: "0.0.0.0").
	Host string

	// Port - port to listen on (default: 5500).
	Port int

	// ReadTimeout - maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout - maximum duration for writing the response.
	WriteTimeout time.Duration

	// IdleTimeout - maximum duration for idle connections.
	IdleTimeout time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int

	// MaxBodyBytes - maximum size of request bodies. Approval requests
	// carry base64 images, so this is generous.
	MaxBodyBytes int64

	// EnableCORS - enable CORS headers.
	EnableCORS bool

	// AllowedOrigins - allowed origins for CORS.
	AllowedOrigins []string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           5500,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,  // 1 MB
		MaxBodyBytes:   10 << 20, // 10 MB
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
	}
}

// Address returns the server address string.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// ApprovalSender dispatches account-approval requests to an admin.
// mail.Notifier satisfies it.
type ApprovalSender interface {
	SendApprovalRequest(ctx context.Context, adminEmail, requesterEmail string, id mail.Attachment) error
}

// Dependencies contains everything the handlers call into.
type Dependencies struct {
	Roster     *record.Roster
	CrossCheck *record.CrossCheck
	Directory  *lecturer.Directory
	Admin      *admin.Service
	OTP        *otp.Manager
	Approvals  ApprovalSender
	Logger     *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	logger     *logger.Logger

	mu      sync.RWMutex
	running bool
}

// NewServer creates a new HTTP server with the given configuration and
// dependencies.
func NewServer(config Config, deps Dependencies) *Server {
	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger,
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}
	s.logger = s.logger.With(logger.Component("http"))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           config.Address(),
		Handler:        s.buildMiddlewareChain(s.router),
		ReadTimeout:    config.ReadTimeout,
		WriteTimeout:   config.WriteTimeout,
		IdleTimeout:    config.IdleTimeout,
		MaxHeaderBytes: config.MaxHeaderBytes,
	}

	return s
}

// Handler returns the full middleware-wrapped handler. Exposed for
// tests driving the server through httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)

	// ─────────────────────────────────────────────────────────────────────────
	// Student records
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /students", s.handleUpsertStudent)
	s.router.HandleFunc("GET /students", s.handleListStudents)
	s.router.HandleFunc("GET /students/{roll_number}", s.handleGetStudent)
	s.router.HandleFunc("GET /students/{roll_number}/average", s.handleGetAverage)
	s.router.HandleFunc("GET /api/class-list", s.handleClassList)
	s.router.HandleFunc("POST /api/student-validate", s.handleCrossCheck)
	s.router.HandleFunc("POST /api/student-search-file", s.handlePartitionSearch)
	s.router.HandleFunc("POST /api/student-average-file", s.handlePartitionAverage)

	// ─────────────────────────────────────────────────────────────────────────
	// Lecturer accounts & OTP login
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/lecturer/signup", s.handleSignup)
	s.router.HandleFunc("POST /api/lecturer/login", s.handleLogin)
	s.router.HandleFunc("POST /api/lecturer/forgot-password", s.handleForgotPassword)
	s.router.HandleFunc("POST /api/lecturer/check-email", s.handleCheckEmail)
	s.router.HandleFunc("POST /api/lecturer/send-otp", s.handleSendOTP)
	s.router.HandleFunc("POST /api/lecturer/validate-otp", s.handleValidateOTP)
	s.router.HandleFunc("GET /api/lecturers", s.handleListLecturers)

	// ─────────────────────────────────────────────────────────────────────────
	// Administrator bootstrap
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /api/admin/exists", s.handleAdminExists)
	s.router.HandleFunc("POST /api/admin/copy", s.handleAdminBootstrap)
	s.router.HandleFunc("POST /api/admin/check-pass", s.handleAdminCheckPass)

	// ─────────────────────────────────────────────────────────────────────────
	// Approval requests
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("POST /api/send-approval-email", s.handleApprovalRequest)
}

// Start begins listening. It blocks until the server stops.
func (s *Server) Start() error {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("http server starting", logger.String("addr", s.config.Address()))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
