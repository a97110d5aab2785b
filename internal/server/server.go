// Package server provides the HTTP REST API for the agent service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flashcording/agent-service/internal/analysis"
	"github.com/flashcording/agent-service/internal/chat"
	"github.com/flashcording/agent-service/internal/config"
	"github.com/flashcording/agent-service/internal/db"
	"github.com/flashcording/agent-service/internal/gamification"
	"github.com/flashcording/agent-service/internal/jobs"
	"github.com/flashcording/agent-service/internal/llm"
	"github.com/flashcording/agent-service/internal/server/ratelimit"
	"github.com/flashcording/agent-service/migrations"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	gateway     llm.Client
	manager     *jobs.Manager
	chat        *chat.Adapter
	analyzer    *analysis.Analyzer
	awarder     *gamification.Awarder
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
}

// New creates a new server instance
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(ctx, migrations.FS); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	gateway, err := llm.NewGateway(ctx, &llm.Config{
		OpenAIKey:    cfg.OpenAIKey,
		AnthropicKey: cfg.AnthropicKey,
		GeminiKey:    cfg.GeminiKey,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM gateway: %w", err)
	}

	s := &Server{
		db:      database,
		gateway: gateway,
	}

	s.awarder = gamification.NewAwarder(database)
	s.manager = jobs.NewManager(database, gateway, s.awarder, jobs.Options{
		Workers:           cfg.Workers,
		QueueSize:         cfg.QueueSize,
		HeartbeatInterval: cfg.HeartbeatInterval,
		LeaseWindow:       cfg.LeaseWindow,
	})
	s.chat = chat.New(database, gateway)
	s.analyzer = analysis.NewAnalyzer(gateway)

	// Initialize rate limiter
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	// Initialize authentication services
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // SSE streams stay open across a full run
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request router. Agent, chat, and profile endpoints all
// require a valid token; registration, login, and health do not.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.HandleFunc("GET /health", s.handleHealth)

	protected := func(h http.HandlerFunc) http.Handler {
		return AuthRequired(s.jwtService)(h)
	}

	mux.Handle("PUT /auth/password", protected(s.handleUpdatePassword))
	mux.Handle("GET /users/me", protected(s.handleGetMe))
	mux.Handle("GET /users/me/activities", protected(s.handleListActivities))

	mux.Handle("POST /agent/jobs", protected(s.handleCreateJob))
	mux.Handle("GET /agent/jobs", protected(s.handleListJobs))
	mux.Handle("GET /agent/jobs/{id}", protected(s.handleGetJob))
	mux.Handle("GET /agent/jobs/{id}/stream", protected(s.handleStreamJob))

	mux.Handle("POST /agent/analyze", protected(s.handleAnalyzeCode))
	mux.Handle("GET /agent/analyses", protected(s.handleListAnalyses))

	mux.Handle("POST /agent/chat", protected(s.handleChat))
	mux.Handle("GET /agent/conversations", protected(s.handleListSessions))
	mux.Handle("GET /agent/conversations/{session_id}", protected(s.handleGetConversation))

	return mux
}

// Start launches the worker pool, begins listening for requests, and blocks
// until shutdown.
func (s *Server) Start() error {
	runCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if err := s.manager.Start(runCtx); err != nil {
		return fmt.Errorf("failed to start job manager: %w", err)
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.manager.Stop()

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if err := s.gateway.Close(); err != nil {
		log.Printf("Error closing LLM gateway: %v", err)
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// RemoteAddr IP for now; X-Forwarded-For would need a trusted proxy list.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
