package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
)

// Coach is the running coach loop as seen by HTTP handlers.
type Coach interface {
	Status() models.Status
	Say(text string) error
	Start(ctx context.Context, plan string) error
}

// PlanLister lists the plans that can be started.
type PlanLister interface {
	List() []models.Plan
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	coach   Coach
	plans   PlanLister
	history storage.History
	log     *slog.Logger
	apiKey  string
	router  chi.Router
	whois   WhoIser

	streamInterval time.Duration
}

// New creates a new Server with all routes configured. history may be nil
// when history is disabled.
func New(coach Coach, plans PlanLister, history storage.History, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		coach:          coach,
		plans:          plans,
		history:        history,
		log:            log,
		apiKey:         apiKey,
		router:         chi.NewRouter(),
		streamInterval: 200 * time.Millisecond,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches request identity from the dev user to the Tailscale
// peer that made the request.
func (s *Server) SetTailscale(w WhoIser) {
	s.whois = w
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Commands change session state (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/utterances", s.handleUtterance)
		r.Post("/api/v1/sessions", s.handleStartSession)
	})

	// Read-only endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/status", s.handleStatus)
	s.router.Get("/api/v1/status/stream", s.handleStatusStream)
	s.router.Get("/api/v1/plans", s.handlePlans)
	s.router.Get("/api/v1/history", s.handleHistory)
	s.router.Get("/api/v1/history/stats", s.handleHistoryStats)
	s.router.Get("/api/v1/history/{id}", s.handleSessionSets)
}

func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			DevIdentity(next).ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.log)(next).ServeHTTP(w, r)
	})
}
