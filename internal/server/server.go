package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"tailscale.com/client/local"

	"github.com/claude/liftwise/internal/agent"
	"github.com/claude/liftwise/internal/models"
	"github.com/claude/liftwise/internal/storage"
)

// Store is the persistence surface the handlers need.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, p *models.UserProfile) error

	InsertPlan(ctx context.Context, userID string, plan *models.WorkoutPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*storage.PlanRecord, error)
	ListPlans(ctx context.Context, userID string) ([]storage.PlanSummary, error)
	UpdatePlan(ctx context.Context, plan *models.WorkoutPlan) error
	DeletePlan(ctx context.Context, id uuid.UUID) error
	InsertAdjustment(ctx context.Context, planID uuid.UUID, rec models.AdjustmentRecord) error

	ListContraindications(ctx context.Context) ([]models.ContraindicationRule, error)
}

// Adjuster applies feedback to a plan.
type Adjuster interface {
	AdjustPlan(ctx context.Context, userID string, plan *models.WorkoutPlan, profile *models.UserProfile, text string) (*agent.Adjustment, error)
}

// Generator produces a fresh plan for a profile.
type Generator interface {
	GeneratePlan(ctx context.Context, profile *models.UserProfile) *models.WorkoutPlan
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        Store
	adjuster  Adjuster
	generator Generator
	log       *slog.Logger
	apiKey    string
	lc        *local.Client
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(db Store, adjuster Adjuster, generator Generator, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:        db,
		adjuster:  adjuster,
		generator: generator,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(s.identify)
	s.router.Use(CORS)

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/me", s.handleMe)
	s.router.Get("/api/v1/users/{userID}/profile", s.handleGetProfile)
	s.router.Get("/api/v1/users/{userID}/plans", s.handleListPlans)
	s.router.Get("/api/v1/plans/{id}", s.handleGetPlan)
	s.router.Get("/api/v1/contraindications", s.handleContraindications)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Put("/api/v1/users/{userID}/profile", s.handlePutProfile)
		r.Post("/api/v1/users/{userID}/plans", s.handleGeneratePlan)
		r.Delete("/api/v1/plans/{id}", s.handleDeletePlan)
		r.Post("/api/v1/plans/{id}/adjust", s.handleAdjustPlan)
	})
}
