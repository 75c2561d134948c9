// Package rest wires the HTTP surface: routing, middleware and the
// handler set.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"formulahub-backend/application/services"
	"formulahub-backend/infrastructure/config"
	"formulahub-backend/interfaces/http/rest/handlers"
	"formulahub-backend/interfaces/http/rest/middleware"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router creates and configures the HTTP router
type Router struct {
	cfg      *config.Config
	catalog  *services.CatalogService
	trending *services.TrendingService
	metrics  *services.MetricsService
	seed     handlers.SeedFunc
	db       Pinger
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	catalog *services.CatalogService,
	trending *services.TrendingService,
	metrics *services.MetricsService,
	seed handlers.SeedFunc,
	db Pinger,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:      cfg,
		catalog:  catalog,
		trending: trending,
		metrics:  metrics,
		seed:     seed,
		db:       db,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Session cookie on every API request; the metrics endpoints depend
	// on it, the rest just propagate it.
	router.Use(middleware.EnsureSession(rt.cfg.IsProduction()))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	requireAdmin := middleware.RequireAdmin(rt.cfg.AdminToken, rt.cfg.JWTSecret, rt.logger)

	router.Route("/api", func(r chi.Router) {
		// Formula endpoints
		r.Route("/formulas", func(r chi.Router) {
			formulaHandler := handlers.NewFormulaHandler(rt.catalog, rt.trending, rt.logger)
			r.Get("/", formulaHandler.ListFormulas)
			r.Get("/trending", formulaHandler.GetTrending)
			r.Get("/{formulaID}", formulaHandler.GetFormula)
			r.With(requireAdmin).Post("/", formulaHandler.CreateFormula)
			r.With(requireAdmin).Put("/{formulaID}", formulaHandler.UpdateFormula)
			r.With(requireAdmin).Delete("/{formulaID}", formulaHandler.DeleteFormula)
		})

		// Category endpoints
		r.Route("/categories", func(r chi.Router) {
			categoryHandler := handlers.NewCategoryHandler(rt.catalog, rt.logger)
			r.Get("/", categoryHandler.ListCategories)
			r.Get("/{categoryID}", categoryHandler.GetCategory)
			r.With(requireAdmin).Post("/", categoryHandler.CreateCategory)
			r.With(requireAdmin).Patch("/{categoryID}", categoryHandler.UpdateCategory)
			r.With(requireAdmin).Delete("/{categoryID}", categoryHandler.DeleteCategory)
		})

		// Card endpoints
		r.Route("/cards", func(r chi.Router) {
			cardHandler := handlers.NewCardHandler(rt.catalog, rt.logger)
			r.Get("/", cardHandler.ListCards)
			r.Get("/{cardID}", cardHandler.GetCard)
			r.With(requireAdmin).Post("/", cardHandler.CreateCard)
			r.With(requireAdmin).Patch("/{cardID}", cardHandler.UpdateCard)
			r.With(requireAdmin).Delete("/{cardID}", cardHandler.DeleteCard)
		})

		// Interaction events
		metricsHandler := handlers.NewMetricsHandler(rt.metrics, rt.logger)
		r.Post("/metrics/copy", metricsHandler.RecordCopy)
		r.Post("/clicks", metricsHandler.RecordClick)

		// Sample data
		seedHandler := handlers.NewSeedHandler(rt.seed, rt.logger)
		r.With(requireAdmin).Post("/seed", seedHandler.Seed)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests; ready means the
// database answers a ping.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := rt.db.Ping(ctx); err != nil {
		rt.logger.Error("Readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
