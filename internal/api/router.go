package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ricirt/problem-interpretation/internal/api/handler"
	apimw "github.com/ricirt/problem-interpretation/internal/api/middleware"
	"github.com/ricirt/problem-interpretation/internal/config"
	"github.com/ricirt/problem-interpretation/internal/extraction"
	"github.com/ricirt/problem-interpretation/internal/metrics"
	"github.com/ricirt/problem-interpretation/internal/service"
)

// Deps are the components the HTTP surface is built on.
type Deps struct {
	Config      *config.Config
	Version     string
	Predictions *service.PredictionService
	Parser      *extraction.Parser
	Health      handler.Snapshotter
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Logger      *zap.Logger
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(d.Logger))
	r.Use(apimw.CORS(d.Config.CORSAllowedOrigins))
	if d.Metrics != nil {
		r.Use(apimw.Metrics(d.Metrics.ObserveHTTP))
	}

	// --- handler instances ---
	hh := handler.NewHealthHandler(d.Health, d.Config, d.Version)
	ph := handler.NewPredictionHandler(d.Predictions, d.Logger)
	ih := handler.NewInterpretHandler(d.Parser, d.Logger)

	// --- routes ---
	r.Get("/health", hh.Health)
	r.Get("/health/live", hh.Live)
	r.Get("/health/ready", hh.Ready)
	r.Get("/health/config", hh.Config)

	// Raw Prometheus scrape endpoint
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predictions", ph.Create)
		r.Get("/predictions", ph.List)
		r.Get("/predictions/{id}", ph.GetByID)

		r.Get("/models", ph.Models)
		r.Get("/organisms", ph.Organisms)

		r.Route("/interpret", func(r chi.Router) {
			r.Post("/scenario", ih.Scenario)
			r.Post("/intent", ih.Intent)
			r.Post("/clarification", ih.Clarification)
		})
	})

	return r
}
