// Package server exposes the simulation pipeline, saved simulations and the
// reference catalog over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/mortgage-simulator/internal/metrics"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/internal/store"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/iwvelando/mortgage-simulator/internal/server"

// Handler holds the dependencies shared by every route.
type Handler struct {
	logger   *zap.Logger
	service  *simulation.Service
	repo     store.Repository
	metrics  *metrics.Metrics
	cfg      *Config
	validate *validator.Validate
	tracer   trace.Tracer
}

// NewHandler creates a Handler. A nil logger disables logging, a nil metrics
// disables the /metrics route and request counting, and a nil cfg uses the
// server defaults.
func NewHandler(logger *zap.Logger, service *simulation.Service, repo store.Repository, m *metrics.Metrics, cfg *Config) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{}
		if err := cfg.normalize(); err != nil {
			panic(err)
		}
	}
	return &Handler{
		logger:   logger,
		service:  service,
		repo:     repo,
		metrics:  m,
		cfg:      cfg,
		validate: newValidator(),
		tracer:   otel.Tracer(tracerName),
	}
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", constants.OwnerHeader},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/simulations", func(r chi.Router) {
			r.Post("/calculate", h.CalculateSimulation)
			r.Post("/batch", h.CalculateBatch)
			r.Post("/export", h.ExportSimulations)

			r.Group(func(r chi.Router) {
				r.Use(requireOwner)
				r.Post("/", h.SaveSimulation)
				r.Get("/", h.ListSimulations)
				r.Get("/{id}", h.GetSimulation)
				r.Delete("/{id}", h.DeleteSimulation)
			})
		})

		r.Get("/catalog/entities", h.ListFinancialEntities)
		r.Get("/catalog/programs", h.ListHousingPrograms)
		r.Get("/version", h.Version)
	})

	r.Get("/healthz", h.Health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	return r
}

// observe wraps each request in a span, logs its outcome and counts it by
// route pattern.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := h.tracer.Start(r.Context(), r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		if h.metrics != nil {
			h.metrics.ObserveRequest(route, r.Method, status)
		}

		h.logger.Debug("request served",
			zap.String("op", "server.observe"),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// requireOwner rejects requests that carry no owner identity.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ownerID(r) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(errorResponse{Error: "missing " + constants.OwnerHeader + " header"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ownerID(r *http.Request) string {
	return r.Header.Get(constants.OwnerHeader)
}

func (h *Handler) respondErrorWithOp(w http.ResponseWriter, status int, resp errorResponse, op string) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", resp.Error),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("simulation request failed", fields...)
	} else {
		h.logger.Info("simulation request rejected", fields...)
	}

	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
