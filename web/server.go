// ABOUTME: Web UI server with embedded templates and a JSON analytics API
// ABOUTME: Read-only dashboard, analytics endpoints, and Prometheus metrics
package web

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/remotearmz/commandcenter/analytics"
	"github.com/remotearmz/commandcenter/db"
	"github.com/remotearmz/commandcenter/models"
	"github.com/remotearmz/commandcenter/viz"
	"go.uber.org/zap"
)

//go:embed templates/*
var templatesFS embed.FS

type Server struct {
	db        *sql.DB
	agg       *analytics.Aggregator
	outreach  *db.OutreachRepository
	templates *template.Template
	logger    *zap.Logger
	registry  *prometheus.Registry
	metrics   *metrics
	router    chi.Router
}

func NewServer(database *sql.DB, agg *analytics.Aggregator, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	funcMap := template.FuncMap{
		"percent": func(f float64) string { return fmt.Sprintf("%.1f%%", f) },
		"day":     func(t time.Time) string { return t.Format("Mon 01/02") },
		"label":   func(t models.OutreachType) string { return t.Label() },
		"bar": func(n, max int) int {
			if max == 0 {
				return 0
			}
			return n * 100 / max
		},
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	registry := prometheus.NewRegistry()
	s := &Server{
		db:        database,
		agg:       agg,
		outreach:  db.NewOutreachRepository(database),
		templates: tmpl,
		logger:    logger,
		registry:  registry,
		metrics:   newMetrics(registry),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)

	r.Get("/", s.handleDashboard)
	r.Route("/api", func(r chi.Router) {
		r.Get("/analytics/daily", s.handleDaily)
		r.Get("/analytics/weekly", s.handleWeekly)
		r.Get("/analytics/monthly", s.handleMonthly)
		r.Get("/analytics/type/{type}", s.handleByType)
		r.Get("/analytics/status/{status}", s.handleByStatus)
		r.Get("/outreach", s.handleOutreach)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", "http://localhost"+srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := viz.GenerateDashboardStats(r.Context(), s.db, s.agg)
	if err != nil {
		s.serverError(w, err)
		return
	}

	maxDay := 0
	for _, d := range stats.Weekly.WeeklyTrend {
		maxDay = max(maxDay, d.Total)
	}

	data := map[string]any{
		"Title":  "Command Center",
		"Stats":  stats,
		"MaxDay": maxDay,
		"Types":  models.AllOutreachTypes,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		s.logger.Error("template error", zap.String("template", "dashboard.html"), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	date := s.agg.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(models.DateLayout, raw, s.agg.Location())
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}
	day, err := s.agg.Daily(r.Context(), date)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeJSON(w, day)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	summary, err := s.agg.Weekly(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeJSON(w, summary)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	summary, err := s.agg.Monthly(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeJSON(w, summary)
}

func (s *Server) handleByType(w http.ResponseWriter, r *http.Request) {
	t, err := models.ParseOutreachType(chi.URLParam(r, "type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	days, err := s.agg.ByType(r.Context(), t)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeJSON(w, days)
}

func (s *Server) handleByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := models.ParseOutreachStatus(chi.URLParam(r, "status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	days, err := s.agg.ByStatus(r.Context(), status)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeJSON(w, days)
}

func (s *Server) handleOutreach(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("client_id")
	if raw == "" {
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}
	clientID, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid client_id", http.StatusBadRequest)
		return
	}
	records, err := s.outreach.ListByClient(r.Context(), clientID)
	if err != nil {
		s.serverError(w, err)
		return
	}
	if records == nil {
		records = []models.Outreach{}
	}
	s.writeJSON(w, records)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
