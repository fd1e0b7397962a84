// Package http serves the health, status, dashboard, and admin endpoints.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
	"github.com/couchcryptid/volcano-alert-service/internal/pipeline"
)

const maxRequestBody = 64 << 10

// StatusReader returns the last persisted monitoring state.
type StatusReader interface {
	LastState(ctx context.Context) domain.MonitoringState
}

// DashboardBuilder builds the live dashboard view.
type DashboardBuilder interface {
	Build(ctx context.Context) pipeline.DashboardView
}

// CycleTrigger runs an update-check cycle on demand.
type CycleTrigger interface {
	RunOnce(ctx context.Context) (pipeline.CycleResult, error)
}

// EmergencyController reads and changes the emergency alarm.
type EmergencyController interface {
	Status(ctx context.Context) (domain.EmergencyState, error)
	Trigger(ctx context.Context, level, message, title string) (domain.EmergencyState, error)
	Clear(ctx context.Context, message string) (domain.EmergencyState, error)
}

// Deps are the services behind the HTTP routes.
type Deps struct {
	Ready      sharedobs.ReadinessChecker
	Status     StatusReader
	Dashboard  DashboardBuilder
	Trigger    CycleTrigger
	Emergency  EmergencyController
	AdminToken string
}

// Server exposes health, metrics, status, dashboard, and admin HTTP endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with all routes registered.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// check-now and the dashboard wait on two upstream fetches.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger.With("component", "http"),
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /volcano/last", s.handleLast)
	mux.HandleFunc("GET /volcano/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /emergency/status", s.handleEmergencyStatus)

	mux.Handle("POST /admin/check-now", s.requireAdmin(http.HandlerFunc(s.handleCheckNow)))
	mux.Handle("POST /admin/emergency/trigger", s.requireAdmin(http.HandlerFunc(s.handleEmergencyTrigger)))
	mux.Handle("POST /admin/emergency/clear", s.requireAdmin(http.HandlerFunc(s.handleEmergencyClear)))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// requireAdmin enforces the bearer token. Admin routes are disabled when no
// token is configured.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.AdminToken == "" {
			writeError(w, http.StatusServiceUnavailable, "admin endpoints disabled: ADMIN_TOKEN not set")
			return
		}
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.deps.AdminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type lastResponse struct {
	LastReportID *string `json:"last_report_id"`
	LastLevel    *string `json:"last_level"`
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	st := s.deps.Status.LastState(r.Context())
	writeJSON(w, http.StatusOK, lastResponse{
		LastReportID: nullable(st.LastReportID),
		LastLevel:    nullable(st.LastLevel),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Dashboard.Build(r.Context()))
}

type checkNowResponse struct {
	OK      bool   `json:"ok"`
	Changed bool   `json:"changed"`
	Skipped bool   `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleCheckNow(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Trigger.RunOnce(r.Context())
	if err != nil {
		s.logger.Warn("manual check failed", "error", err)
		writeJSON(w, http.StatusBadGateway, checkNowResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, checkNowResponse{OK: true, Changed: res.Changed(), Skipped: res.Skipped()})
}

type emergencyResponse struct {
	OK     bool                  `json:"ok"`
	Status domain.EmergencyState `json:"status"`
}

// triggerRequest accepts "body" as an alias of "message" for older clients.
type triggerRequest struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

type clearRequest struct {
	Message string `json:"message"`
	Body    string `json:"body"`
}

func (s *Server) handleEmergencyStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Emergency.Status(r.Context())
	if err != nil {
		s.logger.Error("load emergency status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "emergency status unavailable")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleEmergencyTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.deps.Emergency.Trigger(r.Context(), req.Level, firstNonBlank(req.Message, req.Body), req.Title)
	if err != nil {
		s.logger.Error("emergency trigger failed", "error", err)
		writeError(w, http.StatusInternalServerError, "emergency trigger failed")
		return
	}
	writeJSON(w, http.StatusOK, emergencyResponse{OK: true, Status: st})
}

func (s *Server) handleEmergencyClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.deps.Emergency.Clear(r.Context(), firstNonBlank(req.Message, req.Body))
	if err != nil {
		s.logger.Error("emergency clear failed", "error", err)
		writeError(w, http.StatusInternalServerError, "emergency clear failed")
		return
	}
	writeJSON(w, http.StatusOK, emergencyResponse{OK: true, Status: st})
}

// decodeBody reads an optional JSON body. An empty body leaves v unchanged.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errors.New("invalid JSON body")
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
