// Package api exposes the HTTP interface for the research service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devscout/research-agent/internal/config"
	"github.com/devscout/research-agent/internal/controller"
	"github.com/devscout/research-agent/internal/metrics"
	"github.com/devscout/research-agent/internal/notify"
	"github.com/devscout/research-agent/internal/research"
)

// Server wires HTTP handlers to the lifecycle controller.
type Server struct {
	router  chi.Router
	ctrl    *controller.Controller
	notices *notify.Recorder
	cfg     config.Config
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	ctrl *controller.Controller,
	notices *notify.Recorder,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ctrl:    ctrl,
		notices: notices,
		cfg:     cfg,
		logger:  logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/research", s.submitResearch)
		r.Get("/research/state", s.researchState)
		r.Get("/notifications", s.listNotifications)
		r.Get("/examples", s.listExamples)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type researchRequest struct {
	Query string `json:"query"`
}

func (s *Server) submitResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	result, err := s.ctrl.Submit(r.Context(), req.Query)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeSubmitError maps the structured error taxonomy onto HTTP responses,
// mirroring the backend's own shapes so clients handle one format.
func (s *Server) writeSubmitError(w http.ResponseWriter, err error) {
	if errors.Is(err, research.ErrSuperseded) {
		writeDetail(w, http.StatusConflict, "superseded by a newer request")
		return
	}
	se := research.AsError(err)
	if se == nil {
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	switch se.Kind {
	case research.ErrValidation:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{
				{"loc": []string{"body", "query"}, "msg": se.Message},
			},
		})
	case research.ErrServerValidation:
		detail := make([]map[string]any, 0, len(se.Fields))
		for _, f := range se.Fields {
			detail = append(detail, map[string]any{
				"loc": strings.Split(f.Field, "."),
				"msg": f.Message,
			})
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": detail})
	case research.ErrAPI:
		status := se.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeDetail(w, status, se.Message)
	case research.ErrNetwork:
		writeDetail(w, http.StatusBadGateway, se.Message)
	default:
		writeDetail(w, http.StatusInternalServerError, se.Message)
	}
}

func (s *Server) researchState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) listNotifications(w http.ResponseWriter, _ *http.Request) {
	notices := []notify.Notice{}
	if s.notices != nil {
		notices = s.notices.Recent()
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notices})
}

func (s *Server) listExamples(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"examples": s.cfg.Examples})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			metrics.ObserveHTTPRequest(r.Method, strconv.Itoa(ww.status))
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("panic", rec))
					writeDetail(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

// writeDetail emits the {"detail": msg} error shape used by the backend.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
