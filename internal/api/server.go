package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"TickerScope/internal/cache"
	"TickerScope/internal/collector"
	"TickerScope/internal/recorder"
)

// Server exposes analyses over HTTP.
type Server struct {
	collector   *collector.Collector
	recorder    recorder.Recorder
	cache       *cache.AnalysisCache
	logger      *logrus.Entry
	corsOrigins []string
	router      *mux.Router
	httpServer  *http.Server
}

// NewServer creates a new API server
func NewServer(addr string, corsOrigins []string, col *collector.Collector, rec recorder.Recorder,
	ac *cache.AnalysisCache, log *logrus.Entry) *Server {
	s := &Server{
		collector:   col,
		recorder:    rec,
		cache:       ac,
		logger:      log.WithField("component", "api"),
		corsOrigins: corsOrigins,
		router:      mux.NewRouter(),
	}
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/analysis/{ticker}", s.handleAnalyze).Methods(http.MethodGet)
	v1.HandleFunc("/analyses", s.handleList).Methods(http.MethodGet)
	v1.HandleFunc("/analyses", s.handleSave).Methods(http.MethodPost)
	v1.HandleFunc("/analyses/{id}", s.handleGet).Methods(http.MethodGet)
	v1.HandleFunc("/analyses/{id}", s.handleDelete).Methods(http.MethodDelete)
}

// Handler returns the router wrapped in logging, recovery and CORS middleware.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = s.loggingMiddleware(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(s.logger), handlers.PrintRecoveryStack(false))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(s.corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	return h
}

// Start serves until Shutdown is called. It returns nil on a clean shutdown.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.statusCode,
			"duration": time.Since(start),
			"remote":   r.RemoteAddr,
		}).Info("HTTP request")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
