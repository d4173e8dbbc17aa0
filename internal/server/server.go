// Package server exposes documents, review runs and synthesis over HTTP,
// with review progress streamed as Server-Sent Events or over a WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/dusk-indust/critics/internal/review"
	"github.com/dusk-indust/critics/internal/service"
	"github.com/dusk-indust/critics/internal/status"
	"github.com/dusk-indust/critics/internal/store"
)

// Server is the critics HTTP API server.
type Server struct {
	svc     *service.Service
	checks  []status.Checker
	origins []string
	mux     *http.ServeMux
	http    *http.Server
}

// New creates a Server backed by svc. checks feed the status endpoint.
func New(svc *service.Service, checks ...status.Checker) *Server {
	s := &Server{
		svc:    svc,
		checks: checks,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)

	s.mux.HandleFunc("GET /api/v1/personas", s.handleListPersonas)
	s.mux.HandleFunc("GET /api/v1/personas/{id}", s.handleGetPersona)

	s.mux.HandleFunc("POST /api/v1/documents", s.handleCreateDocument)
	s.mux.HandleFunc("GET /api/v1/documents", s.handleListDocuments)
	s.mux.HandleFunc("GET /api/v1/documents/{id}", s.handleGetDocument)
	s.mux.HandleFunc("GET /api/v1/documents/{id}/reviews", s.handleListReviews)
	s.mux.HandleFunc("POST /api/v1/documents/{id}/reviews", s.handleStreamReview)
	s.mux.HandleFunc("GET /api/v1/documents/{id}/reviews/ws", s.handleReviewWebSocket)

	s.mux.HandleFunc("GET /api/v1/reviews/{id}", s.handleGetReview)
	s.mux.HandleFunc("GET /api/v1/reviews/{id}/comments", s.handleListComments)
	s.mux.HandleFunc("POST /api/v1/reviews/{id}/synthesize", s.handleSynthesize)
	s.mux.HandleFunc("GET /api/v1/reviews/{id}/meta", s.handleListMeta)
	s.mux.HandleFunc("GET /api/v1/reviews/{id}/export", s.handleExport)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on addr and serves in a background goroutine. It returns the
// bound address, which differs from addr when addr uses port 0.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}

	// No write timeout: review streams last as long as the slowest persona.
	s.http = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("WARNING: http server: %v", err)
		}
	}()

	log.Printf("critics API server listening on %s", ln.Addr())
	return ln.Addr().String(), nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	log.Printf("critics API server shutting down")
	return s.http.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARNING: json encode: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps a service or store error to a status code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, review.ErrEmptyDocument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("WARNING: request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
