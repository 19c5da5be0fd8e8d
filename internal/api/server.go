package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/pbaille/jobtrack/internal/domain"
	"github.com/pbaille/jobtrack/internal/tracker"
	"github.com/pbaille/jobtrack/internal/view"
)

// Server exposes a Tracker over HTTP. Requests are handled one at a time.
type Server struct {
	mu      sync.Mutex
	tracker *tracker.Tracker
	addr    string
}

// New creates a new API server
func New(t *tracker.Tracker, addr string) *Server {
	return &Server{tracker: t, addr: addr}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	slog.Info("starting server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Page
	mux.HandleFunc("GET /{$}", s.page)

	// Applications
	mux.HandleFunc("GET /api/applications", s.listApplications)
	mux.HandleFunc("POST /api/applications", s.createApplication)
	mux.HandleFunc("GET /api/applications/{id}", s.getApplication)
	mux.HandleFunc("PUT /api/applications/{id}", s.updateApplication)

	// Two-phase delete
	mux.HandleFunc("POST /api/applications/{id}/delete", s.requestDelete)
	mux.HandleFunc("POST /api/deletions/{token}", s.confirmDelete)
	mux.HandleFunc("DELETE /api/deletions/{token}", s.cancelDelete)

	mux.HandleFunc("GET /api/stats", s.stats)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(s.serialized(mux))
}

// serialized runs one request at a time; the tracker is single-threaded
func (s *Server) serialized(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h.ServeHTTP(w, r)
	})
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// filterParams reads q and status; an unrecognized status is rejected
func filterParams(r *http.Request) (string, domain.Status, error) {
	query := r.URL.Query().Get("q")
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return query, "", nil
	}
	status, ok := domain.ParseStatus(raw)
	if !ok {
		return "", "", fmt.Errorf("unknown status %q", raw)
	}
	return query, status, nil
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	query, status, err := filterParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := view.Page{
		Cards:  view.NewCards(s.tracker.Filter(query, status), s.tracker.DaysSince),
		Stats:  s.tracker.Stats(),
		Query:  query,
		Status: status,
		Empty:  s.tracker.Len() == 0,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, p); err != nil {
		slog.Error("render page", "error", err)
	}
}

func (s *Server) listApplications(w http.ResponseWriter, r *http.Request) {
	query, status, err := filterParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applications": view.NewCards(s.tracker.Filter(query, status), s.tracker.DaysSince),
		"stats":        s.tracker.Stats(),
		"query":        query,
		"status":       status,
	})
}

func (s *Server) createApplication(w http.ResponseWriter, r *http.Request) {
	var f domain.Fields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := s.tracker.Create(r.Context(), f)
	if err != nil {
		writeTrackerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view.NewCard(app, s.tracker.DaysSince))
}

func (s *Server) getApplication(w http.ResponseWriter, r *http.Request) {
	app, ok := s.tracker.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "application not found")
		return
	}
	writeJSON(w, http.StatusOK, view.NewCard(app, s.tracker.DaysSince))
}

func (s *Server) updateApplication(w http.ResponseWriter, r *http.Request) {
	var f domain.Fields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.tracker.Update(r.Context(), r.PathValue("id"), f); err != nil {
		writeTrackerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requestDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":    id,
		"token": s.tracker.RequestDelete(id),
	})
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.ConfirmDelete(r.Context(), r.PathValue("token")); err != nil {
		writeTrackerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cancelDelete(w http.ResponseWriter, r *http.Request) {
	s.tracker.CancelDelete(r.PathValue("token"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Stats())
}

func writeTrackerError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  err.Error(),
			"fields": verr.Fields,
		})
	case errors.Is(err, domain.ErrNoPendingDeletion), errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
