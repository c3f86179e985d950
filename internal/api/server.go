// Package api exposes restructuring and snapshots over local HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/outline"
	"github.com/nikbrunner/bmr/internal/restructure"
	"github.com/nikbrunner/bmr/internal/snapshot"
	"github.com/nikbrunner/bmr/internal/tree"
)

// Restructurer plans and applies target layouts.
type Restructurer interface {
	Simulate(ctx context.Context, text string) (*restructure.Plan, error)
	Execute(ctx context.Context, text string) model.Result
}

// Snapshots manages stored copies of the tree.
type Snapshots interface {
	Create(ctx context.Context, name string) (*model.Snapshot, error)
	List(ctx context.Context) ([]model.Snapshot, error)
	Get(ctx context.Context, id string) (*model.Snapshot, error)
	Restore(ctx context.Context, id string) (bool, error)
	Prune(ctx context.Context, maxToKeep int) (int, error)
	Delete(ctx context.Context, id string) error
}

// Server holds the HTTP handlers.
type Server struct {
	svc          tree.Service
	restructurer Restructurer
	snapshots    Snapshots
	logger       *slog.Logger

	// mu serializes requests that change the tree.
	mu sync.Mutex
}

// New creates a Server.
func New(svc tree.Service, r Restructurer, snapshots Snapshots, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, restructurer: r, snapshots: snapshots, logger: logger}
}

// Routes returns the router for all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/tree", s.handleTree)
	r.Get("/outline", s.handleOutline)
	r.Get("/search", s.handleSearch)

	r.Route("/restructure", func(r chi.Router) {
		r.Post("/", s.handleExecute)
		r.Post("/simulate", s.handleSimulate)
	})

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleListSnapshots)
		r.Post("/", s.handleCreateSnapshot)
		r.Post("/prune", s.handlePrune)
		r.Get("/{id}", s.handleGetSnapshot)
		r.Delete("/{id}", s.handleDeleteSnapshot)
		r.Post("/{id}/restore", s.handleRestore)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("http handler failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, snapshot.ErrNotFound), errors.Is(err, tree.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tree.ErrNotFolder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	roots, err := s.svc.GetTree(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, roots)
}

// handleOutline renders one folder's subtree as editable text.
// GET /outline?parent=1
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	parentID := r.URL.Query().Get("parent")
	if parentID == "" {
		parentID = model.DefaultParentID
	}

	roots, err := s.svc.GetTree(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	parent := model.Find(roots, parentID)
	if parent == nil || !parent.IsFolder() {
		s.writeError(w, http.StatusNotFound, errors.New("folder not found: "+parentID))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(outline.Render(parent.Children)))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if nodes == nil {
		nodes = []model.Node{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

type restructureRequest struct {
	Text string `json:"text"`
}

type simulateResponse struct {
	*restructure.Plan
	Description string `json:"description"`
}

func decodeText(r *http.Request) (string, error) {
	var req restructureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", errors.New("invalid request body")
	}
	return req.Text, nil
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	text, err := decodeText(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	plan, err := s.restructurer.Simulate(r.Context(), text)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, simulateResponse{Plan: plan, Description: plan.Describe()})
}

// handleExecute always answers 200; success or failure is in the result.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	text, err := decodeText(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	res := s.restructurer.Execute(r.Context(), text)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, res)
}

type snapshotSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

func summarize(s model.Snapshot) snapshotSummary {
	return snapshotSummary{ID: s.ID, Name: s.Name, Timestamp: s.Timestamp}
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.snapshots.List(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	out := make([]snapshotSummary, len(snaps))
	for i, snap := range snaps {
		out[i] = summarize(snap)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
	}

	snap, err := s.snapshots.Create(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, summarize(*snap))
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.snapshots.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	ok, err := s.snapshots.Restore(context.WithoutCancel(r.Context()), id)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("snapshot not found: "+id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"restored": true})
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Max int `json:"max"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
	}

	removed, err := s.snapshots.Prune(r.Context(), req.Max)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
