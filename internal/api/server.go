// Package api serves the results of a completed pipeline run over HTTP:
// entities, segment text views and diagnostics, read-only.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/blattlab/blatt/internal/config"
	"github.com/blattlab/blatt/internal/pipeline"
)

// Server is the HTTP result server.
type Server struct {
	router chi.Router
	result *pipeline.Result
	log    *slog.Logger
	cfg    config.Serve
}

// NewServer creates and configures the server around a finished run.
func NewServer(result *pipeline.Result, log *slog.Logger, cfg config.Serve) *Server {
	s := &Server{
		result: result,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}
		r.Get("/api/run", s.handleRun)
		r.Get("/api/entities", s.handleListEntities)
		r.Get("/api/entities/{index}", s.handleGetEntity)
		r.Get("/api/segments/{key}", s.handleGetSegment)
		r.Get("/api/diagnostics", s.handleDiagnostics)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleRun returns run-level metadata.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"run_id":      s.result.RunID,
		"pages":       s.result.Pages,
		"segments":    len(s.result.Segments),
		"entities":    len(s.result.Entities),
		"diagnostics": len(s.result.Diagnostics),
	})
}

// handleListEntities lists entities, optionally filtered by a name
// substring via ?q=.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	entities := s.result.Entities
	if q != "" {
		filtered := entities[:0:0]
		for _, e := range entities {
			if strings.Contains(strings.ToLower(e.Name), q) {
				filtered = append(filtered, e)
			}
		}
		entities = filtered
	}
	writeJSON(w, map[string]any{"entities": entities, "count": len(entities)})
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 || index >= len(s.result.Entities) {
		jsonError(w, "no such entity", http.StatusNotFound)
		return
	}
	ent := s.result.Entities[index]
	resp := map[string]any{"entity": ent}
	if text, ok := s.result.Texts[ent.SourceSegment]; ok {
		resp["source_text"] = text
	}
	writeJSON(w, resp)
}

func (s *Server) handleGetSegment(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	text, ok := s.result.Texts[key]
	if !ok {
		jsonError(w, "no such segment", http.StatusNotFound)
		return
	}
	writeJSON(w, text)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"diagnostics": s.result.Diagnostics})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
