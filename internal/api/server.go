// Package api exposes the simulation engine over HTTP. Session creation
// and turn execution are public JSON endpoints; the archive export is an
// admin control-plane endpoint behind a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mindfold/biaslab/internal/catalog"
	"github.com/mindfold/biaslab/internal/engine"
	"github.com/mindfold/biaslab/internal/persistence"
	"github.com/mindfold/biaslab/internal/session"
)

// Server serves the engine over HTTP.
type Server struct {
	Controller *session.Controller
	Catalog    *catalog.Catalog
	Store      *session.Store
	Archive    *persistence.Archive // nil = archiving disabled
	Port       int
	AdminKey   string // Bearer token for admin endpoints. Empty = admin disabled.

	startedAt time.Time
}

// Handler builds the route table. Split from Start so tests can drive the
// mux through httptest.
func (s *Server) Handler() http.Handler {
	turnLimiter := NewRateLimiter(600, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/scenarios", s.handleScenarios)
	mux.HandleFunc("/api/v1/session", s.handleCreateSession)
	mux.HandleFunc("/api/v1/session/", s.handleSessionRoutes(turnLimiter))
	mux.HandleFunc("/api/v1/archive/", s.adminOnly(s.handleArchive))

	return corsMiddleware(mux)
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	s.startedAt = time.Now()
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "archive", s.Archive != nil)

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"name":      "biaslab",
		"scenarios": len(s.Catalog.List()),
		"sessions":  s.Store.Len(),
		"uptime_s":  int(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type scenarioInfo struct {
		ID             string        `json:"id"`
		Name           string        `json:"name"`
		Description    string        `json:"description"`
		RuleSetID      string        `json:"rule_set_id"`
		TargetBiases   []engine.Bias `json:"target_biases"`
		DifficultyTier string        `json:"difficulty_tier"`
	}
	list := s.Catalog.List()
	out := make([]scenarioInfo, 0, len(list))
	for _, sc := range list {
		out = append(out, scenarioInfo{
			ID:             sc.ID,
			Name:           sc.Name,
			Description:    sc.Description,
			RuleSetID:      engine.RuleSetName(sc.RuleSet),
			TargetBiases:   sc.TargetBiases,
			DifficultyTier: engine.DifficultyName(sc.DeclaredTier),
		})
	}
	writeJSON(w, map[string]any{"scenarios": out})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ScenarioID string `json:"scenario_id"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json body", engine.ErrMalformedDecision))
		return
	}

	sess, err := s.Controller.CreateSession(req.ScenarioID, req.Difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"session_id":  sess.ID,
		"scenario_id": sess.ScenarioID,
		"difficulty":  engine.DifficultyName(sess.Difficulty),
		"game_state":  sess.State.Vars(sess.RuleSet),
	})
}

// handleSessionRoutes dispatches /api/v1/session/{id} and
// /api/v1/session/{id}/turn.
func (s *Server) handleSessionRoutes(limiter *RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/session/")
		id, sub, _ := strings.Cut(rest, "/")
		if id == "" {
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}

		switch {
		case sub == "" && r.Method == http.MethodGet:
			s.handleGetSession(w, id)
		case sub == "turn" && r.Method == http.MethodPost:
			RateLimitMiddleware(limiter, func(w http.ResponseWriter, r *http.Request) {
				s.handleTurn(w, r, id)
			})(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, id string) {
	snap, err := s.Controller.Snapshot(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"session_id":       snap.ID,
		"scenario_id":      snap.ScenarioID,
		"difficulty":       engine.DifficultyName(snap.Difficulty),
		"game_state":       snap.State.Vars(snap.RuleSet),
		"turns_executed":   len(snap.History),
		"pending_effects":  len(snap.Queue),
		"created_at":       snap.CreatedAt.UTC().Format(time.RFC3339),
		"last_activity_at": snap.LastActivity.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Decision json.RawMessage `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json body", engine.ErrMalformedDecision))
		return
	}
	if len(req.Decision) == 0 {
		writeError(w, fmt.Errorf("%w: missing decision", engine.ErrMalformedDecision))
		return
	}
	var d engine.Decision
	if err := json.Unmarshal(req.Decision, &d); err != nil {
		writeError(w, fmt.Errorf("%w: decision is not a mapping", engine.ErrMalformedDecision))
		return
	}

	out, err := s.Controller.ExecuteTurn(id, d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, out)
}

// handleArchive exports a live session to the archive database.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Archive == nil {
		http.Error(w, "archive disabled (no BIASLAB_ARCHIVE set)", http.StatusServiceUnavailable)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/archive/")
	if id == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	snap, err := s.Controller.Snapshot(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Archive.SaveSession(snap); err != nil {
		slog.Error("archive export failed", "session_id", id, "error", err)
		http.Error(w, "archive write failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"success": true, "session_id": id, "turns": len(snap.History)})
}

// adminOnly guards an endpoint with the bearer admin key.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no BIASLAB_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// writeJSON writes a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

// writeError maps an engine error onto the wire taxonomy.
func writeError(w http.ResponseWriter, err error) {
	kind := engine.ErrorKind(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrUnknownScenario), errors.Is(err, engine.ErrUnknownSession):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrUnknownDifficulty), errors.Is(err, engine.ErrMalformedDecision):
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"kind":    kind,
		"message": err.Error(),
	})
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list; localhost dev servers are
// always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
