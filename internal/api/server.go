// Package api provides the HTTP API for observing and playing a session.
// GET endpoints are public (read-only).
// POST endpoints require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/village-journey/internal/engine"
	"github.com/talgya/village-journey/internal/persistence"
	"github.com/talgya/village-journey/internal/world"
)

// Server serves a game session over HTTP.
type Server struct {
	Game     *engine.Game
	DB       *persistence.DB // Optional; snapshot is disabled without it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Mu serialises all game access. Share it with an autoplay runner.
	Mu sync.Mutex

	srv *http.Server
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	actionLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/residents", s.handleResidents)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	mux.HandleFunc("/api/v1/turn", s.adminOnly(RateLimitMiddleware(actionLimiter, s.handleTurn)))
	mux.HandleFunc("/api/v1/move", s.adminOnly(RateLimitMiddleware(actionLimiter, s.handleMove)))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return mux
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the server started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires POST with a valid bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no VILLAGE_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	g := s.Game
	st := g.Village.Stats
	pos := g.Village.Position()
	tile := ""
	if t := g.CurrentTile(); t != nil {
		tile = t.Type().String()
	}

	writeJSON(w, map[string]any{
		"session":         g.SessionID,
		"turn":            g.Turn(),
		"moved_this_turn": g.MovedThisTurn(),
		"position":        pos,
		"world_position":  g.World.Position(pos),
		"tile":            tile,
		"population":      st.Population,
		"food":            st.Food,
		"wood":            st.Wood,
		"gold":            st.Gold,
		"summary":         g.Village.OccupationSummary(),
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type tileEntry struct {
		X      int           `json:"x"`
		Y      int           `json:"y"`
		Type   string        `json:"type"`
		Yields []world.Yield `json:"yields"`
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	tiles := make([]tileEntry, 0, s.Game.World.Width*s.Game.World.Height)
	for _, t := range s.Game.World.Tiles() {
		tiles = append(tiles, tileEntry{
			X:      t.Coord.X,
			Y:      t.Coord.Y,
			Type:   t.Type().String(),
			Yields: t.Archetype.Yields,
		})
	}

	writeJSON(w, map[string]any{
		"width":   s.Game.World.Width,
		"height":  s.Game.World.Height,
		"village": s.Game.Village.Position(),
		"tiles":   tiles,
	})
}

func (s *Server) handleResidents(w http.ResponseWriter, r *http.Request) {
	type residentEntry struct {
		Name       string `json:"name"`
		Occupation string `json:"occupation"`
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	out := make([]residentEntry, 0, len(s.Game.Village.Stats.Residents))
	for _, res := range s.Game.Village.Stats.Residents {
		out = append(out, residentEntry{Name: res.Name, Occupation: res.Occupation.String()})
	}
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= engine.MaxLogEntries {
			limit = n
		}
	}

	s.Mu.Lock()
	entries := s.Game.Recent(limit)
	s.Mu.Unlock()

	if category := r.URL.Query().Get("category"); category != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	writeJSON(w, entries)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	report := s.Game.NextTurn()
	s.Mu.Unlock()

	writeJSON(w, report)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	dir, err := world.ParseDirection(req.Direction)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.Mu.Lock()
	report, err := s.Game.Move(dir)
	s.Mu.Unlock()

	switch {
	case errors.Is(err, engine.ErrAlreadyMoved):
		slog.Warn("move rejected", "reason", "already moved")
		http.Error(w, "village has already moved this turn", http.StatusConflict)
		return
	case errors.Is(err, engine.ErrOutOfBounds):
		slog.Warn("move rejected", "reason", "out of bounds", "direction", req.Direction)
		http.Error(w, "target is out of bounds", http.StatusUnprocessableEntity)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, report)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	s.Mu.Lock()
	st := s.Game.Snapshot()
	s.Mu.Unlock()

	if err := s.DB.SaveGame(r.Context(), st); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"session": st.SessionID,
		"turn":    st.Turn,
		"message": "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
