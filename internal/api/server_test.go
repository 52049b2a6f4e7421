package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talgya/village-journey/internal/engine"
	"github.com/talgya/village-journey/internal/persistence"
	"github.com/talgya/village-journey/internal/village"
	"github.com/talgya/village-journey/internal/world"
)

const testKey = "secret"

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.World.Width, cfg.World.Height = 5, 5
	g, err := engine.NewGame(cfg, 21)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	g.Village = village.Restore(g.Village.Stats, world.Coord{X: 2, Y: 2}, rand.New(rand.NewSource(21)))
	s := &Server{Game: g, AdminKey: testKey}
	return s, s.Handler()
}

func do(h http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatus(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/api/v1/status", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["turn"].(float64) != 0 || body["population"].(float64) != 6 {
		t.Fatalf("unexpected status %v", body)
	}
}

func TestMapAndResidents(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/api/v1/map", "", false)
	var m struct {
		Width int               `json:"width"`
		Tiles []json.RawMessage `json:"tiles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode map: %v", err)
	}
	if m.Width != 5 || len(m.Tiles) != 25 {
		t.Fatalf("map width=%d tiles=%d", m.Width, len(m.Tiles))
	}

	rec = do(h, http.MethodGet, "/api/v1/residents", "", false)
	var residents []map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &residents); err != nil {
		t.Fatalf("decode residents: %v", err)
	}
	if len(residents) != 6 || residents[0]["occupation"] != "Farmer" {
		t.Fatalf("unexpected residents %v", residents)
	}
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	s, h := newTestServer(t)

	if rec := do(h, http.MethodPost, "/api/v1/turn", "", false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated turn code %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/v1/turn", "", true); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET turn code %d", rec.Code)
	}

	s.AdminKey = ""
	if rec := do(h, http.MethodPost, "/api/v1/turn", "", true); rec.Code != http.StatusForbidden {
		t.Fatalf("disabled admin code %d", rec.Code)
	}
}

func TestTurnAndMove(t *testing.T) {
	s, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/api/v1/move", `{"direction":"up"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("move code %d: %s", rec.Code, rec.Body.String())
	}
	if s.Game.Village.Position() != (world.Coord{X: 2, Y: 3}) {
		t.Fatalf("village at %s", s.Game.Village.Position())
	}

	rec = do(h, http.MethodPost, "/api/v1/move", `{"direction":"left"}`, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second move code %d", rec.Code)
	}

	rec = do(h, http.MethodPost, "/api/v1/turn", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("turn code %d", rec.Code)
	}
	var report engine.TurnReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Turn != 1 {
		t.Fatalf("report turn %d", report.Turn)
	}

	do(h, http.MethodPost, "/api/v1/move", `{"direction":"up"}`, true)
	s.Game.NextTurn()
	rec = do(h, http.MethodPost, "/api/v1/move", `{"direction":"up"}`, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("out of bounds move code %d", rec.Code)
	}

	if rec := do(h, http.MethodPost, "/api/v1/move", `{"direction":"sideways"}`, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad direction code %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/v1/move", `{`, true); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json code %d", rec.Code)
	}
}

func TestEventsLimitAndFilter(t *testing.T) {
	s, h := newTestServer(t)
	for i := 0; i < 10; i++ {
		s.Game.NextTurn()
	}

	rec := do(h, http.MethodGet, "/api/v1/events?limit=3", "", false)
	var entries []engine.LogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	rec = do(h, http.MethodGet, "/api/v1/events?category=event&limit=500", "", false)
	entries = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("got %d event entries, want 10", len(entries))
	}
	for _, e := range entries {
		if e.Category != engine.CategoryEvent {
			t.Fatalf("filter leaked %+v", e)
		}
	}
}

func TestSnapshot(t *testing.T) {
	s, h := newTestServer(t)

	if rec := do(h, http.MethodPost, "/api/v1/snapshot", "", true); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("snapshot without db code %d", rec.Code)
	}

	db, err := persistence.Open(persistence.DialectSQLite, filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	s.DB = db

	if rec := do(h, http.MethodPost, "/api/v1/snapshot", "", true); rec.Code != http.StatusOK {
		t.Fatalf("snapshot code %d: %s", rec.Code, rec.Body.String())
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if _, err := db.LoadGame(ctx, s.Game.SessionID); err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Fatal("other clients are independent")
	}
	if rl.RetryAfter("a") <= 0 {
		t.Fatal("expected a positive retry-after")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return clock }

	if !rl.Allow("a") || rl.Allow("a") {
		t.Fatal("expected one admitted request then a rejection")
	}
	clock = clock.Add(30 * time.Second)
	if rl.Allow("a") {
		t.Fatal("client is over its limit until the window ends")
	}
	if got := rl.RetryAfter("a"); got != 31 {
		t.Fatalf("RetryAfter = %d, want 31", got)
	}
	clock = clock.Add(30 * time.Second)
	if !rl.Allow("a") {
		t.Fatal("a new window should admit the client again")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := clientIP(req); got != "10.0.0.1" {
		t.Fatalf("clientIP = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	if got := clientIP(req); got != "1.2.3.4" {
		t.Fatalf("clientIP with XFF = %q", got)
	}
}
