package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/a19grey/zombieteam-server/internal/config"
	"github.com/a19grey/zombieteam-server/internal/game"
	"github.com/a19grey/zombieteam-server/internal/store"
)

// mockEngine implements EngineInterface without the tick loop.
type mockEngine struct {
	zombieCap     int
	zombies       int
	projectileCap int
	projectiles   int

	lastSpawnType game.ZombieType
	lastFireSpec  game.ProjectileSpec
	avatarPos     game.Vec3
}

func (m *mockEngine) GetSnapshot() *game.WorldSnapshot {
	return &game.WorldSnapshot{
		Sequence:    7,
		TickNumber:  100,
		ZombieCount: m.zombies,
		Avatar:      game.AvatarSnapshot{Health: 80, MaxHealth: 100},
	}
}

func (m *mockEngine) Counts() (int, int, int) { return m.zombies, m.projectiles, 0 }

func (m *mockEngine) Totals() (int, int, int, int, uint64) { return 12, 240, 1, 4, 100 }

func (m *mockEngine) SpawnZombie(t game.ZombieType, pos game.Vec3) *game.Zombie {
	if m.zombies >= m.zombieCap {
		return nil
	}
	m.zombies++
	m.lastSpawnType = t
	return &game.Zombie{ID: uint64(m.zombies), NodeID: fmt.Sprintf("zombie/%d", m.zombies), Type: t, Health: 100}
}

func (m *mockEngine) Fire(origin, dir game.Vec3, spec game.ProjectileSpec) *game.Projectile {
	if m.projectiles >= m.projectileCap {
		return nil
	}
	m.projectiles++
	m.lastFireSpec = spec
	return &game.Projectile{ID: uint64(m.projectiles), NodeID: fmt.Sprintf("projectile/%d", m.projectiles)}
}

func (m *mockEngine) SetAvatarPosition(pos game.Vec3) { m.avatarPos = pos }

func (m *mockEngine) EventLogStats() map[string]interface{} {
	return map[string]interface{}{"total_events": uint64(0)}
}

// mockScoreStore implements ScoreStore with fixed rows.
type mockScoreStore struct {
	rows []store.SessionRow
	err  error
}

func (m *mockScoreStore) TopSessions(limit int) ([]store.SessionRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.rows) {
		return m.rows[:limit], nil
	}
	return m.rows, nil
}

// newTestServer builds a router with generous rate limits so tests
// never trip the limiter.
func newTestServer(t *testing.T, cfg RouterConfig) *httptest.Server {
	t.Helper()
	cfg.DisableLogging = true
	if cfg.RateLimitConfig == nil {
		cfg.RateLimitConfig = &RateLimitConfig{
			RequestsPerSecond: 10000,
			Burst:             10000,
			CleanupInterval:   time.Minute,
		}
	}
	srv := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, RouterConfig{Engine: &mockEngine{}})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGetStats(t *testing.T) {
	engine := &mockEngine{zombieCap: 10, zombies: 3}
	srv := newTestServer(t, RouterConfig{Engine: engine})

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["totalKills"].(float64) != 12 {
		t.Errorf("expected totalKills 12, got %v", body["totalKills"])
	}
	if body["zombieCount"].(float64) != 3 {
		t.Errorf("expected zombieCount 3, got %v", body["zombieCount"])
	}
	if _, ok := body["eventLog"]; !ok {
		t.Error("expected eventLog stats in response")
	}
}

func TestGetSnapshot(t *testing.T) {
	srv := newTestServer(t, RouterConfig{Engine: &mockEngine{}})

	resp, err := http.Get(srv.URL + "/api/snapshot")
	if err != nil {
		t.Fatalf("GET /api/snapshot failed: %v", err)
	}
	defer resp.Body.Close()

	var snap game.WorldSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if snap.TickNumber != 100 {
		t.Errorf("expected tick 100, got %d", snap.TickNumber)
	}
	if snap.Avatar.Health != 80 {
		t.Errorf("expected avatar health 80, got %v", snap.Avatar.Health)
	}
}

func TestSpawnEndpoint(t *testing.T) {
	engine := &mockEngine{zombieCap: 2}
	srv := newTestServer(t, RouterConfig{Engine: engine})

	t.Run("spawns until cap", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			resp := postJSON(t, srv.URL+"/api/spawn", map[string]interface{}{
				"type": "brute", "x": 10.0, "z": 20.0,
			})
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("spawn %d: expected 200, got %d", i, resp.StatusCode)
			}
		}
		if engine.lastSpawnType != game.ZombieBrute {
			t.Errorf("expected brute spawn, got %s", engine.lastSpawnType)
		}
	})

	t.Run("503 at cap", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/spawn", map[string]interface{}{"type": "walker"})
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503 at cap, got %d", resp.StatusCode)
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/spawn", "application/json", bytes.NewReader([]byte("{not json")))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})
}

func TestFireEndpoint(t *testing.T) {
	combat := config.DefaultCombat()
	engine := &mockEngine{projectileCap: 2}
	srv := newTestServer(t, RouterConfig{Engine: engine, Combat: combat})

	t.Run("bullet by default", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/fire", map[string]interface{}{
			"origin": map[string]float64{"x": 0, "y": 1, "z": 0},
			"dir":    map[string]float64{"z": 1},
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if engine.lastFireSpec.AreaEffect {
			t.Error("default kind should be a bullet, not a grenade")
		}
		if engine.lastFireSpec.SourceTag != "player" {
			t.Errorf("expected default source player, got %q", engine.lastFireSpec.SourceTag)
		}
	})

	t.Run("grenade carries area effect", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/fire", map[string]interface{}{
			"dir":    map[string]float64{"x": 1},
			"kind":   "grenade",
			"source": "gunner",
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !engine.lastFireSpec.AreaEffect {
			t.Error("grenade should be area effect")
		}
		if engine.lastFireSpec.EffectRadius != combat.ExplosionRadius {
			t.Errorf("expected effect radius %v, got %v", combat.ExplosionRadius, engine.lastFireSpec.EffectRadius)
		}
		if engine.lastFireSpec.SourceTag != "gunner" {
			t.Errorf("expected source gunner, got %q", engine.lastFireSpec.SourceTag)
		}
	})

	t.Run("rejects zero direction", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/fire", map[string]interface{}{
			"origin": map[string]float64{"x": 0},
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for zero direction, got %d", resp.StatusCode)
		}
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/fire", map[string]interface{}{
			"dir":  map[string]float64{"z": 1},
			"kind": "railgun",
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for unknown kind, got %d", resp.StatusCode)
		}
	})

	t.Run("503 at cap", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/fire", map[string]interface{}{
			"dir": map[string]float64{"z": 1},
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503 at cap, got %d", resp.StatusCode)
		}
	})
}

func TestAvatarMove(t *testing.T) {
	engine := &mockEngine{}
	srv := newTestServer(t, RouterConfig{Engine: engine})

	resp := postJSON(t, srv.URL+"/api/avatar/move", map[string]float64{"x": 5, "z": -3})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if engine.avatarPos.X != 5 || engine.avatarPos.Z != -3 {
		t.Errorf("avatar position not applied: %+v", engine.avatarPos)
	}
}

func TestScoreboard(t *testing.T) {
	t.Run("404 without store", func(t *testing.T) {
		srv := newTestServer(t, RouterConfig{Engine: &mockEngine{}})
		resp, err := http.Get(srv.URL + "/api/scoreboard")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 without store, got %d", resp.StatusCode)
		}
	})

	t.Run("returns top sessions", func(t *testing.T) {
		rows := []store.SessionRow{
			{ID: 2, Score: 900, Kills: 45},
			{ID: 1, Score: 300, Kills: 15},
		}
		srv := newTestServer(t, RouterConfig{Engine: &mockEngine{}, Store: &mockScoreStore{rows: rows}})

		resp, err := http.Get(srv.URL + "/api/scoreboard?limit=2")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var got []store.SessionRow
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if len(got) != 2 || got[0].Score != 900 {
			t.Errorf("unexpected scoreboard: %+v", got)
		}
	})
}

func TestFrameWithoutRenderer(t *testing.T) {
	srv := newTestServer(t, RouterConfig{Engine: &mockEngine{}})

	resp, err := http.Get(srv.URL + "/frame.png")
	if err != nil {
		t.Fatalf("GET /frame.png failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 without renderer, got %d", resp.StatusCode)
	}
}

func TestRateLimitRejects(t *testing.T) {
	cfg := RouterConfig{
		Engine:         &mockEngine{},
		DisableLogging: true,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             2,
			CleanupInterval:   time.Minute,
		},
	}
	srv := httptest.NewServer(NewRouter(cfg))
	defer srv.Close()

	limited := false
	for i := 0; i < 5; i++ {
		resp, err := http.Get(srv.URL + "/api/stats")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			if resp.Header.Get("Retry-After") == "" {
				t.Error("expected Retry-After header on 429")
			}
			limited = true
		}
		resp.Body.Close()
	}
	if !limited {
		t.Error("expected at least one 429 with burst size 2")
	}

	// Health probes bypass the limiter even when the budget is exhausted
	for i := 0; i < 5; i++ {
		resp, err := http.Get(srv.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("health probe %d rate limited: %d", i, resp.StatusCode)
		}
	}
}
