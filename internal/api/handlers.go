package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/a19grey/zombieteam-server/internal/game"
)

// Handler methods for routerHandlers.
// Used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	// Lock-free snapshot avoids engine mutex contention on every poll
	snap := h.engine.GetSnapshot()
	kills, score, unlocks, partsLost, ticks := h.engine.Totals()

	writeJSON(w, map[string]interface{}{
		"tick":         ticks,
		"zombieCount":  snap.ZombieCount,
		"totalKills":   kills,
		"totalScore":   score,
		"totalUnlocks": unlocks,
		"partsLost":    partsLost,
		"avatar":       snap.Avatar,
		"lastTick":     snap.LastTick,
		"eventLog":     h.engine.EventLogStats(),
	})
}

func (h *routerHandlers) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetScoreboard(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, "Scoreboard not available", http.StatusNotFound)
		return
	}

	limit := 10
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	sessions, err := h.store.TopSessions(limit)
	if err != nil {
		writeError(w, "Scoreboard query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, sessions)
}

func (h *routerHandlers) handleSpawn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string  `json:"type"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
		Z    float64 `json:"z"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	z := h.engine.SpawnZombie(game.ZombieType(req.Type), game.Vec3{X: req.X, Y: req.Y, Z: req.Z})
	if z == nil {
		// Cap reached (DoS protection)
		writeError(w, "Zombie limit reached", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]interface{}{
		"id":     z.ID,
		"nodeId": z.NodeID,
		"type":   string(z.Type),
		"health": z.Health,
	})
}

func (h *routerHandlers) handleFire(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Origin game.Vec3 `json:"origin"`
		Dir    game.Vec3 `json:"dir"`
		Kind   string    `json:"kind"` // "bullet" (default) or "grenade"
		Source string    `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Dir.LengthSq() == 0 {
		writeError(w, "Direction is required", http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = "player"
	}

	var spec game.ProjectileSpec
	switch req.Kind {
	case "", "bullet":
		spec = game.BulletSpec(req.Source)
	case "grenade":
		spec = game.GrenadeSpec(h.combat, req.Source)
	default:
		writeError(w, "Unknown projectile kind", http.StatusBadRequest)
		return
	}

	p := h.engine.Fire(req.Origin, req.Dir, spec)
	if p == nil {
		writeError(w, "Projectile limit reached", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, map[string]interface{}{
		"id":     p.ID,
		"nodeId": p.NodeID,
	})
}

func (h *routerHandlers) handleAvatarMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	h.engine.SetAvatarPosition(game.Vec3{X: req.X, Y: req.Y, Z: req.Z})
	w.WriteHeader(http.StatusNoContent)
}

func (h *routerHandlers) handleFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "Renderer not available", http.StatusNotFound)
		return
	}

	snap := h.engine.GetSnapshot()
	start := time.Now()
	png, err := h.renderer.RenderFrame(snap)
	if err != nil {
		writeError(w, "Render failed", http.StatusInternalServerError)
		return
	}
	RecordRender(time.Since(start))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func (h *routerHandlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
