package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/a19grey/zombieteam-server/internal/config"
	"github.com/a19grey/zombieteam-server/internal/game"
	"github.com/a19grey/zombieteam-server/internal/store"
)

// EngineInterface defines the engine methods used by the API layer.
// This interface enables mocking for tests without spinning up the full
// tick loop. Keep it minimal - only include methods the API actually calls.
type EngineInterface interface {
	// GetSnapshot returns the latest lock-free immutable snapshot
	GetSnapshot() *game.WorldSnapshot
	// Counts returns live entity counts
	Counts() (zombies, projectiles, pickups int)
	// Totals returns cumulative session counters
	Totals() (kills, score, unlocks, partsLost int, ticks uint64)
	// SpawnZombie adds a zombie; nil at the cap
	SpawnZombie(t game.ZombieType, pos game.Vec3) *game.Zombie
	// Fire launches a projectile; nil at the cap
	Fire(origin, dir game.Vec3, spec game.ProjectileSpec) *game.Projectile
	// SetAvatarPosition moves the avatar
	SetAvatarPosition(pos game.Vec3)
	// EventLogStats exposes the event log counters
	EventLogStats() map[string]interface{}
}

// RendererInterface defines the frame renderer methods used by the API.
type RendererInterface interface {
	// RenderFrame draws a snapshot into a PNG
	RenderFrame(snap *game.WorldSnapshot) ([]byte, error)
}

// ScoreStore is the subset of the session store the API reads.
type ScoreStore interface {
	TopSessions(limit int) ([]store.SessionRow, error)
}

// RouterConfig contains all dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability.
type RouterConfig struct {
	// Engine is the game engine (required)
	Engine EngineInterface

	// Renderer draws /frame.png; nil disables the endpoint
	Renderer RendererInterface

	// Store backs /api/scoreboard; nil disables the endpoint
	Store ScoreStore

	// Combat tunables used to build projectile specs for /api/fire
	Combat config.CombatConfig

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used when RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins overrides the default allowed origins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (benchmarks).
	DisableLogging bool
}

// routerHandlers holds the dependencies handler methods need.
type routerHandlers struct {
	engine   EngineInterface
	renderer RendererInterface
	store    ScoreStore
	combat   config.CombatConfig
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: this function is PURE - no goroutines, no listeners, no
// background workers. Safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - order matters
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting BEFORE CORS to reject early and save CPU
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		engine:   cfg.Engine,
		renderer: cfg.Renderer,
		store:    cfg.Store,
		combat:   cfg.Combat,
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", h.handleGetStats)
		r.Get("/snapshot", h.handleGetSnapshot)
		r.Get("/scoreboard", h.handleGetScoreboard)

		r.Post("/spawn", h.handleSpawn)
		r.Post("/fire", h.handleFire)
		r.Post("/avatar/move", h.handleAvatarMove)
	})

	r.Get("/frame.png", h.handleFrame)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.handleHealthz)

	return r
}
