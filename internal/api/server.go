package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/a19grey/zombieteam-server/internal/config"
)

// Server is the HTTP API server with WebSocket support. It combines the
// router with the spectator hub for real-time snapshot broadcast.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// ServerConfig bundles the server's dependencies.
type ServerConfig struct {
	Engine   EngineInterface
	Renderer RendererInterface
	Store    ScoreStore
	Combat   config.CombatConfig
}

// NewServer creates a new API server.
//
// IMPORTANT: background workers do NOT start until Start() is called, so
// tests can construct the server and use Router() without goroutines or
// listeners running.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		engine: cfg.Engine,
		wsHub:  NewWebSocketHub(),
	}

	s.rateLimiter = NewIPRateLimiter(DefaultRateLimitConfig)

	s.router = NewRouter(RouterConfig{
		Engine:      cfg.Engine,
		Renderer:    cfg.Renderer,
		Store:       cfg.Store,
		Combat:      cfg.Combat,
		RateLimiter: s.rateLimiter,
	})

	// WebSocket route needs the hub instance, so it can't live in the
	// pure NewRouter factory
	s.router.Get("/ws", s.handleWS)

	return s
}

// Start begins the HTTP server AND starts background workers. This is the
// only method that starts goroutines or opens listeners.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.engine)

	log.Printf("🌐 API server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop performs graceful shutdown of background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
