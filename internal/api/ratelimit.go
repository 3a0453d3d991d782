package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig tunes the per-IP request limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
}

// DefaultRateLimitConfig is sized for the game control surface: a client
// holding the trigger posts /api/fire at up to the 30 Hz tick rate, plus
// snapshot polls and the occasional frame fetch. The burst absorbs a
// second and a half of sustained fire before throttling.
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 30,
	Burst:             45,
	CleanupInterval:   3 * time.Minute,
}

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter throttles HTTP requests per client IP. Entries for idle
// IPs are evicted by a background sweep so the map stays bounded.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	config  RateLimitConfig

	stopChan chan struct{}
	stopOnce sync.Once

	allowedCount  uint64 // atomic
	rejectedCount uint64 // atomic
}

func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	rl := &IPRateLimiter{
		clients:  make(map[string]*clientLimiter),
		config:   cfg,
		stopChan: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop terminates the eviction sweep.
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// Allow reports whether a request from ip fits its rate budget.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &clientLimiter{
			lim: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
		}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	if c.lim.Allow() {
		atomic.AddUint64(&rl.allowedCount, 1)
		return true
	}
	atomic.AddUint64(&rl.rejectedCount, 1)
	return false
}

// Middleware throttles every route except the health probe, which load
// balancers poll on their own schedule and must never see a 429.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		if !rl.Allow(GetClientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStats returns allow/reject counters for monitoring.
func (rl *IPRateLimiter) GetStats() map[string]uint64 {
	return map[string]uint64{
		"allowed":  atomic.LoadUint64(&rl.allowedCount),
		"rejected": atomic.LoadUint64(&rl.rejectedCount),
	}
}

func (rl *IPRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.CleanupInterval * 2)
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if c.lastSeen.Before(cutoff) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// GetClientIP resolves the client address, honoring proxy headers.
// X-Forwarded-For is spoofable when the server is not behind a trusted
// proxy; the limiter treats it as advisory, not authentication.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WebSocketRateLimiter caps concurrent spectator feed connections per IP.
// Counters are lock-free so the upgrade path never serializes on a mutex.
type WebSocketRateLimiter struct {
	active   sync.Map // map[string]*int32
	maxPerIP int

	rejectedCount uint64 // atomic
}

func NewWebSocketRateLimiter(maxPerIP int) *WebSocketRateLimiter {
	return &WebSocketRateLimiter{maxPerIP: maxPerIP}
}

// Allow reserves a connection slot for ip, or reports the cap is hit.
func (wrl *WebSocketRateLimiter) Allow(ip string) bool {
	entry, _ := wrl.active.LoadOrStore(ip, new(int32))
	n := entry.(*int32)

	for {
		cur := atomic.LoadInt32(n)
		if int(cur) >= wrl.maxPerIP {
			atomic.AddUint64(&wrl.rejectedCount, 1)
			return false
		}
		if atomic.CompareAndSwapInt32(n, cur, cur+1) {
			return true
		}
	}
}

// Release frees a slot reserved by Allow.
func (wrl *WebSocketRateLimiter) Release(ip string) {
	if entry, ok := wrl.active.Load(ip); ok {
		atomic.AddInt32(entry.(*int32), -1)
	}
}

// GetConnectionCount returns the live connection count for an IP.
func (wrl *WebSocketRateLimiter) GetConnectionCount(ip string) int {
	if entry, ok := wrl.active.Load(ip); ok {
		return int(atomic.LoadInt32(entry.(*int32)))
	}
	return 0
}

// GetStats returns rejection counters for monitoring.
func (wrl *WebSocketRateLimiter) GetStats() map[string]uint64 {
	return map[string]uint64{
		"rejected": atomic.LoadUint64(&wrl.rejectedCount),
	}
}

// AllowedOrigins lists non-localhost origins permitted to open the
// spectator feed. Empty by default: this server ships without a public
// web client, so only local tooling connects.
var AllowedOrigins = []string{}

// IsAllowedOrigin accepts localhost and loopback on any port, plus any
// explicitly listed origin.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	if strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1") {
		return true
	}
	for _, allowed := range AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
