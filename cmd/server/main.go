package main

import (
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/a19grey/zombieteam-server/internal/api"
	"github.com/a19grey/zombieteam-server/internal/config"
	"github.com/a19grey/zombieteam-server/internal/game"
	"github.com/a19grey/zombieteam-server/internal/render"
	"github.com/a19grey/zombieteam-server/internal/store"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	log.Println("🧟 ================================")
	log.Println("🧟  ZOMBIETEAM - ARENA SERVER")
	log.Println("🧟 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	serverCfg := appConfig.Server

	log.Printf("🎮 Config: %d TPS, cull %.0f, cell %.0f",
		appConfig.World.TickRate, appConfig.World.CullDistance, appConfig.World.CellSize)
	log.Printf("🛡️ Resource limits: %d zombies, %d projectiles, %d pickups",
		appConfig.Limits.MaxZombies, appConfig.Limits.MaxProjectiles, appConfig.Limits.MaxPickups)

	// Session/score database
	db, err := store.Open(serverCfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	sessionID, err := db.StartSession()
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	sessionStart := time.Now()
	log.Printf("💾 Database: %s (session %d)", serverCfg.DatabasePath, sessionID)

	// Frame renderer doubles as the engine's render sink
	renderer := render.NewRenderer(render.DefaultConfig())

	var seed int64
	if s := os.Getenv("RNG_SEED"); s != "" {
		seed, _ = strconv.ParseInt(s, 10, 64)
	}
	engine := game.NewEngine(appConfig, renderer, seed)

	engine.SetCallbacks(game.Callbacks{
		OnZombieKilled: func(z *game.Zombie, source string) {
			_, _, _, _, ticks := engine.Totals()
			if err := db.RecordKill(sessionID, int64(ticks), string(z.Type), source); err != nil {
				log.Printf("⚠️ Kill record failed: %v", err)
			}
		},
		OnPickupUnlocked: func(p *game.Pickup) {
			log.Printf("🎁 Pickup unlocked: %s", p.Effect)
		},
		OnPartLost: func(z *game.Zombie, part game.PartName) {
			log.Printf("🦴 %s lost %s", z.NodeID, part)
		},
	})

	engine.SetTickObserver(func(stats game.TickStats, elapsed time.Duration) {
		api.RecordTick(elapsed)
		api.RecordTickOutcome(stats.Kills, stats.Unlocks, stats.PartsLost, stats.Explosions)
		zombies, projectiles, pickups := engine.Counts()
		api.UpdateEntityCounts(zombies, projectiles, pickups)
	})

	// Event log
	if err := engine.StartEventLog(serverCfg.EventLogPath); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else {
		log.Printf("📝 Event log: %s", serverCfg.EventLogPath)
	}

	// Debug server (pprof + metrics, localhost only)
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	server := api.NewServer(api.ServerConfig{
		Engine:   engine,
		Renderer: renderer,
		Store:    db,
		Combat:   appConfig.Combat,
	})

	engine.Start()
	log.Println("✅ Engine started")

	startSpawner(engine, appConfig)

	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down...")
	engine.Stop()
	engine.StopEventLog()
	server.Stop()

	kills, score, unlocks, partsLost, ticks := engine.Totals()
	duration := time.Since(sessionStart).Seconds()
	if err := db.FinishSession(sessionID, duration, kills, score, unlocks, partsLost, int64(ticks)); err != nil {
		log.Printf("⚠️ Session finalize failed: %v", err)
	}
	log.Printf("💾 Session %d: %d kills, %d score in %.0fs", sessionID, kills, score, duration)
}

// startSpawner drives the ambient wave pressure: zombies trickle in
// continuously and a pickup choice set appears once in a while.
func startSpawner(engine *game.Engine, cfg config.AppConfig) {
	zombieTicker := time.NewTicker(2 * time.Second)
	pickupTicker := time.NewTicker(45 * time.Second)

	go func() {
		for {
			select {
			case <-zombieTicker.C:
				engine.SpawnRandomZombie()
			case <-pickupTicker.C:
				spawnPickupRing(engine, cfg)
			}
		}
	}()
}

// spawnPickupRing drops a three-way pickup choice near the avatar.
func spawnPickupRing(engine *game.Engine, cfg config.AppConfig) {
	effects := []game.EffectType{game.EffectRapidFire, game.EffectShield, game.EffectSpeed}

	base := rand.Float64() * 2 * math.Pi
	snap := engine.GetSnapshot()

	positions := make([]game.Vec3, len(effects))
	for i := range effects {
		angle := base + float64(i)*(2*math.Pi/3)
		positions[i] = game.Vec3{
			X: snap.Avatar.X + 20*math.Cos(angle),
			Z: snap.Avatar.Z + 20*math.Sin(angle),
		}
	}

	engine.SpawnPickupGroup(positions, effects)
}
