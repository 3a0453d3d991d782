package game

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/a19grey/zombieteam-server/internal/config"
	"github.com/a19grey/zombieteam-server/internal/game/spatial"
)

// erraticJitterRadians bounds the per-tick heading perturbation applied to
// headless zombies.
const erraticJitterRadians = 1.2

// ProjectileSpec bundles the tunables for one fired round.
type ProjectileSpec struct {
	Speed        float64
	Damage       float64
	Radius       float64
	MaxRange     float64
	AreaEffect   bool
	EffectRadius float64
	SourceTag    string
}

// BulletSpec returns the standard rifle round.
func BulletSpec(sourceTag string) ProjectileSpec {
	return ProjectileSpec{
		Speed:     60,
		Damage:    100,
		Radius:    0.1,
		MaxRange:  150,
		SourceTag: sourceTag,
	}
}

// GrenadeSpec returns an area-effect round using the configured explosion
// tunables.
func GrenadeSpec(combat config.CombatConfig, sourceTag string) ProjectileSpec {
	return ProjectileSpec{
		Speed:        25,
		Damage:       combat.ExplosionDamage,
		Radius:       0.25,
		MaxRange:     60,
		AreaEffect:   true,
		EffectRadius: combat.ExplosionRadius,
		SourceTag:    sourceTag,
	}
}

// Engine owns the world state and drives the per-tick collision pipeline:
// movement integration, the resolver's detection/response passes, and
// snapshot production. All public entry points take the engine lock; the
// resolver itself is lock-free and only ever called from inside a tick.
type Engine struct {
	mu sync.RWMutex

	world  config.WorldConfig
	combat config.CombatConfig
	limits config.ResourceLimits

	reg      *Registry
	grid     *spatial.Grid
	resolver *Resolver

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	// Stats
	tickCount      uint64
	totalKills     int
	totalScore     int
	totalUnlocks   int
	totalPartsLost int
	lastTick       TickStats

	// Event callbacks, fired outside the resolver's hot path
	callbacks Callbacks

	// Observer for tick timing (metrics); called after each tick
	tickObserver func(TickStats, time.Duration)

	// Snapshot system for lock-free render separation
	snapshotPool *SnapshotPool

	// Event sourcing for replay and debugging
	eventLog *EventLog

	// Deterministic RNG for replay consistency
	rng     *rand.Rand
	rngSeed int64
}

// NewEngine creates an engine from configuration. A zero seed falls back
// to the wall clock; pass a fixed seed for deterministic replays. sink may
// be nil.
func NewEngine(cfg config.AppConfig, sink RenderSink, seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	grid := spatial.NewGrid(cfg.World.CellSize)
	reg := NewRegistry(cfg.Limits, sink)

	e := &Engine{
		world:        cfg.World,
		combat:       cfg.Combat,
		limits:       cfg.Limits,
		reg:          reg,
		grid:         grid,
		tickRate:     cfg.World.TickRate,
		stopChan:     make(chan struct{}),
		snapshotPool: NewSnapshotPool(cfg.Limits),
		eventLog:     NewEventLog(),
		rng:          rand.New(rand.NewSource(seed)),
		rngSeed:      seed,
	}
	e.resolver = NewResolver(cfg.Combat, reg, grid, e.rng, e.eventLog, &e.callbacks)
	return e
}

// SetCallbacks installs the event callbacks. Must be called before Start.
func (e *Engine) SetCallbacks(cbs Callbacks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks = cbs
}

// SetTickObserver installs a per-tick timing observer (metrics hook).
// Must be called before Start.
func (e *Engine) SetTickObserver(fn func(TickStats, time.Duration)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickObserver = fn
}

// StartEventLog begins persisting events to the given JSONL path.
func (e *Engine) StartEventLog(path string) error {
	return e.eventLog.Start(path)
}

// StopEventLog flushes and closes the event log.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// Start begins the tick loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.tick()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🧟 Engine started at %d ticks/sec (seed %d)", e.tickRate, e.rngSeed)
}

// Stop halts the tick loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false

	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)

	log.Printf("🛑 Engine stopped after %d ticks", e.tickCount)
}

func (e *Engine) tick() {
	start := time.Now()
	stats := e.ResolveTick(1.0 / float64(e.tickRate))
	elapsed := time.Since(start)

	if obs := e.tickObserver; obs != nil {
		obs(stats, elapsed)
	}
}

// ResolveTick advances the world by dt seconds: movement integration,
// the fixed-order resolver passes, the removal sweep, and snapshot
// publication. Exposed so callers with their own scheduler can drive the
// engine without the internal ticker.
func (e *Engine) ResolveTick(dt float64) TickStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tickCount++

	e.eventLog.EmitSimple(EventTypeTick, e.tickCount, "", TickPayload{
		RNGSeed:         e.rngSeed,
		ZombieCount:     len(e.reg.Zombies),
		ProjectileCount: len(e.reg.Projectiles),
		DeltaTimeNs:     int64(dt * float64(time.Second)),
	})

	// Advance deterministic seed chain for replay
	e.rngSeed = e.rng.Int63()
	e.rng.Seed(e.rngSeed)

	e.integrateMovement(dt)

	stats := e.resolver.ResolveTick(dt, e.tickCount)

	e.totalKills += stats.Kills
	e.totalScore += stats.ScoreAwarded
	e.totalUnlocks += stats.Unlocks
	e.totalPartsLost += stats.PartsLost
	e.lastTick = stats

	e.produceSnapshot(stats)
	return stats
}

// integrateMovement moves every entity before any collision pass runs, so
// all passes within one tick observe the same post-movement positions.
func (e *Engine) integrateMovement(dt float64) {
	av := e.reg.Avatar

	for _, z := range e.reg.Zombies {
		if z == nil || z.Dead || z.Culled {
			continue
		}

		jitter := 0.0
		if z.Erratic {
			jitter = (e.rng.Float64()*2 - 1) * erraticJitterRadians
		}

		prev := z.Seek(av.Pos, dt, jitter)
		e.grid.Update(z.ID, prev.X, prev.Z, z.Pos.X, z.Pos.Z)

		if z.Pos.Distance(av.Pos) > e.world.CullDistance {
			z.Culled = true
		}
	}

	for _, p := range e.reg.Projectiles {
		if p != nil && p.Live() {
			p.Step(dt)
		}
	}

	av.TickEffect(dt)
}

// SpawnZombie adds a zombie of the given type at pos. Returns nil when the
// cap is reached.
func (e *Engine) SpawnZombie(t ZombieType, pos Vec3) *Zombie {
	e.mu.Lock()
	defer e.mu.Unlock()

	z := e.reg.AddZombie(t, pos)
	if z == nil {
		return nil
	}

	e.grid.Insert(z.ID, z.Pos.X, z.Pos.Z)
	e.eventLog.EmitSimple(EventTypeSpawn, e.tickCount, "", SpawnPayload{
		EntityID: z.ID,
		Kind:     "zombie",
		Type:     string(z.Type),
		X:        z.Pos.X,
		Z:        z.Pos.Z,
	})
	return z
}

// SpawnRandomZombie spawns a random zombie type on a ring around the
// avatar, just inside the cull distance.
func (e *Engine) SpawnRandomZombie() *Zombie {
	e.mu.Lock()
	types := ZombieTypes()
	t := types[e.rng.Intn(len(types))]

	angle := e.rng.Float64() * 2 * math.Pi
	radius := e.world.CullDistance * (0.5 + e.rng.Float64()*0.3)
	pos := e.reg.Avatar.Pos
	pos.X += math.Cos(angle) * radius
	pos.Z += math.Sin(angle) * radius
	e.mu.Unlock()

	return e.SpawnZombie(t, pos)
}

// Fire launches a projectile from origin along dir.
func (e *Engine) Fire(origin, dir Vec3, spec ProjectileSpec) *Projectile {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.reg.AddProjectile(origin, dir, spec.Speed, spec.Damage, spec.Radius,
		spec.MaxRange, spec.AreaEffect, spec.EffectRadius, spec.SourceTag)
	if p == nil {
		return nil
	}

	e.eventLog.EmitSimple(EventTypeSpawn, e.tickCount, spec.SourceTag, SpawnPayload{
		EntityID: p.ID,
		Kind:     "projectile",
		X:        p.Pos.X,
		Z:        p.Pos.Z,
	})
	return p
}

// SpawnPickupGroup places a choice set of pickups sharing one spawn group.
func (e *Engine) SpawnPickupGroup(positions []Vec3, effects []EffectType) []*Pickup {
	e.mu.Lock()
	defer e.mu.Unlock()

	created := e.reg.AddPickupGroup(positions, effects, e.combat.PickupLockHP)
	for _, p := range created {
		e.eventLog.EmitSimple(EventTypeSpawn, e.tickCount, "", SpawnPayload{
			EntityID: p.ID,
			Kind:     "pickup",
			Type:     string(p.Effect),
			X:        p.Pos.X,
			Z:        p.Pos.Z,
		})
	}
	return created
}

// SetAvatarPosition moves the avatar (driven by player input upstream).
func (e *Engine) SetAvatarPosition(pos Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reg.Avatar.Pos = pos
}

// AvatarHealth returns the avatar's current and max health.
func (e *Engine) AvatarHealth() (float64, float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reg.Avatar.Health, e.reg.Avatar.MaxHealth
}

// Counts returns the live entity counts.
func (e *Engine) Counts() (zombies, projectiles, pickups int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.reg.Zombies), len(e.reg.Projectiles), len(e.reg.Pickups)
}

// Totals returns the cumulative session counters.
func (e *Engine) Totals() (kills, score, unlocks, partsLost int, ticks uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalKills, e.totalScore, e.totalUnlocks, e.totalPartsLost, e.tickCount
}

// Seed returns the RNG seed the engine started from.
func (e *Engine) Seed() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rngSeed
}

// EventLogStats exposes the event log's counters for the stats endpoint.
func (e *Engine) EventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// GetSnapshot returns the latest published snapshot. Lock-free; safe to
// call from render and broadcast goroutines.
func (e *Engine) GetSnapshot() *WorldSnapshot {
	return e.snapshotPool.AcquireRead()
}

// produceSnapshot copies world state into the next write buffer and
// publishes it. Caller holds the engine lock.
func (e *Engine) produceSnapshot(stats TickStats) {
	snap := e.snapshotPool.AcquireWrite()

	snap.TickNumber = e.tickCount
	snap.RNGSeed = e.rngSeed

	for _, z := range e.reg.Zombies {
		if z == nil {
			continue
		}
		if len(snap.Zombies) >= e.limits.MaxZombies {
			break
		}
		zs := ZombieSnapshot{
			ID:        z.ID,
			NodeID:    z.NodeID,
			Type:      string(z.Type),
			X:         z.Pos.X,
			Y:         z.Pos.Y,
			Z:         z.Pos.Z,
			Health:    z.Health,
			MaxHealth: z.MaxHealth,
			Radius:    z.Radius,
			Erratic:   z.Erratic,
		}
		for _, name := range z.Dismember.LostParts() {
			zs.LostParts = append(zs.LostParts, string(name))
		}
		snap.Zombies = append(snap.Zombies, zs)
	}

	for _, p := range e.reg.Projectiles {
		if p == nil {
			continue
		}
		if len(snap.Projectiles) >= e.limits.MaxProjectiles {
			break
		}
		snap.Projectiles = append(snap.Projectiles, ProjectileSnapshot{
			ID:         p.ID,
			NodeID:     p.NodeID,
			X:          p.Pos.X,
			Y:          p.Pos.Y,
			Z:          p.Pos.Z,
			AreaEffect: p.AreaEffect,
		})
	}

	for _, pk := range e.reg.Pickups {
		if pk == nil {
			continue
		}
		if len(snap.Pickups) >= e.limits.MaxPickups {
			break
		}
		snap.Pickups = append(snap.Pickups, PickupSnapshot{
			ID:            pk.ID,
			NodeID:        pk.NodeID,
			Effect:        string(pk.Effect),
			X:             pk.Pos.X,
			Y:             pk.Pos.Y,
			Z:             pk.Pos.Z,
			LockHealth:    pk.LockHealth,
			MaxLockHealth: pk.MaxLockHealth,
		})
	}

	av := e.reg.Avatar
	snap.Avatar = AvatarSnapshot{
		X:              av.Pos.X,
		Y:              av.Pos.Y,
		Z:              av.Pos.Z,
		Health:         av.Health,
		MaxHealth:      av.MaxHealth,
		Effect:         string(av.Effect),
		EffectTimeLeft: av.EffectTimeLeft,
	}

	snap.ZombieCount = len(e.reg.Zombies)
	snap.TotalKills = e.totalKills
	snap.TotalScore = e.totalScore
	snap.LastTick = stats

	e.snapshotPool.PublishWrite()
}
