package game

import (
	"sync/atomic"
	"time"

	"github.com/a19grey/zombieteam-server/internal/config"
)

// ZombieSnapshot is an immutable copy of zombie state for rendering.
// Uses value types (not pointers) to ensure immutability.
type ZombieSnapshot struct {
	ID        uint64   `json:"id" msgpack:"id"`
	NodeID    string   `json:"nodeId" msgpack:"n"`
	Type      string   `json:"type" msgpack:"t"`
	X         float64  `json:"x" msgpack:"x"`
	Y         float64  `json:"y" msgpack:"y"`
	Z         float64  `json:"z" msgpack:"z"`
	Health    float64  `json:"health" msgpack:"hp"`
	MaxHealth float64  `json:"maxHealth" msgpack:"mhp"`
	Radius    float64  `json:"radius" msgpack:"r"`
	Erratic   bool     `json:"erratic" msgpack:"e"`
	LostParts []string `json:"lostParts,omitempty" msgpack:"lp,omitempty"`
}

// ProjectileSnapshot is an immutable in-flight round.
type ProjectileSnapshot struct {
	ID         uint64  `json:"id" msgpack:"id"`
	NodeID     string  `json:"nodeId" msgpack:"n"`
	X          float64 `json:"x" msgpack:"x"`
	Y          float64 `json:"y" msgpack:"y"`
	Z          float64 `json:"z" msgpack:"z"`
	AreaEffect bool    `json:"areaEffect" msgpack:"ae"`
}

// PickupSnapshot is an immutable pickup with its lock state.
type PickupSnapshot struct {
	ID            uint64  `json:"id" msgpack:"id"`
	NodeID        string  `json:"nodeId" msgpack:"n"`
	Effect        string  `json:"effect" msgpack:"fx"`
	X             float64 `json:"x" msgpack:"x"`
	Y             float64 `json:"y" msgpack:"y"`
	Z             float64 `json:"z" msgpack:"z"`
	LockHealth    float64 `json:"lockHealth" msgpack:"lh"`
	MaxLockHealth float64 `json:"maxLockHealth" msgpack:"mlh"`
}

// AvatarSnapshot captures the player character state.
type AvatarSnapshot struct {
	X              float64 `json:"x" msgpack:"x"`
	Y              float64 `json:"y" msgpack:"y"`
	Z              float64 `json:"z" msgpack:"z"`
	Health         float64 `json:"health" msgpack:"hp"`
	MaxHealth      float64 `json:"maxHealth" msgpack:"mhp"`
	Effect         string  `json:"effect,omitempty" msgpack:"fx,omitempty"`
	EffectTimeLeft float64 `json:"effectTimeLeft,omitempty" msgpack:"fxt,omitempty"`
}

// WorldSnapshot is a complete immutable world state for rendering and
// broadcast. All slices are pre-allocated and capped.
type WorldSnapshot struct {
	Sequence   uint64    `json:"sequence" msgpack:"seq"`
	Timestamp  time.Time `json:"timestamp" msgpack:"ts"`
	TickNumber uint64    `json:"tickNumber" msgpack:"tick"`
	RNGSeed    int64     `json:"rngSeed" msgpack:"seed"`

	Zombies     []ZombieSnapshot     `json:"zombies" msgpack:"zs"`
	Projectiles []ProjectileSnapshot `json:"projectiles" msgpack:"ps"`
	Pickups     []PickupSnapshot     `json:"pickups" msgpack:"pk"`
	Avatar      AvatarSnapshot       `json:"avatar" msgpack:"av"`

	// Aggregate stats
	ZombieCount int       `json:"zombieCount" msgpack:"zc"`
	TotalKills  int       `json:"totalKills" msgpack:"tk"`
	TotalScore  int       `json:"totalScore" msgpack:"tsc"`
	LastTick    TickStats `json:"lastTick" msgpack:"lt"`
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Uses triple buffering for lock-free producer/consumer.
type SnapshotPool struct {
	snapshots [3]WorldSnapshot
	limits    config.ResourceLimits
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices.
func NewSnapshotPool(limits config.ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}

	for i := 0; i < 3; i++ {
		pool.snapshots[i] = WorldSnapshot{
			Zombies:     make([]ZombieSnapshot, 0, limits.MaxZombies),
			Projectiles: make([]ProjectileSnapshot, 0, limits.MaxProjectiles),
			Pickups:     make([]PickupSnapshot, 0, limits.MaxPickups),
		}
	}

	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the
// engine tick). Returns a snapshot with reset slices but preserved capacity.
func (p *SnapshotPool) AcquireWrite() *WorldSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Zombies = snap.Zombies[:0]
	snap.Projectiles = snap.Projectiles[:0]
	snap.Pickups = snap.Pickups[:0]
	snap.Avatar = AvatarSnapshot{}

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks the write complete and advances the read pointer.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumer only).
func (p *SnapshotPool) AcquireRead() *WorldSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}
