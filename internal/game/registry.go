package game

import (
	"fmt"

	"github.com/a19grey/zombieteam-server/internal/config"
)

// Registry holds the live entity lists the resolver iterates each tick.
// Lists are mutated only by the engine inside its own tick; spawner and
// rendering collaborators go through the engine's locked entry points.
type Registry struct {
	Projectiles []*Projectile
	Zombies     []*Zombie
	Pickups     []*Pickup
	Avatar      *Avatar

	limits   config.ResourceLimits
	sink     RenderSink
	nextID   uint64
	zombieID map[uint64]*Zombie
}

// NewRegistry creates an empty registry with pre-allocated capacity.
func NewRegistry(limits config.ResourceLimits, sink RenderSink) *Registry {
	if sink == nil {
		sink = NopSink{}
	}
	return &Registry{
		Projectiles: make([]*Projectile, 0, limits.MaxProjectiles),
		Zombies:     make([]*Zombie, 0, limits.MaxZombies),
		Pickups:     make([]*Pickup, 0, limits.MaxPickups),
		Avatar:      NewAvatar(100),
		limits:      limits,
		sink:        sink,
		zombieID:    make(map[uint64]*Zombie, limits.MaxZombies),
	}
}

func (r *Registry) allocID() uint64 {
	r.nextID++
	return r.nextID
}

// AddZombie spawns a zombie of the given type at pos. Returns nil when the
// zombie cap is reached; the caller (spawner) decides whether to retry.
func (r *Registry) AddZombie(t ZombieType, pos Vec3) *Zombie {
	if len(r.Zombies) >= r.limits.MaxZombies {
		return nil
	}

	stats := StatsFor(t)
	id := r.allocID()
	nodeID := fmt.Sprintf("zombie/%d", id)

	z := &Zombie{
		ID:        id,
		NodeID:    nodeID,
		Type:      t,
		Pos:       pos,
		Health:    stats.Health,
		MaxHealth: stats.Health,
		Radius:    stats.Radius,
		Speed:     stats.Speed,
		BaseSpeed: stats.Speed,
		Accuracy:  1.0,
		Score:     stats.Score,
		Dismember: NewDismemberState(stats.Health, nodeID),
	}

	r.Zombies = append(r.Zombies, z)
	r.zombieID[id] = z
	r.sink.NodeAdded(nodeID, "zombie")
	return z
}

// ZombieByID resolves a zombie from its stable entity ID, or nil.
func (r *Registry) ZombieByID(id uint64) *Zombie {
	return r.zombieID[id]
}

// forgetZombie drops the ID index entry during the removal sweep.
func (r *Registry) forgetZombie(id uint64) {
	delete(r.zombieID, id)
}

// AddProjectile fires a round from origin along dir. Returns nil at the cap.
func (r *Registry) AddProjectile(origin, dir Vec3, speed, damage, radius, maxRange float64, areaEffect bool, effectRadius float64, sourceTag string) *Projectile {
	if len(r.Projectiles) >= r.limits.MaxProjectiles {
		return nil
	}

	id := r.allocID()
	nodeID := fmt.Sprintf("projectile/%d", id)

	p := &Projectile{
		ID:           id,
		NodeID:       nodeID,
		Pos:          origin,
		Prev:         origin,
		Dir:          dir.Normalize(),
		Speed:        speed,
		Damage:       damage,
		Radius:       radius,
		MaxRange:     maxRange,
		AreaEffect:   areaEffect,
		EffectRadius: effectRadius,
		SourceTag:    sourceTag,
	}

	r.Projectiles = append(r.Projectiles, p)
	r.sink.NodeAdded(nodeID, "projectile")
	return p
}

// AddPickupGroup spawns a choice set of pickups sharing one spawn group ID.
// Positions and effects are paired by index. Returns the created pickups;
// spawns stop silently at the pickup cap.
func (r *Registry) AddPickupGroup(positions []Vec3, effects []EffectType, lockHP float64) []*Pickup {
	if len(positions) == 0 || len(positions) != len(effects) {
		return nil
	}

	groupID := r.allocID()
	created := make([]*Pickup, 0, len(positions))

	for i, pos := range positions {
		if len(r.Pickups) >= r.limits.MaxPickups {
			break
		}

		id := r.allocID()
		nodeID := fmt.Sprintf("pickup/%d", id)

		p := &Pickup{
			ID:            id,
			NodeID:        nodeID,
			Pos:           pos,
			Effect:        effects[i],
			LockHealth:    lockHP,
			MaxLockHealth: lockHP,
			Active:        true,
			SpawnGroupID:  groupID,
		}

		r.Pickups = append(r.Pickups, p)
		r.sink.NodeAdded(nodeID, "pickup")
		created = append(created, p)
	}

	return created
}

// DeactivateSiblings deactivates every other active pickup sharing the
// collected pickup's spawn group and announces their node removal.
func (r *Registry) DeactivateSiblings(collected *Pickup) {
	for _, p := range r.Pickups {
		if p.ID == collected.ID || p.SpawnGroupID != collected.SpawnGroupID {
			continue
		}
		if p.Active {
			p.Active = false
			r.sink.NodeRemoved(p.NodeID)
		}
	}
}

// CompactPickups removes inactive pickups. Pickup removal is not part of
// the resolver's backward sweep because pickups never participate in the
// earlier passes once inactive.
func (r *Registry) CompactPickups() {
	n := 0
	for _, p := range r.Pickups {
		if p.Active {
			r.Pickups[n] = p
			n++
		}
	}
	r.Pickups = r.Pickups[:n]
}

// Sink returns the render sink.
func (r *Registry) Sink() RenderSink {
	return r.sink
}

// Limits returns the configured caps.
func (r *Registry) Limits() config.ResourceLimits {
	return r.limits
}
