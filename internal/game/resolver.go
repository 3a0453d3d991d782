package game

import (
	"math"

	"github.com/a19grey/zombieteam-server/internal/config"
	"github.com/a19grey/zombieteam-server/internal/game/spatial"
)

// gridSeparationThreshold is the zombie count above which the separation
// pass narrows candidate pairs through the spatial grid instead of the
// O(n²) pairwise scan.
const gridSeparationThreshold = 64

// TickStats summarizes one resolution tick for the scheduler and metrics.
type TickStats struct {
	Hits         int     `json:"hits"`
	Kills        int     `json:"kills"`
	Unlocks      int     `json:"unlocks"`
	Separations  int     `json:"separations"`
	PartsLost    int     `json:"partsLost"`
	Explosions   int     `json:"explosions"`
	Culled       int     `json:"culled"`
	ScoreAwarded int     `json:"scoreAwarded"`
	AvatarDamage float64 `json:"avatarDamage"`
}

// Callbacks are fire-and-forget notifications for UI/audio collaborators.
// All may be nil. Each fires on its own goroutine: the tick holds the
// engine lock while resolving, so a callback is free to call back into
// the engine (Totals, Counts, GetSnapshot) without deadlocking.
type Callbacks struct {
	OnZombieKilled   func(z *Zombie, killerSourceTag string)
	OnPickupUnlocked func(p *Pickup)
	OnPartLost       func(z *Zombie, part PartName)
}

// Resolver runs the fixed-order detection and response passes once per
// tick. It owns explicit references to its registry, grid, and RNG,
// injected at construction; there is no ambient global state.
//
// Pass order is load-bearing:
//  1. projectile→zombie (continuous ray, nearest wins, area sweeps)
//  2. projectile→pickup (distance)
//  3. zombie↔zombie separation (distance, push the later-spawned only)
//  4. avatar↔zombie contact damage (distance, no removal)
//
// followed by a single backward removal sweep. A projectile is consumed by
// at most one target per tick; zombies killed in pass 1 stay in the list
// until the sweep so same-tick explosion indices stay valid.
type Resolver struct {
	combat config.CombatConfig
	reg    *Registry
	grid   *spatial.Grid
	rng    Rand
	log    *EventLog
	cbs    *Callbacks

	deaths []*Zombie // Worklist of queued deaths, reused across ticks
}

// NewResolver wires a resolver to its collaborators. log and cbs may be nil.
func NewResolver(combat config.CombatConfig, reg *Registry, grid *spatial.Grid, rng Rand, log *EventLog, cbs *Callbacks) *Resolver {
	if cbs == nil {
		cbs = &Callbacks{}
	}
	return &Resolver{
		combat: combat,
		reg:    reg,
		grid:   grid,
		rng:    rng,
		log:    log,
		cbs:    cbs,
	}
}

// ResolveTick runs all passes and the removal sweep for one tick.
// Not safe for concurrent use; the engine serializes calls.
func (r *Resolver) ResolveTick(dt float64, tickNum uint64) TickStats {
	var stats TickStats
	r.deaths = r.deaths[:0]

	r.passProjectileZombie(&stats, tickNum)
	r.processDeaths(&stats, tickNum)
	r.passProjectilePickup(&stats, tickNum)
	r.passSeparation(&stats)
	r.passAvatarContact(dt, &stats, tickNum)
	r.sweepRemovals(&stats, tickNum)

	return stats
}

// passProjectileZombie runs the continuous ray test for every live
// projectile against every live zombie. The nearest intersection within
// the tick's travel segment wins; ties resolve by distance only, never by
// list order.
func (r *Resolver) passProjectileZombie(stats *TickStats, tickNum uint64) {
	for _, p := range r.reg.Projectiles {
		if p == nil || !p.Live() {
			continue
		}

		origin, dir, length := p.Ray()
		if length == 0 {
			continue
		}

		var best *Zombie
		var bestPoint Vec3
		bestT := math.Inf(1)

		for _, z := range r.reg.Zombies {
			if z == nil || z.Dead || z.Culled {
				continue
			}
			point, t, ok := RaySphereHit(origin, dir, length, z.Pos, z.Radius)
			if ok && t < bestT {
				best, bestT, bestPoint = z, t, point
			}
		}

		if best == nil {
			continue
		}

		direct := p.Damage
		if p.AreaEffect {
			direct = r.combat.GrenadeDirectDamage
		}

		p.Consumed = true
		stats.Hits++
		r.damageZombie(best, direct, p.SourceTag, stats, tickNum)

		if r.log != nil {
			r.log.EmitSimple(EventTypeHit, tickNum, p.SourceTag, HitPayload{
				ProjectileID: p.ID,
				ZombieID:     best.ID,
				Damage:       direct,
				ZombieHP:     best.Health,
				SourceTag:    p.SourceTag,
			})
		}

		if p.AreaEffect {
			radius := p.EffectRadius
			if radius <= 0 {
				radius = r.combat.ExplosionRadius
			}
			r.explode(bestPoint, r.combat.ExplosionDamage, radius, p.SourceTag, stats, tickNum)
		}
	}
}

// damageZombie applies damage, advances dismemberment, and queues the
// death when health first reaches zero. Dead zombies are skipped so a
// zombie is queued exactly once regardless of how much same-tick damage
// piles on.
func (r *Resolver) damageZombie(z *Zombie, amount float64, sourceTag string, stats *TickStats, tickNum uint64) {
	if amount <= 0 || z.Dead {
		return
	}

	z.Damage(amount)

	lost := z.Dismember.Advance(amount, r.rng, r.combat.LeftPartBias)
	for _, part := range lost {
		z.ApplyPartLoss(part, r.combat.SpeedDamping, r.combat.AccuracyDamping)
		r.reg.Sink().PartDetached(z.NodeID, part.NodeID, part.Name)
		stats.PartsLost++

		if r.cbs.OnPartLost != nil {
			go r.cbs.OnPartLost(z, part.Name)
		}
		if r.log != nil {
			r.log.EmitSimple(EventTypePartLost, tickNum, sourceTag, PartLostPayload{
				ZombieID:      z.ID,
				Part:          string(part.Name),
				DamagePercent: z.Dismember.Percent(),
			})
		}
	}

	if z.Dead {
		z.KilledBy = sourceTag
		r.deaths = append(r.deaths, z)
	}
}

// explode runs an area-damage sweep: full damage at the center scaling
// linearly to zero at the radius edge. The entity tagged as the damage
// source is excluded so exploders never chain off themselves.
func (r *Resolver) explode(center Vec3, damage, radius float64, sourceTag string, stats *TickStats, tickNum uint64) {
	if damage <= 0 || radius <= 0 {
		return
	}
	stats.Explosions++

	struck := 0
	for _, z := range r.reg.Zombies {
		if z == nil || z.Dead || z.Culled || z.NodeID == sourceTag {
			continue
		}
		d := z.Pos.Distance(center)
		if d >= radius {
			continue
		}
		r.damageZombie(z, damage*(1-d/radius), sourceTag, stats, tickNum)
		struck++
	}

	if r.log != nil {
		r.log.EmitSimple(EventTypeExplosion, tickNum, sourceTag, ExplosionPayload{
			X: center.X, Y: center.Y, Z: center.Z,
			Damage:    damage,
			Radius:    radius,
			Struck:    struck,
			SourceTag: sourceTag,
		})
	}
}

// processDeaths drains the death worklist: score award, kill notification,
// and the chained explosion for exploder types. Chained explosions may
// append further deaths, which the worklist picks up in order. Removal
// itself waits for the backward sweep.
func (r *Resolver) processDeaths(stats *TickStats, tickNum uint64) {
	for i := 0; i < len(r.deaths); i++ {
		z := r.deaths[i]

		stats.Kills++
		stats.ScoreAwarded += z.Score

		if r.cbs.OnZombieKilled != nil {
			go r.cbs.OnZombieKilled(z, z.KilledBy)
		}
		if r.log != nil {
			r.log.EmitSimple(EventTypeKill, tickNum, z.KilledBy, KillPayload{
				ZombieID:   z.ID,
				ZombieType: string(z.Type),
				Score:      z.Score,
				SourceTag:  z.KilledBy,
			})
		}

		if StatsFor(z.Type).Explodes {
			r.explode(z.Pos, r.combat.ExplosionDamage, r.combat.ExplosionRadius, z.NodeID, stats, tickNum)
		}
	}
}

// passProjectilePickup tests surviving projectiles against active, still
// locked pickups. Unlocking activates the pickup's effect on the avatar
// and deactivates its spawn-group siblings.
func (r *Resolver) passProjectilePickup(stats *TickStats, tickNum uint64) {
	for _, p := range r.reg.Projectiles {
		if p == nil || !p.Live() {
			continue
		}

		for _, pk := range r.reg.Pickups {
			if pk == nil || !pk.Active || pk.Unlocked {
				continue
			}
			if !DistanceHit(p.Pos, pk.Pos, r.combat.PickupHitRadius) {
				continue
			}

			unlocked := pk.DamageLock(p.Damage)
			p.Consumed = true

			if unlocked {
				stats.Unlocks++
				if r.reg.Avatar != nil {
					r.reg.Avatar.ApplyEffect(pk.Effect)
				}
				pk.Active = false
				r.reg.Sink().NodeRemoved(pk.NodeID)
				r.reg.DeactivateSiblings(pk)

				if r.cbs.OnPickupUnlocked != nil {
					go r.cbs.OnPickupUnlocked(pk)
				}
				if r.log != nil {
					r.log.EmitSimple(EventTypeUnlock, tickNum, p.SourceTag, UnlockPayload{
						PickupID:     pk.ID,
						Effect:       string(pk.Effect),
						SpawnGroupID: pk.SpawnGroupID,
					})
				}
			}
			break // A projectile damages at most one pickup
		}
	}
}

// passSeparation resolves overlapping zombie pairs by pushing only the
// later-spawned zombie of each pair directly away from the earlier one by
// the shortfall. One-sided correction avoids the oscillation that
// symmetric pushes cause. Above gridSeparationThreshold the grid narrows
// candidate pairs.
func (r *Resolver) passSeparation(stats *TickStats) {
	zombies := r.reg.Zombies

	if r.grid != nil && len(zombies) >= gridSeparationThreshold {
		for _, a := range zombies {
			if a == nil || a.Dead || a.Culled {
				continue
			}
			for _, id := range r.grid.QueryNeighbors(a.Pos.X, a.Pos.Z, 1) {
				if id <= a.ID {
					continue // Pair handled once, earlier ID pushes later
				}
				b := r.reg.ZombieByID(id)
				if b == nil || b.Dead || b.Culled {
					continue
				}
				if r.separate(a, b) {
					stats.Separations++
				}
			}
		}
		return
	}

	for i := 0; i < len(zombies); i++ {
		a := zombies[i]
		if a == nil || a.Dead || a.Culled {
			continue
		}
		for j := i + 1; j < len(zombies); j++ {
			b := zombies[j]
			if b == nil || b.Dead || b.Culled {
				continue
			}
			if r.separate(a, b) {
				stats.Separations++
			}
		}
	}
}

// separate pushes b away from a along the connecting vector until their
// distance reaches the separation threshold. a never moves. Exactly
// coincident zombies are pushed along +X to break the tie.
func (r *Resolver) separate(a, b *Zombie) bool {
	sep := r.combat.SeparationDistance
	delta := b.Pos.Sub(a.Pos)
	delta.Y = 0

	distSq := delta.LengthSq()
	if distSq >= sep*sep {
		return false
	}

	oldX, oldZ := b.Pos.X, b.Pos.Z

	if distSq == 0 {
		b.Pos.X += sep
	} else {
		dist := math.Sqrt(distSq)
		push := delta.Scale((sep - dist) / dist)
		b.Pos.X += push.X
		b.Pos.Z += push.Z
	}

	if r.grid != nil {
		r.grid.Update(b.ID, oldX, oldZ, b.Pos.X, b.Pos.Z)
	}
	return true
}

// passAvatarContact applies recurring damage-over-time to the avatar for
// every zombie inside the contact radius. Dispatch only; no removal.
func (r *Resolver) passAvatarContact(dt float64, stats *TickStats, tickNum uint64) {
	av := r.reg.Avatar
	if av == nil || av.Health <= 0 {
		return
	}

	for _, z := range r.reg.Zombies {
		if z == nil || z.Dead || z.Culled {
			continue
		}
		if !DistanceHit(z.Pos, av.Pos, r.combat.ContactDamageRadius) {
			continue
		}

		before := av.Health
		av.Damage(r.combat.ContactDamagePerSecond * dt)
		dealt := before - av.Health
		if dealt <= 0 {
			continue
		}

		stats.AvatarDamage += dealt
		if r.log != nil {
			r.log.EmitSimple(EventTypeAvatarDamage, tickNum, z.NodeID, AvatarDamagePayload{
				Damage:   dealt,
				AvatarHP: av.Health,
				ZombieID: z.ID,
			})
		}
	}
}

// sweepRemovals walks the projectile and zombie lists backward exactly
// once, physically removing consumed/expired projectiles and dead/culled
// zombies. Backward iteration keeps the indices of entities not yet
// visited stable. A zombie leaves the grid before it leaves the registry.
func (r *Resolver) sweepRemovals(stats *TickStats, tickNum uint64) {
	projectiles := r.reg.Projectiles
	for i := len(projectiles) - 1; i >= 0; i-- {
		p := projectiles[i]
		if p != nil && p.Live() {
			continue
		}
		if p != nil {
			r.reg.Sink().NodeRemoved(p.NodeID)
		}
		projectiles = append(projectiles[:i], projectiles[i+1:]...)
	}
	r.reg.Projectiles = projectiles

	zombies := r.reg.Zombies
	for i := len(zombies) - 1; i >= 0; i-- {
		z := zombies[i]
		if z != nil && !z.Dead && !z.Culled {
			continue
		}
		if z != nil {
			if r.grid != nil {
				r.grid.Remove(z.ID, z.Pos.X, z.Pos.Z)
			}
			r.reg.Sink().NodeRemoved(z.NodeID)
			r.reg.forgetZombie(z.ID)

			if z.Culled && !z.Dead {
				stats.Culled++
				if r.log != nil {
					r.log.EmitSimple(EventTypeCull, tickNum, "", SpawnPayload{
						EntityID: z.ID,
						Kind:     "zombie",
						Type:     string(z.Type),
						X:        z.Pos.X,
						Z:        z.Pos.Z,
					})
				}
			}
		}
		zombies = append(zombies[:i], zombies[i+1:]...)
	}
	r.reg.Zombies = zombies

	r.reg.CompactPickups()
}
