package game

import "math"

// ZombieType tags a hostile unit variant. Stats per type live in
// zombieCatalog; behavior differences (ranged fire, death explosion) are
// driven by the Ranged/Explodes flags.
type ZombieType string

const (
	ZombieWalker   ZombieType = "walker"
	ZombieRunner   ZombieType = "runner"
	ZombieCrawler  ZombieType = "crawler"
	ZombieSpitter  ZombieType = "spitter"
	ZombieExploder ZombieType = "exploder"
	ZombieBrute    ZombieType = "brute"
)

// ZombieStats defines the base loadout for a zombie type.
type ZombieStats struct {
	Health   float64
	Speed    float64 // World units per second
	Radius   float64 // Bounding sphere radius
	Score    int     // Awarded on kill
	Ranged   bool    // Fires at the avatar; accuracy applies
	Explodes bool    // Chains an explosion on death
}

// zombieCatalog is the per-type stat table. Package-level cache, never
// modified at runtime.
var zombieCatalog = map[ZombieType]ZombieStats{
	ZombieWalker:   {Health: 100, Speed: 2.0, Radius: 1.0, Score: 10},
	ZombieRunner:   {Health: 60, Speed: 4.0, Radius: 0.9, Score: 15},
	ZombieCrawler:  {Health: 40, Speed: 1.2, Radius: 0.7, Score: 5},
	ZombieSpitter:  {Health: 80, Speed: 1.8, Radius: 1.0, Score: 20, Ranged: true},
	ZombieExploder: {Health: 50, Speed: 2.5, Radius: 1.0, Score: 25, Explodes: true},
	ZombieBrute:    {Health: 300, Speed: 1.2, Radius: 1.6, Score: 50},
}

var defaultWalkerStats = zombieCatalog[ZombieWalker]

// StatsFor returns the base stats for a zombie type, falling back to the
// walker loadout for unknown tags.
func StatsFor(t ZombieType) ZombieStats {
	if s, ok := zombieCatalog[t]; ok {
		return s
	}
	return defaultWalkerStats
}

// ZombieTypes returns all known type tags.
func ZombieTypes() []ZombieType {
	return []ZombieType{
		ZombieWalker, ZombieRunner, ZombieCrawler,
		ZombieSpitter, ZombieExploder, ZombieBrute,
	}
}

// Zombie is a hostile mobile unit.
type Zombie struct {
	ID     uint64
	NodeID string // Opaque render handle

	Type ZombieType
	Pos  Vec3

	Health    float64
	MaxHealth float64
	Radius    float64

	Speed     float64 // Current speed (damped by dismemberment)
	BaseSpeed float64 // Speed at spawn
	Accuracy  float64 // Ranged hit chance multiplier, damped by eye loss
	Erratic   bool    // Set when the head is lost; movement system reads this

	Score int // Awarded when killed (not when culled)

	Dead     bool   // Health reached zero; removal deferred to the sweep
	Culled   bool   // Flagged for silent removal (distance/age)
	KilledBy string // Source tag of the killing blow

	Dismember DismemberState
}

// Damage applies damage to the zombie, clamping health at zero and marking
// it dead on the first crossing. Dismemberment advancement is the
// resolver's responsibility so the part-lost events carry attribution.
func (z *Zombie) Damage(amount float64) {
	if amount <= 0 || z.Dead {
		return
	}
	z.Health -= amount
	if z.Health <= 0 {
		z.Health = 0
		z.Dead = true
	}
}

// Seek moves the zombie toward the target position at its current speed.
// Headless (erratic) zombies wander: the heading is perturbed by the
// injected jitter value in radians. Returns the previous position so the
// caller can update the spatial index.
func (z *Zombie) Seek(target Vec3, dt float64, jitter float64) Vec3 {
	prev := z.Pos

	to := target.Sub(z.Pos)
	to.Y = 0
	if to.LengthSq() == 0 {
		return prev
	}

	heading := math.Atan2(to.Z, to.X)
	if z.Erratic {
		heading += jitter
	}

	step := z.Speed * dt
	z.Pos.X += math.Cos(heading) * step
	z.Pos.Z += math.Sin(heading) * step
	return prev
}
