package game

// Projectile represents a fired round travelling through the world.
// Each tick it records its previous position before moving so the resolver
// can run a continuous ray test along the travelled segment; fast rounds
// cannot tunnel through a zombie between frames.
type Projectile struct {
	ID     uint64 // Stable entity ID, also the render node key
	NodeID string // Opaque render handle

	Pos  Vec3    // Current position
	Prev Vec3    // Position at the previous tick
	Dir  Vec3    // Normalized travel direction
	Speed float64 // World units per second

	Damage float64 // Damage dealt on a direct hit
	Radius float64 // Collision radius (used for pickup distance tests)

	// Area-effect rounds (grenades) explode on impact. Direct-hit damage
	// for these comes from CombatConfig.GrenadeDirectDamage, not Damage.
	AreaEffect   bool
	EffectRadius float64

	SourceTag string // Damage attribution; excluded from own explosions

	Consumed bool    // Set once when the round hits something
	Expired  bool    // Set once at max range / lifetime
	Traveled float64 // Cumulative distance
	MaxRange float64 // Expiry distance
}

// Step advances the projectile by one tick, recording the previous position
// for the continuous collision ray. Marks the projectile expired past max
// range; expired rounds are removed by the backward sweep without counting
// as hits.
func (p *Projectile) Step(dt float64) {
	p.Prev = p.Pos
	step := p.Speed * dt
	p.Pos = p.Pos.Add(p.Dir.Scale(step))
	p.Traveled += step

	if p.Traveled >= p.MaxRange {
		p.Expired = true
	}
}

// Ray returns the continuous collision segment for this tick: origin at the
// previous position, normalized direction, and segment length. A projectile
// that has not moved yet yields a zero-length ray, which the detector
// treats as no hit.
func (p *Projectile) Ray() (origin, dir Vec3, length float64) {
	seg := p.Pos.Sub(p.Prev)
	length = seg.Length()
	if length == 0 {
		return p.Prev, Vec3{}, 0
	}
	return p.Prev, seg.Scale(1.0 / length), length
}

// Live reports whether the projectile still participates in collision passes.
func (p *Projectile) Live() bool {
	return !p.Consumed && !p.Expired
}
