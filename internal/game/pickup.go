package game

// EffectType identifies the temporary buff a pickup grants.
type EffectType string

const (
	EffectNone      EffectType = ""
	EffectRapidFire EffectType = "rapid_fire"
	EffectShield    EffectType = "shield"
	EffectSpeed     EffectType = "speed"
)

// effectDurations maps each effect to its active time in seconds.
var effectDurations = map[EffectType]float64{
	EffectRapidFire: 10,
	EffectShield:    8,
	EffectSpeed:     6,
}

// DurationFor returns the active duration for an effect type.
func DurationFor(e EffectType) float64 {
	return effectDurations[e]
}

// Pickup is a collectible gated behind lock health. Pickups spawn in
// groups offered as a choice: unlocking one deactivates its siblings.
type Pickup struct {
	ID     uint64
	NodeID string // Opaque render handle

	Pos    Vec3
	Effect EffectType

	LockHealth    float64
	MaxLockHealth float64

	Unlocked     bool   // One-way: set exactly once when lock health reaches 0
	Active       bool   // Cleared on collection or sibling collection
	SpawnGroupID uint64 // Shared by sibling pickups in one choice set
}

// DamageLock applies projectile damage to the lock, clamping at zero.
// Returns true on the locked→unlocked transition; repeated damage after
// unlocking is a no-op.
func (p *Pickup) DamageLock(amount float64) bool {
	if p.Unlocked || !p.Active || amount <= 0 {
		return false
	}
	p.LockHealth -= amount
	if p.LockHealth <= 0 {
		p.LockHealth = 0
		p.Unlocked = true
		return true
	}
	return false
}
