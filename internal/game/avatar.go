package game

// Avatar is the player-controlled entity. Singleton for the session.
type Avatar struct {
	Pos       Vec3
	Health    float64
	MaxHealth float64

	// At most one temporary effect is active; collecting a new pickup
	// replaces the current one.
	Effect         EffectType
	EffectTimeLeft float64
}

// NewAvatar creates the session avatar at the origin.
func NewAvatar(maxHealth float64) *Avatar {
	return &Avatar{
		Health:    maxHealth,
		MaxHealth: maxHealth,
	}
}

// Damage applies damage to the avatar, clamping health at zero. An active
// shield effect absorbs contact damage entirely.
func (a *Avatar) Damage(amount float64) {
	if amount <= 0 || a.Health <= 0 {
		return
	}
	if a.Effect == EffectShield && a.EffectTimeLeft > 0 {
		return
	}
	a.Health -= amount
	if a.Health < 0 {
		a.Health = 0
	}
}

// ApplyEffect activates a temporary effect, replacing any current one.
func (a *Avatar) ApplyEffect(e EffectType) {
	a.Effect = e
	a.EffectTimeLeft = DurationFor(e)
}

// TickEffect counts the active effect down and clears it at zero.
func (a *Avatar) TickEffect(dt float64) {
	if a.Effect == EffectNone {
		return
	}
	a.EffectTimeLeft -= dt
	if a.EffectTimeLeft <= 0 {
		a.Effect = EffectNone
		a.EffectTimeLeft = 0
	}
}
