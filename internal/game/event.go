package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with RNG seed
	EventTypeSpawn
	EventTypeHit
	EventTypeKill
	EventTypeExplosion
	EventTypeUnlock
	EventTypePartLost
	EventTypeAvatarDamage
	EventTypeCull
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core record written to the append-only event log.
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	TickNum   uint64    `json:"tickNum"`   // Simulation tick this occurred in
	SourceTag string    `json:"sourceTag"` // Damage source attribution (for rate limiting)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns the human-readable event type.
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeSpawn:
		return "spawn"
	case EventTypeHit:
		return "hit"
	case EventTypeKill:
		return "kill"
	case EventTypeExplosion:
		return "explosion"
	case EventTypeUnlock:
		return "unlock"
	case EventTypePartLost:
		return "part_lost"
	case EventTypeAvatarDamage:
		return "avatar_damage"
	case EventTypeCull:
		return "cull"
	default:
		return "unknown"
	}
}

// Typed payloads for the different event types.

// TickPayload contains tick boundary information for replay.
type TickPayload struct {
	RNGSeed         int64 `json:"rngSeed"`
	ZombieCount     int   `json:"zombieCount"`
	ProjectileCount int   `json:"projectileCount"`
	DeltaTimeNs     int64 `json:"deltaTimeNs"`
}

// HitPayload records a projectile striking a zombie.
type HitPayload struct {
	ProjectileID uint64  `json:"projectileId"`
	ZombieID     uint64  `json:"zombieId"`
	Damage       float64 `json:"damage"`
	ZombieHP     float64 `json:"zombieHp"`
	SourceTag    string  `json:"sourceTag"`
}

// KillPayload records a zombie death with attribution.
type KillPayload struct {
	ZombieID   uint64 `json:"zombieId"`
	ZombieType string `json:"zombieType"`
	Score      int    `json:"score"`
	SourceTag  string `json:"sourceTag"`
}

// ExplosionPayload records an area-damage sweep.
type ExplosionPayload struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Damage    float64 `json:"damage"`
	Radius    float64 `json:"radius"`
	Struck    int     `json:"struck"`
	SourceTag string  `json:"sourceTag"`
}

// UnlockPayload records a pickup unlocking.
type UnlockPayload struct {
	PickupID     uint64 `json:"pickupId"`
	Effect       string `json:"effect"`
	SpawnGroupID uint64 `json:"spawnGroupId"`
}

// PartLostPayload records a dismemberment transition.
type PartLostPayload struct {
	ZombieID      uint64  `json:"zombieId"`
	Part          string  `json:"part"`
	DamagePercent float64 `json:"damagePercent"`
}

// SpawnPayload records an entity entering the world.
type SpawnPayload struct {
	EntityID uint64  `json:"entityId"`
	Kind     string  `json:"kind"`
	Type     string  `json:"type,omitempty"`
	X        float64 `json:"x"`
	Z        float64 `json:"z"`
}

// AvatarDamagePayload records contact damage to the avatar.
type AvatarDamagePayload struct {
	Damage   float64 `json:"damage"`
	AvatarHP float64 `json:"avatarHp"`
	ZombieID uint64  `json:"zombieId"`
}

// EncodePayload marshals a payload to JSON bytes.
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, tickNum uint64, sourceTag string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		SourceTag: sourceTag,
		Payload:   EncodePayload(payload),
	}
}
