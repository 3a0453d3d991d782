// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all gameplay and server settings.
//
// IMPORTANT: When changing balance values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// WORLD CONFIGURATION
// =============================================================================

// WorldConfig holds world-space settings shared by the engine and renderer.
type WorldConfig struct {
	CellSize     float64 // Spatial grid cell size in world units
	CullDistance float64 // Zombies beyond this distance from the avatar are culled
	TickRate     int     // Simulation ticks per second
}

// DefaultWorld returns the default world configuration.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		CellSize:     10.0,
		CullDistance: 120.0,
		TickRate:     30,
	}
}

// WorldFromEnv returns world configuration with environment variable overrides.
func WorldFromEnv() WorldConfig {
	cfg := DefaultWorld()

	if v := getEnvFloat("WORLD_CELL_SIZE", 0); v > 0 {
		cfg.CellSize = v
	}
	if v := getEnvFloat("WORLD_CULL_DISTANCE", 0); v > 0 {
		cfg.CullDistance = v
	}
	if v := getEnvInt("TICK_RATE", 0); v > 0 {
		cfg.TickRate = v
	}

	return cfg
}

// =============================================================================
// COMBAT CONFIGURATION
// =============================================================================

// CombatConfig holds all damage and collision tunables.
// These are engine-authoritative; nothing outside the engine may change them
// mid-session.
type CombatConfig struct {
	// Explosions. The legacy variants disagreed on 50 vs 75; 75 is the
	// authoritative value here, overridable via env for balance testing.
	ExplosionDamage     float64 // Damage at the center of an explosion
	ExplosionRadius     float64 // Linear falloff reaches zero at this radius
	GrenadeDirectDamage float64 // Direct-hit damage for area-effect rounds (0 = explosion only)

	// Contact
	SeparationDistance     float64 // Minimum zombie center-to-center distance
	ContactDamageRadius    float64 // Avatar takes damage inside this radius
	ContactDamagePerSecond float64 // Recurring avatar damage while in contact

	// Pickups
	PickupHitRadius float64 // Projectile-to-pickup hit distance
	PickupLockHP    float64 // Default lock health for spawned pickup groups

	// Dismemberment
	SpeedDamping    float64 // Speed multiplier after losing a limb
	AccuracyDamping float64 // Accuracy multiplier after a ranged zombie loses an eye
	LeftPartBias    float64 // Probability of choosing the left part when both remain
}

// DefaultCombat returns the default combat configuration.
func DefaultCombat() CombatConfig {
	return CombatConfig{
		ExplosionDamage:     75,
		ExplosionRadius:     5.0,
		GrenadeDirectDamage: 0,

		SeparationDistance:     1.5,
		ContactDamageRadius:    1.5,
		ContactDamagePerSecond: 20,

		PickupHitRadius: 1.5,
		PickupLockHP:    300,

		SpeedDamping:    0.65,
		AccuracyDamping: 0.5,
		LeftPartBias:    0.75,
	}
}

// CombatFromEnv returns combat configuration with environment variable overrides.
func CombatFromEnv() CombatConfig {
	cfg := DefaultCombat()

	if v := getEnvFloat("EXPLOSION_DAMAGE", -1); v >= 0 {
		cfg.ExplosionDamage = v
	}
	if v := getEnvFloat("EXPLOSION_RADIUS", 0); v > 0 {
		cfg.ExplosionRadius = v
	}
	if v := getEnvFloat("GRENADE_DIRECT_DAMAGE", -1); v >= 0 {
		cfg.GrenadeDirectDamage = v
	}
	if v := getEnvFloat("CONTACT_DPS", 0); v > 0 {
		cfg.ContactDamagePerSecond = v
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls hard caps on live entity counts. Spawn requests
// beyond a cap are rejected at the registry; the engine never iterates past
// the current live count.
type ResourceLimits struct {
	MaxZombies     int // Hard cap on live zombies
	MaxProjectiles int // Hard cap on live projectiles
	MaxPickups     int // Hard cap on live pickups
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxZombies:     500,
		MaxProjectiles: 100,
		MaxPickups:     24,
	}
}

// LimitsFromEnv returns resource limits with environment variable overrides.
func LimitsFromEnv() ResourceLimits {
	cfg := DefaultLimits()

	if v := getEnvInt("MAX_ZOMBIES", 0); v > 0 {
		cfg.MaxZombies = v
	}
	if v := getEnvInt("MAX_PROJECTILES", 0); v > 0 {
		cfg.MaxProjectiles = v
	}
	if v := getEnvInt("MAX_PICKUPS", 0); v > 0 {
		cfg.MaxPickups = v
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	DatabasePath string
	EventLogPath string
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:         3000,
		DatabasePath: "zombieteam.db",
		EventLogPath: "events.jsonl",
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if db := os.Getenv("DATABASE_PATH"); db != "" {
		cfg.DatabasePath = db
	}
	if el := os.Getenv("EVENT_LOG_PATH"); el != "" {
		cfg.EventLogPath = el
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	World  WorldConfig
	Combat CombatConfig
	Limits ResourceLimits
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		World:  WorldFromEnv(),
		Combat: CombatFromEnv(),
		Limits: LimitsFromEnv(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
