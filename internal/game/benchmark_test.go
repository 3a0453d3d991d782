package game

import (
	"math"
	"math/rand"
	"testing"

	"github.com/a19grey/zombieteam-server/internal/config"
	"github.com/a19grey/zombieteam-server/internal/game/spatial"
)

// =============================================================================
// BENCHMARK SUITE: CRITICAL PATH PERFORMANCE TESTS
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

// -----------------------------------------------------------------------------
// TICK RESOLUTION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkResolveTick_50Zombies(b *testing.B)  { benchmarkResolveTick(b, 50) }
func BenchmarkResolveTick_100Zombies(b *testing.B) { benchmarkResolveTick(b, 100) }
func BenchmarkResolveTick_300Zombies(b *testing.B) { benchmarkResolveTick(b, 300) }
func BenchmarkResolveTick_500Zombies(b *testing.B) { benchmarkResolveTick(b, 500) }

func benchmarkResolveTick(b *testing.B, zombieCount int) {
	cfg := config.AppConfig{
		World:  config.DefaultWorld(),
		Combat: config.DefaultCombat(),
		Limits: config.DefaultLimits(),
	}
	engine := NewEngine(cfg, NopSink{}, 42)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < zombieCount; i++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := 10 + rng.Float64()*80
		engine.SpawnZombie(ZombieWalker, Vec3{X: dist * math.Cos(angle), Z: dist * math.Sin(angle)})
	}

	dt := 1.0 / float64(cfg.World.TickRate)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		engine.ResolveTick(dt)
	}
}

// -----------------------------------------------------------------------------
// SPATIAL GRID BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkGridQuery_500Entities(b *testing.B)  { benchmarkGridQuery(b, 500) }
func BenchmarkGridQuery_2000Entities(b *testing.B) { benchmarkGridQuery(b, 2000) }

func benchmarkGridQuery(b *testing.B, entityCount int) {
	g := spatial.NewGrid(10)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < entityCount; i++ {
		g.Insert(uint64(i), rng.Float64()*200-100, rng.Float64()*200-100)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		g.QueryNeighbors(0, 0, 1)
	}
}

// -----------------------------------------------------------------------------
// COLLISION MATH BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkRaySphereHit(b *testing.B) {
	origin := Vec3{X: 0, Y: 1, Z: 0}
	dir := Vec3{Z: 1}
	center := Vec3{X: 0.3, Y: 1, Z: 40}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		RaySphereHit(origin, dir, 100, center, 1.0)
	}
}

func BenchmarkProduceSnapshot_200Zombies(b *testing.B) {
	cfg := config.AppConfig{
		World:  config.DefaultWorld(),
		Combat: config.DefaultCombat(),
		Limits: config.DefaultLimits(),
	}
	engine := NewEngine(cfg, NopSink{}, 42)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		engine.SpawnZombie(ZombieWalker, Vec3{X: rng.Float64()*100 - 50, Z: rng.Float64()*100 - 50})
	}
	dt := 1.0 / float64(cfg.World.TickRate)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		engine.ResolveTick(dt)
		_ = engine.GetSnapshot()
	}
}
