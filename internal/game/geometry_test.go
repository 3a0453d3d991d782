package game

import (
	"math"
	"testing"
)

func TestRaySphereHit(t *testing.T) {
	t.Run("straight shot through center", func(t *testing.T) {
		origin := Vec3{}
		dir := Vec3{Z: 1}
		center := Vec3{Z: 5}

		point, dist, ok := RaySphereHit(origin, dir, 10, center, 1.5)
		if !ok {
			t.Fatal("expected a hit")
		}
		if math.Abs(dist-3.5) > 1e-9 {
			t.Errorf("expected hit distance 3.5, got %v", dist)
		}
		if math.Abs(point.Z-3.5) > 1e-9 || point.X != 0 || point.Y != 0 {
			t.Errorf("expected hit point (0,0,3.5), got %+v", point)
		}
	})

	t.Run("grazing miss", func(t *testing.T) {
		origin := Vec3{X: 2}
		dir := Vec3{Z: 1}
		center := Vec3{Z: 5}

		if _, _, ok := RaySphereHit(origin, dir, 10, center, 1.5); ok {
			t.Error("ray 2 units off axis should miss a 1.5 radius sphere")
		}
	})

	t.Run("sphere behind ray", func(t *testing.T) {
		origin := Vec3{Z: 10}
		dir := Vec3{Z: 1}
		center := Vec3{Z: 5}

		if _, _, ok := RaySphereHit(origin, dir, 10, center, 1.5); ok {
			t.Error("sphere behind the origin should not hit")
		}
	})

	t.Run("sphere beyond segment length", func(t *testing.T) {
		origin := Vec3{}
		dir := Vec3{Z: 1}
		center := Vec3{Z: 5}

		if _, _, ok := RaySphereHit(origin, dir, 2, center, 1.5); ok {
			t.Error("intersection past the segment end should not count")
		}
	})

	t.Run("origin inside sphere reports exit", func(t *testing.T) {
		origin := Vec3{Z: 5}
		dir := Vec3{Z: 1}
		center := Vec3{Z: 5}

		point, dist, ok := RaySphereHit(origin, dir, 10, center, 1.5)
		if !ok {
			t.Fatal("expected an exit hit from inside the sphere")
		}
		if math.Abs(dist-1.5) > 1e-9 {
			t.Errorf("expected exit at distance 1.5, got %v", dist)
		}
		if math.Abs(point.Z-6.5) > 1e-9 {
			t.Errorf("expected exit point z=6.5, got %v", point.Z)
		}
	})

	t.Run("degenerate inputs never hit", func(t *testing.T) {
		if _, _, ok := RaySphereHit(Vec3{}, Vec3{}, 10, Vec3{Z: 5}, 1.5); ok {
			t.Error("zero direction should not hit")
		}
		if _, _, ok := RaySphereHit(Vec3{}, Vec3{Z: 1}, 10, Vec3{Z: 5}, 0); ok {
			t.Error("zero radius should not hit")
		}
		if _, _, ok := RaySphereHit(Vec3{}, Vec3{Z: 1}, 10, Vec3{Z: 5}, -1); ok {
			t.Error("negative radius should not hit")
		}
		if _, _, ok := RaySphereHit(Vec3{}, Vec3{Z: 1}, 0, Vec3{Z: 5}, 1.5); ok {
			t.Error("zero length should not hit")
		}
	})

	t.Run("fast projectile cannot tunnel", func(t *testing.T) {
		// One tick of travel jumps clear over the sphere; the segment
		// test still catches it.
		origin := Vec3{}
		dir := Vec3{Z: 1}
		center := Vec3{Z: 5}

		if _, _, ok := RaySphereHit(origin, dir, 100, center, 0.5); !ok {
			t.Error("long travel segment should still intersect small sphere")
		}
	})
}

func TestDistanceHit(t *testing.T) {
	a := Vec3{X: 1}
	b := Vec3{X: 2}

	if !DistanceHit(a, b, 1.0) {
		t.Error("distance exactly at threshold should hit")
	}
	if !DistanceHit(a, b, 1.5) {
		t.Error("distance under threshold should hit")
	}
	if DistanceHit(a, b, 0.5) {
		t.Error("distance over threshold should not hit")
	}
	if DistanceHit(a, b, 0) {
		t.Error("zero threshold should never hit")
	}
	if DistanceHit(a, b, -1) {
		t.Error("negative threshold should never hit")
	}
}
