package game

import (
	"math"
	"testing"
)

func TestProjectileStep(t *testing.T) {
	p := &Projectile{
		Pos:      Vec3{},
		Prev:     Vec3{},
		Dir:      Vec3{Z: 1},
		Speed:    60,
		MaxRange: 150,
	}

	p.Step(1.0 / 30)

	if math.Abs(p.Pos.Z-2.0) > 1e-9 {
		t.Errorf("expected z=2 after one tick at 60 u/s, got %v", p.Pos.Z)
	}
	if p.Prev.Z != 0 {
		t.Errorf("previous position should be the pre-step position, got %v", p.Prev.Z)
	}
	if p.Expired {
		t.Error("projectile expired far short of max range")
	}

	origin, dir, length := p.Ray()
	if origin.Z != 0 || dir.Z != 1 || math.Abs(length-2.0) > 1e-9 {
		t.Errorf("ray = (%v, %v, %v), want origin 0, dir +z, length 2", origin, dir, length)
	}
}

func TestProjectileExpiry(t *testing.T) {
	p := &Projectile{Dir: Vec3{Z: 1}, Speed: 60, MaxRange: 5}

	p.Step(1.0) // 60 units in one step

	if !p.Expired {
		t.Error("projectile past max range should be expired")
	}
	if p.Live() {
		t.Error("expired projectile must not be live")
	}
}

func TestProjectileZeroLengthRay(t *testing.T) {
	p := &Projectile{Pos: Vec3{X: 3}, Prev: Vec3{X: 3}}

	_, _, length := p.Ray()
	if length != 0 {
		t.Errorf("unmoved projectile should yield zero-length ray, got %v", length)
	}
}

func TestProjectileConsumedNotLive(t *testing.T) {
	p := &Projectile{}
	if !p.Live() {
		t.Error("fresh projectile should be live")
	}
	p.Consumed = true
	if p.Live() {
		t.Error("consumed projectile must not be live")
	}
}
