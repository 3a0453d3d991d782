package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/a19grey/zombieteam-server/internal/game"
)

func TestRenderFrame(t *testing.T) {
	r := NewRenderer(Config{Width: 320, Height: 180, Scale: 4})

	snap := &game.WorldSnapshot{
		Sequence:   1,
		TickNumber: 42,
		Zombies: []game.ZombieSnapshot{
			{ID: 1, NodeID: "zombie/1", Type: "walker", X: 5, Z: 5, Health: 60, MaxHealth: 100, Radius: 1.0},
			{ID: 2, NodeID: "zombie/2", Type: "brute", X: -8, Z: 3, Health: 300, MaxHealth: 300, Radius: 1.6, Erratic: true},
		},
		Projectiles: []game.ProjectileSnapshot{
			{ID: 1, NodeID: "projectile/1", X: 2, Z: 2},
			{ID: 2, NodeID: "projectile/2", X: -1, Z: 4, AreaEffect: true},
		},
		Pickups: []game.PickupSnapshot{
			{ID: 1, NodeID: "pickup/1", Effect: "shield", X: 10, Z: -10, LockHealth: 150, MaxLockHealth: 300},
		},
		Avatar:      game.AvatarSnapshot{Health: 75, MaxHealth: 100, Effect: "shield", EffectTimeLeft: 4},
		ZombieCount: 2,
	}

	data, err := r.RenderFrame(snap)
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty PNG")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 320 || bounds.Dy() != 180 {
		t.Errorf("expected 320x180 frame, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderEmptyWorld(t *testing.T) {
	r := NewRenderer(DefaultConfig())

	data, err := r.RenderFrame(&game.WorldSnapshot{Avatar: game.AvatarSnapshot{Health: 100, MaxHealth: 100}})
	if err != nil {
		t.Fatalf("RenderFrame on empty world failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty PNG")
	}
}

func TestSceneTracking(t *testing.T) {
	r := NewRenderer(DefaultConfig())

	r.NodeAdded("zombie/1", "zombie")
	r.NodeAdded("zombie/2", "zombie")
	r.NodeAdded("projectile/1", "projectile")
	if r.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", r.NodeCount())
	}

	r.PartDetached("zombie/1", "zombie/1/part/left_arm", game.PartLeftArm)
	r.NodeRemoved("projectile/1")
	if r.NodeCount() != 2 {
		t.Errorf("expected 2 nodes after removal, got %d", r.NodeCount())
	}

	// Removing a node clears its detached parts too.
	r.NodeRemoved("zombie/1")
	if r.NodeCount() != 1 {
		t.Errorf("expected 1 node, got %d", r.NodeCount())
	}
}
