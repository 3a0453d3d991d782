package render

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/fogleman/gg"

	"github.com/a19grey/zombieteam-server/internal/game"
)

// Config holds frame geometry for the overhead view.
type Config struct {
	Width  int
	Height int
	Scale  float64 // Pixels per world unit
}

// DefaultConfig returns 720p at 6 px per world unit.
func DefaultConfig() Config {
	return Config{Width: 1280, Height: 720, Scale: 6.0}
}

var zombieColors = map[string]color.RGBA{
	string(game.ZombieWalker):   {95, 140, 70, 255},
	string(game.ZombieRunner):   {170, 170, 60, 255},
	string(game.ZombieCrawler):  {110, 90, 60, 255},
	string(game.ZombieSpitter):  {80, 160, 130, 255},
	string(game.ZombieExploder): {200, 90, 40, 255},
	string(game.ZombieBrute):    {120, 60, 120, 255},
}

var effectColors = map[string]color.RGBA{
	string(game.EffectRapidFire): {255, 170, 40, 255},
	string(game.EffectShield):    {60, 140, 255, 255},
	string(game.EffectSpeed):     {60, 230, 120, 255},
}

// Renderer draws overhead frames of the world, centered on the avatar. It
// also implements game.RenderSink so it can track which scene nodes exist
// and which parts have been detached, mirroring what the engine announces.
type Renderer struct {
	cfg Config

	mu       sync.Mutex
	nodes    map[string]string   // nodeID -> kind
	detached map[string][]string // owner nodeID -> detached part node IDs
}

// NewRenderer creates a renderer with an empty scene graph.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{
		cfg:      cfg,
		nodes:    make(map[string]string),
		detached: make(map[string][]string),
	}
}

// NodeAdded registers a scene node.
func (r *Renderer) NodeAdded(nodeID, kind string) {
	r.mu.Lock()
	r.nodes[nodeID] = kind
	r.mu.Unlock()
}

// NodeRemoved drops a scene node and any detached parts tracked for it.
func (r *Renderer) NodeRemoved(nodeID string) {
	r.mu.Lock()
	delete(r.nodes, nodeID)
	delete(r.detached, nodeID)
	r.mu.Unlock()
}

// PartDetached records a body part leaving its owner's node tree.
func (r *Renderer) PartDetached(ownerNodeID, partNodeID string, part game.PartName) {
	r.mu.Lock()
	r.detached[ownerNodeID] = append(r.detached[ownerNodeID], partNodeID)
	r.mu.Unlock()
}

// NodeCount returns how many scene nodes are currently tracked.
func (r *Renderer) NodeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// RenderFrame draws the snapshot into a PNG.
func (r *Renderer) RenderFrame(snap *game.WorldSnapshot) ([]byte, error) {
	dc := gg.NewContext(r.cfg.Width, r.cfg.Height)

	r.drawBackground(dc)
	r.drawGrid(dc)

	cx := float64(r.cfg.Width) / 2
	cy := float64(r.cfg.Height) / 2
	toScreen := func(x, z float64) (float64, float64) {
		return cx + (x-snap.Avatar.X)*r.cfg.Scale, cy + (z-snap.Avatar.Z)*r.cfg.Scale
	}

	for _, pk := range snap.Pickups {
		r.drawPickup(dc, pk, toScreen)
	}
	for i := range snap.Zombies {
		r.drawZombie(dc, &snap.Zombies[i], toScreen)
	}
	for _, p := range snap.Projectiles {
		r.drawProjectile(dc, p, toScreen)
	}
	r.drawAvatar(dc, snap.Avatar, cx, cy)
	r.drawHUD(dc, snap)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawBackground(dc *gg.Context) {
	dc.SetColor(color.RGBA{18, 22, 16, 255})
	dc.DrawRectangle(0, 0, float64(r.cfg.Width), float64(r.cfg.Height))
	dc.Fill()
}

func (r *Renderer) drawGrid(dc *gg.Context) {
	dc.SetColor(color.RGBA{32, 38, 30, 255})
	dc.SetLineWidth(1)

	spacing := 10.0 * r.cfg.Scale
	for x := 0.0; x < float64(r.cfg.Width); x += spacing {
		dc.DrawLine(x, 0, x, float64(r.cfg.Height))
		dc.Stroke()
	}
	for y := 0.0; y < float64(r.cfg.Height); y += spacing {
		dc.DrawLine(0, y, float64(r.cfg.Width), y)
		dc.Stroke()
	}
}

func (r *Renderer) drawZombie(dc *gg.Context, z *game.ZombieSnapshot, toScreen func(x, z float64) (float64, float64)) {
	x, y := toScreen(z.X, z.Z)
	radius := z.Radius * r.cfg.Scale

	c, ok := zombieColors[z.Type]
	if !ok {
		c = color.RGBA{95, 140, 70, 255}
	}

	// Shadow
	dc.SetColor(color.RGBA{0, 0, 0, 100})
	dc.DrawCircle(x, y+2, radius)
	dc.Fill()

	dc.SetColor(c)
	dc.DrawCircle(x, y, radius)
	dc.Fill()

	// Headless zombies get a hollow ring instead of a solid border
	if z.Erratic {
		dc.SetColor(color.RGBA{220, 40, 40, 255})
	} else {
		dc.SetColor(color.RGBA{0, 0, 0, 180})
	}
	dc.SetLineWidth(2)
	dc.DrawCircle(x, y, radius)
	dc.Stroke()

	// Health bar above, only when damaged
	if z.Health < z.MaxHealth {
		barW := radius * 2
		pct := z.Health / z.MaxHealth
		dc.SetColor(color.RGBA{0, 0, 0, 160})
		dc.DrawRectangle(x-barW/2, y-radius-7, barW, 4)
		dc.Fill()
		dc.SetColor(color.RGBA{200, 50, 50, 255})
		dc.DrawRectangle(x-barW/2, y-radius-7, barW*pct, 4)
		dc.Fill()
	}

	// Lost parts as small notches on the rim
	for i := range z.LostParts {
		dc.SetColor(color.RGBA{160, 20, 20, 255})
		dc.DrawCircle(x-radius+float64(i)*5, y+radius+4, 2)
		dc.Fill()
	}
}

func (r *Renderer) drawProjectile(dc *gg.Context, p game.ProjectileSnapshot, toScreen func(x, z float64) (float64, float64)) {
	x, y := toScreen(p.X, p.Z)

	if p.AreaEffect {
		dc.SetColor(color.RGBA{230, 140, 40, 255})
		dc.DrawCircle(x, y, 4)
	} else {
		dc.SetColor(color.RGBA{250, 240, 180, 255})
		dc.DrawCircle(x, y, 2)
	}
	dc.Fill()
}

func (r *Renderer) drawPickup(dc *gg.Context, pk game.PickupSnapshot, toScreen func(x, z float64) (float64, float64)) {
	x, y := toScreen(pk.X, pk.Z)

	c, ok := effectColors[pk.Effect]
	if !ok {
		c = color.RGBA{200, 200, 200, 255}
	}

	dc.SetColor(c)
	dc.DrawRectangle(x-5, y-5, 10, 10)
	dc.Fill()

	// Lock integrity ring
	if pk.MaxLockHealth > 0 {
		pct := pk.LockHealth / pk.MaxLockHealth
		dc.SetColor(color.RGBA{255, 255, 255, 200})
		dc.SetLineWidth(2)
		dc.DrawArc(x, y, 9, 0, 2*3.141592653589793*pct)
		dc.Stroke()
	}
}

func (r *Renderer) drawAvatar(dc *gg.Context, av game.AvatarSnapshot, x, y float64) {
	radius := 1.0 * r.cfg.Scale

	dc.SetColor(color.RGBA{0, 0, 0, 120})
	dc.DrawCircle(x, y+2, radius)
	dc.Fill()

	dc.SetColor(color.RGBA{70, 130, 220, 255})
	dc.DrawCircle(x, y, radius)
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetLineWidth(2)
	dc.DrawCircle(x, y, radius)
	dc.Stroke()

	// Active effect halo
	if c, ok := effectColors[av.Effect]; ok {
		dc.SetColor(color.RGBA{c.R, c.G, c.B, 110})
		dc.SetLineWidth(3)
		dc.DrawCircle(x, y, radius+5)
		dc.Stroke()
	}
}

func (r *Renderer) drawHUD(dc *gg.Context, snap *game.WorldSnapshot) {
	dc.SetColor(color.White)
	dc.DrawString(fmt.Sprintf("HP %.0f/%.0f", snap.Avatar.Health, snap.Avatar.MaxHealth), 16, 24)
	dc.DrawString(fmt.Sprintf("Score %d  Kills %d", snap.TotalScore, snap.TotalKills), 16, 42)
	dc.DrawString(fmt.Sprintf("Zombies %d  Tick %d", snap.ZombieCount, snap.TickNumber), 16, 60)

	if snap.Avatar.Effect != "" {
		dc.DrawString(fmt.Sprintf("%s %.1fs", snap.Avatar.Effect, snap.Avatar.EffectTimeLeft), 16, 78)
	}
}
