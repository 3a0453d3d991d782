package game

import "fmt"

// Dismemberment: each zombie accumulates a monotone damage counter; fixed
// percentage thresholds of the max health snapshotted at spawn each fire
// once, tearing off one not-yet-lost part of the threshold's kind. Part
// selection rolls the engine's seeded RNG so replays are reproducible.

// Rand is the injectable random source for part selection. *math/rand.Rand
// satisfies it; tests pass a seeded instance for deterministic rolls.
type Rand interface {
	Float64() float64
}

// PartName identifies a detachable sub-part.
type PartName string

const (
	PartLeftEye  PartName = "left_eye"
	PartRightEye PartName = "right_eye"
	PartLeftArm  PartName = "left_arm"
	PartRightArm PartName = "right_arm"
	PartHead     PartName = "head"
)

// PartKind groups parts by the gameplay modifier their loss applies.
type PartKind int

const (
	KindSensory PartKind = iota // Accuracy damping for ranged zombies
	KindLimb                    // Speed damping
	KindHead                    // Erratic movement flag
)

// Part is a named sub-part with a one-way lost flag and an opaque render
// sub-node handle the core never interprets.
type Part struct {
	Name   PartName
	Kind   PartKind
	NodeID string
	Lost   bool
}

// threshold fires once when cumulative damage crosses Percent of the
// zombie's max health at creation.
type threshold struct {
	Percent float64
	Kind    PartKind
}

// dismemberThresholds is the fixed ordered table: eye at 3%, first arm at
// 10%, second arm at 15%, head at 30%.
var dismemberThresholds = [...]threshold{
	{Percent: 3, Kind: KindSensory},
	{Percent: 10, Kind: KindLimb},
	{Percent: 15, Kind: KindLimb},
	{Percent: 30, Kind: KindHead},
}

// DismemberState holds a zombie's cumulative damage counter and part set.
type DismemberState struct {
	DamageTaken float64 // Monotonically non-decreasing
	MaxHealth   float64 // Snapshot at creation; percent base
	Parts       []Part
	fired       [len(dismemberThresholds)]bool
}

// NewDismemberState builds the part set for a zombie. nodePrefix scopes the
// render sub-node handles to the owning entity.
func NewDismemberState(maxHealth float64, nodePrefix string) DismemberState {
	parts := []Part{
		{Name: PartLeftEye, Kind: KindSensory},
		{Name: PartRightEye, Kind: KindSensory},
		{Name: PartLeftArm, Kind: KindLimb},
		{Name: PartRightArm, Kind: KindLimb},
		{Name: PartHead, Kind: KindHead},
	}
	for i := range parts {
		parts[i].NodeID = fmt.Sprintf("%s/%s", nodePrefix, parts[i].Name)
	}
	return DismemberState{
		MaxHealth: maxHealth,
		Parts:     parts,
	}
}

// Percent returns cumulative damage as a percentage of max health.
func (s *DismemberState) Percent() float64 {
	if s.MaxHealth <= 0 {
		return 0
	}
	return s.DamageTaken / s.MaxHealth * 100
}

// Advance adds incoming damage and fires any newly crossed thresholds.
// Each threshold fires at most once; a threshold whose kind has no
// remaining part is consumed as a no-op. Returns the parts lost by this
// call, in threshold order.
func (s *DismemberState) Advance(damage float64, rng Rand, leftBias float64) []*Part {
	if damage <= 0 {
		return nil
	}
	s.DamageTaken += damage
	percent := s.Percent()

	var lost []*Part
	for i := range dismemberThresholds {
		th := dismemberThresholds[i]
		if s.fired[i] || percent < th.Percent {
			continue
		}
		s.fired[i] = true

		part := s.selectPart(th.Kind, rng, leftBias)
		if part == nil {
			continue // Kind exhausted; re-crossing is a no-op
		}
		part.Lost = true
		lost = append(lost, part)
	}
	return lost
}

// selectPart picks a not-yet-lost part of the given kind. When both a left
// and right part remain, the left one is chosen with probability leftBias.
func (s *DismemberState) selectPart(kind PartKind, rng Rand, leftBias float64) *Part {
	var candidates []*Part
	for i := range s.Parts {
		p := &s.Parts[i]
		if p.Kind == kind && !p.Lost {
			candidates = append(candidates, p)
		}
	}

	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return candidates[0]
	}

	// Candidates are in left-before-right declaration order.
	if rng.Float64() < leftBias {
		return candidates[0]
	}
	return candidates[1]
}

// LostParts returns the names of all parts lost so far.
func (s *DismemberState) LostParts() []PartName {
	var names []PartName
	for i := range s.Parts {
		if s.Parts[i].Lost {
			names = append(names, s.Parts[i].Name)
		}
	}
	return names
}

// ApplyPartLoss applies the gameplay modifier for a lost part: limbs damp
// speed, eyes damp a ranged zombie's accuracy, head loss flips the erratic
// flag read by the movement system.
func (z *Zombie) ApplyPartLoss(part *Part, speedDamping, accuracyDamping float64) {
	switch part.Kind {
	case KindLimb:
		z.Speed *= speedDamping
	case KindSensory:
		z.Accuracy *= accuracyDamping
	case KindHead:
		z.Erratic = true
	}
}
