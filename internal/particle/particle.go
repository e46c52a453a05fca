// Package particle holds the particle record and the store that owns the live
// particle collection.
package particle

import (
	"fmt"

	"github.com/san-kum/particlefx/internal/dynamo"
)

// Particle is a single simulated point entity. Life and MaxLife are measured
// in frame units (one unit per 1/60 s).
type Particle struct {
	ID           uint64
	Position     dynamo.Vec3
	Velocity     dynamo.Vec3
	Acceleration dynamo.Vec3

	Mass   float64
	Radius float64

	Life    float64
	MaxLife float64
	Size    float64
	Color   [4]float64

	Rotation      float64
	RotationSpeed float64

	Elasticity float64
	Friction   float64
	Magnetism  float64
	Charge     float64 // +1 or -1
	Static     bool
	Group      int
	Collides   bool
}

// Validate checks the invariants that must hold for a particle's whole life.
func (p *Particle) Validate() error {
	if !(p.Mass > 0) {
		return fmt.Errorf("particle %d: mass must be positive, got %g", p.ID, p.Mass)
	}
	if !(p.Radius > 0) {
		return fmt.Errorf("particle %d: radius must be positive, got %g", p.ID, p.Radius)
	}
	if !(p.MaxLife > 0) {
		return fmt.Errorf("particle %d: max life must be positive, got %g", p.ID, p.MaxLife)
	}
	if !dynamo.IsFinite(p.Position) || !dynamo.IsFinite(p.Velocity) {
		return fmt.Errorf("particle %d: non-finite kinematics", p.ID)
	}
	return nil
}

// Expired reports whether the particle is due for culling.
func (p *Particle) Expired(minSize float64) bool {
	return p.Life >= p.MaxLife || p.Size < minSize
}

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * p.Velocity.LenSqr()
}

func (p *Particle) Sprite() dynamo.Sprite {
	return dynamo.Sprite{
		ID:       p.ID,
		Position: [3]float64(p.Position),
		Color:    p.Color,
		Size:     p.Size,
		Rotation: p.Rotation,
	}
}
