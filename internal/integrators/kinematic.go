package integrators

import (
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/particle"
)

// Params are the per-tick kinematic constants. Times are in frame units, so
// Gravity is an acceleration per frame squared and the factors apply once per
// tick regardless of its length.
type Params struct {
	Gravity        float64 `yaml:"gravity"`
	Drag           float64 `yaml:"drag"`
	AngularDamping float64 `yaml:"angular_damping"`
	SizeDecay      float64 `yaml:"size_decay"`
	MinVisibleSize float64 `yaml:"min_visible_size"`
	BaseAlpha      float64 `yaml:"base_alpha"`
}

func DefaultParams() Params {
	return Params{
		Gravity:        -0.002,
		Drag:           0.99,
		AngularDamping: 0.98,
		SizeDecay:      0.999,
		MinVisibleSize: 0.5,
		BaseAlpha:      0.8,
	}
}

// Kinematic is a semi-implicit Euler integrator for particles inside an
// axis-aligned box.
type Kinematic struct {
	Params Params
	Bounds dynamo.Bounds
}

func NewKinematic(bounds dynamo.Bounds, p Params) *Kinematic {
	return &Kinematic{Params: p, Bounds: bounds}
}

// Step advances every particle in s by dt frame units, then culls the expired
// ones. It returns the number culled.
func (k *Kinematic) Step(s *particle.Store, dt float64) int {
	if !(dt > 0) {
		dt = 0
	}
	ps := s.Items()
	for i := range ps {
		k.advance(&ps[i], dt)
	}
	minSize := k.Params.MinVisibleSize
	return s.Compact(func(p *particle.Particle) bool { return !p.Expired(minSize) })
}

func (k *Kinematic) advance(p *particle.Particle, dt float64) {
	// Static particles ignore forces but still drift with their own velocity.
	if !p.Static {
		p.Acceleration[1] += k.Params.Gravity
		p.Velocity = p.Velocity.Add(p.Acceleration.Mul(dt))
	}
	p.Velocity = p.Velocity.Mul(k.Params.Drag)
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
	k.reflect(p)

	p.Rotation += p.RotationSpeed * dt
	p.RotationSpeed *= k.Params.AngularDamping

	p.Life += dt
	alpha := (1 - p.Life/p.MaxLife) * k.Params.BaseAlpha
	if alpha < 0 {
		alpha = 0
	}
	p.Color[3] = alpha
	p.Size *= k.Params.SizeDecay
}

// reflect clamps p inside the box and bounces outward velocity components,
// losing energy according to the particle's elasticity. A component already
// heading back inside is left as is rather than negated, so a particle pushed
// past a wall by a collision is not flung back out.
func (k *Kinematic) reflect(p *particle.Particle) {
	for axis := 0; axis < 3; axis++ {
		lo := k.Bounds.Min[axis] + p.Radius
		hi := k.Bounds.Max[axis] - p.Radius
		switch {
		case p.Position[axis] < lo:
			p.Position[axis] = lo
			if p.Velocity[axis] < 0 {
				p.Velocity[axis] = -p.Velocity[axis] * p.Elasticity
			}
		case p.Position[axis] > hi:
			p.Position[axis] = hi
			if p.Velocity[axis] > 0 {
				p.Velocity[axis] = -p.Velocity[axis] * p.Elasticity
			}
		}
	}
}
