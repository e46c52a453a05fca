package physics

import (
	"math"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/particle"
)

// collide resolves overlap between a and b. a and b are read only; all
// changes go to da and db. Static particles receive nothing.
func (r *Resolver) collide(a, b *particle.Particle, da, db *delta) (hit, spark bool) {
	offset := b.Position.Sub(a.Position)
	dist := offset.Len()
	minDist := a.Radius + b.Radius
	if dist >= minDist || dist == 0 {
		return false, false
	}

	normal := dynamo.Normalize(offset)
	separation := (minDist - dist) * 0.5
	if !a.Static {
		da.pos = da.pos.Sub(normal.Mul(separation))
	}
	if !b.Static {
		db.pos = db.pos.Add(normal.Mul(separation))
	}

	// Velocity of b relative to a; positive along the normal means separating.
	relVel := b.Velocity.Sub(a.Velocity)
	velAlongNormal := relVel.Dot(normal)
	if velAlongNormal >= 0 {
		return true, false
	}

	invMass := inverseMass(a) + inverseMass(b)
	if invMass == 0 {
		return true, false
	}
	restitution := math.Min(a.Elasticity, b.Elasticity)
	impulse := -(1 + restitution) * velAlongNormal / invMass
	impulseVec := normal.Mul(impulse)

	// Friction drags a along b's tangential motion and b the opposite way.
	tangent := dynamo.Normalize(relVel.Sub(normal.Mul(velAlongNormal)))
	frictionVec := tangent.Mul(math.Abs(impulse) * math.Min(a.Friction, b.Friction))

	if !a.Static {
		da.vel = da.vel.Sub(impulseVec.Mul(1 / a.Mass)).Add(frictionVec.Mul(1 / a.Mass))
	}
	if !b.Static {
		db.vel = db.vel.Add(impulseVec.Mul(1 / b.Mass)).Sub(frictionVec.Mul(1 / b.Mass))
	}

	if math.Abs(impulse) <= r.Params.SparkThreshold {
		return true, false
	}

	mix := r.Params.ColorMix
	for c := 0; c < 3; c++ {
		diff := b.Color[c] - a.Color[c]
		if !a.Static {
			da.color[c] += diff * mix
		}
		if !b.Static {
			db.color[c] -= diff * mix
		}
	}
	// Spin is not clamped; only the integrator's angular damping bounds it.
	if !a.Static {
		da.spin += impulse * r.Params.SpinTransfer
	}
	if !b.Static {
		db.spin += impulse * r.Params.SpinTransfer
	}
	return true, true
}

// Static particles take part in collisions with infinite mass.
func inverseMass(p *particle.Particle) float64 {
	if p.Static {
		return 0
	}
	return 1 / p.Mass
}
