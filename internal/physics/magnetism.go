package physics

import (
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/particle"
)

// magnetize adds the magnetic acceleration between a and b. Only particles of
// the same group interact. Opposite charges attract, like charges repel.
func (r *Resolver) magnetize(a, b *particle.Particle, da, db *delta) bool {
	if a.Group != b.Group {
		return false
	}

	offset := b.Position.Sub(a.Position)
	dist := offset.Len()
	if dist == 0 || dist > r.Params.MagnetRadius {
		return false
	}

	dir := dynamo.Normalize(offset)
	magnitude := (a.Magnetism * b.Magnetism) / (dist*dist + r.Params.MagnetEpsilon)
	sign := -1.0
	if a.Charge*b.Charge < 0 {
		sign = 1
	}
	force := dir.Mul(magnitude * sign * r.Params.MagnetScale)

	if !a.Static {
		da.acc = da.acc.Add(force.Mul(1 / a.Mass))
	}
	if !b.Static {
		db.acc = db.acc.Sub(force.Mul(1 / b.Mass))
	}
	return true
}
