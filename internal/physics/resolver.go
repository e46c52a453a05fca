package physics

import (
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/particle"
	"github.com/san-kum/particlefx/internal/spatial"
)

// Stats summarises one resolution pass.
type Stats struct {
	Pairs         int `json:"pairs"`
	Collisions    int `json:"collisions"`
	Sparks        int `json:"sparks"`
	MagneticPairs int `json:"magnetic_pairs"`
}

// Add sums o into s.
func (s *Stats) Add(o Stats) {
	s.Pairs += o.Pairs
	s.Collisions += o.Collisions
	s.Sparks += o.Sparks
	s.MagneticPairs += o.MagneticPairs
}

// delta accumulates the contributions of every pair touching one particle.
type delta struct {
	pos   dynamo.Vec3
	vel   dynamo.Vec3
	acc   dynamo.Vec3
	color [3]float64
	spin  float64
}

type Resolver struct {
	Params     Params
	Collisions bool
	Magnetism  bool

	neighbors []int
	deltas    []delta
}

func NewResolver(p Params) *Resolver {
	return &Resolver{Params: p, Collisions: true, Magnetism: true}
}

// Resolve evaluates every neighbour pair in g and applies the accumulated
// position, velocity, acceleration, colour and spin changes to ps. The grid
// must have been rebuilt from ps.
func (r *Resolver) Resolve(ps []particle.Particle, g *spatial.Grid) Stats {
	var st Stats
	if !r.Collisions && !r.Magnetism {
		return st
	}

	if cap(r.deltas) < len(ps) {
		r.deltas = make([]delta, len(ps))
	}
	r.deltas = r.deltas[:len(ps)]
	clear(r.deltas)

	for i := range ps {
		r.neighbors = g.Neighbors(ps, i, r.neighbors[:0])
		for _, j := range r.neighbors {
			if ps[i].ID >= ps[j].ID {
				continue
			}
			st.Pairs++
			a, b := &ps[i], &ps[j]
			da, db := &r.deltas[i], &r.deltas[j]

			if r.Collisions && a.Collides && b.Collides {
				hit, spark := r.collide(a, b, da, db)
				if hit {
					st.Collisions++
				}
				if spark {
					st.Sparks++
				}
			}
			if r.Magnetism && r.magnetize(a, b, da, db) {
				st.MagneticPairs++
			}
		}
	}

	for i := range ps {
		if ps[i].Static {
			continue
		}
		d := &r.deltas[i]
		p := &ps[i]
		p.Position = p.Position.Add(d.pos)
		p.Velocity = p.Velocity.Add(d.vel)
		p.Acceleration = p.Acceleration.Add(d.acc)
		p.RotationSpeed += d.spin
		for c := 0; c < 3; c++ {
			p.Color[c] = clamp01(p.Color[c] + d.color[c])
		}
	}
	return st
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
