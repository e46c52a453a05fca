package emitter

import (
	"math"
	"math/rand"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/particle"
)

// MaxBurst caps the particles a single trigger may produce.
const MaxBurst = 5000

// Emitter spawns particles from a Table. It draws all randomness from the
// injected source, so equal seeds reproduce equal bursts.
type Emitter struct {
	table Table
	rng   *rand.Rand
}

func New(table Table, rng *rand.Rand) *Emitter {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Emitter{table: table, rng: rng}
}

func (e *Emitter) Table() Table { return e.table }

// Count is the number of particles Spawn produces for effect at intensity:
// round(count x intensity), zero for non-positive intensity or unknown effects.
// The result scales linearly with intensity until it reaches MaxBurst and
// stays at MaxBurst beyond that.
func (e *Emitter) Count(effect Effect, intensity float64) int {
	p, ok := e.table.Get(effect)
	if !ok || !(intensity > 0) {
		return 0
	}
	n := math.Round(float64(p.Count) * intensity)
	if n > MaxBurst {
		return MaxBurst
	}
	return int(n)
}

// Spawn builds a burst around origin. Ids come from nextID in order. It never
// touches existing particles.
func (e *Emitter) Spawn(effect Effect, intensity float64, origin dynamo.Vec3, flags Flags, nextID func() uint64) []particle.Particle {
	n := e.Count(effect, intensity)
	if n == 0 {
		return nil
	}
	cfg, _ := e.table.Get(effect)
	out := make([]particle.Particle, n)
	for i := range out {
		out[i] = e.spawnOne(cfg, i, n, origin, flags, nextID())
	}
	return out
}

func (e *Emitter) spawnOne(cfg Params, i, n int, origin dynamo.Vec3, flags Flags, id uint64) particle.Particle {
	r := e.rng.Float64
	angle := 2 * math.Pi * float64(i) / float64(n)
	ring := r() * cfg.Spread
	height := (r() - 0.5) * 0.3

	p := particle.Particle{
		ID: id,
		Position: origin.Add(dynamo.Vec3{
			math.Cos(angle) * ring * 0.3,
			math.Sin(angle)*ring*0.3 + height,
			(r() - 0.5) * 0.4,
		}),
		Velocity: dynamo.Vec3{
			(r() - 0.5) * cfg.Speed,
			r() * cfg.Speed * 0.5,
			(r() - 0.5) * cfg.Speed * 0.3,
		},
		Mass:    cfg.Mass + r()*0.5,
		Radius:  cfg.Size/100 + r()*0.02,
		MaxLife: cfg.Life + r()*50,
		Size:    cfg.Size + r()*4,
		Color: [4]float64{
			clamp01(cfg.Color[0] + (r()-0.5)*0.2),
			clamp01(cfg.Color[1] + (r()-0.5)*0.2),
			clamp01(cfg.Color[2] + (r()-0.5)*0.2),
			cfg.Color[3],
		},
		Rotation:      r() * 2 * math.Pi,
		RotationSpeed: (r() - 0.5) * 0.05,
		Elasticity:    clamp01(cfg.Elasticity + (r()-0.5)*0.2),
		Friction:      cfg.Friction,
		Charge:        cfg.Charge,
		Group:         cfg.Group,
		Collides:      flags.Collisions,
	}
	if flags.Magnetism {
		p.Magnetism = cfg.Magnetism
	}
	return p
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
