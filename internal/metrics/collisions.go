package metrics

import "github.com/san-kum/particlefx/internal/sim"

// CollisionRate is the mean number of resolved collisions per tick.
type CollisionRate struct {
	name    string
	sum     int
	samples int
}

func NewCollisionRate() *CollisionRate {
	return &CollisionRate{name: "collision_rate"}
}

func (c *CollisionRate) Name() string {
	return c.name
}

func (c *CollisionRate) Observe(info *sim.StepInfo) {
	c.sum += info.Stats.Collisions
	c.samples++
}

func (c *CollisionRate) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *CollisionRate) Reset() {
	c.sum = 0
	c.samples = 0
}

// Sparks counts collisions hard enough to blend colours.
type Sparks struct {
	total int
}

func NewSparks() *Sparks { return &Sparks{} }

func (s *Sparks) Name() string               { return "sparks" }
func (s *Sparks) Observe(info *sim.StepInfo) { s.total += info.Stats.Sparks }
func (s *Sparks) Value() float64             { return float64(s.total) }
func (s *Sparks) Reset()                     { s.total = 0 }
