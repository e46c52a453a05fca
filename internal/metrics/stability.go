package metrics

import (
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/sim"
)

// Containment is the fraction of ticks in which every particle sat inside
// the volume, shrunk by its radius.
type Containment struct {
	name       string
	bounds     dynamo.Bounds
	tolerance  float64
	violations int
	samples    int
}

func NewContainment(bounds dynamo.Bounds, tolerance float64) *Containment {
	return &Containment{
		name:      "containment",
		bounds:    bounds,
		tolerance: tolerance,
	}
}

func (s *Containment) Name() string {
	return s.name
}

func (s *Containment) Observe(info *sim.StepInfo) {
	s.samples++
	for i := range info.Particles {
		p := &info.Particles[i]
		if !s.bounds.Contains(p.Position, p.Radius, s.tolerance) {
			s.violations++
			break
		}
	}
}

func (s *Containment) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Containment) Reset() {
	s.violations = 0
	s.samples = 0
}
