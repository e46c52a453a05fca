package metrics

import (
	"math"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/sim"
)

type PeakPopulation struct {
	peak int
}

func NewPeakPopulation() *PeakPopulation { return &PeakPopulation{} }

func (p *PeakPopulation) Name() string { return "peak_population" }

func (p *PeakPopulation) Observe(info *sim.StepInfo) {
	p.peak = max(p.peak, len(info.Particles))
}

func (p *PeakPopulation) Value() float64 { return float64(p.peak) }
func (p *PeakPopulation) Reset()         { p.peak = 0 }

// PeakSpin tracks the largest |rotation speed| of any particle. Repeated
// sparks add spin without bound, so this is the number to watch.
type PeakSpin struct {
	peak float64
}

func NewPeakSpin() *PeakSpin { return &PeakSpin{} }

func (s *PeakSpin) Name() string { return "peak_spin" }

func (s *PeakSpin) Observe(info *sim.StepInfo) {
	for i := range info.Particles {
		s.peak = math.Max(s.peak, math.Abs(info.Particles[i].RotationSpeed))
	}
}

func (s *PeakSpin) Value() float64 { return s.peak }
func (s *PeakSpin) Reset()         { s.peak = 0 }

// Standard returns the metric set attached to every recorded run.
func Standard(bounds dynamo.Bounds) []sim.Metric {
	return []sim.Metric{
		NewEnergy(),
		NewPeakEnergy(),
		NewPeakPopulation(),
		NewPeakSpin(),
		NewCollisionRate(),
		NewSparks(),
		NewContainment(bounds, 1e-9),
	}
}
