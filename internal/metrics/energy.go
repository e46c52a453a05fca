// Package metrics implements sim.Metric observers over the live particles.
package metrics

import (
	"math"

	"github.com/san-kum/particlefx/internal/sim"
)

// Energy is the mean total kinetic energy per tick.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(info *sim.StepInfo) {
	e.totalEnergy += kinetic(info)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// PeakEnergy is the highest total kinetic energy seen in one tick.
type PeakEnergy struct {
	name string
	peak float64
}

func NewPeakEnergy() *PeakEnergy {
	return &PeakEnergy{name: "peak_energy"}
}

func (e *PeakEnergy) Name() string { return e.name }

func (e *PeakEnergy) Observe(info *sim.StepInfo) {
	e.peak = math.Max(e.peak, kinetic(info))
}

func (e *PeakEnergy) Value() float64 { return e.peak }

func (e *PeakEnergy) Reset() { e.peak = 0 }

func kinetic(info *sim.StepInfo) float64 {
	sum := 0.0
	for i := range info.Particles {
		sum += info.Particles[i].KineticEnergy()
	}
	return sum
}
