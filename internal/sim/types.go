package sim

import (
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/particle"
	"github.com/san-kum/particlefx/internal/physics"
)

// State is the coarse lifecycle of an engine.
type State int

const (
	// Idle means no live particles and nothing queued.
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// StepInfo describes a completed tick. Particles aliases the engine's store
// and is only valid until the next call into the engine.
type StepInfo struct {
	Tick      int
	Time      float64
	Dt        float64
	Particles []particle.Particle
	Stats     physics.Stats
	Spawned   int
	Culled    int
}

type Metric interface {
	Name() string
	Observe(info *StepInfo)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(info *StepInfo, snap dynamo.Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(info *StepInfo, snap dynamo.Snapshot)

func (f ObserverFunc) OnStep(info *StepInfo, snap dynamo.Snapshot) { f(info, snap) }

// RunConfig drives a headless fixed-step run.
type RunConfig struct {
	Dt       float64
	Duration float64
	// KeepFrames records every snapshot in the result.
	KeepFrames bool
}

type Result struct {
	Times      []float64
	Population []int
	Energy     []float64
	Frames     []dynamo.Snapshot
	Metrics    map[string]float64
	StepsTaken int
	Peak       int

	// Interactions totals the resolver's counters over every tick.
	Interactions physics.Stats
}
