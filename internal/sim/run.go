package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/particlefx/internal/dynamo"
)

// Run advances the engine with a fixed step for cfg.Duration seconds and
// records population and kinetic energy after every tick.
func (e *Engine) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	steps, err := stepCount(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Dt > e.params.MaxDt {
		return nil, fmt.Errorf("dt %g exceeds max_dt %g", cfg.Dt, e.params.MaxDt)
	}

	result := &Result{
		Times:      make([]float64, 0, steps),
		Population: make([]int, 0, steps),
		Energy:     make([]float64, 0, steps),
		Metrics:    make(map[string]float64),
	}
	e.ResetMetrics()

	err = e.RunWithCallback(ctx, cfg, func(info *StepInfo, snap dynamo.Snapshot) bool {
		energy := 0.0
		for i := range info.Particles {
			energy += info.Particles[i].KineticEnergy()
		}
		result.Times = append(result.Times, info.Time)
		result.Population = append(result.Population, len(snap))
		result.Energy = append(result.Energy, energy)
		if cfg.KeepFrames {
			result.Frames = append(result.Frames, snap)
		}
		result.Peak = max(result.Peak, len(snap))
		result.Interactions.Add(info.Stats)
		result.StepsTaken++
		return true
	})

	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

// RunWithCallback ticks until cfg.Duration has elapsed, the context is
// cancelled or fn returns false.
func (e *Engine) RunWithCallback(ctx context.Context, cfg RunConfig, fn func(info *StepInfo, snap dynamo.Snapshot) bool) error {
	steps, err := stepCount(cfg)
	if err != nil {
		return err
	}

	var last *StepInfo
	capture := ObserverFunc(func(info *StepInfo, _ dynamo.Snapshot) { last = info })
	e.observers = append(e.observers, capture)
	defer func() { e.observers = e.observers[:len(e.observers)-1] }()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		// Advance would clamp the step and the clock would fall behind Duration.
		if cfg.Dt > e.params.MaxDt {
			return fmt.Errorf("dt %g exceeds max_dt %g", cfg.Dt, e.params.MaxDt)
		}

		snap := e.Advance(cfg.Dt)
		if !fn(last, snap) {
			return nil
		}
	}
	return nil
}

func stepCount(cfg RunConfig) (int, error) {
	if !(cfg.Dt > 0) {
		return 0, fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return 0, fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return int(math.Round(cfg.Duration / cfg.Dt)), nil
}
