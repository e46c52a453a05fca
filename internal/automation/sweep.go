package automation

import (
	"context"
	"fmt"
	"io"

	"github.com/san-kum/particlefx/internal/config"
	"github.com/san-kum/particlefx/internal/metrics"
	"github.com/san-kum/particlefx/internal/sim"
)

// ParameterSweep replays the configured burst across a range of one tunable.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue     float64
	PeakPopulation int
	MeanEnergy     float64
	Collisions     float64
	PeakSpin       float64
}

// RunSweep runs one seeded burst per parameter value so that only the swept
// value differs between runs.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config, w io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	cfg := base.Clone()
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		eng, err := cfg.NewEngine()
		if err != nil {
			return nil, err
		}
		if err := eng.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		energy, spin := metrics.NewEnergy(), metrics.NewPeakSpin()
		rate := metrics.NewCollisionRate()
		eng.AddMetric(energy)
		eng.AddMetric(spin)
		eng.AddMetric(rate)
		eng.Trigger(cfg.Effect, cfg.Intensity, cfg.Flags)

		result, err := eng.Run(ctx, sim.RunConfig{Dt: cfg.Dt, Duration: cfg.Duration})
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue:     paramVal,
			PeakPopulation: result.Peak,
			MeanEnergy:     energy.Value(),
			Collisions:     rate.Value(),
			PeakSpin:       spin.Value(),
		})

		fmt.Fprintf(w, "Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
