package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/integrators"
	"github.com/san-kum/particlefx/internal/physics"
	"github.com/san-kum/particlefx/internal/spatial"
)

const (
	// MaxDt caps a single tick at roughly one 60 FPS frame.
	MaxDt = 0.016
	// TimeScale converts seconds into the frame units particles age in.
	TimeScale = 60.0
)

// Params bundles every tunable constant of an engine.
type Params struct {
	Physics   physics.Params     `yaml:"physics"`
	Kinematic integrators.Params `yaml:"kinematic"`
	MaxDt     float64            `yaml:"max_dt"`
	TimeScale float64            `yaml:"time_scale"`
	CellSize  float64            `yaml:"cell_size"`
}

func DefaultParams() Params {
	return Params{
		Physics:   physics.DefaultParams(),
		Kinematic: integrators.DefaultParams(),
		MaxDt:     MaxDt,
		TimeScale: TimeScale,
		CellSize:  spatial.DefaultCellSize,
	}
}

type paramSpec struct {
	field func(*Params) *float64
	ok    func(float64) bool
}

func positive(v float64) bool    { return v > 0 }
func nonNegative(v float64) bool { return v >= 0 }
func unit(v float64) bool        { return v >= 0 && v <= 1 }
func factor(v float64) bool      { return v > 0 && v <= 1 }
func unbounded(float64) bool     { return true }

var paramSpecs = map[string]paramSpec{
	"gravity":          {func(p *Params) *float64 { return &p.Kinematic.Gravity }, unbounded},
	"drag":             {func(p *Params) *float64 { return &p.Kinematic.Drag }, factor},
	"angular_damping":  {func(p *Params) *float64 { return &p.Kinematic.AngularDamping }, factor},
	"size_decay":       {func(p *Params) *float64 { return &p.Kinematic.SizeDecay }, factor},
	"min_visible_size": {func(p *Params) *float64 { return &p.Kinematic.MinVisibleSize }, nonNegative},
	"base_alpha":       {func(p *Params) *float64 { return &p.Kinematic.BaseAlpha }, unit},
	"spark_threshold":  {func(p *Params) *float64 { return &p.Physics.SparkThreshold }, nonNegative},
	"color_mix":        {func(p *Params) *float64 { return &p.Physics.ColorMix }, unit},
	"spin_transfer":    {func(p *Params) *float64 { return &p.Physics.SpinTransfer }, unbounded},
	"magnet_radius":    {func(p *Params) *float64 { return &p.Physics.MagnetRadius }, nonNegative},
	"magnet_epsilon":   {func(p *Params) *float64 { return &p.Physics.MagnetEpsilon }, positive},
	"magnet_scale":     {func(p *Params) *float64 { return &p.Physics.MagnetScale }, unbounded},
	"max_dt":           {func(p *Params) *float64 { return &p.MaxDt }, positive},
	"time_scale":       {func(p *Params) *float64 { return &p.TimeScale }, positive},
}

// ParamNames lists the names accepted by Engine.SetParam, sorted.
func ParamNames() []string {
	names := make([]string, 0, len(paramSpecs))
	for n := range paramSpecs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Set assigns one named constant after range-checking it.
func (p *Params) Set(name string, v float64) error {
	spec, ok := paramSpecs[name]
	if !ok {
		return fmt.Errorf("%w: %q", dynamo.ErrUnknownParam, name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || !spec.ok(v) {
		return &dynamo.ParamError{Name: name, Value: v, Wrapped: dynamo.ErrParameterBounds}
	}
	*spec.field(p) = v
	return nil
}

func (p *Params) Get(name string) (float64, bool) {
	spec, ok := paramSpecs[name]
	if !ok {
		return 0, false
	}
	return *spec.field(p), true
}

// Map returns every named constant.
func (p *Params) Map() map[string]float64 {
	out := make(map[string]float64, len(paramSpecs))
	for name, spec := range paramSpecs {
		out[name] = *spec.field(p)
	}
	return out
}

// Validate re-checks every named constant, as after loading from YAML.
func (p *Params) Validate() error {
	for _, name := range ParamNames() {
		v, _ := p.Get(name)
		if err := p.Set(name, v); err != nil {
			return err
		}
	}
	if p.CellSize < 0 {
		return &dynamo.ParamError{Name: "cell_size", Value: p.CellSize, Wrapped: dynamo.ErrParameterBounds}
	}
	return nil
}
