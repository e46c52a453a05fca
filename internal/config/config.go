package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
	"github.com/san-kum/particlefx/internal/sim"
)

const (
	DefaultDt        = sim.MaxDt
	DefaultDuration  = 5.0
	DefaultIntensity = 1.0
	DefaultInterval  = 1.5
)

type Config struct {
	Bounds   dynamo.Bounds `yaml:"bounds"`
	Dt       float64       `yaml:"dt"`
	Duration float64       `yaml:"duration"`
	Seed     int64         `yaml:"seed"`

	// Effect, Intensity and Flags describe the burst a plain run or viewer
	// fires; Interval repeats it every so many seconds in the viewers.
	Effect    emitter.Effect `yaml:"effect"`
	Intensity float64        `yaml:"intensity"`
	Flags     emitter.Flags  `yaml:"flags"`
	Interval  float64        `yaml:"interval"`

	Params  sim.Params    `yaml:"params"`
	Effects emitter.Table `yaml:"effects"`
}

// ConfigError names the field that failed validation.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config %s: %v", e.Field, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

func DefaultConfig() *Config {
	return &Config{
		Bounds:    dynamo.DefaultBounds(),
		Dt:        DefaultDt,
		Duration:  DefaultDuration,
		Effect:    emitter.Success,
		Intensity: DefaultIntensity,
		Flags:     emitter.AllInteractions,
		Interval:  DefaultInterval,
		Params:    sim.DefaultParams(),
		Effects:   emitter.DefaultTable(),
	}
}

// Load reads a YAML file over the defaults, so a partial file is valid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Bounds.Validate(); err != nil {
		return &ConfigError{Field: "bounds", Err: err}
	}
	if !(c.Dt > 0) {
		return &ConfigError{Field: "dt", Err: fmt.Errorf("must be positive, got %g", c.Dt)}
	}
	if c.Dt > c.Params.MaxDt {
		return &ConfigError{Field: "dt", Err: fmt.Errorf("%g exceeds max_dt %g", c.Dt, c.Params.MaxDt)}
	}
	if !(c.Duration > 0) {
		return &ConfigError{Field: "duration", Err: fmt.Errorf("must be positive, got %g", c.Duration)}
	}
	if c.Interval < 0 {
		return &ConfigError{Field: "interval", Err: fmt.Errorf("must not be negative, got %g", c.Interval)}
	}
	if !c.Effect.Valid() {
		return &ConfigError{Field: "effect", Err: dynamo.ErrUnknownEffect}
	}
	if err := c.Params.Validate(); err != nil {
		return &ConfigError{Field: "params", Err: err}
	}
	if err := c.Effects.Validate(); err != nil {
		return &ConfigError{Field: "effects", Err: err}
	}
	return nil
}

// NewEngine builds an engine from the config. A zero seed picks a random one.
func (c *Config) NewEngine(opts ...sim.Option) (*sim.Engine, error) {
	base := []sim.Option{sim.WithParams(c.Params), sim.WithTable(c.Effects)}
	if c.Seed != 0 {
		base = append(base, sim.WithSeed(c.Seed))
	}
	return sim.New(c.Bounds, append(base, opts...)...)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
