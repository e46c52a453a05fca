package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
)

// Presets are named adjustments applied on top of DefaultConfig.
var Presets = map[string]func(c *Config){
	"default": func(c *Config) {},
	"calm": func(c *Config) {
		c.Effect = emitter.Hover
		c.Flags = emitter.Flags{}
		c.Interval = 0.8
	},
	"storm": func(c *Config) {
		c.Effect = emitter.Success
		c.Intensity = 3
		c.Interval = 0.5
		c.Duration = 10
	},
	"zero-g": func(c *Config) {
		c.Effect = emitter.Navigation
		c.Params.Kinematic.Gravity = 0
		c.Flags = emitter.Flags{Magnetism: true}
	},
	"sparkle": func(c *Config) {
		c.Effect = emitter.Click
		c.Intensity = 2
		c.Params.Physics.SparkThreshold = 0.005
		c.Params.Physics.ColorMix = 0.3
	},
	"bouncy": func(c *Config) {
		c.Effect = emitter.Toggle
		for _, e := range emitter.Effects() {
			p, _ := c.Effects.Get(e)
			p.Elasticity = 1
			p.Friction = 0
			c.Effects.Set(e, p)
		}
		c.Params.Kinematic.Gravity = -0.004
	},
	"alarm": func(c *Config) {
		c.Effect = emitter.Error
		c.Intensity = 2
		c.Interval = 0.3
	},
}

func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownPreset, name)
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
