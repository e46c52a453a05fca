package automation

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/particlefx/internal/config"
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
	"github.com/san-kum/particlefx/internal/metrics"
	"github.com/san-kum/particlefx/internal/sim"
)

// Scenario is a scripted timeline of bursts and parameter changes.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Duration    float64            `yaml:"duration"`
	Dt          float64            `yaml:"dt"`
	Seed        int64              `yaml:"seed"`
	Params      map[string]float64 `yaml:"params"`
	Events      []Event            `yaml:"events"`
}

// Event fires once the simulated clock reaches At seconds. It either clears
// the engine, triggers a burst, or both in that order; Set is applied first.
type Event struct {
	At        float64            `yaml:"at"`
	Effect    *emitter.Effect    `yaml:"effect"`
	Intensity float64            `yaml:"intensity"`
	Origin    *dynamo.Vec3       `yaml:"origin,flow"`
	Flags     emitter.Flags      `yaml:"flags"`
	Clear     bool               `yaml:"clear"`
	Set       map[string]float64 `yaml:"set"`
}

// UnmarshalYAML fills in full intensity and every interaction before
// decoding, so events only spell out what differs.
func (e *Event) UnmarshalYAML(node *yaml.Node) error {
	type plain Event
	ev := plain{Intensity: 1, Flags: emitter.AllInteractions}
	if err := node.Decode(&ev); err != nil {
		return err
	}
	*e = Event(ev)
	return nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// FromConfig turns the config's burst into a scenario: one burst at t=0
// and, when Interval is positive, another every Interval seconds.
func FromConfig(cfg *config.Config) *Scenario {
	s := &Scenario{Name: cfg.Effect.String(), Duration: cfg.Duration, Dt: cfg.Dt, Seed: cfg.Seed}
	for at := 0.0; at < cfg.Duration || at == 0; at += cfg.Interval {
		effect := cfg.Effect
		s.Events = append(s.Events, Event{At: at, Effect: &effect, Intensity: cfg.Intensity, Flags: cfg.Flags})
		if cfg.Interval <= 0 {
			break
		}
	}
	return s
}

// Validate checks s against the default engine constants.
func (s *Scenario) Validate() error {
	return s.validate(sim.DefaultParams(), s.Dt)
}

// validate checks every parameter the scenario sets, starting from params,
// and that no tick of dt seconds would be clamped. dt <= 0 skips that check.
func (s *Scenario) validate(params sim.Params, dt float64) error {
	if s.Duration < 0 || s.Dt < 0 {
		return fmt.Errorf("scenario %q: duration and dt must not be negative", s.Name)
	}
	for k, v := range s.Params {
		if err := params.Set(k, v); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	if dt > params.MaxDt {
		return fmt.Errorf("scenario %q: dt %g exceeds max_dt %g", s.Name, dt, params.MaxDt)
	}
	for i, ev := range s.Events {
		if ev.At < 0 {
			return fmt.Errorf("scenario %q: event %d at negative time %g", s.Name, i+1, ev.At)
		}
		if ev.Effect == nil && !ev.Clear && len(ev.Set) == 0 {
			return fmt.Errorf("scenario %q: event %d does nothing", s.Name, i+1)
		}
		if ev.Effect != nil && !ev.Effect.Valid() {
			return fmt.Errorf("scenario %q: event %d: %w", s.Name, i+1, dynamo.ErrUnknownEffect)
		}
		set := params
		for k, v := range ev.Set {
			if err := set.Set(k, v); err != nil {
				return fmt.Errorf("scenario %q: event %d: %w", s.Name, i+1, err)
			}
		}
		if dt > set.MaxDt {
			return fmt.Errorf("scenario %q: event %d: max_dt %g below dt %g", s.Name, i+1, set.MaxDt, dt)
		}
	}
	return nil
}

// RunScenario plays s against a fresh engine built from base. Timing fields
// the scenario leaves at zero come from base. Progress lines go to w.
func RunScenario(ctx context.Context, s *Scenario, base *config.Config, w io.Writer) (*sim.Result, error) {
	cfg := base.Clone()
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if err := s.validate(cfg.Params, cfg.Dt); err != nil {
		return nil, err
	}

	eng, err := cfg.NewEngine()
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Standard(cfg.Bounds) {
		eng.AddMetric(m)
	}
	for k, v := range s.Params {
		if err := eng.SetParam(k, v); err != nil {
			return nil, err
		}
	}

	events := append([]Event(nil), s.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	next := 0
	var failed error
	fire := func(now float64) {
		for failed == nil && next < len(events) && events[next].At <= now+1e-9 {
			ev := events[next]
			next++
			n, err := apply(eng, ev)
			if err != nil {
				failed = fmt.Errorf("event %d at %gs: %w", next, ev.At, err)
				return
			}
			fmt.Fprintf(w, "t=%.3fs event %d/%d: %s (%d particles)\n", now, next, len(events), ev.describe(), n)
		}
	}

	fire(0)
	if failed != nil {
		return nil, failed
	}
	eng.AddObserver(sim.ObserverFunc(func(info *sim.StepInfo, _ dynamo.Snapshot) {
		fire(info.Time)
	}))

	fmt.Fprintf(w, "Running %s: %.2fs at dt=%.4f\n", displayName(s), cfg.Duration, cfg.Dt)
	result, err := eng.Run(ctx, sim.RunConfig{Dt: cfg.Dt, Duration: cfg.Duration, KeepFrames: true})
	if err == nil {
		err = failed
	}
	return result, err
}

func apply(eng *sim.Engine, ev Event) (int, error) {
	for k, v := range ev.Set {
		if err := eng.SetParam(k, v); err != nil {
			return 0, err
		}
	}
	if ev.Clear {
		eng.Clear()
	}
	if ev.Effect == nil {
		return 0, nil
	}
	origin := eng.Bounds().Center()
	if ev.Origin != nil {
		origin = *ev.Origin
	}
	return eng.TriggerAt(*ev.Effect, ev.Intensity, origin, ev.Flags), nil
}

func (ev Event) describe() string {
	switch {
	case ev.Effect != nil && ev.Clear:
		return "clear+" + ev.Effect.String()
	case ev.Effect != nil:
		return ev.Effect.String()
	case ev.Clear:
		return "clear"
	}
	return "set"
}

func displayName(s *Scenario) string {
	if s.Name == "" {
		return "scenario"
	}
	return s.Name
}
