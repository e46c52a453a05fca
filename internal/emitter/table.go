package emitter

import "fmt"

// Params is the spawn recipe of one effect.
type Params struct {
	Count      int        `yaml:"count"`
	Color      [4]float64 `yaml:"color,flow"`
	Speed      float64    `yaml:"speed"`
	Spread     float64    `yaml:"spread"`
	Life       float64    `yaml:"life"`
	Size       float64    `yaml:"size"`
	Mass       float64    `yaml:"mass"`
	Elasticity float64    `yaml:"elasticity"`
	Friction   float64    `yaml:"friction"`
	Magnetism  float64    `yaml:"magnetism"`
	Charge     float64    `yaml:"charge"`
	Group      int        `yaml:"group"`
}

func (p Params) Validate() error {
	switch {
	case p.Count < 0:
		return fmt.Errorf("count must not be negative, got %d", p.Count)
	case !(p.Mass > 0):
		return fmt.Errorf("mass must be positive, got %g", p.Mass)
	case !(p.Size > 0):
		return fmt.Errorf("size must be positive, got %g", p.Size)
	case !(p.Life > 0):
		return fmt.Errorf("life must be positive, got %g", p.Life)
	case p.Speed < 0 || p.Spread < 0:
		return fmt.Errorf("speed and spread must not be negative")
	}
	return nil
}

// Table holds one Params per effect.
type Table struct {
	Hover      Params `yaml:"hover"`
	Click      Params `yaml:"click"`
	Success    Params `yaml:"success"`
	Navigation Params `yaml:"navigation"`
	Error      Params `yaml:"error"`
	Toggle     Params `yaml:"toggle"`
}

func DefaultTable() Table {
	return Table{
		Hover: Params{
			Count: 12, Color: [4]float64{0.4, 0.5, 0.6, 0.6}, Speed: 0.015, Spread: 0.4, Life: 180, Size: 6,
			Mass: 1.0, Elasticity: 0.7, Friction: 0.3, Magnetism: 0.5, Charge: 1, Group: 1,
		},
		Click: Params{
			Count: 20, Color: [4]float64{0.3, 0.4, 0.5, 0.8}, Speed: 0.03, Spread: 0.6, Life: 150, Size: 10,
			Mass: 1.2, Elasticity: 0.8, Friction: 0.2, Magnetism: 0.7, Charge: -1, Group: 2,
		},
		Success: Params{
			Count: 35, Color: [4]float64{0.1, 0.8, 0.4, 0.9}, Speed: 0.04, Spread: 0.8, Life: 200, Size: 12,
			Mass: 0.8, Elasticity: 0.9, Friction: 0.1, Magnetism: 1.0, Charge: 1, Group: 3,
		},
		Navigation: Params{
			Count: 25, Color: [4]float64{0.2, 0.5, 0.9, 0.8}, Speed: 0.035, Spread: 0.7, Life: 170, Size: 11,
			Mass: 1.1, Elasticity: 0.75, Friction: 0.25, Magnetism: 0.8, Charge: -1, Group: 4,
		},
		Error: Params{
			Count: 15, Color: [4]float64{0.9, 0.3, 0.3, 0.7}, Speed: 0.025, Spread: 0.5, Life: 120, Size: 8,
			Mass: 1.5, Elasticity: 0.6, Friction: 0.4, Magnetism: 0.3, Charge: 1, Group: 5,
		},
		Toggle: Params{
			Count: 18, Color: [4]float64{0.6, 0.4, 0.9, 0.8}, Speed: 0.03, Spread: 0.65, Life: 160, Size: 9,
			Mass: 0.9, Elasticity: 0.85, Friction: 0.15, Magnetism: 0.9, Charge: -1, Group: 6,
		},
	}
}

// entry returns the slot for e, or nil for an effect outside the set.
func (t *Table) entry(e Effect) *Params {
	switch e {
	case Hover:
		return &t.Hover
	case Click:
		return &t.Click
	case Success:
		return &t.Success
	case Navigation:
		return &t.Navigation
	case Error:
		return &t.Error
	case Toggle:
		return &t.Toggle
	}
	return nil
}

func (t *Table) Get(e Effect) (Params, bool) {
	p := t.entry(e)
	if p == nil {
		return Params{}, false
	}
	return *p, true
}

func (t *Table) Set(e Effect, p Params) bool {
	slot := t.entry(e)
	if slot == nil {
		return false
	}
	*slot = p
	return true
}

func (t *Table) Validate() error {
	for _, e := range Effects() {
		p, _ := t.Get(e)
		if err := p.Validate(); err != nil {
			return fmt.Errorf("effect %s: %w", e, err)
		}
	}
	return nil
}
