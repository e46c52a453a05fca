package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/particlefx/internal/dynamo"
)

func TestParamsSet(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		value   float64
		wantErr error
	}{
		{"gravity any sign", "gravity", 0.5, nil},
		{"drag in range", "drag", 0.95, nil},
		{"drag zero", "drag", 0, dynamo.ErrParameterBounds},
		{"drag above one", "drag", 1.01, dynamo.ErrParameterBounds},
		{"alpha above one", "base_alpha", 2, dynamo.ErrParameterBounds},
		{"epsilon zero", "magnet_epsilon", 0, dynamo.ErrParameterBounds},
		{"nan", "gravity", math.NaN(), dynamo.ErrParameterBounds},
		{"unknown", "viscosity", 1, dynamo.ErrUnknownParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			err := p.Set(tt.param, tt.value)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got, _ := p.Get(tt.param); got != tt.value {
					t.Errorf("Get(%q) = %g, want %g", tt.param, got, tt.value)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Set(%q, %g) error = %v, want %v", tt.param, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestParamsMapCoversNames(t *testing.T) {
	p := DefaultParams()
	m := p.Map()
	for _, name := range ParamNames() {
		if _, ok := m[name]; !ok {
			t.Errorf("Map is missing %q", name)
		}
	}
	if m["max_dt"] != MaxDt || m["time_scale"] != TimeScale {
		t.Errorf("timing defaults = %g, %g", m["max_dt"], m["time_scale"])
	}
	if err := p.Validate(); err != nil {
		t.Errorf("defaults fail validation: %v", err)
	}
}
