// Package emitter turns UI effect tags into freshly spawned particles.
package emitter

import (
	"fmt"
	"strings"

	"github.com/san-kum/particlefx/internal/dynamo"
)

// Effect is the closed set of interaction effects.
type Effect int

const (
	Hover Effect = iota
	Click
	Success
	Navigation
	Error
	Toggle

	numEffects
)

var effectNames = [numEffects]string{"hover", "click", "success", "navigation", "error", "toggle"}

// Effects lists every effect in declaration order.
func Effects() []Effect {
	out := make([]Effect, numEffects)
	for i := range out {
		out[i] = Effect(i)
	}
	return out
}

func (e Effect) Valid() bool { return e >= 0 && e < numEffects }

func (e Effect) String() string {
	if !e.Valid() {
		return fmt.Sprintf("effect(%d)", int(e))
	}
	return effectNames[e]
}

func ParseEffect(s string) (Effect, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range effectNames {
		if n == name {
			return Effect(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownEffect, s)
}

func (e Effect) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %d", dynamo.ErrUnknownEffect, int(e))
	}
	return []byte(e.String()), nil
}

func (e *Effect) UnmarshalText(b []byte) error {
	v, err := ParseEffect(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Flags gate the interaction phases for the particles of one trigger.
type Flags struct {
	Collisions bool `yaml:"collisions" json:"collisions"`
	Magnetism  bool `yaml:"magnetism" json:"magnetism"`
}

// AllInteractions enables both collision and magnetism.
var AllInteractions = Flags{Collisions: true, Magnetism: true}
