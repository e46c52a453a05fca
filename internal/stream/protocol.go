package stream

import (
	"encoding/json"
	"fmt"

	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
)

// Client -> Server message types
const (
	MsgTrigger = "trigger"
	MsgClear   = "clear"
)

// Server -> Client message types. Frames travel as binary msgpack; only
// errors are sent as JSON text.
const (
	MsgError = "error"
)

// Envelope wraps outgoing JSON messages with a type field.
type Envelope struct {
	T    string `json:"t"`
	Data any    `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; D is decoded once T is known.
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

type ErrorMsg struct {
	Msg string `json:"msg"`
}

// TriggerMsg asks the server to fire an effect. Missing fields take the
// hub defaults: intensity 1, both interactions on, burst at the bounds
// centre.
type TriggerMsg struct {
	Effect     string      `json:"effect"`
	Intensity  *float64    `json:"intensity,omitempty"`
	Collisions *bool       `json:"collisions,omitempty"`
	Magnetism  *bool       `json:"magnetism,omitempty"`
	Origin     *[3]float64 `json:"origin,omitempty"`
}

// Frame is one broadcast tick.
type Frame struct {
	Tick    int             `msgpack:"tick"`
	Time    float64         `msgpack:"time"`
	Sprites dynamo.Snapshot `msgpack:"sprites"`
}

type trigger struct {
	effect    emitter.Effect
	intensity float64
	flags     emitter.Flags
	origin    *dynamo.Vec3
}

func (m TriggerMsg) resolve(defaults emitter.Flags) (trigger, error) {
	effect, err := emitter.ParseEffect(m.Effect)
	if err != nil {
		return trigger{}, err
	}
	t := trigger{effect: effect, intensity: 1, flags: defaults}
	if m.Intensity != nil {
		t.intensity = *m.Intensity
	}
	if m.Collisions != nil {
		t.flags.Collisions = *m.Collisions
	}
	if m.Magnetism != nil {
		t.flags.Magnetism = *m.Magnetism
	}
	if m.Origin != nil {
		o := dynamo.Vec3(*m.Origin)
		t.origin = &o
	}
	return t, nil
}

func encodeError(msg string) []byte {
	data, _ := json.Marshal(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
	return data
}

func decodeTrigger(raw json.RawMessage) (TriggerMsg, error) {
	var msg TriggerMsg
	if len(raw) == 0 {
		return msg, fmt.Errorf("trigger: missing payload")
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("trigger: %w", err)
	}
	return msg, nil
}
