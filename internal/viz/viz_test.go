package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/particlefx/internal/config"
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	if got := c.Grid[0][0]; got != blank|0x1 {
		t.Errorf("cell 0 = %U, want %U", got, blank|0x1)
	}
	if got := c.Grid[0][1]; got != blank|0x80 {
		t.Errorf("cell 1 = %U, want %U", got, blank|0x80)
	}

	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
	if s := c.String(); s != "\u2801\u2880\n" {
		t.Errorf("unexpected canvas string %q", s)
	}

	c.Clear()
	if c.Grid[0][0] != blank || c.Grid[0][1] != blank {
		t.Error("clear left dots behind")
	}
}

func TestCanvasPlotColor(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Plot(2, 4, "#ff0000")
	if got := c.Colors[1][1]; got != "#ff0000" {
		t.Errorf("cell colour = %q, want #ff0000", got)
	}
	out := c.Render(lipgloss.NewStyle())
	if strings.Count(out, "\n") != 2 || !strings.HasSuffix(out, "\n") {
		t.Errorf("render should produce 2 newline-terminated rows, got %q", out)
	}
}

func TestCameraProjectCenter(t *testing.T) {
	cam := NewCamera()
	x, y, _, ok := cam.Project(dynamo.Vec3{}, 160, 96)
	if !ok {
		t.Fatal("origin should be on screen")
	}
	if x != 80 || y != 48 {
		t.Errorf("origin projected to (%d, %d), want (80, 48)", x, y)
	}

	if _, _, _, ok := cam.Project(dynamo.Vec3{0, 0, cam.Distance}, 160, 96); ok {
		t.Error("point at the eye should be culled")
	}
}

func TestCameraRotateIdentity(t *testing.T) {
	cam := NewCamera()
	p := dynamo.Vec3{1, 2, 3}
	if got := cam.RotatePoint(p); !got.ApproxEqual(p) {
		t.Errorf("unrotated camera moved %v to %v", p, got)
	}
	cam.RotateY(0.5)
	cam.Reset()
	if cam.RotY != 0 || cam.Zoom != 1 {
		t.Error("reset did not restore the camera")
	}
}

func TestBoxWireframe(t *testing.T) {
	w := BoxWireframe(dynamo.DefaultBounds())
	if len(w.Edges) != 12 {
		t.Fatalf("box has %d edges, want 12", len(w.Edges))
	}
	for _, e := range w.Edges {
		if d := e.Start.Sub(e.End).Len(); d != 4 {
			t.Errorf("edge length %v, want 4", d)
		}
	}
}

func TestSpriteColor(t *testing.T) {
	tests := []struct {
		name string
		rgba [4]float64
		want lipgloss.Color
	}{
		{"opaque white", [4]float64{1, 1, 1, 1}, "#ffffff"},
		{"transparent", [4]float64{1, 1, 1, 0}, "#000000"},
		{"half red", [4]float64{1, 0, 0, 0.5}, "#800000"},
		{"clamped", [4]float64{2, -1, 0, 1}, "#ff0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpriteColor(tt.rgba); got != tt.want {
				t.Errorf("SpriteColor(%v) = %q, want %q", tt.rgba, got, tt.want)
			}
		})
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("ocean").Name != "ocean" {
		t.Error("ocean theme not found")
	}
	if GetTheme("nope").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names out of sync")
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Seed = 7
	cfg.Interval = 0
	eng, err := cfg.NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(eng, cfg)
}

func TestModelTriggerKey(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	m = next.(Model)
	if got := m.eng.Len(); got != 35 {
		t.Errorf("success key spawned %d particles, want 35", got)
	}
	if !strings.Contains(m.message, "35") {
		t.Errorf("status message %q does not report the burst", m.message)
	}
}

func TestModelTickAdvances(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Error("tick should schedule the next frame")
	}
	if m.eng.Ticks() != 1 {
		t.Errorf("engine ticks = %d, want 1", m.eng.Ticks())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.eng.Ticks() != 1 {
		t.Error("paused viewer kept stepping")
	}
}

func TestModelClearKey(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if got := next.(Model).eng.Len(); got != 0 {
		t.Errorf("clear left %d particles", got)
	}
}

func TestModelResetRestoresParams(t *testing.T) {
	m := newTestModel(t)
	want := m.eng.GetParams().Kinematic.Drag
	if err := m.eng.SetParam("drag", 0.5); err != nil {
		t.Fatal(err)
	}
	m.eng.Trigger(emitter.Click, 1, emitter.AllInteractions)

	m.reset()
	if got := m.eng.GetParams().Kinematic.Drag; got != want {
		t.Errorf("drag after reset = %g, want %g", got, want)
	}
	if m.eng.Len() != 0 || m.message != "reset" {
		t.Errorf("reset left %d particles, message %q", m.eng.Len(), m.message)
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next, _ = next.Update(TickMsg{})
	if view := next.View(); !strings.Contains(view, "PARTICLEFX") {
		t.Error("view is missing the title")
	}
}

func TestPickerSelectsPreset(t *testing.T) {
	p := newPicker(3, "")
	next, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(picker)
	if got.state != stateConfig || got.cfg == nil {
		t.Fatalf("enter did not open the preset config (state %d)", got.state)
	}
	if got.cfg.Seed != 3 {
		t.Errorf("seed override lost: %d", got.cfg.Seed)
	}

	before := got.cfg.Effect
	next, _ = got.Update(tea.KeyMsg{Type: tea.KeyRight})
	if next.(picker).cfg.Effect == before {
		t.Error("right arrow did not cycle the effect")
	}

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if next.(picker).state != stateSim {
		t.Error("start did not launch the viewer")
	}
}
