package viz

import (
	"fmt"
	"image"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/particlefx/internal/config"
	"github.com/san-kum/particlefx/internal/dynamo"
	"github.com/san-kum/particlefx/internal/emitter"
	"github.com/san-kum/particlefx/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live terminal viewer: it owns an engine and advances it once
// per frame.
type Model struct {
	eng *sim.Engine
	cfg *config.Config

	canvas *Canvas
	box    *Wireframe
	camera *Camera
	center dynamo.Vec3
	theme  Theme
	st     styles

	running    bool
	auto       bool
	flags      emitter.Flags
	sinceBurst float64

	paramKeys     []string
	selected      int
	initialParams sim.Params

	popHistory    []float64
	energyHistory []float64
	hitHistory    []float64
	history       []dynamo.Snapshot
	playHead      int

	recording bool
	frames    []*image.Paletted
	gifPath   string
	message   string
	showHelp  bool
}

// NewModel builds a viewer around eng. cfg supplies the auto-burst effect,
// its interval and the frame step.
func NewModel(eng *sim.Engine, cfg *config.Config) Model {
	bounds := eng.Bounds()
	cam := FitCamera(bounds)

	return Model{
		eng:           eng,
		cfg:           cfg,
		canvas:        NewCanvas(width, height),
		box:           BoxWireframe(bounds),
		camera:        cam,
		center:        bounds.Center(),
		theme:         Themes[0],
		st:            newStyles(Themes[0]),
		running:       true,
		auto:          cfg.Interval > 0,
		flags:         cfg.Flags,
		sinceBurst:    cfg.Interval,
		paramKeys:     sim.ParamNames(),
		initialParams: eng.GetParams(),
		popHistory:    make([]float64, 0, historyCapacity),
		energyHistory: make([]float64, 0, historyCapacity),
		hitHistory:    make([]float64, 0, historyCapacity),
		history:       make([]dynamo.Snapshot, 0, historyCapacity),
		playHead:      -1,
		gifPath:       "particlefx.gif",
	}
}

// WithGIFPath sets where G recordings are written.
func (m Model) WithGIFPath(path string) Model {
	m.gifPath = path
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

var effectKeys = map[string]emitter.Effect{
	"1": emitter.Hover,
	"2": emitter.Click,
	"3": emitter.Success,
	"4": emitter.Navigation,
	"5": emitter.Error,
	"6": emitter.Toggle,
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if e, ok := effectKeys[key]; ok {
			n := m.eng.Trigger(e, m.cfg.Intensity, m.flags)
			m.message = fmt.Sprintf("%s: %d particles", e, n)
			return m, nil
		}
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "a":
			m.auto = !m.auto
		case "c":
			m.eng.Clear()
			m.message = "cleared"
		case "r":
			m.reset()
		case "o":
			m.flags.Collisions = !m.flags.Collisions
		case "n":
			m.flags.Magnetism = !m.flags.Magnetism
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = nextTheme(m.theme.Name)
			m.st = newStyles(m.theme)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.frames = append(m.frames, captureFrame(m.canvas))
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) adjustParam(factor float64) {
	key := m.paramKeys[m.selected]
	params := m.eng.GetParams()
	val, _ := params.Get(key)
	if val == 0 {
		val = 1e-3
	}
	if err := m.eng.SetParam(key, val*factor); err != nil {
		m.message = err.Error()
	}
}

// step advances the engine one frame and records the history buffers.
func (m *Model) step() {
	if m.auto && m.cfg.Interval > 0 {
		m.sinceBurst += m.cfg.Dt
		if m.sinceBurst >= m.cfg.Interval {
			m.sinceBurst = 0
			m.eng.Trigger(m.cfg.Effect, m.cfg.Intensity, m.flags)
		}
	}

	snap := m.eng.Advance(m.cfg.Dt)

	energy := 0.0
	for _, p := range m.eng.Particles() {
		energy += p.KineticEnergy()
	}
	m.popHistory = pushCapped(m.popHistory, float64(len(snap)))
	m.energyHistory = pushCapped(m.energyHistory, energy)
	m.hitHistory = pushCapped(m.hitHistory, float64(m.eng.LastStats().Collisions))

	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func pushCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset clears the scene and restores the starting parameters.
func (m *Model) reset() {
	m.eng.Clear()
	m.message = "reset"
	for _, k := range m.paramKeys {
		v, _ := m.initialParams.Get(k)
		if err := m.eng.SetParam(k, v); err != nil {
			m.message = "reset: " + err.Error()
		}
	}
	m.popHistory = m.popHistory[:0]
	m.energyHistory = m.energyHistory[:0]
	m.hitHistory = m.hitHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.camera.Reset()
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	m.recording = false
	if err := saveGIF(m.gifPath, m.frames); err != nil {
		m.message = "gif: " + err.Error()
	} else if len(m.frames) > 0 {
		m.message = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.gifPath)
	}
	m.frames = nil
}

// current is the snapshot on screen: the replay frame or the latest tick.
func (m *Model) current() dynamo.Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	if len(m.history) == 0 {
		return nil
	}
	return m.history[len(m.history)-1]
}

func (m *Model) draw() {
	m.canvas.Clear()
	Render3D(m.canvas, m.box, m.camera)
	RenderSnapshot(m.canvas, m.camera, m.current(), m.center)
}

func (m Model) View() string {
	m.draw()
	st := m.st
	canvasView := st.canvas.Render(m.canvas.Render(st.box))

	status := "RUNNING"
	switch {
	case m.playHead != -1:
		status = fmt.Sprintf("REPLAY %d/%d", m.playHead+1, len(m.history))
	case !m.running:
		status = "PAUSED"
	}
	if m.recording {
		status += " " + st.warn.Render("● REC")
	}

	var s strings.Builder
	s.WriteString(st.header.Render("PARTICLEFX") + "\n")
	s.WriteString(status + "\n\n")
	if len(m.popHistory) > 1 {
		chart := asciigraph.Plot(m.popHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Particles"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	s.WriteString(st.label.Render("Collisions") + st.value.Render(SparklineChart(m.hitHistory, 24)) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.eng.Time()))
	row("Particles", fmt.Sprintf("%d", len(m.current())))
	energy := 0.0
	if len(m.energyHistory) > 0 {
		energy = m.energyHistory[len(m.energyHistory)-1]
	}
	row("Energy", fmt.Sprintf("%.5f", energy))
	row("State", m.eng.State().String())
	row("Flags", fmt.Sprintf("collide:%v magnet:%v", m.flags.Collisions, m.flags.Magnetism))
	auto := "off"
	if m.auto {
		auto = fmt.Sprintf("%s every %.1fs", m.cfg.Effect, m.cfg.Interval)
	}
	row("Auto", auto)
	if m.cfg.Interval > 0 && m.auto {
		s.WriteString(st.label.Render("Next") + ProgressBar(m.sinceBurst/m.cfg.Interval, 20, st.active) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	params := m.eng.GetParams()
	for i, k := range m.paramKeys {
		v, _ := params.Get(k)
		line := fmt.Sprintf("%-16s %.4g", k, v)
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.label.UnsetWidth().Render(line) + "\n")
		}
	}
	if m.message != "" {
		s.WriteString("\n" + st.value.Render(m.message) + "\n")
	}
	s.WriteString(st.help.Render("1-6:Burst SP:Pause C:Clear R:Reset\nA:Auto O/N:Flags G:Record ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  1-6      - Hover Click Success      ║
║             Navigation Error Toggle  ║
║  Space    - Pause/Resume             ║
║  A        - Toggle auto bursts       ║
║  C        - Clear particles          ║
║  R        - Reset scene and params   ║
║  O / N    - Collisions / magnetism   ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [ ]      - Rewind / forward         ║
║  X Y Z    - Rotate camera            ║
║  + -      - Zoom                     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the viewer full screen and blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
