package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/particlefx/internal/config"
	"github.com/san-kum/particlefx/internal/emitter"
)

var presetInfo = map[string]string{
	"default": "success bursts, full physics",
	"calm":    "slow hover drift, no contacts",
	"storm":   "triple success every half second",
	"zero-g":  "weightless magnetic swirl",
	"sparkle": "hair-trigger colour sparks",
	"bouncy":  "perfectly elastic toggles",
	"alarm":   "rapid error flashes",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// picker lets the user choose a preset and tweak the burst before starting
// the live viewer.
type picker struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	fieldCursor   int
	seed          int64
	gifPath       string
	live          Model
	err           error
}

var pickerFields = []string{"effect", "intensity", "interval", "collisions", "magnetism"}

func newPicker(seed int64, gifPath string) *picker {
	return &picker{presets: config.ListPresets(), seed: seed, gifPath: gifPath}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(key)
	case stateConfig:
		return m.configKey(key)
	}
	return m, nil
}

func (m picker) menuKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		cfg, err := config.GetPreset(m.presets[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		if m.seed != 0 {
			cfg.Seed = m.seed
		}
		m.cfg, m.state, m.fieldCursor = cfg, stateConfig, 0
	}
	return m, nil
}

func (m picker) configKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(pickerFields)-1 {
			m.fieldCursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l", " ":
		m.adjust(1)
	case "enter", "s":
		eng, err := m.cfg.NewEngine()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.live = NewModel(eng, m.cfg).WithGIFPath(m.gifPath)
		m.state = stateSim
		return m, m.live.Init()
	}
	return m, nil
}

func (m *picker) adjust(dir int) {
	switch pickerFields[m.fieldCursor] {
	case "effect":
		n := len(emitter.Effects())
		m.cfg.Effect = emitter.Effect((int(m.cfg.Effect) + dir + n) % n)
	case "intensity":
		m.cfg.Intensity = max(0, m.cfg.Intensity+0.25*float64(dir))
	case "interval":
		m.cfg.Interval = max(0, m.cfg.Interval+0.25*float64(dir))
	case "collisions":
		m.cfg.Flags.Collisions = !m.cfg.Flags.Collisions
	case "magnetism":
		m.cfg.Flags.Magnetism = !m.cfg.Flags.Magnetism
	}
}

func (m picker) fieldValue(name string) string {
	switch name {
	case "effect":
		return m.cfg.Effect.String()
	case "intensity":
		return fmt.Sprintf("%.2f", m.cfg.Intensity)
	case "interval":
		return fmt.Sprintf("%.2fs", m.cfg.Interval)
	case "collisions":
		return fmt.Sprintf("%v", m.cfg.Flags.Collisions)
	case "magnetism":
		return fmt.Sprintf("%v", m.cfg.Flags.Magnetism)
	}
	return ""
}

var (
	pickTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickArrow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func (m picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.live.View()
	}
	return ""
}

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pickKey.Render(pairs[i]) + pickIdle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("PARTICLEFX") + "\n    " + pickSub.Render("interaction particle effects") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickArrow.Render("▸"), pickActive.Render(fmt.Sprintf("%-10s", name)), pickDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", pickIdle.Render(fmt.Sprintf("  %-10s", name)), pickIdle.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + pickDesc.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m picker) viewConfig() string {
	var b strings.Builder
	name := m.presets[m.cursor]
	b.WriteString("\n\n    " + pickTitle.Render(strings.ToUpper(name)) + "\n    " + pickSub.Render(presetInfo[name]) + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, field := range pickerFields {
		val := fmt.Sprintf("%12s", m.fieldValue(field))
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", pickArrow.Render("▸"), pickActive.Render(fmt.Sprintf("%-10s", field)), pickDesc.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", pickIdle.Render(fmt.Sprintf("  %-10s", field)), pickIdle.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + pickDesc.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker; a non-zero seed overrides the
// presets' random seeding.
func RunInteractive(seed int64, gifPath string) error {
	_, err := tea.NewProgram(newPicker(seed, gifPath), tea.WithAltScreen()).Run()
	return err
}
