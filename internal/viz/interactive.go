package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/swsim/internal/config"
	"github.com/san-kum/swsim/internal/experiment"
	"github.com/san-kum/swsim/internal/physics"
	"github.com/sirupsen/logrus"
)

var presetInfo = map[string]string{
	"tower":    "single raised cell",
	"gyre":     "wind-driven basin",
	"channel":  "north-south step",
	"still":    "flat, no rotation",
	"unstable": "oversized time step",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var options = []string{"rotation", "wind", "perturbation", "wrap", "interpolate", "time_step", "steps_per_frame"}

type app struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	optCursor     int
	editing       bool
	editBuf       string
	err           error
	log           logrus.FieldLogger
	liveModel     Model
}

func NewInteractiveApp(log logrus.FieldLogger) *app {
	return &app{
		state:   stateMenu,
		presets: config.ListPresets(),
		log:     log,
	}
}

func (m app) Init() tea.Cmd { return nil }

func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m app) handleKey(msg tea.KeyMsg) (app, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m app) menuKey(msg tea.KeyMsg) (app, tea.Cmd) {
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
		if len(m.presets) == 0 {
			return m, nil
		}
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.optCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m app) configKey(msg tea.KeyMsg) (app, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			m.err = m.applyEdit()
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.optCursor > 0 {
			m.optCursor--
		}
	case "down", "j":
		if m.optCursor < len(options)-1 {
			m.optCursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "enter", " ":
		switch opt := options[m.optCursor]; opt {
		case "time_step", "steps_per_frame":
			m.editing, m.editBuf = true, optionValue(m.cfg, opt)
		default:
			m.adjust(1)
		}
	case "s":
		return m.start()
	}
	return m, nil
}

func (m *app) adjust(dir int) {
	c := m.cfg
	switch options[m.optCursor] {
	case "rotation":
		c.Rotation = cycle(physics.RotationSchemes(), physics.ParseRotationScheme(c.Rotation).String(), dir)
	case "wind":
		c.Wind = cycle(physics.WindSchemes(), physics.ParseWindScheme(c.Wind).String(), dir)
	case "perturbation":
		c.Perturbation = cycle(physics.Perturbations(), physics.ParsePerturbation(c.Perturbation).String(), dir)
	case "wrap":
		c.HorizontalWrap = !c.HorizontalWrap
	case "interpolate":
		c.InterpolateRotation = !c.InterpolateRotation
	case "time_step":
		if dir > 0 {
			c.TimeStep *= 2
		} else {
			c.TimeStep /= 2
		}
	case "steps_per_frame":
		if dir > 0 {
			c.StepsPerFrame = min(c.StepsPerFrame*2, maxStepsPerFrame)
		} else {
			c.StepsPerFrame = max(c.StepsPerFrame/2, 1)
		}
	}
}

func (m *app) applyEdit() error {
	switch options[m.optCursor] {
	case "time_step":
		v, err := strconv.ParseFloat(m.editBuf, 64)
		if err != nil {
			return fmt.Errorf("time step %q: %w", m.editBuf, err)
		}
		m.cfg.TimeStep = v
	case "steps_per_frame":
		v, err := strconv.Atoi(m.editBuf)
		if err != nil {
			return fmt.Errorf("steps per frame %q: %w", m.editBuf, err)
		}
		m.cfg.StepsPerFrame = max(1, min(v, maxStepsPerFrame))
	}
	return nil
}

// cycle returns the name dir places after current, wrapping around.
func cycle(names []string, current string, dir int) string {
	for i, n := range names {
		if n == current {
			return names[((i+dir)%len(names)+len(names))%len(names)]
		}
	}
	return names[0]
}

func optionValue(c *config.Config, opt string) string {
	switch opt {
	case "rotation":
		return physics.ParseRotationScheme(c.Rotation).String()
	case "wind":
		return physics.ParseWindScheme(c.Wind).String()
	case "perturbation":
		return physics.ParsePerturbation(c.Perturbation).String()
	case "wrap":
		return strconv.FormatBool(c.HorizontalWrap)
	case "interpolate":
		return strconv.FormatBool(c.InterpolateRotation)
	case "time_step":
		return strconv.FormatFloat(c.TimeStep, 'g', -1, 64)
	case "steps_per_frame":
		return strconv.Itoa(c.StepsPerFrame)
	}
	return ""
}

// start builds the run from the edited preset. Invalid parameters keep the
// config screen up with the error shown.
func (m app) start() (app, tea.Cmd) {
	exp := experiment.New(m.cfg.Clone())
	if err := exp.Setup(nil, m.log); err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel = NewModel(exp.Engine(), exp.GetSimulator().Grid(), m.cfg.Name, m.cfg.StepsPerFrame)
	m.state = stateSim
	return m, m.liveModel.Init()
}

func (m app) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func keyHelp(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m app) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("SWSIM") + "\n    " + subStyle.Render("shallow water on a C-grid") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-12s", name)), infoStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-12s", name)), idleInfoStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHelp("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m app) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(m.cfg.Name)) + "\n    " + subStyle.Render(fmt.Sprintf("%dx%d grid", m.cfg.Rows, m.cfg.Cols)) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, opt := range options {
		val := optionValue(m.cfg, opt)
		if m.editing && i == m.optCursor {
			val = m.editBuf + "_"
		}
		if i == m.optCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-16s", opt)), infoStyle.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-16s", opt)), idleInfoStyle.Render(val)))
		}
	}
	if p, err := m.cfg.Params(); err == nil {
		b.WriteString("\n    " + subStyle.Render(fmt.Sprintf("courant %.3g", p.Courant())) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n    " + statusStyle(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHelp("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func RunInteractive(log logrus.FieldLogger) error {
	_, err := tea.NewProgram(NewInteractiveApp(log), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view on an already initialized grid.
func RunLive(engine *physics.Engine, grid *physics.Grid, name string, stepsPerFrame int) error {
	_, err := tea.NewProgram(NewModel(engine, grid, name, stepsPerFrame), tea.WithAltScreen()).Run()
	return err
}
