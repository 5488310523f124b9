package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/swsim/internal/dynamo"
	"github.com/san-kum/swsim/internal/experiment"
	"github.com/san-kum/swsim/internal/physics"
)

const (
	historyCapacity  = 600
	maxStepsPerFrame = 512
	gifPath          = "swsim.gif"
)

type TickMsg time.Time

// Model drives a grid from the bubbletea tick and keeps a bounded history
// of frames for replay.
type Model struct {
	engine        *physics.Engine
	grid          *physics.Grid
	name          string
	stepsPerFrame int
	running       bool
	arrows        bool
	diverged      bool
	energy        []float64
	probe         []float64
	history       []dynamo.Snapshot
	playHead      int
	recorder      *Recorder
	showHelp      bool
	err           error
}

func NewModel(engine *physics.Engine, grid *physics.Grid, name string, stepsPerFrame int) Model {
	return Model{
		engine:        engine,
		grid:          grid,
		name:          name,
		stepsPerFrame: max(1, min(stepsPerFrame, maxStepsPerFrame)),
		running:       true,
		arrows:        true,
		energy:        make([]float64, 0, historyCapacity),
		probe:         make([]float64, 0, historyCapacity),
		history:       make([]dynamo.Snapshot, 0, historyCapacity),
		playHead:      -1,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopRecording()
			return m, tea.Quit
		case " ":
			if !m.diverged && m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, maxStepsPerFrame)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "t":
			NextTheme()
		case "a":
			m.arrows = !m.arrows
		case "g":
			if m.recorder != nil {
				m.stopRecording()
			} else {
				m.recorder = NewRecorder(themeColormap())
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.advance()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		if m.recorder != nil {
			m.recorder.Capture(m.current())
		}
		return m, tick()
	}
	return m, nil
}

// advance takes one frame of steps. A failed step or a frame past the
// divergence threshold pauses the view for good until reset.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.engine.Advance(m.grid); err != nil {
			m.err = err
			m.running = false
			return
		}
	}

	snap := m.grid.Snapshot()
	m.energy = appendCapped(m.energy, physics.Energy(snap))
	m.probe = appendCapped(m.probe, physics.Probe(snap))
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}

	if peak := physics.PeakHeight(snap); !snap.IsFinite() || math.IsNaN(peak) || peak > experiment.DivergenceThreshold {
		m.diverged = true
		m.running = false
	}
}

func appendCapped(values []float64, v float64) []float64 {
	values = append(values, v)
	if len(values) > historyCapacity {
		values = values[1:]
	}
	return values
}

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

func (m *Model) reset() {
	m.err = m.grid.Initialize(m.engine.Params())
	m.energy = m.energy[:0]
	m.probe = m.probe[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.diverged = false
	m.running = m.err == nil
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Save(gifPath); err != nil {
		m.err = err
	}
	m.recorder = nil
}

// current is the frame on screen: the replay position, or the live grid.
func (m Model) current() dynamo.Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.grid.Snapshot()
}

func (m Model) status() (string, lipgloss.Color) {
	switch {
	case m.err != nil:
		return "ERROR: " + m.err.Error(), CurrentTheme.Error
	case m.diverged:
		return "DIVERGED", CurrentTheme.Error
	case m.playHead != -1:
		label := "REPLAY"
		if !m.running {
			label = "REPLAY PAUSED"
		}
		offset := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		return fmt.Sprintf("%s (%.1f days)", label, offset/dynamo.SecondsPerDay), CurrentTheme.Warning
	case !m.running:
		return "PAUSED", CurrentTheme.Warning
	}
	return "RUNNING", CurrentTheme.Success
}

func (m Model) View() string {
	snap := m.current()
	heatView := heatStyle.Render(HeatMap(snap, themeColormap(), m.arrows))

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.name)) + "\n")
	status, color := m.status()
	s.WriteString(statusStyle(color).Render(status))
	if m.recorder != nil {
		s.WriteString(statusStyle(CurrentTheme.Error).Render(fmt.Sprintf("  ● REC %d", m.recorder.Len())))
	}
	s.WriteString("\n")

	if series := finitePrefix(m.energy); len(series) > 1 {
		chart := asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Foreground(CurrentTheme.Primary).Render(chart) + "\n")
	}

	p := m.engine.Params()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.1f days", snap.Days()))
	row("Step", fmt.Sprintf("%d", snap.Step))
	row("Energy", fmt.Sprintf("%.4g", physics.Energy(snap)))
	row("Peak", fmt.Sprintf("%.4g", physics.PeakHeight(snap)))
	row("Courant", fmt.Sprintf("%.3g", p.Courant()))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerFrame))
	row("Rotation", p.Rotation.String())
	row("Wind", p.Wind.String())
	row("Theme", CurrentTheme.Name)

	s.WriteString("\n" + labelStyle.Render("Probe") + SparklineChart(finitePrefix(m.probe), 30) + "\n")
	s.WriteString(helpStyle.Render(Separator(30) + "\nSP:Pause R:Reset Q:Quit\nT:Theme  G:Record A:Arrows\n+/-:Speed [ ]:Replay ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, heatView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reset to initial state   ║
║  Q        - Quit                     ║
║  + / -    - Double/halve steps/frame ║
║  [        - Step back through replay ║
║  ]        - Step forward             ║
║  A        - Toggle velocity arrows   ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// finitePrefix cuts a series at its first NaN or Inf.
func finitePrefix(values []float64) []float64 {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return values[:i]
		}
	}
	return values
}
