package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	statsWidth      = 44
	historyCapacity = 600
	pinNudge        = 10.0
)

type TickMsg time.Time

type trailPoint struct{ x, y int }

// Model steps a world once per tick and draws it. The world is only read
// between steps, never during one.
type Model struct {
	world  *dynamo.World
	title  string
	worldW float64
	worldH float64
	ppu    float64
	tick   time.Duration

	canvas   *Canvas
	trails   [][]trailPoint
	trailLen int

	theme  Theme
	styles styleSet

	running  bool
	pinned   bool
	showHelp bool
	message  string

	energyHistory  []float64
	kineticHistory []float64
	bounces        int
}

// NewModel builds a live view of world using cfg's box, scale, tick interval
// and trail length.
func NewModel(world *dynamo.World, cfg *config.Config, title string) Model {
	return Model{
		world:          world,
		title:          title,
		worldW:         cfg.World.Width,
		worldH:         cfg.World.Height,
		ppu:            cfg.Physics.PixelsPerUnit,
		tick:           cfg.TickInterval(),
		canvas:         NewCanvas(canvasWidth, canvasHeight),
		trails:         make([][]trailPoint, world.Len()),
		trailLen:       cfg.Display.Trail,
		theme:          Themes[0],
		styles:         newStyleSet(Themes[0]),
		running:        true,
		energyHistory:  make([]float64, 0, historyCapacity),
		kineticHistory: make([]float64, 0, historyCapacity),
	}
}

// WithTheme returns m using the named theme.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	m.styles = newStyleSet(m.theme)
	return m
}

func (m Model) Init() tea.Cmd {
	return m.nextTick()
}

func (m Model) nextTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "p":
			m.togglePin()
		case "up", "k":
			m.nudge(0, -pinNudge)
		case "down", "j":
			m.nudge(0, pinNudge)
		case "left", "h":
			m.nudge(-pinNudge, 0)
		case "right", "l":
			m.nudge(pinNudge, 0)
		case "t":
			m.theme = m.theme.next()
			m.styles = newStyleSet(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(msg.Width-statsWidth-4, 20)
		h := max(msg.Height-2, 8)
		m.canvas = NewCanvas(w, h)
		for i := range m.trails {
			m.trails[i] = m.trails[i][:0]
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.nextTick()
	}
	return m, nil
}

func (m *Model) step() {
	m.world.Step()
	report := m.world.LastReport()

	m.energyHistory = appendBounded(m.energyHistory, m.world.TotalEnergy())
	m.kineticHistory = appendBounded(m.kineticHistory, report.Kinetic)
	m.bounces += report.Bounces

	if m.trailLen <= 0 {
		return
	}
	for id := range m.trails {
		p, _ := m.world.Particle(dynamo.ParticleID(id))
		x, y := m.toCanvas(p.Position)
		m.trails[id] = append(m.trails[id], trailPoint{x, y})
		if len(m.trails[id]) > m.trailLen {
			m.trails[id] = m.trails[id][1:]
		}
	}
}

func appendBounded(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) reset() {
	m.world.Reset()
	m.pinned = false
	m.message = ""
	m.bounces = 0
	m.energyHistory = m.energyHistory[:0]
	m.kineticHistory = m.kineticHistory[:0]
	for i := range m.trails {
		m.trails[i] = m.trails[i][:0]
	}
}

// togglePin pins particle 0 where it is, or releases it.
func (m *Model) togglePin() {
	if m.pinned {
		if err := m.world.Release(0); err != nil {
			m.message = err.Error()
			return
		}
		m.pinned = false
		return
	}
	p, ok := m.world.Particle(0)
	if !ok {
		m.message = "no particle to pin"
		return
	}
	if err := m.world.Pin(0, p.Position); err != nil {
		m.message = err.Error()
		return
	}
	m.pinned = true
}

func (m *Model) nudge(dx, dy float64) {
	if !m.pinned {
		return
	}
	p, _ := m.world.Particle(0)
	pos := dynamo.Vec2{
		X: math.Min(math.Max(p.Position.X+dx, 0), m.worldW),
		Y: math.Min(math.Max(p.Position.Y+dy, 0), m.worldH),
	}
	if err := m.world.Pin(0, pos); err != nil {
		m.message = err.Error()
	}
}

// scale maps world units to canvas dots, uniformly so circles stay round.
func (m *Model) scale() float64 {
	return math.Min(float64(m.canvas.PixelWidth())/m.worldW, float64(m.canvas.PixelHeight())/m.worldH)
}

func (m *Model) toCanvas(v dynamo.Vec2) (int, int) {
	s := m.scale()
	return int(v.X * s), int(v.Y * s)
}

func (m *Model) draw() {
	m.canvas.Clear()
	s := m.scale()

	for id, trail := range m.trails {
		p, _ := m.world.Particle(dynamo.ParticleID(id))
		for _, pt := range trail {
			m.canvas.Set(pt.x, pt.y, p.Color)
		}
	}

	for id := 0; id < m.world.Len(); id++ {
		p, _ := m.world.Particle(dynamo.ParticleID(id))
		x, y := m.toCanvas(p.Position)
		r := int(math.Round(p.Radius * m.ppu * s))
		m.canvas.FillCircle(x, y, r, p.Color)
		if p.Fixed {
			m.canvas.DrawCircle(x, y, r+2, string(m.theme.Accent))
		}
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := m.styles.canvas.Render(strings.TrimRight(m.canvas.String(), "\n"))

	st := m.styles
	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := st.running.Render("RUNNING")
	if !m.running {
		status = st.paused.Render("PAUSED")
	}
	if m.pinned {
		status += st.label.Render(" · PINNED")
	}
	s.WriteString(status + "\n")

	if chart := historyChart(m.kineticHistory, "Kinetic energy"); chart != "" {
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	report := m.world.LastReport()
	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2f", m.world.Time()))
	row("Step", fmt.Sprintf("%d", m.world.Steps()))
	row("Energy", fmt.Sprintf("%.2f", m.world.TotalEnergy()))
	row("Kinetic", fmt.Sprintf("%.2f", report.Kinetic))
	row("Potential", fmt.Sprintf("%.2f", report.Potential))
	if report.Correction.Clamped {
		s.WriteString(st.label.Render("Factor") + st.warning.Render(fmt.Sprintf("%.4f clamped", report.Correction.Factor)) + "\n")
	} else {
		row("Factor", fmt.Sprintf("%.4f", report.Correction.Factor))
	}
	row("Bounces", fmt.Sprintf("%d", m.bounces))
	row("Particles", fmt.Sprintf("%d", m.world.Len()))

	if len(m.energyHistory) > 0 {
		s.WriteString("\n" + st.label.Render("Energy") + Sparkline(m.energyHistory, statsWidth-16) + "\n")
	}
	if m.message != "" {
		s.WriteString(st.warning.Render(m.message) + "\n")
	}

	s.WriteString(st.help.Render(Separator(statsWidth-4) + "\nSP:Pause N:Step R:Reset Q:Quit\nP:Pin ←↑↓→:Move T:Theme ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.stats.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Space    pause / resume
  N        single step while paused
  R        reset to the starting particles
  P        pin or release particle 0
  Arrows   move the pinned particle
  T        cycle themes
  ?        toggle this help
  Q        quit
`

// historyChart plots values, or returns "" when there is nothing to plot.
// A flat series has no vertical range to scale.
func historyChart(values []float64, caption string) string {
	if len(values) < 2 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	if hi == lo {
		return ""
	}
	return asciigraph.Plot(values, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption(caption))
}
