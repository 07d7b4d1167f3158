package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/chargesim/internal/config"
	"github.com/san-kum/chargesim/internal/dynamo"
	"github.com/san-kum/chargesim/internal/integrators"
	"github.com/san-kum/chargesim/internal/physics"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.DefaultConfig()

	sim := dynamo.New(
		physics.NewCoulomb(cfg.Physics.ForceConstant),
		integrators.NewSymplecticEuler(),
		dynamo.WithBoundary(physics.NewBox(cfg.World.Width, cfg.World.Height, cfg.Physics.PixelsPerUnit)),
		dynamo.WithNormalizer(physics.NewNormalizer()),
	)
	ps := []dynamo.Particle{
		{Charge: 10, Radius: 1, Position: dynamo.Vec2{X: 400, Y: 300}, Color: "#ff0000"},
		{Charge: 10, Radius: 1, Position: dynamo.Vec2{X: 200, Y: 300}, Velocity: dynamo.Vec2{X: 1}, Color: "#00ff00"},
		{Charge: 20, Radius: 2, Position: dynamo.Vec2{X: 600, Y: 150}, Color: "#0000ff"},
	}
	w, err := dynamo.NewWorld(sim, ps, cfg.Dt)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(w, cfg, "test")
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestTickStepsWorld(t *testing.T) {
	m := newTestModel(t)
	m, cmd := send(m, TickMsg{})
	if cmd == nil {
		t.Error("expected the next tick to be scheduled")
	}
	if m.world.Steps() != 1 {
		t.Errorf("expected 1 step, got %d", m.world.Steps())
	}
	if len(m.energyHistory) != 1 || len(m.trails[1]) != 1 {
		t.Error("expected history and trails to record the step")
	}
}

func TestPauseAndSingleStep(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(m, key(" "))
	if m.running {
		t.Fatal("expected paused")
	}

	m, _ = send(m, TickMsg{})
	if m.world.Steps() != 0 {
		t.Errorf("paused tick should not step, got %d steps", m.world.Steps())
	}

	m, _ = send(m, key("n"))
	if m.world.Steps() != 1 {
		t.Errorf("expected single step, got %d steps", m.world.Steps())
	}
}

func TestPinAndMove(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(m, key("p"))
	if !m.pinned {
		t.Fatal("expected particle 0 pinned")
	}

	m, _ = send(m, key("right"))
	m, _ = send(m, key("up"))
	for i := 0; i < 5; i++ {
		m, _ = send(m, TickMsg{})
	}

	p, _ := m.world.Particle(0)
	want := dynamo.Vec2{X: 410, Y: 290}
	if p.Position != want {
		t.Errorf("expected pinned particle at %v, got %v", want, p.Position)
	}
	if p.Velocity != (dynamo.Vec2{}) {
		t.Errorf("expected pinned particle at rest, got %v", p.Velocity)
	}

	m, _ = send(m, key("p"))
	p, _ = m.world.Particle(0)
	if m.pinned || p.Fixed {
		t.Error("expected particle released")
	}
}

func TestMoveWithoutPinIsIgnored(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(m, key("right"))
	p, _ := m.world.Particle(0)
	if p.Position.X != 400 {
		t.Errorf("unpinned particle moved to %v", p.Position)
	}
}

func TestReset(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(m, key("p"))
	for i := 0; i < 3; i++ {
		m, _ = send(m, TickMsg{})
	}
	m, _ = send(m, key("r"))

	if m.world.Steps() != 0 || m.pinned || len(m.energyHistory) != 0 {
		t.Error("expected a fresh world after reset")
	}
	if p, _ := m.world.Particle(0); p.Fixed {
		t.Error("expected reset to clear the pin")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := send(m, key("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestThemeCycles(t *testing.T) {
	m := newTestModel(t)
	first := m.theme.Name
	m, _ = send(m, key("t"))
	if m.theme.Name == first {
		t.Error("expected theme to change")
	}
	if m.WithTheme("minimal").theme.Name != "minimal" {
		t.Error("expected WithTheme to select by name")
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(m, tea.WindowSizeMsg{Width: 140, Height: 40})
	if m.canvas.Width != 140-statsWidth-4 || m.canvas.Height != 38 {
		t.Errorf("unexpected canvas size %dx%d", m.canvas.Width, m.canvas.Height)
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	m, _ = send(m, TickMsg{})
	m, _ = send(m, TickMsg{})

	view := m.View()
	for _, want := range []string{"TEST", "Energy", "Kinetic", "Bounces", "RUNNING"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPicker(t *testing.T) {
	var started string
	p := NewPicker([]string{"default", "duel"}, func(preset string) (Model, error) {
		started = preset
		if preset == "default" {
			return Model{}, errors.New("boom")
		}
		return newTestModel(t), nil
	})

	next, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = next.(Picker)
	if p.live != nil || p.err == nil {
		t.Fatal("expected start error to keep the menu open")
	}

	next, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p = next.(Picker)
	next, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p = next.(Picker)
	if started != "duel" || p.live == nil {
		t.Fatalf("expected duel live view, started %q", started)
	}
	if cmd == nil {
		t.Error("expected live view to start ticking")
	}

	next, _ = p.Update(TickMsg{})
	p = next.(Picker)
	if p.live.world.Steps() != 1 {
		t.Error("expected ticks forwarded to the live view")
	}
}
