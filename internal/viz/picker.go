package viz

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var presetInfo = map[string]string{
	"default": "ten particles, mixed charges",
	"crowd":   "forty light particles",
	"duel":    "two heavy particles, fast start",
	"rest":    "everything starts at rest",
	"heavy":   "six heavy charges, larger box",
	"uniform": "equal charges",
}

// Picker lists presets; choosing one starts a live view built by start.
type Picker struct {
	presets []string
	cursor  int
	start   func(preset string) (Model, error)
	live    *Model
	err     error
	styles  styleSet
}

func NewPicker(presets []string, start func(preset string) (Model, error)) Picker {
	return Picker{
		presets: presets,
		start:   start,
		styles:  newStyleSet(Themes[0]),
	}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.presets) == 0 {
			return p, nil
		}
		live, err := p.start(p.presets[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.live = &live
		return p, live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	if p.live != nil {
		return p.live.View()
	}

	var s strings.Builder
	s.WriteString(p.styles.header.Render("CHARGESIM") + "\n")
	for i, name := range p.presets {
		desc := p.styles.muted.Render(presetInfo[name])
		if i == p.cursor {
			s.WriteString(p.styles.cursor.Render("> "+name) + "  " + desc + "\n")
		} else {
			s.WriteString("  " + p.styles.menu.Render(name) + "  " + desc + "\n")
		}
	}
	if p.err != nil {
		s.WriteString("\n" + p.styles.warning.Render(p.err.Error()) + "\n")
	}
	s.WriteString(p.styles.help.Render("↑↓:Select Enter:Start Q:Quit"))
	return s.String()
}
