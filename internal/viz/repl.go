package viz

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/diffyq/internal/dynamo"
	"github.com/san-kum/diffyq/internal/experiment"
)

const (
	stateEquation = iota
	stateInitialT
	stateInitialX
	statePoints
	stateStep
	stateTable
)

// solvedMsg carries the comparison for the entered points.
type solvedMsg struct {
	results []*experiment.Result
	err     error
}

// REPL is the interactive front end: pick an equation, enter the initial
// condition, the query points and a step size, then read the table.
type REPL struct {
	registry    *experiment.Registry
	integrators []string
	theme       Theme
	base        dynamo.Config

	state     int
	cursor    int
	equations []string
	input     string
	notice    string

	equation string
	t0, x0   float64
	points   []float64
	h        float64

	results []*experiment.Result
	err     error
	quit    bool
}

func NewREPL(registry *experiment.Registry, base dynamo.Config, theme Theme) *REPL {
	return &REPL{
		registry:    registry,
		integrators: registry.ListIntegrators(),
		theme:       theme,
		base:        base,
		equations:   registry.ListEquations(),
	}
}

func (m *REPL) Init() tea.Cmd { return nil }

func (m *REPL) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quit = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case solvedMsg:
		m.results, m.err = msg.results, msg.err
		m.state = stateTable
	}
	return m, nil
}

func (m *REPL) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateEquation:
		return m.equationKey(msg)
	case stateTable:
		return m.intentKey(msg)
	default:
		return m.inputKey(msg)
	}
}

func (m *REPL) equationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quit = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.equations)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.equation = m.equations[m.cursor]
		m.points = m.points[:0]
		m.state = stateInitialT
	}
	return m, nil
}

func (m *REPL) intentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.state = stateEquation
		m.results, m.err, m.notice = nil, nil, ""
	case "n", "N", "q", "esc":
		m.quit = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *REPL) inputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeyEsc:
		if m.state == statePoints {
			return m.finishPoints()
		}
		m.state, m.input, m.notice = stateEquation, "", ""
		return m, nil
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if (r >= '0' && r <= '9') || strings.ContainsRune(".-+eE", r) {
				m.input += string(r)
			}
		}
	}
	return m, nil
}

// submit parses the current input for the active prompt. While entering
// points, an empty line ends the list.
func (m *REPL) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input)
	m.input = ""

	if m.state == statePoints && text == "" {
		return m.finishPoints()
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		m.notice = fmt.Sprintf("unable to parse %q as a number", text)
		return m, nil
	}
	m.notice = ""

	switch m.state {
	case stateInitialT:
		m.t0, m.state = v, stateInitialX
	case stateInitialX:
		m.x0, m.state = v, statePoints
	case statePoints:
		m.points = append(m.points, v)
	case stateStep:
		cfg := m.solverConfig(v)
		if err := cfg.Validate(); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.h = v
		return m, m.solve(cfg)
	}
	return m, nil
}

func (m *REPL) finishPoints() (tea.Model, tea.Cmd) {
	if len(m.points) == 0 {
		m.notice = "enter at least one point"
		return m, nil
	}
	m.notice = ""
	m.state = stateStep
	return m, nil
}

func (m *REPL) solverConfig(h float64) dynamo.Config {
	cfg := m.base
	cfg.StepSize = h
	if cfg.MaxStep < h {
		cfg.MaxStep = h
	}
	if cfg.MinStep > h {
		cfg.MinStep = h
	}
	return cfg
}

func (m *REPL) solve(cfg dynamo.Config) tea.Cmd {
	ecfg := experiment.Config{
		Equation: m.equation,
		T0:       m.t0,
		X0:       m.x0,
		Points:   append([]float64(nil), m.points...),
		Solver:   cfg,
	}
	registry, names := m.registry, m.integrators
	return func() tea.Msg {
		results, err := experiment.Compare(context.Background(), ecfg, registry, names)
		return solvedMsg{results: results, err: err}
	}
}

func (m *REPL) View() string {
	if m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  " + Title.Render("DIFFYQ") + "\n  " + Subtle.Render("dx/dt = f(t, x)") + "\n  " + Subtle.Render("─────────────────") + "\n\n")

	switch m.state {
	case stateEquation:
		for i, name := range m.equations {
			eq, _ := m.registry.GetEquation(name)
			if i == m.cursor {
				b.WriteString(fmt.Sprintf("  %s %s %s\n", Accent.Render("▸"), Selected.Render(fmt.Sprintf("%-10s", name)), Accent.Render("dx/dt = "+eq.Formula)))
			} else {
				b.WriteString(fmt.Sprintf("    %s %s\n", Subtle.Render(fmt.Sprintf("%-10s", name)), Subtle.Render("dx/dt = "+eq.Formula)))
			}
		}
		b.WriteString("\n  " + Hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	case stateInitialT, stateInitialX:
		b.WriteString("  " + Selected.Render("dx/dt = "+m.formula()) + "\n")
		b.WriteString("  Please enter initial condition\n")
		if m.state == stateInitialT {
			b.WriteString("  t_0 = " + m.input + "_\n")
		} else {
			b.WriteString(fmt.Sprintf("  t_0 = %g\n  x_0 = %s_\n", m.t0, m.input))
		}
		b.WriteString("\n  " + Hints("enter", "confirm", "esc", "back") + "\n")
	case statePoints:
		b.WriteString("  Please enter the t-values to solve at\n")
		for i, p := range m.points {
			b.WriteString(fmt.Sprintf("  t_%d = %g\n", i+1, p))
		}
		b.WriteString(fmt.Sprintf("  t_%d = %s_\n", len(m.points)+1, m.input))
		b.WriteString("\n  " + Hints("enter", "add", "empty enter/esc", "done") + "\n")
	case stateStep:
		b.WriteString("  Please enter step size\n  h = " + m.input + "_\n")
		b.WriteString("\n  " + Hints("enter", "solve", "esc", "back") + "\n")
	case stateTable:
		if m.err != nil {
			b.WriteString("  " + ErrorText.Render(m.err.Error()) + "\n")
		} else {
			b.WriteString(fmt.Sprintf("  %s  %s  %s\n\n", Metric("dx/dt =", m.formula()), Metric("(t0, x0) =", fmt.Sprintf("(%g, %g)", m.t0, m.x0)), Metric("h =", fmt.Sprintf("%g", m.h))))
			b.WriteString(RenderTable(m.theme, m.results...) + "\n")
		}
		b.WriteString("\n  Would you like to continue? " + Hints("y", "yes", "n", "no") + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n  " + ErrorText.Render(m.notice) + "\n")
	}
	return b.String()
}

func (m *REPL) formula() string {
	eq, err := m.registry.GetEquation(m.equation)
	if err != nil {
		return m.equation
	}
	return eq.Formula
}

// Results returns the last comparison shown.
func (m *REPL) Results() []*experiment.Result { return m.results }

func RunREPL(registry *experiment.Registry, base dynamo.Config, theme Theme) error {
	_, err := tea.NewProgram(NewREPL(registry, base, theme)).Run()
	return err
}
