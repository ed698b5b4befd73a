package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ratenet/internal/dynamo"
)

const (
	historyCapacity = 600
	stepsPerFrame   = 10
	maxLivePlots    = 4
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Live steps a compiled system in real time and draws per-state readouts
// with sparklines.
type Live struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	ids        []string
	title      string

	state   dynamo.State
	initial dynamo.State
	t       float64
	dt      float64
	fps     int

	running bool
	history [][]float64
}

func NewLive(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, ids []string, dt float64, fps int, title string) Live {
	if fps <= 0 {
		fps = 30
	}
	return Live{
		dyn:        dyn,
		integrator: integ,
		ids:        ids,
		title:      title,
		state:      x0.Clone(),
		initial:    x0.Clone(),
		dt:         dt,
		fps:        fps,
		running:    true,
		history:    make([][]float64, len(ids)),
	}
}

func (m Live) Init() tea.Cmd {
	return m.tick()
}

func (m Live) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.state = m.initial.Clone()
			m.t = 0
			m.history = make([][]float64, len(m.ids))
		}
	case TickMsg:
		if m.running {
			for i := 0; i < stepsPerFrame; i++ {
				m.state = m.integrator.Step(m.dyn, m.state, m.t, m.dt)
				m.t += m.dt
				if !m.state.IsValid() {
					m.running = false
					break
				}
			}
			for i := range m.ids {
				m.history[i] = append(m.history[i], m.state[i])
				if len(m.history[i]) > historyCapacity {
					m.history[i] = m.history[i][1:]
				}
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Live) View() string {
	var b strings.Builder

	status := "running"
	if !m.running {
		status = "paused"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  t=%.4f  [%s]", m.title, m.t, status)))
	b.WriteString("\n\n")

	for i, id := range m.ids {
		b.WriteString(labelStyle.Render(id))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%12.6f", m.state[i])))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	plots := len(m.ids)
	if plots > maxLivePlots {
		plots = maxLivePlots
	}
	for i := 0; i < plots; i++ {
		b.WriteString(Sparkline(m.history[i], m.ids[i], 60, 6))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause · r reset · q quit"))
	b.WriteString("\n")
	return b.String()
}

// RunLive starts the live view and blocks until the user quits.
func RunLive(m Live) error {
	_, err := tea.NewProgram(m).Run()
	return err
}
