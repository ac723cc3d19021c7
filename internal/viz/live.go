package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cartsim/internal/cartpole"
	"github.com/san-kum/cartsim/internal/dynamo"
)

const (
	canvasWidth     = 60
	canvasHeight    = 18
	historyCapacity = 600
)

type tickMsg time.Time

// liveModel animates a cart-pole in the terminal while stepping it in
// real time.
type liveModel struct {
	sim     *cartpole.Model
	initial dynamo.State
	dt      float64
	t       float64
	stepsPF int
	fps     int
	running bool
	canvas  *Canvas
	energy  []float64
}

func newLiveModel(sim *cartpole.Model, dt float64, fps int) liveModel {
	stepsPF := int(1.0 / (dt * float64(fps)))
	if stepsPF < 1 {
		stepsPF = 1
	}
	return liveModel{
		sim:     sim,
		initial: sim.State(),
		dt:      dt,
		stepsPF: stepsPF,
		fps:     fps,
		running: true,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		energy:  make([]float64, 0, historyCapacity),
	}
}

func (m liveModel) Init() tea.Cmd {
	return m.tick()
}

func (m liveModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			_ = m.sim.SetState(m.initial)
			_ = m.sim.SetForce(0)
			m.t = 0
			m.energy = m.energy[:0]
		case "left":
			_ = m.sim.SetForce(m.sim.Force() - 0.5)
		case "right":
			_ = m.sim.SetForce(m.sim.Force() + 0.5)
		case "0":
			_ = m.sim.SetForce(0)
		}
		return m, nil

	case tickMsg:
		if m.running {
			for i := 0; i < m.stepsPF; i++ {
				if err := m.sim.Advance(m.dt); err != nil {
					m.running = false
					break
				}
				m.t += m.dt
			}
			if len(m.energy) == historyCapacity {
				m.energy = m.energy[1:]
			}
			m.energy = append(m.energy, m.sim.Energy(m.sim.State()))
		}
		return m, m.tick()
	}

	return m, nil
}

func (m liveModel) View() string {
	state := m.sim.State()

	m.canvas.Clear()
	m.canvas.DrawCartPole(state, m.sim.PendulumLength())

	status := statusRunning.Render("running")
	if !m.running {
		status = statusPaused.Render("paused")
	}

	var stats strings.Builder
	stats.WriteString(headerStyle.Render("cart-pole") + "  " + status + "\n")
	rows := []struct {
		label string
		value float64
	}{
		{"t", m.t},
		{"x", state[cartpole.IdxPos]},
		{"theta", state[cartpole.IdxTheta]},
		{"dx", state[cartpole.IdxVel]},
		{"dtheta", state[cartpole.IdxOmega]},
		{"force", m.sim.Force()},
		{"energy", m.sim.Energy(state)},
	}
	for _, row := range rows {
		stats.WriteString(labelStyle.Render(row.label))
		stats.WriteString(valueStyle.Render(fmt.Sprintf("%+.4f", row.value)))
		stats.WriteByte('\n')
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(stats.String()),
	)

	help := helpStyle.Render("space pause  r reset  left/right push cart  0 zero force  q quit")
	return body + "\n" + help + "\n"
}

// RunLive starts the interactive live view and blocks until it exits.
func RunLive(sim *cartpole.Model, dt float64, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	p := tea.NewProgram(newLiveModel(sim, dt, fps))
	_, err := p.Run()
	return err
}
