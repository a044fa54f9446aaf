// Package tui renders a solved trajectory as a scrolling terminal plot.
// The run itself happens up front through the real solver (events,
// projection and all); the viewer only replays the dense solution.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/odyn/internal/ode"
)

var (
	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("242")).
		Padding(0, 1)
	title  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	status = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

const frameRate = 30

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type Model struct {
	name   string
	sol    *ode.Solution
	comp   int
	grid   []float64 // uniform replay times
	frame  int
	window []float64
	paused bool
	done   bool
	width  int
	height int
}

// NewModel prepares a replay of the solution's comp-th component over a
// uniform grid of frames.
func NewModel(name string, sol *ode.Solution, comp, frames int) Model {
	grid := make([]float64, frames)
	t0 := sol.Times[0]
	tf, _ := sol.Last()
	for i := range grid {
		grid[i] = t0 + (tf-t0)*float64(i)/float64(frames-1)
	}
	return Model{
		name:   name,
		sol:    sol,
		comp:   comp,
		grid:   grid,
		width:  80,
		height: 20,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.frame = 0
			m.window = m.window[:0]
			m.done = false
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		if !m.paused && !m.done {
			x, err := m.sol.At(m.grid[m.frame])
			if err == nil {
				m.window = append(m.window, x[m.comp])
			}
			if span := m.plotWidth(); len(m.window) > span {
				m.window = m.window[len(m.window)-span:]
			}
			m.frame++
			if m.frame >= len(m.grid) {
				m.done = true
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) plotWidth() int {
	w := m.width - 12
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) View() string {
	if len(m.window) < 2 {
		return title.Render(m.name) + "\n"
	}
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	if h > 20 {
		h = 20
	}
	plot := asciigraph.Plot(m.window,
		asciigraph.Height(h),
		asciigraph.Width(m.plotWidth()),
	)

	t := m.grid[m.frame-1]
	line := fmt.Sprintf("t=%-10.4f x[%d]=%-12.6g", t, m.comp, m.window[len(m.window)-1])
	if m.paused {
		line += "  [paused]"
	}
	if m.done {
		line += fmt.Sprintf("  [%s]", m.sol.Status)
	}

	return title.Render(m.name) + "\n" +
		panel.Render(plot) + "\n" +
		status.Render(line+"   space pause - r replay - q quit") + "\n"
}

// Run replays the solution in the terminal until the user quits.
func Run(name string, sol *ode.Solution, comp int) error {
	if sol.Len() < 2 {
		return fmt.Errorf("trajectory too short to replay")
	}
	frames := 4 * sol.Len()
	if frames > 2000 {
		frames = 2000
	}
	if frames < 60 {
		frames = 60
	}
	p := tea.NewProgram(NewModel(name, sol, comp, frames))
	_, err := p.Run()
	return err
}
