package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/reachset/internal/reach"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model walks a computed flowpipe step by step.
type Model struct {
	pipe      *reach.Flowpipe
	modelName string
	step      int
	selected  int
	playing   bool
}

func NewModel(pipe *reach.Flowpipe, modelName string) Model {
	return Model{
		pipe:      pipe,
		modelName: modelName,
		playing:   true,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/5, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "r":
			m.step = 0
		case "[":
			m.playing = false
			if m.step > 0 {
				m.step--
			}
		case "]":
			m.playing = false
			if m.step < len(m.pipe.Steps)-1 {
				m.step++
			}
		case "tab":
			m.selected = (m.selected + 1) % len(m.pipe.Vars)
		}
	case TickMsg:
		if m.playing && m.step < len(m.pipe.Steps)-1 {
			m.step++
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.pipe.Steps) == 0 {
		return "empty flowpipe\n"
	}

	cur := m.pipe.Steps[m.step]

	chartView := m.chart()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.modelName)) + "\n")
	status := "PLAYING"
	if !m.playing {
		status = "PAUSED"
	}
	if m.step == len(m.pipe.Steps)-1 {
		status = "DONE"
	}
	s.WriteString(status + "\n\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d / %d", cur.Step, len(m.pipe.Steps)-1)) + "\n")
	s.WriteString(labelStyle.Render("Bundles") + valueStyle.Render(fmt.Sprintf("%d", len(cur.Bundles))) + "\n\n")
	s.WriteString("BOUNDS\n")
	for i, v := range m.pipe.Vars {
		line := fmt.Sprintf("%-8s [%9.4f, %9.4f]", v, cur.BoxLo[i], cur.BoxHi[i])
		if i == m.selected {
			s.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	s.WriteString(helpStyle.Render("\nSP:Pause R:Restart Q:Quit\n[ ]:Step  Tab:Variable"))

	return lipgloss.JoinHorizontal(lipgloss.Top, chartView, statsStyle.Render(s.String()))
}

// chart plots the selected variable's envelope up to the current step.
func (m Model) chart() string {
	n := m.step + 1
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := 0; i < n; i++ {
		lo[i] = m.pipe.Steps[i].BoxLo[m.selected]
		hi[i] = m.pipe.Steps[i].BoxHi[m.selected]
	}
	if n < 2 {
		lo = append(lo, lo[0])
		hi = append(hi, hi[0])
	}
	plot := asciigraph.PlotMany(
		[][]float64{lo, hi},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.Caption(m.pipe.Vars[m.selected]),
	)
	return chartStyle.Render(plot)
}
