package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/reachset/internal/reach"
)

const (
	plotHeight = 12
	plotWidth  = 70
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	chartStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 2)
	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// PlotVar renders the lower and upper envelope of one variable across
// the flowpipe as two stacked series.
func PlotVar(pipe *reach.Flowpipe, varIdx int) string {
	if varIdx < 0 || varIdx >= len(pipe.Vars) || len(pipe.Steps) == 0 {
		return ""
	}

	lo := make([]float64, len(pipe.Steps))
	hi := make([]float64, len(pipe.Steps))
	for i, step := range pipe.Steps {
		lo[i] = step.BoxLo[varIdx]
		hi[i] = step.BoxHi[varIdx]
	}

	chart := asciigraph.PlotMany(
		[][]float64{lo, hi},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.Caption(fmt.Sprintf("%s bounds per step", pipe.Vars[varIdx])),
	)

	var s strings.Builder
	s.WriteString(titleStyle.Render(pipe.Vars[varIdx]) + "\n")
	s.WriteString(chartStyle.Render(chart) + "\n")
	s.WriteString(legendStyle.Render("  lower: red   upper: green") + "\n")
	return s.String()
}

// PlotAll renders every variable in order.
func PlotAll(pipe *reach.Flowpipe) string {
	var s strings.Builder
	for i := range pipe.Vars {
		s.WriteString(PlotVar(pipe, i))
		s.WriteString("\n")
	}
	return s.String()
}

// Summary prints the final interval hull, one line per variable.
func Summary(pipe *reach.Flowpipe) string {
	if len(pipe.Steps) == 0 {
		return ""
	}
	final := pipe.Steps[len(pipe.Steps)-1]
	var s strings.Builder
	s.WriteString(titleStyle.Render(fmt.Sprintf("after %d steps", final.Step)) + "\n")
	for i, v := range pipe.Vars {
		s.WriteString(legendStyle.Render(fmt.Sprintf("  %-10s", v)))
		s.WriteString(fmt.Sprintf("[%10.6f, %10.6f]\n", final.BoxLo[i], final.BoxHi[i]))
	}
	return s.String()
}
