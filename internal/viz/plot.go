// Package viz renders trajectories in the terminal: static per-state
// plots for stored runs and a live stepping view.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// PlotTrajectory renders one graph per state column, in column order.
func PlotTrajectory(times []float64, states [][]float64, ids []string) string {
	if len(states) == 0 {
		return captionStyle.Render("empty trajectory")
	}

	var b strings.Builder
	span := fmt.Sprintf("t = %g .. %g  (%d samples)", times[0], times[len(times)-1], len(times))
	b.WriteString(headerStyle.Render(span))
	b.WriteString("\n")

	for col, id := range ids {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][col]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(id),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	return b.String()
}

// Sparkline renders a compact single graph, used by the live view.
func Sparkline(data []float64, caption string, width, height int) string {
	if len(data) < 2 {
		return captionStyle.Render(caption + ": collecting...")
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
