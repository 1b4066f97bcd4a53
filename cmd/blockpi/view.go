package main

import (
	"fmt"
	"strings"

	"github.com/blockpi/backend/internal/experiment"
	"github.com/blockpi/backend/internal/sim"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	piStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func summary(res sim.Result) string {
	p := res.Params
	lines := []string{
		headerStyle.Render("Two-block collision run"),
		row("masses", fmt.Sprintf("%g : %g", p.M1, p.M2)),
		row("velocities", fmt.Sprintf("%g, %g", p.V1, p.V2)),
		row("collisions", fmt.Sprintf("%d", res.CollisionCount)),
	}
	if pi, ok := sim.PiApproximation(res.CollisionCount, p.M1, p.M2); ok {
		lines = append(lines, labelStyle.Render("π approximation")+piStyle.Render(fmt.Sprintf("%g", pi)))
	} else {
		lines = append(lines, row("π approximation", "n/a (m1 ≤ m2)"))
	}
	if len(res.Trajectory) > 0 {
		last := res.Trajectory[len(res.Trajectory)-1]
		lines = append(lines, row("final velocities", fmt.Sprintf("%.6f, %.6f", last.V1, last.V2)))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// positionPlot resamples both block positions onto width columns.
func positionPlot(res sim.Result, width, height int) string {
	frames := sim.SampleFrames(res, width)
	if len(frames) == 0 {
		return ""
	}
	x1 := make([]float64, len(frames))
	x2 := make([]float64, len(frames))
	for i, f := range frames {
		x1[i] = f.X1
		x2[i] = f.X2
	}
	return asciigraph.PlotMany([][]float64{x1, x2},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("block positions (upper: block 1, lower: block 2)"),
	)
}

func piTable(rows []experiment.Row) string {
	lines := []string{headerStyle.Render(fmt.Sprintf("%-12s %-12s %s", "ratio", "collisions", "π relation"))}
	for _, r := range rows {
		rel := r.PiRelation
		if r.HitEventCap {
			rel += " (capped)"
		}
		lines = append(lines, fmt.Sprintf("%-12g %-12d %s", r.Ratio, r.Collisions, piStyle.Render(rel)))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
