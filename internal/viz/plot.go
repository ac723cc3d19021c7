package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// StateLabels maps state indices to plot captions.
var StateLabels = [4]string{
	"x (cart position)",
	"theta (pendulum angle)",
	"dx (cart velocity)",
	"dtheta (angular velocity)",
}

// PlotSeries renders one state component over time as an ASCII graph.
func PlotSeries(states [][]float64, idx int, width, height int) string {
	if len(states) == 0 || idx >= len(states[0]) {
		return ""
	}

	data := make([]float64, len(states))
	for i := range states {
		data[i] = states[i][idx]
	}

	caption := fmt.Sprintf("x%d vs time", idx)
	if idx < len(StateLabels) {
		caption = StateLabels[idx]
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PhasePortrait renders a 2D projection of the trajectory on a Braille
// canvas, one state component against another.
func PhasePortrait(states [][]float64, xIdx, yIdx, width, height int) string {
	if len(states) == 0 || xIdx >= len(states[0]) || yIdx >= len(states[0]) {
		return ""
	}

	minX, maxX := states[0][xIdx], states[0][xIdx]
	minY, maxY := states[0][yIdx], states[0][yIdx]
	for _, s := range states {
		minX = min(minX, s[xIdx])
		maxX = max(maxX, s[xIdx])
		minY = min(minY, s[yIdx])
		maxY = max(maxY, s[yIdx])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	canvas := NewCanvas(width, height)
	subW := float64(width*2 - 1)
	subH := float64(height*4 - 1)

	for _, s := range states {
		px := int((s[xIdx] - minX) / rangeX * subW)
		py := int((maxY - s[yIdx]) / rangeY * subH)
		canvas.Set(px, py)
	}

	var sb strings.Builder
	sb.WriteString(canvas.String())
	sb.WriteString(fmt.Sprintf("x: [%.3f, %.3f]  y: [%.3f, %.3f]\n", minX, maxX, minY, maxY))
	return sb.String()
}
