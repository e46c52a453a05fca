package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SpriteColor converts an RGBA colour in [0, 1] to a terminal colour. The
// terminal has no alpha, so alpha darkens the colour instead.
func SpriteColor(rgba [4]float64) lipgloss.Color {
	a := clampUnit(rgba[3])
	return lipgloss.Color(hexColor(
		int(math.Round(clampUnit(rgba[0])*a*255)),
		int(math.Round(clampUnit(rgba[1])*a*255)),
		int(math.Round(clampUnit(rgba[2])*a*255)),
	))
}

func clampUnit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return math.Min(v, 1)
}

// ProgressBar renders a bar filled to percent of width.
func ProgressBar(percent float64, width int, fill lipgloss.Style) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return fill.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}

// SparklineChart renders the last width values as a one-line chart.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
