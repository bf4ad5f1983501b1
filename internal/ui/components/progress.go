package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/ui/theme"
)

// ProgressBar is a horizontal bar with an optional label and suffix.
type ProgressBar struct {
	Label   string
	Percent float64 // 0..1
	Suffix  string
	Width   int
	Fill    color.Color
}

func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, Width: width, Fill: theme.Secondary}
}

func (p ProgressBar) View() string {
	var out string
	if p.Label != "" {
		out = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	suffix := p.Suffix
	if suffix == "" {
		suffix = fmt.Sprintf("%3d%%", int(p.Percent*100))
	}
	suffix = "  " + suffix

	barWidth := max(p.Width-lipgloss.Width(out)-lipgloss.Width(suffix), 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	out += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	out += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	return out + lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
}
