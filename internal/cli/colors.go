package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// ImpactLevel classifies an impact in percentage points. Negative impacts are
// deflationary.
type ImpactLevel int

const (
	ImpactStrongDeflation ImpactLevel = iota
	ImpactDeflation
	ImpactNeutral
	ImpactInflation
	ImpactStrongInflation
)

// ClassifyImpact buckets an impact: beyond ±0.1pp is strong, within ±0.01pp neutral.
func ClassifyImpact(pp float64) ImpactLevel {
	switch {
	case pp < -0.1:
		return ImpactStrongDeflation
	case pp < -0.01:
		return ImpactDeflation
	case pp > 0.1:
		return ImpactStrongInflation
	case pp > 0.01:
		return ImpactInflation
	default:
		return ImpactNeutral
	}
}

var impactColors = map[ImpactLevel]lipgloss.Color{
	ImpactStrongDeflation: lipgloss.Color("#34D399"),
	ImpactDeflation:       lipgloss.Color("#6EE7B7"),
	ImpactNeutral:         lipgloss.Color("#A1A1AA"),
	ImpactInflation:       lipgloss.Color("#FCA5A5"),
	ImpactStrongInflation: lipgloss.Color("#F87171"),
}

// ImpactColor is green for deflationary impacts and red for inflationary ones.
func ImpactColor(pp float64) lipgloss.Color {
	return impactColors[ClassifyImpact(pp)]
}

// RenderImpact renders an impact as coloured "+0.20pp" text.
func RenderImpact(pp float64) string {
	return lipgloss.NewStyle().Foreground(ImpactColor(pp)).Render(FormatPp(pp, 2))
}

// ImpactIcon returns an arrow for the direction of an impact.
func ImpactIcon(pp float64) string {
	switch ClassifyImpact(pp) {
	case ImpactStrongDeflation, ImpactDeflation:
		return DownIcon
	case ImpactStrongInflation, ImpactInflation:
		return UpIcon
	case ImpactNeutral:
		return FlatIcon
	default:
		return FlatIcon
	}
}

type heatmapShade struct {
	background lipgloss.Color
	foreground lipgloss.Color
}

// heatmapShades are ordered from most deflationary to most inflationary.
var heatmapShades = []heatmapShade{
	{lipgloss.Color("#047857"), lipgloss.Color("#A7F3D0")},
	{lipgloss.Color("#059669"), lipgloss.Color("#A7F3D0")},
	{lipgloss.Color("#0F766E"), lipgloss.Color("#6EE7B7")},
	{lipgloss.Color("#134E4A"), lipgloss.Color("#D4D4D8")},
	{lipgloss.Color("#3F3F46"), lipgloss.Color("#D4D4D8")},
	{lipgloss.Color("#7F1D1D"), lipgloss.Color("#FCA5A5")},
	{lipgloss.Color("#991B1B"), lipgloss.Color("#FCA5A5")},
}

// HeatmapBucket returns the shade index of a heatmap cell, 0 being the most deflationary.
func HeatmapBucket(pp float64) int {
	switch {
	case pp <= -0.5:
		return 0
	case pp <= -0.2:
		return 1
	case pp <= -0.1:
		return 2
	case pp <= -0.03:
		return 3
	case pp < 0.03:
		return 4
	case pp < 0.1:
		return 5
	default:
		return 6
	}
}

// HeatmapStyle returns the cell style for an impact.
func HeatmapStyle(pp float64) lipgloss.Style {
	shade := heatmapShades[HeatmapBucket(pp)]
	return lipgloss.NewStyle().
		Background(shade.background).
		Foreground(shade.foreground).
		Padding(0, 1)
}

// ConfidenceColor maps evidence strength to green, amber or red.
func ConfidenceColor(c model.Confidence) lipgloss.Color {
	switch c {
	case model.ConfidenceHigh:
		return SuccessColor
	case model.ConfidenceMedium:
		return WarningColor
	case model.ConfidenceLow:
		return ErrorColor
	default:
		return SubtleColor
	}
}

// RenderConfidence renders a confidence level in its colour.
func RenderConfidence(c model.Confidence) string {
	return lipgloss.NewStyle().Foreground(ConfidenceColor(c)).Render(string(c))
}
