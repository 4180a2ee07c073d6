package cli

import (
	"fmt"
	"strings"
)

// FormatPercent formats a rate as a percentage, e.g. "2.7%".
func FormatPercent(value float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, value)
}

// FormatPp formats a percentage point change with an explicit plus sign, e.g. "+0.20pp".
func FormatPp(value float64, decimals int) string {
	return FormatSigned(value, decimals) + "pp"
}

// FormatSigned formats a number with a plus sign when positive.
func FormatSigned(value float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, value)
	if value > 0 {
		return "+" + s
	}
	return s
}

// FormatWeight formats a basket weight, e.g. "33.3%".
func FormatWeight(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// FormatMono right-aligns a number in a fixed-width field.
func FormatMono(value float64, decimals, width int) string {
	return fmt.Sprintf("%*.*f", width, decimals, value)
}

// Bar draws a horizontal bar of width cells scaled so that limit fills it.
// Values beyond limit are clamped.
func Bar(value, limit float64, width int) string {
	if limit <= 0 || width <= 0 || value <= 0 {
		return ""
	}
	n := int(value / limit * float64(width))
	n = min(max(n, 0), width)
	if n == 0 {
		return "▏"
	}
	return strings.Repeat("█", n)
}
