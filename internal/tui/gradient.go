package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ApplyGradient colors each rune of a single line, interpolating from
// startColor to endColor. Invalid hex colors leave the text unstyled.
func ApplyGradient(text string, startColor, endColor lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}

	startRGB, err := hexToRGB(string(startColor))
	if err != nil {
		return text
	}
	endRGB, err := hexToRGB(string(endColor))
	if err != nil {
		return text
	}

	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := rgb{
			r: uint8(math.Round(lerp(float64(startRGB.r), float64(endRGB.r), t))),
			g: uint8(math.Round(lerp(float64(startRGB.g), float64(endRGB.g), t))),
			b: uint8(math.Round(lerp(float64(startRGB.b), float64(endRGB.b), t))),
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.hex())).Bold(true).Render(string(r)))
	}
	return b.String()
}

type rgb struct {
	r, g, b uint8
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

func hexToRGB(hex string) (rgb, error) {
	hex = strings.TrimPrefix(hex, "#")

	// Handle short hex (e.g., "FFF")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	if len(hex) != 6 {
		return rgb{}, fmt.Errorf("invalid hex color: %s", hex)
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb{}, err
	}

	return rgb{
		r: uint8(val >> 16),
		g: uint8((val >> 8) & 0xFF),
		b: uint8(val & 0xFF),
	}, nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
