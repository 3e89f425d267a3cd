package config

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/inkfield/shader"
)

// ParsePalette parses exactly four hex colours ("#rrggbb" or "#rgb").
func ParsePalette(hex []string) (shader.Palette, error) {
	var p shader.Palette
	if len(hex) != len(p) {
		return p, fmt.Errorf("want %d colours, got %d", len(p), len(hex))
	}
	for i, h := range hex {
		c, err := ParseColor(h)
		if err != nil {
			return p, err
		}
		p[i] = c
	}
	return p, nil
}

// ParseColor parses one hex colour.
func ParseColor(hex string) (shader.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return shader.Color{}, fmt.Errorf("colour %q: %w", hex, err)
	}
	return FromColorful(c), nil
}

// FromColorful converts a go-colorful sRGB colour.
func FromColorful(c colorful.Color) shader.Color {
	c = c.Clamped()
	return shader.Color{R: float32(c.R), G: float32(c.G), B: float32(c.B)}
}

// ToColorful converts a shader colour, for hex output and blending.
func ToColorful(c shader.Color) colorful.Color {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// PaletteHex formats a palette as hex strings, the inverse of ParsePalette.
func PaletteHex(p shader.Palette) []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = ToColorful(c).Clamped().Hex()
	}
	return out
}
