// Package colorutil converts between CSS-style hex colors and RGB channel triples.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultHex is the drawing color before the user picks one.
const DefaultHex = "#000"

// Common annotation colors.
var (
	Black = color.NRGBA{A: 255}
	Red   = color.NRGBA{R: 255, A: 255}
	Green = color.NRGBA{G: 255, A: 255}
	Blue  = color.NRGBA{B: 255, A: 255}
)

// RGB holds channels normalized to 0–1.
type RGB struct {
	R, G, B float64
}

// ParseHex accepts #rgb, #rgba, #rrggbb and #rrggbbaa.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(h) {
	case 3, 4:
		var sb strings.Builder
		for _, r := range h {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		h = sb.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ParseHexOr is ParseHex returning fallback for colors it cannot parse.
func ParseHexOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		return fallback
	}
	return c
}

// Normalized returns the 0–1 channels of a hex color.
func Normalized(s string) (RGB, error) {
	c, err := ParseHex(s)
	if err != nil {
		return RGB{}, err
	}
	return RGB{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}, nil
}

// Bytes converts normalized channels back to 0–255.
func (c RGB) Bytes() (r, g, b int) {
	return to255(c.R), to255(c.G), to255(c.B)
}

func to255(v float64) int {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return int(v*255 + 0.5)
}

// ToHex formats a color as #rrggbb.
func ToHex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
