// Package color provides the hex/RGB helpers used for announcement colors
// and log rendering.
package color

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB color packed as 0xRRGGBB.
type Color uint32

// Named colors.
const (
	Black       Color = 0x000000
	White       Color = 0xffffff
	Red         Color = 0xff0000
	Green       Color = 0x008000
	Blue        Color = 0x0000ff
	Yellow      Color = 0xffff00
	Orange      Color = 0xffa500
	Gold        Color = 0xffd700
	Gray        Color = 0x808080
	LightGrey   Color = 0xd3d3d3
	LightGreen  Color = 0x90ee90
	LimeGreen   Color = 0x32cd32
	SkyBlue     Color = 0x87ceeb
	DeepSkyBlue Color = 0x00bfff
	Crimson     Color = 0xdc143c
	Tomato      Color = 0xff6347
	Pink        Color = 0xffc0cb
	Purple      Color = 0x800080
	Teal        Color = 0x008080
	Silver      Color = 0xc0c0c0
	Haxball     Color = 0x8ed2ab
)

// Parse reads a color written as "#RRGGBB", "RRGGBB" or "0xRRGGBB".
//
// Postcondition: Returns the packed Color or an error for malformed input.
func Parse(s string) (Color, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "#")
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if raw == "" || len(raw) > 6 {
		return 0, fmt.Errorf("parsing color %q: want up to six hex digits", s)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing color %q: %w", s, err)
	}
	return Color(v), nil
}

// RGB splits c into its red, green and blue channels.
func (c Color) RGB() [3]int {
	return [3]int{
		int(c>>16) & 0xff,
		int(c>>8) & 0xff,
		int(c) & 0xff,
	}
}

// Shade scales every channel by (100+percent)/100, capped at 255.
// Negative percentages darken.
func (c Color) Shade(percent float64) [3]float64 {
	var out [3]float64
	for i, ch := range c.RGB() {
		v := float64(ch) * (100 + percent) / 100
		if v > 255 {
			v = 255
		}
		out[i] = v
	}
	return out
}

// IsLight reports whether the YIQ brightness of c is at least 128.
func (c Color) IsLight() bool {
	rgb := c.RGB()
	yiq := float64(rgb[0]*299+rgb[1]*587+rgb[2]*114) / 1000
	return yiq >= 128
}

// String renders c as "#rrggbb".
func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// RGBString renders a channel triple as "rgb(r,g,b)".
func RGBString(rgb [3]float64) string {
	parts := make([]string, len(rgb))
	for i, v := range rgb {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "rgb(" + strings.Join(parts, ",") + ")"
}

// Legible returns the log-friendly rendering of c: light colors are shaded
// 40% darker so they stay readable on white backgrounds.
func Legible(c Color) string {
	if c.IsLight() {
		return RGBString(c.Shade(-40))
	}
	rgb := c.RGB()
	return RGBString([3]float64{float64(rgb[0]), float64(rgb[1]), float64(rgb[2])})
}
