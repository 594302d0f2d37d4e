// Package colors parses color specifications and provides named palettes.
//
// Accepted color forms:
//   - CSS/SVG color names ("black", "steelblue")
//   - hex strings ("#1f77b4", "#fff")
//   - grayscale levels as decimal strings in [0, 1] ("0.8")
//   - palette references "C0" through "C9" into the deep palette
//   - "none" for a transparent color
package colors

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Parse converts a color specification into a color.
func Parse(spec string) (color.Color, error) {
	s := strings.ToLower(strings.TrimSpace(spec))
	if s == "" {
		return nil, fmt.Errorf("empty color")
	}
	if s == "none" || s == "transparent" {
		return color.Transparent, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(expandHex(s))
		if err != nil {
			return nil, fmt.Errorf("invalid hex color %q", spec)
		}
		return toNRGBA(c), nil
	}
	if len(s) == 2 && s[0] == 'c' && s[1] >= '0' && s[1] <= '9' {
		p, _ := Palette(DefaultPalette)
		return p[int(s[1]-'0')%len(p)], nil
	}
	if level, err := strconv.ParseFloat(s, 64); err == nil {
		if level < 0 || level > 1 {
			return nil, fmt.Errorf("gray level %q outside [0, 1]", spec)
		}
		v := uint8(level*255 + 0.5)
		return color.NRGBA{R: v, G: v, B: v, A: 255}, nil
	}
	return nil, fmt.Errorf("unknown color %q", spec)
}

// Valid reports whether spec parses as a color.
func Valid(spec string) bool {
	_, err := Parse(spec)
	return err == nil
}

// WithAlpha returns c with its opacity replaced by alpha in [0, 1].
func WithAlpha(c color.Color, alpha float64) color.Color {
	if c == nil {
		return nil
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A)*alpha + 0.5)
	return n
}

// expandHex turns "#abc" into "#aabbcc".
func expandHex(s string) string {
	if len(s) != 4 {
		return s
	}
	return "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
