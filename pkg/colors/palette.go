package colors

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPalette is the palette used when none is configured.
const DefaultPalette = "deep"

var palettes = map[string][]string{
	"deep":       {"#4c72b0", "#dd8452", "#55a868", "#c44e52", "#8172b3", "#937860", "#da8bc3", "#8c8c8c", "#ccb974", "#64b5cd"},
	"muted":      {"#4878d0", "#ee854a", "#6acc64", "#d65f5f", "#956cb4", "#8c613c", "#dc7ec0", "#797979", "#d5bb67", "#82c6e2"},
	"bright":     {"#023eff", "#ff7c00", "#1ac938", "#e8000b", "#8b2be2", "#9f4800", "#f14cc1", "#a3a3a3", "#ffc400", "#00d7ff"},
	"dark":       {"#001c7f", "#b1400d", "#12711c", "#8c0800", "#591e71", "#592f0d", "#a23582", "#3c3c3c", "#b8850a", "#006374"},
	"colorblind": {"#0173b2", "#de8f05", "#029e73", "#d55e00", "#cc78bc", "#ca9161", "#fbafe4", "#949494", "#ece133", "#56b4e9"},
	"gray":       {"#000000", "#404040", "#808080", "#a0a0a0", "#c0c0c0"},
}

// PaletteNames returns the known palette names, sorted.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Palette returns the colors of a named palette.
func Palette(name string) ([]color.Color, error) {
	hexes, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q", name)
	}
	out := make([]color.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", name, err)
		}
		out[i] = toNRGBA(c)
	}
	return out, nil
}

// Cycle returns n colors from the palette where the color index restarts
// every period entries. A period <= 0 cycles over the whole palette.
func Cycle(p []color.Color, n, period int) []color.Color {
	if len(p) == 0 {
		return nil
	}
	out := make([]color.Color, n)
	for i := range out {
		idx := i
		if period > 0 {
			idx = i % period
		}
		out[i] = p[idx%len(p)]
	}
	return out
}
