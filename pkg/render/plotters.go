package render

import (
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Dashes returns the dash pattern for a line style, proportional to the
// line width.
func Dashes(style string, width vg.Length) []vg.Length {
	if width <= 0 {
		width = vg.Points(1)
	}
	scaled := func(ds ...float64) []vg.Length {
		out := make([]vg.Length, len(ds))
		for i, d := range ds {
			out[i] = vg.Length(d) * width
		}
		return out
	}
	switch style {
	case "--", "dashed":
		return scaled(3.7, 1.6)
	case ":", "dotted":
		return scaled(1, 1.65)
	case "-.", "dashdot":
		return scaled(6.4, 1.6, 1, 1.6)
	default:
		return nil
	}
}

// Stroke converts a LineStyle to a scaled gonum line style.
func (s *Surface) Stroke(l LineStyle) draw.LineStyle {
	w := s.Points(l.Width)
	return draw.LineStyle{Color: l.Color, Width: w, Dashes: Dashes(l.Style, w)}
}

// Font returns the theme font at size points before scaling.
func (s *Surface) Font(size float64) font.Font {
	return font.Font{
		Typeface: "Liberation",
		Variant:  fontVariant(s.theme.FontFamily),
		Size:     s.Points(size),
	}
}

func fontVariant(family string) font.Variant {
	switch strings.ToLower(family) {
	case "serif", "times", "times new roman", "liberation serif":
		return "Serif"
	case "monospace", "mono", "courier", "liberation mono":
		return "Mono"
	default:
		return "Sans"
	}
}

// fill paints the data area.
type fill struct{ color color.Color }

func (f *fill) Plot(c draw.Canvas, _ *plot.Plot) {
	if f.color == nil {
		return
	}
	c.SetColor(f.color)
	c.Fill(c.Rectangle.Path())
}

// frame strokes all four sides of the data area.
type frame struct{ style draw.LineStyle }

func (f frame) Plot(c draw.Canvas, _ *plot.Plot) {
	lo, hi := c.Min, c.Max
	c.StrokeLines(f.style, []vg.Point{
		{X: lo.X, Y: lo.Y},
		{X: hi.X, Y: lo.Y},
		{X: hi.X, Y: hi.Y},
		{X: lo.X, Y: hi.Y},
		{X: lo.X, Y: lo.Y},
	})
}

// innerTicks draws the inward part of tick marks along the bottom and left
// edges of the data area. Outward parts are drawn by the gonum axes.
type innerTicks struct {
	x, y       TickStyle
	xlen, ylen [2]vg.Length // major, minor
	xw, yw     [2]vg.Length
}

func (t innerTicks) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	if inward(t.x.Direction) {
		for _, tk := range p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max) {
			x := trX(tk.Value)
			if !c.ContainsX(x) {
				continue
			}
			i := minorIndex(tk)
			sty := draw.LineStyle{Color: t.x.Color, Width: t.xw[i]}
			c.StrokeLine2(sty, x, c.Min.Y, x, c.Min.Y+t.xlen[i])
		}
	}
	if inward(t.y.Direction) {
		for _, tk := range p.Y.Tick.Marker.Ticks(p.Y.Min, p.Y.Max) {
			y := trY(tk.Value)
			if !c.ContainsY(y) {
				continue
			}
			i := minorIndex(tk)
			sty := draw.LineStyle{Color: t.y.Color, Width: t.yw[i]}
			c.StrokeLine2(sty, c.Min.X, y, c.Min.X+t.ylen[i], y)
		}
	}
}

func inward(dir string) bool { return dir == "in" || dir == "inout" }

func minorIndex(t plot.Tick) int {
	if t.IsMinor() {
		return 1
	}
	return 0
}

// ticker filters minor ticks and rewrites hyphen-minus signs.
type ticker struct {
	plot.Ticker
	minor        bool
	unicodeMinus bool
}

func (t ticker) Ticks(min, max float64) []plot.Tick {
	in := t.Ticker.Ticks(min, max)
	out := make([]plot.Tick, 0, len(in))
	for _, tk := range in {
		if tk.IsMinor() && !t.minor {
			continue
		}
		if t.unicodeMinus && strings.HasPrefix(tk.Label, "-") {
			tk.Label = "−" + tk.Label[1:]
		}
		out = append(out, tk)
	}
	return out
}
