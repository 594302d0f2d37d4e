package box

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/pubplot/pkg/colors"
)

// boxes draws hollow boxes in data coordinates, one per summary at
// x = 0..n-1.
type boxes struct {
	groups []Summary
	width  float64 // in category units
	alpha  float64
	colors []color.Color

	box, whisker, median draw.LineStyle
	medianColor          color.Color // nil uses the box color

	fliers      bool
	marker      draw.GlyphDrawer
	radius      vg.Length
	fliersAlpha float64
	fliersColor color.Color // nil uses the box color
}

func (b *boxes) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for i, g := range b.groups {
		x := float64(i)
		col := colors.WithAlpha(b.colors[i], b.alpha)
		left, mid, right := trX(x-b.width/2), trX(x), trX(x+b.width/2)
		capL, capR := trX(x-b.width/4), trX(x+b.width/4)
		q1, q3 := trY(g.Q1), trY(g.Q3)

		bs := b.box
		bs.Color = col
		c.StrokeLines(bs, c.ClipLinesY([]vg.Point{
			{X: left, Y: q1}, {X: right, Y: q1}, {X: right, Y: q3}, {X: left, Y: q3}, {X: left, Y: q1},
		})...)

		ws := b.whisker
		ws.Color = col
		lo, hi := trY(g.Low), trY(g.High)
		c.StrokeLines(ws, c.ClipLinesY(
			[]vg.Point{{X: mid, Y: q1}, {X: mid, Y: lo}},
			[]vg.Point{{X: mid, Y: q3}, {X: mid, Y: hi}},
		)...)
		caps := b.whisker
		caps.Color, caps.Dashes = col, nil
		c.StrokeLines(caps, c.ClipLinesY(
			[]vg.Point{{X: capL, Y: lo}, {X: capR, Y: lo}},
			[]vg.Point{{X: capL, Y: hi}, {X: capR, Y: hi}},
		)...)

		ms := b.median
		ms.Color = col
		if b.medianColor != nil {
			ms.Color = b.medianColor
		}
		med := trY(g.Median)
		c.StrokeLines(ms, c.ClipLinesY([]vg.Point{{X: left, Y: med}, {X: right, Y: med}})...)

		if !b.fliers {
			continue
		}
		fc := b.fliersColor
		if fc == nil {
			fc = b.colors[i]
		}
		gs := draw.GlyphStyle{Color: colors.WithAlpha(fc, b.fliersAlpha), Radius: b.radius, Shape: b.marker}
		for _, v := range g.Outliers {
			pt := vg.Point{X: mid, Y: trY(v)}
			if c.ContainsY(pt.Y) {
				c.DrawGlyphNoClip(gs, pt)
			}
		}
	}
}

// DataRange implements plot.DataRanger. The y range gets a 5% margin.
func (b *boxes) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = -0.5, float64(len(b.groups))-0.5
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, g := range b.groups {
		lo, hi := g.Low, g.High
		if b.fliers && len(g.Outliers) > 0 {
			lo = math.Min(lo, g.Outliers[0])
			hi = math.Max(hi, g.Outliers[len(g.Outliers)-1])
		}
		ymin, ymax = math.Min(ymin, lo), math.Max(ymax, hi)
	}
	if len(b.groups) == 0 {
		return xmin, xmax, 0, 1
	}
	pad := (ymax - ymin) * 0.05
	return xmin, xmax, ymin - pad, ymax + pad
}

// dividers draws full-height vertical lines at the given x positions.
type dividers struct {
	xs    []float64
	style draw.LineStyle
}

func (d dividers) Plot(c draw.Canvas, p *plot.Plot) {
	trX, _ := p.Transforms(&c)
	for _, x := range d.xs {
		px := trX(x)
		if c.ContainsX(px) {
			c.StrokeLine2(d.style, px, c.Min.Y, px, c.Max.Y)
		}
	}
}

func markerGlyph(code string) draw.GlyphDrawer {
	switch code {
	case "s":
		return draw.BoxGlyph{}
	case "D":
		return diamondGlyph{}
	case "^":
		return draw.PyramidGlyph{}
	case "x":
		return draw.CrossGlyph{}
	case "+":
		return draw.PlusGlyph{}
	default:
		return draw.CircleGlyph{}
	}
}

// diamondGlyph is a filled square rotated by 45 degrees.
type diamondGlyph struct{}

func (diamondGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	c.SetColor(sty.Color)
	r := sty.Radius
	var p vg.Path
	p.Move(vg.Point{X: pt.X, Y: pt.Y + r})
	p.Line(vg.Point{X: pt.X + r, Y: pt.Y})
	p.Line(vg.Point{X: pt.X, Y: pt.Y - r})
	p.Line(vg.Point{X: pt.X - r, Y: pt.Y})
	p.Close()
	c.Fill(p)
}
