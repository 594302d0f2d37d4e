package bar

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/pubplot/pkg/colors"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/render"
)

// bars draws one bar per aggregate from zero to the mean, with widths in
// category units.
type bars struct {
	groups  []Aggregate
	width   float64
	alpha   float64
	fill    bool
	colors  []color.Color
	outline draw.LineStyle
}

func (b *bars) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for i, g := range b.groups {
		x := float64(i)
		left, right := trX(x-b.width/2), trX(x+b.width/2)
		base, top := trY(0), trY(g.Mean)
		pts := []vg.Point{{X: left, Y: base}, {X: left, Y: top}, {X: right, Y: top}, {X: right, Y: base}}

		col := colors.WithAlpha(b.colors[i], b.alpha)
		if b.fill {
			c.FillPolygon(col, c.ClipPolygonXY(pts))
		}
		ls := b.outline
		ls.Color = col
		c.StrokeLines(ls, c.ClipLinesXY(append(pts, pts[0]))...)
	}
}

// DataRange implements plot.DataRanger. The y range always includes zero.
func (b *bars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = -0.5, float64(len(b.groups))-0.5
	for _, g := range b.groups {
		ymin, ymax = math.Min(ymin, g.Mean), math.Max(ymax, g.Mean)
	}
	return xmin, xmax, ymin, ymax
}

type meanErrors struct {
	plotter.XYs
	plotter.YErrors
}

func errorBars(s *render.Surface, gs []Aggregate, cfg *config.Node) (*plotter.YErrorBars, error) {
	pts := meanErrors{XYs: make(plotter.XYs, len(gs)), YErrors: make(plotter.YErrors, len(gs))}
	for i, g := range gs {
		pts.XYs[i] = plotter.XY{X: float64(i), Y: g.Mean}
		pts.YErrors[i].Low, pts.YErrors[i].High = g.Err, g.Err
	}
	eb, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "error bars")
	}
	eb.LineStyle = s.Stroke(render.LineStyle{Style: "-", Width: cfg.Float("chart.error_params.linewidth"), Color: color.Black})
	eb.CapWidth = s.Points(cfg.Float("chart.error_params.capsize"))
	return eb, nil
}
