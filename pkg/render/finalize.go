package render

import (
	"image/color"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/errors"
)

// Labels are the dataset-derived defaults for null element labels.
type Labels struct {
	Title  string
	XLabel string
	YLabel string
}

// Finalized reports whether Finalize has completed.
func (s *Surface) Finalized() bool { return s.finalized }

// Finalize applies the theme and element configuration and assembles the
// plot layers. It runs once; the surface can then be encoded.
func (s *Surface) Finalize(el config.ElementParams, def Labels) error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.finalized {
		return errors.New(errors.ErrCodeRender, "surface already finalized")
	}
	p, t := s.plot, s.theme

	p.Title.Text = pick(el.Title, def.Title)
	p.X.Label.Text = pick(el.XLabel, def.XLabel)
	p.Y.Label.Text = pick(el.YLabel, def.YLabel)
	p.BackgroundColor = t.Background

	p.Title.TextStyle.Font = s.Font(t.FontSize * 1.2)
	p.Title.TextStyle.Color = textDark
	p.Title.Padding = s.Points(t.FontSize * 0.5)

	if len(s.nominal) > 0 {
		p.NominalX(s.nominal...)
	}
	if err := s.applyTicks(el.Ticks); err != nil {
		return err
	}

	for _, ax := range []struct {
		a  *plot.Axis
		ts TickStyle
	}{{&p.X, t.XTicks}, {&p.Y, t.YTicks}} {
		a := ax.a
		a.Padding = 0
		a.Label.TextStyle.Font = s.Font(t.FontSize)
		a.Label.TextStyle.Color = textDark
		a.Label.Padding = s.Points(t.FontSize * 0.4)
		a.Tick.Label.Font = s.Font(t.FontSize * 0.9)
		a.Tick.Label.Color = textDark
		// Axis lines are drawn by the frame layer.
		a.LineStyle = draw.LineStyle{Color: color.Transparent, Width: s.Points(t.FrameWidth)}
		a.Tick.LineStyle = draw.LineStyle{Color: ax.ts.Color, Width: s.Points(ax.ts.Width)}
		switch ax.ts.Direction {
		case "out":
			a.Tick.Length = s.Points(ax.ts.Length)
		case "inout":
			a.Tick.Length = s.Points(ax.ts.Length / 2)
		default:
			a.Tick.Length = 0
		}
		a.Tick.Marker = ticker{Ticker: a.Tick.Marker, minor: ax.ts.Minor, unicodeMinus: t.UnicodeMinus}
	}

	s.axesFill = &fill{color: t.AxesBackground}
	p.Add(s.axesFill)
	if t.Grid {
		g := plotter.NewGrid()
		g.Vertical = s.Stroke(t.GridLine)
		g.Horizontal = s.Stroke(t.GridLine)
		if len(s.nominal) > 0 {
			g.Vertical.Color = nil
		}
		p.Add(g)
	}
	p.Add(s.data...)
	if t.Frame {
		p.Add(frame{style: draw.LineStyle{Color: t.FrameColor, Width: s.Points(t.FrameWidth)}})
	}
	p.Add(s.innerTicks())
	if len(el.Annotations) > 0 {
		ann, err := s.annotations(el.Annotations)
		if err != nil {
			return err
		}
		p.Add(ann)
	}

	if lim := el.Ticks.XLim; len(lim) == 2 {
		p.X.Min, p.X.Max = lim[0], lim[1]
	}
	if lim := el.Ticks.YLim; len(lim) == 2 {
		p.Y.Min, p.Y.Max = lim[0], lim[1]
	}

	s.finalized = true
	return nil
}

func pick(v *string, def string) string {
	if v != nil {
		return *v
	}
	return def
}

func (s *Surface) innerTicks() innerTicks {
	t := s.theme
	return innerTicks{
		x: t.XTicks, y: t.YTicks,
		xlen: tickLengths(s, t.XTicks), ylen: tickLengths(s, t.YTicks),
		xw: [2]vg.Length{s.Points(t.XTicks.Width), s.Points(t.XTicks.MinorWidth)},
		yw: [2]vg.Length{s.Points(t.YTicks.Width), s.Points(t.YTicks.MinorWidth)},
	}
}

func tickLengths(s *Surface, ts TickStyle) [2]vg.Length {
	major, minor := ts.Length, ts.MinorLength
	if ts.Direction == "inout" {
		major, minor = major/2, minor/2
	}
	return [2]vg.Length{s.Points(major), s.Points(minor)}
}

// applyTicks replaces tick positions and labels from the element config.
func (s *Surface) applyTicks(tp config.TickParams) error {
	p := s.plot
	if err := setTicks(&p.X, "xticks", tp.XTicks, tp.XTickLabels, s.nominal); err != nil {
		return err
	}
	return setTicks(&p.Y, "yticks", tp.YTicks, tp.YTickLabels, nil)
}

func setTicks(a *plot.Axis, name string, pos []float64, labels []string, nominal []string) error {
	switch {
	case pos == nil && labels == nil:
		return nil
	case pos == nil && len(nominal) > 0:
		pos = make([]float64, len(nominal))
		for i := range pos {
			pos[i] = float64(i)
		}
	case pos == nil:
		return errors.New(errors.ErrCodeRender, "%slabels requires %s positions", name[:5], name)
	}
	if labels != nil && len(labels) != len(pos) {
		return errors.New(errors.ErrCodeRender, "%slabels has %d entries for %d ticks", name[:5], len(labels), len(pos))
	}
	ticks := make(plot.ConstantTicks, len(pos))
	for i, v := range pos {
		l := strconv.FormatFloat(v, 'g', -1, 64)
		if labels != nil {
			l = labels[i]
		}
		ticks[i] = plot.Tick{Value: v, Label: l}
	}
	a.Tick.Marker = ticks
	return nil
}

// rangeless hides DataRange so annotations never widen the axes.
type rangeless struct{ plot.Plotter }

func (s *Surface) annotations(as []config.Annotation) (plot.Plotter, error) {
	xys := make(plotter.XYs, len(as))
	texts := make([]string, len(as))
	for i, a := range as {
		xys[i].X, xys[i].Y = a.X, a.Y
		texts[i] = a.Text
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "annotations")
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Font = s.Font(s.theme.FontSize)
		l.TextStyle[i].Color = textDark
	}
	return rangeless{l}, nil
}
