// Package render owns the drawing surface a chart is rendered onto.
//
// A [Surface] wraps a gonum plot model together with the raster canvas it
// is drawn to. Surfaces are obtained from a [Backend], styled through the
// theme setters (which implement style.Target), populated by a chart
// renderer, finalized once and then encoded into any number of output
// formats. [Surface.Release] frees the canvas exactly once.
//
// # Usage
//
//	s, err := render.Gonum{}.Acquire(render.Spec{Width: 3.6, Height: 2.7, DPI: 300})
//	if err != nil {
//	    return err
//	}
//	defer s.Release()
//
//	_ = s.SetBaseStyle("ticks")
//	_ = s.Add(myPlotter)
//	_ = s.Finalize(cfg.Element(), render.Labels{Title: "Values by group"})
//	_ = s.Encode(w, render.EncodeOptions{Format: "pdf"})
package render

import (
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/matzehuels/pubplot/pkg/errors"
)

// Spec describes the surface to acquire.
type Spec struct {
	Width  float64 // inches
	Height float64 // inches
	DPI    int
}

// Validate checks that every dimension is positive.
func (s Spec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.DPI <= 0 {
		return errors.New(errors.ErrCodeResource, "invalid surface spec %gx%g in at %d dpi", s.Width, s.Height, s.DPI)
	}
	return nil
}

// Backend acquires drawing surfaces.
type Backend interface {
	Acquire(spec Spec) (*Surface, error)
}

// Gonum is the default backend, drawing with gonum.org/v1/plot.
type Gonum struct{}

// Acquire allocates a plot model and a raster canvas of
// Width*DPI by Height*DPI pixels.
func (Gonum) Acquire(spec Spec) (*Surface, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	w, h := vg.Length(spec.Width)*vg.Inch, vg.Length(spec.Height)*vg.Inch
	s := &Surface{
		spec:   spec,
		plot:   plot.New(),
		canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(spec.DPI)),
		theme:  defaultTheme(),
	}
	return s, nil
}

// Surface is an exclusively owned drawing surface. It is not safe for
// concurrent use except for Release, which may race with itself.
type Surface struct {
	spec   Spec
	plot   *plot.Plot
	canvas *vgimg.Canvas
	theme  Theme

	data      []plot.Plotter
	nominal   []string
	axesFill  *fill
	finalized bool

	releaseOnce sync.Once
	released    bool
	onRelease   []func()
}

// Spec returns the acquisition spec.
func (s *Surface) Spec() Spec { return s.spec }

// Theme returns a copy of the current theme.
func (s *Surface) Theme() Theme { return s.theme }

// Released reports whether Release has run.
func (s *Surface) Released() bool { return s.released }

// OnRelease registers fn to run when the surface is released.
func (s *Surface) OnRelease(fn func()) {
	s.onRelease = append(s.onRelease, fn)
}

// Release frees the surface. Only the first call has an effect.
func (s *Surface) Release() {
	s.releaseOnce.Do(func() {
		s.released = true
		s.plot = nil
		s.canvas = nil
		s.data = nil
		for _, fn := range s.onRelease {
			fn()
		}
	})
}

func (s *Surface) usable() error {
	if s.released {
		return errors.New(errors.ErrCodeResource, "surface already released")
	}
	return nil
}

// Add queues chart plotters, drawn between the theme's background and
// foreground layers.
func (s *Surface) Add(ps ...plot.Plotter) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.data = append(s.data, ps...)
	return nil
}

// SetNominalX labels the integer x positions 0..n-1 with names.
func (s *Surface) SetNominalX(names ...string) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.nominal = append([]string(nil), names...)
	return nil
}

// SetXRange fixes the x axis range.
func (s *Surface) SetXRange(lo, hi float64) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.plot.X.Min, s.plot.X.Max = lo, hi
	return nil
}

// Scale returns the context scale factor applied to fonts and lines.
func (s *Surface) Scale() float64 { return s.theme.Scale }

// Points converts a configured size in points to a scaled length.
func (s *Surface) Points(pt float64) vg.Length {
	return vg.Points(pt * s.theme.Scale)
}
