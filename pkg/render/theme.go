package render

import (
	"fmt"
	"image/color"

	"github.com/matzehuels/pubplot/pkg/colors"
	"github.com/matzehuels/pubplot/pkg/errors"
)

// TickStyle configures the tick marks of one axis. Sizes are in points
// before context scaling.
type TickStyle struct {
	Direction   string // "in", "out", "inout" or "" for none
	Width       float64
	Length      float64
	Color       color.Color
	Minor       bool
	MinorWidth  float64
	MinorLength float64
}

// LineStyle is a stroke in points before context scaling.
type LineStyle struct {
	Style string // "-", "--", ":", "-." or their long names
	Width float64
	Color color.Color
}

// Theme is the accumulated effect of the applied style directives.
type Theme struct {
	Base           string
	Context        string
	Scale          float64
	FontFamily     string
	FontSize       float64
	Background     color.Color // figure
	AxesBackground color.Color
	Frame          bool
	FrameWidth     float64
	FrameColor     color.Color
	XTicks, YTicks TickStyle
	Grid           bool
	GridLine       LineStyle
	UnicodeMinus   bool
}

var (
	darkAxes  = color.NRGBA{R: 0xea, G: 0xea, B: 0xf2, A: 0xff}
	lightGray = color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	textDark  = color.NRGBA{R: 0x26, G: 0x26, B: 0x26, A: 0xff}
)

func defaultTheme() Theme {
	t := Theme{Context: "paper", Scale: 1, FontFamily: "sans-serif", FontSize: 6}
	t.applyBase("ticks")
	return t
}

// applyBase resets the base-style dependent parts of the theme.
func (t *Theme) applyBase(name string) {
	t.Base = name
	t.Background = color.White
	t.AxesBackground = color.White
	t.Frame = true
	t.FrameWidth = 1.25
	t.FrameColor = textDark
	t.XTicks = TickStyle{Color: textDark, Width: 1.25, Length: 6, MinorWidth: 1, MinorLength: 4}
	t.Grid = false
	t.GridLine = LineStyle{Style: "-", Width: 1, Color: lightGray}

	switch name {
	case "ticks":
		t.XTicks.Direction = "out"
	case "whitegrid":
		t.FrameColor = lightGray
		t.Grid = true
	case "darkgrid":
		t.AxesBackground = darkAxes
		t.Frame = false
		t.Grid = true
		t.GridLine.Color = color.White
	case "dark":
		t.AxesBackground = darkAxes
		t.Frame = false
	}
	t.YTicks = t.XTicks
}

// The setters below implement style.Target.

// SetBaseStyle selects one of white, dark, whitegrid, darkgrid or ticks.
func (s *Surface) SetBaseStyle(name string) error {
	if err := s.usable(); err != nil {
		return err
	}
	switch name {
	case "white", "dark", "whitegrid", "darkgrid", "ticks":
	default:
		return errors.New(errors.ErrCodeRender, "unknown base style %q", name)
	}
	s.theme.applyBase(name)
	return nil
}

// SetContext sets the scale applied to every size.
func (s *Surface) SetContext(name string, scale float64) error {
	if err := s.usable(); err != nil {
		return err
	}
	if scale <= 0 {
		return errors.New(errors.ErrCodeRender, "invalid context scale %g for %q", scale, name)
	}
	s.theme.Context, s.theme.Scale = name, scale
	return nil
}

// SetFont sets the font family and base size.
func (s *Surface) SetFont(family string, size float64) error {
	if err := s.usable(); err != nil {
		return err
	}
	s.theme.FontFamily, s.theme.FontSize = family, size
	return nil
}

// SetSpines draws a four-sided frame.
func (s *Surface) SetSpines(width float64, spec string) error {
	if err := s.usable(); err != nil {
		return err
	}
	c, err := parseColor(spec)
	if err != nil {
		return err
	}
	s.theme.Frame, s.theme.FrameWidth, s.theme.FrameColor = true, width, c
	return nil
}

// SetTicks configures major ticks on both axes.
func (s *Surface) SetTicks(direction string, width, length float64, spec string) error {
	if err := s.usable(); err != nil {
		return err
	}
	c, err := parseColor(spec)
	if err != nil {
		return err
	}
	for _, ts := range []*TickStyle{&s.theme.XTicks, &s.theme.YTicks} {
		ts.Direction, ts.Width, ts.Length, ts.Color = direction, width, length, c
	}
	return nil
}

// SetMinorTicks enables minor ticks on both axes.
func (s *Surface) SetMinorTicks(width, length float64) error {
	if err := s.usable(); err != nil {
		return err
	}
	for _, ts := range []*TickStyle{&s.theme.XTicks, &s.theme.YTicks} {
		ts.Minor, ts.MinorWidth, ts.MinorLength = true, width, length
	}
	return nil
}

// SetGrid enables grid lines.
func (s *Surface) SetGrid(linestyle string, width, alpha float64, spec string) error {
	if err := s.usable(); err != nil {
		return err
	}
	c, err := parseColor(spec)
	if err != nil {
		return err
	}
	s.theme.Grid = true
	s.theme.GridLine = LineStyle{Style: linestyle, Width: width, Color: colors.WithAlpha(c, alpha)}
	return nil
}

// ClearGrid disables grid lines.
func (s *Surface) ClearGrid() error {
	if err := s.usable(); err != nil {
		return err
	}
	s.theme.Grid = false
	return nil
}

// SetRaw applies a low-level parameter override.
func (s *Surface) SetRaw(key string, value any) error {
	if err := s.usable(); err != nil {
		return err
	}
	t := &s.theme
	var err error
	switch key {
	case "axes.facecolor":
		t.AxesBackground, err = rawColor(key, value)
	case "figure.facecolor":
		t.Background, err = rawColor(key, value)
	case "axes.edgecolor":
		t.FrameColor, err = rawColor(key, value)
	case "axes.linewidth":
		t.FrameWidth, err = rawFloat(key, value)
	case "axes.unicode_minus":
		b, ok := value.(bool)
		if !ok {
			return rawTypeError(key, value)
		}
		t.UnicodeMinus = b
	case "grid.color":
		var c color.Color
		c, err = rawColor(key, value)
		if err == nil {
			_, _, _, a := t.GridLine.Color.RGBA()
			t.GridLine.Color = colors.WithAlpha(c, float64(a)/0xffff)
		}
	case "grid.linewidth":
		t.GridLine.Width, err = rawFloat(key, value)
	case "grid.alpha":
		var a float64
		if a, err = rawFloat(key, value); err == nil {
			t.GridLine.Color = colors.WithAlpha(t.GridLine.Color, a)
		}
	case "grid.linestyle":
		t.GridLine.Style, err = rawString(key, value)
	case "xtick.major.size":
		t.XTicks.Length, err = rawFloat(key, value)
	case "ytick.major.size":
		t.YTicks.Length, err = rawFloat(key, value)
	case "xtick.major.width":
		t.XTicks.Width, err = rawFloat(key, value)
	case "ytick.major.width":
		t.YTicks.Width, err = rawFloat(key, value)
	case "xtick.direction":
		t.XTicks.Direction, err = rawString(key, value)
	case "ytick.direction":
		t.YTicks.Direction, err = rawString(key, value)
	case "font.size":
		t.FontSize, err = rawFloat(key, value)
	case "font.family":
		t.FontFamily, err = rawString(key, value)
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported raw parameter %q", key)
	}
	return err
}

func parseColor(spec string) (color.Color, error) {
	c, err := colors.Parse(spec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "invalid color")
	}
	return c, nil
}

func rawColor(key string, v any) (color.Color, error) {
	s, ok := v.(string)
	if !ok {
		return nil, rawTypeError(key, v)
	}
	return parseColor(s)
}

func rawFloat(key string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	}
	return 0, rawTypeError(key, v)
}

func rawString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", rawTypeError(key, v)
	}
	return s, nil
}

func rawTypeError(key string, v any) error {
	return errors.New(errors.ErrCodeRender, "raw parameter %s: unexpected value %s", key, fmt.Sprintf("%v (%T)", v, v))
}
