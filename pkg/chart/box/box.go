// Package box implements the box plot chart type.
//
// Each group is reduced to a five-number summary with outliers beyond 1.5
// times the interquartile range. Boxes are drawn hollow, with the box,
// whiskers, median and outliers in one palette color per group. The palette
// restarts every group_params.size boxes, and a vertical divider separates
// consecutive groups of that size.
package box

import (
	"image/color"

	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/colors"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/render"
	"github.com/matzehuels/pubplot/pkg/style"
	"github.com/matzehuels/pubplot/pkg/validate"
)

// Name is the registry name of the box chart.
const Name = "box"

func init() {
	chart.Register(Name, func() chart.Renderer { return New() })
}

// Chart-specific directive names.
const (
	DirectiveColors  = "box-colors"
	DirectiveNotch   = "box-notch"
	DirectiveDivider = "group-divider"
)

// Markers are the supported outlier marker codes.
var Markers = []string{"o", "s", "D", "^", "x", "+"}

// Colors colors every element of a box with its palette color.
type Colors struct {
	Palette string
	Period  int
}

// Notch requests notched boxes.
type Notch struct{}

// Divider draws vertical lines between consecutive groups of Every boxes.
type Divider struct {
	Every     int
	LineStyle string
	Color     string
	Alpha     float64
	Width     float64
}

func (Colors) Kind() string  { return DirectiveColors }
func (Notch) Kind() string   { return DirectiveNotch }
func (Divider) Kind() string { return DirectiveDivider }

// Renderer draws box plots. Construct one per session with New.
type Renderer struct {
	palette []color.Color
	period  int
	divider *Divider
}

// New returns a box renderer.
func New() *Renderer { return &Renderer{} }

// Name implements chart.Renderer.
func (*Renderer) Name() string { return Name }

// Schema implements chart.Renderer.
func (*Renderer) Schema() *config.Schema {
	unit, pos := validate.UnitInterval, validate.Positive
	return config.Section(config.ChartSection,
		[]config.Field{
			config.Enum("palette", colors.DefaultPalette, colors.PaletteNames(), "color palette cycled over boxes"),
		},
		config.Section("box_params", []config.Field{
			config.Float("width", 0.4, unit(), "box width as a fraction of the category spacing"),
			config.Float("alpha", 1.0, unit(), "box opacity"),
			config.Float("linewidth", 0.8, pos(), "box outline width in points"),
			config.Bool("notch", false, "draw notched boxes"),
			config.Bool("showfliers", true, "draw outliers"),
		}),
		config.Section("whisker_params", []config.Field{
			config.Float("linewidth", 0.8, pos(), "whisker width in points"),
			config.Enum("style", "-", config.LineStyles, "whisker line style"),
		}),
		config.Section("median_params", []config.Field{
			config.Color("color", "black", "median color when boxes are not palette colored"),
			config.Float("linewidth", 0.8, pos(), "median width in points"),
		}),
		config.Section("outlier_params", []config.Field{
			config.Enum("marker", "o", Markers, "outlier marker"),
			config.Float("size", 2, pos(), "marker size in points"),
			config.Float("alpha", 0.6, unit(), "marker opacity"),
			config.Optional(config.Color("color", "", "marker color; null uses the box color")),
		}),
		config.Section("group_params",
			[]config.Field{
				config.Int("size", 4, pos(), "boxes per group"),
			},
			config.Section("divider", []config.Field{
				config.Bool("show", true, "draw dividers between groups"),
				config.Enum("style", "-", config.LineStyles, "divider line style"),
				config.Color("color", "black", "divider color"),
				config.Float("alpha", 0.8, unit(), "divider opacity"),
				config.Float("width", 0.6, pos(), "divider width in points"),
			}),
		),
	)
}

// Overlay implements chart.Renderer. Box plots use the base defaults.
func (*Renderer) Overlay() config.Overrides { return nil }

// Prepare implements chart.Renderer.
func (*Renderer) Prepare(ds *dataset.Dataset, _ *config.Node) (chart.Representation, error) {
	if len(ds.Groups) == 0 {
		return nil, errors.New(errors.ErrCodeDataValidation, "box plot needs at least one group")
	}
	rep := &Representation{Default: chart.DefaultLabels(ds.Metadata)}
	for _, g := range ds.Groups {
		if len(g.Values) == 0 {
			return nil, errors.New(errors.ErrCodeDataValidation, "group %q is empty", g.Name)
		}
		rep.Groups = append(rep.Groups, Summarize(g.Name, g.Values))
	}
	return rep, nil
}

// Directives implements chart.Renderer.
func (*Renderer) Directives(cfg *config.Node) []style.Directive {
	ds := []style.Directive{{
		Name:    DirectiveColors,
		Fields:  []string{"chart.palette", "chart.group_params.size"},
		Payload: Colors{Palette: cfg.String("chart.palette"), Period: cfg.Int("chart.group_params.size")},
	}}
	if cfg.Bool("chart.box_params.notch") {
		ds = append(ds, style.Directive{
			Name:        DirectiveNotch,
			Fields:      []string{"chart.box_params.notch"},
			Payload:     Notch{},
			Unsupported: "notched boxes are not supported by the rendering backend",
		})
	}
	if cfg.Bool("chart.group_params.divider.show") {
		ds = append(ds, style.Directive{
			Name:   DirectiveDivider,
			Fields: []string{"chart.group_params.divider.show", "chart.group_params.size"},
			Payload: Divider{
				Every:     cfg.Int("chart.group_params.size"),
				LineStyle: cfg.String("chart.group_params.divider.style"),
				Color:     cfg.String("chart.group_params.divider.color"),
				Alpha:     cfg.Float("chart.group_params.divider.alpha"),
				Width:     cfg.Float("chart.group_params.divider.width"),
			},
		})
	}
	return ds
}

// ApplyChartStyle implements chart.Renderer. The directives configure the
// renderer; they take effect in Render.
func (r *Renderer) ApplyChartStyle(_ *render.Surface, ds []style.Directive) error {
	for _, d := range ds {
		switch p := d.Payload.(type) {
		case Colors:
			pal, err := colors.Palette(p.Palette)
			if err != nil {
				return errors.Wrap(errors.ErrCodeRender, err, "box colors")
			}
			r.palette, r.period = pal, p.Period
		case Divider:
			r.divider = &p
		default:
			return errors.New(errors.ErrCodeRender, "box: unexpected directive %q", d.Name)
		}
	}
	return nil
}

// Render implements chart.Renderer.
func (r *Renderer) Render(s *render.Surface, rep chart.Representation, cfg *config.Node) error {
	br, ok := rep.(*Representation)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "box: unexpected representation %T", rep)
	}
	n := len(br.Groups)

	b := &boxes{
		groups: br.Groups,
		width:  cfg.Float("chart.box_params.width"),
		alpha:  cfg.Float("chart.box_params.alpha"),
		box:    s.Stroke(render.LineStyle{Style: "-", Width: cfg.Float("chart.box_params.linewidth")}),
		whisker: s.Stroke(render.LineStyle{
			Style: cfg.String("chart.whisker_params.style"),
			Width: cfg.Float("chart.whisker_params.linewidth"),
		}),
		median: s.Stroke(render.LineStyle{Style: "-", Width: cfg.Float("chart.median_params.linewidth")}),
		fliers: cfg.Bool("chart.box_params.showfliers"),
		marker: markerGlyph(cfg.String("chart.outlier_params.marker")),
		// Marker size is a diameter.
		radius:      s.Points(cfg.Float("chart.outlier_params.size") / 2),
		fliersAlpha: cfg.Float("chart.outlier_params.alpha"),
	}
	if r.palette != nil {
		b.colors = colors.Cycle(r.palette, n, r.period)
	} else {
		b.colors = colors.Cycle([]color.Color{color.Black}, n, 0)
		mc, err := colors.Parse(cfg.String("chart.median_params.color"))
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "median color")
		}
		b.medianColor = mc
	}
	if oc := cfg.OptString("chart.outlier_params.color"); oc != nil {
		c, err := colors.Parse(*oc)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "outlier color")
		}
		b.fliersColor = c
	}

	if d := r.divider; d != nil && d.Every > 0 && n > d.Every {
		c, err := colors.Parse(d.Color)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "divider color")
		}
		var xs []float64
		for i := d.Every; i < n; i += d.Every {
			xs = append(xs, float64(i)-0.5)
		}
		line := s.Stroke(render.LineStyle{Style: d.LineStyle, Width: d.Width, Color: colors.WithAlpha(c, d.Alpha)})
		if err := s.Add(dividers{xs: xs, style: line}); err != nil {
			return err
		}
	}
	if err := s.Add(b); err != nil {
		return err
	}
	return chart.Categorical(s, br.Names())
}
