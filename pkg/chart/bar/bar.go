// Package bar implements the bar chart type: one bar per group at the
// group mean, with an optional error bar of one standard deviation or one
// standard error.
package bar

import (
	"image/color"
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/colors"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/render"
	"github.com/matzehuels/pubplot/pkg/style"
	"github.com/matzehuels/pubplot/pkg/validate"
)

// Name is the registry name of the bar chart.
const Name = "bar"

func init() {
	chart.Register(Name, func() chart.Renderer { return New() })
}

// DirectiveColors colors bars from the palette.
const DirectiveColors = "bar-colors"

// Error bar kinds.
const (
	ErrorSD   = "sd"
	ErrorSEM  = "sem"
	ErrorNone = "none"
)

// Colors selects the bar palette and whether bars are filled.
type Colors struct {
	Palette string
	Fill    bool
}

func (Colors) Kind() string { return DirectiveColors }

// Aggregate is the reduced form of one group.
type Aggregate struct {
	Name string  `json:"name"`
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	Err  float64 `json:"err"`
}

// Representation is the prepared bar chart.
type Representation struct {
	Groups  []Aggregate   `json:"groups"`
	Kind    string        `json:"error_kind"`
	Default render.Labels `json:"labels"`
}

// Labels implements chart.Representation.
func (r *Representation) Labels() render.Labels { return r.Default }

// AggregateOf reduces values to the mean and the requested spread. The
// spread of a single sample is zero.
func AggregateOf(name string, values []float64, kind string) Aggregate {
	s := stats.Sample{Xs: values}
	a := Aggregate{Name: name, N: len(values), Mean: s.Mean()}
	if len(values) < 2 {
		return a
	}
	switch kind {
	case ErrorSD:
		a.Err = s.StdDev()
	case ErrorSEM:
		a.Err = s.StdDev() / math.Sqrt(float64(len(values)))
	}
	return a
}

// Renderer draws bar charts. Construct one per session with New.
type Renderer struct {
	palette []color.Color
	fill    bool
	styled  bool
}

// New returns a bar renderer.
func New() *Renderer { return &Renderer{} }

// Name implements chart.Renderer.
func (*Renderer) Name() string { return Name }

// Schema implements chart.Renderer.
func (*Renderer) Schema() *config.Schema {
	unit, pos, nonneg := validate.UnitInterval, validate.Positive, validate.NonNegative
	return config.Section(config.ChartSection,
		[]config.Field{
			config.Enum("palette", colors.DefaultPalette, colors.PaletteNames(), "color palette cycled over bars"),
		},
		config.Section("bar_params", []config.Field{
			config.Float("width", 0.6, unit(), "bar width as a fraction of the category spacing"),
			config.Float("alpha", 1.0, unit(), "bar opacity"),
			config.Float("linewidth", 0.8, pos(), "bar outline width in points"),
			config.Bool("fill", true, "fill bars; false draws outlines only"),
		}),
		config.Section("error_params", []config.Field{
			config.Enum("kind", ErrorSD, []string{ErrorSD, ErrorSEM, ErrorNone}, "error bar statistic"),
			config.Float("linewidth", 0.8, pos(), "error bar width in points"),
			config.Float("capsize", 2, nonneg(), "error bar cap width in points"),
		}),
	)
}

// Overlay implements chart.Renderer. Bars rest on the x axis, so ticks
// point outwards.
func (*Renderer) Overlay() config.Overrides {
	return config.Overrides{"style.tick_direction": "out"}
}

// Prepare implements chart.Renderer.
func (*Renderer) Prepare(ds *dataset.Dataset, cfg *config.Node) (chart.Representation, error) {
	if len(ds.Groups) == 0 {
		return nil, errors.New(errors.ErrCodeDataValidation, "bar chart needs at least one group")
	}
	kind := cfg.String("chart.error_params.kind")
	rep := &Representation{Kind: kind, Default: chart.DefaultLabels(ds.Metadata)}
	for _, g := range ds.Groups {
		if len(g.Values) == 0 {
			return nil, errors.New(errors.ErrCodeDataValidation, "group %q is empty", g.Name)
		}
		rep.Groups = append(rep.Groups, AggregateOf(g.Name, g.Values, kind))
	}
	return rep, nil
}

// Directives implements chart.Renderer.
func (*Renderer) Directives(cfg *config.Node) []style.Directive {
	return []style.Directive{{
		Name:    DirectiveColors,
		Fields:  []string{"chart.palette", "chart.bar_params.fill"},
		Payload: Colors{Palette: cfg.String("chart.palette"), Fill: cfg.Bool("chart.bar_params.fill")},
	}}
}

// ApplyChartStyle implements chart.Renderer.
func (r *Renderer) ApplyChartStyle(_ *render.Surface, ds []style.Directive) error {
	for _, d := range ds {
		p, ok := d.Payload.(Colors)
		if !ok {
			return errors.New(errors.ErrCodeRender, "bar: unexpected directive %q", d.Name)
		}
		pal, err := colors.Palette(p.Palette)
		if err != nil {
			return errors.Wrap(errors.ErrCodeRender, err, "bar colors")
		}
		r.palette, r.fill, r.styled = pal, p.Fill, true
	}
	return nil
}

// Render implements chart.Renderer.
func (r *Renderer) Render(s *render.Surface, rep chart.Representation, cfg *config.Node) error {
	br, ok := rep.(*Representation)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "bar: unexpected representation %T", rep)
	}
	n := len(br.Groups)
	pal := r.palette
	if !r.styled {
		pal = []color.Color{color.Gray{Y: 0x80}}
	}

	b := &bars{
		groups:  br.Groups,
		width:   cfg.Float("chart.bar_params.width"),
		alpha:   cfg.Float("chart.bar_params.alpha"),
		fill:    r.fill || !r.styled,
		colors:  colors.Cycle(pal, n, 0),
		outline: s.Stroke(render.LineStyle{Style: "-", Width: cfg.Float("chart.bar_params.linewidth")}),
	}
	if err := s.Add(b); err != nil {
		return err
	}
	if br.Kind != ErrorNone {
		eb, err := errorBars(s, br.Groups, cfg)
		if err != nil {
			return err
		}
		if err := s.Add(eb); err != nil {
			return err
		}
	}
	names := make([]string, n)
	for i, g := range br.Groups {
		names[i] = g.Name
	}
	return chart.Categorical(s, names)
}
