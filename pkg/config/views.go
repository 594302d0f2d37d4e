package config

import "github.com/matzehuels/pubplot/pkg/validate"

// Typed views over a resolved node. They assume the node passed
// validate.Config.

// FontParams configures text.
type FontParams struct {
	Family string
	Size   float64
}

// GridParams configures grid lines.
type GridParams struct {
	LineStyle string
	LineWidth float64
	Alpha     float64
	Color     string
}

// StyleParams is the typed view of the style section.
type StyleParams struct {
	Style           string
	Context         string
	FigSize         [2]float64
	DPI             int
	Font            FontParams
	SpineWidth      float64
	SpineColor      string
	TickDirection   string
	TickWidth       float64
	TickLength      float64
	TickColor       string
	MinorTicks      bool
	MinorTickWidth  float64
	MinorTickLength float64
	Grid            bool
	GridParams      GridParams
	RC              map[string]any
	Policy          string
}

// TickParams overrides tick positions, labels and axis limits.
type TickParams struct {
	XTicks      []float64
	YTicks      []float64
	XTickLabels []string
	YTickLabels []string
	XLim        []float64
	YLim        []float64
}

// Annotation is a text label placed at data coordinates.
type Annotation struct {
	Text string
	X, Y float64
}

// ElementParams is the typed view of the element section. Nil labels are
// derived from the dataset by the chart renderer.
type ElementParams struct {
	Title       *string
	XLabel      *string
	YLabel      *string
	Ticks       TickParams
	Annotations []Annotation
}

// OutputParams is the typed view of the output section.
type OutputParams struct {
	Format      string
	DPI         int
	Transparent bool
	Path        string
}

// Style returns the style section view.
func (n *Node) Style() StyleParams {
	fs := n.Floats("style.figsize")
	var fig [2]float64
	copy(fig[:], fs)
	return StyleParams{
		Style:   n.String("style.style"),
		Context: n.String("style.context"),
		FigSize: fig,
		DPI:     n.Int("style.dpi"),
		Font: FontParams{
			Family: n.String("style.font_params.family"),
			Size:   n.Float("style.font_params.size"),
		},
		SpineWidth:      n.Float("style.spine_width"),
		SpineColor:      n.String("style.spine_color"),
		TickDirection:   n.String("style.tick_direction"),
		TickWidth:       n.Float("style.tick_width"),
		TickLength:      n.Float("style.tick_length"),
		TickColor:       n.String("style.tick_color"),
		MinorTicks:      n.Bool("style.minor_ticks"),
		MinorTickWidth:  n.Float("style.minor_tick_width"),
		MinorTickLength: n.Float("style.minor_tick_length"),
		Grid:            n.Bool("style.grid"),
		GridParams: GridParams{
			LineStyle: n.String("style.grid_params.linestyle"),
			LineWidth: n.Float("style.grid_params.linewidth"),
			Alpha:     n.Float("style.grid_params.alpha"),
			Color:     n.String("style.grid_params.color"),
		},
		RC:     n.Map("style.rc_params"),
		Policy: n.String("style.prerequisite_policy"),
	}
}

// Element returns the element section view.
func (n *Node) Element() ElementParams {
	e := ElementParams{
		Title:  n.OptString("element.title"),
		XLabel: n.OptString("element.xlabel"),
		YLabel: n.OptString("element.ylabel"),
		Ticks: TickParams{
			XTicks:      n.Floats("element.tick_params.xticks"),
			YTicks:      n.Floats("element.tick_params.yticks"),
			XTickLabels: n.Strings("element.tick_params.xticklabels"),
			YTickLabels: n.Strings("element.tick_params.yticklabels"),
			XLim:        n.Floats("element.tick_params.xlim"),
			YLim:        n.Floats("element.tick_params.ylim"),
		},
	}
	for _, rec := range n.Records("element.annotations") {
		text, _ := rec["text"].(string)
		x, _ := toFloat(rec["x"])
		y, _ := toFloat(rec["y"])
		e.Annotations = append(e.Annotations, Annotation{Text: text, X: x, Y: y})
	}
	return e
}

// Output returns the output section view.
func (n *Node) Output() OutputParams {
	o := OutputParams{
		Format:      n.String("output.format"),
		DPI:         n.Int("output.dpi"),
		Transparent: n.Bool("output.transparent"),
	}
	if p := n.OptString("output.path"); p != nil {
		o.Path = *p
	}
	return o
}

func toFloat(v any) (float64, bool) {
	f, ok := validate.Coerce(validate.KindFloat, v)
	if !ok {
		return 0, false
	}
	return f.(float64), true
}
