package config

import "github.com/matzehuels/pubplot/pkg/validate"

// Allowed values for enumerated fields.
var (
	BaseStyles = []string{"white", "dark", "whitegrid", "darkgrid", "ticks"}
	Contexts   = []string{"paper", "notebook", "talk", "poster"}
	LineStyles = []string{"-", "--", ":", "-.", "solid", "dashed", "dotted", "dashdot"}
	TickDirs   = []string{"in", "out", "inout"}
	Policies   = []string{"warn", "error"}
	Formats    = []string{"pdf", "svg", "eps", "png", "jpg", "tif", "json"}
)

// Base returns the base schema shared by every chart type: style, element
// and output sections. Each call returns a fresh tree.
func Base() *Schema {
	return &Schema{
		Tier: ProvenanceDefault,
		Children: []*Schema{
			styleSchema(),
			elementSchema(),
			outputSchema(),
		},
	}
}

func styleSchema() *Schema {
	pos := validate.Positive
	return Section("style", []Field{
		Enum("style", "ticks", BaseStyles, "base style"),
		Enum("context", "paper", Contexts, "scaling context"),
		{Name: "figsize", Default: []float64{3.6, 2.7}, Doc: "figure width and height in inches",
			Rule: validate.Rule{Kind: validate.KindPair, Required: true, Domain: pos()}},
		Int("dpi", 300, pos(), "figure resolution"),
		Float("spine_width", 0.8, pos(), "axis frame line width in points"),
		Color("spine_color", "black", "axis frame color"),
		Enum("tick_direction", "in", TickDirs, "major tick direction"),
		Float("tick_width", 0.5, pos(), "major tick width in points"),
		Float("tick_length", 2.0, pos(), "major tick length in points"),
		Color("tick_color", "black", "tick color"),
		Bool("minor_ticks", false, "draw minor ticks"),
		Float("minor_tick_width", 0.4, pos(), "minor tick width in points"),
		Float("minor_tick_length", 1.5, pos(), "minor tick length in points"),
		Bool("grid", false, "draw grid lines"),
		{Name: "rc_params", Default: map[string]any{"axes.unicode_minus": false}, Doc: "raw low-level overrides, applied last",
			Rule: validate.Rule{Kind: validate.KindMap, Required: true}},
		Enum("prerequisite_policy", "warn", Policies, "what to do when a style directive's base style is not selected"),
	},
		Section("font_params", []Field{
			{Name: "family", Default: "sans-serif", Doc: "font family",
				Rule: validate.Rule{Kind: validate.KindString, Required: true}},
			Float("size", 6, pos(), "base font size in points"),
		}),
		Section("grid_params", []Field{
			Enum("linestyle", "--", LineStyles, "grid line style"),
			Float("linewidth", 0.5, pos(), "grid line width in points"),
			Float("alpha", 0.3, validate.UnitInterval(), "grid line opacity"),
			Color("color", "black", "grid line color"),
		}),
	)
}

func elementSchema() *Schema {
	floats := func(name, doc string) Field {
		return Optional(Field{Name: name, Doc: doc, Rule: validate.Rule{Kind: validate.KindFloats}})
	}
	strs := func(name, doc string) Field {
		return Optional(Field{Name: name, Doc: doc, Rule: validate.Rule{Kind: validate.KindStrings}})
	}
	pair := func(name, doc string) Field {
		return Optional(Field{Name: name, Doc: doc, Rule: validate.Rule{Kind: validate.KindPair}})
	}
	return Section("element", []Field{
		Optional(String("title", "", "plot title; derived from the dataset when null")),
		Optional(String("xlabel", "", "x axis label; derived from the dataset when null")),
		Optional(String("ylabel", "", "y axis label; derived from the dataset when null")),
		{Name: "annotations", Default: []any{}, Doc: "text annotations at data coordinates",
			Rule: validate.Rule{Kind: validate.KindRecords, Required: true, Fields: map[string]validate.Rule{
				"text": {Kind: validate.KindString, Required: true},
				"x":    {Kind: validate.KindFloat, Required: true},
				"y":    {Kind: validate.KindFloat, Required: true},
			}}},
	},
		Section("tick_params", []Field{
			floats("xticks", "x tick positions"),
			floats("yticks", "y tick positions"),
			strs("xticklabels", "x tick labels"),
			strs("yticklabels", "y tick labels"),
			pair("xlim", "x axis limits"),
			pair("ylim", "y axis limits"),
		}),
	)
}

func outputSchema() *Schema {
	return Section("output", []Field{
		Enum("format", "pdf", Formats, "default output format"),
		Int("dpi", 300, validate.Positive(), "raster output resolution"),
		Bool("transparent", true, "transparent background"),
		Optional(String("path", "", "default output path")),
	})
}
