// Package style turns a resolved configuration into an ordered plan of
// style directives and applies that plan to a drawing surface.
//
// Directives are emitted in a fixed category order: base style, context,
// font, generic elements (spines, ticks, grid), chart-specific directives
// and finally raw parameter overrides. Element directives may declare a set
// of base styles they require; when the selected base style is not in that
// set the directive is unmet. Unmet directives are dropped with a recorded
// [Warning] under the default "warn" policy, or fail resolution under the
// "error" policy.
package style

import "slices"

// Category orders directives within a plan.
type Category int

const (
	CategoryBase Category = iota + 1
	CategoryContext
	CategoryFont
	CategoryElement
	CategoryChart
	CategoryRaw
)

var categoryNames = map[Category]string{
	CategoryBase:    "base",
	CategoryContext: "context",
	CategoryFont:    "font",
	CategoryElement: "element",
	CategoryChart:   "chart",
	CategoryRaw:     "raw",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Directive names for the built-in payloads.
const (
	NameBaseStyle  = "base-style"
	NameContext    = "context"
	NameFont       = "font"
	NameSpines     = "spines"
	NameTicks      = "ticks"
	NameMinorTicks = "minor-ticks"
	NameGrid       = "grid"
	NameGridOff    = "grid-off"
	NameRaw        = "raw"
)

// Directive is a single style operation.
type Directive struct {
	Name     string   // Stable identifier, e.g. "grid" or "raw:axes.facecolor"
	Category Category // Ordering bucket
	Requires []string // Base styles under which the directive is meaningful; empty means any
	Required bool     // Unmet directive fails resolution regardless of policy
	Fields   []string // Configuration paths that govern the directive
	Payload  Payload  // Operation parameters

	// Unsupported marks a directive the backend cannot honor. It is
	// treated as unmet with this reason.
	Unsupported string
}

// Payload carries directive parameters. Chart renderers define their own
// payload types for category-5 directives.
type Payload interface {
	Kind() string
}

// Unmet reports why d cannot be applied under the given base style, or ""
// when it can.
func (d Directive) Unmet(base string) string {
	if d.Unsupported != "" {
		return d.Unsupported
	}
	if len(d.Requires) > 0 && !slices.Contains(d.Requires, base) {
		return "requires base style " + quoteList(d.Requires) + ", selected \"" + base + "\""
	}
	return ""
}

func quoteList(ss []string) string {
	out := ""
	for i, s := range ss {
		switch {
		case i == 0:
		case i == len(ss)-1:
			out += " or "
		default:
			out += ", "
		}
		out += "\"" + s + "\""
	}
	return out
}

// Built-in payloads.

// BaseStyle selects a named base theme.
type BaseStyle struct {
	Name string `json:"name"`
}

// Context scales fonts and line widths relative to the paper context.
type Context struct {
	Name  string  `json:"name"`
	Scale float64 `json:"scale"`
}

// Font sets the text family and base size in points.
type Font struct {
	Family string  `json:"family"`
	Size   float64 `json:"size"`
}

// Spines draws a four-sided axes frame.
type Spines struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// Ticks configures major tick marks.
type Ticks struct {
	Direction string  `json:"direction"`
	Width     float64 `json:"width"`
	Length    float64 `json:"length"`
	Color     string  `json:"color"`
}

// MinorTicks enables minor tick marks.
type MinorTicks struct {
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
}

// Grid enables grid lines.
type Grid struct {
	LineStyle string  `json:"linestyle"`
	LineWidth float64 `json:"linewidth"`
	Alpha     float64 `json:"alpha"`
	Color     string  `json:"color"`
}

// GridOff disables grid lines, including those of the base style.
type GridOff struct{}

// Raw is a low-level parameter override.
type Raw struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func (BaseStyle) Kind() string  { return NameBaseStyle }
func (Context) Kind() string    { return NameContext }
func (Font) Kind() string       { return NameFont }
func (Spines) Kind() string     { return NameSpines }
func (Ticks) Kind() string      { return NameTicks }
func (MinorTicks) Kind() string { return NameMinorTicks }
func (Grid) Kind() string       { return NameGrid }
func (GridOff) Kind() string    { return NameGridOff }
func (Raw) Kind() string        { return NameRaw }

// ContextScales maps context names to their scale relative to "paper".
var ContextScales = map[string]float64{
	"paper":    1.0,
	"notebook": 1.25,
	"talk":     1.875,
	"poster":   2.5,
}
