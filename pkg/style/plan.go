package style

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/errors"
)

// Policy decides what happens to unmet directives.
type Policy string

const (
	PolicyWarn  Policy = "warn"  // Drop the directive and record a warning
	PolicyError Policy = "error" // Fail resolution
)

// Warning records a dropped directive.
type Warning struct {
	Directive string   `json:"directive"`
	Reason    string   `json:"reason"`
	Fields    []string `json:"fields,omitempty"`

	// Explicit is true when any governing field was set by the chart
	// overlay or the caller rather than left at its default.
	Explicit bool `json:"explicit"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s dropped: %s", w.Directive, w.Reason)
}

// Step is a directive together with its resolution outcome.
type Step struct {
	Directive Directive
	Active    bool
	Reason    string // why an inactive step was dropped

	explicit bool
}

// Explicit reports whether a dropped step's governing fields were set
// above the default tier.
func (s Step) Explicit() bool { return s.explicit }

// Plan is the ordered outcome of Resolve.
type Plan struct {
	Base  string
	Steps []Step
}

// Active returns the directives that will be applied, in order.
func (p *Plan) Active() []Directive {
	var out []Directive
	for _, s := range p.Steps {
		if s.Active {
			out = append(out, s.Directive)
		}
	}
	return out
}

// Warnings returns one warning per dropped directive, in plan order.
func (p *Plan) Warnings() []Warning {
	var out []Warning
	for _, s := range p.Steps {
		if !s.Active {
			out = append(out, Warning{
				Directive: s.Directive.Name,
				Reason:    s.Reason,
				Fields:    s.Directive.Fields,
				Explicit:  s.explicit,
			})
		}
	}
	return out
}

// Fingerprint hashes the ordered steps. Resolving the same configuration
// twice yields the same fingerprint.
func (p *Plan) Fingerprint() string {
	type step struct {
		Name     string   `json:"name"`
		Category Category `json:"category"`
		Payload  Payload  `json:"payload"`
		Active   bool     `json:"active"`
	}
	steps := make([]step, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = step{s.Directive.Name, s.Directive.Category, s.Directive.Payload, s.Active}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		data = []byte(err.Error())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Option configures Resolve.
type Option func(*options)

type options struct {
	chart  []Directive
	policy Policy
}

// WithChartDirectives appends chart-specific directives (category 5).
func WithChartDirectives(ds ...Directive) Option {
	return func(o *options) { o.chart = append(o.chart, ds...) }
}

// WithPolicy overrides style.prerequisite_policy.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// Resolve builds the directive plan for a validated configuration.
//
// With the "error" policy, or for any unmet directive marked Required, the
// result is an INVALID_CONFIG error listing every unmet directive.
func Resolve(cfg *config.Node, opts ...Option) (*Plan, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	s := cfg.Style()
	policy := o.policy
	if policy == "" {
		policy = Policy(s.Policy)
	}
	if policy == "" {
		policy = PolicyWarn
	}

	ds := elementDirectives(s)
	for _, d := range o.chart {
		d.Category = CategoryChart
		ds = append(ds, d)
	}
	ds = append(ds, rawDirectives(s.RC)...)
	slices.SortStableFunc(ds, func(a, b Directive) int { return cmp.Compare(a.Category, b.Category) })

	plan := &Plan{Base: s.Style, Steps: make([]Step, 0, len(ds))}
	var failures []errors.Failure
	for _, d := range ds {
		step := Step{Directive: d, Active: true}
		if reason := d.Unmet(s.Style); reason != "" {
			if d.Required || policy == PolicyError {
				failures = append(failures, errors.Failure{Path: governingPath(d), Reason: d.Name + " " + reason})
			}
			step.Active = false
			step.Reason = reason
			step.explicit = isExplicit(cfg, d)
		}
		plan.Steps = append(plan.Steps, step)
	}
	if len(failures) > 0 {
		return nil, errors.Invalid(errors.ErrCodeConfigValidation, "unmet style directives", failures)
	}
	return plan, nil
}

func elementDirectives(s config.StyleParams) []Directive {
	ds := []Directive{
		{
			Name: NameBaseStyle, Category: CategoryBase,
			Fields:  []string{"style.style"},
			Payload: BaseStyle{Name: s.Style},
		},
		{
			Name: NameContext, Category: CategoryContext,
			Fields:  []string{"style.context"},
			Payload: Context{Name: s.Context, Scale: ContextScales[s.Context]},
		},
		{
			Name: NameFont, Category: CategoryFont,
			Fields:  []string{"style.font_params.family", "style.font_params.size"},
			Payload: Font{Family: s.Font.Family, Size: s.Font.Size},
		},
		{
			Name: NameSpines, Category: CategoryElement,
			Requires: []string{"white", "ticks"},
			Fields:   []string{"style.spine_width", "style.spine_color"},
			Payload:  Spines{Width: s.SpineWidth, Color: s.SpineColor},
		},
		{
			Name: NameTicks, Category: CategoryElement,
			Requires: []string{"ticks"},
			Fields:   []string{"style.tick_direction", "style.tick_width", "style.tick_length", "style.tick_color"},
			Payload: Ticks{
				Direction: s.TickDirection, Width: s.TickWidth,
				Length: s.TickLength, Color: s.TickColor,
			},
		},
	}
	if s.MinorTicks {
		ds = append(ds, Directive{
			Name: NameMinorTicks, Category: CategoryElement,
			Requires: []string{"ticks"},
			Fields:   []string{"style.minor_ticks", "style.minor_tick_width", "style.minor_tick_length"},
			Payload:  MinorTicks{Width: s.MinorTickWidth, Length: s.MinorTickLength},
		})
	}
	if s.Grid {
		g := s.GridParams
		ds = append(ds, Directive{
			Name: NameGrid, Category: CategoryElement,
			Requires: []string{"whitegrid", "darkgrid"},
			Fields:   []string{"style.grid", "style.grid_params"},
			Payload:  Grid{LineStyle: g.LineStyle, LineWidth: g.LineWidth, Alpha: g.Alpha, Color: g.Color},
		})
	} else {
		ds = append(ds, Directive{
			Name: NameGridOff, Category: CategoryElement,
			Fields:  []string{"style.grid"},
			Payload: GridOff{},
		})
	}
	return ds
}

func isExplicit(cfg *config.Node, d Directive) bool {
	for _, f := range d.Fields {
		if p := cfg.Provenance(f); p != "" && p != config.ProvenanceDefault {
			return true
		}
	}
	return false
}

func governingPath(d Directive) string {
	if len(d.Fields) > 0 {
		return d.Fields[0]
	}
	return "style"
}
