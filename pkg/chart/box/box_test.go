package box

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/render"
	"github.com/matzehuels/pubplot/pkg/style"
)

func resolve(t *testing.T, r *Renderer, over config.Overrides) *config.Node {
	t.Helper()
	cfg, err := config.Resolve(config.ForChart(r.Schema()), r.Overlay(), over)
	if err != nil {
		t.Fatalf("config.Resolve() error: %v", err)
	}
	return cfg
}

func sample() *dataset.Dataset {
	ds := dataset.New(dataset.Metadata{XLabel: "Site", YLabel: "Height", Unit: "cm"})
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		ds.Add(name, -1000, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 1000)
	}
	return ds
}

func TestRegistered(t *testing.T) {
	r, err := chart.Lookup(Name)
	if err != nil {
		t.Fatalf("Lookup(%q) error: %v", Name, err)
	}
	if r.Name() != Name {
		t.Errorf("Name() = %q", r.Name())
	}
	a, _ := chart.Lookup(Name)
	if a == r {
		t.Error("Lookup must construct a fresh renderer per call")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize("g", []float64{1000, 5, 3, 1, 2, 4, 6, 7, 8, 9, 10, -1000})
	if s.N != 12 || s.Median != 5.5 {
		t.Errorf("N, Median = %d, %v", s.N, s.Median)
	}
	if s.Low != 1 || s.High != 10 {
		t.Errorf("whiskers = [%v, %v], want [1, 10]", s.Low, s.High)
	}
	if !reflect.DeepEqual(s.Outliers, []float64{-1000, 1000}) {
		t.Errorf("Outliers = %v", s.Outliers)
	}
	if !(s.Q1 > 1 && s.Q1 < s.Median && s.Q3 > s.Median && s.Q3 < 10) {
		t.Errorf("quartiles = %v, %v", s.Q1, s.Q3)
	}

	flat := Summarize("flat", []float64{2, 2, 2})
	if flat.Low != 2 || flat.High != 2 || flat.Q1 != 2 || len(flat.Outliers) != 0 {
		t.Errorf("constant sample summary = %+v", flat)
	}
}

func TestPrepare(t *testing.T) {
	r := New()
	cfg := resolve(t, r, nil)
	rep, err := r.Prepare(sample(), cfg)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	br := rep.(*Representation)
	if got := br.Names(); !reflect.DeepEqual(got, []string{"A", "B", "C", "D", "E", "F"}) {
		t.Errorf("Names() = %v", got)
	}
	want := render.Labels{Title: "Height by Site", XLabel: "Site", YLabel: "Height (cm)"}
	if rep.Labels() != want {
		t.Errorf("Labels() = %+v, want %+v", rep.Labels(), want)
	}

	empty := dataset.New(dataset.Metadata{XLabel: "x", YLabel: "y"}).Add("A")
	if _, err := r.Prepare(empty, cfg); !errors.Is(err, errors.ErrCodeDataValidation) {
		t.Errorf("Prepare(empty group) = %v", err)
	}
}

func TestDirectives(t *testing.T) {
	tests := []struct {
		name string
		over config.Overrides
		want []string
	}{
		{"defaults", nil, []string{DirectiveColors, DirectiveDivider}},
		{"notch", config.Overrides{"chart.box_params.notch": true}, []string{DirectiveColors, DirectiveNotch, DirectiveDivider}},
		{"no divider", config.Overrides{"chart.group_params.divider.show": false}, []string{DirectiveColors}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			var got []string
			for _, d := range r.Directives(resolve(t, r, tt.over)) {
				got = append(got, d.Name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Directives() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNotchIsDroppedWithWarning(t *testing.T) {
	r := New()
	cfg := resolve(t, r, config.Overrides{"chart.box_params.notch": true})
	plan, err := style.Resolve(cfg, style.WithChartDirectives(r.Directives(cfg)...))
	if err != nil {
		t.Fatalf("style.Resolve() error: %v", err)
	}
	ws := plan.Warnings()
	if len(ws) != 1 || ws[0].Directive != DirectiveNotch || !ws[0].Explicit {
		t.Fatalf("Warnings() = %+v", ws)
	}

	if _, err := style.Resolve(cfg, style.WithPolicy(style.PolicyError), style.WithChartDirectives(r.Directives(cfg)...)); !errors.Is(err, errors.ErrCodeConfigValidation) {
		t.Errorf("error policy = %v, want INVALID_CONFIG", err)
	}
}

func TestApplyChartStyle(t *testing.T) {
	r := New()
	cfg := resolve(t, r, config.Overrides{"chart.palette": "muted", "chart.group_params.size": 3})
	if err := r.ApplyChartStyle(nil, r.Directives(cfg)); err != nil {
		t.Fatalf("ApplyChartStyle() error: %v", err)
	}
	if len(r.palette) == 0 || r.period != 3 {
		t.Errorf("palette = %d colors, period %d", len(r.palette), r.period)
	}
	if r.divider == nil || r.divider.Every != 3 {
		t.Errorf("divider = %+v", r.divider)
	}

	bad := []style.Directive{{Name: "other", Payload: style.GridOff{}}}
	if err := r.ApplyChartStyle(nil, bad); !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("unexpected directive error = %v", err)
	}
}

func TestRender(t *testing.T) {
	for _, marker := range Markers {
		t.Run(marker, func(t *testing.T) {
			r := New()
			cfg := resolve(t, r, config.Overrides{
				"chart.outlier_params.marker": marker,
				"chart.whisker_params.style":  "--",
			})
			s, err := render.Gonum{}.Acquire(render.Spec{Width: 3, Height: 2, DPI: 72})
			if err != nil {
				t.Fatal(err)
			}
			defer s.Release()

			rep, err := r.Prepare(sample(), cfg)
			if err != nil {
				t.Fatal(err)
			}
			if err := r.ApplyChartStyle(s, r.Directives(cfg)); err != nil {
				t.Fatal(err)
			}
			if err := r.Render(s, rep, cfg); err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if err := s.Finalize(cfg.Element(), rep.Labels()); err != nil {
				t.Fatalf("Finalize() error: %v", err)
			}
			var buf bytes.Buffer
			if err := s.Encode(&buf, render.EncodeOptions{Format: "png"}); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if buf.Len() == 0 {
				t.Error("empty image")
			}
		})
	}
}

func TestRenderWrongRepresentation(t *testing.T) {
	r := New()
	cfg := resolve(t, r, nil)
	s, err := render.Gonum{}.Acquire(render.Spec{Width: 1, Height: 1, DPI: 50})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Release()
	if err := r.Render(s, otherRep{}, cfg); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("Render(other) = %v", err)
	}
}

type otherRep struct{}

func (otherRep) Labels() render.Labels { return render.Labels{} }

func TestDataRange(t *testing.T) {
	b := &boxes{groups: []Summary{
		{Low: 0, High: 10, Outliers: []float64{-10, 20}},
		{Low: 5, High: 15},
	}}
	xmin, xmax, ymin, ymax := b.DataRange()
	if xmin != -0.5 || xmax != 1.5 || ymin != -0.75 || ymax != 15.75 {
		t.Errorf("without fliers = %v %v %v %v", xmin, xmax, ymin, ymax)
	}
	b.fliers = true
	if _, _, ymin, ymax = b.DataRange(); ymin != -11.5 || ymax != 21.5 {
		t.Errorf("with fliers y = [%v, %v]", ymin, ymax)
	}
}
