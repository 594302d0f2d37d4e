package bar

import (
	"bytes"
	"math"
	"testing"

	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/render"
)

func resolve(t *testing.T, r *Renderer, over config.Overrides) *config.Node {
	t.Helper()
	cfg, err := config.Resolve(config.ForChart(r.Schema()), r.Overlay(), over)
	if err != nil {
		t.Fatalf("config.Resolve() error: %v", err)
	}
	return cfg
}

func TestAggregateOf(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	sd := AggregateOf("g", values, ErrorSD)
	if sd.Mean != 5 || sd.N != 8 || sd.Err <= 0 {
		t.Errorf("sd aggregate = %+v", sd)
	}
	sem := AggregateOf("g", values, ErrorSEM)
	if math.Abs(sem.Err-sd.Err/math.Sqrt(8)) > 1e-12 {
		t.Errorf("sem = %v, want sd/sqrt(n) = %v", sem.Err, sd.Err/math.Sqrt(8))
	}
	if none := AggregateOf("g", values, ErrorNone); none.Err != 0 {
		t.Errorf("none aggregate err = %v", none.Err)
	}
	if one := AggregateOf("g", []float64{3}, ErrorSD); one.Mean != 3 || one.Err != 0 {
		t.Errorf("single sample = %+v", one)
	}
}

func TestOverlayIsInherited(t *testing.T) {
	r := New()
	cfg := resolve(t, r, nil)
	if got := cfg.String("style.tick_direction"); got != "out" {
		t.Errorf("tick_direction = %q", got)
	}
	if p := cfg.Provenance("style.tick_direction"); p != config.ProvenanceInherited {
		t.Errorf("provenance = %q", p)
	}
	if p := cfg.Provenance("chart.bar_params.width"); p != config.ProvenanceInherited {
		t.Errorf("chart default provenance = %q", p)
	}

	cfg = resolve(t, r, config.Overrides{"style.tick_direction": "in"})
	if p := cfg.Provenance("style.tick_direction"); p != config.ProvenanceOverridden {
		t.Errorf("caller provenance = %q", p)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		over config.Overrides
	}{
		{"defaults", nil},
		{"sem outline", config.Overrides{"chart.error_params.kind": "sem", "chart.bar_params.fill": false}},
		{"no errors", config.Overrides{"chart.error_params.kind": "none", "chart.palette": "colorblind"}},
	}
	ds := dataset.New(dataset.Metadata{XLabel: "Diet", YLabel: "Weight", Unit: "g"}).
		Add("control", 10, 12, 11, 13).
		Add("high fat", 15, 17, 19).
		Add("low fat", -1, 1, 2)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := chart.Lookup(Name)
			if err != nil {
				t.Fatal(err)
			}
			cfg, err := config.Resolve(config.ForChart(r.Schema()), r.Overlay(), tt.over)
			if err != nil {
				t.Fatal(err)
			}
			s, err := render.Gonum{}.Acquire(render.Spec{Width: 3, Height: 2, DPI: 72})
			if err != nil {
				t.Fatal(err)
			}
			defer s.Release()

			rep, err := r.Prepare(ds, cfg)
			if err != nil {
				t.Fatalf("Prepare() error: %v", err)
			}
			if err := r.ApplyChartStyle(s, r.Directives(cfg)); err != nil {
				t.Fatal(err)
			}
			if err := r.Render(s, rep, cfg); err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if err := s.Finalize(cfg.Element(), rep.Labels()); err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			if err := s.Encode(&buf, render.EncodeOptions{Format: "svg"}); err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte("Weight (g)")) {
				t.Error("svg is missing the derived y label")
			}
		})
	}
}

func TestPrepareRejectsEmpty(t *testing.T) {
	r := New()
	cfg := resolve(t, r, nil)
	if _, err := r.Prepare(dataset.New(dataset.Metadata{}), cfg); !errors.Is(err, errors.ErrCodeDataValidation) {
		t.Errorf("Prepare(no groups) = %v", err)
	}
}

func TestDataRangeIncludesZero(t *testing.T) {
	b := &bars{groups: []Aggregate{{Mean: 3}, {Mean: 5}}}
	if _, _, ymin, ymax := b.DataRange(); ymin != 0 || ymax != 5 {
		t.Errorf("y range = [%v, %v]", ymin, ymax)
	}
	b = &bars{groups: []Aggregate{{Mean: -2}, {Mean: -1}}}
	if _, _, ymin, ymax := b.DataRange(); ymin != -2 || ymax != 0 {
		t.Errorf("negative y range = [%v, %v]", ymin, ymax)
	}
}
