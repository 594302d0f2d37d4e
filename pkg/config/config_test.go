package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/validate"
)

func testChart() *Schema {
	return Section("", []Field{
		Enum("palette", "deep", []string{"deep", "muted"}, "palette"),
	},
		Section("box_params", []Field{
			Float("width", 0.4, validate.UnitInterval(), "box width"),
			Float("linewidth", 0.8, validate.Positive(), "edge width"),
		}),
	)
}

func testOverlay() Overrides {
	return Overrides{"style": map[string]any{"tick_direction": "out"}}
}

func TestResolveDefaults(t *testing.T) {
	n, err := Resolve(ForChart(testChart()), nil, nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	s := n.Style()
	if s.Style != "ticks" || s.Context != "paper" || s.DPI != 300 {
		t.Errorf("Style() = %+v", s)
	}
	if s.FigSize != [2]float64{3.6, 2.7} {
		t.Errorf("FigSize = %v", s.FigSize)
	}
	if s.Font.Family != "sans-serif" || s.Font.Size != 6 {
		t.Errorf("Font = %+v", s.Font)
	}
	if n.Provenance("style.style") != ProvenanceDefault {
		t.Errorf("style.style provenance = %s", n.Provenance("style.style"))
	}
	if n.Provenance("chart.box_params.width") != ProvenanceInherited {
		t.Errorf("chart defaults should be inherited, got %s", n.Provenance("chart.box_params.width"))
	}
	if n.Element().Title != nil {
		t.Error("element.title should default to null")
	}
	if res := validate.Config(n); !res.OK() {
		t.Errorf("defaults should validate, got %v", res.Failures)
	}
}

func TestResolveTiers(t *testing.T) {
	n, err := Resolve(ForChart(testChart()), testOverlay(), Overrides{
		"style": map[string]any{
			"grid_params": map[string]any{"alpha": 0.5},
		},
		"chart.box_params.width": 0.6,
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	tests := []struct {
		path string
		prov Provenance
	}{
		{"style.tick_direction", ProvenanceInherited},
		{"style.grid_params.alpha", ProvenanceOverridden},
		{"style.grid_params.linestyle", ProvenanceDefault},
		{"style.grid_params", ProvenanceOverridden},
		{"chart.box_params.width", ProvenanceOverridden},
		{"chart.box_params.linewidth", ProvenanceInherited},
		{"output", ProvenanceDefault},
		{"", ProvenanceOverridden},
	}
	for _, tt := range tests {
		if got := n.Provenance(tt.path); got != tt.prov {
			t.Errorf("Provenance(%q) = %s, want %s", tt.path, got, tt.prov)
		}
	}

	// structural merge keeps siblings
	g := n.Style().GridParams
	if g.Alpha != 0.5 || g.LineStyle != "--" || g.LineWidth != 0.5 {
		t.Errorf("GridParams = %+v", g)
	}
	if n.String("style.tick_direction") != "out" {
		t.Errorf("overlay not applied")
	}
}

func TestResolveUnknownFields(t *testing.T) {
	_, err := Resolve(ForChart(testChart()), nil, Overrides{
		"style": map[string]any{
			"gird":        true,
			"font_params": map[string]any{"weight": "bold"},
		},
		"colour":               "red",
		"chart.box_params.wid": 1,
		"element":              "oops",
	})
	if !errors.Is(err, errors.ErrCodeConfigValidation) {
		t.Fatalf("Resolve() error = %v, want INVALID_CONFIG", err)
	}

	var paths []string
	for _, f := range errors.FailuresOf(err) {
		paths = append(paths, f.Path)
	}
	want := []string{"chart.box_params.wid", "colour", "element", "style.font_params.weight", "style.gird"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("failure paths = %v, want %v", paths, want)
	}
}

func TestResolveDeterministic(t *testing.T) {
	over := Overrides{"style.rc_params": map[string]any{"axes.facecolor": "white"}, "style.dpi": 150}
	a, err := Resolve(ForChart(testChart()), testOverlay(), over)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Resolve(ForChart(testChart()), testOverlay(), over)
	if err != nil {
		t.Fatal(err)
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("Fingerprint should be identical for identical inputs")
	}
	if !reflect.DeepEqual(a.Entries(), b.Entries()) {
		t.Error("Entries should be identical for identical inputs")
	}

	c, _ := Resolve(ForChart(testChart()), testOverlay(), Overrides{"style.dpi": 151})
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different inputs should change the fingerprint")
	}
}

func TestResolveMapFieldsMerge(t *testing.T) {
	n, err := Resolve(Base(), nil, Overrides{"style.rc_params.axes.facecolor": "#eeeeee"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	rc := n.Map("style.rc_params")
	if rc["axes.facecolor"] != "#eeeeee" {
		t.Errorf("rc_params = %v, missing override", rc)
	}
	if v, ok := rc["axes.unicode_minus"]; !ok || v != false {
		t.Errorf("rc_params = %v, default key lost", rc)
	}
}

func TestNodeIsImmutable(t *testing.T) {
	n, _ := Resolve(Base(), nil, nil)
	fs := n.Floats("style.figsize")
	fs[0] = 99
	if n.Floats("style.figsize")[0] != 3.6 {
		t.Error("mutating a returned slice must not change the node")
	}
	rc := n.Map("style.rc_params")
	rc["x"] = 1
	if _, ok := n.Map("style.rc_params")["x"]; ok {
		t.Error("mutating a returned map must not change the node")
	}
}

func TestValidateResolvedConfig(t *testing.T) {
	n, err := Resolve(ForChart(testChart()), nil, Overrides{
		"style": map[string]any{
			"style":       "fancy",
			"dpi":         0,
			"spine_width": "thick",
			"font_params": map[string]any{"family": nil},
		},
		"chart.box_params.width": 1.5,
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	res := validate.Config(n)
	want := []string{"style.style", "style.dpi", "style.spine_width", "style.font_params.family", "chart.box_params.width"}
	if got := res.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Config() paths = %v, want %v", got, want)
	}
}

func TestMergeLayers(t *testing.T) {
	p, err := Preset("presentation")
	if err != nil {
		t.Fatal(err)
	}
	merged, err := Merge(Base(), p, Overrides{"style.font_params.size": 10})
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	n, err := Resolve(Base(), nil, merged)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	s := n.Style()
	if s.Style != "whitegrid" || s.Context != "talk" || s.Font.Size != 10 {
		t.Errorf("merged style = %+v", s)
	}
	if s.FigSize != [2]float64{6.4, 4.8} {
		t.Errorf("FigSize = %v", s.FigSize)
	}

	if _, err := Merge(Base(), Overrides{"nope": 1}); err == nil {
		t.Error("Merge() should reject unknown fields")
	}
	if _, err := Preset("poster"); err == nil {
		t.Error("Preset(poster) should fail")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"cfg.toml": "[style]\nstyle = \"whitegrid\"\ngrid = true\n[style.grid_params]\nalpha = 0.3\n",
		"cfg.yaml": "style:\n  style: whitegrid\n  grid: true\n  grid_params:\n    alpha: 0.3\n",
		"cfg.json": `{"style": {"style": "whitegrid", "grid": true, "grid_params": {"alpha": 0.3}}}`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			over, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error: %v", err)
			}
			n, err := Resolve(Base(), nil, over)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if res := validate.Config(n); !res.OK() {
				t.Fatalf("Config() = %v", res.Failures)
			}
			s := n.Style()
			if s.Style != "whitegrid" || !s.Grid || s.GridParams.Alpha != 0.3 {
				t.Errorf("Style() = %+v", s)
			}
		})
	}

	if _, err := LoadFile(filepath.Join(dir, "cfg.ini")); err == nil {
		t.Error("LoadFile() should fail for missing/unsupported file")
	}
}

func TestParseAssignments(t *testing.T) {
	over, err := ParseAssignments([]string{"style.grid=true", "style.figsize=[4, 3]", "style.style=whitegrid", "style.dpi=150"})
	if err != nil {
		t.Fatalf("ParseAssignments() error: %v", err)
	}
	n, err := Resolve(Base(), nil, over)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if res := validate.Config(n); !res.OK() {
		t.Fatalf("Config() = %v", res.Failures)
	}
	s := n.Style()
	if !s.Grid || s.Style != "whitegrid" || s.DPI != 150 || s.FigSize != [2]float64{4, 3} {
		t.Errorf("Style() = %+v", s)
	}

	if _, err := ParseAssignments([]string{"novalue"}); err == nil {
		t.Error("ParseAssignments() should reject missing '='")
	}
}
