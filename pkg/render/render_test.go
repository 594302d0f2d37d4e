package render

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/errors"
)

func acquire(t *testing.T) *Surface {
	t.Helper()
	s, err := Gonum{}.Acquire(Spec{Width: 2, Height: 1.5, DPI: 72})
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	t.Cleanup(s.Release)
	return s
}

func line(t *testing.T) plot.Plotter {
	t.Helper()
	l, err := plotter.NewLine(plotter.XYs{{X: 0, Y: -1}, {X: 1, Y: 2}})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func strp(s string) *string { return &s }

func TestAcquireInvalidSpec(t *testing.T) {
	tests := []Spec{
		{Width: 0, Height: 1, DPI: 72},
		{Width: 1, Height: -1, DPI: 72},
		{Width: 1, Height: 1, DPI: 0},
	}
	for _, spec := range tests {
		if _, err := (Gonum{}).Acquire(spec); !errors.Is(err, errors.ErrCodeResource) {
			t.Errorf("Acquire(%+v) error = %v, want RESOURCE_ERROR", spec, err)
		}
	}
}

func TestReleaseOnce(t *testing.T) {
	s, err := Gonum{}.Acquire(Spec{Width: 1, Height: 1, DPI: 50})
	if err != nil {
		t.Fatal(err)
	}
	calls := 0
	s.OnRelease(func() { calls++ })

	s.Release()
	s.Release()
	if calls != 1 {
		t.Errorf("release callbacks ran %d times, want 1", calls)
	}
	if !s.Released() {
		t.Error("Released() = false")
	}

	ops := map[string]error{
		"SetBaseStyle": s.SetBaseStyle("white"),
		"SetGrid":      s.SetGrid("-", 1, 1, "black"),
		"Add":          s.Add(),
		"Finalize":     s.Finalize(config.ElementParams{}, Labels{}),
		"Encode":       s.Encode(&bytes.Buffer{}, EncodeOptions{Format: "png"}),
	}
	for name, err := range ops {
		if !errors.Is(err, errors.ErrCodeResource) {
			t.Errorf("%s after release = %v, want RESOURCE_ERROR", name, err)
		}
	}
}

func TestBaseStyles(t *testing.T) {
	tests := []struct {
		name     string
		frame    bool
		grid     bool
		tickDir  string
		darkAxes bool
	}{
		{"white", true, false, "", false},
		{"ticks", true, false, "out", false},
		{"whitegrid", true, true, "", false},
		{"darkgrid", false, true, "", true},
		{"dark", false, false, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := acquire(t)
			if err := s.SetBaseStyle(tt.name); err != nil {
				t.Fatal(err)
			}
			th := s.Theme()
			if th.Frame != tt.frame || th.Grid != tt.grid || th.XTicks.Direction != tt.tickDir {
				t.Errorf("theme = %+v", th)
			}
			if (th.AxesBackground == darkAxes) != tt.darkAxes {
				t.Errorf("AxesBackground = %v", th.AxesBackground)
			}
		})
	}

	s := acquire(t)
	if err := s.SetBaseStyle("fancy"); !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("SetBaseStyle(fancy) = %v", err)
	}
}

func TestThemeSetters(t *testing.T) {
	s := acquire(t)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.SetBaseStyle("whitegrid"))
	must(s.SetContext("talk", 1.875))
	must(s.SetFont("serif", 8))
	must(s.SetGrid("--", 0.5, 0.3, "black"))
	must(s.SetTicks("in", 0.5, 2, "black"))
	must(s.SetMinorTicks(0.4, 1.5))

	th := s.Theme()
	if th.Scale != 1.875 || th.FontFamily != "serif" || th.FontSize != 8 {
		t.Errorf("theme = %+v", th)
	}
	if _, _, _, a := th.GridLine.Color.RGBA(); a == 0xffff {
		t.Error("grid alpha not applied")
	}
	if !th.XTicks.Minor || th.YTicks.Direction != "in" {
		t.Errorf("ticks = %+v / %+v", th.XTicks, th.YTicks)
	}
	if got := s.Points(2); got != vg.Points(3.75) {
		t.Errorf("Points(2) = %v, want scaled 3.75pt", got)
	}
	if f := s.Font(8); f.Variant != "Serif" || f.Typeface != "Liberation" {
		t.Errorf("Font() = %+v", f)
	}

	must(s.ClearGrid())
	if s.Theme().Grid {
		t.Error("ClearGrid() left grid on")
	}
	if err := s.SetContext("huge", 0); err == nil {
		t.Error("SetContext with zero scale should fail")
	}
	if err := s.SetSpines(1, "notacolor"); !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("SetSpines(bad color) = %v", err)
	}
}

func TestSetRaw(t *testing.T) {
	s := acquire(t)
	tests := []struct {
		key   string
		value any
		check func(Theme) bool
	}{
		{"axes.facecolor", "#eeeeee", func(th Theme) bool { return th.AxesBackground != color.White }},
		{"figure.facecolor", "none", func(th Theme) bool { return th.Background == color.Transparent }},
		{"axes.linewidth", 2.0, func(th Theme) bool { return th.FrameWidth == 2 }},
		{"axes.unicode_minus", true, func(th Theme) bool { return th.UnicodeMinus }},
		{"xtick.direction", "in", func(th Theme) bool { return th.XTicks.Direction == "in" && th.YTicks.Direction == "out" }},
		{"ytick.major.size", 5.0, func(th Theme) bool { return th.YTicks.Length == 5 }},
		{"font.family", "monospace", func(th Theme) bool { return fontVariant(th.FontFamily) == "Mono" }},
		{"grid.linestyle", ":", func(th Theme) bool { return th.GridLine.Style == ":" }},
	}
	for _, tt := range tests {
		if err := s.SetRaw(tt.key, tt.value); err != nil {
			t.Errorf("SetRaw(%s) error: %v", tt.key, err)
			continue
		}
		if !tt.check(s.Theme()) {
			t.Errorf("SetRaw(%s) had no effect: %+v", tt.key, s.Theme())
		}
	}

	if err := s.SetRaw("lines.linewidth", 1.0); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("unsupported key error = %v", err)
	}
	if err := s.SetRaw("axes.linewidth", "thick"); !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("bad value error = %v", err)
	}
}

func TestFinalizeAndEncode(t *testing.T) {
	s := acquire(t)
	if err := s.Encode(&bytes.Buffer{}, EncodeOptions{Format: "png"}); !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("Encode before Finalize = %v", err)
	}

	_ = s.SetTicks("inout", 0.5, 2, "black")
	_ = s.SetMinorTicks(0.4, 1)
	_ = s.SetRaw("axes.unicode_minus", true)
	if err := s.Add(line(t)); err != nil {
		t.Fatal(err)
	}
	el := config.ElementParams{
		Title:       strp("Custom"),
		Annotations: []config.Annotation{{Text: "peak", X: 1, Y: 2}},
		Ticks:       config.TickParams{YLim: []float64{-2, 3}},
	}
	if err := s.Finalize(el, Labels{Title: "Derived", XLabel: "x", YLabel: "y"}); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if err := s.Finalize(el, Labels{}); err == nil {
		t.Error("second Finalize should fail")
	}
	if s.plot.Title.Text != "Custom" || s.plot.X.Label.Text != "x" {
		t.Errorf("labels = %q / %q", s.plot.Title.Text, s.plot.X.Label.Text)
	}
	if s.plot.Y.Min != -2 || s.plot.Y.Max != 3 {
		t.Errorf("ylim = [%v, %v]", s.plot.Y.Min, s.plot.Y.Max)
	}

	magic := map[string]string{
		"pdf": "%PDF",
		"svg": "<svg",
		"eps": "%!PS",
		"png": "\x89PNG",
		"jpg": "\xff\xd8",
		"tif": "II",
	}
	for format, prefix := range magic {
		for _, transparent := range []bool{false, true} {
			var buf bytes.Buffer
			if err := s.Encode(&buf, EncodeOptions{Format: format, Transparent: transparent}); err != nil {
				t.Fatalf("Encode(%s) error: %v", format, err)
			}
			if !strings.Contains(buf.String()[:min(buf.Len(), 512)], prefix) {
				t.Errorf("Encode(%s) output does not contain %q", format, prefix)
			}
		}
	}
	if s.plot.BackgroundColor == nil {
		t.Error("transparent encode must restore the background")
	}

	if err := s.Encode(&bytes.Buffer{}, EncodeOptions{Format: "bmp"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Encode(bmp) = %v", err)
	}
}

func TestNominalTicks(t *testing.T) {
	s := acquire(t)
	_ = s.SetNominalX("a", "b", "c")
	_ = s.SetXRange(-0.5, 2.5)
	el := config.ElementParams{Ticks: config.TickParams{XTickLabels: []string{"A", "B", "C"}}}
	if err := s.Finalize(el, Labels{}); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	var labels []string
	for _, tk := range s.plot.X.Tick.Marker.Ticks(s.plot.X.Min, s.plot.X.Max) {
		labels = append(labels, tk.Label)
	}
	if strings.Join(labels, ",") != "A,B,C" {
		t.Errorf("tick labels = %v", labels)
	}

	s2 := acquire(t)
	el = config.ElementParams{Ticks: config.TickParams{YTicks: []float64{0, 1}, YTickLabels: []string{"zero"}}}
	if err := s2.Finalize(el, Labels{}); !errors.Is(err, errors.ErrCodeRender) {
		t.Errorf("mismatched yticklabels = %v", err)
	}
}

func TestTicker(t *testing.T) {
	base := plot.ConstantTicks{{Value: -1, Label: "-1"}, {Value: -0.5}, {Value: 0, Label: "0"}}

	got := ticker{Ticker: base, minor: false, unicodeMinus: true}.Ticks(-1, 0)
	if len(got) != 2 || got[0].Label != "−1" {
		t.Errorf("Ticks() = %+v", got)
	}
	got = ticker{Ticker: base, minor: true}.Ticks(-1, 0)
	if len(got) != 3 || got[0].Label != "-1" {
		t.Errorf("Ticks() = %+v", got)
	}
}

func TestDashes(t *testing.T) {
	w := vg.Points(2)
	tests := []struct {
		style string
		n     int
	}{
		{"-", 0}, {"solid", 0}, {"--", 2}, {"dashed", 2}, {":", 2}, {"-.", 4},
	}
	for _, tt := range tests {
		if got := Dashes(tt.style, w); len(got) != tt.n {
			t.Errorf("Dashes(%q) = %v", tt.style, got)
		}
	}
	if d := Dashes("--", w); d[0] != 3.7*w {
		t.Errorf("dash length not proportional to width: %v", d)
	}
}

func TestFormats(t *testing.T) {
	if got := strings.Join(Formats(), ","); got != "pdf,svg,eps,png,jpg,tif" {
		t.Errorf("Formats() = %s", got)
	}
	if !IsRaster("png") || IsRaster("pdf") {
		t.Error("IsRaster mismatch")
	}
	if ContentType("svg") != "image/svg+xml" {
		t.Error("ContentType(svg)")
	}
}

func TestEncodeRasterDPI(t *testing.T) {
	s := acquire(t)
	if err := s.Add(line(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.Finalize(config.ElementParams{}, Labels{}); err != nil {
		t.Fatal(err)
	}
	for _, tt := range []struct{ dpi, width int }{{0, 144}, {72, 144}, {144, 288}} {
		var buf bytes.Buffer
		if err := s.Encode(&buf, EncodeOptions{Format: "png", DPI: tt.dpi}); err != nil {
			t.Fatal(err)
		}
		cfg, err := png.DecodeConfig(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Width != tt.width {
			t.Errorf("DPI %d: width = %d px, want %d", tt.dpi, cfg.Width, tt.width)
		}
	}
}
