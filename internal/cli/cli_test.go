package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/observability"
)

const weightsYAML = `
data:
  values:
    control: [10, 12, 11, 13, 12]
    treated: [15, 17, 19, 16]
metadata:
  x_label: Diet
  y_label: Weight
  unit: g
`

// execute runs the command tree with output captured. The cache lives in
// a temp dir and redis is never selected.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevErr := out, errOut
	out, errOut = &buf, &buf
	t.Cleanup(func() { out, errOut = prevOut, prevErr })
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(envRedisAddr, "")

	c := New(io.Discard, LogDebug)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderWritesEveryFormat(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "weights.yaml", weightsYAML)

	got, err := execute(t, "render", data, "-o", filepath.Join(dir, "figs", "weights.pdf"),
		"-f", "svg,png", "--set", "style.dpi=72")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, got)
	}
	for _, name := range []string{"weights.svg", "weights.png"} {
		if _, err := os.Stat(filepath.Join(dir, "figs", name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(got, "Rendered box chart") || !strings.Contains(got, "2 groups") {
		t.Errorf("output = %q", got)
	}
}

func TestRenderFormatFromOutputExtension(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "weights.yaml", weightsYAML)
	dest := filepath.Join(dir, "fig.svg")

	if _, err := execute(t, "render", data, "-o", dest, "--no-cache"); err != nil {
		t.Fatal(err)
	}
	svg, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("%s is not an svg document", dest)
	}
}

func TestRenderCSV(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "weights.csv", "control,treated\n10,15\n12,17\n11,\n")
	dest := filepath.Join(dir, "weights.json")

	_, err := execute(t, "render", data, "--chart", "bar", "--x-label", "Diet", "--y-label", "Weight",
		"-f", "json", "-o", dest, "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	artifact, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(artifact, []byte(`"chart": "bar"`)) {
		t.Errorf("json artifact = %s", artifact)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", weightsYAML)
	list := writeFile(t, dir, "list.yaml", "data:\n  values: [1, 2, 3]\nmetadata:\n  x_label: x\n  y_label: y\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"values as list", []string{"render", list, "-o", filepath.Join(dir, "a.pdf")}, errors.ErrCodeDataValidation},
		{"unknown field", []string{"render", good, "--set", "style.colour=red"}, errors.ErrCodeConfigValidation},
		{"unknown chart", []string{"render", good, "--chart", "pie"}, errors.ErrCodeUnsupported},
		{"bad format", []string{"render", good, "-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"bad output extension", []string{"render", good, "-o", filepath.Join(dir, "fig.gif")}, errors.ErrCodeInvalidFormat},
		{"unknown preset", []string{"render", good, "--preset", "poster"}, errors.ErrCodeConfigValidation},
		{"strict grid", []string{"render", good, "--strict", "--set", "style.style=white", "--set", "style.grid=true"}, errors.ErrCodeConfigValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append(tt.args, "--no-cache")...)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			if got := ExitCode(err); got != ExitInvalid {
				t.Errorf("ExitCode = %d, want %d", got, ExitInvalid)
			}
		})
	}
}

func TestValidateReportsDataAndConfig(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "bad.yaml", "data:\n  values:\n    a: []\nmetadata:\n  x_label: x\n  y_label: y\n")

	_, err := execute(t, "validate", data, "--set", "style.colour=red")
	if err == nil {
		t.Fatal("validate accepted an empty group")
	}
	if errors.GetCode(err) != errors.ErrCodeDataValidation || !errors.Is(err, errors.ErrCodeConfigValidation) {
		t.Errorf("err = %v, want data then config", err)
	}
	var paths []string
	for _, f := range errors.FailuresOf(err) {
		paths = append(paths, f.Path)
	}
	joined := strings.Join(paths, ",")
	if !strings.Contains(joined, "data.values.a") || !strings.Contains(joined, "style.colour") {
		t.Errorf("failure paths = %v", paths)
	}
}

func TestValidateValid(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "weights.yaml", weightsYAML)

	got, err := execute(t, "validate", data, "--set", "style.style=white", "--set", "style.grid=true")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "is valid for a box chart") || !strings.Contains(got, "grid dropped") {
		t.Errorf("output = %q", got)
	}
}

func TestPlan(t *testing.T) {
	got, err := execute(t, "plan", "--set", "style.style=white", "--set", "style.grid=true")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"style.grid", "overridden", "grid dropped", "Style plan"} {
		if !strings.Contains(got, want) {
			t.Errorf("plan output lacks %q:\n%s", want, got)
		}
	}
}

func TestPlanJSON(t *testing.T) {
	got, err := execute(t, "plan", "--all", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `"provenance": "default"`) || !strings.Contains(got, `"steps"`) {
		t.Errorf("plan json = %s", got)
	}
}

func TestCharts(t *testing.T) {
	got, err := execute(t, "charts")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "bar") || !strings.Contains(got, "box (default)") {
		t.Errorf("charts output = %q", got)
	}
}

func TestCachePathAndClear(t *testing.T) {
	got, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), appName) {
		t.Errorf("cache path = %q", got)
	}
	if got, err := execute(t, "cache", "clear"); err != nil || !strings.Contains(got, "Cache cleared") {
		t.Errorf("cache clear = %q, %v", got, err)
	}
}

func TestTraceRestoresHooks(t *testing.T) {
	if _, err := execute(t, "--trace", "charts"); err != nil {
		t.Fatal(err)
	}
	if _, ok := observability.Session().(observability.NoopSessionHooks); !ok {
		t.Errorf("session hooks = %T after the command finished", observability.Session())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New(errors.ErrCodeDataValidation, "bad"), ExitInvalid},
		{stderrors.Join(errors.New(errors.ErrCodeDataValidation, "bad"), errors.New(errors.ErrCodeConfigValidation, "bad")), ExitInvalid},
		{errors.New(errors.ErrCodeResource, "disk"), ExitFailure},
		{context.Canceled, ExitCanceled},
		{stderrors.New("boom"), ExitFailure},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		data, format, want string
	}{
		{"data/weights.yaml", "pdf", "weights.pdf"},
		{"weights.json", "json", "weights.chart.json"},
		{"-", "svg", "chart.svg"},
	}
	for _, tt := range tests {
		if got := defaultOutput(tt.data, tt.format); got != tt.want {
			t.Errorf("defaultOutput(%q, %q) = %q, want %q", tt.data, tt.format, got, tt.want)
		}
	}
}

func TestPrintErrorListsFailures(t *testing.T) {
	var buf bytes.Buffer
	prev := errOut
	errOut = &buf
	t.Cleanup(func() { errOut = prev })

	PrintError(stderrors.Join(
		errors.Invalid(errors.ErrCodeDataValidation, "invalid dataset", []errors.Failure{{Path: "metadata.x_label", Reason: "required"}}),
		errors.Invalid(errors.ErrCodeConfigValidation, "invalid configuration", []errors.Failure{{Path: "style.dpi", Reason: "must be > 0"}}),
	))
	got := buf.String()
	for _, want := range []string{"invalid dataset (1)", "metadata.x_label", "invalid configuration (1)", "style.dpi"} {
		if !strings.Contains(got, want) {
			t.Errorf("PrintError output lacks %q:\n%s", want, got)
		}
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		got, err := execute(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(got, appName) {
			t.Errorf("%s script does not mention %s", shell, appName)
		}
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion accepted an unknown shell")
	}
}
