// Package pipeline runs one chart end to end: open a session, plot,
// encode every requested format and cache the artifacts. The CLI and the
// HTTP server both go through a [Runner] so they behave identically.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Request{
//	    Chart:     "box",
//	    Dataset:   ds,
//	    Overrides: config.Overrides{"style.grid": true},
//	    Formats:   []string{"pdf", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	pdf := res.Artifacts["pdf"]
//
// Validation without rendering:
//
//	report, err := runner.Check(pipeline.Request{Chart: "box", Document: doc})
//	if err == nil && !report.Valid() {
//	    for _, f := range report.Failures() { ... }
//	}
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/style"
)

// DefaultChart is used when a request names no chart type.
const DefaultChart = "box"

// Request describes one render. Exactly one of Dataset and Document is
// normally set; Document is validated structurally first.
type Request struct {
	Chart     string            `json:"chart,omitempty"`
	Dataset   *dataset.Dataset  `json:"-"`
	Document  *dataset.Document `json:"-"`
	Overrides config.Overrides  `json:"config,omitempty"`

	// Formats to encode; empty means output.format.
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses cache reads. Fresh artifacts are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Strict turns dropped style directives into INVALID_CONFIG errors.
	Strict bool `json:"strict,omitempty"`
}

func (r Request) chart() string {
	if r.Chart == "" {
		return DefaultChart
	}
	return r.Chart
}

func (r Request) policy() style.Policy {
	if r.Strict {
		return style.PolicyError
	}
	return ""
}

// Result is the outcome of Execute.
type Result struct {
	Chart             string            `json:"chart"`
	Artifacts         map[string][]byte `json:"-"`
	Warnings          []style.Warning   `json:"warnings"`
	ConfigFingerprint string            `json:"config_fingerprint"`
	CacheHit          bool              `json:"cache_hit"`
	Stats             Stats             `json:"stats"`
}

// Stats reports what was drawn and how long it took.
type Stats struct {
	Groups     int           `json:"groups"`
	Samples    int           `json:"samples"`
	PlotTime   time.Duration `json:"plot_time"`
	EncodeTime time.Duration `json:"encode_time"`
	Total      time.Duration `json:"total"`
}

// ValidateFormat checks a single output format name.
func ValidateFormat(format string) error {
	if !slices.Contains(config.Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (must be one of: %s)",
			format, strings.Join(config.Formats, ", "))
	}
	return nil
}

// ValidateFormats checks every format and rejects duplicates.
func ValidateFormats(formats []string) error {
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
		if seen[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "format %q requested twice", f)
		}
		seen[f] = true
	}
	return nil
}

// ParseFormats splits a comma-separated list, trimming blanks.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// OutputPath returns the path for one format of a multi-format render.
// With a single format dest is used as given; otherwise dest's extension
// is replaced by the format.
func OutputPath(dest, format string, multi bool) string {
	if !multi {
		return dest
	}
	return strings.TrimSuffix(dest, filepath.Ext(dest)) + "." + format
}

// WriteArtifacts writes every artifact of res next to dest and returns
// the written paths in format order.
func WriteArtifacts(dest string, formats []string, res *Result) ([]string, error) {
	var paths []string
	for _, f := range formats {
		data, ok := res.Artifacts[f]
		if !ok {
			return paths, errors.New(errors.ErrCodeInternal, "missing %s artifact", f)
		}
		path := OutputPath(dest, f, len(formats) > 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, errors.Wrap(errors.ErrCodeResource, err, "create %s", dir)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeResource, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// countSamples returns the group and sample counts of ds.
func countSamples(ds *dataset.Dataset) (groups, samples int) {
	if ds == nil {
		return 0, 0
	}
	for _, g := range ds.Groups {
		samples += len(g.Values)
	}
	return len(ds.Groups), samples
}

func describe(formats []string) string {
	return fmt.Sprintf("[%s]", strings.Join(formats, ","))
}
