// Package chart defines the contract between the plot lifecycle and the
// chart-type specific renderers.
//
// A [Renderer] owns everything that differs between chart types: its
// parameter schema, the overlay it applies on top of the base defaults,
// how a dataset is reduced to a drawable [Representation], which
// chart-specific style directives it contributes and how it draws. The
// lifecycle never branches on the chart type; it only calls through this
// interface.
//
// Renderers are registered by name from their package's init function and
// constructed fresh for every session:
//
//	import _ "github.com/matzehuels/pubplot/pkg/chart/box"
//
//	r, err := chart.Lookup("box")
package chart

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/render"
	"github.com/matzehuels/pubplot/pkg/style"
)

// Representation is the prepared, chart-specific drawing input.
type Representation interface {
	// Labels returns the dataset-derived title and axis labels used where
	// the element configuration leaves them null.
	Labels() render.Labels
}

// Renderer draws one chart type. A Renderer may keep state between
// ApplyChartStyle and Render and is therefore used by a single session.
type Renderer interface {
	Name() string
	Schema() *config.Schema
	Overlay() config.Overrides

	Prepare(ds *dataset.Dataset, cfg *config.Node) (Representation, error)
	Directives(cfg *config.Node) []style.Directive
	ApplyChartStyle(s *render.Surface, ds []style.Directive) error
	Render(s *render.Surface, rep Representation, cfg *config.Node) error
}

// Factory constructs a Renderer.
type Factory func() Renderer

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register makes a chart type available by name. It panics when name is
// already registered.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("chart: Register called twice for %q", name))
	}
	registry[name] = f
}

// Lookup constructs a new renderer for the named chart type.
func Lookup(name string) (Renderer, error) {
	mu.RLock()
	f, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown chart %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

// Names returns the registered chart types, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultLabels derives axis labels and a title from dataset metadata:
// the y label carries the unit in parentheses and the title reads
// "{y_label} by {x_label}".
func DefaultLabels(m dataset.Metadata) render.Labels {
	y := m.YLabel
	if m.Unit != "" {
		y = fmt.Sprintf("%s (%s)", m.YLabel, m.Unit)
	}
	return render.Labels{
		Title:  fmt.Sprintf("%s by %s", m.YLabel, m.XLabel),
		XLabel: m.XLabel,
		YLabel: y,
	}
}

// Categorical places n named categories at x = 0..n-1 with half a slot of
// margin on either side.
func Categorical(s *render.Surface, names []string) error {
	if err := s.SetNominalX(names...); err != nil {
		return err
	}
	return s.SetXRange(-0.5, float64(len(names))-0.5)
}
