// Package session implements the plot lifecycle.
//
// A [Session] takes one dataset through a strictly sequential pipeline:
//
//	created -> validated -> surface_ready -> data_prepared -> styled
//	        -> rendered -> finalized -> saved -> closed
//
// Validation happens before any surface is acquired and reports every
// failing data and configuration field. Any failure after acquisition
// releases the surface before the error is returned, and [Session.Close]
// releases it exactly once on the success path. A session plots once and
// may save any number of times.
//
// # Usage
//
//	s, err := session.Open("box", config.Overrides{"style.grid": true})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if err := s.Plot(ds); err != nil {
//	    return err
//	}
//	for _, w := range s.Warnings() {
//	    fmt.Println(w)
//	}
//	return s.Save("figures/weights.pdf")
package session

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/render"
	"github.com/matzehuels/pubplot/pkg/style"
	"github.com/matzehuels/pubplot/pkg/validate"
)

// Session is one scoped use of the plot lifecycle. It is not safe for
// concurrent use.
type Session struct {
	id       string
	renderer chart.Renderer
	cfg      *config.Node
	opts     options
	lc       *lifecycle

	plotted  bool
	plan     *style.Plan
	warnings []style.Warning
	rep      chart.Representation
	surface  *render.Surface
}

// New resolves the configuration for renderer and returns a session in
// the created state. Unknown override fields fail here with INVALID_CONFIG.
func New(r chart.Renderer, overrides config.Overrides, opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg, err := config.Resolve(config.ForChart(r.Schema()), r.Overlay(), overrides)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	lc, err := newLifecycle(id, o.logger)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create session")
	}
	return &Session{id: id, renderer: r, cfg: cfg, opts: o, lc: lc}, nil
}

// Open looks up a registered chart type and creates a session for it.
func Open(chartName string, overrides config.Overrides, opts ...Option) (*Session, error) {
	r, err := chart.Lookup(chartName)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "open session")
	}
	return New(r, overrides, opts...)
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Chart() string        { return s.renderer.Name() }
func (s *Session) State() State         { return s.lc.state() }
func (s *Session) Config() *config.Node { return s.cfg }

// Plan returns the resolved style plan, or nil before validation.
func (s *Session) Plan() *style.Plan { return s.plan }

// Warnings returns the dropped style directives.
func (s *Session) Warnings() []style.Warning { return slices.Clone(s.warnings) }

// History returns the recorded transitions in order.
func (s *Session) History() []Transition { return s.lc.history() }

// Plot runs the pipeline on a copy of ds up to the finalized state.
func (s *Session) Plot(ds *dataset.Dataset) error {
	if err := s.begin(); err != nil {
		return err
	}
	return s.run(nil, ds.Clone())
}

// PlotDocument is Plot for a raw data document. The payload structure is
// validated before the dataset is built from it.
func (s *Session) PlotDocument(doc *dataset.Document) error {
	if err := s.begin(); err != nil {
		return err
	}
	return s.run(doc, nil)
}

func (s *Session) begin() error {
	if s.lc.state() == StateClosed {
		return errClosed()
	}
	if s.plotted {
		return s.abort(errors.New(errors.ErrCodeSessionState, "already plotted"))
	}
	s.plotted = true
	return nil
}

func errClosed() error {
	return errors.New(errors.ErrCodeSessionState, "session closed")
}

func (s *Session) run(doc *dataset.Document, ds *dataset.Dataset) (err error) {
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	err = s.stage("validate", evValidate, func() error {
		ds, err = s.validate(doc, ds)
		return err
	})
	if err != nil {
		return err
	}
	if err = s.stage("acquire", evAcquire, s.acquire); err != nil {
		return err
	}
	err = s.stage("prepare", evPrepare, func() error {
		s.rep, err = s.renderer.Prepare(ds, s.cfg)
		return err
	})
	if err != nil {
		return err
	}
	err = s.stage("style", evStyle, func() error {
		return style.Apply(s.surface, s.plan, func(ds []style.Directive) error {
			return s.renderer.ApplyChartStyle(s.surface, ds)
		})
	})
	if err != nil {
		return coded(errors.ErrCodeRender, err, "apply style")
	}
	err = s.stage("render", evRender, func() error {
		return s.renderer.Render(s.surface, s.rep, s.cfg)
	})
	if err != nil {
		return coded(errors.ErrCodeRender, err, "render %s", s.renderer.Name())
	}
	err = s.stage("finalize", evFinalize, func() error {
		return s.surface.Finalize(s.cfg.Element(), s.rep.Labels())
	})
	if err != nil {
		return coded(errors.ErrCodeRender, err, "finalize")
	}
	return nil
}

// stage runs fn inside a hook span and fires ev when fn succeeds.
func (s *Session) stage(name, ev string, fn func() error) error {
	end := s.opts.hooks.OnStage(s.opts.ctx, s.id, name)
	err := fn()
	if err == nil {
		err = s.lc.fire(ev)
	}
	end(err)
	return err
}

// validate checks data and configuration and resolves the style plan.
// Both sides are always checked; when both fail the data error comes
// first in the joined result.
func (s *Session) validate(doc *dataset.Document, ds *dataset.Dataset) (*dataset.Dataset, error) {
	var data validate.Result
	if doc != nil {
		data = validate.Payload(doc)
		if data.OK() {
			d, err := doc.Dataset()
			if err != nil {
				data.Add("data", err.Error())
			}
			ds = d
		}
	}
	if data.OK() {
		data.Merge(validate.Data(ds))
	}
	dataErr := data.Err(errors.ErrCodeDataValidation, "invalid dataset")

	cfgErr := validate.Config(s.cfg).Err(errors.ErrCodeConfigValidation, "invalid configuration")
	if cfgErr == nil {
		opts := []style.Option{style.WithChartDirectives(s.renderer.Directives(s.cfg)...)}
		if s.opts.policy != "" {
			opts = append(opts, style.WithPolicy(s.opts.policy))
		}
		s.plan, cfgErr = style.Resolve(s.cfg, opts...)
	}

	switch {
	case dataErr != nil && cfgErr != nil:
		return nil, stderrors.Join(dataErr, cfgErr)
	case dataErr != nil:
		return nil, dataErr
	case cfgErr != nil:
		return nil, cfgErr
	}

	s.warnings = s.plan.Warnings()
	for _, w := range s.warnings {
		if w.Explicit {
			s.opts.logger.Warn("style directive dropped", "session", s.id, "directive", w.Directive, "reason", w.Reason)
		} else {
			s.opts.logger.Debug("style directive dropped", "session", s.id, "directive", w.Directive, "reason", w.Reason)
		}
		s.opts.hooks.OnStyleWarning(s.opts.ctx, s.id, w.Directive, w.Reason)
	}
	return ds, nil
}

func (s *Session) acquire() error {
	st := s.cfg.Style()
	sf, err := s.opts.backend.Acquire(render.Spec{Width: st.FigSize[0], Height: st.FigSize[1], DPI: st.DPI})
	if err != nil {
		return coded(errors.ErrCodeResource, err, "acquire surface")
	}
	s.surface = sf
	sf.OnRelease(func() {
		s.opts.hooks.OnSurfaceReleased(s.opts.ctx, s.id)
	})
	s.opts.hooks.OnSurfaceAcquired(s.opts.ctx, s.id)
	return nil
}

// Save writes the artifact to path, creating parent directories. The
// format comes from the file extension, falling back to output.format when
// there is none; an empty path uses output.path. Save may be called
// repeatedly. Any failure closes the session.
func (s *Session) Save(path string) error {
	if err := s.saveable(); err != nil {
		return err
	}
	out := s.cfg.Output()
	if path == "" {
		path = out.Path
	}
	if path == "" {
		return s.abort(errors.New(errors.ErrCodeConfigValidation, "no destination: pass a path or set output.path"))
	}
	format, err := FormatOf(path, out.Format)
	if err != nil {
		return s.abort(err)
	}

	return s.abort(s.stage("save", evSave, func() error {
		data, err := s.encode(format)
		if err != nil {
			return err
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeResource, err, "create %s", dir)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeResource, err, "write %s", path)
		}
		s.opts.logger.Debug("artifact saved", "session", s.id, "path", path, "format", format, "bytes", len(data))
		return nil
	}))
}

// Artifact returns the encoded artifact in memory. Besides the image
// formats, "json" yields the prepared representation together with the
// config fingerprint and warnings. Like Save, a failure closes the session.
func (s *Session) Artifact(format string) ([]byte, error) {
	if err := s.saveable(); err != nil {
		return nil, err
	}
	if format == "" {
		format = s.cfg.Output().Format
	}
	data, err := s.encode(format)
	if err != nil {
		return nil, s.abort(err)
	}
	return data, nil
}

func (s *Session) saveable() error {
	switch s.lc.state() {
	case StateClosed:
		return errClosed()
	case StateFinalized, StateSaved:
		return nil
	default:
		return s.abort(errors.New(errors.ErrCodeSessionState, "nothing to save in state %s", s.lc.state()))
	}
}

// abort closes the session when err is non-nil and returns err.
func (s *Session) abort(err error) error {
	if err != nil {
		_ = s.Close()
	}
	return err
}

type jsonArtifact struct {
	Chart          string               `json:"chart"`
	Config         string               `json:"config"`
	Plan           string               `json:"plan"`
	Representation chart.Representation `json:"representation"`
	Warnings       []style.Warning      `json:"warnings"`
}

func (s *Session) encode(format string) ([]byte, error) {
	if format == "json" {
		data, err := json.MarshalIndent(jsonArtifact{
			Chart:          s.renderer.Name(),
			Config:         s.cfg.Fingerprint(),
			Plan:           s.plan.Fingerprint(),
			Representation: s.rep,
			Warnings:       s.Warnings(),
		}, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json artifact")
		}
		return data, nil
	}
	out := s.cfg.Output()
	var buf bytes.Buffer
	err := s.surface.Encode(&buf, render.EncodeOptions{Format: format, Transparent: out.Transparent, DPI: out.DPI})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close releases the surface, if one was acquired, and moves the session
// to closed. It is idempotent.
func (s *Session) Close() error {
	if s.lc.state() == StateClosed {
		return nil
	}
	end := s.opts.hooks.OnStage(s.opts.ctx, s.id, "close")
	if s.surface != nil {
		s.surface.Release()
	}
	err := s.lc.fire(evClose)
	end(err)
	return err
}

// FormatOf derives the output format from a path's extension. A path
// without an extension yields def; an extension that names no supported
// format is an INVALID_FORMAT error.
func FormatOf(path, def string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "":
		return def, nil
	case "jpeg":
		ext = "jpg"
	case "tiff":
		ext = "tif"
	}
	if !slices.Contains(config.Formats, ext) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output extension %q in %s (must be one of: %s)",
			ext, path, strings.Join(config.Formats, ", "))
	}
	return ext, nil
}

// coded wraps err with code unless it already carries one.
func coded(code errors.Code, err error, format string, args ...any) error {
	if err == nil || errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(code, err, format, args...)
}
