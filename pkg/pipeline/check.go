package pipeline

import (
	stderrors "errors"

	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/style"
	"github.com/matzehuels/pubplot/pkg/validate"
)

// Report is the outcome of Check. It never acquires a surface.
type Report struct {
	Chart          string           `json:"chart"`
	DataFailures   []errors.Failure `json:"data_failures,omitempty"`
	ConfigFailures []errors.Failure `json:"config_failures,omitempty"`
	Warnings       []style.Warning  `json:"warnings,omitempty"`

	// Config and Plan are nil when the configuration did not resolve.
	Config *config.Node `json:"-"`
	Plan   *style.Plan  `json:"-"`
}

// Valid reports whether neither data nor configuration failed.
func (r *Report) Valid() bool {
	return len(r.DataFailures) == 0 && len(r.ConfigFailures) == 0
}

// Failures returns data failures followed by configuration failures.
func (r *Report) Failures() []errors.Failure {
	return append(append([]errors.Failure(nil), r.DataFailures...), r.ConfigFailures...)
}

// Err converts the report into the error Execute would have returned.
func (r *Report) Err() error {
	var errs []error
	if len(r.DataFailures) > 0 {
		errs = append(errs, errors.Invalid(errors.ErrCodeDataValidation, "invalid dataset", r.DataFailures))
	}
	if len(r.ConfigFailures) > 0 {
		errs = append(errs, errors.Invalid(errors.ErrCodeConfigValidation, "invalid configuration", r.ConfigFailures))
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return stderrors.Join(errs...)
	}
}

// Check validates req without rendering. Data is only checked when the
// request carries a Dataset or Document, so Check also serves to inspect
// a configuration on its own. The error is non-nil only for an unknown
// chart type.
func (r *Runner) Check(req Request) (*Report, error) {
	rd, err := chart.Lookup(req.chart())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "check")
	}
	rep := &Report{Chart: rd.Name()}

	var data validate.Result
	switch {
	case req.Document != nil:
		data = validate.Payload(req.Document)
		if data.OK() {
			ds, err := req.Document.Dataset()
			if err != nil {
				data.Add("data", err.Error())
			} else {
				data.Merge(validate.Data(ds))
			}
		}
	case req.Dataset != nil:
		data = validate.Data(req.Dataset)
	}
	rep.DataFailures = data.Failures

	cfg, err := config.Resolve(config.ForChart(rd.Schema()), rd.Overlay(), req.Overrides)
	if err != nil {
		rep.ConfigFailures = failuresOf(err)
		return rep, nil
	}
	rep.Config = cfg
	if res := validate.Config(cfg); !res.OK() {
		rep.ConfigFailures = res.Failures
		return rep, nil
	}
	plan, err := r.plan(rd, cfg, req.policy())
	if err != nil {
		rep.ConfigFailures = failuresOf(err)
		return rep, nil
	}
	rep.Plan = plan
	rep.Warnings = plan.Warnings()
	return rep, nil
}

func failuresOf(err error) []errors.Failure {
	if fs := errors.FailuresOf(err); len(fs) > 0 {
		return fs
	}
	return []errors.Failure{{Reason: errors.UserMessage(err)}}
}
