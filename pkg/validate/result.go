// Package validate checks data payloads and configuration trees.
//
// All checks are pure and collect every failure instead of stopping at the
// first one. A [Result] is either empty (valid) or an ordered list of
// (field path, reason) pairs; [Result.Err] turns it into a coded error.
package validate

import (
	"fmt"

	"github.com/matzehuels/pubplot/pkg/errors"
)

// Result is the outcome of a validation call.
type Result struct {
	Failures []errors.Failure
}

// OK reports whether no failures were recorded.
func (r Result) OK() bool { return len(r.Failures) == 0 }

// Add records a failure.
func (r *Result) Add(path, reason string) {
	r.Failures = append(r.Failures, errors.Failure{Path: path, Reason: reason})
}

// Addf records a failure with a formatted reason.
func (r *Result) Addf(path, format string, args ...any) {
	r.Add(path, fmt.Sprintf(format, args...))
}

// Merge appends the failures of other.
func (r *Result) Merge(other Result) {
	r.Failures = append(r.Failures, other.Failures...)
}

// Err returns nil for a passing result, otherwise an *errors.Error with the
// given code carrying every failure.
func (r Result) Err(code errors.Code, message string) error {
	if r.OK() {
		return nil
	}
	return errors.Invalid(code, message, r.Failures)
}

// Paths returns the failing field paths in order.
func (r Result) Paths() []string {
	out := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		out[i] = f.Path
	}
	return out
}
