package session

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pubplot/pkg/observability"
	"github.com/matzehuels/pubplot/pkg/render"
	"github.com/matzehuels/pubplot/pkg/style"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	logger  *log.Logger
	backend render.Backend
	policy  style.Policy
	hooks   observability.SessionHooks
	ctx     context.Context
}

func defaultOptions() options {
	return options{
		logger:  log.New(io.Discard),
		backend: render.Gonum{},
		hooks:   observability.Session(),
		ctx:     context.Background(),
	}
}

// WithLogger sets the logger for transitions and style warnings.
// A nil logger discards output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBackend sets the backend surfaces are acquired from.
func WithBackend(b render.Backend) Option {
	return func(o *options) {
		if b != nil {
			o.backend = b
		}
	}
}

// WithPolicy overrides style.prerequisite_policy.
func WithPolicy(p style.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithHooks overrides the globally registered session hooks.
func WithHooks(h observability.SessionHooks) Option {
	return func(o *options) {
		if h != nil {
			o.hooks = h
		}
	}
}

// WithContext sets the context passed to hooks. It carries trace spans
// only; sessions are not cancellable.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}
