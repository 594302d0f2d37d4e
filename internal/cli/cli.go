// Package cli implements the pubplot command-line interface.
//
// The commands are thin wrappers around [pipeline.Runner]:
//   - render: plot a dataset and write one or more artifacts
//   - validate: report every data and configuration failure
//   - plan: print the effective configuration and style plan
//   - charts: list the registered chart types
//   - serve: expose the same pipeline over HTTP
//   - cache: manage the artifact cache
//
// All commands support --verbose (-v) for debug logging and --trace to
// print OpenTelemetry spans for session stages to stderr.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pubplot/pkg/buildinfo"
	"github.com/matzehuels/pubplot/pkg/cache"
	_ "github.com/matzehuels/pubplot/pkg/chart/bar"
	_ "github.com/matzehuels/pubplot/pkg/chart/box"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/pipeline"
)

const (
	appName = "pubplot"

	// envRedisAddr selects the redis artifact cache when set.
	envRedisAddr = "PUBPLOT_REDIS_ADDR"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitInvalid  = 2
	ExitCanceled = 130
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	trace    bool
	shutdown func(context.Context) error
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pubplot renders publication-ready statistical charts",
		Long: `pubplot turns a grouped numeric dataset into a static box or bar chart.
Styling is resolved from three tiers (library defaults, chart defaults and
your overrides) and every dropped style directive is reported.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setupTracing,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.flushTracing(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVar(&c.trace, "trace", false, "print session stage spans to stderr")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.chartsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache picks the artifact cache: none with --no-cache, redis when
// PUBPLOT_REDIS_ADDR is set, otherwise the file cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv(envRedisAddr); addr != "" {
		cfg := cache.DefaultRedisConfig()
		cfg.Addr = addr
		rc, err := cache.NewRedisCache(ctx, cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeResource, err, "connect to redis at %s", addr)
		}
		c.Logger.Debug("using redis cache", "addr", addr)
		return rc, nil
	}
	fc, err := cache.NewFileCache(cache.DefaultDir())
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// ExitCode maps an error returned by the command tree to a process exit
// code: 2 for invalid input, 130 for cancellation, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errors.ErrCodeDataValidation),
		errors.Is(err, errors.ErrCodeConfigValidation),
		errors.Is(err, errors.ErrCodeInvalidFormat),
		errors.Is(err, errors.ErrCodeUnsupported):
		return ExitInvalid
	case isCanceled(err):
		return ExitCanceled
	default:
		return ExitFailure
	}
}
