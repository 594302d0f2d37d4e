package cli

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pubplot/pkg/observability"
)

// setupTracing installs OpenTelemetry hooks when --trace is set.
func (c *CLI) setupTracing(cmd *cobra.Command, _ []string) error {
	if !c.trace || c.shutdown != nil {
		return nil
	}
	tp, err := observability.NewStdoutProvider(os.Stderr)
	if err != nil {
		return err
	}
	tracer := observability.NewTracer(tp.Tracer(appName))
	observability.SetSessionHooks(tracer)
	observability.SetPipelineHooks(tracer)
	observability.SetCacheHooks(tracer)
	observability.SetHTTPHooks(tracer)
	c.shutdown = tp.Shutdown
	c.Logger.Debug("tracing enabled")
	return nil
}

// flushTracing writes pending spans and restores the no-op hooks.
func (c *CLI) flushTracing(ctx context.Context) error {
	if c.shutdown == nil {
		return nil
	}
	shutdown := c.shutdown
	c.shutdown = nil
	observability.Reset()
	return shutdown(context.WithoutCancel(ctx))
}

func isCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled)
}

// Close flushes tracing. main calls it after the command returns, since
// cobra skips post-run hooks when a command fails.
func (c *CLI) Close(ctx context.Context) error {
	return c.flushTracing(ctx)
}
