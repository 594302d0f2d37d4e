package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pubplot/pkg/pipeline"
	"github.com/matzehuels/pubplot/pkg/session"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file; with several formats its extension is replaced
	formats string // comma-separated formats; empty means the -o extension, then output.format
	noCache bool
	refresh bool

	data   dataOpts
	config configOpts
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render DATA",
		Short: "Render a dataset to PDF, SVG, EPS, PNG, JPG, TIF or JSON",
		Long: `Render plots a dataset and writes the chart.

DATA is a JSON or YAML document of the form

  data:
    values:
      control: [10, 12, 11]
      treated: [15, 17, 19]
  metadata:
    x_label: Group
    y_label: Weight
    unit: g

or a .csv/.xlsx table with one column per group. Pass "-" to read a
document from stdin.`,
		Example: `  pubplot render weights.yaml -o fig.pdf
  pubplot render weights.csv --y-label Weight --chart bar -f pdf,png -o figs/weights
  pubplot render weights.yaml --preset paper --set style.grid=true --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	opts.config.register(cmd)
	opts.data.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: DATA name with the format extension)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output formats, comma-separated (pdf, svg, eps, png, jpg, tif, json)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached artifacts exist")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	req, err := opts.config.request()
	if err != nil {
		return err
	}
	if err := opts.data.load(path, &req); err != nil {
		return err
	}
	req.Refresh = opts.refresh
	req.Formats = pipeline.ParseFormats(opts.formats)
	if opts.output != "" {
		f, err := session.FormatOf(opts.output, "")
		if err != nil {
			return err
		}
		if len(req.Formats) == 0 && f != "" {
			req.Formats = []string{f}
		}
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	var sp *spinner
	if c.Logger.GetLevel() > log.DebugLevel {
		sp = newSpinner(ctx, os.Stderr, "Rendering "+req.Chart+" chart...")
		sp.Start()
	}
	res, err := runner.Execute(ctx, req)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	formats := req.Formats
	if len(formats) == 0 {
		for f := range res.Artifacts {
			formats = append(formats, f)
		}
	}
	dest := opts.output
	if dest == "" {
		dest = defaultOutput(path, formats[0])
	}
	if len(formats) == 1 {
		if f, _ := session.FormatOf(dest, ""); f != formats[0] {
			dest = pipeline.OutputPath(dest, formats[0], true)
		}
	}
	paths, err := pipeline.WriteArtifacts(dest, formats, res)
	if err != nil {
		return err
	}
	prog.done("render finished", "chart", res.Chart, "cached", res.CacheHit)

	printSuccess("Rendered %s chart", res.Chart)
	printStats(res.Stats.Groups, res.Stats.Samples, res.CacheHit)
	for _, p := range paths {
		printFile(p)
	}
	printWarnings(res.Warnings, c.Logger.GetLevel() <= log.DebugLevel)
	return nil
}

// defaultOutput derives the output file from the data file name, written
// to the working directory. It never names the input file itself.
func defaultOutput(dataPath, format string) string {
	if dataPath == "-" {
		return "chart." + format
	}
	name := filepath.Base(dataPath)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if file := base + "." + format; file != name {
		return file
	}
	return base + ".chart." + format
}
