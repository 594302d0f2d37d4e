package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/pipeline"
)

// stdin is read when the data argument is "-".
var stdin io.Reader = os.Stdin

// dataOpts holds the flags describing the data input. The label flags
// only apply to tabular files, which carry no metadata of their own.
type dataOpts struct {
	xLabel string
	yLabel string
	unit   string
	sheet  string
}

func (o *dataOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.xLabel, "x-label", "", "x axis label for .csv/.xlsx input")
	cmd.Flags().StringVar(&o.yLabel, "y-label", "", "y axis label for .csv/.xlsx input")
	cmd.Flags().StringVar(&o.unit, "unit", "", "measurement unit for .csv/.xlsx input")
	cmd.Flags().StringVar(&o.sheet, "sheet", "", "worksheet to read from .xlsx input (default first)")
}

// load fills the data fields of req from path. JSON and YAML payloads are
// kept as documents so the validator can report structural problems per
// field; tables are converted to a dataset directly.
func (o *dataOpts) load(path string, req *pipeline.Request) error {
	meta := dataset.Metadata{XLabel: o.xLabel, YLabel: o.yLabel, Unit: o.unit}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeResource, err, "open data")
		}
		defer f.Close()
		ds, err := dataset.FromCSV(f, meta)
		if err != nil {
			return errors.Wrap(errors.ErrCodeDataValidation, err, "%s", path)
		}
		req.Dataset = ds
	case ".xlsx":
		ds, err := dataset.FromXLSX(path, o.sheet, meta)
		if err != nil {
			return errors.Wrap(errors.ErrCodeDataValidation, err, "%s", path)
		}
		req.Dataset = ds
	default:
		var (
			doc *dataset.Document
			err error
		)
		if path == "-" {
			doc, err = dataset.Read(stdin)
		} else {
			var data []byte
			if data, err = os.ReadFile(path); err != nil {
				return errors.Wrap(errors.ErrCodeResource, err, "read data")
			}
			doc, err = dataset.Decode(data)
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeDataValidation, err, "%s", path)
		}
		req.Document = doc
	}
	return nil
}

// configOpts holds the flags contributing to the caller tier.
type configOpts struct {
	chart  string
	preset string
	file   string
	sets   []string
	strict bool
}

func (o *configOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.chart, "chart", pipeline.DefaultChart, "chart type ("+strings.Join(chart.Names(), ", ")+")")
	cmd.Flags().StringVar(&o.preset, "preset", "", "start from a named preset ("+strings.Join(config.PresetNames(), ", ")+")")
	cmd.Flags().StringVarP(&o.file, "config", "c", "", "configuration file (.toml, .yaml, .json)")
	cmd.Flags().StringArrayVar(&o.sets, "set", nil, "override one field, e.g. --set style.grid=true (repeatable)")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "fail instead of dropping style directives")

	_ = cmd.RegisterFlagCompletionFunc("chart", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return chart.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("preset", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return config.PresetNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// request builds a pipeline request carrying the merged caller tier.
// Sources merge in order preset, file, --set; later sources win per field.
func (o *configOpts) request() (pipeline.Request, error) {
	req := pipeline.Request{Chart: o.chart, Strict: o.strict}
	rd, err := chart.Lookup(o.chart)
	if err != nil {
		return req, errors.Wrap(errors.ErrCodeUnsupported, err, "chart")
	}

	var layers []config.Overrides
	if o.preset != "" {
		p, err := config.Preset(o.preset)
		if err != nil {
			return req, errors.Wrap(errors.ErrCodeConfigValidation, err, "preset")
		}
		layers = append(layers, p)
	}
	if o.file != "" {
		f, err := config.LoadFile(o.file)
		if err != nil {
			return req, errors.Wrap(errors.ErrCodeConfigValidation, err, "%s", o.file)
		}
		layers = append(layers, f)
	}
	if len(o.sets) > 0 {
		s, err := config.ParseAssignments(o.sets)
		if err != nil {
			return req, errors.Wrap(errors.ErrCodeConfigValidation, err, "--set")
		}
		layers = append(layers, s)
	}

	merged, err := config.Merge(config.ForChart(rd.Schema()), layers...)
	if err != nil {
		return req, err
	}
	req.Overrides = merged
	return req, nil
}
