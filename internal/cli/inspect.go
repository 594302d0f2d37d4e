package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/pipeline"
	"github.com/matzehuels/pubplot/pkg/style"
)

// check runs the pipeline's validation without rendering. With an empty
// path only the configuration is checked. Unknown fields in the merged
// caller tier are reported alongside data failures.
func (c *CLI) check(path string, data dataOpts, cfg configOpts) (*pipeline.Report, error) {
	req, err := cfg.request()
	var unknown []errors.Failure
	if err != nil {
		if unknown = errors.FailuresOf(err); len(unknown) == 0 {
			return nil, err
		}
	}
	if path != "" {
		if err := data.load(path, &req); err != nil {
			return nil, err
		}
	}
	rep, err := pipeline.NewRunner(nil, nil, c.Logger).Check(req)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		rep.ConfigFailures = unknown
		rep.Config, rep.Plan, rep.Warnings = nil, nil, nil
	}
	return rep, nil
}

// =============================================================================
// validate
// =============================================================================

func (c *CLI) validateCommand() *cobra.Command {
	var (
		data   dataOpts
		cfg    configOpts
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "validate [DATA]",
		Short: "Check a dataset and configuration without rendering",
		Long: `Validate reports every failing data and configuration field at once.
Without DATA only the configuration is checked. The exit status is 2 when
anything fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			rep, err := c.check(path, data, cfg)
			if err != nil {
				return err
			}
			if asJSON {
				if err := writeJSON(rep); err != nil {
					return err
				}
				return rep.Err()
			}
			if !rep.Valid() {
				return rep.Err()
			}
			if path != "" {
				printSuccess("%s is valid for a %s chart", path, rep.Chart)
			} else {
				printSuccess("Configuration is valid for a %s chart", rep.Chart)
			}
			printWarnings(rep.Warnings, true)
			if len(rep.Warnings) > 0 {
				printNextStep("Inspect the style plan", "pubplot plan --chart "+rep.Chart)
			}
			return nil
		},
	}

	cfg.register(cmd)
	data.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// =============================================================================
// plan
// =============================================================================

type planStep struct {
	Directive string         `json:"directive"`
	Category  style.Category `json:"category"`
	Active    bool           `json:"active"`
	Reason    string         `json:"reason,omitempty"`
}

type planOutput struct {
	Chart       string          `json:"chart"`
	Base        string          `json:"base"`
	Fingerprint string          `json:"fingerprint"`
	Config      []config.Entry  `json:"config"`
	Steps       []planStep      `json:"steps"`
	Warnings    []style.Warning `json:"warnings,omitempty"`
}

func (c *CLI) planCommand() *cobra.Command {
	var (
		cfg    configOpts
		all    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the effective configuration and style plan",
		Long: `Plan resolves the three configuration tiers for a chart type and prints
each field with the tier that supplied it, followed by the ordered style
directives. Dropped directives are listed with the reason.`,
		Example: `  pubplot plan --chart box --set style.style=white --set style.grid=true
  pubplot plan -c paper.toml --all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := c.check("", dataOpts{}, cfg)
			if err != nil {
				return err
			}
			if !rep.Valid() {
				return rep.Err()
			}
			p := newPlanOutput(rep, all)
			if asJSON {
				return writeJSON(p)
			}
			printPlan(p)
			return nil
		},
	}

	cfg.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "list default-valued fields too")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}

func newPlanOutput(rep *pipeline.Report, all bool) planOutput {
	p := planOutput{
		Chart:       rep.Chart,
		Base:        rep.Plan.Base,
		Fingerprint: rep.Config.Fingerprint(),
		Warnings:    rep.Warnings,
	}
	for _, e := range rep.Config.Entries() {
		if all || e.Provenance != config.ProvenanceDefault {
			p.Config = append(p.Config, e)
		}
	}
	for _, s := range rep.Plan.Steps {
		p.Steps = append(p.Steps, planStep{
			Directive: s.Directive.Name,
			Category:  s.Directive.Category,
			Active:    s.Active,
			Reason:    s.Reason,
		})
	}
	return p
}

func printPlan(p planOutput) {
	printKeyValue("Chart", p.Chart)
	printKeyValue("Base style", p.Base)
	printKeyValue("Fingerprint", p.Fingerprint[:12])

	fmt.Fprintln(out)
	fmt.Fprintln(out, StyleTitle.Render("Configuration"))
	if len(p.Config) == 0 {
		printDetail("all fields at their defaults (use --all to list them)")
	}
	pathStyle := lipgloss.NewStyle().Width(longestPath(p.Config) + 2)
	for _, e := range p.Config {
		fmt.Fprintln(out, "  "+pathStyle.Render(e.Path)+StyleValue.Render(formatValue(e.Value))+"  "+
			provenanceStyle(string(e.Provenance)).Render(string(e.Provenance)))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, StyleTitle.Render("Style plan"))
	for _, s := range p.Steps {
		if s.Active {
			printSuccess("%s %s", s.Directive, StyleDim.Render(s.Category.String()))
		} else {
			printWarning("%s dropped: %s", s.Directive, s.Reason)
		}
	}
}

func longestPath(es []config.Entry) int {
	n := 0
	for _, e := range es {
		n = max(n, len(e.Path))
	}
	return n
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// =============================================================================
// charts
// =============================================================================

func (c *CLI) chartsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "List the available chart types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range chart.Names() {
				line := name
				if name == pipeline.DefaultChart {
					line += StyleDim.Render(" (default)")
				}
				printInfo("%s", line)
			}
			return nil
		},
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
