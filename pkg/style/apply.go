package style

import "fmt"

// Target is a surface that accepts the built-in directives.
type Target interface {
	SetBaseStyle(name string) error
	SetContext(name string, scale float64) error
	SetFont(family string, size float64) error
	SetSpines(width float64, color string) error
	SetTicks(direction string, width, length float64, color string) error
	SetMinorTicks(width, length float64) error
	SetGrid(linestyle string, width, alpha float64, color string) error
	ClearGrid() error
	SetRaw(key string, value any) error
}

// ChartApplier receives the active chart-specific directives.
type ChartApplier func(ds []Directive) error

// Apply runs the active directives of p against t in plan order. The
// chart-specific directives are handed to chart as one batch at their
// position in the order; chart may be nil when there are none.
func Apply(t Target, p *Plan, chart ChartApplier) error {
	var batch []Directive
	flush := func() error {
		if len(batch) == 0 || chart == nil {
			batch = nil
			return nil
		}
		err := chart(batch)
		batch = nil
		return err
	}

	for _, d := range p.Active() {
		if d.Category == CategoryChart {
			batch = append(batch, d)
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		if err := applyOne(t, d); err != nil {
			return fmt.Errorf("apply %s: %w", d.Name, err)
		}
	}
	return flush()
}

func applyOne(t Target, d Directive) error {
	switch p := d.Payload.(type) {
	case BaseStyle:
		return t.SetBaseStyle(p.Name)
	case Context:
		return t.SetContext(p.Name, p.Scale)
	case Font:
		return t.SetFont(p.Family, p.Size)
	case Spines:
		return t.SetSpines(p.Width, p.Color)
	case Ticks:
		return t.SetTicks(p.Direction, p.Width, p.Length, p.Color)
	case MinorTicks:
		return t.SetMinorTicks(p.Width, p.Length)
	case Grid:
		return t.SetGrid(p.LineStyle, p.LineWidth, p.Alpha, p.Color)
	case GridOff:
		return t.ClearGrid()
	case Raw:
		return t.SetRaw(p.Key, p.Value)
	default:
		return fmt.Errorf("unknown payload %T", d.Payload)
	}
}
