package style

import (
	"sort"

	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/validate"
)

// rawParams lists the raw keys the rendering backend understands.
var rawParams = map[string]validate.Rule{
	"axes.facecolor":     {Kind: validate.KindColor},
	"figure.facecolor":   {Kind: validate.KindColor},
	"axes.edgecolor":     {Kind: validate.KindColor},
	"axes.linewidth":     {Kind: validate.KindFloat, Domain: validate.NonNegative()},
	"axes.unicode_minus": {Kind: validate.KindBool},
	"grid.color":         {Kind: validate.KindColor},
	"grid.linewidth":     {Kind: validate.KindFloat, Domain: validate.Positive()},
	"grid.alpha":         {Kind: validate.KindFloat, Domain: validate.UnitInterval()},
	"grid.linestyle":     {Kind: validate.KindString, OneOf: config.LineStyles},
	"xtick.major.size":   {Kind: validate.KindFloat, Domain: validate.NonNegative()},
	"ytick.major.size":   {Kind: validate.KindFloat, Domain: validate.NonNegative()},
	"xtick.major.width":  {Kind: validate.KindFloat, Domain: validate.NonNegative()},
	"ytick.major.width":  {Kind: validate.KindFloat, Domain: validate.NonNegative()},
	"xtick.direction":    {Kind: validate.KindString, OneOf: config.TickDirs},
	"ytick.direction":    {Kind: validate.KindString, OneOf: config.TickDirs},
	"font.size":          {Kind: validate.KindFloat, Domain: validate.Positive()},
	"font.family":        {Kind: validate.KindString},
}

// RawKeys returns the supported raw parameter keys, sorted.
func RawKeys() []string {
	keys := make([]string, 0, len(rawParams))
	for k := range rawParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rawDirectives builds one directive per rc key, sorted by key.
func rawDirectives(rc map[string]any) []Directive {
	keys := make([]string, 0, len(rc))
	for k := range rc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Directive, 0, len(keys))
	for _, k := range keys {
		path := "style.rc_params." + k
		d := Directive{
			Name:     NameRaw + ":" + k,
			Category: CategoryRaw,
			Fields:   []string{path},
			Payload:  Raw{Key: k, Value: rc[k]},
		}
		rule, ok := rawParams[k]
		switch {
		case !ok:
			d.Unsupported = "unsupported raw parameter"
		default:
			rule.Required = true
			if res := validate.Check(path, rule, rc[k], true); !res.OK() {
				d.Unsupported = "invalid raw parameter: " + res.Failures[0].Reason
				break
			}
			v, _ := validate.Coerce(rule.Kind, rc[k])
			d.Payload = Raw{Key: k, Value: v}
		}
		out = append(out, d)
	}
	return out
}
