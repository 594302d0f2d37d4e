package validate

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pubplot/pkg/dataset"
)

// Payload checks the structure of a raw data document: values must be a
// mapping from group name to a sequence of numbers and the metadata labels
// must be strings.
func Payload(doc *dataset.Document) Result {
	var res Result
	if doc == nil || doc.Root() == nil || doc.Root().Kind != yaml.MappingNode {
		res.Add("", "payload must be a mapping with data and metadata")
		return res
	}

	data := doc.Lookup("data")
	values := doc.Lookup("data", "values")
	switch {
	case data == nil:
		res.Add("data", "required field is missing")
	case values == nil:
		res.Add("data.values", "required field is missing")
	case values.Kind != yaml.MappingNode:
		res.Add("data.values", "must be a mapping of group name to samples")
	default:
		seen := make(map[string]bool)
		for _, kv := range dataset.Entries(values) {
			name := kv[0].Value
			path := "data.values." + name
			if seen[name] {
				res.Add(path, "duplicate group name")
			}
			seen[name] = true
			seq := kv[1]
			if seq == nil || seq.Kind != yaml.SequenceNode {
				res.Add(path, "must be a sequence of numbers")
				continue
			}
			for i, item := range seq.Content {
				if _, ok := dataset.Number(item); !ok {
					res.Addf(fmt.Sprintf("%s[%d]", path, i), "not a number: %q", item.Value)
				}
			}
		}
	}

	meta := doc.Lookup("metadata")
	if meta == nil {
		res.Add("metadata", "required field is missing")
		return res
	}
	for _, key := range []string{"x_label", "y_label", "unit"} {
		n := dataset.Field(meta, key)
		if n == nil {
			continue
		}
		if _, ok := dataset.String(n); !ok {
			res.Add("metadata."+key, "must be a string")
		}
	}
	return res
}

// Data checks the semantic invariants of a dataset: at least one group,
// unique non-empty names, non-empty finite samples and both axis labels.
func Data(ds *dataset.Dataset) Result {
	var res Result
	if ds == nil {
		res.Add("data", "required field is missing")
		return res
	}

	if len(ds.Groups) == 0 {
		res.Add("data.values", "must contain at least one group")
	}
	seen := make(map[string]bool, len(ds.Groups))
	for i, g := range ds.Groups {
		path := "data.values." + g.Name
		if strings.TrimSpace(g.Name) == "" {
			path = fmt.Sprintf("data.values[%d]", i)
			res.Add(path, "group name must not be empty")
		}
		if seen[g.Name] {
			res.Add(path, "duplicate group name")
		}
		seen[g.Name] = true

		if len(g.Values) == 0 {
			res.Add(path, "group must not be empty")
		}
		for j, v := range g.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				res.Addf(fmt.Sprintf("%s[%d]", path, j), "non-finite value %v", v)
			}
		}
	}

	if strings.TrimSpace(ds.Metadata.XLabel) == "" {
		res.Add("metadata.x_label", "required field is missing")
	}
	if strings.TrimSpace(ds.Metadata.YLabel) == "" {
		res.Add("metadata.y_label", "required field is missing")
	}
	return res
}
