// Package dataset defines the standardized data contract consumed by the
// plotting engine.
//
// A [Dataset] maps group names to ordered numeric samples. Group order is
// the insertion order of the source document and determines rendering order.
//
// Datasets reach the engine in one of three ways:
//   - decoded from a JSON or YAML document with [Decode] and [Document.Dataset]
//   - built from a column table with [FromCSV] or [FromXLSX]
//   - constructed directly by the caller with [New] and [Dataset.Add]
package dataset

import (
	"encoding/json"
	"fmt"
)

// Metadata describes the axes of a dataset.
type Metadata struct {
	XLabel string `json:"x_label" yaml:"x_label"`
	YLabel string `json:"y_label" yaml:"y_label"`
	Unit   string `json:"unit,omitempty" yaml:"unit,omitempty"`
}

// Group is one named sample sequence.
type Group struct {
	Name   string
	Values []float64
}

// Dataset is a standardized dataset.
//
// A Dataset handed to a session must not be modified afterwards; sessions
// work on a private [Dataset.Clone].
type Dataset struct {
	Groups   []Group
	Metadata Metadata
}

// New returns an empty dataset with the given metadata.
func New(meta Metadata) *Dataset {
	return &Dataset{Metadata: meta}
}

// Add appends a group. Values are copied.
func (d *Dataset) Add(name string, values ...float64) *Dataset {
	d.Groups = append(d.Groups, Group{Name: name, Values: append([]float64(nil), values...)})
	return d
}

// Names returns the group names in order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Groups))
	for i, g := range d.Groups {
		names[i] = g.Name
	}
	return names
}

// Lookup returns the group with the given name.
func (d *Dataset) Lookup(name string) (Group, bool) {
	for _, g := range d.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Len returns the total number of samples across all groups.
func (d *Dataset) Len() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Values)
	}
	return n
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{Metadata: d.Metadata, Groups: make([]Group, len(d.Groups))}
	for i, g := range d.Groups {
		out.Groups[i] = Group{Name: g.Name, Values: append([]float64(nil), g.Values...)}
	}
	return out
}

// MarshalJSON encodes the dataset in the standardized shape
//
//	{"data": {"values": {...}}, "metadata": {...}}
//
// keeping group order.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	buf := []byte(`{"data":{"values":{`)
	for i, g := range d.Groups {
		if i > 0 {
			buf = append(buf, ',')
		}
		name, err := json.Marshal(g.Name)
		if err != nil {
			return nil, err
		}
		values, err := json.Marshal(g.Values)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Name, err)
		}
		buf = append(buf, name...)
		buf = append(buf, ':')
		buf = append(buf, values...)
	}
	buf = append(buf, `}},"metadata":`...)
	meta, err := json.Marshal(d.Metadata)
	if err != nil {
		return nil, err
	}
	buf = append(buf, meta...)
	buf = append(buf, '}')
	return buf, nil
}
