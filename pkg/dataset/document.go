package dataset

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is a decoded but not yet validated data payload.
//
// It keeps the raw node tree so that structural problems (values given as a
// list, non-numeric samples) can be reported field by field, and so that
// mapping order survives decoding.
type Document struct {
	root *yaml.Node
}

// Decode parses a JSON or YAML payload. Only syntax errors are returned;
// structural checks are left to the validator.
func Decode(data []byte) (*Document, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(bytes.TrimSpace(data), &n); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	root := &n
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return &Document{root: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}, nil
		}
		root = root.Content[0]
	}
	return &Document{root: root}, nil
}

// Read decodes a payload from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Decode(data)
}

// Root returns the top-level node.
func (d *Document) Root() *yaml.Node { return d.root }

// Lookup follows mapping keys from the root. It returns nil as soon as a key
// is missing or an intermediate node is not a mapping.
func (d *Document) Lookup(path ...string) *yaml.Node {
	n := d.root
	for _, key := range path {
		n = Field(n, key)
		if n == nil {
			return nil
		}
	}
	return n
}

// Field returns the value node for key in a mapping node, or nil.
func Field(n *yaml.Node, key string) *yaml.Node {
	n = resolveAlias(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolveAlias(n.Content[i+1])
		}
	}
	return nil
}

// Entries returns the key/value pairs of a mapping node in document order.
func Entries(n *yaml.Node) [][2]*yaml.Node {
	n = resolveAlias(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([][2]*yaml.Node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, [2]*yaml.Node{n.Content[i], resolveAlias(n.Content[i+1])})
	}
	return out
}

// Number decodes a numeric scalar, including YAML's .nan and .inf forms.
func Number(n *yaml.Node) (float64, bool) {
	n = resolveAlias(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return 0, false
	}
	if n.Tag != "!!int" && n.Tag != "!!float" {
		return 0, false
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return 0, false
	}
	return f, true
}

// String decodes a string scalar.
func String(n *yaml.Node) (string, bool) {
	n = resolveAlias(n)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag != "!!str" {
		return "", false
	}
	return n.Value, true
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// Dataset converts the document into a Dataset. It fails on the first
// structural problem; run the validator first for a complete report.
func (d *Document) Dataset() (*Dataset, error) {
	values := d.Lookup("data", "values")
	if values == nil || values.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("data.values: must be a mapping of group name to samples")
	}

	ds := &Dataset{}
	for _, kv := range Entries(values) {
		name := kv[0].Value
		seq := kv[1]
		if seq == nil || seq.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("data.values.%s: must be a sequence of numbers", name)
		}
		samples := make([]float64, 0, len(seq.Content))
		for i, item := range seq.Content {
			f, ok := Number(item)
			if !ok {
				return nil, fmt.Errorf("data.values.%s[%d]: not a number", name, i)
			}
			samples = append(samples, f)
		}
		ds.Groups = append(ds.Groups, Group{Name: name, Values: samples})
	}

	if meta := d.Lookup("metadata"); meta != nil {
		if err := meta.Decode(&ds.Metadata); err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
	}
	return ds, nil
}
