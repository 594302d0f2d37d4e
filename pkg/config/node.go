package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/matzehuels/pubplot/pkg/validate"
)

// Provenance records which tier supplied a value.
type Provenance string

// Provenance tags, in increasing precedence.
const (
	ProvenanceDefault    Provenance = "default"
	ProvenanceInherited  Provenance = "inherited"
	ProvenanceOverridden Provenance = "overridden"
)

func (p Provenance) rank() int {
	switch p {
	case ProvenanceInherited:
		return 1
	case ProvenanceOverridden:
		return 2
	default:
		return 0
	}
}

// Value is an effective field value with its provenance.
type Value struct {
	Raw        any
	Provenance Provenance
}

// Node is a resolved configuration section. Nodes are immutable; every
// accessor returns copies of composite values.
type Node struct {
	schema     *Schema
	path       string
	values     map[string]Value
	children   map[string]*Node
	provenance Provenance
}

// Schema returns the section's schema.
func (n *Node) Schema() *Schema { return n.schema }

// Path returns the dotted path of the section ("" for the root).
func (n *Node) Path() string { return n.path }

// Child returns a child section, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	return n.children[name]
}

// Section resolves a dotted section path, or nil.
func (n *Node) Section(path string) *Node {
	cur := n
	for _, p := range splitPath(path) {
		cur = cur.Child(p)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Get returns the raw effective value of a dotted field path.
func (n *Node) Get(path string) (any, bool) {
	v, ok := n.lookup(path)
	if !ok {
		return nil, false
	}
	return deepCopy(v.Raw), true
}

// Provenance returns the provenance of a field or section path. The
// provenance of a section is the highest tier that touched any of its
// descendants.
func (n *Node) Provenance(path string) Provenance {
	if path == "" {
		return n.provenance
	}
	if sec := n.Section(path); sec != nil {
		return sec.provenance
	}
	if v, ok := n.lookup(path); ok {
		return v.Provenance
	}
	return ""
}

func (n *Node) lookup(path string) (Value, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return Value{}, false
	}
	sec := n
	for _, p := range parts[:len(parts)-1] {
		sec = sec.Child(p)
		if sec == nil {
			return Value{}, false
		}
	}
	v, ok := sec.values[parts[len(parts)-1]]
	return v, ok
}

// Typed getters. They assume the node passed validation and return the
// zero value on a type mismatch or a null value.

// Float returns a number field.
func (n *Node) Float(path string) float64 {
	v, _ := n.coerce(path, validate.KindFloat).(float64)
	return v
}

// Int returns an integer field.
func (n *Node) Int(path string) int {
	v, _ := n.coerce(path, validate.KindInt).(int)
	return v
}

// Bool returns a boolean field.
func (n *Node) Bool(path string) bool {
	v, _ := n.coerce(path, validate.KindBool).(bool)
	return v
}

// String returns a string field.
func (n *Node) String(path string) string {
	v, _ := n.coerce(path, validate.KindString).(string)
	return v
}

// OptString returns a nullable string field; nil when null.
func (n *Node) OptString(path string) *string {
	v, ok := n.coerce(path, validate.KindString).(string)
	if !ok {
		return nil
	}
	return &v
}

// Floats returns a number-sequence field.
func (n *Node) Floats(path string) []float64 {
	v, _ := n.coerce(path, validate.KindFloats).([]float64)
	return v
}

// Strings returns a string-sequence field.
func (n *Node) Strings(path string) []string {
	v, _ := n.coerce(path, validate.KindStrings).([]string)
	return v
}

// Map returns a mapping field.
func (n *Node) Map(path string) map[string]any {
	v, _ := n.coerce(path, validate.KindMap).(map[string]any)
	return v
}

// Records returns a list-of-mappings field.
func (n *Node) Records(path string) []map[string]any {
	v, _ := n.coerce(path, validate.KindRecords).([]map[string]any)
	return v
}

func (n *Node) coerce(path string, kind validate.Kind) any {
	raw, ok := n.Get(path)
	if !ok || raw == nil {
		return nil
	}
	v, ok := validate.Coerce(kind, raw)
	if !ok {
		return nil
	}
	return v
}

// Walk visits every declared field in schema order, sections depth-first.
// It implements validate.Walker.
func (n *Node) Walk(fn func(path string, rule validate.Rule, value any, present bool)) {
	for _, f := range n.schema.Fields {
		v := n.values[f.Name]
		fn(join(n.path, f.Name), f.Rule, deepCopy(v.Raw), v.Raw != nil)
	}
	for _, c := range n.schema.Children {
		if child := n.children[c.Name]; child != nil {
			child.Walk(fn)
		}
	}
}

// Entry is one flattened field.
type Entry struct {
	Path       string     `json:"path"`
	Value      any        `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// Entries flattens the tree in Walk order.
func (n *Node) Entries() []Entry {
	var out []Entry
	n.Walk(func(path string, _ validate.Rule, value any, _ bool) {
		v, _ := n.lookup(strings.TrimPrefix(path, n.prefix()))
		out = append(out, Entry{Path: path, Value: value, Provenance: v.Provenance})
	})
	return out
}

func (n *Node) prefix() string {
	if n.path == "" {
		return ""
	}
	return n.path + "."
}

// Fingerprint returns a SHA-256 over the canonical JSON of Entries.
// Identical three-tier inputs always yield identical fingerprints.
func (n *Node) Fingerprint() string {
	data, err := json.Marshal(n.Entries())
	if err != nil {
		// Only reachable with non-JSON values smuggled into a KindMap field.
		data = []byte(err.Error())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
