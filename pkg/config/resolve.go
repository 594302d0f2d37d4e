package config

import (
	"sort"
	"strings"

	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/validate"
)

// Overrides is one tier of configuration values as nested string-keyed
// maps. Dotted keys ("style.grid_params.alpha") are accepted at any level.
type Overrides map[string]any

// Resolve merges schema defaults, the chart-type overlay and caller
// overrides into an immutable Node.
//
// Every key in either tier must name a declared field or section; all
// unknown keys are reported together as an INVALID_CONFIG error. Values
// are not type-checked here; use validate.Config on the result.
func Resolve(schema *Schema, overlay, overrides Overrides) (*Node, error) {
	var res validate.Result
	o := schema.normalize("", overlay, &res)
	c := schema.normalize("", overrides, &res)
	if err := res.Err(errors.ErrCodeConfigValidation, "invalid configuration"); err != nil {
		return nil, err
	}

	root := schema.defaults("")
	root.apply(o, ProvenanceInherited)
	root.apply(c, ProvenanceOverridden)
	return root, nil
}

// Merge folds several override layers into one, later layers winning per
// field. Layers are normalized against the schema first, so dotted and
// nested spellings of the same field collide as expected.
func Merge(schema *Schema, layers ...Overrides) (Overrides, error) {
	var res validate.Result
	out := map[string]any{}
	for _, l := range layers {
		mergeInto(out, schema.normalize("", l, &res))
	}
	if err := res.Err(errors.ErrCodeConfigValidation, "invalid configuration"); err != nil {
		return nil, err
	}
	return out, nil
}

// normalize rewrites m into the canonical nested shape of s, splitting
// dotted keys and recording unknown fields.
func (s *Schema) normalize(prefix string, m map[string]any, res *validate.Result) map[string]any {
	out := map[string]any{}
	for _, k := range sortedKeys(m) {
		v := m[k]
		path := join(prefix, k)

		if f, ok := s.Field(k); ok {
			if sub, isMap := v.(map[string]any); isMap && f.Rule.Kind == validate.KindMap {
				mergeInto(out, map[string]any{k: deepCopy(sub)})
			} else {
				out[k] = deepCopy(v)
			}
			continue
		}

		if c, ok := s.Child(k); ok {
			sub, isMap := v.(map[string]any)
			if !isMap {
				res.Add(path, "expected a mapping for section")
				continue
			}
			mergeInto(out, map[string]any{k: c.normalize(path, sub, res)})
			continue
		}

		head, rest, dotted := strings.Cut(k, ".")
		if dotted {
			if c, ok := s.Child(head); ok {
				mergeInto(out, map[string]any{head: c.normalize(join(prefix, head), map[string]any{rest: v}, res)})
				continue
			}
			if f, ok := s.Field(head); ok && f.Rule.Kind == validate.KindMap {
				mergeInto(out, map[string]any{head: map[string]any{rest: deepCopy(v)}})
				continue
			}
			if _, ok := s.Field(head); ok {
				res.Add(path, "unknown field")
				continue
			}
			res.Add(join(prefix, head), "unknown field")
			continue
		}

		res.Add(path, "unknown field")
	}
	return out
}

// defaults builds the default-tier node for s.
func (s *Schema) defaults(path string) *Node {
	tier := s.Tier
	if tier == "" {
		tier = ProvenanceDefault
	}
	n := &Node{
		schema:     s,
		path:       path,
		values:     make(map[string]Value, len(s.Fields)),
		children:   make(map[string]*Node, len(s.Children)),
		provenance: tier,
	}
	for _, f := range s.Fields {
		n.values[f.Name] = Value{Raw: deepCopy(f.Default), Provenance: tier}
	}
	for _, c := range s.Children {
		child := c.defaults(join(path, c.Name))
		if c.Tier == "" {
			// Nested sections inherit the tier of their parent.
			child.retag(tier)
		}
		n.children[c.Name] = child
		n.bump(child.provenance)
	}
	return n
}

func (n *Node) retag(p Provenance) {
	n.provenance = p
	for k, v := range n.values {
		v.Provenance = p
		n.values[k] = v
	}
	for _, c := range n.children {
		if c.schema.Tier == "" {
			c.retag(p)
		}
	}
}

// apply writes a normalized tier into n.
func (n *Node) apply(m map[string]any, p Provenance) {
	for _, k := range sortedKeys(m) {
		v := m[k]
		if f, ok := n.schema.Field(k); ok {
			if sub, isMap := v.(map[string]any); isMap && f.Rule.Kind == validate.KindMap {
				merged := map[string]any{}
				if old, ok := n.values[k].Raw.(map[string]any); ok {
					mergeInto(merged, old)
				}
				mergeInto(merged, sub)
				v = merged
			}
			n.values[k] = Value{Raw: deepCopy(v), Provenance: p}
			n.bump(p)
			continue
		}
		if child := n.children[k]; child != nil {
			if sub, ok := v.(map[string]any); ok {
				child.apply(sub, p)
				if len(sub) > 0 {
					n.bump(p)
				}
			}
		}
	}
}

func (n *Node) bump(p Provenance) {
	if p.rank() > n.provenance.rank() {
		n.provenance = p
	}
}

// mergeInto deep-merges src into dst; nested maps merge, other values
// replace.
func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				mergeInto(dv, sv)
				continue
			}
			nv := map[string]any{}
			mergeInto(nv, sv)
			dst[k] = nv
			continue
		}
		dst[k] = deepCopy(v)
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	case []float64:
		return append([]float64(nil), t...)
	case []string:
		return append([]string(nil), t...)
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e).(map[string]any)
		}
		return out
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
