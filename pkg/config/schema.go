// Package config implements the three-tier configuration hierarchy.
//
// A configuration is described by a [Schema]: a tree of sections, each with
// named, typed fields carrying defaults and validation rules. [Resolve]
// merges three tiers into an immutable [Node]:
//
//  1. schema defaults (provenance "default")
//  2. the chart-type overlay (provenance "inherited")
//  3. caller overrides (provenance "overridden")
//
// Sections merge structurally: overriding style.grid keeps every sibling of
// grid. Keys that do not exist in the schema are rejected with an
// "unknown field" failure.
//
// # Usage
//
//	schema := config.ForChart(box.New().Schema())
//	node, err := config.Resolve(schema, box.New().Overlay(), config.Overrides{
//	    "style": map[string]any{"style": "whitegrid", "grid": true},
//	    "style.font_params.size": 8,
//	})
//	if err != nil {
//	    // errors.FailuresOf(err) lists every unknown field
//	}
//	fmt.Println(node.String("style.style"), node.Provenance("style.style"))
package config

import (
	"github.com/matzehuels/pubplot/pkg/validate"
)

// Field declares one configuration parameter.
type Field struct {
	Name    string
	Rule    validate.Rule
	Default any
	Doc     string
}

// Schema declares a configuration section.
type Schema struct {
	Name     string
	Fields   []Field
	Children []*Schema

	// Tier is the provenance given to this section's defaults. Sections
	// contributed by a chart type use ProvenanceInherited.
	Tier Provenance
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Child returns the child section with the given name.
func (s *Schema) Child(name string) (*Schema, bool) {
	for _, c := range s.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Lookup resolves a dotted path to a field.
func (s *Schema) Lookup(path string) (Field, bool) {
	sec := s
	parts := splitPath(path)
	for i, p := range parts {
		if i == len(parts)-1 {
			return sec.Field(p)
		}
		c, ok := sec.Child(p)
		if !ok {
			return Field{}, false
		}
		sec = c
	}
	return Field{}, false
}

// ChartSection is the name of the section contributed by a chart type.
const ChartSection = "chart"

// ForChart returns the base schema extended with the chart type's section.
// A nil chart schema yields the base schema alone.
func ForChart(chart *Schema) *Schema {
	s := Base()
	if chart == nil {
		return s
	}
	c := *chart
	c.Name = ChartSection
	if c.Tier == "" {
		c.Tier = ProvenanceInherited
	}
	s.Children = append(s.Children, &c)
	return s
}

// Section builds a schema section.
func Section(name string, fields []Field, children ...*Schema) *Schema {
	return &Schema{Name: name, Fields: fields, Children: children}
}

// Helpers for declaring fields.

// Float declares a number field.
func Float(name string, def float64, dom *validate.Domain, doc string) Field {
	return Field{Name: name, Default: def, Doc: doc, Rule: validate.Rule{Kind: validate.KindFloat, Required: true, Domain: dom}}
}

// Int declares an integer field.
func Int(name string, def int, dom *validate.Domain, doc string) Field {
	return Field{Name: name, Default: def, Doc: doc, Rule: validate.Rule{Kind: validate.KindInt, Required: true, Domain: dom}}
}

// Bool declares a boolean field.
func Bool(name string, def bool, doc string) Field {
	return Field{Name: name, Default: def, Doc: doc, Rule: validate.Rule{Kind: validate.KindBool, Required: true}}
}

// Enum declares a string field restricted to allowed values.
func Enum(name, def string, allowed []string, doc string) Field {
	return Field{Name: name, Default: def, Doc: doc, Rule: validate.Rule{Kind: validate.KindString, Required: true, OneOf: allowed}}
}

// String declares a free-form string field.
func String(name, def string, doc string) Field {
	return Field{Name: name, Default: def, Doc: doc, Rule: validate.Rule{Kind: validate.KindString, Required: true}}
}

// Color declares a color field.
func Color(name, def string, doc string) Field {
	return Field{Name: name, Default: def, Doc: doc, Rule: validate.Rule{Kind: validate.KindColor, Required: true}}
}

// Optional turns a field into a nullable one defaulting to null.
func Optional(f Field) Field {
	f.Default = nil
	f.Rule.Required = false
	f.Rule.Nullable = true
	return f
}
