package validate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/matzehuels/pubplot/pkg/colors"
)

// Kind is the declared type of a configuration field.
type Kind int

// Field kinds.
const (
	KindBool Kind = iota + 1
	KindInt
	KindFloat
	KindString
	KindColor   // string parseable by colors.Parse
	KindStrings // sequence of strings
	KindFloats  // sequence of numbers
	KindPair    // exactly two numbers
	KindMap     // free-form string-keyed mapping
	KindRecords // sequence of mappings checked against Rule.Fields
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindColor:
		return "color"
	case KindStrings:
		return "list of strings"
	case KindFloats:
		return "list of numbers"
	case KindPair:
		return "pair of numbers"
	case KindMap:
		return "mapping"
	case KindRecords:
		return "list of mappings"
	default:
		return "unknown"
	}
}

// Domain bounds a numeric field.
type Domain struct {
	Min, Max         float64
	HasMin, HasMax   bool
	MinOpen, MaxOpen bool // exclusive bounds
}

// Positive is the domain (0, +inf).
func Positive() *Domain { return &Domain{HasMin: true, MinOpen: true} }

// NonNegative is the domain [0, +inf).
func NonNegative() *Domain { return &Domain{HasMin: true} }

// UnitInterval is the domain (0, 1].
func UnitInterval() *Domain { return &Domain{Min: 0, Max: 1, HasMin: true, HasMax: true, MinOpen: true} }

// Closed is the domain [lo, hi].
func Closed(lo, hi float64) *Domain { return &Domain{Min: lo, Max: hi, HasMin: true, HasMax: true} }

// Contains reports whether v lies in the domain.
func (d *Domain) Contains(v float64) bool {
	if d == nil {
		return true
	}
	if d.HasMin && (v < d.Min || (d.MinOpen && v == d.Min)) {
		return false
	}
	if d.HasMax && (v > d.Max || (d.MaxOpen && v == d.Max)) {
		return false
	}
	return true
}

func (d *Domain) String() string {
	lo, hi := "(-inf", "+inf)"
	if d.HasMin {
		br := "["
		if d.MinOpen {
			br = "("
		}
		lo = fmt.Sprintf("%s%g", br, d.Min)
	}
	if d.HasMax {
		br := "]"
		if d.MaxOpen {
			br = ")"
		}
		hi = fmt.Sprintf("%g%s", d.Max, br)
	}
	return lo + ", " + hi
}

// Rule declares what a field accepts.
type Rule struct {
	Kind     Kind
	Required bool            // a null or missing value is a failure
	Nullable bool            // null is accepted
	Domain   *Domain         // numeric bounds, applied element-wise to sequences
	OneOf    []string        // allowed values for strings
	Fields   map[string]Rule // item schema for KindRecords
}

// Check validates a single value against r and returns every failure.
func Check(path string, r Rule, v any, present bool) Result {
	var res Result
	if !present || v == nil {
		if r.Required {
			res.Add(path, "required field is missing")
		} else if present && !r.Nullable {
			res.Add(path, "must not be null")
		}
		return res
	}

	norm, ok := Coerce(r.Kind, v)
	if !ok {
		res.Addf(path, "expected %s, got %s", r.Kind, describe(v))
		return res
	}

	switch val := norm.(type) {
	case int:
		if !r.Domain.Contains(float64(val)) {
			res.Addf(path, "%d outside %s", val, r.Domain)
		}
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			res.Add(path, "must be finite")
		} else if !r.Domain.Contains(val) {
			res.Addf(path, "%g outside %s", val, r.Domain)
		}
	case string:
		if r.Kind == KindColor && !colors.Valid(val) {
			res.Addf(path, "invalid color %q", val)
		}
		if len(r.OneOf) > 0 && !contains(r.OneOf, val) {
			res.Addf(path, "%q is not one of %s", val, strings.Join(r.OneOf, ", "))
		}
	case []string:
		for i, s := range val {
			if len(r.OneOf) > 0 && !contains(r.OneOf, s) {
				res.Addf(fmt.Sprintf("%s[%d]", path, i), "%q is not one of %s", s, strings.Join(r.OneOf, ", "))
			}
		}
	case []float64:
		if r.Kind == KindPair && len(val) != 2 {
			res.Addf(path, "expected 2 values, got %d", len(val))
		}
		for i, f := range val {
			p := fmt.Sprintf("%s[%d]", path, i)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				res.Add(p, "must be finite")
			} else if !r.Domain.Contains(f) {
				res.Addf(p, "%g outside %s", f, r.Domain)
			}
		}
	case []map[string]any:
		for i, rec := range val {
			res.Merge(checkRecord(fmt.Sprintf("%s[%d]", path, i), r.Fields, rec))
		}
	}
	return res
}

func checkRecord(path string, fields map[string]Rule, rec map[string]any) Result {
	var res Result
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			res.Add(path+"."+k, "unknown field")
		}
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v, ok := rec[k]
		res.Merge(Check(path+"."+k, fields[k], v, ok))
	}
	return res
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func describe(v any) string {
	switch v.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case float32, float64:
		return "number"
	case []any, []string, []float64, []int:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
