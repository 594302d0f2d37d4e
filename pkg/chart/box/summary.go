package box

import (
	"github.com/aclements/go-moremath/stats"

	"github.com/matzehuels/pubplot/pkg/render"
)

// WhiskerReach is the whisker extent in multiples of the interquartile
// range. Samples beyond it are outliers.
const WhiskerReach = 1.5

// Summary is the five-number summary of one group. Low and High are the
// whisker ends: the most extreme samples within WhiskerReach*IQR of the
// box.
type Summary struct {
	Name     string    `json:"name"`
	N        int       `json:"n"`
	Low      float64   `json:"low"`
	Q1       float64   `json:"q1"`
	Median   float64   `json:"median"`
	Q3       float64   `json:"q3"`
	High     float64   `json:"high"`
	Outliers []float64 `json:"outliers"`
}

// Summarize computes the summary of a non-empty sample.
func Summarize(name string, values []float64) Summary {
	s := stats.Sample{Xs: values}.Copy().Sort()
	q1, med, q3 := s.Quantile(0.25), s.Quantile(0.5), s.Quantile(0.75)
	iqr := q3 - q1
	lo, hi := q1-WhiskerReach*iqr, q3+WhiskerReach*iqr

	sum := Summary{Name: name, N: len(s.Xs), Q1: q1, Median: med, Q3: q3, Outliers: []float64{}}
	sum.Low, sum.High = q1, q3
	first := true
	for _, x := range s.Xs {
		if x < lo || x > hi {
			sum.Outliers = append(sum.Outliers, x)
			continue
		}
		if first {
			sum.Low, first = x, false
		}
		sum.High = x
	}
	return sum
}

// Representation is the prepared box chart: one summary per group in
// dataset order.
type Representation struct {
	Groups  []Summary     `json:"groups"`
	Default render.Labels `json:"labels"`
}

// Labels implements chart.Representation.
func (r *Representation) Labels() render.Labels { return r.Default }

// Names returns the group names in order.
func (r *Representation) Names() []string {
	out := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = g.Name
	}
	return out
}
