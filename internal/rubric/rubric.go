// Package rubric holds the built-in assessment rubric definitions.
//
// Rubrics are immutable once loaded: the store hands out pointers to
// package-level data and callers must not mutate them.
package rubric

import "fmt"

// Kind distinguishes the two criterion scoring scales.
type Kind string

const (
	// Binary criteria score 0 (No) or 1 (Yes).
	Binary Kind = "binary"
	// Likert criteria score 1 (Novice) through 5 (Expert).
	Likert Kind = "likert"
)

// Criterion is one evaluable rubric line item. The JSON tags match the shape
// the evaluation prompt serializes, so the model sees the same field names
// the original rubric authors wrote.
type Criterion struct {
	Name string `json:"name"`
	Kind Kind   `json:"type"`
	Desc string `json:"desc"`
}

// Rubric is an ordered set of criteria for one assessed skill.
type Rubric struct {
	Key         string      `json:"-"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory,omitempty"`
	AutoDetect  bool        `json:"-"`
	Items       []Criterion `json:"items"`
}

// DisplayName is the short name shown in category listings.
func (r *Rubric) DisplayName() string {
	if r.Subcategory != "" {
		return r.Subcategory
	}
	return r.Title
}

// ValidScore reports whether score is in range for the criterion's kind.
func (c *Criterion) ValidScore(score int) bool {
	if c.Kind == Binary {
		return score == 0 || score == 1
	}
	return score >= 1 && score <= 5
}

// DisplayScore renders a score the way reports show it: Yes/No for binary
// criteria, N/5 for likert.
func (c *Criterion) DisplayScore(score int) string {
	if c.Kind == Binary {
		if score >= 1 {
			return "Yes"
		}
		return "No"
	}
	return fmt.Sprintf("%d/5", score)
}

// SubThreshold reports whether a score denotes poor performance: No for
// binary, 3 or below for likert. Sub-threshold scores are expected to carry
// a [MM:SS] timestamp in their advice.
func (c *Criterion) SubThreshold(score int) bool {
	if c.Kind == Binary {
		return score < 1
	}
	return score <= 3
}
