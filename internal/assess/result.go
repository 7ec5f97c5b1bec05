// Package assess implements the end-to-end evaluation of one recorded skill
// performance: upload the video, wait for remote processing, optionally
// detect the technique variant, send the rubric-built evaluation request,
// and recover a structured result from the model's reply.
package assess

import (
	"regexp"

	"github.com/medvat/medvat/internal/rubric"
)

// CriterionResult is the model's verdict for a single rubric criterion.
type CriterionResult struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Advice string `json:"advice"`
}

// Evaluation is the structured result of one assessed video. The field names
// mirror the JSON contract the prompt dictates to the model.
type Evaluation struct {
	Assessments      []CriterionResult `json:"assessments"`
	SummativeComment string            `json:"summative_comment"`

	// Rubric is the rubric the scores were produced against — the detected
	// variant's rubric when auto-detection substituted one.
	Rubric *rubric.Rubric `json:"-"`
}

// timestampRe matches the [MM:SS] references the prompt demands for
// sub-threshold scores.
var timestampRe = regexp.MustCompile(`\[\d{1,2}:\d{2}\]`)

// HasTimestamp reports whether the advice carries at least one [MM:SS] tag.
func (c *CriterionResult) HasTimestamp() bool {
	return timestampRe.MatchString(c.Advice)
}

// MissingTimestamps returns the names of criteria whose score denotes
// sub-threshold performance but whose advice lacks a timestamp reference.
// The timestamp rule is an instruction to the remote model, not a locally
// enforced invariant: absence is surfaced to the user, never a failure.
func (e *Evaluation) MissingTimestamps() []string {
	if e.Rubric == nil {
		return nil
	}

	byName := make(map[string]*rubric.Criterion, len(e.Rubric.Items))
	for i := range e.Rubric.Items {
		byName[e.Rubric.Items[i].Name] = &e.Rubric.Items[i]
	}

	var missing []string
	for i := range e.Assessments {
		res := &e.Assessments[i]
		crit, ok := byName[res.Name]
		if !ok {
			continue
		}
		if crit.SubThreshold(res.Score) && !res.HasTimestamp() {
			missing = append(missing, res.Name)
		}
	}
	return missing
}
