// Package batch runs a strictly sequential assessment over a list of videos.
// One video is in flight at a time; each item's failure is recorded and the
// run continues with the next item.
package batch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medvat/medvat/internal/faults"
)

// ProcessFunc performs the full analyze-and-report cycle for one video and
// returns the written report's path. The coordinator treats any error — from
// analysis or from report generation — as that item's failure.
type ProcessFunc func(ctx context.Context, videoPath string) (reportPath string, err error)

// Outcome is the terminal state of one batch item.
type Outcome struct {
	VideoName    string
	Succeeded    bool
	ErrorSummary string
	ReportPath   string
}

// Event is a per-item status notification with running aggregate counts.
type Event struct {
	Message   string
	Completed int
	Total     int
	Succeeded int
	Failed    int
}

// Summary is the result of one batch run. Outcomes preserve input order and
// Attempted always equals Succeeded + len(Failures()).
type Summary struct {
	RunID     string
	Attempted int
	Succeeded int
	Outcomes  []Outcome
}

// Failures returns the failed outcomes in input order.
func (s *Summary) Failures() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if !o.Succeeded {
			failed = append(failed, o)
		}
	}
	return failed
}

// Coordinator drives a batch run over a per-video processing function.
type Coordinator struct {
	process ProcessFunc
}

// New creates a coordinator over the given per-video processor.
func New(process ProcessFunc) *Coordinator {
	return &Coordinator{process: process}
}

// Run processes the videos one at a time, in order. Item i+1 never starts
// before item i has a terminal outcome, report generation included. A
// cancelled context stops processing; unprocessed items are recorded as
// failures so the summary still accounts for every input.
//
// Events are sent into events (may be nil) and never block.
func (c *Coordinator) Run(ctx context.Context, videoPaths []string, events chan<- Event) *Summary {
	summary := &Summary{
		RunID:     uuid.NewString(),
		Attempted: len(videoPaths),
	}

	log.Info().
		Str("run", summary.RunID).
		Int("videos", len(videoPaths)).
		Msg("Starting batch run")

	failed := 0
	for i, videoPath := range videoPaths {
		name := filepath.Base(videoPath)

		if err := ctx.Err(); err != nil {
			summary.Outcomes = append(summary.Outcomes, Outcome{
				VideoName:    name,
				ErrorSummary: "Cancelled before processing",
			})
			failed++
			continue
		}

		emit(events, Event{
			Message:   "Processing video " + displayName(name),
			Completed: i,
			Total:     len(videoPaths),
			Succeeded: summary.Succeeded,
			Failed:    failed,
		})

		reportPath, err := c.process(ctx, videoPath)
		outcome := Outcome{VideoName: name}
		if err != nil {
			outcome.ErrorSummary = errorSummary(err)
			failed++
			log.Warn().
				Str("run", summary.RunID).
				Str("video", name).
				Str("cause", outcome.ErrorSummary).
				Msg("Batch item failed, continuing")
		} else {
			outcome.Succeeded = true
			outcome.ReportPath = reportPath
			summary.Succeeded++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)

		emit(events, Event{
			Message:   "Completed " + displayName(name),
			Completed: i + 1,
			Total:     len(videoPaths),
			Succeeded: summary.Succeeded,
			Failed:    failed,
		})
	}

	log.Info().
		Str("run", summary.RunID).
		Int("succeeded", summary.Succeeded).
		Int("failed", failed).
		Msg("Batch run complete")
	return summary
}

// emit sends without blocking; a full or nil channel drops the event.
func emit(events chan<- Event, ev Event) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	default:
	}
}

// errorSummary reduces an item's error to one short line for the summary.
func errorSummary(err error) string {
	var f *faults.Failure
	if errors.As(err, &f) {
		return f.Summary()
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return msg
}

func displayName(name string) string {
	if len(name) > 40 {
		return name[:40] + "..."
	}
	return name
}
