package assess

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medvat/medvat/internal/faults"
	"github.com/medvat/medvat/internal/gemini"
	"github.com/medvat/medvat/internal/jsonutil"
	"github.com/medvat/medvat/internal/rubric"
)

// generateTimeout bounds the main evaluation call.
const generateTimeout = 600 * time.Second

// Options fixes the parameters of one assessment. Model and the credential
// behind svc are captured when Run is called and immutable for its duration.
type Options struct {
	Model string

	// PollInterval/MaxWait override the asset session defaults when nonzero
	// (tests shrink them).
	PollInterval time.Duration
	MaxWait      time.Duration
}

// Orchestrator composes the asset session, variant detection, prompt
// building, and result recovery into one end-to-end evaluate-one-video
// operation.
type Orchestrator struct {
	svc   gemini.Service
	store *rubric.Store
}

// New creates an orchestrator over the given remote service and rubric store.
func New(svc gemini.Service, store *rubric.Store) *Orchestrator {
	return &Orchestrator{svc: svc, store: store}
}

// Run evaluates one video against the rubric. The pipeline is linear —
// upload, await processing, optionally detect the technique variant, request
// the evaluation, recover the structured result — and any step's failure
// short-circuits to a classified *faults.Failure. The uploaded asset is
// released on every exit path, success or failure.
//
// Progress events are emitted into progress (may be nil) and never block;
// fractions are monotonically non-decreasing.
func (o *Orchestrator) Run(ctx context.Context, videoPath string, rb *rubric.Rubric, opts Options, progress chan<- Progress) (*Evaluation, error) {
	sink := newProgressSink(progress)

	session := gemini.NewAssetSession(o.svc)
	if opts.PollInterval > 0 {
		session.PollInterval = opts.PollInterval
	}
	if opts.MaxWait > 0 {
		session.MaxWait = opts.MaxWait
	}

	log.Info().
		Str("video", videoPath).
		Str("rubric", rb.Key).
		Str("model", opts.Model).
		Msg("Starting video assessment")

	// Uploading
	sink.emit("Uploading video to Gemini...", 0.1)
	handle, err := session.Upload(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	// Guaranteed cleanup on every exit path below. Release is idempotent,
	// so the early release inside AwaitReady's timeout branch is safe too.
	defer session.Release(ctx, handle)

	// AwaitingProcessing
	sink.emit("Processing video (this may take a moment)...", 0.3)
	handle, err = session.AwaitReady(ctx, handle)
	if err != nil {
		return nil, err
	}

	// DetectingVariant — only for auto-detect rubrics. The detected
	// variant substitutes the concrete rubric; an inconclusive detection
	// keeps the generic one.
	if rb.AutoDetect {
		sink.emit("Detecting suturing pattern...", 0.4)
		if variant := DetectVariant(ctx, o.svc, opts.Model, handle); variant != "" {
			if concrete, ok := o.store.ForVariant(variant); ok {
				rb = concrete
				sink.emit(fmt.Sprintf("Detected pattern: %s", variant), 0.5)
			} else {
				sink.emit("Pattern detection inconclusive, using generic rubric", 0.5)
			}
		} else {
			sink.emit("Pattern detection inconclusive, using generic rubric", 0.5)
		}
	}

	// Requesting
	sink.emit(fmt.Sprintf("Analyzing content against rubric using %s...", opts.Model), 0.6)
	prompt, err := BuildPrompt(rb)
	if err != nil {
		return nil, faults.New(faults.Unknown, "Prompt Construction Failed", err.Error())
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	reply, err := o.svc.Generate(genCtx, opts.Model, prompt, handle)
	cancel()
	if err != nil {
		return nil, faults.ClassifyErr("AI Analysis Failed", err)
	}

	// RecoveringResult — a malformed reply is non-fatal: the caller may
	// retry the whole request.
	eval, err := jsonutil.ParseJSON[Evaluation](reply)
	if err != nil {
		return nil, &faults.Failure{
			Category: faults.MalformedResponse,
			Title:    "AI Response Parsing Error",
			Message:  fmt.Sprintf("The AI returned a response that couldn't be parsed as JSON. This is usually a temporary issue. Error: %v", err),
		}
	}
	eval.Rubric = rb

	if missing := eval.MissingTimestamps(); len(missing) > 0 {
		log.Warn().
			Strs("criteria", missing).
			Msg("Low-scoring criteria missing timestamp references in advice")
	}

	sink.emit("Analysis Complete.", 1.0)
	log.Info().
		Str("video", videoPath).
		Int("criteria", len(eval.Assessments)).
		Msg("Assessment complete")

	return &eval, nil
}
