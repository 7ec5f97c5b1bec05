package assess

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/medvat/medvat/internal/faults"
	"github.com/medvat/medvat/internal/gemini"
	"github.com/medvat/medvat/internal/rubric"
)

// fakeService scripts the remote API. Generate distinguishes the variant
// classification call from the evaluation call by the prompt text.
type fakeService struct {
	uploadErr   error
	uploadCalls int

	// states are consumed one per AssetStatus call; the last entry repeats.
	states      []gemini.AssetState
	statusCalls int

	deleteCalls int
	deleteErr   error

	detectReply   string
	generateReply string
	generateErr   error
	generateCalls int
}

func (f *fakeService) UploadAsset(ctx context.Context, path, mimeType string) (*gemini.Handle, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &gemini.Handle{Name: "files/fake", URI: "https://fake/files/fake", MIMEType: mimeType, State: gemini.StateProcessing}, nil
}

func (f *fakeService) AssetStatus(ctx context.Context, name string) (*gemini.Handle, error) {
	idx := f.statusCalls
	f.statusCalls++
	if idx >= len(f.states) {
		idx = len(f.states) - 1
	}
	return &gemini.Handle{Name: name, URI: "https://fake/" + name, State: f.states[idx]}, nil
}

func (f *fakeService) DeleteAsset(ctx context.Context, name string) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeService) ListModels(ctx context.Context) ([]gemini.ModelInfo, error) {
	return nil, nil
}

func (f *fakeService) Generate(ctx context.Context, model, prompt string, asset *gemini.Handle) (string, error) {
	f.generateCalls++
	if strings.Contains(prompt, "identify which suturing technique") {
		if f.generateErr != nil {
			return "", f.generateErr
		}
		return f.detectReply, nil
	}
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.generateReply, nil
}

func writeTestVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "perf.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testOptions() Options {
	return Options{
		Model:        "gemini-2.5-flash",
		PollInterval: time.Millisecond,
		MaxWait:      50 * time.Millisecond,
	}
}

func testRubric() *rubric.Rubric {
	return &rubric.Rubric{
		Key:      "test",
		Title:    "Test Rubric",
		Category: "Test",
		Items: []rubric.Criterion{
			{Name: "A", Kind: rubric.Binary, Desc: "first step"},
			{Name: "B", Kind: rubric.Binary, Desc: "second step"},
			{Name: "C", Kind: rubric.Likert, Desc: "overall finesse"},
		},
	}
}

const goodReply = "```json\n{\"assessments\":[" +
	"{\"name\":\"A\",\"score\":1,\"advice\":\"ok\"}," +
	"{\"name\":\"B\",\"score\":0,\"advice\":\"[00:30] missed step\"}," +
	"{\"name\":\"C\",\"score\":2,\"advice\":\"[01:10] rushed\"}]," +
	"\"summative_comment\":\"needs work\"}\n```"

func TestRunEndToEnd(t *testing.T) {
	svc := &fakeService{
		states:        []gemini.AssetState{gemini.StateProcessing, gemini.StateReady},
		generateReply: goodReply,
	}
	orch := New(svc, rubric.Builtin())

	eval, err := orch.Run(context.Background(), writeTestVideo(t), testRubric(), testOptions(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(eval.Assessments) != 3 {
		t.Fatalf("got %d assessments, want 3", len(eval.Assessments))
	}
	wantScores := []int{1, 0, 2}
	for i, want := range wantScores {
		if eval.Assessments[i].Score != want {
			t.Errorf("assessment %d score = %d, want %d", i, eval.Assessments[i].Score, want)
		}
	}
	if eval.SummativeComment != "needs work" {
		t.Errorf("summative comment = %q, want %q", eval.SummativeComment, "needs work")
	}
	if eval.Rubric == nil || eval.Rubric.Title != "Test Rubric" {
		t.Errorf("result not linked to its rubric: %+v", eval.Rubric)
	}
	if svc.deleteCalls != 1 {
		t.Errorf("asset released %d times, want exactly 1", svc.deleteCalls)
	}
}

func TestRunMissingFileSkipsNetwork(t *testing.T) {
	svc := &fakeService{states: []gemini.AssetState{gemini.StateReady}}
	orch := New(svc, rubric.Builtin())

	_, err := orch.Run(context.Background(), "/nonexistent/video.mp4", testRubric(), testOptions(), nil)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var f *faults.Failure
	if !errors.As(err, &f) {
		t.Fatalf("error is %T, want *faults.Failure", err)
	}
	if f.Category != faults.FileAccess || !f.Fatal {
		t.Errorf("got category %v fatal=%v, want fatal FileAccess", f.Category, f.Fatal)
	}
	if svc.uploadCalls != 0 {
		t.Errorf("upload attempted %d times for a missing file", svc.uploadCalls)
	}
	if svc.deleteCalls != 0 {
		t.Errorf("delete called %d times, nothing was uploaded", svc.deleteCalls)
	}
}

func TestRunReleasesOnFailureBranches(t *testing.T) {
	cases := []struct {
		name string
		svc  *fakeService
		cat  faults.Category
	}{
		{
			name: "remote processing failed",
			svc:  &fakeService{states: []gemini.AssetState{gemini.StateFailed}},
			cat:  faults.UploadFailed,
		},
		{
			name: "processing timeout",
			svc:  &fakeService{states: []gemini.AssetState{gemini.StateProcessing}},
			cat:  faults.Timeout,
		},
		{
			name: "generation error",
			svc: &fakeService{
				states:      []gemini.AssetState{gemini.StateReady},
				generateErr: errors.New("429 quota exceeded"),
			},
			cat: faults.QuotaExceeded,
		},
		{
			name: "malformed reply",
			svc: &fakeService{
				states:        []gemini.AssetState{gemini.StateReady},
				generateReply: "I could not watch the video, sorry.",
			},
			cat: faults.MalformedResponse,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orch := New(tc.svc, rubric.Builtin())
			_, err := orch.Run(context.Background(), writeTestVideo(t), testRubric(), testOptions(), nil)
			if err == nil {
				t.Fatal("expected error")
			}
			var f *faults.Failure
			if !errors.As(err, &f) {
				t.Fatalf("error is %T, want *faults.Failure", err)
			}
			if f.Category != tc.cat {
				t.Errorf("category = %v, want %v", f.Category, tc.cat)
			}
			if tc.svc.deleteCalls != 1 {
				t.Errorf("asset released %d times, want exactly 1", tc.svc.deleteCalls)
			}
		})
	}
}

func TestRunMalformedReplyIsRecoverable(t *testing.T) {
	svc := &fakeService{
		states:        []gemini.AssetState{gemini.StateReady},
		generateReply: "no json here",
	}
	orch := New(svc, rubric.Builtin())

	_, err := orch.Run(context.Background(), writeTestVideo(t), testRubric(), testOptions(), nil)
	var f *faults.Failure
	if !errors.As(err, &f) {
		t.Fatalf("error is %T, want *faults.Failure", err)
	}
	if f.Fatal {
		t.Error("a malformed reply must stay recoverable so the caller can retry")
	}
}

func TestRunAutoDetectSubstitutesRubric(t *testing.T) {
	svc := &fakeService{
		states:        []gemini.AssetState{gemini.StateReady},
		detectReply:   "Subcuticular",
		generateReply: goodReply,
	}
	store := rubric.Builtin()
	auto, ok := store.Get(rubric.KeyAutoDetect)
	if !ok {
		t.Fatal("builtin auto-detect rubric missing")
	}
	orch := New(svc, store)

	eval, err := orch.Run(context.Background(), writeTestVideo(t), auto, testOptions(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(eval.Rubric.Title, "Subcuticular") {
		t.Errorf("rubric was not substituted, got %q", eval.Rubric.Title)
	}
	// One detection call plus one evaluation call.
	if svc.generateCalls != 2 {
		t.Errorf("got %d generate calls, want 2", svc.generateCalls)
	}
}

func TestRunAutoDetectInconclusiveKeepsGeneric(t *testing.T) {
	svc := &fakeService{
		states:        []gemini.AssetState{gemini.StateReady},
		detectReply:   "Unknown",
		generateReply: goodReply,
	}
	store := rubric.Builtin()
	auto, _ := store.Get(rubric.KeyAutoDetect)
	orch := New(svc, store)

	eval, err := orch.Run(context.Background(), writeTestVideo(t), auto, testOptions(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if eval.Rubric.Key != auto.Key {
		t.Errorf("rubric changed to %q on an inconclusive detection", eval.Rubric.Key)
	}
}

func TestRunProgressMonotonic(t *testing.T) {
	svc := &fakeService{
		states:        []gemini.AssetState{gemini.StateProcessing, gemini.StateReady},
		generateReply: goodReply,
	}
	orch := New(svc, rubric.Builtin())

	progress := make(chan Progress, 64)
	_, err := orch.Run(context.Background(), writeTestVideo(t), testRubric(), testOptions(), progress)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	close(progress)

	last := -1.0
	count := 0
	for p := range progress {
		count++
		if p.Fraction < last {
			t.Errorf("fraction regressed: %v after %v", p.Fraction, last)
		}
		last = p.Fraction
		if p.Message == "" {
			t.Error("progress event with empty message")
		}
	}
	if count == 0 {
		t.Fatal("no progress events emitted")
	}
	if last != 1.0 {
		t.Errorf("final fraction = %v, want 1.0", last)
	}
}
