package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/medvat/medvat/internal/faults"
)

func TestRunSequentialAndOrdered(t *testing.T) {
	var mu sync.Mutex
	inFlight := 0
	var order []string

	proc := func(ctx context.Context, path string) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > 1 {
			t.Error("more than one item in flight")
		}
		order = append(order, path)
		mu.Unlock()

		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()
		return path + ".pdf", nil
	}

	videos := []string{"/v/a.mp4", "/v/b.mp4", "/v/c.mp4"}
	summary := New(proc).Run(context.Background(), videos, nil)

	if summary.RunID == "" {
		t.Error("run ID missing")
	}
	if summary.Attempted != 3 || summary.Succeeded != 3 || len(summary.Failures()) != 0 {
		t.Errorf("counts wrong: %+v", summary)
	}
	if len(summary.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(summary.Outcomes))
	}
	for i, want := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		if summary.Outcomes[i].VideoName != want {
			t.Errorf("outcome %d = %q, want %q", i, summary.Outcomes[i].VideoName, want)
		}
		if summary.Outcomes[i].ReportPath != videos[i]+".pdf" {
			t.Errorf("outcome %d report path = %q", i, summary.Outcomes[i].ReportPath)
		}
	}
	if len(order) != 3 || order[0] != videos[0] || order[2] != videos[2] {
		t.Errorf("processing order wrong: %v", order)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	proc := func(ctx context.Context, path string) (string, error) {
		if strings.Contains(path, "bad") {
			return "", faults.New(faults.Timeout, "Processing Timeout", "took too long")
		}
		return path + ".pdf", nil
	}

	summary := New(proc).Run(context.Background(), []string{"/v/ok1.mp4", "/v/bad.mp4", "/v/ok2.mp4"}, nil)

	if summary.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", summary.Succeeded)
	}
	failed := summary.Failures()
	if len(failed) != 1 || failed[0].VideoName != "bad.mp4" {
		t.Fatalf("failures wrong: %+v", failed)
	}
	if failed[0].ErrorSummary == "" {
		t.Error("failure has no cause")
	}
	if summary.Attempted != summary.Succeeded+len(failed) {
		t.Error("attempted != succeeded + failed")
	}
	// The failure did not stop the item after it.
	if !summary.Outcomes[2].Succeeded {
		t.Error("item after a failure did not run")
	}
}

func TestRunReportFailureCountsAsItemFailure(t *testing.T) {
	proc := func(ctx context.Context, path string) (string, error) {
		// Analysis succeeded but the report could not be written.
		return "", errors.New("write PDF: permission denied")
	}

	summary := New(proc).Run(context.Background(), []string{"/v/a.mp4"}, nil)
	if summary.Succeeded != 0 || len(summary.Failures()) != 1 {
		t.Errorf("counts wrong: %+v", summary)
	}
}

func TestRunEmitsEvents(t *testing.T) {
	proc := func(ctx context.Context, path string) (string, error) {
		return path + ".pdf", nil
	}

	events := make(chan Event, 16)
	New(proc).Run(context.Background(), []string{"/v/a.mp4", "/v/b.mp4"}, events)
	close(events)

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	if len(got) != 4 {
		t.Fatalf("got %d events, want 4 (started+finished per item)", len(got))
	}
	last := got[len(got)-1]
	if last.Completed != 2 || last.Total != 2 || last.Succeeded != 2 {
		t.Errorf("final event counts wrong: %+v", last)
	}
}

func TestRunCancelledContextAccountsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	proc := func(ctx context.Context, path string) (string, error) {
		calls++
		cancel()
		return path + ".pdf", nil
	}

	summary := New(proc).Run(ctx, []string{"/v/a.mp4", "/v/b.mp4", "/v/c.mp4"}, nil)
	if calls != 1 {
		t.Errorf("processed %d items after cancellation, want 1", calls)
	}
	if summary.Attempted != 3 || len(summary.Outcomes) != 3 {
		t.Errorf("summary does not account for every input: %+v", summary)
	}
	if summary.Succeeded != 1 || len(summary.Failures()) != 2 {
		t.Errorf("counts wrong: %+v", summary)
	}
}
