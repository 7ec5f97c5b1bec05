package report

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTargetPathNoCollision(t *testing.T) {
	dir := t.TempDir()
	got := TargetPath(filepath.Join(dir, "case_review.mp4"))
	want := filepath.Join(dir, "case_review.pdf")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTargetPathIncrements(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "case.pdf"))
	touch(t, filepath.Join(dir, "case_1.pdf"))

	got := TargetPath(filepath.Join(dir, "case.mp4"))
	want := filepath.Join(dir, "case_2.pdf")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTargetPathContinuesExistingSuffix(t *testing.T) {
	dir := t.TempDir()
	// The video itself is named with a _3 suffix; counting resumes at 4.
	touch(t, filepath.Join(dir, "case_3.pdf"))

	got := TargetPath(filepath.Join(dir, "case_3.mp4"))
	want := filepath.Join(dir, "case_4.pdf")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
