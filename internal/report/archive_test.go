package report

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	contents := map[string]string{
		"a.pdf": "first report body",
		"b.pdf": "second report body",
	}
	var paths []string
	for name, body := range contents {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}

	zipPath := filepath.Join(dir, "run.zip")
	if err := Archive(zipPath, paths); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer r.Close()

	r.RegisterDecompressor(zipMethodZstd, func(rd io.Reader) io.ReadCloser {
		dec, err := zstd.NewReader(rd)
		if err != nil {
			t.Fatalf("zstd reader: %v", err)
		}
		return dec.IOReadCloser()
	})

	if len(r.File) != len(contents) {
		t.Fatalf("archive has %d entries, want %d", len(r.File), len(contents))
	}
	for _, entry := range r.File {
		if entry.Method != zipMethodZstd {
			t.Errorf("entry %s method = %d, want %d", entry.Name, entry.Method, zipMethodZstd)
		}
		want, ok := contents[entry.Name]
		if !ok {
			t.Errorf("unexpected entry %s", entry.Name)
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", entry.Name, err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", entry.Name, err)
		}
		if string(got) != want {
			t.Errorf("entry %s = %q, want %q", entry.Name, got, want)
		}
	}
}

func TestArchiveMissingFile(t *testing.T) {
	dir := t.TempDir()
	err := Archive(filepath.Join(dir, "run.zip"), []string{filepath.Join(dir, "ghost.pdf")})
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}
