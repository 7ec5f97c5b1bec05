package report

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// zipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const zipMethodZstd uint16 = 93

func init() {
	// Level 12 maps to SpeedBestCompression in klauspost/compress.
	zip.RegisterCompressor(zipMethodZstd, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(12)))
	})
}

// Archive bundles the given report files into a zstd-compressed ZIP at
// zipPath. Entries keep their base names.
func Archive(zipPath string, paths []string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create ZIP %s: %w", zipPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			zw.Close()
			return fmt.Errorf("open %s for ZIP: %w", p, err)
		}

		header := &zip.FileHeader{
			Name:     filepath.Base(p),
			Method:   zipMethodZstd,
			Modified: time.Now(),
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			f.Close()
			zw.Close()
			return fmt.Errorf("create ZIP entry for %s: %w", p, err)
		}
		if _, err := io.Copy(w, f); err != nil {
			f.Close()
			zw.Close()
			return fmt.Errorf("write ZIP entry for %s: %w", p, err)
		}
		f.Close()
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close ZIP writer: %w", err)
	}

	log.Info().Str("path", zipPath).Int("reports", len(paths)).Msg("Report archive created")
	return nil
}
