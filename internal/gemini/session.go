package gemini

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medvat/medvat/internal/faults"
)

const (
	// DefaultPollInterval is how often AwaitReady re-checks remote state.
	DefaultPollInterval = 2 * time.Second
	// DefaultMaxWait is the client-enforced ceiling on remote processing,
	// independent of whatever the server reports.
	DefaultMaxWait = 300 * time.Second

	// largeFileWarnBytes triggers a warning for uploads likely to process slowly.
	largeFileWarnBytes = 100 * 1024 * 1024
)

// AssetSession owns the upload → ready/failed/timeout lifecycle of one video
// with the remote service. Release must be called on every exit path; the
// session tracks the handle it released so repeat calls are no-ops.
type AssetSession struct {
	svc Service

	PollInterval time.Duration
	MaxWait      time.Duration

	// sleep is swapped out by tests to avoid real waiting.
	sleep func(time.Duration)

	released map[string]bool
}

// NewAssetSession creates a session with the default polling bounds.
func NewAssetSession(svc Service) *AssetSession {
	return &AssetSession{
		svc:          svc,
		PollInterval: DefaultPollInterval,
		MaxWait:      DefaultMaxWait,
		sleep:        time.Sleep,
		released:     make(map[string]bool),
	}
}

// Upload validates the local file and uploads it to the remote service.
// A missing or unreadable file fails fast with FileAccess before any network
// call; upload transport errors classify as UploadFailed. Both are fatal.
func (s *AssetSession) Upload(ctx context.Context, path string) (*Handle, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, faults.New(faults.FileAccess, "Video File Not Found",
				fmt.Sprintf("The video file could not be found at: %s", path))
		}
		return nil, faults.New(faults.FileAccess, "File Access Denied",
			fmt.Sprintf("Could not access the video file: %v", err))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, faults.New(faults.FileAccess, "File Access Denied",
			"You don't have permission to read the video file. Check file permissions.")
	}
	f.Close()

	if info.Size() > largeFileWarnBytes {
		log.Warn().
			Str("path", path).
			Int64("size_bytes", info.Size()).
			Msg("Large video file may take longer to process")
	}

	handle, err := s.svc.UploadAsset(ctx, path, VideoMIMEType(path))
	if err != nil {
		return nil, faults.New(faults.UploadFailed, "Video Upload Failed",
			fmt.Sprintf("Could not upload video file: %v", err))
	}

	log.Info().
		Str("asset", handle.Name).
		Int64("size_bytes", info.Size()).
		Msg("Video uploaded to remote service")

	return handle, nil
}

// AwaitReady polls the asset until it leaves StateProcessing. The elapsed
// wait is bounded by MaxWait on the client side; hitting the ceiling releases
// the handle and fails with Timeout. A remote FAILED state is fatal — the
// server has already given up, so no retry is offered.
func (s *AssetSession) AwaitReady(ctx context.Context, handle *Handle) (*Handle, error) {
	var elapsed time.Duration

	for handle.State == StateProcessing {
		if elapsed >= s.MaxWait {
			s.Release(ctx, handle)
			return nil, (&faults.Failure{
				Category: faults.Timeout,
				Title:    "Video Processing Timeout",
				Message:  "The video processing took too long. This may be due to a very large file or server issues.",
			}).AsFatal()
		}

		s.sleep(s.PollInterval)
		elapsed += s.PollInterval

		updated, err := s.svc.AssetStatus(ctx, handle.Name)
		if err != nil {
			return nil, faults.New(faults.UploadFailed, "Video Processing Error",
				fmt.Sprintf("Error checking video processing status: %v", err))
		}
		handle = updated

		log.Debug().
			Str("asset", handle.Name).
			Str("state", string(handle.State)).
			Dur("elapsed", elapsed).
			Msg("Polled remote processing state")
	}

	if handle.State == StateFailed {
		return nil, faults.New(faults.UploadFailed, "Video Processing Failed",
			"The remote service could not process your video file. This may be due to file format, corruption, or size issues.")
	}

	log.Info().Str("asset", handle.Name).Msg("Video ready for inference")
	return handle, nil
}

// Release deletes the remote asset. It is idempotent and best-effort:
// failures are logged, never returned, since they do not affect the result
// already obtained or already failed.
func (s *AssetSession) Release(ctx context.Context, handle *Handle) {
	if handle == nil || s.released[handle.Name] {
		return
	}
	s.released[handle.Name] = true

	if err := s.svc.DeleteAsset(ctx, handle.Name); err != nil {
		log.Warn().Err(err).Str("asset", handle.Name).Msg("Failed to delete uploaded asset")
		return
	}
	log.Debug().Str("asset", handle.Name).Msg("Uploaded asset deleted")
}

// VideoMIMEType maps a video file extension to its MIME type. Unknown
// extensions fall back to video/mp4, which the remote service sniffs past.
func VideoMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	default:
		return "video/mp4"
	}
}
