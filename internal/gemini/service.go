// Package gemini wraps the Google Gemini API surface the assessment pipeline
// consumes: video asset upload and lifecycle, model discovery, and content
// generation against an uploaded asset.
package gemini

import "context"

// AssetState is the remote processing state of an uploaded asset.
type AssetState string

const (
	StateProcessing AssetState = "PROCESSING"
	StateReady      AssetState = "READY"
	StateFailed     AssetState = "FAILED"
)

// Handle references one uploaded asset on the remote service. The handle is
// exclusively owned by the session that uploaded it and must not be reused
// across assessment calls.
type Handle struct {
	Name     string
	URI      string
	MIMEType string
	State    AssetState
}

// ModelInfo describes one discoverable model.
type ModelInfo struct {
	ID                 string
	SupportsGeneration bool
}

// Service is the remote inference API consumed by the pipeline. The real
// implementation is Client; tests substitute fakes.
type Service interface {
	// UploadAsset uploads the local file and returns its remote handle,
	// typically still in StateProcessing.
	UploadAsset(ctx context.Context, path, mimeType string) (*Handle, error)

	// AssetStatus fetches the current lifecycle state of an uploaded asset.
	AssetStatus(ctx context.Context, name string) (*Handle, error)

	// DeleteAsset removes the uploaded asset from the remote service.
	DeleteAsset(ctx context.Context, name string) error

	// ListModels enumerates the models visible to the credential.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Generate runs one inference call. asset may be nil for text-only
	// requests (the availability probe).
	Generate(ctx context.Context, model, prompt string, asset *Handle) (string, error)
}
