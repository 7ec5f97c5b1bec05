package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Client is the production Service backed by the Gemini SDK.
type Client struct {
	api *genai.Client
}

// NewClient creates a Gemini client for the given API key. The key is
// captured here and immutable for the client's lifetime.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &Client{api: api}, nil
}

// UploadAsset uploads a local video file to the Gemini Files API.
func (c *Client) UploadAsset(ctx context.Context, path, mimeType string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int64("size_bytes", info.Size()).
		Str("mime_type", mimeType).
		Msg("Starting Gemini Files API upload for video")

	uploadStart := time.Now()
	file, err := c.api.Files.Upload(ctx, f, &genai.UploadFileConfig{
		MIMEType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	log.Debug().
		Str("name", file.Name).
		Str("uri", file.URI).
		Dur("upload_duration", time.Since(uploadStart)).
		Msg("Video uploaded, server-side processing started")

	return handleFromFile(file), nil
}

// AssetStatus fetches the current state of an uploaded asset.
func (c *Client) AssetStatus(ctx context.Context, name string) (*Handle, error) {
	file, err := c.api.Files.Get(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("get file state: %w", err)
	}
	return handleFromFile(file), nil
}

// DeleteAsset removes an uploaded asset.
func (c *Client) DeleteAsset(ctx context.Context, name string) error {
	if _, err := c.api.Files.Delete(ctx, name, nil); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// ListModels enumerates models visible to the credential, paging through the
// full list.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var out []ModelInfo

	page, err := c.api.Models.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	for {
		for _, m := range page.Items {
			out = append(out, ModelInfo{
				ID:                 strings.TrimPrefix(m.Name, "models/"),
				SupportsGeneration: supportsGeneration(m),
			})
		}
		page, err = page.Next(ctx)
		if errors.Is(err, genai.ErrPageDone) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
	}
	return out, nil
}

func supportsGeneration(m *genai.Model) bool {
	for _, action := range m.SupportedActions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}

// Generate runs one inference call against the given model. When asset is
// non-nil the uploaded video is attached ahead of the text prompt.
func (c *Client) Generate(ctx context.Context, model, prompt string, asset *Handle) (string, error) {
	var parts []*genai.Part
	if asset != nil {
		parts = append(parts, &genai.Part{
			FileData: &genai.FileData{
				FileURI:  asset.URI,
				MIMEType: asset.MIMEType,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	callStart := time.Now()
	log.Debug().
		Str("model", model).
		Int("part_count", len(parts)).
		Msg("Starting Gemini API call")
	resp, err := c.api.Models.GenerateContent(ctx, model, contents, nil)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("Failed to generate content")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || resp.Text() == "" {
		log.Warn().Dur("duration", duration).Msg("Received empty response from Gemini")
		return "", fmt.Errorf("received empty response from Gemini API")
	}

	log.Debug().
		Int("response_length", len(resp.Text())).
		Dur("duration", duration).
		Msg("Received response from Gemini")

	return resp.Text(), nil
}

func handleFromFile(file *genai.File) *Handle {
	return &Handle{
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: file.MIMEType,
		State:    stateFromFile(file.State),
	}
}

func stateFromFile(s genai.FileState) AssetState {
	switch s {
	case genai.FileStateActive:
		return StateReady
	case genai.FileStateFailed:
		return StateFailed
	default:
		return StateProcessing
	}
}
