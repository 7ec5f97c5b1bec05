package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// FallbackModels is the known-good model list used whenever discovery cannot
// produce a usable answer. Discovery never leaves the caller with zero
// selectable models.
var FallbackModels = []string{"gemini-2.5-flash", "gemini-1.5-pro", "gemini-1.5-flash"}

// DefaultModel is preferred when available.
const DefaultModel = "gemini-2.5-flash"

// probeTimeout bounds the availability check.
const probeTimeout = 10 * time.Second

// DiscoverModels queries the service for models that support content
// generation. On any failure — transport error, empty list, no generation
// support — it returns the fallback list plus a non-fatal diagnostic string.
// diag is empty on clean success.
func DiscoverModels(ctx context.Context, svc Service) (models []string, diag string) {
	log.Debug().Msg("Querying API for available models")

	infos, err := svc.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Model discovery failed, using fallback models")
		return FallbackModels, discoveryDiag(err)
	}
	if len(infos) == 0 {
		return FallbackModels, "No models returned from API"
	}

	for _, info := range infos {
		if info.SupportsGeneration && info.ID != "" {
			models = append(models, info.ID)
		}
	}
	if len(models) == 0 {
		return FallbackModels, "No models found with generateContent support"
	}

	log.Info().Int("count", len(models)).Msg("Model discovery complete")
	return models, ""
}

func discoveryDiag(err error) string {
	msg := err.Error()
	switch {
	case containsAny(msg, "401", "unauthorized", "invalid"):
		return "Invalid API key"
	case containsAny(msg, "403", "permission"):
		return "API key lacks permission to list models"
	default:
		if len(msg) > 100 {
			msg = msg[:100]
		}
		return "API error: " + msg
	}
}

// PreferredModel picks the model to select by default from a discovered list.
func PreferredModel(models []string) string {
	for _, m := range models {
		if m == DefaultModel {
			return m
		}
	}
	if len(models) > 0 {
		return models[0]
	}
	return DefaultModel
}

// ProbeModel pings the model with a trivial prompt to verify the credential
// has access. The call is bounded at 10 seconds.
func ProbeModel(ctx context.Context, svc Service, model string) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if _, err := svc.Generate(ctx, model, "Say 'OK'", nil); err != nil {
		return fmt.Errorf("model %s unavailable: %w", model, err)
	}
	return nil
}

func containsAny(haystack string, needles ...string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
