package assess

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medvat/medvat/internal/gemini"
)

// detectTimeout bounds the variant classification call.
const detectTimeout = 60 * time.Second

// knownVariants is the closed label set the detector accepts. Replies outside
// this set are treated as inconclusive.
var knownVariants = []string{"Simple Interrupted", "Vertical Mattress", "Subcuticular"}

const detectionPrompt = `Watch this surgical video and identify which suturing technique is being used.

Possible techniques:
1. Simple Interrupted - Individual separate stitches, each tied independently
2. Vertical Mattress - Deep and superficial bites creating a vertical pattern, often with visible eversion
3. Subcuticular - Continuous running suture beneath the skin surface, minimal visible suture material

Respond with ONLY one of these exact strings:
- "Simple Interrupted"
- "Vertical Mattress"
- "Subcuticular"
- "Unknown" (if you cannot determine)

Do not provide any explanation, just the technique name.`

// DetectVariant asks the model which suturing technique the video shows.
// It issues exactly one classification call; on any transport problem or a
// reply outside the known label set it returns "" — the caller falls back to
// the generic rubric. A single miss degrades gracefully, never blocks the
// pipeline.
func DetectVariant(ctx context.Context, svc gemini.Service, model string, asset *gemini.Handle) string {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	reply, err := svc.Generate(ctx, model, detectionPrompt, asset)
	if err != nil {
		log.Warn().Err(err).Msg("Pattern detection call failed, falling back to generic rubric")
		return ""
	}

	detected := strings.TrimSpace(strings.ReplaceAll(reply, "```", ""))
	for _, variant := range knownVariants {
		if strings.Contains(strings.ToLower(detected), strings.ToLower(variant)) {
			log.Info().Str("variant", variant).Msg("Detected suturing pattern")
			return variant
		}
	}

	log.Info().Str("reply", detected).Msg("Pattern detection inconclusive")
	return ""
}
